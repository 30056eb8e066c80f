package settlement

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/flatwise/internal/calculator"
	"github.com/mmynk/flatwise/internal/models"
)

var errStage = errors.New("stage failed")

// fakeLedger records staged entries and fails once failAfter entries were accepted.
type fakeLedger struct {
	staged    []*models.Transaction
	failAfter int
}

func (l *fakeLedger) AddTransaction(_ context.Context, t *models.Transaction) error {
	if l.failAfter > 0 && len(l.staged) >= l.failAfter {
		return errStage
	}
	t.ID = fmt.Sprintf("txn-%d", len(l.staged)+1)
	l.staged = append(l.staged, t)
	return nil
}

var day = models.Date(2026, time.January, 1)

// sharedItem returns an item valued at value on day, shared by users.
func sharedItem(value float64, users ...string) *models.Item {
	return &models.Item{
		ID:           "item-1",
		FlatID:       "flat-1",
		Name:         "Sofa",
		InitialValue: value,
		PurchaseDate: day,
		Users:        users,
	}
}

func userIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("user-%d", i+1)
	}
	return ids
}

func sum(txns []*models.Transaction) float64 {
	var total float64
	for _, t := range txns {
		total += t.Amount
	}
	return total
}

func TestBuyIn(t *testing.T) {
	ctx := context.Background()

	t.Run("three users valued at 900", func(t *testing.T) {
		ledger := &fakeLedger{}
		item := sharedItem(900, "alice", "bob", "carol")

		txns, err := BuyIn(ctx, ledger, item, "dave", day)
		require.NoError(t, err)
		require.Len(t, txns, 3)
		assert.Equal(t, txns, ledger.staged)

		for i, creditor := range []string{"alice", "bob", "carol"} {
			assert.Equal(t, creditor, txns[i].CreditorID)
			assert.Equal(t, "dave", txns[i].DebtorID)
			assert.Equal(t, "item-1", txns[i].ItemID)
			assert.False(t, txns[i].Paid)
			assert.InDelta(t, 75, txns[i].Amount, 1e-9)
		}
		assert.Equal(t, []string{"alice", "bob", "carol"}, item.Users, "engine must not change membership")
	})

	t.Run("uses the depreciated value", func(t *testing.T) {
		item := sharedItem(1000, "alice")
		item.PurchaseDate = models.Date(2025, time.January, 1)
		item.YearlyDepreciation = 0.2

		txns, err := BuyIn(ctx, &fakeLedger{}, item, "bob", day)
		require.NoError(t, err)
		require.Len(t, txns, 1)
		assert.InDelta(t, 800.0/1-800.0/2, txns[0].Amount, 1e-9)
	})

	t.Run("conservation for one to five users", func(t *testing.T) {
		const value = 1234.56
		for n := 1; n <= 5; n++ {
			t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
				item := sharedItem(value, userIDs(n)...)

				txns, err := BuyIn(ctx, &fakeLedger{}, item, "newcomer", day)
				require.NoError(t, err)
				require.Len(t, txns, n)

				want := value/float64(n) - value/float64(n+1)
				for _, txn := range txns {
					assert.Equal(t, txns[0].Amount, txn.Amount, "all entries share one amount")
					assert.InDelta(t, want, txn.Amount, 1e-9)
					assert.Greater(t, txn.Amount, 0.0)
				}
				// The newcomer ends up carrying exactly one share of the n+1 split.
				assert.InDelta(t, value/float64(n+1), sum(txns), 1e-9)
				assert.InDelta(t, value-float64(n)*value/float64(n+1), sum(txns), 1e-9)
			})
		}
	})

	t.Run("no users", func(t *testing.T) {
		ledger := &fakeLedger{}
		_, err := BuyIn(ctx, ledger, sharedItem(900), "dave", day)
		assert.ErrorIs(t, err, ErrInsufficientUsers)
		assert.Empty(t, ledger.staged)
	})

	t.Run("unassigned ids", func(t *testing.T) {
		item := sharedItem(900, "alice")
		item.ID = ""
		_, err := BuyIn(ctx, &fakeLedger{}, item, "dave", day)
		assert.ErrorIs(t, err, ErrUnassignedID)

		_, err = BuyIn(ctx, &fakeLedger{}, sharedItem(900, "alice"), "", day)
		assert.ErrorIs(t, err, ErrUnassignedID)

		_, err = BuyIn(ctx, &fakeLedger{}, sharedItem(900, "alice", ""), "dave", day)
		assert.ErrorIs(t, err, ErrUnassignedID)
	})

	t.Run("already a user", func(t *testing.T) {
		_, err := BuyIn(ctx, &fakeLedger{}, sharedItem(900, "alice", "bob"), "bob", day)
		assert.ErrorIs(t, err, ErrAlreadyItemUser)
	})

	t.Run("date before purchase", func(t *testing.T) {
		ledger := &fakeLedger{}
		_, err := BuyIn(ctx, ledger, sharedItem(900, "alice"), "bob", day.AddDate(0, 0, -1))
		assert.ErrorIs(t, err, calculator.ErrInvalidDate)
		assert.Empty(t, ledger.staged)
	})

	t.Run("staging failure is returned", func(t *testing.T) {
		ledger := &fakeLedger{failAfter: 1}
		_, err := BuyIn(ctx, ledger, sharedItem(900, "alice", "bob"), "carol", day)
		assert.ErrorIs(t, err, errStage)
	})
}

func TestBuyOut(t *testing.T) {
	ctx := context.Background()

	t.Run("leaver is credited by every remaining user", func(t *testing.T) {
		ledger := &fakeLedger{}
		item := sharedItem(900, "alice", "bob", "carol")

		txns, err := BuyOut(ctx, ledger, item, "bob", day)
		require.NoError(t, err)
		require.Len(t, txns, 2)

		for i, debtor := range []string{"alice", "carol"} {
			assert.Equal(t, "bob", txns[i].CreditorID)
			assert.Equal(t, debtor, txns[i].DebtorID)
			assert.InDelta(t, 150, txns[i].Amount, 1e-9)
		}
		assert.Len(t, item.Users, 3, "engine must not change membership")
	})

	t.Run("conservation for two to six users", func(t *testing.T) {
		const value = 987.65
		for n := 2; n <= 6; n++ {
			t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
				users := userIDs(n)
				item := sharedItem(value, users...)

				txns, err := BuyOut(ctx, &fakeLedger{}, item, users[n-1], day)
				require.NoError(t, err)
				require.Len(t, txns, n-1)

				for _, txn := range txns {
					assert.Equal(t, txns[0].Amount, txn.Amount)
					assert.NotEqual(t, users[n-1], txn.DebtorID)
				}
				assert.InDelta(t, value/float64(n), sum(txns), 1e-9)
			})
		}
	})

	t.Run("single user", func(t *testing.T) {
		ledger := &fakeLedger{}
		_, err := BuyOut(ctx, ledger, sharedItem(900, "alice"), "alice", day)
		assert.ErrorIs(t, err, ErrInsufficientUsers)
		assert.Empty(t, ledger.staged)
	})

	t.Run("not a user", func(t *testing.T) {
		_, err := BuyOut(ctx, &fakeLedger{}, sharedItem(900, "alice", "bob"), "carol", day)
		assert.ErrorIs(t, err, ErrNotItemUser)
	})

	t.Run("unassigned item id", func(t *testing.T) {
		item := sharedItem(900, "alice", "bob")
		item.ID = ""
		_, err := BuyOut(ctx, &fakeLedger{}, item, "bob", day)
		assert.ErrorIs(t, err, ErrUnassignedID)
	})

	t.Run("buy-in then buy-out nets to zero", func(t *testing.T) {
		item := sharedItem(600, "alice", "bob")

		in, err := BuyIn(ctx, &fakeLedger{}, item, "carol", day)
		require.NoError(t, err)
		item.AddUser("carol")

		out, err := BuyOut(ctx, &fakeLedger{}, item, "carol", day)
		require.NoError(t, err)

		// Same day, same value: carol paid 100 to each and gets 100 back from each.
		assert.InDelta(t, sum(in), sum(out), 1e-9)
	})
}

func TestMoveIn(t *testing.T) {
	ctx := context.Background()

	newFlat := func() (*models.Flat, []*models.Item) {
		flat := &models.Flat{ID: "flat-1", Members: []string{"alice", "bob"}}
		tv := sharedItem(900, "alice", "bob")
		tv.ID = "tv"
		fridge := sharedItem(300, "alice")
		fridge.ID = "fridge"
		return flat, []*models.Item{tv, fridge}
	}

	t.Run("buys into every item", func(t *testing.T) {
		ledger := &fakeLedger{}
		flat, items := newFlat()
		user := &models.User{ID: "carol"}

		move, err := MoveIn(ctx, ledger, flat, items, user, nil, day)
		require.NoError(t, err)

		assert.Len(t, move.Items, 2)
		assert.Len(t, move.Transactions, 3)
		assert.Equal(t, move.Transactions, ledger.staged)
		assert.True(t, items[0].HasUser("carol"))
		assert.True(t, items[1].HasUser("carol"))
		assert.Equal(t, []string{"alice", "bob", "carol"}, flat.Members)
		assert.Equal(t, "flat-1", user.FlatID)

		for _, txn := range move.Transactions {
			assert.Equal(t, "carol", txn.DebtorID)
		}
	})

	t.Run("excluded items are skipped", func(t *testing.T) {
		flat, items := newFlat()
		user := &models.User{ID: "carol"}

		move, err := MoveIn(ctx, &fakeLedger{}, flat, items, user, []string{"tv"}, day)
		require.NoError(t, err)

		require.Len(t, move.Items, 1)
		assert.Equal(t, "fridge", move.Items[0].ID)
		assert.False(t, items[0].HasUser("carol"))
		assert.Len(t, move.Transactions, 1)
		assert.InDelta(t, 150, move.Transactions[0].Amount, 1e-9)
	})

	t.Run("already in a flat", func(t *testing.T) {
		flat, items := newFlat()
		_, err := MoveIn(ctx, &fakeLedger{}, flat, items, &models.User{ID: "carol", FlatID: "flat-2"}, nil, day)
		assert.ErrorIs(t, err, ErrAlreadyMember)
	})

	t.Run("failing item leaves everything untouched", func(t *testing.T) {
		ledger := &fakeLedger{}
		flat, items := newFlat()
		empty := sharedItem(100)
		empty.ID = "empty"
		items = append(items, empty)
		user := &models.User{ID: "carol"}

		_, err := MoveIn(ctx, ledger, flat, items, user, nil, day)
		assert.ErrorIs(t, err, ErrInsufficientUsers)
		assert.Empty(t, ledger.staged)
		assert.False(t, items[0].HasUser("carol"))
		assert.Equal(t, []string{"alice", "bob"}, flat.Members)
		assert.Empty(t, user.FlatID)
	})
}

func TestMoveOut(t *testing.T) {
	ctx := context.Background()

	newFlat := func() (*models.Flat, []*models.Item) {
		flat := &models.Flat{ID: "flat-1", Members: []string{"alice", "bob", "carol"}}
		tv := sharedItem(900, "alice", "bob", "carol")
		tv.ID = "tv"
		desk := sharedItem(200, "alice", "bob")
		desk.ID = "desk"
		return flat, []*models.Item{tv, desk}
	}

	t.Run("buys out of every held item", func(t *testing.T) {
		ledger := &fakeLedger{}
		flat, items := newFlat()
		user := &models.User{ID: "carol", FlatID: "flat-1"}

		move, err := MoveOut(ctx, ledger, flat, items, user, day)
		require.NoError(t, err)

		require.Len(t, move.Items, 1, "carol does not share the desk")
		require.Len(t, move.Transactions, 2)
		for _, txn := range move.Transactions {
			assert.Equal(t, "carol", txn.CreditorID)
			assert.InDelta(t, 150, txn.Amount, 1e-9)
		}
		assert.False(t, items[0].HasUser("carol"))
		assert.Equal(t, []string{"alice", "bob"}, flat.Members)
		assert.Empty(t, user.FlatID)
	})

	t.Run("last member", func(t *testing.T) {
		flat := &models.Flat{ID: "flat-1", Members: []string{"alice"}}
		_, err := MoveOut(ctx, &fakeLedger{}, flat, nil, &models.User{ID: "alice", FlatID: "flat-1"}, day)
		assert.ErrorIs(t, err, ErrLastMember)
	})

	t.Run("no flat", func(t *testing.T) {
		flat, items := newFlat()
		_, err := MoveOut(ctx, &fakeLedger{}, flat, items, &models.User{ID: "dave"}, day)
		assert.ErrorIs(t, err, ErrNotMember)
	})

	t.Run("other flat", func(t *testing.T) {
		flat, items := newFlat()
		_, err := MoveOut(ctx, &fakeLedger{}, flat, items, &models.User{ID: "dave", FlatID: "flat-2"}, day)
		assert.ErrorIs(t, err, ErrWrongFlat)
	})

	t.Run("sole user of an item aborts the move", func(t *testing.T) {
		ledger := &fakeLedger{}
		flat, items := newFlat()
		lamp := sharedItem(50, "carol")
		lamp.ID = "lamp"
		items = append(items, lamp)
		user := &models.User{ID: "carol", FlatID: "flat-1"}

		_, err := MoveOut(ctx, ledger, flat, items, user, day)
		assert.ErrorIs(t, err, ErrInsufficientUsers)
		assert.Empty(t, ledger.staged)
		assert.True(t, items[0].HasUser("carol"))
		assert.Equal(t, "flat-1", user.FlatID)
	})
}
