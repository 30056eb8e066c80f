package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/flatwise/internal/models"
	"github.com/mmynk/flatwise/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "nested", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func createUser(t *testing.T, store *SQLiteStore, first, email string) *models.User {
	t.Helper()
	user := models.NewUser(first, "Tester", email, "hash")
	require.NoError(t, store.CreateUser(context.Background(), user))
	return user
}

func TestUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		user := createUser(t, store, "Alice", "alice@example.com")
		require.NotEmpty(t, user.ID)

		got, err := store.GetUser(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "Alice", got.FirstName)
		assert.Equal(t, "alice@example.com", got.Email)
		assert.True(t, got.Active)
		assert.Empty(t, got.FlatID)

		byEmail, err := store.GetUserByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, byEmail.ID)
	})

	t.Run("duplicate email", func(t *testing.T) {
		user := models.NewUser("Other", "Alice", "alice@example.com", "hash")
		err := store.CreateUser(ctx, user)
		assert.ErrorIs(t, err, storage.ErrEmailExists)
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := store.GetUser(ctx, "nope")
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.ErrorIs(t, store.DeleteUser(ctx, "nope"), storage.ErrNotFound)
	})

	t.Run("update", func(t *testing.T) {
		user := createUser(t, store, "Bob", "bob@example.com")
		user.LastName = "Builder"
		user.Active = false
		require.NoError(t, store.UpdateUser(ctx, user))

		got, err := store.GetUser(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "Builder", got.LastName)
		assert.False(t, got.Active)
	})

	t.Run("list pages", func(t *testing.T) {
		all, err := store.ListUsers(ctx, 0, 100)
		require.NoError(t, err)
		assert.Len(t, all, 2)

		page, err := store.ListUsers(ctx, 1, 1)
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, all[1].ID, page[0].ID)
	})
}

func TestFlats(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := createUser(t, store, "Alice", "alice@example.com")
	bob := createUser(t, store, "Bob", "bob@example.com")

	flat := &models.Flat{Name: "Olympus", Members: []string{alice.ID, bob.ID}}
	require.NoError(t, store.CreateFlat(ctx, flat))
	require.NotEmpty(t, flat.ID)

	t.Run("members follow users", func(t *testing.T) {
		got, err := store.GetFlat(ctx, flat.ID)
		require.NoError(t, err)
		assert.Equal(t, "Olympus", got.Name)
		assert.ElementsMatch(t, []string{alice.ID, bob.ID}, got.Members)

		user, err := store.GetUser(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, flat.ID, user.FlatID)
	})

	t.Run("set user flat", func(t *testing.T) {
		require.NoError(t, store.SetUserFlat(ctx, bob.ID, ""))
		got, err := store.GetFlat(ctx, flat.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{alice.ID}, got.Members)
	})

	t.Run("rename and list", func(t *testing.T) {
		flat.Name = "Valhalla"
		require.NoError(t, store.UpdateFlat(ctx, flat))

		flats, err := store.ListFlats(ctx, 0, 10)
		require.NoError(t, err)
		require.Len(t, flats, 1)
		assert.Equal(t, "Valhalla", flats[0].Name)
		assert.Equal(t, []string{alice.ID}, flats[0].Members)
	})

	t.Run("delete clears membership", func(t *testing.T) {
		require.NoError(t, store.DeleteFlat(ctx, flat.ID))

		_, err := store.GetFlat(ctx, flat.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)

		user, err := store.GetUser(ctx, alice.ID)
		require.NoError(t, err)
		assert.Empty(t, user.FlatID)
	})
}

func TestItems(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := createUser(t, store, "Alice", "alice@example.com")
	bob := createUser(t, store, "Bob", "bob@example.com")
	carol := createUser(t, store, "Carol", "carol@example.com")
	flat := &models.Flat{Name: "Olympus", Members: []string{alice.ID, bob.ID, carol.ID}}
	require.NoError(t, store.CreateFlat(ctx, flat))

	minimum := 100.0
	item := &models.Item{
		FlatID:             flat.ID,
		Name:               "TV",
		InitialValue:       1000,
		PurchaseDate:       models.Date(2025, 1, 1),
		YearlyDepreciation: 0.2,
		MinimumValue:       &minimum,
		Users:              []string{carol.ID, alice.ID},
	}
	require.NoError(t, store.CreateItem(ctx, item))

	t.Run("round trip", func(t *testing.T) {
		got, err := store.GetItem(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, "TV", got.Name)
		assert.False(t, got.IsBill)
		assert.Equal(t, 1000.0, got.InitialValue)
		assert.True(t, got.PurchaseDate.Equal(models.Date(2025, 1, 1)))
		assert.Equal(t, 0.2, got.YearlyDepreciation)
		require.NotNil(t, got.MinimumValue)
		assert.Equal(t, 100.0, *got.MinimumValue)
		assert.Nil(t, got.MinimumValuePct)
		assert.Equal(t, []string{carol.ID, alice.ID}, got.Users)
	})

	t.Run("user order is kept", func(t *testing.T) {
		require.NoError(t, store.SetItemUsers(ctx, item.ID, []string{bob.ID, carol.ID, alice.ID}))
		got, err := store.GetItem(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{bob.ID, carol.ID, alice.ID}, got.Users)
	})

	t.Run("list by flat and user", func(t *testing.T) {
		byFlat, err := store.ListItemsByFlat(ctx, flat.ID)
		require.NoError(t, err)
		require.Len(t, byFlat, 1)
		assert.Len(t, byFlat[0].Users, 3)

		require.NoError(t, store.SetItemUsers(ctx, item.ID, []string{alice.ID}))
		byUser, err := store.ListItemsByUser(ctx, bob.ID)
		require.NoError(t, err)
		assert.Empty(t, byUser)

		byUser, err = store.ListItemsByUser(ctx, alice.ID)
		require.NoError(t, err)
		assert.Len(t, byUser, 1)
	})

	t.Run("update", func(t *testing.T) {
		pct := 0.5
		item.Name = "OLED TV"
		item.MinimumValue = nil
		item.MinimumValuePct = &pct
		require.NoError(t, store.UpdateItem(ctx, item))

		got, err := store.GetItem(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, "OLED TV", got.Name)
		assert.Nil(t, got.MinimumValue)
		require.NotNil(t, got.MinimumValuePct)
		assert.Equal(t, 0.5, *got.MinimumValuePct)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.DeleteItem(ctx, item.ID))
		_, err := store.GetItem(ctx, item.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.ErrorIs(t, store.DeleteItem(ctx, item.ID), storage.ErrNotFound)
	})
}

func TestTransactions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := createUser(t, store, "Alice", "alice@example.com")
	bob := createUser(t, store, "Bob", "bob@example.com")
	flat := &models.Flat{Name: "Olympus", Members: []string{alice.ID, bob.ID}}
	require.NoError(t, store.CreateFlat(ctx, flat))
	item := &models.Item{
		FlatID:       flat.ID,
		Name:         "Sofa",
		InitialValue: 600,
		PurchaseDate: models.Date(2025, 3, 1),
		Users:        []string{alice.ID},
	}
	require.NoError(t, store.CreateItem(ctx, item))

	first := &models.Transaction{CreditorID: alice.ID, DebtorID: bob.ID, ItemID: item.ID, Amount: 300}
	second := &models.Transaction{CreditorID: bob.ID, DebtorID: alice.ID, ItemID: item.ID, Amount: 50}
	require.NoError(t, store.AddTransaction(ctx, first))
	require.NoError(t, store.AddTransaction(ctx, second))

	t.Run("by item in order", func(t *testing.T) {
		txns, err := store.ListTransactionsByItem(ctx, item.ID)
		require.NoError(t, err)
		require.Len(t, txns, 2)
		assert.Equal(t, first.ID, txns[0].ID)
		assert.Equal(t, second.ID, txns[1].ID)

		byFlat, err := store.ListTransactionsByFlat(ctx, flat.ID)
		require.NoError(t, err)
		assert.Len(t, byFlat, 2)
	})

	t.Run("credits and debts with paid filter", func(t *testing.T) {
		require.NoError(t, store.SetTransactionPaid(ctx, first.ID, true))

		credits, err := store.ListCredits(ctx, alice.ID, nil)
		require.NoError(t, err)
		require.Len(t, credits, 1)
		assert.True(t, credits[0].Paid)

		unpaid := false
		debts, err := store.ListDebts(ctx, bob.ID, &unpaid)
		require.NoError(t, err)
		assert.Empty(t, debts)

		debts, err = store.ListDebts(ctx, alice.ID, &unpaid)
		require.NoError(t, err)
		require.Len(t, debts, 1)
		assert.Equal(t, 50.0, debts[0].Amount)
	})

	t.Run("parties cannot be deleted", func(t *testing.T) {
		err := store.DeleteUser(ctx, bob.ID)
		assert.ErrorIs(t, err, storage.ErrHasLedger)

		_, err = store.GetUser(ctx, bob.ID)
		require.NoError(t, err)
		credits, err := store.ListCredits(ctx, alice.ID, nil)
		require.NoError(t, err)
		assert.Len(t, credits, 1)
		debts, err := store.ListDebts(ctx, alice.ID, nil)
		require.NoError(t, err)
		assert.Len(t, debts, 1)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := store.GetTransaction(ctx, "nope")
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.ErrorIs(t, store.SetTransactionPaid(ctx, "nope", true), storage.ErrNotFound)
	})
}

func TestWithTx(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("rolls back on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := store.WithTx(ctx, func(tx storage.Tx) error {
			user := models.NewUser("Ghost", "User", "ghost@example.com", "hash")
			if err := tx.CreateUser(ctx, user); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		_, err = store.GetUserByEmail(ctx, "ghost@example.com")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("commits on success", func(t *testing.T) {
		err := store.WithTx(ctx, func(tx storage.Tx) error {
			return tx.CreateUser(ctx, models.NewUser("Real", "User", "real@example.com", "hash"))
		})
		require.NoError(t, err)

		_, err = store.GetUserByEmail(ctx, "real@example.com")
		assert.NoError(t, err)
	})

	t.Run("reset clears everything", func(t *testing.T) {
		require.NoError(t, store.Reset(ctx))
		users, err := store.ListUsers(ctx, 0, 10)
		require.NoError(t, err)
		assert.Empty(t, users)
	})
}
