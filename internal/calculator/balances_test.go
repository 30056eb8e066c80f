package calculator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/flatwise/internal/models"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func entry(creditor, debtor string, amount float64, paid bool) *models.Transaction {
	return &models.Transaction{CreditorID: creditor, DebtorID: debtor, ItemID: "tv", Amount: amount, Paid: paid}
}

func TestCalculateBalances(t *testing.T) {
	t.Run("buy-in entries", func(t *testing.T) {
		// Dave bought into a 900 item shared by three: owes 75 to each.
		txns := []*models.Transaction{
			entry("alice", "dave", 75, false),
			entry("bob", "dave", 75, false),
			entry("carol", "dave", 75, false),
		}

		balances, edges := CalculateBalances(txns)
		require.Len(t, balances, 4)

		byID := make(map[string]MemberBalance)
		for _, b := range balances {
			byID[b.UserID] = b
		}
		assert.True(t, byID["dave"].NetBalance.Equal(d("-225")))
		assert.True(t, byID["dave"].TotalOwing.Equal(d("225")))
		assert.True(t, byID["alice"].NetBalance.Equal(d("75")))

		require.Len(t, edges, 3)
		for _, e := range edges {
			assert.Equal(t, "dave", e.From)
			assert.True(t, e.Amount.Equal(d("75")))
		}
	})

	t.Run("paid entries are ignored", func(t *testing.T) {
		balances, edges := CalculateBalances([]*models.Transaction{
			entry("alice", "bob", 10, true),
		})
		assert.Empty(t, balances)
		assert.Empty(t, edges)
	})

	t.Run("opposite debts cancel", func(t *testing.T) {
		balances, edges := CalculateBalances([]*models.Transaction{
			entry("alice", "bob", 40, false),
			entry("bob", "alice", 40, false),
		})
		require.Len(t, balances, 2)
		for _, b := range balances {
			assert.True(t, b.NetBalance.IsZero())
		}
		assert.Empty(t, edges)
	})

	t.Run("thirds round to cents", func(t *testing.T) {
		third := 100.0 / 3
		balances, edges := CalculateBalances([]*models.Transaction{
			entry("alice", "bob", third, false),
			entry("alice", "carol", third, false),
			entry("alice", "dave", third, false),
		})
		require.Len(t, balances, 4)
		assert.Equal(t, "alice", balances[0].UserID)
		assert.True(t, balances[0].TotalOwed.Equal(d("100")), "got %s", balances[0].TotalOwed)

		require.Len(t, edges, 3)
		assert.Equal(t, "bob", edges[0].From, "ties break on user ID")
		assert.True(t, edges[0].Amount.Equal(d("33.33")))
	})

	t.Run("chain simplifies", func(t *testing.T) {
		// bob owes alice 50, carol owes bob 50: carol can pay alice directly.
		_, edges := CalculateBalances([]*models.Transaction{
			entry("alice", "bob", 50, false),
			entry("bob", "carol", 50, false),
		})
		require.Len(t, edges, 1)
		assert.Equal(t, DebtEdge{From: "carol", To: "alice", Amount: edges[0].Amount}, edges[0])
		assert.True(t, edges[0].Amount.Equal(d("50")))
	})
}

func TestCalculateUserBalance(t *testing.T) {
	txns := []*models.Transaction{
		entry("alice", "bob", 75, false),
		entry("bob", "alice", 25, false),
		entry("alice", "carol", 10, false),
		entry("carol", "alice", 10, false),
		entry("alice", "bob", 1000, true),
		entry("bob", "carol", 5, false),
	}

	total, counterparties := CalculateUserBalance("alice", txns)

	assert.True(t, total.TotalOwed.Equal(d("85")))
	assert.True(t, total.TotalOwing.Equal(d("35")))
	assert.True(t, total.NetBalance.Equal(d("50")))

	require.Len(t, counterparties, 1, "carol nets to zero")
	assert.Equal(t, "bob", counterparties[0].UserID)
	assert.True(t, counterparties[0].Net.Equal(d("50")))
}
