package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/flatwise/internal/models"
)

// centPlaces is the rounding applied to every reported amount.
const centPlaces = 2

// MemberBalance represents the balance information for one flat member.
type MemberBalance struct {
	UserID     string
	NetBalance decimal.Decimal // Positive = owed money, Negative = owes money
	TotalOwed  decimal.Decimal // Unpaid amounts others owe this user
	TotalOwing decimal.Decimal // Unpaid amounts this user owes others
}

// DebtEdge represents a debt from one person to another.
type DebtEdge struct {
	From   string // Person who owes
	To     string // Person who is owed
	Amount decimal.Decimal
}

// CounterpartyBalance is the net position between a user and one other user.
type CounterpartyBalance struct {
	UserID string
	Net    decimal.Decimal // Positive = the counterparty owes the user
}

// CalculateBalances aggregates unpaid ledger entries into per-member balances and a
// simplified list of payments that would settle everything.
//
// Algorithm:
//   - For each unpaid entry: creditor is owed +amount, debtor owes amount
//   - Aggregate: net_balance = total_owed − total_owing, rounded to cents
//   - Debt edges: greedy matching of the largest debtor with the largest creditor
//
// Paid entries are ignored. Sums are taken in decimal so float shares do not drift.
func CalculateBalances(txns []*models.Transaction) ([]MemberBalance, []DebtEdge) {
	balances := make(map[string]*MemberBalance)
	get := func(id string) *MemberBalance {
		b, ok := balances[id]
		if !ok {
			b = &MemberBalance{UserID: id}
			balances[id] = b
		}
		return b
	}

	for _, t := range txns {
		if t.Paid {
			continue
		}
		amount := decimal.NewFromFloat(t.Amount)
		creditor := get(t.CreditorID)
		creditor.TotalOwed = creditor.TotalOwed.Add(amount)
		debtor := get(t.DebtorID)
		debtor.TotalOwing = debtor.TotalOwing.Add(amount)
	}

	memberBalances := make([]MemberBalance, 0, len(balances))
	for _, b := range balances {
		b.TotalOwed = b.TotalOwed.Round(centPlaces)
		b.TotalOwing = b.TotalOwing.Round(centPlaces)
		b.NetBalance = b.TotalOwed.Sub(b.TotalOwing)
		memberBalances = append(memberBalances, *b)
	}
	sort.Slice(memberBalances, func(i, j int) bool {
		return memberBalances[i].UserID < memberBalances[j].UserID
	})

	return memberBalances, simplifyDebts(memberBalances)
}

// simplifyDebts matches debtors with creditors to minimize the number of payments.
// Both sides are visited largest first; ties break on user ID so output is stable.
func simplifyDebts(balances []MemberBalance) []DebtEdge {
	type position struct {
		id     string
		amount decimal.Decimal
	}
	var creditors, debtors []position
	for _, b := range balances {
		switch b.NetBalance.Sign() {
		case 1:
			creditors = append(creditors, position{b.UserID, b.NetBalance})
		case -1:
			debtors = append(debtors, position{b.UserID, b.NetBalance.Neg()})
		}
	}
	byAmount := func(p []position) func(i, j int) bool {
		return func(i, j int) bool {
			if c := p[i].amount.Cmp(p[j].amount); c != 0 {
				return c > 0
			}
			return p[i].id < p[j].id
		}
	}
	sort.Slice(creditors, byAmount(creditors))
	sort.Slice(debtors, byAmount(debtors))

	var edges []DebtEdge
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := decimal.Min(debtors[i].amount, creditors[j].amount)
		if amount.IsPositive() {
			edges = append(edges, DebtEdge{From: debtors[i].id, To: creditors[j].id, Amount: amount})
		}

		debtors[i].amount = debtors[i].amount.Sub(amount)
		creditors[j].amount = creditors[j].amount.Sub(amount)

		if !debtors[i].amount.IsPositive() {
			i++
		}
		if !creditors[j].amount.IsPositive() {
			j++
		}
	}
	return edges
}

// CalculateUserBalance nets the unpaid entries touching userID per counterparty.
// Counterparties whose net rounds to zero are omitted; output is sorted by user ID.
func CalculateUserBalance(userID string, txns []*models.Transaction) (MemberBalance, []CounterpartyBalance) {
	total := MemberBalance{UserID: userID}
	nets := make(map[string]decimal.Decimal)

	for _, t := range txns {
		if t.Paid || !t.Involves(userID) || t.CreditorID == t.DebtorID {
			continue
		}
		amount := decimal.NewFromFloat(t.Amount)
		if t.CreditorID == userID {
			total.TotalOwed = total.TotalOwed.Add(amount)
			nets[t.DebtorID] = nets[t.DebtorID].Add(amount)
		} else {
			total.TotalOwing = total.TotalOwing.Add(amount)
			nets[t.CreditorID] = nets[t.CreditorID].Sub(amount)
		}
	}

	total.TotalOwed = total.TotalOwed.Round(centPlaces)
	total.TotalOwing = total.TotalOwing.Round(centPlaces)
	total.NetBalance = total.TotalOwed.Sub(total.TotalOwing)

	var counterparties []CounterpartyBalance
	for id, net := range nets {
		net = net.Round(centPlaces)
		if net.IsZero() {
			continue
		}
		counterparties = append(counterparties, CounterpartyBalance{UserID: id, Net: net})
	}
	sort.Slice(counterparties, func(i, j int) bool {
		return counterparties[i].UserID < counterparties[j].UserID
	})
	return total, counterparties
}
