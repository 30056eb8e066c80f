package models

// Transaction is a ledger entry: the debtor owes the creditor Amount because of an
// event on Item (a buy-in, a buy-out, or a manual entry).
//
// Entries are immutable once recorded except for Paid, which only the pay action flips.
type Transaction struct {
	// ID is the unique identifier for the entry (UUID format).
	ID string

	// CreditorID is the user who is owed money.
	CreditorID string

	// DebtorID is the user who owes money.
	DebtorID string

	// ItemID is the item whose membership change produced this entry.
	ItemID string

	// Amount is the owed amount. Always positive for engine-generated entries.
	Amount float64

	// Paid reports whether the debtor has settled the entry.
	Paid bool

	// CreatedAt is the Unix timestamp when the entry was recorded.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last change (only Paid changes).
	UpdatedAt int64
}

// Involves reports whether userID is the creditor or the debtor of the entry.
func (t *Transaction) Involves(userID string) bool {
	return t.CreditorID == userID || t.DebtorID == userID
}
