package sqlite

import (
	"context"
	"fmt"

	"github.com/mmynk/flatwise/internal/models"
)

const transactionColumns = `id, creditor_id, debtor_id, item_id, amount, paid, created_at, updated_at`

func scanTransaction(row scanner) (*models.Transaction, error) {
	t := &models.Transaction{}
	err := row.Scan(
		&t.ID,
		&t.CreditorID,
		&t.DebtorID,
		&t.ItemID,
		&t.Amount,
		&t.Paid,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// AddTransaction records a ledger entry.
func (q *queries) AddTransaction(ctx context.Context, t *models.Transaction) error {
	if t.ID == "" {
		t.ID = newID()
	}
	if t.CreatedAt == 0 {
		t.CreatedAt = now()
	}
	t.UpdatedAt = t.CreatedAt

	_, err := q.db.ExecContext(ctx,
		`INSERT INTO transactions (`+transactionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.CreditorID, t.DebtorID, t.ItemID, t.Amount, t.Paid, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// GetTransaction retrieves a ledger entry by ID.
func (q *queries) GetTransaction(ctx context.Context, txnID string) (*models.Transaction, error) {
	t, err := scanTransaction(q.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, txnID))
	if err != nil {
		return nil, notFound(err, "transaction", txnID)
	}
	return t, nil
}

// ListTransactionsByItem returns the item's entries in the order they were recorded.
func (q *queries) ListTransactionsByItem(ctx context.Context, itemID string) ([]*models.Transaction, error) {
	return q.listTransactions(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE item_id = ? ORDER BY created_at, rowid`,
		itemID)
}

// ListTransactionsByFlat returns every entry on the flat's items.
func (q *queries) ListTransactionsByFlat(ctx context.Context, flatID string) ([]*models.Transaction, error) {
	return q.listTransactions(ctx,
		`SELECT t.id, t.creditor_id, t.debtor_id, t.item_id, t.amount, t.paid, t.created_at, t.updated_at
		 FROM transactions t
		 JOIN items i ON i.id = t.item_id
		 WHERE i.flat_id = ?
		 ORDER BY t.created_at, t.rowid`,
		flatID)
}

// ListCredits returns entries owed to userID.
func (q *queries) ListCredits(ctx context.Context, userID string, paid *bool) ([]*models.Transaction, error) {
	return q.listByParty(ctx, "creditor_id", userID, paid)
}

// ListDebts returns entries owed by userID.
func (q *queries) ListDebts(ctx context.Context, userID string, paid *bool) ([]*models.Transaction, error) {
	return q.listByParty(ctx, "debtor_id", userID, paid)
}

// listByParty filters on column, which is always one of the two party columns.
func (q *queries) listByParty(ctx context.Context, column, userID string, paid *bool) ([]*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE ` + column + ` = ?`
	args := []any{userID}
	if paid != nil {
		query += ` AND paid = ?`
		args = append(args, *paid)
	}
	query += ` ORDER BY created_at, rowid`
	return q.listTransactions(ctx, query, args...)
}

func (q *queries) listTransactions(ctx context.Context, query string, args ...any) ([]*models.Transaction, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txns []*models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return txns, nil
}

// SetTransactionPaid flips the paid flag of an entry.
func (q *queries) SetTransactionPaid(ctx context.Context, txnID string, paid bool) error {
	res, err := q.db.ExecContext(ctx,
		"UPDATE transactions SET paid = ?, updated_at = ? WHERE id = ?",
		paid, now(), txnID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	return checkAffected(res, "transaction", txnID)
}
