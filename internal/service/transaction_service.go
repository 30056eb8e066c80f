package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/mmynk/flatwise/internal/metrics"
	"github.com/mmynk/flatwise/internal/models"
	"github.com/mmynk/flatwise/internal/storage"
)

// TransactionService records manual ledger entries and the pay action.
type TransactionService struct {
	store   storage.Store
	metrics *metrics.Metrics
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(store storage.Store, m *metrics.Metrics) *TransactionService {
	return &TransactionService{store: store, metrics: m}
}

// Create records a manual entry. The actor must be one of the two parties and the item
// must belong to the actor's flat.
func (s *TransactionService) Create(ctx context.Context, actor *models.User, t *models.Transaction) (*models.Transaction, error) {
	if t.CreditorID == "" || t.DebtorID == "" || t.ItemID == "" {
		return nil, fmt.Errorf("%w: creditor, debtor and item are required", ErrInvalidInput)
	}
	if t.CreditorID == t.DebtorID {
		return nil, fmt.Errorf("%w: creditor and debtor must differ", ErrInvalidInput)
	}
	if !(t.Amount > 0) || math.IsInf(t.Amount, 0) {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	if !t.Involves(actor.ID) {
		return nil, fmt.Errorf("%w: user %s is not a party to the entry", ErrForbidden, actor.ID)
	}

	entry := &models.Transaction{
		CreditorID: t.CreditorID,
		DebtorID:   t.DebtorID,
		ItemID:     t.ItemID,
		Amount:     t.Amount,
	}
	err := s.store.WithTx(ctx, func(tx storage.Tx) error {
		item, err := tx.GetItem(ctx, entry.ItemID)
		if err != nil {
			return err
		}
		if err := sameFlat(actor, item.FlatID); err != nil {
			return err
		}
		for _, id := range []string{entry.CreditorID, entry.DebtorID} {
			if _, err := tx.GetUser(ctx, id); err != nil {
				return err
			}
		}
		return tx.AddTransaction(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Manual transaction recorded", "transaction_id", entry.ID, "item_id", entry.ItemID, "amount", entry.Amount)
	s.metrics.ObserveSettlement(metrics.EventManual, entry.Amount)
	return entry, nil
}

// MarkPaid sets the paid flag of an entry. Only the creditor may confirm or revoke payment.
func (s *TransactionService) MarkPaid(ctx context.Context, actor *models.User, txnID string, paid bool) (*models.Transaction, error) {
	var t *models.Transaction
	err := s.store.WithTx(ctx, func(tx storage.Tx) error {
		var err error
		if t, err = tx.GetTransaction(ctx, txnID); err != nil {
			return err
		}
		if t.CreditorID != actor.ID {
			return fmt.Errorf("%w: only creditor %s may mark transaction %s", ErrForbidden, t.CreditorID, t.ID)
		}
		if err := tx.SetTransactionPaid(ctx, t.ID, paid); err != nil {
			return err
		}
		t, err = tx.GetTransaction(ctx, t.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Transaction paid flag set", "transaction_id", t.ID, "paid", paid)
	return t, nil
}
