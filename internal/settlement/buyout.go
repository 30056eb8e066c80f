package settlement

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/flatwise/internal/calculator"
	"github.com/mmynk/flatwise/internal/models"
)

// BuyOut records what the remaining users of item owe userID for leaving it on date.
//
// The leaver's share v/N is split equally across the N−1 users who stay, so each of them
// owes the leaver (v/N)/(N−1). The engine does not remove userID from item.Users.
func BuyOut(ctx context.Context, ledger Ledger, item *models.Item, userID string, date time.Time) ([]*models.Transaction, error) {
	txns, err := buyOutEntries(item, userID, date)
	if err != nil {
		return nil, err
	}
	if err := record(ctx, ledger, txns); err != nil {
		return nil, err
	}

	slog.Debug("Buy-out recorded",
		"item_id", item.ID,
		"user_id", userID,
		"date", models.FormatDate(date),
		"entries", len(txns),
	)
	return txns, nil
}

func buyOutEntries(item *models.Item, userID string, date time.Time) ([]*models.Transaction, error) {
	n := len(item.Users)
	if n <= 1 {
		return nil, fmt.Errorf("%w remaining: item %s has %d", ErrInsufficientUsers, item.ID, n)
	}
	if err := checkIDs(item, userID); err != nil {
		return nil, err
	}
	if !item.HasUser(userID) {
		return nil, fmt.Errorf("%w: user %s, item %s", ErrNotItemUser, userID, item.ID)
	}

	value, err := calculator.Depreciate(item, date)
	if err != nil {
		return nil, err
	}
	share := value / float64(n)
	amount := share / float64(n-1)

	txns := make([]*models.Transaction, 0, n-1)
	for _, remaining := range item.Users {
		if remaining == userID {
			continue
		}
		txns = append(txns, &models.Transaction{
			CreditorID: userID,
			DebtorID:   remaining,
			ItemID:     item.ID,
			Amount:     amount,
		})
	}
	return txns, nil
}
