package settlement

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/flatwise/internal/calculator"
	"github.com/mmynk/flatwise/internal/models"
)

// BuyIn records what userID owes the current users of item for joining it on date.
//
// Each of the N existing users is credited v/N − v/(N+1): the share they no longer carry
// once the value is spread across N+1 people. The engine does not add userID to item.Users.
func BuyIn(ctx context.Context, ledger Ledger, item *models.Item, userID string, date time.Time) ([]*models.Transaction, error) {
	txns, err := buyInEntries(item, userID, date)
	if err != nil {
		return nil, err
	}
	if err := record(ctx, ledger, txns); err != nil {
		return nil, err
	}

	slog.Debug("Buy-in recorded",
		"item_id", item.ID,
		"user_id", userID,
		"date", models.FormatDate(date),
		"entries", len(txns),
	)
	return txns, nil
}

func buyInEntries(item *models.Item, userID string, date time.Time) ([]*models.Transaction, error) {
	n := len(item.Users)
	if n == 0 {
		return nil, fmt.Errorf("%w: item %s has none", ErrInsufficientUsers, item.ID)
	}
	if err := checkIDs(item, userID); err != nil {
		return nil, err
	}
	if item.HasUser(userID) {
		return nil, fmt.Errorf("%w: user %s, item %s", ErrAlreadyItemUser, userID, item.ID)
	}

	value, err := calculator.Depreciate(item, date)
	if err != nil {
		return nil, err
	}
	amount := value/float64(n) - value/float64(n+1)

	txns := make([]*models.Transaction, 0, n)
	for _, existing := range item.Users {
		txns = append(txns, &models.Transaction{
			CreditorID: existing,
			DebtorID:   userID,
			ItemID:     item.ID,
			Amount:     amount,
		})
	}
	return txns, nil
}
