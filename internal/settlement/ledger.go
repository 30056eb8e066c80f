package settlement

import (
	"context"
	"fmt"

	"github.com/mmynk/flatwise/internal/models"
)

// Ledger stages ledger entries inside the caller's open unit of work.
// Implementations assign IDs and timestamps; nothing is visible until the caller commits.
type Ledger interface {
	AddTransaction(ctx context.Context, t *models.Transaction) error
}

// record stages every entry in order and stops at the first failure.
// The caller discards the whole unit of work on error.
func record(ctx context.Context, ledger Ledger, txns []*models.Transaction) error {
	for _, t := range txns {
		if err := ledger.AddTransaction(ctx, t); err != nil {
			return fmt.Errorf("failed to record transaction: %w", err)
		}
	}
	return nil
}

// checkIDs fails with ErrUnassignedID if the item, the user or any item user has no ID.
func checkIDs(item *models.Item, userID string) error {
	if item.ID == "" {
		return fmt.Errorf("%w: item %q", ErrUnassignedID, item.Name)
	}
	if userID == "" {
		return fmt.Errorf("%w: user", ErrUnassignedID)
	}
	for _, id := range item.Users {
		if id == "" {
			return fmt.Errorf("%w: user of item %s", ErrUnassignedID, item.ID)
		}
	}
	return nil
}
