package settlement

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/flatwise/internal/models"
)

// Move is the outcome of a flat-level move-in or move-out.
type Move struct {
	// Items are the items whose user list changed, already updated in memory.
	Items []*models.Item

	// Transactions are the ledger entries staged for the move, in item order.
	Transactions []*models.Transaction
}

// MoveIn buys user into every item of flat except those whose ID is in exclude, then adds
// the user to each of those items, to the flat's members, and points user.FlatID at flat.
//
// Entries for every item are computed before any is staged, so a failing item leaves the
// ledger untouched. items must be the flat's items.
func MoveIn(ctx context.Context, ledger Ledger, flat *models.Flat, items []*models.Item, user *models.User, exclude []string, date time.Time) (*Move, error) {
	if flat.ID == "" || user.ID == "" {
		return nil, fmt.Errorf("%w: flat or user", ErrUnassignedID)
	}
	if user.FlatID != "" {
		return nil, fmt.Errorf("%w: user %s lives in flat %s", ErrAlreadyMember, user.ID, user.FlatID)
	}

	skip := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		skip[id] = true
	}

	move := &Move{}
	for _, item := range items {
		if skip[item.ID] {
			continue
		}
		txns, err := buyInEntries(item, user.ID, date)
		if err != nil {
			return nil, fmt.Errorf("item %s: %w", item.ID, err)
		}
		move.Items = append(move.Items, item)
		move.Transactions = append(move.Transactions, txns...)
	}

	if err := record(ctx, ledger, move.Transactions); err != nil {
		return nil, err
	}

	for _, item := range move.Items {
		item.AddUser(user.ID)
	}
	if !flat.HasMember(user.ID) {
		flat.Members = append(flat.Members, user.ID)
	}
	user.FlatID = flat.ID

	slog.Info("User moved in",
		"flat_id", flat.ID,
		"user_id", user.ID,
		"items", len(move.Items),
		"excluded", len(exclude),
		"entries", len(move.Transactions),
	)
	return move, nil
}

// MoveOut buys user out of every item in items they share, then removes them from those
// items and from the flat, and clears user.FlatID.
//
// Entries for every item are computed before any is staged, so a failing item leaves the
// ledger untouched.
func MoveOut(ctx context.Context, ledger Ledger, flat *models.Flat, items []*models.Item, user *models.User, date time.Time) (*Move, error) {
	if flat.ID == "" || user.ID == "" {
		return nil, fmt.Errorf("%w: flat or user", ErrUnassignedID)
	}
	if len(flat.Members) <= 1 {
		return nil, fmt.Errorf("%w: flat %s", ErrLastMember, flat.ID)
	}
	if user.FlatID == "" {
		return nil, fmt.Errorf("%w: user %s", ErrNotMember, user.ID)
	}
	if user.FlatID != flat.ID {
		return nil, fmt.Errorf("%w: user %s lives in flat %s, not %s", ErrWrongFlat, user.ID, user.FlatID, flat.ID)
	}

	move := &Move{}
	for _, item := range items {
		if !item.HasUser(user.ID) {
			continue
		}
		txns, err := buyOutEntries(item, user.ID, date)
		if err != nil {
			return nil, fmt.Errorf("item %s: %w", item.ID, err)
		}
		move.Items = append(move.Items, item)
		move.Transactions = append(move.Transactions, txns...)
	}

	if err := record(ctx, ledger, move.Transactions); err != nil {
		return nil, err
	}

	for _, item := range move.Items {
		item.RemoveUser(user.ID)
	}
	flat.RemoveMember(user.ID)
	user.FlatID = ""

	slog.Info("User moved out",
		"flat_id", flat.ID,
		"user_id", user.ID,
		"items", len(move.Items),
		"entries", len(move.Transactions),
	)
	return move, nil
}
