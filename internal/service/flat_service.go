package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mmynk/flatwise/internal/calculator"
	"github.com/mmynk/flatwise/internal/metrics"
	"github.com/mmynk/flatwise/internal/models"
	"github.com/mmynk/flatwise/internal/settlement"
	"github.com/mmynk/flatwise/internal/storage"
)

// MoveResult is the committed outcome of a move-in or move-out.
type MoveResult struct {
	User         *models.User
	Flat         *models.Flat
	Items        []*models.Item
	Transactions []*models.Transaction
}

// FlatBalances is the aggregated unpaid ledger of a flat.
type FlatBalances struct {
	Members []calculator.MemberBalance
	Debts   []calculator.DebtEdge
}

// FlatService manages flats and membership changes.
type FlatService struct {
	store   storage.Store
	metrics *metrics.Metrics
}

// NewFlatService creates a new FlatService with the given storage backend.
func NewFlatService(store storage.Store, m *metrics.Metrics) *FlatService {
	return &FlatService{store: store, metrics: m}
}

// Create creates a flat with firstUserID as its only member.
// An empty firstUserID means the actor. Only the actor may be placed in a new flat.
func (s *FlatService) Create(ctx context.Context, actor *models.User, name, firstUserID string) (*models.Flat, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: flat name is required", ErrInvalidInput)
	}
	if firstUserID == "" {
		firstUserID = actor.ID
	}
	if err := isSelf(actor, firstUserID); err != nil {
		return nil, err
	}

	flat := &models.Flat{Name: name, Members: []string{firstUserID}}
	err := s.store.WithTx(ctx, func(tx storage.Tx) error {
		user, err := tx.GetUser(ctx, firstUserID)
		if err != nil {
			return err
		}
		if user.FlatID != "" {
			return fmt.Errorf("%w: user %s lives in flat %s", settlement.ErrAlreadyMember, user.ID, user.FlatID)
		}
		return tx.CreateFlat(ctx, flat)
	})
	if err != nil {
		slog.Error("CreateFlat failed", "error", err)
		return nil, err
	}

	actor.FlatID = flat.ID
	slog.Info("Flat created", "flat_id", flat.ID, "first_user_id", firstUserID)
	return flat, nil
}

// Get retrieves a flat with its members.
func (s *FlatService) Get(ctx context.Context, flatID string) (*models.Flat, error) {
	return s.store.GetFlat(ctx, flatID)
}

// List returns a page of flats.
func (s *FlatService) List(ctx context.Context, offset, limit int) ([]*models.Flat, error) {
	offset, limit = page(offset, limit)
	return s.store.ListFlats(ctx, offset, limit)
}

// Rename changes a flat's name. Only members may rename it.
func (s *FlatService) Rename(ctx context.Context, actor *models.User, flatID, name string) (*models.Flat, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: flat name is required", ErrInvalidInput)
	}
	var flat *models.Flat
	err := s.store.WithTx(ctx, func(tx storage.Tx) error {
		var err error
		if flat, err = tx.GetFlat(ctx, flatID); err != nil {
			return err
		}
		if err := sameFlat(actor, flat.ID); err != nil {
			return err
		}
		flat.Name = name
		return tx.UpdateFlat(ctx, flat)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Flat renamed", "flat_id", flat.ID, "name", name)
	return flat, nil
}

// Delete removes a flat and its items. Only members may delete it.
func (s *FlatService) Delete(ctx context.Context, actor *models.User, flatID string) error {
	if _, err := s.store.GetFlat(ctx, flatID); err != nil {
		return err
	}
	if err := sameFlat(actor, flatID); err != nil {
		return err
	}
	if err := s.store.DeleteFlat(ctx, flatID); err != nil {
		return err
	}
	slog.Info("Flat deleted", "flat_id", flatID)
	return nil
}

// MoveIn moves userID into the flat and buys them into every flat item not in exclude.
// The actor must be a member of the flat or the user moving in.
func (s *FlatService) MoveIn(ctx context.Context, actor *models.User, flatID, userID string, exclude []string, date time.Time) (*MoveResult, error) {
	date = day(date)

	var result *MoveResult
	err := s.store.WithTx(ctx, func(tx storage.Tx) error {
		flat, err := tx.GetFlat(ctx, flatID)
		if err != nil {
			return err
		}
		if actor.ID != userID {
			if err := sameFlat(actor, flat.ID); err != nil {
				return err
			}
		}
		user, err := tx.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		items, err := tx.ListItemsByFlat(ctx, flat.ID)
		if err != nil {
			return err
		}

		move, err := settlement.MoveIn(ctx, tx, flat, items, user, exclude, date)
		if err != nil {
			return err
		}
		for _, item := range move.Items {
			if err := tx.SetItemUsers(ctx, item.ID, item.Users); err != nil {
				return err
			}
		}
		if err := tx.SetUserFlat(ctx, user.ID, flat.ID); err != nil {
			return err
		}

		result = &MoveResult{User: user, Flat: flat, Items: move.Items, Transactions: move.Transactions}
		return nil
	})
	if err != nil {
		slog.Warn("MoveIn failed", "flat_id", flatID, "user_id", userID, "error", err)
		return nil, err
	}

	if actor.ID == userID {
		actor.FlatID = result.Flat.ID
	}
	s.metrics.ObserveSettlement(metrics.EventMoveIn, amounts(result.Transactions)...)
	return result, nil
}

// MoveOut buys userID out of every item they share and removes them from the flat.
// The actor must be a member of the flat.
func (s *FlatService) MoveOut(ctx context.Context, actor *models.User, flatID, userID string, date time.Time) (*MoveResult, error) {
	date = day(date)

	var result *MoveResult
	err := s.store.WithTx(ctx, func(tx storage.Tx) error {
		flat, err := tx.GetFlat(ctx, flatID)
		if err != nil {
			return err
		}
		if err := sameFlat(actor, flat.ID); err != nil {
			return err
		}
		user, err := tx.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		items, err := tx.ListItemsByFlat(ctx, flat.ID)
		if err != nil {
			return err
		}

		move, err := settlement.MoveOut(ctx, tx, flat, items, user, date)
		if err != nil {
			return err
		}
		for _, item := range move.Items {
			if err := tx.SetItemUsers(ctx, item.ID, item.Users); err != nil {
				return err
			}
		}
		if err := tx.SetUserFlat(ctx, user.ID, ""); err != nil {
			return err
		}

		result = &MoveResult{User: user, Flat: flat, Items: move.Items, Transactions: move.Transactions}
		return nil
	})
	if err != nil {
		slog.Warn("MoveOut failed", "flat_id", flatID, "user_id", userID, "error", err)
		return nil, err
	}

	if actor.ID == userID {
		actor.FlatID = ""
	}
	s.metrics.ObserveSettlement(metrics.EventMoveOut, amounts(result.Transactions)...)
	return result, nil
}

// Balances aggregates the unpaid ledger entries on the flat's items.
func (s *FlatService) Balances(ctx context.Context, actor *models.User, flatID string) (*FlatBalances, error) {
	if _, err := s.store.GetFlat(ctx, flatID); err != nil {
		return nil, err
	}
	if err := sameFlat(actor, flatID); err != nil {
		return nil, err
	}
	txns, err := s.store.ListTransactionsByFlat(ctx, flatID)
	if err != nil {
		return nil, err
	}
	members, debts := calculator.CalculateBalances(txns)
	return &FlatBalances{Members: members, Debts: debts}, nil
}
