package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/flatwise/internal/calculator"
	"github.com/mmynk/flatwise/internal/metrics"
	"github.com/mmynk/flatwise/internal/models"
	"github.com/mmynk/flatwise/internal/settlement"
	"github.com/mmynk/flatwise/internal/storage"
)

// ItemPatch holds the fields of a partial item update. Nil fields are left unchanged.
type ItemPatch struct {
	Name               *string
	IsBill             *bool
	InitialValue       *float64
	PurchaseDate       *time.Time
	YearlyDepreciation *float64
	MinimumValue       *float64
	MinimumValuePct    *float64
	ClearMinimumValue  bool
	ClearMinimumPct    bool
}

func (p ItemPatch) apply(item *models.Item) {
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.IsBill != nil {
		item.IsBill = *p.IsBill
	}
	if p.InitialValue != nil {
		item.InitialValue = *p.InitialValue
	}
	if p.PurchaseDate != nil {
		item.PurchaseDate = models.Day(*p.PurchaseDate)
	}
	if p.YearlyDepreciation != nil {
		item.YearlyDepreciation = *p.YearlyDepreciation
	}
	if p.MinimumValue != nil {
		item.MinimumValue = p.MinimumValue
	}
	if p.ClearMinimumValue {
		item.MinimumValue = nil
	}
	if p.MinimumValuePct != nil {
		item.MinimumValuePct = p.MinimumValuePct
	}
	if p.ClearMinimumPct {
		item.MinimumValuePct = nil
	}
}

// ItemValue is an item's depreciated value on a date.
type ItemValue struct {
	ItemID string
	Date   time.Time
	Value  float64
	Share  float64 // Value split across the current users; 0 with no users
}

// ItemService manages items and per-item buy-ins and buy-outs.
type ItemService struct {
	store   storage.Store
	metrics *metrics.Metrics
}

// NewItemService creates a new ItemService with the given storage backend.
func NewItemService(store storage.Store, m *metrics.Metrics) *ItemService {
	return &ItemService{store: store, metrics: m}
}

// Create persists a new item in the actor's flat. Every current member of the flat
// starts as a user of the item.
func (s *ItemService) Create(ctx context.Context, actor *models.User, item *models.Item) (*models.Item, error) {
	if item.FlatID == "" {
		item.FlatID = actor.FlatID
	}
	item.PurchaseDate = models.Day(item.PurchaseDate)
	if err := item.Validate(); err != nil {
		return nil, err
	}

	err := s.store.WithTx(ctx, func(tx storage.Tx) error {
		flat, err := tx.GetFlat(ctx, item.FlatID)
		if err != nil {
			return err
		}
		if err := sameFlat(actor, flat.ID); err != nil {
			return err
		}
		item.ID = ""
		item.Users = append([]string(nil), flat.Members...)
		return tx.CreateItem(ctx, item)
	})
	if err != nil {
		slog.Error("CreateItem failed", "flat_id", item.FlatID, "error", err)
		return nil, err
	}

	slog.Info("Item created", "item_id", item.ID, "flat_id", item.FlatID, "users", len(item.Users))
	return item, nil
}

// Get retrieves an item the actor's flat owns.
func (s *ItemService) Get(ctx context.Context, actor *models.User, itemID string) (*models.Item, error) {
	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if err := sameFlat(actor, item.FlatID); err != nil {
		return nil, err
	}
	return item, nil
}

// List returns a page of items.
func (s *ItemService) List(ctx context.Context, offset, limit int) ([]*models.Item, error) {
	offset, limit = page(offset, limit)
	return s.store.ListItems(ctx, offset, limit)
}

// Update applies patch to an item and revalidates it.
func (s *ItemService) Update(ctx context.Context, actor *models.User, itemID string, patch ItemPatch) (*models.Item, error) {
	var item *models.Item
	err := s.store.WithTx(ctx, func(tx storage.Tx) error {
		var err error
		if item, err = tx.GetItem(ctx, itemID); err != nil {
			return err
		}
		if err := sameFlat(actor, item.FlatID); err != nil {
			return err
		}
		patch.apply(item)
		if err := item.Validate(); err != nil {
			return err
		}
		return tx.UpdateItem(ctx, item)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Item updated", "item_id", item.ID)
	return item, nil
}

// Delete removes an item with its shares and ledger entries.
func (s *ItemService) Delete(ctx context.Context, actor *models.User, itemID string) error {
	if _, err := s.Get(ctx, actor, itemID); err != nil {
		return err
	}
	if err := s.store.DeleteItem(ctx, itemID); err != nil {
		return err
	}
	slog.Info("Item deleted", "item_id", itemID)
	return nil
}

// AddUser buys userID into the item on date and adds them to its users.
func (s *ItemService) AddUser(ctx context.Context, actor *models.User, itemID, userID string, date time.Time) (*models.Item, []*models.Transaction, error) {
	date = day(date)

	var (
		item *models.Item
		txns []*models.Transaction
	)
	err := s.store.WithTx(ctx, func(tx storage.Tx) error {
		var err error
		if item, err = s.loadForChange(ctx, tx, actor, itemID, userID); err != nil {
			return err
		}
		if txns, err = settlement.BuyIn(ctx, tx, item, userID, date); err != nil {
			return err
		}
		item.AddUser(userID)
		return tx.SetItemUsers(ctx, item.ID, item.Users)
	})
	if err != nil {
		slog.Warn("AddUser failed", "item_id", itemID, "user_id", userID, "error", err)
		return nil, nil, err
	}

	s.metrics.ObserveSettlement(metrics.EventBuyIn, amounts(txns)...)
	return item, txns, nil
}

// RemoveUser buys userID out of the item on date and removes them from its users.
func (s *ItemService) RemoveUser(ctx context.Context, actor *models.User, itemID, userID string, date time.Time) (*models.Item, []*models.Transaction, error) {
	date = day(date)

	var (
		item *models.Item
		txns []*models.Transaction
	)
	err := s.store.WithTx(ctx, func(tx storage.Tx) error {
		var err error
		if item, err = s.loadForChange(ctx, tx, actor, itemID, userID); err != nil {
			return err
		}
		if txns, err = settlement.BuyOut(ctx, tx, item, userID, date); err != nil {
			return err
		}
		item.RemoveUser(userID)
		return tx.SetItemUsers(ctx, item.ID, item.Users)
	})
	if err != nil {
		slog.Warn("RemoveUser failed", "item_id", itemID, "user_id", userID, "error", err)
		return nil, nil, err
	}

	s.metrics.ObserveSettlement(metrics.EventBuyOut, amounts(txns)...)
	return item, txns, nil
}

// loadForChange loads the item and checks that both the actor and userID live in its flat.
func (s *ItemService) loadForChange(ctx context.Context, tx storage.Tx, actor *models.User, itemID, userID string) (*models.Item, error) {
	item, err := tx.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if err := sameFlat(actor, item.FlatID); err != nil {
		return nil, err
	}
	user, err := tx.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.FlatID != item.FlatID {
		return nil, fmt.Errorf("%w: user %s does not live in flat %s", settlement.ErrWrongFlat, user.ID, item.FlatID)
	}
	return item, nil
}

// Transactions returns the item and its ledger entries.
func (s *ItemService) Transactions(ctx context.Context, actor *models.User, itemID string) (*models.Item, []*models.Transaction, error) {
	item, err := s.Get(ctx, actor, itemID)
	if err != nil {
		return nil, nil, err
	}
	txns, err := s.store.ListTransactionsByItem(ctx, item.ID)
	if err != nil {
		return nil, nil, err
	}
	return item, txns, nil
}

// Value returns the item's depreciated value on date (today when zero).
func (s *ItemService) Value(ctx context.Context, actor *models.User, itemID string, date time.Time) (*ItemValue, error) {
	item, err := s.Get(ctx, actor, itemID)
	if err != nil {
		return nil, err
	}
	date = day(date)
	v, err := calculator.Depreciate(item, date)
	if err != nil {
		return nil, err
	}
	out := &ItemValue{ItemID: item.ID, Date: date, Value: v}
	if n := len(item.Users); n > 0 {
		out.Share = v / float64(n)
	}
	return out, nil
}
