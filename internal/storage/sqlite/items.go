package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mmynk/flatwise/internal/models"
)

const itemColumns = `id, flat_id, name, is_bill, initial_value, purchase_date, yearly_depreciation,
	minimum_value, minimum_value_pct, created_at, updated_at`

func scanItem(row scanner) (*models.Item, error) {
	item := &models.Item{}
	var (
		purchaseDate    string
		minimumValue    sql.NullFloat64
		minimumValuePct sql.NullFloat64
	)
	err := row.Scan(
		&item.ID,
		&item.FlatID,
		&item.Name,
		&item.IsBill,
		&item.InitialValue,
		&purchaseDate,
		&item.YearlyDepreciation,
		&minimumValue,
		&minimumValuePct,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if item.PurchaseDate, err = models.ParseDate(purchaseDate); err != nil {
		return nil, fmt.Errorf("item %s purchase date: %w", item.ID, err)
	}
	item.MinimumValue = floatPtr(minimumValue)
	item.MinimumValuePct = floatPtr(minimumValuePct)
	return item, nil
}

// CreateItem persists a new item and its users.
func (q *queries) CreateItem(ctx context.Context, item *models.Item) error {
	if item.ID == "" {
		item.ID = newID()
	}
	if item.CreatedAt == 0 {
		item.CreatedAt = now()
	}
	item.UpdatedAt = item.CreatedAt

	_, err := q.db.ExecContext(ctx,
		`INSERT INTO items (`+itemColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID,
		item.FlatID,
		item.Name,
		item.IsBill,
		item.InitialValue,
		models.FormatDate(item.PurchaseDate),
		item.YearlyDepreciation,
		nullFloat(item.MinimumValue),
		nullFloat(item.MinimumValuePct),
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert item: %w", err)
	}

	if err := q.insertItemUsers(ctx, item.ID, item.Users); err != nil {
		return err
	}
	return nil
}

// GetItem retrieves an item by ID, including its users.
func (q *queries) GetItem(ctx context.Context, itemID string) (*models.Item, error) {
	item, err := scanItem(q.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, itemID))
	if err != nil {
		return nil, notFound(err, "item", itemID)
	}
	if item.Users, err = q.itemUsers(ctx, item.ID); err != nil {
		return nil, err
	}
	return item, nil
}

// ListItems returns a page of items.
func (q *queries) ListItems(ctx context.Context, offset, limit int) ([]*models.Item, error) {
	return q.listItems(ctx,
		`SELECT `+itemColumns+` FROM items ORDER BY created_at, id LIMIT ? OFFSET ?`,
		limit, offset)
}

// ListItemsByFlat returns every item owned by the flat.
func (q *queries) ListItemsByFlat(ctx context.Context, flatID string) ([]*models.Item, error) {
	return q.listItems(ctx,
		`SELECT `+itemColumns+` FROM items WHERE flat_id = ? ORDER BY created_at, id`,
		flatID)
}

// ListItemsByUser returns every item the user currently shares.
func (q *queries) ListItemsByUser(ctx context.Context, userID string) ([]*models.Item, error) {
	return q.listItems(ctx,
		`SELECT `+itemColumns+` FROM items
		 WHERE id IN (SELECT item_id FROM item_users WHERE user_id = ?)
		 ORDER BY created_at, id`,
		userID)
}

func (q *queries) listItems(ctx context.Context, query string, args ...any) ([]*models.Item, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	var items []*models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}

	for _, item := range items {
		if item.Users, err = q.itemUsers(ctx, item.ID); err != nil {
			return nil, err
		}
	}
	return items, nil
}

// UpdateItem writes the item's descriptive and purchase fields.
func (q *queries) UpdateItem(ctx context.Context, item *models.Item) error {
	item.UpdatedAt = now()
	res, err := q.db.ExecContext(ctx,
		`UPDATE items SET name = ?, is_bill = ?, initial_value = ?, purchase_date = ?,
		 yearly_depreciation = ?, minimum_value = ?, minimum_value_pct = ?, updated_at = ?
		 WHERE id = ?`,
		item.Name,
		item.IsBill,
		item.InitialValue,
		models.FormatDate(item.PurchaseDate),
		item.YearlyDepreciation,
		nullFloat(item.MinimumValue),
		nullFloat(item.MinimumValuePct),
		item.UpdatedAt,
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	return checkAffected(res, "item", item.ID)
}

// DeleteItem removes an item, its shares and its ledger entries.
func (q *queries) DeleteItem(ctx context.Context, itemID string) error {
	res, err := q.db.ExecContext(ctx, "DELETE FROM items WHERE id = ?", itemID)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return checkAffected(res, "item", itemID)
}

// SetItemUsers replaces the item's users with userIDs, in order.
func (q *queries) SetItemUsers(ctx context.Context, itemID string, userIDs []string) error {
	if _, err := q.db.ExecContext(ctx, "DELETE FROM item_users WHERE item_id = ?", itemID); err != nil {
		return fmt.Errorf("failed to clear item users: %w", err)
	}
	if err := q.insertItemUsers(ctx, itemID, userIDs); err != nil {
		return err
	}
	if _, err := q.db.ExecContext(ctx, "UPDATE items SET updated_at = ? WHERE id = ?", now(), itemID); err != nil {
		return fmt.Errorf("failed to touch item: %w", err)
	}
	return nil
}

func (q *queries) insertItemUsers(ctx context.Context, itemID string, userIDs []string) error {
	for _, userID := range userIDs {
		_, err := q.db.ExecContext(ctx,
			"INSERT INTO item_users (item_id, user_id) VALUES (?, ?)",
			itemID, userID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert item user: %w", err)
		}
	}
	return nil
}

// itemUsers returns the item's users in the order they were added.
func (q *queries) itemUsers(ctx context.Context, itemID string) ([]string, error) {
	return q.ids(ctx, "item users",
		"SELECT user_id FROM item_users WHERE item_id = ? ORDER BY rowid", itemID)
}
