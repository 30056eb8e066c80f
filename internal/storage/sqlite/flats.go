package sqlite

import (
	"context"
	"fmt"

	"github.com/mmynk/flatwise/internal/models"
)

// CreateFlat persists a new flat and moves its initial members into it.
func (q *queries) CreateFlat(ctx context.Context, flat *models.Flat) error {
	if flat.ID == "" {
		flat.ID = newID()
	}
	if flat.CreatedAt == 0 {
		flat.CreatedAt = now()
	}
	flat.UpdatedAt = flat.CreatedAt

	_, err := q.db.ExecContext(ctx,
		"INSERT INTO flats (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)",
		flat.ID, flat.Name, flat.CreatedAt, flat.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert flat: %w", err)
	}

	for _, userID := range flat.Members {
		if err := q.SetUserFlat(ctx, userID, flat.ID); err != nil {
			return fmt.Errorf("failed to add member: %w", err)
		}
	}
	return nil
}

// GetFlat retrieves a flat by ID, including its members.
func (q *queries) GetFlat(ctx context.Context, flatID string) (*models.Flat, error) {
	flat := &models.Flat{}
	err := q.db.QueryRowContext(ctx,
		"SELECT id, name, created_at, updated_at FROM flats WHERE id = ?",
		flatID,
	).Scan(&flat.ID, &flat.Name, &flat.CreatedAt, &flat.UpdatedAt)
	if err != nil {
		return nil, notFound(err, "flat", flatID)
	}

	members, err := q.flatMembers(ctx, flat.ID)
	if err != nil {
		return nil, err
	}
	flat.Members = members
	return flat, nil
}

// ListFlats returns a page of flats with their members.
func (q *queries) ListFlats(ctx context.Context, offset, limit int) ([]*models.Flat, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT id, name, created_at, updated_at FROM flats ORDER BY created_at, id LIMIT ? OFFSET ?",
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list flats: %w", err)
	}

	var flats []*models.Flat
	for rows.Next() {
		flat := &models.Flat{}
		if err := rows.Scan(&flat.ID, &flat.Name, &flat.CreatedAt, &flat.UpdatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan flat: %w", err)
		}
		flats = append(flats, flat)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate flats: %w", err)
	}

	// Members are loaded after the cursor is closed; the store runs on one connection.
	for _, flat := range flats {
		if flat.Members, err = q.flatMembers(ctx, flat.ID); err != nil {
			return nil, err
		}
	}
	return flats, nil
}

// UpdateFlat renames a flat.
func (q *queries) UpdateFlat(ctx context.Context, flat *models.Flat) error {
	flat.UpdatedAt = now()
	res, err := q.db.ExecContext(ctx,
		"UPDATE flats SET name = ?, updated_at = ? WHERE id = ?",
		flat.Name, flat.UpdatedAt, flat.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update flat: %w", err)
	}
	return checkAffected(res, "flat", flat.ID)
}

// DeleteFlat removes a flat and its items. Members are left without a flat.
func (q *queries) DeleteFlat(ctx context.Context, flatID string) error {
	res, err := q.db.ExecContext(ctx, "DELETE FROM flats WHERE id = ?", flatID)
	if err != nil {
		return fmt.Errorf("failed to delete flat: %w", err)
	}
	return checkAffected(res, "flat", flatID)
}

func (q *queries) flatMembers(ctx context.Context, flatID string) ([]string, error) {
	return q.ids(ctx, "flat members",
		"SELECT id FROM users WHERE flat_id = ? ORDER BY created_at, id", flatID)
}

// ids runs a single-column query and collects the strings it returns.
func (q *queries) ids(ctx context.Context, what, query string, args ...any) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", what, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", what, err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", what, err)
	}
	return out, nil
}
