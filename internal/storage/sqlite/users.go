package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mmynk/flatwise/internal/models"
	"github.com/mmynk/flatwise/internal/storage"
)

const userColumns = `id, first_name, last_name, email, flat_id, active, password_hash, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*models.User, error) {
	user := &models.User{}
	var flatID sql.NullString
	err := row.Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&flatID,
		&user.Active,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.FlatID = flatID.String
	return user, nil
}

func isUniqueEmail(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: users.email")
}

func isForeignKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// CreateUser inserts a new user into the database.
func (q *queries) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = newID()
	}
	if user.CreatedAt == 0 {
		user.CreatedAt = now()
	}
	if user.UpdatedAt == 0 {
		user.UpdatedAt = user.CreatedAt
	}

	_, err := q.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.FirstName,
		user.LastName,
		user.Email,
		nullString(user.FlatID),
		user.Active,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if isUniqueEmail(err) {
		return fmt.Errorf("%s: %w", user.Email, storage.ErrEmailExists)
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID.
func (q *queries) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := scanUser(q.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, userID))
	if err != nil {
		return nil, notFound(err, "user", userID)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by their email address.
func (q *queries) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := scanUser(q.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if err != nil {
		return nil, notFound(err, "user", email)
	}
	return user, nil
}

// ListUsers returns a page of users ordered by creation.
func (q *queries) ListUsers(ctx context.Context, offset, limit int) ([]*models.User, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at, id LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}

// UpdateUser writes every profile field of user.
func (q *queries) UpdateUser(ctx context.Context, user *models.User) error {
	user.UpdatedAt = now()
	res, err := q.db.ExecContext(ctx,
		`UPDATE users SET first_name = ?, last_name = ?, email = ?, flat_id = ?, active = ?,
		 password_hash = ?, updated_at = ? WHERE id = ?`,
		user.FirstName,
		user.LastName,
		user.Email,
		nullString(user.FlatID),
		user.Active,
		user.PasswordHash,
		user.UpdatedAt,
		user.ID,
	)
	if isUniqueEmail(err) {
		return fmt.Errorf("%s: %w", user.Email, storage.ErrEmailExists)
	}
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return checkAffected(res, "user", user.ID)
}

// DeleteUser removes a user and their item shares. Ledger entries are never
// deleted, so a user who is party to any entry cannot be removed.
func (q *queries) DeleteUser(ctx context.Context, userID string) error {
	res, err := q.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", userID)
	if isForeignKey(err) {
		return fmt.Errorf("user %s: %w", userID, storage.ErrHasLedger)
	}
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return checkAffected(res, "user", userID)
}

// SetUserFlat moves a user into flatID, or out of any flat when flatID is "".
func (q *queries) SetUserFlat(ctx context.Context, userID, flatID string) error {
	res, err := q.db.ExecContext(ctx,
		"UPDATE users SET flat_id = ?, updated_at = ? WHERE id = ?",
		nullString(flatID), now(), userID,
	)
	if err != nil {
		return fmt.Errorf("failed to set user flat: %w", err)
	}
	return checkAffected(res, "user", userID)
}
