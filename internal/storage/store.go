// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/flatwise/internal/models"
)

var (
	// ErrNotFound is returned when a looked-up entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrEmailExists is returned when creating or renaming a user onto a taken email.
	ErrEmailExists = errors.New("email already registered")

	// ErrHasLedger is returned when deleting a user who is still party to ledger entries.
	ErrHasLedger = errors.New("user has ledger entries")
)

// Queries is the set of reads and writes available both on the store and inside a
// transaction opened with Store.WithTx.
type Queries interface {
	// CreateUser persists a new user. user.ID and timestamps are populated by the store.
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, userID string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context, offset, limit int) ([]*models.User, error)
	// UpdateUser writes the profile fields of user, including FlatID.
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, userID string) error

	// CreateFlat persists a new flat and moves every user in flat.Members into it.
	CreateFlat(ctx context.Context, flat *models.Flat) error
	// GetFlat retrieves a flat with its current members.
	GetFlat(ctx context.Context, flatID string) (*models.Flat, error)
	ListFlats(ctx context.Context, offset, limit int) ([]*models.Flat, error)
	// UpdateFlat writes the flat's name. Membership is changed through SetUserFlat.
	UpdateFlat(ctx context.Context, flat *models.Flat) error
	DeleteFlat(ctx context.Context, flatID string) error
	// SetUserFlat points the user at flatID, or at no flat when flatID is "".
	SetUserFlat(ctx context.Context, userID, flatID string) error

	// CreateItem persists a new item together with its users.
	CreateItem(ctx context.Context, item *models.Item) error
	// GetItem retrieves an item with its users in the order they joined.
	GetItem(ctx context.Context, itemID string) (*models.Item, error)
	ListItems(ctx context.Context, offset, limit int) ([]*models.Item, error)
	ListItemsByFlat(ctx context.Context, flatID string) ([]*models.Item, error)
	ListItemsByUser(ctx context.Context, userID string) ([]*models.Item, error)
	// UpdateItem writes the item's purchase parameters. Users are changed through SetItemUsers.
	UpdateItem(ctx context.Context, item *models.Item) error
	DeleteItem(ctx context.Context, itemID string) error
	// SetItemUsers replaces the users sharing the item, keeping the given order.
	SetItemUsers(ctx context.Context, itemID string, userIDs []string) error

	// AddTransaction stages a ledger entry. t.ID and timestamps are populated by the store.
	AddTransaction(ctx context.Context, t *models.Transaction) error
	GetTransaction(ctx context.Context, txnID string) (*models.Transaction, error)
	ListTransactionsByItem(ctx context.Context, itemID string) ([]*models.Transaction, error)
	// ListTransactionsByFlat returns every entry tied to an item of the flat.
	ListTransactionsByFlat(ctx context.Context, flatID string) ([]*models.Transaction, error)
	// ListCredits returns entries where userID is the creditor; paid filters when non-nil.
	ListCredits(ctx context.Context, userID string, paid *bool) ([]*models.Transaction, error)
	// ListDebts returns entries where userID is the debtor; paid filters when non-nil.
	ListDebts(ctx context.Context, userID string, paid *bool) ([]*models.Transaction, error)
	SetTransactionPaid(ctx context.Context, txnID string, paid bool) error
}

// Tx is a unit of work. Everything staged through it commits or rolls back together.
type Tx interface {
	Queries
}

// Store defines the interface for flatwise storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	Queries

	// WithTx runs fn inside a transaction. It commits when fn returns nil and rolls
	// back otherwise. fn must only use tx; the store itself may block until fn returns.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Reset deletes every row from every table.
	Reset(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
