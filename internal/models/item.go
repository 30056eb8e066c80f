package models

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidItem is returned by Item.Validate for out-of-range purchase parameters.
var ErrInvalidItem = errors.New("invalid item")

// Item represents a shared bill or asset owned by a flat.
// Its value depreciates from InitialValue over time; the users listed in Users split it equally.
type Item struct {
	// ID is the unique identifier for the item (UUID format).
	ID string

	// FlatID is the flat that owns the item.
	FlatID string

	// Name is the display name of the item (e.g., "TV", "Internet").
	Name string

	// IsBill marks recurring bills as opposed to assets.
	IsBill bool

	// InitialValue is the purchase price. Never negative.
	InitialValue float64

	// PurchaseDate is the calendar date the item was bought (UTC midnight).
	PurchaseDate time.Time

	// YearlyDepreciation is the fraction of value lost per 365 days, in [0, 1).
	YearlyDepreciation float64

	// MinimumValue is an optional absolute floor for the depreciated value.
	MinimumValue *float64

	// MinimumValuePct is an optional floor expressed as a fraction of InitialValue, in [0, 1].
	MinimumValuePct *float64

	// Users is the list of user IDs currently sharing the item.
	Users []string

	// CreatedAt is the Unix timestamp when the item was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last change to the item.
	UpdatedAt int64
}

// Validate checks the purchase parameters.
func (i *Item) Validate() error {
	if i.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidItem)
	}
	if i.InitialValue < 0 {
		return fmt.Errorf("%w: initial value %v is negative", ErrInvalidItem, i.InitialValue)
	}
	if i.YearlyDepreciation < 0 || i.YearlyDepreciation >= 1 {
		return fmt.Errorf("%w: yearly depreciation %v must be in [0, 1)", ErrInvalidItem, i.YearlyDepreciation)
	}
	if i.MinimumValue != nil && *i.MinimumValue < 0 {
		return fmt.Errorf("%w: minimum value %v is negative", ErrInvalidItem, *i.MinimumValue)
	}
	if i.MinimumValuePct != nil && (*i.MinimumValuePct < 0 || *i.MinimumValuePct > 1) {
		return fmt.Errorf("%w: minimum value pct %v must be in [0, 1]", ErrInvalidItem, *i.MinimumValuePct)
	}
	if i.PurchaseDate.IsZero() {
		return fmt.Errorf("%w: purchase date is required", ErrInvalidItem)
	}
	return nil
}

// HasUser reports whether userID shares the item.
func (i *Item) HasUser(userID string) bool {
	return contains(i.Users, userID)
}

// AddUser appends userID to the item's users if it is not already there.
func (i *Item) AddUser(userID string) {
	if !i.HasUser(userID) {
		i.Users = append(i.Users, userID)
	}
}

// RemoveUser drops userID from the item's users.
func (i *Item) RemoveUser(userID string) {
	i.Users = without(i.Users, userID)
}
