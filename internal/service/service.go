// Package service orchestrates storage, the settlement engine and authorization for flatwise.
// It is transport-agnostic: handlers pass the acting user and plain values.
package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/mmynk/flatwise/internal/models"
)

var (
	// ErrForbidden is returned when the acting user may not touch the target.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidInput is returned for malformed request values.
	ErrInvalidInput = errors.New("invalid input")
)

// Page limits for list operations.
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// page normalizes offset and limit.
func page(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return offset, limit
}

// sameFlat allows the actor to act on something owned by flatID.
// Users without a flat only see themselves.
func sameFlat(actor *models.User, flatID string) error {
	if actor.FlatID == "" || actor.FlatID != flatID {
		return fmt.Errorf("%w: user %s is not in flat %s", ErrForbidden, actor.ID, flatID)
	}
	return nil
}

// canSee allows the actor to read another user's profile and ledger.
func canSee(actor, target *models.User) error {
	if actor.ID == target.ID {
		return nil
	}
	if err := sameFlat(actor, target.FlatID); err != nil {
		return fmt.Errorf("%w: user %s", ErrForbidden, target.ID)
	}
	return nil
}

// isSelf allows only the user themselves.
func isSelf(actor *models.User, userID string) error {
	if actor.ID != userID {
		return fmt.Errorf("%w: user %s may only change their own account", ErrForbidden, actor.ID)
	}
	return nil
}

// day returns date as a calendar date, or today when date is zero.
func day(date time.Time) time.Time {
	if date.IsZero() {
		return models.Day(time.Now())
	}
	return models.Day(date)
}

func amounts(txns []*models.Transaction) []float64 {
	out := make([]float64, len(txns))
	for i, t := range txns {
		out[i] = t.Amount
	}
	return out
}
