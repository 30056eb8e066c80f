package models

import "time"

// User represents a registered flat member.
//
// A user's credits are the ledger entries where they are the creditor and their debts the
// entries where they are the debtor; both are queried from the ledger rather than held here.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	FirstName string
	LastName  string

	// Email is the user's email address (unique). Used for login.
	Email string

	// FlatID is the flat the user lives in, or "" when they have none.
	FlatID string

	// Active is true for regular accounts.
	Active bool

	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string

	// CreatedAt is the Unix timestamp when the user account was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last profile change.
	UpdatedAt int64
}

// NewUser creates a new user with the given details.
// The ID is assigned by the store.
func NewUser(firstName, lastName, email, passwordHash string) *User {
	now := time.Now().Unix()
	return &User{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		Active:       true,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// FullName returns "First Last".
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
