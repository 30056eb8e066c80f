package auth

import (
	"context"

	"github.com/mmynk/flatwise/internal/models"
)

// Registration carries the profile fields needed to open an account.
type Registration struct {
	FirstName string
	LastName  string
	Email     string
}

// Authenticator defines the interface for authentication implementations.
// This abstraction allows swapping between different auth methods (password, passkeys, OAuth, etc.)
// without changing the service layer code.
type Authenticator interface {
	// Register creates a new user account with the given profile and credential.
	// The credential format depends on the implementation (e.g., password, OAuth token, etc.)
	Register(ctx context.Context, reg Registration, credential string) (*models.User, error)

	// Authenticate verifies the user's credentials and returns the user if successful.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks if the credential meets the implementation's requirements.
	ValidateCredential(credential string) error

	// HashCredential turns a credential into the form stored on the user.
	HashCredential(credential string) (string, error)
}
