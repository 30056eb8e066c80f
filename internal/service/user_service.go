package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmynk/flatwise/internal/auth"
	"github.com/mmynk/flatwise/internal/calculator"
	"github.com/mmynk/flatwise/internal/models"
	"github.com/mmynk/flatwise/internal/settlement"
	"github.com/mmynk/flatwise/internal/storage"
)

// UserPatch holds the fields of a partial profile update. Nil fields are left unchanged.
type UserPatch struct {
	FirstName *string
	LastName  *string
	Email     *string
	Password  *string
}

// UserLedger is a user's credits and debts.
type UserLedger struct {
	User    *models.User
	Items   []*models.Item
	Credits []*models.Transaction
	Debts   []*models.Transaction
}

// UserBalances is a user's net position against each counterparty.
type UserBalances struct {
	Summary        calculator.MemberBalance
	Counterparties []calculator.CounterpartyBalance
}

// UserService manages profiles and per-user ledger views.
type UserService struct {
	store         storage.Store
	authenticator auth.Authenticator
}

// NewUserService creates a new UserService.
func NewUserService(store storage.Store, authenticator auth.Authenticator) *UserService {
	return &UserService{store: store, authenticator: authenticator}
}

// Get retrieves a user the actor may see.
func (s *UserService) Get(ctx context.Context, actor *models.User, userID string) (*models.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := canSee(actor, user); err != nil {
		return nil, err
	}
	return user, nil
}

// List returns a page of users.
func (s *UserService) List(ctx context.Context, offset, limit int) ([]*models.User, error) {
	offset, limit = page(offset, limit)
	return s.store.ListUsers(ctx, offset, limit)
}

// Update applies patch to the actor's own profile. A new password is re-hashed.
func (s *UserService) Update(ctx context.Context, actor *models.User, userID string, patch UserPatch) (*models.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := isSelf(actor, user.ID); err != nil {
		return nil, err
	}

	if patch.FirstName != nil {
		if strings.TrimSpace(*patch.FirstName) == "" {
			return nil, fmt.Errorf("%w: first name is required", ErrInvalidInput)
		}
		user.FirstName = strings.TrimSpace(*patch.FirstName)
	}
	if patch.LastName != nil {
		user.LastName = strings.TrimSpace(*patch.LastName)
	}
	if patch.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*patch.Email))
		if email == "" {
			return nil, fmt.Errorf("%w: email is required", ErrInvalidInput)
		}
		user.Email = email
	}
	if patch.Password != nil {
		hashed, err := s.authenticator.HashCredential(*patch.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hashed
	}

	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	slog.Info("User updated", "user_id", user.ID)
	return user, nil
}

// Delete removes the actor's own account. Users must move out first and may not
// be party to any ledger entry.
func (s *UserService) Delete(ctx context.Context, actor *models.User, userID string) error {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := isSelf(actor, userID); err != nil {
		return err
	}
	if user.FlatID != "" {
		return fmt.Errorf("%w: user %s must move out of flat %s first", settlement.ErrAlreadyMember, user.ID, user.FlatID)
	}
	if err := s.store.DeleteUser(ctx, userID); err != nil {
		return err
	}
	slog.Info("User deleted", "user_id", userID)
	return nil
}

// Transactions returns a user's items, credits and debts.
func (s *UserService) Transactions(ctx context.Context, actor *models.User, userID string) (*UserLedger, error) {
	user, err := s.Get(ctx, actor, userID)
	if err != nil {
		return nil, err
	}
	items, err := s.store.ListItemsByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	credits, err := s.store.ListCredits(ctx, user.ID, nil)
	if err != nil {
		return nil, err
	}
	debts, err := s.store.ListDebts(ctx, user.ID, nil)
	if err != nil {
		return nil, err
	}
	return &UserLedger{User: user, Items: items, Credits: credits, Debts: debts}, nil
}

// Credits returns entries owed to userID, filtered by paid when non-nil.
func (s *UserService) Credits(ctx context.Context, actor *models.User, userID string, paid *bool) ([]*models.Transaction, error) {
	user, err := s.Get(ctx, actor, userID)
	if err != nil {
		return nil, err
	}
	return s.store.ListCredits(ctx, user.ID, paid)
}

// Debts returns entries owed by userID, filtered by paid when non-nil.
func (s *UserService) Debts(ctx context.Context, actor *models.User, userID string, paid *bool) ([]*models.Transaction, error) {
	user, err := s.Get(ctx, actor, userID)
	if err != nil {
		return nil, err
	}
	return s.store.ListDebts(ctx, user.ID, paid)
}

// Balances nets a user's unpaid entries per counterparty.
func (s *UserService) Balances(ctx context.Context, actor *models.User, userID string) (*UserBalances, error) {
	ledger, err := s.Transactions(ctx, actor, userID)
	if err != nil {
		return nil, err
	}
	txns := append(ledger.Credits, ledger.Debts...)
	summary, counterparties := calculator.CalculateUserBalance(ledger.User.ID, txns)
	return &UserBalances{Summary: summary, Counterparties: counterparties}, nil
}
