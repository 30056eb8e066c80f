package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mmynk/flatwise/internal/auth"
	"github.com/mmynk/flatwise/internal/models"
	"github.com/mmynk/flatwise/internal/storage"
)

// Session is an issued bearer token and the user it belongs to.
type Session struct {
	User      *models.User
	Token     string
	ExpiresIn int64 // seconds
}

// AuthService registers users, issues tokens and resolves token subjects.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	store         storage.Store
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, store storage.Store, logger *slog.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		store:         store,
		logger:        logger,
	}
}

// Register creates a new user account.
func (s *AuthService) Register(ctx context.Context, reg auth.Registration, password string) (*models.User, error) {
	s.logger.Info("Register request")

	user, err := s.authenticator.Register(ctx, reg, password)
	if err != nil {
		s.logger.Warn("Registration failed", "error", err)
		return nil, err
	}

	s.logger.Info("User registered successfully", "user_id", user.ID)
	return user, nil
}

// Login authenticates a user and returns a JWT token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	if email == "" || password == "" {
		return nil, auth.ErrInvalidCredentials
	}

	user, err := s.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		s.logger.Warn("Login failed", "error", err)
		return nil, err
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		return nil, err
	}

	s.logger.Info("User logged in successfully", "user_id", user.ID)
	return &Session{
		User:      user,
		Token:     token,
		ExpiresIn: int64(s.jwtManager.TokenDuration().Seconds()),
	}, nil
}

// Authenticate validates a bearer token and loads the active user it names.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, auth.ErrMissingToken
	}
	claims, err := s.jwtManager.Validate(token)
	if err != nil {
		return nil, err
	}

	user, err := s.store.GetUser(ctx, claims.UserID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: user no longer exists", auth.ErrInvalidToken)
	}
	if err != nil {
		return nil, err
	}
	if !user.Active {
		return nil, auth.ErrInactiveUser
	}
	return user, nil
}
