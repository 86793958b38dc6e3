package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"songmarket/internal/server/auth"
	"songmarket/internal/server/database"
)

// UserStore looks up credential records.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*database.User, error)
}

// AuthService verifies credentials and issues access tokens.
type AuthService struct {
	users  UserStore
	tokens *auth.TokenManager
}

// NewAuthService creates a new authentication service.
func NewAuthService(users UserStore, tokens *auth.TokenManager) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Login checks password against the stored hash for username and returns
// a signed access token.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			slog.Warn("login failed", "username", username, "reason", "unknown_user")
			return "", ErrUserNotFound
		}
		return "", err
	}

	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			slog.Warn("login failed", "username", username, "reason", "invalid_password")
			return "", ErrInvalidPassword
		}
		return "", err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("login succeeded", "username", username, "user_id", user.ID)
	return token, nil
}
