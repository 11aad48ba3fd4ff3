package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Skotchmaster/inventory/internal/hash"
	"github.com/Skotchmaster/inventory/internal/logging"
	"github.com/Skotchmaster/inventory/internal/models"
	"github.com/Skotchmaster/inventory/internal/repo"
	"github.com/Skotchmaster/inventory/internal/tokens"
)

// UserStore persists credentials. Lookups return repo.ErrNotFound for
// missing users and Create returns repo.ErrDuplicate for a taken username.
type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	SetRefreshToken(ctx context.Context, id string, token *string) error
	// SwapRefreshToken replaces the stored token only while it still equals
	// expected, returning repo.ErrNotFound otherwise.
	SwapRefreshToken(ctx context.Context, id, expected, next string) error
}

type TokenIssuer interface {
	Issue(userID, username string) (tokens.Pair, error)
	VerifyRefresh(token string) (*tokens.RefreshClaims, error)
}

type PasswordHasher interface {
	HashPassword(password string) (string, error)
	CheckPassword(hash, password string) bool
}

type AuthService struct {
	Users  UserStore
	Tokens TokenIssuer
	Hasher PasswordHasher
	Events Publisher
}

func NewAuthService(users UserStore, issuer TokenIssuer, hasher PasswordHasher, events Publisher) *AuthService {
	if events == nil {
		events = NoopPublisher{}
	}
	return &AuthService{Users: users, Tokens: issuer, Hasher: hasher, Events: events}
}

func (s *AuthService) Register(ctx context.Context, username, password string) (*tokens.Pair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	if strings.TrimSpace(username) == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	_, err := s.Users.FindByUsername(ctx, username)
	switch {
	case err == nil:
		l.Warn("register_error", "status", 400, "reason", "username already exists")
		return nil, ErrUsernameTaken
	case !errors.Is(err, repo.ErrNotFound):
		return nil, fmt.Errorf("find user: %w", err)
	}

	digest, err := s.Hasher.HashPassword(password)
	if errors.Is(err, hash.ErrPasswordTooLong) {
		l.Warn("register_error", "status", 400, "reason", "password too long")
		return nil, fmt.Errorf("%w: password must be at most 72 bytes", ErrValidation)
	}
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{Username: username, PasswordHash: digest}
	if err := s.Users.Create(ctx, user); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			l.Warn("register_error", "status", 400, "reason", "username already exists")
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	pair, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.Events, TopicUserEvents, user.ID, map[string]any{
		"type":     "user_registered",
		"userID":   user.ID,
		"username": user.Username,
	})

	l.Info("register_success", "user_id", user.ID)
	return pair, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*tokens.Pair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "username", username)

	user, err := s.Users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			s.Hasher.CheckPassword("", password)
			l.Warn("login_failed", "status", 401, "reason", "unknown username")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !s.Hasher.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "status", 401, "reason", "password mismatch")
		return nil, ErrInvalidCredentials
	}

	return s.issue(ctx, user)
}

// Refresh exchanges the user's current refresh token for a new pair. A token
// that was already rotated away or cleared by logout is rejected even if its
// signature and expiry are still valid.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*tokens.Pair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	claims, err := s.Tokens.VerifyRefresh(refreshToken)
	if err != nil {
		l.Warn("refresh_failed", "status", 401, "reason", "token verification failed", "error", err)
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.Users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("refresh_failed", "status", 401, "reason", "user does not exist")
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if user.RefreshToken == nil || *user.RefreshToken != refreshToken {
		l.Warn("refresh_failed", "status", 401, "reason", "token superseded or revoked", "user_id", user.ID)
		return nil, ErrInvalidRefreshToken
	}

	pair, err := s.Tokens.Issue(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}

	if err := s.Users.SwapRefreshToken(ctx, user.ID, refreshToken, pair.RefreshToken); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("refresh_failed", "status", 401, "reason", "token rotated concurrently", "user_id", user.ID)
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &pair, nil
}

func (s *AuthService) Logout(ctx context.Context, userID string) error {
	l := logging.FromContext(ctx).With("svc", "auth.logout", "user_id", userID)

	if err := s.Users.SetRefreshToken(ctx, userID, nil); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("logout_failed", "status", 404, "reason", "user not found")
			return ErrUserNotFound
		}
		return fmt.Errorf("clear refresh token: %w", err)
	}

	l.Info("logout_success")
	return nil
}

func (s *AuthService) issue(ctx context.Context, user *models.User) (*tokens.Pair, error) {
	pair, err := s.Tokens.Issue(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}
	if err := s.Users.SetRefreshToken(ctx, user.ID, &pair.RefreshToken); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}
	return &pair, nil
}
