// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/hawkersg/hawker-backend/internal/core"
)

var (
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrDuplicateEmail     = errors.New("email already registered")
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// New builds an unsaved identity with a freshly hashed password.
func New(email, password, username string, kind Kind) (*User, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("new user: kind %q: %w", kind, core.ErrInvalidInput)
	}

	hash, err := core.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	return &User{
		ID:           uuid.New().String(),
		Email:        NormalizeEmail(email),
		PasswordHash: hash,
		Username:     strings.TrimSpace(username),
		Kind:         kind,
	}, nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Authenticate reports ErrInvalidCredentials for every failure mode so
// callers cannot tell a missing account from a wrong password or kind.
func (s *Service) Authenticate(
	ctx context.Context,
	email, password string,
	kind Kind,
) (*User, error) {
	u, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention - always verify to prevent enumeration
			_, _, _ = core.VerifyPasswordTimingSafe(password, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, newHash, err := core.VerifyPasswordTimingSafe(password, &u.PasswordHash)
	if err != nil || !valid {
		return nil, ErrInvalidCredentials
	}

	if u.Kind != kind {
		return nil, ErrInvalidCredentials
	}

	if newHash != "" {
		if err := s.repo.UpdatePassword(ctx, u.ID, newHash); err != nil {
			s.logger.Warn("password rehash failed", "user_id", u.ID, "error", err)
		}
	}

	return u, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) EmailExists(ctx context.Context, email string) (bool, error) {
	return s.repo.ExistsByEmail(ctx, NormalizeEmail(email))
}

func (s *Service) ChangePassword(
	ctx context.Context,
	userID, currentPassword, newPassword string,
) error {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	valid, _, err := core.VerifyPasswordTimingSafe(currentPassword, &u.PasswordHash)
	if err != nil || !valid {
		return ErrInvalidCredentials
	}

	newHash, err := core.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.repo.UpdatePassword(ctx, userID, newHash)
}
