// AngelaMos | 2026
// service.go

package consumer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hawkersg/hawker-backend/internal/auth"
	"github.com/hawkersg/hawker-backend/internal/config"
	"github.com/hawkersg/hawker-backend/internal/core"
	"github.com/hawkersg/hawker-backend/internal/media"
	"github.com/hawkersg/hawker-backend/internal/user"
)

type Service struct {
	tx          core.Transactor
	repo        Repository
	users       *user.Service
	photos      *media.Store
	recentLimit int
	logger      *slog.Logger
}

func NewService(
	tx core.Transactor,
	db core.DBTX,
	users *user.Service,
	photos *media.Store,
	cfg config.ConsumerConfig,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		tx:          tx,
		repo:        NewRepository(db),
		users:       users,
		photos:      photos,
		recentLimit: cfg.RecentSearchLimit,
		logger:      logger,
	}
}

// Signup creates the identity and consumer rows together.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (*Consumer, error) {
	u, err := user.New(req.Email, req.Password, req.Username, user.KindConsumer)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(tx core.DBTX) error {
		if err := user.NewRepository(tx).Create(ctx, u); err != nil {
			return err
		}
		return NewRepository(tx).Create(ctx, u.ID)
	})
	if err != nil {
		return nil, fmt.Errorf("signup consumer: %w", err)
	}

	return &Consumer{
		UserID:         u.ID,
		Email:          u.Email,
		Username:       u.Username,
		RecentSearches: []string{},
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}, nil
}

func (s *Service) Authenticate(
	ctx context.Context,
	email, password string,
) (*auth.Identity, error) {
	u, err := s.users.Authenticate(ctx, email, password, user.KindConsumer)
	if err != nil {
		return nil, fmt.Errorf("authenticate consumer: %w", err)
	}
	return s.Identity(ctx, u.ID)
}

func (s *Service) Identity(ctx context.Context, userID string) (*auth.Identity, error) {
	c, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &auth.Identity{
		UserID:    c.UserID,
		Email:     c.Email,
		Username:  c.Username,
		UserType:  auth.UserTypeConsumer,
		CreatedAt: c.CreatedAt,
	}, nil
}

func (s *Service) Get(ctx context.Context, userID string) (*Consumer, error) {
	return s.repo.GetByID(ctx, userID)
}

func (s *Service) Exists(ctx context.Context, userID string) (bool, error) {
	return s.repo.Exists(ctx, userID)
}

// ProfilePatch carries only the fields being changed.
type ProfilePatch struct {
	Username    *string
	Photo       *media.Image
	RemovePhoto bool
}

func (s *Service) UpdateProfile(
	ctx context.Context,
	userID string,
	patch ProfilePatch,
) (*Consumer, error) {
	var newPhoto *string
	if patch.Photo != nil {
		saved, err := s.photos.Save(userID, patch.Photo)
		if err != nil {
			return nil, err
		}
		newPhoto = &saved
	}

	var oldPhoto *string
	var updated *Consumer

	err := s.tx.WithinTx(ctx, func(tx core.DBTX) error {
		repo := NewRepository(tx)

		current, err := repo.GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		oldPhoto = current.ProfilePhoto

		if patch.Username != nil {
			name := strings.TrimSpace(*patch.Username)
			if err := user.NewRepository(tx).UpdateUsername(ctx, userID, name); err != nil {
				return err
			}
		}

		switch {
		case newPhoto != nil:
			err = repo.SetPhoto(ctx, userID, newPhoto)
		case patch.RemovePhoto:
			err = repo.SetPhoto(ctx, userID, nil)
		default:
			oldPhoto = nil
		}
		if err != nil {
			return err
		}

		updated, err = repo.GetByID(ctx, userID)
		return err
	})
	if err != nil {
		if newPhoto != nil {
			s.photos.Remove(*newPhoto)
		}
		return nil, fmt.Errorf("update consumer profile: %w", err)
	}

	if oldPhoto != nil {
		s.photos.Remove(*oldPhoto)
	}

	return updated, nil
}

// AddRecentSearch records term at the head of the history. Blank terms
// leave the history unchanged.
func (s *Service) AddRecentSearch(
	ctx context.Context,
	userID, term string,
) ([]string, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		c, err := s.repo.GetByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		return c.RecentSearches, nil
	}

	var result []string
	err := s.tx.WithinTx(ctx, func(tx core.DBTX) error {
		repo := NewRepository(tx)

		c, err := repo.GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		result = pushRecent(c.RecentSearches, term, s.recentLimit)
		return repo.SetRecentSearches(ctx, userID, result)
	})
	if err != nil {
		return nil, fmt.Errorf("add recent search: %w", err)
	}

	return result, nil
}

func (s *Service) ClearRecentSearches(ctx context.Context, userID string) error {
	exists, err := s.repo.Exists(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("clear recent searches: %w", core.ErrNotFound)
	}
	return s.repo.SetRecentSearches(ctx, userID, []string{})
}

// Delete removes the account. Favourites and reviews go with it.
func (s *Service) Delete(ctx context.Context, userID string) error {
	var photo *string

	err := s.tx.WithinTx(ctx, func(tx core.DBTX) error {
		c, err := NewRepository(tx).GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		photo = c.ProfilePhoto
		return user.NewRepository(tx).Delete(ctx, userID)
	})
	if err != nil {
		return fmt.Errorf("delete consumer: %w", err)
	}

	if photo != nil {
		s.photos.Remove(*photo)
	}

	s.logger.Info("consumer deleted", "user_id", userID)
	return nil
}
