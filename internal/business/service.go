// AngelaMos | 2026
// service.go

package business

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hawkersg/hawker-backend/internal/auth"
	"github.com/hawkersg/hawker-backend/internal/config"
	"github.com/hawkersg/hawker-backend/internal/core"
	"github.com/hawkersg/hawker-backend/internal/media"
	"github.com/hawkersg/hawker-backend/internal/user"
)

var ErrDuplicateLicense = errors.New("license number already registered")

type Service struct {
	tx           core.Transactor
	repo         Repository
	users        *user.Service
	photos       *media.Store
	loc          *time.Location
	orphanPolicy string
	logger       *slog.Logger
	now          func() time.Time
}

func NewService(
	tx core.Transactor,
	db core.DBTX,
	users *user.Service,
	photos *media.Store,
	loc *time.Location,
	cfg config.BusinessConfig,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		tx:           tx,
		repo:         NewRepository(db),
		users:        users,
		photos:       photos,
		loc:          loc,
		orphanPolicy: cfg.OrphanPolicy,
		logger:       logger,
		now:          time.Now,
	}
}

// CreateInput is a validated signup candidate.
type CreateInput struct {
	Email                string
	Password             string
	Username             string
	LicenseNumber        string
	StallName            *string
	LicenseeName         string
	EstablishmentAddress string
	HawkerCentre         string
	PostalCode           string
	Description          string
}

// Create registers a business account. The license is checked before the
// email, and a license held by a seeded placeholder still counts as taken.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Business, error) {
	licenseNumber := strings.TrimSpace(in.LicenseNumber)

	taken, err := s.repo.LicenseExists(ctx, licenseNumber)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("create business: %w", ErrDuplicateLicense)
	}

	emailTaken, err := s.users.EmailExists(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if emailTaken {
		return nil, fmt.Errorf("create business: %w", user.ErrDuplicateEmail)
	}

	u, err := user.New(in.Email, in.Password, in.Username, user.KindBusiness)
	if err != nil {
		return nil, err
	}

	now := s.now()
	b := &Business{
		UserID:               u.ID,
		Email:                u.Email,
		Username:             u.Username,
		LicenseNumber:        licenseNumber,
		StallName:            normalizeStallName(in.StallName),
		LicenseeName:         strings.TrimSpace(in.LicenseeName),
		EstablishmentAddress: strings.TrimSpace(in.EstablishmentAddress),
		HawkerCentre:         strings.TrimSpace(in.HawkerCentre),
		PostalCode:           strings.TrimSpace(in.PostalCode),
		Description:          strings.TrimSpace(in.Description),
		Status:               StatusOpen,
		StatusChangedAt:      &now,
	}

	err = s.tx.WithinTx(ctx, func(tx core.DBTX) error {
		if err := user.NewRepository(tx).Create(ctx, u); err != nil {
			return err
		}
		return NewRepository(tx).Create(ctx, b)
	})
	if err != nil {
		return nil, fmt.Errorf("create business: %w", err)
	}

	b.CreatedAt = u.CreatedAt
	b.UpdatedAt = u.UpdatedAt

	s.logger.Info("business registered", "license_number", b.LicenseNumber)
	return b, nil
}

func (s *Service) Authenticate(
	ctx context.Context,
	email, password string,
) (*auth.Identity, error) {
	u, err := s.users.Authenticate(ctx, email, password, user.KindBusiness)
	if err != nil {
		return nil, fmt.Errorf("authenticate business: %w", err)
	}
	return s.Identity(ctx, u.ID)
}

func (s *Service) Identity(ctx context.Context, userID string) (*auth.Identity, error) {
	b, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &auth.Identity{
		UserID:        b.UserID,
		Email:         b.Email,
		Username:      b.Username,
		UserType:      auth.UserTypeBusiness,
		LicenseNumber: b.LicenseNumber,
		CreatedAt:     b.CreatedAt,
	}, nil
}

// Get returns the public profile, reopening a stall whose "closed today"
// status has lapsed.
func (s *Service) Get(ctx context.Context, licenseNumber string) (*Business, error) {
	b, err := s.repo.GetByLicense(ctx, licenseNumber)
	if err != nil {
		return nil, err
	}

	if err := s.settleStatus(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) ListByHawkerCentre(ctx context.Context, centre string) ([]Business, error) {
	list, err := s.repo.ListByHawkerCentre(ctx, centre)
	if err != nil {
		return nil, err
	}

	for i := range list {
		if err := s.settleStatus(ctx, &list[i]); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (s *Service) settleStatus(ctx context.Context, b *Business) error {
	now := s.now()
	if !b.NeedsDailyReset(now, s.loc) {
		return nil
	}

	reset, err := s.repo.ResetTemporaryStatus(ctx, b, now)
	if err != nil {
		return err
	}
	if reset {
		b.applyDailyReset(now)
		return nil
	}

	fresh, err := s.repo.GetByLicense(ctx, b.LicenseNumber)
	if err != nil {
		return err
	}
	*b = *fresh
	return nil
}

// authorize loads the business at the path and confirms the token was
// issued for it. A missing business wins over a mismatched token.
func (s *Service) authorize(
	ctx context.Context,
	repo Repository,
	pathLicense, tokenLicense string,
) (*Business, error) {
	b, err := repo.GetByLicense(ctx, pathLicense)
	if err != nil {
		return nil, err
	}
	if tokenLicense != pathLicense {
		return nil, fmt.Errorf("license %s: %w", pathLicense, core.ErrForbidden)
	}
	return b, nil
}

// ProfilePatch holds only the fields being changed. An empty StallName
// clears it.
type ProfilePatch struct {
	StallName       *string
	Description     *string
	Status          *Status
	StatusTodayOnly *bool
	Photo           *media.Image
	RemovePhoto     bool
}

func (s *Service) UpdateProfile(
	ctx context.Context,
	pathLicense, tokenLicense string,
	patch ProfilePatch,
) (*Business, error) {
	if _, err := s.authorize(ctx, s.repo, pathLicense, tokenLicense); err != nil {
		return nil, err
	}

	var newPhoto *string
	if patch.Photo != nil {
		saved, err := s.photos.Save(pathLicense, patch.Photo)
		if err != nil {
			return nil, err
		}
		newPhoto = &saved
	}

	var oldPhoto *string
	var updated *Business

	err := s.tx.WithinTx(ctx, func(tx core.DBTX) error {
		repo := NewRepository(tx)

		b, err := repo.GetByLicenseForUpdate(ctx, pathLicense)
		if err != nil {
			return err
		}
		if now := s.now(); b.NeedsDailyReset(now, s.loc) {
			b.applyDailyReset(now)
		}

		if patch.StallName != nil {
			b.StallName = normalizeStallName(patch.StallName)
		}
		if patch.Description != nil {
			b.Description = strings.TrimSpace(*patch.Description)
		}
		if patch.Status != nil {
			now := s.now()
			b.Status = *patch.Status
			b.StatusChangedAt = &now
			b.StatusIsTemporary = *patch.Status == StatusClosed &&
				patch.StatusTodayOnly != nil && *patch.StatusTodayOnly
		}

		switch {
		case newPhoto != nil:
			oldPhoto = b.Photo
			b.Photo = newPhoto
		case patch.RemovePhoto:
			oldPhoto = b.Photo
			b.Photo = nil
		}

		if err := repo.UpdateProfile(ctx, b); err != nil {
			return err
		}

		updated = b
		return nil
	})
	if err != nil {
		if newPhoto != nil {
			s.photos.Remove(*newPhoto)
		}
		return nil, fmt.Errorf("update business profile: %w", err)
	}

	if oldPhoto != nil {
		s.photos.Remove(*oldPhoto)
	}

	return updated, nil
}

// Delete removes the business with its hours and menu. Reviews and
// favourites are kept or removed according to the orphan policy.
func (s *Service) Delete(ctx context.Context, pathLicense, tokenLicense string) error {
	var photo *string

	err := s.tx.WithinTx(ctx, func(tx core.DBTX) error {
		repo := NewRepository(tx)

		b, err := s.authorize(ctx, repo, pathLicense, tokenLicense)
		if err != nil {
			return err
		}
		photo = b.Photo

		if s.orphanPolicy == config.OrphanPolicyCascade {
			if err := repo.DeleteTargetRows(ctx, b.UserID); err != nil {
				return err
			}
		}

		return user.NewRepository(tx).Delete(ctx, b.UserID)
	})
	if err != nil {
		return fmt.Errorf("delete business: %w", err)
	}

	if photo != nil {
		s.photos.Remove(*photo)
	}

	s.logger.Info("business deleted",
		"license_number", pathLicense,
		"orphan_policy", s.orphanPolicy,
	)
	return nil
}

func normalizeStallName(name *string) *string {
	if name == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*name)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
