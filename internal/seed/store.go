// AngelaMos | 2026
// store.go

package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hawkersg/hawker-backend/internal/business"
	"github.com/hawkersg/hawker-backend/internal/core"
	"github.com/hawkersg/hawker-backend/internal/hawker"
	"github.com/hawkersg/hawker-backend/internal/user"
)

// Placeholder is an unclaimed business built from one spreadsheet row.
type Placeholder struct {
	LicenseNumber        string
	StallName            string
	LicenseeName         string
	EstablishmentAddress string
	PostalCode           string
	HawkerCentre         string
}

// PlaceholderEmail is the synthetic login for a seeded license.
func PlaceholderEmail(licenseNumber string) string {
	return "sfa_placeholder_" + licenseNumber + "@example.com"
}

type Store interface {
	HasData(ctx context.Context) (bool, error)
	WithinTx(ctx context.Context, fn func(w Writer) error) error
}

// Writer is the transactional half of Store. Every call made inside one
// WithinTx commits or rolls back together.
type Writer interface {
	EnsureCentre(ctx context.Context, name string) (bool, error)
	LicenseExists(ctx context.Context, licenseNumber string) (bool, error)
	CreatePlaceholder(ctx context.Context, p Placeholder) error
}

type sqlStore struct {
	db *sqlx.DB
	tx core.Transactor
}

func NewSQLStore(db *sqlx.DB) Store {
	return &sqlStore{db: db, tx: core.NewTransactor(db)}
}

func (s *sqlStore) HasData(ctx context.Context) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists, `
		SELECT EXISTS(SELECT 1 FROM hawker_centres)
		    OR EXISTS(SELECT 1 FROM businesses)`)
	if err != nil {
		return false, fmt.Errorf("check seed state: %w", err)
	}
	return exists, nil
}

func (s *sqlStore) WithinTx(ctx context.Context, fn func(w Writer) error) error {
	return s.tx.WithinTx(ctx, func(tx core.DBTX) error {
		return fn(&sqlWriter{
			centres:    hawker.NewRepository(tx),
			businesses: business.NewRepository(tx),
			users:      user.NewRepository(tx),
		})
	})
}

type sqlWriter struct {
	centres    hawker.Repository
	businesses business.Repository
	users      user.Repository
}

func (w *sqlWriter) EnsureCentre(ctx context.Context, name string) (bool, error) {
	_, err := w.centres.GetByName(ctx, name)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return false, err
	}

	if err := w.centres.Create(ctx, &hawker.Centre{ID: uuid.New().String(), Name: name}); err != nil {
		return false, err
	}
	return true, nil
}

func (w *sqlWriter) LicenseExists(ctx context.Context, licenseNumber string) (bool, error) {
	return w.businesses.LicenseExists(ctx, licenseNumber)
}

func (w *sqlWriter) CreatePlaceholder(ctx context.Context, p Placeholder) error {
	u := &user.User{
		ID:           uuid.New().String(),
		Email:        PlaceholderEmail(p.LicenseNumber),
		PasswordHash: core.PlaceholderPasswordHash,
		Kind:         user.KindBusiness,
	}
	if err := w.users.Create(ctx, u); err != nil {
		return err
	}

	var stallName *string
	if p.StallName != "" {
		stallName = &p.StallName
	}

	return w.businesses.Create(ctx, &business.Business{
		UserID:               u.ID,
		LicenseNumber:        p.LicenseNumber,
		StallName:            stallName,
		LicenseeName:         p.LicenseeName,
		EstablishmentAddress: p.EstablishmentAddress,
		HawkerCentre:         p.HawkerCentre,
		PostalCode:           p.PostalCode,
		Status:               business.StatusUnclaimed,
	})
}
