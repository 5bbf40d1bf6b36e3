// AngelaMos | 2026
// hours.go

package business

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hawkersg/hawker-backend/internal/core"
)

type OperatingHourInput struct {
	Day       string
	StartTime string
	EndTime   string
}

// SetOperatingHours upserts one row per supplied day. Days not supplied
// keep their existing hours.
func (s *Service) SetOperatingHours(
	ctx context.Context,
	pathLicense, tokenLicense string,
	entries []OperatingHourInput,
) ([]OperatingHour, error) {
	var hours []OperatingHour

	err := s.tx.WithinTx(ctx, func(tx core.DBTX) error {
		repo := NewRepository(tx)

		if _, err := s.authorize(ctx, repo, pathLicense, tokenLicense); err != nil {
			return err
		}

		for _, e := range entries {
			h := &OperatingHour{
				ID:            uuid.New().String(),
				LicenseNumber: pathLicense,
				Day:           e.Day,
				StartTime:     e.StartTime,
				EndTime:       e.EndTime,
			}
			if err := repo.UpsertOperatingHour(ctx, h); err != nil {
				return err
			}
		}

		var err error
		hours, err = repo.ListOperatingHours(ctx, pathLicense)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("set operating hours: %w", err)
	}

	return hours, nil
}

func (s *Service) ListOperatingHours(
	ctx context.Context,
	licenseNumber string,
) ([]OperatingHour, error) {
	if _, err := s.repo.GetByLicense(ctx, licenseNumber); err != nil {
		return nil, err
	}
	return s.repo.ListOperatingHours(ctx, licenseNumber)
}
