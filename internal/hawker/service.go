// AngelaMos | 2026
// service.go

package hawker

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hawkersg/hawker-backend/internal/business"
	"github.com/hawkersg/hawker-backend/internal/core"
)

type StallLister interface {
	ListByHawkerCentre(ctx context.Context, centre string) ([]business.Business, error)
}

type Service struct {
	repo   Repository
	stalls StallLister
}

func NewService(db core.DBTX, stalls StallLister) *Service {
	return &Service{
		repo:   NewRepository(db),
		stalls: stalls,
	}
}

// List returns one page of centres by name with the total count.
func (s *Service) List(ctx context.Context, params ListParams) ([]Centre, int, error) {
	params.Normalize()

	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	list, err := s.repo.List(ctx, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Centre, error) {
	if uuid.Validate(id) != nil {
		return nil, fmt.Errorf("hawker centre %q: %w", id, core.ErrNotFound)
	}
	return s.repo.GetByID(ctx, id)
}

// ListStalls returns the businesses registered under the centre's name.
func (s *Service) ListStalls(ctx context.Context, id string) ([]business.Business, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.stalls.ListByHawkerCentre(ctx, c.Name)
}
