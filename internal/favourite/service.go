// AngelaMos | 2026
// service.go

package favourite

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hawkersg/hawker-backend/internal/core"
	"github.com/hawkersg/hawker-backend/internal/target"
)

type ConsumerChecker interface {
	Exists(ctx context.Context, userID string) (bool, error)
}

type Service struct {
	tx        core.Transactor
	repo      Repository
	consumers ConsumerChecker
}

func NewService(tx core.Transactor, db core.DBTX, consumers ConsumerChecker) *Service {
	return &Service{
		tx:        tx,
		repo:      NewRepository(db),
		consumers: consumers,
	}
}

// Add stores the favourite and reports whether it was newly added. An
// existing tuple is not an error.
func (s *Service) Add(ctx context.Context, consumerID string, ref target.Ref) (bool, error) {
	if err := s.requireConsumer(ctx, consumerID); err != nil {
		return false, err
	}
	return s.repo.Insert(ctx, newFavourite(consumerID, ref))
}

func (s *Service) Remove(ctx context.Context, consumerID string, ref target.Ref) error {
	removed, err := s.repo.Delete(ctx, consumerID, ref)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("remove favourite %s: %w", ref, core.ErrNotFound)
	}
	return nil
}

// Toggle flips membership under a per-tuple advisory lock so concurrent
// toggles apply one after another.
func (s *Service) Toggle(
	ctx context.Context,
	consumerID string,
	ref target.Ref,
) (Action, error) {
	if err := s.requireConsumer(ctx, consumerID); err != nil {
		return "", err
	}

	var action Action
	err := s.tx.WithinTx(ctx, func(tx core.DBTX) error {
		repo := NewRepository(tx)

		if err := repo.Lock(ctx, consumerID, ref); err != nil {
			return err
		}

		removed, err := repo.Delete(ctx, consumerID, ref)
		if err != nil {
			return err
		}
		if removed {
			action = ActionRemoved
			return nil
		}

		if _, err := repo.Insert(ctx, newFavourite(consumerID, ref)); err != nil {
			return err
		}
		action = ActionAdded
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("toggle favourite: %w", err)
	}

	return action, nil
}

func (s *Service) IsFavourite(
	ctx context.Context,
	consumerID string,
	ref target.Ref,
) (bool, error) {
	return s.repo.Exists(ctx, consumerID, ref)
}

func (s *Service) ListByConsumer(ctx context.Context, consumerID string) ([]Favourite, error) {
	if err := s.requireConsumer(ctx, consumerID); err != nil {
		return nil, err
	}
	return s.repo.ListByConsumer(ctx, consumerID)
}

func (s *Service) requireConsumer(ctx context.Context, consumerID string) error {
	exists, err := s.consumers.Exists(ctx, consumerID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("consumer %s: %w", consumerID, core.ErrNotFound)
	}
	return nil
}

func newFavourite(consumerID string, ref target.Ref) *Favourite {
	return &Favourite{
		ID:         uuid.New().String(),
		ConsumerID: consumerID,
		TargetType: ref.Type,
		TargetID:   ref.ID,
	}
}
