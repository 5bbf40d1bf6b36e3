// AngelaMos | 2026
// service.go

package review

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

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
	logger    *slog.Logger
}

func NewService(
	tx core.Transactor,
	db core.DBTX,
	consumers ConsumerChecker,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		tx:        tx,
		repo:      NewRepository(db),
		consumers: consumers,
		logger:    logger,
	}
}

type CreateInput struct {
	Target      target.Ref
	StarRating  int
	Description string
	Images      []string
}

func (s *Service) Create(ctx context.Context, consumerID string, in CreateInput) (*Review, error) {
	exists, err := s.consumers.Exists(ctx, consumerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("create review: consumer %s: %w", consumerID, core.ErrNotFound)
	}

	rv := &Review{
		ID:          uuid.New().String(),
		ConsumerID:  consumerID,
		TargetType:  in.Target.Type,
		TargetID:    in.Target.ID,
		StarRating:  in.StarRating,
		Description: strings.TrimSpace(in.Description),
		Images:      cleanImages(in.Images),
	}
	if err := validate(rv); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, rv); err != nil {
		return nil, err
	}

	s.logger.Debug("review created",
		"review_id", rv.ID,
		"target", in.Target.String(),
		"star_rating", rv.StarRating,
	)
	return rv, nil
}

// Patch holds only the fields being changed.
type Patch struct {
	StarRating  *int
	Description *string
	Images      *[]string
}

// Update edits a review owned by consumerID. Reviews of other consumers
// are reported as not found.
func (s *Service) Update(
	ctx context.Context,
	reviewID, consumerID string,
	patch Patch,
) (*Review, error) {
	if uuid.Validate(reviewID) != nil {
		return nil, fmt.Errorf("update review: %w", core.ErrNotFound)
	}

	var updated *Review
	err := s.tx.WithinTx(ctx, func(tx core.DBTX) error {
		repo := NewRepository(tx)

		rv, err := repo.GetOwned(ctx, reviewID, consumerID)
		if err != nil {
			return err
		}

		if patch.StarRating != nil {
			rv.StarRating = *patch.StarRating
		}
		if patch.Description != nil {
			rv.Description = strings.TrimSpace(*patch.Description)
		}
		if patch.Images != nil {
			rv.Images = cleanImages(*patch.Images)
		}
		if err := validate(rv); err != nil {
			return err
		}

		if err := repo.Update(ctx, rv); err != nil {
			return err
		}
		updated = rv
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}

	return updated, nil
}

func (s *Service) Delete(ctx context.Context, reviewID, consumerID string) error {
	if uuid.Validate(reviewID) != nil {
		return fmt.Errorf("delete review: %w", core.ErrNotFound)
	}
	return s.repo.Delete(ctx, reviewID, consumerID)
}

func (s *Service) ListForTarget(ctx context.Context, ref target.Ref) ([]Review, error) {
	return s.repo.ListForTarget(ctx, ref)
}

func (s *Service) ListForConsumer(ctx context.Context, consumerID string) ([]Review, error) {
	return s.repo.ListForConsumer(ctx, consumerID)
}

func (s *Service) AverageRating(ctx context.Context, ref target.Ref) (*Rating, error) {
	return s.repo.Rating(ctx, ref)
}

func validate(rv *Review) error {
	if rv.StarRating < MinRating || rv.StarRating > MaxRating {
		return fmt.Errorf("star_rating must be between 1 and 5: %w", core.ErrInvalidInput)
	}
	if utf8.RuneCountInString(rv.Description) > MaxDescriptionLen {
		return fmt.Errorf("description must be at most 250 characters: %w", core.ErrInvalidInput)
	}
	if len(rv.Images) > MaxImages {
		return fmt.Errorf("at most 10 images are allowed: %w", core.ErrInvalidInput)
	}
	return nil
}

// cleanImages drops blank entries and keeps the given order.
func cleanImages(images []string) []string {
	out := make([]string, 0, len(images))
	for _, img := range images {
		if img = strings.TrimSpace(img); img != "" {
			out = append(out, img)
		}
	}
	return out
}
