// AngelaMos | 2026
// repository.go

package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hawkersg/hawker-backend/internal/core"
	"github.com/hawkersg/hawker-backend/internal/target"
)

type Repository interface {
	Create(ctx context.Context, r *Review) error
	GetOwned(ctx context.Context, id, consumerID string) (*Review, error)
	Update(ctx context.Context, r *Review) error
	Delete(ctx context.Context, id, consumerID string) error
	ListForTarget(ctx context.Context, ref target.Ref) ([]Review, error)
	ListForConsumer(ctx context.Context, consumerID string) ([]Review, error)
	Rating(ctx context.Context, ref target.Ref) (*Rating, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const reviewSelect = `
	SELECT r.id, r.consumer_id, u.username, r.target_type, r.target_id,
	       r.star_rating, r.description, r.images, r.created_at, r.updated_at
	FROM reviews r
	JOIN users u ON u.id = r.consumer_id`

func (r *repository) Create(ctx context.Context, rv *Review) error {
	query := `
		INSERT INTO reviews (
			id, consumer_id, target_type, target_id, star_rating, description, images
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		rv.ID,
		rv.ConsumerID,
		rv.TargetType,
		rv.TargetID,
		rv.StarRating,
		rv.Description,
		rv.Images,
	).Scan(&rv.CreatedAt, &rv.UpdatedAt)
	if err != nil {
		if core.IsForeignKeyViolation(err) {
			return fmt.Errorf("create review: consumer: %w", core.ErrNotFound)
		}
		return fmt.Errorf("create review: %w", err)
	}

	return nil
}

func (r *repository) GetOwned(ctx context.Context, id, consumerID string) (*Review, error) {
	var rv Review
	err := r.db.GetContext(ctx, &rv,
		reviewSelect+` WHERE r.id = $1 AND r.consumer_id = $2`,
		id, consumerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get review: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}
	return &rv, nil
}

func (r *repository) Update(ctx context.Context, rv *Review) error {
	query := `
		UPDATE reviews
		SET star_rating = $3, description = $4, images = $5, updated_at = NOW()
		WHERE id = $1 AND consumer_id = $2
		RETURNING updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		rv.ID,
		rv.ConsumerID,
		rv.StarRating,
		rv.Description,
		rv.Images,
	).Scan(&rv.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update review: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id, consumerID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM reviews WHERE id = $1 AND consumer_id = $2`,
		id, consumerID)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete review: %w", core.ErrNotFound)
	}
	return nil
}

func (r *repository) ListForTarget(ctx context.Context, ref target.Ref) ([]Review, error) {
	list := []Review{}
	err := r.db.SelectContext(ctx, &list,
		reviewSelect+`
		WHERE r.target_type = $1 AND r.target_id = $2
		ORDER BY r.created_at DESC, r.id`,
		ref.Type, ref.ID)
	if err != nil {
		return nil, fmt.Errorf("list reviews for target: %w", err)
	}
	return list, nil
}

func (r *repository) ListForConsumer(ctx context.Context, consumerID string) ([]Review, error) {
	list := []Review{}
	err := r.db.SelectContext(ctx, &list,
		reviewSelect+`
		WHERE r.consumer_id = $1
		ORDER BY r.created_at DESC, r.id`,
		consumerID)
	if err != nil {
		return nil, fmt.Errorf("list reviews for consumer: %w", err)
	}
	return list, nil
}

// Rating relies on AVG returning NULL over zero rows.
func (r *repository) Rating(ctx context.Context, ref target.Ref) (*Rating, error) {
	var row struct {
		Average sql.NullFloat64 `db:"average"`
		Count   int             `db:"count"`
	}

	err := r.db.GetContext(ctx, &row, `
		SELECT AVG(star_rating)::float8 AS average, COUNT(*) AS count
		FROM reviews
		WHERE target_type = $1 AND target_id = $2`,
		ref.Type, ref.ID)
	if err != nil {
		return nil, fmt.Errorf("average rating: %w", err)
	}

	rating := &Rating{Count: row.Count}
	if row.Average.Valid && row.Count > 0 {
		avg := row.Average.Float64
		rating.Average = &avg
	}
	return rating, nil
}
