// AngelaMos | 2026
// repository.go

package consumer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/hawkersg/hawker-backend/internal/core"
)

type Repository interface {
	Create(ctx context.Context, userID string) error
	GetByID(ctx context.Context, userID string) (*Consumer, error)
	GetForUpdate(ctx context.Context, userID string) (*Consumer, error)
	SetPhoto(ctx context.Context, userID string, photo *string) error
	SetRecentSearches(ctx context.Context, userID string, terms []string) error
	Exists(ctx context.Context, userID string) (bool, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const consumerSelect = `
	SELECT c.user_id, u.email, u.username, c.profile_photo, c.recent_searches,
	       u.created_at, u.updated_at
	FROM consumers c
	JOIN users u ON u.id = c.user_id
	WHERE c.user_id = $1`

func (r *repository) Create(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO consumers (user_id) VALUES ($1)`, userID)
	if err != nil {
		return fmt.Errorf("create consumer: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, userID string) (*Consumer, error) {
	return r.get(ctx, consumerSelect, userID)
}

func (r *repository) GetForUpdate(ctx context.Context, userID string) (*Consumer, error) {
	return r.get(ctx, consumerSelect+` FOR UPDATE OF c`, userID)
}

func (r *repository) get(ctx context.Context, query, userID string) (*Consumer, error) {
	var c Consumer
	err := r.db.GetContext(ctx, &c, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get consumer: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get consumer: %w", err)
	}
	if c.RecentSearches == nil {
		c.RecentSearches = pq.StringArray{}
	}
	return &c, nil
}

func (r *repository) SetPhoto(ctx context.Context, userID string, photo *string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE consumers SET profile_photo = $2 WHERE user_id = $1`,
		userID, photo)
	if err != nil {
		return fmt.Errorf("set consumer photo: %w", err)
	}
	return nil
}

func (r *repository) SetRecentSearches(
	ctx context.Context,
	userID string,
	terms []string,
) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE consumers SET recent_searches = $2 WHERE user_id = $1`,
		userID, pq.StringArray(terms))
	if err != nil {
		return fmt.Errorf("set recent searches: %w", err)
	}
	return nil
}

func (r *repository) Exists(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM consumers WHERE user_id = $1)`, userID)
	if err != nil {
		return false, fmt.Errorf("check consumer exists: %w", err)
	}
	return exists, nil
}
