// AngelaMos | 2026
// repository.go

package favourite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hawkersg/hawker-backend/internal/core"
	"github.com/hawkersg/hawker-backend/internal/target"
)

type Repository interface {
	Insert(ctx context.Context, f *Favourite) (bool, error)
	Delete(ctx context.Context, consumerID string, ref target.Ref) (bool, error)
	Exists(ctx context.Context, consumerID string, ref target.Ref) (bool, error)
	ListByConsumer(ctx context.Context, consumerID string) ([]Favourite, error)
	Lock(ctx context.Context, consumerID string, ref target.Ref) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

// Insert reports false when the tuple is already present.
func (r *repository) Insert(ctx context.Context, f *Favourite) (bool, error) {
	query := `
		INSERT INTO favourites (id, consumer_id, target_type, target_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT ON CONSTRAINT favourites_consumer_target_key DO NOTHING
		RETURNING created_at`

	err := r.db.QueryRowxContext(ctx, query,
		f.ID,
		f.ConsumerID,
		f.TargetType,
		f.TargetID,
	).Scan(&f.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		if core.IsForeignKeyViolation(err) {
			return false, fmt.Errorf("insert favourite: consumer: %w", core.ErrNotFound)
		}
		return false, fmt.Errorf("insert favourite: %w", err)
	}

	return true, nil
}

func (r *repository) Delete(
	ctx context.Context,
	consumerID string,
	ref target.Ref,
) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM favourites
		WHERE consumer_id = $1 AND target_type = $2 AND target_id = $3`,
		consumerID, ref.Type, ref.ID)
	if err != nil {
		return false, fmt.Errorf("delete favourite: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete favourite: %w", err)
	}
	return rows > 0, nil
}

func (r *repository) Exists(
	ctx context.Context,
	consumerID string,
	ref target.Ref,
) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS(
			SELECT 1 FROM favourites
			WHERE consumer_id = $1 AND target_type = $2 AND target_id = $3
		)`,
		consumerID, ref.Type, ref.ID)
	if err != nil {
		return false, fmt.Errorf("check favourite: %w", err)
	}
	return exists, nil
}

func (r *repository) ListByConsumer(
	ctx context.Context,
	consumerID string,
) ([]Favourite, error) {
	query := `
		SELECT id, consumer_id, target_type, target_id, created_at
		FROM favourites
		WHERE consumer_id = $1
		ORDER BY created_at, id`

	list := []Favourite{}
	if err := r.db.SelectContext(ctx, &list, query, consumerID); err != nil {
		return nil, fmt.Errorf("list favourites: %w", err)
	}
	return list, nil
}

// Lock serializes writers on one (consumer, target) tuple until the
// surrounding transaction ends.
func (r *repository) Lock(ctx context.Context, consumerID string, ref target.Ref) error {
	_, err := r.db.ExecContext(ctx,
		`SELECT pg_advisory_xact_lock(hashtext($1))`,
		consumerID+"|"+ref.String())
	if err != nil {
		return fmt.Errorf("lock favourite: %w", err)
	}
	return nil
}
