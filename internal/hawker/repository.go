// AngelaMos | 2026
// repository.go

package hawker

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hawkersg/hawker-backend/internal/core"
)

type Repository interface {
	Create(ctx context.Context, c *Centre) error
	GetByID(ctx context.Context, id string) (*Centre, error)
	GetByName(ctx context.Context, name string) (*Centre, error)
	List(ctx context.Context, limit, offset int) ([]Centre, error)
	Count(ctx context.Context) (int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const centreSelect = `
	SELECT h.id, h.name, h.created_at, COUNT(b.user_id) AS stall_count
	FROM hawker_centres h
	LEFT JOIN businesses b ON b.hawker_centre = h.name`

func (r *repository) Create(ctx context.Context, c *Centre) error {
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO hawker_centres (id, name) VALUES ($1, $2) RETURNING created_at`,
		c.ID, c.Name,
	).Scan(&c.CreatedAt)
	if err != nil {
		if core.IsUniqueViolation(err) {
			return fmt.Errorf("create hawker centre %q: %w", c.Name, core.ErrDuplicateKey)
		}
		return fmt.Errorf("create hawker centre: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Centre, error) {
	return r.get(ctx, centreSelect+` WHERE h.id = $1 GROUP BY h.id`, id)
}

func (r *repository) GetByName(ctx context.Context, name string) (*Centre, error) {
	return r.get(ctx, centreSelect+` WHERE h.name = $1 GROUP BY h.id`, name)
}

func (r *repository) get(ctx context.Context, query, arg string) (*Centre, error) {
	var c Centre
	err := r.db.GetContext(ctx, &c, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get hawker centre: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get hawker centre: %w", err)
	}
	return &c, nil
}

func (r *repository) List(ctx context.Context, limit, offset int) ([]Centre, error) {
	list := []Centre{}
	err := r.db.SelectContext(ctx, &list,
		centreSelect+` GROUP BY h.id ORDER BY h.name LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list hawker centres: %w", err)
	}
	return list, nil
}

func (r *repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM hawker_centres`); err != nil {
		return 0, fmt.Errorf("count hawker centres: %w", err)
	}
	return n, nil
}
