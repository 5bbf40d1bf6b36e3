// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/hawkersg/hawker-backend/internal/core"
)

// Repository stores the identity row shared by consumers and businesses.
// Subtype rows live in their own packages and reference users.id.
type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdateUsername(ctx context.Context, id, username string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	Delete(ctx context.Context, id string) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

type repository struct {
	db core.DBTX
}

// NewRepository accepts either the pool or a transaction.
func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const (
	selectUser = `SELECT id, email, password_hash, username, user_type, created_at, updated_at FROM users`

	insertUser = `
		INSERT INTO users (id, email, password_hash, username, user_type)
		VALUES (:id, :email, :password_hash, :username, :user_type)
		RETURNING created_at, updated_at`
)

func (r *repository) Create(ctx context.Context, u *User) error {
	rows, err := sqlx.NamedQueryContext(ctx, r.db, insertUser, u)
	if err != nil {
		return insertError(u, err)
	}
	defer rows.Close() //nolint:errcheck // read-only cursor

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return insertError(u, err)
		}
		return errors.New("insert user: no row returned")
	}
	if err := rows.Scan(&u.CreatedAt, &u.UpdatedAt); err != nil {
		return insertError(u, err)
	}
	return nil
}

// insertError maps the email unique index. The driver may report it when
// the statement runs or only once the RETURNING row is read.
func insertError(u *User, err error) error {
	if core.IsUniqueViolation(err) {
		return fmt.Errorf("insert user %s: %w", u.Email, ErrDuplicateEmail)
	}
	return fmt.Errorf("insert user: %w", err)
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	return r.find(ctx, `id = $1`, id)
}

// GetByEmail matches case-insensitively; emails are stored normalised but
// seeded rows may predate that.
func (r *repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.find(ctx, `lower(email) = lower($1)`, email)
}

func (r *repository) find(ctx context.Context, where string, arg any) (*User, error) {
	var u User
	err := r.db.GetContext(ctx, &u, selectUser+` WHERE `+where, arg)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("user: %w", core.ErrNotFound)
	case err != nil:
		return nil, fmt.Errorf("load user: %w", err)
	}
	return &u, nil
}

func (r *repository) UpdateUsername(ctx context.Context, id, username string) error {
	return r.mustAffect(ctx,
		`UPDATE users SET username = $2, updated_at = now() WHERE id = $1`, id, username)
}

func (r *repository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.mustAffect(ctx,
		`UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`, id, passwordHash)
}

// Delete removes the identity row; subtype rows go with it via FK cascade.
func (r *repository) Delete(ctx context.Context, id string) error {
	return r.mustAffect(ctx, `DELETE FROM users WHERE id = $1`, id)
}

func (r *repository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM users WHERE lower(email) = lower($1))`, email)
	if err != nil {
		return false, fmt.Errorf("email lookup: %w", err)
	}
	return exists, nil
}

// mustAffect runs a single-row write and reports ErrNotFound when no row
// matched.
func (r *repository) mustAffect(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("write user: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("write user: %w", err)
	} else if n == 0 {
		return fmt.Errorf("user: %w", core.ErrNotFound)
	}
	return nil
}
