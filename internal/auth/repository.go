// AngelaMos | 2026
// repository.go

package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hawkersg/hawker-backend/internal/core"
)

// ErrRotationLost means the session was rotated or revoked between the
// read and the rotate.
var ErrRotationLost = errors.New("session already rotated")

type Repository interface {
	Create(ctx context.Context, s *Session) error
	ByTokenHash(ctx context.Context, hash string) (*Session, error)
	ByID(ctx context.Context, id string) (*Session, error)
	Rotate(ctx context.Context, oldID string, next *Session) error
	Revoke(ctx context.Context, scope RevokeScope, value string) (int64, error)
	ListActive(ctx context.Context, userID string) ([]Session, error)
}

// RevokeScope picks which sessions a revoke touches.
type RevokeScope string

const (
	RevokeSession RevokeScope = "id"
	RevokeFamily  RevokeScope = "family_id"
	RevokeUser    RevokeScope = "user_id"
)

const sessionColumns = `id, user_id, user_type, token_hash, family_id, expires_at,
	created_at, rotated_at, replaced_by, revoked_at, user_agent, ip_address`

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, s *Session) error {
	query := `
		INSERT INTO sessions (
			id, user_id, user_type, token_hash, family_id, expires_at,
			user_agent, ip_address
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`

	err := r.db.GetContext(ctx, &s.CreatedAt, query,
		s.ID, s.UserID, s.UserType, s.TokenHash, s.FamilyID, s.ExpiresAt,
		s.UserAgent, s.IPAddress,
	)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (r *repository) ByTokenHash(ctx context.Context, hash string) (*Session, error) {
	return r.one(ctx, "token_hash", hash)
}

func (r *repository) ByID(ctx context.Context, id string) (*Session, error) {
	return r.one(ctx, "id", id)
}

func (r *repository) one(ctx context.Context, column, value string) (*Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE ` + column + ` = $1`

	var s Session
	err := r.db.GetContext(ctx, &s, query, value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get session: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &s, nil
}

// Rotate retires oldID and stores next in one statement. Two refreshes
// racing on the same token cannot both succeed.
func (r *repository) Rotate(ctx context.Context, oldID string, next *Session) error {
	query := `
		WITH retired AS (
			UPDATE sessions
			SET rotated_at = now(), replaced_by = $1
			WHERE id = $9 AND rotated_at IS NULL AND revoked_at IS NULL
			RETURNING id
		)
		INSERT INTO sessions (
			id, user_id, user_type, token_hash, family_id, expires_at,
			user_agent, ip_address
		)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8
		WHERE EXISTS (SELECT 1 FROM retired)
		RETURNING created_at`

	err := r.db.GetContext(ctx, &next.CreatedAt, query,
		next.ID, next.UserID, next.UserType, next.TokenHash, next.FamilyID,
		next.ExpiresAt, next.UserAgent, next.IPAddress, oldID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("rotate session: %w", ErrRotationLost)
	}
	if err != nil {
		return fmt.Errorf("rotate session: %w", err)
	}
	return nil
}

func (r *repository) Revoke(
	ctx context.Context,
	scope RevokeScope,
	value string,
) (int64, error) {
	switch scope {
	case RevokeSession, RevokeFamily, RevokeUser:
	default:
		return 0, fmt.Errorf("revoke sessions by %q: %w", scope, core.ErrInvalidInput)
	}

	query := `
		UPDATE sessions SET revoked_at = now()
		WHERE ` + string(scope) + ` = $1 AND revoked_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, value)
	if err != nil {
		return 0, fmt.Errorf("revoke sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("revoke sessions: %w", err)
	}
	return n, nil
}

func (r *repository) ListActive(ctx context.Context, userID string) ([]Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE user_id = $1
			AND revoked_at IS NULL
			AND rotated_at IS NULL
			AND expires_at > now()
		ORDER BY created_at DESC`

	var list []Session
	if err := r.db.SelectContext(ctx, &list, query, userID); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return list, nil
}
