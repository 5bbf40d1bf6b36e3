// AngelaMos | 2026
// repository_test.go

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hawkersg/hawker-backend/internal/core"
)

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })
	return NewRepository(sqlx.NewDb(mockDB, "pgx")), sqlMock
}

func TestRotate(t *testing.T) {
	ctx := context.Background()
	next := &Session{ID: "s-2", UserID: "b-1", UserType: UserTypeBusiness, FamilyID: "fam-1"}

	t.Run("retires the old session and stores the new one", func(t *testing.T) {
		repo, sqlMock := newMockRepo(t)
		now := time.Now()

		sqlMock.ExpectQuery(`WITH retired AS`).
			WithArgs("s-2", "b-1", UserTypeBusiness, sqlmock.AnyArg(), "fam-1",
				sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), "s-1").
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))

		require.NoError(t, repo.Rotate(ctx, "s-1", next))
		assert.Equal(t, now, next.CreatedAt)
		assert.NoError(t, sqlMock.ExpectationsWereMet())
	})

	t.Run("already rotated", func(t *testing.T) {
		repo, sqlMock := newMockRepo(t)

		sqlMock.ExpectQuery(`WITH retired AS`).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}))

		assert.ErrorIs(t, repo.Rotate(ctx, "s-1", next), ErrRotationLost)
	})
}

func TestRevokeScopes(t *testing.T) {
	ctx := context.Background()

	t.Run("family", func(t *testing.T) {
		repo, sqlMock := newMockRepo(t)
		sqlMock.ExpectExec(`UPDATE sessions SET revoked_at = now\(\)\s+WHERE family_id = \$1`).
			WithArgs("fam-1").
			WillReturnResult(sqlmock.NewResult(0, 3))

		n, err := repo.Revoke(ctx, RevokeFamily, "fam-1")
		require.NoError(t, err)
		assert.EqualValues(t, 3, n)
	})

	t.Run("unknown scope never reaches the database", func(t *testing.T) {
		repo, sqlMock := newMockRepo(t)

		_, err := repo.Revoke(ctx, RevokeScope("1=1 OR id"), "x")
		assert.ErrorIs(t, err, core.ErrInvalidInput)
		assert.NoError(t, sqlMock.ExpectationsWereMet())
	})

	t.Run("missing session", func(t *testing.T) {
		repo, sqlMock := newMockRepo(t)
		sqlMock.ExpectQuery(`FROM sessions WHERE id = \$1`).
			WithArgs("s-404").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.ByID(ctx, "s-404")
		assert.ErrorIs(t, err, core.ErrNotFound)
	})
}
