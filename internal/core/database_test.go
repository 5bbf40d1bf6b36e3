// AngelaMos | 2026
// database_test.go

package core

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockTransactor(t *testing.T) (Transactor, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })
	return NewTransactor(sqlx.NewDb(mockDB, "pgx")), sqlMock
}

func TestWithinTx(t *testing.T) {
	ctx := context.Background()

	t.Run("commits on success", func(t *testing.T) {
		tx, sqlMock := newMockTransactor(t)
		sqlMock.ExpectBegin()
		sqlMock.ExpectExec(`DELETE FROM favourites`).WillReturnResult(sqlmock.NewResult(0, 1))
		sqlMock.ExpectCommit()

		err := tx.WithinTx(ctx, func(db DBTX) error {
			_, err := db.ExecContext(ctx, `DELETE FROM favourites`)
			return err
		})
		require.NoError(t, err)
		assert.NoError(t, sqlMock.ExpectationsWereMet())
	})

	t.Run("rolls back on error", func(t *testing.T) {
		tx, sqlMock := newMockTransactor(t)
		sqlMock.ExpectBegin()
		sqlMock.ExpectRollback()

		boom := errors.New("boom")
		err := tx.WithinTx(ctx, func(DBTX) error { return boom })
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, sqlMock.ExpectationsWereMet())
	})

	t.Run("rolls back on panic", func(t *testing.T) {
		tx, sqlMock := newMockTransactor(t)
		sqlMock.ExpectBegin()
		sqlMock.ExpectRollback()

		assert.Panics(t, func() {
			_ = tx.WithinTx(ctx, func(DBTX) error { panic("boom") })
		})
		assert.NoError(t, sqlMock.ExpectationsWereMet())
	})
}

func TestPgErrorClassification(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505", ConstraintName: "businesses_license_number_key"}
	wrapped := errors.Join(errors.New("insert business"), unique)

	assert.True(t, IsUniqueViolation(wrapped))
	assert.False(t, IsForeignKeyViolation(wrapped))
	assert.Equal(t, "businesses_license_number_key", ConstraintName(wrapped))

	assert.True(t, IsForeignKeyViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("plain")))
	assert.Empty(t, ConstraintName(errors.New("plain")))
}

func TestRedisKey(t *testing.T) {
	assert.Equal(t, "hawker:corppass:state:abc", RedisKey("corppass", "state", "abc"))
	assert.Equal(t, "hawker:ratelimit", RedisKey("ratelimit"))
}
