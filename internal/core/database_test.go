// AngelaMos | 2026
// database_test.go

package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPgErrorClassification(t *testing.T) {
	dup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	fk := &pgconn.PgError{Code: "23503"}

	assert.True(t, IsDuplicateKeyError(dup))
	assert.False(t, IsForeignKeyError(dup))
	assert.True(t, IsForeignKeyError(fk))
	assert.False(t, IsDuplicateKeyError(errors.New("23505")))
}

func TestRequireAffected(t *testing.T) {
	assert.NoError(t, RequireAffected(sqlmock.NewResult(0, 1), "delete"))

	err := RequireAffected(sqlmock.NewResult(0, 0), "delete")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "delete")
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, EscapeLike("100%"))
	assert.Equal(t, `snake\_case`, EscapeLike("snake_case"))
	assert.Equal(t, `a\\b`, EscapeLike(`a\b`))
}

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return sqlx.NewDb(db, "pgx"), mock
}

func TestInTx(t *testing.T) {
	t.Run("commit", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM questions").WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		err := InTx(context.Background(), db, func(tx *sqlx.Tx) error {
			_, err := tx.Exec("DELETE FROM questions")
			return err
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rollback keeps original error", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		err := InTx(context.Background(), db, func(*sqlx.Tx) error {
			return ErrNotFound
		})

		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
