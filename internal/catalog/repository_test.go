// AngelaMos | 2026
// repository_test.go

package catalog

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/prepvault/internal/core"
)

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewRepository(sqlx.NewDb(db, "pgx")), mock
}

func TestDeleteSubcategoryCascadesInOneTransaction(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM questions WHERE subcategory_id::text = ANY($1)")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 12))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM subcategories WHERE id::text = $1")).
		WithArgs("sub-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	removal, err := repo.DeleteSubcategory(context.Background(), "sub-1")
	require.NoError(t, err)
	assert.Equal(t, &Removal{Questions: 12, Subcategories: 1}, removal)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteSubcategoryRollsBackWhenParentDeleteFails(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM questions")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM subcategories")).
		WithArgs("sub-1").
		WillReturnError(errors.New("lock timeout"))
	mock.ExpectRollback()

	removal, err := repo.DeleteSubcategory(context.Background(), "sub-1")
	require.Error(t, err)
	assert.Nil(t, removal)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteSubcategoryMissingRollsBack(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM questions")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM subcategories")).
		WithArgs("ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.DeleteSubcategory(context.Background(), "ghost")
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteCategoryCascades(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id::text FROM subcategories WHERE category_id::text = $1")).
		WithArgs("cat-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("sub-1").AddRow("sub-2"))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM questions WHERE subcategory_id::text = ANY($1)")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 7))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM subcategories WHERE id::text = ANY($1)")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM categories WHERE id::text = $1")).
		WithArgs("cat-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	removal, err := repo.DeleteCategory(context.Background(), "cat-1")
	require.NoError(t, err)
	assert.Equal(t, &Removal{Questions: 7, Subcategories: 2}, removal)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteEmptyCategorySkipsChildDeletes(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id::text FROM subcategories")).
		WithArgs("cat-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM categories")).
		WithArgs("cat-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	removal, err := repo.DeleteCategory(context.Background(), "cat-1")
	require.NoError(t, err)
	assert.Equal(t, &Removal{}, removal)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSubcategoryUnknownCategory(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()
	catID := "00000000-0000-0000-0000-000000000000"

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO subcategories")).
		WillReturnError(&pgconn.PgError{Code: "23503"})

	err := repo.CreateSubcategory(context.Background(), &Subcategory{
		ID: "sub-1", CategoryID: &catID, Name: "Go", Slug: "go", CreatedAt: now, UpdatedAt: now,
	})
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestSubcategoryExists(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs("sub-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.SubcategoryExists(context.Background(), "sub-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGetCategoryBySlugNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id::text = $1 OR slug = $1")).
		WithArgs("backend").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug", "description", "created_at", "updated_at"}))

	_, err := repo.GetCategory(context.Background(), "backend")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestWritesMapConstraintViolations(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name    string
		stmt    string
		code    string
		wantErr error
		write   func(Repository) error
	}{
		{
			name:    "create category duplicate slug",
			stmt:    "INSERT INTO categories",
			code:    "23505",
			wantErr: core.ErrDuplicateKey,
			write: func(r Repository) error {
				return r.CreateCategory(context.Background(), &Category{ID: "cat-1", Slug: "go", CreatedAt: now})
			},
		},
		{
			name:    "update category duplicate slug",
			stmt:    "UPDATE categories",
			code:    "23505",
			wantErr: core.ErrDuplicateKey,
			write: func(r Repository) error {
				return r.UpdateCategory(context.Background(), &Category{ID: "cat-1", Slug: "go", UpdatedAt: now})
			},
		},
		{
			name:    "create subcategory duplicate slug",
			stmt:    "INSERT INTO subcategories",
			code:    "23505",
			wantErr: core.ErrDuplicateKey,
			write: func(r Repository) error {
				return r.CreateSubcategory(context.Background(), &Subcategory{ID: "sub-1", Slug: "go", CreatedAt: now})
			},
		},
		{
			name:    "update subcategory unknown category",
			stmt:    "UPDATE subcategories",
			code:    "23503",
			wantErr: core.ErrInvalidInput,
			write: func(r Repository) error {
				return r.UpdateSubcategory(context.Background(), &Subcategory{ID: "sub-1", Slug: "go", UpdatedAt: now})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepo(t)
			mock.ExpectExec(regexp.QuoteMeta(tt.stmt)).
				WillReturnError(&pgconn.PgError{Code: tt.code})

			err := tt.write(repo)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
