// AngelaMos | 2026
// repository_test.go

package content

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

	"github.com/carterperez-dev/prepvault/internal/access"
	"github.com/carterperez-dev/prepvault/internal/core"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return sqlx.NewDb(db, "pgx"), mock
}

func questionRows() *sqlmock.Rows {
	return sqlmock.NewRows(QuestionKind.Columns)
}

func TestRepositoryListAppliesFiltersInColumnOrder(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository[Question](db, QuestionKind)
	now := time.Now()

	params := ListParams{
		Search: "go",
		Exact:  map[string]string{"type": "Behavioral", "tier": "Builder"},
	}

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT COUNT(*) FROM questions WHERE TRUE AND title ILIKE $1 AND tier::text = $2 AND type::text = $3")).
		WithArgs("%go%", "Builder", "Behavioral").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC, id")).
		WithArgs("%go%", "Builder", "Behavioral", 20, 0).
		WillReturnRows(questionRows().AddRow(
			"q-1", "Go channels", "body", "answer", "Behavioral", "Mid", "Builder",
			nil, nil, now, now,
		))

	items, total, err := repo.List(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, access.TierBuilder, items[0].Tier)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryListEscapesSearchWildcards(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository[Question](db, QuestionKind)

	mock.ExpectQuery(regexp.QuoteMeta("title ILIKE $1")).
		WithArgs(`%100\%%`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta("LIMIT $2 OFFSET $3")).
		WithArgs(`%100\%%`, 20, 0).
		WillReturnRows(questionRows())

	items, total, err := repo.List(context.Background(), ListParams{Search: "100%"})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, items)
}

func TestRepositoryGetBySlug(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository[Project](db, ProjectKind)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE (id::text = $1 OR slug = $1)")).
		WithArgs("url-shortener").
		WillReturnRows(sqlmock.NewRows(ProjectKind.Columns).AddRow(
			"p-1", "URL shortener", "url-shortener", "desc", "Easy", "{go,redis}",
			"Innovator", "https://github.com/x", "", nil, nil, now, now,
		))

	p, err := repo.Get(context.Background(), "url-shortener")
	require.NoError(t, err)
	assert.Equal(t, access.TierInnovator, p.Tier)
	assert.Equal(t, []string{"go", "redis"}, []string(p.TechStack))
}

func TestRepositoryGetNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository[Question](db, QuestionKind)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id::text = $1")).
		WithArgs("missing").
		WillReturnRows(questionRows())

	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRepositoryInsertManyIsOneStatement(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository[CodingQuestion](db, CodingQuestionKind)
	now := time.Now()

	items := []CodingQuestion{{Title: "Two sum"}, {Title: "LRU cache"}}
	for i := range items {
		items[i].Prepare("admin-1", now)
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO coding_questions (")).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := repo.InsertMany(context.Background(), items)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryInsertManyEmptySkipsStore(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository[CodingQuestion](db, CodingQuestionKind)

	n, err := repo.InsertMany(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryInsertManyDuplicateMapsToDuplicateKey(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository[Project](db, ProjectKind)

	items := []Project{{Title: "A"}}
	items[0].Prepare("admin-1", time.Now())

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO projects (")).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	n, err := repo.InsertMany(context.Background(), items)
	assert.Zero(t, n)
	assert.ErrorIs(t, err, core.ErrDuplicateKey)
}

func TestRepositoryInsertManyOverBindLimitSkipsStore(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository[CodingQuestion](db, CodingQuestionKind)

	items := make([]CodingQuestion, CodingQuestionKind.MaxInsertRows()+1)

	n, err := repo.InsertMany(context.Background(), items)
	assert.Zero(t, n)
	assert.ErrorIs(t, err, core.ErrInvalidInput)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKindMaxInsertRowsFitsBindLimit(t *testing.T) {
	for _, k := range []Kind{QuestionKind, CodingQuestionKind, SystemDesignKind, ProjectKind} {
		t.Run(k.Name, func(t *testing.T) {
			rows := k.MaxInsertRows()
			assert.LessOrEqual(t, rows*len(k.Columns), 65535)
			assert.Greater(t, (rows+1)*len(k.Columns), 65535)
		})
	}
}

func TestRepositoryBulkDeleteSingleStatement(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository[Question](db, QuestionKind)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM questions WHERE id::text = ANY($1)")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 3))

	removed, err := repo.BulkDelete(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryBulkDeleteFailureRemovesNothing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository[Question](db, QuestionKind)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM questions")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnError(errors.New("connection reset"))

	removed, err := repo.BulkDelete(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.Zero(t, removed)
}

func TestRepositoryDeleteMissingIsNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository[Question](db, QuestionKind)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM questions WHERE id::text = $1")).
		WithArgs("ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "ghost")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRepositoryCountByTierFillsMissingTiers(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository[Question](db, QuestionKind)

	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY tier")).
		WillReturnRows(sqlmock.NewRows([]string{"tier", "count"}).
			AddRow("Explorer", 4).
			AddRow("Innovator", 1))

	counts, err := repo.CountByTier(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[access.Tier]int{
		access.TierExplorer:  4,
		access.TierBuilder:   0,
		access.TierInnovator: 1,
	}, counts)
}

func TestDeleteQuestionsInSubcategories(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM questions WHERE subcategory_id::text = ANY($1)")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectCommit()

	var removed int64
	err := core.InTx(context.Background(), db, func(tx *sqlx.Tx) error {
		var err error
		removed, err = DeleteQuestionsInSubcategories(context.Background(), tx, []string{"s-1"})
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
