// AngelaMos | 2026
// repository_test.go

package profile

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/prepvault/internal/access"
	"github.com/carterperez-dev/prepvault/internal/core"
)

func newMockRepo(t *testing.T) (*repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return &repository{db: sqlx.NewDb(db, "pgx")}, mock
}

var profileRowColumns = []string{
	"id", "email", "password_hash", "name", "is_admin", "token_version",
	"tier", "created_at", "updated_at",
}

func TestRepositoryGetByIDReadsActiveTier(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE p.id = $1")).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows(profileRowColumns).
			AddRow("u-1", "a@b.c", "hash", "Ada", false, 2, "Builder", now, now))

	p, err := repo.GetByID(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, access.TierBuilder, p.Tier)
	assert.Equal(t, 2, p.TokenVersion)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE p.id = $1")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(profileRowColumns))

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRepositorySetAdminZeroRowsIsNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE profiles SET is_admin")).
		WithArgs("ghost", true).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetAdmin(context.Background(), "ghost", true)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRepositoryReplaceSubscriptionRunsInTransaction(t *testing.T) {
	repo, mock := newMockRepo(t)
	started := time.Now()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE subscriptions SET status = 'cancelled'")).
		WithArgs("u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO subscriptions")).
		WithArgs(sqlmock.AnyArg(), "u-1", access.TierInnovator, StatusActive).
		WillReturnRows(sqlmock.NewRows([]string{"started_at"}).AddRow(started))
	mock.ExpectCommit()

	sub := &Subscription{UserID: "u-1", Tier: access.TierInnovator}
	require.NoError(t, repo.ReplaceSubscription(context.Background(), sub))

	assert.NotEmpty(t, sub.ID)
	assert.Equal(t, StatusActive, sub.Status)
	assert.WithinDuration(t, started, sub.StartedAt, time.Second)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryReplaceSubscriptionRollsBackOnInsertFailure(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE subscriptions")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO subscriptions")).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.ReplaceSubscription(
		context.Background(),
		&Subscription{UserID: "u-1", Tier: access.TierBuilder},
	)
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryListFiltersByTierAndAdmin(t *testing.T) {
	repo, mock := newMockRepo(t)
	tier := access.TierBuilder
	admin := false

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs(tier, admin).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY p.created_at DESC")).
		WithArgs(tier, admin, 20, 0).
		WillReturnRows(sqlmock.NewRows(profileRowColumns).
			AddRow("u-1", "a@b.c", "hash", "Ada", false, 0, "Builder", time.Now(), time.Now()))

	profiles, total, err := repo.List(context.Background(), ListParams{
		Tier:  &tier,
		Admin: &admin,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, profiles, 1)
	assert.Equal(t, "Ada", profiles[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}
