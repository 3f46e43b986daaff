package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ArticleGate/internal/domain"
)

var userID = uuid.MustParse("5b0c4b5e-8a5e-4a55-9d0e-2f0d3f0f9a11")

func newMockStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewStore(mock, nil), mock
}

func articleRow(id, domainID int64, minimum *int) []any {
	now := time.Now()
	return []any{id, domainID, "Physics", "Title", "Body", 12, 10, minimum, "", now, now}
}

var articleCols = []string{
	"id", "domain_id", "name", "title", "content", "page_count",
	"points", "minimum_points", "file_ref", "created_at", "updated_at",
}

func TestListArticles_UnlockedUsesPerDomainThresholds(t *testing.T) {
	store, mock := newMockStore(t)

	open := (*int)(nil)
	gated := 5
	mock.ExpectQuery(`FROM articles a JOIN scientific_domains d ON d.id = a.domain_id WHERE`).
		WithArgs(int64(1), 5, int64(2), 0).
		WillReturnRows(pgxmock.NewRows(articleCols).
			AddRow(articleRow(10, 1, open)...).
			AddRow(articleRow(11, 1, &gated)...))

	articles, err := store.ListArticles(context.Background(), domain.CatalogQuery{
		Mode:   domain.CatalogUnlocked,
		Points: map[int64]int{2: 0, 1: 5},
	})
	require.NoError(t, err)
	require.Len(t, articles, 2)
	assert.Nil(t, articles[0].MinimumPoints)
	require.NotNil(t, articles[1].MinimumPoints)
	assert.Equal(t, 5, *articles[1].MinimumPoints)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListArticles_EmptyPointsSkipsQuery(t *testing.T) {
	store, mock := newMockStore(t)

	articles, err := store.ListArticles(context.Background(), domain.CatalogQuery{Mode: domain.CatalogLocked})
	require.NoError(t, err)
	assert.Empty(t, articles)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogPredicate_LockedSQL(t *testing.T) {
	sql, args, err := catalogPredicate(domain.CatalogQuery{
		Mode:   domain.CatalogLocked,
		Points: map[int64]int{3: 7},
	}).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "((a.domain_id = ? AND a.minimum_points > ?))", sql)
	assert.Equal(t, []any{int64(3), 7}, args)
}

func TestGetArticle_NoRowsIsNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`FROM articles a`).WithArgs(int64(99)).WillReturnError(pgx.ErrNoRows)

	_, err := store.GetArticle(context.Background(), 99)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDomain_DuplicateNameIsValidation(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`INSERT INTO scientific_domains`).
		WithArgs("Physics").
		WillReturnError(&pgconn.PgError{Code: uniqueViolation, ConstraintName: "scientific_domains_name_key"})

	_, err := store.CreateDomain(context.Background(), "Physics")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteDomain_MissingIsNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`DELETE FROM scientific_domains`).
		WithArgs(int64(5)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := store.DeleteDomain(context.Background(), 5)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSumPoints_FillsMissingDomainsWithZero(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`FROM reading_states rs JOIN articles a`).
		WithArgs(int64(1), int64(2), "read", "reviewed", userID.String()).
		WillReturnRows(pgxmock.NewRows([]string{"domain_id", "sum"}).AddRow(int64(1), int64(30)))

	totals, err := store.SumPoints(context.Background(), userID, []int64{1, 2})
	require.NoError(t, err)
	assert.Equal(t, map[int64]int{1: 30, 2: 0}, totals)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSumPoints_NoDomains(t *testing.T) {
	store, mock := newMockStore(t)

	totals, err := store.SumPoints(context.Background(), userID, nil)
	require.NoError(t, err)
	assert.Empty(t, totals)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReadingState_ReturnsExisting(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now()

	mock.ExpectQuery(`WITH inserted AS`).
		WithArgs(userID.String(), int64(7), "reading", 0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "status", "page_left_off", "created_at", "updated_at", "created"}).
			AddRow(int64(3), "read", 4, now, now, false))

	rs, created, err := store.CreateReadingState(context.Background(), domain.ReadingState{
		UserID:    userID,
		ArticleID: 7,
		Status:    domain.StatusReading,
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, int64(3), rs.ID)
	assert.Equal(t, domain.StatusRead, rs.Status)
	assert.Equal(t, 4, rs.PageLeftOff)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertReview_OverwritesScore(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO reviews`).
		WithArgs(userID.String(), int64(7), 8).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(1), now, now))

	r, err := store.UpsertReview(context.Background(), domain.Review{UserID: userID, ArticleID: 7, Score: 8})
	require.NoError(t, err)
	assert.Equal(t, int64(1), r.ID)
	assert.Equal(t, 8, r.Score)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertReview_CheckViolationIsValidation(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`INSERT INTO reviews`).
		WithArgs(userID.String(), int64(7), 11).
		WillReturnError(&pgconn.PgError{Code: checkViolation, ConstraintName: "reviews_score_check"})

	_, err := store.UpsertReview(context.Background(), domain.Review{UserID: userID, ArticleID: 7, Score: 11})
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestWithinTx_CommitsOnSuccess(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE progress_records`).
		WithArgs(false, int64(1), int64(2), userID.String()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))
	mock.ExpectCommit()

	err := store.WithinTx(context.Background(), func(ctx context.Context) error {
		return store.DeactivateProgress(ctx, userID, []int64{1, 2})
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	store, mock := newMockStore(t)
	boom := domain.Validationf("boom")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := store.WithinTx(context.Background(), func(ctx context.Context) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTx_NestedJoinsOuter(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectCommit()

	err := store.WithinTx(context.Background(), func(ctx context.Context) error {
		return store.WithinTx(ctx, func(context.Context) error { return nil })
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrator_LoadsEmbeddedMigrations(t *testing.T) {
	m := NewMigrator(nil, nil)

	migrations, err := m.Load()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)
	assert.Equal(t, 1, migrations[0].Version)
	assert.Equal(t, "init", migrations[0].Name)
	assert.Contains(t, migrations[0].UpSQL, "CREATE TABLE IF NOT EXISTS reading_states")
	assert.Contains(t, migrations[0].DownSQL, "DROP TABLE IF EXISTS reviews")
}
