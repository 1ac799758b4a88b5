package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitchdata/pitchdata-api/internal/domain"
	"github.com/pitchdata/pitchdata-api/internal/store"
)

func newSeasonStore(t *testing.T) (sqlmock.Sqlmock, *PostgresSeasonStore) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return mock, NewPostgresSeasonStore(db, time.Second)
}

func testSeason() *domain.Season {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &domain.Season{
		LeagueID:  39,
		Year:      2026,
		StartDate: time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2027, 5, 23, 0, 0, 0, 0, time.UTC),
		Current:   true,
		Coverage:  map[string]any{"fixtures": true, "standings": true},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func seasonColumns() []string {
	return []string{
		"id", "league_id", "year", "start_date", "end_date",
		"current", "coverage", "created_at", "updated_at",
	}
}

func TestSeasonStoreCreate(t *testing.T) {
	t.Parallel()

	t.Run("inserts and assigns the surrogate ID", func(t *testing.T) {
		t.Parallel()
		mock, s := newSeasonStore(t)
		season := testSeason()

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(seasonInsertSQL)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
		mock.ExpectCommit()

		require.NoError(t, s.Create(context.Background(), season))
		assert.Equal(t, int64(7), season.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps duplicate league and year to ErrSeasonExists", func(t *testing.T) {
		t.Parallel()
		mock, s := newSeasonStore(t)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(seasonInsertSQL)).
			WillReturnError(&pgconn.PgError{Code: uniqueViolationCode})
		mock.ExpectRollback()

		err := s.Create(context.Background(), testSeason())
		assert.ErrorIs(t, err, store.ErrSeasonExists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects an unencodable coverage document", func(t *testing.T) {
		t.Parallel()
		_, s := newSeasonStore(t)

		season := testSeason()
		season.Coverage = map[string]any{"bad": make(chan int)}

		err := s.Create(context.Background(), season)
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
	})
}

func TestSeasonStoreGetByID(t *testing.T) {
	t.Parallel()

	t.Run("round-trips the coverage document", func(t *testing.T) {
		t.Parallel()
		mock, s := newSeasonStore(t)
		want := testSeason()

		rows := sqlmock.NewRows(seasonColumns()).AddRow(
			int64(7), want.LeagueID, want.Year,
			want.StartDate, want.EndDate, want.Current,
			[]byte(`{"fixtures":true,"standings":true}`),
			want.CreatedAt, want.UpdatedAt,
		)
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(seasonSelectSQL)).
			WithArgs(int64(7)).
			WillReturnRows(rows)
		mock.ExpectCommit()

		got, err := s.GetByID(context.Background(), 7)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"fixtures": true, "standings": true}, got.Coverage)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("null dates and coverage scan as zero values", func(t *testing.T) {
		t.Parallel()
		mock, s := newSeasonStore(t)
		want := testSeason()

		rows := sqlmock.NewRows(seasonColumns()).AddRow(
			int64(7), want.LeagueID, want.Year,
			nil, nil, false, nil,
			want.CreatedAt, want.UpdatedAt,
		)
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(seasonSelectSQL)).
			WithArgs(int64(7)).
			WillReturnRows(rows)
		mock.ExpectCommit()

		got, err := s.GetByID(context.Background(), 7)
		require.NoError(t, err)
		assert.True(t, got.StartDate.IsZero())
		assert.True(t, got.EndDate.IsZero())
		assert.Nil(t, got.Coverage)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps no rows to ErrSeasonNotFound", func(t *testing.T) {
		t.Parallel()
		mock, s := newSeasonStore(t)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(seasonSelectSQL)).
			WithArgs(int64(12)).
			WillReturnRows(sqlmock.NewRows(seasonColumns()))
		mock.ExpectRollback()

		_, err := s.GetByID(context.Background(), 12)
		assert.ErrorIs(t, err, store.ErrSeasonNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSeasonStoreUpdate(t *testing.T) {
	t.Parallel()

	t.Run("collision on league and year maps to ErrSeasonExists", func(t *testing.T) {
		t.Parallel()
		mock, s := newSeasonStore(t)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(seasonUpdateSQL)).
			WillReturnError(&pgconn.PgError{Code: uniqueViolationCode})
		mock.ExpectRollback()

		season := testSeason()
		season.ID = 7
		err := s.Update(context.Background(), season)
		assert.ErrorIs(t, err, store.ErrSeasonExists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing season maps to ErrSeasonNotFound", func(t *testing.T) {
		t.Parallel()
		mock, s := newSeasonStore(t)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(seasonUpdateSQL)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		season := testSeason()
		season.ID = 12
		err := s.Update(context.Background(), season)
		assert.ErrorIs(t, err, store.ErrSeasonNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSeasonStoreList(t *testing.T) {
	t.Parallel()

	mock, s := newSeasonStore(t)
	want := testSeason()

	leagueID := int64(39)
	current := true
	query, args := buildSeasonListQuery(
		store.SeasonFilter{LeagueID: &leagueID, Current: &current},
		store.Page{}.Normalize(),
	)
	require.Equal(t, []any{int64(39), true, store.DefaultPageLimit, 0}, args)

	rows := sqlmock.NewRows(seasonColumns()).AddRow(
		int64(7), want.LeagueID, want.Year,
		want.StartDate, want.EndDate, want.Current,
		nil, want.CreatedAt, want.UpdatedAt,
	)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs(int64(39), true, store.DefaultPageLimit, 0).
		WillReturnRows(rows)
	mock.ExpectCommit()

	got, err := s.List(context.Background(),
		store.SeasonFilter{LeagueID: &leagueID, Current: &current},
		store.Page{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(2026), got[0].Year)
	assert.NoError(t, mock.ExpectationsWereMet())
}
