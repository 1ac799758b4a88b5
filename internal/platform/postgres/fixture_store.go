package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pitchdata/pitchdata-api/internal/domain"
	"github.com/pitchdata/pitchdata-api/internal/store"
)

// PostgresFixtureStore implements the store.FixtureStore interface
// using a PostgreSQL database as the storage backend.
type PostgresFixtureStore struct {
	db             *sql.DB
	acquireTimeout time.Duration
}

// NewPostgresFixtureStore creates a new PostgreSQL implementation of the
// FixtureStore interface.
func NewPostgresFixtureStore(db *sql.DB, acquireTimeout time.Duration) *PostgresFixtureStore {
	return &PostgresFixtureStore{db: db, acquireTimeout: acquireTimeout}
}

// Ensure PostgresFixtureStore implements store.FixtureStore interface
var _ store.FixtureStore = (*PostgresFixtureStore)(nil)

const (
	fixtureInsertSQL = `INSERT INTO fixtures (fixture_id, league_id, season, date, referee, venue, status, home_team_id, away_team_id, goals_home, goals_away, elapsed, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	fixtureSelectSQL = `SELECT fixture_id, league_id, season, date, referee, venue, status, home_team_id, away_team_id, goals_home, goals_away, elapsed, created_at, updated_at
FROM fixtures WHERE fixture_id = $1`

	fixtureUpdateSQL = `UPDATE fixtures SET league_id = $2, season = $3, date = $4, referee = $5, venue = $6, status = $7, home_team_id = $8, away_team_id = $9, goals_home = $10, goals_away = $11, elapsed = $12, updated_at = $13
WHERE fixture_id = $1`

	fixtureDeleteSQL = `DELETE FROM fixtures WHERE fixture_id = $1`

	fixtureListSQL = `SELECT fixture_id, league_id, season, date, referee, venue, status, home_team_id, away_team_id, goals_home, goals_away, elapsed, created_at, updated_at
FROM fixtures`
)

// Create implements store.FixtureStore.Create
func (s *PostgresFixtureStore) Create(ctx context.Context, fixture *domain.Fixture) error {
	return store.RunInTransaction(ctx, s.db, s.acquireTimeout, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, fixtureInsertSQL,
			fixture.FixtureID,
			fixture.LeagueID,
			fixture.Season,
			fixture.Date,
			nullString(fixture.Referee),
			nullString(fixture.Venue),
			fixture.Status,
			fixture.HomeTeamID,
			fixture.AwayTeamID,
			fixture.GoalsHome,
			fixture.GoalsAway,
			nullInt64(fixture.Elapsed),
			fixture.CreatedAt,
			fixture.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return store.ErrFixtureExists
			}
			return fmt.Errorf("inserting fixture %d: %w", fixture.FixtureID, err)
		}
		return nil
	})
}

// GetByID implements store.FixtureStore.GetByID
func (s *PostgresFixtureStore) GetByID(ctx context.Context, id int64) (*domain.Fixture, error) {
	var fixture *domain.Fixture
	err := store.RunInTransaction(ctx, s.db, s.acquireTimeout, func(ctx context.Context, tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, fixtureSelectSQL, id)
		var err error
		fixture, err = scanFixture(row)
		return err
	})
	if err != nil {
		return nil, err
	}
	return fixture, nil
}

// Update implements store.FixtureStore.Update
func (s *PostgresFixtureStore) Update(ctx context.Context, fixture *domain.Fixture) error {
	return store.RunInTransaction(ctx, s.db, s.acquireTimeout, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, fixtureUpdateSQL,
			fixture.FixtureID,
			fixture.LeagueID,
			fixture.Season,
			fixture.Date,
			nullString(fixture.Referee),
			nullString(fixture.Venue),
			fixture.Status,
			fixture.HomeTeamID,
			fixture.AwayTeamID,
			fixture.GoalsHome,
			fixture.GoalsAway,
			nullInt64(fixture.Elapsed),
			fixture.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("updating fixture %d: %w", fixture.FixtureID, err)
		}
		return requireOneRow(res, store.ErrFixtureNotFound)
	})
}

// Delete implements store.FixtureStore.Delete
func (s *PostgresFixtureStore) Delete(ctx context.Context, id int64) error {
	return store.RunInTransaction(ctx, s.db, s.acquireTimeout, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, fixtureDeleteSQL, id)
		if err != nil {
			return fmt.Errorf("deleting fixture %d: %w", id, err)
		}
		return requireOneRow(res, store.ErrFixtureNotFound)
	})
}

// List implements store.FixtureStore.List
func (s *PostgresFixtureStore) List(ctx context.Context, filter store.FixtureFilter, page store.Page) ([]*domain.Fixture, error) {
	query, args := buildFixtureListQuery(filter, page.Normalize())

	var fixtures []*domain.Fixture
	err := store.RunInTransaction(ctx, s.db, s.acquireTimeout, func(ctx context.Context, tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("listing fixtures: %w", err)
		}
		defer func() { _ = rows.Close() }()

		for rows.Next() {
			fixture, err := scanFixture(rows)
			if err != nil {
				return err
			}
			fixtures = append(fixtures, fixture)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return fixtures, nil
}

func buildFixtureListQuery(filter store.FixtureFilter, page store.Page) (string, []any) {
	var conditions []string
	var args []any

	if filter.LeagueID != nil {
		args = append(args, *filter.LeagueID)
		conditions = append(conditions, "league_id = $"+strconv.Itoa(len(args)))
	}
	if filter.Season != nil {
		args = append(args, *filter.Season)
		conditions = append(conditions, "season = $"+strconv.Itoa(len(args)))
	}
	if filter.TeamID != nil {
		args = append(args, *filter.TeamID)
		n := strconv.Itoa(len(args))
		conditions = append(conditions, "(home_team_id = $"+n+" OR away_team_id = $"+n+")")
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, "status = $"+strconv.Itoa(len(args)))
	}

	query := fixtureListSQL
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	args = append(args, page.Limit)
	query += " ORDER BY date ASC, fixture_id ASC LIMIT $" + strconv.Itoa(len(args))
	args = append(args, page.Offset)
	query += " OFFSET $" + strconv.Itoa(len(args))

	return query, args
}

func scanFixture(row rowScanner) (*domain.Fixture, error) {
	var fixture domain.Fixture
	var referee, venue sql.NullString
	var goalsHome, goalsAway, elapsed sql.NullInt64

	err := row.Scan(
		&fixture.FixtureID,
		&fixture.LeagueID,
		&fixture.Season,
		&fixture.Date,
		&referee,
		&venue,
		&fixture.Status,
		&fixture.HomeTeamID,
		&fixture.AwayTeamID,
		&goalsHome,
		&goalsAway,
		&elapsed,
		&fixture.CreatedAt,
		&fixture.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrFixtureNotFound
		}
		return nil, fmt.Errorf("scanning fixture row: %w", err)
	}

	fixture.Referee = referee.String
	fixture.Venue = venue.String
	fixture.GoalsHome = goalsHome.Int64
	fixture.GoalsAway = goalsAway.Int64
	fixture.Elapsed = elapsed.Int64
	return &fixture, nil
}
