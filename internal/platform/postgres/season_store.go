package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pitchdata/pitchdata-api/internal/domain"
	"github.com/pitchdata/pitchdata-api/internal/store"
)

// PostgresSeasonStore implements the store.SeasonStore interface
// using a PostgreSQL database as the storage backend.
type PostgresSeasonStore struct {
	db             *sql.DB
	acquireTimeout time.Duration
}

// NewPostgresSeasonStore creates a new PostgreSQL implementation of the
// SeasonStore interface.
func NewPostgresSeasonStore(db *sql.DB, acquireTimeout time.Duration) *PostgresSeasonStore {
	return &PostgresSeasonStore{db: db, acquireTimeout: acquireTimeout}
}

// Ensure PostgresSeasonStore implements store.SeasonStore interface
var _ store.SeasonStore = (*PostgresSeasonStore)(nil)

const (
	seasonInsertSQL = `INSERT INTO seasons (league_id, year, start_date, end_date, current, coverage, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`

	seasonSelectSQL = `SELECT id, league_id, year, start_date, end_date, current, coverage, created_at, updated_at
FROM seasons WHERE id = $1`

	seasonUpdateSQL = `UPDATE seasons SET league_id = $2, year = $3, start_date = $4, end_date = $5, current = $6, coverage = $7, updated_at = $8
WHERE id = $1`

	seasonDeleteSQL = `DELETE FROM seasons WHERE id = $1`

	seasonListSQL = `SELECT id, league_id, year, start_date, end_date, current, coverage, created_at, updated_at
FROM seasons`
)

// Create implements store.SeasonStore.Create
func (s *PostgresSeasonStore) Create(ctx context.Context, season *domain.Season) error {
	coverage, err := marshalCoverage(season.Coverage)
	if err != nil {
		return err
	}
	return store.RunInTransaction(ctx, s.db, s.acquireTimeout, func(ctx context.Context, tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, seasonInsertSQL,
			season.LeagueID,
			season.Year,
			nullTime(season.StartDate),
			nullTime(season.EndDate),
			season.Current,
			coverage,
			season.CreatedAt,
			season.UpdatedAt,
		).Scan(&season.ID)
		if err != nil {
			if isUniqueViolation(err) {
				return store.ErrSeasonExists
			}
			return fmt.Errorf("inserting season for league %d year %d: %w", season.LeagueID, season.Year, err)
		}
		return nil
	})
}

// GetByID implements store.SeasonStore.GetByID
func (s *PostgresSeasonStore) GetByID(ctx context.Context, id int64) (*domain.Season, error) {
	var season *domain.Season
	err := store.RunInTransaction(ctx, s.db, s.acquireTimeout, func(ctx context.Context, tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, seasonSelectSQL, id)
		var err error
		season, err = scanSeason(row)
		return err
	})
	if err != nil {
		return nil, err
	}
	return season, nil
}

// Update implements store.SeasonStore.Update
func (s *PostgresSeasonStore) Update(ctx context.Context, season *domain.Season) error {
	coverage, err := marshalCoverage(season.Coverage)
	if err != nil {
		return err
	}
	return store.RunInTransaction(ctx, s.db, s.acquireTimeout, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, seasonUpdateSQL,
			season.ID,
			season.LeagueID,
			season.Year,
			nullTime(season.StartDate),
			nullTime(season.EndDate),
			season.Current,
			coverage,
			season.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return store.ErrSeasonExists
			}
			return fmt.Errorf("updating season %d: %w", season.ID, err)
		}
		return requireOneRow(res, store.ErrSeasonNotFound)
	})
}

// Delete implements store.SeasonStore.Delete
func (s *PostgresSeasonStore) Delete(ctx context.Context, id int64) error {
	return store.RunInTransaction(ctx, s.db, s.acquireTimeout, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, seasonDeleteSQL, id)
		if err != nil {
			return fmt.Errorf("deleting season %d: %w", id, err)
		}
		return requireOneRow(res, store.ErrSeasonNotFound)
	})
}

// List implements store.SeasonStore.List
func (s *PostgresSeasonStore) List(ctx context.Context, filter store.SeasonFilter, page store.Page) ([]*domain.Season, error) {
	query, args := buildSeasonListQuery(filter, page.Normalize())

	var seasons []*domain.Season
	err := store.RunInTransaction(ctx, s.db, s.acquireTimeout, func(ctx context.Context, tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("listing seasons: %w", err)
		}
		defer func() { _ = rows.Close() }()

		for rows.Next() {
			season, err := scanSeason(rows)
			if err != nil {
				return err
			}
			seasons = append(seasons, season)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return seasons, nil
}

func buildSeasonListQuery(filter store.SeasonFilter, page store.Page) (string, []any) {
	var conditions []string
	var args []any

	if filter.LeagueID != nil {
		args = append(args, *filter.LeagueID)
		conditions = append(conditions, "league_id = $"+strconv.Itoa(len(args)))
	}
	if filter.Year != nil {
		args = append(args, *filter.Year)
		conditions = append(conditions, "year = $"+strconv.Itoa(len(args)))
	}
	if filter.Current != nil {
		args = append(args, *filter.Current)
		conditions = append(conditions, "current = $"+strconv.Itoa(len(args)))
	}

	query := seasonListSQL
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	args = append(args, page.Limit)
	query += " ORDER BY id ASC LIMIT $" + strconv.Itoa(len(args))
	args = append(args, page.Offset)
	query += " OFFSET $" + strconv.Itoa(len(args))

	return query, args
}

// marshalCoverage serializes the free-form coverage document for the JSONB
// column, mapping absence to SQL NULL.
func marshalCoverage(coverage any) (any, error) {
	if coverage == nil {
		return nil, nil
	}
	raw, err := json.Marshal(coverage)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding coverage: %v", store.ErrInvalidEntity, err)
	}
	return raw, nil
}

func scanSeason(row rowScanner) (*domain.Season, error) {
	var season domain.Season
	var startDate, endDate sql.NullTime
	var coverage []byte

	err := row.Scan(
		&season.ID,
		&season.LeagueID,
		&season.Year,
		&startDate,
		&endDate,
		&season.Current,
		&coverage,
		&season.CreatedAt,
		&season.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrSeasonNotFound
		}
		return nil, fmt.Errorf("scanning season row: %w", err)
	}

	season.StartDate = startDate.Time
	season.EndDate = endDate.Time
	if len(coverage) > 0 {
		var doc any
		if err := json.Unmarshal(coverage, &doc); err != nil {
			return nil, fmt.Errorf("decoding coverage for season %d: %w", season.ID, err)
		}
		season.Coverage = doc
	}
	return &season, nil
}
