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

// PostgresLeagueStore implements the store.LeagueStore interface
// using a PostgreSQL database as the storage backend.
type PostgresLeagueStore struct {
	db             *sql.DB
	acquireTimeout time.Duration
}

// NewPostgresLeagueStore creates a new PostgreSQL implementation of the
// LeagueStore interface. It accepts a database connection that should be
// initialized and managed by the caller; acquireTimeout bounds the wait
// for a pooled connection on every operation.
func NewPostgresLeagueStore(db *sql.DB, acquireTimeout time.Duration) *PostgresLeagueStore {
	return &PostgresLeagueStore{db: db, acquireTimeout: acquireTimeout}
}

// Ensure PostgresLeagueStore implements store.LeagueStore interface
var _ store.LeagueStore = (*PostgresLeagueStore)(nil)

const (
	leagueInsertSQL = `INSERT INTO leagues (league_id, name, type, logo, country_name, country_code, country_flag, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	leagueSelectSQL = `SELECT league_id, name, type, logo, country_name, country_code, country_flag, created_at, updated_at
FROM leagues WHERE league_id = $1`

	leagueUpdateSQL = `UPDATE leagues SET name = $2, type = $3, logo = $4, country_name = $5, country_code = $6, country_flag = $7, updated_at = $8
WHERE league_id = $1`

	leagueDeleteSQL = `DELETE FROM leagues WHERE league_id = $1`

	leagueListSQL = `SELECT league_id, name, type, logo, country_name, country_code, country_flag, created_at, updated_at
FROM leagues`
)

// Create implements store.LeagueStore.Create
func (s *PostgresLeagueStore) Create(ctx context.Context, league *domain.League) error {
	return store.RunInTransaction(ctx, s.db, s.acquireTimeout, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, leagueInsertSQL,
			league.LeagueID,
			league.Name,
			nullString(league.Type),
			nullString(league.Logo),
			nullString(league.CountryName),
			nullString(league.CountryCode),
			nullString(league.CountryFlag),
			league.CreatedAt,
			league.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return store.ErrLeagueExists
			}
			return fmt.Errorf("inserting league %d: %w", league.LeagueID, err)
		}
		return nil
	})
}

// GetByID implements store.LeagueStore.GetByID
func (s *PostgresLeagueStore) GetByID(ctx context.Context, id int64) (*domain.League, error) {
	var league *domain.League
	err := store.RunInTransaction(ctx, s.db, s.acquireTimeout, func(ctx context.Context, tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, leagueSelectSQL, id)
		var err error
		league, err = scanLeague(row)
		return err
	})
	if err != nil {
		return nil, err
	}
	return league, nil
}

// Update implements store.LeagueStore.Update
func (s *PostgresLeagueStore) Update(ctx context.Context, league *domain.League) error {
	return store.RunInTransaction(ctx, s.db, s.acquireTimeout, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, leagueUpdateSQL,
			league.LeagueID,
			league.Name,
			nullString(league.Type),
			nullString(league.Logo),
			nullString(league.CountryName),
			nullString(league.CountryCode),
			nullString(league.CountryFlag),
			league.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("updating league %d: %w", league.LeagueID, err)
		}
		return requireOneRow(res, store.ErrLeagueNotFound)
	})
}

// Delete implements store.LeagueStore.Delete
func (s *PostgresLeagueStore) Delete(ctx context.Context, id int64) error {
	return store.RunInTransaction(ctx, s.db, s.acquireTimeout, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, leagueDeleteSQL, id)
		if err != nil {
			return fmt.Errorf("deleting league %d: %w", id, err)
		}
		return requireOneRow(res, store.ErrLeagueNotFound)
	})
}

// List implements store.LeagueStore.List
func (s *PostgresLeagueStore) List(ctx context.Context, filter store.LeagueFilter, page store.Page) ([]*domain.League, error) {
	query, args := buildLeagueListQuery(filter, page.Normalize())

	var leagues []*domain.League
	err := store.RunInTransaction(ctx, s.db, s.acquireTimeout, func(ctx context.Context, tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("listing leagues: %w", err)
		}
		defer func() { _ = rows.Close() }()

		for rows.Next() {
			league, err := scanLeague(rows)
			if err != nil {
				return err
			}
			leagues = append(leagues, league)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return leagues, nil
}

// buildLeagueListQuery assembles the filtered listing statement. Conditions
// use positional placeholders so args line up regardless of which filters
// are set.
func buildLeagueListQuery(filter store.LeagueFilter, page store.Page) (string, []any) {
	var conditions []string
	var args []any

	if filter.Country != nil {
		args = append(args, *filter.Country)
		conditions = append(conditions, "country_name = $"+strconv.Itoa(len(args)))
	}
	if filter.Type != nil {
		args = append(args, *filter.Type)
		conditions = append(conditions, "type = $"+strconv.Itoa(len(args)))
	}

	query := leagueListSQL
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	args = append(args, page.Limit)
	query += " ORDER BY league_id ASC LIMIT $" + strconv.Itoa(len(args))
	args = append(args, page.Offset)
	query += " OFFSET $" + strconv.Itoa(len(args))

	return query, args
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanLeague(row rowScanner) (*domain.League, error) {
	var league domain.League
	var leagueType, logo, countryName, countryCode, countryFlag sql.NullString

	err := row.Scan(
		&league.LeagueID,
		&league.Name,
		&leagueType,
		&logo,
		&countryName,
		&countryCode,
		&countryFlag,
		&league.CreatedAt,
		&league.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrLeagueNotFound
		}
		return nil, fmt.Errorf("scanning league row: %w", err)
	}

	league.Type = leagueType.String
	league.Logo = logo.String
	league.CountryName = countryName.String
	league.CountryCode = countryCode.String
	league.CountryFlag = countryFlag.String
	return &league, nil
}

// requireOneRow maps a zero-row write to the entity's not-found sentinel.
func requireOneRow(res sql.Result, notFound error) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if affected == 0 {
		return notFound
	}
	return nil
}
