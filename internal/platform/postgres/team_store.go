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

// PostgresTeamStore implements the store.TeamStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTeamStore struct {
	db             *sql.DB
	acquireTimeout time.Duration
}

// NewPostgresTeamStore creates a new PostgreSQL implementation of the
// TeamStore interface.
func NewPostgresTeamStore(db *sql.DB, acquireTimeout time.Duration) *PostgresTeamStore {
	return &PostgresTeamStore{db: db, acquireTimeout: acquireTimeout}
}

// Ensure PostgresTeamStore implements store.TeamStore interface
var _ store.TeamStore = (*PostgresTeamStore)(nil)

const (
	teamInsertSQL = `INSERT INTO teams (team_id, name, code, country, founded, national, logo, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	teamSelectSQL = `SELECT team_id, name, code, country, founded, national, logo, created_at, updated_at
FROM teams WHERE team_id = $1`

	teamUpdateSQL = `UPDATE teams SET name = $2, code = $3, country = $4, founded = $5, national = $6, logo = $7, updated_at = $8
WHERE team_id = $1`

	teamDeleteSQL = `DELETE FROM teams WHERE team_id = $1`

	teamListSQL = `SELECT team_id, name, code, country, founded, national, logo, created_at, updated_at
FROM teams`
)

// Create implements store.TeamStore.Create
func (s *PostgresTeamStore) Create(ctx context.Context, team *domain.Team) error {
	return store.RunInTransaction(ctx, s.db, s.acquireTimeout, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, teamInsertSQL,
			team.TeamID,
			team.Name,
			nullString(team.Code),
			nullString(team.Country),
			nullInt64(team.Founded),
			team.National,
			nullString(team.Logo),
			team.CreatedAt,
			team.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return store.ErrTeamExists
			}
			return fmt.Errorf("inserting team %d: %w", team.TeamID, err)
		}
		return nil
	})
}

// GetByID implements store.TeamStore.GetByID
func (s *PostgresTeamStore) GetByID(ctx context.Context, id int64) (*domain.Team, error) {
	var team *domain.Team
	err := store.RunInTransaction(ctx, s.db, s.acquireTimeout, func(ctx context.Context, tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, teamSelectSQL, id)
		var err error
		team, err = scanTeam(row)
		return err
	})
	if err != nil {
		return nil, err
	}
	return team, nil
}

// Update implements store.TeamStore.Update
func (s *PostgresTeamStore) Update(ctx context.Context, team *domain.Team) error {
	return store.RunInTransaction(ctx, s.db, s.acquireTimeout, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, teamUpdateSQL,
			team.TeamID,
			team.Name,
			nullString(team.Code),
			nullString(team.Country),
			nullInt64(team.Founded),
			team.National,
			nullString(team.Logo),
			team.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("updating team %d: %w", team.TeamID, err)
		}
		return requireOneRow(res, store.ErrTeamNotFound)
	})
}

// Delete implements store.TeamStore.Delete
func (s *PostgresTeamStore) Delete(ctx context.Context, id int64) error {
	return store.RunInTransaction(ctx, s.db, s.acquireTimeout, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, teamDeleteSQL, id)
		if err != nil {
			return fmt.Errorf("deleting team %d: %w", id, err)
		}
		return requireOneRow(res, store.ErrTeamNotFound)
	})
}

// List implements store.TeamStore.List
func (s *PostgresTeamStore) List(ctx context.Context, filter store.TeamFilter, page store.Page) ([]*domain.Team, error) {
	query, args := buildTeamListQuery(filter, page.Normalize())

	var teams []*domain.Team
	err := store.RunInTransaction(ctx, s.db, s.acquireTimeout, func(ctx context.Context, tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("listing teams: %w", err)
		}
		defer func() { _ = rows.Close() }()

		for rows.Next() {
			team, err := scanTeam(rows)
			if err != nil {
				return err
			}
			teams = append(teams, team)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return teams, nil
}

func buildTeamListQuery(filter store.TeamFilter, page store.Page) (string, []any) {
	var conditions []string
	var args []any

	if filter.Country != nil {
		args = append(args, *filter.Country)
		conditions = append(conditions, "country = $"+strconv.Itoa(len(args)))
	}
	if filter.National != nil {
		args = append(args, *filter.National)
		conditions = append(conditions, "national = $"+strconv.Itoa(len(args)))
	}

	query := teamListSQL
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	args = append(args, page.Limit)
	query += " ORDER BY team_id ASC LIMIT $" + strconv.Itoa(len(args))
	args = append(args, page.Offset)
	query += " OFFSET $" + strconv.Itoa(len(args))

	return query, args
}

func scanTeam(row rowScanner) (*domain.Team, error) {
	var team domain.Team
	var code, country, logo sql.NullString
	var founded sql.NullInt64

	err := row.Scan(
		&team.TeamID,
		&team.Name,
		&code,
		&country,
		&founded,
		&team.National,
		&logo,
		&team.CreatedAt,
		&team.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTeamNotFound
		}
		return nil, fmt.Errorf("scanning team row: %w", err)
	}

	team.Code = code.String
	team.Country = country.String
	team.Founded = founded.Int64
	team.Logo = logo.String
	return &team, nil
}
