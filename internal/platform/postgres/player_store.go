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

// PostgresPlayerStore implements the store.PlayerStore interface
// using a PostgreSQL database as the storage backend.
type PostgresPlayerStore struct {
	db             *sql.DB
	acquireTimeout time.Duration
}

// NewPostgresPlayerStore creates a new PostgreSQL implementation of the
// PlayerStore interface.
func NewPostgresPlayerStore(db *sql.DB, acquireTimeout time.Duration) *PostgresPlayerStore {
	return &PostgresPlayerStore{db: db, acquireTimeout: acquireTimeout}
}

// Ensure PostgresPlayerStore implements store.PlayerStore interface
var _ store.PlayerStore = (*PostgresPlayerStore)(nil)

const (
	playerInsertSQL = `INSERT INTO players (player_id, name, firstname, lastname, age, birth_date, nationality, height, weight, injured, photo, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	playerSelectSQL = `SELECT player_id, name, firstname, lastname, age, birth_date, nationality, height, weight, injured, photo, created_at, updated_at
FROM players WHERE player_id = $1`

	playerUpdateSQL = `UPDATE players SET name = $2, firstname = $3, lastname = $4, age = $5, birth_date = $6, nationality = $7, height = $8, weight = $9, injured = $10, photo = $11, updated_at = $12
WHERE player_id = $1`

	playerDeleteSQL = `DELETE FROM players WHERE player_id = $1`

	playerListSQL = `SELECT player_id, name, firstname, lastname, age, birth_date, nationality, height, weight, injured, photo, created_at, updated_at
FROM players`
)

// Create implements store.PlayerStore.Create
func (s *PostgresPlayerStore) Create(ctx context.Context, player *domain.Player) error {
	return store.RunInTransaction(ctx, s.db, s.acquireTimeout, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, playerInsertSQL,
			player.PlayerID,
			player.Name,
			nullString(player.Firstname),
			nullString(player.Lastname),
			nullInt64(player.Age),
			nullTime(player.BirthDate),
			nullString(player.Nationality),
			nullString(player.Height),
			nullString(player.Weight),
			player.Injured,
			nullString(player.Photo),
			player.CreatedAt,
			player.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return store.ErrPlayerExists
			}
			return fmt.Errorf("inserting player %d: %w", player.PlayerID, err)
		}
		return nil
	})
}

// GetByID implements store.PlayerStore.GetByID
func (s *PostgresPlayerStore) GetByID(ctx context.Context, id int64) (*domain.Player, error) {
	var player *domain.Player
	err := store.RunInTransaction(ctx, s.db, s.acquireTimeout, func(ctx context.Context, tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, playerSelectSQL, id)
		var err error
		player, err = scanPlayer(row)
		return err
	})
	if err != nil {
		return nil, err
	}
	return player, nil
}

// Update implements store.PlayerStore.Update
func (s *PostgresPlayerStore) Update(ctx context.Context, player *domain.Player) error {
	return store.RunInTransaction(ctx, s.db, s.acquireTimeout, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, playerUpdateSQL,
			player.PlayerID,
			player.Name,
			nullString(player.Firstname),
			nullString(player.Lastname),
			nullInt64(player.Age),
			nullTime(player.BirthDate),
			nullString(player.Nationality),
			nullString(player.Height),
			nullString(player.Weight),
			player.Injured,
			nullString(player.Photo),
			player.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("updating player %d: %w", player.PlayerID, err)
		}
		return requireOneRow(res, store.ErrPlayerNotFound)
	})
}

// Delete implements store.PlayerStore.Delete
func (s *PostgresPlayerStore) Delete(ctx context.Context, id int64) error {
	return store.RunInTransaction(ctx, s.db, s.acquireTimeout, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, playerDeleteSQL, id)
		if err != nil {
			return fmt.Errorf("deleting player %d: %w", id, err)
		}
		return requireOneRow(res, store.ErrPlayerNotFound)
	})
}

// List implements store.PlayerStore.List
func (s *PostgresPlayerStore) List(ctx context.Context, filter store.PlayerFilter, page store.Page) ([]*domain.Player, error) {
	query, args := buildPlayerListQuery(filter, page.Normalize())

	var players []*domain.Player
	err := store.RunInTransaction(ctx, s.db, s.acquireTimeout, func(ctx context.Context, tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("listing players: %w", err)
		}
		defer func() { _ = rows.Close() }()

		for rows.Next() {
			player, err := scanPlayer(rows)
			if err != nil {
				return err
			}
			players = append(players, player)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return players, nil
}

func buildPlayerListQuery(filter store.PlayerFilter, page store.Page) (string, []any) {
	var conditions []string
	var args []any

	if filter.Nationality != nil {
		args = append(args, *filter.Nationality)
		conditions = append(conditions, "nationality = $"+strconv.Itoa(len(args)))
	}
	if filter.Injured != nil {
		args = append(args, *filter.Injured)
		conditions = append(conditions, "injured = $"+strconv.Itoa(len(args)))
	}

	query := playerListSQL
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	args = append(args, page.Limit)
	query += " ORDER BY player_id ASC LIMIT $" + strconv.Itoa(len(args))
	args = append(args, page.Offset)
	query += " OFFSET $" + strconv.Itoa(len(args))

	return query, args
}

func scanPlayer(row rowScanner) (*domain.Player, error) {
	var player domain.Player
	var firstname, lastname, nationality, height, weight, photo sql.NullString
	var age sql.NullInt64
	var birthDate sql.NullTime

	err := row.Scan(
		&player.PlayerID,
		&player.Name,
		&firstname,
		&lastname,
		&age,
		&birthDate,
		&nationality,
		&height,
		&weight,
		&player.Injured,
		&photo,
		&player.CreatedAt,
		&player.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrPlayerNotFound
		}
		return nil, fmt.Errorf("scanning player row: %w", err)
	}

	player.Firstname = firstname.String
	player.Lastname = lastname.String
	player.Age = age.Int64
	player.BirthDate = birthDate.Time
	player.Nationality = nationality.String
	player.Height = height.String
	player.Weight = weight.String
	player.Photo = photo.String
	return &player, nil
}
