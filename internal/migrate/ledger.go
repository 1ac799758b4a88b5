package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// LedgerTableName is the table holding applied migration ordinals. It lives
// in the same database as application data so a step's DDL and its ledger
// row commit or vanish together.
const LedgerTableName = "schema_migrations"

// Entry statuses. Transactional steps are written directly as committed;
// non-transactional steps pass through in_progress first.
const (
	StatusInProgress = "in_progress"
	StatusCommitted  = "committed"
)

// Entry is one persisted ledger record. Entries are written once when a step
// commits and are never updated or deleted in normal operation; rollback is
// an explicit operator action.
type Entry struct {
	Ordinal   int64
	Name      string
	Checksum  string
	Status    string
	AppliedAt time.Time
}

// Ledger is the durable source of truth for applied migration ordinals,
// backed by a single table in the application database.
type Ledger struct {
	db *sql.DB
}

// NewLedger returns a Ledger over the given database handle.
func NewLedger(db *sql.DB) *Ledger {
	return &Ledger{db: db}
}

const uniqueViolationCode = "23505" // PostgreSQL unique violation error code

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// EnsureTable creates the ledger table if it does not exist. Callers hold
// the migration lock, so there is no creation race between replicas.
func (l *Ledger) EnsureTable(ctx context.Context) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	ordinal BIGINT PRIMARY KEY,
	name TEXT NOT NULL,
	checksum TEXT NOT NULL,
	status TEXT NOT NULL,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`, LedgerTableName)
	if _, err := l.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("migrate: creating ledger table: %w", err)
	}
	return nil
}

// ListApplied returns the committed ledger entries in ascending ordinal
// order. A fresh database yields an empty slice.
func (l *Ledger) ListApplied(ctx context.Context) ([]Entry, error) {
	query := fmt.Sprintf(
		"SELECT ordinal, name, checksum, status, applied_at FROM %s WHERE status = $1 ORDER BY ordinal ASC",
		LedgerTableName,
	)
	rows, err := l.db.QueryContext(ctx, query, StatusCommitted)
	if err != nil {
		return nil, fmt.Errorf("migrate: listing applied migrations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Ordinal, &e.Name, &e.Checksum, &e.Status, &e.AppliedAt); err != nil {
			return nil, fmt.Errorf("migrate: scanning ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("migrate: reading ledger entries: %w", err)
	}
	return entries, nil
}

// Unfinished returns in-progress entries that never reached committed.
// A non-empty result means a non-transactional step died half-way and the
// database needs manual inspection before anything else may run.
func (l *Ledger) Unfinished(ctx context.Context) ([]int64, error) {
	query := fmt.Sprintf(
		"SELECT ordinal FROM %s WHERE status = $1 ORDER BY ordinal ASC",
		LedgerTableName,
	)
	rows, err := l.db.QueryContext(ctx, query, StatusInProgress)
	if err != nil {
		return nil, fmt.Errorf("migrate: checking for unfinished migrations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ordinals []int64
	for rows.Next() {
		var ordinal int64
		if err := rows.Scan(&ordinal); err != nil {
			return nil, fmt.Errorf("migrate: scanning unfinished ordinal: %w", err)
		}
		ordinals = append(ordinals, ordinal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("migrate: reading unfinished ordinals: %w", err)
	}
	return ordinals, nil
}

// Record appends exactly one committed entry inside the caller's
// transaction, so the step's schema change and its ledger row are one atomic
// unit. A colliding ordinal is reported as ErrDuplicateOrdinal.
func (l *Ledger) Record(ctx context.Context, tx *sql.Tx, e Entry) error {
	query := fmt.Sprintf(
		"INSERT INTO %s (ordinal, name, checksum, status) VALUES ($1, $2, $3, $4)",
		LedgerTableName,
	)
	if _, err := tx.ExecContext(ctx, query, e.Ordinal, e.Name, e.Checksum, StatusCommitted); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %d", ErrDuplicateOrdinal, e.Ordinal)
		}
		return fmt.Errorf("migrate: recording ledger entry %d: %w", e.Ordinal, err)
	}
	return nil
}

// MarkInProgress writes an in-progress entry in its own transaction, ahead
// of a non-transactional step's forward action.
func (l *Ledger) MarkInProgress(ctx context.Context, e Entry) error {
	query := fmt.Sprintf(
		"INSERT INTO %s (ordinal, name, checksum, status) VALUES ($1, $2, $3, $4)",
		LedgerTableName,
	)
	if _, err := l.db.ExecContext(ctx, query, e.Ordinal, e.Name, e.Checksum, StatusInProgress); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %d", ErrDuplicateOrdinal, e.Ordinal)
		}
		return fmt.Errorf("migrate: marking migration %d in progress: %w", e.Ordinal, err)
	}
	return nil
}

// MarkCommitted flips an in-progress entry to committed after its
// non-transactional forward action finished.
func (l *Ledger) MarkCommitted(ctx context.Context, ordinal int64) error {
	query := fmt.Sprintf(
		"UPDATE %s SET status = $1, applied_at = now() WHERE ordinal = $2 AND status = $3",
		LedgerTableName,
	)
	res, err := l.db.ExecContext(ctx, query, StatusCommitted, ordinal, StatusInProgress)
	if err != nil {
		return fmt.Errorf("migrate: committing migration %d: %w", ordinal, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("migrate: committing migration %d: %w", ordinal, err)
	}
	if affected != 1 {
		return fmt.Errorf("migrate: committing migration %d: no in-progress entry found", ordinal)
	}
	return nil
}

// MarkRollingBack flips a committed entry back to in_progress ahead of a
// non-transactional down action, so a crash before removal is visible to
// Unfinished.
func (l *Ledger) MarkRollingBack(ctx context.Context, ordinal int64) error {
	query := fmt.Sprintf(
		"UPDATE %s SET status = $1 WHERE ordinal = $2 AND status = $3",
		LedgerTableName,
	)
	res, err := l.db.ExecContext(ctx, query, StatusInProgress, ordinal, StatusCommitted)
	if err != nil {
		return fmt.Errorf("migrate: marking migration %d for rollback: %w", ordinal, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("migrate: marking migration %d for rollback: %w", ordinal, err)
	}
	if affected != 1 {
		return fmt.Errorf("migrate: marking migration %d for rollback: no committed entry found", ordinal)
	}
	return nil
}

// RemoveDirect deletes the ledger entry for ordinal outside any caller
// transaction, closing out a non-transactional rollback.
func (l *Ledger) RemoveDirect(ctx context.Context, ordinal int64) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE ordinal = $1", LedgerTableName)
	if _, err := l.db.ExecContext(ctx, query, ordinal); err != nil {
		return fmt.Errorf("migrate: removing ledger entry %d: %w", ordinal, err)
	}
	return nil
}

// Remove deletes the ledger entry for ordinal inside the caller's
// transaction. Used only by the explicit operator rollback path.
func (l *Ledger) Remove(ctx context.Context, tx *sql.Tx, ordinal int64) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE ordinal = $1", LedgerTableName)
	if _, err := tx.ExecContext(ctx, query, ordinal); err != nil {
		return fmt.Errorf("migrate: removing ledger entry %d: %w", ordinal, err)
	}
	return nil
}
