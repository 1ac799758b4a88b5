package migrate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	lockQuery       = regexp.QuoteMeta("SELECT pg_advisory_lock($1)")
	unlockQuery     = regexp.QuoteMeta("SELECT pg_advisory_unlock($1)")
	createQuery     = "CREATE TABLE IF NOT EXISTS schema_migrations"
	unfinishedQuery = regexp.QuoteMeta("SELECT ordinal FROM schema_migrations WHERE status = $1 ORDER BY ordinal ASC")
	appliedQuery    = regexp.QuoteMeta("SELECT ordinal, name, checksum, status, applied_at FROM schema_migrations WHERE status = $1 ORDER BY ordinal ASC")
	insertQuery     = regexp.QuoteMeta("INSERT INTO schema_migrations (ordinal, name, checksum, status) VALUES ($1, $2, $3, $4)")
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSteps() []Step {
	return []Step{
		{Ordinal: 1, Name: "create_leagues", Up: "CREATE TABLE leagues (id BIGINT PRIMARY KEY)", Down: "DROP TABLE leagues"},
		{Ordinal: 2, Name: "create_seasons", Up: "CREATE TABLE seasons (id BIGINT PRIMARY KEY)"},
		{Ordinal: 3, Name: "create_teams", Up: "CREATE TABLE teams (id BIGINT PRIMARY KEY)"},
	}
}

func appliedRows(steps []Step, n int) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"ordinal", "name", "checksum", "status", "applied_at"})
	for _, s := range steps[:n] {
		rows.AddRow(s.Ordinal, s.Name, s.Checksum(), StatusCommitted, time.Now())
	}
	return rows
}

func emptyUnfinished() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"ordinal"})
}

// expectPreamble sets up the expectations every run starts with: lock,
// ledger table, unfinished check, applied list.
func expectPreamble(mock sqlmock.Sqlmock, applied *sqlmock.Rows) {
	mock.ExpectExec(lockQuery).WithArgs(lockKey).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(createQuery).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(unfinishedQuery).WithArgs(StatusInProgress).WillReturnRows(emptyUnfinished())
	mock.ExpectQuery(appliedQuery).WithArgs(StatusCommitted).WillReturnRows(applied)
}

func expectUnlock(mock sqlmock.Sqlmock) {
	mock.ExpectExec(unlockQuery).WithArgs(lockKey).WillReturnResult(sqlmock.NewResult(0, 0))
}

func TestRunAppliesAllPendingSteps(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	steps := testSteps()
	expectPreamble(mock, appliedRows(steps, 0))
	for _, s := range steps {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(s.Up)).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(insertQuery).
			WithArgs(s.Ordinal, s.Name, s.Checksum(), StatusCommitted).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()
	}
	expectUnlock(mock)

	runner := NewRunner(db, testLogger(), time.Second)
	applied, err := runner.Run(context.Background(), steps)
	require.NoError(t, err)
	assert.Equal(t, 3, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunZeroPendingIsSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	steps := testSteps()
	expectPreamble(mock, appliedRows(steps, 3))
	expectUnlock(mock)

	runner := NewRunner(db, testLogger(), time.Second)
	applied, err := runner.Run(context.Background(), steps)
	require.NoError(t, err)
	assert.Equal(t, 0, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunResumesFromLastApplied(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	steps := testSteps()
	expectPreamble(mock, appliedRows(steps, 2))
	s := steps[2]
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(s.Up)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(insertQuery).
		WithArgs(s.Ordinal, s.Name, s.Checksum(), StatusCommitted).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	expectUnlock(mock)

	runner := NewRunner(db, testLogger(), time.Second)
	applied, err := runner.Run(context.Background(), steps)
	require.NoError(t, err)
	assert.Equal(t, 1, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunStopsAtFirstFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	steps := testSteps()
	expectPreamble(mock, appliedRows(steps, 0))

	first := steps[0]
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(first.Up)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(insertQuery).
		WithArgs(first.Ordinal, first.Name, first.Checksum(), StatusCommitted).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	boom := errors.New("column does not exist")
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(steps[1].Up)).WillReturnError(boom)
	mock.ExpectRollback()
	expectUnlock(mock)

	runner := NewRunner(db, testLogger(), time.Second)
	applied, err := runner.Run(context.Background(), steps)
	require.Error(t, err)
	assert.Equal(t, 1, applied)

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, int64(2), stepErr.Ordinal)
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunRefusesUnknownLedgerOrdinal(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	steps := testSteps()[:1]
	ahead := sqlmock.NewRows([]string{"ordinal", "name", "checksum", "status", "applied_at"}).
		AddRow(int64(1), "create_leagues", steps[0].Checksum(), StatusCommitted, time.Now()).
		AddRow(int64(2), "create_seasons", "abc", StatusCommitted, time.Now())
	expectPreamble(mock, ahead)
	expectUnlock(mock)

	runner := NewRunner(db, testLogger(), time.Second)
	_, err = runner.Run(context.Background(), steps)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownOrdinal)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunRefusesUnfinishedEntry(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectExec(lockQuery).WithArgs(lockKey).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(createQuery).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(unfinishedQuery).WithArgs(StatusInProgress).
		WillReturnRows(sqlmock.NewRows([]string{"ordinal"}).AddRow(int64(2)))
	expectUnlock(mock)

	runner := NewRunner(db, testLogger(), time.Second)
	_, err = runner.Run(context.Background(), testSteps())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCorrupted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunLockTimeout(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectExec(lockQuery).WithArgs(lockKey).
		WillDelayFor(time.Second).
		WillReturnResult(sqlmock.NewResult(0, 0))

	runner := NewRunner(db, testLogger(), 20*time.Millisecond)
	_, err = runner.Run(context.Background(), testSteps())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLockTimeout)
}

func TestRunRejectsMalformedSequence(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	runner := NewRunner(db, testLogger(), time.Second)

	_, err = runner.Run(context.Background(), []Step{
		{Ordinal: 1, Name: "a", Up: "SELECT 1"},
		{Ordinal: 1, Name: "b", Up: "SELECT 2"},
	})
	assert.ErrorIs(t, err, ErrDuplicateOrdinal)

	_, err = runner.Run(context.Background(), []Step{
		{Ordinal: 1, Name: "a", Up: "SELECT 1"},
		{Ordinal: 3, Name: "c", Up: "SELECT 3"},
	})
	assert.ErrorIs(t, err, ErrOrdinalGap)
}

func TestRunNoTxStepUsesRecoveryProtocol(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	steps := []Step{
		{Ordinal: 1, Name: "reindex", Up: "CREATE INDEX CONCURRENTLY idx ON leagues (id)", NoTx: true},
	}
	expectPreamble(mock, appliedRows(steps, 0))
	mock.ExpectExec(insertQuery).
		WithArgs(steps[0].Ordinal, steps[0].Name, steps[0].Checksum(), StatusInProgress).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(steps[0].Up)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE schema_migrations SET status = $1, applied_at = now() WHERE ordinal = $2 AND status = $3")).
		WithArgs(StatusCommitted, steps[0].Ordinal, StatusInProgress).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectUnlock(mock)

	runner := NewRunner(db, testLogger(), time.Second)
	applied, err := runner.Run(context.Background(), steps)
	require.NoError(t, err)
	assert.Equal(t, 1, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordDuplicateOrdinal(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectExec(insertQuery).
		WithArgs(int64(1), "create_leagues", "sum", StatusCommitted).
		WillReturnError(&pgconn.PgError{Code: uniqueViolationCode})
	mock.ExpectRollback()

	ledger := NewLedger(db)
	tx, err := db.Begin()
	require.NoError(t, err)

	err = ledger.Record(context.Background(), tx, Entry{Ordinal: 1, Name: "create_leagues", Checksum: "sum"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateOrdinal)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVersion(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	steps := testSteps()
	mock.ExpectExec(createQuery).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(appliedQuery).WithArgs(StatusCommitted).WillReturnRows(appliedRows(steps, 2))

	runner := NewRunner(db, testLogger(), time.Second)
	version, err := runner.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)

	mock.ExpectExec(createQuery).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(appliedQuery).WithArgs(StatusCommitted).WillReturnRows(appliedRows(steps, 0))
	version, err = runner.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDownRollsBackMostRecent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	steps := testSteps()[:1]
	mock.ExpectExec(lockQuery).WithArgs(lockKey).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(createQuery).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(appliedQuery).WithArgs(StatusCommitted).WillReturnRows(appliedRows(steps, 1))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(steps[0].Down)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM schema_migrations WHERE ordinal = $1")).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	expectUnlock(mock)

	runner := NewRunner(db, testLogger(), time.Second)
	require.NoError(t, runner.Down(context.Background(), steps))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDownNoTxStepRunsOutsideTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	steps := []Step{
		{
			Ordinal: 1,
			Name:    "reindex",
			Up:      "CREATE INDEX CONCURRENTLY idx ON leagues (id)",
			Down:    "DROP INDEX CONCURRENTLY idx",
			NoTx:    true,
		},
	}
	mock.ExpectExec(lockQuery).WithArgs(lockKey).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(createQuery).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(appliedQuery).WithArgs(StatusCommitted).WillReturnRows(appliedRows(steps, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE schema_migrations SET status = $1 WHERE ordinal = $2 AND status = $3")).
		WithArgs(StatusInProgress, steps[0].Ordinal, StatusCommitted).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(steps[0].Down)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM schema_migrations WHERE ordinal = $1")).
		WithArgs(steps[0].Ordinal).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectUnlock(mock)

	runner := NewRunner(db, testLogger(), time.Second)
	require.NoError(t, runner.Down(context.Background(), steps))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDownOnEmptyLedger(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectExec(lockQuery).WithArgs(lockKey).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(createQuery).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(appliedQuery).WithArgs(StatusCommitted).WillReturnRows(appliedRows(nil, 0))
	expectUnlock(mock)

	runner := NewRunner(db, testLogger(), time.Second)
	err = runner.Down(context.Background(), testSteps())
	assert.ErrorIs(t, err, ErrNothingToRollBack)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatusReportsLedgerState(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	steps := testSteps()
	mock.ExpectExec(createQuery).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(appliedQuery).WithArgs(StatusCommitted).WillReturnRows(appliedRows(steps, 2))

	runner := NewRunner(db, testLogger(), time.Second)
	statuses, err := runner.Status(context.Background(), steps)
	require.NoError(t, err)
	require.Len(t, statuses, 3)
	assert.True(t, statuses[0].Applied)
	assert.True(t, statuses[1].Applied)
	assert.False(t, statuses[2].Applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}
