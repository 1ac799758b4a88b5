package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// DefaultLockTimeout bounds how long a booting replica waits for another
// replica's migration run to finish before giving up.
const DefaultLockTimeout = 30 * time.Second

// Runner brings the database schema to the version the running code
// expects, exactly once per deployment, safely under concurrent process
// starts. A process must not accept application traffic until Run has
// returned successfully.
type Runner struct {
	db          *sql.DB
	ledger      *Ledger
	logger      *slog.Logger
	lockTimeout time.Duration
}

// NewRunner creates a Runner over the given database handle. A
// non-positive lockTimeout falls back to DefaultLockTimeout.
func NewRunner(db *sql.DB, logger *slog.Logger, lockTimeout time.Duration) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}
	return &Runner{
		db:          db,
		ledger:      NewLedger(db),
		logger:      logger,
		lockTimeout: lockTimeout,
	}
}

// Run applies every pending step in ascending ordinal order and returns the
// number applied. Each step's forward action and ledger entry commit as one
// atomic unit; the first failure aborts the run, leaving the database at
// the last committed ordinal, and is never auto-retried.
//
// Run refuses to proceed when the ledger is ahead of the declared steps
// (ErrUnknownOrdinal) or records an unfinished non-transactional step
// (ErrCorrupted).
func (r *Runner) Run(ctx context.Context, steps []Step) (int, error) {
	// Correlation ID ties together every log line of one migration run.
	log := r.logger.With(
		"correlation_id", uuid.New().String(),
		"component", "migrations",
	)

	if err := verifySequence(steps); err != nil {
		return 0, err
	}

	start := time.Now()
	log.Info("starting migration run",
		"declared_steps", len(steps),
		"lock_timeout", r.lockTimeout.String())

	lock, err := acquireLock(ctx, r.db, r.lockTimeout)
	if err != nil {
		log.Error("failed to acquire migration lock", "error", err)
		return 0, err
	}
	defer lock.release()

	if err := r.ledger.EnsureTable(ctx); err != nil {
		return 0, err
	}

	pending, err := r.pendingSteps(ctx, steps, log)
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		log.Info("schema already up to date",
			"version", int64(len(steps)),
			"duration_ms", time.Since(start).Milliseconds())
		return 0, nil
	}

	applied := 0
	for _, step := range pending {
		if err := r.applyStep(ctx, step, log); err != nil {
			log.Error("migration run aborted",
				"failed_ordinal", step.Ordinal,
				"applied", applied,
				"error", err)
			return applied, err
		}
		applied++
	}

	log.Info("migration run complete",
		"applied", applied,
		"version", pending[len(pending)-1].Ordinal,
		"duration_ms", time.Since(start).Milliseconds())
	return applied, nil
}

// pendingSteps verifies the ledger against the declared sequence and
// returns the strict suffix of steps not yet applied.
func (r *Runner) pendingSteps(ctx context.Context, steps []Step, log *slog.Logger) ([]Step, error) {
	unfinished, err := r.ledger.Unfinished(ctx)
	if err != nil {
		return nil, err
	}
	if len(unfinished) > 0 {
		return nil, fmt.Errorf("%w: ordinals %v require manual intervention", ErrCorrupted, unfinished)
	}

	applied, err := r.ledger.ListApplied(ctx)
	if err != nil {
		return nil, err
	}

	// Applied ordinals must be a gapless prefix of the declared sequence.
	// Anything else means the database was migrated by a newer build.
	for i, entry := range applied {
		if i >= len(steps) || steps[i].Ordinal != entry.Ordinal {
			return nil, fmt.Errorf("%w: ordinal %d", ErrUnknownOrdinal, entry.Ordinal)
		}
		if entry.Checksum != steps[i].Checksum() {
			// Ordinal, not content, is identity; drift is surfaced for
			// operators rather than turned into an outage.
			log.Warn("checksum drift on applied migration",
				"ordinal", entry.Ordinal,
				"name", entry.Name,
				"ledger_checksum", entry.Checksum,
				"code_checksum", steps[i].Checksum())
		}
	}

	log.Info("computed pending migrations",
		"applied", len(applied),
		"pending", len(steps)-len(applied))
	return steps[len(applied):], nil
}

// applyStep executes one step's forward action and its ledger write.
func (r *Runner) applyStep(ctx context.Context, step Step, log *slog.Logger) error {
	stepStart := time.Now()
	log.Info("applying migration",
		"ordinal", step.Ordinal,
		"name", step.Name,
		"transactional", !step.NoTx)

	var err error
	if step.NoTx {
		err = r.applyNoTx(ctx, step)
	} else {
		err = r.applyTx(ctx, step)
	}
	if err != nil {
		return err
	}

	log.Info("migration applied",
		"ordinal", step.Ordinal,
		"name", step.Name,
		"duration_ms", time.Since(stepStart).Milliseconds())
	return nil
}

// applyTx runs the forward action and the ledger insert in one transaction.
func (r *Runner) applyTx(ctx context.Context, step Step) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return &StepError{Ordinal: step.Ordinal, Name: step.Name, Err: err}
	}

	if _, err := tx.ExecContext(ctx, step.Up); err != nil {
		_ = tx.Rollback()
		return &StepError{Ordinal: step.Ordinal, Name: step.Name, Err: err}
	}

	entry := Entry{Ordinal: step.Ordinal, Name: step.Name, Checksum: step.Checksum()}
	if err := r.ledger.Record(ctx, tx, entry); err != nil {
		_ = tx.Rollback()
		return &StepError{Ordinal: step.Ordinal, Name: step.Name, Err: err}
	}

	if err := tx.Commit(); err != nil {
		return &StepError{Ordinal: step.Ordinal, Name: step.Name, Err: err}
	}
	return nil
}

// applyNoTx applies a non-transactional step under the recovery protocol:
// mark in-progress, run the action, mark committed. A crash in between
// leaves an in-progress entry that fails the next startup with ErrCorrupted.
func (r *Runner) applyNoTx(ctx context.Context, step Step) error {
	entry := Entry{Ordinal: step.Ordinal, Name: step.Name, Checksum: step.Checksum()}
	if err := r.ledger.MarkInProgress(ctx, entry); err != nil {
		return &StepError{Ordinal: step.Ordinal, Name: step.Name, Err: err}
	}

	if _, err := r.db.ExecContext(ctx, step.Up); err != nil {
		// The in-progress row is left behind on purpose: the database state
		// is unknown and must not be re-attempted automatically.
		return &StepError{Ordinal: step.Ordinal, Name: step.Name, Err: err}
	}

	if err := r.ledger.MarkCommitted(ctx, step.Ordinal); err != nil {
		return &StepError{Ordinal: step.Ordinal, Name: step.Name, Err: err}
	}
	return nil
}

// Version returns the current schema version: the highest committed
// ordinal, or 0 on a fresh database.
func (r *Runner) Version(ctx context.Context) (int64, error) {
	if err := r.ledger.EnsureTable(ctx); err != nil {
		return 0, err
	}
	applied, err := r.ledger.ListApplied(ctx)
	if err != nil {
		return 0, err
	}
	if len(applied) == 0 {
		return 0, nil
	}
	return applied[len(applied)-1].Ordinal, nil
}

// StepStatus pairs a declared step with its ledger state, for operator
// status output.
type StepStatus struct {
	Step      Step
	Applied   bool
	AppliedAt time.Time
}

// Status reports every declared step and whether the ledger records it.
func (r *Runner) Status(ctx context.Context, steps []Step) ([]StepStatus, error) {
	if err := r.ledger.EnsureTable(ctx); err != nil {
		return nil, err
	}
	applied, err := r.ledger.ListApplied(ctx)
	if err != nil {
		return nil, err
	}

	appliedAt := make(map[int64]time.Time, len(applied))
	for _, e := range applied {
		appliedAt[e.Ordinal] = e.AppliedAt
	}

	statuses := make([]StepStatus, 0, len(steps))
	for _, step := range steps {
		at, ok := appliedAt[step.Ordinal]
		statuses = append(statuses, StepStatus{Step: step, Applied: ok, AppliedAt: at})
	}
	return statuses, nil
}

// Down rolls back the single most recent committed migration. It exists
// only as an explicit operator action; nothing triggers it automatically,
// since automatic downgrade is unsafe in general.
func (r *Runner) Down(ctx context.Context, steps []Step) error {
	log := r.logger.With(
		"correlation_id", uuid.New().String(),
		"component", "migrations",
	)

	lock, err := acquireLock(ctx, r.db, r.lockTimeout)
	if err != nil {
		return err
	}
	defer lock.release()

	if err := r.ledger.EnsureTable(ctx); err != nil {
		return err
	}
	applied, err := r.ledger.ListApplied(ctx)
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		return ErrNothingToRollBack
	}

	last := applied[len(applied)-1]
	if int(last.Ordinal) > len(steps) || steps[last.Ordinal-1].Ordinal != last.Ordinal {
		return fmt.Errorf("%w: ordinal %d", ErrUnknownOrdinal, last.Ordinal)
	}
	step := steps[last.Ordinal-1]
	if step.Down == "" {
		return fmt.Errorf("%w: ordinal %d (%s)", ErrNoDownAction, step.Ordinal, step.Name)
	}

	log.Info("rolling back migration",
		"ordinal", step.Ordinal,
		"name", step.Name,
		"transactional", !step.NoTx)

	if step.NoTx {
		err = r.rollBackNoTx(ctx, step)
	} else {
		err = r.rollBackTx(ctx, step)
	}
	if err != nil {
		return err
	}

	log.Info("rollback complete", "ordinal", step.Ordinal, "name", step.Name)
	return nil
}

// rollBackTx runs the down action and the ledger delete in one transaction.
func (r *Runner) rollBackTx(ctx context.Context, step Step) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return &StepError{Ordinal: step.Ordinal, Name: step.Name, Err: err}
	}
	if _, err := tx.ExecContext(ctx, step.Down); err != nil {
		_ = tx.Rollback()
		return &StepError{Ordinal: step.Ordinal, Name: step.Name, Err: err}
	}
	if err := r.ledger.Remove(ctx, tx, step.Ordinal); err != nil {
		_ = tx.Rollback()
		return &StepError{Ordinal: step.Ordinal, Name: step.Name, Err: err}
	}
	if err := tx.Commit(); err != nil {
		return &StepError{Ordinal: step.Ordinal, Name: step.Name, Err: err}
	}
	return nil
}

// rollBackNoTx reverses a non-transactional step under the same recovery
// protocol as applyNoTx: flip the entry to in_progress, run the down action
// on the bare connection, then delete the entry. A crash in between leaves
// an in-progress row that fails the next startup with ErrCorrupted.
func (r *Runner) rollBackNoTx(ctx context.Context, step Step) error {
	if err := r.ledger.MarkRollingBack(ctx, step.Ordinal); err != nil {
		return &StepError{Ordinal: step.Ordinal, Name: step.Name, Err: err}
	}
	if _, err := r.db.ExecContext(ctx, step.Down); err != nil {
		// The in-progress row is left behind on purpose: the database state
		// is unknown and must not be re-attempted automatically.
		return &StepError{Ordinal: step.Ordinal, Name: step.Name, Err: err}
	}
	if err := r.ledger.RemoveDirect(ctx, step.Ordinal); err != nil {
		return &StepError{Ordinal: step.Ordinal, Name: step.Name, Err: err}
	}
	return nil
}
