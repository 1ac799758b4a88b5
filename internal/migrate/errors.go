package migrate

import (
	"errors"
	"fmt"
)

// Migration faults are fatal to process startup and are never retried
// automatically; schema changes are not safely retryable without operator
// judgment.
var (
	// ErrDuplicateOrdinal is returned when the step sequence declares the
	// same ordinal twice, or when a ledger append collides with an existing
	// row. Either way it is a build/deployment fault.
	ErrDuplicateOrdinal = errors.New("migrate: duplicate migration ordinal")

	// ErrOrdinalGap is returned when the declared step sequence skips an
	// ordinal. Steps must be strictly ordered and gapless.
	ErrOrdinalGap = errors.New("migrate: gap in migration ordinal sequence")

	// ErrUnknownOrdinal is returned when the ledger records an ordinal the
	// running code does not declare. The database is ahead of the binary
	// (unsafe downgrade) and the process must refuse to start.
	ErrUnknownOrdinal = errors.New("migrate: ledger contains ordinal unknown to this build")

	// ErrCorrupted is returned when an in-progress ledger entry has no
	// matching committed entry: a non-transactional step died half-way.
	// Recovery requires manual operator intervention.
	ErrCorrupted = errors.New("migrate: ledger has an unfinished migration entry")

	// ErrLockTimeout is returned when the migration advisory lock could not
	// be acquired within the configured timeout. The caller must not serve
	// traffic with a possibly stale schema view.
	ErrLockTimeout = errors.New("migrate: timed out acquiring migration lock")

	// ErrNothingToRollBack is returned by Down on an empty ledger.
	ErrNothingToRollBack = errors.New("migrate: no applied migrations to roll back")

	// ErrNoDownAction is returned by Down when the most recent migration
	// declares no reverse action.
	ErrNoDownAction = errors.New("migrate: migration has no down action")
)

// StepError wraps a failure from one migration step's forward or reverse
// action, preserving the ordinal at which the run stopped. The database is
// left at the last successfully committed ordinal.
type StepError struct {
	Ordinal int64
	Name    string
	Err     error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("migrate: step %d (%s) failed: %v", e.Ordinal, e.Name, e.Err)
}

// Unwrap returns the underlying cause to support errors.Is/errors.As.
func (e *StepError) Unwrap() error {
	return e.Err
}
