package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	// This is a generic version of the entity-specific not found errors
	// (e.g., ErrLeagueNotFound, ErrTeamNotFound).
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity (e.g., a second season for the same league and year).
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrTransactionFailed is returned when a database transaction fails
	// to commit or when an operation within a transaction fails.
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrPoolTimeout is returned when a connection could not be acquired
	// from the pool within the caller's deadline. It is the only store
	// fault category safe to surface to clients as retryable.
	ErrPoolTimeout = errors.New("connection pool timeout")

	// Entity-specific "not found" errors

	// ErrLeagueNotFound indicates that the requested league does not exist in the store.
	ErrLeagueNotFound = fmt.Errorf("%w: league", ErrNotFound)

	// ErrSeasonNotFound indicates that the requested season does not exist in the store.
	ErrSeasonNotFound = fmt.Errorf("%w: season", ErrNotFound)

	// ErrTeamNotFound indicates that the requested team does not exist in the store.
	ErrTeamNotFound = fmt.Errorf("%w: team", ErrNotFound)

	// ErrPlayerNotFound indicates that the requested player does not exist in the store.
	ErrPlayerNotFound = fmt.Errorf("%w: player", ErrNotFound)

	// ErrFixtureNotFound indicates that the requested fixture does not exist in the store.
	ErrFixtureNotFound = fmt.Errorf("%w: fixture", ErrNotFound)

	// Entity-specific "duplicate" errors

	// ErrLeagueExists indicates that a league with the given ID already exists.
	ErrLeagueExists = fmt.Errorf("%w: league", ErrDuplicate)

	// ErrSeasonExists indicates that a season for the given league and year
	// already exists.
	ErrSeasonExists = fmt.Errorf("%w: season", ErrDuplicate)

	// ErrTeamExists indicates that a team with the given ID already exists.
	ErrTeamExists = fmt.Errorf("%w: team", ErrDuplicate)

	// ErrPlayerExists indicates that a player with the given ID already exists.
	ErrPlayerExists = fmt.Errorf("%w: player", ErrDuplicate)

	// ErrFixtureExists indicates that a fixture with the given ID already exists.
	ErrFixtureExists = fmt.Errorf("%w: fixture", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// IsRetryable reports whether the error is a transient resource fault the
// caller may retry. Only pool exhaustion qualifies; validation failures and
// storage faults never do.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrPoolTimeout)
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "league", "team")
	Operation string // The operation that failed (e.g., "create", "update")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation, message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
