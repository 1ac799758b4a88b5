package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pitchdata/pitchdata-api/internal/platform/logger"
)

// TxFn is a function that executes within a database transaction.
// It receives the context and a transaction, and returns an error if the operation fails.
// The transaction is committed if the function returns nil, or rolled back if it returns an error.
type TxFn func(ctx context.Context, tx *sql.Tx) error

// RunInTransaction executes the given function within a database transaction.
// If the function returns an error, the transaction is rolled back; this
// includes context cancellation, so an aborted request never commits.
// Otherwise, the transaction is committed.
//
// acquireTimeout bounds only the wait for a pooled connection, not the
// transaction itself; zero leaves the wait bounded by ctx alone. When the
// wait expires and the caller's own context is still live, the failure is
// reported as ErrPoolTimeout so callers can distinguish pool exhaustion
// from query faults.
func RunInTransaction(ctx context.Context, db *sql.DB, acquireTimeout time.Duration, fn TxFn) error {
	log := logger.FromContext(ctx)

	acquireCtx := ctx
	cancel := func() {}
	if acquireTimeout > 0 {
		acquireCtx, cancel = context.WithTimeout(ctx, acquireTimeout)
	}
	conn, err := db.Conn(acquireCtx)
	cancel()
	if err != nil {
		timedOut := errors.Is(err, context.DeadlineExceeded) ||
			acquireCtx.Err() == context.DeadlineExceeded
		if timedOut && ctx.Err() == nil {
			log.Warn("timed out waiting for a pooled connection",
				slog.Duration("acquire_timeout", acquireTimeout),
				slog.String("error", err.Error()))
			return fmt.Errorf("%w: %v", ErrPoolTimeout, err)
		}
		log.Error("failed to acquire connection",
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer func() { _ = conn.Close() }()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction",
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	// Roll back on panic, then re-panic so callers see the original fault.
	defer func() {
		if p := recover(); p != nil {
			txErr := tx.Rollback()
			if txErr != nil {
				log.Error("failed to roll back transaction after panic",
					slog.String("error", txErr.Error()),
					slog.Any("panic", p))
			} else {
				log.Error("rolled back transaction after panic",
					slog.Any("panic", p))
			}
			// ALLOW-PANIC: Propagating caught panic from transaction
			panic(p)
		}
	}()

	err = fn(ctx, tx)
	if err != nil {
		rollbackErr := tx.Rollback()
		if rollbackErr != nil {
			log.Error("failed to roll back transaction",
				slog.String("rollback_error", rollbackErr.Error()),
				slog.String("original_error", err.Error()))
			return fmt.Errorf(
				"error rolling back transaction: %v (original error: %w)",
				rollbackErr,
				err,
			)
		}
		log.Debug("rolled back transaction due to error",
			slog.String("error", err.Error()))
		return err
	}

	err = tx.Commit()
	if err != nil {
		log.Error("failed to commit transaction",
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: commit: %v", ErrTransactionFailed, err)
	}

	log.Debug("transaction committed successfully")
	return nil
}
