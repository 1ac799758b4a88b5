package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"hash/crc32"
	"time"
)

// lockKey is the advisory lock identifier shared by every replica of this
// service. Derived from a fixed string so all builds agree on it; the lock
// serializes migration execution only and never blocks query traffic.
var lockKey = int64(crc32.ChecksumIEEE([]byte("pitchdata-api-migrations")))

// advisoryLock holds a session-scoped PostgreSQL advisory lock. The lock
// lives on a dedicated pooled connection, which must stay open until
// release; the server drops the lock automatically if the session dies.
type advisoryLock struct {
	conn *sql.Conn
	key  int64
}

// acquireLock blocks until the migration advisory lock is granted, bounded
// by timeout. On expiry it returns ErrLockTimeout and the caller must not
// proceed with a possibly stale schema view.
func acquireLock(ctx context.Context, db *sql.DB, timeout time.Duration) (*advisoryLock, error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("migrate: obtaining lock connection: %w", err)
	}

	lockCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if _, err := conn.ExecContext(lockCtx, "SELECT pg_advisory_lock($1)", lockKey); err != nil {
		_ = conn.Close()
		// Drivers report their own cancellation error instead of wrapping the
		// context's, so consult the deadline directly.
		if lockCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
			return nil, fmt.Errorf("%w after %s", ErrLockTimeout, timeout)
		}
		return nil, fmt.Errorf("migrate: acquiring advisory lock: %w", err)
	}
	return &advisoryLock{conn: conn, key: lockKey}, nil
}

// release unlocks and returns the connection to the pool. Uses a fresh
// context so the lock is released even when the caller's context is done.
func (l *advisoryLock) release() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, _ = l.conn.ExecContext(ctx, "SELECT pg_advisory_unlock($1)", l.key)
	_ = l.conn.Close()
}
