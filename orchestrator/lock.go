package orchestrator

import (
	"context"

	"github.com/lockplane/schemacore/coreerr"
	"github.com/lockplane/schemacore/dialect"
)

// advisoryLockKey is a fixed namespace for this toolchain's session-level
// advisory lock, so two unrelated applications sharing one Postgres
// instance can't collide on the same lock ID by coincidence.
const advisoryLockKey = 0x5343484d // "SCHM"

// acquireAdvisoryLock takes a session-level lock on the connected
// database before ApplyMigration/Reset run, so two concurrent
// invocations against the same database serialize instead of
// interleaving their DDL (spec §5). Dialects without an advisory-lock
// primitive (SQLite, and MySQL/Vitess which this module doesn't attempt
// GET_LOCK() emulation for) get a no-op unlock, since those connections
// are already exclusive per-process or the lock isn't load-bearing for
// the backend in question.
func (o *Orchestrator) acquireAdvisoryLock(ctx context.Context) (func(context.Context), error) {
	switch o.Adapter.Dialect {
	case dialect.Postgres, dialect.CockroachDB:
		if err := o.Host.RawCmd(ctx, "SELECT pg_advisory_lock($1)", int64(advisoryLockKey)); err != nil {
			return nil, coreerr.Wrap(coreerr.KindConnector, "acquiring advisory lock", err)
		}
		return func(ctx context.Context) {
			_ = o.Host.RawCmd(ctx, "SELECT pg_advisory_unlock($1)", int64(advisoryLockKey))
		}, nil
	default:
		return func(context.Context) {}, nil
	}
}
