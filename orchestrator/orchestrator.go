// Package orchestrator is the single entry point cmd/corectl drives: it
// wires sqlir, dialect, differ, ddlrender, destructive, introspect, and
// migrations together into the handful of whole operations a user
// actually invokes (spec §5), the way the teacher's internal/executor
// package glues schema loading, planning, and execution together for its
// CLI commands.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/lockplane/schemacore/coreerr"
	"github.com/lockplane/schemacore/ddlrender"
	"github.com/lockplane/schemacore/destructive"
	"github.com/lockplane/schemacore/dialect"
	"github.com/lockplane/schemacore/differ"
	"github.com/lockplane/schemacore/dml"
	"github.com/lockplane/schemacore/host"
	"github.com/lockplane/schemacore/introspect"
	"github.com/lockplane/schemacore/migrations"
	"github.com/lockplane/schemacore/sqlir"
)

// Orchestrator binds one live database connection (Host) and its dialect
// adapter to the operations below. Construct one per invocation the way
// the teacher opens one *sql.DB per command.
type Orchestrator struct {
	Host    host.Host
	Adapter dialect.Adapter
}

// New builds an Orchestrator for the given host and dialect.
func New(h host.Host, d dialect.Dialect) *Orchestrator {
	return &Orchestrator{Host: h, Adapter: dialect.New(d)}
}

// DiffTargetKind tags DiffTarget, spec §5's "compare against any of these
// four things" sum type.
type DiffTargetKind int

const (
	// TargetEmpty diffs against a schema with nothing in it (used to
	// render a from-scratch "create everything" script).
	TargetEmpty DiffTargetKind = iota
	// TargetSchema diffs against an already-built sqlir.Schema.
	TargetSchema
	// TargetDatabase diffs against the live connected database's current
	// state (introspected fresh for this call).
	TargetDatabase
	// TargetMigrations diffs against the cumulative state produced by
	// replaying every migration script in a directory in order.
	TargetMigrations
)

// DiffTarget selects what the "next" schema in Diff is compared against.
type DiffTarget struct {
	Kind            DiffTargetKind
	Schema          *sqlir.Schema // TargetSchema
	MigrationsDir   string        // TargetMigrations
}

// Diff computes the ordered migration steps from target to next. A panic
// anywhere in the differ (a malformed sqlir.Schema invariant) is converted
// to a KindInternal error rather than crashing the caller.
func (o *Orchestrator) Diff(ctx context.Context, target DiffTarget, next *sqlir.Schema) (steps []differ.MigrationStep, err error) {
	defer coreerr.Recover(&err)

	previous, err := o.resolveTarget(ctx, target)
	if err != nil {
		return nil, err
	}
	return differ.Diff(previous, next, o.Adapter), nil
}

func (o *Orchestrator) resolveTarget(ctx context.Context, target DiffTarget) (*sqlir.Schema, error) {
	switch target.Kind {
	case TargetEmpty:
		return sqlir.NewBuilder(o.Adapter.Dialect.String()).Build(), nil
	case TargetSchema:
		if target.Schema == nil {
			return nil, coreerr.New(coreerr.KindUser, "diff target Schema is required for TargetSchema")
		}
		return target.Schema, nil
	case TargetDatabase:
		return o.introspectLiveSchema(ctx)
	case TargetMigrations:
		return o.replayMigrations(target.MigrationsDir)
	default:
		return nil, coreerr.New(coreerr.KindUser, "unknown diff target kind")
	}
}

// RenderScript renders a set of migration steps into the SQL text a user
// would save into a migration file.
func (o *Orchestrator) RenderScript(steps []differ.MigrationStep) string {
	statements := ddlrender.Render(steps, o.Adapter)
	script := ""
	for _, s := range statements {
		script += s + "\n"
	}
	return script
}

// ApplyScript runs an arbitrary SQL script against the connected
// database as one unit, the way the teacher's executor.ApplyPlan wraps
// plan execution in a single transaction.
func (o *Orchestrator) ApplyScript(ctx context.Context, script string) (err error) {
	defer coreerr.Recover(&err)

	if err := o.Host.ApplyMigrationScript(ctx, script); err != nil {
		return coreerr.Wrap(coreerr.KindConnector, "applying migration script", err)
	}
	return nil
}

// ApplyMigration renders steps to SQL and applies them under an advisory
// lock, so two concurrent invocations against the same database can't
// interleave their DDL (spec §5).
func (o *Orchestrator) ApplyMigration(ctx context.Context, steps []differ.MigrationStep) (err error) {
	defer coreerr.Recover(&err)

	unlock, err := o.acquireAdvisoryLock(ctx)
	if err != nil {
		return err
	}
	defer unlock(ctx)

	script := o.RenderScript(steps)
	return o.ApplyScript(ctx, script)
}

// CheckDestructive runs the full (structural + live-probe) destructive
// change classification for a set of steps.
func (o *Orchestrator) CheckDestructive(ctx context.Context, steps []differ.MigrationStep) ([]destructive.Finding, error) {
	return destructive.Execute(ctx, o.Host, steps, o.Adapter)
}

// LockImpacts annotates each step with the lock mode it will acquire, for
// a caller (the CLI wizard) to show alongside destructive-change findings
// before a user confirms ApplyMigration.
func (o *Orchestrator) LockImpacts(steps []differ.MigrationStep) []ddlrender.LockImpact {
	impacts := make([]ddlrender.LockImpact, len(steps))
	for i, step := range steps {
		impacts[i] = ddlrender.ClassifyLockImpact(step, o.Adapter)
	}
	return impacts
}

// Introspect reconciles the live database into a dml.Document, optionally
// preserving naming/mapping decisions from a prior document.
func (o *Orchestrator) Introspect(ctx context.Context, prior *dml.Document) (result introspect.Result, err error) {
	defer coreerr.Recover(&err)

	described, err := o.Host.Describe(ctx)
	if err != nil {
		return introspect.Result{}, coreerr.Wrap(coreerr.KindConnector, "describing database", err)
	}
	return introspect.Reconcile(described, prior), nil
}

func (o *Orchestrator) introspectLiveSchema(ctx context.Context) (*sqlir.Schema, error) {
	described, err := o.Host.Describe(ctx)
	if err != nil {
		return nil, coreerr.Wrap(coreerr.KindConnector, "describing database", err)
	}
	return describedToSchema(described, o.Adapter.Dialect)
}

// replayMigrations rebuilds the schema a migrations directory implies by
// diffing against TargetEmpty and re-deriving state is out of scope here
// (that requires a SQL parser); instead it reports the error as
// Unsupported rather than silently returning an incomplete schema, since
// guessing at a parsed-back schema risks masking real drift.
func (o *Orchestrator) replayMigrations(dir string) (*sqlir.Schema, error) {
	list, err := migrations.List(dir)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return sqlir.NewBuilder(o.Adapter.Dialect.String()).Build(), nil
	}
	return nil, coreerr.New(coreerr.KindUnsupported, "diffing against TargetMigrations requires applying the migrations directory to a shadow database first; use DiagnoseMigrationHistory or apply to a shadow host and diff TargetDatabase instead")
}

// DiagnoseMigrationHistory compares what the database's migrations table
// claims has been applied against what's on disk, per spec §4.7. Drift
// that would make a further ApplyMigration unsafe is reported as
// Status Drifted in the returned Diagnosis, not as an error.
func (o *Orchestrator) DiagnoseMigrationHistory(ctx context.Context, dir string) (d Diagnosis, err error) {
	defer coreerr.Recover(&err)

	onDisk, err := migrations.List(dir)
	if err != nil {
		return Diagnosis{}, err
	}

	applied, err := o.queryAppliedMigrations(ctx)
	if err != nil {
		return Diagnosis{}, err
	}

	d = diagnose(onDisk, applied)
	stale, err := migrations.LoadReservation(dir)
	if err != nil {
		return Diagnosis{}, coreerr.Wrap(coreerr.KindInternal, "reading migration lock reservation", err)
	}
	d.Stale = stale
	return d, nil
}

// ApplyMigrationFromDisk applies an on-disk migration and records it in
// the database's bookkeeping table, leaving a LockReservation in dir for
// the duration so a crash mid-apply is detectable by a later
// DiagnoseMigrationHistory call even after the advisory lock itself has
// released.
func (o *Orchestrator) ApplyMigrationFromDisk(ctx context.Context, dir string, m migrations.Migration) (err error) {
	defer coreerr.Recover(&err)

	if err := migrations.SaveReservation(dir, migrations.LockReservation{
		Operation: "apply_migration",
		Migration: m.Name,
		StartedAt: time.Now(),
	}); err != nil {
		return coreerr.Wrap(coreerr.KindInternal, "saving migration lock reservation", err)
	}
	defer migrations.ClearReservation(dir)

	unlock, err := o.acquireAdvisoryLock(ctx)
	if err != nil {
		return err
	}
	defer unlock(ctx)

	if err := o.ApplyScript(ctx, m.Script); err != nil {
		return err
	}
	return o.RecordMigrationApplied(ctx, m)
}

// EnsureConnectionValidity pings the connected database and reports its
// version string, failing fast with KindConnector before any destructive
// operation is attempted.
func (o *Orchestrator) EnsureConnectionValidity(ctx context.Context) (version string, err error) {
	defer coreerr.Recover(&err)

	version, err = o.Host.Version(ctx)
	if err != nil {
		return "", coreerr.Wrap(coreerr.KindConnector, "validating database connection", err)
	}
	return version, nil
}

// Reset drops every described table (with its indexes and foreign keys)
// and enum. Sequences and extensions are not described, so they are not
// dropped. It runs under the same advisory lock as ApplyMigration.
func (o *Orchestrator) Reset(ctx context.Context) (err error) {
	defer coreerr.Recover(&err)

	unlock, err := o.acquireAdvisoryLock(ctx)
	if err != nil {
		return err
	}
	defer unlock(ctx)

	current, err := o.introspectLiveSchema(ctx)
	if err != nil {
		return err
	}
	empty := sqlir.NewBuilder(o.Adapter.Dialect.String()).Build()
	steps := differ.Diff(current, empty, o.Adapter)
	return o.ApplyScript(ctx, o.RenderScript(steps))
}

// CreateDatabase and DropDatabase operate at the server level, outside
// any single database's transaction, so they go through RawCmd directly
// rather than ApplyMigrationScript.

func (o *Orchestrator) CreateDatabase(ctx context.Context, name string) (err error) {
	defer coreerr.Recover(&err)

	if err := o.Host.RawCmd(ctx, fmt.Sprintf("CREATE DATABASE %s", quoteIdent(name))); err != nil {
		return coreerr.Wrap(coreerr.KindConnector, "creating database "+name, err)
	}
	return nil
}

func (o *Orchestrator) DropDatabase(ctx context.Context, name string) (err error) {
	defer coreerr.Recover(&err)

	if err := o.Host.RawCmd(ctx, fmt.Sprintf("DROP DATABASE IF EXISTS %s", quoteIdent(name))); err != nil {
		return coreerr.Wrap(coreerr.KindConnector, "dropping database "+name, err)
	}
	return nil
}

func quoteIdent(name string) string { return `"` + name + `"` }
