package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/lockplane/schemacore/dialect"
	"github.com/lockplane/schemacore/host"
	"github.com/lockplane/schemacore/migrations"
	"github.com/lockplane/schemacore/sqlir"
)

func fixedTime() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }

func emptySchema(d dialect.Dialect) *sqlir.Schema {
	return sqlir.NewBuilder(d.String()).Build()
}

// fakeHost is a minimal in-memory host.Host used to exercise the
// orchestrator without a real database connection, the way the teacher's
// planner tests fake database.Driver.
type fakeHost struct {
	rawCmds   []string
	rawArgs   [][]interface{}
	queryRows map[string][]host.Row
	described host.DescribedSchema
	version   string
	applied   []string
}

func (f *fakeHost) RawCmd(_ context.Context, sql string, args ...interface{}) error {
	f.rawCmds = append(f.rawCmds, sql)
	f.rawArgs = append(f.rawArgs, args)
	return nil
}

func (f *fakeHost) QueryRaw(_ context.Context, sql string, _ ...interface{}) ([]host.Row, error) {
	return f.queryRows[sql], nil
}

func (f *fakeHost) ApplyMigrationScript(_ context.Context, script string) error {
	f.applied = append(f.applied, script)
	return nil
}

func (f *fakeHost) Describe(_ context.Context) (host.DescribedSchema, error) {
	return f.described, nil
}

func (f *fakeHost) Version(_ context.Context) (string, error) { return f.version, nil }
func (f *fakeHost) Print(string)                                {}
func (f *fakeHost) Close() error                                 { return nil }

func TestDiff_EmptyTargetAgainstEmptyNextProducesNoSteps(t *testing.T) {
	o := New(&fakeHost{}, dialect.Postgres)
	next := emptySchema(dialect.Postgres)

	steps, err := o.Diff(context.Background(), DiffTarget{Kind: TargetEmpty}, next)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(steps) != 0 {
		t.Errorf("expected no steps between two empty schemas, got %d", len(steps))
	}
}

func TestApplyMigration_AcquiresAndReleasesAdvisoryLockOnPostgres(t *testing.T) {
	fh := &fakeHost{}
	o := New(fh, dialect.Postgres)

	if err := o.ApplyMigration(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(fh.rawCmds) != 2 {
		t.Fatalf("expected lock+unlock raw commands, got %d: %v", len(fh.rawCmds), fh.rawCmds)
	}
	if fh.rawCmds[0] != "SELECT pg_advisory_lock($1)" {
		t.Errorf("expected an advisory lock acquisition first, got %s", fh.rawCmds[0])
	}
	if fh.rawCmds[1] != "SELECT pg_advisory_unlock($1)" {
		t.Errorf("expected an advisory unlock last, got %s", fh.rawCmds[1])
	}
}

func TestApplyMigration_NoLockOnSQLite(t *testing.T) {
	fh := &fakeHost{}
	o := New(fh, dialect.SQLite)

	if err := o.ApplyMigration(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fh.rawCmds) != 0 {
		t.Errorf("expected no advisory lock commands on sqlite, got %v", fh.rawCmds)
	}
}

func TestDiagnoseMigrationHistory_ReportsPendingWhenNotYetApplied(t *testing.T) {
	dir := t.TempDir()
	if _, err := migrations.Write(dir, fixedTime(), "add users", "CREATE TABLE users (id int);"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fh := &fakeHost{queryRows: map[string][]host.Row{}}
	o := New(fh, dialect.Postgres)

	d, err := o.DiagnoseMigrationHistory(context.Background(), dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Status != PendingMigrations {
		t.Errorf("expected PendingMigrations, got %v", d.Status)
	}
	if len(d.Pending) != 1 {
		t.Errorf("expected 1 pending migration, got %d", len(d.Pending))
	}
}

func TestApplyMigrationFromDisk_ClearsReservationOnSuccess(t *testing.T) {
	dir := t.TempDir()
	m, err := migrations.Write(dir, fixedTime(), "add users", "CREATE TABLE users (id int);")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fh := &fakeHost{queryRows: map[string][]host.Row{}}
	o := New(fh, dialect.Postgres)

	if err := o.ApplyMigrationFromDisk(context.Background(), dir, m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r, err := migrations.LoadReservation(dir)
	if err != nil {
		t.Fatalf("unexpected error loading reservation: %v", err)
	}
	if r != nil {
		t.Errorf("expected reservation to be cleared after a successful apply, got %+v", r)
	}
	if len(fh.applied) != 1 || fh.applied[0] != m.Script {
		t.Errorf("expected the migration script to be applied, got %v", fh.applied)
	}
}

func TestDiagnoseMigrationHistory_ReportsStaleReservationFromCrashedApply(t *testing.T) {
	dir := t.TempDir()
	if _, err := migrations.Write(dir, fixedTime(), "add users", "CREATE TABLE users (id int);"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := migrations.SaveReservation(dir, migrations.LockReservation{Operation: "apply_migration", Migration: "stale"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fh := &fakeHost{queryRows: map[string][]host.Row{}}
	o := New(fh, dialect.Postgres)

	d, err := o.DiagnoseMigrationHistory(context.Background(), dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Stale == nil || d.Stale.Migration != "stale" {
		t.Errorf("expected a stale reservation to be surfaced, got %+v", d.Stale)
	}
}

func TestDiagnoseMigrationHistory_ReportsDriftOnChecksumMismatch(t *testing.T) {
	dir := t.TempDir()
	m, err := migrations.Write(dir, fixedTime(), "add users", "CREATE TABLE users (id int);")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	selectQuery := "SELECT name, checksum FROM _schemacore_migrations ORDER BY name"
	fh := &fakeHost{queryRows: map[string][]host.Row{
		selectQuery: {{"name": m.Name, "checksum": "stale-checksum"}},
	}}
	o := New(fh, dialect.Postgres)

	d, err := o.DiagnoseMigrationHistory(context.Background(), dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Status != Drifted {
		t.Errorf("expected Drifted, got %v", d.Status)
	}
	if len(d.Modified) != 1 {
		t.Errorf("expected 1 modified migration, got %d", len(d.Modified))
	}
}
