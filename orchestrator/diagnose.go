package orchestrator

import (
	"context"
	"fmt"

	"github.com/lockplane/schemacore/coreerr"
	"github.com/lockplane/schemacore/dialect"
	"github.com/lockplane/schemacore/migrations"
)

// migrationsTable is the bookkeeping table this module creates in every
// connected database to record which on-disk migrations have been
// applied, mirroring one directory entry per row.
const migrationsTable = "_schemacore_migrations"

// appliedMigration is one row of migrationsTable.
type appliedMigration struct {
	Name     string
	Checksum string
}

// DiagnosisStatus classifies the relationship between what's on disk and
// what the database's migrations table says has been applied.
type DiagnosisStatus int

const (
	// InSync: every on-disk migration is applied with a matching checksum,
	// and nothing is applied that isn't on disk. The order in which they
	// were applied is not checked.
	InSync DiagnosisStatus = iota
	// PendingMigrations: some on-disk migrations haven't been applied yet,
	// but everything that has been applied matches.
	PendingMigrations
	// Drifted: an applied migration's checksum no longer matches the file
	// on disk, or a migration is applied that no longer exists on disk.
	// Applying further migrations on top of this state is unsafe.
	Drifted
)

func (s DiagnosisStatus) String() string {
	switch s {
	case InSync:
		return "in sync"
	case PendingMigrations:
		return "pending migrations"
	case Drifted:
		return "drifted"
	default:
		return "unknown"
	}
}

// Diagnosis is DiagnoseMigrationHistory's result.
type Diagnosis struct {
	Status   DiagnosisStatus
	Pending  []string // on-disk migration names not yet applied
	Modified []string // applied migration names whose checksum no longer matches
	Orphaned []string // applied migration names with no on-disk counterpart
	// Stale is non-empty when a migrations.LockReservation was left behind
	// by a previous ApplyMigration/Reset that crashed or was killed before
	// clearing it — the in-database advisory lock alone doesn't catch
	// this, since it releases automatically when the holding connection
	// dies.
	Stale *migrations.LockReservation
}

func diagnose(onDisk []migrations.Migration, applied []appliedMigration) Diagnosis {
	appliedByName := make(map[string]appliedMigration, len(applied))
	for _, a := range applied {
		appliedByName[a.Name] = a
	}
	onDiskByName := make(map[string]migrations.Migration, len(onDisk))
	for _, m := range onDisk {
		onDiskByName[m.Name] = m
	}

	var d Diagnosis
	for _, m := range onDisk {
		a, ok := appliedByName[m.Name]
		if !ok {
			d.Pending = append(d.Pending, m.Name)
			continue
		}
		if a.Checksum != m.Checksum {
			d.Modified = append(d.Modified, m.Name)
		}
	}
	for _, a := range applied {
		if _, ok := onDiskByName[a.Name]; !ok {
			d.Orphaned = append(d.Orphaned, a.Name)
		}
	}

	switch {
	case len(d.Modified) > 0 || len(d.Orphaned) > 0:
		d.Status = Drifted
	case len(d.Pending) > 0:
		d.Status = PendingMigrations
	default:
		d.Status = InSync
	}
	return d
}

func (o *Orchestrator) queryAppliedMigrations(ctx context.Context) ([]appliedMigration, error) {
	if err := o.ensureMigrationsTable(ctx); err != nil {
		return nil, err
	}

	rows, err := o.Host.QueryRaw(ctx, fmt.Sprintf("SELECT name, checksum FROM %s ORDER BY name", migrationsTable))
	if err != nil {
		return nil, coreerr.Wrap(coreerr.KindConnector, "querying applied migrations", err)
	}

	out := make([]appliedMigration, 0, len(rows))
	for _, r := range rows {
		name, _ := r["name"].(string)
		checksum, _ := r["checksum"].(string)
		out = append(out, appliedMigration{Name: name, Checksum: checksum})
	}
	return out, nil
}

func (o *Orchestrator) ensureMigrationsTable(ctx context.Context) error {
	ddl := fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (name TEXT PRIMARY KEY, checksum TEXT NOT NULL, applied_at TIMESTAMP)`,
		migrationsTable,
	)
	if err := o.Host.RawCmd(ctx, ddl); err != nil {
		return coreerr.Wrap(coreerr.KindConnector, "ensuring migrations table exists", err)
	}
	return nil
}

// RecordMigrationApplied inserts a row into the migrations table after
// ApplyMigration successfully applies an on-disk migration, so a future
// DiagnoseMigrationHistory call sees it as applied.
func (o *Orchestrator) RecordMigrationApplied(ctx context.Context, m migrations.Migration) error {
	if err := o.ensureMigrationsTable(ctx); err != nil {
		return err
	}
	p1, p2 := "$1", "$2"
	if o.Adapter.Dialect == dialect.SQLite || o.Adapter.Dialect == dialect.MySQL || o.Adapter.Dialect == dialect.Vitess {
		p1, p2 = "?", "?"
	}
	stmt := fmt.Sprintf("INSERT INTO %s (name, checksum, applied_at) VALUES (%s, %s, CURRENT_TIMESTAMP)", migrationsTable, p1, p2)
	if err := o.Host.RawCmd(ctx, stmt, m.Name, m.Checksum); err != nil {
		return coreerr.Wrap(coreerr.KindConnector, "recording applied migration "+m.Name, err)
	}
	return nil
}
