// Package sqlhost is the reference host.Host implementation backed by
// database/sql: a single SQLHost struct wrapping a *sql.DB, which picks
// the introspection query set by dialect.
package sqlhost

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fatih/color"

	_ "github.com/lib/pq"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"

	"github.com/lockplane/schemacore/dialect"
	"github.com/lockplane/schemacore/host"
)

// SQLHost adapts a database/sql connection plus a dialect adapter into a
// host.Host. CockroachDB and Vitess reuse the Postgres and MySQL query
// sets respectively, matching their wire compatibility.
type SQLHost struct {
	db      *sql.DB
	adapter dialect.Adapter
	driver  string // the database/sql driver name passed to sql.Open
}

// Open dials the given driver/DSN pair and wraps it for the given dialect.
// driverName is one of "postgres", "sqlite", "libsql" depending on which
// blank import above should handle the connection.
func Open(ctx context.Context, driverName, dsn string, d dialect.Dialect) (*SQLHost, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlhost: open %s: %w", driverName, err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("sqlhost: ping %s: %w", driverName, err)
	}
	return &SQLHost{db: db, adapter: dialect.New(d), driver: driverName}, nil
}

func (h *SQLHost) RawCmd(ctx context.Context, query string, args ...interface{}) error {
	if _, err := h.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("sqlhost: exec: %w", err)
	}
	return nil
}

func (h *SQLHost) QueryRaw(ctx context.Context, query string, args ...interface{}) ([]host.Row, error) {
	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlhost: query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("sqlhost: columns: %w", err)
	}

	var out []host.Row
	for rows.Next() {
		values := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("sqlhost: scan: %w", err)
		}
		row := make(host.Row, len(cols))
		for i, c := range cols {
			row[c] = values[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// ApplyMigrationScript runs the script inside a single transaction when
// the dialect supports transactional DDL, otherwise statement by
// statement — SQLite's ALTER TABLE limitations mean most of its scripts
// are already individually safe single statements produced by
// ddlrender's RedefineTables path.
func (h *SQLHost) ApplyMigrationScript(ctx context.Context, script string) error {
	if !h.adapter.SupportsTransactionalDDL() {
		if _, err := h.db.ExecContext(ctx, script); err != nil {
			return fmt.Errorf("sqlhost: apply migration script: %w", err)
		}
		return nil
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlhost: begin: %w", err)
	}
	if _, err := tx.ExecContext(ctx, script); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("sqlhost: apply migration script: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlhost: commit: %w", err)
	}
	return nil
}

func (h *SQLHost) Version(ctx context.Context) (string, error) {
	var version string
	row := h.db.QueryRowContext(ctx, versionQuery(h.adapter.Dialect))
	if err := row.Scan(&version); err != nil {
		return "", fmt.Errorf("sqlhost: version: %w", err)
	}
	return version, nil
}

func versionQuery(d dialect.Dialect) string {
	switch d {
	case dialect.Postgres, dialect.CockroachDB:
		return "SELECT version()"
	case dialect.MySQL, dialect.Vitess:
		return "SELECT VERSION()"
	default:
		return "SELECT sqlite_version()"
	}
}

func (h *SQLHost) Print(message string) {
	color.Cyan("%s", message)
}

func (h *SQLHost) Close() error {
	return h.db.Close()
}
