package sqlhost

import (
	"context"
	"testing"

	"github.com/lockplane/schemacore/dialect"
	"github.com/lockplane/schemacore/host"
)

func openMemory(t *testing.T) *SQLHost {
	t.Helper()
	h, err := Open(context.Background(), "sqlite", ":memory:", dialect.SQLite)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { h.Close() })
	return h
}

func TestSQLHost_RawCmdAndQueryRaw(t *testing.T) {
	ctx := context.Background()
	h := openMemory(t)

	if err := h.RawCmd(ctx, "CREATE TABLE widgets (id INTEGER PRIMARY KEY, name TEXT)"); err != nil {
		t.Fatalf("RawCmd create: %v", err)
	}
	if err := h.RawCmd(ctx, "INSERT INTO widgets (id, name) VALUES (?, ?)", 1, "gear"); err != nil {
		t.Fatalf("RawCmd insert: %v", err)
	}

	rows, err := h.QueryRaw(ctx, "SELECT id, name FROM widgets")
	if err != nil {
		t.Fatalf("QueryRaw: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0]["name"] != "gear" {
		t.Errorf("name = %v, want gear", rows[0]["name"])
	}
}

func TestSQLHost_ApplyMigrationScript_NonTransactionalDialect(t *testing.T) {
	ctx := context.Background()
	h := openMemory(t)

	script := `
CREATE TABLE a (id INTEGER PRIMARY KEY);
CREATE TABLE b (id INTEGER PRIMARY KEY);
`
	if err := h.ApplyMigrationScript(ctx, script); err != nil {
		t.Fatalf("ApplyMigrationScript: %v", err)
	}

	rows, err := h.QueryRaw(ctx, "SELECT name FROM sqlite_master WHERE type = 'table'")
	if err != nil {
		t.Fatalf("QueryRaw: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d tables, want 2", len(rows))
	}
}

func TestSQLHost_DescribeSQLite(t *testing.T) {
	ctx := context.Background()
	h := openMemory(t)

	if err := h.RawCmd(ctx, "CREATE TABLE widgets (id INTEGER PRIMARY KEY, name TEXT NOT NULL, note TEXT)"); err != nil {
		t.Fatalf("RawCmd: %v", err)
	}

	schema, err := h.Describe(ctx)
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if len(schema.Tables) != 1 {
		t.Fatalf("got %d tables, want 1", len(schema.Tables))
	}
	table := schema.Tables[0]
	if table.Name != "widgets" {
		t.Errorf("table name = %q, want widgets", table.Name)
	}
	if len(table.Columns) != 3 {
		t.Fatalf("got %d columns, want 3", len(table.Columns))
	}

	byName := map[string]host.DescribedColumn{}
	for _, c := range table.Columns {
		byName[c.Name] = c
	}
	if byName["name"].Nullable {
		t.Error("expected name column to be NOT NULL")
	}
	if !byName["note"].Nullable {
		t.Error("expected note column to be nullable")
	}
}

func TestSQLHost_Version(t *testing.T) {
	ctx := context.Background()
	h := openMemory(t)

	v, err := h.Version(ctx)
	if err != nil {
		t.Fatalf("Version: %v", err)
	}
	if v == "" {
		t.Error("expected a non-empty version string")
	}
}
