package migrations

import (
	"path/filepath"
	"testing"
	"time"
)

func TestWrite_CreatesTimestampedDirectoryWithScript(t *testing.T) {
	dir := t.TempDir()
	at := time.Date(2023, 10, 15, 10, 30, 0, 0, time.UTC)

	m, err := Write(dir, at, "Add Users Table", "CREATE TABLE users (id int);")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Name != "20231015103000_add_users_table" {
		t.Errorf("expected directory name 20231015103000_add_users_table, got %s", m.Name)
	}

	data, err := filepath.Glob(filepath.Join(dir, m.Name, ScriptFileName))
	if err != nil || len(data) != 1 {
		t.Fatalf("expected migration.sql to exist under %s", m.Name)
	}
}

func TestChecksum_IsByteExactWithNoNewlineNormalization(t *testing.T) {
	a := Checksum("CREATE TABLE t (id int);\n")
	b := Checksum("CREATE TABLE t (id int);\r\n")
	if a == b {
		t.Error("expected differing line endings to produce different checksums")
	}
	c := Checksum("CREATE TABLE t (id int);\n")
	if a != c {
		t.Error("expected identical byte content to produce identical checksums")
	}
}

func TestList_ReturnsMigrationsInTimestampOrder(t *testing.T) {
	dir := t.TempDir()
	older := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)

	if _, err := Write(dir, newer, "second", "SELECT 2;"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := Write(dir, older, "first", "SELECT 1;"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	list, err := List(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(list))
	}
	if list[0].Slug != "first" || list[1].Slug != "second" {
		t.Errorf("expected first then second, got %s then %s", list[0].Slug, list[1].Slug)
	}
}

func TestEnsureLock_WritesThenDetectsMismatch(t *testing.T) {
	dir := t.TempDir()

	if err := EnsureLock(dir, "postgresql"); err != nil {
		t.Fatalf("unexpected error creating lock: %v", err)
	}
	if err := EnsureLock(dir, "postgresql"); err != nil {
		t.Fatalf("unexpected error re-verifying matching lock: %v", err)
	}
	if err := EnsureLock(dir, "sqlite"); err == nil {
		t.Error("expected a dialect mismatch to return an error")
	}
}

func TestList_ReturnsNilForMissingDirectory(t *testing.T) {
	list, err := List(filepath.Join(t.TempDir(), "does-not-exist"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if list != nil {
		t.Errorf("expected nil, got %+v", list)
	}
}
