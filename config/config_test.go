package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_WalksUpToFindConfigFile(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	toml := "database_url = \"postgres://localhost/app\"\ndialect = \"postgres\"\n"
	if err := os.WriteFile(filepath.Join(root, "schemacore.toml"), []byte(toml), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Chdir(nested)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.DatabaseURL != "postgres://localhost/app" {
		t.Errorf("DatabaseURL = %q, want postgres://localhost/app", cfg.DatabaseURL)
	}
	if cfg.Dialect != "postgres" {
		t.Errorf("Dialect = %q, want postgres", cfg.Dialect)
	}
}

func TestLoad_NoConfigFileReturnsZeroValue(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.DatabaseURL != "" || cfg.Dialect != "" {
		t.Errorf("expected zero-value config, got %+v", cfg)
	}
}

func TestResolveDatabaseURL_PriorityOrder(t *testing.T) {
	cfg := &Config{DatabaseURL: "from-config"}

	if got := cfg.ResolveDatabaseURL("from-flag", "SCHEMACORE_TEST_DB_URL", "from-default"); got != "from-flag" {
		t.Errorf("explicit flag should win, got %q", got)
	}

	t.Setenv("SCHEMACORE_TEST_DB_URL", "from-env")
	if got := cfg.ResolveDatabaseURL("", "SCHEMACORE_TEST_DB_URL", "from-default"); got != "from-env" {
		t.Errorf("env var should win over config file, got %q", got)
	}

	t.Setenv("SCHEMACORE_TEST_DB_URL", "")
	if got := cfg.ResolveDatabaseURL("", "SCHEMACORE_TEST_DB_URL", "from-default"); got != "from-config" {
		t.Errorf("config file should win over default, got %q", got)
	}

	empty := &Config{}
	if got := empty.ResolveDatabaseURL("", "SCHEMACORE_TEST_DB_URL_UNSET", "from-default"); got != "from-default" {
		t.Errorf("default should win when nothing else is set, got %q", got)
	}
}
