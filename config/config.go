// Package config loads the project's schemacore.toml, walking up from the
// working directory the way the teacher's LoadConfig does, then layering
// .env values and explicit environment variables on top (spec's ambient
// configuration stack).
package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Config is the schemacore.toml shape.
type Config struct {
	DatabaseURL       string `toml:"database_url"`
	ShadowDatabaseURL string `toml:"shadow_database_url"`
	SchemaPath        string `toml:"schema_path"`
	MigrationsDir     string `toml:"migrations_dir"`
	Dialect           string `toml:"dialect"`
}

// Load finds and parses schemacore.toml by walking up from the current
// directory. Before the walk it loads a .env file from the current
// directory (if present) into the process environment; a missing .env is
// ignored, matching the teacher's "no config file found" tolerance.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dir, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	for {
		configPath := filepath.Join(dir, "schemacore.toml")
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, err
			}
			var cfg Config
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return nil, err
			}
			return &cfg, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return &Config{}, nil
}

// ResolveDatabaseURL resolves with priority: explicit flag value >
// environment variable > config file > default.
func (c *Config) ResolveDatabaseURL(explicit, envVar, fallback string) string {
	if explicit != "" {
		return explicit
	}
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	if c != nil && c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fallback
}
