package cli

import (
	"context"
	"fmt"

	"github.com/lockplane/schemacore/dialect"
	"github.com/lockplane/schemacore/host/sqlhost"
	"github.com/lockplane/schemacore/orchestrator"
)

func parseDialect(name string) (dialect.Dialect, error) {
	switch name {
	case "postgres":
		return dialect.Postgres, nil
	case "mysql":
		return dialect.MySQL, nil
	case "sqlite":
		return dialect.SQLite, nil
	case "cockroachdb":
		return dialect.CockroachDB, nil
	case "vitess":
		return dialect.Vitess, nil
	default:
		return 0, fmt.Errorf("unknown dialect %q", name)
	}
}

func newOrchestrator(ctx context.Context) (*orchestrator.Orchestrator, error) {
	d, err := parseDialect(flagDialect)
	if err != nil {
		return nil, err
	}
	if flagDSN == "" {
		return nil, fmt.Errorf("--dsn is required")
	}
	h, err := sqlhost.Open(ctx, flagDriver, flagDSN, d)
	if err != nil {
		return nil, err
	}
	return orchestrator.New(h, d), nil
}
