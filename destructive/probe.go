package destructive

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lockplane/schemacore/dialect"
	"github.com/lockplane/schemacore/differ"
	"github.com/lockplane/schemacore/host"
)

// probeTimeout bounds the total time Execute spends running live probes
// (spec §4.5): a destructive-change check must never hang a CLI
// invocation waiting on a slow COUNT(*) against a huge table.
const probeTimeout = 60 * time.Second

// probeKey dedupes identical probes across findings — two AlterColumn
// findings on the same table/column asking "does this column have any
// NULLs" only need to run the query once.
type probeKey struct {
	kind   ProbeKind
	table  string
	column string
}

// Execute runs PureCheck and then resolves every NeedsProbe finding against
// h, deduplicating identical probes and giving up after probeTimeout. A
// probe that times out or errors is left at its provisional Severity
// rather than failing the whole check outright, since the provisional
// Warning or Unexecutable is the conservative answer when the true one
// can't be determined in time; the error is still returned so a caller
// can surface it.
func Execute(ctx context.Context, h host.Host, steps []differ.MigrationStep, ad dialect.Adapter) ([]Finding, error) {
	findings := PureCheck(steps, ad)

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	var keys []probeKey
	seen := map[probeKey]bool{}
	for i := range findings {
		f := &findings[i]
		if !f.NeedsProbe {
			continue
		}
		key := probeKey{kind: f.ProbeKind, table: f.ProbeTable, column: f.ProbeColumn}
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}

	// Run every distinct probe through an errgroup with concurrency fixed
	// at 1: the scheduler still dedupes/awaits through errgroup's Group
	// rather than a bare loop, but never fans probe queries out against
	// the database in parallel (spec §5's "no concurrent queries against
	// one Host" invariant — see DESIGN.md).
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(1)

	results := map[probeKey]bool{}
	errs := map[probeKey]error{}
	for _, key := range keys {
		key := key
		g.Go(func() error {
			risky, err := runProbe(gctx, h, key.kind, key.table, key.column)
			if err != nil {
				errs[key] = err
				return nil
			}
			results[key] = risky
			return nil
		})
	}
	_ = g.Wait() // probe funcs never return non-nil: individual failures are tracked in errs

	var probeErr error
	for i := range findings {
		f := &findings[i]
		if !f.NeedsProbe {
			continue
		}
		key := probeKey{kind: f.ProbeKind, table: f.ProbeTable, column: f.ProbeColumn}
		if err, failed := errs[key]; failed {
			probeErr = fmt.Errorf("probing %s.%s: %w", f.ProbeTable, f.ProbeColumn, err)
			continue
		}
		resolveFinding(f, results[key])
	}

	return findings, probeErr
}

// resolveFinding turns a provisional finding into its resolved Severity
// once the live probe answers the question it was waiting on.
func resolveFinding(f *Finding, risky bool) {
	switch f.ProbeKind {
	case ProbeColumnHasNull:
		if !risky {
			// No existing row is NULL, so making the column required cannot fail.
			f.Severity = Safe
			f.Detail = "column " + f.ProbeColumn + " becomes required; no existing row is NULL, so this is safe"
		} else {
			f.Severity = Unexecutable
			f.Detail = "column " + f.ProbeColumn + " becomes required, but existing rows have NULL values; this will fail unless a default is supplied"
		}
	case ProbeTableRowCount:
		if !risky {
			f.Severity = Safe
			f.Detail = f.Detail + " (table is currently empty)"
		}
	}
	f.NeedsProbe = false
}

func runProbe(ctx context.Context, h host.Host, kind ProbeKind, table, column string) (bool, error) {
	switch kind {
	case ProbeColumnHasNull:
		rows, err := h.QueryRaw(ctx, fmt.Sprintf(`SELECT 1 FROM %s WHERE %s IS NULL LIMIT 1`, quoteIdent(table), quoteIdent(column)))
		if err != nil {
			return false, err
		}
		return len(rows) > 0, nil
	case ProbeTableRowCount:
		rows, err := h.QueryRaw(ctx, fmt.Sprintf(`SELECT 1 FROM %s LIMIT 1`, quoteIdent(table)))
		if err != nil {
			return false, err
		}
		return len(rows) > 0, nil
	default:
		return false, fmt.Errorf("unknown probe kind %v", kind)
	}
}

func quoteIdent(name string) string {
	return `"` + name + `"`
}
