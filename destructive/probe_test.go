package destructive

import (
	"context"
	"testing"

	"github.com/lockplane/schemacore/dialect"
	"github.com/lockplane/schemacore/differ"
	"github.com/lockplane/schemacore/host"
	"github.com/lockplane/schemacore/sqlir"
)

// fakeHost answers QueryRaw from a canned table of results keyed by the
// exact SQL string, the way the teacher's tests fake database.Driver.
type fakeHost struct {
	rows map[string][]host.Row
	host.Host
}

func (f *fakeHost) QueryRaw(_ context.Context, sql string, _ ...interface{}) ([]host.Row, error) {
	return f.rows[sql], nil
}

func TestExecute_ResolvesBecameRequiredFindingAsSafeWhenNoNulls(t *testing.T) {
	step := differ.MigrationStep{
		Kind:      differ.StepAlterTable,
		TableName: "todos",
		Changes: []differ.TableChange{
			{
				Kind:       differ.TCAlterColumn,
				Changes:    differ.ChangeArity,
				PrevColumn: sqlir.Column{Name: "done", Arity: sqlir.Nullable},
				NextColumn: sqlir.Column{Name: "done", Arity: sqlir.Required},
			},
		},
	}

	fh := &fakeHost{rows: map[string][]host.Row{
		`SELECT 1 FROM "todos" WHERE "done" IS NULL LIMIT 1`: nil,
	}}

	findings, err := Execute(context.Background(), fh, []differ.MigrationStep{step}, dialect.New(dialect.Postgres))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	if findings[0].Severity != Safe {
		t.Errorf("expected Safe once no NULLs are found, got %v", findings[0].Severity)
	}
	if findings[0].NeedsProbe {
		t.Error("expected NeedsProbe to be cleared after resolution")
	}
}

func TestExecute_BecameRequiredIsUnexecutableWhenNullsExist(t *testing.T) {
	step := differ.MigrationStep{
		Kind:      differ.StepAlterTable,
		TableName: "todos",
		Changes: []differ.TableChange{
			{
				Kind:       differ.TCAlterColumn,
				Changes:    differ.ChangeArity,
				PrevColumn: sqlir.Column{Name: "done", Arity: sqlir.Nullable},
				NextColumn: sqlir.Column{Name: "done", Arity: sqlir.Required},
			},
		},
	}

	fh := &fakeHost{rows: map[string][]host.Row{
		`SELECT 1 FROM "todos" WHERE "done" IS NULL LIMIT 1`: {{"1": int64(1)}},
	}}

	findings, err := Execute(context.Background(), fh, []differ.MigrationStep{step}, dialect.New(dialect.Postgres))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if findings[0].Severity != Unexecutable {
		t.Errorf("expected Unexecutable when NULLs exist, got %v", findings[0].Severity)
	}
}

func TestExecute_DedupesIdenticalProbesAcrossFindings(t *testing.T) {
	calls := 0
	queries := map[string][]host.Row{
		`SELECT 1 FROM "todos" WHERE "done" IS NULL LIMIT 1`: nil,
	}
	fh := &countingHost{fakeHost: fakeHost{rows: queries}, calls: &calls}

	step1 := differ.MigrationStep{
		Kind: differ.StepAlterTable, TableName: "todos",
		Changes: []differ.TableChange{{
			Kind: differ.TCAlterColumn, Changes: differ.ChangeArity,
			PrevColumn: sqlir.Column{Name: "done", Arity: sqlir.Nullable},
			NextColumn: sqlir.Column{Name: "done", Arity: sqlir.Required},
		}},
	}
	step2 := step1

	_, err := Execute(context.Background(), fh, []differ.MigrationStep{step1, step2}, dialect.New(dialect.Postgres))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected the identical probe to run exactly once, ran %d times", calls)
	}
}

func TestExecute_AddRequiredColumnWithNoDefaultIsSafeOnEmptyTable(t *testing.T) {
	step := differ.MigrationStep{
		Kind: differ.StepAlterTable, TableName: "todos",
		Changes: []differ.TableChange{{
			Kind:   differ.TCAddColumn,
			Column: sqlir.Column{Name: "owner_id", Arity: sqlir.Required},
		}},
	}

	fh := &fakeHost{rows: map[string][]host.Row{
		`SELECT 1 FROM "todos" LIMIT 1`: nil,
	}}

	findings, err := Execute(context.Background(), fh, []differ.MigrationStep{step}, dialect.New(dialect.Postgres))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	if findings[0].Severity != Safe {
		t.Errorf("expected Safe on an empty table, got %v", findings[0].Severity)
	}
}

func TestExecute_AddRequiredColumnWithNoDefaultIsUnexecutableWhenRowsExist(t *testing.T) {
	step := differ.MigrationStep{
		Kind: differ.StepAlterTable, TableName: "todos",
		Changes: []differ.TableChange{{
			Kind:   differ.TCAddColumn,
			Column: sqlir.Column{Name: "owner_id", Arity: sqlir.Required},
		}},
	}

	fh := &fakeHost{rows: map[string][]host.Row{
		`SELECT 1 FROM "todos" LIMIT 1`: {{"1": int64(1)}},
	}}

	findings, err := Execute(context.Background(), fh, []differ.MigrationStep{step}, dialect.New(dialect.Postgres))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if findings[0].Severity != Unexecutable {
		t.Errorf("expected Unexecutable when existing rows have no value for the new column, got %v", findings[0].Severity)
	}
}

func TestExecute_NotCastableColumnIsSafeOnEmptyTableWhenRecreatedRequired(t *testing.T) {
	step := differ.MigrationStep{
		Kind: differ.StepAlterTable, TableName: "events",
		Changes: []differ.TableChange{{
			Kind:       differ.TCAlterColumn,
			Changes:    differ.ChangeTypeChanged,
			NextColumn: sqlir.Column{Name: "payload", Arity: sqlir.Required},
			TypeChange: differ.TypeChangeResult{Classified: true, Class: dialect.NotCastable},
		}},
	}

	fh := &fakeHost{rows: map[string][]host.Row{
		`SELECT 1 FROM "events" LIMIT 1`: nil,
	}}

	findings, err := Execute(context.Background(), fh, []differ.MigrationStep{step}, dialect.New(dialect.Postgres))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	if findings[0].Severity != Safe {
		t.Errorf("expected Safe when the table is empty, got %v", findings[0].Severity)
	}
}

func TestExecute_NotCastableColumnStaysWarningWhenRecreatedColumnIsNullable(t *testing.T) {
	step := differ.MigrationStep{
		Kind: differ.StepAlterTable, TableName: "events",
		Changes: []differ.TableChange{{
			Kind:       differ.TCAlterColumn,
			Changes:    differ.ChangeTypeChanged,
			NextColumn: sqlir.Column{Name: "payload", Arity: sqlir.Nullable},
			TypeChange: differ.TypeChangeResult{Classified: true, Class: dialect.NotCastable},
		}},
	}

	findings := PureCheck([]differ.MigrationStep{step}, dialect.New(dialect.Postgres))
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	if findings[0].Severity != Warning {
		t.Errorf("expected Warning (no probe needed) for a nullable recreated column, got %v", findings[0].Severity)
	}
	if findings[0].NeedsProbe {
		t.Error("a nullable recreated column should not need a row-count probe")
	}
}

type countingHost struct {
	fakeHost
	calls *int
}

func (c *countingHost) QueryRaw(ctx context.Context, sql string, args ...interface{}) ([]host.Row, error) {
	*c.calls++
	return c.fakeHost.QueryRaw(ctx, sql, args...)
}
