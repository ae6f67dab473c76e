// Package host defines the injected port the orchestrator and destructive
// checker use to talk to a real database, so neither package ever imports
// database/sql or a driver directly (spec §5/§6). A reference
// implementation lives in host/sqlhost; tests use a fake satisfying the
// same interface, the way the teacher's database.Driver seam is faked in
// planner_test.go.
package host

import "context"

// Row is one row of a QueryRaw result, column name to Go value as
// returned by database/sql's generic scan (string, int64, float64, bool,
// []byte, time.Time, or nil).
type Row map[string]interface{}

// Host is every operation the orchestrator or destructive checker needs
// against a live database.
type Host interface {
	// RawCmd executes a statement with no expected result set (DDL, DML).
	RawCmd(ctx context.Context, sql string, args ...interface{}) error

	// QueryRaw runs a read-only query and returns every row.
	QueryRaw(ctx context.Context, sql string, args ...interface{}) ([]Row, error)

	// ApplyMigrationScript runs a whole migration file's statements as one
	// unit (transactional when the dialect supports it).
	ApplyMigrationScript(ctx context.Context, script string) error

	// Describe introspects the connected database into a DescribedSchema.
	// It returns this plain description rather than an sqlir.Schema (the
	// orchestrator does that conversion) so host never imports sqlir.
	Describe(ctx context.Context) (DescribedSchema, error)

	// Version reports the connected server's version string, used for
	// capability gating (e.g. "can this Postgres do ADD COLUMN ... NOT
	// NULL with a fast default").
	Version(ctx context.Context) (string, error)

	// Print surfaces a human-readable notice to whatever is driving the
	// orchestrator (CLI, wizard); it is never used for control flow.
	Print(message string)

	// Close releases the underlying connection.
	Close() error
}

// DescribedSchema is the raw, dialect-shaped description a Host returns;
// introspect.Reconcile turns one into a dml.Document, and the orchestrator
// rebuilds an sqlir.Schema from one for diffing.
type DescribedSchema struct {
	Dialect string
	Tables  []DescribedTable
	Enums   []DescribedEnum
}

type DescribedTable struct {
	Namespace   string
	Name        string
	Columns     []DescribedColumn
	Indexes     []DescribedIndex
	ForeignKeys []DescribedForeignKey
}

type DescribedColumn struct {
	Name           string
	NativeType     string
	TypeParams     []int
	Nullable       bool
	DefaultText    *string
	IsAutoIncrement bool
}

type DescribedIndex struct {
	Name       string
	ColumnName []string
	Descending []bool
	Unique     bool
	IsPrimary  bool
}

type DescribedForeignKey struct {
	Name                string
	ConstrainedColumns  []string
	ReferencedTable     string
	ReferencedColumns   []string
	OnDelete            string
	OnUpdate            string
}

type DescribedEnum struct {
	Namespace string
	Name      string
	Variants  []string
}
