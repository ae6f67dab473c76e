package sqlhost

import (
	"context"
	"fmt"

	"github.com/lockplane/schemacore/dialect"
	"github.com/lockplane/schemacore/host"
)

// Describe reads the connected database's current schema into the
// dialect-neutral host.DescribedSchema shape (which introspect.Reconcile
// turns into a dml.Document and the orchestrator into an sqlir.Schema).
func (h *SQLHost) Describe(ctx context.Context) (host.DescribedSchema, error) {
	switch h.adapter.Dialect {
	case dialect.Postgres, dialect.CockroachDB:
		return h.describePostgresLike(ctx)
	case dialect.MySQL, dialect.Vitess:
		return h.describeMySQLLike(ctx)
	default:
		return h.describeSQLite(ctx)
	}
}

func (h *SQLHost) describePostgresLike(ctx context.Context) (host.DescribedSchema, error) {
	out := host.DescribedSchema{Dialect: h.adapter.Dialect.String()}

	tableRows, err := h.QueryRaw(ctx, `
		SELECT table_schema, table_name FROM information_schema.tables
		WHERE table_type = 'BASE TABLE' AND table_schema NOT IN ('pg_catalog', 'information_schema')`)
	if err != nil {
		return out, fmt.Errorf("sqlhost: list tables: %w", err)
	}

	for _, tr := range tableRows {
		ns, _ := tr["table_schema"].(string)
		name, _ := tr["table_name"].(string)
		table := host.DescribedTable{Namespace: ns, Name: name}

		colRows, err := h.QueryRaw(ctx, `
			SELECT column_name, data_type, is_nullable, column_default
			FROM information_schema.columns
			WHERE table_schema = $1 AND table_name = $2
			ORDER BY ordinal_position`, ns, name)
		if err != nil {
			return out, fmt.Errorf("sqlhost: columns for %s.%s: %w", ns, name, err)
		}
		for _, cr := range colRows {
			col := host.DescribedColumn{
				Name:       str(cr["column_name"]),
				NativeType: str(cr["data_type"]),
				Nullable:   str(cr["is_nullable"]) == "YES",
			}
			if d, ok := cr["column_default"].(string); ok {
				col.DefaultText = &d
			}
			table.Columns = append(table.Columns, col)
		}

		out.Tables = append(out.Tables, table)
	}

	enumRows, err := h.QueryRaw(ctx, `
		SELECT n.nspname AS schema, t.typname AS name, e.enumlabel AS variant
		FROM pg_type t
		JOIN pg_enum e ON t.oid = e.enumtypid
		JOIN pg_namespace n ON n.oid = t.typnamespace
		ORDER BY t.typname, e.enumsortorder`)
	if err != nil {
		return out, fmt.Errorf("sqlhost: list enums: %w", err)
	}
	byName := map[string]*host.DescribedEnum{}
	for _, er := range enumRows {
		name := str(er["name"])
		e, ok := byName[name]
		if !ok {
			out.Enums = append(out.Enums, host.DescribedEnum{Namespace: str(er["schema"]), Name: name})
			e = &out.Enums[len(out.Enums)-1]
			byName[name] = e
		}
		e.Variants = append(e.Variants, str(er["variant"]))
	}

	return out, nil
}

func (h *SQLHost) describeMySQLLike(ctx context.Context) (host.DescribedSchema, error) {
	out := host.DescribedSchema{Dialect: h.adapter.Dialect.String()}

	tableRows, err := h.QueryRaw(ctx, `
		SELECT table_schema, table_name FROM information_schema.tables
		WHERE table_type = 'BASE TABLE' AND table_schema = DATABASE()`)
	if err != nil {
		return out, fmt.Errorf("sqlhost: list tables: %w", err)
	}

	for _, tr := range tableRows {
		ns, name := str(tr["table_schema"]), str(tr["table_name"])
		table := host.DescribedTable{Namespace: ns, Name: name}

		colRows, err := h.QueryRaw(ctx, `
			SELECT column_name, data_type, is_nullable, column_default, extra
			FROM information_schema.columns
			WHERE table_schema = ? AND table_name = ?
			ORDER BY ordinal_position`, ns, name)
		if err != nil {
			return out, fmt.Errorf("sqlhost: columns for %s.%s: %w", ns, name, err)
		}
		for _, cr := range colRows {
			col := host.DescribedColumn{
				Name:            str(cr["column_name"]),
				NativeType:      str(cr["data_type"]),
				Nullable:        str(cr["is_nullable"]) == "YES",
				IsAutoIncrement: str(cr["extra"]) == "auto_increment",
			}
			if d, ok := cr["column_default"].(string); ok {
				col.DefaultText = &d
			}
			table.Columns = append(table.Columns, col)
		}

		out.Tables = append(out.Tables, table)
	}

	return out, nil
}

func (h *SQLHost) describeSQLite(ctx context.Context) (host.DescribedSchema, error) {
	out := host.DescribedSchema{Dialect: h.adapter.Dialect.String()}

	tableRows, err := h.QueryRaw(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'`)
	if err != nil {
		return out, fmt.Errorf("sqlhost: list tables: %w", err)
	}

	for _, tr := range tableRows {
		name := str(tr["name"])
		table := host.DescribedTable{Name: name}

		colRows, err := h.QueryRaw(ctx, fmt.Sprintf("PRAGMA table_info(%s)", quoteSQLiteIdent(name)))
		if err != nil {
			return out, fmt.Errorf("sqlhost: table_info(%s): %w", name, err)
		}
		for _, cr := range colRows {
			col := host.DescribedColumn{
				Name:       str(cr["name"]),
				NativeType: str(cr["type"]),
				Nullable:   fmt.Sprint(cr["notnull"]) != "1",
			}
			if d, ok := cr["dflt_value"].(string); ok {
				col.DefaultText = &d
			}
			table.Columns = append(table.Columns, col)
		}

		out.Tables = append(out.Tables, table)
	}

	return out, nil
}

func quoteSQLiteIdent(name string) string {
	return `"` + name + `"`
}

func str(v interface{}) string {
	if v == nil {
		return ""
	}
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	s, _ := v.(string)
	return s
}
