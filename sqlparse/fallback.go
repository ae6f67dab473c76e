package sqlparse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/lockplane/schemacore/coreerr"
	"github.com/lockplane/schemacore/dialect"
	"github.com/lockplane/schemacore/sqlir"
)

// parseFallback handles the CREATE TABLE / CREATE INDEX subset this
// module's own ddlrender emits for SQLite, MySQL, and Vitess, where
// pg_query_go's grammar doesn't apply. It is a small statement-level
// scanner, not a general SQL parser: good enough for test fixtures and for
// re-reading this module's own rendered output, not for arbitrary
// hand-written DDL. Scoped down the way redi-orm's sql package scans SQL
// token by token, but specialized to DDL rather than DML.
func parseFallback(sqlText string, d dialect.Dialect) (*sqlir.Schema, error) {
	b := sqlir.NewBuilder(d.String())
	nsID := b.Namespace("")
	tables := map[string]sqlir.TableID{}
	columns := map[string]map[string]sqlir.ColumnID{}

	for _, stmt := range splitStatements(sqlText) {
		switch {
		case createTablePattern.MatchString(stmt):
			m := createTablePattern.FindStringSubmatch(stmt)
			name, body := unquoteIdent(m[1]), m[2]
			tid := b.AddTable(nsID, name)
			tables[name] = tid
			columns[name] = map[string]sqlir.ColumnID{}

			var deferred []string
			for _, part := range splitTopLevel(body) {
				part = strings.TrimSpace(part)
				if part == "" {
					continue
				}
				if isTableConstraintClause(part) {
					deferred = append(deferred, part)
					continue
				}
				col, isPK := parseFallbackColumn(part)
				cid := b.AddColumn(tid, col)
				columns[name][col.Name] = cid
				if isPK {
					b.AddIndex(tid, sqlir.Index{Columns: []sqlir.IndexColumn{{ColumnID: cid}}, Kind: sqlir.PrimaryKeyIndex})
				}
			}
			for _, clause := range deferred {
				if err := applyFallbackConstraint(b, tid, name, columns, tables, clause); err != nil {
					return nil, err
				}
			}

		case createIndexPattern.MatchString(stmt):
			m := createIndexPattern.FindStringSubmatch(stmt)
			unique, idxName, tableName, colList := m[1] != "", unquoteIdent(m[2]), unquoteIdent(m[3]), m[4]
			tid, ok := tables[tableName]
			if !ok {
				return nil, coreerr.New(coreerr.KindUser, "CREATE INDEX on unknown table "+tableName)
			}
			kind := sqlir.NormalIndex
			if unique {
				kind = sqlir.UniqueIndex
			}
			var cols []sqlir.IndexColumn
			for _, c := range splitTopLevel(colList) {
				cid, ok := columns[tableName][unquoteIdent(strings.TrimSpace(c))]
				if ok {
					cols = append(cols, sqlir.IndexColumn{ColumnID: cid})
				}
			}
			b.AddIndex(tid, sqlir.Index{Name: idxName, Columns: cols, Kind: kind})
		}
	}

	return b.Build(), nil
}

var (
	createTablePattern = regexp.MustCompile(`(?is)^CREATE TABLE\s+(?:IF NOT EXISTS\s+)?([^\s(]+)\s*\((.*)\)$`)
	createIndexPattern = regexp.MustCompile(`(?is)^CREATE\s+(UNIQUE\s+)?INDEX\s+(?:IF NOT EXISTS\s+)?([^\s]+)\s+ON\s+([^\s(]+)\s*\(([^)]*)\)$`)
	notNullPattern      = regexp.MustCompile(`(?i)\bNOT NULL\b`)
	primaryKeyPattern   = regexp.MustCompile(`(?i)\bPRIMARY KEY\b`)
	autoIncPattern      = regexp.MustCompile(`(?i)\bAUTO_?INCREMENT\b`)
	defaultPattern      = regexp.MustCompile(`(?i)\bDEFAULT\s+(\S+|\([^)]*\))`)
	typeWithArgsPattern = regexp.MustCompile(`^([A-Za-z_ ]+)(?:\(([0-9, ]+)\))?`)
)

func splitStatements(sql string) []string {
	var out []string
	for _, s := range strings.Split(sql, ";") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// splitTopLevel splits on commas that are not nested inside parentheses,
// the way a column/constraint list inside CREATE TABLE(...) must be.
func splitTopLevel(s string) []string {
	var out []string
	depth, last := 0, 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, s[last:i])
				last = i + 1
			}
		}
	}
	out = append(out, s[last:])
	return out
}

func isTableConstraintClause(part string) bool {
	upper := strings.ToUpper(strings.TrimSpace(part))
	for _, kw := range []string{"PRIMARY KEY", "FOREIGN KEY", "UNIQUE", "CONSTRAINT"} {
		if strings.HasPrefix(upper, kw) {
			return true
		}
	}
	return false
}

func parseFallbackColumn(def string) (sqlir.Column, bool) {
	fields := strings.Fields(def)
	col := sqlir.Column{Name: unquoteIdent(fields[0]), Arity: sqlir.Nullable}

	rest := strings.TrimSpace(def[len(fields[0]):])
	if m := typeWithArgsPattern.FindStringSubmatch(rest); m != nil {
		col.NativeType.Name = strings.ToLower(strings.TrimSpace(m[1]))
		if m[2] != "" {
			for _, p := range strings.Split(m[2], ",") {
				if n, err := strconv.Atoi(strings.TrimSpace(p)); err == nil {
					col.NativeType.Params = append(col.NativeType.Params, n)
				}
			}
		}
	}

	isPK := primaryKeyPattern.MatchString(rest)
	if isPK || notNullPattern.MatchString(rest) {
		col.Arity = sqlir.Required
	}
	if autoIncPattern.MatchString(rest) {
		col.AutoIncrement = true
	}
	if m := defaultPattern.FindStringSubmatch(rest); m != nil {
		col.Default = parseFallbackDefault(strings.Trim(m[1], "()"))
	}
	return col, isPK
}

func parseFallbackDefault(expr string) sqlir.Default {
	lower := strings.ToLower(expr)
	switch {
	case lower == "now()" || lower == "current_timestamp":
		return sqlir.Default{Kind: sqlir.DefaultNow}
	case expr == "":
		return sqlir.Default{Kind: sqlir.DefaultNone}
	default:
		return sqlir.Default{Kind: sqlir.DefaultDbGenerated, Expression: expr, HasExpression: true}
	}
}

var (
	foreignKeyPattern = regexp.MustCompile(`(?is)FOREIGN KEY\s*\(([^)]*)\)\s*REFERENCES\s+([^\s(]+)\s*\(([^)]*)\)`)
	uniquePattern     = regexp.MustCompile(`(?is)^UNIQUE\s*\(([^)]*)\)`)
	primaryKeyClause  = regexp.MustCompile(`(?is)^PRIMARY KEY\s*\(([^)]*)\)`)
)

func applyFallbackConstraint(b *sqlir.Builder, tid sqlir.TableID, tableName string, columns map[string]map[string]sqlir.ColumnID, tables map[string]sqlir.TableID, clause string) error {
	cols := columns[tableName]

	if m := primaryKeyClause.FindStringSubmatch(clause); m != nil {
		var idxCols []sqlir.IndexColumn
		for _, c := range splitTopLevel(m[1]) {
			if cid, ok := cols[unquoteIdent(strings.TrimSpace(c))]; ok {
				idxCols = append(idxCols, sqlir.IndexColumn{ColumnID: cid})
			}
		}
		b.AddIndex(tid, sqlir.Index{Columns: idxCols, Kind: sqlir.PrimaryKeyIndex})
		return nil
	}

	if m := uniquePattern.FindStringSubmatch(clause); m != nil {
		var idxCols []sqlir.IndexColumn
		for _, c := range splitTopLevel(m[1]) {
			if cid, ok := cols[unquoteIdent(strings.TrimSpace(c))]; ok {
				idxCols = append(idxCols, sqlir.IndexColumn{ColumnID: cid})
			}
		}
		b.AddIndex(tid, sqlir.Index{Columns: idxCols, Kind: sqlir.UniqueIndex})
		return nil
	}

	if m := foreignKeyPattern.FindStringSubmatch(clause); m != nil {
		refTable := unquoteIdent(m[2])
		refTID, ok := tables[refTable]
		if !ok {
			return coreerr.New(coreerr.KindUser, "foreign key references unknown table "+refTable)
		}
		refCols := columns[refTable]

		var constrained, referenced []sqlir.ColumnID
		for _, c := range splitTopLevel(m[1]) {
			if cid, ok := cols[unquoteIdent(strings.TrimSpace(c))]; ok {
				constrained = append(constrained, cid)
			}
		}
		for _, c := range splitTopLevel(m[3]) {
			if cid, ok := refCols[unquoteIdent(strings.TrimSpace(c))]; ok {
				referenced = append(referenced, cid)
			}
		}

		onDelete, onUpdate := sqlir.NoAction, sqlir.NoAction
		if strings.Contains(strings.ToUpper(clause), "ON DELETE CASCADE") {
			onDelete = sqlir.Cascade
		}
		if strings.Contains(strings.ToUpper(clause), "ON DELETE SET NULL") {
			onDelete = sqlir.SetNull
		}
		b.AddForeignKey(tid, sqlir.ForeignKey{
			ConstrainedColumnIDs: constrained,
			ReferencedTableID:    refTID,
			ReferencedColumnIDs:  referenced,
			OnDelete:             onDelete,
			OnUpdate:             onUpdate,
		})
	}
	return nil
}

func unquoteIdent(s string) string {
	s = strings.TrimSpace(s)
	return strings.Trim(s, "`\"[]")
}
