package sqlparse

import (
	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/lockplane/schemacore/coreerr"
	"github.com/lockplane/schemacore/dialect"
	"github.com/lockplane/schemacore/sqlir"
)

// parsePostgres walks a pg_query parse tree the way the teacher's
// parsePostgresSQLSchema does, but fills in the table-level constraint,
// foreign key, and index handling the teacher left commented out, since
// this module's differ needs foreign keys and indexes to produce anything
// useful.
func parsePostgres(sqlText string, d dialect.Dialect) (*sqlir.Schema, error) {
	tree, err := pg_query.Parse(sqlText)
	if err != nil {
		return nil, coreerr.Wrap(coreerr.KindUser, "parsing SQL", err)
	}

	p := &pgParser{
		b:          sqlir.NewBuilder(d.String()),
		namespaces: map[string]sqlir.NamespaceID{},
		tables:     map[string]sqlir.TableID{},
		columns:    map[string]map[string]sqlir.ColumnID{},
	}

	for _, raw := range tree.Stmts {
		if raw.Stmt == nil {
			continue
		}
		switch n := raw.Stmt.Node.(type) {
		case *pg_query.Node_CreateStmt:
			if err := p.createTable(n.CreateStmt); err != nil {
				return nil, err
			}
		case *pg_query.Node_CreateEnumStmt:
			if err := p.createEnum(n.CreateEnumStmt); err != nil {
				return nil, err
			}
		}
	}

	// Second pass: table-level constraints, standalone indexes, and ALTER
	// TABLE ADD CONSTRAINT may reference tables defined anywhere in the
	// script, so these only run once every table/column exists.
	for _, raw := range tree.Stmts {
		if raw.Stmt == nil {
			continue
		}
		switch n := raw.Stmt.Node.(type) {
		case *pg_query.Node_CreateStmt:
			if err := p.tableLevelConstraints(n.CreateStmt); err != nil {
				return nil, err
			}
		case *pg_query.Node_IndexStmt:
			if err := p.createIndex(n.IndexStmt); err != nil {
				return nil, err
			}
		case *pg_query.Node_AlterTableStmt:
			if err := p.alterTable(n.AlterTableStmt); err != nil {
				return nil, err
			}
		}
	}

	return p.b.Build(), nil
}

type pgParser struct {
	b          *sqlir.Builder
	namespaces map[string]sqlir.NamespaceID
	tables     map[string]sqlir.TableID
	columns    map[string]map[string]sqlir.ColumnID
}

func (p *pgParser) namespaceID(name string) sqlir.NamespaceID {
	if name == "" {
		name = "public"
	}
	if id, ok := p.namespaces[name]; ok {
		return id
	}
	id := p.b.Namespace(name)
	p.namespaces[name] = id
	return id
}

func tableKey(ns, name string) string { return ns + "." + name }

func rangeVarNamespace(rv *pg_query.RangeVar) string {
	if rv.Schemaname != "" {
		return rv.Schemaname
	}
	return "public"
}

func (p *pgParser) createTable(stmt *pg_query.CreateStmt) error {
	if stmt.Relation == nil {
		return coreerr.New(coreerr.KindUser, "CREATE TABLE missing relation name")
	}
	ns := rangeVarNamespace(stmt.Relation)
	nsID := p.namespaceID(ns)
	tid := p.b.AddTable(nsID, stmt.Relation.Relname)
	key := tableKey(ns, stmt.Relation.Relname)
	p.tables[key] = tid
	p.columns[key] = map[string]sqlir.ColumnID{}

	var pkColumns []string
	for _, elt := range stmt.TableElts {
		colNode, ok := elt.Node.(*pg_query.Node_ColumnDef)
		if !ok {
			continue
		}
		col, isPK, err := columnDef(colNode.ColumnDef)
		if err != nil {
			return err
		}
		cid := p.b.AddColumn(tid, col)
		p.columns[key][col.Name] = cid
		if isPK {
			pkColumns = append(pkColumns, col.Name)
		}
	}
	if len(pkColumns) > 0 {
		p.addPrimaryKey(tid, key, pkColumns)
	}
	return nil
}

func (p *pgParser) addPrimaryKey(tid sqlir.TableID, key string, columnNames []string) {
	p.b.AddIndex(tid, sqlir.Index{Columns: p.indexColumnsFor(key, columnNames), Kind: sqlir.PrimaryKeyIndex})
}

func (p *pgParser) indexColumnsFor(key string, names []string) []sqlir.IndexColumn {
	var out []sqlir.IndexColumn
	for _, n := range names {
		if cid, ok := p.columns[key][n]; ok {
			out = append(out, sqlir.IndexColumn{ColumnID: cid})
		}
	}
	return out
}

// columnDef converts a ColumnDef AST node to a sqlir.Column, reporting
// whether it carried an inline PRIMARY KEY constraint (table-level PK
// registration happens after every column in the table is known).
func columnDef(colDef *pg_query.ColumnDef) (sqlir.Column, bool, error) {
	if colDef.Colname == "" {
		return sqlir.Column{}, false, coreerr.New(coreerr.KindUser, "column missing name")
	}

	col := sqlir.Column{Name: colDef.Colname, Arity: sqlir.Nullable}
	nativeName, params := formatTypeName(colDef.TypeName)
	col.NativeType = sqlir.NativeType{Name: nativeName, Params: params}
	if isSerialType(nativeName) {
		col.AutoIncrement = true
	}

	isPK := false
	for _, c := range colDef.Constraints {
		cons, ok := c.Node.(*pg_query.Node_Constraint)
		if !ok {
			continue
		}
		switch cons.Constraint.Contype {
		case pg_query.ConstrType_CONSTR_NOTNULL:
			col.Arity = sqlir.Required
		case pg_query.ConstrType_CONSTR_PRIMARY:
			col.Arity = sqlir.Required
			isPK = true
		case pg_query.ConstrType_CONSTR_DEFAULT:
			col.Default = parseDefault(cons.Constraint.RawExpr)
		case pg_query.ConstrType_CONSTR_IDENTITY:
			col.AutoIncrement = true
		}
	}
	return col, isPK, nil
}

func isSerialType(name string) bool {
	switch name {
	case "serial", "smallserial", "bigserial":
		return true
	default:
		return false
	}
}

func (p *pgParser) tableLevelConstraints(stmt *pg_query.CreateStmt) error {
	if stmt.Relation == nil {
		return nil
	}
	key := tableKey(rangeVarNamespace(stmt.Relation), stmt.Relation.Relname)
	tid, ok := p.tables[key]
	if !ok {
		return nil
	}
	for _, elt := range stmt.TableElts {
		cons, ok := elt.Node.(*pg_query.Node_Constraint)
		if !ok {
			continue
		}
		if err := p.applyTableConstraint(tid, key, cons.Constraint); err != nil {
			return err
		}
	}
	return nil
}

func (p *pgParser) applyTableConstraint(tid sqlir.TableID, key string, c *pg_query.Constraint) error {
	switch c.Contype {
	case pg_query.ConstrType_CONSTR_PRIMARY:
		p.addPrimaryKey(tid, key, stringList(c.Keys))
	case pg_query.ConstrType_CONSTR_UNIQUE:
		p.b.AddIndex(tid, sqlir.Index{Name: c.Conname, Columns: p.indexColumnsFor(key, stringList(c.Keys)), Kind: sqlir.UniqueIndex})
	case pg_query.ConstrType_CONSTR_FOREIGN:
		return p.addForeignKey(tid, key, c)
	}
	return nil
}

func (p *pgParser) addForeignKey(tid sqlir.TableID, key string, c *pg_query.Constraint) error {
	if c.Pktable == nil {
		return coreerr.New(coreerr.KindUser, "foreign key missing referenced table")
	}
	refKey := tableKey(rangeVarNamespace(c.Pktable), c.Pktable.Relname)
	refTID, ok := p.tables[refKey]
	if !ok {
		return coreerr.New(coreerr.KindUser, "foreign key references unknown table "+c.Pktable.Relname)
	}

	var constrained, referenced []sqlir.ColumnID
	for _, n := range stringList(c.FkAttrs) {
		cid, ok := p.columns[key][n]
		if !ok {
			return coreerr.New(coreerr.KindUser, "foreign key references unknown column "+n)
		}
		constrained = append(constrained, cid)
	}
	refCols := p.columns[refKey]
	for _, n := range stringList(c.PkAttrs) {
		cid, ok := refCols[n]
		if !ok {
			return coreerr.New(coreerr.KindUser, "foreign key references unknown column "+n)
		}
		referenced = append(referenced, cid)
	}

	p.b.AddForeignKey(tid, sqlir.ForeignKey{
		Name:                 c.Conname,
		ConstrainedColumnIDs: constrained,
		ReferencedTableID:    refTID,
		ReferencedColumnIDs:  referenced,
		OnDelete:             referentialActionFromCode(c.FkDelAction),
		OnUpdate:             referentialActionFromCode(c.FkUpdAction),
	})
	return nil
}

// referentialActionFromCode maps pg_query's single-character FK action
// codes (see postgres' ri_triggers.c) to sqlir.ReferentialAction.
func referentialActionFromCode(code string) sqlir.ReferentialAction {
	switch code {
	case "c":
		return sqlir.Cascade
	case "n":
		return sqlir.SetNull
	case "d":
		return sqlir.SetDefault
	case "r":
		return sqlir.Restrict
	default: // "a" = no action, "" = unspecified
		return sqlir.NoAction
	}
}

func (p *pgParser) createIndex(stmt *pg_query.IndexStmt) error {
	if stmt.Relation == nil {
		return nil
	}
	key := tableKey(rangeVarNamespace(stmt.Relation), stmt.Relation.Relname)
	tid, ok := p.tables[key]
	if !ok {
		return coreerr.New(coreerr.KindUser, "CREATE INDEX on unknown table "+stmt.Relation.Relname)
	}

	var cols []sqlir.IndexColumn
	for _, ip := range stmt.IndexParams {
		elem, ok := ip.Node.(*pg_query.Node_IndexElem)
		if !ok {
			continue
		}
		cid, ok := p.columns[key][elem.IndexElem.Name]
		if !ok {
			continue
		}
		cols = append(cols, sqlir.IndexColumn{
			ColumnID:   cid,
			Descending: int32(elem.IndexElem.Ordering) == 2, // SORTBY_DESC
		})
	}

	kind := sqlir.NormalIndex
	if stmt.Unique {
		kind = sqlir.UniqueIndex
	}
	p.b.AddIndex(tid, sqlir.Index{
		Name:      stmt.Idxname,
		Columns:   cols,
		Kind:      kind,
		Algorithm: indexAlgorithm(stmt.AccessMethod),
	})
	return nil
}

func indexAlgorithm(method string) sqlir.IndexAlgorithm {
	switch method {
	case "hash":
		return sqlir.Hash
	case "gist":
		return sqlir.Gist
	case "gin":
		return sqlir.Gin
	case "spgist":
		return sqlir.SpGist
	case "brin":
		return sqlir.Brin
	default:
		return sqlir.BTree
	}
}

func (p *pgParser) alterTable(stmt *pg_query.AlterTableStmt) error {
	if stmt.Relation == nil {
		return nil
	}
	key := tableKey(rangeVarNamespace(stmt.Relation), stmt.Relation.Relname)
	tid, ok := p.tables[key]
	if !ok {
		return coreerr.New(coreerr.KindUser, "ALTER TABLE on unknown table "+stmt.Relation.Relname)
	}
	for _, c := range stmt.Cmds {
		cmd, ok := c.Node.(*pg_query.Node_AlterTableCmd)
		if !ok || cmd.AlterTableCmd.Subtype != pg_query.AlterTableType_AT_AddConstraint {
			continue
		}
		cons, ok := cmd.AlterTableCmd.Def.Node.(*pg_query.Node_Constraint)
		if !ok {
			continue
		}
		if err := p.applyTableConstraint(tid, key, cons.Constraint); err != nil {
			return err
		}
	}
	return nil
}

func (p *pgParser) createEnum(stmt *pg_query.CreateEnumStmt) error {
	names := stringList(stmt.TypeName)
	if len(names) == 0 {
		return coreerr.New(coreerr.KindUser, "CREATE TYPE ... AS ENUM missing name")
	}
	ns, name := "public", names[len(names)-1]
	if len(names) > 1 {
		ns = names[len(names)-2]
	}
	p.b.AddEnum(p.namespaceID(ns), name, stringList(stmt.Vals))
	return nil
}

func stringList(nodes []*pg_query.Node) []string {
	var out []string
	for _, n := range nodes {
		if s, ok := n.Node.(*pg_query.Node_String_); ok {
			out = append(out, s.String_.Sval)
		}
	}
	return out
}
