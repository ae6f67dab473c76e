package orchestrator

import (
	"github.com/lockplane/schemacore/coreerr"
	"github.com/lockplane/schemacore/dialect"
	"github.com/lockplane/schemacore/host"
	"github.com/lockplane/schemacore/sqlir"
)

// describedToSchema rebuilds a sqlir.Schema from a host.DescribedSchema,
// the inverse of what the differ needs when diffing against the live
// database (TargetDatabase). It deliberately does not go through
// introspect.Reconcile: that package's job is producing a dml.Document
// for humans to read, with name sanitizing and relation synthesis that
// would lose exact fidelity to what the database actually has. Diffing
// needs the literal described shape back, unchanged.
func describedToSchema(described host.DescribedSchema, d dialect.Dialect) (*sqlir.Schema, error) {
	b := sqlir.NewBuilder(d.String())

	namespaces := map[string]sqlir.NamespaceID{}
	namespaceID := func(ns string) sqlir.NamespaceID {
		if id, ok := namespaces[ns]; ok {
			return id
		}
		id := b.Namespace(ns)
		namespaces[ns] = id
		return id
	}

	tableIDs := map[string]sqlir.TableID{}
	columnIDs := map[string]map[string]sqlir.ColumnID{}

	for _, t := range described.Tables {
		tid := b.AddTable(namespaceID(t.Namespace), t.Name)
		tableIDs[tableKey(t.Namespace, t.Name)] = tid
		columnIDs[tableKey(t.Namespace, t.Name)] = map[string]sqlir.ColumnID{}

		for _, c := range t.Columns {
			arity := sqlir.Required
			if c.Nullable {
				arity = sqlir.Nullable
			}
			def := sqlir.Default{Kind: sqlir.DefaultNone}
			if c.DefaultText != nil {
				def = sqlir.Default{Kind: sqlir.DefaultDbGenerated, Expression: *c.DefaultText, HasExpression: true}
			}
			cid := b.AddColumn(tid, sqlir.Column{
				Name:          c.Name,
				NativeType:    sqlir.NativeType{Name: c.NativeType, Params: c.TypeParams},
				Arity:         arity,
				Default:       def,
				AutoIncrement: c.IsAutoIncrement,
			})
			columnIDs[tableKey(t.Namespace, t.Name)][c.Name] = cid
		}
	}

	for _, t := range described.Tables {
		tid := tableIDs[tableKey(t.Namespace, t.Name)]
		cols := columnIDs[tableKey(t.Namespace, t.Name)]

		for _, idx := range t.Indexes {
			kind := sqlir.NormalIndex
			switch {
			case idx.IsPrimary:
				kind = sqlir.PrimaryKeyIndex
			case idx.Unique:
				kind = sqlir.UniqueIndex
			}
			var idxCols []sqlir.IndexColumn
			for i, colName := range idx.ColumnName {
				cid, ok := cols[colName]
				if !ok {
					return nil, coreerr.New(coreerr.KindConnector, "described index "+idx.Name+" references unknown column "+colName)
				}
				descending := false
				if i < len(idx.Descending) {
					descending = idx.Descending[i]
				}
				idxCols = append(idxCols, sqlir.IndexColumn{ColumnID: cid, Descending: descending})
			}
			b.AddIndex(tid, sqlir.Index{Name: idx.Name, Columns: idxCols, Kind: kind})
		}

		for _, fk := range t.ForeignKeys {
			var constrained, referenced []sqlir.ColumnID
			for _, colName := range fk.ConstrainedColumns {
				cid, ok := cols[colName]
				if !ok {
					return nil, coreerr.New(coreerr.KindConnector, "described foreign key "+fk.Name+" references unknown column "+colName)
				}
				constrained = append(constrained, cid)
			}
			refTableID, ok := tableIDs[tableKey(t.Namespace, fk.ReferencedTable)]
			if !ok {
				return nil, coreerr.New(coreerr.KindConnector, "described foreign key "+fk.Name+" references unknown table "+fk.ReferencedTable)
			}
			refCols := columnIDs[tableKey(t.Namespace, fk.ReferencedTable)]
			for _, colName := range fk.ReferencedColumns {
				cid, ok := refCols[colName]
				if !ok {
					return nil, coreerr.New(coreerr.KindConnector, "described foreign key "+fk.Name+" references unknown column "+colName)
				}
				referenced = append(referenced, cid)
			}
			b.AddForeignKey(tid, sqlir.ForeignKey{
				Name:                 fk.Name,
				ConstrainedColumnIDs: constrained,
				ReferencedTableID:    refTableID,
				ReferencedColumnIDs:  referenced,
				OnDelete:             referentialAction(fk.OnDelete),
				OnUpdate:             referentialAction(fk.OnUpdate),
			})
		}
	}

	for _, e := range described.Enums {
		b.AddEnum(namespaceID(e.Namespace), e.Name, e.Variants)
	}

	return b.Build(), nil
}

func tableKey(namespace, name string) string { return namespace + "." + name }

func referentialAction(s string) sqlir.ReferentialAction {
	switch s {
	case "CASCADE":
		return sqlir.Cascade
	case "SET NULL":
		return sqlir.SetNull
	case "SET DEFAULT":
		return sqlir.SetDefault
	case "RESTRICT":
		return sqlir.Restrict
	default:
		return sqlir.NoAction
	}
}
