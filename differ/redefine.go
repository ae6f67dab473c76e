package differ

import "github.com/lockplane/schemacore/sqlir"

// buildTableRedefinition computes the column-copy projection and index set
// for a table-redefinition (spec §4.3): dialects that cannot ALTER COLUMN
// in place instead create a new table, copy rows across, drop the old
// table, and rename the new one into place. ddlrender turns this into the
// eight-statement SQL sequence; this package only decides WHAT to copy.
func buildTableRedefinition(prevSchema, nextSchema *sqlir.Schema, prevTable, nextTable sqlir.TableWalker) TableRedefinition {
	prevByName := map[string]sqlir.ColumnWalker{}
	for _, c := range prevTable.Columns() {
		prevByName[c.Name()] = c
	}

	redef := TableRedefinition{
		TableName:  nextTable.Name(),
		PrevTable:  prevTable.Get(),
		NextTable:  nextTable.Get(),
		PrevSchema: prevSchema,
		NextSchema: nextSchema,
	}

	for _, nc := range nextTable.Columns() {
		col := nc.Get()
		pc, existed := prevByName[nc.Name()]
		if !existed {
			// a freshly added column: only carried into the projection
			// when the old table had no rows to satisfy a NOT NULL
			// constraint without a default, which the caller guarantees
			// by having required the rewrite path in the first place.
			redef.CopyColumns = append(redef.CopyColumns, ColumnCopy{
				Name:               col.Name,
				NewlyRequired:      col.Arity == sqlir.Required,
				DefaultForCoalesce: coalesceLiteral(col),
			})
			continue
		}

		cc := ColumnCopy{
			Name:     col.Name,
			PrevName: pc.Name(),
		}
		prevCol := pc.Get()
		if prevCol.Arity != sqlir.Required && col.Arity == sqlir.Required {
			cc.NewlyRequired = true
			cc.DefaultForCoalesce = coalesceLiteral(col)
		}
		redef.CopyColumns = append(redef.CopyColumns, cc)
	}

	for _, idx := range nextTable.Indexes() {
		redef.RecreateIndexes = append(redef.RecreateIndexes, idx.Get())
	}

	return redef
}

// coalesceLiteral returns the literal ddlrender should wrap an old,
// possibly-NULL value in via coalesce(old, <literal>) when a column
// becomes required during a redefinition. For a column with no usable
// default it returns an empty string; ddlrender then emits
// "coalesce(old, NULL)" with a marker comment, and the destructive checker
// (checkRedefineTables) classifies that column as Unexecutable.
func coalesceLiteral(col sqlir.Column) string {
	if col.Default.Kind != sqlir.DefaultValue {
		return ""
	}
	return col.Default.ValueText
}
