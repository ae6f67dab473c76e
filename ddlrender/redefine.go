package ddlrender

import (
	"fmt"
	"strings"

	"github.com/lockplane/schemacore/dialect"
	"github.com/lockplane/schemacore/differ"
	"github.com/lockplane/schemacore/sqlir"
)

// renderRedefineTables follows the eight-statement table redefinition
// protocol of spec §4.3 for each table in the step, all inside the
// PRAGMA foreign_keys guard that must wrap the whole batch:
//
//  1. PRAGMA foreign_keys=OFF
//  2. CREATE TABLE new_<name> with the next schema's column definitions
//  3. INSERT INTO new_<name> SELECT ... FROM <name> (the copy projection)
//  4. DROP INDEX for each of the old table's indexes
//  5. DROP TABLE <name>
//  6. ALTER TABLE new_<name> RENAME TO <name>
//  7. CREATE INDEX for each of the new table's indexes
//  8. PRAGMA foreign_keys=ON (and a foreign_key_check)
func renderRedefineTables(step differ.MigrationStep, ad dialect.Adapter) []string {
	out := []string{"PRAGMA foreign_keys=OFF;"}

	for _, r := range step.Redefines {
		tempName := "new_" + r.TableName
		tempTable := r.NextTable
		tempTable.Name = tempName
		out = append(out, renderCreateTable(differ.MigrationStep{
			Table:        tempTable,
			TableColumns: nextTableColumns(r),
		}, ad)...)
		out = append(out, renderRedefineInsert(tempName, r, ad))

		for _, idx := range oldIndexesOf(r) {
			out = append(out, fmt.Sprintf("DROP INDEX %s;", ad.QuoteIdentifier(idx)))
		}
		out = append(out, fmt.Sprintf("DROP TABLE %s;", ad.QuoteIdentifier(r.TableName)))
		out = append(out, fmt.Sprintf("ALTER TABLE %s RENAME TO %s;", ad.QuoteIdentifier(tempName), ad.QuoteIdentifier(r.TableName)))
		for _, idx := range r.RecreateIndexes {
			out = append(out, renderCreateIndex(r.TableName, idx, ad))
		}
	}

	out = append(out, "PRAGMA foreign_keys=ON;", "PRAGMA foreign_key_check;")
	return out
}

func nextTableColumns(r differ.TableRedefinition) []sqlir.Column {
	var cols []sqlir.Column
	for _, cid := range r.NextTable.ColumnIDs {
		cols = append(cols, r.NextSchema.Columns[cid])
	}
	return cols
}

func oldIndexesOf(r differ.TableRedefinition) []string {
	var names []string
	for _, iid := range r.PrevTable.IndexIDs {
		names = append(names, r.PrevSchema.Indexes[iid].Name)
	}
	return names
}

func renderRedefineInsert(tempName string, r differ.TableRedefinition, ad dialect.Adapter) string {
	var destCols, srcExprs []string
	for _, cc := range r.CopyColumns {
		destCols = append(destCols, ad.QuoteIdentifier(cc.Name))
		srcName := cc.PrevName
		if srcName == "" {
			srcName = cc.Name
		}
		expr := ad.QuoteIdentifier(srcName)
		if cc.NewlyRequired {
			if cc.DefaultForCoalesce == "" {
				expr = fmt.Sprintf("coalesce(%s, NULL) /* no usable default: destructive check must block this migration */", expr)
			} else {
				expr = fmt.Sprintf("coalesce(%s, %s)", expr, cc.DefaultForCoalesce)
			}
		}
		srcExprs = append(srcExprs, expr)
	}
	return fmt.Sprintf(
		"INSERT INTO %s (%s) SELECT %s FROM %s;",
		ad.QuoteIdentifier(tempName), strings.Join(destCols, ", "), strings.Join(srcExprs, ", "), ad.QuoteIdentifier(r.TableName),
	)
}
