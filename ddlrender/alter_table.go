package ddlrender

import (
	"fmt"
	"strings"

	"github.com/lockplane/schemacore/dialect"
	"github.com/lockplane/schemacore/differ"
	"github.com/lockplane/schemacore/sqlir"
)

func renderAlterTable(step differ.MigrationStep, ad dialect.Adapter) []string {
	var out []string
	table := ad.QuoteIdentifier(step.TableName)

	for _, change := range step.Changes {
		switch change.Kind {
		case differ.TCAddColumn:
			out = append(out, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s;", table, renderColumnDef(change.Column, ad)))
		case differ.TCDropColumn:
			out = append(out, fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s;", table, ad.QuoteIdentifier(change.Column.Name)))
		case differ.TCAlterColumn:
			out = append(out, renderAlterColumn(step.TableName, change, ad)...)
		case differ.TCDropPrimaryKey:
			out = append(out, fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s;", table, ad.QuoteIdentifier(change.PrevPrimaryKey.Name)))
		case differ.TCAddPrimaryKey:
			out = append(out, renderAddPrimaryKeyConstraint(step.TableName, change, ad))
		case differ.TCRenamePrimaryKey:
			out = append(out, fmt.Sprintf("ALTER TABLE %s RENAME CONSTRAINT %s TO %s;", table, ad.QuoteIdentifier(change.PrevPrimaryKey.Name), ad.QuoteIdentifier(change.NextPrimaryKey.Name)))
		}
	}

	return out
}

func renderAddPrimaryKeyConstraint(tableName string, change differ.TableChange, ad dialect.Adapter) string {
	cols := make([]string, len(change.NextPrimaryKey.Columns))
	for i, c := range change.NextPrimaryKey.Columns {
		cols[i] = ad.QuoteIdentifier(c.ColumnName)
	}
	return fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s PRIMARY KEY (%s);", ad.QuoteIdentifier(tableName), ad.QuoteIdentifier(change.NextPrimaryKey.Name), strings.Join(cols, ", "))
}

// renderAlterColumn renders one or more statements per changed aspect,
// since most dialects modeled here require a separate ALTER COLUMN clause
// per kind of change rather than a single combined clause.
func renderAlterColumn(tableName string, change differ.TableChange, ad dialect.Adapter) []string {
	var out []string
	table := ad.QuoteIdentifier(tableName)
	col := ad.QuoteIdentifier(change.NextColumn.Name)

	if change.Changes&differ.ChangeTypeChanged != 0 {
		if change.TypeChange.Class == dialect.NotCastable {
			// No cast path exists between the old and new native types, so
			// the column is dropped and re-added instead of altered in
			// place; the destructive checker (destructive.notCastableFinding)
			// classifies the data-loss risk this carries.
			out = append(out, fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s;", table, col))
			out = append(out, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s;", table, renderColumnDef(change.NextColumn, ad)))
			// The ADD COLUMN above already carries the column's final
			// arity/default/autoincrement state, so none of the other
			// per-aspect clauses below apply to this change.
			return out
		} else {
			usingClause := ""
			if change.TypeChange.Class == dialect.RiskyCast {
				usingClause = fmt.Sprintf(" USING %s::%s", col, ad.FormatNativeType(change.NextColumn.NativeType.Name, change.NextColumn.NativeType.Params))
			}
			out = append(out, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s%s;", table, col, ad.FormatNativeType(change.NextColumn.NativeType.Name, change.NextColumn.NativeType.Params), usingClause))
		}
	}

	if change.Changes&differ.ChangeArity != 0 {
		if change.NextColumn.Arity == sqlir.Required {
			out = append(out, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET NOT NULL;", table, col))
		} else {
			out = append(out, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP NOT NULL;", table, col))
		}
	}

	if change.Changes&differ.ChangeDefault != 0 {
		if def := renderDefaultClause(change.NextColumn.Default); def != "" {
			out = append(out, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET %s;", table, col, def))
		} else {
			out = append(out, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP DEFAULT;", table, col))
		}
	}

	if change.Changes&differ.ChangeAutoincrement != 0 {
		if change.NextColumn.AutoIncrement {
			out = append(out, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s ADD GENERATED BY DEFAULT AS IDENTITY;", table, col))
		} else {
			out = append(out, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP IDENTITY IF EXISTS;", table, col))
		}
	}

	return out
}
