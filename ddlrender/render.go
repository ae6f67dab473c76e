// Package ddlrender turns an ordered []differ.MigrationStep into the SQL
// text that, when executed in order, performs the migration (spec §6). One
// comment line precedes each step's statements, naming the step the way
// the teacher's generator.go names its CREATE/ALTER/DROP lines.
package ddlrender

import (
	"fmt"
	"strings"

	"github.com/lockplane/schemacore/dialect"
	"github.com/lockplane/schemacore/differ"
	"github.com/lockplane/schemacore/sqlir"
)

// Render renders the full statement list for a migration, wrapping it in a
// transaction when the adapter supports transactional DDL.
func Render(steps []differ.MigrationStep, ad dialect.Adapter) []string {
	var out []string
	if begin, ok := ad.RenderBeginTransaction(); ok {
		out = append(out, begin)
	}
	for _, step := range steps {
		out = append(out, fmt.Sprintf("-- %s", step.Description()))
		out = append(out, renderStep(step, ad)...)
	}
	if commit, ok := ad.RenderCommitTransaction(); ok {
		out = append(out, commit)
	}
	return out
}

func renderStep(step differ.MigrationStep, ad dialect.Adapter) []string {
	switch step.Kind {
	case differ.StepCreateSchema:
		return []string{fmt.Sprintf("CREATE SCHEMA %s;", ad.QuoteIdentifier(step.NamespaceName))}
	case differ.StepCreateEnum:
		return renderCreateEnum(step, ad)
	case differ.StepAlterEnum:
		return renderAlterEnum(step, ad)
	case differ.StepDropEnum:
		return []string{fmt.Sprintf("DROP TYPE %s;", ad.QuoteIdentifier(step.Enum.Name))}
	case differ.StepCreateTable:
		return renderCreateTable(step, ad)
	case differ.StepDropTable:
		return []string{fmt.Sprintf("DROP TABLE %s;", ad.QuoteIdentifier(step.Table.Name))}
	case differ.StepAlterTable:
		return renderAlterTable(step, ad)
	case differ.StepCreateIndex:
		return []string{renderCreateIndex(step.TableName, step.Index, ad)}
	case differ.StepDropIndex:
		return []string{fmt.Sprintf("DROP INDEX %s;", ad.QuoteIdentifier(step.Index.Name))}
	case differ.StepRenameIndex:
		return []string{renderRenameIndex(step, ad)}
	case differ.StepRedefineIndex:
		return []string{
			fmt.Sprintf("DROP INDEX %s;", ad.QuoteIdentifier(step.OldIndex.Name)),
			renderCreateIndex(step.TableName, step.Index, ad),
		}
	case differ.StepAddForeignKey:
		return []string{renderAddForeignKey(step.TableName, step.ForeignKey, ad)}
	case differ.StepDropForeignKey:
		return []string{renderDropForeignKey(step.TableName, step.ForeignKey, ad)}
	case differ.StepRenameForeignKey:
		return []string{
			renderDropForeignKey(step.TableName, step.OldForeignKey, ad),
			renderAddForeignKey(step.TableName, step.ForeignKey, ad),
		}
	case differ.StepAlterPrimaryKey:
		return renderAlterPrimaryKey(step, ad)
	case differ.StepCreateSequence:
		return []string{fmt.Sprintf("CREATE SEQUENCE %s;", ad.QuoteIdentifier(step.Sequence.Name))}
	case differ.StepAlterSequence:
		return []string{fmt.Sprintf("ALTER SEQUENCE %s;", ad.QuoteIdentifier(step.Sequence.Name))}
	case differ.StepDropSequence:
		return []string{fmt.Sprintf("DROP SEQUENCE %s;", ad.QuoteIdentifier(step.Sequence.Name))}
	case differ.StepRedefineTables:
		return renderRedefineTables(step, ad)
	case differ.StepCreateView:
		return []string{fmt.Sprintf("CREATE VIEW %s AS\n%s;", ad.QuoteIdentifier(step.View.Name), step.View.Definition)}
	case differ.StepAlterView:
		return []string{
			fmt.Sprintf("DROP VIEW %s;", ad.QuoteIdentifier(step.View.Name)),
			fmt.Sprintf("CREATE VIEW %s AS\n%s;", ad.QuoteIdentifier(step.View.Name), step.View.Definition),
		}
	case differ.StepDropView:
		return []string{fmt.Sprintf("DROP VIEW %s;", ad.QuoteIdentifier(step.View.Name))}
	case differ.StepCreateUserDefinedType:
		return []string{fmt.Sprintf("CREATE TYPE %s AS %s;", ad.QuoteIdentifier(step.UDT.Name), step.UDT.Definition)}
	case differ.StepAlterUserDefinedType:
		return []string{
			fmt.Sprintf("DROP TYPE %s;", ad.QuoteIdentifier(step.UDT.Name)),
			fmt.Sprintf("CREATE TYPE %s AS %s;", ad.QuoteIdentifier(step.UDT.Name), step.UDT.Definition),
		}
	case differ.StepDropUserDefinedType:
		return []string{fmt.Sprintf("DROP TYPE %s;", ad.QuoteIdentifier(step.UDT.Name))}
	case differ.StepCreateExtension:
		return []string{fmt.Sprintf("CREATE EXTENSION IF NOT EXISTS %s;", ad.QuoteIdentifier(step.Extension.Name))}
	case differ.StepAlterExtension:
		return []string{fmt.Sprintf("ALTER EXTENSION %s UPDATE;", ad.QuoteIdentifier(step.Extension.Name))}
	case differ.StepDropExtension:
		return []string{fmt.Sprintf("DROP EXTENSION %s;", ad.QuoteIdentifier(step.Extension.Name))}
	default:
		return nil
	}
}

func renderCreateTable(step differ.MigrationStep, ad dialect.Adapter) []string {
	var cols []string
	for _, col := range step.TableColumns {
		cols = append(cols, renderColumnDef(col, ad))
	}

	var otherIndexes []sqlir.Index
	for _, idx := range step.TableIndexes {
		if idx.Kind != sqlir.PrimaryKeyIndex {
			otherIndexes = append(otherIndexes, idx)
			continue
		}
		var pkCols []string
		for _, c := range idx.Columns {
			pkCols = append(pkCols, ad.QuoteIdentifier(c.ColumnName))
		}
		cols = append(cols, fmt.Sprintf("CONSTRAINT %s PRIMARY KEY (%s)", ad.QuoteIdentifier(idx.Name), strings.Join(pkCols, ", ")))
	}

	stmt := fmt.Sprintf("CREATE TABLE %s (\n  %s\n);", ad.QuoteIdentifier(step.Table.Name), strings.Join(cols, ",\n  "))
	out := []string{stmt}
	for _, idx := range otherIndexes {
		out = append(out, renderCreateIndex(step.Table.Name, idx, ad))
	}
	return out
}
