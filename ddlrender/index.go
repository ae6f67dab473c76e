package ddlrender

import (
	"fmt"
	"strings"

	"github.com/lockplane/schemacore/dialect"
	"github.com/lockplane/schemacore/differ"
	"github.com/lockplane/schemacore/sqlir"
)

func renderCreateIndex(tableName string, idx sqlir.Index, ad dialect.Adapter) string {
	unique := ""
	if idx.Kind == sqlir.UniqueIndex || idx.Kind == sqlir.PrimaryKeyIndex {
		unique = "UNIQUE "
	}

	var cols []string
	for _, c := range idx.Columns {
		col := ad.QuoteIdentifier(c.ColumnName)
		if c.LengthPrefix != nil {
			col = fmt.Sprintf("%s(%d)", col, *c.LengthPrefix)
		}
		if c.Descending {
			col += " DESC"
		}
		cols = append(cols, col)
	}

	stmt := fmt.Sprintf("CREATE %sINDEX %s ON %s (%s)", unique, ad.QuoteIdentifier(idx.Name), ad.QuoteIdentifier(tableName), strings.Join(cols, ", "))
	if idx.WherePredicate != "" {
		stmt += " WHERE " + idx.WherePredicate
	}
	return stmt + ";"
}

func renderRenameIndex(step differ.MigrationStep, ad dialect.Adapter) string {
	return fmt.Sprintf("ALTER INDEX %s RENAME TO %s;", ad.QuoteIdentifier(step.OldIndex.Name), ad.QuoteIdentifier(step.Index.Name))
}

func renderAddForeignKey(tableName string, fk sqlir.ForeignKey, ad dialect.Adapter) string {
	cols := quoteAll(fk.ConstrainedColumnNames, ad)
	refCols := quoteAll(fk.ReferencedColumnNames, ad)
	return fmt.Sprintf(
		"ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s) ON DELETE %s ON UPDATE %s;",
		ad.QuoteIdentifier(tableName), ad.QuoteIdentifier(fk.Name), strings.Join(cols, ", "),
		ad.QuoteIdentifier(tableName), strings.Join(refCols, ", "),
		renderReferentialAction(fk.OnDelete), renderReferentialAction(fk.OnUpdate),
	)
}

func renderDropForeignKey(tableName string, fk sqlir.ForeignKey, ad dialect.Adapter) string {
	return fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s;", ad.QuoteIdentifier(tableName), ad.QuoteIdentifier(fk.Name))
}

func quoteAll(names []string, ad dialect.Adapter) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = ad.QuoteIdentifier(n)
	}
	return out
}

func renderReferentialAction(a sqlir.ReferentialAction) string {
	switch a {
	case sqlir.Cascade:
		return "CASCADE"
	case sqlir.SetNull:
		return "SET NULL"
	case sqlir.SetDefault:
		return "SET DEFAULT"
	case sqlir.Restrict:
		return "RESTRICT"
	default:
		return "NO ACTION"
	}
}

func renderAlterPrimaryKey(step differ.MigrationStep, ad dialect.Adapter) []string {
	var out []string
	if step.PrevPrimaryKey.Name != "" {
		out = append(out, fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s;", ad.QuoteIdentifier(step.TableName), ad.QuoteIdentifier(step.PrevPrimaryKey.Name)))
	}
	if step.NextPrimaryKey.Name != "" {
		cols := make([]string, len(step.NextPrimaryKey.Columns))
		for i, c := range step.NextPrimaryKey.Columns {
			cols[i] = ad.QuoteIdentifier(c.ColumnName)
		}
		out = append(out, fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s PRIMARY KEY (%s);", ad.QuoteIdentifier(step.TableName), ad.QuoteIdentifier(step.NextPrimaryKey.Name), strings.Join(cols, ", ")))
	}
	return out
}
