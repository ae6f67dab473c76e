package ddlrender

import (
	"fmt"
	"strings"

	"github.com/lockplane/schemacore/dialect"
	"github.com/lockplane/schemacore/sqlir"
)

func renderColumnDef(col sqlir.Column, ad dialect.Adapter) string {
	parts := []string{ad.QuoteIdentifier(col.Name), ad.FormatNativeType(col.NativeType.Name, col.NativeType.Params)}
	if col.Arity == sqlir.Required {
		parts = append(parts, "NOT NULL")
	}
	if col.AutoIncrement {
		parts = append(parts, "GENERATED BY DEFAULT AS IDENTITY")
	}
	if def := renderDefaultClause(col.Default); def != "" {
		parts = append(parts, def)
	}
	return strings.Join(parts, " ")
}

func renderDefaultClause(d sqlir.Default) string {
	switch d.Kind {
	case sqlir.DefaultNone:
		return ""
	case sqlir.DefaultNow:
		return "DEFAULT CURRENT_TIMESTAMP"
	case sqlir.DefaultUniqueRowid:
		return "" // the dialect's own rowid mechanism handles this, nothing to render
	case sqlir.DefaultSequence:
		return fmt.Sprintf("DEFAULT nextval('%s')", d.SequenceName)
	case sqlir.DefaultDbGenerated:
		if d.HasExpression {
			return "DEFAULT " + d.Expression
		}
		return ""
	case sqlir.DefaultValue:
		return "DEFAULT " + renderLiteral(d)
	default:
		return ""
	}
}

func renderLiteral(d sqlir.Default) string {
	switch d.ValueKind {
	case sqlir.ValueString, sqlir.ValueEnumVariant, sqlir.ValueDateTime:
		return "'" + strings.ReplaceAll(d.ValueText, "'", "''") + "'"
	case sqlir.ValueJSON:
		return "'" + strings.ReplaceAll(d.ValueText, "'", "''") + "'"
	case sqlir.ValueBool:
		return d.ValueText
	case sqlir.ValueList:
		quoted := make([]string, len(d.ValueList))
		for i, v := range d.ValueList {
			quoted[i] = "'" + strings.ReplaceAll(v, "'", "''") + "'"
		}
		return "ARRAY[" + strings.Join(quoted, ", ") + "]"
	default:
		return d.ValueText
	}
}
