package sqlparse

import (
	"strconv"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/lockplane/schemacore/sqlir"
)

// formatTypeName converts a TypeName AST node into a native type name plus
// its numeric modifiers (e.g. VARCHAR(255) -> "varchar", [255]), the way
// the teacher's formatTypeName collapses type + typmods into one display
// string, except kept split so sqlir.NativeType can carry Params
// separately from Name.
func formatTypeName(typeName *pg_query.TypeName) (string, []int) {
	if typeName == nil || len(typeName.Names) == 0 {
		return "", nil
	}

	var parts []string
	for _, n := range typeName.Names {
		if s, ok := n.Node.(*pg_query.Node_String_); ok {
			parts = append(parts, s.String_.Sval)
		}
	}

	name := strings.Join(parts, ".")
	if len(parts) > 1 && parts[0] == "pg_catalog" {
		name = parts[len(parts)-1]
	}
	name = normalizePostgreSQLType(name)

	var params []int
	for _, mod := range typeName.Typmods {
		aconst, ok := mod.Node.(*pg_query.Node_AConst)
		if !ok {
			continue
		}
		if ival := aconst.AConst.GetIval(); ival != nil {
			params = append(params, int(ival.Ival))
		}
	}
	if len(typeName.ArrayBounds) > 0 {
		name += "[]"
	}
	return name, params
}

var typeMap = map[string]string{
	"int2":        "smallint",
	"int4":        "integer",
	"int8":        "bigint",
	"serial2":     "smallserial",
	"serial4":     "serial",
	"serial8":     "bigserial",
	"bool":        "boolean",
	"bpchar":      "char",
	"float4":      "real",
	"float8":      "double precision",
	"timestamptz": "timestamp with time zone",
	"timetz":      "time with time zone",
}

// normalizePostgreSQLType maps pg_query's internal type spellings (it
// always normalizes to PostgreSQL's catalog names, e.g. "int4" for
// "integer") back to the names classifyScalarType/ddlrender expect.
func normalizePostgreSQLType(pgType string) string {
	if normalized, ok := typeMap[strings.ToLower(pgType)]; ok {
		return normalized
	}
	return pgType
}

// parseDefault converts a column DEFAULT expression into a sqlir.Default,
// recognizing the handful of expression shapes this module's renderer
// itself emits (sequence nextval, now()/CURRENT_TIMESTAMP) and falling
// back to a raw db-generated expression otherwise.
func parseDefault(expr *pg_query.Node) sqlir.Default {
	text := formatExpr(expr)
	if text == "" {
		return sqlir.Default{Kind: sqlir.DefaultNone}
	}
	lower := strings.ToLower(text)
	switch {
	case strings.HasPrefix(lower, "nextval("):
		return sqlir.Default{Kind: sqlir.DefaultSequence, SequenceName: extractSequenceName(text)}
	case lower == "now()" || lower == "current_timestamp":
		return sqlir.Default{Kind: sqlir.DefaultNow}
	default:
		return sqlir.Default{Kind: sqlir.DefaultDbGenerated, Expression: text, HasExpression: true}
	}
}

// extractSequenceName pulls the quoted literal out of
// nextval('"schema"."seq_name"'::regclass).
func extractSequenceName(expr string) string {
	first := strings.IndexByte(expr, '\'')
	if first < 0 {
		return ""
	}
	last := strings.IndexByte(expr[first+1:], '\'')
	if last < 0 {
		return ""
	}
	return strings.Trim(expr[first+1:first+1+last], `"`)
}

// formatExpr converts an expression AST node to its SQL text, ported from
// the teacher's formatExpr with the same coverage (constants, function
// calls, type casts, SQL value functions).
func formatExpr(node *pg_query.Node) string {
	if node == nil {
		return ""
	}

	switch expr := node.Node.(type) {
	case *pg_query.Node_AConst:
		if ival := expr.AConst.GetIval(); ival != nil {
			return strconv.FormatInt(ival.Ival, 10)
		}
		if fval := expr.AConst.GetFval(); fval != nil {
			return fval.Fval
		}
		if sval := expr.AConst.GetSval(); sval != nil {
			return "'" + sval.Sval + "'"
		}
		if bsval := expr.AConst.GetBsval(); bsval != nil {
			return bsval.Bsval
		}

	case *pg_query.Node_FuncCall:
		if len(expr.FuncCall.Funcname) == 0 {
			break
		}
		nameNode, ok := expr.FuncCall.Funcname[0].Node.(*pg_query.Node_String_)
		if !ok {
			break
		}
		var args []string
		for _, a := range expr.FuncCall.Args {
			args = append(args, formatExpr(a))
		}
		if len(args) == 0 {
			return nameNode.String_.Sval + "()"
		}
		return nameNode.String_.Sval + "(" + strings.Join(args, ", ") + ")"

	case *pg_query.Node_TypeCast:
		if expr.TypeCast.Arg != nil {
			return formatExpr(expr.TypeCast.Arg)
		}

	case *pg_query.Node_SqlvalueFunction:
		// SVFOp codes per postgres' primnodes.h (1-indexed); matched by
		// number rather than by generated constant name, the way the
		// teacher's formatExpr does.
		switch expr.SqlvalueFunction.Op {
		case 1:
			return "CURRENT_DATE"
		case 2, 3:
			return "CURRENT_TIME"
		case 4, 5:
			return "CURRENT_TIMESTAMP"
		}
	}

	return "UNDEFINED_EXPRESSION"
}
