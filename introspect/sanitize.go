package introspect

import (
	"strings"
	"unicode"

	"github.com/lockplane/schemacore/dml"
)

// reservedWords are modeling-language keywords that can't be used as a
// model or field name without a suffix (step 2 of Reconcile).
var reservedWords = map[string]bool{
	"model": true, "enum": true, "type": true, "datasource": true,
	"generator": true, "view": true, "true": true, "false": true, "null": true,
}

// sanitize turns a raw SQL identifier into a usable modeling-language
// identifier (step 1 of Reconcile): replace every character that is not a
// letter, digit or underscore with "_", and prefix with "_" if the result
// would not start with a letter. Non-ASCII letters and digits are kept.
func sanitize(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	out := b.String()
	if out == "" {
		return "_"
	}
	if !unicode.IsLetter(rune(out[0])) {
		out = "_" + out
	}
	return out
}

// resolveReservedWord appends an underscore to a name that collides with a
// modeling-language keyword (step 2 of Reconcile), e.g. "type" -> "type_".
func resolveReservedWord(name string) string {
	if reservedWords[strings.ToLower(name)] {
		return name + "_"
	}
	return name
}

// classifyScalarType maps a dialect-reported native column type to the
// portable dml.ScalarType vocabulary. Matching is prefix-based since
// native types often carry parameters (varchar(255), numeric(10,2)).
func classifyScalarType(native string) (dml.ScalarType, bool) {
	t := strings.ToLower(strings.TrimSpace(native))
	switch {
	case strings.HasPrefix(t, "bigint") || strings.HasPrefix(t, "int8") || strings.HasPrefix(t, "bigserial"):
		return dml.TypeBigInt, true
	case strings.HasPrefix(t, "int") || strings.HasPrefix(t, "serial") || strings.HasPrefix(t, "smallint") || strings.HasPrefix(t, "tinyint") || strings.HasPrefix(t, "mediumint"):
		return dml.TypeInt, true
	case strings.HasPrefix(t, "numeric") || strings.HasPrefix(t, "decimal"):
		return dml.TypeDecimal, true
	case strings.HasPrefix(t, "real") || strings.HasPrefix(t, "double") || strings.HasPrefix(t, "float"):
		return dml.TypeFloat, true
	case strings.HasPrefix(t, "bool"):
		return dml.TypeBoolean, true
	case strings.HasPrefix(t, "timestamp") || strings.HasPrefix(t, "date") || strings.HasPrefix(t, "time"):
		return dml.TypeDateTime, true
	case strings.HasPrefix(t, "bytea") || strings.HasPrefix(t, "blob") || strings.HasPrefix(t, "varbinary") || strings.HasPrefix(t, "binary"):
		return dml.TypeBytes, true
	case strings.HasPrefix(t, "json"):
		return dml.TypeJSON, true
	case strings.HasPrefix(t, "char") || strings.HasPrefix(t, "varchar") || strings.HasPrefix(t, "text") || strings.HasPrefix(t, "uuid") || strings.HasPrefix(t, "enum"):
		return dml.TypeString, true
	default:
		return "", false
	}
}
