package differ

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/lockplane/schemacore/dialect"
	"github.com/lockplane/schemacore/sqlir"
)

// DefaultsEqual implements spec §4.2's "Default-value equality" table.
// Byte-string and enum-variant values compare by their raw text; no
// dialect normalization is applied to them. The teacher's equalDefaults
// (internal/schema/diff.go) only compared
// two *string values for identity; every rule below generalizes that to
// the tagged Default union.
func DefaultsEqual(prev, next sqlir.Default, ad dialect.Adapter) bool {
	if ad.IgnoresJSONDefaults() && (prev.ValueKind == sqlir.ValueJSON || next.ValueKind == sqlir.ValueJSON) {
		return true
	}

	// "DbGenerated(None) on the next side equals any previous default (a
	// conservative opt-out)."
	if next.Kind == sqlir.DefaultDbGenerated && !next.HasExpression {
		return true
	}

	if prev.Kind == sqlir.DefaultSequence {
		// "A previous Sequence(_) equals no explicit next Value/Now;
		// dropping the sequence is emitted as a separate step."
		return next.Kind == sqlir.DefaultSequence && next.SequenceName == prev.SequenceName
	}

	if prev.Kind != next.Kind {
		return false
	}

	switch prev.Kind {
	case sqlir.DefaultNone:
		return true
	case sqlir.DefaultNow, sqlir.DefaultUniqueRowid:
		return true
	case sqlir.DefaultSequence:
		return prev.SequenceName == next.SequenceName
	case sqlir.DefaultDbGenerated:
		// "Two DbGenerated(Some(expr)) compare case-insensitively on the
		// expression text."
		return strings.EqualFold(strings.TrimSpace(prev.Expression), strings.TrimSpace(next.Expression))
	case sqlir.DefaultValue:
		return valuesEqual(prev, next)
	default:
		return false
	}
}

func valuesEqual(prev, next sqlir.Default) bool {
	if prev.ValueKind == sqlir.ValueDateTime || next.ValueKind == sqlir.ValueDateTime {
		// "datetime defaults are always considered equal to each other
		// (the describer's textual form is unreliable)."
		return prev.ValueKind == sqlir.ValueDateTime && next.ValueKind == sqlir.ValueDateTime
	}

	if prev.ValueKind != next.ValueKind {
		// 64-bit/32-bit integer literals compare by numeric value even
		// across the two kinds.
		if isIntKind(prev.ValueKind) && isIntKind(next.ValueKind) {
			return intsEqual(prev.ValueText, next.ValueText)
		}
		return false
	}

	switch prev.ValueKind {
	case sqlir.ValueInt64, sqlir.ValueInt32:
		return intsEqual(prev.ValueText, next.ValueText)
	case sqlir.ValueList:
		if len(prev.ValueList) != len(next.ValueList) {
			return false
		}
		for i := range prev.ValueList {
			if prev.ValueList[i] != next.ValueList[i] {
				return false
			}
		}
		return true
	case sqlir.ValueJSON:
		return jsonEqual(prev.ValueText, next.ValueText)
	default:
		// covers ValueString, ValueFloat, ValueBool, ValueBytes,
		// ValueEnumVariant: plain structural/textual equality.
		return prev.ValueText == next.ValueText
	}
}

func isIntKind(k sqlir.ValueKind) bool {
	return k == sqlir.ValueInt64 || k == sqlir.ValueInt32
}

func intsEqual(a, b string) bool {
	ai, aerr := strconv.ParseInt(a, 10, 64)
	bi, berr := strconv.ParseInt(b, 10, 64)
	if aerr != nil || berr != nil {
		return a == b
	}
	return ai == bi
}

// jsonEqual parses both sides and compares structurally, "falling back to
// equal when either side fails to parse."
func jsonEqual(a, b string) bool {
	var av, bv interface{}
	aerr := json.Unmarshal([]byte(a), &av)
	berr := json.Unmarshal([]byte(b), &bv)
	if aerr != nil || berr != nil {
		return true
	}
	return deepEqualJSON(av, bv)
}

func deepEqualJSON(a, b interface{}) bool {
	switch av := a.(type) {
	case map[string]interface{}:
		bv, ok := b.(map[string]interface{})
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			bvv, ok := bv[k]
			if !ok || !deepEqualJSON(v, bvv) {
				return false
			}
		}
		return true
	case []interface{}:
		bv, ok := b.([]interface{})
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !deepEqualJSON(av[i], bv[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
