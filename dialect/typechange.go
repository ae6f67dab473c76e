package dialect

import (
	"strings"

	"github.com/lockplane/schemacore/sqlir"
)

// TypeChangeClass is the total function result of spec §4.1's
// column_type_change: governs whether an ALTER COLUMN TYPE is emitted,
// whether a warning is attached, or whether the column must be dropped and
// recreated.
type TypeChangeClass int

const (
	NoTypeChange TypeChangeClass = iota
	SafeCast
	RiskyCast
	NotCastable
)

// integerFamily, floatFamily and textFamily group normalized type names by
// family; integerFamily is ordered from narrowest to widest, the other two
// are matched by membership only. Grounded on the teacher's
// normalizePostgreSQLType table (internal/schema/parser.go), generalized
// to a per-dialect family/width pair.
var integerFamily = []string{"smallint", "integer", "bigint"}
var floatFamily = []string{"real", "double precision"}
var textFamily = []string{"varchar", "text", "char"}

func familyIndex(family []string, name string) int {
	for i, f := range family {
		if f == name {
			return i
		}
	}
	return -1
}

// ColumnTypeChange classifies a change from prev to next native type for
// this dialect. It is a total function over ordered type pairs.
func (a Adapter) ColumnTypeChange(prev, next sqlir.NativeType) TypeChangeClass {
	p, n := strings.ToLower(prev.Name), strings.ToLower(next.Name)
	if p == n && sameParams(prev.Params, next.Params) {
		return NoTypeChange
	}

	if pi := familyIndex(integerFamily, p); pi >= 0 {
		if ni := familyIndex(integerFamily, n); ni >= 0 {
			if ni >= pi {
				return SafeCast
			}
			return RiskyCast // narrowing: may overflow existing values
		}
	}
	if pi := familyIndex(floatFamily, p); pi >= 0 {
		if ni := familyIndex(floatFamily, n); ni >= 0 {
			return SafeCast
		}
	}
	if familyIndex(textFamily, p) >= 0 && familyIndex(textFamily, n) >= 0 {
		// widening a length-bounded text type, or dropping the bound
		// entirely, is always safe; narrowing the length is risky.
		if p == "text" || n == "text" {
			if n == "text" {
				return SafeCast
			}
			return RiskyCast
		}
		if len(prev.Params) == 1 && len(next.Params) == 1 {
			if next.Params[0] >= prev.Params[0] {
				return SafeCast
			}
			return RiskyCast
		}
		return RiskyCast
	}

	// Cross-family: SQLite's dynamic typing tolerates any textual
	// re-interpretation, so treat it as risky rather than impossible.
	if a.Dialect == SQLite {
		return RiskyCast
	}

	// Integer <-> text, bool <-> integer, etc: cannot be cast without an
	// explicit application-level migration.
	return NotCastable
}

func sameParams(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ShouldRecreateTableForChange reports whether the given type-change class
// forces the whole-table RedefineTables protocol (spec §4.2, §4.3). Only
// SQLite cannot alter columns in place at all.
func (a Adapter) ShouldRecreateTableForChange(class TypeChangeClass) bool {
	if a.Dialect != SQLite {
		return false
	}
	return class != NoTypeChange
}

// NativeTypeIsDefaultForScalar reports whether a native type annotation
// would be redundant in the emitted DML — i.e. the introspection
// reconciler need not record an explicit @db.* mapping for it.
func (a Adapter) NativeTypeIsDefaultForScalar(nt sqlir.NativeType, scalarType string) bool {
	name := strings.ToLower(nt.Name)
	switch scalarType {
	case "Int":
		return name == "integer" || name == "int4"
	case "BigInt":
		return name == "bigint" || name == "int8"
	case "Float":
		return name == "double precision" || name == "float8"
	case "Boolean":
		return name == "boolean" || name == "bool"
	case "String":
		return name == "text"
	case "DateTime":
		return name == "timestamp" || name == "timestamp with time zone"
	case "Decimal":
		return name == "decimal" || name == "numeric"
	case "Bytes":
		return name == "bytea" || name == "blob"
	case "Json":
		return name == "json" || name == "jsonb"
	default:
		return false
	}
}
