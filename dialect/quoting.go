package dialect

import (
	"fmt"
	"strings"
)

// QuoteIdentifier escapes a single identifier per dialect convention.
func (a Adapter) QuoteIdentifier(name string) string {
	switch a.Dialect {
	case MySQL, Vitess:
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	default: // Postgres, CockroachDB, SQLite all use double quotes
		return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
	}
}

// FormatNativeType composes dialect type syntax from a name plus numeric
// parameters, e.g. Decimal(5,3), VarChar(255), Bit(n).
func (a Adapter) FormatNativeType(name string, params []int) string {
	if len(params) == 0 {
		return name
	}
	strs := make([]string, len(params))
	for i, p := range params {
		strs[i] = fmt.Sprintf("%d", p)
	}
	return fmt.Sprintf("%s(%s)", name, strings.Join(strs, ","))
}

// DefaultOperatorClass returns the operator-class name this dialect uses
// implicitly for the given index algorithm when none is specified, or ""
// if the dialect has no notion of operator classes (everything but
// Postgres/CockroachDB).
func (a Adapter) DefaultOperatorClass(algo IndexAlgorithmName) string {
	if a.Dialect != Postgres && a.Dialect != CockroachDB {
		return ""
	}
	switch algo {
	case AlgoGin:
		return "gin_trgm_ops"
	case AlgoGist:
		return "gist_trgm_ops"
	default:
		return ""
	}
}

// IndexAlgorithmName names an index algorithm independent of sqlir so that
// dialect can stay import-light in this file. ddlrender does not call
// DefaultOperatorClass, so rendered indexes carry no operator class.
type IndexAlgorithmName int

const (
	AlgoBTree IndexAlgorithmName = iota
	AlgoHash
	AlgoGist
	AlgoGin
	AlgoSpGist
	AlgoBrin
)

func (a Adapter) RenderBeginTransaction() (string, bool) {
	if !a.SupportsTransactionalDDL() {
		return "", false
	}
	return "BEGIN;", true
}

func (a Adapter) RenderCommitTransaction() (string, bool) {
	if !a.SupportsTransactionalDDL() {
		return "", false
	}
	return "COMMIT;", true
}
