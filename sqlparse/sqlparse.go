// Package sqlparse turns canonical SQL DDL text into a sqlir.Schema, the
// inverse direction of ddlrender. corectl's diff and apply commands use it
// to read the desired schema file, and tests use it to build fixtures from
// plain SQL instead of hand-assembling a sqlir.Builder call chain.
//
// Postgres DDL is parsed with the real grammar via pg_query_go, the way the
// teacher's internal/schema/parser.go does. Other dialects fall back to a
// small hand-rolled tokenizer covering the CREATE TABLE/INDEX subset
// this module's renderer itself emits (see ddlrender) — good enough for
// round-tripping fixtures, not a general SQL parser.
package sqlparse

import (
	"github.com/lockplane/schemacore/coreerr"
	"github.com/lockplane/schemacore/dialect"
	"github.com/lockplane/schemacore/sqlir"
)

// Parse parses sql (a sequence of DDL statements) into a sqlir.Schema for
// the given dialect.
func Parse(sql string, d dialect.Dialect) (*sqlir.Schema, error) {
	switch d {
	case dialect.Postgres, dialect.CockroachDB:
		return parsePostgres(sql, d)
	default:
		return parseFallback(sql, d)
	}
}

func newUnsupported(msg string) error {
	return coreerr.New(coreerr.KindUnsupported, msg)
}
