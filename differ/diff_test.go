package differ

import (
	"testing"

	"github.com/lockplane/schemacore/dialect"
	"github.com/lockplane/schemacore/sqlir"
)

func schemaWithUsersTable(t *testing.T, withEmailColumn bool) *sqlir.Schema {
	t.Helper()
	b := sqlir.NewBuilder("postgres")
	ns := b.Namespace("public")
	users := b.AddTable(ns, "users")
	idCol := b.AddColumn(users, sqlir.Column{
		TableID:    users,
		Name:       "id",
		NativeType: sqlir.NativeType{Name: "integer"},
		Arity:      sqlir.Required,
	})
	b.AddIndex(users, sqlir.Index{
		TableID: users,
		Name:    "users_pkey",
		Kind:    sqlir.PrimaryKeyIndex,
		Columns: []sqlir.IndexColumn{{ColumnID: idCol}},
	})
	if withEmailColumn {
		b.AddColumn(users, sqlir.Column{
			TableID:    users,
			Name:       "email",
			NativeType: sqlir.NativeType{Name: "text"},
			Arity:      sqlir.Nullable,
		})
	}
	return b.Build()
}

func TestDiff_AddColumnOnPostgres(t *testing.T) {
	prev := schemaWithUsersTable(t, false)
	next := schemaWithUsersTable(t, true)
	ad := dialect.New(dialect.Postgres)

	steps := Diff(prev, next, ad)

	var alters []MigrationStep
	for _, s := range steps {
		if s.Kind == StepAlterTable {
			alters = append(alters, s)
		}
	}
	if len(alters) != 1 {
		t.Fatalf("expected exactly one AlterTable step, got %d (%+v)", len(alters), steps)
	}
	if len(alters[0].Changes) != 1 || alters[0].Changes[0].Kind != TCAddColumn {
		t.Fatalf("expected a single AddColumn change, got %+v", alters[0].Changes)
	}
	if alters[0].Changes[0].Column.Name != "email" {
		t.Fatalf("expected added column to be 'email', got %q", alters[0].Changes[0].Column.Name)
	}
}

func TestDiff_RequiredColumnWithoutDefaultForcesRedefineOnSQLite(t *testing.T) {
	b := sqlir.NewBuilder("sqlite")
	ns := b.Namespace("")
	tbl := b.AddTable(ns, "todos")
	b.AddColumn(tbl, sqlir.Column{TableID: tbl, Name: "id", NativeType: sqlir.NativeType{Name: "integer"}, Arity: sqlir.Required})
	prev := b.Build()

	b2 := sqlir.NewBuilder("sqlite")
	ns2 := b2.Namespace("")
	tbl2 := b2.AddTable(ns2, "todos")
	b2.AddColumn(tbl2, sqlir.Column{TableID: tbl2, Name: "id", NativeType: sqlir.NativeType{Name: "integer"}, Arity: sqlir.Required})
	b2.AddColumn(tbl2, sqlir.Column{TableID: tbl2, Name: "title", NativeType: sqlir.NativeType{Name: "text"}, Arity: sqlir.Required})
	next := b2.Build()

	ad := dialect.New(dialect.SQLite)
	steps := Diff(prev, next, ad)

	var found bool
	for _, s := range steps {
		if s.Kind == StepRedefineTables {
			found = true
			if len(s.Redefines) != 1 || s.Redefines[0].TableName != "todos" {
				t.Fatalf("expected a single redefinition of 'todos', got %+v", s.Redefines)
			}
		}
		if s.Kind == StepAlterTable {
			t.Fatalf("did not expect a plain AlterTable step on SQLite for a required column without a default, got %+v", s)
		}
	}
	if !found {
		t.Fatal("expected a RedefineTables step")
	}
}

func TestDiff_NewTableCreatedWithForeignKeyOrdering(t *testing.T) {
	b := sqlir.NewBuilder("postgres")
	ns := b.Namespace("public")
	prev := b.Build()
	_ = ns

	b2 := sqlir.NewBuilder("postgres")
	ns2 := b2.Namespace("public")
	authors := b2.AddTable(ns2, "authors")
	authorID := b2.AddColumn(authors, sqlir.Column{TableID: authors, Name: "id", NativeType: sqlir.NativeType{Name: "integer"}, Arity: sqlir.Required})
	b2.AddIndex(authors, sqlir.Index{TableID: authors, Name: "authors_pkey", Kind: sqlir.PrimaryKeyIndex, Columns: []sqlir.IndexColumn{{ColumnID: authorID}}})

	books := b2.AddTable(ns2, "books")
	b2.AddColumn(books, sqlir.Column{TableID: books, Name: "id", NativeType: sqlir.NativeType{Name: "integer"}, Arity: sqlir.Required})
	authorFK := b2.AddColumn(books, sqlir.Column{TableID: books, Name: "author_id", NativeType: sqlir.NativeType{Name: "integer"}, Arity: sqlir.Required})
	b2.AddForeignKey(books, sqlir.ForeignKey{
		TableID:              books,
		Name:                 "books_author_id_fkey",
		ConstrainedColumnIDs: []sqlir.ColumnID{authorFK},
		ReferencedTableID:    authors,
		ReferencedColumnIDs:  []sqlir.ColumnID{authorID},
	})
	next := b2.Build()

	ad := dialect.New(dialect.Postgres)
	steps := Diff(prev, next, ad)

	var authorsIdx, booksIdx, fkIdx int = -1, -1, -1
	for i, s := range steps {
		switch {
		case s.Kind == StepCreateTable && s.Table.Name == "authors":
			authorsIdx = i
		case s.Kind == StepCreateTable && s.Table.Name == "books":
			booksIdx = i
		case s.Kind == StepAddForeignKey && s.ForeignKey.Name == "books_author_id_fkey":
			fkIdx = i
		}
	}
	if authorsIdx == -1 || booksIdx == -1 || fkIdx == -1 {
		t.Fatalf("expected create-table and add-foreign-key steps, got %+v", steps)
	}
	if !(authorsIdx < booksIdx && booksIdx < fkIdx) {
		t.Fatalf("expected authors(%d) < books(%d) < fk(%d)", authorsIdx, booksIdx, fkIdx)
	}
}

// TestDiff_IsDeterministicAcrossRepeatedCalls guards against spec §4.7's
// "diff always produces a deterministic Migration value": with several
// independently-created tables, enums, and sequences that have no FK
// relationship forcing an order between them, repeated Diff calls on
// identical inputs must still emit steps in the same relative order
// instead of one driven by Go's randomized map iteration.
func TestDiff_IsDeterministicAcrossRepeatedCalls(t *testing.T) {
	b := sqlir.NewBuilder("postgres")
	ns := b.Namespace("public")
	prev := b.Build()
	_ = ns

	build := func() *sqlir.Schema {
		bb := sqlir.NewBuilder("postgres")
		nn := bb.Namespace("public")
		for _, name := range []string{"zebras", "apples", "mangoes", "kiwis"} {
			tbl := bb.AddTable(nn, name)
			bb.AddColumn(tbl, sqlir.Column{TableID: tbl, Name: "id", NativeType: sqlir.NativeType{Name: "integer"}, Arity: sqlir.Required})
		}
		bb.AddEnum(nn, "zstatus", []string{"a"})
		bb.AddEnum(nn, "astatus", []string{"a"})
		s := bb.Build()
		s.Sequences = append(s.Sequences,
			sqlir.Sequence{NamespaceID: nn, Name: "zseq"},
			sqlir.Sequence{NamespaceID: nn, Name: "aseq"},
		)
		return s
	}

	ad := dialect.New(dialect.Postgres)
	next := build()
	want := Diff(prev, next, ad)

	for i := 0; i < 20; i++ {
		next := build()
		got := Diff(prev, next, ad)
		if len(got) != len(want) {
			t.Fatalf("run %d: step count changed, got %d want %d", i, len(got), len(want))
		}
		for j := range got {
			if got[j].Kind != want[j].Kind {
				t.Fatalf("run %d: step %d kind changed: got %v want %v", i, j, got[j].Kind, want[j].Kind)
			}
			if got[j].Table.Name != want[j].Table.Name || got[j].Enum.Name != want[j].Enum.Name || got[j].Sequence.Name != want[j].Sequence.Name {
				t.Fatalf("run %d: step %d identity changed: got %+v want %+v", i, j, got[j], want[j])
			}
		}
	}
}
