package ddlrender

import (
	"strings"
	"testing"

	"github.com/lockplane/schemacore/dialect"
	"github.com/lockplane/schemacore/differ"
	"github.com/lockplane/schemacore/sqlir"
)

func TestRender_CreateTableWithPrimaryKey(t *testing.T) {
	b := sqlir.NewBuilder("postgres")
	ns := b.Namespace("public")
	users := b.AddTable(ns, "users")
	id := b.AddColumn(users, sqlir.Column{Name: "id", NativeType: sqlir.NativeType{Name: "integer"}, Arity: sqlir.Required})
	b.AddIndex(users, sqlir.Index{Name: "users_pkey", Kind: sqlir.PrimaryKeyIndex, Columns: []sqlir.IndexColumn{{ColumnID: id}}})
	schema := b.Build()

	table := schema.Tables[users]
	var cols []sqlir.Column
	for _, cid := range table.ColumnIDs {
		cols = append(cols, schema.Columns[cid])
	}
	var idxs []sqlir.Index
	for _, iid := range table.IndexIDs {
		idxs = append(idxs, schema.Indexes[iid])
	}

	steps := []differ.MigrationStep{{
		Kind: differ.StepCreateTable, Table: table, TableColumns: cols, TableIndexes: idxs,
	}}

	out := Render(steps, dialect.New(dialect.Postgres))
	sql := strings.Join(out, "\n")

	if !strings.Contains(sql, `CREATE TABLE "users"`) {
		t.Fatalf("expected CREATE TABLE users, got:\n%s", sql)
	}
	if !strings.Contains(sql, `PRIMARY KEY ("id")`) {
		t.Fatalf("expected inline primary key constraint, got:\n%s", sql)
	}
	if !strings.HasPrefix(out[0], "BEGIN") {
		t.Fatalf("expected postgres migration to open a transaction, got:\n%s", sql)
	}
}

func TestRender_AddColumn(t *testing.T) {
	steps := []differ.MigrationStep{{
		Kind:      differ.StepAlterTable,
		TableName: "todos",
		Changes: []differ.TableChange{
			{Kind: differ.TCAddColumn, Column: sqlir.Column{Name: "done", NativeType: sqlir.NativeType{Name: "boolean"}, Arity: sqlir.Required}},
		},
	}}

	out := Render(steps, dialect.New(dialect.SQLite))
	sql := strings.Join(out, "\n")
	if !strings.Contains(sql, `ALTER TABLE "todos" ADD COLUMN "done" boolean NOT NULL;`) {
		t.Fatalf("unexpected SQL:\n%s", sql)
	}
	if strings.Contains(sql, "BEGIN") {
		t.Fatalf("sqlite adapter has no transactional DDL, should not wrap in BEGIN/COMMIT:\n%s", sql)
	}
}

func TestRender_AlterColumnNotCastableDropsAndRecreates(t *testing.T) {
	steps := []differ.MigrationStep{{
		Kind:      differ.StepAlterTable,
		TableName: "events",
		Changes: []differ.TableChange{
			{
				Kind:       differ.TCAlterColumn,
				Changes:    differ.ChangeTypeChanged,
				PrevColumn: sqlir.Column{Name: "payload", NativeType: sqlir.NativeType{Name: "jsonb"}, Arity: sqlir.Nullable},
				NextColumn: sqlir.Column{Name: "payload", NativeType: sqlir.NativeType{Name: "integer"}, Arity: sqlir.Nullable},
				TypeChange: differ.TypeChangeResult{Classified: true, Class: dialect.NotCastable},
			},
		},
	}}

	out := Render(steps, dialect.New(dialect.Postgres))
	sql := strings.Join(out, "\n")

	if !strings.Contains(sql, `ALTER TABLE "events" DROP COLUMN "payload";`) {
		t.Fatalf("expected DROP COLUMN for the not-castable change, got:\n%s", sql)
	}
	if !strings.Contains(sql, `ALTER TABLE "events" ADD COLUMN "payload" integer;`) {
		t.Fatalf("expected ADD COLUMN re-adding the column with its new type, got:\n%s", sql)
	}
	if strings.Contains(sql, "ALTER COLUMN") {
		t.Fatalf("drop-and-recreate should not also emit an ALTER COLUMN TYPE clause:\n%s", sql)
	}
}
