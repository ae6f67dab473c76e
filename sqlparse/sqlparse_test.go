package sqlparse

import (
	"testing"

	"github.com/lockplane/schemacore/dialect"
	"github.com/lockplane/schemacore/sqlir"
)

func TestParse_PostgresCreateTableWithForeignKey(t *testing.T) {
	sql := `
CREATE TABLE authors (
	id serial PRIMARY KEY,
	name text NOT NULL
);

CREATE TABLE books (
	id serial PRIMARY KEY,
	title text NOT NULL,
	author_id integer NOT NULL,
	FOREIGN KEY (author_id) REFERENCES authors(id) ON DELETE CASCADE
);

CREATE UNIQUE INDEX books_title_idx ON books (title);
`
	schema, err := Parse(sql, dialect.Postgres)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(schema.Tables) != 2 {
		t.Fatalf("expected 2 tables, got %d", len(schema.Tables))
	}
	books, ok := schema.TableByName(0, "books")
	if !ok {
		t.Fatalf("expected books table")
	}
	if len(schema.ForeignKeys) != 1 {
		t.Fatalf("expected 1 foreign key, got %d", len(schema.ForeignKeys))
	}
	fk := schema.ForeignKeys[0]
	if fk.TableID != books.ID {
		t.Errorf("expected foreign key owned by books table")
	}
	if fk.OnDelete != sqlir.Cascade {
		t.Errorf("expected ON DELETE CASCADE, got %v", fk.OnDelete)
	}

	foundUnique := false
	for _, idx := range schema.Indexes {
		if idx.Name == "books_title_idx" && idx.Kind == sqlir.UniqueIndex {
			foundUnique = true
		}
	}
	if !foundUnique {
		t.Errorf("expected a unique index named books_title_idx")
	}
}

func TestParse_PostgresSerialColumnIsAutoIncrement(t *testing.T) {
	schema, err := Parse(`CREATE TABLE widgets (id serial PRIMARY KEY);`, dialect.Postgres)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	table, ok := schema.TableByName(0, "widgets")
	if !ok {
		t.Fatalf("expected widgets table")
	}
	if !table.HasPrimaryKey() {
		t.Fatalf("expected widgets to have a primary key")
	}
	idCol := schema.Columns[schema.Tables[table.ID].ColumnIDs[0]]
	if !idCol.AutoIncrement {
		t.Errorf("expected serial column to be marked auto-increment")
	}
}

func TestParse_FallbackSQLiteCreateTable(t *testing.T) {
	sql := `CREATE TABLE users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT NOT NULL,
		UNIQUE (email)
	);`
	schema, err := Parse(sql, dialect.SQLite)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(schema.Tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(schema.Tables))
	}
	if len(schema.Columns) != 2 {
		t.Fatalf("expected 2 columns, got %d", len(schema.Columns))
	}

	foundUnique := false
	for _, idx := range schema.Indexes {
		if idx.Kind == sqlir.UniqueIndex {
			foundUnique = true
		}
	}
	if !foundUnique {
		t.Errorf("expected a unique index from the UNIQUE(email) table constraint")
	}
}

func TestParse_FallbackMySQLForeignKey(t *testing.T) {
	sql := `CREATE TABLE orders (
		id INT PRIMARY KEY AUTO_INCREMENT,
		user_id INT NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id)
	);`
	schema, err := Parse(`CREATE TABLE users (id INT PRIMARY KEY AUTO_INCREMENT);`+sql, dialect.MySQL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(schema.ForeignKeys) != 1 {
		t.Fatalf("expected 1 foreign key, got %d", len(schema.ForeignKeys))
	}
}
