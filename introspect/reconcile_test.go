package introspect

import (
	"testing"

	"github.com/lockplane/schemacore/dml"
	"github.com/lockplane/schemacore/host"
)

func TestReconcile_SynthesizesOneToManyRelation(t *testing.T) {
	described := host.DescribedSchema{
		Dialect: "postgresql",
		Tables: []host.DescribedTable{
			{
				Name: "authors",
				Columns: []host.DescribedColumn{
					{Name: "id", NativeType: "int4"},
				},
				Indexes: []host.DescribedIndex{
					{Name: "authors_pkey", ColumnName: []string{"id"}, Unique: true, IsPrimary: true},
				},
			},
			{
				Name: "books",
				Columns: []host.DescribedColumn{
					{Name: "id", NativeType: "int4"},
					{Name: "author_id", NativeType: "int4"},
				},
				Indexes: []host.DescribedIndex{
					{Name: "books_pkey", ColumnName: []string{"id"}, Unique: true, IsPrimary: true},
				},
				ForeignKeys: []host.DescribedForeignKey{
					{Name: "books_author_id_fkey", ConstrainedColumns: []string{"author_id"}, ReferencedTable: "authors", ReferencedColumns: []string{"id"}},
				},
			},
		},
	}

	result := Reconcile(described, nil)

	var books, authors *dml.Model
	for i := range result.Document.Models {
		switch result.Document.Models[i].Name {
		case "books":
			books = &result.Document.Models[i]
		case "authors":
			authors = &result.Document.Models[i]
		}
	}
	if books == nil || authors == nil {
		t.Fatalf("expected both books and authors models, got %+v", result.Document.Models)
	}

	if len(books.RelationFields) != 1 {
		t.Fatalf("expected books to have 1 relation field, got %d", len(books.RelationFields))
	}
	if books.RelationFields[0].Arity != dml.FieldRequired {
		t.Errorf("expected owning side to be required, got %v", books.RelationFields[0].Arity)
	}
	if books.RelationFields[0].TargetModel != "authors" {
		t.Errorf("expected owning side to target authors, got %s", books.RelationFields[0].TargetModel)
	}

	if len(authors.RelationFields) != 1 {
		t.Fatalf("expected authors to have 1 back-reference field, got %d", len(authors.RelationFields))
	}
	if authors.RelationFields[0].Arity != dml.FieldList {
		t.Errorf("expected back-reference to be a list, got %v", authors.RelationFields[0].Arity)
	}

	if books.RelationFields[0].RelationName != authors.RelationFields[0].RelationName {
		t.Errorf("relation names must match across both sides: %s vs %s", books.RelationFields[0].RelationName, authors.RelationFields[0].RelationName)
	}
}

// TestReconcile_DisambiguatesMultipleForeignKeysToSameTable mirrors
// schema-engine/sql-introspection-tests/tests/re_introspection/sqlite.rs's
// multiple_changed_relation_names_due_to_mapped_models: a table with two
// foreign keys to the same referenced table must produce two distinctly
// named relations on both sides, not a naming collision.
func TestReconcile_DisambiguatesMultipleForeignKeysToSameTable(t *testing.T) {
	described := host.DescribedSchema{
		Dialect: "postgresql",
		Tables: []host.DescribedTable{
			{
				Name: "users",
				Columns: []host.DescribedColumn{
					{Name: "id", NativeType: "int4"},
				},
				Indexes: []host.DescribedIndex{
					{Name: "users_pkey", ColumnName: []string{"id"}, Unique: true, IsPrimary: true},
				},
			},
			{
				Name: "posts",
				Columns: []host.DescribedColumn{
					{Name: "id", NativeType: "int4"},
					{Name: "user_id", NativeType: "int4"},
					{Name: "editor_id", NativeType: "int4"},
				},
				Indexes: []host.DescribedIndex{
					{Name: "posts_pkey", ColumnName: []string{"id"}, Unique: true, IsPrimary: true},
				},
				ForeignKeys: []host.DescribedForeignKey{
					{Name: "posts_user_id_fkey", ConstrainedColumns: []string{"user_id"}, ReferencedTable: "users", ReferencedColumns: []string{"id"}},
					{Name: "posts_editor_id_fkey", ConstrainedColumns: []string{"editor_id"}, ReferencedTable: "users", ReferencedColumns: []string{"id"}},
				},
			},
		},
	}

	result := Reconcile(described, nil)

	var posts, users *dml.Model
	for i := range result.Document.Models {
		switch result.Document.Models[i].Name {
		case "posts":
			posts = &result.Document.Models[i]
		case "users":
			users = &result.Document.Models[i]
		}
	}
	if posts == nil || users == nil {
		t.Fatalf("expected both posts and users models, got %+v", result.Document.Models)
	}

	if len(posts.RelationFields) != 2 {
		t.Fatalf("expected posts to have 2 relation fields, got %d", len(posts.RelationFields))
	}
	if posts.RelationFields[0].Name == posts.RelationFields[1].Name {
		t.Errorf("expected distinct owning-side field names, both were %q", posts.RelationFields[0].Name)
	}
	if posts.RelationFields[0].RelationName == posts.RelationFields[1].RelationName {
		t.Errorf("expected distinct relation names, both were %q", posts.RelationFields[0].RelationName)
	}

	if len(users.RelationFields) != 2 {
		t.Fatalf("expected users to have 2 back-reference fields, got %d", len(users.RelationFields))
	}
	if users.RelationFields[0].Name == users.RelationFields[1].Name {
		t.Errorf("expected distinct back-reference field names, both were %q", users.RelationFields[0].Name)
	}
}

func TestReconcile_OneToOneWhenForeignKeyIsUnique(t *testing.T) {
	described := host.DescribedSchema{
		Tables: []host.DescribedTable{
			{
				Name: "users",
				Columns: []host.DescribedColumn{
					{Name: "id", NativeType: "int4"},
				},
				Indexes: []host.DescribedIndex{
					{Name: "users_pkey", ColumnName: []string{"id"}, Unique: true, IsPrimary: true},
				},
			},
			{
				Name: "profiles",
				Columns: []host.DescribedColumn{
					{Name: "id", NativeType: "int4"},
					{Name: "user_id", NativeType: "int4"},
				},
				Indexes: []host.DescribedIndex{
					{Name: "profiles_pkey", ColumnName: []string{"id"}, Unique: true, IsPrimary: true},
					{Name: "profiles_user_id_key", ColumnName: []string{"user_id"}, Unique: true},
				},
				ForeignKeys: []host.DescribedForeignKey{
					{Name: "profiles_user_id_fkey", ConstrainedColumns: []string{"user_id"}, ReferencedTable: "users", ReferencedColumns: []string{"id"}},
				},
			},
		},
	}

	result := Reconcile(described, nil)

	var profiles *dml.Model
	for i := range result.Document.Models {
		if result.Document.Models[i].Name == "profiles" {
			profiles = &result.Document.Models[i]
		}
	}
	if profiles == nil {
		t.Fatal("expected a profiles model")
	}
	if profiles.RelationFields[0].Arity != dml.FieldOptional {
		t.Errorf("expected a 1:1 relation (unique FK) to produce an optional arity, got %v", profiles.RelationFields[0].Arity)
	}
}

func TestReconcile_PreservesPriorModelNameAcrossTableMapping(t *testing.T) {
	prior := &dml.Document{
		Models: []dml.Model{
			{Name: "User", TableName: "users", ScalarFields: []dml.ScalarField{
				{Name: "id", ColumnName: "", Type: dml.TypeInt},
				{Name: "emailAddress", ColumnName: "email_address", Type: dml.TypeString},
			}},
		},
	}
	described := host.DescribedSchema{
		Tables: []host.DescribedTable{
			{
				Name: "users",
				Columns: []host.DescribedColumn{
					{Name: "id", NativeType: "int4"},
					{Name: "email_address", NativeType: "varchar(255)"},
				},
			},
		},
	}

	result := Reconcile(described, prior)

	if len(result.Document.Models) != 1 {
		t.Fatalf("expected 1 model, got %d", len(result.Document.Models))
	}
	m := result.Document.Models[0]
	if m.Name != "User" {
		t.Errorf("expected prior model name User to be preserved, got %s", m.Name)
	}
	if m.TableName != "users" {
		t.Errorf("expected table mapping to users to be preserved, got %q", m.TableName)
	}

	var emailField *dml.ScalarField
	for i := range m.ScalarFields {
		if m.ScalarFields[i].Name == "emailAddress" {
			emailField = &m.ScalarFields[i]
		}
	}
	if emailField == nil {
		t.Fatal("expected the prior field name emailAddress to be preserved")
	}
	if emailField.ColumnName != "email_address" {
		t.Errorf("expected column mapping to email_address to be preserved, got %q", emailField.ColumnName)
	}
}

func TestReconcile_UnrecognizedNativeTypeEmitsWarningAndFallsBackToString(t *testing.T) {
	described := host.DescribedSchema{
		Tables: []host.DescribedTable{
			{
				Name: "oddities",
				Columns: []host.DescribedColumn{
					{Name: "payload", NativeType: "geometry(point, 4326)"},
				},
			},
		},
	}

	result := Reconcile(described, nil)

	if len(result.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d: %+v", len(result.Warnings), result.Warnings)
	}
	if result.Warnings[0].Code != "unrecognized_native_type" {
		t.Errorf("expected unrecognized_native_type warning, got %s", result.Warnings[0].Code)
	}
	if result.Document.Models[0].ScalarFields[0].Type != dml.TypeString {
		t.Errorf("expected fallback to String, got %s", result.Document.Models[0].ScalarFields[0].Type)
	}
}

func TestResolveReservedWord_AppendsUnderscoreOnCollision(t *testing.T) {
	if got := resolveReservedWord("type"); got != "type_" {
		t.Errorf("expected type_, got %s", got)
	}
	if got := resolveReservedWord("users"); got != "users" {
		t.Errorf("expected users unchanged, got %s", got)
	}
}
