// Package dml is the canonical in-memory model of a modeling-language
// document: the Model/Field/Relation/Enum shapes that introspect.Reconcile
// produces and that a future parser (out of scope here) would also
// produce from source text. It mirrors sqlir's arena style (spec §3) but
// stays a plain slice-of-structs model since a DML document is small and
// is always held whole in memory, never diffed incrementally like a
// sqlir.Schema is.
package dml

// Document is one parsed or reconciled modeling-language file.
type Document struct {
	Models []Model
	Enums  []Enum
}

// Model is a DML model block: a table's logical-language counterpart.
type Model struct {
	Name           string
	ScalarFields   []ScalarField
	RelationFields []RelationField
	Indexes        []Index
	// TableName records the underlying SQL table name when it differs
	// from Name (spec §4.6's "@@map" preservation rule).
	TableName string
}

// ScalarArity mirrors sqlir.Arity for DML fields.
type ScalarArity int

const (
	FieldRequired ScalarArity = iota
	FieldOptional
	FieldList
)

// ScalarType is the modeling language's portable type vocabulary, the
// DML-side counterpart of a sqlir.NativeType.
type ScalarType string

const (
	TypeInt      ScalarType = "Int"
	TypeBigInt   ScalarType = "BigInt"
	TypeFloat    ScalarType = "Float"
	TypeDecimal  ScalarType = "Decimal"
	TypeBoolean  ScalarType = "Boolean"
	TypeString   ScalarType = "String"
	TypeDateTime ScalarType = "DateTime"
	TypeBytes    ScalarType = "Bytes"
	TypeJSON     ScalarType = "Json"
)

// ScalarField is a model's non-relational field.
type ScalarField struct {
	Name       string
	ColumnName string // underlying SQL column name, when different from Name
	Type       ScalarType
	Arity      ScalarArity
	IsID       bool
	IsUnique   bool
	Default    *FieldDefault
	EnumName   string // set when Type references an Enum instead of a scalar
}

// FieldDefault is the DML-side default-value annotation.
type FieldDefault struct {
	Expression string // e.g. "now()", "autoincrement()", or a literal
}

// RelationField is a model's relational field. Exactly one side of a 1:1
// or 1:N relation carries the foreign key (ForeignKeyFields/References
// set); the other side is a virtual back-reference.
type RelationField struct {
	Name             string
	TargetModel      string
	Arity            ScalarArity // FieldRequired or FieldOptional for to-one, FieldList for to-many
	RelationName     string      // "{min(A,B)}To{max(A,B)}" unless overridden, spec §3
	ForeignKeyFields []string    // empty on the non-owning side
	References       []string    // empty on the non-owning side
}

// Index is a DML-level @@index/@@unique declaration.
type Index struct {
	Fields []string
	Unique bool
}

// Enum is a DML enum block.
type Enum struct {
	Name     string
	Variants []string
}

// RelationName computes the implicit relation name for an unnamed
// relation between two models, per spec §3: "{min(A,B)}To{max(A,B)}"
// lexicographically.
func RelationName(modelA, modelB string) string {
	if modelA <= modelB {
		return modelA + "To" + modelB
	}
	return modelB + "To" + modelA
}
