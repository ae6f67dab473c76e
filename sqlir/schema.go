package sqlir

// Schema is the arena owning every entity of one described or desired SQL
// schema. Entities are referred to everywhere else by typed index; Schema
// itself never changes after construction.
type Schema struct {
	Dialect string // one of the dialect.Dialect string values; kept decoupled to avoid an import cycle

	Namespaces       []Namespace
	Tables           []Table
	Columns          []Column
	Indexes          []Index
	ForeignKeys      []ForeignKey
	Enums            []Enum
	Sequences        []Sequence
	Views            []View
	UserDefinedTypes []UserDefinedType
	Extensions       []Extension
}

// Namespace is an optional grouping (schema/database) for tables and enums.
// Invariant: names are unique within a Schema.
type Namespace struct {
	Name string
}

// Arity is the column/relation cardinality.
type Arity int

const (
	Required Arity = iota
	Nullable
	List
)

// DefaultKind tags the Default union.
type DefaultKind int

const (
	DefaultNone DefaultKind = iota
	DefaultValue
	DefaultSequence
	DefaultUniqueRowid
	DefaultDbGenerated
	DefaultNow
)

// Default is the tagged union of column default expressions described in
// spec §3. Only the field matching Kind is meaningful.
type Default struct {
	Kind DefaultKind

	// DefaultValue: a typed literal. ValueKind distinguishes how ValueText
	// should be interpreted for equality purposes (see differ.DefaultsEqual).
	ValueKind ValueKind
	ValueText string
	// ValueList holds element texts when ValueKind == ValueList.
	ValueList []string

	// DefaultSequence: the sequence name backing this default.
	SequenceName string

	// DefaultDbGenerated: the database-reported expression text, if any.
	Expression    string
	HasExpression bool
}

// ValueKind distinguishes the literal kind carried by a DefaultValue so the
// differ can apply the right equality rule (spec §4.2 "Default-value
// equality").
type ValueKind int

const (
	ValueString ValueKind = iota
	ValueInt64
	ValueInt32
	ValueFloat
	ValueBool
	ValueJSON
	ValueDateTime
	ValueBytes
	ValueEnumVariant
	ValueList
)

// Table is `(namespace_id?, name, columns[], indexes[], foreign_keys[], primary_key?)`.
type Table struct {
	NamespaceID  NamespaceID
	Name         string
	ColumnIDs    []ColumnID
	IndexIDs     []IndexID
	ForeignKeyIDs []ForeignKeyID
	PrimaryKeyID IndexID // -1 if none
}

// HasPrimaryKey reports whether the table declares a primary key index.
func (t Table) HasPrimaryKey() bool { return t.PrimaryKeyID >= 0 }

// Column is `(name, native_type, arity, default?, auto_increment_flag)`.
type Column struct {
	TableID         TableID
	Name            string
	NativeType      NativeType
	Arity           Arity
	Default         Default
	AutoIncrement   bool
}

// NativeType is the dialect-reported type annotation, kept as a name plus
// numeric parameters (e.g. Decimal(5,3), VarChar(255), Bit(n)) so the
// renderer can re-compose exact syntax and the dialect adapter can compare
// types structurally.
type NativeType struct {
	Name   string
	Params []int
}

// IndexAlgorithm enumerates the storage algorithms a dialect may support.
type IndexAlgorithm int

const (
	BTree IndexAlgorithm = iota
	Hash
	Gist
	Gin
	SpGist
	Brin
)

// IndexKind distinguishes the role an index plays.
type IndexKind int

const (
	NormalIndex IndexKind = iota
	UniqueIndex
	PrimaryKeyIndex
	FulltextIndex
)

// IndexColumn is one column participating in an index, with its per-column
// modifiers.
type IndexColumn struct {
	ColumnID ColumnID
	// ColumnName is denormalized from ColumnID at construction time (see
	// Builder.AddIndex) so renderers never need a Schema reference just to
	// print a column list.
	ColumnName    string
	Descending    bool
	LengthPrefix  *int
	OperatorClass string // empty means "dialect default"
}

// Index is `(name, columns[], algorithm, kind, where_predicate?)`.
type Index struct {
	TableID        TableID
	Name           string
	Columns        []IndexColumn
	Algorithm      IndexAlgorithm
	Kind           IndexKind
	WherePredicate string // verbatim, canonicalized form as reported by the describer; empty means "no predicate"
}

// ReferentialAction enumerates ON DELETE / ON UPDATE actions. Not every
// dialect supports every action (spec §4.1 SupportsReferentialAction).
type ReferentialAction int

const (
	NoAction ReferentialAction = iota
	Cascade
	SetNull
	SetDefault
	Restrict
)

// ForeignKey is `(name?, constrained_columns[], referenced_table_id, referenced_columns[], on_delete, on_update)`.
type ForeignKey struct {
	TableID              TableID
	Name                 string
	ConstrainedColumnIDs []ColumnID
	// ConstrainedColumnNames parallels ConstrainedColumnIDs, denormalized
	// at construction time for the same reason as IndexColumn.ColumnName.
	ConstrainedColumnNames []string
	ReferencedTableID      TableID
	ReferencedColumnIDs    []ColumnID
	ReferencedColumnNames  []string
	OnDelete               ReferentialAction
	OnUpdate               ReferentialAction
}

// Enum is `(namespace_id?, name, variants[])`.
type Enum struct {
	NamespaceID NamespaceID
	Name        string
	Variants    []string
}

// Sequence, View, UserDefinedType and Extension are opaque to the differ
// except for create/drop, per spec §3.
type Sequence struct {
	NamespaceID NamespaceID
	Name        string
}

type View struct {
	NamespaceID NamespaceID
	Name        string
	Definition  string
}

type UserDefinedType struct {
	NamespaceID NamespaceID
	Name        string
	Definition  string
}

type Extension struct {
	Name    string
	Version string
}
