// Package sqlir defines the canonical SQL intermediate representation: a
// dialect-annotated relational schema built from dense arenas plus typed
// indices. Schemas are constructed once per diff or introspection run and
// are read-only thereafter.
package sqlir

// NamespaceID indexes into Schema.Namespaces. A zero value is namespace 0;
// "no namespace" is the NoNamespace sentinel below.
type NamespaceID int32

// TableID indexes into Schema.Tables.
type TableID int32

// ColumnID indexes into Schema.Columns.
type ColumnID int32

// IndexID indexes into Schema.Indexes.
type IndexID int32

// ForeignKeyID indexes into Schema.ForeignKeys.
type ForeignKeyID int32

// EnumID indexes into Schema.Enums.
type EnumID int32

// SequenceID indexes into Schema.Sequences.
type SequenceID int32

// ViewID indexes into Schema.Views.
type ViewID int32

// UserDefinedTypeID indexes into Schema.UserDefinedTypes.
type UserDefinedTypeID int32

// ExtensionID indexes into Schema.Extensions.
type ExtensionID int32

// NoNamespace is the sentinel NamespaceID used by tables/enums that do not
// belong to any namespace (e.g. on single-namespace dialects).
const NoNamespace NamespaceID = -1
