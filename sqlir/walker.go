package sqlir

// A walker pairs a typed index with the schema that owns it, giving
// read-only navigation without copying entity data out of the arena. This
// is the redesign described in spec §9 for the source's pervasive
// reference-counted AST: indices plus a borrowed *Schema eliminate
// lifetime cycles entirely.

// TableWalker navigates a single table within a Schema.
type TableWalker struct {
	ID     TableID
	Schema *Schema
}

func (s *Schema) Table(id TableID) TableWalker { return TableWalker{ID: id, Schema: s} }

func (w TableWalker) Get() Table { return w.Schema.Tables[w.ID] }
func (w TableWalker) Name() string { return w.Get().Name }

func (w TableWalker) Namespace() (NamespaceWalker, bool) {
	t := w.Get()
	if t.NamespaceID == NoNamespace {
		return NamespaceWalker{}, false
	}
	return NamespaceWalker{ID: t.NamespaceID, Schema: w.Schema}, true
}

func (w TableWalker) Columns() []ColumnWalker {
	t := w.Get()
	out := make([]ColumnWalker, len(t.ColumnIDs))
	for i, id := range t.ColumnIDs {
		out[i] = ColumnWalker{ID: id, Schema: w.Schema}
	}
	return out
}

func (w TableWalker) Column(name string) (ColumnWalker, bool) {
	for _, cw := range w.Columns() {
		if cw.Name() == name {
			return cw, true
		}
	}
	return ColumnWalker{}, false
}

func (w TableWalker) Indexes() []IndexWalker {
	t := w.Get()
	out := make([]IndexWalker, len(t.IndexIDs))
	for i, id := range t.IndexIDs {
		out[i] = IndexWalker{ID: id, Schema: w.Schema}
	}
	return out
}

func (w TableWalker) ForeignKeys() []ForeignKeyWalker {
	t := w.Get()
	out := make([]ForeignKeyWalker, len(t.ForeignKeyIDs))
	for i, id := range t.ForeignKeyIDs {
		out[i] = ForeignKeyWalker{ID: id, Schema: w.Schema}
	}
	return out
}

func (w TableWalker) PrimaryKey() (IndexWalker, bool) {
	t := w.Get()
	if !t.HasPrimaryKey() {
		return IndexWalker{}, false
	}
	return IndexWalker{ID: t.PrimaryKeyID, Schema: w.Schema}, true
}

// NamespaceWalker navigates a single namespace.
type NamespaceWalker struct {
	ID     NamespaceID
	Schema *Schema
}

func (w NamespaceWalker) Name() string { return w.Schema.Namespaces[w.ID].Name }

// ColumnWalker navigates a single column.
type ColumnWalker struct {
	ID     ColumnID
	Schema *Schema
}

func (w ColumnWalker) Get() Column       { return w.Schema.Columns[w.ID] }
func (w ColumnWalker) Name() string      { return w.Get().Name }
func (w ColumnWalker) Table() TableWalker { return TableWalker{ID: w.Get().TableID, Schema: w.Schema} }
func (w ColumnWalker) NativeType() NativeType { return w.Get().NativeType }
func (w ColumnWalker) Arity() Arity       { return w.Get().Arity }
func (w ColumnWalker) Default() Default   { return w.Get().Default }
func (w ColumnWalker) AutoIncrement() bool { return w.Get().AutoIncrement }

// IndexWalker navigates a single index.
type IndexWalker struct {
	ID     IndexID
	Schema *Schema
}

func (w IndexWalker) Get() Index        { return w.Schema.Indexes[w.ID] }
func (w IndexWalker) Name() string      { return w.Get().Name }
func (w IndexWalker) Table() TableWalker { return TableWalker{ID: w.Get().TableID, Schema: w.Schema} }

func (w IndexWalker) Columns() []ColumnWalker {
	idx := w.Get()
	out := make([]ColumnWalker, len(idx.Columns))
	for i, c := range idx.Columns {
		out[i] = ColumnWalker{ID: c.ColumnID, Schema: w.Schema}
	}
	return out
}

// ForeignKeyWalker navigates a single foreign key.
type ForeignKeyWalker struct {
	ID     ForeignKeyID
	Schema *Schema
}

func (w ForeignKeyWalker) Get() ForeignKey { return w.Schema.ForeignKeys[w.ID] }
func (w ForeignKeyWalker) Table() TableWalker {
	return TableWalker{ID: w.Get().TableID, Schema: w.Schema}
}
func (w ForeignKeyWalker) ReferencedTable() TableWalker {
	return TableWalker{ID: w.Get().ReferencedTableID, Schema: w.Schema}
}

func (w ForeignKeyWalker) ConstrainedColumns() []ColumnWalker {
	fk := w.Get()
	out := make([]ColumnWalker, len(fk.ConstrainedColumnIDs))
	for i, id := range fk.ConstrainedColumnIDs {
		out[i] = ColumnWalker{ID: id, Schema: w.Schema}
	}
	return out
}

func (w ForeignKeyWalker) ReferencedColumns() []ColumnWalker {
	fk := w.Get()
	out := make([]ColumnWalker, len(fk.ReferencedColumnIDs))
	for i, id := range fk.ReferencedColumnIDs {
		out[i] = ColumnWalker{ID: id, Schema: w.Schema}
	}
	return out
}

// EnumWalker navigates a single enum.
type EnumWalker struct {
	ID     EnumID
	Schema *Schema
}

func (w EnumWalker) Get() Enum   { return w.Schema.Enums[w.ID] }
func (w EnumWalker) Name() string { return w.Get().Name }
