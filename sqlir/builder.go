package sqlir

// Builder provides an ergonomic, mutation-based way to construct a Schema
// arena (used by tests and by the sqlparse/introspection producers instead
// of hand-indexing slices).
type Builder struct {
	schema Schema
}

func NewBuilder(dialect string) *Builder {
	return &Builder{schema: Schema{Dialect: dialect}}
}

func (b *Builder) Namespace(name string) NamespaceID {
	for i, ns := range b.schema.Namespaces {
		if ns.Name == name {
			return NamespaceID(i)
		}
	}
	b.schema.Namespaces = append(b.schema.Namespaces, Namespace{Name: name})
	return NamespaceID(len(b.schema.Namespaces) - 1)
}

// AddTable registers an empty table and returns its ID; use AddColumn,
// AddIndex, AddForeignKey to populate it.
func (b *Builder) AddTable(ns NamespaceID, name string) TableID {
	b.schema.Tables = append(b.schema.Tables, Table{
		NamespaceID:  ns,
		Name:         name,
		PrimaryKeyID: -1,
	})
	return TableID(len(b.schema.Tables) - 1)
}

func (b *Builder) AddColumn(table TableID, col Column) ColumnID {
	col.TableID = table
	b.schema.Columns = append(b.schema.Columns, col)
	id := ColumnID(len(b.schema.Columns) - 1)
	t := &b.schema.Tables[table]
	t.ColumnIDs = append(t.ColumnIDs, id)
	return id
}

func (b *Builder) AddIndex(table TableID, idx Index) IndexID {
	idx.TableID = table
	for i := range idx.Columns {
		idx.Columns[i].ColumnName = b.schema.Columns[idx.Columns[i].ColumnID].Name
	}
	b.schema.Indexes = append(b.schema.Indexes, idx)
	id := IndexID(len(b.schema.Indexes) - 1)
	t := &b.schema.Tables[table]
	t.IndexIDs = append(t.IndexIDs, id)
	if idx.Kind == PrimaryKeyIndex {
		t.PrimaryKeyID = id
	}
	return id
}

func (b *Builder) AddForeignKey(table TableID, fk ForeignKey) ForeignKeyID {
	fk.TableID = table
	fk.ConstrainedColumnNames = make([]string, len(fk.ConstrainedColumnIDs))
	for i, cid := range fk.ConstrainedColumnIDs {
		fk.ConstrainedColumnNames[i] = b.schema.Columns[cid].Name
	}
	fk.ReferencedColumnNames = make([]string, len(fk.ReferencedColumnIDs))
	for i, cid := range fk.ReferencedColumnIDs {
		fk.ReferencedColumnNames[i] = b.schema.Columns[cid].Name
	}
	b.schema.ForeignKeys = append(b.schema.ForeignKeys, fk)
	id := ForeignKeyID(len(b.schema.ForeignKeys) - 1)
	t := &b.schema.Tables[table]
	t.ForeignKeyIDs = append(t.ForeignKeyIDs, id)
	return id
}

func (b *Builder) AddEnum(ns NamespaceID, name string, variants []string) EnumID {
	b.schema.Enums = append(b.schema.Enums, Enum{NamespaceID: ns, Name: name, Variants: variants})
	return EnumID(len(b.schema.Enums) - 1)
}

func (b *Builder) Build() *Schema {
	return &b.schema
}

// TableByName does a linear name lookup; schemas are small enough in
// practice (one diff/introspection run) that this need not be indexed.
func (s *Schema) TableByName(ns NamespaceID, name string) (TableWalker, bool) {
	for i, t := range s.Tables {
		if t.NamespaceID == ns && t.Name == name {
			return TableWalker{ID: TableID(i), Schema: s}, true
		}
	}
	return TableWalker{}, false
}

func (s *Schema) EnumByName(ns NamespaceID, name string) (EnumWalker, bool) {
	for i, e := range s.Enums {
		if e.NamespaceID == ns && e.Name == name {
			return EnumWalker{ID: EnumID(i), Schema: s}, true
		}
	}
	return EnumWalker{}, false
}
