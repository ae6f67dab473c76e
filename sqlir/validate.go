package sqlir

import "fmt"

// Validate checks the structural invariants of spec §3: unique namespace
// names, unique column names per table, at most one primary key per table,
// foreign keys whose columns exist on both sides, and |constrained| ==
// |referenced| > 0.
func (s *Schema) Validate() error {
	seenNS := map[string]bool{}
	for _, ns := range s.Namespaces {
		if seenNS[ns.Name] {
			return fmt.Errorf("sqlir: duplicate namespace %q", ns.Name)
		}
		seenNS[ns.Name] = true
	}

	for ti, t := range s.Tables {
		seenCol := map[string]bool{}
		for _, cid := range t.ColumnIDs {
			name := s.Columns[cid].Name
			if seenCol[name] {
				return fmt.Errorf("sqlir: table %q has duplicate column %q", t.Name, name)
			}
			seenCol[name] = true
		}
		pkCount := 0
		for _, iid := range t.IndexIDs {
			if s.Indexes[iid].Kind == PrimaryKeyIndex {
				pkCount++
			}
		}
		if pkCount > 1 {
			return fmt.Errorf("sqlir: table %q has more than one primary key", t.Name)
		}
		if t.HasPrimaryKey() {
			pk := s.Indexes[t.PrimaryKeyID]
			if pk.Kind != PrimaryKeyIndex {
				return fmt.Errorf("sqlir: table %q primary key index is not kind PrimaryKey", t.Name)
			}
			if pk.TableID != TableID(ti) {
				return fmt.Errorf("sqlir: table %q primary key belongs to a different table", t.Name)
			}
		}
	}

	for _, fk := range s.ForeignKeys {
		if len(fk.ConstrainedColumnIDs) == 0 {
			return fmt.Errorf("sqlir: foreign key %q has no constrained columns", fk.Name)
		}
		if len(fk.ConstrainedColumnIDs) != len(fk.ReferencedColumnIDs) {
			return fmt.Errorf("sqlir: foreign key %q column count mismatch (%d constrained vs %d referenced)",
				fk.Name, len(fk.ConstrainedColumnIDs), len(fk.ReferencedColumnIDs))
		}
		for _, cid := range fk.ConstrainedColumnIDs {
			if s.Columns[cid].TableID != fk.TableID {
				return fmt.Errorf("sqlir: foreign key %q references a column outside its own table", fk.Name)
			}
		}
		for _, cid := range fk.ReferencedColumnIDs {
			if s.Columns[cid].TableID != fk.ReferencedTableID {
				return fmt.Errorf("sqlir: foreign key %q referenced column does not belong to the referenced table", fk.Name)
			}
		}
	}

	for _, idx := range s.Indexes {
		if len(idx.Columns) == 0 {
			return fmt.Errorf("sqlir: index %q has no columns", idx.Name)
		}
		for _, ic := range idx.Columns {
			if s.Columns[ic.ColumnID].TableID != idx.TableID {
				return fmt.Errorf("sqlir: index %q references a column outside its table", idx.Name)
			}
		}
	}

	return nil
}
