package differ

import "github.com/lockplane/schemacore/sqlir"

// orderTablesForCreation returns the given table IDs in an order such that
// a table referenced by another table's foreign key is created first. FK
// cycles are broken by returning the cyclic edge separately so the caller
// can create the tables without it and add it back as a standalone
// AddForeignKey step afterward (spec §4.2, phase 5/9).
func orderTablesForCreation(s *sqlir.Schema, tableIDs []sqlir.TableID) (order []sqlir.TableID, deferredFKs []sqlir.ForeignKeyID) {
	inSet := make(map[sqlir.TableID]bool, len(tableIDs))
	for _, id := range tableIDs {
		inSet[id] = true
	}

	state := make(map[sqlir.TableID]int) // 0=unvisited, 1=in-progress, 2=done
	var visit func(id sqlir.TableID, stack []sqlir.TableID)

	visit = func(id sqlir.TableID, stack []sqlir.TableID) {
		if state[id] == 2 {
			return
		}
		if state[id] == 1 {
			return // already on the stack: back edge, handled by the FK-deferral pass below
		}
		state[id] = 1
		stack = append(stack, id)

		table := s.Tables[id]
		for _, fkID := range table.ForeignKeyIDs {
			fk := s.ForeignKeys[fkID]
			target := fk.ReferencedTableID
			if target == id || !inSet[target] {
				continue
			}
			if state[target] == 1 {
				// back edge into the current DFS stack: defer this FK
				// instead of following it, breaking the cycle.
				deferredFKs = append(deferredFKs, fkID)
				continue
			}
			visit(target, stack)
		}

		state[id] = 2
		order = append(order, id)
	}

	for _, id := range tableIDs {
		visit(id, nil)
	}

	return order, deferredFKs
}
