package differ

import (
	"github.com/lockplane/schemacore/dialect"
	"github.com/lockplane/schemacore/sqlir"
)

// Diff computes the ordered []MigrationStep that transforms previous into
// next, following the ten-phase ordering contract from spec §4.2:
//
//  1. drop foreign keys that reference something about to change
//  2. drop indexes that would conflict with column changes
//  3. drop tables and views no longer present
//  4. create namespaces, extensions, enums
//  5. create tables (FK-dependency order; cycles deferred to phase 9)
//  6. alter enums (add variants before any column default references them)
//  7. alter tables
//  8. create remaining indexes
//  9. add foreign keys (including deferred cyclic ones from phase 5)
//  10. drop enums no longer used
func Diff(previous, next *sqlir.Schema, ad dialect.Adapter) []MigrationStep {
	var steps []MigrationStep

	prevTablesByKey := indexTablesByKey(previous)
	nextTablesByKey := indexTablesByKey(next)
	prevEnumsByKey := indexEnumsByKey(previous)
	nextEnumsByKey := indexEnumsByKey(next)
	prevNamespaces := indexNamespacesByName(previous)
	nextNamespaces := indexNamespacesByName(next)
	prevSeqByKey := indexSequencesByKey(previous)
	nextSeqByKey := indexSequencesByKey(next)
	prevViewsByKey := indexViewsByKey(previous)
	nextViewsByKey := indexViewsByKey(next)
	prevUDTsByKey := indexUDTsByKey(previous)
	nextUDTsByKey := indexUDTsByKey(next)
	prevExtByName := indexExtensionsByName(previous)
	nextExtByName := indexExtensionsByName(next)

	var matchedTables []struct{ prev, next sqlir.TableID }
	var droppedTables []sqlir.TableID
	var createdTables []sqlir.TableID

	for _, key := range sortedEntityKeys(nextTablesByKey) {
		nextID := nextTablesByKey[key]
		if prevID, ok := prevTablesByKey[key]; ok {
			matchedTables = append(matchedTables, struct{ prev, next sqlir.TableID }{prev: prevID, next: nextID})
		} else {
			createdTables = append(createdTables, nextID)
		}
	}
	for _, key := range sortedEntityKeys(prevTablesByKey) {
		prevID := prevTablesByKey[key]
		if _, ok := nextTablesByKey[key]; !ok {
			droppedTables = append(droppedTables, prevID)
		}
	}

	tableDiffs := make([]tableDiff, len(matchedTables))
	for i, m := range matchedTables {
		tableDiffs[i] = diffOneTable(previous, next, previous.Table(m.prev), next.Table(m.next), ad)
	}

	// Phase 1: drop foreign keys on tables being dropped, and on matched
	// tables whose FKs changed or were removed (defer the "add" side to
	// phase 9).
	for _, id := range droppedTables {
		for _, fk := range previous.Table(id).ForeignKeys() {
			steps = append(steps, MigrationStep{
				Kind: StepDropForeignKey, TableName: previous.Table(id).Name(), ForeignKey: fk.Get(),
			})
		}
	}
	for _, td := range tableDiffs {
		if td.ForcesRewrite {
			continue // folded into the RedefineTables step instead
		}
		for _, fk := range td.ForeignKeys.Dropped {
			steps = append(steps, MigrationStep{Kind: StepDropForeignKey, TableName: td.TableName, ForeignKey: fk})
		}
		for _, r := range td.ForeignKeys.Renamed {
			steps = append(steps, MigrationStep{
				Kind: StepRenameForeignKey, TableName: td.TableName, OldForeignKey: r.Old, ForeignKey: r.New,
			})
		}
	}

	// Phase 2: drop indexes that are going away or whose table will be
	// dropped.
	for _, id := range droppedTables {
		for _, idx := range previous.Table(id).Indexes() {
			steps = append(steps, MigrationStep{Kind: StepDropIndex, TableName: previous.Table(id).Name(), Index: idx.Get()})
		}
	}
	for _, td := range tableDiffs {
		if td.ForcesRewrite {
			continue
		}
		for _, idx := range td.Indexes.Dropped {
			steps = append(steps, MigrationStep{Kind: StepDropIndex, TableName: td.TableName, Index: idx})
		}
		for _, r := range td.Indexes.Renamed {
			steps = append(steps, MigrationStep{Kind: StepRenameIndex, TableName: td.TableName, OldIndex: r.Old, Index: r.New})
		}
	}

	// Phase 3: drop tables and views no longer present.
	for _, id := range droppedTables {
		steps = append(steps, MigrationStep{Kind: StepDropTable, Table: previous.Table(id).Get()})
	}
	for _, key := range sortedEntityKeys(prevViewsByKey) {
		prevID := prevViewsByKey[key]
		if _, ok := nextViewsByKey[key]; !ok {
			steps = append(steps, MigrationStep{Kind: StepDropView, View: previous.Views[prevID]})
		}
	}

	// Phase 4: create namespaces, extensions, enums.
	for _, name := range sortedStringKeys(nextNamespaces) {
		if !prevNamespaces[name] {
			steps = append(steps, MigrationStep{Kind: StepCreateSchema, NamespaceName: name})
		}
	}
	for _, name := range sortedStringKeys(nextExtByName) {
		id := nextExtByName[name]
		if prevID, ok := prevExtByName[name]; !ok {
			steps = append(steps, MigrationStep{Kind: StepCreateExtension, Extension: next.Extensions[id]})
		} else if next.Extensions[id].Version != previous.Extensions[prevID].Version {
			steps = append(steps, MigrationStep{Kind: StepAlterExtension, Extension: next.Extensions[id]})
		}
	}
	var alteredEnums []enumDiff
	for _, key := range sortedEntityKeys(nextEnumsByKey) {
		id := nextEnumsByKey[key]
		if prevID, ok := prevEnumsByKey[key]; !ok {
			steps = append(steps, MigrationStep{Kind: StepCreateEnum, Enum: next.Enums[id]})
		} else {
			alteredEnums = append(alteredEnums, diffEnumVariants(previous.Enums[prevID], next.Enums[id]))
		}
	}

	// Phase 5: create tables in FK-dependency order; defer cyclic FKs.
	order, deferredFKIDs := orderTablesForCreation(next, createdTables)
	deferred := make(map[sqlir.ForeignKeyID]bool, len(deferredFKIDs))
	for _, id := range deferredFKIDs {
		deferred[id] = true
	}
	for _, id := range order {
		table := next.Tables[id]
		var cols []sqlir.Column
		for _, cid := range table.ColumnIDs {
			cols = append(cols, next.Columns[cid])
		}
		var idxs []sqlir.Index
		for _, iid := range table.IndexIDs {
			idxs = append(idxs, next.Indexes[iid])
		}
		steps = append(steps, MigrationStep{Kind: StepCreateTable, Table: table, TableColumns: cols, TableIndexes: idxs})
		for _, fkID := range table.ForeignKeyIDs {
			if deferred[fkID] {
				continue
			}
			steps = append(steps, MigrationStep{
				Kind: StepAddForeignKey, TableName: table.Name, ForeignKey: next.ForeignKeys[fkID],
			})
		}
	}

	// Phase 6: alter enums (add variants before table alterations that
	// might reference the new variants as a default).
	for _, ed := range alteredEnums {
		if len(ed.AddedVariants) > 0 || len(ed.RemovedVariants) > 0 {
			steps = append(steps, MigrationStep{
				Kind: StepAlterEnum, Enum: ed.Enum, AddedVariants: ed.AddedVariants, RemovedVariants: ed.RemovedVariants,
			})
		}
	}

	// Phase 7: alter tables, folding rewrite-forcing diffs into a single
	// RedefineTables step (spec §4.3 groups same-transaction redefinitions
	// together so cross-table foreign keys stay valid throughout).
	var redefinitions []TableRedefinition
	for _, td := range tableDiffs {
		if td.ForcesRewrite {
			redefinitions = append(redefinitions, buildTableRedefinition(previous, next, td.PrevTable, td.NextTable))
			continue
		}
		if !td.hasAlterTableChanges() {
			continue
		}
		steps = append(steps, MigrationStep{Kind: StepAlterTable, TableName: td.TableName, Changes: td.toAlterTableChanges()})
	}
	if len(redefinitions) > 0 {
		steps = append(steps, MigrationStep{Kind: StepRedefineTables, Redefines: redefinitions})
	}

	// Phase 8: create remaining indexes (new tables' own indexes were
	// emitted inline with CreateTable by convention of most dialects'
	// renderers, but matched-table additions land here).
	for _, td := range tableDiffs {
		if td.ForcesRewrite {
			continue
		}
		for _, idx := range td.Indexes.Added {
			steps = append(steps, MigrationStep{Kind: StepCreateIndex, TableName: td.TableName, Index: idx})
		}
	}

	// Phase 9: add foreign keys for matched tables, plus the deferred
	// cyclic ones from phase 5.
	for _, td := range tableDiffs {
		if td.ForcesRewrite {
			continue
		}
		for _, fk := range td.ForeignKeys.Added {
			steps = append(steps, MigrationStep{Kind: StepAddForeignKey, TableName: td.TableName, ForeignKey: fk})
		}
	}
	for _, fkID := range deferredFKIDs {
		fk := next.ForeignKeys[fkID]
		steps = append(steps, MigrationStep{Kind: StepAddForeignKey, TableName: next.Tables[fk.TableID].Name, ForeignKey: fk})
	}

	// sequences and user-defined types: created/altered alongside phase 4,
	// dropped alongside phase 10, since neither participates in FK
	// ordering.
	for _, key := range sortedEntityKeys(nextSeqByKey) {
		id := nextSeqByKey[key]
		if _, ok := prevSeqByKey[key]; !ok {
			steps = append(steps, MigrationStep{Kind: StepCreateSequence, Sequence: next.Sequences[id]})
		}
	}
	for _, key := range sortedEntityKeys(nextUDTsByKey) {
		id := nextUDTsByKey[key]
		if prevID, ok := prevUDTsByKey[key]; !ok {
			steps = append(steps, MigrationStep{Kind: StepCreateUserDefinedType, UDT: next.UserDefinedTypes[id]})
		} else if next.UserDefinedTypes[id].Definition != previous.UserDefinedTypes[prevID].Definition {
			steps = append(steps, MigrationStep{Kind: StepAlterUserDefinedType, UDT: next.UserDefinedTypes[id]})
		}
	}
	for _, key := range sortedEntityKeys(nextViewsByKey) {
		id := nextViewsByKey[key]
		if prevID, ok := prevViewsByKey[key]; !ok {
			steps = append(steps, MigrationStep{Kind: StepCreateView, View: next.Views[id]})
		} else if next.Views[id].Definition != previous.Views[prevID].Definition {
			steps = append(steps, MigrationStep{Kind: StepAlterView, View: next.Views[id]})
		}
	}

	// Phase 10: drop enums no longer used, and sequences/extensions/UDTs
	// no longer present.
	for _, key := range sortedEntityKeys(prevEnumsByKey) {
		id := prevEnumsByKey[key]
		if _, ok := nextEnumsByKey[key]; !ok {
			steps = append(steps, MigrationStep{Kind: StepDropEnum, Enum: previous.Enums[id]})
		}
	}
	for _, key := range sortedEntityKeys(prevSeqByKey) {
		id := prevSeqByKey[key]
		if _, ok := nextSeqByKey[key]; !ok {
			steps = append(steps, MigrationStep{Kind: StepDropSequence, Sequence: previous.Sequences[id]})
		}
	}
	for _, key := range sortedEntityKeys(prevUDTsByKey) {
		id := prevUDTsByKey[key]
		if _, ok := nextUDTsByKey[key]; !ok {
			steps = append(steps, MigrationStep{Kind: StepDropUserDefinedType, UDT: previous.UserDefinedTypes[id]})
		}
	}
	for _, name := range sortedStringKeys(prevExtByName) {
		id := prevExtByName[name]
		if _, ok := nextExtByName[name]; !ok {
			steps = append(steps, MigrationStep{Kind: StepDropExtension, Extension: previous.Extensions[id]})
		}
	}

	return steps
}
