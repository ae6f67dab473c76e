package differ

import (
	"github.com/lockplane/schemacore/dialect"
	"github.com/lockplane/schemacore/sqlir"
)

// tableDiff is the internal per-table result before it is either emitted
// as an AlterTable step or folded into a RedefineTables step.
type tableDiff struct {
	TableName     string
	PrevTable     sqlir.TableWalker
	NextTable     sqlir.TableWalker
	Columns       columnDiffResult
	Indexes       indexDiffResult
	ForeignKeys   foreignKeyDiffResult
	PrimaryKey    *primaryKeyChange
	ForcesRewrite bool
}

type primaryKeyChange struct {
	Kind TableChangeKind // TCAddPrimaryKey, TCDropPrimaryKey, or TCRenamePrimaryKey
	Prev sqlir.Index
	Next sqlir.Index
}

func diffOneTable(prevSchema, nextSchema *sqlir.Schema, prevTable, nextTable sqlir.TableWalker, ad dialect.Adapter) tableDiff {
	td := tableDiff{
		TableName: nextTable.Name(),
		PrevTable: prevTable,
		NextTable: nextTable,
		Columns:   diffColumns(prevSchema, nextSchema, prevTable, nextTable, ad),
		Indexes:   diffIndexes(prevTable, nextTable),
	}
	if !ad.SupportsInPlaceAlter() {
		if len(td.Columns.Dropped) > 0 {
			td.ForcesRewrite = true
		}
	}
	td.ForeignKeys = diffForeignKeys(prevTable, nextTable)
	if !ad.SupportsInPlaceAlter() && len(td.ForeignKeys.Dropped) > 0 {
		td.ForcesRewrite = true
	}
	if td.Columns.ForcesRewrite {
		td.ForcesRewrite = true
	}

	prevPK, prevHasPK := prevTable.PrimaryKey()
	nextPK, nextHasPK := nextTable.PrimaryKey()
	switch {
	case !prevHasPK && nextHasPK:
		td.PrimaryKey = &primaryKeyChange{Kind: TCAddPrimaryKey, Next: nextPK.Get()}
	case prevHasPK && !nextHasPK:
		td.PrimaryKey = &primaryKeyChange{Kind: TCDropPrimaryKey, Prev: prevPK.Get()}
	case prevHasPK && nextHasPK:
		structurallySame := indexStructurallyEqual(prevPK.Get(), nextPK.Get())
		switch {
		case structurallySame && prevPK.Name() != nextPK.Name():
			td.PrimaryKey = &primaryKeyChange{Kind: TCRenamePrimaryKey, Prev: prevPK.Get(), Next: nextPK.Get()}
		case !structurallySame:
			// the key's column set changed: drop the old one and let the
			// new one flow through as a regular index addition, since it
			// is structurally just another unique index to (re)create.
			td.PrimaryKey = &primaryKeyChange{Kind: TCDropPrimaryKey, Prev: prevPK.Get()}
			td.Indexes.Added = append(td.Indexes.Added, nextPK.Get())
		}
	}

	return td
}

// hasAlterTableChanges reports whether this diff has anything belonging in
// a StepAlterTable step specifically (columns and the primary key).
// Index and foreign-key changes are emitted as their own step kinds and
// don't factor in here.
func (td tableDiff) hasAlterTableChanges() bool {
	return len(td.Columns.Added) > 0 || len(td.Columns.Dropped) > 0 || len(td.Columns.Altered) > 0 ||
		td.PrimaryKey != nil
}

// toAlterTableChanges flattens a tableDiff into the []TableChange payload
// of a StepAlterTable step (columns + primary key changes only — indexes
// and foreign keys are emitted as their own step kinds per the ordering
// contract in §4.2).
func (td tableDiff) toAlterTableChanges() []TableChange {
	var changes []TableChange
	for _, c := range td.Columns.Added {
		changes = append(changes, TableChange{Kind: TCAddColumn, Column: c})
	}
	changes = append(changes, td.Columns.Altered...)
	for _, c := range td.Columns.Dropped {
		changes = append(changes, TableChange{Kind: TCDropColumn, Column: c})
	}
	if td.PrimaryKey != nil {
		changes = append(changes, TableChange{
			Kind:           td.PrimaryKey.Kind,
			PrevPrimaryKey: td.PrimaryKey.Prev,
			NextPrimaryKey: td.PrimaryKey.Next,
		})
	}
	return changes
}
