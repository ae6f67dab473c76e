package differ

import (
	"github.com/lockplane/schemacore/dialect"
	"github.com/lockplane/schemacore/sqlir"
)

// diffColumns compares two tables' columns by name and returns the add,
// drop, and alter changes, plus whether any change forces a table
// redefinition (spec §4.3) on an adapter without in-place alteration. A
// "not castable" type change is not reported here; it is carried on the
// altered column's TypeChange.
type columnDiffResult struct {
	Added         []sqlir.Column
	Dropped       []sqlir.Column
	Altered       []TableChange
	ForcesRewrite bool // true if any change requires RedefineTables on this adapter
}

func diffColumns(prevSchema, nextSchema *sqlir.Schema, prevTable, nextTable sqlir.TableWalker, ad dialect.Adapter) columnDiffResult {
	var res columnDiffResult

	prevByName := map[string]sqlir.ColumnWalker{}
	for _, c := range prevTable.Columns() {
		prevByName[c.Name()] = c
	}
	nextByName := map[string]sqlir.ColumnWalker{}
	for _, c := range nextTable.Columns() {
		nextByName[c.Name()] = c
	}

	for _, nc := range nextTable.Columns() {
		pc, exists := prevByName[nc.Name()]
		if !exists {
			col := nc.Get()
			res.Added = append(res.Added, col)
			if !ad.SupportsInPlaceAlter() {
				if col.Arity == sqlir.Required && col.Default.Kind == sqlir.DefaultNone {
					res.ForcesRewrite = true
				}
			}
			continue
		}

		change, changed := diffOneColumn(pc.Get(), nc.Get(), ad)
		if changed {
			res.Altered = append(res.Altered, change)
			if !ad.SupportsInPlaceAlter() {
				res.ForcesRewrite = true
			}
		}
	}

	for _, pc := range prevTable.Columns() {
		if _, exists := nextByName[pc.Name()]; !exists {
			res.Dropped = append(res.Dropped, pc.Get())
			if !ad.SupportsInPlaceAlter() {
				res.ForcesRewrite = true
			}
		}
	}

	return res
}

func diffOneColumn(prev, next sqlir.Column, ad dialect.Adapter) (TableChange, bool) {
	var bits ColumnChangeBit
	var tc TypeChangeResult

	if prev.Arity != next.Arity {
		bits |= ChangeArity
	}
	if !DefaultsEqual(prev.Default, next.Default, ad) {
		bits |= ChangeDefault
	}
	if prev.AutoIncrement != next.AutoIncrement {
		bits |= ChangeAutoincrement
	}

	class := ad.ColumnTypeChange(prev.NativeType, next.NativeType)
	if class != dialect.NoTypeChange {
		bits |= ChangeTypeChanged
		tc = TypeChangeResult{Classified: true, Class: class}
	}

	// scalar -> list arity change is always Unexecutable per spec §4.5,
	// which the destructive checker consumes via the Arity bit alongside
	// the raw before/after arities on PrevColumn/NextColumn.

	if bits == 0 {
		return TableChange{}, false
	}

	return TableChange{
		Kind:       TCAlterColumn,
		PrevColumn: prev,
		NextColumn: next,
		Changes:    bits,
		TypeChange: tc,
	}, true
}
