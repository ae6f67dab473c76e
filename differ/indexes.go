package differ

import "github.com/lockplane/schemacore/sqlir"

type indexDiffResult struct {
	Added   []sqlir.Index
	Dropped []sqlir.Index
	Renamed []struct{ Old, New sqlir.Index }
}

// diffIndexes matches indexes by name first; unmatched indexes then go
// through a structural pass (same columns + kind, different name) to
// recognize a rename instead of drop+create, per spec §4.2.
func diffIndexes(prevTable, nextTable sqlir.TableWalker) indexDiffResult {
	var res indexDiffResult

	prevByName := map[string]sqlir.IndexWalker{}
	for _, i := range prevTable.Indexes() {
		prevByName[i.Name()] = i
	}
	nextByName := map[string]sqlir.IndexWalker{}
	for _, i := range nextTable.Indexes() {
		nextByName[i.Name()] = i
	}

	var unmatchedPrev, unmatchedNext []sqlir.IndexWalker
	for _, pi := range prevTable.Indexes() {
		if _, ok := nextByName[pi.Name()]; !ok {
			unmatchedPrev = append(unmatchedPrev, pi)
		}
	}
	for _, ni := range nextTable.Indexes() {
		if _, ok := prevByName[ni.Name()]; !ok {
			unmatchedNext = append(unmatchedNext, ni)
		}
	}

	consumed := map[int]bool{}
	for _, ni := range unmatchedNext {
		matchedAt := -1
		for pi, pw := range unmatchedPrev {
			if consumed[pi] {
				continue
			}
			if indexStructurallyEqual(pw.Get(), ni.Get()) {
				matchedAt = pi
				break
			}
		}
		if matchedAt >= 0 {
			consumed[matchedAt] = true
			res.Renamed = append(res.Renamed, struct{ Old, New sqlir.Index }{
				Old: unmatchedPrev[matchedAt].Get(),
				New: ni.Get(),
			})
		} else {
			res.Added = append(res.Added, ni.Get())
		}
	}
	for pi, pw := range unmatchedPrev {
		if !consumed[pi] {
			res.Dropped = append(res.Dropped, pw.Get())
		}
	}

	return res
}

func indexStructurallyEqual(a, b sqlir.Index) bool {
	if a.Kind != b.Kind || len(a.Columns) != len(b.Columns) {
		return false
	}
	for i := range a.Columns {
		if a.Columns[i].ColumnID != b.Columns[i].ColumnID ||
			a.Columns[i].Descending != b.Columns[i].Descending {
			return false
		}
	}
	return true
}

type foreignKeyDiffResult struct {
	Added   []sqlir.ForeignKey
	Dropped []sqlir.ForeignKey
	Renamed []struct{ Old, New sqlir.ForeignKey }
}

func diffForeignKeys(prevTable, nextTable sqlir.TableWalker) foreignKeyDiffResult {
	var res foreignKeyDiffResult

	prevByName := map[string]sqlir.ForeignKeyWalker{}
	for _, fk := range prevTable.ForeignKeys() {
		prevByName[fk.Get().Name] = fk
	}
	nextByName := map[string]sqlir.ForeignKeyWalker{}
	for _, fk := range nextTable.ForeignKeys() {
		nextByName[fk.Get().Name] = fk
	}

	var unmatchedPrev, unmatchedNext []sqlir.ForeignKeyWalker
	for _, pfk := range prevTable.ForeignKeys() {
		if _, ok := nextByName[pfk.Get().Name]; !ok {
			unmatchedPrev = append(unmatchedPrev, pfk)
		}
	}
	for _, nfk := range nextTable.ForeignKeys() {
		if _, ok := prevByName[nfk.Get().Name]; !ok {
			unmatchedNext = append(unmatchedNext, nfk)
		}
	}

	consumed := map[int]bool{}
	for _, nfk := range unmatchedNext {
		matchedAt := -1
		for pi, pfk := range unmatchedPrev {
			if consumed[pi] {
				continue
			}
			if fkStructurallyEqual(pfk.Get(), nfk.Get()) {
				matchedAt = pi
				break
			}
		}
		if matchedAt >= 0 {
			consumed[matchedAt] = true
			res.Renamed = append(res.Renamed, struct{ Old, New sqlir.ForeignKey }{
				Old: unmatchedPrev[matchedAt].Get(),
				New: nfk.Get(),
			})
		} else {
			res.Added = append(res.Added, nfk.Get())
		}
	}
	for pi, pfk := range unmatchedPrev {
		if !consumed[pi] {
			res.Dropped = append(res.Dropped, pfk.Get())
		}
	}

	return res
}

func fkStructurallyEqual(a, b sqlir.ForeignKey) bool {
	if len(a.ConstrainedColumnIDs) != len(b.ConstrainedColumnIDs) {
		return false
	}
	for i := range a.ConstrainedColumnIDs {
		if a.ConstrainedColumnIDs[i] != b.ConstrainedColumnIDs[i] {
			return false
		}
	}
	return a.ReferencedTableID == b.ReferencedTableID && a.OnDelete == b.OnDelete && a.OnUpdate == b.OnUpdate
}
