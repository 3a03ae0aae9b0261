package dataprocessing

// MergeResult is the outcome of the ERF merge. Flags carries the per-row
// provenance: true where the "normal" (metal loss) value was present. The
// flags never become a persisted column; callers read them transiently and
// drop them.
type MergeResult struct {
	Table  Table
	Flags  []bool
	Merged bool
}

// MergeERF collapses the two alternative ERF columns into a single "ERF"
// column sitting where the modified column was (or where the normal column
// was when it is the only source). Both source columns are removed.
//
// With both sources present the modified value wins when non-null and the
// normal value fills the gaps. The provenance flag records whether a normal
// value existed for the row, not which source was chosen; a row can carry
// a modified value and still flag true. That asymmetry is load-bearing for
// downstream consumers and is kept as-is.
func MergeERF(tbl Table) MergeResult {
	modIdx := tbl.Columns.Index(erfModifiedColumn)
	norIdx := tbl.Columns.Index(erfNormalColumn)

	flags := make([]bool, len(tbl.Rows))

	if modIdx < 0 && norIdx < 0 {
		// Nothing to merge; the flag defaults to true for downstream logic.
		for i := range flags {
			flags[i] = true
		}
		return MergeResult{Table: tbl, Flags: flags, Merged: false}
	}

	// The merged column takes the modified column's slot when it exists,
	// otherwise the normal column's.
	keepIdx, dropIdx := modIdx, norIdx
	if modIdx < 0 {
		keepIdx, dropIdx = norIdx, -1
	}

	columns := make(Schema, 0, len(tbl.Columns))
	for i, name := range tbl.Columns {
		switch i {
		case keepIdx:
			columns = append(columns, erfMergedColumn)
		case dropIdx:
			// removed
		default:
			columns = append(columns, name)
		}
	}

	rows := make([][]any, len(tbl.Rows))
	for r, row := range tbl.Rows {
		var merged any
		switch {
		case modIdx >= 0 && norIdx >= 0:
			if !isNullCell(row[modIdx]) {
				merged = row[modIdx]
			} else {
				merged = row[norIdx]
			}
			flags[r] = !isNullCell(row[norIdx])
		case modIdx >= 0:
			merged = row[modIdx]
			flags[r] = false
		default:
			merged = row[norIdx]
			flags[r] = true
		}

		cells := make([]any, 0, len(columns))
		for i, v := range row {
			switch i {
			case keepIdx:
				cells = append(cells, merged)
			case dropIdx:
				// removed
			default:
				cells = append(cells, v)
			}
		}
		rows[r] = cells
	}

	return MergeResult{
		Table:  Table{Columns: columns, Rows: rows},
		Flags:  flags,
		Merged: true,
	}
}
