package ingest

import "dataprism/domain/profile"

// Table is the typed tabular structure produced by parsing an upload.
// Cells are nil (missing), int64, float64, time.Time, or string, matching
// the column's kind.
type Table struct {
	Columns []string
	Kinds   []profile.ColumnKind
	Rows    [][]any
}

// ColumnValues returns the cells of column idx in row order.
func (t *Table) ColumnValues(idx int) []any {
	out := make([]any, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[idx]
	}
	return out
}
