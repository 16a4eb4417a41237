package profiling

import (
	"testing"
	"time"

	"dataprism/domain/profile"
	"dataprism/internal/ingest"
)

func numericTable(values []any) *ingest.Table {
	t := &ingest.Table{
		Columns: []string{"v"},
		Kinds:   []profile.ColumnKind{profile.KindNumeric},
		Rows:    make([][]any, len(values)),
	}
	for i, v := range values {
		t.Rows[i] = []any{v}
	}
	return t
}

func TestNumericColumnOrdering(t *testing.T) {
	cols, _, quality := Profile(numericTable([]any{
		float64(4), float64(1), float64(9), float64(2), float64(7),
	}))

	col := cols[0]
	if col.NullCount != 0 {
		t.Fatalf("nullCount = %d, want 0", col.NullCount)
	}

	min := col.Min.(float64)
	max := col.Max.(float64)
	if min != 1 || max != 9 {
		t.Errorf("min/max = %v/%v, want 1/9", min, max)
	}
	if col.Median == nil || *col.Median < min || *col.Median > max {
		t.Errorf("median %v outside [min, max]", col.Median)
	}
	if col.Mean == nil || *col.Mean < min || *col.Mean > max {
		t.Errorf("mean %v outside [min, max]", col.Mean)
	}
	if col.StdDev == nil || *col.StdDev <= 0 {
		t.Errorf("stddev = %v, want positive", col.StdDev)
	}
	if quality.TotalNulls != 0 {
		t.Errorf("totalNulls = %d, want 0", quality.TotalNulls)
	}
}

func TestIntegerColumnKeepsIntegerBounds(t *testing.T) {
	cols, _, _ := Profile(numericTable([]any{int64(10), int64(3), int64(5)}))

	if _, ok := cols[0].Min.(int64); !ok {
		t.Errorf("integer column min should stay integral, got %T", cols[0].Min)
	}
	if cols[0].Max.(int64) != 10 {
		t.Errorf("max = %v, want 10", cols[0].Max)
	}
}

func TestSingleValueStdDevErased(t *testing.T) {
	// Sample stddev of one value is NaN; sanitization erases it.
	cols, _, _ := Profile(numericTable([]any{float64(5)}))
	if cols[0].StdDev != nil {
		t.Errorf("stddev of single value = %v, want nil", *cols[0].StdDev)
	}
}

func TestNullAccounting(t *testing.T) {
	cols, _, quality := Profile(numericTable([]any{float64(1), nil, float64(2), nil, nil}))

	col := cols[0]
	if col.NullCount != 3 {
		t.Errorf("nullCount = %d, want 3", col.NullCount)
	}
	// 2 distinct values plus the null bucket.
	if col.UniqueCount != 3 {
		t.Errorf("uniqueCount = %d, want 3", col.UniqueCount)
	}
	if quality.TotalNulls != 3 {
		t.Errorf("totalNulls = %d, want 3", quality.TotalNulls)
	}
}

func TestCategoricalTopValues(t *testing.T) {
	values := []any{}
	for _, v := range []string{"b", "a", "a", "c", "b", "a", "d", "e", "f", "g"} {
		values = append(values, v)
	}
	tbl := &ingest.Table{
		Columns: []string{"cat"},
		Kinds:   []profile.ColumnKind{profile.KindCategorical},
		Rows:    make([][]any, len(values)),
	}
	for i, v := range values {
		tbl.Rows[i] = []any{v}
	}

	cols, _, _ := Profile(tbl)
	top := cols[0].TopValues

	if len(top) != 5 {
		t.Fatalf("topValues has %d entries, want 5", len(top))
	}
	if top[0].Value != "a" || top[0].Count != 3 {
		t.Errorf("top entry = %+v, want a:3", top[0])
	}
	// b and the singletons tie at lower counts; first-encountered wins.
	if top[1].Value != "b" || top[1].Count != 2 {
		t.Errorf("second entry = %+v, want b:2", top[1])
	}
	if top[2].Value != "c" {
		t.Errorf("tie broken out of encounter order: got %q", top[2].Value)
	}

	sum := 0
	for _, vc := range top {
		sum += vc.Count
	}
	if sum > len(values) {
		t.Errorf("top value counts sum %d exceeds row count %d", sum, len(values))
	}
}

func TestTemporalColumnAndDateRange(t *testing.T) {
	mk := func(s string) time.Time {
		ts, _ := time.Parse("2006-01-02", s)
		return ts
	}
	tbl := &ingest.Table{
		Columns: []string{"date", "sales"},
		Kinds:   []profile.ColumnKind{profile.KindTemporal, profile.KindNumeric},
		Rows: [][]any{
			{mk("2024-02-01"), float64(10)},
			{mk("2024-01-01"), float64(20)},
			{mk("2024-03-01"), float64(30)},
		},
	}

	cols, dateRange, _ := Profile(tbl)

	if cols[0].Min != "2024-01-01T00:00:00Z" || cols[0].Max != "2024-03-01T00:00:00Z" {
		t.Errorf("temporal min/max = %v/%v", cols[0].Min, cols[0].Max)
	}
	if dateRange == nil {
		t.Fatal("dateRange missing despite temporal column")
	}
	if dateRange.Column != "date" {
		t.Errorf("dateRange.Column = %q, want first temporal column", dateRange.Column)
	}
	if dateRange.Start != "2024-01-01T00:00:00Z" || dateRange.End != "2024-03-01T00:00:00Z" {
		t.Errorf("dateRange span = %s..%s", dateRange.Start, dateRange.End)
	}
}

func TestNoDateRangeWithoutTemporalColumn(t *testing.T) {
	_, dateRange, _ := Profile(numericTable([]any{float64(1)}))
	if dateRange != nil {
		t.Errorf("dateRange = %+v, want nil", dateRange)
	}
}

func TestDuplicatesFound(t *testing.T) {
	tbl := &ingest.Table{
		Columns: []string{"a", "b"},
		Kinds:   []profile.ColumnKind{profile.KindCategorical, profile.KindCategorical},
		Rows: [][]any{
			{"x", "y"},
			{"x", "y"},
			{"x", "z"},
			{"x", "y"},
		},
	}
	_, _, quality := Profile(tbl)
	if quality.DuplicatesFound != 2 {
		t.Errorf("duplicatesFound = %d, want 2", quality.DuplicatesFound)
	}
}

func TestEmptyNumericColumnHasNoStats(t *testing.T) {
	cols, _, _ := Profile(numericTable([]any{nil, nil}))
	col := cols[0]
	if col.Min != nil || col.Max != nil || col.Mean != nil || col.Median != nil || col.StdDev != nil {
		t.Errorf("all-null numeric column should carry no statistics: %+v", col)
	}
}
