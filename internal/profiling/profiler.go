// Package profiling computes per-column descriptive statistics over a
// typed table. It is pure and synchronous: no I/O, no shared state, safe
// to run concurrently on distinct tables.
package profiling

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"dataprism/domain/profile"
	"dataprism/internal/ingest"
	"dataprism/internal/sanitize"
)

const topValueLimit = 5

// Profile classifies every column by its storage kind and computes the
// matching statistics branch. The returned quality block reports total
// nulls and exact-duplicate rows found in the given table; callers that
// deduplicate before profiling fold their own removed count in.
func Profile(t *ingest.Table) ([]profile.ColumnProfile, *profile.DateRange, profile.DataQuality) {
	columns := make([]profile.ColumnProfile, 0, len(t.Columns))
	totalNulls := 0
	var dateRange *profile.DateRange

	for idx, name := range t.Columns {
		cells := t.ColumnValues(idx)
		col := profile.ColumnProfile{
			Name:        name,
			Kind:        t.Kinds[idx],
			NullCount:   countNulls(cells),
			UniqueCount: countUnique(cells),
		}
		totalNulls += col.NullCount

		switch t.Kinds[idx] {
		case profile.KindNumeric:
			profileNumeric(&col, cells)
		case profile.KindTemporal:
			profileTemporal(&col, cells)
			if dateRange == nil {
				dateRange = &profile.DateRange{
					Column: name,
					Start:  asStringOrEmpty(col.Min),
					End:    asStringOrEmpty(col.Max),
				}
			}
		default:
			profileCategorical(&col, cells)
		}

		columns = append(columns, col)
	}

	quality := profile.DataQuality{
		TotalNulls:      totalNulls,
		DuplicatesFound: countDuplicateRows(t),
	}
	return columns, dateRange, quality
}

// profileNumeric computes min, max, mean, median, and sample standard
// deviation (n-1 denominator, matching the source system's convention)
// over non-null values. Every statistic is sanitized before storage, so a
// non-finite result is erased rather than persisted.
func profileNumeric(col *profile.ColumnProfile, cells []any) {
	floats := make([]float64, 0, len(cells))
	allInt := true
	for _, c := range cells {
		switch v := c.(type) {
		case int64:
			floats = append(floats, float64(v))
		case float64:
			floats = append(floats, v)
			allInt = false
		}
	}
	if len(floats) == 0 {
		return
	}

	if min, err := stats.Min(floats); err == nil {
		col.Min = numericStat(min, allInt)
	}
	if max, err := stats.Max(floats); err == nil {
		col.Max = numericStat(max, allInt)
	}
	if mean, err := stats.Mean(floats); err == nil {
		col.Mean = sanitize.SanitizeFloat(mean)
	}
	if median, err := stats.Median(floats); err == nil {
		col.Median = sanitize.SanitizeFloat(median)
	}
	col.StdDev = sanitize.SanitizeFloat(stat.StdDev(floats, nil))
}

func profileTemporal(col *profile.ColumnProfile, cells []any) {
	var min, max time.Time
	found := false
	for _, c := range cells {
		ts, ok := c.(time.Time)
		if !ok {
			continue
		}
		if !found || ts.Before(min) {
			min = ts
		}
		if !found || ts.After(max) {
			max = ts
		}
		found = true
	}
	if !found {
		return
	}
	col.Min = min.Format(time.RFC3339)
	col.Max = max.Format(time.RFC3339)
}

// profileCategorical keeps the top entries of the frequency table over
// stringified non-null values, descending by count with ties broken by
// first-encountered order.
func profileCategorical(col *profile.ColumnProfile, cells []any) {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	order := 0
	for _, c := range cells {
		if c == nil {
			continue
		}
		key := stringify(c)
		if _, ok := counts[key]; !ok {
			firstSeen[key] = order
			order++
		}
		counts[key]++
	}

	entries := make(profile.TopValues, 0, len(counts))
	for v, n := range counts {
		entries = append(entries, profile.ValueCount{Value: v, Count: n})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return firstSeen[entries[i].Value] < firstSeen[entries[j].Value]
	})
	if len(entries) > topValueLimit {
		entries = entries[:topValueLimit]
	}
	if len(entries) > 0 {
		col.TopValues = entries
	}
}

func countNulls(cells []any) int {
	n := 0
	for _, c := range cells {
		if c == nil {
			n++
		}
	}
	return n
}

// countUnique counts distinct non-null values, plus one bucket for null
// when the column has any missing values.
func countUnique(cells []any) int {
	distinct := make(map[string]struct{})
	hasNull := false
	for _, c := range cells {
		if c == nil {
			hasNull = true
			continue
		}
		distinct[stringify(c)] = struct{}{}
	}
	n := len(distinct)
	if hasNull {
		n++
	}
	return n
}

func countDuplicateRows(t *ingest.Table) int {
	seen := make(map[string]struct{}, len(t.Rows))
	dups := 0
	for _, row := range t.Rows {
		parts := make([]string, len(row))
		for i, c := range row {
			if c == nil {
				parts[i] = "\x00"
			} else {
				parts[i] = stringify(c)
			}
		}
		key := strings.Join(parts, "\x1f")
		if _, ok := seen[key]; ok {
			dups++
			continue
		}
		seen[key] = struct{}{}
	}
	return dups
}

func stringify(c any) string {
	switch v := c.(type) {
	case string:
		return v
	case time.Time:
		return v.Format(time.RFC3339)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func numericStat(v float64, asInt bool) any {
	s := sanitize.SanitizeFloat(v)
	if s == nil {
		return nil
	}
	if asInt {
		return int64(*s)
	}
	return *s
}

func asStringOrEmpty(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
