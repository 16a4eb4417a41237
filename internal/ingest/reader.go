// Package ingest parses uploaded CSV and Excel bytes into a typed table:
// duplicate rows removed, numeric columns recognized, and free-text
// columns promoted to temporal when most of their values parse as dates.
package ingest

import (
	"bytes"
	"encoding/csv"
	"log"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"dataprism/domain/profile"
	"dataprism/internal/errors"
	"dataprism/internal/sanitize"
)

// MaxSampleRows caps the row sample retained for later analysis,
// independent of table size.
const MaxSampleRows = 5000

// dateThreshold is the fraction of non-null values that must parse as
// dates before a free-text column is promoted to temporal. Strictly more
// than half: a column at exactly 50% stays categorical.
const dateThreshold = 0.5

// dateLayouts are tried in order against each candidate value. Mixed
// layouts within one column are tolerated.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01/02/2006 15:04",
	"02-Jan-2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// Ingest parses raw file bytes into a typed table, dispatching on the
// declared filename's extension. It returns the table and the number of
// exact-duplicate rows that were removed.
func Ingest(raw []byte, filename string) (*Table, int, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	var rows [][]string
	var err error
	switch ext {
	case ".csv":
		rows, err = readCSV(raw)
	case ".xlsx", ".xls":
		rows, err = readExcel(raw)
	default:
		return nil, 0, errors.UnsupportedFormat(ext)
	}
	if err != nil {
		return nil, 0, err
	}

	if len(rows) == 0 {
		return nil, 0, errors.ParseError("file has no header row", nil)
	}

	table, removed := buildTable(rows)
	log.Printf("[Ingest] %s parsed (%d columns, %d rows, %d duplicates removed)",
		strings.ToUpper(strings.TrimPrefix(ext, ".")), len(table.Columns), len(table.Rows), removed)
	return table, removed, nil
}

// Records converts the first max table rows into sanitized row maps, the
// sample shape stored alongside the profile.
func Records(t *Table, max int) []profile.Row {
	n := len(t.Rows)
	if max > 0 && n > max {
		n = max
	}
	records := make([]profile.Row, n)
	for i := 0; i < n; i++ {
		rec := make(profile.Row, len(t.Columns))
		for j, name := range t.Columns {
			rec[name] = sanitize.Sanitize(t.Rows[i][j])
		}
		records[i] = rec
	}
	return records
}

func readCSV(raw []byte) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.ParseError("failed to parse CSV file", err)
	}
	return rows, nil
}

func readExcel(raw []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.ParseError("failed to open Excel file", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.ParseError("Excel file has no sheets", nil)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.ParseError("failed to read Excel sheet", err)
	}
	return rows, nil
}

// buildTable trims cells, drops exact-duplicate rows, and types each
// column: numeric when every non-empty value parses as a number, temporal
// when the date heuristic fires, categorical text otherwise.
func buildTable(rows [][]string) (*Table, int) {
	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, h := range headerRow {
		headers[i] = strings.TrimSpace(h)
	}

	var dataRows [][]string
	seen := make(map[string]struct{})
	removed := 0
	for _, row := range rows[1:] {
		cells := make([]string, len(headers))
		for j := range headers {
			if j < len(row) {
				cells[j] = strings.TrimSpace(row[j])
			}
		}
		key := strings.Join(cells, "\x1f")
		if _, dup := seen[key]; dup {
			removed++
			continue
		}
		seen[key] = struct{}{}
		dataRows = append(dataRows, cells)
	}

	table := &Table{
		Columns: headers,
		Kinds:   make([]profile.ColumnKind, len(headers)),
		Rows:    make([][]any, len(dataRows)),
	}
	for i := range table.Rows {
		table.Rows[i] = make([]any, len(headers))
	}

	for col := range headers {
		typeColumn(table, dataRows, col)
	}
	return table, removed
}

func typeColumn(t *Table, raw [][]string, col int) {
	nonEmpty := 0
	numericCount := 0
	intCount := 0
	dateCount := 0

	for _, row := range raw {
		v := row[col]
		if v == "" {
			continue
		}
		nonEmpty++
		if _, err := strconv.ParseInt(v, 10, 64); err == nil {
			intCount++
			numericCount++
		} else if _, err := strconv.ParseFloat(v, 64); err == nil {
			numericCount++
		}
		if _, ok := parseDate(v); ok {
			dateCount++
		}
	}

	switch {
	case nonEmpty > 0 && numericCount == nonEmpty:
		t.Kinds[col] = profile.KindNumeric
		asInt := intCount == nonEmpty
		for i, row := range raw {
			v := row[col]
			if v == "" {
				continue
			}
			if asInt {
				n, _ := strconv.ParseInt(v, 10, 64)
				t.Rows[i][col] = n
			} else {
				f, _ := strconv.ParseFloat(v, 64)
				t.Rows[i][col] = f
			}
		}
	case nonEmpty > 0 && float64(dateCount) > float64(nonEmpty)*dateThreshold:
		t.Kinds[col] = profile.KindTemporal
		for i, row := range raw {
			v := row[col]
			if v == "" {
				continue
			}
			if ts, ok := parseDate(v); ok {
				t.Rows[i][col] = ts
			}
			// values that fail to parse in a promoted column stay missing
		}
	default:
		t.Kinds[col] = profile.KindCategorical
		for i, row := range raw {
			if v := row[col]; v != "" {
				t.Rows[i][col] = v
			}
		}
	}
}

func parseDate(v string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, v); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
