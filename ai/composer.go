// Package ai assembles analysis prompts and coerces model output back
// into typed records.
package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"

	"dataprism/domain/profile"
)

const (
	// promptSampleRows is how many stored sample rows are rendered into
	// the prompt.
	promptSampleRows = 50
	// promptSampleCols caps the rendered column count so very wide tables
	// do not blow up the prompt.
	promptSampleCols = 15
)

// ComposePrompt renders the fixed-format analysis prompt from a dataset
// profile and the user's query. It is pure: identical inputs always yield
// identical text, which keeps it testable and cacheable.
func ComposePrompt(p profile.DatasetProfile, userQuery string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "DATA CONTEXT:\n")
	fmt.Fprintf(&b, "File: %s\n", p.Filename)
	fmt.Fprintf(&b, "Rows: %d | Columns: %d\n", p.RowCount, p.ColumnCount)
	fmt.Fprintf(&b, "Date Range: %s\n", jsonRender(p.DateRange))
	fmt.Fprintf(&b, "Data Quality: %s\n", jsonRender(p.DataQuality))

	b.WriteString("\nCOLUMN STATISTICS:")
	for _, col := range p.Columns {
		b.WriteString(statLine(col))
	}

	fmt.Fprintf(&b, "\n\nSAMPLE DATA (first %d rows):\n", promptSampleRows)
	b.WriteString(renderSample(p))

	fmt.Fprintf(&b, "\nUSER QUERY: %s\n", userQuery)
	b.WriteString("\nAnalyze the data thoroughly and respond with the structured JSON format as specified.")

	return b.String()
}

// statLine emits one per-column summary line. Numeric columns carry their
// summary statistics, categorical columns their frequency table; a column
// lacking a statistic emits nothing for it.
func statLine(col profile.ColumnProfile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n- %s (%s): ", col.Name, col.Kind)

	if col.Kind == profile.KindNumeric && col.Min != nil {
		fmt.Fprintf(&b, "min=%v, max=%v, mean=%s, median=%s",
			col.Min, col.Max, floatOrNA(col.Mean), floatOrNA(col.Median))
	}
	if len(col.TopValues) > 0 {
		fmt.Fprintf(&b, "top values=%s", jsonRender(col.TopValues))
	}
	return b.String()
}

// renderSample draws the retained sample rows as an aligned plain-text
// table, columns in source order.
func renderSample(p profile.DatasetProfile) string {
	cols := make([]string, 0, len(p.Columns))
	for _, c := range p.Columns {
		cols = append(cols, c.Name)
		if len(cols) == promptSampleCols {
			break
		}
	}

	rows := p.Rows
	if len(rows) > promptSampleRows {
		rows = rows[:promptSampleRows]
	}

	var buf strings.Builder
	table := tablewriter.NewWriter(&buf)
	table.SetHeader(cols)
	table.SetBorder(false)
	table.SetColumnSeparator(" ")
	table.SetCenterSeparator(" ")
	table.SetHeaderLine(false)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)

	for _, row := range rows {
		cells := make([]string, len(cols))
		for i, name := range cols {
			cells[i] = cellString(row[name])
		}
		table.Append(cells)
	}
	table.Render()
	return buf.String()
}

func cellString(v any) string {
	if v == nil {
		return "NaN"
	}
	return fmt.Sprintf("%v", v)
}

func floatOrNA(f *float64) string {
	if f == nil {
		return "N/A"
	}
	return fmt.Sprintf("%v", *f)
}

func jsonRender(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(raw)
}
