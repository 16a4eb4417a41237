// Package report renders a stored analysis record to a PDF document.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"dataprism/domain/analysis"
	"dataprism/domain/profile"
)

const maxChartTableRows = 25

// Render writes a PDF report for one analysis record to w. The dataset
// summary is optional; when present a data overview section is included.
func Render(w io.Writer, rec analysis.Record, dataset *profile.DatasetProfile) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(19, 19, 19)
	pdf.SetAutoPageBreak(true, 19)
	pdf.AddPage()

	res := rec.Result

	title(pdf, "Data Analysis Report")
	meta(pdf, fmt.Sprintf("Generated: %s", time.Now().UTC().Format("January 2, 2006 at 15:04 UTC")))
	pdf.Ln(8)

	heading(pdf, "Executive Summary")
	body(pdf, fmt.Sprintf("Query: %s", orDefault(res.QueryUnderstood, rec.Query)))
	body(pdf, fmt.Sprintf("Analysis Type: %s", res.AnalysisType))
	pdf.Ln(4)

	if dataset != nil {
		heading(pdf, "Data Overview")
		body(pdf, fmt.Sprintf("File: %s", dataset.Filename))
		body(pdf, fmt.Sprintf("Dimensions: %d rows x %d columns", dataset.RowCount, dataset.ColumnCount))
		if dataset.DateRange != nil {
			body(pdf, fmt.Sprintf("Date Range: %s to %s", dataset.DateRange.Start, dataset.DateRange.End))
		}
		pdf.Ln(4)
	}

	heading(pdf, "Analysis Findings")
	for i, finding := range res.Summary {
		body(pdf, fmt.Sprintf("%d. %s", i+1, finding))
	}
	pdf.Ln(4)

	if len(res.Visualization.Data) > 0 {
		heading(pdf, fmt.Sprintf("Visualization: %s", orDefault(res.Visualization.Title, "Chart")))
		meta(pdf, fmt.Sprintf("Chart Type: %s - %s", res.Visualization.ChartType, res.Visualization.Reason))
		chartTable(pdf, res.Visualization)
		pdf.Ln(4)
	}

	if res.Forecast.Available {
		heading(pdf, "Forecast")
		body(pdf, fmt.Sprintf("Horizon: %s | Confidence: %s",
			orDefault(res.Forecast.TimeHorizon, "N/A"), orDefault(res.Forecast.Confidence, "N/A")))
		forecastTable(pdf, res.Forecast)
		for _, sig := range res.Forecast.Signals {
			body(pdf, fmt.Sprintf("Signal [%s] %s: %s (%s)", sig.Impact, sig.Name, sig.Value, sig.Source))
		}
		pdf.Ln(4)
	}

	heading(pdf, "Agent Insight")
	insight(pdf, orDefault(res.Insight, "N/A"))
	pdf.Ln(4)

	if len(res.Recommendations) > 0 {
		heading(pdf, "Recommendations")
		for i, r := range res.Recommendations {
			body(pdf, fmt.Sprintf("%d. %s", i+1, r))
		}
	}

	return pdf.Output(w)
}

func chartTable(pdf *fpdf.Fpdf, viz analysis.Visualization) {
	headers := []string{}
	if len(viz.Data) > 0 {
		// First object fixes the column set, x key first when present.
		if viz.XKey != "" {
			if _, ok := viz.Data[0][viz.XKey]; ok {
				headers = append(headers, viz.XKey)
			}
		}
		for _, k := range viz.YKeys {
			if _, ok := viz.Data[0][k]; ok && k != viz.XKey {
				headers = append(headers, k)
			}
		}
		if len(headers) == 0 {
			for k := range viz.Data[0] {
				headers = append(headers, k)
			}
		}
	}
	if len(headers) == 0 {
		return
	}

	rows := viz.Data
	if len(rows) > maxChartTableRows {
		rows = rows[:maxChartTableRows]
	}

	tableRow(pdf, headers, true)
	for _, row := range rows {
		cells := make([]string, len(headers))
		for i, h := range headers {
			cells[i] = clip(fmt.Sprintf("%v", row[h]), 30)
		}
		tableRow(pdf, cells, false)
	}
}

func forecastTable(pdf *fpdf.Fpdf, f analysis.Forecast) {
	if len(f.Data) == 0 {
		return
	}
	tableRow(pdf, []string{"Period", "Forecast", "Lower", "Upper"}, true)
	for _, p := range f.Data {
		tableRow(pdf, []string{
			p.Period,
			fmt.Sprintf("%v", p.Value),
			fmt.Sprintf("%v", p.Lower),
			fmt.Sprintf("%v", p.Upper),
		}, false)
	}
}

func tableRow(pdf *fpdf.Fpdf, cells []string, header bool) {
	width := 172.0 / float64(len(cells))
	if header {
		pdf.SetFont("Helvetica", "B", 8)
		pdf.SetFillColor(2, 132, 199)
		pdf.SetTextColor(255, 255, 255)
	} else {
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetFillColor(248, 250, 252)
		pdf.SetTextColor(30, 41, 59)
	}
	for _, c := range cells {
		pdf.CellFormat(width, 6, c, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
}

func title(pdf *fpdf.Fpdf, text string) {
	pdf.SetFont("Helvetica", "B", 22)
	pdf.SetTextColor(2, 132, 199)
	pdf.CellFormat(0, 12, text, "", 1, "L", false, 0, "")
}

func heading(pdf *fpdf.Fpdf, text string) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.SetTextColor(3, 105, 161)
	pdf.CellFormat(0, 9, text, "", 1, "L", false, 0, "")
}

func body(pdf *fpdf.Fpdf, text string) {
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(30, 41, 59)
	pdf.MultiCell(0, 5.5, text, "", "L", false)
}

func insight(pdf *fpdf.Fpdf, text string) {
	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(15, 23, 42)
	pdf.SetFillColor(224, 242, 254)
	pdf.MultiCell(0, 6.5, text, "", "L", true)
}

func meta(pdf *fpdf.Fpdf, text string) {
	pdf.SetFont("Helvetica", "I", 9)
	pdf.SetTextColor(100, 116, 139)
	pdf.CellFormat(0, 5, text, "", 1, "L", false, 0, "")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
