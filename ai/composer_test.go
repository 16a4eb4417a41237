package ai

import (
	"strings"
	"testing"

	"dataprism/domain/core"
	"dataprism/domain/profile"
)

func sampleProfile() profile.DatasetProfile {
	mean := 150.0
	median := 120.0
	min := 100.0
	max := 250.0
	return profile.DatasetProfile{
		ID:          core.ID("ds-1"),
		Filename:    "sales.csv",
		RowCount:    3,
		ColumnCount: 2,
		Columns: []profile.ColumnProfile{
			{
				Name: "sales", Kind: profile.KindNumeric,
				Min: min, Max: max, Mean: &mean, Median: &median,
			},
			{
				Name: "region", Kind: profile.KindCategorical,
				TopValues: profile.TopValues{{Value: "north", Count: 2}, {Value: "south", Count: 1}},
			},
		},
		DateRange: &profile.DateRange{Column: "date", Start: "2024-01-01T00:00:00Z", End: "2024-03-01T00:00:00Z"},
		DataQuality: profile.DataQuality{
			TotalNulls:        1,
			DuplicatesRemoved: 2,
		},
		Rows: []profile.Row{
			{"sales": int64(100), "region": "north"},
			{"sales": int64(250), "region": "south"},
			{"sales": nil, "region": "north"},
		},
	}
}

func TestComposePromptDeterministic(t *testing.T) {
	p := sampleProfile()
	first := ComposePrompt(p, "what drives sales?")
	second := ComposePrompt(p, "what drives sales?")
	if first != second {
		t.Fatal("identical inputs must yield identical prompt text")
	}
}

func TestComposePromptContents(t *testing.T) {
	prompt := ComposePrompt(sampleProfile(), "what drives sales?")

	for _, want := range []string{
		"File: sales.csv",
		"Rows: 3 | Columns: 2",
		`"column":"date"`,
		`"duplicates_removed":2`,
		"- sales (numeric): min=100, max=250, mean=150, median=120",
		`top values={"north":2,"south":1}`,
		"USER QUERY: what drives sales?",
		"structured JSON format",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestComposePromptSampleRendered(t *testing.T) {
	prompt := ComposePrompt(sampleProfile(), "q")
	if !strings.Contains(prompt, "north") || !strings.Contains(prompt, "250") {
		t.Error("prompt should include sample row values")
	}
	if !strings.Contains(prompt, "NaN") {
		t.Error("missing cells should render as NaN in the sample")
	}
}

func TestComposePromptOmitsIrrelevantStats(t *testing.T) {
	p := profile.DatasetProfile{
		Filename:    "x.csv",
		RowCount:    1,
		ColumnCount: 1,
		Columns: []profile.ColumnProfile{
			{Name: "label", Kind: profile.KindCategorical,
				TopValues: profile.TopValues{{Value: "a", Count: 1}}},
		},
		Rows: []profile.Row{{"label": "a"}},
	}
	prompt := ComposePrompt(p, "q")
	if strings.Contains(prompt, "mean=") {
		t.Error("categorical column must not emit a mean")
	}
	if !strings.Contains(prompt, "Date Range: null") {
		t.Error("absent date range should render as null")
	}
}
