package ingest

import (
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"dataprism/domain/profile"
	"dataprism/internal/errors"
)

func TestIngestRejectsUnknownExtension(t *testing.T) {
	_, _, err := Ingest([]byte("plain text"), "notes.txt")
	if err == nil {
		t.Fatal("expected error for .txt upload")
	}
	if errors.GetCode(err) != errors.CodeUnsupportedFormat {
		t.Errorf("error code = %s, want UNSUPPORTED_FORMAT", errors.GetCode(err))
	}
}

func TestIngestRejectsMalformedCSV(t *testing.T) {
	_, _, err := Ingest([]byte("a,\"b\nbroken"), "bad.csv")
	if err == nil {
		t.Fatal("expected parse error for malformed CSV")
	}
	if errors.GetCode(err) != errors.CodeParseError {
		t.Errorf("error code = %s, want PARSE_ERROR", errors.GetCode(err))
	}
}

func TestIngestRemovesDuplicateRows(t *testing.T) {
	csv := strings.Join([]string{
		"name,score",
		"alice,1",
		"bob,2",
		"alice,1",
		"carol,3",
		"bob,2",
	}, "\n")

	table, removed, err := Ingest([]byte(csv), "scores.csv")
	if err != nil {
		t.Fatal(err)
	}
	if removed != 2 {
		t.Errorf("duplicates removed = %d, want 2", removed)
	}
	if len(table.Rows) != 3 {
		t.Errorf("rows = %d, want 3", len(table.Rows))
	}
	if 5-len(table.Rows) != removed {
		t.Errorf("removed count %d does not match initial-final row delta", removed)
	}
}

func TestIngestTypesNumericColumns(t *testing.T) {
	csv := "id,amount,label\n1,10.5,x\n2,11.25,y\n3,9.0,x\n"
	table, _, err := Ingest([]byte(csv), "data.csv")
	if err != nil {
		t.Fatal(err)
	}

	if table.Kinds[0] != profile.KindNumeric {
		t.Errorf("id column kind = %s, want numeric", table.Kinds[0])
	}
	if _, ok := table.Rows[0][0].(int64); !ok {
		t.Errorf("all-integer column cell = %T, want int64", table.Rows[0][0])
	}
	if table.Kinds[1] != profile.KindNumeric {
		t.Errorf("amount column kind = %s, want numeric", table.Kinds[1])
	}
	if _, ok := table.Rows[0][1].(float64); !ok {
		t.Errorf("float column cell = %T, want float64", table.Rows[0][1])
	}
	if table.Kinds[2] != profile.KindCategorical {
		t.Errorf("label column kind = %s, want categorical", table.Kinds[2])
	}
}

func TestDatePromotionAboveThreshold(t *testing.T) {
	// 3 of 4 non-null values parse as dates (75% > 50%): promoted.
	csv := "when\n2024-01-01\n2024-02-01\nx\n2024-03-01\n"
	table, _, err := Ingest([]byte(csv), "dates.csv")
	if err != nil {
		t.Fatal(err)
	}
	if table.Kinds[0] != profile.KindTemporal {
		t.Fatalf("column kind = %s, want temporal", table.Kinds[0])
	}
	if _, ok := table.Rows[0][0].(time.Time); !ok {
		t.Errorf("promoted cell = %T, want time.Time", table.Rows[0][0])
	}
	// The unparseable value becomes missing rather than failing ingest.
	if table.Rows[2][0] != nil {
		t.Errorf("unparseable cell in promoted column = %v, want nil", table.Rows[2][0])
	}
}

func TestDatePromotionAtExactlyHalfStaysText(t *testing.T) {
	csv := "when\n2024-01-01\n2024-02-01\nfoo\nbar\n"
	table, _, err := Ingest([]byte(csv), "dates.csv")
	if err != nil {
		t.Fatal(err)
	}
	if table.Kinds[0] != profile.KindCategorical {
		t.Errorf("column kind = %s, want categorical at exactly 50%%", table.Kinds[0])
	}
}

func TestDatePromotionToleratesMixedLayouts(t *testing.T) {
	csv := "when\n2024-01-01\n01/15/2024\nJan 3, 2024\n"
	table, _, err := Ingest([]byte(csv), "dates.csv")
	if err != nil {
		t.Fatal(err)
	}
	if table.Kinds[0] != profile.KindTemporal {
		t.Errorf("mixed-layout column kind = %s, want temporal", table.Kinds[0])
	}
}

func TestIngestExcel(t *testing.T) {
	f := excelize.NewFile()
	rows := [][]any{
		{"region", "sales"},
		{"north", 100},
		{"south", 250},
		{"north", 100},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}

	table, removed, err := Ingest(buf.Bytes(), "report.xlsx")
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 {
		t.Errorf("duplicates removed = %d, want 1", removed)
	}
	if len(table.Rows) != 2 {
		t.Errorf("rows = %d, want 2", len(table.Rows))
	}
	if table.Kinds[1] != profile.KindNumeric {
		t.Errorf("sales column kind = %s, want numeric", table.Kinds[1])
	}
}

func TestIngestExcelRejectsCorruptBytes(t *testing.T) {
	_, _, err := Ingest([]byte("not a zip archive"), "broken.xlsx")
	if err == nil {
		t.Fatal("expected parse error for corrupt xlsx bytes")
	}
	if errors.GetCode(err) != errors.CodeParseError {
		t.Errorf("error code = %s, want PARSE_ERROR", errors.GetCode(err))
	}
}

func TestRecordsSanitizesAndCaps(t *testing.T) {
	csv := "name,score\na,1\nb,2\nc,3\n"
	table, _, err := Ingest([]byte(csv), "s.csv")
	if err != nil {
		t.Fatal(err)
	}

	records := Records(table, 2)
	if len(records) != 2 {
		t.Fatalf("records = %d, want capped at 2", len(records))
	}
	if records[0]["name"] != "a" {
		t.Errorf("records[0][name] = %v", records[0]["name"])
	}
	if records[0]["score"] != int64(1) {
		t.Errorf("records[0][score] = %v (%T), want int64(1)", records[0]["score"], records[0]["score"])
	}
}
