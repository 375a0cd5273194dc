package export_test

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/playsift/levelscope/internal/export"
	"github.com/playsift/levelscope/internal/table"
)

func TestWorkbookBytes(t *testing.T) {
	sheets := []export.Sheet{
		{Name: "Top", Table: fixtureTable(), Settings: fixtureSettings()},
		{
			Name: "Churn",
			Table: &table.Table{
				Header: []string{"Level", "3 Days Churn"},
				Rows:   []table.Row{{"Level": "5", "3 Days Churn": "0.25"}},
			},
		},
	}
	b, err := export.WorkbookBytes(sheets)
	if err != nil {
		t.Fatalf("WorkbookBytes: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	if got := f.GetSheetList(); len(got) != 2 || got[0] != "Top" || got[1] != "Churn" {
		t.Fatalf("sheet list: %v", got)
	}
	if v, _ := f.GetCellValue("Top", "A1"); v != "Score" {
		t.Fatalf("Top!A1 = %q", v)
	}
	if v, _ := f.GetCellValue("Top", "B1"); v != "Lvl" {
		t.Fatalf("Top!B1 = %q", v)
	}
	if v, _ := f.GetCellValue("Top", "A2"); v != "90" {
		t.Fatalf("Top!A2 = %q", v)
	}
	if v, _ := f.GetCellValue("Top", "A3"); v != "-" {
		t.Fatalf("missing cell placeholder: %q", v)
	}
	// churn ratio renders as a percent string, not a bare number
	if v, _ := f.GetCellValue("Churn", "B2"); v != "25.00%" {
		t.Fatalf("Churn!B2 = %q", v)
	}
}

func TestWorkbookBytesNoSheets(t *testing.T) {
	if _, err := export.WorkbookBytes(nil); err == nil {
		t.Fatal("expected error for empty sheet list")
	}
}
