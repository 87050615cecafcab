package sheet_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/dsc-courses/gradesync/internal/sheet"
)

func writeCSV(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeCSV(t, "grades.csv", "Email,Total Score\nann@example.edu,91.5\nbob@example.edu,\n")
	tbl, err := sheet.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !tbl.HasColumn("Total Score") || tbl.HasColumn("Nope") {
		t.Fatalf("columns = %v", tbl.Columns)
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(tbl.Rows))
	}
	if c := sheet.Numeric(tbl.Rows[0], "Total Score"); c.Missing || c.Value != 91.5 {
		t.Fatalf("numeric cell = %+v", c)
	}
	// Blank cells are missing, not zero.
	if c := sheet.Numeric(tbl.Rows[1], "Total Score"); !c.Missing {
		t.Fatalf("blank cell = %+v, want missing", c)
	}
}

func TestLoadCSVSkippedRows(t *testing.T) {
	path := writeCSV(t, "polls.csv", "User Email,Q1\nsummary,ignored\nann@example.edu,1\n")
	tbl, err := sheet.Load(path, sheet.WithSkippedRows(0))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(tbl.Rows) != 1 || tbl.Rows[0]["User Email"] != "ann@example.edu" {
		t.Fatalf("rows = %+v, want the summary row dropped", tbl.Rows)
	}
}

func TestLoadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "polls.xlsx")
	f := excelize.NewFile()
	sheetName := f.GetSheetName(0)
	rows := [][]interface{}{
		{"User Email", "Q1", "Q2"},
		{"ann@example.edu", 1, ""},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}

	tbl, err := sheet.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(tbl.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(tbl.Rows))
	}
	if c := sheet.Numeric(tbl.Rows[0], "Q1"); c.Missing || c.Value != 1 {
		t.Fatalf("Q1 = %+v", c)
	}
	if c := sheet.Numeric(tbl.Rows[0], "Q2"); !c.Missing {
		t.Fatalf("Q2 = %+v, want missing", c)
	}
}

func TestLoadUnknownFormat(t *testing.T) {
	path := writeCSV(t, "grades.ods", "a,b\n")
	if _, err := sheet.Load(path); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}
