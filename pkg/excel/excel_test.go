package excel

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestAddSheetEmptyRows(t *testing.T) {
	w := NewWorkbook()
	if err := w.AddSheet("Users", []string{"Name", "Surname", "Email"}, nil); err != nil {
		t.Fatalf("AddSheet: %v", err)
	}

	buf, err := w.Buffer()
	if err != nil {
		t.Fatalf("Buffer: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("empty workbook output")
	}

	// The file must round-trip with the header row intact.
	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Users")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want header only", len(rows))
	}
	if rows[0][0] != "Name" || rows[0][2] != "Email" {
		t.Errorf("unexpected header row: %v", rows[0])
	}
}

func TestMultiSheetWorkbook(t *testing.T) {
	w := NewWorkbook()
	if err := w.AddSummarySheet("Summary", "General Statistics", [][2]interface{}{
		{"Total Users", 42},
		{"Total Meetings", 7},
	}); err != nil {
		t.Fatalf("AddSummarySheet: %v", err)
	}
	if err := w.AddSheet("Attendance", []string{"Meeting", "Attendees"}, [][]interface{}{
		{"Kickoff", 12},
		{"Demo Day", 30},
	}); err != nil {
		t.Fatalf("AddSheet: %v", err)
	}

	buf, err := w.Buffer()
	if err != nil {
		t.Fatalf("Buffer: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	if got := f.GetSheetList(); len(got) != 2 {
		t.Fatalf("sheet list = %v, want 2 sheets", got)
	}
	val, err := f.GetCellValue("Summary", "B3")
	if err != nil {
		t.Fatalf("GetCellValue: %v", err)
	}
	if val != "42" {
		t.Errorf("Summary!B3 = %q, want 42", val)
	}
	rows, err := f.GetRows("Attendance")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("Attendance rows = %d, want 3", len(rows))
	}
}
