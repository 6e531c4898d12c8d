package xlsx

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"casetrend/internal/config"
)

// workbook builds an in-memory workbook with rows written to sheet.
func workbook(t *testing.T, sheet string, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if sheet != "Sheet1" {
		if _, err := f.NewSheet(sheet); err != nil {
			t.Fatalf("NewSheet: %v", err)
		}
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}
	return buf
}

func TestParse_FirstSheet(t *testing.T) {
	buf := workbook(t, "Sheet1", [][]any{
		{"Date", "State/UnionTerritory", "Confirmed"},
		{44256, "Kerala", 120},
		{},
		{"02-03-2021", "Goa", 7},
	})

	got, skipped, err := NewParser(Options{}).Parse(buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if skipped != 1 {
		t.Fatalf("skipped = %d, want 1", skipped)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if v, _ := got[0].Get("Date"); v != "2021-03-01" {
		t.Fatalf("serial date = %q, want 2021-03-01", v)
	}
	if v, _ := got[0].Get("Confirmed"); v != "120" {
		t.Fatalf("Confirmed = %q, want 120", v)
	}
	if v, _ := got[1].Get("Date"); v != "02-03-2021" {
		t.Fatalf("text date = %q, want unchanged", v)
	}
}

func TestParse_NamedSheet(t *testing.T) {
	buf := workbook(t, "cases", [][]any{
		{"Date", "Region"},
		{"01-03-2021", "Goa"},
	})

	opt := FromConfigOptions(config.Options{"sheet": "cases"})
	got, _, err := NewParser(opt).Parse(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}

	if _, _, err := NewParser(Options{Sheet: "missing"}).Parse(bytes.NewReader(buf.Bytes())); err == nil {
		t.Fatal("Parse(missing sheet): want error")
	}
}

func TestParse_NotAWorkbook(t *testing.T) {
	if _, _, err := NewParser(Options{}).Parse(bytes.NewBufferString("Date,Region\n")); err == nil {
		t.Fatal("Parse(csv bytes): want error")
	}
}

func TestSerialDate(t *testing.T) {
	tests := map[string]string{
		"44256":      "2021-03-01",
		"44256.5":    "2021-03-01",
		"01-03-2021": "01-03-2021",
		"0":          "0",
		"":           "",
	}
	for in, want := range tests {
		if got := serialDate(in); got != want {
			t.Errorf("serialDate(%q) = %q, want %q", in, got, want)
		}
	}
}
