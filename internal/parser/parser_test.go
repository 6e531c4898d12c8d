package parser

import (
	"errors"
	"strings"
	"testing"

	"casetrend/internal/config"
)

func TestKindForPath(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"covid_19_india.csv", KindCSV},
		{"EXPORT.TSV", KindTSV},
		{"cases.ndjson", KindJSON},
		{"/tmp/cases.json", KindJSON},
		{"book.xlsx", KindXLSX},
		{"notes.txt", KindCSV},
	}
	for _, tt := range tests {
		got, err := KindForPath(tt.name)
		if err != nil || got != tt.want {
			t.Errorf("KindForPath(%q) = %q, %v; want %q", tt.name, got, err, tt.want)
		}
	}

	for _, name := range []string{"report.pdf", "noext", ""} {
		if _, err := KindForPath(name); !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("KindForPath(%q) error = %v, want ErrUnsupportedFormat", name, err)
		}
	}
}

func TestNew_Dispatch(t *testing.T) {
	p, err := New(KindAuto, "cases.tsv", nil)
	if err != nil {
		t.Fatalf("New(auto, tsv): %v", err)
	}
	recs, _, err := p.Parse(strings.NewReader("Date\tRegion\n01-03-2021\tGoa\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("len = %d, want 1", len(recs))
	}
	if v, _ := recs[0].Get("Region"); v != "Goa" {
		t.Fatalf("Region = %q, want Goa", v)
	}

	// An explicit kind wins over the extension.
	p, err = New(" JSON ", "cases.csv", config.Options{})
	if err != nil {
		t.Fatalf("New(json): %v", err)
	}
	recs, _, err = p.Parse(strings.NewReader(`[{"Region":"Goa"}]`))
	if err != nil || len(recs) != 1 {
		t.Fatalf("json Parse = %d records, %v", len(recs), err)
	}

	if _, err := New("", "cases.pdf", nil); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("New(auto, pdf) error = %v, want ErrUnsupportedFormat", err)
	}
	if _, err := New("parquet", "cases.csv", nil); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("New(parquet) error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestNew_CSVOptions(t *testing.T) {
	opt := config.Options{
		"comma":      ";",
		"header_map": map[string]any{"State": "Region"},
	}
	p, err := New(KindCSV, "", opt)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	recs, _, err := p.Parse(strings.NewReader("Date;State\n01-03-2021; Goa \n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if v, ok := recs[0].Get("Region"); !ok || v != "Goa" {
		t.Fatalf("Region = %q (%v), want trimmed Goa via header map", v, ok)
	}
}
