// Package xlsx loads the first (or a named) worksheet of an Excel workbook as
// raw records. The first non-empty row is the header row.
package xlsx

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"casetrend/internal/config"
	"casetrend/internal/schema"
	"casetrend/pkg/records"
)

// Options configures the workbook parser.
type Options struct {
	// Sheet names the worksheet to read. Empty selects the first sheet.
	Sheet string
}

// FromConfigOptions reads "sheet" from a config options bag.
func FromConfigOptions(o config.Options) Options {
	return Options{Sheet: o.String("sheet", "")}
}

// Parser parses .xlsx workbooks.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// Parse reads the selected sheet. Cells are read unformatted so that numbers
// keep their full value; date cells stored as serial numbers in the Date
// column are converted to ISO dates. Fully blank rows are skipped and counted.
func (p *Parser) Parse(r io.Reader) ([]records.Record, int, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, 0, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := p.opt.Sheet
	if sheet == "" {
		list := f.GetSheetList()
		if len(list) == 0 {
			return nil, 0, fmt.Errorf("workbook has no sheets")
		}
		sheet = list[0]
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, 0, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	// Skip leading blank rows to find the header.
	for len(rows) > 0 && blank(rows[0]) {
		rows = rows[1:]
	}
	if len(rows) == 0 {
		return nil, 0, nil
	}
	headers := rows[0]
	dateCol := -1
	for i, h := range headers {
		if schema.NormalizeHeader(h) == schema.ColDate {
			dateCol = i
			break
		}
	}

	out := make([]records.Record, 0, len(rows)-1)
	var skipped int
	for _, row := range rows[1:] {
		if blank(row) {
			skipped++
			continue
		}
		if dateCol >= 0 && dateCol < len(row) {
			row[dateCol] = serialDate(row[dateCol])
		}
		out = append(out, records.FromRow(headers, row))
	}
	return out, skipped, nil
}

// serialDate converts an Excel serial day number to YYYY-MM-DD. Anything
// that is not a plausible serial is returned unchanged.
func serialDate(s string) string {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 1 || v > 2958465 {
		return s
	}
	t, err := excelize.ExcelDateToTime(v, false)
	if err != nil {
		return s
	}
	return t.Format(schema.DateLayout)
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
