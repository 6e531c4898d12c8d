// Package csv implements the delimited-text loader. It reads the whole input
// into raw records, tolerating ragged rows and sloppy quoting the way
// hand-maintained spreadsheets exported to CSV tend to need.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"casetrend/pkg/records"
)

// Options configures the CSV parser. All fields are optional.
type Options struct {
	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims leading/trailing spaces from each value. Headers are
	// always trimmed by the schema normalizer, never here.
	TrimSpace bool

	// HeaderMap renames source headers before they reach the normalizer, for
	// exports whose headers the alias table does not know.
	HeaderMap map[string]string

	// LogLimit caps how many skipped rows are logged individually. Zero means
	// the default of 20.
	LogLimit int
}

// Parser parses CSV input according to Options. It is safe to reuse across
// inputs, but Parser itself is not concurrency-safe.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// NewTSVParser is NewParser with a tab delimiter.
func NewTSVParser(opt Options) *Parser {
	opt.Comma = '\t'
	return &Parser{opt: opt}
}

// Parse consumes CSV records from r and returns them along with the number of
// rows skipped because encoding/csv could not read them. A leading UTF-8 or
// UTF-16 byte order mark selects the encoding; without one, UTF-8 is assumed.
func (p *Parser) Parse(r io.Reader) ([]records.Record, int, error) {
	r = transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	cr := csv.NewReader(r)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	h, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("read csv header: %w", err)
	}
	headers := p.headers(h)

	limit := p.opt.LogLimit
	if limit == 0 {
		limit = 20
	}
	var out []records.Record
	var skipped int
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if skipped < limit {
				log.Printf("csv: skipping line %d: %v", line, err)
			}
			skipped++
			continue
		}
		if p.opt.TrimSpace {
			for i := range row {
				row[i] = strings.TrimSpace(row[i])
			}
		}
		out = append(out, records.FromRow(headers, row))
	}
	if skipped > limit {
		log.Printf("csv: %d more lines skipped", skipped-limit)
	}
	return out, skipped, nil
}

// headers applies HeaderMap and names blank header cells after their
// position so that no two columns collapse onto the empty key.
func (p *Parser) headers(h []string) []string {
	res := make([]string, len(h))
	for i, col := range h {
		if m, ok := p.opt.HeaderMap[strings.TrimSpace(col)]; ok {
			res[i] = m
			continue
		}
		if strings.TrimSpace(col) == "" {
			res[i] = fmt.Sprintf("col_%d", i)
			continue
		}
		res[i] = col
	}
	return res
}
