// Package clean turns raw loader records into a dataset.Table.
//
// The cleaner runs, in order: value normalization and header mapping (the
// transformer chain), date parsing, required-field and minimum-year checks,
// metric coercion, exact-duplicate removal and a stable sort by date.
// Malformed values never fail the load; they degrade to zero or drop the row.
// Only a structurally missing Date or Region column is an error.
package clean

import (
	"cmp"
	"slices"
	"strings"

	"casetrend/internal/dataset"
	"casetrend/internal/dates"
	"casetrend/internal/schema"
	"casetrend/internal/transformer"
	"casetrend/internal/transformer/builtin"
	"casetrend/pkg/records"
)

// DefaultMinYear rejects sentinel years (e.g. 1970) from malformed sources.
const DefaultMinYear = 2020

// Options controls cleaning.
type Options struct {
	// MinYear drops rows dated before this year. Zero means DefaultMinYear.
	MinYear int
}

func (o Options) minYear() int {
	if o.MinYear == 0 {
		return DefaultMinYear
	}
	return o.MinYear
}

// Report counts what the cleaner did with the input.
type Report struct {
	Input            int
	DroppedNoDate    int
	DroppedNoRegion  int
	DroppedMinYear   int
	DroppedDuplicate int
	// MetricDefaults counts metric cells that were missing or unparseable and
	// were stored as 0.
	MetricDefaults int
	Kept           int
}

// Dropped is the total number of rows removed.
func (r Report) Dropped() int {
	return r.DroppedNoDate + r.DroppedNoRegion + r.DroppedMinYear + r.DroppedDuplicate
}

// Clean normalizes headers, validates and coerces rows, removes duplicates and
// sorts by date. It returns a *SchemaError when the records carry no Date or
// no Region column at all. Empty input yields an empty table.
func Clean(in []records.Record, opt Options) (*dataset.Table, Report, error) {
	rep := Report{Input: len(in)}

	recs := transformer.Chain{
		builtin.Normalize{},
		builtin.Headers{},
	}.Apply(in)

	// No records means no columns to check; the result is an empty table.
	if len(recs) == 0 {
		return dataset.NewTable(nil), rep, nil
	}
	if err := checkColumns(recs); err != nil {
		return nil, rep, err
	}

	recs = builtin.Require{
		Fields: []string{schema.ColRegion},
		Reject: func(builtin.RejectedRow) { rep.DroppedNoRegion++ },
	}.Apply(recs)

	minYear := opt.minYear()
	rows := make([]dataset.Row, 0, len(recs))
	for _, rec := range recs {
		raw, _ := rec.Get(schema.ColDate)
		t, ok := dates.Parse(raw)
		parts := dates.Derive(t, ok)
		if !parts.Valid {
			rep.DroppedNoDate++
			continue
		}
		if parts.Year < minYear {
			rep.DroppedMinYear++
			continue
		}

		region, _ := rec.Get(schema.ColRegion)
		row := dataset.Row{
			Date:   t,
			Region: strings.TrimSpace(region),
			Year:   parts.Year,
			Month:  parts.Month,
			Day:    parts.Day,
		}
		for _, m := range schema.Metrics {
			v, ok := rec.Get(m.String())
			n, parsed := ParseCount(v)
			if !ok || !parsed {
				rep.MetricDefaults++
			}
			row = row.SetValue(m, n)
		}
		rows = append(rows, row)
	}

	rows, dups := dedupe(rows)
	rep.DroppedDuplicate = dups

	slices.SortStableFunc(rows, func(a, b dataset.Row) int {
		return a.Date.Compare(b.Date)
	})

	rep.Kept = len(rows)
	return dataset.NewTable(rows), rep, nil
}

// checkColumns verifies that at least one record carries each required column.
func checkColumns(recs []records.Record) error {
	found := make(map[string]bool, len(schema.RequiredColumns))
	for _, rec := range recs {
		for _, col := range schema.RequiredColumns {
			if !found[col] && rec.Has(col) {
				found[col] = true
			}
		}
		if len(found) == len(schema.RequiredColumns) {
			return nil
		}
	}
	var missing []string
	for _, col := range schema.RequiredColumns {
		if !found[col] {
			missing = append(missing, col)
		}
	}
	return &SchemaError{Missing: missing, Columns: columnsOf(recs)}
}

// columnsOf returns the distinct headers seen, in first-seen order.
func columnsOf(recs []records.Record) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, rec := range recs {
		for _, k := range rec.Keys() {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}
	return out
}

// compareRows orders rows by every field; 0 means the rows are identical.
func compareRows(a, b dataset.Row) int {
	return cmp.Or(
		a.Date.Compare(b.Date),
		strings.Compare(a.Region, b.Region),
		cmp.Compare(a.ConfirmedCases, b.ConfirmedCases),
		cmp.Compare(a.ActiveCases, b.ActiveCases),
		cmp.Compare(a.CuredDischarged, b.CuredDischarged),
		cmp.Compare(a.Death, b.Death),
	)
}
