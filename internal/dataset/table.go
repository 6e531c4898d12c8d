// Package dataset holds the cleaned, canonical form of a case-count dataset.
//
// A Table is immutable once built: the cleaner constructs it with NewTable and
// every accessor returns copies, so any number of goroutines may read the same
// Table without coordination.
package dataset

import (
	"slices"
	"strconv"
	"time"

	"casetrend/internal/schema"
	"casetrend/pkg/records"
)

// Row is one canonical record. Date is never zero for a Row inside a Table.
type Row struct {
	Date            time.Time
	Region          string
	ConfirmedCases  int64
	ActiveCases     int64
	CuredDischarged int64
	Death           int64

	Year  int
	Month int
	Day   int
}

// Value returns the value of metric m.
func (r Row) Value(m schema.Metric) int64 {
	switch m {
	case schema.ConfirmedCases:
		return r.ConfirmedCases
	case schema.ActiveCases:
		return r.ActiveCases
	case schema.CuredDischarged:
		return r.CuredDischarged
	case schema.Death:
		return r.Death
	}
	return 0
}

// SetValue returns a copy of r with metric m set to v.
func (r Row) SetValue(m schema.Metric, v int64) Row {
	switch m {
	case schema.ConfirmedCases:
		r.ConfirmedCases = v
	case schema.ActiveCases:
		r.ActiveCases = v
	case schema.CuredDischarged:
		r.CuredDischarged = v
	case schema.Death:
		r.Death = v
	}
	return r
}

// Record converts the row back into a raw record with canonical headers.
// Derived fields are not exported; they are recomputed from Date on reload.
func (r Row) Record() records.Record {
	return records.Record{
		{Key: schema.ColDate, Value: r.Date.Format(schema.DateLayout)},
		{Key: schema.ColRegion, Value: r.Region},
		{Key: schema.ColConfirmedCases, Value: strconv.FormatInt(r.ConfirmedCases, 10)},
		{Key: schema.ColActiveCases, Value: strconv.FormatInt(r.ActiveCases, 10)},
		{Key: schema.ColCuredDischarged, Value: strconv.FormatInt(r.CuredDischarged, 10)},
		{Key: schema.ColDeath, Value: strconv.FormatInt(r.Death, 10)},
	}
}

// Table is an ordered, immutable sequence of rows.
type Table struct {
	rows []Row
}

// NewTable wraps rows into a Table. The slice is copied.
func NewTable(rows []Row) *Table {
	return &Table{rows: slices.Clone(rows)}
}

// Len returns the number of rows. A nil Table has length 0.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// At returns row i.
func (t *Table) At(i int) Row { return t.rows[i] }

// Rows returns a copy of all rows.
func (t *Table) Rows() []Row {
	if t == nil {
		return nil
	}
	return slices.Clone(t.rows)
}

// All iterates over the rows without copying the slice.
func (t *Table) All(yield func(int, Row) bool) {
	if t == nil {
		return
	}
	for i, r := range t.rows {
		if !yield(i, r) {
			return
		}
	}
}

// Filter returns a new Table with the rows for which keep returns true.
func (t *Table) Filter(keep func(Row) bool) *Table {
	out := make([]Row, 0, t.Len())
	for _, r := range t.All {
		if keep(r) {
			out = append(out, r)
		}
	}
	return &Table{rows: out}
}

// Records exports the table as raw records with canonical headers.
func (t *Table) Records() []records.Record {
	out := make([]records.Record, 0, t.Len())
	for _, r := range t.All {
		out = append(out, r.Record())
	}
	return out
}

// Regions returns the distinct regions, sorted.
func (t *Table) Regions() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range t.All {
		if _, ok := seen[r.Region]; ok {
			continue
		}
		seen[r.Region] = struct{}{}
		out = append(out, r.Region)
	}
	slices.Sort(out)
	return out
}

// Years returns the distinct years, ascending.
func (t *Table) Years() []int {
	return t.distinct(func(r Row) int { return r.Year })
}

// Months returns the distinct months (1..12) present, ascending.
func (t *Table) Months() []int {
	return t.distinct(func(r Row) int { return r.Month })
}

func (t *Table) distinct(key func(Row) int) []int {
	seen := make(map[int]struct{})
	var out []int
	for _, r := range t.All {
		k := key(r)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// DateRange returns the first and last date. ok is false for an empty table.
func (t *Table) DateRange() (first, last time.Time, ok bool) {
	if t.Len() == 0 {
		return time.Time{}, time.Time{}, false
	}
	return t.rows[0].Date, t.rows[len(t.rows)-1].Date, true
}
