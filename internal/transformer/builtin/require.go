package builtin

import (
	"strings"

	"casetrend/pkg/records"
)

// RejectedRow describes a record dropped by a filtering transformer.
type RejectedRow struct {
	Index  int
	Raw    records.Record
	Reason string
	Field  string
}

// Require removes any record whose value for one of Fields is missing or
// blank. Reject, when set, is called once per dropped record.
type Require struct {
	Fields []string
	Reject func(RejectedRow)
}

// Apply returns a new slice containing only records that have all required
// fields present and non-blank.
func (r Require) Apply(in []records.Record) []records.Record {
	out := make([]records.Record, 0, len(in))
	for i, rec := range in {
		missing := ""
		for _, f := range r.Fields {
			v, ok := rec.Get(f)
			if !ok || strings.TrimSpace(v) == "" {
				missing = f
				break
			}
		}
		if missing == "" {
			out = append(out, rec)
			continue
		}
		if r.Reject != nil {
			r.Reject(RejectedRow{Index: i, Raw: rec, Reason: "missing " + missing, Field: missing})
		}
	}
	return out
}
