// Package builtin contains the reusable transformers the cleaner chains
// together before coercing values.
package builtin

import (
	"strings"

	"casetrend/internal/schema"
	"casetrend/pkg/records"
)

// nbsp is U+00A0; "Â " is the same character decoded as Latin-1.
const nbsp = "\u00a0"

// Normalize trims every value and replaces no-break spaces (including their
// common mojibake form) with plain spaces.
type Normalize struct{}

func (Normalize) Apply(in []records.Record) []records.Record {
	out := make([]records.Record, len(in))
	for i, r := range in {
		nr := r.Clone()
		for j := range nr {
			s := nr[j].Value
			if strings.Contains(s, "Â"+nbsp) {
				s = strings.ReplaceAll(s, "Â"+nbsp, " ")
			}
			if strings.Contains(s, nbsp) {
				s = strings.ReplaceAll(s, nbsp, " ")
			}
			nr[j].Value = strings.TrimSpace(s)
		}
		out[i] = nr
	}
	return out
}

// Headers maps every record's keys onto the canonical column set. It never
// drops a record.
type Headers struct{}

func (Headers) Apply(in []records.Record) []records.Record {
	return schema.Normalize(in)
}
