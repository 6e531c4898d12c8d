// Package transformer defines the record-level transformation contract used
// ahead of cleaning. Transformers operate on raw records (string values keyed
// by header) and return a new slice; they never modify their input.
package transformer

import "casetrend/pkg/records"

// Transformer rewrites or filters a batch of raw records.
type Transformer interface {
	Apply([]records.Record) []records.Record
}

// Chain is an ordered list of transformers.
type Chain []Transformer

// Apply runs every transformer in order, feeding each the previous output.
func (c Chain) Apply(in []records.Record) []records.Record {
	out := in
	for _, t := range c {
		out = t.Apply(out)
	}
	return out
}

// Func adapts a plain function to the Transformer interface.
type Func func([]records.Record) []records.Record

// Apply calls f.
func (f Func) Apply(in []records.Record) []records.Record { return f(in) }
