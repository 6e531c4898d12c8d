// Package json implements a JSON loader that turns JSON objects into raw
// records.
//
// Three layouts are accepted:
//
//   - a top-level array of objects (records layout):
//     [{"Date":"01-03-2021","Region":"X"}, ...]
//   - newline-delimited objects (NDJSON), one row per object
//   - a single object of columns, each mapping a row index to a value, the
//     layout dataframe libraries write by default:
//     {"Date":{"0":"01-03-2021","1":"02-03-2021"},"Region":{"0":"X","1":"Y"}}
//
// JSON keys carry no order, so record fields are emitted in sorted key order.
package json

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"

	"casetrend/internal/config"
	"casetrend/pkg/records"
)

// Options configures the JSON parser.
//
//   - "columnar" (bool, default true): when false, a single top-level object is
//     always one row, even if every value is an object.
type Options struct {
	Columnar bool
}

// FromConfigOptions constructs JSON Options from a generic config.Options map.
func FromConfigOptions(o config.Options) Options {
	return Options{
		Columnar: o.Bool("columnar", true),
	}
}

// Parser parses JSON input.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// Parse reads every row from r. Non-object items inside an array or NDJSON
// stream are counted as skipped.
func (p *Parser) Parse(r io.Reader) ([]records.Record, int, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var out []records.Record
	var skipped int
	first := true
	for {
		var root any
		err := dec.Decode(&root)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, skipped, fmt.Errorf("json parser: decode: %w", err)
		}

		switch v := root.(type) {
		case []any:
			for _, elem := range v {
				obj, ok := elem.(map[string]any)
				if !ok {
					skipped++
					continue
				}
				out = append(out, toRecord(obj))
			}
		case map[string]any:
			if first && p.opt.Columnar && isColumnar(v) {
				if rest := dec.More(); rest {
					return nil, skipped, fmt.Errorf("json parser: trailing data after columnar object")
				}
				return fromColumns(v), skipped, nil
			}
			out = append(out, toRecord(v))
		default:
			skipped++
		}
		first = false
	}
	return out, skipped, nil
}

// isColumnar reports whether every value of obj is itself an object.
func isColumnar(obj map[string]any) bool {
	if len(obj) == 0 {
		return false
	}
	for _, v := range obj {
		if _, ok := v.(map[string]any); !ok {
			return false
		}
	}
	return true
}

// fromColumns transposes a column layout into rows. Row indexes are sorted
// numerically when they are all integers, lexically otherwise.
func fromColumns(cols map[string]any) []records.Record {
	keys := sortedKeys(cols)

	seen := make(map[string]struct{})
	var idx []string
	for _, k := range keys {
		for i := range cols[k].(map[string]any) {
			if _, ok := seen[i]; !ok {
				seen[i] = struct{}{}
				idx = append(idx, i)
			}
		}
	}
	slices.SortFunc(idx, compareIndex)

	out := make([]records.Record, 0, len(idx))
	for _, i := range idx {
		rec := make(records.Record, 0, len(keys))
		for _, k := range keys {
			rec = append(rec, records.Field{Key: k, Value: scalar(cols[k].(map[string]any)[i])})
		}
		out = append(out, rec)
	}
	return out
}

func compareIndex(a, b string) int {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	if aerr == nil && berr == nil {
		return ai - bi
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func toRecord(obj map[string]any) records.Record {
	rec := make(records.Record, 0, len(obj))
	for _, k := range sortedKeys(obj) {
		rec = append(rec, records.Field{Key: k, Value: scalar(obj[k])})
	}
	return rec
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// scalar renders a decoded JSON value as the raw string the cleaner expects.
// null becomes the empty string; nested values are re-encoded.
func scalar(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}
