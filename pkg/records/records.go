// Package records defines the raw, loader-produced row type that flows into
// the cleaning pipeline.
//
// A Record is an ordered list of header/value pairs. Order is the column order
// of the source (CSV header, spreadsheet row, SQL result set). Lookups are by
// exact key; when a key appears more than once the first occurrence wins.
package records

// Field is one header/value pair of a Record.
type Field struct {
	Key   string
	Value string
}

// Record is one input row.
type Record []Field

// Get returns the value stored under key and whether the key is present.
func (r Record) Get(key string) (string, bool) {
	for _, f := range r {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// Has reports whether key is present.
func (r Record) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// Keys returns the keys in column order.
func (r Record) Keys() []string {
	out := make([]string, len(r))
	for i, f := range r {
		out[i] = f.Key
	}
	return out
}

// Set replaces the first field named key, or appends a new field. The receiver
// is not modified; a new Record is returned.
func (r Record) Set(key, value string) Record {
	out := r.Clone()
	for i := range out {
		if out[i].Key == key {
			out[i].Value = value
			return out
		}
	}
	return append(out, Field{Key: key, Value: value})
}

// Clone returns a copy of r that shares no backing array with it.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	copy(out, r)
	return out
}

// FromRow builds a Record from parallel header and value slices. Missing
// values are stored as empty strings; extra values are ignored.
func FromRow(headers, values []string) Record {
	out := make(Record, len(headers))
	for i, h := range headers {
		v := ""
		if i < len(values) {
			v = values[i]
		}
		out[i] = Field{Key: h, Value: v}
	}
	return out
}
