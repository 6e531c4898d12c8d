// Package config defines the configuration model for a casetrend run: where
// the dataset comes from, how it is parsed and cleaned, which outlier filter
// applies, the default chart and the chart server settings.
//
// Pipelines are loaded from JSON, YAML or TOML (by file extension) and then
// overridden from CASETREND_* environment variables named after the field
// path, e.g. CASETREND_SOURCE_FILE_PATH or CASETREND_CLEAN_MIN_YEAR.
//
// Example (trimmed):
//
//	{
//	  "job":      "covid_india",
//	  "source":   { "kind": "file", "file": { "path": "data/covid_19_india.csv" } },
//	  "parser":   { "kind": "auto", "options": { "trim_space": true } },
//	  "clean":    { "min_year": 2020 },
//	  "outliers": { "enabled": true, "group_by": "Year", "multiplier": 1.5 },
//	  "chart":    { "region": "Kerala", "year": 2021, "metric": "Death", "kind": "line" }
//	}
package config

import "encoding/json"

// Pipeline is the top-level object decoded from a pipeline file.
type Pipeline struct {
	// Job names the run; it labels metrics.
	Job string `json:"job" yaml:"job" toml:"job"`

	// Source describes where the raw dataset comes from.
	Source Source `json:"source" yaml:"source" toml:"source"`

	// Parser configures how source bytes become raw records.
	Parser Parser `json:"parser" yaml:"parser" toml:"parser"`

	Clean    Clean    `json:"clean" yaml:"clean" toml:"clean"`
	Outliers Outliers `json:"outliers" yaml:"outliers" toml:"outliers"`

	// Chart holds the default selection used by the CLI and as the initial
	// selection of the chart server.
	Chart   Chart   `json:"chart" yaml:"chart" toml:"chart"`
	Server  Server  `json:"server" yaml:"server" toml:"server"`
	Metrics Metrics `json:"metrics" yaml:"metrics" toml:"metrics"`
}

// Source identifies the data source.
type Source struct {
	// Kind selects the source implementation: "file", "http" or "sql".
	Kind string `json:"kind" yaml:"kind" toml:"kind"`

	File SourceFile `json:"file" yaml:"file" toml:"file"`
	HTTP SourceHTTP `json:"http" yaml:"http" toml:"http"`
	SQL  SourceSQL  `json:"sql" yaml:"sql" toml:"sql"`
}

// SourceFile holds configuration for the "file" source kind.
type SourceFile struct {
	// Path is the local filesystem path to the input file.
	Path string `json:"path" yaml:"path" toml:"path"`

	// Progress renders a byte progress bar on stderr while reading.
	Progress bool `json:"progress" yaml:"progress" toml:"progress"`
}

// SourceHTTP holds configuration for the "http" source kind.
type SourceHTTP struct {
	URL            string `json:"url" yaml:"url" toml:"url"`
	TimeoutSeconds int    `json:"timeout_seconds" yaml:"timeout_seconds" toml:"timeout_seconds" split_words:"true"`
	Retries        int    `json:"retries" yaml:"retries" toml:"retries"`
}

// SourceSQL reads the dataset from a database table or query. The database is
// only read; results are never written back.
type SourceSQL struct {
	// Driver is "postgres", "sqlite", "mysql" or "mssql".
	Driver string `json:"driver" yaml:"driver" toml:"driver"`
	DSN    string `json:"dsn" yaml:"dsn" toml:"dsn"`

	// Table is read with SELECT * when Query is empty.
	Table string `json:"table" yaml:"table" toml:"table"`
	Query string `json:"query" yaml:"query" toml:"query"`
}

// Parser selects how to parse the raw source into records.
type Parser struct {
	// Kind is "csv", "tsv", "json", "xlsx" or "auto" (by file extension).
	Kind string `json:"kind" yaml:"kind" toml:"kind"`

	// Options is a free-form map interpreted by the parser implementation.
	// For CSV: comma (string), trim_space (bool), header_map (object),
	// log_limit (int). For JSON: columnar (bool). For XLSX: sheet (string).
	Options Options `json:"options" yaml:"options" toml:"options" ignored:"true"`
}

// Clean configures the row cleaner.
type Clean struct {
	// MinYear drops rows dated before this year. Zero means 2020.
	MinYear int `json:"min_year" yaml:"min_year" toml:"min_year" split_words:"true"`
}

// Outliers configures the optional IQR filter.
type Outliers struct {
	Enabled bool `json:"enabled" yaml:"enabled" toml:"enabled"`

	// GroupBy is "Year" (default), "Month", "Region" or "None".
	GroupBy string `json:"group_by" yaml:"group_by" toml:"group_by" split_words:"true"`

	// Metrics restricts the checked metrics; empty checks all four.
	Metrics []string `json:"metrics" yaml:"metrics" toml:"metrics"`

	// Multiplier is the IQR fence factor. Absent means 1.5; an explicit 0
	// keeps only rows inside [Q1, Q3].
	Multiplier *float64 `json:"multiplier" yaml:"multiplier" toml:"multiplier"`
}

// Chart is a default chart selection. Zero values mean "not set".
type Chart struct {
	Region string `json:"region" yaml:"region" toml:"region"`
	Month  int    `json:"month" yaml:"month" toml:"month"`
	Year   int    `json:"year" yaml:"year" toml:"year"`
	Metric string `json:"metric" yaml:"metric" toml:"metric"`
	Kind   string `json:"kind" yaml:"kind" toml:"kind"`
}

// Server configures the chart server.
type Server struct {
	Addr string `json:"addr" yaml:"addr" toml:"addr"`

	// RateLimit is the sustained requests per second per server; zero disables
	// limiting.
	RateLimit float64 `json:"rate_limit" yaml:"rate_limit" toml:"rate_limit" split_words:"true"`
	Burst     int     `json:"burst" yaml:"burst" toml:"burst"`

	// MaxUploadBytes caps POST /api/upload bodies. Zero means 32 MiB.
	MaxUploadBytes int64 `json:"max_upload_bytes" yaml:"max_upload_bytes" toml:"max_upload_bytes" split_words:"true"`
}

// Metrics selects the metrics backend.
type Metrics struct {
	// Backend is "none", "pushgateway" or "datadog".
	Backend        string `json:"backend" yaml:"backend" toml:"backend"`
	PushgatewayURL string `json:"pushgateway_url" yaml:"pushgateway_url" toml:"pushgateway_url" split_words:"true"`
	DatadogAddr    string `json:"datadog_addr" yaml:"datadog_addr" toml:"datadog_addr" split_words:"true"`
}

// Options is a small helper to fetch typed values from free-form option maps.
// It performs only minimal type coercion and returns the provided default when
// a key is absent or of an unexpected type.
type Options map[string]any

// String returns the string value for key or def if key is missing or not a string.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def if key is missing or not a bool.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns the int value for key or def. JSON numbers decode as float64,
// TOML integers as int64 and YAML integers as int; all three are accepted.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int64:
			return int(n)
		case int:
			return n
		}
	}
	return def
}

// Rune returns the first rune of a string value for key, or def if key is
// missing or empty. Used for single-character settings such as a delimiter.
func (o Options) Rune(key string, def rune) rune {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok && len(s) > 0 {
			return []rune(s)[0]
		}
	}
	return def
}

// StringMap returns a map[string]string for key when the value is an object
// whose values are strings. Non-string values are ignored. Returns an empty
// map when the key is missing or the value is not an object.
func (o Options) StringMap(key string) map[string]string {
	res := map[string]string{}
	if v, ok := o[key]; ok {
		if m, ok := v.(map[string]any); ok {
			for k, vv := range m {
				if s, ok := vv.(string); ok {
					res[k] = s
				}
			}
		}
	}
	return res
}

// UnmarshalJSON decodes a missing or null "options" object to a non-nil,
// empty Options map.
func (o *Options) UnmarshalJSON(b []byte) error {
	var tmp map[string]any
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}

// UnmarshalYAML decodes an options block and converts the nested
// map[interface{}]interface{} values yaml.v2 produces into map[string]any, so
// that typed accessors behave the same for every file format.
func (o *Options) UnmarshalYAML(unmarshal func(any) error) error {
	var tmp map[string]any
	if err := unmarshal(&tmp); err != nil {
		return err
	}
	out := make(Options, len(tmp))
	for k, v := range tmp {
		out[k] = stringKeys(v)
	}
	*o = out
	return nil
}

func stringKeys(v any) any {
	switch x := v.(type) {
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, vv := range x {
			if ks, ok := k.(string); ok {
				m[ks] = stringKeys(vv)
			}
		}
		return m
	case []any:
		for i := range x {
			x[i] = stringKeys(x[i])
		}
		return x
	}
	return v
}
