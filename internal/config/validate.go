// This file adds a lightweight linter for Pipeline values. It performs static
// checks over a decoded Pipeline and returns a list of issues (errors and
// warnings) that callers can surface in a CLI or tests.

package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a finding worth surfacing that does not block
	// execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding for a Pipeline.
//
// Path is a dotted path into the config (e.g. "source.file.path",
// "outliers.metrics[1]"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue has SeverityError.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidatePipeline performs static validation of a Pipeline. It does not
// mutate the pipeline; callers decide whether warnings are fatal.
//
// Metric, group and chart-kind names are checked by the packages that parse
// them when the run starts; here they are only checked for shape.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "job",
			Message:  "job is empty; metrics will be labeled \"casetrend\"",
		})
	}
	issues = append(issues, validateSource(p.Source, p.Parser)...)
	issues = append(issues, validateParser(p.Parser)...)
	issues = append(issues, validateClean(p.Clean)...)
	issues = append(issues, validateOutliers(p.Outliers)...)
	issues = append(issues, validateChart(p.Chart)...)
	issues = append(issues, validateServer(p.Server)...)
	issues = append(issues, validateMetrics(p.Metrics)...)

	return issues
}

func validateSource(s Source, p Parser) []Issue {
	var issues []Issue

	switch strings.TrimSpace(s.Kind) {
	case "":
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.kind",
			Message:  "source.kind must not be empty",
		})
	case "file":
		if strings.TrimSpace(s.File.Path) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "source.file.path",
				Message:  "file source requires a non-empty path",
			})
		} else if isAuto(p.Kind) && !knownExt(s.File.Path) {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "source.file.path",
				Message:  fmt.Sprintf("cannot pick a parser for extension %q; set parser.kind", filepath.Ext(s.File.Path)),
			})
		}
	case "http":
		u, err := url.Parse(s.HTTP.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "source.http.url",
				Message:  fmt.Sprintf("http source requires an absolute URL, got %q", s.HTTP.URL),
			})
		}
		if s.HTTP.TimeoutSeconds < 0 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "source.http.timeout_seconds",
				Message:  "timeout_seconds must not be negative",
			})
		}
		if s.HTTP.Retries < 0 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "source.http.retries",
				Message:  "retries must not be negative",
			})
		}
	case "sql":
		known := map[string]struct{}{"postgres": {}, "sqlite": {}, "mysql": {}, "mssql": {}}
		if _, ok := known[s.SQL.Driver]; !ok {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "source.sql.driver",
				Message:  fmt.Sprintf("unknown sql driver %q (want postgres, sqlite, mysql or mssql)", s.SQL.Driver),
			})
		}
		if strings.TrimSpace(s.SQL.DSN) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "source.sql.dsn",
				Message:  "sql source requires a dsn",
			})
		}
		if strings.TrimSpace(s.SQL.Table) == "" && strings.TrimSpace(s.SQL.Query) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "source.sql",
				Message:  "sql source requires a table or a query",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.kind",
			Message:  fmt.Sprintf("unknown source kind %q (want file, http or sql)", s.Kind),
		})
	}

	return issues
}

func isAuto(kind string) bool {
	k := strings.ToLower(strings.TrimSpace(kind))
	return k == "" || k == "auto"
}

func knownExt(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt", ".tsv", ".json", ".ndjson", ".xlsx":
		return true
	}
	return false
}

func validateParser(p Parser) []Issue {
	var issues []Issue

	known := map[string]struct{}{"": {}, "auto": {}, "csv": {}, "tsv": {}, "json": {}, "xlsx": {}}
	if _, ok := known[strings.ToLower(strings.TrimSpace(p.Kind))]; !ok {
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.kind",
			Message:  fmt.Sprintf("unknown parser kind %q (want csv, tsv, json, xlsx or auto)", p.Kind),
		})
	}

	if c, ok := p.Options["comma"]; ok {
		if s, _ := c.(string); len([]rune(s)) != 1 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "parser.options.comma",
				Message:  "comma must be a single character",
			})
		}
	}
	if _, ok := p.Options["comma"]; ok && strings.EqualFold(p.Kind, "tsv") {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "parser.options.comma",
			Message:  "tsv parser always splits on tabs; comma is ignored",
		})
	}

	return issues
}

func validateClean(c Clean) []Issue {
	if c.MinYear < 0 {
		return []Issue{{
			Severity: SeverityError,
			Path:     "clean.min_year",
			Message:  "min_year must not be negative",
		}}
	}
	return nil
}

func validateOutliers(o Outliers) []Issue {
	var issues []Issue

	if o.Multiplier != nil && *o.Multiplier < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "outliers.multiplier",
			Message:  "multiplier must not be negative",
		})
	}
	for i, m := range o.Metrics {
		if strings.TrimSpace(m) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     fmt.Sprintf("outliers.metrics[%d]", i),
				Message:  "metric name must not be empty",
			})
		}
	}
	if !o.Enabled && (o.GroupBy != "" || len(o.Metrics) > 0 || o.Multiplier != nil) {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "outliers.enabled",
			Message:  "outlier options are set but the filter is disabled",
		})
	}

	return issues
}

func validateChart(c Chart) []Issue {
	var issues []Issue

	if c.Month < 0 || c.Month > 12 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "chart.month",
			Message:  fmt.Sprintf("month must be between 1 and 12 (or 0 for none), got %d", c.Month),
		})
	}
	if c.Year < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "chart.year",
			Message:  "year must not be negative",
		})
	}

	return issues
}

func validateServer(s Server) []Issue {
	var issues []Issue

	if s.RateLimit < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "server.rate_limit",
			Message:  "rate_limit must not be negative",
		})
	}
	if s.RateLimit > 0 && s.Burst <= 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "server.burst",
			Message:  fmt.Sprintf("burst=%d with rate limiting enabled; a burst of 1 will be used", s.Burst),
		})
	}
	if s.MaxUploadBytes < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "server.max_upload_bytes",
			Message:  "max_upload_bytes must not be negative",
		})
	}

	return issues
}

func validateMetrics(m Metrics) []Issue {
	switch m.Backend {
	case "", "none", "pushgateway", "datadog":
		return nil
	}
	return []Issue{{
		Severity: SeverityWarning,
		Path:     "metrics.backend",
		Message:  fmt.Sprintf("unknown metrics backend %q; metrics will be disabled", m.Backend),
	}}
}
