package config

import (
	"path/filepath"
	"strings"
	"testing"
)

// hasIssue reports whether issues contains an Issue with the given severity,
// path, and a Message containing msgSubstr.
func hasIssue(t *testing.T, issues []Issue, sev IssueSeverity, path, msgSubstr string) bool {
	t.Helper()
	for _, iss := range issues {
		if iss.Severity == sev && iss.Path == path && strings.Contains(iss.Message, msgSubstr) {
			return true
		}
	}
	return false
}

func validPipeline() Pipeline {
	return Pipeline{
		Job:    "covid",
		Source: Source{Kind: "file", File: SourceFile{Path: "data/covid.csv"}},
		Parser: Parser{Kind: "auto", Options: Options{}},
		Clean:  Clean{MinYear: 2020},
	}
}

/*
TestValidatePipeline_ValidMinimal verifies that a well-formed pipeline produces
no issues (errors or warnings).
*/
func TestValidatePipeline_ValidMinimal(t *testing.T) {
	issues := ValidatePipeline(validPipeline())
	if len(issues) != 0 {
		t.Fatalf("expected no issues, got %+v", issues)
	}
}

func TestValidatePipeline_MissingJobIsWarning(t *testing.T) {
	p := validPipeline()
	p.Job = " "

	issues := ValidatePipeline(p)
	if !hasIssue(t, issues, SeverityWarning, "job", "job is empty") {
		t.Fatalf("expected warning for job; got %+v", issues)
	}
	if HasErrors(issues) {
		t.Fatalf("empty job must not be an error: %+v", issues)
	}
}

func TestValidatePipeline_Source(t *testing.T) {
	tests := []struct {
		name string
		src  Source
		path string
		msg  string
	}{
		{"empty kind", Source{}, "source.kind", "must not be empty"},
		{"unknown kind", Source{Kind: "ftp"}, "source.kind", `unknown source kind "ftp"`},
		{"file without path", Source{Kind: "file"}, "source.file.path", "non-empty path"},
		{"unknown extension", Source{Kind: "file", File: SourceFile{Path: "cases.parquet"}}, "source.file.path", `".parquet"`},
		{"relative url", Source{Kind: "http", HTTP: SourceHTTP{URL: "/cases.csv"}}, "source.http.url", "absolute URL"},
		{"negative retries", Source{Kind: "http", HTTP: SourceHTTP{URL: "https://example.org/c.csv", Retries: -1}}, "source.http.retries", "negative"},
		{"bad driver", Source{Kind: "sql", SQL: SourceSQL{Driver: "oracle", DSN: "x", Table: "t"}}, "source.sql.driver", "unknown sql driver"},
		{"no dsn", Source{Kind: "sql", SQL: SourceSQL{Driver: "sqlite", Table: "t"}}, "source.sql.dsn", "requires a dsn"},
		{"no table or query", Source{Kind: "sql", SQL: SourceSQL{Driver: "sqlite", DSN: ":memory:"}}, "source.sql", "table or a query"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := validPipeline()
			p.Source = tc.src
			issues := ValidatePipeline(p)
			if !hasIssue(t, issues, SeverityError, tc.path, tc.msg) {
				t.Fatalf("expected error at %s containing %q; got %+v", tc.path, tc.msg, issues)
			}
		})
	}
}

func TestValidatePipeline_ExplicitParserAllowsAnyExtension(t *testing.T) {
	p := validPipeline()
	p.Source.File.Path = "cases.dat"
	p.Parser.Kind = "csv"
	if issues := ValidatePipeline(p); HasErrors(issues) {
		t.Fatalf("unexpected errors: %+v", issues)
	}
}

func TestValidatePipeline_Parser(t *testing.T) {
	p := validPipeline()
	p.Parser = Parser{Kind: "parquet"}
	if !hasIssue(t, ValidatePipeline(p), SeverityError, "parser.kind", "unknown parser kind") {
		t.Fatal("expected parser.kind error")
	}

	p.Parser = Parser{Kind: "csv", Options: Options{"comma": ";;"}}
	if !hasIssue(t, ValidatePipeline(p), SeverityError, "parser.options.comma", "single character") {
		t.Fatal("expected comma error")
	}

	p.Parser = Parser{Kind: "tsv", Options: Options{"comma": ";"}}
	if !hasIssue(t, ValidatePipeline(p), SeverityWarning, "parser.options.comma", "ignored") {
		t.Fatal("expected tsv comma warning")
	}
}

func TestValidatePipeline_RangesAndWarnings(t *testing.T) {
	p := validPipeline()
	p.Clean.MinYear = -1
	p.Outliers = Outliers{Multiplier: float(-2), Metrics: []string{"Death", ""}}
	p.Chart = Chart{Month: 13, Year: -5}
	p.Server = Server{RateLimit: 5}
	p.Metrics = Metrics{Backend: "statsd"}

	issues := ValidatePipeline(p)
	checks := []struct {
		sev  IssueSeverity
		path string
		msg  string
	}{
		{SeverityError, "clean.min_year", "negative"},
		{SeverityError, "outliers.multiplier", "negative"},
		{SeverityError, "outliers.metrics[1]", "empty"},
		{SeverityWarning, "outliers.enabled", "disabled"},
		{SeverityError, "chart.month", "got 13"},
		{SeverityError, "chart.year", "negative"},
		{SeverityWarning, "server.burst", "burst of 1"},
		{SeverityWarning, "metrics.backend", `"statsd"`},
	}
	for _, c := range checks {
		if !hasIssue(t, issues, c.sev, c.path, c.msg) {
			t.Errorf("missing %s at %s (%q); got %+v", c.sev, c.path, c.msg, issues)
		}
	}
}

func TestIssue_Error(t *testing.T) {
	iss := Issue{Severity: SeverityError, Path: "source.kind", Message: "bad"}
	if got, want := iss.Error(), "error at source.kind: bad"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

// TestShippedPipelines keeps the sample pipelines under configs/ loadable and
// free of validation errors.
func TestShippedPipelines(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("..", "..", "configs", "pipelines", "*"))
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) == 0 {
		t.Fatal("no sample pipelines found")
	}
	for _, p := range paths {
		t.Run(filepath.Base(p), func(t *testing.T) {
			pl, err := Load(p)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			for _, iss := range ValidatePipeline(pl) {
				if iss.Severity == SeverityError {
					t.Errorf("unexpected %v", iss)
				}
			}
		})
	}
}
