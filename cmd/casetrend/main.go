// Command casetrend loads a COVID case-count export, cleans it, optionally
// drops outliers and prints one chart instruction as JSON.
//
// Usage:
//
//	casetrend -config configs/india.yaml -region Kerala -year 2021 -month 3 -metric Death
//	casetrend -config configs/india.yaml -validate
//	casetrend -config configs/india.yaml -options
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"casetrend/internal/analysis"
	"casetrend/internal/config"
	"casetrend/internal/dataset"
	"casetrend/internal/metrics"
	"casetrend/internal/metrics/setup"
	"casetrend/internal/pipeline"

	// register all SQL sources with the storage factory.
	_ "casetrend/internal/storage/all"
)

// errInvalidConfig is returned after the issues have been printed.
var errInvalidConfig = errors.New("configuration is invalid")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("casetrend", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		cfgPath  = fs.String("config", "configs/pipelines/india.json", "pipeline config path (.json, .yaml, .yml, .toml)")
		file     = fs.String("file", "", "read this local file instead of the configured source")
		validate = fs.Bool("validate", false, "validate the configuration and exit")
		options  = fs.Bool("options", false, "print the selectable values instead of a chart")
		verbose  = fs.Bool("v", false, "enable verbose logs")

		region = fs.String("region", "", "region filter (overrides chart.region)")
		month  = fs.Int("month", -1, "month filter 1-12, 0 for all (overrides chart.month)")
		year   = fs.Int("year", -1, "year filter, 0 for all (overrides chart.year)")
		metric = fs.String("metric", "", "metric (overrides chart.metric)")
		kind   = fs.String("kind", "", "chart kind (overrides chart.kind)")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !*verbose {
		log.SetOutput(io.Discard)
	}

	p, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	if *file != "" {
		p.Source = config.Source{Kind: pipeline.SourceFile, File: config.SourceFile{Path: *file}}
	}

	issues := config.ValidatePipeline(p)
	for _, iss := range issues {
		fmt.Fprintf(stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		return fmt.Errorf("%w: %s", errInvalidConfig, *cfgPath)
	}
	if *validate {
		fmt.Fprintf(stderr, "Configuration is valid: %v\n", *cfgPath)
		return nil
	}

	flush, err := setup.Install(p.Metrics, p.Job)
	if err != nil {
		log.Printf("%v; using nop", err)
	}
	defer flush()

	start := time.Now()
	sum, err := pipeline.NewRunner(p, dataset.NewStore()).Run(ctx)
	if err != nil {
		return err
	}
	t := sum.Snapshot.Table

	var out any
	if *options {
		out = analysis.Options(t)
	} else {
		c := pipeline.CriteriaFromConfig(p.Chart)
		if *region != "" {
			c.Region = *region
		}
		if *month >= 0 {
			c.Month = *month
		}
		if *year >= 0 {
			c.Year = *year
		}
		if *metric != "" {
			c.Metric = *metric
		}
		if *kind != "" {
			c.ChartKind = *kind
		}
		t0 := time.Now()
		in, err := pipeline.BuildChart(t, c)
		metrics.RecordStep(p.Job, "chart", err, time.Since(t0))
		if err != nil {
			return err
		}
		out = in
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	return nil
}
