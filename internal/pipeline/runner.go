package pipeline

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/dustin/go-humanize"

	"casetrend/internal/clean"
	"casetrend/internal/config"
	"casetrend/internal/dataset"
	"casetrend/internal/metrics"
	"casetrend/internal/outlier"
	"casetrend/internal/schema"
)

// Summary describes one published load.
type Summary struct {
	Snapshot *dataset.Snapshot
	Loaded   int
	Skipped  int
	Clean    clean.Report
	Outliers int
	Elapsed  time.Duration
}

// Runner loads the configured source into a dataset.Store. The Store keeps
// serving the previous snapshot until a load has fully succeeded.
type Runner struct {
	Pipeline config.Pipeline
	Store    *dataset.Store
}

// NewRunner returns a Runner publishing into store.
func NewRunner(p config.Pipeline, store *dataset.Store) *Runner {
	return &Runner{Pipeline: p, Store: store}
}

// Run loads the configured source, cleans it and publishes the result.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	ld, err := r.load(ctx)
	metrics.RecordStep(r.job(), "load", err, time.Since(start))
	if err != nil {
		return Summary{}, fmt.Errorf("load: %w", err)
	}
	return r.finish(ld, start)
}

// Ingest parses body as a file called name and publishes it, replacing the
// current dataset. The parser kind follows name's extension unless the
// pipeline parser config forces one.
func (r *Runner) Ingest(name string, body io.Reader) (Summary, error) {
	start := time.Now()
	ld, err := Parse(name, body, r.Pipeline.Parser)
	metrics.RecordStep(r.job(), "load", err, time.Since(start))
	if err != nil {
		return Summary{}, fmt.Errorf("load: %w", err)
	}
	return r.finish(ld, start)
}

func (r *Runner) load(ctx context.Context) (Loaded, error) {
	if r.Pipeline.Source.Kind == SourceSQL {
		return LoadSQL(ctx, r.Pipeline.Source.SQL)
	}
	src, err := NewSource(r.Pipeline.Source)
	if err != nil {
		return Loaded{}, err
	}
	return LoadSource(ctx, src, r.Pipeline.Parser)
}

func (r *Runner) finish(ld Loaded, start time.Time) (Summary, error) {
	job := r.job()
	sum := Summary{Loaded: len(ld.Records), Skipped: ld.Skipped}
	metrics.RecordRow(job, "loaded", int64(len(ld.Records)))
	metrics.RecordRow(job, "skipped_parse", int64(ld.Skipped))

	t0 := time.Now()
	t, rep, err := clean.Clean(ld.Records, clean.Options{MinYear: r.Pipeline.Clean.MinYear})
	metrics.RecordStep(job, "clean", err, time.Since(t0))
	if err != nil {
		return Summary{}, fmt.Errorf("clean %s: %w", ld.Name, err)
	}
	sum.Clean = rep
	metrics.RecordRow(job, "dropped_no_date", int64(rep.DroppedNoDate))
	metrics.RecordRow(job, "dropped_no_region", int64(rep.DroppedNoRegion))
	metrics.RecordRow(job, "dropped_min_year", int64(rep.DroppedMinYear))
	metrics.RecordRow(job, "dropped_duplicate", int64(rep.DroppedDuplicate))

	if r.Pipeline.Outliers.Enabled {
		t0 = time.Now()
		opt, err := OutlierOptions(r.Pipeline.Outliers)
		if err == nil {
			before := t.Len()
			t = outlier.Remove(t, opt)
			sum.Outliers = before - t.Len()
		}
		metrics.RecordStep(job, "outliers", err, time.Since(t0))
		if err != nil {
			return Summary{}, err
		}
		metrics.RecordRow(job, "dropped_outlier", int64(sum.Outliers))
	}
	metrics.RecordRow(job, "kept", int64(t.Len()))

	sum.Snapshot = r.Store.Publish(ld.Name, t)
	sum.Elapsed = time.Since(start)

	log.Printf("published %s snapshot=%s rows=%s dropped=%s outliers=%s regions=%d in %s",
		ld.Name, sum.Snapshot.ID, humanize.Comma(int64(t.Len())),
		humanize.Comma(int64(rep.Dropped())), humanize.Comma(int64(sum.Outliers)),
		len(t.Regions()), sum.Elapsed.Truncate(time.Millisecond))
	return sum, nil
}

func (r *Runner) job() string {
	if r.Pipeline.Job == "" {
		return "casetrend"
	}
	return r.Pipeline.Job
}

// OutlierOptions converts the outliers config section into filter options.
func OutlierOptions(o config.Outliers) (outlier.Options, error) {
	gb, err := outlier.ParseGroupBy(o.GroupBy)
	if err != nil {
		return outlier.Options{}, err
	}
	ms := make([]schema.Metric, 0, len(o.Metrics))
	for _, name := range o.Metrics {
		m, err := schema.ParseMetric(name)
		if err != nil {
			return outlier.Options{}, fmt.Errorf("outliers.metrics: %w", err)
		}
		ms = append(ms, m)
	}
	return outlier.Options{Metrics: ms, GroupBy: gb, Multiplier: o.Multiplier}, nil
}
