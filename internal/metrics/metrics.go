// Package metrics provides a small, backend-agnostic abstraction for recording
// operational metrics from casetrend runs and the chart server.
//
//   - It exposes a narrow interface (Backend) focused on counters and timing
//     data (histograms).
//   - It provides a global, pluggable backend that defaults to a no-op
//     implementation, so metrics are always safe to call even when no real
//     backend is configured.
//
// Concrete metric systems live in subpackages (prompush, datadog). The
// cleaning and charting packages never call into this package; the pipeline
// runner and the web server record on their behalf.
package metrics

import (
	"strconv"
	"time"
)

// Metric names shared by all backends.
const (
	StepTotal           = "casetrend_step_total"
	StepDurationSeconds = "casetrend_step_duration_seconds"
	RowsTotal           = "casetrend_rows_total"
	RequestsTotal       = "casetrend_http_requests_total"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing
// backend. Call it during startup, before any goroutine records metrics.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordStep records latency and success/failure of one run step
// ("load", "clean", "outliers", "chart", "publish").
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"job":    job,
		"step":   step,
		"status": status,
	}

	backend.IncCounter(StepTotal, 1, lbls)
	backend.ObserveHistogram(StepDurationSeconds, d.Seconds(), lbls)
}

// RecordRow increments a row-level counter for the given job and kind.
//
// Kinds mirror the cleaning report, e.g.:
//   - "loaded"
//   - "skipped_parse"
//   - "dropped_no_date"
//   - "dropped_no_region"
//   - "dropped_min_year"
//   - "dropped_duplicate"
//   - "dropped_outlier"
//   - "kept"
func RecordRow(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(RowsTotal, float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}

// RecordRequest counts one chart server request by route pattern and status
// code.
func RecordRequest(route string, status int) {
	backend.IncCounter(RequestsTotal, 1, Labels{
		"route":  route,
		"status": strconv.Itoa(status),
	})
}
