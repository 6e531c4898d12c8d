// Package setup installs the metrics backend named in the pipeline config.
package setup

import (
	"fmt"
	"log"
	"os"

	"casetrend/internal/config"
	"casetrend/internal/metrics"
	"casetrend/internal/metrics/datadog"
	"casetrend/internal/metrics/prompush"
)

// Backend names accepted in config.Metrics.Backend.
const (
	None        = "none"
	Pushgateway = "pushgateway"
	Datadog     = "datadog"
)

// Install builds and installs the backend selected by m, falling back to the
// METRICS_BACKEND environment variable when m.Backend is empty. The returned
// flush func is never nil; call it before exit. An unknown backend leaves the
// no-op backend in place and is only logged.
func Install(m config.Metrics, job string) (flush func(), err error) {
	noop := func() {}

	name := m.Backend
	if name == "" {
		name = os.Getenv("METRICS_BACKEND")
	}
	if job == "" {
		job = "casetrend"
	}

	var b metrics.Backend
	switch name {
	case "", None:
		return noop, nil

	case Pushgateway:
		url := m.PushgatewayURL
		if url == "" {
			url = os.Getenv("PUSHGATEWAY_URL")
		}
		if url == "" {
			url = "http://localhost:9091"
		}
		pb, err := prompush.NewBackend(job, url)
		if err != nil {
			return noop, fmt.Errorf("metrics: %w", err)
		}
		log.Printf("metrics: url=%v, backend=%v, job_name=%v", url, name, job)
		b = pb

	case Datadog:
		addr := m.DatadogAddr
		if addr == "" {
			addr = os.Getenv("DD_DOGSTATSD_URL")
		}
		if addr == "" {
			addr = "127.0.0.1:8125"
		}
		db, err := datadog.NewBackend(datadog.Config{
			Addr:       addr,
			Namespace:  "casetrend.",
			GlobalTags: []string{"job:" + job},
		})
		if err != nil {
			return noop, fmt.Errorf("metrics: %w", err)
		}
		log.Printf("metrics: addr=%v, backend=%v, job_name=%v", addr, name, job)
		b = db

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", name)
		return noop, nil
	}

	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}, nil
}
