// Package schema defines the canonical column set of a case-count dataset and
// the alias table used to map arbitrary source headers onto it.
package schema

import (
	"fmt"
	"strings"
)

// Canonical column names. Metric columns use their display labels so a
// normalized header round-trips to the label shown on a chart axis.
const (
	ColDate            = "Date"
	ColRegion          = "Region"
	ColConfirmedCases  = "Confirmed Cases"
	ColActiveCases     = "Active Cases"
	ColCuredDischarged = "Cured/Discharged"
	ColDeath           = "Death"

	// Derived columns, filled from Date.
	ColYear  = "Year"
	ColMonth = "Month"
	ColDay   = "Day"
)

// DateLayout is the layout used when a cleaned table is exported back to raw
// records. ISO dates are unambiguous for the day-first parser.
const DateLayout = "2006-01-02"

// Metric identifies one of the four case-count fields.
type Metric int

const (
	ConfirmedCases Metric = iota
	ActiveCases
	CuredDischarged
	Death
)

// Metrics lists all metrics in canonical order.
var Metrics = []Metric{ConfirmedCases, ActiveCases, CuredDischarged, Death}

var metricLabels = [...]string{
	ConfirmedCases:  ColConfirmedCases,
	ActiveCases:     ColActiveCases,
	CuredDischarged: ColCuredDischarged,
	Death:           ColDeath,
}

// String returns the display label, e.g. "Cured/Discharged".
func (m Metric) String() string {
	if m < 0 || int(m) >= len(metricLabels) {
		return fmt.Sprintf("Metric(%d)", int(m))
	}
	return metricLabels[m]
}

// Valid reports whether m is one of the four canonical metrics.
func (m Metric) Valid() bool { return m >= ConfirmedCases && m <= Death }

// ParseMetric resolves a display label (or any alias the header normalizer
// knows, e.g. "deaths", "recovered") to a Metric.
func ParseMetric(s string) (Metric, error) {
	canon := NormalizeHeader(s)
	for _, m := range Metrics {
		if m.String() == canon {
			return m, nil
		}
	}
	return 0, &UnknownMetricError{Metric: s}
}

// RequiredColumns are the columns the cleaner cannot work without.
var RequiredColumns = []string{ColDate, ColRegion}

// UnknownMetricError reports a metric name outside the canonical four.
type UnknownMetricError struct {
	Metric string
}

func (e *UnknownMetricError) Error() string {
	labels := make([]string, len(Metrics))
	for i, m := range Metrics {
		labels[i] = m.String()
	}
	return fmt.Sprintf("unknown metric %q (want one of: %s)", e.Metric, strings.Join(labels, ", "))
}
