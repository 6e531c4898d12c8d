package analysis

import (
	"fmt"
	"strings"

	"casetrend/internal/schema"
)

// UnknownMetricError is re-exported so callers can handle every selection
// error from this package.
type UnknownMetricError = schema.UnknownMetricError

// UnknownChartKindError reports an unsupported chart tag.
type UnknownChartKindError struct {
	Kind string
}

func (e *UnknownChartKindError) Error() string {
	names := make([]string, len(ChartKinds))
	for i, k := range ChartKinds {
		names[i] = string(k)
	}
	return fmt.Sprintf("unknown chart kind %q (want one of: %s)", e.Kind, strings.Join(names, ", "))
}

// NoDataError reports that the criteria matched no rows.
type NoDataError struct {
	Criteria Criteria
}

func (e *NoDataError) Error() string {
	return "no data for " + e.Criteria.describe()
}

// EmptyDistributionError reports a valid selection whose distribution totals
// are all zero.
type EmptyDistributionError struct {
	Criteria Criteria
	// By is "Region" or "Metric".
	By string
}

func (e *EmptyDistributionError) Error() string {
	return fmt.Sprintf("nothing to show: every %s total is zero for %s", strings.ToLower(e.By), e.Criteria.describe())
}

// InvalidCriteriaError reports criteria values outside their domain, e.g.
// month 13.
type InvalidCriteriaError struct {
	Field   string
	Value   any
	Message string
}

func (e *InvalidCriteriaError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Message)
}
