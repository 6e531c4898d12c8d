// Package pipeline runs a casetrend load: fetch the raw export, parse it,
// clean it, optionally drop outliers and publish the result as the current
// dataset. It also exposes the three entry points callers use on tables they
// already hold.
package pipeline

import (
	"casetrend/internal/analysis"
	"casetrend/internal/clean"
	"casetrend/internal/config"
	"casetrend/internal/dataset"
	"casetrend/internal/outlier"
	"casetrend/internal/schema"
	"casetrend/pkg/records"
)

// NormalizeAndClean maps raw records onto the canonical schema and cleans
// them. minYear of zero selects clean.DefaultMinYear.
func NormalizeAndClean(rows []records.Record, minYear int) (*dataset.Table, error) {
	t, _, err := clean.Clean(rows, clean.Options{MinYear: minYear})
	return t, err
}

// RemoveOutliers drops rows outside the IQR fences of any of metrics within
// their group. Empty metrics checks all four; k of zero means 1.5.
func RemoveOutliers(t *dataset.Table, metrics []schema.Metric, groupBy outlier.GroupBy, k float64) *dataset.Table {
	return outlier.Remove(t, outlier.Options{Metrics: metrics, GroupBy: groupBy, Multiplier: outlier.Factor(k)})
}

// BuildChart turns criteria into a render-ready chart instruction.
func BuildChart(t *dataset.Table, c analysis.Criteria) (analysis.Instruction, error) {
	return analysis.BuildChart(t, c)
}

// CriteriaFromConfig converts the chart config section into criteria.
func CriteriaFromConfig(c config.Chart) analysis.Criteria {
	return analysis.Criteria{
		Region:    c.Region,
		Month:     c.Month,
		Year:      c.Year,
		Metric:    c.Metric,
		ChartKind: c.Kind,
	}
}
