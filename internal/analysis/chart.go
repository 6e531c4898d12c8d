package analysis

import (
	"fmt"
	"strconv"
	"strings"

	"casetrend/internal/dataset"
	"casetrend/internal/schema"
)

// Instruction is a renderer-agnostic drawing instruction. Exactly one of
// Points, Categories or Values is populated, depending on Kind.
type Instruction struct {
	Kind        ChartKind   `json:"kind"`
	Title       string      `json:"title"`
	XLabel      string      `json:"x_label"`
	YLabel      string      `json:"y_label"`
	Granularity Granularity `json:"granularity,omitempty"`
	Points      []Point     `json:"points,omitempty"`
	Categories  []Slice     `json:"categories,omitempty"`
	Values      []int64     `json:"values,omitempty"`
}

// Shape maps an aggregation result and a chart-kind tag to an Instruction.
// The kind must be compatible with the result: series kinds take a Series,
// pie takes a Distribution, histogram and box take Observations.
func Shape(res Result, kind string) (Instruction, error) {
	k, err := ParseChartKind(kind)
	if err != nil {
		return Instruction{}, err
	}
	in := Instruction{Kind: k}

	switch r := res.(type) {
	case Series:
		if k.IsDistribution() || k.IsObservation() {
			return Instruction{}, mismatch(k, res)
		}
		in.Granularity = r.Granularity
		in.XLabel = string(r.Granularity)
		in.YLabel = r.Metric.String()
		in.Title = fmt.Sprintf("%s by %s", r.Metric, r.Granularity)
		in.Points = r.Points
	case Distribution:
		if !k.IsDistribution() {
			return Instruction{}, mismatch(k, res)
		}
		in.XLabel = r.By
		in.YLabel = "Total"
		if r.By == "Metric" {
			in.Title = "Totals by Metric"
		} else {
			in.YLabel = r.Metric.String()
			in.Title = fmt.Sprintf("%s by Region", r.Metric)
		}
		in.Categories = r.Slices
	case Observations:
		if !k.IsObservation() {
			return Instruction{}, mismatch(k, res)
		}
		if k == Histogram {
			in.XLabel = r.Metric.String()
			in.YLabel = "Frequency"
		} else {
			in.YLabel = r.Metric.String()
		}
		in.Title = fmt.Sprintf("%s distribution", r.Metric)
		in.Values = r.Values
	default:
		return Instruction{}, fmt.Errorf("analysis: unsupported result %T", res)
	}
	return in, nil
}

func mismatch(k ChartKind, res Result) error {
	return fmt.Errorf("analysis: chart kind %q cannot draw %T", k, res)
}

// BuildChart resolves c against t, aggregates and shapes the result. The
// title is suffixed with the selection scope, e.g. "Death by Day (Kerala,
// 3/2021)".
func BuildChart(t *dataset.Table, c Criteria) (Instruction, error) {
	sel, err := Resolve(t, c)
	if err != nil {
		return Instruction{}, err
	}
	res, err := Aggregate(sel)
	if err != nil {
		return Instruction{}, err
	}
	in, err := Shape(res, string(sel.Kind))
	if err != nil {
		return Instruction{}, err
	}
	if scope := scopeOf(sel.Criteria); scope != "" {
		in.Title += " (" + scope + ")"
	}
	return in, nil
}

func scopeOf(c Criteria) string {
	var parts []string
	if r := strings.TrimSpace(c.Region); r != "" {
		parts = append(parts, r)
	}
	switch {
	case c.Month != 0 && c.Year != 0:
		parts = append(parts, fmt.Sprintf("%d/%d", c.Month, c.Year))
	case c.Month != 0:
		parts = append(parts, "month "+strconv.Itoa(c.Month))
	case c.Year != 0:
		parts = append(parts, strconv.Itoa(c.Year))
	}
	return strings.Join(parts, ", ")
}

// Choices lists the values a presenter can offer for each criteria field.
type Choices struct {
	Regions    []string    `json:"regions"`
	Years      []int       `json:"years"`
	Months     []int       `json:"months"`
	Metrics    []string    `json:"metrics"`
	ChartKinds []ChartKind `json:"chart_kinds"`
}

// Options returns the selectable values for t.
func Options(t *dataset.Table) Choices {
	metrics := make([]string, len(schema.Metrics))
	for i, m := range schema.Metrics {
		metrics[i] = m.String()
	}
	return Choices{
		Regions:    t.Regions(),
		Years:      t.Years(),
		Months:     t.Months(),
		Metrics:    metrics,
		ChartKinds: ChartKinds,
	}
}
