package analysis

import (
	"slices"
	"strconv"
	"time"

	"casetrend/internal/dataset"
	"casetrend/internal/dates"
	"casetrend/internal/schema"
)

// Granularity is the resolution of a series axis.
type Granularity string

const (
	ByDay   Granularity = "Day"
	ByMonth Granularity = "Month"
	ByYear  Granularity = "Year"
)

// Result is what the aggregator hands to the chart shaper: a Series, a
// Distribution or Observations.
type Result interface {
	result()
}

// Point is one axis position of a series.
type Point struct {
	X     int    `json:"x"`
	Label string `json:"label"`
	Y     int64  `json:"y"`
}

// Series is a single time axis with one point per position in its domain.
type Series struct {
	Granularity Granularity
	Metric      schema.Metric
	Points      []Point
}

// Slice is one category of a distribution.
type Slice struct {
	Category string `json:"category"`
	Value    int64  `json:"value"`
}

// Distribution is a cross-sectional breakdown, per region or per metric.
type Distribution struct {
	// By is "Region" or "Metric".
	By     string
	Metric schema.Metric
	Slices []Slice
}

// Observations are the raw per-row values of one metric.
type Observations struct {
	Metric schema.Metric
	Values []int64
}

func (Series) result()       {}
func (Distribution) result() {}
func (Observations) result() {}

// GranularityFor applies the axis decision table: a month selects days, a
// year alone selects months, nothing selects years.
func GranularityFor(c Criteria) Granularity {
	switch {
	case c.Month != 0:
		return ByDay
	case c.Year != 0:
		return ByMonth
	default:
		return ByYear
	}
}

// Aggregate reduces a selection to the Result its chart kind needs.
func Aggregate(sel Selection) (Result, error) {
	switch {
	case sel.Kind.IsDistribution():
		return Distribute(sel)
	case sel.Kind.IsObservation():
		return Observe(sel), nil
	default:
		return SeriesOf(sel), nil
	}
}

// SeriesOf sums the selected metric per axis position. Day and Month axes are
// zero-filled over their whole domain; the Year axis lists only years present.
func SeriesOf(sel Selection) Series {
	g := GranularityFor(sel.Criteria)
	s := Series{Granularity: g, Metric: sel.Metric}

	sums := make(map[int]int64)
	for _, r := range sel.Rows.All {
		sums[axisValue(r, g)] += r.Value(sel.Metric)
	}

	switch g {
	case ByDay:
		year := sel.Criteria.Year
		if year == 0 && sel.Rows.Len() > 0 {
			year = sel.Rows.At(0).Year
		}
		n := dates.DaysIn(year, time.Month(sel.Criteria.Month))
		s.Points = fill(1, n, sums)
	case ByMonth:
		s.Points = fill(1, 12, sums)
	default:
		years := make([]int, 0, len(sums))
		for y := range sums {
			years = append(years, y)
		}
		slices.Sort(years)
		s.Points = make([]Point, len(years))
		for i, y := range years {
			s.Points[i] = Point{X: y, Label: strconv.Itoa(y), Y: sums[y]}
		}
	}
	return s
}

func fill(from, to int, sums map[int]int64) []Point {
	out := make([]Point, 0, to-from+1)
	for x := from; x <= to; x++ {
		out = append(out, Point{X: x, Label: strconv.Itoa(x), Y: sums[x]})
	}
	return out
}

func axisValue(r dataset.Row, g Granularity) int {
	switch g {
	case ByDay:
		return r.Day
	case ByMonth:
		return r.Month
	default:
		return r.Year
	}
}

// Distribute computes a pie breakdown. Without a region it totals the metric
// per region, largest first (ties keep first-appearance order). With a region
// it totals each of the four metrics in canonical order.
func Distribute(sel Selection) (Distribution, error) {
	if sel.Criteria.Region == "" {
		return byRegion(sel)
	}
	return byMetric(sel)
}

func byRegion(sel Selection) (Distribution, error) {
	d := Distribution{By: "Region", Metric: sel.Metric}
	index := make(map[string]int)
	for _, r := range sel.Rows.All {
		v := r.Value(sel.Metric)
		i, ok := index[r.Region]
		if !ok {
			i = len(d.Slices)
			index[r.Region] = i
			d.Slices = append(d.Slices, Slice{Category: r.Region})
		}
		d.Slices[i].Value += v
	}
	if !slices.ContainsFunc(d.Slices, func(s Slice) bool { return s.Value != 0 }) {
		return Distribution{}, &EmptyDistributionError{Criteria: sel.Criteria, By: d.By}
	}
	slices.SortStableFunc(d.Slices, func(a, b Slice) int {
		switch {
		case a.Value > b.Value:
			return -1
		case a.Value < b.Value:
			return 1
		}
		return 0
	})
	return d, nil
}

func byMetric(sel Selection) (Distribution, error) {
	d := Distribution{By: "Metric", Metric: sel.Metric}
	var total int64
	for _, m := range schema.Metrics {
		var sum int64
		for _, r := range sel.Rows.All {
			sum += r.Value(m)
		}
		total += sum
		d.Slices = append(d.Slices, Slice{Category: m.String(), Value: sum})
	}
	if total == 0 {
		return Distribution{}, &EmptyDistributionError{Criteria: sel.Criteria, By: d.By}
	}
	return d, nil
}

// Observe returns the selected metric of every matched row, ungrouped.
func Observe(sel Selection) Observations {
	o := Observations{Metric: sel.Metric, Values: make([]int64, 0, sel.Rows.Len())}
	for _, r := range sel.Rows.All {
		o.Values = append(o.Values, r.Value(sel.Metric))
	}
	return o
}
