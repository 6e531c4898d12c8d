// Package outlier implements the optional interquartile-range row filter.
//
// Rows are grouped (by year unless configured otherwise), and within each
// group a row is kept only if every checked metric lies inside
// [Q1 - k*IQR, Q3 + k*IQR]. Quartiles use linear interpolation between order
// statistics, so small groups need no special handling.
package outlier

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"casetrend/internal/dataset"
	"casetrend/internal/schema"
)

// DefaultMultiplier is the conventional Tukey fence factor.
const DefaultMultiplier = 1.5

// GroupBy selects the grouping key.
type GroupBy string

const (
	ByYear   GroupBy = "Year"
	ByMonth  GroupBy = "Month" // calendar month of a given year
	ByRegion GroupBy = "Region"
	ByNone   GroupBy = "None"
)

// ParseGroupBy accepts a grouping name case-insensitively; empty means ByYear.
func ParseGroupBy(s string) (GroupBy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "year":
		return ByYear, nil
	case "month":
		return ByMonth, nil
	case "region":
		return ByRegion, nil
	case "none", "all":
		return ByNone, nil
	}
	return "", fmt.Errorf("outlier: unknown group_by %q (want Year, Month, Region or None)", s)
}

// Options configures Remove. Zero values select the defaults: all four
// metrics, grouping by year and a 1.5 multiplier.
type Options struct {
	Metrics []schema.Metric
	GroupBy GroupBy

	// Multiplier scales the IQR on both sides. Nil selects DefaultMultiplier;
	// Factor(0) fences each group at exactly [Q1, Q3].
	Multiplier *float64
}

// Factor returns a Multiplier value for Options.
func Factor(k float64) *float64 { return &k }

func (o Options) withDefaults() Options {
	if len(o.Metrics) == 0 {
		o.Metrics = schema.Metrics
	}
	if o.GroupBy == "" {
		o.GroupBy = ByYear
	}
	if o.Multiplier == nil {
		o.Multiplier = Factor(DefaultMultiplier)
	}
	return o
}

// Fence is the accepted range of one metric inside one group.
type Fence struct {
	Q1, Q3       float64
	Lower, Upper float64
}

// Contains reports whether v lies inside the fence, bounds included.
func (f Fence) Contains(v float64) bool { return v >= f.Lower && v <= f.Upper }

// Remove returns a new table without the rows that are outliers on any
// checked metric within their group. Row order is preserved.
func Remove(t *dataset.Table, opt Options) *dataset.Table {
	if t.Len() == 0 {
		return dataset.NewTable(nil)
	}
	opt = opt.withDefaults()
	fences := Fences(t, opt)

	return t.Filter(func(r dataset.Row) bool {
		g := fences[groupKey(r, opt.GroupBy)]
		for _, m := range opt.Metrics {
			if !g[m].Contains(float64(r.Value(m))) {
				return false
			}
		}
		return true
	})
}

// Fences computes the per-group, per-metric fences Remove applies.
func Fences(t *dataset.Table, opt Options) map[string]map[schema.Metric]Fence {
	opt = opt.withDefaults()
	k := *opt.Multiplier

	values := make(map[string]map[schema.Metric][]float64)
	for _, r := range t.All {
		key := groupKey(r, opt.GroupBy)
		g, ok := values[key]
		if !ok {
			g = make(map[schema.Metric][]float64, len(opt.Metrics))
			values[key] = g
		}
		for _, m := range opt.Metrics {
			g[m] = append(g[m], float64(r.Value(m)))
		}
	}

	out := make(map[string]map[schema.Metric]Fence, len(values))
	for key, g := range values {
		fs := make(map[schema.Metric]Fence, len(g))
		for m, vs := range g {
			slices.Sort(vs)
			q1 := Quantile(vs, 0.25)
			q3 := Quantile(vs, 0.75)
			iqr := q3 - q1
			fs[m] = Fence{
				Q1: q1, Q3: q3,
				Lower: q1 - k*iqr,
				Upper: q3 + k*iqr,
			}
		}
		out[key] = fs
	}
	return out
}

// Quantile returns the q-th quantile (0..1) of sorted using linear
// interpolation at position (n-1)*q. It returns NaN for an empty slice.
func Quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	pos := float64(n-1) * q
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

func groupKey(r dataset.Row, by GroupBy) string {
	switch by {
	case ByMonth:
		return fmt.Sprintf("%04d-%02d", r.Year, r.Month)
	case ByRegion:
		return r.Region
	case ByNone:
		return ""
	default:
		return strconv.Itoa(r.Year)
	}
}
