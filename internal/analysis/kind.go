package analysis

import "strings"

// ChartKind is a supported chart tag.
type ChartKind string

const (
	Line      ChartKind = "line"
	Bar       ChartKind = "bar"
	Scatter   ChartKind = "scatter"
	Area      ChartKind = "area"
	Histogram ChartKind = "histogram"
	Box       ChartKind = "box"
	Pie       ChartKind = "pie"
)

// ChartKinds lists the supported kinds in display order.
var ChartKinds = []ChartKind{Line, Bar, Scatter, Area, Histogram, Box, Pie}

var kindAliases = map[string]ChartKind{
	"line":      Line,
	"bar":       Bar,
	"scatter":   Scatter,
	"area":      Area,
	"histogram": Histogram,
	"hist":      Histogram,
	"box":       Box,
	"boxplot":   Box,
	"pie":       Pie,
}

// ParseChartKind matches s case-insensitively against the supported tags.
func ParseChartKind(s string) (ChartKind, error) {
	if k, ok := kindAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return k, nil
	}
	return "", &UnknownChartKindError{Kind: s}
}

// IsDistribution reports whether k is a cross-sectional view.
func (k ChartKind) IsDistribution() bool { return k == Pie }

// IsObservation reports whether k plots raw per-row values instead of an
// aggregated series.
func (k ChartKind) IsObservation() bool { return k == Histogram || k == Box }

// Title returns the capitalized tag, e.g. "Line".
func (k ChartKind) Title() string {
	if k == "" {
		return ""
	}
	return strings.ToUpper(string(k[:1])) + string(k[1:])
}
