// Package analysis resolves chart selections against a cleaned table,
// aggregates the selected rows and shapes the result into a renderer-agnostic
// chart instruction.
//
// Everything here is a pure function of an immutable dataset.Table and a
// Criteria value; failures are returned as the typed errors in errors.go.
package analysis

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"casetrend/internal/dataset"
	"casetrend/internal/schema"
)

// Defaults applied to empty criteria fields.
const (
	DefaultChartKind = Line
	DefaultMetric    = schema.ConfirmedCases
)

// Criteria is one chart request. Zero values mean "not set".
type Criteria struct {
	Region    string `json:"region,omitempty"`
	Month     int    `json:"month,omitempty" validate:"min=0,max=12"`
	Year      int    `json:"year,omitempty" validate:"min=0,max=9999"`
	Metric    string `json:"metric,omitempty"`
	ChartKind string `json:"chart_kind,omitempty"`
}

func (c Criteria) describe() string {
	var parts []string
	if c.Region != "" {
		parts = append(parts, fmt.Sprintf("region=%q", c.Region))
	}
	if c.Month != 0 {
		parts = append(parts, fmt.Sprintf("month=%d", c.Month))
	}
	if c.Year != 0 {
		parts = append(parts, fmt.Sprintf("year=%d", c.Year))
	}
	if len(parts) == 0 {
		return "all rows"
	}
	return strings.Join(parts, " ")
}

// Selection is a validated Criteria together with the rows it matched.
type Selection struct {
	Criteria Criteria
	Kind     ChartKind
	Metric   schema.Metric
	Rows     *dataset.Table
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Use JSON tag names in error messages.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Resolve validates c and filters t down to the matching rows.
//
// Region is trimmed first. Checks then run in this order: chart kind, metric
// (distribution views fall back to DefaultMetric), value ranges, then the
// Region, Year and Month filters. An empty result is a *NoDataError.
func Resolve(t *dataset.Table, c Criteria) (Selection, error) {
	c.Region = strings.TrimSpace(c.Region)
	sel := Selection{Criteria: c, Kind: DefaultChartKind, Metric: DefaultMetric}

	if strings.TrimSpace(c.ChartKind) != "" {
		k, err := ParseChartKind(c.ChartKind)
		if err != nil {
			return Selection{}, err
		}
		sel.Kind = k
	}

	if strings.TrimSpace(c.Metric) != "" {
		m, err := schema.ParseMetric(c.Metric)
		// Distribution views fall back to DefaultMetric.
		if err != nil && !sel.Kind.IsDistribution() {
			return Selection{}, err
		}
		if err == nil {
			sel.Metric = m
		}
	}

	if err := validate.Struct(c); err != nil {
		return Selection{}, criteriaError(err)
	}

	sel.Rows = t.Filter(c.Matches)
	if sel.Rows.Len() == 0 {
		return Selection{}, &NoDataError{Criteria: c}
	}
	return sel, nil
}

// Matches reports whether r passes the Region, Year and Month filters of c.
// Region is trimmed and then compared exactly.
func (c Criteria) Matches(r dataset.Row) bool {
	if region := strings.TrimSpace(c.Region); region != "" && r.Region != region {
		return false
	}
	if c.Year != 0 && r.Year != c.Year {
		return false
	}
	if c.Month != 0 && r.Month != c.Month {
		return false
	}
	return true
}

func criteriaError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &InvalidCriteriaError{
			Field:   fe.Field(),
			Value:   fe.Value(),
			Message: fmt.Sprintf("failed %s=%s", fe.Tag(), fe.Param()),
		}
	}
	return err
}
