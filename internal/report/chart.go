// Package report turns ordered scenarios into renderer-agnostic chart
// descriptions ([ChartSpec]) and serializes them into a single report
// artifact.
package report

import (
	"errors"
	"fmt"
)

// Kind selects the chart layout.
type Kind string

// Chart kinds.
const (
	KindBar        Kind = "bar"
	KindScatter    Kind = "scatter"
	KindRegression Kind = "regression"
)

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindBar, KindScatter, KindRegression:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Error variables for chart construction and rendering.
var (
	ErrInsufficientData = errors.New("insufficient data for regression")
	ErrUnknownKind      = errors.New("unknown chart kind")
	ErrUnknownFormat    = errors.New("unknown report format")
	ErrNoTargets        = errors.New("no operation/metric targets")
)

// Target names one (operation, metric) pair to chart.
type Target struct {
	Operation string
	Metric    string
}

func (t Target) String() string {
	return t.Operation + " / " + t.Metric
}

// Targets returns the cross product of operations and metrics, operation
// major.
func Targets(operations, metrics []string) []Target {
	out := make([]Target, 0, len(operations)*len(metrics))

	for _, op := range operations {
		for _, m := range metrics {
			out = append(out, Target{Operation: op, Metric: m})
		}
	}

	return out
}

// Point is one data point. Label names the point on the axis or in the
// legend; Annotation is the longer hover text.
type Point struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Label      string  `json:"label,omitempty"`
	Annotation string  `json:"annotation,omitempty"`
}

// Series is a named sequence of points.
type Series struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

// Fit is a least-squares line y = Intercept + Slope*x.
type Fit struct {
	Intercept float64 `json:"intercept"`
	Slope     float64 `json:"slope"`
}

// At evaluates the line at x.
func (f Fit) At(x float64) float64 {
	return f.Intercept + f.Slope*x
}

// ChartSpec describes one chart. Produced by [Builder] and consumed by a
// [Renderer].
type ChartSpec struct {
	Title  string   `json:"title"`
	Kind   Kind     `json:"kind"`
	Target Target   `json:"-"`
	XLabel string   `json:"xLabel"`
	YLabel string   `json:"yLabel"`
	Series []Series `json:"series"`

	// Fit is set for regression charts.
	Fit *Fit `json:"fit,omitempty"`

	// Summary holds textual fields shown beside the chart, in key order.
	Summary []SummaryField `json:"summary,omitempty"`
}

// SummaryField is a labeled value shown with a chart.
type SummaryField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Empty reports whether no series has any point.
func (c ChartSpec) Empty() bool {
	for _, s := range c.Series {
		if len(s.Points) > 0 {
			return false
		}
	}

	return true
}

// SummaryValue returns the summary field called name.
func (c ChartSpec) SummaryValue(name string) (string, bool) {
	for _, f := range c.Summary {
		if f.Name == name {
			return f.Value, true
		}
	}

	return "", false
}
