package report

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/calvinalkan/perfagg/internal/metadata"
	"github.com/calvinalkan/perfagg/internal/scenario"
)

const titlePrefix = "Aggregation of Performance Test Results"

// Series names used by scatter and regression charts.
const (
	SeriesSamples = "samples"
	SeriesFit     = "fit"
)

// Summary field names on regression charts.
const (
	SummaryIntercept = "intercept"
	SummarySlope     = "slope"
	SummaryPoints    = "points"
)

// Options configures a [Builder].
type Options struct {
	// Kind selects the chart layout. Default: KindBar
	Kind Kind

	// XField is the metadata field plotted on the x axis of scatter and
	// regression charts. Ignored for bar charts.
	XField string
}

// Builder produces one [ChartSpec] per [Target].
type Builder struct {
	opts Options
	log  zerolog.Logger
}

// NewBuilder validates opts and returns a builder.
func NewBuilder(opts Options, log zerolog.Logger) (*Builder, error) {
	if opts.Kind == "" {
		opts.Kind = KindBar
	}

	if _, err := ParseKind(string(opts.Kind)); err != nil {
		return nil, err
	}

	if opts.Kind != KindBar && opts.XField == "" {
		return nil, fmt.Errorf("%s chart: %w: x field not set", opts.Kind, metadata.ErrMissingField)
	}

	return &Builder{opts: opts, log: log}, nil
}

// BuildResult holds the charts produced by [Builder.Build] and the targets
// that were dropped because they could not be fit.
type BuildResult struct {
	Charts  []ChartSpec
	Skipped []SkippedChart
}

// SkippedChart is a target with no chart and the reason.
type SkippedChart struct {
	Target Target
	Err    error
}

// Build charts every target in order. [ErrInsufficientData] drops only the
// affected chart; any other error aborts.
func (b *Builder) Build(scenarios []scenario.Scenario, targets []Target) (BuildResult, error) {
	if len(targets) == 0 {
		return BuildResult{}, ErrNoTargets
	}

	var res BuildResult

	for _, t := range targets {
		chart, err := b.Chart(scenarios, t)
		if errors.Is(err, ErrInsufficientData) {
			b.log.Debug().Str("target", t.String()).Err(err).Msg("chart skipped")
			res.Skipped = append(res.Skipped, SkippedChart{Target: t, Err: err})

			continue
		}

		if err != nil {
			return BuildResult{}, err
		}

		b.log.Debug().
			Str("target", t.String()).
			Str("kind", string(chart.Kind)).
			Int("points", pointCount(chart)).
			Msg("chart built")

		res.Charts = append(res.Charts, chart)
	}

	return res, nil
}

// Chart builds the chart for one target. Scenarios lacking the operation or
// metric are left out of the chart.
func (b *Builder) Chart(scenarios []scenario.Scenario, t Target) (ChartSpec, error) {
	switch b.opts.Kind {
	case KindScatter:
		return b.scatter(scenarios, t)
	case KindRegression:
		return b.regression(scenarios, t)
	default:
		return b.bar(scenarios, t), nil
	}
}

func (b *Builder) bar(scenarios []scenario.Scenario, t Target) ChartSpec {
	points := []Point{}

	for i := range scenarios {
		sc := &scenarios[i]

		y, ok := sc.Statistics.Metric(t.Operation, t.Metric)
		if !ok {
			continue
		}

		points = append(points, Point{
			X:          float64(len(points)),
			Y:          y,
			Label:      sc.Name,
			Annotation: annotate(sc, t.Metric, y),
		})
	}

	return ChartSpec{
		Title:  chartTitle(t),
		Kind:   KindBar,
		Target: t,
		XLabel: "Scenario",
		YLabel: t.Metric,
		Series: []Series{{Name: t.Operation, Points: points}},
	}
}

func (b *Builder) scatter(scenarios []scenario.Scenario, t Target) (ChartSpec, error) {
	points, err := b.xyPoints(scenarios, t)
	if err != nil {
		return ChartSpec{}, err
	}

	return ChartSpec{
		Title:  chartTitle(t),
		Kind:   KindScatter,
		Target: t,
		XLabel: b.opts.XField,
		YLabel: t.Metric,
		Series: []Series{{Name: SeriesSamples, Points: points}},
	}, nil
}

func (b *Builder) regression(scenarios []scenario.Scenario, t Target) (ChartSpec, error) {
	points, err := b.xyPoints(scenarios, t)
	if err != nil {
		return ChartSpec{}, err
	}

	fit, err := FitLine(points)
	if err != nil {
		return ChartSpec{}, fmt.Errorf("%s: %w", t, err)
	}

	xs := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.X
	}

	minX, maxX := floats.Min(xs), floats.Max(xs)

	return ChartSpec{
		Title:  chartTitle(t) + " (regression)",
		Kind:   KindRegression,
		Target: t,
		XLabel: b.opts.XField,
		YLabel: t.Metric,
		Series: []Series{
			{Name: SeriesSamples, Points: points},
			{Name: SeriesFit, Points: []Point{
				{X: minX, Y: fit.At(minX)},
				{X: maxX, Y: fit.At(maxX)},
			}},
		},
		Fit: &fit,
		Summary: []SummaryField{
			{Name: SummaryIntercept, Value: formatFloat(fit.Intercept)},
			{Name: SummarySlope, Value: formatFloat(fit.Slope)},
			{Name: SummaryPoints, Value: strconv.Itoa(len(points))},
		},
	}, nil
}

// xyPoints pairs the x field with the metric for every scenario that has the
// metric. A scenario that has the metric but not the x field is an error.
func (b *Builder) xyPoints(scenarios []scenario.Scenario, t Target) ([]Point, error) {
	points := []Point{}

	for i := range scenarios {
		sc := &scenarios[i]

		y, ok := sc.Statistics.Metric(t.Operation, t.Metric)
		if !ok {
			continue
		}

		x, err := sc.Metadata.Float(b.opts.XField)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
		}

		points = append(points, Point{
			X:          x,
			Y:          y,
			Label:      sc.Name,
			Annotation: annotate(sc, t.Metric, y),
		})
	}

	return points, nil
}

// FitLine fits y = a + b*x by ordinary least squares. Fewer than two points,
// or points that all share one x value, return [ErrInsufficientData].
func FitLine(points []Point) (Fit, error) {
	if len(points) < 2 {
		return Fit{}, fmt.Errorf("%w: %d point(s), need at least 2", ErrInsufficientData, len(points))
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))

	for i, p := range points {
		xs[i] = p.X
		ys[i] = p.Y
	}

	if floats.Min(xs) == floats.Max(xs) {
		return Fit{}, fmt.Errorf("%w: all points share x=%s", ErrInsufficientData, formatFloat(xs[0]))
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	if math.IsNaN(alpha) || math.IsNaN(beta) || math.IsInf(beta, 0) {
		return Fit{}, fmt.Errorf("%w: degenerate fit", ErrInsufficientData)
	}

	return Fit{Intercept: alpha, Slope: beta}, nil
}

func chartTitle(t Target) string {
	return fmt.Sprintf("%s: %s - %s", titlePrefix, t.Operation, t.Metric)
}

// annotate renders the hover text: the scale parameters of the scenario and
// the measured value.
func annotate(sc *scenario.Scenario, metric string, y float64) string {
	fields := []struct {
		label string
		name  string
	}{
		{"Plants", metadata.FieldOEMPlants},
		{"Cars", metadata.FieldOEMCarsInitial},
		{"Parts/Car", metadata.FieldPartsPerCar},
		{"Cars/Interval", metadata.FieldCarsPerInterval},
	}

	parts := make([]string, 0, len(fields)+1)

	for _, f := range fields {
		v, ok := sc.Metadata.Lookup(f.name)
		if !ok {
			v = "-"
		}

		parts = append(parts, f.label+": "+v)
	}

	parts = append(parts, fmt.Sprintf("%s: %.2f", metric, y))

	return strings.Join(parts, ", ")
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 4, 64)
}

func pointCount(c ChartSpec) int {
	n := 0
	for _, s := range c.Series {
		n += len(s.Points)
	}

	return n
}
