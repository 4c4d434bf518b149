package report_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/perfagg/internal/metadata"
	"github.com/calvinalkan/perfagg/internal/report"
	"github.com/calvinalkan/perfagg/internal/scenario"
	"github.com/calvinalkan/perfagg/internal/stats"
)

func newScenario(t *testing.T, name, md, st string) scenario.Scenario {
	t.Helper()

	parsedMD, err := metadata.ParseBytes([]byte(md))
	require.NoError(t, err)

	parsedST, err := stats.Parse([]byte(st))
	require.NoError(t, err)

	return scenario.Scenario{Name: name, Metadata: parsedMD, Statistics: parsedST}
}

func newBuilder(t *testing.T, opts report.Options) *report.Builder {
	t.Helper()

	b, err := report.NewBuilder(opts, zerolog.Nop())
	require.NoError(t, err)

	return b
}

func labels(s report.Series) []string {
	out := make([]string, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Label
	}

	return out
}

func Test_FitLine_Returns_Slope_And_Intercept_When_Points_Collinear(t *testing.T) {
	t.Parallel()

	fit, err := report.FitLine([]report.Point{{X: 1, Y: 10}, {X: 2, Y: 20}, {X: 3, Y: 30}})
	require.NoError(t, err)

	assert.InDelta(t, 10.0, fit.Slope, 1e-9)
	assert.InDelta(t, 0.0, fit.Intercept, 1e-9)
	assert.InDelta(t, 40.0, fit.At(4), 1e-9)
}

func Test_FitLine_Returns_ErrInsufficientData_When_Fewer_Than_Two_Distinct_X(t *testing.T) {
	t.Parallel()

	cases := map[string][]report.Point{
		"none":     nil,
		"one":      {{X: 1, Y: 1}},
		"same x":   {{X: 2, Y: 1}, {X: 2, Y: 5}},
		"same x 3": {{X: 0, Y: 1}, {X: 0, Y: 5}, {X: 0, Y: 9}},
	}

	for name, points := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := report.FitLine(points)
			require.ErrorIs(t, err, report.ErrInsufficientData)
		})
	}
}

func Test_Bar_Lists_Scenarios_In_Sorted_Order_When_Built(t *testing.T) {
	t.Parallel()

	in := []scenario.Scenario{
		newScenario(t, "B", "OEM_PLANTS=2\n", `{"Initiate Transfer": {"medianResTime": 50}}`),
		newScenario(t, "A", "OEM_PLANTS=1\n", `{"Initiate Transfer": {"medianResTime": 100}}`),
	}

	sorted, err := scenario.Sort(in)
	require.NoError(t, err)

	chart, err := newBuilder(t, report.Options{}).Chart(sorted, report.Target{Operation: "Initiate Transfer", Metric: "medianResTime"})
	require.NoError(t, err)

	require.Len(t, chart.Series, 1)

	want := []report.Point{
		{X: 0, Y: 100, Label: "A", Annotation: "Plants: 1, Cars: -, Parts/Car: -, Cars/Interval: -, medianResTime: 100.00"},
		{X: 1, Y: 50, Label: "B", Annotation: "Plants: 2, Cars: -, Parts/Car: -, Cars/Interval: -, medianResTime: 50.00"},
	}

	if diff := cmp.Diff(want, chart.Series[0].Points); diff != "" {
		t.Fatalf("points mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, report.KindBar, chart.Kind)
	assert.Equal(t, "medianResTime", chart.YLabel)
}

func Test_Bar_Omits_Scenarios_When_Operation_Or_Metric_Missing(t *testing.T) {
	t.Parallel()

	in := []scenario.Scenario{
		newScenario(t, "has", "", `{"Initiate Transfer": {"meanResTime": 5}}`),
		newScenario(t, "other-op", "", `{"Get Transfer State": {"meanResTime": 7}}`),
		newScenario(t, "other-metric", "", `{"Initiate Transfer": {"sampleCount": 9}}`),
	}

	chart, err := newBuilder(t, report.Options{}).Chart(in, report.Target{Operation: "Initiate Transfer", Metric: "meanResTime"})
	require.NoError(t, err)

	assert.Equal(t, []string{"has"}, labels(chart.Series[0]))
}

func Test_Bar_Returns_Empty_Chart_When_Operation_Absent_Everywhere(t *testing.T) {
	t.Parallel()

	in := []scenario.Scenario{
		newScenario(t, "a", "", `{"Get Transfer State": {"meanResTime": 7}}`),
	}

	chart, err := newBuilder(t, report.Options{}).Chart(in, report.Target{Operation: "Initiate Transfer", Metric: "meanResTime"})
	require.NoError(t, err)

	assert.True(t, chart.Empty())
}

func Test_Scatter_Uses_Metadata_Field_As_X_When_Built(t *testing.T) {
	t.Parallel()

	in := []scenario.Scenario{
		newScenario(t, "a", "OEM_PLANTS=1\n", `{"Get Transfer State": {"meanResTime": 7}}`),
		newScenario(t, "b", "OEM_PLANTS=4\n", `{"Get Transfer State": {"meanResTime": 3}}`),
		newScenario(t, "c", "", `{"Total": {"meanResTime": 3}}`),
	}

	b := newBuilder(t, report.Options{Kind: report.KindScatter, XField: metadata.FieldOEMPlants})

	chart, err := b.Chart(in, report.Target{Operation: "Get Transfer State", Metric: "meanResTime"})
	require.NoError(t, err)

	require.Len(t, chart.Series, 1)
	pts := chart.Series[0].Points
	require.Len(t, pts, 2)
	assert.InDelta(t, 1.0, pts[0].X, 1e-9)
	assert.InDelta(t, 4.0, pts[1].X, 1e-9)
	assert.Equal(t, metadata.FieldOEMPlants, chart.XLabel)
	assert.Nil(t, chart.Fit)
}

func Test_Scatter_Returns_ErrMissingField_When_X_Field_Absent(t *testing.T) {
	t.Parallel()

	in := []scenario.Scenario{
		newScenario(t, "a", "OTHER=1\n", `{"Get Transfer State": {"meanResTime": 7}}`),
	}

	b := newBuilder(t, report.Options{Kind: report.KindScatter, XField: metadata.FieldOEMPlants})

	_, err := b.Chart(in, report.Target{Operation: "Get Transfer State", Metric: "meanResTime"})
	require.ErrorIs(t, err, metadata.ErrMissingField)
}

func Test_Regression_Adds_Fit_Series_And_Summary_When_Enough_Points(t *testing.T) {
	t.Parallel()

	in := []scenario.Scenario{
		newScenario(t, "one", "ADDITIONAL_CONTRACT_DEFINITIONS_OEM=1\n", `{"Initiate Transfer": {"medianResTime": 10}}`),
		newScenario(t, "two", "ADDITIONAL_CONTRACT_DEFINITIONS_OEM=2\n", `{"Initiate Transfer": {"medianResTime": 20}}`),
		newScenario(t, "three", "ADDITIONAL_CONTRACT_DEFINITIONS_OEM=3\n", `{"Initiate Transfer": {"medianResTime": 30}}`),
	}

	b := newBuilder(t, report.Options{Kind: report.KindRegression, XField: metadata.FieldOEMContractDefs})

	chart, err := b.Chart(in, report.Target{Operation: "Initiate Transfer", Metric: "medianResTime"})
	require.NoError(t, err)

	require.Len(t, chart.Series, 2)
	assert.Equal(t, report.SeriesSamples, chart.Series[0].Name)
	assert.Equal(t, report.SeriesFit, chart.Series[1].Name)
	assert.Len(t, chart.Series[0].Points, 3)

	fitPts := chart.Series[1].Points
	require.Len(t, fitPts, 2)
	assert.InDelta(t, 10.0, fitPts[0].Y, 1e-9)
	assert.InDelta(t, 30.0, fitPts[1].Y, 1e-9)

	require.NotNil(t, chart.Fit)
	assert.InDelta(t, 10.0, chart.Fit.Slope, 1e-9)

	slope, ok := chart.SummaryValue(report.SummarySlope)
	require.True(t, ok)
	assert.Equal(t, "10.0000", slope)

	intercept, ok := chart.SummaryValue(report.SummaryIntercept)
	require.True(t, ok)
	assert.Contains(t, []string{"0.0000", "-0.0000"}, intercept)
}

func Test_Build_Skips_Regression_Chart_When_Operation_In_One_Scenario(t *testing.T) {
	t.Parallel()

	in := []scenario.Scenario{
		newScenario(t, "a", "ADDITIONAL_CONTRACT_DEFINITIONS_OEM=1\n",
			`{"Initiate Transfer": {"medianResTime": 10, "sampleCount": 3}, "Get Transfer State": {"medianResTime": 1}}`),
		newScenario(t, "b", "ADDITIONAL_CONTRACT_DEFINITIONS_OEM=2\n",
			`{"Get Transfer State": {"medianResTime": 2}}`),
	}

	b := newBuilder(t, report.Options{Kind: report.KindRegression, XField: metadata.FieldOEMContractDefs})

	_, err := b.Chart(in, report.Target{Operation: "Initiate Transfer", Metric: "medianResTime"})
	require.ErrorIs(t, err, report.ErrInsufficientData)

	res, err := b.Build(in, report.Targets(
		[]string{"Initiate Transfer", "Get Transfer State"},
		[]string{"medianResTime"},
	))
	require.NoError(t, err)

	require.Len(t, res.Charts, 1)
	assert.Equal(t, "Get Transfer State", res.Charts[0].Target.Operation)

	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "Initiate Transfer", res.Skipped[0].Target.Operation)
	require.ErrorIs(t, res.Skipped[0].Err, report.ErrInsufficientData)
}

func Test_Build_Returns_ErrNoTargets_When_Targets_Empty(t *testing.T) {
	t.Parallel()

	_, err := newBuilder(t, report.Options{}).Build(nil, nil)
	require.ErrorIs(t, err, report.ErrNoTargets)
}

func Test_NewBuilder_Rejects_Options_When_Invalid(t *testing.T) {
	t.Parallel()

	_, err := report.NewBuilder(report.Options{Kind: "pie"}, zerolog.Nop())
	require.ErrorIs(t, err, report.ErrUnknownKind)

	_, err = report.NewBuilder(report.Options{Kind: report.KindRegression}, zerolog.Nop())
	require.ErrorIs(t, err, metadata.ErrMissingField)
}

func Test_Targets_Returns_Operation_Major_Product_When_Expanded(t *testing.T) {
	t.Parallel()

	got := report.Targets([]string{"op1", "op2"}, []string{"m1", "m2"})

	want := []report.Target{
		{Operation: "op1", Metric: "m1"},
		{Operation: "op1", Metric: "m2"},
		{Operation: "op2", Metric: "m1"},
		{Operation: "op2", Metric: "m2"},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("targets mismatch (-want +got):\n%s", diff)
	}
}
