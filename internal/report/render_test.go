package report_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/perfagg/internal/fs"
	"github.com/calvinalkan/perfagg/internal/report"
)

func sampleCharts() []report.ChartSpec {
	fit := report.Fit{Intercept: 1, Slope: 2}

	return []report.ChartSpec{
		{
			Title:  "first <bar>",
			Kind:   report.KindBar,
			Target: report.Target{Operation: "Initiate Transfer", Metric: "medianResTime"},
			XLabel: "Scenario",
			YLabel: "medianResTime",
			Series: []report.Series{{Name: "Initiate Transfer", Points: []report.Point{
				{X: 0, Y: 100, Label: "A"},
				{X: 1, Y: 50, Label: "B"},
			}}},
		},
		{
			Title:  "second regression",
			Kind:   report.KindRegression,
			Target: report.Target{Operation: "Get Transfer State", Metric: "meanResTime"},
			XLabel: "ADDITIONAL_CONTRACT_DEFINITIONS_OEM",
			YLabel: "meanResTime",
			Series: []report.Series{
				{Name: report.SeriesSamples, Points: []report.Point{{X: 1, Y: 3}, {X: 2, Y: 5}}},
				{Name: report.SeriesFit, Points: []report.Point{{X: 1, Y: 3}, {X: 2, Y: 5}}},
			},
			Fit:     &fit,
			Summary: []report.SummaryField{{Name: "intercept", Value: "1.0000"}, {Name: "slope", Value: "2.0000"}},
		},
		{
			Title:  "third empty",
			Kind:   report.KindBar,
			Target: report.Target{Operation: "Missing", Metric: "meanResTime"},
			Series: []report.Series{{Name: "Missing", Points: []report.Point{}}},
		},
	}
}

func Test_HTMLRenderer_Writes_Charts_In_Order_When_Rendered(t *testing.T) {
	t.Parallel()

	out, err := report.HTMLRenderer{}.Render("Results", sampleCharts())
	require.NoError(t, err)

	page := string(out)

	first := strings.Index(page, "first &lt;bar&gt;")
	second := strings.Index(page, "second regression")
	third := strings.Index(page, "third empty")

	require.NotEqual(t, -1, first, "escaped title missing")
	assert.Less(t, first, second)
	assert.Less(t, second, third)

	assert.Contains(t, page, `id="chart-0"`)
	assert.Contains(t, page, `id="chart-2"`)
	assert.Contains(t, page, "slope=2.0000")
	assert.Contains(t, page, "No data for Missing / meanResTime.")
	assert.Contains(t, page, `"kind":"regression"`)
	assert.NotContains(t, page, "first <bar>", "titles must be escaped")
}

func Test_SVGRenderer_Produces_SVG_Document_When_Rendered(t *testing.T) {
	t.Parallel()

	out, err := report.SVGRenderer{}.Render("Results", sampleCharts())
	require.NoError(t, err)

	doc := string(out)
	assert.Contains(t, doc, "<svg")
	assert.Contains(t, doc, "second regression")
}

func Test_SVGRenderer_Renders_Placeholder_When_No_Charts(t *testing.T) {
	t.Parallel()

	out, err := report.SVGRenderer{}.Render("Results", nil)
	require.NoError(t, err)
	assert.Contains(t, string(out), "<svg")
}

func Test_Write_Replaces_Previous_Report_When_Destination_Exists(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "output.html")
	require.NoError(t, os.WriteFile(path, []byte("STALE-CONTENT-FROM-EARLIER-RUN"), 0o644))

	r, err := report.NewRenderer(report.FormatHTML)
	require.NoError(t, err)

	require.NoError(t, report.Write(fs.NewReal(), path, r, "Run 1", sampleCharts()[:1]))
	require.NoError(t, report.Write(fs.NewReal(), path, r, "Run 2", sampleCharts()[:1]))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	page := string(data)
	assert.NotContains(t, page, "STALE-CONTENT")
	assert.Equal(t, 1, strings.Count(page, "<!DOCTYPE html>"))
	assert.Contains(t, page, "Run 2")
	assert.NotContains(t, page, "Run 1")
}

func Test_Write_Creates_Parent_Directories_When_Missing(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "reports", "2024", "output.svg")

	r, err := report.NewRenderer(report.FormatSVG)
	require.NoError(t, err)

	require.NoError(t, report.Write(fs.NewReal(), path, r, "Results", sampleCharts()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")
}

func Test_ParseFormat_Rejects_Unknown_When_Parsing(t *testing.T) {
	t.Parallel()

	f, err := report.ParseFormat("svg")
	require.NoError(t, err)
	assert.Equal(t, "output.svg", f.DefaultOutput())

	_, err = report.ParseFormat("png")
	require.ErrorIs(t, err, report.ErrUnknownFormat)

	_, err = report.NewRenderer("png")
	require.ErrorIs(t, err, report.ErrUnknownFormat)
}
