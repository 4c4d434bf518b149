package report

import (
	"bytes"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/brewer"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgsvg"
)

const (
	svgChartWidth  = 15 * vg.Inch
	svgChartHeight = 4 * vg.Inch
	svgBarWidth    = 16
)

// SVGRenderer tiles every chart vertically into one SVG document.
type SVGRenderer struct{}

// Render implements [Renderer].
func (SVGRenderer) Render(title string, charts []ChartSpec) ([]byte, error) {
	if len(charts) == 0 {
		charts = []ChartSpec{{Title: title + ": no charts"}}
	}

	palette, err := brewer.GetPalette(brewer.TypeQualitative, "Dark2", 3)
	if err != nil {
		return nil, err
	}

	colors := palette.Colors()

	plots := make([][]*plot.Plot, len(charts))

	for i, c := range charts {
		p, err := newPlot(c, colors)
		if err != nil {
			return nil, fmt.Errorf("chart %q: %w", c.Title, err)
		}

		plots[i] = []*plot.Plot{p}
	}

	canvas := vgsvg.New(svgChartWidth, svgChartHeight*vg.Length(len(plots)))
	dc := draw.New(canvas)

	tiles := draw.Tiles{
		Rows: len(plots),
		Cols: 1,
		PadX: vg.Millimeter,
		PadY: 5 * vg.Millimeter,
	}

	aligned := plot.Align(plots, tiles, dc)
	for i := range plots {
		plots[i][0].Draw(aligned[i][0])
	}

	var buf bytes.Buffer
	if _, err := canvas.WriteTo(&buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func newPlot(c ChartSpec, colors []color.Color) (*plot.Plot, error) {
	p := plot.New()

	p.Title.Text = c.Title
	p.X.Label.Text = c.XLabel
	p.Y.Label.Text = c.YLabel
	p.Legend.Top = true

	if c.Empty() {
		return p, nil
	}

	if c.Kind == KindBar {
		return p, addBars(p, c, colors[0])
	}

	for i, s := range c.Series {
		if len(s.Points) == 0 {
			continue
		}

		xys := make(plotter.XYs, len(s.Points))
		for j, pt := range s.Points {
			xys[j].X = pt.X
			xys[j].Y = pt.Y
		}

		col := colors[i%len(colors)]

		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, err
		}

		line.Color = col

		if s.Name == SeriesFit {
			line.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
			p.Add(line)
			p.Legend.Add(s.Name, line)

			continue
		}

		scatter, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, err
		}

		scatter.GlyphStyle.Color = col
		scatter.GlyphStyle.Radius = vg.Points(3)

		// Samples are joined only on plain scatter charts; regression charts
		// show the fitted line instead.
		if c.Kind == KindScatter {
			p.Add(line)
		}

		p.Add(scatter)
		p.Legend.Add(s.Name, scatter)
	}

	if c.Fit != nil {
		p.Legend.Add(fmt.Sprintf("y = %.4f + %.4f*x", c.Fit.Intercept, c.Fit.Slope))
	}

	return p, nil
}

func addBars(p *plot.Plot, c ChartSpec, col color.Color) error {
	s := c.Series[0]

	values := make(plotter.Values, len(s.Points))
	labels := make([]string, len(s.Points))

	for i, pt := range s.Points {
		values[i] = pt.Y
		labels[i] = pt.Label
	}

	bars, err := plotter.NewBarChart(values, vg.Points(svgBarWidth))
	if err != nil {
		return err
	}

	bars.Color = col
	bars.LineStyle.Width = vg.Length(0)

	p.Add(bars)
	p.Legend.Add(s.Name, bars)
	p.NominalX(labels...)

	return nil
}
