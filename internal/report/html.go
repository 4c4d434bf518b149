package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
)

// HTMLRenderer writes a standalone page with one Chart.js canvas per chart.
// Chart data is embedded as JSON; the page needs network access only for
// the Chart.js script.
type HTMLRenderer struct{}

type htmlChart struct {
	ID   string
	Spec ChartSpec
}

type htmlView struct {
	Title      string
	Charts     []htmlChart
	ChartsJSON template.JS
}

// Render implements [Renderer].
func (HTMLRenderer) Render(title string, charts []ChartSpec) ([]byte, error) {
	view := htmlView{Title: title, Charts: make([]htmlChart, len(charts))}

	payload := make([]ChartSpec, len(charts))

	for i, c := range charts {
		view.Charts[i] = htmlChart{ID: fmt.Sprintf("chart-%d", i), Spec: c}
		payload[i] = c
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	view.ChartsJSON = template.JS(data) //nolint:gosec // marshaled by encoding/json

	var buf bytes.Buffer
	if err := htmlReportTemplate.Execute(&buf, view); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

var htmlReportTemplate = template.Must(template.New("perfagg-report").Parse(htmlReportTemplateHTML))

const htmlReportTemplateHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{ .Title }}</title>
  <style>
    body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; margin: 2rem; color: #222; }
    h1 { font-size: 1.4rem; }
    .chart { margin-bottom: 3rem; }
    .chart h2 { font-size: 1.05rem; margin-bottom: .5rem; }
    .chart-canvas { position: relative; height: 360px; }
    .summary { font-family: monospace; font-size: .9rem; margin-top: .5rem; }
    .empty { color: #888; font-style: italic; }
  </style>
</head>
<body>
  <h1>{{ .Title }}</h1>
{{- range .Charts }}
  <section class="chart" id="{{ .ID }}-section">
    <h2>{{ .Spec.Title }}</h2>
    {{- if .Spec.Empty }}
    <p class="empty">No data for {{ .Spec.Target.Operation }} / {{ .Spec.Target.Metric }}.</p>
    {{- end }}
    <div class="chart-canvas"><canvas id="{{ .ID }}" role="img" aria-label="{{ .Spec.Title }}"></canvas></div>
    {{- if .Spec.Summary }}
    <div class="summary">
      {{- range .Spec.Summary }}
      <span>{{ .Name }}={{ .Value }}</span>
      {{- end }}
    </div>
    {{- end }}
  </section>
{{- end }}
  <script src="https://cdn.jsdelivr.net/npm/chart.js@4.4.2/dist/chart.umd.min.js"></script>
  <script>
    var charts = {{ .ChartsJSON }};
  </script>
  <script>
    (function() {
      function annotationOf(ctx) {
        var p = ctx.raw && ctx.raw.point;
        return p && p.annotation ? p.annotation : ctx.formattedValue;
      }

      function barConfig(spec) {
        var s = spec.series[0] || { name: '', points: [] };
        return {
          type: 'bar',
          data: {
            labels: s.points.map(function(p) { return p.label; }),
            datasets: [{
              label: s.name,
              data: s.points.map(function(p) { return { x: p.label, y: p.y, point: p }; })
            }]
          }
        };
      }

      function xyConfig(spec) {
        return {
          type: 'scatter',
          data: {
            datasets: spec.series.map(function(s) {
              return {
                label: s.name,
                showLine: spec.kind === 'scatter' || s.name === 'fit',
                pointRadius: s.name === 'fit' ? 0 : 4,
                data: s.points.map(function(p) { return { x: p.x, y: p.y, point: p }; })
              };
            })
          }
        };
      }

      charts.forEach(function(spec, i) {
        var cfg = spec.kind === 'bar' ? barConfig(spec) : xyConfig(spec);
        cfg.options = {
          maintainAspectRatio: false,
          plugins: {
            tooltip: { callbacks: { label: annotationOf } }
          },
          scales: {
            x: { title: { display: true, text: spec.xLabel } },
            y: { title: { display: true, text: spec.yLabel }, beginAtZero: true }
          }
        };
        new Chart(document.getElementById('chart-' + i), cfg);
      });
    })();
  </script>
</body>
</html>
`
