package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/perfagg/internal/config"
	"github.com/calvinalkan/perfagg/internal/fs"
	"github.com/calvinalkan/perfagg/internal/report"
)

const reportTitle = "Aggregation of Performance Test Results"

// ReportCmd returns the report command.
func ReportCmd(cfg *config.Config, fsys fs.FS, log zerolog.Logger) *Command {
	fset := flag.NewFlagSet("report", flag.ContinueOnError)
	collect := addCollectFlags(fset, cfg)
	format := fset.String("format", cfg.Format, "Output format: html or svg")
	kind := fset.String("kind", string(report.KindBar), "Chart kind: bar or scatter")
	operations := fset.StringArray("operation", nil, "Operation to chart (repeatable; default from config)")
	metrics := fset.StringArray("metric", nil, "Metric to chart (repeatable; default from config)")
	xField := fset.String("x-field", cfg.XField, "Metadata `field` on the x axis of scatter charts")

	return &Command{
		Flags: fset,
		Usage: "report [flags] <root> [output]",
		Short: "Chart operations/metrics across scenarios",
		Long: `Collect every scenario under <root>, order them by system scale and write
one chart per (operation, metric) pair into a single report file.

The output file (default output.html, or output.svg with --format=svg)
is replaced on every run.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			k, err := report.ParseKind(*kind)
			if err != nil {
				return err
			}

			if k == report.KindRegression {
				return fmt.Errorf("%w: %q (use the regress command)", report.ErrUnknownKind, *kind)
			}

			return execReport(ctx, o, cfg, fsys, log, args, reportRun{
				collect:    collect,
				format:     *format,
				operations: orDefault(*operations, cfg.Operations),
				metrics:    orDefault(*metrics, cfg.Metrics),
				builder:    report.Options{Kind: k, XField: *xField},
			})
		},
	}
}

// reportRun carries the resolved flags shared by report and regress.
type reportRun struct {
	collect    *collectFlags
	format     string
	operations []string
	metrics    []string
	builder    report.Options

	// requireCharts turns a report without any chart into an error.
	requireCharts bool
}

func execReport(ctx context.Context, o *IO, cfg *config.Config, fsys fs.FS, log zerolog.Logger, args []string, run reportRun) error {
	if len(args) == 0 {
		return ErrRootRequired
	}

	if len(args) > 2 {
		return fmt.Errorf("%w: %v", ErrTooManyArgs, args[2:])
	}

	format, err := report.ParseFormat(run.format)
	if err != nil {
		return err
	}

	renderer, err := report.NewRenderer(format)
	if err != nil {
		return err
	}

	builder, err := report.NewBuilder(run.builder, log)
	if err != nil {
		return err
	}

	root := resolve(cfg, args[0])

	output := format.DefaultOutput()
	if len(args) == 2 {
		output = args[1]
	}

	output = resolve(cfg, output)

	scenarios, err := collectSorted(ctx, fsys, log, run.collect.options(), root)
	if err != nil {
		return err
	}

	if len(scenarios) == 0 {
		o.Warn("no scenarios found under "+root, "check the root directory, --depth and the file paths")
	}

	res, err := builder.Build(scenarios, report.Targets(run.operations, run.metrics))
	if err != nil {
		return err
	}

	for _, s := range res.Skipped {
		o.Warn(fmt.Sprintf("chart %s dropped: %v", s.Target, s.Err), "collect more scenarios with distinct x values")
	}

	if run.requireCharts && len(res.Charts) == 0 {
		return fmt.Errorf("%w: every target was dropped", ErrNoCharts)
	}

	log.Debug().Str("path", output).Int("charts", len(res.Charts)).Msg("writing report")

	if err := report.Write(fsys, output, renderer, reportTitle, res.Charts); err != nil {
		return err
	}

	o.Printf("wrote %s (%d charts, %d scenarios)\n", output, len(res.Charts), len(scenarios))

	return nil
}

func orDefault(values, fallback []string) []string {
	if len(values) > 0 {
		return values
	}

	return fallback
}
