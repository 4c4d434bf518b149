package cli

import (
	"context"

	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/perfagg/internal/config"
	"github.com/calvinalkan/perfagg/internal/fs"
	"github.com/calvinalkan/perfagg/internal/report"
)

// RegressCmd returns the regress command.
func RegressCmd(cfg *config.Config, fsys fs.FS, log zerolog.Logger) *Command {
	fset := flag.NewFlagSet("regress", flag.ContinueOnError)
	collect := addCollectFlags(fset, cfg)
	format := fset.String("format", cfg.Format, "Output format: html or svg")
	operations := fset.StringArrayP("operation", "o", nil, "Operation to analyze (required, repeatable)")
	metrics := fset.StringArray("metric", nil, "Metric to analyze (repeatable; default from config)")
	xField := fset.String("x-field", cfg.RegressionXField, "Metadata `field` used as the regressor")

	return &Command{
		Flags: fset,
		Usage: "regress -o <operation> [flags] <root> [output]",
		Short: "Fit a regression line per metric for an operation",
		Long: `Plot each metric of the given operation against a metadata field and fit a
least-squares line through the points.

A chart with fewer than two distinct x values is dropped with a warning.
If every chart is dropped, no output is written.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(*operations) == 0 {
				return ErrOperationRequired
			}

			return execReport(ctx, o, cfg, fsys, log, args, reportRun{
				collect:       collect,
				format:        *format,
				operations:    *operations,
				metrics:       orDefault(*metrics, cfg.Metrics),
				builder:       report.Options{Kind: report.KindRegression, XField: *xField},
				requireCharts: true,
			})
		},
	}
}
