package cli

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/perfagg/internal/config"
	"github.com/calvinalkan/perfagg/internal/fs"
	"github.com/calvinalkan/perfagg/internal/scenario"
)

// ShowCmd returns the show command.
func ShowCmd(cfg *config.Config, fsys fs.FS, log zerolog.Logger) *Command {
	fset := flag.NewFlagSet("show", flag.ContinueOnError)
	collect := addCollectFlags(fset, cfg)
	metrics := fset.StringArray("metric", nil, "Only print these metrics (repeatable)")

	return &Command{
		Flags: fset,
		Usage: "show [flags] <root> <scenario>",
		Short: "Show one scenario's metadata and statistics",
		Long:  "Print the parsed metadata and per-operation statistics of a collected scenario.",
		Exec: func(ctx context.Context, o *IO, args []string) error {
			return execShow(ctx, o, cfg, fsys, log, collect.options(), *metrics, args)
		},
	}
}

func execShow(ctx context.Context, o *IO, cfg *config.Config, fsys fs.FS, log zerolog.Logger,
	opts scenario.CollectOptions, metrics []string, args []string,
) error {
	if len(args) == 0 {
		return ErrRootRequired
	}

	if len(args) == 1 {
		return ErrScenarioRequired
	}

	if len(args) > 2 {
		return fmt.Errorf("%w: %v", ErrTooManyArgs, args[2:])
	}

	scenarios, err := collectSorted(ctx, fsys, log, opts, resolve(cfg, args[0]))
	if err != nil {
		return err
	}

	idx := slices.IndexFunc(scenarios, func(s scenario.Scenario) bool { return s.Name == args[1] })
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrScenarioNotFound, args[1])
	}

	sc := &scenarios[idx]

	o.Println("name=" + sc.Name)
	o.Println("dir=" + sc.Dir)
	o.Println()
	o.Println("# metadata")
	o.Printf("%s", sc.Metadata.Marshal())
	o.Println()
	o.Println("# statistics")

	st := sc.Statistics
	if len(metrics) > 0 {
		st = st.Project(metrics...)
	}

	for _, op := range st.Operations() {
		rec := st[op]

		o.Println("[" + op + "]")

		for _, name := range slices.Sorted(maps.Keys(rec.Metrics)) {
			o.Println(name + "=" + strconv.FormatFloat(rec.Metrics[name], 'f', -1, 64))
		}
	}

	return nil
}
