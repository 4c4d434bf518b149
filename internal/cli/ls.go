package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/perfagg/internal/config"
	"github.com/calvinalkan/perfagg/internal/fs"
	"github.com/calvinalkan/perfagg/internal/scenario"
)

// LsCmd returns the ls command.
func LsCmd(cfg *config.Config, fsys fs.FS, log zerolog.Logger) *Command {
	fset := flag.NewFlagSet("ls", flag.ContinueOnError)
	collect := addCollectFlags(fset, cfg)
	keys := fset.Bool("keys", false, "Print the sort key fields after each name")

	return &Command{
		Flags: fset,
		Usage: "ls [flags] <root>",
		Short: "List scenarios in chart order",
		Long: `List the scenarios found under <root> in the order they appear in charts.

Directories lacking the metadata or statistics file are not listed.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			return execLs(ctx, o, cfg, fsys, log, collect.options(), *keys, args)
		},
	}
}

func execLs(ctx context.Context, o *IO, cfg *config.Config, fsys fs.FS, log zerolog.Logger,
	opts scenario.CollectOptions, withKeys bool, args []string,
) error {
	if len(args) == 0 {
		return ErrRootRequired
	}

	if len(args) > 1 {
		return fmt.Errorf("%w: %v", ErrTooManyArgs, args[1:])
	}

	scenarios, err := collectSorted(ctx, fsys, log, opts, resolve(cfg, args[0]))
	if err != nil {
		return err
	}

	for i := range scenarios {
		sc := &scenarios[i]

		if !withKeys {
			o.Println(sc.Name)

			continue
		}

		key, err := scenario.KeyOf(sc)
		if err != nil {
			return err
		}

		o.Println(sc.Name + "\t" + formatKey(key))
	}

	return nil
}

func formatKey(key scenario.SortKey) string {
	parts := make([]string, len(key))
	for i, v := range key {
		parts[i] = scenario.SortFields[i] + "=" + strconv.Itoa(v)
	}

	return strings.Join(parts, " ")
}
