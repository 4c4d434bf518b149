// Package cli implements the perfagg command line: global flags, config
// loading, logging setup and command dispatch.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/perfagg/internal/config"
	"github.com/calvinalkan/perfagg/internal/fs"
)

// Run is the main entry point. Returns exit code.
//
// sigCh may be nil. The first signal received cancels the context passed to
// the command; collection stops before the next scenario directory.
func Run(_ io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	globals := flag.NewFlagSet("perfagg", flag.ContinueOnError)
	globals.SetInterspersed(false)
	globals.SetOutput(&strings.Builder{})

	workDir := globals.StringP("cwd", "C", "", "Run as if started in `dir`")
	configPath := globals.StringP("config", "c", "", "Use specified config `file`")
	verbose := globals.BoolP("verbose", "v", false, "Debug logging to stderr")

	var rest []string
	if len(args) > 1 {
		rest = args[1:]
	}

	if err := globals.Parse(rest); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			defaults := config.DefaultConfig()
			printUsage(out, globals, allCommands(&defaults, fs.NewReal(), zerolog.Nop()))

			return 0
		}

		fprintln(errOut, "error:", err)
		printUsage(errOut, globals, nil)

		return 1
	}

	cfg, err := config.Load(config.LoadInput{
		WorkDirOverride: *workDir,
		ConfigPath:      *configPath,
		Env:             env,
	})
	if err != nil {
		fprintln(errOut, "error:", err)
		printUsage(errOut, globals, nil)

		return 1
	}

	log := newLogger(errOut, cfg.LogLevel, *verbose)
	commands := allCommands(&cfg, fs.NewReal(), log)

	remaining := globals.Args()
	if len(remaining) == 0 {
		printUsage(out, globals, commands)

		return 0
	}

	name := remaining[0]

	if name == "help" {
		printUsage(out, globals, commands)

		return 0
	}

	var cmd *Command

	for _, c := range commands {
		if c.Name() == name {
			cmd = c

			break
		}
	}

	if cmd == nil {
		fprintln(errOut, "error: unknown command:", name)
		printUsage(errOut, globals, commands)

		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if sigCh != nil {
		done := make(chan struct{})
		defer close(done)

		go func() {
			select {
			case sig := <-sigCh:
				log.Info().Str("signal", sig.String()).Msg("interrupted")
				cancel()
			case <-done:
			}
		}()
	}

	log.Debug().
		Str("command", name).
		Str("cwd", cfg.EffectiveCwd).
		Str("global_config", cfg.Sources.Global).
		Str("project_config", cfg.Sources.Project).
		Msg("starting")

	return cmd.Run(ctx, NewIO(out, errOut), remaining[1:])
}

// allCommands returns the commands in help order.
func allCommands(cfg *config.Config, fsys fs.FS, log zerolog.Logger) []*Command {
	return []*Command{
		ReportCmd(cfg, fsys, log),
		RegressCmd(cfg, fsys, log),
		LsCmd(cfg, fsys, log),
		ShowCmd(cfg, fsys, log),
		PrintConfigCmd(cfg),
	}
}

// newLogger writes human-readable log lines to errOut. Timestamps are left
// out so stderr stays stable across runs.
func newLogger(errOut io.Writer, level string, verbose bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	if verbose {
		lvl = zerolog.DebugLevel
	}

	w := zerolog.ConsoleWriter{
		Out:          errOut,
		NoColor:      true,
		PartsExclude: []string{zerolog.TimestampFieldName},
	}

	return zerolog.New(w).Level(lvl)
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}

func printUsage(w io.Writer, globals *flag.FlagSet, commands []*Command) {
	fprintln(w, `perfagg - performance test results aggregation

Usage: perfagg [options] <command> [args]

Options:`)

	var buf strings.Builder
	globals.SetOutput(&buf)
	globals.PrintDefaults()
	globals.SetOutput(&strings.Builder{})
	_, _ = io.WriteString(w, buf.String())

	if len(commands) == 0 {
		return
	}

	fprintln(w)
	fprintln(w, "Commands:")

	width := usageWidth(commands)
	for _, c := range commands {
		fprintln(w, c.HelpLine(width))
	}

	fprintln(w)
	fprintln(w, `Run "perfagg <command> --help" for command flags.`)
}
