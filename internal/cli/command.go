package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	flag "github.com/spf13/pflag"
)

// Command is one perfagg subcommand. Its name is the first word of Usage.
type Command struct {
	Flags *flag.FlagSet

	// Usage follows "perfagg" in help, e.g. "regress -o <operation> [flags] <root> [output]".
	Usage string
	Short string

	// Long is shown by "perfagg <cmd> --help"; Short is used when empty.
	Long string

	// Exec receives the positional arguments left after flag parsing. A
	// returned error exits 1; dropped charts go through [IO.Warn] instead.
	Exec func(ctx context.Context, o *IO, args []string) error
}

// Name returns the command name (first word of Usage).
func (c *Command) Name() string {
	name, _, _ := strings.Cut(c.Usage, " ")
	return name
}

// HelpLine pads Usage to width so Short lines up across the command list.
func (c *Command) HelpLine(width int) string {
	return fmt.Sprintf("  %-*s  %s", width, c.Usage, c.Short)
}

// usageWidth is the longest Usage among commands.
func usageWidth(commands []*Command) int {
	width := 0
	for _, c := range commands {
		width = max(width, len(c.Usage))
	}

	return width
}

// PrintHelp prints the description and flag defaults of one command.
func (c *Command) PrintHelp(o *IO) {
	o.Println("Usage: perfagg", c.Usage)
	o.Println()

	desc := c.Long
	if desc == "" {
		desc = c.Short
	}

	o.Println(desc)

	if c.Flags != nil && c.Flags.HasFlags() {
		o.Println()
		o.Println("Flags:")

		var buf strings.Builder
		c.Flags.SetOutput(&buf)
		c.Flags.PrintDefaults()
		o.Printf("%s", buf.String())
	}
}

// Run parses args and calls Exec. Errors are printed as "error: ..." followed
// by the usage line; otherwise the exit code comes from [IO.Finish].
func (c *Command) Run(ctx context.Context, o *IO, args []string) int {
	c.Flags.SetOutput(&strings.Builder{}) // discard pflag output

	err := c.Flags.Parse(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			c.PrintHelp(o)
			return 0
		}
		o.ErrPrintln("error:", err)
		o.ErrPrintln()
		c.printUsageHint(o)
		return 1
	}

	if err := c.Exec(ctx, o, c.Flags.Args()); err != nil {
		o.ErrPrintln("error:", err)
		c.printUsageHint(o)
		return 1
	}

	return o.Finish()
}

func (c *Command) printUsageHint(o *IO) {
	o.ErrPrintln("Usage: perfagg", c.Usage)
}
