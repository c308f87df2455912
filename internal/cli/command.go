package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"
)

// Command defines a CLI command with unified help generation.
type Command struct {
	// Flags defines command-specific flags.
	// The FlagSet name is not used - command identity comes from Usage.
	Flags *flag.FlagSet

	// Usage is the freeform usage string shown after "medialib" in help.
	// Includes the command name and arguments/flags.
	// Examples: "show <kind> <key>", "ls <kind> [flags]"
	Usage string

	// Short is a one-line description for the global help listing.
	Short string

	// Long is the full description shown in command help.
	// If empty, Short is used instead.
	Long string

	// Exec runs the command after flags are parsed.
	Exec func(ctx context.Context, o *IO, args []string) error
}

// Name returns the command name (first word of Usage).
func (c *Command) Name() string {
	name, _, _ := strings.Cut(c.Usage, " ")
	return name
}

// HelpLine returns the short help line for the main usage display.
func (c *Command) HelpLine() string {
	return fmt.Sprintf("  %-34s %s", c.Usage, c.Short)
}

// PrintHelp prints the full help output for "medialib <cmd> --help".
func (c *Command) PrintHelp(o *IO) {
	o.flushWarnings()
	c.writeHelp(o.out)
}

// writeHelp renders the help text to w. A flag error sends it to stderr.
func (c *Command) writeHelp(w io.Writer) {
	_, _ = fmt.Fprintln(w, "Usage: medialib", c.Usage)
	_, _ = fmt.Fprintln(w)

	desc := c.Long
	if desc == "" {
		desc = c.Short
	}

	_, _ = fmt.Fprintln(w, desc)

	if c.Flags != nil && c.Flags.HasFlags() {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, "Flags:")

		c.Flags.SetOutput(w)
		c.Flags.PrintDefaults()
	}
}

// Run parses flags and executes the command. Returns exit code.
// Handles error printing internally for consistent output ordering.
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
		c.writeHelp(o.errOut)
		return 1
	}

	if err := c.Exec(ctx, o, c.Flags.Args()); err != nil {
		o.ErrPrintln("error:", describe(err))
		o.Finish()
		return 1
	}

	return o.Finish()
}
