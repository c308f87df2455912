package cli

import (
	"fmt"
	"io"
)

// warning is an issue found while a command still produced output, paired
// with what the user can do about it.
type warning struct {
	issue  string
	action string
}

func (w warning) String() string {
	return "warning: " + w.issue + ": " + w.action
}

// IO wraps a command's stdout and stderr.
//
// Warnings collected with Warn are written to stderr twice: before the first
// line of regular output and again by Finish. A library listing piped
// through head or tail therefore still shows that the file was invalid.
// Any warning makes the exit code 1.
type IO struct {
	out      io.Writer
	errOut   io.Writer
	warnings []warning
	flushed  bool
}

// NewIO creates a new IO instance.
func NewIO(out, errOut io.Writer) *IO {
	return &IO{out: out, errOut: errOut}
}

// Warn records an issue and the action that resolves it. Regular output is
// not suppressed.
func (o *IO) Warn(issue string, action string) {
	o.warnings = append(o.warnings, warning{issue: issue, action: action})
}

// Println writes to stdout.
func (o *IO) Println(a ...any) {
	o.flushWarnings()
	_, _ = fmt.Fprintln(o.out, a...)
}

// Printf writes formatted output to stdout.
func (o *IO) Printf(format string, a ...any) {
	o.flushWarnings()
	_, _ = fmt.Fprintf(o.out, format, a...)
}

// PrintLines writes each line to stdout. Used for rendered tables and
// record dumps.
func (o *IO) PrintLines(lines []string) {
	for _, line := range lines {
		o.Println(line)
	}
}

// ErrPrintln writes to stderr.
func (o *IO) ErrPrintln(a ...any) {
	_, _ = fmt.Fprintln(o.errOut, a...)
}

// Out returns the stdout writer.
func (o *IO) Out() io.Writer {
	return o.out
}

// Finish repeats the warnings on stderr and returns the exit code.
func (o *IO) Finish() int {
	// A command that printed nothing still gets its leading copy.
	o.flushWarnings()

	for _, w := range o.warnings {
		_, _ = fmt.Fprintln(o.errOut, w)
	}

	if len(o.warnings) > 0 {
		return 1
	}

	return 0
}

func (o *IO) flushWarnings() {
	if o.flushed || len(o.warnings) == 0 {
		return
	}

	for _, w := range o.warnings {
		_, _ = fmt.Fprintln(o.errOut, w)
	}

	o.flushed = true
}
