// Package cli implements the medialib command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/medialib/internal/config"
	"github.com/calvinalkan/medialib/internal/fs"
)

// Run is the main entry point. Returns exit code.
//
// A signal on sigCh cancels the context passed to the running command.
// sigCh may be nil.
func Run(stdin io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	globals := newGlobalFlags()

	if len(args) > 0 {
		args = args[1:]
	}

	err := globals.set.Parse(args)
	if err == nil && globals.set.Changed("storage-root") && *globals.storageRoot == "" {
		err = errStorageRootEmpty
	}

	if err != nil {
		fprintln(errOut, "error:", err)
		fprintln(errOut)
		printUsage(errOut, globals.set, nil)

		return 1
	}

	remaining := globals.set.Args()

	if *globals.help || len(remaining) == 0 {
		printUsage(out, globals.set, commands(&app{}))

		return 0
	}

	cfg, err := config.Load(config.LoadInput{
		WorkDirOverride:     *globals.cwd,
		ConfigPath:          *globals.config,
		StorageRootOverride: *globals.storageRoot,
		Env:                 env,
	})
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	level := cfg.Level()
	if *globals.verbose {
		level = slog.LevelDebug
	}

	a := &app{
		cfg:   cfg,
		fs:    fs.NewReal(),
		log:   slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: level})),
		env:   env,
		stdin: stdin,
	}

	name := remaining[0]

	var cmd *Command

	for _, c := range commands(a) {
		if c.Name() == name {
			cmd = c

			break
		}
	}

	if cmd == nil {
		fprintln(errOut, "error: unknown command:", name)
		printUsage(errOut, globals.set, commands(a))

		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	return cmd.Run(ctx, NewIO(out, errOut), remaining[1:])
}

// commands returns all commands in help order.
func commands(a *app) []*Command {
	return []*Command{
		InitCmd(a),
		ValidateCmd(a),
		LsCmd(a),
		SearchCmd(a),
		ShowCmd(a),
		AddCmd(a),
		EditCmd(a),
		RmCmd(a),
		BackupCmd(a),
		RestoreCmd(a),
		RestoreSchemaCmd(a),
		ImportCmd(a),
		ExportCmd(a),
		ScanCmd(a),
		FieldsCmd(a),
		MenuCmd(a),
		ConfigureCmd(a),
		PrintConfigCmd(a),
	}
}

type globalFlags struct {
	set         *flag.FlagSet
	cwd         *string
	config      *string
	storageRoot *string
	verbose     *bool
	help        *bool
}

func newGlobalFlags() globalFlags {
	set := flag.NewFlagSet("medialib", flag.ContinueOnError)
	set.SetOutput(io.Discard)
	set.SetInterspersed(false)

	return globalFlags{
		set:         set,
		cwd:         set.StringP("cwd", "C", "", "Run as if started in `dir`"),
		config:      set.StringP("config", "c", "", "Use specified config `file`"),
		storageRoot: set.String("storage-root", "", "Override the storage root `dir`"),
		verbose:     set.BoolP("verbose", "v", false, "Log debug output to stderr"),
		help:        set.BoolP("help", "h", false, "Show help"),
	}
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}

func printUsage(w io.Writer, globals *flag.FlagSet, cmds []*Command) {
	fprintln(w, `medialib - media catalog manager

Usage: medialib [global flags] <command> [args]

Global flags:`)

	var buf strings.Builder

	globals.SetOutput(&buf)
	globals.PrintDefaults()
	globals.SetOutput(io.Discard)
	_, _ = io.WriteString(w, buf.String())

	if len(cmds) == 0 {
		return
	}

	fprintln(w)
	fprintln(w, "Commands:")

	for _, c := range cmds {
		fprintln(w, c.HelpLine())
	}
}

var errStorageRootEmpty = errors.New("--storage-root cannot be empty")
