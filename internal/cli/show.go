package cli

import (
	"context"

	flag "github.com/spf13/pflag"
)

// ShowCmd returns the show command.
func ShowCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("show", flag.ContinueOnError),
		Usage: "show <kind> <key>",
		Short: "Show item details",
		Long:  "Display every field of the item whose unique key is <key>.",
		Exec: func(_ context.Context, io *IO, args []string) error {
			return execShow(io, a, args)
		},
	}
}

func execShow(io *IO, a *app, args []string) error {
	if len(args) == 0 {
		return errKindRequired
	}

	s, err := a.store(args[0])
	if err != nil {
		return err
	}

	if len(args) < 2 {
		return errKeyRequired
	}

	rec, err := s.Get(args[1])
	if err != nil {
		return err
	}

	io.PrintLines(recordLines(s.Codec().Fields(), rec, ""))

	return nil
}
