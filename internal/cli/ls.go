package cli

import (
	"context"
	"errors"

	"github.com/calvinalkan/medialib/internal/catalog"

	flag "github.com/spf13/pflag"
)

const emptyLibrary = "The library is empty."

// LsCmd returns the ls command.
func LsCmd(a *app) *Command {
	fs := flag.NewFlagSet("ls", flag.ContinueOnError)
	fs.String("sort", "", "Sort by `field` (default: the kind's default sort field)")
	fs.Bool("desc", false, "Sort descending")
	fs.Bool("long", false, "Show every field, not only the sortable ones")

	return &Command{
		Flags: fs,
		Usage: "ls <kind> [flags]",
		Short: "List items",
		Long:  "List all items of a library as a table. Ties keep file order.",
		Exec: func(_ context.Context, io *IO, args []string) error {
			return execLs(io, a, fs, args)
		},
	}
}

func execLs(io *IO, a *app, fs *flag.FlagSet, args []string) error {
	if len(args) == 0 {
		return errKindRequired
	}

	s, err := a.store(args[0])
	if err != nil {
		return err
	}

	sortName, _ := fs.GetString("sort")
	desc, _ := fs.GetBool("desc")
	long, _ := fs.GetBool("long")

	recs, err := s.GetAll(sortName, !desc)
	if err != nil {
		return err
	}

	if len(recs) == 0 {
		io.Println(emptyLibrary)

		return nil
	}

	cols := sortColumns(s.Codec())
	if long {
		cols = fieldColumns(s.Codec())
	}

	printTable(io, cols, recs)

	return nil
}

// SearchCmd returns the search command.
func SearchCmd(a *app) *Command {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	fs.Bool("desc", false, "Sort descending")

	return &Command{
		Flags: fs,
		Usage: "search <kind> <field> <text>",
		Short: "Search items by field",
		Long: `List the items whose field contains text, ignoring case.
List fields match when any value matches. Results are sorted by the field.
Only sortable fields can be searched; see "medialib fields <kind>".`,
		Exec: func(_ context.Context, io *IO, args []string) error {
			return execSearch(io, a, fs, args)
		},
	}
}

var errSearchArgs = errors.New("search needs <kind> <field> <text>")

func execSearch(io *IO, a *app, fs *flag.FlagSet, args []string) error {
	if len(args) == 0 {
		return errKindRequired
	}

	s, err := a.store(args[0])
	if err != nil {
		return err
	}

	if len(args) != 3 {
		return errSearchArgs
	}

	desc, _ := fs.GetBool("desc")

	recs, err := s.Search(args[1], args[2], !desc)
	if err != nil {
		return err
	}

	if len(recs) == 0 {
		io.Printf("No items match %q.\n", args[2])

		return nil
	}

	printTable(io, sortColumns(s.Codec()), recs)

	return nil
}

func printTable(io *IO, cols []column, recs []catalog.Record) {
	io.PrintLines(recordTable(cols, recs, terminalWidth(io.Out())))
}
