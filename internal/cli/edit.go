package cli

import (
	"context"
	"errors"

	"github.com/calvinalkan/medialib/internal/catalog"
	"github.com/calvinalkan/medialib/internal/store"

	flag "github.com/spf13/pflag"
)

const fieldHelp = "Set a field as `name=value` (repeat for list items; groups take name=sub=v;sub=v)"

// AddCmd returns the add command.
func AddCmd(a *app) *Command {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.StringArrayP("field", "f", nil, fieldHelp)

	return &Command{
		Flags: fs,
		Usage: "add <kind> -f name=value...",
		Short: "Add an item",
		Long: `Add an item built from -f assignments. The library is rewritten only
when the result still conforms to its schema.

Examples:
  medialib add book -f title=Dune -f author="Frank Herbert" -f category=Fiction \
    -f format=Paperback -f isbn=9780441013593 -f finished=No
  medialib add game -f title=Quake -f shop=GOG -f finished=Yes \
    -f 'installer=system=Linux;filename=quake.sh'`,
		Exec: func(ctx context.Context, io *IO, args []string) error {
			return execAdd(ctx, io, a, fs, args)
		},
	}
}

func execAdd(ctx context.Context, io *IO, a *app, fs *flag.FlagSet, args []string) error {
	if len(args) == 0 {
		return errKindRequired
	}

	s, err := a.store(args[0])
	if err != nil {
		return err
	}

	assigns, _ := fs.GetStringArray("field")

	rec, _, err := parseAssignments(s.Codec().Fields(), assigns)
	if err != nil {
		return err
	}

	err = a.locked(ctx, s, func() error { return s.Add(rec) })
	if err != nil {
		return err
	}

	io.Println("added", rec.Get(s.Codec().Config().Key))

	return nil
}

// EditCmd returns the edit command.
func EditCmd(a *app) *Command {
	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	fs.StringArrayP("field", "f", nil, fieldHelp)
	fs.StringArray("unset", nil, "Remove an optional `field`")

	return &Command{
		Flags: fs,
		Usage: "edit <kind> <key> [-f name=value...] [--unset name...]",
		Short: "Edit an item",
		Long: `Change fields of the item whose unique key is <key>. Fields given with -f
replace the stored values; list fields replace the whole stored list.

The library is copied to a temporary file first and restored from it if
the changed item is rejected.`,
		Exec: func(ctx context.Context, io *IO, args []string) error {
			return execEdit(ctx, io, a, fs, args)
		},
	}
}

var errNothingToEdit = errors.New("nothing to change: give -f or --unset")

func execEdit(ctx context.Context, io *IO, a *app, fs *flag.FlagSet, args []string) error {
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

	key := args[1]
	assigns, _ := fs.GetStringArray("field")
	unset, _ := fs.GetStringArray("unset")

	if len(assigns) == 0 && len(unset) == 0 {
		return errNothingToEdit
	}

	fields := s.Codec().Fields()

	patch, given, err := parseAssignments(fields, assigns)
	if err != nil {
		return err
	}

	return a.locked(ctx, s, func() error {
		cur, err := s.Get(key)
		if err != nil {
			return err
		}

		rec, err := mergeRecord(fields, cur, patch, given, unset)
		if err != nil {
			return err
		}

		return reportEdit(io, s, key, rec, s.Edit(key, rec))
	})
}

// reportEdit prints the outcome of an edit. A leftover temp file after a
// committed edit is a warning, not a failure.
func reportEdit(io *IO, s *store.Store, key string, rec catalog.Record, err error) error {
	if err != nil && !onlyTempFile(err) {
		return err
	}

	if err != nil {
		io.Warn("temporary file was not removed", "delete "+s.TempPath()+" manually")
	}

	newKey := rec.Get(s.Codec().Config().Key)
	if newKey != key {
		io.Println("updated", key, "->", newKey)
	} else {
		io.Println("updated", key)
	}

	return nil
}

// RmCmd returns the rm command.
func RmCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("rm", flag.ContinueOnError),
		Usage: "rm <kind> <key>",
		Short: "Remove an item",
		Long:  "Remove the item whose unique key is <key>.",
		Exec: func(ctx context.Context, io *IO, args []string) error {
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

			err = a.locked(ctx, s, func() error { return s.Remove(args[1]) })
			if err != nil {
				return err
			}

			io.Println("removed", args[1])

			return nil
		},
	}
}
