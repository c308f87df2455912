package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/calvinalkan/medialib/internal/catalog"
	"github.com/calvinalkan/medialib/internal/store"
	"github.com/calvinalkan/medialib/internal/xsd"

	flag "github.com/spf13/pflag"
)

// InitCmd returns the init command.
func InitCmd(a *app) *Command {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	fs.Bool("all", false, "Initialize every enabled kind")
	fs.Bool("force", false, "Replace an existing library with an empty one")
	fs.Bool("force-schema", false, "Rewrite the schema even if it exists")

	return &Command{
		Flags: fs,
		Usage: "init <kind>... | --all",
		Short: "Create empty libraries",
		Long: `Create the storage directory, an empty library and its schema for each
kind. An existing library is kept unless --force is given; an existing
schema is kept unless --force-schema is given.`,
		Exec: func(_ context.Context, io *IO, args []string) error {
			return execInit(io, a, fs, args)
		},
	}
}

func execInit(io *IO, a *app, fs *flag.FlagSet, args []string) error {
	all, _ := fs.GetBool("all")
	force, _ := fs.GetBool("force")
	forceSchema, _ := fs.GetBool("force-schema")

	var kinds []catalog.Kind

	if all {
		kinds = a.cfg.Kinds()
	} else {
		if len(args) == 0 {
			return errKindRequired
		}

		for _, name := range args {
			kind, err := a.kind(name)
			if err != nil {
				return err
			}

			kinds = append(kinds, kind)
		}
	}

	for _, kind := range kinds {
		s, err := a.storeFor(kind)
		if err != nil {
			return err
		}

		exists, err := s.SchemaExists()
		if err != nil {
			return err
		}

		if !exists || forceSchema {
			err = s.RestoreSchema()
			if err != nil {
				return err
			}
		}

		exists, err = s.LibraryExists()
		if err != nil {
			return err
		}

		if exists && !force {
			io.Warn(fmt.Sprintf("%s: library already exists at %s", kind, s.LibraryPath()), "use --force to replace it with an empty library")

			continue
		}

		err = s.CreateLibrary()
		if err != nil {
			return err
		}

		io.Println("initialized", kind, s.LibraryPath())
	}

	return nil
}

// ValidateCmd returns the validate command.
func ValidateCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("validate", flag.ContinueOnError),
		Usage: "validate <kind>",
		Short: "Check a library against its schema",
		Long: `Validate the library file against its schema and print one of:
  valid
  invalid: <reason>   the file does not conform
  error: <reason>     the file or schema cannot be read or parsed`,
		Exec: func(_ context.Context, io *IO, args []string) error {
			if len(args) == 0 {
				return errKindRequired
			}

			s, err := a.store(args[0])
			if err != nil {
				return err
			}

			status, err := s.Validate()
			printStatus(io, status, err)

			if status != xsd.StatusValid {
				io.Warn(fmt.Sprintf("%s library is %s", s.Kind(), status), "fix the file or run restore / restore-schema")
			}

			return nil
		},
	}
}

func printStatus(io *IO, status xsd.Status, err error) {
	if err == nil {
		io.Println(status.String())

		return
	}

	reason := err.Error()

	var (
		verr *xsd.ValidationError
		serr *store.Error
	)

	switch {
	case errors.As(err, &verr):
		reason = verr.Error()
	case errors.As(err, &serr) && serr.Err != nil:
		reason = serr.Err.Error()
	}

	io.Printf("%s: %s\n", status, reason)
}

// BackupCmd returns the backup command.
func BackupCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("backup", flag.ContinueOnError),
		Usage: "backup <kind>",
		Short: "Copy the library to its backup file",
		Long:  "Copy the library to <library>.back, replacing the previous backup.",
		Exec: func(_ context.Context, io *IO, args []string) error {
			if len(args) == 0 {
				return errKindRequired
			}

			s, err := a.store(args[0])
			if err != nil {
				return err
			}

			err = s.Backup()
			if err != nil {
				return err
			}

			io.Println("backed up to", s.BackupPath())

			return nil
		},
	}
}

// RestoreCmd returns the restore command.
func RestoreCmd(a *app) *Command {
	fs := flag.NewFlagSet("restore", flag.ContinueOnError)
	fs.Bool("force", false, "Restore even if the backup does not validate")

	return &Command{
		Flags: fs,
		Usage: "restore <kind> [--force]",
		Short: "Replace the library with its backup",
		Long:  "Validate the backup file and copy it over the library.",
		Exec: func(ctx context.Context, io *IO, args []string) error {
			if len(args) == 0 {
				return errKindRequired
			}

			s, err := a.store(args[0])
			if err != nil {
				return err
			}

			force, _ := fs.GetBool("force")

			if !force {
				status, verr := s.ValidateBackup()
				if status != xsd.StatusValid {
					return fmt.Errorf("%w (%s): %w (use --force to restore anyway)", errBackupInvalid, status, verr)
				}
			}

			err = a.locked(ctx, s, s.Restore)
			if err != nil {
				return err
			}

			io.Println("restored", s.LibraryPath())

			return nil
		},
	}
}

// RestoreSchemaCmd returns the restore-schema command.
func RestoreSchemaCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("restore-schema", flag.ContinueOnError),
		Usage: "restore-schema <kind>",
		Short: "Rewrite the schema file",
		Long:  "Overwrite the schema file with the kind's built-in schema.",
		Exec: func(_ context.Context, io *IO, args []string) error {
			if len(args) == 0 {
				return errKindRequired
			}

			s, err := a.store(args[0])
			if err != nil {
				return err
			}

			err = s.RestoreSchema()
			if err != nil {
				return err
			}

			io.Println("restored", s.SchemaPath())

			return nil
		},
	}
}
