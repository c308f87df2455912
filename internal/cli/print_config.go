package cli

import (
	"context"
	"path/filepath"

	"github.com/calvinalkan/medialib/internal/config"

	flag "github.com/spf13/pflag"
)

// PrintConfigCmd returns the print-config command.
func PrintConfigCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("print-config", flag.ContinueOnError),
		Usage: "print-config",
		Short: "Show resolved configuration",
		Long:  "Display the effective configuration and which files it was loaded from.",
		Exec: func(_ context.Context, io *IO, _ []string) error {
			return execPrintConfig(io, a.cfg)
		},
	}
}

func execPrintConfig(io *IO, cfg config.Config) error {
	io.Println("effective_cwd=" + cfg.EffectiveCwd)
	io.Println("storage_root=" + cfg.StorageRootAbs)
	io.Println("library_file=" + cfg.LibraryFile)
	io.Println("schema_file=" + cfg.SchemaFile)
	io.Println("log_level=" + cfg.LogLevel)

	for _, kind := range cfg.Kinds() {
		io.Println("type=" + string(kind) + " " + cfg.LibraryPath(kind))
	}

	io.Println("")
	io.Println("# sources")

	if cfg.Sources.Global == "" && cfg.Sources.Project == "" {
		io.Println("(defaults only)")
	} else {
		if cfg.Sources.Global != "" {
			io.Println("global_config=" + cfg.Sources.Global)
		}

		if cfg.Sources.Project != "" {
			io.Println("project_config=" + cfg.Sources.Project)
		}
	}

	return nil
}

// ConfigureCmd returns the configure command.
func ConfigureCmd(a *app) *Command {
	fs := flag.NewFlagSet("configure", flag.ContinueOnError)
	fs.Bool("global", false, "Write the global config instead of "+config.FileName)
	fs.Bool("force", false, "Overwrite an existing config file")

	return &Command{
		Flags: fs,
		Usage: "configure [--global] [--force]",
		Short: "Write a default config file",
		Long: `Write the default configuration to ` + config.FileName + ` in the working
directory, or to the global config file with --global. An existing file is
only replaced with --force, which resets it to the defaults.`,
		Exec: func(_ context.Context, io *IO, _ []string) error {
			global, _ := fs.GetBool("global")
			force, _ := fs.GetBool("force")

			path := filepath.Join(a.cfg.EffectiveCwd, config.FileName)
			if global {
				path = config.GlobalPath(a.env)
				if path == "" {
					return errNoGlobalPath
				}
			}

			err := config.WriteDefault(a.fs, path, force)
			if err != nil {
				return err
			}

			io.Println("wrote", path)

			return nil
		},
	}
}
