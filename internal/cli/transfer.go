package cli

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/calvinalkan/medialib/internal/catalog"
	"github.com/calvinalkan/medialib/internal/csvbridge"
	"github.com/calvinalkan/medialib/internal/scan"
	"github.com/calvinalkan/medialib/internal/store"

	flag "github.com/spf13/pflag"
)

var errFileRequired = errors.New("CSV file path is required")

// ImportCmd returns the import command.
func ImportCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("import", flag.ContinueOnError),
		Usage: "import <kind> <file>",
		Short: "Replace the library with a CSV file",
		Long: `Replace every item of the library with the rows of a CSV file.
Fields containing a comma, a backslash or a line break are enclosed in
backslashes; list cells join their values with ", ". The whole file is
validated before the library is rewritten. Run "medialib fields <kind>"
for the expected columns.`,
		Exec: func(ctx context.Context, io *IO, args []string) error {
			if len(args) == 0 {
				return errKindRequired
			}

			s, err := a.store(args[0])
			if err != nil {
				return err
			}

			if len(args) < 2 {
				return errFileRequired
			}

			n, err := importCSV(ctx, a, s, a.path(args[1]))
			if err != nil {
				return err
			}

			io.Printf("imported %d items\n", n)

			return nil
		},
	}
}

// ExportCmd returns the export command.
func ExportCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("export", flag.ContinueOnError),
		Usage: "export <kind> <file>",
		Short: "Write the library to a CSV file",
		Long:  "Write every item to a CSV file, sorted by the kind's default sort field.",
		Exec: func(_ context.Context, io *IO, args []string) error {
			if len(args) == 0 {
				return errKindRequired
			}

			b, err := a.bridge(args[0])
			if err != nil {
				return err
			}

			if len(args) < 2 {
				return errFileRequired
			}

			path := a.path(args[1])

			n, err := b.Export(path)
			if err != nil {
				return err
			}

			io.Printf("exported %d items to %s\n", n, path)

			return nil
		},
	}
}

func importCSV(ctx context.Context, a *app, s *store.Store, path string) (int, error) {
	b, err := csvbridge.New(s, a.fs)
	if err != nil {
		return 0, err
	}

	var n int

	err = a.locked(ctx, s, func() error {
		n, err = b.Import(path)

		return err
	})

	return n, err
}

var errDirRequired = errors.New("directory is required")

// ScanCmd returns the scan command.
func ScanCmd(a *app) *Command {
	fs := flag.NewFlagSet("scan", flag.ContinueOnError)
	fs.Bool("dry-run", false, "Print the albums that would be added without writing")

	return &Command{
		Flags: fs,
		Usage: "scan <dir> [--dry-run]",
		Short: "Add albums from audio file tags",
		Long: `Read the tags of the audio files under <dir> (` + extensionList() + `)
and add one music item per album whose title is not yet in the library.
Files without readable tags are listed and skipped.`,
		Exec: func(ctx context.Context, io *IO, args []string) error {
			return execScan(ctx, io, a, fs, args)
		},
	}
}

func execScan(ctx context.Context, io *IO, a *app, fs *flag.FlagSet, args []string) error {
	if len(args) == 0 {
		return errDirRequired
	}

	if !a.cfg.Enabled(catalog.KindMusic) {
		return errMusicDisabled
	}

	s, err := a.storeFor(catalog.KindMusic)
	if err != nil {
		return err
	}

	dryRun, _ := fs.GetBool("dry-run")

	res, err := scan.Dir(ctx, a.fs, a.path(args[0]))
	if err != nil {
		return err
	}

	for _, p := range res.Problems {
		io.Println("skipped", p.Path+":", p.Err)
	}

	var added []catalog.Record

	// Read and rewrite happen under one lock.
	merge := func() error {
		existing, err := s.GetAll("", true)
		if err != nil {
			return err
		}

		added = newAlbums(io, s.Codec().Config().Key, existing, res.Albums)
		if len(added) == 0 || dryRun {
			return nil
		}

		return s.Replace(append(existing, added...))
	}

	if dryRun {
		err = merge()
	} else {
		err = a.locked(ctx, s, merge)
	}

	if err != nil {
		return err
	}

	if len(added) == 0 || dryRun {
		io.Printf("%d new albums from %d files\n", len(added), len(res.Tracks))

		return nil
	}

	io.Printf("added %d albums from %d files\n", len(added), len(res.Tracks))

	return nil
}

// newAlbums returns the albums whose key is in neither existing nor an
// earlier album, printing one line per album.
func newAlbums(io *IO, keyField string, existing, albums []catalog.Record) []catalog.Record {
	keys := make([]string, 0, len(existing))
	for _, rec := range existing {
		keys = append(keys, rec.Get(keyField))
	}

	var added []catalog.Record

	for _, album := range albums {
		key := album.Get(keyField)
		if slices.Contains(keys, key) {
			io.Println("exists", key)

			continue
		}

		keys = append(keys, key)
		added = append(added, album)

		io.Printf("new %s (%s, %d tracks)\n", key, album.Get("artist"), len(album.List("tracks")))
	}

	return added
}

func extensionList() string {
	return strings.Join(scan.Extensions, " ")
}
