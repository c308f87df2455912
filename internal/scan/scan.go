// Package scan builds music records from the tags of audio files.
//
// A scan walks a directory tree, reads the tags of every supported audio
// file with github.com/dhowden/tag and groups the tracks into one record
// per album. Files whose tags cannot be read are reported in
// [Result.Problems] and otherwise skipped.
package scan

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dhowden/tag"

	"github.com/calvinalkan/medialib/internal/catalog"
	mfs "github.com/calvinalkan/medialib/internal/fs"
)

// Extensions lists the file extensions a scan reads, lower case.
var Extensions = []string{".mp3", ".m4a", ".flac", ".ogg", ".oga"}

// Fallbacks for missing tags.
const (
	UnknownArtist = "Unknown artist"
	UnknownAlbum  = "Unknown album"
)

// ErrWalk reports a directory that could not be walked.
var ErrWalk = errors.New("cannot scan directory")

// Track is the tag data of one audio file.
type Track struct {
	Path   string
	Title  string
	Artist string
	Album  string
	Genre  string
	Format string
	Disc   int
	Number int
}

// Problem is a file that was skipped.
type Problem struct {
	Path string
	Err  error
}

// Result is the outcome of [Dir].
type Result struct {
	// Albums holds one music record per album, in first-seen order.
	Albums   []catalog.Record
	Tracks   []Track
	Problems []Problem
}

// Dir scans root. Files are opened through fsys.
func Dir(ctx context.Context, fsys mfs.FS, root string) (Result, error) {
	var res Result

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}

			res.Problems = append(res.Problems, Problem{Path: path, Err: err})

			return nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if d.IsDir() || !Supported(path) {
			return nil
		}

		track, readErr := ReadTrack(fsys, path)
		if readErr != nil {
			res.Problems = append(res.Problems, Problem{Path: path, Err: readErr})

			return nil
		}

		res.Tracks = append(res.Tracks, track)

		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s: %w", ErrWalk, root, err)
	}

	res.Albums = Albums(res.Tracks)

	return res, nil
}

// Supported reports whether path has one of [Extensions].
func Supported(path string) bool {
	return slices.Contains(Extensions, strings.ToLower(filepath.Ext(path)))
}

// ReadTrack reads the tags of the audio file at path.
func ReadTrack(fsys mfs.FS, path string) (Track, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return Track{}, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return Track{}, fmt.Errorf("read tags: %w", err)
	}

	number, _ := m.Track()
	disc, _ := m.Disc()

	artist := m.AlbumArtist()
	if artist == "" {
		artist = m.Artist()
	}

	title := strings.TrimSpace(m.Title())
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	return Track{
		Path:   path,
		Title:  title,
		Artist: strings.TrimSpace(artist),
		Album:  strings.TrimSpace(m.Album()),
		Genre:  strings.TrimSpace(m.Genre()),
		Format: format(m.FileType(), path),
		Disc:   disc,
		Number: number,
	}, nil
}

func format(ft tag.FileType, path string) string {
	switch ft {
	case tag.MP3:
		return "MP3"
	case tag.FLAC:
		return "FLAC"
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return "MP3"
	case ".flac":
		return "FLAC"
	default:
		return "Other"
	}
}

type albumKey struct {
	artist string
	album  string
}

// Albums groups tracks by album artist and album into music records.
// Tracks are ordered by disc and track number, keeping input order for
// ties; a repeated track title is dropped. Genres and formats follow the
// same track order.
func Albums(tracks []Track) []catalog.Record {
	var order []albumKey

	groups := make(map[albumKey][]Track)

	for _, t := range tracks {
		key := albumKey{artist: t.Artist, album: t.Album}
		if key.artist == "" {
			key.artist = UnknownArtist
		}

		if key.album == "" {
			key.album = UnknownAlbum
		}

		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}

		groups[key] = append(groups[key], t)
	}

	albums := make([]catalog.Record, 0, len(order))

	for _, key := range order {
		group := groups[key]

		slices.SortStableFunc(group, func(a, b Track) int {
			return cmp.Or(cmp.Compare(a.Disc, b.Disc), cmp.Compare(a.Number, b.Number))
		})

		var rec catalog.Record

		rec.Set("title", key.album)
		rec.Set("artist", key.artist)
		rec.SetList("formats", distinct(group, func(t Track) string { return t.Format }))
		rec.SetList("genres", distinct(group, func(t Track) string { return t.Genre }))
		rec.SetList("tracks", distinct(group, func(t Track) string { return t.Title }))

		albums = append(albums, rec)
	}

	return albums
}

func distinct(tracks []Track, value func(Track) string) []string {
	var out []string

	for _, t := range tracks {
		if v := value(t); v != "" && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}

	return out
}
