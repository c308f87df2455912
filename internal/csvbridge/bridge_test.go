package csvbridge_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/medialib/internal/catalog"
	"github.com/calvinalkan/medialib/internal/csvbridge"
	"github.com/calvinalkan/medialib/internal/fs"
	"github.com/calvinalkan/medialib/internal/store"
)

func newBridge(t *testing.T, kind catalog.Kind) (*csvbridge.Bridge, *store.Store, string) {
	t.Helper()

	codec, err := catalog.Lookup(kind)
	require.NoError(t, err)

	dir := t.TempDir()
	fsys := fs.NewReal()
	s := store.New(codec, fsys, filepath.Join(dir, string(kind), "library.xml"), filepath.Join(dir, string(kind), "library.xsd"), nil)
	require.NoError(t, s.CreateLibrary())
	require.NoError(t, s.RestoreSchema())

	b, err := csvbridge.New(s, fsys)
	require.NoError(t, err)

	return b, s, dir
}

func items(kind catalog.Kind) []catalog.Record {
	switch kind {
	case catalog.KindBook:
		return []catalog.Record{
			{
				Scalars: map[string]string{
					"title": "Dune", "category": "Fiction", "isbn": "9780441013593", "finished": "No",
					"publicationdate": "1965-08-01", "publisher": "Chilton", "edition": "1",
					"pagenumber": "412", "lastpageread": "10", "shop": "Corner, Books",
				},
				Lists: map[string][]string{"authors": {"Frank Herbert"}, "formats": {"Paperback", "eBook"}},
			},
			{
				Scalars: map[string]string{"title": "Good Omens", "category": "Fantasy", "isbn": "9780060853983", "finished": "Yes"},
				Lists:   map[string][]string{"authors": {"Terry Pratchett", "Neil Gaiman"}, "formats": {"Hardback"}},
			},
		}
	case catalog.KindGame:
		return []catalog.Record{
			{
				Scalars: map[string]string{"title": "Quake", "shop": "GOG", "finished": "Yes"},
				Groups: map[string][]catalog.Record{"installer": {
					{Scalars: map[string]string{"system": "Linux", "lastupdated": "2021-06-01"}, Lists: map[string][]string{"filename": {"quake.sh"}}},
					{Scalars: map[string]string{"system": "Windows"}, Lists: map[string][]string{"filename": {"setup.exe", "data-1.bin"}}},
				}},
			},
			{Scalars: map[string]string{"title": "Doom", "shop": "Steam", "finished": "No"}},
		}
	case catalog.KindMusic:
		return []catalog.Record{
			{
				Scalars: map[string]string{"title": "Kind of Blue", "artist": "Miles Davis", "releasedate": "1959-08-17", "label": "Columbia", "shop": "Discogs"},
				Lists: map[string][]string{
					"formats": {"Vinyl", "FLAC"},
					"genres":  {"Jazz", "Modal"},
					"tracks":  {"So What", "Freddie Freeloader", "Blue in Green"},
				},
			},
			{
				Scalars: map[string]string{"title": "Blue Train", "artist": "John Coltrane"},
				Lists:   map[string][]string{"formats": {"CD"}},
			},
		}
	default:
		return []catalog.Record{
			{
				Scalars: map[string]string{"title": "Alien", "releasedate": "1979-05-25", "label": "Fox", "shop": "Amazon"},
				Lists:   map[string][]string{"formats": {"Blu-ray", "DVD"}, "genres": {"Horror", "Science fiction"}},
			},
			{Scalars: map[string]string{"title": "Memento"}, Lists: map[string][]string{"formats": {"Other"}}},
		}
	}
}

func Test_Export_Then_Import_Is_Lossless(t *testing.T) {
	t.Parallel()

	for _, kind := range catalog.Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			t.Parallel()

			b, s, dir := newBridge(t, kind)
			require.NoError(t, s.Replace(items(kind)))

			before, err := s.GetAll("", true)
			require.NoError(t, err)

			path := filepath.Join(dir, "export.csv")

			n, err := b.Export(path)
			require.NoError(t, err)
			assert.Equal(t, len(before), n)

			require.NoError(t, s.CreateLibrary())

			n, err = b.Import(path)
			require.NoError(t, err)
			assert.Equal(t, len(before), n)

			after, err := s.GetAll("", true)
			require.NoError(t, err)

			if diff := cmp.Diff(before, after, cmpopts.EquateEmpty()); diff != "" {
				t.Fatalf("csv round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func Test_Export_Writes_Header_Only_When_Library_Empty(t *testing.T) {
	t.Parallel()

	b, _, dir := newBridge(t, catalog.KindBook)
	path := filepath.Join(dir, "empty.csv")

	n, err := b.Export(path)
	require.NoError(t, err)
	assert.Zero(t, n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Title,Author,Category,Format,ISBN,Finished,PublicationDate,Publisher,Edition,PageNumber,LastPageRead,Shop\r\n", string(data))
}

func Test_Export_Returns_ErrStoreInvalid_When_Library_Broken(t *testing.T) {
	t.Parallel()

	b, s, dir := newBridge(t, catalog.KindVideo)
	require.NoError(t, os.WriteFile(s.LibraryPath(), []byte("<library><video/></library>"), 0o644))

	_, err := b.Export(filepath.Join(dir, "out.csv"))
	require.ErrorIs(t, err, store.ErrStoreInvalid)
	assert.NoFileExists(t, filepath.Join(dir, "out.csv"))
}

func Test_Export_Writes_Game_Installer_Columns(t *testing.T) {
	t.Parallel()

	b, s, dir := newBridge(t, catalog.KindGame)
	require.NoError(t, s.Replace(items(catalog.KindGame)))

	path := filepath.Join(dir, "games.csv")
	_, err := b.Export(path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	want := "Title,Shop,Finished,System,LastUpdated,Filename\r\n" +
		"Doom,Steam,No,,,\r\n" +
		"Quake,GOG,Yes,Linux Windows,2021-06-01 -,\\quake.sh; setup.exe, data-1.bin\\\r\n"
	assert.Equal(t, want, string(data))
}

func Test_Import_Accepts_Required_Columns_Only_And_Keeps_Enum_Text(t *testing.T) {
	t.Parallel()

	b, s, dir := newBridge(t, catalog.KindBook)
	path := filepath.Join(dir, "in.csv")

	csv := "\ufeffISBN,Title,Author,Category,Format,Finished,Notes\n" +
		"9780441013593,Dune,\\Herbert, Frank\\,Fiction,eBook,No,ignored\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))

	n, err := b.Import(path)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := s.Get("9780441013593")
	require.NoError(t, err)
	assert.Equal(t, []string{"Herbert", "Frank"}, got.List("authors"))
	assert.Equal(t, []string{"eBook"}, got.List("formats"))
}

func Test_Import_Treats_Missing_Trailing_Cells_As_Empty(t *testing.T) {
	t.Parallel()

	b, s, dir := newBridge(t, catalog.KindBook)
	path := filepath.Join(dir, "in.csv")

	csv := "Title,Author,Category,Format,ISBN,Finished,Publisher,Shop\n" +
		"Dune,Frank Herbert,Fiction,Paperback,9780441013593,No,Chilton,Corner Books\n" +
		"Anathem,Neal Stephenson,Fiction,eBook,9780061474095,Yes\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))

	n, err := b.Import(path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := s.Get("9780061474095")
	require.NoError(t, err)
	assert.Equal(t, "Yes", got.Get("finished"))
	assert.False(t, got.Has("publisher"))
	assert.False(t, got.Has("shop"))

	got, err = s.Get("9780441013593")
	require.NoError(t, err)
	assert.Equal(t, "Corner Books", got.Get("shop"))
}

func Test_Import_Rejects_Bad_Input_And_Leaves_Library_Unchanged(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		csv  string
		want error
	}{
		"missing column": {
			csv:  "Title,Author,Category,Format,Finished\nDune,Herbert,Fiction,Paperback,No\n",
			want: csvbridge.ErrHeader,
		},
		"empty file": {
			csv:  "",
			want: csvbridge.ErrHeader,
		},
		"long row": {
			csv:  "Title,Author,Category,Format,ISBN,Finished\nDune,Herbert,Fiction,Paperback,1,No,extra\n",
			want: csvbridge.ErrRow,
		},
		"short row missing mandatory cells": {
			csv:  "Title,Author,Category,Format,ISBN,Finished\nDune,Herbert,Fiction\n",
			want: store.ErrField,
		},
		"broken quoting": {
			csv:  "Title,Author,Category,Format,ISBN,Finished\n\\Dune,Herbert,Fiction,Paperback,1,No\n",
			want: csvbridge.ErrRow,
		},
		"duplicate keys": {
			csv:  "Title,Author,Category,Format,ISBN,Finished\nA,X,F,Paperback,1,No\nB,Y,F,Paperback,1,No\n",
			want: store.ErrValidation,
		},
		"bad enum": {
			csv:  "Title,Author,Category,Format,ISBN,Finished\nA,X,F,Scroll,1,No\n",
			want: store.ErrValidation,
		},
		"blank mandatory cell": {
			csv:  "Title,Author,Category,Format,ISBN,Finished\n,X,F,Paperback,1,No\n",
			want: store.ErrField,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			b, s, dir := newBridge(t, catalog.KindBook)
			require.NoError(t, s.Add(items(catalog.KindBook)[0]))

			before, err := os.ReadFile(s.LibraryPath())
			require.NoError(t, err)

			path := filepath.Join(dir, "in.csv")
			require.NoError(t, os.WriteFile(path, []byte(tc.csv), 0o644))

			_, err = b.Import(path)
			require.ErrorIs(t, err, tc.want)

			after, err := os.ReadFile(s.LibraryPath())
			require.NoError(t, err)
			assert.Equal(t, before, after)
		})
	}
}

func Test_Import_Returns_ErrRead_When_File_Missing(t *testing.T) {
	t.Parallel()

	b, _, dir := newBridge(t, catalog.KindMusic)

	_, err := b.Import(filepath.Join(dir, "missing.csv"))
	require.ErrorIs(t, err, csvbridge.ErrRead)
}

func Test_Game_Mapping_Rejects_Mismatched_Installer_Cells(t *testing.T) {
	t.Parallel()

	m, err := csvbridge.MappingFor(catalog.KindGame)
	require.NoError(t, err)

	_, err = m.Record(map[string]string{
		"Title": "Quake", "Shop": "GOG", "Finished": "Yes",
		"System": "Linux Mac", "LastUpdated": "2020-01-01", "Filename": "a; b",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LastUpdated")

	_, err = m.Record(map[string]string{
		"Title": "Quake", "Shop": "GOG", "Finished": "Yes",
		"System": "Linux Mac", "Filename": "a",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Filename")

	rec, err := m.Record(map[string]string{
		"Title": "Quake", "Shop": "GOG", "Finished": "Yes",
		"System": "Linux Mac", "LastUpdated": "- 2020-01-01", "Filename": "a.sh; b.dmg, c.pkg",
	})
	require.NoError(t, err)

	installers := rec.Group("installer")
	require.Len(t, installers, 2)
	assert.Empty(t, installers[0].Get("lastupdated"))
	assert.Equal(t, "2020-01-01", installers[1].Get("lastupdated"))
	assert.Equal(t, []string{"b.dmg", "c.pkg"}, installers[1].List("filename"))
}
