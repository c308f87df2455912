package store_test

import (
	"fmt"
	"maps"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/medialib/internal/catalog"
	"github.com/calvinalkan/medialib/internal/store"
)

// byteStream derives deterministic choices from fuzz input. Reads past the
// end return zero.
type byteStream struct {
	bytes []byte
	pos   int
}

func (s *byteStream) hasMore() bool {
	return s.pos < len(s.bytes)
}

func (s *byteStream) next(maxVal int) int {
	if s.pos >= len(s.bytes) || maxVal <= 0 {
		return 0
	}

	v := s.bytes[s.pos]
	s.pos++

	return int(v) % maxVal
}

var modelTitles = []string{"alien", "brazil", "casablanca", "dune", "heat", "jaws"}

// videoModel is the expected library content: title -> formats.
type videoModel map[string][]string

func (m videoModel) rows() []string {
	titles := slices.Sorted(maps.Keys(m))

	rows := make([]string, 0, len(titles))
	for _, title := range titles {
		rows = append(rows, fmt.Sprintf("%s %v", title, m[title]))
	}

	return rows
}

func storeRows(t *testing.T, s *store.Store) []string {
	t.Helper()

	recs, err := s.GetAll("title", true)
	require.NoError(t, err)

	rows := make([]string, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, fmt.Sprintf("%s %v", rec.Get("title"), rec.List("formats")))
	}

	return rows
}

func modelVideo(title string, formats ...string) catalog.Record {
	var rec catalog.Record
	rec.Set("title", title)
	rec.SetList("formats", formats)

	return rec
}

// runModel applies a stream of add, remove and edit operations to a store
// and to an in-memory model and fails on the first divergence.
func runModel(t *testing.T, input []byte) {
	t.Helper()

	f := newFixture(t, catalog.KindVideo)
	model := videoModel{}
	stream := &byteStream{bytes: input}

	var history []string

	for step := 0; step < 60 && stream.hasMore(); step++ {
		title := modelTitles[stream.next(len(modelTitles))]
		format := catalog.VideoFormats[stream.next(len(catalog.VideoFormats))]

		var (
			err     error
			wantErr error
			op      string
		)

		switch stream.next(3) {
		case 0:
			op = fmt.Sprintf("add %s %s", title, format)
			err = f.store.Add(modelVideo(title, format))

			if _, ok := model[title]; ok {
				wantErr = store.ErrValidation
			} else {
				model[title] = []string{format}
			}
		case 1:
			op = "remove " + title
			err = f.store.Remove(title)

			if _, ok := model[title]; ok {
				delete(model, title)
			} else {
				wantErr = store.ErrNotFound
			}
		default:
			renamed := modelTitles[stream.next(len(modelTitles))]
			op = fmt.Sprintf("edit %s -> %s %s", title, renamed, format)
			err = f.store.Edit(title, modelVideo(renamed, format))

			_, exists := model[title]
			_, taken := model[renamed]

			switch {
			case !exists:
				wantErr = store.ErrNotFound
			case renamed != title && taken:
				wantErr = store.ErrValidation
			default:
				delete(model, title)
				model[renamed] = []string{format}
			}
		}

		history = append(history, op)

		if wantErr != nil {
			require.ErrorIs(t, err, wantErr, "ops:\n%v", history)
		} else {
			require.NoError(t, err, "ops:\n%v", history)
		}

		if diff := cmp.Diff(model.rows(), storeRows(t, f.store)); diff != "" {
			t.Fatalf("store diverged from model (-want +got):\n%s\nops:\n%v", diff, history)
		}
	}
}

func Test_Store_Matches_Model_For_Seeded_Operation_Streams(t *testing.T) {
	t.Parallel()

	for _, seed := range [][]byte{
		{0, 0, 0, 1, 1, 0, 2, 0, 1, 0, 3, 2, 5, 2, 1},
		{3, 4, 0, 3, 1, 0, 3, 2, 2, 0, 0, 0, 3, 0, 1, 1, 0, 2},
		{5, 0, 0, 4, 1, 0, 5, 3, 2, 4, 4, 0, 4, 2, 2, 0, 5, 2, 5, 1},
		[]byte("the quick brown fox jumps over the lazy dog"),
	} {
		runModel(t, seed)
	}
}

func FuzzStore_Matches_Model(f *testing.F) {
	f.Add([]byte{0, 0, 0, 1, 1, 0, 2, 0, 1})
	f.Add([]byte("edit and remove everything"))

	f.Fuzz(func(t *testing.T, input []byte) {
		runModel(t, input)
	})
}
