package store

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/calvinalkan/medialib/internal/catalog"
)

// GetAll returns every item sorted by the named sortable field. An empty
// sortName uses the kind's default. A valid library without items yields an
// empty slice and a nil error.
func (s *Store) GetAll(sortName string, ascending bool) ([]catalog.Record, error) {
	lib, err := s.readValid()
	if err != nil {
		return nil, withContext(err, s.Kind(), "")
	}

	sf, err := s.sortField(sortName)
	if err != nil {
		return nil, err
	}

	sortEntries(lib.entries, sf.Field, ascending)
	s.log.Debug("get all", "sort", sf.Name, "ascending", ascending, "count", len(lib.entries))

	return records(lib.entries), nil
}

// Search returns the items whose field contains substr, compared
// case-insensitively. List fields match when any value matches. Results are
// sorted by the searched field. No match yields an empty slice and a nil
// error; a field outside the sortable set fails with [ErrUnknownField].
func (s *Store) Search(field, substr string, ascending bool) ([]catalog.Record, error) {
	lib, err := s.readValid()
	if err != nil {
		return nil, withContext(err, s.Kind(), "")
	}

	sf, ok := s.codec.Config().Lookup(field)
	if !ok {
		return nil, withContext(s.unknownField(field), s.Kind(), "")
	}

	fold := cases.Fold()
	needle := fold.String(substr)

	var matched []entry

	for _, e := range lib.entries {
		for _, value := range e.rec.Values(sf.Field) {
			if strings.Contains(fold.String(value), needle) {
				matched = append(matched, e)

				break
			}
		}
	}

	sortEntries(matched, sf.Field, ascending)
	s.log.Debug("search", "field", sf.Name, "query", substr, "count", len(matched))

	return records(matched), nil
}

// Get returns the item whose unique key equals key.
func (s *Store) Get(key string) (catalog.Record, error) {
	lib, err := s.readValid()
	if err != nil {
		return catalog.Record{}, withContext(err, s.Kind(), key)
	}

	i := s.indexOf(lib, key)
	if i < 0 {
		return catalog.Record{}, withContext(ErrNotFound, s.Kind(), key)
	}

	return lib.entries[i].rec, nil
}

// Keys returns the unique keys of all items in document order.
func (s *Store) Keys() ([]string, error) {
	lib, err := s.readValid()
	if err != nil {
		return nil, withContext(err, s.Kind(), "")
	}

	keyField := s.codec.Config().Key
	keys := make([]string, 0, len(lib.entries))

	for _, e := range lib.entries {
		keys = append(keys, e.rec.Get(keyField))
	}

	return keys, nil
}

// --- Private api ---

func (s *Store) sortField(name string) (catalog.SortField, error) {
	cfg := s.codec.Config()
	if name == "" {
		name = cfg.DefaultSort
	}

	sf, ok := cfg.Lookup(name)
	if !ok {
		return catalog.SortField{}, withContext(s.unknownField(name), s.Kind(), "")
	}

	return sf, nil
}

func (s *Store) unknownField(name string) error {
	return fmt.Errorf("%w: %q (choose from %s)", ErrUnknownField, name, strings.Join(s.codec.Config().Names(), ", "))
}

func (s *Store) indexOf(lib *library, key string) int {
	keyField := s.codec.Config().Key
	key = strings.TrimSpace(key)

	for i, e := range lib.entries {
		if e.rec.Get(keyField) == key {
			return i
		}
	}

	return -1
}

// sortEntries orders entries by the first value of field, capitalized word
// by word. The sort is stable in both directions: equal keys keep document
// order.
func sortEntries(entries []entry, field string, ascending bool) {
	title := cases.Title(language.Und)

	type keyed struct {
		key string
		e   entry
	}

	tmp := make([]keyed, len(entries))
	for i, e := range entries {
		tmp[i] = keyed{key: sortKey(title, e.rec, field), e: e}
	}

	slices.SortStableFunc(tmp, func(a, b keyed) int {
		c := strings.Compare(a.key, b.key)
		if !ascending {
			c = -c
		}

		return c
	})

	for i := range tmp {
		entries[i] = tmp[i].e
	}
}

func sortKey(title cases.Caser, rec catalog.Record, field string) string {
	values := rec.Values(field)
	if len(values) == 0 {
		return ""
	}

	return title.String(values[0])
}

func records(entries []entry) []catalog.Record {
	out := make([]catalog.Record, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.rec)
	}

	return out
}
