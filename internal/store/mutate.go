package store

import (
	"fmt"

	"github.com/beevik/etree"

	"github.com/calvinalkan/medialib/internal/catalog"
)

// Add encodes rec, appends it, re-sorts the items by the kind's default sort
// field and rewrites the library once the whole document validates.
//
// Fails with [ErrField] when rec cannot be encoded, [ErrValidation] when the
// result would not conform (a duplicate key, a bad value) and [ErrWrite]
// when the library cannot be read or written. The file is unchanged on
// failure.
func (s *Store) Add(rec catalog.Record) error {
	key := rec.Get(s.codec.Config().Key)

	el, err := s.codec.Encode(rec)
	if err != nil {
		return withContext(fmt.Errorf("%w: %w", ErrField, err), s.Kind(), key)
	}

	lib, err := s.read()
	if err != nil {
		return withContext(fmt.Errorf("%w: %w", ErrWrite, err), s.Kind(), key)
	}

	lib.entries = append(lib.entries, entry{rec: rec, el: el})
	sortEntries(lib.entries, s.defaultSortField(), true)

	err = s.commit(lib)
	if err != nil {
		return withContext(err, s.Kind(), key)
	}

	s.log.Debug("add", "key", key)

	return nil
}

// Remove deletes the item whose unique key equals key. A missing key fails
// with [ErrNotFound] and leaves the file untouched.
func (s *Store) Remove(key string) error {
	lib, err := s.read()
	if err != nil {
		return withContext(fmt.Errorf("%w: %w", ErrWrite, err), s.Kind(), key)
	}

	i := s.indexOf(lib, key)
	if i < 0 {
		return withContext(ErrNotFound, s.Kind(), key)
	}

	lib.entries = append(lib.entries[:i], lib.entries[i+1:]...)

	err = s.commit(lib)
	if err != nil {
		return withContext(err, s.Kind(), key)
	}

	s.log.Debug("remove", "key", key)

	return nil
}

// Replace swaps every item of the library for recs in one validated
// rewrite. Items are sorted by the kind's default sort field.
func (s *Store) Replace(recs []catalog.Record) error {
	lib, err := s.read()
	if err != nil {
		return withContext(fmt.Errorf("%w: %w", ErrWrite, err), s.Kind(), "")
	}

	lib.entries = make([]entry, 0, len(recs))

	for i, rec := range recs {
		var el *etree.Element

		el, err = s.codec.Encode(rec)
		if err != nil {
			key := rec.Get(s.codec.Config().Key)

			return withContext(fmt.Errorf("%w: item %d: %w", ErrField, i+1, err), s.Kind(), key)
		}

		lib.entries = append(lib.entries, entry{rec: rec, el: el})
	}

	sortEntries(lib.entries, s.defaultSortField(), true)

	err = s.commit(lib)
	if err != nil {
		return withContext(err, s.Kind(), "")
	}

	s.log.Debug("replace", "count", len(recs))

	return nil
}

func (s *Store) defaultSortField() string {
	cfg := s.codec.Config()

	sf, ok := cfg.Lookup(cfg.DefaultSort)
	if !ok {
		return cfg.DefaultSort
	}

	return sf.Field
}
