// Package csvbridge imports and exports libraries as CSV files.
//
// Each kind has a fixed header (see [MappingFor]). Import replaces the
// library's items with the rows of the file in one validated rewrite;
// export writes every item, or only the header for an empty library.
package csvbridge

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/calvinalkan/medialib/internal/catalog"
	"github.com/calvinalkan/medialib/internal/fs"
	"github.com/calvinalkan/medialib/internal/store"
)

// Sentinel errors returned by [Bridge].
var (
	ErrRead   = errors.New("cannot read CSV file")
	ErrHeader = errors.New("invalid CSV header")
	ErrRow    = errors.New("invalid CSV row")
)

const bom = "\ufeff"

// Bridge moves items between a store and CSV files.
type Bridge struct {
	store   *store.Store
	fs      fs.FS
	mapping Mapping
}

// New returns a bridge for s. Files are read and written through fsys.
func New(s *store.Store, fsys fs.FS) (*Bridge, error) {
	mapping, err := MappingFor(s.Kind())
	if err != nil {
		return nil, err
	}

	return &Bridge{store: s, fs: fsys, mapping: mapping}, nil
}

// Mapping returns the bridge's column mapping.
func (b *Bridge) Mapping() Mapping {
	return b.mapping
}

// Import replaces the library's items with the rows of the CSV file at
// path and returns the number of imported items. Columns outside the
// kind's header are ignored. A row may omit trailing cells but not carry
// more cells than the header. The assembled library is validated once and
// written once; on any error the library is unchanged.
func (b *Bridge) Import(path string) (int, error) {
	data, err := b.fs.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrRead, err)
	}

	rows, err := NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrRow, err)
	}

	if len(rows) == 0 {
		return 0, fmt.Errorf("%w: %s is empty", ErrHeader, path)
	}

	header := rows[0]
	header[0] = strings.TrimPrefix(header[0], bom)

	var missing []string

	for _, name := range b.mapping.Required() {
		if !slices.Contains(header, name) {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		return 0, fmt.Errorf("%w: missing column(s) %s (want %s)", ErrHeader, strings.Join(missing, ", "), strings.Join(b.mapping.Header(), ","))
	}

	recs := make([]catalog.Record, 0, len(rows)-1)

	for i, row := range rows[1:] {
		if len(row) > len(header) {
			return 0, fmt.Errorf("%w: row %d has %d cells, header has %d", ErrRow, i+1, len(row), len(header))
		}

		// Missing trailing cells are empty.
		cells := make(map[string]string, len(header))
		for j, name := range header {
			if j < len(row) {
				cells[name] = row[j]
			}
		}

		rec, err := b.mapping.Record(cells)
		if err != nil {
			return 0, fmt.Errorf("%w: row %d: %w", ErrRow, i+1, err)
		}

		recs = append(recs, rec)
	}

	err = b.store.Replace(recs)
	if err != nil {
		return 0, err
	}

	return len(recs), nil
}

// Export writes every item to the CSV file at path, sorted by the kind's
// default sort field, and returns the number of exported items. An invalid
// library fails with [store.ErrStoreInvalid].
func (b *Bridge) Export(path string) (int, error) {
	recs, err := b.store.GetAll("", true)
	if err != nil {
		return 0, err
	}

	var buf bytes.Buffer

	w := NewWriter(&buf)

	err = w.Write(b.mapping.Header())
	if err != nil {
		return 0, fmt.Errorf("%w: %w", store.ErrWrite, err)
	}

	for _, rec := range recs {
		err = w.Write(b.mapping.Row(rec))
		if err != nil {
			return 0, fmt.Errorf("%w: %w", store.ErrWrite, err)
		}
	}

	err = w.Flush()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", store.ErrWrite, err)
	}

	err = b.fs.WriteFileAtomic(path, buf.Bytes(), 0o644)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", store.ErrWrite, path, err)
	}

	return len(recs), nil
}
