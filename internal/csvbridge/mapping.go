package csvbridge

import (
	"fmt"
	"strings"

	"github.com/calvinalkan/medialib/internal/catalog"
)

// Joiners for multi-valued cells.
const (
	listSep      = ", "
	systemSep    = " "
	installerSep = "; "
	absentToken  = "-"
)

// Mapping converts between records and CSV rows for one kind.
type Mapping interface {
	// Header returns the exported header: required columns, then optional.
	Header() []string
	// Required returns the columns an import file must contain.
	Required() []string
	// Row flattens rec in Header order.
	Row(rec catalog.Record) []string
	// Record builds a record from cells keyed by header name. Missing
	// optional columns are absent from cells.
	Record(cells map[string]string) (catalog.Record, error)
}

// MappingFor returns the CSV mapping of kind.
func MappingFor(kind catalog.Kind) (Mapping, error) {
	switch kind {
	case catalog.KindBook:
		return bookMapping, nil
	case catalog.KindGame:
		return gameMapping{base: gameBase}, nil
	case catalog.KindMusic:
		return musicMapping, nil
	case catalog.KindVideo:
		return videoMapping, nil
	default:
		return nil, fmt.Errorf("%w: %q", catalog.ErrUnknownKind, string(kind))
	}
}

// column maps one CSV column to a record field. A non-empty join marks a
// list field.
type column struct {
	header   string
	field    string
	join     string
	required bool
}

type columnMapping []column

var bookMapping = columnMapping{
	{header: "Title", field: "title", required: true},
	{header: "Author", field: "authors", join: listSep, required: true},
	{header: "Category", field: "category", required: true},
	{header: "Format", field: "formats", join: listSep, required: true},
	{header: "ISBN", field: "isbn", required: true},
	{header: "Finished", field: "finished", required: true},
	{header: "PublicationDate", field: "publicationdate"},
	{header: "Publisher", field: "publisher"},
	{header: "Edition", field: "edition"},
	{header: "PageNumber", field: "pagenumber"},
	{header: "LastPageRead", field: "lastpageread"},
	{header: "Shop", field: "shop"},
}

var musicMapping = columnMapping{
	{header: "Title", field: "title", required: true},
	{header: "Artist", field: "artist", required: true},
	{header: "Format", field: "formats", join: listSep, required: true},
	{header: "Genre", field: "genres", join: listSep, required: true},
	{header: "Track", field: "tracks", join: listSep},
	{header: "ReleaseDate", field: "releasedate"},
	{header: "Label", field: "label"},
	{header: "Shop", field: "shop"},
}

var videoMapping = columnMapping{
	{header: "Title", field: "title", required: true},
	{header: "Format", field: "formats", join: listSep, required: true},
	{header: "Genre", field: "genres", join: listSep},
	{header: "ReleaseDate", field: "releasedate"},
	{header: "Label", field: "label"},
	{header: "Shop", field: "shop"},
}

var gameBase = columnMapping{
	{header: "Title", field: "title", required: true},
	{header: "Shop", field: "shop", required: true},
	{header: "Finished", field: "finished", required: true},
}

func (m columnMapping) Header() []string {
	out := make([]string, 0, len(m))
	for _, c := range m {
		out = append(out, c.header)
	}

	return out
}

func (m columnMapping) Required() []string {
	var out []string

	for _, c := range m {
		if c.required {
			out = append(out, c.header)
		}
	}

	return out
}

func (m columnMapping) Row(rec catalog.Record) []string {
	row := make([]string, 0, len(m))

	for _, c := range m {
		if c.join != "" {
			row = append(row, strings.Join(rec.List(c.field), c.join))
		} else {
			row = append(row, rec.Get(c.field))
		}
	}

	return row
}

func (m columnMapping) Record(cells map[string]string) (catalog.Record, error) {
	var rec catalog.Record

	for _, c := range m {
		cell, ok := cells[c.header]
		if !ok {
			continue
		}

		if c.join != "" {
			rec.SetList(c.field, splitList(cell, c.join))
		} else {
			rec.Set(c.field, strings.TrimSpace(cell))
		}
	}

	return rec, nil
}

func splitList(cell, sep string) []string {
	var out []string

	for _, part := range strings.Split(cell, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	return out
}

// gameMapping adds the installer columns to the scalar game columns.
//
// System holds one system per installer joined by spaces, LastUpdated one
// date or "-" per installer, Filename the installers' file lists joined by
// "; " with the files of one installer joined by ", ".
type gameMapping struct {
	base columnMapping
}

func (m gameMapping) Header() []string {
	return append(m.base.Header(), "System", "LastUpdated", "Filename")
}

func (m gameMapping) Required() []string {
	return append(m.base.Required(), "System")
}

func (m gameMapping) Row(rec catalog.Record) []string {
	var systems, dates, files []string

	for _, inst := range rec.Group("installer") {
		systems = append(systems, inst.Get("system"))

		date := inst.Get("lastupdated")
		if date == "" {
			date = absentToken
		}

		dates = append(dates, date)
		files = append(files, strings.Join(inst.List("filename"), listSep))
	}

	return append(m.base.Row(rec),
		strings.Join(systems, systemSep),
		strings.Join(dates, systemSep),
		strings.Join(files, installerSep),
	)
}

func (m gameMapping) Record(cells map[string]string) (catalog.Record, error) {
	rec, err := m.base.Record(cells)
	if err != nil {
		return catalog.Record{}, err
	}

	systems := strings.Fields(cells["System"])
	if len(systems) == 0 {
		return rec, nil
	}

	dates := strings.Fields(cells["LastUpdated"])
	if len(dates) != 0 && len(dates) != len(systems) {
		return catalog.Record{}, fmt.Errorf("%d systems but %d LastUpdated values", len(systems), len(dates))
	}

	var files []string
	if cell := strings.TrimSpace(cells["Filename"]); cell != "" {
		files = strings.Split(cell, installerSep)
	}

	if len(files) != 0 && len(files) != len(systems) {
		return catalog.Record{}, fmt.Errorf("%d systems but %d Filename groups", len(systems), len(files))
	}

	installers := make([]catalog.Record, 0, len(systems))

	for i, system := range systems {
		var inst catalog.Record

		inst.Set("system", system)

		if len(dates) > 0 && dates[i] != absentToken {
			inst.Set("lastupdated", dates[i])
		}

		if len(files) > 0 {
			inst.SetList("filename", splitList(files[i], listSep))
		}

		installers = append(installers, inst)
	}

	rec.SetGroup("installer", installers)

	return rec, nil
}
