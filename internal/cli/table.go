package cli

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/calvinalkan/medialib/internal/catalog"
)

const (
	cellSep   = " | "
	headerSep = "-|-"
	ellipsis  = "…"
	listJoin  = ", "
)

// renderTable lays out rows under header with columns padded to their
// widest cell in display cells. A positive maxWidth truncates every line.
func renderTable(header []string, rows [][]string, maxWidth int) []string {
	widths := make([]int, len(header))

	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}

	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	lines := make([]string, 0, len(rows)+2)
	lines = append(lines, joinRow(header, widths))

	dashes := make([]string, len(widths))
	for i, w := range widths {
		dashes[i] = strings.Repeat("-", w)
	}

	lines = append(lines, strings.Join(dashes, headerSep))

	for _, row := range rows {
		lines = append(lines, joinRow(row, widths))
	}

	if maxWidth > 0 {
		for i, line := range lines {
			if runewidth.StringWidth(line) > maxWidth {
				lines[i] = runewidth.Truncate(line, maxWidth, ellipsis)
			}
		}
	}

	return lines
}

func joinRow(cells []string, widths []int) string {
	padded := make([]string, len(cells))

	for i, cell := range cells {
		if i == len(cells)-1 {
			padded[i] = cell

			continue
		}

		padded[i] = runewidth.FillRight(cell, widths[i])
	}

	return strings.Join(padded, cellSep)
}

// column is one table column: a header and the field it shows.
type column struct {
	label string
	field catalog.Field
}

// sortColumns returns the sortable fields of codec as columns.
func sortColumns(codec catalog.Codec) []column {
	cfg := codec.Config()
	cols := make([]column, 0, len(cfg.Sortable))

	for _, sf := range cfg.Sortable {
		f, ok := catalog.FindField(codec.Fields(), sf.Field)
		if !ok {
			continue
		}

		cols = append(cols, column{label: sf.Label, field: f})
	}

	return cols
}

// fieldColumns returns every top-level field of codec as columns.
func fieldColumns(codec catalog.Codec) []column {
	cols := make([]column, 0, len(codec.Fields()))
	for _, f := range codec.Fields() {
		cols = append(cols, column{label: f.Label, field: f})
	}

	return cols
}

// cell renders one field of rec for a table.
func cell(rec catalog.Record, f catalog.Field) string {
	if f.Shape != catalog.Group {
		return strings.Join(rec.Values(f.Name), listJoin)
	}

	var parts []string

	for _, g := range rec.Group(f.Name) {
		if len(f.Fields) > 0 {
			parts = append(parts, g.Get(f.Fields[0].Name))
		}
	}

	return strings.Join(parts, listJoin)
}

func recordTable(cols []column, recs []catalog.Record, maxWidth int) []string {
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.label
	}

	rows := make([][]string, 0, len(recs))

	for _, rec := range recs {
		row := make([]string, len(cols))
		for i, c := range cols {
			row[i] = cell(rec, c.field)
		}

		rows = append(rows, row)
	}

	return renderTable(header, rows, maxWidth)
}
