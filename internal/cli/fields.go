package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/calvinalkan/medialib/internal/catalog"
)

const groupSep = ";"

// fieldByArg finds the field a command line name refers to. Wrapped lists
// accept both the container and the item name ("authors" or "author").
func fieldByArg(fields []catalog.Field, name string) (catalog.Field, bool) {
	name = strings.ToLower(strings.TrimSpace(name))

	for _, f := range fields {
		if f.Name == name || (f.Item != "" && f.Item == name) {
			return f, true
		}
	}

	return catalog.Field{}, false
}

// parseAssignments builds a record from name=value arguments. List fields
// collect repeated assignments; group fields take nested assignments
// separated by ";". It also returns the names of the fields given, in
// first-seen order.
func parseAssignments(fields []catalog.Field, args []string) (catalog.Record, []string, error) {
	var (
		rec   catalog.Record
		given []string
	)

	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok {
			return catalog.Record{}, nil, fmt.Errorf("%w: %q (want name=value)", errFieldArg, arg)
		}

		f, ok := fieldByArg(fields, name)
		if !ok {
			return catalog.Record{}, nil, fmt.Errorf("%w: unknown field %q (fields: %s)", errFieldArg, name, strings.Join(argNames(fields), ", "))
		}

		value = strings.TrimSpace(value)

		switch {
		case f.Shape == catalog.Group:
			sub, _, err := parseAssignments(f.Fields, splitGroup(value))
			if err != nil {
				return catalog.Record{}, nil, fmt.Errorf("%s: %w", f.Name, err)
			}

			rec.SetGroup(f.Name, append(rec.Group(f.Name), sub))
		case f.Shape.IsList():
			if value != "" {
				rec.SetList(f.Name, append(rec.List(f.Name), value))
			}
		default:
			if slices.Contains(given, f.Name) {
				return catalog.Record{}, nil, fmt.Errorf("%w: %s given more than once", errFieldArg, f.Name)
			}

			rec.Set(f.Name, value)
		}

		if !slices.Contains(given, f.Name) {
			given = append(given, f.Name)
		}
	}

	return rec, given, nil
}

func splitGroup(value string) []string {
	var parts []string

	for _, part := range strings.Split(value, groupSep) {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}

	return parts
}

// mergeRecord applies the given fields of patch to a copy of cur and then
// removes the unset fields. Given list and group fields replace the stored
// values as a whole.
func mergeRecord(fields []catalog.Field, cur, patch catalog.Record, given, unset []string) (catalog.Record, error) {
	out := cur.Clone()

	for _, name := range given {
		f, _ := catalog.FindField(fields, name)

		switch {
		case f.Shape == catalog.Group:
			out.SetGroup(name, patch.Group(name))
		case f.Shape.IsList():
			out.SetList(name, patch.List(name))
		default:
			out.Set(name, patch.Get(name))
		}
	}

	for _, name := range unset {
		f, ok := fieldByArg(fields, name)
		if !ok {
			return catalog.Record{}, fmt.Errorf("%w: unknown field %q", errFieldArg, name)
		}

		out.Unset(f.Name)
	}

	return out, nil
}

func argNames(fields []catalog.Field) []string {
	names := make([]string, 0, len(fields))

	for _, f := range fields {
		if f.Item != "" {
			names = append(names, f.Item)
		} else {
			names = append(names, f.Name)
		}
	}

	return names
}

// recordLines renders rec as an indented tree in field order.
func recordLines(fields []catalog.Field, rec catalog.Record, indent string) []string {
	var lines []string

	for _, f := range fields {
		switch {
		case f.Shape == catalog.Group:
			groups := rec.Group(f.Name)
			if len(groups) == 0 {
				continue
			}

			lines = append(lines, indent+f.Name+":")

			for _, g := range groups {
				sub := recordLines(f.Fields, g, indent+"    ")
				if len(sub) == 0 {
					continue
				}

				sub[0] = indent + "  - " + strings.TrimPrefix(sub[0], indent+"    ")
				lines = append(lines, sub...)
			}
		case f.Shape.IsList():
			values := rec.List(f.Name)
			if len(values) == 0 {
				continue
			}

			lines = append(lines, indent+f.Name+":")
			for _, v := range values {
				lines = append(lines, indent+"  - "+v)
			}
		default:
			if v := rec.Get(f.Name); v != "" {
				lines = append(lines, indent+f.Name+": "+v)
			}
		}
	}

	return lines
}
