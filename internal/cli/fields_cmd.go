package cli

import (
	"context"
	"strings"

	"github.com/calvinalkan/medialib/internal/catalog"
	"github.com/calvinalkan/medialib/internal/csvbridge"

	flag "github.com/spf13/pflag"
)

// FieldsCmd returns the fields command.
func FieldsCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("fields", flag.ContinueOnError),
		Usage: "fields <kind>",
		Short: "Describe a kind's fields",
		Long:  "Print the item layout, the sortable fields and the CSV columns of a kind.",
		Exec: func(_ context.Context, io *IO, args []string) error {
			if len(args) == 0 {
				return errKindRequired
			}

			kind, err := a.kind(args[0])
			if err != nil {
				return err
			}

			codec, err := catalog.Lookup(kind)
			if err != nil {
				return err
			}

			mapping, err := csvbridge.MappingFor(kind)
			if err != nil {
				return err
			}

			cfg := codec.Config()

			io.Printf("%s: key %s, default sort %s\n\n", kind, cfg.Key, cfg.DefaultSort)

			io.PrintLines(renderTable([]string{"Field", "Shape", "Type", "Required", "Values"}, fieldRows(codec.Fields(), ""), 0))

			io.Println()
			io.Println("sortable:", strings.Join(cfg.Names(), ", "))
			io.Println("csv columns:", strings.Join(mapping.Header(), ","))
			io.Println("csv required:", strings.Join(mapping.Required(), ","))

			return nil
		},
	}
}

func fieldRows(fields []catalog.Field, indent string) [][]string {
	var rows [][]string

	for _, f := range fields {
		name := f.Name
		if f.Item != "" {
			name += "/" + f.Item
		}

		required := "no"
		if f.Required {
			required = "yes"
		}

		typ := f.Type
		if f.Shape == catalog.Group {
			typ = ""
		}

		rows = append(rows, []string{indent + name, f.Shape.String(), typ, required, strings.Join(f.Values, "|")})
		rows = append(rows, fieldRows(f.Fields, indent+"  ")...)
	}

	return rows
}
