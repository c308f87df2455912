package catalog

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// Layout is the generic [Codec]: it walks a kind's field declarations in
// order, so element order is declared once per kind.
type Layout struct {
	kind   Kind
	fields []Field
	config FieldConfig
	schema []byte
}

// Kind implements [Codec].
func (l *Layout) Kind() Kind { return l.kind }

// Fields implements [Codec].
func (l *Layout) Fields() []Field { return l.fields }

// Config implements [Codec].
func (l *Layout) Config() FieldConfig { return l.config }

// Schema implements [Codec].
func (l *Layout) Schema() []byte { return l.schema }

// Encode implements [Codec].
func (l *Layout) Encode(r Record) (*etree.Element, error) {
	el := etree.NewElement(string(l.kind))

	err := encodeFields(el, l.fields, r, "")
	if err != nil {
		return nil, err
	}

	return el, nil
}

// Decode implements [Codec].
func (l *Layout) Decode(el *etree.Element) (Record, error) {
	if el.Tag != string(l.kind) {
		return Record{}, fmt.Errorf("%w: expected <%s>, got <%s>", ErrMalformed, l.kind, el.Tag)
	}

	return decodeFields(el, l.fields)
}

func encodeFields(parent *etree.Element, fields []Field, r Record, prefix string) error {
	err := checkShapes(fields, r, prefix)
	if err != nil {
		return err
	}

	for _, f := range fields {
		path := prefix + f.Name

		switch f.Shape {
		case Scalar:
			value := strings.TrimSpace(r.Scalars[f.Name])
			if value == "" {
				if f.Required {
					return fmt.Errorf("%w: %s", ErrMissingField, path)
				}

				continue
			}

			parent.CreateElement(f.Name).SetText(value)
		case Wrapped, Repeated:
			items := compact(r.Lists[f.Name])
			if len(items) == 0 {
				if f.Required {
					return fmt.Errorf("%w: %s", ErrMissingField, path)
				}

				continue
			}

			target := parent
			tag := f.Name

			if f.Shape == Wrapped {
				target = parent.CreateElement(f.Name)
				tag = f.Item
			}

			for _, item := range items {
				target.CreateElement(tag).SetText(item)
			}
		case Group:
			groups := r.Groups[f.Name]
			if len(groups) == 0 && f.Required {
				return fmt.Errorf("%w: %s", ErrMissingField, path)
			}

			for i, g := range groups {
				child := parent.CreateElement(f.Name)

				err := encodeFields(child, f.Fields, g, fmt.Sprintf("%s[%d].", path, i+1))
				if err != nil {
					return err
				}
			}
		}
	}

	return nil
}

// checkShapes rejects values stored under unknown names or in the wrong map.
func checkShapes(fields []Field, r Record, prefix string) error {
	check := func(name string, ok func(Shape) bool, want string) error {
		f, found := FindField(fields, name)
		if !found {
			return fmt.Errorf("%w: unknown field %s%s", ErrMalformed, prefix, name)
		}

		if !ok(f.Shape) {
			return fmt.Errorf("%w: field %s%s is a %s, not a %s", ErrMalformed, prefix, name, f.Shape, want)
		}

		return nil
	}

	for name := range r.Scalars {
		if err := check(name, func(s Shape) bool { return s == Scalar }, "scalar"); err != nil {
			return err
		}
	}

	for name := range r.Lists {
		if err := check(name, Shape.IsList, "list"); err != nil {
			return err
		}
	}

	for name := range r.Groups {
		if err := check(name, func(s Shape) bool { return s == Group }, "group"); err != nil {
			return err
		}
	}

	return nil
}

func compact(items []string) []string {
	out := make([]string, 0, len(items))

	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}

	return out
}

func decodeFields(el *etree.Element, fields []Field) (Record, error) {
	var r Record

	for _, child := range el.ChildElements() {
		f, ok := FindField(fields, child.Tag)
		if !ok {
			return Record{}, fmt.Errorf("%w: unexpected element <%s> in <%s>", ErrMalformed, child.Tag, el.Tag)
		}

		switch f.Shape {
		case Scalar:
			r.Set(f.Name, textOf(child))
		case Wrapped:
			items := r.List(f.Name)

			for _, item := range child.ChildElements() {
				if item.Tag != f.Item {
					return Record{}, fmt.Errorf("%w: unexpected element <%s> in <%s>", ErrMalformed, item.Tag, f.Name)
				}

				if text := textOf(item); text != "" {
					items = append(items, text)
				}
			}

			r.SetList(f.Name, items)
		case Repeated:
			if text := textOf(child); text != "" {
				r.SetList(f.Name, append(r.List(f.Name), text))
			}
		case Group:
			nested, err := decodeFields(child, f.Fields)
			if err != nil {
				return Record{}, err
			}

			r.SetGroup(f.Name, append(r.Group(f.Name), nested))
		}
	}

	return r, nil
}

func textOf(el *etree.Element) string {
	return strings.TrimSpace(el.Text())
}
