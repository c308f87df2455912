package catalog

import "slices"

// Shape is how a field is laid out in XML and stored in a [Record].
type Shape int

const (
	// Scalar is a single text element.
	Scalar Shape = iota
	// Wrapped is a container element holding one Item element per value.
	Wrapped
	// Repeated is one element per value, without a container.
	Repeated
	// Group is one element per nested record.
	Group
)

func (s Shape) String() string {
	switch s {
	case Scalar:
		return "scalar"
	case Wrapped:
		return "list"
	case Repeated:
		return "repeated"
	case Group:
		return "group"
	default:
		return "unknown"
	}
}

// IsList reports whether values of this shape are stored in Record.Lists.
func (s Shape) IsList() bool {
	return s == Wrapped || s == Repeated
}

// Field declares one child element of an item.
type Field struct {
	// Name is the element name and the record key.
	Name string
	// Item is the child element name of a Wrapped field.
	Item  string
	Label string
	Shape Shape

	Required bool
	// Values enumerates the allowed values, if restricted.
	Values []string
	// Type is the schema value type: "string", "integer" or "date".
	Type string
	// Fields declares the children of a Group.
	Fields []Field
}

// Allows reports whether value is acceptable for an enumerated field.
// Unrestricted fields allow everything.
func (f Field) Allows(value string) bool {
	return len(f.Values) == 0 || slices.Contains(f.Values, value)
}

// FindField returns the field named name.
func FindField(fields []Field, name string) (Field, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f, true
		}
	}

	return Field{}, false
}

// SortField maps a user-facing sort/search name to a record field.
type SortField struct {
	// Name is what users type, e.g. "author".
	Name string
	// Field is the record field, e.g. "authors".
	Field string
	Label string
}

// FieldConfig drives generic sort, search and table rendering.
type FieldConfig struct {
	Type Kind
	// Sortable lists the sortable and searchable fields in display order.
	Sortable []SortField
	// Key is the unique key field.
	Key string
	// DefaultSort is the sort name used by add and by listings without --sort.
	DefaultSort string
}

// Lookup resolves a sortable field by its user-facing name or field name.
func (c FieldConfig) Lookup(name string) (SortField, bool) {
	for _, sf := range c.Sortable {
		if sf.Name == name || sf.Field == name {
			return sf, true
		}
	}

	return SortField{}, false
}

// Names returns the user-facing sortable names.
func (c FieldConfig) Names() []string {
	names := make([]string, 0, len(c.Sortable))
	for _, sf := range c.Sortable {
		names = append(names, sf.Name)
	}

	return names
}
