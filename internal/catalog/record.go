package catalog

import (
	"maps"
	"slices"
)

// Record is the in-memory form of one item, keyed by field name.
//
// Scalar fields live in Scalars, wrapped and repeated fields in Lists, and
// nested groups (game installers) in Groups. An empty string or an empty
// list means the field is absent; setters delete such entries so decoded
// and hand-built records compare equal.
type Record struct {
	Scalars map[string]string
	Lists   map[string][]string
	Groups  map[string][]Record
}

// Get returns the scalar value of name, or "".
func (r Record) Get(name string) string {
	return r.Scalars[name]
}

// List returns the list value of name.
func (r Record) List(name string) []string {
	return r.Lists[name]
}

// Group returns the nested records stored under name.
func (r Record) Group(name string) []Record {
	return r.Groups[name]
}

// Values returns the values of a scalar or list field as a list.
func (r Record) Values(name string) []string {
	if v, ok := r.Scalars[name]; ok && v != "" {
		return []string{v}
	}

	return r.Lists[name]
}

// Has reports whether the field is present in any shape.
func (r Record) Has(name string) bool {
	return r.Scalars[name] != "" || len(r.Lists[name]) > 0 || len(r.Groups[name]) > 0
}

// Set stores a scalar. An empty value removes the field.
func (r *Record) Set(name, value string) {
	if value == "" {
		delete(r.Scalars, name)

		return
	}

	if r.Scalars == nil {
		r.Scalars = make(map[string]string)
	}

	r.Scalars[name] = value
}

// SetList stores a list. An empty list removes the field.
func (r *Record) SetList(name string, values []string) {
	if len(values) == 0 {
		delete(r.Lists, name)

		return
	}

	if r.Lists == nil {
		r.Lists = make(map[string][]string)
	}

	r.Lists[name] = slices.Clone(values)
}

// SetGroup stores nested records. An empty slice removes the field.
func (r *Record) SetGroup(name string, groups []Record) {
	if len(groups) == 0 {
		delete(r.Groups, name)

		return
	}

	if r.Groups == nil {
		r.Groups = make(map[string][]Record)
	}

	r.Groups[name] = groups
}

// Unset removes a field whatever its shape.
func (r *Record) Unset(name string) {
	delete(r.Scalars, name)
	delete(r.Lists, name)
	delete(r.Groups, name)
}

// Clone returns a deep copy.
func (r Record) Clone() Record {
	out := Record{
		Scalars: maps.Clone(r.Scalars),
	}

	if r.Lists != nil {
		out.Lists = make(map[string][]string, len(r.Lists))
		for k, v := range r.Lists {
			out.Lists[k] = slices.Clone(v)
		}
	}

	if r.Groups != nil {
		out.Groups = make(map[string][]Record, len(r.Groups))
		for k, groups := range r.Groups {
			cloned := make([]Record, len(groups))
			for i, g := range groups {
				cloned[i] = g.Clone()
			}

			out.Groups[k] = cloned
		}
	}

	return out
}
