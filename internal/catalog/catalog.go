// Package catalog declares the record kinds a media library can hold and
// maps records to and from their XML item elements.
//
// Each kind is described once, as data: an ordered list of [Field]
// declarations that mirrors the schema's element order, a [FieldConfig]
// naming the unique key and the sortable fields, and the canonical schema
// source. A generic [Layout] turns that description into a [Codec].
package catalog

import (
	"embed"
	"fmt"
	"slices"
	"strings"

	"github.com/beevik/etree"
)

// Kind names a record kind. It is also the item element name and the
// per-kind storage directory name.
type Kind string

// Supported kinds.
const (
	KindBook  Kind = "book"
	KindGame  Kind = "game"
	KindMusic Kind = "music"
	KindVideo Kind = "video"
)

// Codec maps records of one kind to and from item elements.
type Codec interface {
	// Kind returns the record kind handled by the codec.
	Kind() Kind

	// Fields returns the field declarations in schema order.
	Fields() []Field

	// Encode builds an item element from r. A mandatory field missing from r
	// fails with [ErrMissingField].
	Encode(r Record) (*etree.Element, error)

	// Decode is the inverse of Encode. Elements without text are absent.
	Decode(el *etree.Element) (Record, error)

	// Config returns the sort/search configuration.
	Config() FieldConfig

	// Schema returns the canonical schema source.
	Schema() []byte
}

//go:embed schemas/*.xsd
var schemas embed.FS

var registry = map[Kind]*Layout{
	KindBook:  bookLayout(),
	KindGame:  gameLayout(),
	KindMusic: musicLayout(),
	KindVideo: videoLayout(),
}

// Kinds returns all supported kinds in display order.
func Kinds() []Kind {
	return []Kind{KindBook, KindGame, KindMusic, KindVideo}
}

// ParseKind resolves a kind name, case-insensitively.
func ParseKind(name string) (Kind, error) {
	kind := Kind(strings.ToLower(strings.TrimSpace(name)))
	if !slices.Contains(Kinds(), kind) {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, name)
	}

	return kind, nil
}

// Lookup returns the codec for kind.
func Lookup(kind Kind) (Codec, error) {
	layout, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, string(kind))
	}

	return layout, nil
}

func mustSchema(kind Kind) []byte {
	data, err := schemas.ReadFile("schemas/" + string(kind) + ".xsd")
	if err != nil {
		panic(fmt.Sprintf("catalog: missing embedded schema for %s: %v", kind, err))
	}

	return data
}
