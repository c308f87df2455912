// Package xsd validates XML documents against W3C XML Schema definitions.
//
// Only the subset of XSD 1.0 that catalog schemas use is understood:
// global and local element declarations, named and anonymous simple types
// restricting a builtin type (facets: enumeration, length bounds,
// totalDigits, inclusive integer bounds, pattern), complex types holding a
// single xs:sequence with minOccurs/maxOccurs, and xs:unique constraints
// with plain child-step selectors. Anything else makes [Parse] fail with
// [ErrUnsupported] instead of silently accepting documents.
//
// Validation results are three-way (see [Status]) so callers can tell a
// non-conforming document apart from one that could not be checked at all.
package xsd

import (
	"fmt"

	"github.com/beevik/etree"
)

// Namespace is the XML Schema namespace URI.
const Namespace = "http://www.w3.org/2001/XMLSchema"

// InstanceNamespace is the XML Schema instance namespace URI (xsi).
const InstanceNamespace = "http://www.w3.org/2001/XMLSchema-instance"

// Status is the outcome of a validation.
type Status int

const (
	// StatusValid means the document conforms to the schema.
	StatusValid Status = iota
	// StatusInvalid means the document was checked and does not conform.
	StatusInvalid
	// StatusError means the schema or the document could not be read or parsed.
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusValid:
		return "valid"
	case StatusInvalid:
		return "invalid"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Reader reads whole files. Satisfied by the store's filesystem layer.
type Reader interface {
	ReadFile(path string) ([]byte, error)
}

// Load reads and parses the schema at path.
func Load(r Reader, path string) (*Schema, error) {
	data, err := r.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSchema, err)
	}

	schema, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return schema, nil
}

// ValidateFile checks the document at docPath against the schema at
// schemaPath. The error is nil only for [StatusValid]. For [StatusInvalid]
// it is a *[ValidationError].
func ValidateFile(r Reader, schemaPath, docPath string) (Status, error) {
	schema, err := Load(r, schemaPath)
	if err != nil {
		return StatusError, err
	}

	data, err := r.ReadFile(docPath)
	if err != nil {
		return StatusError, fmt.Errorf("%w: %w", ErrDocument, err)
	}

	doc := etree.NewDocument()

	err = doc.ReadFromBytes(data)
	if err != nil {
		return StatusError, fmt.Errorf("%w: %s: %w", ErrDocument, docPath, err)
	}

	if doc.Root() == nil {
		return StatusError, fmt.Errorf("%w: %s: no root element", ErrDocument, docPath)
	}

	return check(schema, doc)
}

// ValidateTree checks an in-memory document against the schema at
// schemaPath. Only the schema is read from disk.
func ValidateTree(r Reader, schemaPath string, doc *etree.Document) (Status, error) {
	schema, err := Load(r, schemaPath)
	if err != nil {
		return StatusError, err
	}

	return check(schema, doc)
}

func check(schema *Schema, doc *etree.Document) (Status, error) {
	err := schema.Validate(doc)
	if err != nil {
		return StatusInvalid, err
	}

	return StatusValid, nil
}
