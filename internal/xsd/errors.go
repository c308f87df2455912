package xsd

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors returned by this package.
var (
	ErrSchema      = errors.New("invalid schema")
	ErrUnsupported = errors.New("unsupported schema construct")
	ErrDocument    = errors.New("unreadable document")
	ErrInvalid     = errors.New("document does not conform to schema")
)

// Violation is one place where a document breaks its schema.
type Violation struct {
	// Path locates the offending element, e.g. /library/book[2]/isbn.
	Path    string
	Message string
}

func (v Violation) String() string {
	return v.Path + ": " + v.Message
}

// ValidationError lists every violation found in a document.
// It matches [ErrInvalid] with errors.Is.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	switch len(e.Violations) {
	case 0:
		return ErrInvalid.Error()
	case 1:
		return e.Violations[0].String()
	}

	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.String())
	}

	return fmt.Sprintf("%d violations: %s", len(e.Violations), strings.Join(parts, "; "))
}

func (*ValidationError) Unwrap() error {
	return ErrInvalid
}
