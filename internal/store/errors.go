package store

import (
	"errors"
	"strings"

	"github.com/calvinalkan/medialib/internal/catalog"
)

// Sentinel errors, checked with errors.Is. A failed [Store.Edit] can match
// more than one: the error of the failing phase plus ErrWrite or ErrTempFile
// when recovery or cleanup also failed.
var (
	ErrNotFound     = errors.New("item not found")
	ErrValidation   = errors.New("library would not conform to its schema")
	ErrField        = errors.New("invalid item fields")
	ErrWrite        = errors.New("cannot write library")
	ErrDirectory    = errors.New("cannot create storage directory")
	ErrTempFile     = errors.New("cannot remove temporary file")
	ErrStoreInvalid = errors.New("library is invalid")
	ErrUnknownField = errors.New("field is not sortable or searchable")
	ErrLocked       = errors.New("library is locked by another process")
)

// Error is the error type returned by [Store] methods.
//
// The underlying message comes first, followed by the library context:
//
//	cannot write library: open /data/book/library.xml: permission denied (kind=book key=9780441013593)
//
// Use [errors.As] to extract the structured fields and [errors.Is] to check
// for the sentinel errors.
type Error struct {
	Kind catalog.Kind
	// Key is the unique key of the item involved, if any.
	Key string
	// Path is the file involved when it is not the library itself
	// (the temp or backup file).
	Path string

	Err error
}

// Error formats as "<cause> (kind=X key=Y path=Z)".
func (e *Error) Error() string {
	if e == nil {
		return ""
	}

	cause := ""
	if e.Err != nil {
		cause = e.Err.Error()
	}

	var parts []string

	if e.Kind != "" {
		parts = append(parts, "kind="+string(e.Kind))
	}

	if e.Key != "" {
		parts = append(parts, "key="+e.Key)
	}

	if e.Path != "" {
		parts = append(parts, "path="+e.Path)
	}

	if len(parts) == 0 {
		return cause
	}

	suffix := "(" + strings.Join(parts, " ") + ")"
	if cause == "" {
		return suffix
	}

	return cause + " " + suffix
}

// Unwrap returns the underlying error for use with [errors.Is] and [errors.As].
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.Err
}

// withContext attaches library context at API boundaries and returns *Error.
// If err already carries an *Error, missing fields are filled in-place.
func withContext(err error, kind catalog.Kind, key string) error {
	if err == nil {
		return nil
	}

	existing := &Error{}
	if errors.As(err, &existing) {
		if existing.Kind == "" {
			existing.Kind = kind
		}

		if existing.Key == "" && key != "" {
			existing.Key = key
		}

		return err
	}

	return &Error{Kind: kind, Key: key, Err: err}
}
