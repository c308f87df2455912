package catalog

import "errors"

// Sentinel errors returned by codecs.
var (
	ErrMissingField = errors.New("missing mandatory field")
	ErrMalformed    = errors.New("malformed record")
	ErrUnknownKind  = errors.New("unknown library type")
)
