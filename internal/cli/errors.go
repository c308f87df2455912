package cli

import (
	"errors"

	"github.com/calvinalkan/medialib/internal/store"
)

var (
	errKindRequired    = errors.New("library type is required")
	errKeyRequired     = errors.New("item key is required")
	errUnsupportedKind = errors.New("unsupported library type")
	errFieldArg        = errors.New("invalid field argument")
	errBackupInvalid   = errors.New("backup is invalid")
	errMusicDisabled   = errors.New("music library is not enabled")
	errNoGlobalPath    = errors.New("cannot locate the global config: set HOME or XDG_CONFIG_HOME")
)

const writeHint = "check that the path exists and you have write privilege"

// describe renders a command error, adding guidance for write failures.
func describe(err error) string {
	msg := err.Error()

	if errors.Is(err, store.ErrWrite) || errors.Is(err, store.ErrDirectory) {
		msg += "\n  hint: " + writeHint
	}

	return msg
}

// onlyTempFile reports whether err is a leftover temp file and nothing
// else, meaning the edit itself was committed.
func onlyTempFile(err error) bool {
	if !errors.Is(err, store.ErrTempFile) {
		return false
	}

	for _, other := range []error{
		store.ErrNotFound, store.ErrValidation, store.ErrField,
		store.ErrWrite, store.ErrStoreInvalid,
	} {
		if errors.Is(err, other) {
			return false
		}
	}

	return true
}
