package store

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/calvinalkan/medialib/internal/catalog"
	"github.com/calvinalkan/medialib/internal/fs"
)

// editState names the phases of [Store.Edit] for logging.
type editState string

const (
	stateStart           editState = "start"
	stateBackedUp        editState = "backed_up"
	stateRemoved         editState = "removed"
	stateReadded         editState = "readded"
	stateCleaned         editState = "cleaned"
	stateRestoreFromTemp editState = "restore_from_temp"
	stateTempLeftOnDisk  editState = "temp_left_on_disk"
)

// Edit replaces the item whose unique key is key with rec, which may carry a
// different key.
//
// The edit is a remove followed by an add, guarded by a temporary copy of
// the library:
//
//   - start: copy the library to the temp file. Failure: [ErrWrite], nothing changed.
//   - backed up: remove the old item. Failure: the temp file is deleted and
//     the remove error is returned.
//   - removed: add rec. Failure: the temp file is copied back over the
//     library, then deleted. If the copy back fails the temp file stays on
//     disk and the error names it.
//   - readded: delete the temp file. Failure: [ErrTempFile], but the edit
//     itself is committed.
func (s *Store) Edit(key string, rec catalog.Record) error {
	log := s.log.With("op", "edit", "key", key)
	temp := s.TempPath()

	log.Debug("edit state", "state", stateStart)

	err := fs.CopyFile(s.fs, s.libPath, temp)
	if err != nil {
		return withContext(fmt.Errorf("%w: copy to temp file: %w", ErrWrite, err), s.Kind(), key)
	}

	log.Debug("edit state", "state", stateBackedUp)

	err = s.Remove(key)
	if err != nil {
		return joinCleanup(err, s.removeTemp(log))
	}

	log.Debug("edit state", "state", stateRemoved)

	err = s.Add(rec)
	if err != nil {
		log.Debug("edit state", "state", stateRestoreFromTemp, "cause", err)

		restoreErr := fs.CopyFile(s.fs, temp, s.libPath)
		if restoreErr != nil {
			log.Warn("edit state", "state", stateTempLeftOnDisk, "path", temp, "cause", restoreErr)

			return errors.Join(err, &Error{
				Kind: s.Kind(),
				Key:  key,
				Path: temp,
				Err:  fmt.Errorf("%w: restore from temp file failed, recover manually from %s: %w", ErrWrite, temp, restoreErr),
			})
		}

		return joinCleanup(err, s.removeTemp(log))
	}

	log.Debug("edit state", "state", stateReadded)

	return s.removeTemp(log)
}

func joinCleanup(err, cleanupErr error) error {
	if cleanupErr == nil {
		return err
	}

	return errors.Join(err, cleanupErr)
}

func (s *Store) removeTemp(log *slog.Logger) error {
	err := s.fs.Remove(s.TempPath())
	if err != nil {
		log.Warn("temp file not removed", "path", s.TempPath(), "cause", err)

		return &Error{Kind: s.Kind(), Path: s.TempPath(), Err: fmt.Errorf("%w: %w", ErrTempFile, err)}
	}

	log.Debug("edit state", "state", stateCleaned)

	return nil
}
