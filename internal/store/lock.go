//go:build linux || darwin || freebsd || netbsd || openbsd

package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

const lockRetry = 10 * time.Millisecond

// Lock takes an exclusive advisory lock on the library, waiting until ctx
// is done or [LockTimeout] passes. The lock file lives next to the library
// and is removed by the returned unlock function.
func (s *Store) Lock(ctx context.Context) (func(), error) {
	ctx, cancel := context.WithTimeout(ctx, LockTimeout)
	defer cancel()

	path := s.LockPath()

	for {
		file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, filePerm)
		if err != nil {
			return nil, withContext(fmt.Errorf("%w: %w", ErrWrite, err), s.Kind(), "")
		}

		locked, err := tryLock(file, path)
		if err != nil {
			_ = file.Close()

			return nil, withContext(fmt.Errorf("%w: %w", ErrWrite, err), s.Kind(), "")
		}

		if locked {
			s.log.Debug("locked", "path", path)

			return func() {
				// Remove while holding the lock, then unlock, then close.
				_ = os.Remove(path)
				_ = unix.Flock(int(file.Fd()), unix.LOCK_UN)
				_ = file.Close()
			}, nil
		}

		_ = file.Close()

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil, ctx.Err()
			}

			return nil, &Error{Kind: s.Kind(), Path: path, Err: ErrLocked}
		case <-time.After(lockRetry):
		}
	}
}

// tryLock attempts a non-blocking flock on file. It reports false when
// another process holds the lock or when the lock file was replaced after
// it was opened.
func tryLock(file *os.File, path string) (bool, error) {
	fd := int(file.Fd())

	err := unix.Flock(fd, unix.LOCK_EX|unix.LOCK_NB)
	if errors.Is(err, unix.EWOULDBLOCK) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("flock %s: %w", path, err)
	}

	var opened, current unix.Stat_t

	if err := unix.Fstat(fd, &opened); err != nil {
		_ = unix.Flock(fd, unix.LOCK_UN)

		return false, fmt.Errorf("fstat %s: %w", path, err)
	}

	// The previous holder removed the file while we were waiting.
	if err := unix.Stat(path, &current); err != nil || current.Ino != opened.Ino {
		_ = unix.Flock(fd, unix.LOCK_UN)

		return false, nil
	}

	return true, nil
}
