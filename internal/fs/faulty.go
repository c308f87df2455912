package fs

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"syscall"
)

// Op names a filesystem operation that [Faulty] can fail.
type Op string

// Operations understood by [Faulty.Fail].
const (
	OpOpen   Op = "open"
	OpRead   Op = "read"
	OpWrite  Op = "write"
	OpMkdir  Op = "mkdir"
	OpStat   Op = "stat"
	OpRemove Op = "remove"
)

// Faulty wraps an [FS] and fails selected operations on selected paths.
//
// Rules are sticky: once registered, every matching call fails with the
// configured errno until [Faulty.Clear] is called. Errors are real
// *fs.PathError values wrapping a syscall.Errno, registered so that
// [IsInjected] reports them.
//
// Paths are compared after [filepath.Clean].
type Faulty struct {
	fs FS

	mu    sync.Mutex
	rules map[faultKey]syscall.Errno
	hits  map[Op]int
}

// NewFaulty returns a [Faulty] that passes every call to fsys until a rule
// is registered.
func NewFaulty(fsys FS) *Faulty {
	return &Faulty{
		fs:    fsys,
		rules: make(map[faultKey]syscall.Errno),
		hits:  make(map[Op]int),
	}
}

// Fail makes every op on path return errno.
func (f *Faulty) Fail(op Op, path string, errno syscall.Errno) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.rules[faultKey{op: op, path: filepath.Clean(path)}] = errno
}

// Clear removes all rules for path.
func (f *Faulty) Clear(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	clean := filepath.Clean(path)
	for key := range f.rules {
		if key.path == clean {
			delete(f.rules, key)
		}
	}
}

// Hits returns how many calls of op have been failed so far.
func (f *Faulty) Hits(op Op) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.hits[op]
}

func (f *Faulty) Open(path string) (File, error) {
	if err := f.check(OpOpen, "open", path); err != nil {
		return nil, err
	}

	return f.fs.Open(path)
}

func (f *Faulty) ReadFile(path string) ([]byte, error) {
	if err := f.check(OpRead, "read", path); err != nil {
		return nil, err
	}

	return f.fs.ReadFile(path)
}

func (f *Faulty) WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	if err := f.check(OpWrite, "write", path); err != nil {
		return err
	}

	return f.fs.WriteFileAtomic(path, data, perm)
}

func (f *Faulty) MkdirAll(path string, perm os.FileMode) error {
	if err := f.check(OpMkdir, "mkdir", path); err != nil {
		return err
	}

	return f.fs.MkdirAll(path, perm)
}

func (f *Faulty) Stat(path string) (os.FileInfo, error) {
	if err := f.check(OpStat, "stat", path); err != nil {
		return nil, err
	}

	return f.fs.Stat(path)
}

func (f *Faulty) Exists(path string) (bool, error) {
	if err := f.check(OpStat, "stat", path); err != nil {
		return false, err
	}

	return f.fs.Exists(path)
}

func (f *Faulty) Remove(path string) error {
	if err := f.check(OpRemove, "remove", path); err != nil {
		return err
	}

	return f.fs.Remove(path)
}

// --- Private api ---

type faultKey struct {
	op   Op
	path string
}

func (f *Faulty) check(op Op, verb, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	errno, ok := f.rules[faultKey{op: op, path: filepath.Clean(path)}]
	if !ok {
		return nil
	}

	f.hits[op]++

	pathErr := &fs.PathError{Op: verb, Path: path, Err: errno}
	markInjectedPathError(pathErr)

	return pathErr
}
