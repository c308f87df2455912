// Package store implements the schema-validated XML record store.
//
// A [Store] manages one library file and its schema for one record kind.
// It is generic: the kind-specific parts come from an injected
// [catalog.Codec]. Every mutation loads the whole document, changes it in
// memory, validates the complete result against the schema, and rewrites
// the file atomically, so the library on disk is either schema-valid or
// untouched.
//
// The mutating methods do not lock. Callers sharing a library between
// processes hold [Store.Lock] around them.
package store

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/beevik/etree"

	"github.com/calvinalkan/medialib/internal/catalog"
	"github.com/calvinalkan/medialib/internal/fs"
	"github.com/calvinalkan/medialib/internal/xsd"
)

const (
	backupSuffix = ".back"
	tempSuffix   = ".temp"
	lockSuffix   = ".lock"
	filePerm     = 0o644
	dirPerm      = 0o755
)

// LockTimeout is the longest [Store.Lock] waits for another writer.
const LockTimeout = 2 * time.Second

// Store is the record store for one library kind.
type Store struct {
	codec      catalog.Codec
	fs         fs.FS
	libPath    string
	schemaPath string
	log        *slog.Logger
}

// New returns a store for the library at libPath validated by the schema at
// schemaPath. A nil logger discards output.
func New(codec catalog.Codec, fsys fs.FS, libPath, schemaPath string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Store{
		codec:      codec,
		fs:         fsys,
		libPath:    libPath,
		schemaPath: schemaPath,
		log:        logger.With("kind", string(codec.Kind())),
	}
}

// Kind returns the record kind of the store.
func (s *Store) Kind() catalog.Kind { return s.codec.Kind() }

// Codec returns the codec used by the store.
func (s *Store) Codec() catalog.Codec { return s.codec }

// LibraryPath returns the library file path.
func (s *Store) LibraryPath() string { return s.libPath }

// SchemaPath returns the schema file path.
func (s *Store) SchemaPath() string { return s.schemaPath }

// BackupPath returns the single-generation backup path.
func (s *Store) BackupPath() string { return s.libPath + backupSuffix }

// TempPath returns the path of the temporary copy made during an edit.
func (s *Store) TempPath() string { return s.libPath + tempSuffix }

// LockPath returns the path of the lock file taken by [Store.Lock].
func (s *Store) LockPath() string { return s.libPath + lockSuffix }

// Validate checks the library file against the schema file.
func (s *Store) Validate() (xsd.Status, error) {
	status, err := xsd.ValidateFile(s.fs, s.schemaPath, s.libPath)
	s.log.Debug("validate", "status", status.String())

	if err != nil {
		return status, withContext(err, s.Kind(), "")
	}

	return status, nil
}

// ValidateBackup checks the backup file against the schema file.
func (s *Store) ValidateBackup() (xsd.Status, error) {
	status, err := xsd.ValidateFile(s.fs, s.schemaPath, s.BackupPath())
	if err != nil {
		return status, &Error{Kind: s.Kind(), Path: s.BackupPath(), Err: err}
	}

	return status, nil
}

// LibraryExists reports whether the library file exists.
func (s *Store) LibraryExists() (bool, error) {
	return s.fs.Exists(s.libPath)
}

// SchemaExists reports whether the schema file exists.
func (s *Store) SchemaExists() (bool, error) {
	return s.fs.Exists(s.schemaPath)
}

// CreateLibrary creates the storage directory if needed and writes an empty
// library referencing the schema. An existing library is overwritten.
func (s *Store) CreateLibrary() error {
	dir := filepath.Dir(s.libPath)

	err := s.fs.MkdirAll(dir, dirPerm)
	if err != nil {
		return withContext(fmt.Errorf("%w: %w", ErrDirectory, err), s.Kind(), "")
	}

	location, err := filepath.Rel(dir, s.schemaPath)
	if err != nil {
		location = s.schemaPath
	}

	doc := newDocument([]etree.Attr{
		{Space: "xmlns", Key: "xsi", Value: xsd.InstanceNamespace},
		{Space: "xsi", Key: "noNamespaceSchemaLocation", Value: filepath.ToSlash(location)},
	}, nil)

	err = s.write(doc)
	if err != nil {
		return withContext(err, s.Kind(), "")
	}

	s.log.Info("created library", "path", s.libPath)

	return nil
}

// RestoreSchema overwrites the schema file with the kind's canonical schema.
func (s *Store) RestoreSchema() error {
	err := s.fs.MkdirAll(filepath.Dir(s.schemaPath), dirPerm)
	if err != nil {
		return withContext(fmt.Errorf("%w: %w", ErrDirectory, err), s.Kind(), "")
	}

	err = s.fs.WriteFileAtomic(s.schemaPath, s.codec.Schema(), filePerm)
	if err != nil {
		return withContext(fmt.Errorf("%w: %w", ErrWrite, err), s.Kind(), "")
	}

	s.log.Info("restored schema", "path", s.schemaPath)

	return nil
}

// Backup copies the library to the backup file, replacing any previous
// backup.
func (s *Store) Backup() error {
	err := fs.CopyFile(s.fs, s.libPath, s.BackupPath())
	if err != nil {
		return &Error{Kind: s.Kind(), Path: s.BackupPath(), Err: fmt.Errorf("%w: %w", ErrWrite, err)}
	}

	s.log.Debug("backup", "path", s.BackupPath())

	return nil
}

// Restore copies the backup file over the library. It does not validate the
// backup; call [Store.ValidateBackup] first.
func (s *Store) Restore() error {
	exists, err := s.fs.Exists(s.BackupPath())
	if err == nil && !exists {
		return &Error{Kind: s.Kind(), Path: s.BackupPath(), Err: fmt.Errorf("%w: no backup", ErrNotFound)}
	}

	err = fs.CopyFile(s.fs, s.BackupPath(), s.libPath)
	if err != nil {
		return &Error{Kind: s.Kind(), Path: s.BackupPath(), Err: fmt.Errorf("%w: %w", ErrWrite, err)}
	}

	s.log.Debug("restore", "path", s.BackupPath())

	return nil
}

// --- Private api ---

// entry pairs a decoded record with its element.
type entry struct {
	rec catalog.Record
	el  *etree.Element
}

// library is a loaded document.
type library struct {
	attrs   []etree.Attr
	entries []entry
}

// read loads and decodes the library without validating it.
func (s *Store) read() (*library, error) {
	data, err := s.fs.ReadFile(s.libPath)
	if err != nil {
		return nil, err
	}

	doc := etree.NewDocument()

	err = doc.ReadFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.libPath, err)
	}

	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("parse %s: no root element", s.libPath)
	}

	lib := &library{attrs: append([]etree.Attr(nil), root.Attr...)}
	item := string(s.Kind())

	for _, el := range root.ChildElements() {
		if el.Tag != item {
			return nil, fmt.Errorf("%w: unexpected element <%s>", catalog.ErrMalformed, el.Tag)
		}

		rec, err := s.codec.Decode(el)
		if err != nil {
			return nil, err
		}

		lib.entries = append(lib.entries, entry{rec: rec, el: el})
	}

	return lib, nil
}

// readValid validates the library and then loads it. Failures match
// [ErrStoreInvalid].
func (s *Store) readValid() (*library, error) {
	status, err := xsd.ValidateFile(s.fs, s.schemaPath, s.libPath)
	if status != xsd.StatusValid {
		return nil, fmt.Errorf("%w (%s): %w", ErrStoreInvalid, status, err)
	}

	lib, err := s.read()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreInvalid, err)
	}

	return lib, nil
}

// commit validates the document built from lib in memory and writes it.
func (s *Store) commit(lib *library) error {
	items := make([]*etree.Element, 0, len(lib.entries))
	for _, e := range lib.entries {
		items = append(items, e.el)
	}

	doc := newDocument(lib.attrs, items)

	status, err := xsd.ValidateTree(s.fs, s.schemaPath, doc)

	switch status {
	case xsd.StatusValid:
	case xsd.StatusInvalid:
		return fmt.Errorf("%w: %w", ErrValidation, err)
	default:
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}

	return s.write(doc)
}

func (s *Store) write(doc *etree.Document) error {
	data, err := doc.WriteToBytes()
	if err != nil {
		return fmt.Errorf("%w: serialize: %w", ErrWrite, err)
	}

	err = s.fs.WriteFileAtomic(s.libPath, data, filePerm)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}

	return nil
}

func newDocument(attrs []etree.Attr, items []*etree.Element) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("library")
	for _, a := range attrs {
		root.CreateAttr(a.FullKey(), a.Value)
	}

	for _, el := range items {
		root.AddChild(el)
	}

	doc.Indent(2)

	return doc
}
