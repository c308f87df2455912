package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/calvinalkan/medialib/internal/catalog"
	"github.com/calvinalkan/medialib/internal/config"
	"github.com/calvinalkan/medialib/internal/csvbridge"
	"github.com/calvinalkan/medialib/internal/fs"
	"github.com/calvinalkan/medialib/internal/store"
)

// app carries what every command needs: resolved config, filesystem,
// logger and the raw process streams.
type app struct {
	cfg   config.Config
	fs    fs.FS
	log   *slog.Logger
	env   map[string]string
	stdin io.Reader
}

// kind parses name and checks that the kind is enabled.
func (a *app) kind(name string) (catalog.Kind, error) {
	if name == "" {
		return "", errKindRequired
	}

	kind, err := catalog.ParseKind(name)
	if err != nil || !a.cfg.Enabled(kind) {
		return "", fmt.Errorf("%w: %q (enabled: %s)", errUnsupportedKind, name, strings.Join(a.cfg.Types, ", "))
	}

	return kind, nil
}

// store opens the store of the named kind.
func (a *app) store(name string) (*store.Store, error) {
	kind, err := a.kind(name)
	if err != nil {
		return nil, err
	}

	return a.storeFor(kind)
}

func (a *app) storeFor(kind catalog.Kind) (*store.Store, error) {
	codec, err := catalog.Lookup(kind)
	if err != nil {
		return nil, err
	}

	return store.New(codec, a.fs, a.cfg.LibraryPath(kind), a.cfg.SchemaPath(kind), a.log), nil
}

func (a *app) bridge(name string) (*csvbridge.Bridge, error) {
	s, err := a.store(name)
	if err != nil {
		return nil, err
	}

	return csvbridge.New(s, a.fs)
}

// path resolves p against the effective working directory.
func (a *app) path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}

	return filepath.Join(a.cfg.EffectiveCwd, p)
}

// locked runs fn while holding the library lock of s.
func (a *app) locked(ctx context.Context, s *store.Store, fn func() error) error {
	unlock, err := s.Lock(ctx)
	if err != nil {
		return err
	}

	defer unlock()

	return fn()
}
