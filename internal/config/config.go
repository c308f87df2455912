// Package config loads medialib configuration from JSONC files.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/tailscale/hujson"

	"github.com/calvinalkan/medialib/internal/catalog"
	"github.com/calvinalkan/medialib/internal/fs"
)

// Errors returned while loading configuration.
var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigFileRead     = errors.New("cannot read config file")
	ErrConfigInvalid      = errors.New("invalid config file")
	ErrConfigExists       = errors.New("config file already exists")
	ErrStorageRootEmpty   = errors.New("storage_root cannot be empty")
	ErrFileNameInvalid    = errors.New("invalid file name")
	ErrTypesEmpty         = errors.New("types cannot be empty")
	ErrTypeDuplicate      = errors.New("duplicate type")
	ErrLogLevel           = errors.New("invalid log_level")
)

// FileName is the project config file name.
const FileName = ".medialib.json"

// Config holds all configuration options.
type Config struct {
	// From config files (serialized)
	StorageRoot string   `json:"storage_root,omitempty"`
	LibraryFile string   `json:"library_file,omitempty"`
	SchemaFile  string   `json:"schema_file,omitempty"`
	Types       []string `json:"types,omitempty"`
	LogLevel    string   `json:"log_level,omitempty"`

	// Resolved paths (computed, not serialized)
	EffectiveCwd   string `json:"-"` // Absolute working directory (from -C flag or os.Getwd)
	StorageRootAbs string `json:"-"` // Absolute path to the storage root

	// Sources tracks which config files were loaded (for diagnostics)
	Sources Sources `json:"-"`
}

// Sources tracks which config files were loaded.
type Sources struct {
	Global  string // Path to global config if loaded, empty otherwise
	Project string // Path to project config if loaded, empty otherwise
}

// Default returns the default configuration. StorageRoot stays empty and
// is resolved by [Load].
func Default() Config {
	return Config{
		LibraryFile: "library.xml",
		SchemaFile:  "library.xsd",
		Types:       kindNames(catalog.Kinds()),
		LogLevel:    "warn",
	}
}

// Kinds returns the enabled kinds in configured order.
func (c Config) Kinds() []catalog.Kind {
	kinds := make([]catalog.Kind, 0, len(c.Types))

	for _, name := range c.Types {
		if kind, err := catalog.ParseKind(name); err == nil {
			kinds = append(kinds, kind)
		}
	}

	return kinds
}

// Enabled reports whether kind is listed in Types.
func (c Config) Enabled(kind catalog.Kind) bool {
	return slices.Contains(c.Kinds(), kind)
}

// Dir returns the storage directory of kind.
func (c Config) Dir(kind catalog.Kind) string {
	return filepath.Join(c.StorageRootAbs, string(kind))
}

// LibraryPath returns the library document path of kind.
func (c Config) LibraryPath(kind catalog.Kind) string {
	return filepath.Join(c.Dir(kind), c.LibraryFile)
}

// SchemaPath returns the schema path of kind.
func (c Config) SchemaPath(kind catalog.Kind) string {
	return filepath.Join(c.Dir(kind), c.SchemaFile)
}

// Level returns the configured slog level.
func (c Config) Level() slog.Level {
	var level slog.Level

	_ = level.UnmarshalText([]byte(c.LogLevel))

	return level
}

// GlobalPath returns the path to the global config file.
// Uses $XDG_CONFIG_HOME/medialib/config.json if set, otherwise
// ~/.config/medialib/config.json. Returns "" if neither is known.
func GlobalPath(env map[string]string) string {
	if xdgConfig := env["XDG_CONFIG_HOME"]; xdgConfig != "" {
		return filepath.Join(xdgConfig, "medialib", "config.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "medialib", "config.json")
	}

	return ""
}

// DefaultStorageRoot returns $XDG_DATA_HOME/medialib, else
// ~/.local/share/medialib, else "storage" under workDir.
func DefaultStorageRoot(env map[string]string, workDir string) string {
	if xdgData := env["XDG_DATA_HOME"]; xdgData != "" {
		return filepath.Join(xdgData, "medialib")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".local", "share", "medialib")
	}

	return filepath.Join(workDir, "storage")
}

// LoadInput holds the inputs for Load.
type LoadInput struct {
	WorkDirOverride     string            // -C/--cwd flag value; if empty, os.Getwd() is used
	ConfigPath          string            // -c/--config flag value
	StorageRootOverride string            // --storage-root flag value; empty means no override
	Env                 map[string]string // environment variables
}

// Load loads configuration with the following precedence (highest wins):
// 1. Defaults
// 2. Global user config
// 3. Project config file (.medialib.json, if exists)
// 4. Explicit config file via ConfigPath (if non-empty)
// 5. CLI overrides.
//
// The project file is skipped when an explicit file is given.
func Load(input LoadInput) (Config, error) {
	workDir := input.WorkDirOverride
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	}

	workDir, err := filepath.Abs(workDir)
	if err != nil {
		return Config{}, fmt.Errorf("cannot resolve working directory: %w", err)
	}

	cfg := Default()

	globalCfg, globalPath, err := loadOptional(GlobalPath(input.Env))
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.Global = globalPath
	cfg = merge(cfg, globalCfg)

	projectCfg, projectPath, err := loadProject(workDir, input.ConfigPath)
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.Project = projectPath
	cfg = merge(cfg, projectCfg)

	if input.StorageRootOverride != "" {
		cfg.StorageRoot = input.StorageRootOverride
	}

	err = Validate(cfg)
	if err != nil {
		return Config{}, err
	}

	cfg.EffectiveCwd = workDir

	root := cfg.StorageRoot
	if root == "" {
		root = DefaultStorageRoot(input.Env, workDir)
	}

	if filepath.IsAbs(root) {
		cfg.StorageRootAbs = filepath.Clean(root)
	} else {
		cfg.StorageRootAbs = filepath.Join(workDir, root)
	}

	return cfg, nil
}

func loadOptional(path string) (Config, string, error) {
	if path == "" {
		return Config{}, "", nil
	}

	cfg, loaded, err := loadFile(path, false)
	if err != nil || !loaded {
		return Config{}, "", err
	}

	return cfg, path, nil
}

func loadProject(workDir, configPath string) (Config, string, error) {
	if configPath == "" {
		return loadOptional(filepath.Join(workDir, FileName))
	}

	cfgFile := configPath
	if !filepath.IsAbs(cfgFile) {
		cfgFile = filepath.Join(workDir, cfgFile)
	}

	_, statErr := os.Stat(cfgFile)
	if statErr != nil {
		return Config{}, "", fmt.Errorf("%w: %s", ErrConfigFileNotFound, configPath)
	}

	cfg, _, err := loadFile(cfgFile, true)
	if err != nil {
		return Config{}, "", err
	}

	return cfg, cfgFile, nil
}

// loadFile loads a config file. If mustExist is false, a missing file
// returns a zero config and loaded=false.
func loadFile(path string, mustExist bool) (Config, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return Config{}, false, nil
		}

		return Config{}, false, fmt.Errorf("%w: %s", ErrConfigFileRead, path)
	}

	cfg, err := Parse(data)
	if err != nil {
		return Config{}, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}

	return cfg, true, nil
}

// Parse decodes one JSONC config file. Keys that are present but empty
// are rejected where an empty value has no meaning.
func Parse(data []byte) (Config, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg Config

	err = json.Unmarshal(standardized, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSON: %w", err)
	}

	var raw map[string]any

	_ = json.Unmarshal(standardized, &raw)

	for key, sentinel := range map[string]error{
		"storage_root": ErrStorageRootEmpty,
		"library_file": ErrFileNameInvalid,
		"schema_file":  ErrFileNameInvalid,
		"log_level":    ErrLogLevel,
	} {
		if val, exists := raw[key]; exists {
			if str, ok := val.(string); ok && str == "" {
				return Config{}, fmt.Errorf("%w: %s is empty", sentinel, key)
			}
		}
	}

	if val, exists := raw["types"]; exists {
		if list, ok := val.([]any); ok && len(list) == 0 {
			return Config{}, ErrTypesEmpty
		}
	}

	return cfg, nil
}

func merge(base, overlay Config) Config {
	if overlay.StorageRoot != "" {
		base.StorageRoot = overlay.StorageRoot
	}

	if overlay.LibraryFile != "" {
		base.LibraryFile = overlay.LibraryFile
	}

	if overlay.SchemaFile != "" {
		base.SchemaFile = overlay.SchemaFile
	}

	if len(overlay.Types) > 0 {
		base.Types = slices.Clone(overlay.Types)
	}

	if overlay.LogLevel != "" {
		base.LogLevel = overlay.LogLevel
	}

	return base
}

// Validate checks a merged configuration.
func Validate(cfg Config) error {
	for key, name := range map[string]string{"library_file": cfg.LibraryFile, "schema_file": cfg.SchemaFile} {
		if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
			return fmt.Errorf("%w: %s=%q", ErrFileNameInvalid, key, name)
		}
	}

	if cfg.LibraryFile == cfg.SchemaFile {
		return fmt.Errorf("%w: library_file and schema_file are both %q", ErrFileNameInvalid, cfg.LibraryFile)
	}

	if len(cfg.Types) == 0 {
		return ErrTypesEmpty
	}

	seen := make(map[catalog.Kind]bool, len(cfg.Types))

	for _, name := range cfg.Types {
		kind, err := catalog.ParseKind(name)
		if err != nil {
			return err
		}

		if seen[kind] {
			return fmt.Errorf("%w: %s", ErrTypeDuplicate, name)
		}

		seen[kind] = true
	}

	switch strings.ToLower(cfg.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q (want debug|info|warn|error)", ErrLogLevel, cfg.LogLevel)
	}

	return nil
}

// Format returns the serialized fields of cfg as indented JSON.
func Format(cfg Config) (string, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to format config: %w", err)
	}

	return string(data), nil
}

// WriteDefault writes the default configuration to path. An existing file
// is only replaced when force is set.
func WriteDefault(fsys fs.FS, path string, force bool) error {
	exists, err := fsys.Exists(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrConfigFileRead, path, err)
	}

	if exists && !force {
		return fmt.Errorf("%w: %s (use --force to overwrite)", ErrConfigExists, path)
	}

	formatted, err := Format(Default())
	if err != nil {
		return err
	}

	err = fsys.MkdirAll(filepath.Dir(path), 0o755)
	if err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	err = fsys.WriteFileAtomic(path, []byte(formatted+"\n"), 0o644)
	if err != nil {
		return fmt.Errorf("cannot write config file %s: %w", path, err)
	}

	return nil
}

func kindNames(kinds []catalog.Kind) []string {
	names := make([]string, 0, len(kinds))
	for _, k := range kinds {
		names = append(names, string(k))
	}

	return names
}
