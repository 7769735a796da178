// Package config loads cmdvault settings.
//
// Settings live in an optional config.yaml inside the per-user directory
// ($CMDVAULT_HOME, or ~/.cmd). Every key has a default, so a missing file
// is the same as an empty one.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// HomeEnv overrides the per-user directory.
const HomeEnv = "CMDVAULT_HOME"

// FileName is the configuration file looked up in the per-user directory.
const FileName = "config.yaml"

// Backend names.
const (
	BackendSQLite = "sqlite"
	BackendCSV    = "csv"
)

// ValidBackends lists the accepted backend values.
var ValidBackends = []string{BackendSQLite, BackendCSV}

// Config holds the resolved settings.
type Config struct {
	// Dir is the per-user directory every relative path resolves against.
	Dir string `yaml:"-"`

	// Backend selects the store implementation: "sqlite" or "csv".
	Backend string `yaml:"backend"`

	// Database and UsageDatabase are the SQLite files for the catalog and
	// usage stores.
	Database      string `yaml:"database"`
	UsageDatabase string `yaml:"usage_database"`

	// CatalogFile and UsageFile are the flat files for the catalog and
	// usage stores. The migrate command also reads them.
	CatalogFile string `yaml:"catalog_file"`
	UsageFile   string `yaml:"usage_file"`

	// SharedStore makes both stores handles to one SQLite database.
	SharedStore bool `yaml:"shared_store"`

	NoColor bool `yaml:"no_color"`
}

// Default returns the settings used when no file overrides them.
func Default(dir string) *Config {
	return &Config{
		Dir:           dir,
		Backend:       BackendSQLite,
		Database:      "cmd.db",
		UsageDatabase: "cmd_used.db",
		CatalogFile:   "cmd.csv",
		UsageFile:     "cmd_used.csv",
	}
}

// ResolveDir returns the per-user directory: $CMDVAULT_HOME if set,
// otherwise ~/.cmd. A nil lookup reads the process environment.
func ResolveDir(lookup func(string) (string, bool)) (string, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if dir, ok := lookup(HomeEnv); ok && dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".cmd"), nil
}

// Load reads settings for dir, creating dir if needed.
//
// An empty path means dir/config.yaml, which may be absent. An explicit path
// must exist. Unknown keys and unknown backends are errors.
func Load(fs afero.Fs, dir, path string) (*Config, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}

	cfg := Default(dir)

	optional := path == ""
	if optional {
		path = filepath.Join(dir, FileName)
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	cfg.Dir = dir

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the settings.
func (c *Config) Validate() error {
	valid := false
	for _, b := range ValidBackends {
		if c.Backend == b {
			valid = true
		}
	}
	if !valid {
		return fmt.Errorf("unknown backend %q: must be one of %v", c.Backend, ValidBackends)
	}
	if c.SharedStore && c.Backend != BackendSQLite {
		return fmt.Errorf("shared_store requires the %s backend", BackendSQLite)
	}
	for key, name := range map[string]string{
		"database":       c.Database,
		"usage_database": c.UsageDatabase,
		"catalog_file":   c.CatalogFile,
		"usage_file":     c.UsageFile,
	} {
		if name == "" {
			return fmt.Errorf("%s must not be empty", key)
		}
	}
	return nil
}

// Path resolves name against Dir unless it is absolute.
func (c *Config) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Dir, name)
}

// DatabasePath is the catalog SQLite file.
func (c *Config) DatabasePath() string { return c.Path(c.Database) }

// UsageDatabasePath is the usage SQLite file.
func (c *Config) UsageDatabasePath() string { return c.Path(c.UsageDatabase) }

// CatalogPath is the catalog flat file.
func (c *Config) CatalogPath() string { return c.Path(c.CatalogFile) }

// UsagePath is the usage flat file.
func (c *Config) UsagePath() string { return c.Path(c.UsageFile) }
