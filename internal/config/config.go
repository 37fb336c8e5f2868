// Package config loads notebox settings from a YAML file and the
// environment.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/creasty/defaults"
	pkgerrors "github.com/pkg/errors"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/taigrr/notebox/internal/kv"
	"github.com/taigrr/notebox/internal/logging"
	"github.com/taigrr/notebox/internal/writequeue"
)

// DefaultFile is the config file read when none is given explicitly.
const DefaultFile = "~/.config/notebox/config.yaml"

// Config is the full notebox configuration.
type Config struct {
	File    string         `yaml:"-"`
	Storage StorageConfig  `yaml:"storage"`
	Queue   QueueConfig    `yaml:"queue"`
	Log     logging.Config `yaml:"log"`
	Notes   NotesConfig    `yaml:"notes"`
}

// StorageConfig selects where the notes document is persisted.
type StorageConfig struct {
	// Backend is one of file, sqlite or memory.
	Backend string `yaml:"backend" env:"NOTEBOX_STORAGE_BACKEND" default:"file"`
	// Path is a directory for the file backend and a database file for
	// sqlite. A directory given for sqlite gets notebox.db appended.
	Path string `yaml:"path" env:"NOTEBOX_STORAGE_PATH" default:"~/.local/share/notebox"`
	// Key is the storage key holding the document.
	Key string `yaml:"key" env:"NOTEBOX_STORAGE_KEY" default:"folders"`
	// Watch reloads the document when another process replaces it. Only
	// the file backend supports it.
	Watch bool `yaml:"watch" env:"NOTEBOX_STORAGE_WATCH" default:"false"`
}

// QueueConfig configures the persistence write queue.
type QueueConfig struct {
	Capacity     int           `yaml:"capacity" env:"NOTEBOX_QUEUE_CAPACITY" default:"100"`
	WriteTimeout time.Duration `yaml:"write-timeout" env:"NOTEBOX_QUEUE_WRITE_TIMEOUT" default:"10s"`
}

// NotesConfig holds note defaults.
type NotesConfig struct {
	// DateLayout formats the date stamped on new notes.
	DateLayout string `yaml:"date-layout" env:"NOTEBOX_DATE_LAYOUT" default:"1/2/2006"`
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() (*Config, error) {
	c := new(Config)
	if err := defaults.Set(c); err != nil {
		return nil, pkgerrors.Wrap(err, "set default config failed")
	}
	return c, nil
}

// Load reads the config file at path, applies environment overrides and
// validates the result. An empty path means DefaultFile, which may be
// absent; an explicitly named file must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	realpath, err := ExpandHome(path)
	if err != nil {
		return nil, err
	}
	realpath, err = filepath.Abs(realpath)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "resolve config path failed")
	}

	c, err := Default()
	if err != nil {
		return nil, err
	}
	c.File = filepath.Clean(realpath)

	file, err := os.ReadFile(c.File)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(file, c); err != nil {
			return nil, pkgerrors.Wrap(err, "parse config file failed")
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		c.File = ""
	default:
		return nil, pkgerrors.Wrap(err, "read config file failed")
	}

	if err := env.Parse(c); err != nil {
		return nil, pkgerrors.Wrap(err, "parse env failed")
	}

	// Fill fields the file set to their zero value.
	if err := defaults.Set(c); err != nil {
		return nil, pkgerrors.Wrap(err, "re-set default config failed")
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the settings for values the components cannot use.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case kv.BackendFile, kv.BackendSQLite, kv.BackendMemory:
	default:
		return pkgerrors.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Storage.Watch && c.Storage.Backend != kv.BackendFile {
		return pkgerrors.Errorf("storage watch requires the file backend, got %q", c.Storage.Backend)
	}
	if err := kv.ValidateKey(c.Storage.Key); err != nil {
		return pkgerrors.Wrap(err, "invalid storage key")
	}
	if c.Queue.Capacity <= 0 {
		return pkgerrors.Errorf("queue capacity must be positive, got %d", c.Queue.Capacity)
	}
	if c.Queue.WriteTimeout <= 0 {
		return pkgerrors.Errorf("queue write timeout must be positive, got %s", c.Queue.WriteTimeout)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return pkgerrors.Wrap(err, "invalid log level")
	}
	if strings.TrimSpace(c.Notes.DateLayout) == "" {
		return pkgerrors.New("notes date layout cannot be empty")
	}
	return nil
}

// StorageLocation returns the expanded path handed to kv.Open.
func (c *Config) StorageLocation() (string, error) {
	path, err := ExpandHome(c.Storage.Path)
	if err != nil {
		return "", err
	}
	if c.Storage.Backend == kv.BackendSQLite && filepath.Ext(path) == "" {
		path = filepath.Join(path, "notebox.db")
	}
	return path, nil
}

// WriteQueueConfig returns the write queue settings.
func (c *Config) WriteQueueConfig() writequeue.Config {
	cfg := writequeue.DefaultConfig()
	if c.Queue.Capacity > 0 {
		cfg.Capacity = c.Queue.Capacity
	}
	if c.Queue.WriteTimeout > 0 {
		cfg.WriteTimeout = c.Queue.WriteTimeout
	}
	return cfg
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", pkgerrors.Wrap(err, "resolve home directory failed")
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
