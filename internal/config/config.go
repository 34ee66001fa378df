package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sadopc/timer/internal/store"
)

// ErrLoad is returned when the config file exists but cannot be read or parsed.
var ErrLoad = errors.New("config load error")

// EnvPath overrides the config file location.
const EnvPath = "TIMER_CONFIG"

// Config is the persisted configuration. Empty fields take their defaults in Get.
type Config struct {
	DataPath string `json:"data_path,omitempty"`
	Storage  string `json:"storage,omitempty"`
}

// Patch holds the fields a config command wants to change; nil means unchanged.
type Patch struct {
	DataPath *string
	Storage  *string
}

// Merge returns c with the non-nil fields of p applied.
func Merge(c Config, p Patch) Config {
	if p.DataPath != nil {
		c.DataPath = *p.DataPath
	}
	if p.Storage != nil {
		c.Storage = *p.Storage
	}
	return c
}

// Manager reads and writes the config file at Path.
type Manager struct {
	Path string
	Home string
}

// DefaultManager returns a Manager for ~/.timer/config.json, or $TIMER_CONFIG
// when set.
func DefaultManager() (*Manager, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}
	path := os.Getenv(EnvPath)
	if path == "" {
		path = filepath.Join(home, ".timer", "config.json")
	}
	return &Manager{Path: path, Home: home}, nil
}

// DefaultDataPath returns ~/.timer/data.
func (m *Manager) DefaultDataPath() string {
	return filepath.Join(m.Home, ".timer", "data")
}

// Load returns the stored config without defaults. A missing file is an empty
// config.
func (m *Manager) Load() (Config, error) {
	var c Config
	data, err := os.ReadFile(m.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return c, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("%w: parse %s: %w", ErrLoad, m.Path, err)
	}
	return c, nil
}

// Get returns the config with defaults applied.
func (m *Manager) Get() (Config, error) {
	c, err := m.Load()
	if err != nil {
		return c, err
	}
	if c.DataPath == "" {
		c.DataPath = m.DefaultDataPath()
	}
	if c.Storage == "" {
		c.Storage = store.BackendJSON
	}
	return c, nil
}

// Set merges p into the stored config and writes it back. Existing data is not
// moved when the data path changes.
func (m *Manager) Set(p Patch) (Config, error) {
	if p.DataPath != nil {
		abs, err := m.expand(*p.DataPath)
		if err != nil {
			return Config{}, err
		}
		p.DataPath = &abs
	}
	if p.Storage != nil {
		switch *p.Storage {
		case store.BackendJSON, store.BackendSQLite:
		default:
			return Config{}, fmt.Errorf("unknown storage backend %q (want %s or %s)",
				*p.Storage, store.BackendJSON, store.BackendSQLite)
		}
	}

	c, err := m.Load()
	if err != nil {
		return Config{}, err
	}
	c = Merge(c, p)

	if err := os.MkdirAll(filepath.Dir(m.Path), 0o755); err != nil {
		return Config{}, fmt.Errorf("create config directory: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return Config{}, fmt.Errorf("marshal config: %w", err)
	}
	if err := store.WriteFileAtomic(m.Path, append(data, '\n'), 0o644); err != nil {
		return Config{}, fmt.Errorf("write config: %w", err)
	}
	return c, nil
}

func (m *Manager) expand(path string) (string, error) {
	if path == "~" {
		path = m.Home
	} else if strings.HasPrefix(path, "~/") {
		path = filepath.Join(m.Home, path[2:])
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve data path: %w", err)
	}
	return abs, nil
}
