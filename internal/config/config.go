// Package config handles dexmatch configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/BurntSushi/toml"

	"github.com/roach88/dexmatch/internal/logging"
)

// Config represents the dexmatch configuration file.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level"`

	// Workers bounds scan concurrency. Zero means one worker per CPU.
	Workers int `toml:"workers"`

	// Database is the SQLite path used to persist scans and profiles.
	// Empty disables persistence.
	Database string `toml:"database"`

	// Profiles configures method profile input.
	Profiles ProfilesConfig `toml:"profiles"`
}

// ProfilesConfig configures method profile input.
type ProfilesConfig struct {
	// Path is the default method-stats CSV for `dexmatch profile`.
	Path string `toml:"path"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{LogLevel: "info"}
}

// Load loads the configuration from the default location.
// Returns a default config if the file doesn't exist.
func Load() (*Config, error) {
	configPath := DefaultPath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return Default(), nil
	}

	return LoadFrom(configPath)
}

// LoadFrom loads the configuration from a specific path. Keys missing
// from the file keep their default values.
func LoadFrom(path string) (*Config, error) {
	config := Default()
	md, err := toml.DecodeFile(path, config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("config %s: unknown key %q", path, undecoded[0].String())
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return config, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	if c.LogLevel != "" && !slices.Contains(logging.Levels, c.LogLevel) {
		return fmt.Errorf("log_level must be one of %v, got %q", logging.Levels, c.LogLevel)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	return nil
}

// DefaultPath returns the default config file path.
// Checks ~/.config/dexmatch/config.toml first (XDG style),
// then falls back to OS-specific location.
func DefaultPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		xdgPath := filepath.Join(home, ".config", "dexmatch", "config.toml")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath
		}
	}

	if configDir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(configDir, "dexmatch", "config.toml")
	}

	// Last resort fallback
	return filepath.Join(".", "config.toml")
}
