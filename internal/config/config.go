package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"
)

const appConfigDir = "maildigest"

// DefaultMaxMessages is how many recent emails are fetched when neither the
// config file nor a flag says otherwise.
const DefaultMaxMessages = 10

// Config represents the maildigest configuration
type Config struct {
	// Account is the Gmail address used when --account is not given.
	Account string `toml:"account"`
	// EnvFile is loaded before credentials are read from the environment.
	EnvFile     string `toml:"env_file"`
	MaxMessages int    `toml:"max_messages"`
	// Workers bounds concurrent message fetches; 0 means one per message.
	Workers int   `toml:"workers"`
	Style   Style `toml:"style"`
}

// Style holds the colors used by the text output format.
type Style struct {
	HeadingFg string `toml:"heading_fg"`
	LabelFg   string `toml:"label_fg"`
	DimFg     string `toml:"dim_fg"`
}

// WithDefaults fills in unset values.
func (c Config) WithDefaults() Config {
	if c.MaxMessages <= 0 {
		c.MaxMessages = DefaultMaxMessages
	}
	if c.Workers < 0 {
		c.Workers = 0
	}
	c.Style = c.Style.WithDefaults()
	return c
}

func (s Style) WithDefaults() Style {
	if s.HeadingFg == "" {
		s.HeadingFg = "12"
	}
	if s.LabelFg == "" {
		s.LabelFg = "6"
	}
	if s.DimFg == "" {
		s.DimFg = "8"
	}
	return s
}

// ConfigDir returns the directory where config files are stored
func ConfigDir() (string, error) {
	path, err := ConfigPath()
	if err != nil {
		return "", err
	}
	return filepath.Dir(path), nil
}

// ConfigPath returns the path to the config file
func ConfigPath() (string, error) {
	return xdg.ConfigFile(filepath.Join(appConfigDir, "config.toml"))
}

// StatePath returns the path of a file in the state directory, creating the
// directory if needed.
func StatePath(name string) (string, error) {
	return xdg.StateFile(filepath.Join(appConfigDir, name))
}

// Load reads the config file from disk
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads the config at path. A missing file yields an empty config.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}

// Save writes the config to disk
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveFile(path, cfg)
}

// SaveFile writes cfg to path, creating parent directories.
func SaveFile(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
