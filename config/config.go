// Package config holds the debugger's persisted settings: command
// history size, memory/listing display widths, and the default paths
// it looks for a binary, replay file, and injection file under if the
// CLI flags don't override them.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config represents the debugger's configuration
type Config struct {
	// Debugger settings
	Debugger struct {
		HistorySize int `toml:"history_size"`
	} `toml:"debugger"`

	// Display settings
	Display struct {
		MemoryWordsPerLine int `toml:"memory_words_per_line"`
		MemoryDefaultLines int `toml:"memory_default_lines"`
		ListDefaultCount   int `toml:"list_default_count"`
		StackMaxWords      int `toml:"stack_max_words"`
	} `toml:"display"`

	// Default paths, used when the corresponding CLI flag is absent
	Paths struct {
		Binary     string `toml:"binary"`
		Replay     string `toml:"replay"`
		Injections string `toml:"injections"`
	} `toml:"paths"`

	// API server settings
	API struct {
		Port int `toml:"port"`
	} `toml:"api"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Debugger.HistorySize = 1000

	cfg.Display.MemoryWordsPerLine = 8
	cfg.Display.MemoryDefaultLines = 8
	cfg.Display.ListDefaultCount = 10
	cfg.Display.StackMaxWords = 32

	cfg.API.Port = 8080

	return cfg
}

// GetConfigPath returns the platform-specific config file path
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "synacor-dbg")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "synacor-dbg")

	default:
		return "config.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "config.toml"
	}

	return filepath.Join(configDir, "config.toml")
}

// Load loads configuration from the default config file
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from the specified file. A missing
// file is not an error: it just means the defaults apply.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to the default config file
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo saves configuration to the specified file
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- user config file path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close config file: %w", closeErr)
		}
	}()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}
