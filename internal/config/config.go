package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/termsearch/termsearch/internal/logger"
)

// Config represents the complete configuration for termsearch
type Config struct {
	// History source configuration
	History HistoryConfig `toml:"history"`

	// Search and ranking configuration
	Search SearchConfig `toml:"search"`

	// TUI configuration
	TUI TUIConfig `toml:"tui"`

	// Logging configuration
	Log logger.Config `toml:"log"`

	// Directory paths (computed, not stored in TOML)
	ConfigDir string `toml:"-"`
	StateDir  string `toml:"-"`
}

// HistoryConfig contains history source settings
type HistoryConfig struct {
	// Path to the history file. Empty means resolve via $HISTFILE,
	// falling back to ~/.zsh_history.
	File string `toml:"file"`

	// Maximum number of raw history lines read from the end of the file
	MaxHistory int `toml:"max_history"`
}

// SearchConfig contains ranking settings
type SearchConfig struct {
	// Maximum number of candidates displayed and ranked
	MaxResults int `toml:"max_results"`

	// Influence of recency on the combined score
	RecencyWeight float64 `toml:"recency_weight"`

	// Influence of occurrence count on the combined score
	FrequencyWeight float64 `toml:"frequency_weight"`
}

// TUIConfig contains interface settings
type TUIConfig struct {
	// Highlight matched query characters in candidate rows
	HighlightMatches bool `toml:"highlight_matches"`

	// Prompt shown before the query line
	Prompt string `toml:"prompt"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	configDir := defaultConfigDir()
	stateDir := defaultStateDir()

	return &Config{
		History: HistoryConfig{
			File:       "",
			MaxHistory: 10000,
		},
		Search: SearchConfig{
			MaxResults:      10,
			RecencyWeight:   0.5,
			FrequencyWeight: 0.5,
		},
		TUI: TUIConfig{
			HighlightMatches: true,
			Prompt:           "> ",
		},
		Log: logger.Config{
			Level:     "info",
			Output:    filepath.Join(stateDir, "termsearch.log"),
			Color:     false,
			Timestamp: true,
			Caller:    false,
		},
		ConfigDir: configDir,
		StateDir:  stateDir,
	}
}

func defaultConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "termsearch")
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "termsearch"
	}
	return filepath.Join(homeDir, ".config", "termsearch")
}

func defaultStateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "termsearch")
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "termsearch"
	}
	return filepath.Join(homeDir, ".local", "state", "termsearch")
}

// Load loads configuration from the specified file path
func Load(configPath string) (*Config, error) {
	config := DefaultConfig()

	// If no config path specified, try default location
	if configPath == "" {
		configPath = filepath.Join(config.ConfigDir, "config.toml")
	}

	// Config file doesn't exist, return defaults
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return config, nil
	}

	// Load and parse the TOML file
	if _, err := toml.DecodeFile(configPath, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	return config, nil
}

// Save writes the configuration to the specified file path
func (c *Config) Save(configPath string) error {
	if configPath == "" {
		configPath = filepath.Join(c.ConfigDir, "config.toml")
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(configPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	if err := toml.NewEncoder(file).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	if c.History.MaxHistory <= 0 {
		return fmt.Errorf("history.max_history must be positive, got %d", c.History.MaxHistory)
	}
	if c.Search.MaxResults <= 0 {
		return fmt.Errorf("search.max_results must be positive, got %d", c.Search.MaxResults)
	}
	if c.Search.RecencyWeight < 0 {
		return fmt.Errorf("search.recency_weight must not be negative, got %f", c.Search.RecencyWeight)
	}
	if c.Search.FrequencyWeight < 0 {
		return fmt.Errorf("search.frequency_weight must not be negative, got %f", c.Search.FrequencyWeight)
	}
	if c.Search.RecencyWeight == 0 && c.Search.FrequencyWeight == 0 {
		return fmt.Errorf("at least one of search.recency_weight and search.frequency_weight must be positive")
	}
	return nil
}

// EnsureDirectories creates the config and state directories if needed
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.ConfigDir, c.StateDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
