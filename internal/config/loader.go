package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidConfig is returned when a merged configuration fails validation.
var ErrInvalidConfig = errors.New("invalid config")

const dirName = ".deadline"

// Load reads and merges configuration from global and project paths.
// Order of precedence (highest to lowest): project config, global config, defaults.
// Missing files are not errors; malformed JSON returns an error.
func Load(globalPath, projectPath string) (*Config, error) {
	cfg := DefaultConfig()

	if globalPath != "" {
		if err := mergeConfigFile(cfg, globalPath); err != nil {
			return nil, fmt.Errorf("loading global config: %w", err)
		}
	}

	if projectPath != "" {
		if err := mergeConfigFile(cfg, projectPath); err != nil {
			return nil, fmt.Errorf("loading project config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultPaths returns the conventional global and project config paths.
// Global: ~/.deadline/config.json
// Project: .deadline/config.json (relative to cwd)
func DefaultPaths() (globalPath, projectPath string, err error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(homeDir, dirName, "config.json"), filepath.Join(dirName, "config.json"), nil
}

// LoadDefault loads configuration from the conventional paths.
func LoadDefault() (*Config, error) {
	globalPath, projectPath, err := DefaultPaths()
	if err != nil {
		return nil, err
	}
	return Load(globalPath, projectPath)
}

// Validate checks the merged configuration.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log format %q (want text or json)", ErrInvalidConfig, c.Log.Format)
	}
	if c.Batch.Concurrency <= 0 {
		return fmt.Errorf("%w: batch concurrency %d must be positive", ErrInvalidConfig, c.Batch.Concurrency)
	}
	if c.Events.Buffer <= 0 {
		return fmt.Errorf("%w: events buffer %d must be positive", ErrInvalidConfig, c.Events.Buffer)
	}
	if c.Journal.MaxFailures <= 0 {
		return fmt.Errorf("%w: journal max_failures %d must be positive", ErrInvalidConfig, c.Journal.MaxFailures)
	}
	return nil
}

// mergeConfigFile overlays a JSON config file onto base. Fields absent from the
// file keep their current values; scenario entries are merged by name.
func mergeConfigFile(base *Config, path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	// Decoding onto base keeps every field the file leaves out and adds
	// scenario entries to the existing map.
	if err := json.Unmarshal(data, base); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	if base.Scenarios == nil {
		base.Scenarios = map[string]string{}
	}

	return nil
}
