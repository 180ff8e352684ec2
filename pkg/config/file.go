package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Save writes the configuration to the given path as YAML.
//
// Parent directories are created as needed. The file is written with mode
// 0600 since it may contain password hashes.
//
// Grant values keep the shape they were written with: a single-token grant
// serializes as a plain string, everything else as a list.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadOrCreate loads the configuration, writing a default config file first
// if none exists yet.
//
// Parameters:
//   - configPath: Path to config file (empty string uses default location)
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - bool: true if a new default config file was created
//   - error: Configuration loading or writing error
func LoadOrCreate(configPath string) (*Config, bool, error) {
	path := configPath
	if path == "" {
		path = GetDefaultConfigPath()
	}

	created := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := Save(GetDefaultConfig(), path); err != nil {
			return nil, false, err
		}
		created = true
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, created, err
	}

	return cfg, created, nil
}
