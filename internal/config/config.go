// Package config loads and saves the jbmap configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// LogConfig selects the logger level and output format.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config holds the settings shared by all commands.
type Config struct {
	DBPath    string        `yaml:"db_path"`
	Threshold int           `yaml:"threshold"`
	Workers   int           `yaml:"workers"`
	Timeout   time.Duration `yaml:"timeout"`
	Radius    int           `yaml:"radius"`
	Log       LogConfig     `yaml:"log"`
}

// Dir returns the directory holding the config file and default database.
func Dir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".jbmap"
	}
	return filepath.Join(homeDir, ".jbmap")
}

// DefaultPath returns the default location of the config file.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DBPath:    filepath.Join(Dir(), "jbmap.db"),
		Threshold: 10,
		Workers:   8,
		Timeout:   30 * time.Second,
		Radius:    2,
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Load reads the config file at path. A missing file yields Default().
// Fields absent from the file keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating the parent directory if needed.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch {
	case c.Threshold < 0 || c.Threshold > 64:
		return fmt.Errorf("threshold %d out of range 0-64", c.Threshold)
	case c.Workers < 1:
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	case c.Radius < 0:
		return fmt.Errorf("radius must not be negative, got %d", c.Radius)
	case c.Timeout < 0:
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	return nil
}
