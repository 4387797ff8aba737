// Package config handles loading and managing application configuration
// from YAML files and environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// GenerateDefaults are the encoding parameters applied when a generate
// request does not set its own.
type GenerateDefaults struct {
	ModuleSize int    `yaml:"module_size"`
	Border     int    `yaml:"border"`
	Level      string `yaml:"level"`
}

// Config holds all application configuration values.
type Config struct {
	Port            int              `yaml:"port"`
	OutputDir       string           `yaml:"output_dir"`
	LogLevel        string           `yaml:"log_level"`
	ShutdownTimeout Duration         `yaml:"shutdown_timeout"`
	Generate        GenerateDefaults `yaml:"generate"`
}

// Duration is a wrapper around time.Duration that supports YAML unmarshalling
// from human-readable strings like "30s", "5m", "1h".
type Duration struct {
	time.Duration
}

// UnmarshalYAML implements the yaml.Unmarshaler interface for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

// MarshalYAML implements the yaml.Marshaler interface for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// defaults returns a Config populated with sensible default values. The
// output directory defaults to the working directory, where the fixture
// files are conventionally expected.
func defaults() *Config {
	return &Config{
		Port:            8660,
		OutputDir:       ".",
		LogLevel:        "info",
		ShutdownTimeout: Duration{10 * time.Second},
		Generate: GenerateDefaults{
			ModuleSize: 10,
			Border:     4,
			Level:      "M",
		},
	}
}

// Load reads configuration from the YAML file at path, falling back to
// defaults if the file does not exist. Environment variables with the
// QRGEN_ prefix override any file or default values.
func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// File doesn't exist — proceed with defaults.
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides applies QRGEN_* environment variable overrides to cfg.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("QRGEN_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Port = p
		}
	}
	if v := os.Getenv("QRGEN_OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv("QRGEN_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("QRGEN_SHUTDOWN_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.ShutdownTimeout = Duration{d}
		}
	}
	if v := os.Getenv("QRGEN_MODULE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Generate.ModuleSize = n
		}
	}
	if v := os.Getenv("QRGEN_BORDER"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Generate.Border = n
		}
	}
	if v := os.Getenv("QRGEN_LEVEL"); v != "" {
		cfg.Generate.Level = v
	}
}

// EnsureOutputDir creates the output directory if it does not already exist.
func (c *Config) EnsureOutputDir() error {
	if err := os.MkdirAll(c.OutputDir, 0o755); err != nil {
		return fmt.Errorf("creating output dir %s: %w", c.OutputDir, err)
	}
	return nil
}
