// Package config loads and validates the optional .helmbridge YAML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/deixis/helmbridge/internal/executor"
	"github.com/deixis/helmbridge/internal/helmfile"
)

// DefaultMaxOutput caps each captured stream when not configured.
const DefaultMaxOutput = 1 << 20 // 1 MB

// Config holds the parsed .helmbridge configuration.
// All fields are optional; zero values represent defaults.
type Config struct {
	Version      int       `yaml:"version"`
	RawBinary    string    `yaml:"binary"`     // helmfile executable, e.g. "/usr/local/bin/helmfile"
	RawTimeout   string    `yaml:"timeout"`    // e.g. "5m", "300s"
	RawMaxOutput int       `yaml:"max_output"` // bytes
	Log          LogConfig `yaml:"log"`
}

// LogConfig controls logging output.
type LogConfig struct {
	Level  string `yaml:"level"`  // zerolog level name; default "info"
	Format string `yaml:"format"` // "console" or "json"; default "console"
}

// Binary returns the configured helmfile binary or the default.
func (c *Config) Binary() string {
	if c.RawBinary != "" {
		return c.RawBinary
	}
	return helmfile.DefaultBinary
}

// Timeout returns the configured timeout or the executor default.
func (c *Config) Timeout() time.Duration {
	if c.RawTimeout != "" {
		d, err := time.ParseDuration(c.RawTimeout)
		if err == nil && d > 0 {
			return d
		}
	}
	return executor.DefaultTimeout
}

// MaxOutputBytes returns the configured max output size or the default.
func (c *Config) MaxOutputBytes() int {
	if c.RawMaxOutput > 0 {
		return c.RawMaxOutput
	}
	return DefaultMaxOutput
}

// Load reads the .helmbridge file from dir. If no .helmbridge file exists,
// a default Config is returned.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, ".helmbridge")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading .helmbridge: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing .helmbridge: %w", err)
	}
	return cfg, nil
}
