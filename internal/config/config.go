// Package config loads CLI configuration for nbtex.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/s47195385/nbtex/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config")
	ErrInvalidWorkers = errors.New("workers must not be negative")
)

// Config holds all configuration for notebook conversion runs.
type Config struct {
	Output  OutputConfig  `yaml:"output"`
	Convert ConvertConfig `yaml:"convert"`
	Tool    ToolConfig    `yaml:"tool"`
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	Dir string `yaml:"dir"` // Output directory (empty = next to each input)
}

// ConvertConfig defines conversion behavior options.
type ConvertConfig struct {
	Workers  int    `yaml:"workers"`  // Concurrent conversions (0 = NumCPU)
	RootDir  string `yaml:"rootDir"`  // Overrides per-notebook root directory
	KeepTemp bool   `yaml:"keepTemp"` // Retain intermediate artifacts
}

// ToolConfig overrides the external conversion utility candidates.
type ToolConfig struct {
	Candidates []CandidateConfig `yaml:"candidates"`
}

// CandidateConfig is one ordered invocation candidate.
type CandidateConfig struct {
	Name string   `yaml:"name"`
	Args []string `yaml:"args"`
}

// DefaultConfig returns configuration with default values.
func DefaultConfig() *Config {
	return &Config{}
}

// Load reads and parses a YAML config file. Unknown fields are rejected so
// typos surface immediately.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided path
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks config invariants.
func (c *Config) Validate() error {
	if c.Convert.Workers < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkers, c.Convert.Workers)
	}
	return nil
}
