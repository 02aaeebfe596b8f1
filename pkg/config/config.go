// Package config holds default settings for the dockerfileparse CLI and
// library, loaded from an optional YAML file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tim-vk/dockerfile-parse/pkg/observability"
)

// Config is the top-level configuration for the dockerfileparse CLI.
type Config struct {
	// Parse holds default parser options. The CLI does not load a config
	// file, so these are not applied to the parsers it constructs.
	Parse ParseConfig `yaml:"parse"`

	// Observability holds the tracing/metrics/logging configuration in the
	// shape observability.NewManager accepts.
	Observability observability.Config `yaml:"observability"`
}

// ParseConfig holds default parser options.
type ParseConfig struct {
	// EnvReplace enables $VAR/${VAR} expansion during parsing.
	EnvReplace bool `yaml:"env_replace"`

	// Escape is the default line-continuation character used when a
	// Dockerfile carries no "# escape=" directive.
	Escape string `yaml:"escape"`

	// ParentEnv seeds the lookup used for global ARG/ENV expansion with the
	// process environment.
	ParentEnv bool `yaml:"parent_env"`
}

// Default returns the built-in configuration used when no file is loaded.
func Default() *Config {
	return &Config{
		Parse: ParseConfig{
			EnvReplace: true,
			Escape:     "\\",
			ParentEnv:  false,
		},
		Observability: *observability.DefaultConfig(),
	}
}

// Load reads a YAML configuration file at path, starting from Default()
// and overriding whatever the file sets.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault loads the configuration at path if it exists, falling back
// to Default() when the file is absent.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}

	return Load(path)
}
