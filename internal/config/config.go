// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-paktools.
//
// go-paktools is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/jeremyhahn/go-paktools/pkg/crypto/pakcipher"
	"github.com/jeremyhahn/go-paktools/pkg/validation"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultKeyVersion labels the index key shipped with the tool.
	DefaultKeyVersion = "default"

	// EnvKeyVersion labels a key supplied through PAKTOOL_KEY.
	EnvKeyVersion = "env"

	// DefaultIndexInput and DefaultIndexOutput are used when the index
	// commands are given no file arguments.
	DefaultIndexInput  = "encrypted_index.bin"
	DefaultIndexOutput = "decrypted_index.bin"

	defaultKeyLiteral = "0x0C263D8C22DCB085894899C3A3796383E9BF9DE0CBFB08C9BF2DEF2E84F29D74"
)

var (
	ErrUnknownKeyVersion = errors.New("config: unknown key version")
	ErrNoKeys            = errors.New("config: no keys configured")
)

// Config represents the complete paktool configuration
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Keys    KeysConfig    `yaml:"keys"`
	Index   IndexConfig   `yaml:"index"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig controls logging behavior
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// KeysConfig is the table of index keys. Versions maps a label to a key
// literal ("0x" hex or base64); Default names the entry used when no
// version is requested.
type KeysConfig struct {
	Default  string            `yaml:"default"`
	Versions map[string]string `yaml:"versions"`
}

// IndexConfig holds the default file names for the index commands.
type IndexConfig struct {
	Input  string `yaml:"input"`
	Output string `yaml:"output"`
}

// MetricsConfig controls the node-exporter textfile. Metrics are only
// written when Textfile is set.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Keys: KeysConfig{
			Default: DefaultKeyVersion,
			Versions: map[string]string{
				DefaultKeyVersion: defaultKeyLiteral,
			},
		},
		Index: IndexConfig{
			Input:  DefaultIndexInput,
			Output: DefaultIndexOutput,
		},
	}
}

// Load reads the YAML file at path on top of Default, applies environment
// overrides and validates the result. Key versions from the file are merged
// with the built-in table.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return finish(cfg)
}

// LoadOrDefault loads path, or the built-in configuration when path is empty.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return finish(Default())
	}
	return Load(path)
}

func finish(cfg *Config) (*Config, error) {
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies PAKTOOL_* environment variables. PAKTOOL_KEY
// takes precedence over PAKTOOL_KEY_VERSION.
func applyEnvOverrides(cfg *Config) {
	if level := os.Getenv("PAKTOOL_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if format := os.Getenv("PAKTOOL_LOG_FORMAT"); format != "" {
		cfg.Logging.Format = format
	}
	if textfile := os.Getenv("PAKTOOL_METRICS_TEXTFILE"); textfile != "" {
		cfg.Metrics.Textfile = textfile
	}

	if version := os.Getenv("PAKTOOL_KEY_VERSION"); version != "" {
		cfg.Keys.Default = version
	}
	if key := os.Getenv("PAKTOOL_KEY"); key != "" {
		if cfg.Keys.Versions == nil {
			cfg.Keys.Versions = make(map[string]string)
		}
		if _, exists := cfg.Keys.Versions[EnvKeyVersion]; exists {
			log.Printf("Warning: PAKTOOL_KEY replaces configured key version %q", EnvKeyVersion)
		}
		cfg.Keys.Versions[EnvKeyVersion] = key
		cfg.Keys.Default = EnvKeyVersion
	}
}

// Validate checks the configuration for consistency. Every key literal must
// decode to a usable AES key.
func (c *Config) Validate() error {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	validFormats := map[string]bool{
		"json": true, "text": true,
	}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		return fmt.Errorf("invalid log format: %s (must be json or text)", c.Logging.Format)
	}

	if len(c.Keys.Versions) == 0 {
		return ErrNoKeys
	}
	if _, ok := c.Keys.Versions[c.Keys.Default]; !ok {
		return fmt.Errorf("default key %q: %w", c.Keys.Default, ErrUnknownKeyVersion)
	}
	for _, version := range c.KeyVersions() {
		if err := validation.ValidateKeyVersion(version); err != nil {
			return err
		}
		if _, err := pakcipher.ParseKey(c.Keys.Versions[version]); err != nil {
			return fmt.Errorf("key %q: %w", version, err)
		}
	}

	if c.Index.Input == "" || c.Index.Output == "" {
		return fmt.Errorf("index input and output file names are required")
	}

	return nil
}

// KeyVersions returns the configured key version labels in sorted order.
func (c *Config) KeyVersions() []string {
	versions := make([]string, 0, len(c.Keys.Versions))
	for v := range c.Keys.Versions {
		versions = append(versions, v)
	}
	sort.Strings(versions)
	return versions
}

// ResolveKey returns the key registered under version, or the default key
// when version is empty.
func (c *Config) ResolveKey(version string) (*pakcipher.Key, error) {
	if version == "" {
		version = c.Keys.Default
	}
	literal, ok := c.Keys.Versions[version]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKeyVersion, version)
	}
	key, err := pakcipher.ParseKey(literal)
	if err != nil {
		return nil, fmt.Errorf("key %q: %w", version, err)
	}
	return key, nil
}
