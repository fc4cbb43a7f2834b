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

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jeremyhahn/go-paktools/internal/config"
	"github.com/jeremyhahn/go-paktools/pkg/crypto/pakcipher"
	"github.com/jeremyhahn/go-paktools/pkg/logging"
	"github.com/jeremyhahn/go-paktools/pkg/metrics"
	"github.com/jeremyhahn/go-paktools/pkg/storage"
	"github.com/jeremyhahn/go-paktools/pkg/storage/file"
)

// Config holds global CLI configuration
type Config struct {
	// ConfigFile is the path to the configuration file
	ConfigFile string

	// OutputFormat controls result formatting (text, json)
	OutputFormat string

	// LogFormat overrides the configured log format when set
	LogFormat string

	// MetricsFile overrides the configured metrics textfile when set
	MetricsFile string

	// Verbose enables debug logging
	Verbose bool

	// Stdout receives command results, Stderr receives logs and errors
	Stdout io.Writer
	Stderr io.Writer

	// Store is the file backend. Defaults to the OS filesystem.
	Store storage.Backend

	settings  *config.Config
	logger    *logging.Logger
	ownsStore bool
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		OutputFormat: string(OutputFormatText),
		Stdout:       os.Stdout,
		Stderr:       os.Stderr,
	}
}

// Load reads the configuration file and applies flag overrides on top of
// it. It is called once per command before the command runs.
func (c *Config) Load() error {
	switch OutputFormat(c.OutputFormat) {
	case OutputFormatText, OutputFormatJSON:
	default:
		return fmt.Errorf("unknown output format: %s", c.OutputFormat)
	}

	settings, err := config.LoadOrDefault(c.ConfigFile)
	if err != nil {
		return err
	}
	if c.LogFormat != "" {
		settings.Logging.Format = c.LogFormat
	}
	if c.Verbose {
		settings.Logging.Level = "debug"
	}
	if c.MetricsFile != "" {
		settings.Metrics.Textfile = c.MetricsFile
	}

	logger, err := logging.New(logging.Options{
		Level:  settings.Logging.Level,
		Format: settings.Logging.Format,
		Output: c.Stderr,
	})
	if err != nil {
		return err
	}

	if c.Store == nil {
		c.Store = file.New()
		c.ownsStore = true
	}
	c.settings = settings
	c.logger = logger
	return nil
}

// Settings returns the loaded configuration.
func (c *Config) Settings() *config.Config {
	return c.settings
}

// Logger returns the configured logger, or the default logger before Load.
func (c *Config) Logger() *logging.Logger {
	if c.logger == nil {
		return logging.DefaultLogger()
	}
	return c.logger
}

// Printer returns a printer writing to Stdout.
func (c *Config) Printer() *Printer {
	return NewPrinter(c.OutputFormat, c.Stdout)
}

// ResolveKey returns the key given on the command line, or the configured
// key for version. literal and version are mutually exclusive.
func (c *Config) ResolveKey(literal, version string) (*pakcipher.Key, error) {
	if literal != "" && version != "" {
		return nil, errors.New("--key and --key-version are mutually exclusive")
	}
	if literal != "" {
		return pakcipher.ParseKey(literal)
	}
	return c.settings.ResolveKey(version)
}

// FlushMetrics writes the metrics textfile when one is configured.
func (c *Config) FlushMetrics() error {
	if c.settings == nil || c.settings.Metrics.Textfile == "" {
		return nil
	}
	if err := metrics.WriteTextfile(c.settings.Metrics.Textfile); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	c.Logger().Debugf("metrics written to %s", c.settings.Metrics.Textfile)
	return nil
}

// Close releases the file backend if Load created it.
func (c *Config) Close() error {
	if c.Store == nil || !c.ownsStore {
		return nil
	}
	return c.Store.Close()
}
