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
	"context"
	"errors"
	"fmt"

	"github.com/jeremyhahn/go-paktools/pkg/correlation"
	"github.com/spf13/cobra"
)

// NewRootCommand builds the paktool command tree around cfg.
func NewRootCommand(cfg *Config) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "paktool",
		Short: "paktool - pak index and roster utilities",
		Long: `paktool provides the helper utilities used alongside pak modding tools.

Commands:
  index   decrypt or re-encrypt a pak index with the engine's swizzled AES
  key     inspect the configured index keys
  roster  convert character/skin rosters into JSON`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Load(); err != nil {
				return err
			}
			ctx, runID := correlation.Ensure(cmd.Context())
			cmd.SetContext(ctx)
			cfg.Logger().Debug("starting", correlation.LogKey, runID, "command", cmd.CommandPath())
			return nil
		},
	}

	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&cfg.ConfigFile, "config", "",
		"config file (built-in defaults when empty)")
	rootCmd.PersistentFlags().StringVarP(&cfg.OutputFormat, "output", "o", string(OutputFormatText),
		"output format (text, json)")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", false,
		"verbose output")
	rootCmd.PersistentFlags().StringVar(&cfg.LogFormat, "log-format", "",
		"log format (text, json)")
	rootCmd.PersistentFlags().StringVar(&cfg.MetricsFile, "metrics-file", "",
		"write Prometheus metrics to this textfile on exit")

	rootCmd.SetOut(cfg.Stdout)
	rootCmd.SetErr(cfg.Stderr)

	rootCmd.AddCommand(newVersionCmd(cfg))
	rootCmd.AddCommand(newIndexCmd(cfg))
	rootCmd.AddCommand(newKeyCmd(cfg))
	rootCmd.AddCommand(newRosterCmd(cfg))

	return rootCmd
}

// Run executes the command tree with args, prints any error to Stderr and
// writes the metrics textfile.
func Run(ctx context.Context, cfg *Config, args []string) error {
	rootCmd := NewRootCommand(cfg)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(ctx)
	if flushErr := cfg.FlushMetrics(); flushErr != nil {
		err = errors.Join(err, flushErr)
	}
	if closeErr := cfg.Close(); closeErr != nil {
		err = errors.Join(err, closeErr)
	}

	if err != nil {
		printer := NewPrinter(cfg.OutputFormat, cfg.Stderr)
		if printErr := printer.PrintError(err); printErr != nil {
			// Unknown output format; fall back to plain text.
			fmt.Fprintf(cfg.Stderr, "Error: %v\n", err)
		}
	}
	return err
}

// Execute runs the root command against the process arguments.
func Execute(ctx context.Context, args []string) error {
	return Run(ctx, NewConfig(), args)
}
