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
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeremyhahn/go-paktools/pkg/correlation"
	"github.com/jeremyhahn/go-paktools/pkg/metrics"
	"github.com/jeremyhahn/go-paktools/pkg/roster"
	"github.com/jeremyhahn/go-paktools/pkg/storage"
	"github.com/jeremyhahn/go-paktools/pkg/validation"
	"github.com/spf13/cobra"
)

// stdoutPath writes the converted roster to standard output.
const stdoutPath = "-"

func newRosterCmd(cfg *Config) *cobra.Command {
	rosterCmd := &cobra.Command{
		Use:   "roster",
		Short: "Convert character rosters",
	}
	rosterCmd.AddCommand(newRosterConvertCmd(cfg))
	return rosterCmd
}

func newRosterConvertCmd(cfg *Config) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "convert <input> [output]",
		Short: "Convert a roster into character JSON",
		Long: `Convert a character/skin roster into a JSON array of
{"name", "id", "skinid", "skin_name"} records.

Formats:
  list      **ID - Name:** headers followed by "> - SKINID - Skin Name" lines
  markdown  ## Character, ### Skin Name, > SKINID

When --format is omitted it is inferred from the input extension
(.md for markdown, anything else for list). The output defaults to
stdout ("-").`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			output := stdoutPath
			if len(args) > 1 {
				output = args[1]
			}

			f, err := resolveRosterFormat(format, input)
			if err != nil {
				return err
			}

			start := time.Now()
			n, err := convertRoster(cfg, f, input, output)
			elapsed := time.Since(start).Seconds()
			if err != nil {
				metrics.RecordOperation(metrics.OpConvert, metrics.StatusError, elapsed)
				metrics.RecordError(metrics.OpConvert, rosterErrorType(err))
				return err
			}
			metrics.RecordOperation(metrics.OpConvert, metrics.StatusSuccess, elapsed)
			metrics.RecordRosterRecords(string(f), n)

			cfg.Logger().Info("roster converted",
				correlation.Attr(cmd.Context()),
				"input", validation.SanitizeForLog(input),
				"format", string(f),
				"records", n)

			// The JSON itself is the result when writing to stdout.
			if output == stdoutPath {
				return nil
			}
			return cfg.Printer().PrintRosterResult(RosterResult{
				Input:   input,
				Output:  output,
				Format:  string(f),
				Records: n,
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "input format (list, markdown)")
	return cmd
}

func convertRoster(cfg *Config, format roster.Format, input, output string) (int, error) {
	for _, path := range []string{input, output} {
		if err := validation.ValidatePath(path); err != nil {
			return 0, err
		}
	}

	data, err := cfg.Store.Get(input)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", input, err)
	}

	records, err := roster.Parse(format, bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", input, err)
	}

	if output == stdoutPath {
		return len(records), roster.Encode(cfg.Stdout, records)
	}

	var buf bytes.Buffer
	if err := roster.Encode(&buf, records); err != nil {
		return 0, err
	}
	if err := cfg.Store.Put(output, buf.Bytes(), storage.DefaultOptions()); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", output, err)
	}
	return len(records), nil
}

func resolveRosterFormat(flag, input string) (roster.Format, error) {
	if flag != "" {
		return roster.ParseFormat(flag)
	}
	if strings.EqualFold(filepath.Ext(input), ".md") {
		return roster.FormatMarkdown, nil
	}
	return roster.FormatList, nil
}

func rosterErrorType(err error) string {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return "not_found"
	case errors.Is(err, roster.ErrMalformedLine):
		return "malformed_line"
	case errors.Is(err, roster.ErrUnknownCharacter):
		return "unknown_character"
	default:
		return "io"
	}
}
