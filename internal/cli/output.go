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
	"encoding/json"
	"fmt"
	"io"

	"github.com/jeremyhahn/go-paktools/internal/index"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// OutputFormat defines the output format type
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
)

// Printer handles formatted output
type Printer struct {
	format OutputFormat
	writer io.Writer
}

// NewPrinter creates a new Printer
func NewPrinter(format string, writer io.Writer) *Printer {
	return &Printer{
		format: OutputFormat(format),
		writer: writer,
	}
}

// KeyInfo describes a key without exposing its bytes.
type KeyInfo struct {
	Version     string `json:"version,omitempty"`
	Bits        int    `json:"bits"`
	Fingerprint string `json:"fingerprint"`
	Default     bool   `json:"default"`
}

// RosterResult summarizes a roster conversion.
type RosterResult struct {
	Input   string `json:"input"`
	Output  string `json:"output"`
	Format  string `json:"format"`
	Records int    `json:"records"`
}

// VersionInfo is printed by the version command.
type VersionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// PrintIndexResult prints the outcome of an index decrypt or encrypt
func (p *Printer) PrintIndexResult(r *index.Result) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(r)
	case OutputFormatText:
		fmt.Fprintf(p.writer, "%s complete. Wrote %d bytes to %s\n", cases.Title(language.English).String(r.Operation), r.OutputBytes, r.Output)
		fmt.Fprintf(p.writer, "  Input:  %s (%d bytes, %d blocks)\n", r.Input, r.InputBytes, r.Blocks)
		fmt.Fprintf(p.writer, "  Key:    %s\n", r.KeyFingerprint)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintKeyList prints the configured key versions
func (p *Printer) PrintKeyList(keys []KeyInfo) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"keys": keys,
		})
	case OutputFormatText:
		if len(keys) == 0 {
			fmt.Fprintln(p.writer, "No keys configured")
			return nil
		}
		fmt.Fprintf(p.writer, "%-12s %-8s %-18s %s\n", "VERSION", "BITS", "FINGERPRINT", "DEFAULT")
		for _, k := range keys {
			def := ""
			if k.Default {
				def = "*"
			}
			fmt.Fprintf(p.writer, "%-12s %-8d %-18s %s\n", k.Version, k.Bits, k.Fingerprint, def)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintKeyInfo prints a single key
func (p *Printer) PrintKeyInfo(k KeyInfo) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(k)
	case OutputFormatText:
		fmt.Fprintf(p.writer, "Key Information:\n")
		if k.Version != "" {
			fmt.Fprintf(p.writer, "  Version:     %s\n", k.Version)
		}
		fmt.Fprintf(p.writer, "  Algorithm:   AES-%d\n", k.Bits)
		fmt.Fprintf(p.writer, "  Fingerprint: %s\n", k.Fingerprint)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintRosterResult prints the outcome of a roster conversion
func (p *Printer) PrintRosterResult(r RosterResult) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(r)
	case OutputFormatText:
		fmt.Fprintf(p.writer, "Converted %d records from %s (%s) to %s\n", r.Records, r.Input, r.Format, r.Output)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintVersion prints build information
func (p *Printer) PrintVersion(v VersionInfo) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(v)
	case OutputFormatText:
		fmt.Fprintf(p.writer, "paktool version %s\n", v.Version)
		fmt.Fprintf(p.writer, "Git commit: %s\n", v.Commit)
		fmt.Fprintf(p.writer, "Build date: %s\n", v.BuildDate)
		fmt.Fprintf(p.writer, "Go version: %s\n", v.GoVersion)
		fmt.Fprintf(p.writer, "OS/Arch: %s/%s\n", v.OS, v.Arch)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintSuccess prints a success message
func (p *Printer) PrintSuccess(message string) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"status":  "success",
			"message": message,
		})
	case OutputFormatText:
		fmt.Fprintln(p.writer, message)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintError prints an error message
func (p *Printer) PrintError(err error) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"status": "error",
			"error":  err.Error(),
		})
	case OutputFormatText:
		fmt.Fprintf(p.writer, "Error: %v\n", err)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// printJSON prints data as JSON
func (p *Printer) printJSON(data interface{}) error {
	encoder := json.NewEncoder(p.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
