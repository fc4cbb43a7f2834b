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
	"time"

	"github.com/jeremyhahn/go-paktools/pkg/metrics"
	"github.com/spf13/cobra"
)

func newKeyCmd(cfg *Config) *cobra.Command {
	keyCmd := &cobra.Command{
		Use:   "key",
		Short: "Inspect index keys",
		Long:  `List and inspect the configured index keys. Key bytes are never printed.`,
	}
	keyCmd.AddCommand(newKeyInspectCmd(cfg))
	keyCmd.AddCommand(newKeyListCmd(cfg))
	return keyCmd
}

func newKeyInspectCmd(cfg *Config) *cobra.Command {
	var literal, version string
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show the size and fingerprint of a key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			key, err := cfg.ResolveKey(literal, version)
			if err != nil {
				metrics.RecordOperation(metrics.OpInspect, metrics.StatusError, time.Since(start).Seconds())
				metrics.RecordError(metrics.OpInspect, "invalid_key")
				return err
			}
			metrics.RecordOperation(metrics.OpInspect, metrics.StatusSuccess, time.Since(start).Seconds())

			info := KeyInfo{Bits: key.Bits(), Fingerprint: key.Fingerprint()}
			if literal == "" {
				info.Version = version
				if info.Version == "" {
					info.Version = cfg.Settings().Keys.Default
				}
				info.Default = info.Version == cfg.Settings().Keys.Default
			}
			return cfg.Printer().PrintKeyInfo(info)
		},
	}
	cmd.Flags().StringVar(&literal, "key", "", "key literal as 0x-prefixed hex or base64")
	cmd.Flags().StringVar(&version, "key-version", "", "configured key version")
	return cmd
}

func newKeyListCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the configured key versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := cfg.Settings()
			keys := make([]KeyInfo, 0, len(settings.Keys.Versions))
			for _, version := range settings.KeyVersions() {
				key, err := settings.ResolveKey(version)
				if err != nil {
					return err
				}
				keys = append(keys, KeyInfo{
					Version:     version,
					Bits:        key.Bits(),
					Fingerprint: key.Fingerprint(),
					Default:     version == settings.Keys.Default,
				})
			}
			return cfg.Printer().PrintKeyList(keys)
		},
	}
}
