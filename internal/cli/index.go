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
	"github.com/jeremyhahn/go-paktools/internal/index"
	"github.com/spf13/cobra"
)

// indexFlags are shared by the index subcommands.
type indexFlags struct {
	key        string
	keyVersion string
	size       int64
}

func (f *indexFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.key, "key", "", "index key as 0x-prefixed hex or base64 (overrides the configured key)")
	cmd.Flags().StringVar(&f.keyVersion, "key-version", "", "configured key version to use (default: the configured default)")
}

func newIndexCmd(cfg *Config) *cobra.Command {
	indexCmd := &cobra.Command{
		Use:   "index",
		Short: "Decrypt or encrypt pak index files",
		Long: `Decrypt or encrypt a pak index using AES-ECB with the engine's
4-byte word swizzle applied to the key and to every block.

File arguments default to the names in the configuration
(encrypted_index.bin and decrypted_index.bin).`,
	}
	indexCmd.AddCommand(newIndexDecryptCmd(cfg))
	indexCmd.AddCommand(newIndexEncryptCmd(cfg))
	return indexCmd
}

func newIndexDecryptCmd(cfg *Config) *cobra.Command {
	var flags indexFlags
	cmd := &cobra.Command{
		Use:   "decrypt [input] [output]",
		Short: "Decrypt a pak index",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := buildIndexRequest(cfg, &flags, args, false)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("size") {
				req.Size = &flags.size
			}
			result, err := index.New(cfg.Store, cfg.Logger()).Decrypt(cmd.Context(), *req)
			if err != nil {
				return err
			}
			return cfg.Printer().PrintIndexResult(result)
		},
	}
	flags.register(cmd)
	cmd.Flags().Int64Var(&flags.size, "size", 0, "truncate the decrypted output to this many bytes (default: input length)")
	return cmd
}

func newIndexEncryptCmd(cfg *Config) *cobra.Command {
	var flags indexFlags
	cmd := &cobra.Command{
		Use:   "encrypt [input] [output]",
		Short: "Encrypt a decrypted pak index",
		Long: `Encrypt a pak index. The input is zero-padded to a 16-byte boundary;
the original length is reported so it can be passed to decrypt --size.

File arguments default to the configured decrypted and encrypted names,
the reverse of decrypt.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := buildIndexRequest(cfg, &flags, args, true)
			if err != nil {
				return err
			}
			result, err := index.New(cfg.Store, cfg.Logger()).Encrypt(cmd.Context(), *req)
			if err != nil {
				return err
			}
			return cfg.Printer().PrintIndexResult(result)
		},
	}
	flags.register(cmd)
	return cmd
}

// buildIndexRequest resolves file names and the key for an index command.
func buildIndexRequest(cfg *Config, flags *indexFlags, args []string, encrypt bool) (*index.Request, error) {
	settings := cfg.Settings()
	input, output := settings.Index.Input, settings.Index.Output
	if encrypt {
		input, output = output, input
	}
	if len(args) > 0 {
		input = args[0]
	}
	if len(args) > 1 {
		output = args[1]
	}

	key, err := cfg.ResolveKey(flags.key, flags.keyVersion)
	if err != nil {
		return nil, err
	}
	cfg.Logger().Debugf("using key %s", key)

	return &index.Request{
		Input:  input,
		Output: output,
		Key:    key,
	}, nil
}
