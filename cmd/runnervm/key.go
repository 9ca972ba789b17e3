// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/nadrunner/runnervm/crypto/ed25519"
)

var (
	errMissingKey = errors.New("a signing key is required: pass --key or --key-file")
	errInvalidKey = errors.New("invalid private key")
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage keys",
}

var keyGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new ed25519 key",
	RunE: func(cmd *cobra.Command, _ []string) error {
		key, err := solana.NewRandomPrivateKey()
		if err != nil {
			return err
		}
		out := keyOutput{PublicKey: key.PublicKey(), PrivateKey: key.String()}
		return printValue(cmd, out, fmt.Sprintf("public:  %s\nprivate: %s", out.PublicKey, out.PrivateKey))
	},
}

var keyAddressCmd = &cobra.Command{
	Use:   "address",
	Short: "Print the public key of the configured key",
	RunE: func(cmd *cobra.Command, _ []string) error {
		key, err := signingKey(cmd)
		if err != nil {
			return err
		}
		out := keyOutput{PublicKey: key.PublicKey()}
		return printValue(cmd, out, out.PublicKey.String())
	},
}

func init() {
	keyCmd.AddCommand(keyGenerateCmd, keyAddressCmd)
	rootCmd.AddCommand(keyCmd)
}

// signingKey loads the key from --key, falling back to --key-file.
func signingKey(cmd *cobra.Command) (solana.PrivateKey, error) {
	s, err := cmd.Flags().GetString("key")
	if err != nil {
		return nil, err
	}
	if len(s) > 0 {
		return parseKey(s)
	}
	path, err := cmd.Flags().GetString("key-file")
	if err != nil {
		return nil, err
	}
	if len(path) == 0 {
		return nil, errMissingKey
	}
	key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}
	return key, nil
}

func parseKey(s string) (solana.PrivateKey, error) {
	key, err := solana.PrivateKeyFromBase58(s)
	if err != nil {
		return nil, fmt.Errorf("failed to decode key: %w", err)
	}
	if len(key) != ed25519.PrivateKeyLen {
		return nil, fmt.Errorf("%w: %d bytes", errInvalidKey, len(key))
	}
	return key, nil
}
