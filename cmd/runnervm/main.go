// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "runnervm",
	Short: "NadRunner token ledger node and client",
	Long: `Runs a ledger hosting the NadRunner token program and submits
instructions to it over JSON-RPC.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	os.Exit(0)
}

func init() {
	rootCmd.PersistentFlags().StringP("output", "o", "text", "Output format (text or json)")
	rootCmd.PersistentFlags().String("endpoint", "http://127.0.0.1:9650", "Node URI")
	rootCmd.PersistentFlags().String("key", "", "Base58 private key paying for and signing transactions")
	rootCmd.PersistentFlags().String("key-file", "", "Solana keygen JSON file, used when --key is empty")
}

func main() {
	Execute()
}
