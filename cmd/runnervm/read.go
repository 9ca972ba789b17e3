// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/nadrunner/runnervm/consts"
	"github.com/nadrunner/runnervm/rpc"
	"github.com/nadrunner/runnervm/storage"
)

var errEmptyFlag = errors.New("flag is required")

func errFlagEmpty(err error) bool {
	return errors.Is(err, errEmptyFlag)
}

func publicKeyFlag(cmd *cobra.Command, name string) (solana.PublicKey, error) {
	s, err := cmd.Flags().GetString(name)
	if err != nil {
		return solana.PublicKey{}, err
	}
	if len(s) == 0 {
		return solana.PublicKey{}, fmt.Errorf("%w: --%s", errEmptyFlag, name)
	}
	id, err := solana.PublicKeyFromBase58(s)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to decode --%s: %w", name, err)
	}
	return id, nil
}

func readClient(cmd *cobra.Command) (*rpc.JSONRPCClient, error) {
	endpoint, err := cmd.Flags().GetString("endpoint")
	if err != nil {
		return nil, err
	}
	return rpc.NewJSONRPCClient(endpoint), nil
}

func formatTokens(amount uint64) string {
	return fmt.Sprintf("%d.%09d", amount/consts.UnitsPerToken, amount%consts.UnitsPerToken)
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show a token account",
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := readClient(cmd)
		if err != nil {
			return err
		}
		account, err := publicKeyFlag(cmd, "account")
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
		defer cancel()
		t, err := client.TokenAccount(ctx, account)
		if err != nil {
			return err
		}
		if !t.IsInitialized {
			return printValue(cmd, t, fmt.Sprintf("%s is not initialized", account))
		}
		return printValue(cmd, t, fmt.Sprintf("owner:  %s\namount: %s (%d)", t.Owner, formatTokens(t.Amount), t.Amount))
	},
}

var createAccountCmd = &cobra.Command{
	Use:   "create-account",
	Short: "Allocate program-owned storage on the node",
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := readClient(cmd)
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		size, err := flags.GetInt("size")
		if err != nil {
			return err
		}
		lamports, err := flags.GetUint64("lamports")
		if err != nil {
			return err
		}
		account, err := publicKeyFlag(cmd, "account")
		switch {
		case errFlagEmpty(err):
			account = solana.NewWallet().PublicKey()
		case err != nil:
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
		defer cancel()
		funded, err := client.CreateAccount(ctx, account, lamports, size)
		if err != nil {
			return err
		}
		out := &rpc.CreateAccountArgs{Account: account, Lamports: funded, Size: size}
		return printValue(cmd, out, fmt.Sprintf("created %s (%d bytes, %d lamports)", account, size, funded))
	},
}

func init() {
	balanceCmd.Flags().String("account", "", "Token account")

	createAccountCmd.Flags().String("account", "", "Account id (random when empty)")
	createAccountCmd.Flags().Int("size", storage.TokenAccountLen, "Data size in bytes")
	createAccountCmd.Flags().Uint64("lamports", 0, "Balance (rent-exempt minimum when zero)")

	rootCmd.AddCommand(balanceCmd, createAccountCmd)
}
