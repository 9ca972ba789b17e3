// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/nadrunner/runnervm/rpc"
)

var errTxFailed = errors.New("transaction failed")

func isJSONOutputRequested(cmd *cobra.Command) (bool, error) {
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return false, fmt.Errorf("failed to get output format: %w", err)
	}
	return strings.ToLower(output) == "json", nil
}

// printValue writes [v] as JSON when requested and [text] otherwise.
func printValue(cmd *cobra.Command, v any, text string) error {
	isJSON, err := isJSONOutputRequested(cmd)
	if err != nil {
		return err
	}
	if isJSON {
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}

func printTxResult(cmd *cobra.Command, r *rpc.TxResult) error {
	if !r.Success {
		if err := printValue(cmd, r, fmt.Sprintf("failed %s (instruction %d, code %#x): %s", r.TxID, r.Instruction, r.Code, r.Error)); err != nil {
			return err
		}
		return fmt.Errorf("%w: %s", errTxFailed, r.Error)
	}
	return printValue(cmd, r, fmt.Sprintf("committed %s (slot %d)", r.TxID, r.Slot))
}

type keyOutput struct {
	PublicKey  solana.PublicKey `json:"publicKey"`
	PrivateKey string           `json:"privateKey,omitempty"`
}
