// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/nadrunner/runnervm/program"
	"github.com/nadrunner/runnervm/rpc"
	"github.com/nadrunner/runnervm/runtime"
	"github.com/nadrunner/runnervm/scoresigner"
	"github.com/nadrunner/runnervm/storage"
)

const requestTimeout = 30 * time.Second

// session bundles what every client command needs.
type session struct {
	ctx       context.Context
	client    *rpc.JSONRPCClient
	key       solana.PrivateKey
	programID solana.PublicKey
}

func newSession(cmd *cobra.Command) (*session, context.CancelFunc, error) {
	ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
	endpoint, err := cmd.Flags().GetString("endpoint")
	if err != nil {
		cancel()
		return nil, nil, err
	}
	key, err := signingKey(cmd)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	client := rpc.NewJSONRPCClient(endpoint)
	programID, err := client.ProgramID(ctx)
	if err != nil {
		cancel()
		return nil, nil, fmt.Errorf("failed to reach %s: %w", endpoint, err)
	}
	return &session{ctx: ctx, client: client, key: key, programID: programID}, cancel, nil
}

func (s *session) submit(cmd *cobra.Command, ixs ...*program.Instruction) error {
	msg := &runtime.Message{Nonce: uint64(time.Now().UnixNano()), Instructions: ixs}
	tx, err := msg.Sign(s.key)
	if err != nil {
		return err
	}
	res, err := s.client.SubmitTx(s.ctx, tx)
	if err != nil {
		return err
	}
	return printTxResult(cmd, res)
}

// allocate returns [flag]'s account, creating a fresh one of [size] bytes
// when the flag was left empty.
func (s *session) allocate(cmd *cobra.Command, flag string, size int) (solana.PublicKey, error) {
	id, err := publicKeyFlag(cmd, flag)
	if err == nil {
		return id, nil
	}
	if errFlagEmpty(err) {
		id = solana.NewWallet().PublicKey()
		if _, err := s.client.CreateAccount(s.ctx, id, 0, size); err != nil {
			return solana.PublicKey{}, fmt.Errorf("failed to create account: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "created account %s\n", id)
		return id, nil
	}
	return solana.PublicKey{}, err
}

var initAccountCmd = &cobra.Command{
	Use:   "init-account",
	Short: "Initialize a token account owned by the signing key",
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, cancel, err := newSession(cmd)
		if err != nil {
			return err
		}
		defer cancel()
		account, err := s.allocate(cmd, "account", storage.TokenAccountLen)
		if err != nil {
			return err
		}
		return s.submit(cmd, program.NewInitializeTokenAccount(s.programID, account, s.key.PublicKey()))
	},
}

var initAuthorityCmd = &cobra.Command{
	Use:   "init-authority",
	Short: "Initialize the mint authority with the signing key as signer",
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, cancel, err := newSession(cmd)
		if err != nil {
			return err
		}
		defer cancel()
		authority, err := s.allocate(cmd, "authority", storage.MintAuthorityLen)
		if err != nil {
			return err
		}
		return s.submit(cmd, program.NewInitializeMintAuthority(s.programID, authority, s.key.PublicKey()))
	},
}

var updateAuthorityCmd = &cobra.Command{
	Use:   "update-authority",
	Short: "Hand the mint authority to a new signer",
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, cancel, err := newSession(cmd)
		if err != nil {
			return err
		}
		defer cancel()
		authority, err := publicKeyFlag(cmd, "authority")
		if err != nil {
			return err
		}
		newSigner, err := publicKeyFlag(cmd, "new-signer")
		if err != nil {
			return err
		}
		return s.submit(cmd, program.NewUpdateMintAuthority(s.programID, authority, s.key.PublicKey(), newSigner))
	},
}

var adminMintCmd = &cobra.Command{
	Use:   "admin-mint",
	Short: "Mint tokens into an account as the authority signer",
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, cancel, err := newSession(cmd)
		if err != nil {
			return err
		}
		defer cancel()
		authority, err := publicKeyFlag(cmd, "authority")
		if err != nil {
			return err
		}
		account, err := publicKeyFlag(cmd, "account")
		if err != nil {
			return err
		}
		amount, err := cmd.Flags().GetUint64("amount")
		if err != nil {
			return err
		}
		return s.submit(cmd, program.NewAdminMint(s.programID, authority, s.key.PublicKey(), account, amount))
	},
}

var mintScoreCmd = &cobra.Command{
	Use:   "mint-score",
	Short: "Mint a game score into the player's token account",
	Long: `Mints a game score. Without --signature the node's score signer is asked
to sign a game of --duration that just ended.

When the node verifies score signatures, a signature is only valid in the slot
it was made for and the slot after it, so mint soon after signing.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, cancel, err := newSession(cmd)
		if err != nil {
			return err
		}
		defer cancel()
		flags := cmd.Flags()
		authority, err := publicKeyFlag(cmd, "authority")
		if err != nil {
			return err
		}
		account, err := publicKeyFlag(cmd, "account")
		if err != nil {
			return err
		}
		score, err := flags.GetUint64("score")
		if err != nil {
			return err
		}
		sigString, err := flags.GetString("signature")
		if err != nil {
			return err
		}

		var sig solana.Signature
		if len(sigString) > 0 {
			if sig, err = solana.SignatureFromBase58(sigString); err != nil {
				return fmt.Errorf("failed to decode signature: %w", err)
			}
		} else {
			duration, err := flags.GetDuration("duration")
			if err != nil {
				return err
			}
			end := time.Now()
			signed, err := s.client.SignScore(s.ctx, &scoresigner.Request{
				Player:    s.key.PublicKey(),
				Score:     score,
				GameStart: end.Add(-duration),
				GameEnd:   end,
			})
			if err != nil {
				return fmt.Errorf("failed to sign score: %w", err)
			}
			score, sig = signed.Amount, signed.Signature
		}
		return s.submit(cmd, program.NewMintGameScore(s.programID, account, s.key.PublicKey(), authority, score, sig))
	},
}

var transferCmd = &cobra.Command{
	Use:   "transfer",
	Short: "Move tokens between two token accounts",
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, cancel, err := newSession(cmd)
		if err != nil {
			return err
		}
		defer cancel()
		from, err := publicKeyFlag(cmd, "from")
		if err != nil {
			return err
		}
		to, err := publicKeyFlag(cmd, "to")
		if err != nil {
			return err
		}
		amount, err := cmd.Flags().GetUint64("amount")
		if err != nil {
			return err
		}
		return s.submit(cmd, program.NewTransferTokens(s.programID, from, to, s.key.PublicKey(), amount))
	},
}

func init() {
	initAccountCmd.Flags().String("account", "", "Token account (created when empty)")
	initAuthorityCmd.Flags().String("authority", "", "Authority account (created when empty)")

	updateAuthorityCmd.Flags().String("authority", "", "Authority account")
	updateAuthorityCmd.Flags().String("new-signer", "", "Public key of the new signer")

	adminMintCmd.Flags().String("authority", "", "Authority account")
	adminMintCmd.Flags().String("account", "", "Token account receiving the tokens")
	adminMintCmd.Flags().Uint64("amount", 0, "Amount in base units")

	mintScoreCmd.Flags().String("authority", "", "Authority account")
	mintScoreCmd.Flags().String("account", "", "Player's token account")
	mintScoreCmd.Flags().Uint64("score", 0, "Score; whole points when asking the node to sign, base units with --signature")
	mintScoreCmd.Flags().String("signature", "", "Base58 score signature")
	mintScoreCmd.Flags().Duration("duration", time.Minute, "Game duration reported to the score signer")

	transferCmd.Flags().String("from", "", "Source token account")
	transferCmd.Flags().String("to", "", "Destination token account")
	transferCmd.Flags().Uint64("amount", 0, "Amount in base units")

	rootCmd.AddCommand(
		initAccountCmd,
		initAuthorityCmd,
		updateAuthorityCmd,
		adminMintCmd,
		mintScoreCmd,
		transferCmd,
	)
}
