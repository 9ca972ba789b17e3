// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package program routes raw instructions to the token ledger's transitions
// and commits what they stage.
package program

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/nadrunner/runnervm/actions"
	"github.com/nadrunner/runnervm/consts"
	"github.com/nadrunner/runnervm/host"
	"github.com/nadrunner/runnervm/programerr"
)

type Program struct {
	id       solana.PublicKey
	verifier actions.ScoreVerifier
	log      *zap.Logger
}

// New returns the program deployed at [id]. A nil [verifier] accepts every
// score signature.
func New(id solana.PublicKey, verifier actions.ScoreVerifier, log *zap.Logger) *Program {
	if verifier == nil {
		verifier = actions.AcceptAll{}
	}
	return &Program{id: id, verifier: verifier, log: log}
}

func (p *Program) ID() solana.PublicKey {
	return p.id
}

// Process runs one instruction against [accounts]. On error no handle's data
// has been modified.
func (p *Program) Process(accounts []*host.AccountInfo, data []byte) error {
	ix, err := Decode(data)
	if err != nil {
		return err
	}
	// The score ceiling is a property of the payload alone and is checked
	// before any account is looked at.
	if ix.Opcode == MintGameScore && ix.Amount > consts.MaxGameMint {
		return fmt.Errorf("%w: %d > %d", programerr.ScoreExceedsMaximum, ix.Amount, consts.MaxGameMint)
	}
	if need := ix.Opcode.Accounts(); len(accounts) < need {
		return fmt.Errorf("%w: %s needs %d, got %d", programerr.NotEnoughAccountKeys, ix.Opcode, need, len(accounts))
	}
	p.log.Debug("processing instruction",
		zap.Stringer("instruction", ix.Opcode),
		zap.Int("accounts", len(accounts)),
	)

	all := host.Accounts(accounts)
	env := &actions.Env{
		ProgramID: p.id,
		Ownership: all,
		Signers:   all,
		Verifier:  p.verifier,
	}
	var writes []actions.Write
	switch ix.Opcode {
	case InitializeTokenAccount:
		writes, err = actions.InitializeTokenAccount(env, accounts[0], accounts[1], accounts[2])
	case InitializeMintAuthority:
		writes, err = actions.InitializeMintAuthority(env, accounts[0], accounts[1], accounts[2])
	case UpdateMintAuthority:
		writes, err = actions.UpdateMintAuthority(env, accounts[0], accounts[1], ix.NewSigner)
	case AdminMint:
		writes, err = actions.AdminMint(env, accounts[0], accounts[1], accounts[2], ix.Amount)
	case MintGameScore:
		writes, err = actions.MintGameScore(env, accounts[0], accounts[1], accounts[2], accounts[3], ix.Amount, ix.Signature)
	case TransferTokens:
		writes, err = actions.TransferTokens(env, accounts[0], accounts[1], accounts[2], ix.Amount)
	}
	if err != nil {
		p.log.Debug("instruction failed",
			zap.Stringer("instruction", ix.Opcode),
			zap.Error(err),
		)
		return err
	}
	return commit(writes)
}

// commit checks every write before applying any of them.
func commit(writes []actions.Write) error {
	for _, w := range writes {
		if len(w.Account.Data) != len(w.Data) {
			return fmt.Errorf("%w: %s holds %d bytes, write has %d",
				programerr.InvalidAccountData, w.Account.Key, len(w.Account.Data), len(w.Data))
		}
	}
	for _, w := range writes {
		copy(w.Account.Data, w.Data)
	}
	return nil
}
