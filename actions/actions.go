// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package actions implements the program's state transitions.
//
// Every transition reads its handles, runs all of its checks and returns the
// records it wants persisted as staged [Write]s. None of them mutates a handle;
// the dispatcher commits the writes only once the transition has succeeded.
package actions

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/nadrunner/runnervm/host"
	"github.com/nadrunner/runnervm/programerr"
	"github.com/nadrunner/runnervm/storage"
)

// Env carries what a transition needs besides its handles and payload.
type Env struct {
	ProgramID solana.PublicKey
	Ownership host.StorageOwnership
	Signers   host.SignerAttestation
	Verifier  ScoreVerifier
}

// Write is the new content of one account.
type Write struct {
	Account *host.AccountInfo
	Data    []byte
}

func (e *Env) verifier() ScoreVerifier {
	if e.Verifier == nil {
		return AcceptAll{}
	}
	return e.Verifier
}

func stageTokenAccount(info *host.AccountInfo, t *storage.TokenAccount) (Write, error) {
	data := make([]byte, storage.TokenAccountLen)
	if err := t.Pack(data); err != nil {
		return Write{}, err
	}
	return Write{Account: info, Data: data}, nil
}

func stageMintAuthority(info *host.AccountInfo, m *storage.MintAuthority) (Write, error) {
	data := make([]byte, storage.MintAuthorityLen)
	if err := m.Pack(data); err != nil {
		return Write{}, err
	}
	return Write{Account: info, Data: data}, nil
}

func overflow(err error) error {
	return fmt.Errorf("%w: %w", programerr.ArithmeticOverflow, err)
}
