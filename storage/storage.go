// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package storage holds the fixed-layout records the program keeps in its
// accounts.
//
// TokenAccount (41 bytes)
//
//	[0]     is_initialized (0 or 1)
//	[1:33]  owner
//	[33:41] amount (little-endian)
//
// MintAuthority (33 bytes)
//
//	[0]     is_initialized (0 or 1)
//	[1:33]  signer
package storage

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/nadrunner/runnervm/codec"
	"github.com/nadrunner/runnervm/consts"
	"github.com/nadrunner/runnervm/programerr"
)

const (
	TokenAccountLen  = consts.BoolLen + consts.IDLen + consts.Uint64Len
	MintAuthorityLen = consts.BoolLen + consts.IDLen
)

type TokenAccount struct {
	IsInitialized bool             `json:"isInitialized"`
	Owner         solana.PublicKey `json:"owner"`
	Amount        uint64           `json:"amount"`
}

type MintAuthority struct {
	IsInitialized bool             `json:"isInitialized"`
	Signer        solana.PublicKey `json:"signer"`
}

// Pack writes [t] over all of [dst].
func (t *TokenAccount) Pack(dst []byte) error {
	if len(dst) != TokenAccountLen {
		return lengthErr(TokenAccountLen, len(dst))
	}
	p := codec.NewFixedWriter(dst)
	p.PackBool(t.IsInitialized)
	p.PackPublicKey(t.Owner)
	p.PackUint64(t.Amount)
	return p.Err()
}

// UnpackTokenAccountUnchecked decodes [src] without requiring the record to
// be initialized. Freshly allocated (all-zero) storage decodes to the zero
// record.
func UnpackTokenAccountUnchecked(src []byte) (*TokenAccount, error) {
	if len(src) != TokenAccountLen {
		return nil, lengthErr(TokenAccountLen, len(src))
	}
	var t TokenAccount
	p := codec.NewReader(src)
	t.IsInitialized = p.UnpackBool()
	p.UnpackPublicKey(&t.Owner)
	t.Amount = p.UnpackUint64()
	if err := p.Err(); err != nil {
		return nil, codecErr(err)
	}
	return &t, nil
}

// UnpackTokenAccount decodes [src] and requires the record to be
// initialized.
func UnpackTokenAccount(src []byte) (*TokenAccount, error) {
	t, err := UnpackTokenAccountUnchecked(src)
	if err != nil {
		return nil, err
	}
	if !t.IsInitialized {
		return nil, programerr.UninitializedAccount
	}
	return t, nil
}

func (m *MintAuthority) Pack(dst []byte) error {
	if len(dst) != MintAuthorityLen {
		return lengthErr(MintAuthorityLen, len(dst))
	}
	p := codec.NewFixedWriter(dst)
	p.PackBool(m.IsInitialized)
	p.PackPublicKey(m.Signer)
	return p.Err()
}

func UnpackMintAuthorityUnchecked(src []byte) (*MintAuthority, error) {
	if len(src) != MintAuthorityLen {
		return nil, lengthErr(MintAuthorityLen, len(src))
	}
	var m MintAuthority
	p := codec.NewReader(src)
	m.IsInitialized = p.UnpackBool()
	p.UnpackPublicKey(&m.Signer)
	if err := p.Err(); err != nil {
		return nil, codecErr(err)
	}
	return &m, nil
}

func UnpackMintAuthority(src []byte) (*MintAuthority, error) {
	m, err := UnpackMintAuthorityUnchecked(src)
	if err != nil {
		return nil, err
	}
	if !m.IsInitialized {
		return nil, programerr.UninitializedAccount
	}
	return m, nil
}

func lengthErr(want, have int) error {
	return fmt.Errorf("%w: expected %d bytes, found %d", programerr.InvalidAccountData, want, have)
}

func codecErr(err error) error {
	return fmt.Errorf("%w: %w", programerr.InvalidAccountData, err)
}
