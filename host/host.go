// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package host describes what the program sees of the environment it runs in:
// account handles and the oracles the runtime provides.
package host

import "github.com/gagliardetto/solana-go"

// RentOracle reports whether a balance keeps storage of [size] bytes alive
// indefinitely.
type RentOracle interface {
	IsExempt(lamports uint64, size int) bool
}

// ClockOracle reports the current ledger slot.
type ClockOracle interface {
	CurrentSlot() uint64
}

// SignerAttestation reports whether [id] signed the invoking transaction.
type SignerAttestation interface {
	IsSigner(id solana.PublicKey) bool
}

// StorageOwnership reports the program a storage slot is assigned to.
type StorageOwnership interface {
	OwnerOf(id solana.PublicKey) solana.PublicKey
}

// AccountInfo is the handle for one account passed to an instruction.
//
// Handles are shared between the runtime and the program for the duration of a
// call. The program reads [Data] freely but only writes it through the
// dispatcher's commit step.
type AccountInfo struct {
	Key      solana.PublicKey
	Owner    solana.PublicKey
	Lamports uint64
	Data     []byte
	IsSigner bool
}

var (
	_ SignerAttestation = Accounts(nil)
	_ StorageOwnership  = Accounts(nil)
)

// Accounts is the ordered account list supplied with an instruction. It
// answers signer and ownership questions for the keys it contains.
type Accounts []*AccountInfo

func (a Accounts) find(id solana.PublicKey) *AccountInfo {
	for _, info := range a {
		if info.Key == id {
			return info
		}
	}
	return nil
}

func (a Accounts) IsSigner(id solana.PublicKey) bool {
	info := a.find(id)
	return info != nil && info.IsSigner
}

// OwnerOf returns the zero key for accounts that were not supplied.
func (a Accounts) OwnerOf(id solana.PublicKey) solana.PublicKey {
	info := a.find(id)
	if info == nil {
		return solana.PublicKey{}
	}
	return info.Owner
}
