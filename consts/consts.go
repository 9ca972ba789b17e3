// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package consts

import "github.com/gagliardetto/solana-go"

const (
	BoolLen      = 1
	IDLen        = 32
	Uint32Len    = 4
	Uint64Len    = 8
	Float64Len   = 8
	SignatureLen = 64
	MaxUint32    = ^uint32(0)
	MaxUint64    = ^uint64(0)

	// Tokens carry 9 decimals, so one whole token is 10^9 base units.
	Decimals         = 9
	UnitsPerToken    = 1_000_000_000
	MaxGameMint      = 10_000 * UnitsPerToken
	NetworkSizeLimit = 64 * 1024

	// A score signature verifies in the slot it was made for and in the
	// slot after it.
	ScoreSlotWindow = 2
)

var (
	SystemProgramID = solana.MustPublicKeyFromBase58("11111111111111111111111111111111")
	SysvarProgramID = solana.MustPublicKeyFromBase58("Sysvar1111111111111111111111111111111111111")
	SysvarRentID    = solana.MustPublicKeyFromBase58("SysvarRent111111111111111111111111111111111")
	SysvarClockID   = solana.MustPublicKeyFromBase58("SysvarC1ock11111111111111111111111111111111")
)
