// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/nadrunner/runnervm/consts"
	"github.com/nadrunner/runnervm/crypto/ed25519"
	"github.com/nadrunner/runnervm/host"
	"github.com/nadrunner/runnervm/programerr"
	"github.com/nadrunner/runnervm/storage"
)

var programID = solana.NewWallet().PublicKey()

func newEnv(accounts ...*host.AccountInfo) *Env {
	a := host.Accounts(accounts)
	return &Env{ProgramID: programID, Ownership: a, Signers: a}
}

func signer(key solana.PublicKey) *host.AccountInfo {
	return &host.AccountInfo{Key: key, Owner: consts.SystemProgramID, IsSigner: true}
}

func rentSysvar() *host.AccountInfo {
	return &host.AccountInfo{Key: consts.SysvarRentID, Data: host.DefaultRent().Bytes()}
}

func clockSysvar(slot uint64) *host.AccountInfo {
	return &host.AccountInfo{Key: consts.SysvarClockID, Data: host.Clock{Slot: slot}.Bytes()}
}

func emptySlot(size int) *host.AccountInfo {
	return &host.AccountInfo{
		Key:      solana.NewWallet().PublicKey(),
		Owner:    programID,
		Lamports: host.DefaultRent().MinimumBalance(size),
		Data:     make([]byte, size),
	}
}

func tokenSlot(t *testing.T, owner solana.PublicKey, amount uint64) *host.AccountInfo {
	info := emptySlot(storage.TokenAccountLen)
	require.NoError(t, (&storage.TokenAccount{IsInitialized: true, Owner: owner, Amount: amount}).Pack(info.Data))
	return info
}

func authoritySlot(t *testing.T, authority solana.PublicKey) *host.AccountInfo {
	info := emptySlot(storage.MintAuthorityLen)
	require.NoError(t, (&storage.MintAuthority{IsInitialized: true, Signer: authority}).Pack(info.Data))
	return info
}

func apply(writes []Write) {
	for _, w := range writes {
		copy(w.Account.Data, w.Data)
	}
}

func balance(t *testing.T, info *host.AccountInfo) uint64 {
	account, err := storage.UnpackTokenAccount(info.Data)
	require.NoError(t, err)
	return account.Amount
}

func TestInitializeTokenAccount(t *testing.T) {
	require := require.New(t)

	owner := signer(solana.NewWallet().PublicKey())
	slot := emptySlot(storage.TokenAccountLen)
	rent := rentSysvar()
	env := newEnv(slot, owner, rent)

	writes, err := InitializeTokenAccount(env, slot, owner, rent)
	require.NoError(err)
	require.Len(writes, 1)
	// nothing persisted until the writes are applied
	require.Equal(make([]byte, storage.TokenAccountLen), slot.Data)
	apply(writes)

	account, err := storage.UnpackTokenAccount(slot.Data)
	require.NoError(err)
	require.Equal(owner.Key, account.Owner)
	require.Zero(account.Amount)

	// second initialization fails and keeps the first
	before := append([]byte(nil), slot.Data...)
	_, err = InitializeTokenAccount(env, slot, owner, rent)
	require.ErrorIs(err, programerr.AccountAlreadyInitialized)
	require.Equal(before, slot.Data)
}

func TestInitializeTokenAccountErrors(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	tests := []struct {
		name  string
		setup func(slot, owner, rent *host.AccountInfo)
		err   error
	}{
		{
			name:  "wrong rent sysvar",
			setup: func(_, _, rent *host.AccountInfo) { rent.Key = consts.SysvarClockID },
			err:   programerr.InvalidArgument,
		},
		{
			name:  "foreign slot",
			setup: func(slot, _, _ *host.AccountInfo) { slot.Owner = consts.SystemProgramID },
			err:   programerr.IncorrectProgramID,
		},
		{
			name:  "below rent exemption",
			setup: func(slot, _, _ *host.AccountInfo) { slot.Lamports-- },
			err:   programerr.AccountNotRentExempt,
		},
		{
			name:  "owner did not sign",
			setup: func(_, owner, _ *host.AccountInfo) { owner.IsSigner = false },
			err:   programerr.MissingRequiredSignature,
		},
		{
			name:  "short slot",
			setup: func(slot, _, _ *host.AccountInfo) { slot.Data = make([]byte, storage.MintAuthorityLen) },
			err:   programerr.InvalidAccountData,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			slot := emptySlot(storage.TokenAccountLen)
			o := signer(owner)
			rent := rentSysvar()
			tt.setup(slot, o, rent)

			writes, err := InitializeTokenAccount(newEnv(slot, o, rent), slot, o, rent)
			require.ErrorIs(err, tt.err)
			require.Nil(writes)
		})
	}
}

func TestInitializeMintAuthority(t *testing.T) {
	require := require.New(t)

	deployer := signer(solana.NewWallet().PublicKey())
	slot := emptySlot(storage.MintAuthorityLen)
	rent := rentSysvar()
	env := newEnv(slot, deployer, rent)

	writes, err := InitializeMintAuthority(env, slot, deployer, rent)
	require.NoError(err)
	apply(writes)

	record, err := storage.UnpackMintAuthority(slot.Data)
	require.NoError(err)
	require.Equal(deployer.Key, record.Signer)

	_, err = InitializeMintAuthority(env, slot, deployer, rent)
	require.ErrorIs(err, programerr.AccountAlreadyInitialized)
}

func TestUpdateMintAuthority(t *testing.T) {
	require := require.New(t)

	oldAdmin := signer(solana.NewWallet().PublicKey())
	newAdmin := signer(solana.NewWallet().PublicKey())
	authority := authoritySlot(t, oldAdmin.Key)
	token := tokenSlot(t, solana.NewWallet().PublicKey(), 0)
	env := newEnv(authority, oldAdmin, newAdmin, token)

	// a signer that is not the stored authority
	_, err := UpdateMintAuthority(env, authority, newAdmin, newAdmin.Key)
	require.ErrorIs(err, programerr.InvalidAccountData)

	writes, err := UpdateMintAuthority(env, authority, oldAdmin, newAdmin.Key)
	require.NoError(err)
	apply(writes)

	record, err := storage.UnpackMintAuthority(authority.Data)
	require.NoError(err)
	require.Equal(newAdmin.Key, record.Signer)

	// rotated out
	_, err = AdminMint(env, authority, oldAdmin, token, 1)
	require.ErrorIs(err, programerr.InvalidAccountData)
	writes, err = AdminMint(env, authority, newAdmin, token, 1)
	require.NoError(err)
	apply(writes)
	require.Equal(uint64(1), balance(t, token))
}

func TestUpdateMintAuthorityUninitialized(t *testing.T) {
	require := require.New(t)

	admin := signer(solana.NewWallet().PublicKey())
	authority := emptySlot(storage.MintAuthorityLen)

	_, err := UpdateMintAuthority(newEnv(authority, admin), authority, admin, admin.Key)
	require.ErrorIs(err, programerr.UninitializedAccount)
}

func TestAdminMint(t *testing.T) {
	require := require.New(t)

	admin := signer(solana.NewWallet().PublicKey())
	authority := authoritySlot(t, admin.Key)
	token := tokenSlot(t, solana.NewWallet().PublicKey(), 5)
	env := newEnv(authority, admin, token)

	writes, err := AdminMint(env, authority, admin, token, 1000)
	require.NoError(err)
	apply(writes)
	require.Equal(uint64(1005), balance(t, token))

	_, err = AdminMint(env, authority, admin, token, consts.MaxUint64)
	require.ErrorIs(err, programerr.ArithmeticOverflow)
	require.Equal(uint64(1005), balance(t, token))
}

func TestAdminMintRejectsNonAuthority(t *testing.T) {
	require := require.New(t)

	admin := signer(solana.NewWallet().PublicKey())
	imposter := signer(solana.NewWallet().PublicKey())
	authority := authoritySlot(t, admin.Key)
	token := tokenSlot(t, solana.NewWallet().PublicKey(), 0)
	env := newEnv(authority, admin, imposter, token)

	_, err := AdminMint(env, authority, imposter, token, 1)
	require.ErrorIs(err, programerr.InvalidAccountData)

	imposter.IsSigner = false
	_, err = AdminMint(env, authority, imposter, token, 1)
	require.ErrorIs(err, programerr.MissingRequiredSignature)

	token.Owner = consts.SystemProgramID
	_, err = AdminMint(env, authority, admin, token, 1)
	require.ErrorIs(err, programerr.IncorrectProgramID)
}

func TestMintGameScore(t *testing.T) {
	require := require.New(t)

	player := signer(solana.NewWallet().PublicKey())
	token := tokenSlot(t, player.Key, 0)
	authority := authoritySlot(t, solana.NewWallet().PublicKey())
	clock := clockSysvar(12)
	env := newEnv(token, player, authority, clock)

	writes, err := MintGameScore(env, token, player, authority, clock, consts.MaxGameMint, solana.Signature{})
	require.NoError(err)
	apply(writes)
	require.Equal(uint64(consts.MaxGameMint), balance(t, token))

	_, err = MintGameScore(env, token, player, authority, clock, consts.MaxGameMint+1, solana.Signature{})
	require.ErrorIs(err, programerr.ScoreExceedsMaximum)
	require.Equal(uint64(consts.MaxGameMint), balance(t, token))
}

func TestMintGameScoreErrors(t *testing.T) {
	require := require.New(t)

	player := signer(solana.NewWallet().PublicKey())
	other := signer(solana.NewWallet().PublicKey())
	token := tokenSlot(t, player.Key, 0)
	authority := authoritySlot(t, solana.NewWallet().PublicKey())
	clock := clockSysvar(1)
	env := newEnv(token, player, other, authority, clock)

	// someone else's account
	_, err := MintGameScore(env, token, other, authority, clock, 1, solana.Signature{})
	require.ErrorIs(err, programerr.InvalidAccountData)

	// rent sysvar in place of the clock
	_, err = MintGameScore(env, token, player, authority, rentSysvar(), 1, solana.Signature{})
	require.ErrorIs(err, programerr.InvalidArgument)

	authority.Owner = consts.SystemProgramID
	_, err = MintGameScore(env, token, player, authority, clock, 1, solana.Signature{})
	require.ErrorIs(err, programerr.IncorrectProgramID)
	authority.Owner = programID

	token.Data[0] = 0
	_, err = MintGameScore(env, token, player, authority, clock, 1, solana.Signature{})
	require.ErrorIs(err, programerr.UninitializedAccount)
}

func TestMintGameScoreVerified(t *testing.T) {
	require := require.New(t)

	signerKey, err := solana.NewRandomPrivateKey()
	require.NoError(err)
	player := signer(solana.NewWallet().PublicKey())
	token := tokenSlot(t, player.Key, 0)
	authority := authoritySlot(t, signerKey.PublicKey())
	clock := clockSysvar(1<<32 + 3)
	env := newEnv(token, player, authority, clock)
	env.Verifier = Ed25519Verifier{}

	_, err = MintGameScore(env, token, player, authority, clock, 50, solana.Signature{})
	require.ErrorIs(err, programerr.InvalidSignature)

	// only the low 32 bits of the slot are bound
	digest := ScoreDigest(player.Key, 50, 3)
	sig, err := ed25519.Sign(digest[:], signerKey)
	require.NoError(err)

	writes, err := MintGameScore(env, token, player, authority, clock, 50, sig)
	require.NoError(err)
	apply(writes)
	require.Equal(uint64(50), balance(t, token))

	// a different score under the same signature
	_, err = MintGameScore(env, token, player, authority, clock, 51, sig)
	require.ErrorIs(err, programerr.InvalidSignature)
}

func TestMintGameScoreSlotWindow(t *testing.T) {
	require := require.New(t)

	signerKey, err := solana.NewRandomPrivateKey()
	require.NoError(err)
	player := signer(solana.NewWallet().PublicKey())
	authority := authoritySlot(t, signerKey.PublicKey())

	sign := func(slot uint64) solana.Signature {
		digest := ScoreDigest(player.Key, 50, slot)
		sig, err := ed25519.Sign(digest[:], signerKey)
		require.NoError(err)
		return sig
	}

	tests := []struct {
		name     string
		signed   uint64
		minted   uint64
		accepted bool
	}{
		{name: "same slot", signed: 10, minted: 10, accepted: true},
		{name: "next slot", signed: 10, minted: 11, accepted: true},
		{name: "two slots later", signed: 10, minted: 12},
		{name: "earlier slot", signed: 10, minted: 9},
		{name: "genesis", signed: 0, minted: 0, accepted: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := tokenSlot(t, player.Key, 0)
			clock := clockSysvar(tt.minted)
			env := newEnv(token, player, authority, clock)
			env.Verifier = Ed25519Verifier{}

			_, err := MintGameScore(env, token, player, authority, clock, 50, sign(tt.signed))
			if tt.accepted {
				require.NoError(err)
			} else {
				require.ErrorIs(err, programerr.InvalidSignature)
			}
		})
	}
}

func TestScoreDigest(t *testing.T) {
	require := require.New(t)

	player := solana.NewWallet().PublicKey()
	d := ScoreDigest(player, 10, 7)
	require.Equal(d, ScoreDigest(player, 10, 1<<32+7))
	require.NotEqual(d, ScoreDigest(player, 10, 8))
	require.NotEqual(d, ScoreDigest(player, 11, 7))
	require.NotEqual(d, ScoreDigest(solana.NewWallet().PublicKey(), 10, 7))
}

func TestTransferTokens(t *testing.T) {
	require := require.New(t)

	owner := signer(solana.NewWallet().PublicKey())
	source := tokenSlot(t, owner.Key, 1000)
	dest := tokenSlot(t, solana.NewWallet().PublicKey(), 0)
	env := newEnv(source, dest, owner)

	writes, err := TransferTokens(env, source, dest, owner, 400)
	require.NoError(err)
	require.Len(writes, 2)
	apply(writes)
	require.Equal(uint64(600), balance(t, source))
	require.Equal(uint64(400), balance(t, dest))
}

func TestTransferTokensInsufficientFunds(t *testing.T) {
	require := require.New(t)

	owner := signer(solana.NewWallet().PublicKey())
	source := tokenSlot(t, owner.Key, 10)
	dest := tokenSlot(t, solana.NewWallet().PublicKey(), 3)
	env := newEnv(source, dest, owner)

	writes, err := TransferTokens(env, source, dest, owner, 11)
	require.ErrorIs(err, programerr.InsufficientFunds)
	require.Nil(writes)
	require.Equal(uint64(10), balance(t, source))
	require.Equal(uint64(3), balance(t, dest))
}

func TestTransferTokensOverflow(t *testing.T) {
	require := require.New(t)

	owner := signer(solana.NewWallet().PublicKey())
	source := tokenSlot(t, owner.Key, 10)
	dest := tokenSlot(t, solana.NewWallet().PublicKey(), consts.MaxUint64)
	env := newEnv(source, dest, owner)

	writes, err := TransferTokens(env, source, dest, owner, 1)
	require.ErrorIs(err, programerr.ArithmeticOverflow)
	require.Nil(writes)
	require.Equal(uint64(10), balance(t, source))
}

func TestTransferTokensToSelf(t *testing.T) {
	require := require.New(t)

	owner := signer(solana.NewWallet().PublicKey())
	source := tokenSlot(t, owner.Key, 10)
	env := newEnv(source, owner)

	writes, err := TransferTokens(env, source, source, owner, 7)
	require.NoError(err)
	apply(writes)
	require.Equal(uint64(10), balance(t, source))
}

func TestTransferTokensConservation(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	amounts := []struct {
		source, dest, amount uint64
	}{
		{0, 0, 0},
		{1, 0, 1},
		{1000, 1000, 999},
		{consts.MaxUint64, 0, consts.MaxUint64},
		{consts.MaxUint64 - 5, 5, 1 << 40},
	}
	for _, tt := range amounts {
		require := require.New(t)

		o := signer(owner)
		source := tokenSlot(t, owner, tt.source)
		dest := tokenSlot(t, solana.NewWallet().PublicKey(), tt.dest)

		writes, err := TransferTokens(newEnv(source, dest, o), source, dest, o, tt.amount)
		require.NoError(err)
		apply(writes)
		require.Equal(tt.source+tt.dest, balance(t, source)+balance(t, dest))
	}
}

func TestTransferTokensAuthorization(t *testing.T) {
	require := require.New(t)

	owner := signer(solana.NewWallet().PublicKey())
	thief := signer(solana.NewWallet().PublicKey())
	source := tokenSlot(t, owner.Key, 10)
	dest := tokenSlot(t, thief.Key, 0)
	env := newEnv(source, dest, owner, thief)

	_, err := TransferTokens(env, source, dest, thief, 1)
	require.ErrorIs(err, programerr.InvalidAccountData)

	owner.IsSigner = false
	_, err = TransferTokens(env, source, dest, owner, 1)
	require.ErrorIs(err, programerr.MissingRequiredSignature)

	dest.Owner = consts.SystemProgramID
	_, err = TransferTokens(env, source, dest, owner, 1)
	require.ErrorIs(err, programerr.IncorrectProgramID)
}
