// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package host

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/nadrunner/runnervm/consts"
	"github.com/nadrunner/runnervm/programerr"
)

func TestRentMinimumBalance(t *testing.T) {
	require := require.New(t)

	r := DefaultRent()
	// (128 + 41) * 3480 * 2
	require.Equal(uint64(1_176_240), r.MinimumBalance(41))
	require.True(r.IsExempt(1_176_240, 41))
	require.False(r.IsExempt(1_176_239, 41))
	require.True(r.IsExempt(r.MinimumBalance(33), 33))
}

func TestRentBytes(t *testing.T) {
	require := require.New(t)

	r := DefaultRent()
	b := r.Bytes()
	require.Len(b, RentLen)

	got, err := UnmarshalRent(b)
	require.NoError(err)
	require.Equal(r, got)

	_, err = UnmarshalRent(b[:RentLen-1])
	require.ErrorIs(err, ErrInvalidSysvar)
}

func TestClockBytes(t *testing.T) {
	require := require.New(t)

	c := Clock{Slot: 1<<32 + 7, Epoch: 3, UnixTimestamp: 1_700_000_000}
	b := c.Bytes()
	require.Len(b, ClockLen)
	require.Equal(byte(7), b[0])

	got, err := UnmarshalClock(b)
	require.NoError(err)
	require.Equal(c, got)
	require.Equal(c.Slot, got.CurrentSlot())

	_, err = UnmarshalClock(append(b, 0))
	require.ErrorIs(err, ErrInvalidSysvar)
}

func TestAccounts(t *testing.T) {
	require := require.New(t)

	program := solana.NewWallet().PublicKey()
	signer := &AccountInfo{Key: solana.NewWallet().PublicKey(), IsSigner: true}
	slot := &AccountInfo{Key: solana.NewWallet().PublicKey(), Owner: program}
	accounts := Accounts{signer, slot}

	require.True(accounts.IsSigner(signer.Key))
	require.False(accounts.IsSigner(slot.Key))
	require.False(accounts.IsSigner(program))

	require.Equal(program, accounts.OwnerOf(slot.Key))
	require.True(accounts.OwnerOf(program).IsZero())
}

func TestSysvarFromAccount(t *testing.T) {
	require := require.New(t)

	rentInfo := &AccountInfo{Key: consts.SysvarRentID, Data: DefaultRent().Bytes()}
	r, err := RentFromAccount(rentInfo)
	require.NoError(err)
	require.Equal(DefaultRent(), r)

	clockInfo := &AccountInfo{Key: consts.SysvarClockID, Data: Clock{Slot: 9}.Bytes()}
	c, err := ClockFromAccount(clockInfo)
	require.NoError(err)
	require.Equal(uint64(9), c.CurrentSlot())

	// swapped handles
	_, err = RentFromAccount(clockInfo)
	require.ErrorIs(err, programerr.InvalidArgument)
	_, err = ClockFromAccount(rentInfo)
	require.ErrorIs(err, programerr.InvalidArgument)

	// right key, malformed data
	_, err = ClockFromAccount(&AccountInfo{Key: consts.SysvarClockID, Data: []byte{1}})
	require.ErrorIs(err, programerr.InvalidArgument)
	require.ErrorIs(err, ErrInvalidSysvar)
}
