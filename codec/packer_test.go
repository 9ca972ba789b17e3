// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

func TestPackerLittleEndian(t *testing.T) {
	require := require.New(t)

	wp := NewWriter(0, 64)
	wp.PackUint64(0x0102030405060708)
	wp.PackUint32(0x0a0b0c0d)
	require.NoError(wp.Err())
	require.Equal([]byte{8, 7, 6, 5, 4, 3, 2, 1, 0x0d, 0x0c, 0x0b, 0x0a}, wp.Bytes())

	rp := NewReader(wp.Bytes())
	require.Equal(uint64(0x0102030405060708), rp.UnpackUint64())
	require.Equal(uint32(0x0a0b0c0d), rp.UnpackUint32())
	require.True(rp.Empty())
	require.NoError(rp.Err())
}

func TestPackerWriterLimit(t *testing.T) {
	require := require.New(t)

	wp := NewWriter(4, 8)
	wp.PackUint64(1)
	require.NoError(wp.Err())
	wp.PackBool(true)
	require.ErrorIs(wp.Err(), ErrTooLarge)
	require.Len(wp.Bytes(), 8)
}

func TestPackerFixedWriter(t *testing.T) {
	require := require.New(t)

	dst := make([]byte, 9)
	wp := NewFixedWriter(dst)
	wp.PackBool(true)
	wp.PackUint64(42)
	require.NoError(wp.Err())
	require.Equal(byte(1), dst[0])
	require.Equal(byte(42), dst[1])

	wp.PackByte(1)
	require.ErrorIs(wp.Err(), ErrTooLarge)
}

func TestPackerUnpackBool(t *testing.T) {
	tests := []struct {
		name  string
		input byte
		want  bool
		err   error
	}{
		{name: "false", input: 0, want: false},
		{name: "true", input: 1, want: true},
		{name: "invalid", input: 2, err: ErrInvalidBool},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			rp := NewReader([]byte{tt.input})
			got := rp.UnpackBool()
			require.ErrorIs(rp.Err(), tt.err)
			require.Equal(tt.want, got)
		})
	}
}

func TestPackerStickyError(t *testing.T) {
	require := require.New(t)

	rp := NewReader([]byte{1, 2, 3})
	require.Zero(rp.UnpackUint64())
	require.ErrorIs(rp.Err(), ErrInsufficientLength)

	// later reads do not consume or overwrite the first error
	require.Zero(rp.UnpackByte())
	require.ErrorIs(rp.Err(), ErrInsufficientLength)
	require.Zero(rp.Offset())
}

func TestPackerPublicKeyAndSignature(t *testing.T) {
	require := require.New(t)

	pk := solana.NewWallet().PublicKey()
	var sig solana.Signature
	for i := range sig {
		sig[i] = byte(i)
	}

	wp := NewWriter(0, 128)
	wp.PackPublicKey(pk)
	wp.PackSignature(sig)
	require.NoError(wp.Err())
	require.Len(wp.Bytes(), 96)

	var (
		gotPK  solana.PublicKey
		gotSig solana.Signature
	)
	rp := NewReader(wp.Bytes())
	rp.UnpackPublicKey(&gotPK)
	rp.UnpackSignature(&gotSig)
	require.NoError(rp.Err())
	require.Equal(pk, gotPK)
	require.Equal(sig, gotSig)
}

func TestPackerBytes(t *testing.T) {
	require := require.New(t)

	wp := NewWriter(0, 64)
	wp.PackBytes([]byte("runner"))
	require.NoError(wp.Err())

	rp := NewReader(wp.Bytes())
	require.Equal([]byte("runner"), rp.UnpackBytes(16))
	require.NoError(rp.Err())

	rp = NewReader(wp.Bytes())
	require.Nil(rp.UnpackBytes(3))
	require.ErrorIs(rp.Err(), ErrTooLarge)
}

func TestHexBytes(t *testing.T) {
	require := require.New(t)

	b := Bytes{0x01, 0xab}
	text, err := b.MarshalText()
	require.NoError(err)
	require.Equal("01ab", string(text))

	var got Bytes
	require.NoError(got.UnmarshalText([]byte("0x01ab")))
	require.Equal(b, got)

	_, err = LoadHex("01ab", 3)
	require.ErrorIs(err, ErrInvalidSize)
	_, err = LoadHex("zz", -1)
	require.Error(err)
}
