// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ed25519

import (
	"crypto/ed25519"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/hdevalence/ed25519consensus"

	"github.com/nadrunner/runnervm/crypto"
)

// We use the ZIP-215 specification for ed25519 signature
// verification (https://zips.z.cash/zip-0215) because it provides
// an explicit validity criteria for signatures and supports batch
// verification.
const (
	PublicKeyLen  = ed25519.PublicKeySize
	PrivateKeyLen = ed25519.PrivateKeySize
	SignatureLen  = ed25519.SignatureSize

	MinBatchSize = 4
)

// Sign returns a signature of [msg] by [pk].
func Sign(msg []byte, pk solana.PrivateKey) (solana.Signature, error) {
	if len(pk) != PrivateKeyLen {
		return solana.Signature{}, fmt.Errorf("%w: %d bytes", crypto.ErrInvalidPrivateKey, len(pk))
	}
	var sig solana.Signature
	copy(sig[:], ed25519.Sign(ed25519.PrivateKey(pk), msg))
	return sig, nil
}

// Verify returns whether [s] is a valid signature of [msg] by [p].
func Verify(msg []byte, p solana.PublicKey, s solana.Signature) bool {
	return ed25519consensus.Verify(p[:], msg, s[:])
}

// Batch verifies many signatures at once. Below [MinBatchSize] entries it
// falls back to verifying one at a time.
type Batch struct {
	bv    ed25519consensus.BatchVerifier
	items []item
}

type item struct {
	msg []byte
	pk  solana.PublicKey
	sig solana.Signature
}

func NewBatch(size int) *Batch {
	return &Batch{
		bv:    ed25519consensus.NewPreallocatedBatchVerifier(size),
		items: make([]item, 0, size),
	}
}

func (b *Batch) Add(msg []byte, p solana.PublicKey, s solana.Signature) {
	b.bv.Add(p[:], msg, s[:])
	b.items = append(b.items, item{msg: msg, pk: p, sig: s})
}

func (b *Batch) Verify() bool {
	if len(b.items) >= MinBatchSize {
		return b.bv.Verify()
	}
	for _, it := range b.items {
		if !Verify(it.msg, it.pk, it.sig) {
			return false
		}
	}
	return true
}
