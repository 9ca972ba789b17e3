// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"golang.org/x/crypto/sha3"

	"github.com/nadrunner/runnervm/consts"
	"github.com/nadrunner/runnervm/crypto/ed25519"
	"github.com/nadrunner/runnervm/programerr"
	"github.com/nadrunner/runnervm/storage"
)

const scoreMessageLen = consts.IDLen + consts.Uint64Len + consts.Uint32Len

// ScoreDigest binds a score to the player that earned it and to the low 32
// bits of the ledger slot it is minted in.
func ScoreDigest(player solana.PublicKey, score uint64, slot uint64) [32]byte {
	msg := make([]byte, scoreMessageLen)
	copy(msg, player[:])
	binary.LittleEndian.PutUint64(msg[consts.IDLen:], score)
	binary.LittleEndian.PutUint32(msg[consts.IDLen+consts.Uint64Len:], uint32(slot))

	var digest [32]byte
	h := sha3.NewLegacyKeccak256()
	_, _ = h.Write(msg)
	h.Sum(digest[:0])
	return digest
}

// verifyScore accepts [sig] if it was made for [slot] or for one of the
// [consts.ScoreSlotWindow]-1 slots before it.
func verifyScore(
	v ScoreVerifier,
	authority *storage.MintAuthority,
	player solana.PublicKey,
	score uint64,
	slot uint64,
	sig solana.Signature,
) error {
	var err error
	for age := uint64(0); age < consts.ScoreSlotWindow && age <= slot; age++ {
		if err = v.VerifyScore(authority, ScoreDigest(player, score, slot-age), sig); err == nil {
			return nil
		}
	}
	return err
}

// ScoreVerifier decides whether a score signature is acceptable for the
// current mint authority.
type ScoreVerifier interface {
	VerifyScore(authority *storage.MintAuthority, digest [32]byte, sig solana.Signature) error
}

var (
	_ ScoreVerifier = AcceptAll{}
	_ ScoreVerifier = Ed25519Verifier{}
)

// AcceptAll credits any score that passes the account checks. The digest is
// still computed but never compared against [sig].
type AcceptAll struct{}

func (AcceptAll) VerifyScore(*storage.MintAuthority, [32]byte, solana.Signature) error {
	return nil
}

// Ed25519Verifier requires [sig] to be the mint authority's signature over the
// score digest.
type Ed25519Verifier struct{}

func (Ed25519Verifier) VerifyScore(authority *storage.MintAuthority, digest [32]byte, sig solana.Signature) error {
	if !ed25519.Verify(digest[:], authority.Signer, sig) {
		return fmt.Errorf("%w: not signed by %s", programerr.InvalidSignature, authority.Signer)
	}
	return nil
}
