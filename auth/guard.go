// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package auth holds the predicates every instruction composes before it is
// allowed to stage a write.
package auth

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/nadrunner/runnervm/host"
	"github.com/nadrunner/runnervm/programerr"
)

// RequireOwnedBy fails unless every slot in [slots] is assigned to
// [programID].
func RequireOwnedBy(own host.StorageOwnership, programID solana.PublicKey, slots ...solana.PublicKey) error {
	for _, slot := range slots {
		if owner := own.OwnerOf(slot); owner != programID {
			return fmt.Errorf("%w: %s is owned by %s", programerr.IncorrectProgramID, slot, owner)
		}
	}
	return nil
}

// RequireSigner fails unless [id] signed the invoking transaction.
func RequireSigner(att host.SignerAttestation, id solana.PublicKey) error {
	if !att.IsSigner(id) {
		return fmt.Errorf("%w: %s", programerr.MissingRequiredSignature, id)
	}
	return nil
}

// RequireRentExempt fails unless [slot] holds enough lamports to keep its
// storage alive.
func RequireRentExempt(rent host.RentOracle, slot *host.AccountInfo) error {
	if !rent.IsExempt(slot.Lamports, len(slot.Data)) {
		return fmt.Errorf("%w: %s", programerr.AccountNotRentExempt, slot.Key)
	}
	return nil
}

// RequireAuthority fails unless the identifier stored in a record matches the
// identity that signed for it.
func RequireAuthority(stored, signer solana.PublicKey) error {
	if stored != signer {
		return fmt.Errorf("%w: authority is %s, not %s", programerr.InvalidAccountData, stored, signer)
	}
	return nil
}
