// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"github.com/gagliardetto/solana-go"

	"github.com/nadrunner/runnervm/auth"
	"github.com/nadrunner/runnervm/host"
	"github.com/nadrunner/runnervm/storage"
)

// UpdateMintAuthority hands minting rights from [current] to [newSigner].
func UpdateMintAuthority(
	env *Env,
	authority *host.AccountInfo,
	current *host.AccountInfo,
	newSigner solana.PublicKey,
) ([]Write, error) {
	if err := auth.RequireOwnedBy(env.Ownership, env.ProgramID, authority.Key); err != nil {
		return nil, err
	}
	if err := auth.RequireSigner(env.Signers, current.Key); err != nil {
		return nil, err
	}
	record, err := storage.UnpackMintAuthority(authority.Data)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireAuthority(record.Signer, current.Key); err != nil {
		return nil, err
	}

	record.Signer = newSigner
	w, err := stageMintAuthority(authority, record)
	if err != nil {
		return nil, err
	}
	return []Write{w}, nil
}
