// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"github.com/nadrunner/runnervm/auth"
	"github.com/nadrunner/runnervm/host"
	"github.com/nadrunner/runnervm/programerr"
	"github.com/nadrunner/runnervm/storage"
)

// InitializeTokenAccount gives [tokenAccount] to [owner] with a zero balance.
func InitializeTokenAccount(
	env *Env,
	tokenAccount *host.AccountInfo,
	owner *host.AccountInfo,
	rentInfo *host.AccountInfo,
) ([]Write, error) {
	rent, err := host.RentFromAccount(rentInfo)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireOwnedBy(env.Ownership, env.ProgramID, tokenAccount.Key); err != nil {
		return nil, err
	}
	if err := auth.RequireRentExempt(rent, tokenAccount); err != nil {
		return nil, err
	}
	if err := auth.RequireSigner(env.Signers, owner.Key); err != nil {
		return nil, err
	}
	current, err := storage.UnpackTokenAccountUnchecked(tokenAccount.Data)
	if err != nil {
		return nil, err
	}
	if current.IsInitialized {
		return nil, programerr.AccountAlreadyInitialized
	}

	w, err := stageTokenAccount(tokenAccount, &storage.TokenAccount{
		IsInitialized: true,
		Owner:         owner.Key,
		Amount:        0,
	})
	if err != nil {
		return nil, err
	}
	return []Write{w}, nil
}

// InitializeMintAuthority makes [deployer] the first minting authority.
//
// Whoever calls this first on a fresh authority account wins; deployments are
// expected to run it right after the account is allocated.
func InitializeMintAuthority(
	env *Env,
	authority *host.AccountInfo,
	deployer *host.AccountInfo,
	rentInfo *host.AccountInfo,
) ([]Write, error) {
	rent, err := host.RentFromAccount(rentInfo)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireOwnedBy(env.Ownership, env.ProgramID, authority.Key); err != nil {
		return nil, err
	}
	if err := auth.RequireRentExempt(rent, authority); err != nil {
		return nil, err
	}
	if err := auth.RequireSigner(env.Signers, deployer.Key); err != nil {
		return nil, err
	}
	current, err := storage.UnpackMintAuthorityUnchecked(authority.Data)
	if err != nil {
		return nil, err
	}
	if current.IsInitialized {
		return nil, programerr.AccountAlreadyInitialized
	}

	w, err := stageMintAuthority(authority, &storage.MintAuthority{
		IsInitialized: true,
		Signer:        deployer.Key,
	})
	if err != nil {
		return nil, err
	}
	return []Write{w}, nil
}
