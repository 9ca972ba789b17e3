// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	smath "github.com/ava-labs/avalanchego/utils/math"

	"github.com/nadrunner/runnervm/auth"
	"github.com/nadrunner/runnervm/host"
	"github.com/nadrunner/runnervm/storage"
)

// AdminMint credits [amount] to [tokenAccount] on behalf of the current mint
// authority.
func AdminMint(
	env *Env,
	authority *host.AccountInfo,
	admin *host.AccountInfo,
	tokenAccount *host.AccountInfo,
	amount uint64,
) ([]Write, error) {
	if err := auth.RequireOwnedBy(env.Ownership, env.ProgramID, authority.Key, tokenAccount.Key); err != nil {
		return nil, err
	}
	if err := auth.RequireSigner(env.Signers, admin.Key); err != nil {
		return nil, err
	}
	mintAuthority, err := storage.UnpackMintAuthority(authority.Data)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireAuthority(mintAuthority.Signer, admin.Key); err != nil {
		return nil, err
	}
	account, err := storage.UnpackTokenAccount(tokenAccount.Data)
	if err != nil {
		return nil, err
	}

	account.Amount, err = smath.Add64(account.Amount, amount)
	if err != nil {
		return nil, overflow(err)
	}
	w, err := stageTokenAccount(tokenAccount, account)
	if err != nil {
		return nil, err
	}
	return []Write{w}, nil
}
