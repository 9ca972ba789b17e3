// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"fmt"

	smath "github.com/ava-labs/avalanchego/utils/math"
	"github.com/gagliardetto/solana-go"

	"github.com/nadrunner/runnervm/auth"
	"github.com/nadrunner/runnervm/consts"
	"github.com/nadrunner/runnervm/host"
	"github.com/nadrunner/runnervm/programerr"
	"github.com/nadrunner/runnervm/storage"
)

// MintGameScore credits a player's own token account with [score].
func MintGameScore(
	env *Env,
	tokenAccount *host.AccountInfo,
	player *host.AccountInfo,
	authority *host.AccountInfo,
	clockInfo *host.AccountInfo,
	score uint64,
	sig solana.Signature,
) ([]Write, error) {
	if score > consts.MaxGameMint {
		return nil, fmt.Errorf("%w: %d > %d", programerr.ScoreExceedsMaximum, score, consts.MaxGameMint)
	}
	clock, err := host.ClockFromAccount(clockInfo)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireOwnedBy(env.Ownership, env.ProgramID, tokenAccount.Key, authority.Key); err != nil {
		return nil, err
	}
	if err := auth.RequireSigner(env.Signers, player.Key); err != nil {
		return nil, err
	}
	account, err := storage.UnpackTokenAccount(tokenAccount.Data)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireAuthority(account.Owner, player.Key); err != nil {
		return nil, err
	}
	mintAuthority, err := storage.UnpackMintAuthority(authority.Data)
	if err != nil {
		return nil, err
	}

	if err := verifyScore(env.verifier(), mintAuthority, player.Key, score, clock.CurrentSlot(), sig); err != nil {
		return nil, err
	}

	account.Amount, err = smath.Add64(account.Amount, score)
	if err != nil {
		return nil, overflow(err)
	}
	w, err := stageTokenAccount(tokenAccount, account)
	if err != nil {
		return nil, err
	}
	return []Write{w}, nil
}
