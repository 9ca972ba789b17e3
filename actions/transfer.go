// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"fmt"

	smath "github.com/ava-labs/avalanchego/utils/math"

	"github.com/nadrunner/runnervm/auth"
	"github.com/nadrunner/runnervm/host"
	"github.com/nadrunner/runnervm/programerr"
	"github.com/nadrunner/runnervm/storage"
)

// TransferTokens moves [amount] from [source] to [destination]. Both balances
// are computed before either is staged.
func TransferTokens(
	env *Env,
	source *host.AccountInfo,
	destination *host.AccountInfo,
	owner *host.AccountInfo,
	amount uint64,
) ([]Write, error) {
	if err := auth.RequireOwnedBy(env.Ownership, env.ProgramID, source.Key, destination.Key); err != nil {
		return nil, err
	}
	if err := auth.RequireSigner(env.Signers, owner.Key); err != nil {
		return nil, err
	}
	from, err := storage.UnpackTokenAccount(source.Data)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireAuthority(from.Owner, owner.Key); err != nil {
		return nil, err
	}
	if from.Amount < amount {
		return nil, fmt.Errorf("%w: balance %d, transfer %d", programerr.InsufficientFunds, from.Amount, amount)
	}
	to, err := storage.UnpackTokenAccount(destination.Data)
	if err != nil {
		return nil, err
	}

	// Both handles alias the same storage; the balance does not move.
	if source.Key == destination.Key {
		w, err := stageTokenAccount(source, from)
		if err != nil {
			return nil, err
		}
		return []Write{w}, nil
	}

	from.Amount, err = smath.Sub(from.Amount, amount)
	if err != nil {
		return nil, overflow(err)
	}
	to.Amount, err = smath.Add64(to.Amount, amount)
	if err != nil {
		return nil, overflow(err)
	}
	fromWrite, err := stageTokenAccount(source, from)
	if err != nil {
		return nil, err
	}
	toWrite, err := stageTokenAccount(destination, to)
	if err != nil {
		return nil, err
	}
	return []Write{fromWrite, toWrite}, nil
}
