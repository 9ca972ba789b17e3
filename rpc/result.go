// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"errors"

	"github.com/gagliardetto/solana-go"

	"github.com/nadrunner/runnervm/programerr"
	"github.com/nadrunner/runnervm/runtime"
)

// TxResult is how a transaction outcome is reported to clients. [Code] and
// [Instruction] are only set when an instruction failed.
type TxResult struct {
	TxID        solana.Hash `json:"txId"`
	Success     bool        `json:"success"`
	Slot        uint64      `json:"slot,omitempty"`
	Instruction int         `json:"instruction,omitempty"`
	Code        uint64      `json:"code,omitempty"`
	Error       string      `json:"error,omitempty"`
}

func NewTxResult(txID solana.Hash, res *runtime.Result, err error) *TxResult {
	r := &TxResult{TxID: txID}
	if err == nil {
		r.Success = true
		r.Slot = res.Slot
		return r
	}
	r.Error = err.Error()
	var ierr *runtime.InstructionError
	if errors.As(err, &ierr) {
		r.Instruction = ierr.Index
	}
	if code, ok := programerr.CodeOf(err); ok {
		r.Code = code
	}
	return r
}

// ProgramError returns the program error carried by [r], if any.
func (r *TxResult) ProgramError() (*programerr.Error, bool) {
	if r.Code == 0 {
		return nil, false
	}
	perr, err := programerr.FromCode(r.Code)
	return perr, err == nil
}
