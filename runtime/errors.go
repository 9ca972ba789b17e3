// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"errors"
	"fmt"
)

var (
	ErrMissingSignature      = errors.New("missing signature")
	ErrTooManySignatures     = errors.New("too many signatures")
	ErrInvalidSignature      = errors.New("invalid transaction signature")
	ErrNoInstructions        = errors.New("no instructions")
	ErrTooManyInstructions   = errors.New("too many instructions")
	ErrTooManyAccounts       = errors.New("too many accounts")
	ErrInvalidAccountFlags   = errors.New("invalid account flags")
	ErrUnknownProgram        = errors.New("unknown program")
	ErrDuplicateTransaction  = errors.New("duplicate transaction")
	ErrReadOnlyModified      = errors.New("read-only account modified")
	ErrAccountExists         = errors.New("account already exists")
	ErrInvalidAccountSize    = errors.New("invalid account size")
	ErrAccountCreationClosed = errors.New("account creation disabled")
)

// InstructionError reports which instruction of a transaction failed. The
// program error is available through [errors.Is] and [errors.As].
type InstructionError struct {
	Index int
	Err   error
}

func (e *InstructionError) Error() string {
	return fmt.Sprintf("instruction %d: %s", e.Index, e.Err)
}

func (e *InstructionError) Unwrap() error {
	return e.Err
}
