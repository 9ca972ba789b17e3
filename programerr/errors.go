// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package programerr defines every error an instruction can surface and the
// stable numeric code each one maps to.
package programerr

import (
	"errors"
	"fmt"
)

// kind separates host-defined errors from the program's own custom variants.
type kind uint8

const (
	builtinKind kind = iota
	customKind
)

// builtinShift places builtin indices in the upper half of the code so they
// never collide with custom codes.
const builtinShift = 32

// customZero is what a custom error with index 0 encodes to, since a zero code
// means success.
const customZero = uint64(1) << builtinShift

// Error is a program failure with a fixed code. Compare with [errors.Is]
// against the exported values below.
type Error struct {
	kind  kind
	index uint32
	name  string
}

func (e *Error) Error() string {
	return e.name
}

// Code returns the numeric code reported to callers.
func (e *Error) Code() uint64 {
	if e.kind == builtinKind {
		return uint64(e.index) << builtinShift
	}
	if e.index == 0 {
		return customZero
	}
	return uint64(e.index)
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.kind == t.kind && e.index == t.index
}

func builtin(index uint32, name string) *Error {
	return &Error{kind: builtinKind, index: index, name: name}
}

func custom(index uint32, name string) *Error {
	return &Error{kind: customKind, index: index, name: name}
}

// Builtin errors, raised through the host's conventions.
var (
	InvalidArgument           = builtin(2, "invalid argument")
	InvalidInstructionData    = builtin(3, "invalid instruction data")
	InvalidAccountData        = builtin(4, "invalid account data")
	InsufficientFunds         = builtin(6, "insufficient funds")
	IncorrectProgramID        = builtin(7, "incorrect program id")
	MissingRequiredSignature  = builtin(8, "missing required signature")
	AccountAlreadyInitialized = builtin(9, "account already initialized")
	UninitializedAccount      = builtin(10, "uninitialized account")
	NotEnoughAccountKeys      = builtin(11, "not enough account keys")
	AccountNotRentExempt      = builtin(16, "account not rent exempt")
	ArithmeticOverflow        = builtin(24, "arithmetic overflow")
)

// Custom errors owned by this program.
var (
	// InvalidSignature is only raised when score signatures are verified.
	InvalidSignature    = custom(0, "invalid score signature")
	ScoreExceedsMaximum = custom(1, "score exceeds maximum")
	// MintAuthorityClosed is reserved; no instruction raises it.
	MintAuthorityClosed = custom(2, "mint authority closed")
)

var all = []*Error{
	InvalidArgument,
	InvalidInstructionData,
	InvalidAccountData,
	InsufficientFunds,
	IncorrectProgramID,
	MissingRequiredSignature,
	AccountAlreadyInitialized,
	UninitializedAccount,
	NotEnoughAccountKeys,
	AccountNotRentExempt,
	ArithmeticOverflow,
	InvalidSignature,
	ScoreExceedsMaximum,
	MintAuthorityClosed,
}

var ErrUnknownCode = errors.New("unknown error code")

// FromCode maps a numeric code back to its error.
func FromCode(code uint64) (*Error, error) {
	for _, e := range all {
		if e.Code() == code {
			return e, nil
		}
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownCode, code)
}

// CodeOf returns the code carried by [err], if any.
func CodeOf(err error) (uint64, bool) {
	var perr *Error
	if !errors.As(err, &perr) {
		return 0, false
	}
	return perr.Code(), true
}
