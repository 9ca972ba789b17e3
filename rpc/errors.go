// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import "errors"

var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrNotProgramAccount = errors.New("account is not owned by the program")
)
