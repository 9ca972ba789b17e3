// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import "errors"

var (
	ErrInsufficientLength = errors.New("insufficient length")
	ErrTooLarge           = errors.New("too large")
	ErrInvalidBool        = errors.New("invalid bool")
	ErrExtraBytes         = errors.New("extra bytes")
	ErrInvalidSize        = errors.New("invalid size")
)
