// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"context"

	"github.com/ava-labs/avalanchego/database"
)

// ErrNotFound is returned by every backend for a missing key.
var ErrNotFound = database.ErrNotFound

type Immutable interface {
	GetValue(ctx context.Context, key []byte) (value []byte, err error)
}

type Mutable interface {
	Immutable

	Insert(ctx context.Context, key []byte, value []byte) error
}

// Batch collects writes that land on disk together on [Write] or not at all.
type Batch interface {
	Put(key []byte, value []byte) error
	Write() error
}

// Database is a key-value store that commits through batches.
type Database interface {
	Immutable

	NewBatch() Batch
	Close() error
}
