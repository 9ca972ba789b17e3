// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"context"

	"github.com/ava-labs/avalanchego/database/memdb"
)

var _ Database = (*Memory)(nil)

// Memory is a [Database] that lives only as long as the process.
type Memory struct {
	db *memdb.Database
}

func NewMemory() *Memory {
	return &Memory{db: memdb.New()}
}

func (m *Memory) GetValue(_ context.Context, key []byte) ([]byte, error) {
	return m.db.Get(key)
}

func (m *Memory) NewBatch() Batch {
	return m.db.NewBatch()
}

func (m *Memory) Close() error {
	return m.db.Close()
}
