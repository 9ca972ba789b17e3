// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"github.com/gagliardetto/solana-go"
	"github.com/near/borsh-go"

	"github.com/nadrunner/runnervm/consts"
)

const (
	slotPrefix byte = iota
	markerPrefix
	genesisPrefix
)

// MaxAccountSize bounds the data a single slot can be created with.
const MaxAccountSize = 10 * 1024

// Slot is one account as the ledger stores it.
type Slot struct {
	Owner    solana.PublicKey `json:"owner"`
	Lamports uint64           `json:"lamports"`
	Data     []byte           `json:"data"`
}

func (s *Slot) Bytes() ([]byte, error) {
	return borsh.Serialize(*s)
}

func ParseSlot(b []byte) (*Slot, error) {
	var s Slot
	if err := borsh.Deserialize(&s, b); err != nil {
		return nil, err
	}
	return &s, nil
}

func SlotKey(id solana.PublicKey) []byte {
	k := make([]byte, 1+consts.IDLen)
	k[0] = slotPrefix
	copy(k[1:], id[:])
	return k
}

// MarkerKey records that the transaction [txID] has been applied.
func MarkerKey(txID solana.Hash) []byte {
	k := make([]byte, 1+consts.IDLen)
	k[0] = markerPrefix
	copy(k[1:], txID[:])
	return k
}

func genesisKey() []byte {
	return []byte{genesisPrefix}
}
