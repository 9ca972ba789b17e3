// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"context"
	"time"

	"go.uber.org/atomic"

	"github.com/nadrunner/runnervm/host"
)

const (
	DefaultSlotDuration  = 400 * time.Millisecond
	DefaultSlotsPerEpoch = 432_000
)

// Clock derives the ledger slot from the time elapsed since genesis. It only
// moves forward.
type Clock struct {
	genesis       time.Time
	slotDuration  time.Duration
	slotsPerEpoch uint64
	now           func() time.Time

	slot atomic.Uint64
}

func NewClock(genesis time.Time, slotDuration time.Duration, slotsPerEpoch uint64) *Clock {
	if slotDuration <= 0 {
		slotDuration = DefaultSlotDuration
	}
	if slotsPerEpoch == 0 {
		slotsPerEpoch = DefaultSlotsPerEpoch
	}
	c := &Clock{
		genesis:       genesis,
		slotDuration:  slotDuration,
		slotsPerEpoch: slotsPerEpoch,
		now:           time.Now,
	}
	c.Tick()
	return c
}

// Tick moves the slot up to the current time.
func (c *Clock) Tick() uint64 {
	elapsed := c.now().Sub(c.genesis)
	var slot uint64
	if elapsed > 0 {
		slot = uint64(elapsed / c.slotDuration)
	}

	for {
		cur := c.slot.Load()
		if slot <= cur {
			return cur
		}
		if c.slot.CompareAndSwap(cur, slot) {
			return slot
		}
	}
}

// Run ticks once per slot until [ctx] is done.
func (c *Clock) Run(ctx context.Context) {
	t := time.NewTicker(c.slotDuration)
	defer t.Stop()

	for {
		select {
		case <-t.C:
			c.Tick()
		case <-ctx.Done():
			return
		}
	}
}

func (c *Clock) CurrentSlot() uint64 {
	return c.slot.Load()
}

// Sysvar returns the clock record handed to instructions.
func (c *Clock) Sysvar() host.Clock {
	slot := c.CurrentSlot()
	epoch := slot / c.slotsPerEpoch
	epochStart := c.genesis.Add(time.Duration(epoch*c.slotsPerEpoch) * c.slotDuration)
	return host.Clock{
		Slot:                slot,
		EpochStartTimestamp: epochStart.Unix(),
		Epoch:               epoch,
		LeaderScheduleEpoch: epoch + 1,
		UnixTimestamp:       c.genesis.Add(time.Duration(slot) * c.slotDuration).Unix(),
	}
}
