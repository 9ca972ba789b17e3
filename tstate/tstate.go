// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package tstate

import (
	"context"
	"sync"

	"github.com/ava-labs/avalanchego/trace"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/nadrunner/runnervm/state"
)

// TState collects the changes of committed views until they are written to a
// database batch.
type TState struct {
	l           sync.RWMutex
	changedKeys map[string][]byte
	ops         int
}

// New returns a new instance of TState.
//
// [changedSize] is an estimate of the number of keys that will be changed.
func New(changedSize int) *TState {
	return &TState{changedKeys: make(map[string][]byte, changedSize)}
}

func (ts *TState) getChangedValue(_ context.Context, key string) ([]byte, bool) {
	ts.l.RLock()
	defer ts.l.RUnlock()

	v, ok := ts.changedKeys[key]
	return v, ok
}

// OpIndex returns the number of operations committed by views.
func (ts *TState) OpIndex() int {
	ts.l.RLock()
	defer ts.l.RUnlock()

	return ts.ops
}

// PendingChanges returns the number of keys that will be written.
func (ts *TState) PendingChanges() int {
	ts.l.RLock()
	defer ts.l.RUnlock()

	return len(ts.changedKeys)
}

// WriteChanges stages every change in [batch] and writes it. Either all of
// them reach the database or none do.
//
// Once [WriteChanges] is called, [TState] should not be used again.
func (ts *TState) WriteChanges(
	ctx context.Context,
	t trace.Tracer, //nolint:interfacer
	batch state.Batch,
) error {
	_, span := t.Start(ctx, "TState.WriteChanges")
	defer span.End()

	ts.l.RLock()
	defer ts.l.RUnlock()

	span.SetAttributes(attribute.Int("changes", len(ts.changedKeys)))
	for k, v := range ts.changedKeys {
		if err := batch.Put([]byte(k), v); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return err
		}
	}
	return batch.Write()
}
