// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package tstate

import (
	"context"

	"github.com/nadrunner/runnervm/state"
)

const defaultOps = 4

var _ state.Mutable = (*TStateView)(nil)

type op struct {
	k string

	pastV       []byte
	pastChanged bool
}

// TStateView stages changes to a fixed set of keys. Nothing it holds is
// visible to [TState] until [Commit].
type TStateView struct {
	ts                 *TState
	pendingChangedKeys map[string][]byte

	// Ops is a record of all operations performed on the view. Tracking
	// operations allows for reverting state to a certain point-in-time.
	ops []*op

	scope        state.Keys
	scopeStorage map[string][]byte
}

// NewView returns a view over [scope]. [storage] holds the values of scope
// keys that already exist.
func (ts *TState) NewView(scope state.Keys, storage map[string][]byte) *TStateView {
	return &TStateView{
		ts:                 ts,
		pendingChangedKeys: make(map[string][]byte, len(scope)),

		ops: make([]*op, 0, defaultOps),

		scope:        scope,
		scopeStorage: storage,
	}
}

// Rollback restores the view to the ts.ops[restorePoint] operation.
func (ts *TStateView) Rollback(_ context.Context, restorePoint int) {
	for i := len(ts.ops) - 1; i >= restorePoint; i-- {
		op := ts.ops[i]

		// Not touched before this op: drop the pending change entirely.
		if !op.pastChanged {
			delete(ts.pendingChangedKeys, op.k)
			continue
		}
		ts.pendingChangedKeys[op.k] = op.pastV
	}
	ts.ops = ts.ops[:restorePoint]
}

// OpIndex returns the number of operations done on the view.
func (ts *TStateView) OpIndex() int {
	return len(ts.ops)
}

func (ts *TStateView) checkScope(_ context.Context, k []byte, perm state.Permissions) bool {
	return ts.scope[string(k)].Has(perm)
}

// GetValue returns the value of [key] as seen by this view.
func (ts *TStateView) GetValue(ctx context.Context, key []byte) ([]byte, error) {
	if !ts.checkScope(ctx, key, state.Read) {
		return nil, ErrInvalidKeyOrPermission
	}
	v, _, exists := ts.getValue(ctx, string(key))
	if !exists {
		return nil, state.ErrNotFound
	}
	return v, nil
}

// Exists returns whether [key] was changed by this view or its [TState] and
// whether it currently exists.
func (ts *TStateView) Exists(ctx context.Context, key []byte) (bool, bool, error) {
	if !ts.checkScope(ctx, key, state.Read) {
		return false, false, ErrInvalidKeyOrPermission
	}
	_, changed, exists := ts.getValue(ctx, string(key))
	return changed, exists, nil
}

func (ts *TStateView) getValue(ctx context.Context, key string) ([]byte, bool, bool) {
	if v, ok := ts.pendingChangedKeys[key]; ok {
		return v, true, true
	}
	if v, changed := ts.ts.getChangedValue(ctx, key); changed {
		return v, true, true
	}
	if v, ok := ts.scopeStorage[key]; ok {
		return v, false, true
	}
	return nil, false, false
}

// Insert sets [key] to [value]. Updating an existing key needs [state.Write];
// creating one needs [state.Allocate].
//
// Any bytes passed into [Insert] are consumed by the view and should not be
// modified after this call.
func (ts *TStateView) Insert(ctx context.Context, key []byte, value []byte) error {
	k := string(key)
	past, changed, exists := ts.getValue(ctx, k)
	perm := state.Allocate
	if exists {
		perm = state.Write
	}
	if !ts.checkScope(ctx, key, perm) {
		return ErrInvalidKeyOrPermission
	}
	ts.pendingChangedKeys[k] = value
	ts.ops = append(ts.ops, &op{
		k: k,

		pastV:       past,
		pastChanged: changed,
	})
	return nil
}

func (ts *TStateView) PendingChanges() int {
	return len(ts.pendingChangedKeys)
}

// Commit hands every pending change to the parent [TState].
func (ts *TStateView) Commit() {
	ts.ts.l.Lock()
	defer ts.ts.l.Unlock()

	for k, v := range ts.pendingChangedKeys {
		ts.ts.changedKeys[k] = v
	}
	ts.ts.ops += len(ts.ops)
}
