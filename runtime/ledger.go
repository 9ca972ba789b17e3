// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package runtime hosts the token program: it stores account slots, verifies
// and executes transactions, and keeps the ledger clock.
package runtime

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/set"
	"github.com/gagliardetto/solana-go"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/nadrunner/runnervm/codec"
	"github.com/nadrunner/runnervm/consts"
	"github.com/nadrunner/runnervm/host"
	"github.com/nadrunner/runnervm/program"
	"github.com/nadrunner/runnervm/state"
	"github.com/nadrunner/runnervm/tstate"
)

type Config struct {
	Rent                 host.Rent
	SlotDuration         time.Duration
	SlotsPerEpoch        uint64
	AllowAccountCreation bool
}

type Ledger struct {
	log     *zap.Logger
	tracer  trace.Tracer
	db      state.Database
	program *program.Program
	rent    host.Rent
	clock   *Clock
	metrics *metrics

	allowAccountCreation bool

	listenersL sync.RWMutex
	listeners  []Listener

	// Execute and CreateAccount hold [l] for their whole read-modify-write.
	l sync.Mutex
}

// Result describes a committed transaction.
type Result struct {
	TxID solana.Hash `json:"txId"`
	Slot uint64      `json:"slot"`
}

// Listener is told about every transaction [Ledger.Execute] finishes. [res]
// is nil when [err] is not.
type Listener interface {
	Executed(tx *Transaction, res *Result, err error)
}

func New(
	ctx context.Context,
	log *zap.Logger,
	tracer trace.Tracer,
	db state.Database,
	prog *program.Program,
	cfg Config,
	reg prometheus.Registerer,
) (*Ledger, error) {
	m, err := newMetrics(reg)
	if err != nil {
		return nil, err
	}
	genesis, err := loadGenesis(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("load genesis: %w", err)
	}
	log.Info("ledger ready",
		zap.Stringer("program", prog.ID()),
		zap.Time("genesis", genesis),
		zap.Duration("slotDuration", cfg.SlotDuration),
	)
	return &Ledger{
		log:                  log,
		tracer:               tracer,
		db:                   db,
		program:              prog,
		rent:                 cfg.Rent,
		clock:                NewClock(genesis, cfg.SlotDuration, cfg.SlotsPerEpoch),
		metrics:              m,
		allowAccountCreation: cfg.AllowAccountCreation,
	}, nil
}

func loadGenesis(ctx context.Context, db state.Database) (time.Time, error) {
	v, err := db.GetValue(ctx, genesisKey())
	switch {
	case err == nil:
		p := codec.NewReader(v)
		ns := p.UnpackInt64()
		return time.Unix(0, ns), p.Err()
	case !errors.Is(err, state.ErrNotFound):
		return time.Time{}, err
	}
	now := time.Now()
	p := codec.NewWriter(consts.Uint64Len, consts.Uint64Len)
	p.PackInt64(now.UnixNano())
	b := db.NewBatch()
	if err := b.Put(genesisKey(), p.Bytes()); err != nil {
		return time.Time{}, err
	}
	return now, b.Write()
}

func (l *Ledger) ProgramID() solana.PublicKey {
	return l.program.ID()
}

func (l *Ledger) Rent() host.Rent {
	return l.rent
}

func (l *Ledger) Clock() *Clock {
	return l.clock
}

func (l *Ledger) AllowAccountCreation() bool {
	return l.allowAccountCreation
}

func (l *Ledger) AddListener(li Listener) {
	l.listenersL.Lock()
	defer l.listenersL.Unlock()

	l.listeners = append(l.listeners, li)
}

func (l *Ledger) notify(tx *Transaction, res *Result, err error) {
	l.listenersL.RLock()
	defer l.listenersL.RUnlock()

	for _, li := range l.listeners {
		li.Executed(tx, res, err)
	}
}

func (l *Ledger) sysvar(id solana.PublicKey) (*host.AccountInfo, bool) {
	var data []byte
	switch id {
	case consts.SysvarRentID:
		data = l.rent.Bytes()
	case consts.SysvarClockID:
		data = l.clock.Sysvar().Bytes()
	default:
		return nil, false
	}
	return &host.AccountInfo{
		Key:      id,
		Owner:    consts.SysvarProgramID,
		Lamports: l.rent.MinimumBalance(len(data)),
		Data:     data,
	}, true
}

// load returns the handle for [id] as seen through [r]. Missing accounts look
// like empty system accounts.
func (l *Ledger) load(ctx context.Context, r state.Immutable, id solana.PublicKey) (*host.AccountInfo, error) {
	if info, ok := l.sysvar(id); ok {
		return info, nil
	}
	raw, err := r.GetValue(ctx, SlotKey(id))
	if errors.Is(err, state.ErrNotFound) {
		return &host.AccountInfo{Key: id, Owner: consts.SystemProgramID}, nil
	}
	if err != nil {
		return nil, err
	}
	slot, err := ParseSlot(raw)
	if err != nil {
		return nil, fmt.Errorf("corrupt slot %s: %w", id, err)
	}
	return &host.AccountInfo{
		Key:      id,
		Owner:    slot.Owner,
		Lamports: slot.Lamports,
		Data:     slot.Data,
	}, nil
}

// Account returns the stored slot for [id]. Sysvars are synthesized.
func (l *Ledger) Account(ctx context.Context, id solana.PublicKey) (*Slot, error) {
	if info, ok := l.sysvar(id); ok {
		return &Slot{Owner: info.Owner, Lamports: info.Lamports, Data: info.Data}, nil
	}
	raw, err := l.db.GetValue(ctx, SlotKey(id))
	if err != nil {
		return nil, err
	}
	return ParseSlot(raw)
}

// Execute verifies [tx] and runs its instructions in order. Either every
// instruction succeeds and all changed slots are committed together, or
// nothing is written.
func (l *Ledger) Execute(ctx context.Context, tx *Transaction) (*Result, error) {
	ctx, span := l.tracer.Start(ctx, "Ledger.Execute")
	defer span.End()

	start := time.Now()
	defer func() {
		l.metrics.execute.Observe(float64(time.Since(start)))
	}()

	res, err := l.execute(ctx, tx)
	l.notify(tx, res, err)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		var ierr *InstructionError
		if errors.As(err, &ierr) {
			l.metrics.txsFailed.Inc()
		} else {
			l.metrics.txsRejected.Inc()
		}
		l.log.Debug("transaction failed",
			zap.Stringer("txID", tx.ID()),
			zap.Error(err),
		)
		return nil, err
	}
	span.SetAttributes(
		attribute.String("txID", res.TxID.String()),
		attribute.Int64("slot", int64(res.Slot)),
	)
	return res, nil
}

func (l *Ledger) execute(ctx context.Context, tx *Transaction) (*Result, error) {
	if err := tx.Verify(); err != nil {
		return nil, err
	}
	for _, ix := range tx.Message.Instructions {
		if ix.ProgramID != l.program.ID() {
			return nil, fmt.Errorf("%w: %s", ErrUnknownProgram, ix.ProgramID)
		}
	}

	l.l.Lock()
	defer l.l.Unlock()

	txID := tx.ID()
	marker := MarkerKey(txID)
	scope := make(state.Keys)
	scope.Add(string(marker), state.Allocate)
	for _, ix := range tx.Message.Instructions {
		for _, meta := range ix.Accounts {
			perm := state.Read
			if meta.IsWritable {
				perm = state.Write
			}
			scope.Add(string(SlotKey(meta.PublicKey)), perm)
		}
	}
	storage, err := l.prefetch(ctx, scope)
	if err != nil {
		return nil, err
	}
	ts := tstate.New(len(scope))
	view := ts.NewView(scope, storage)
	_, seen, err := view.Exists(ctx, marker)
	if err != nil {
		return nil, err
	}
	if seen {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateTransaction, txID)
	}

	var (
		signers = set.Of(tx.Message.Signers()...)
		handles = make(map[solana.PublicKey]*host.AccountInfo)
		staged  = make(map[solana.PublicKey][]byte)
	)
	for _, ix := range tx.Message.Instructions {
		for _, meta := range ix.Accounts {
			if _, ok := handles[meta.PublicKey]; ok {
				continue
			}
			info, err := l.load(ctx, view, meta.PublicKey)
			if err != nil {
				return nil, err
			}
			info.IsSigner = signers.Contains(meta.PublicKey)
			handles[meta.PublicKey] = info
			staged[meta.PublicKey] = append([]byte(nil), info.Data...)
		}
	}

	for i, ix := range tx.Message.Instructions {
		accounts := make([]*host.AccountInfo, len(ix.Accounts))
		for j, meta := range ix.Accounts {
			accounts[j] = handles[meta.PublicKey]
		}
		if err := l.program.Process(accounts, ix.Data); err != nil {
			return nil, &InstructionError{Index: i, Err: err}
		}
		if err := l.stage(ctx, view, accounts, staged); err != nil {
			return nil, &InstructionError{Index: i, Err: err}
		}
	}

	slot := l.clock.CurrentSlot()
	p := codec.NewWriter(consts.Uint64Len, consts.Uint64Len)
	p.PackUint64(slot)
	if err := view.Insert(ctx, marker, p.Bytes()); err != nil {
		return nil, err
	}
	view.Commit()
	if err := ts.WriteChanges(ctx, l.tracer, l.db.NewBatch()); err != nil {
		return nil, fmt.Errorf("commit %s: %w", txID, err)
	}

	l.metrics.txsExecuted.Inc()
	l.metrics.stateChanges.Add(float64(ts.PendingChanges()))
	l.metrics.stateOps.Add(float64(ts.OpIndex()))
	l.metrics.slot.Set(float64(slot))
	for _, ix := range tx.Message.Instructions {
		l.metrics.instructions.WithLabelValues(program.Opcode(ix.Data[0]).String()).Inc()
	}
	l.log.Debug("executed transaction",
		zap.Stringer("txID", txID),
		zap.Uint64("slot", slot),
		zap.Int("instructions", len(tx.Message.Instructions)),
	)
	return &Result{TxID: txID, Slot: slot}, nil
}

// prefetch reads every stored key in [scope].
func (l *Ledger) prefetch(ctx context.Context, scope state.Keys) (map[string][]byte, error) {
	storage := make(map[string][]byte, len(scope))
	for k := range scope {
		v, err := l.db.GetValue(ctx, []byte(k))
		switch {
		case err == nil:
			storage[k] = v
		case !errors.Is(err, state.ErrNotFound):
			return nil, err
		}
	}
	return storage, nil
}

// stage writes the accounts an instruction changed into [view]. [staged]
// holds the data last written for each account. Either every changed account
// is staged or [view] and [staged] are left as they were.
func (l *Ledger) stage(
	ctx context.Context,
	view *tstate.TStateView,
	accounts []*host.AccountInfo,
	staged map[solana.PublicKey][]byte,
) error {
	var (
		restore = view.OpIndex()
		changed = make(map[solana.PublicKey][]byte)
	)
	for _, info := range accounts {
		if _, ok := l.sysvar(info.Key); ok || bytes.Equal(staged[info.Key], info.Data) {
			continue
		}
		if _, ok := changed[info.Key]; ok {
			continue
		}
		b, err := (&Slot{Owner: info.Owner, Lamports: info.Lamports, Data: info.Data}).Bytes()
		if err == nil {
			err = view.Insert(ctx, SlotKey(info.Key), b)
		}
		if err != nil {
			view.Rollback(ctx, restore)
			if errors.Is(err, tstate.ErrInvalidKeyOrPermission) {
				return fmt.Errorf("%w: %s", ErrReadOnlyModified, info.Key)
			}
			return err
		}
		changed[info.Key] = append([]byte(nil), info.Data...)
	}
	for id, data := range changed {
		staged[id] = data
	}
	return nil
}

// CreateAccount allocates [size] zeroed bytes at [id], assigned to the
// program. A zero [lamports] funds the slot at the rent-exempt minimum.
func (l *Ledger) CreateAccount(ctx context.Context, id solana.PublicKey, lamports uint64, size int) (*Slot, error) {
	ctx, span := l.tracer.Start(ctx, "Ledger.CreateAccount")
	defer span.End()

	if !l.allowAccountCreation {
		return nil, ErrAccountCreationClosed
	}
	if size <= 0 || size > MaxAccountSize {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAccountSize, size)
	}
	if _, ok := l.sysvar(id); ok {
		return nil, fmt.Errorf("%w: %s", ErrAccountExists, id)
	}
	if lamports == 0 {
		lamports = l.rent.MinimumBalance(size)
	}

	l.l.Lock()
	defer l.l.Unlock()

	key := SlotKey(id)
	switch _, err := l.db.GetValue(ctx, key); {
	case err == nil:
		return nil, fmt.Errorf("%w: %s", ErrAccountExists, id)
	case !errors.Is(err, state.ErrNotFound):
		return nil, err
	}
	slot := &Slot{Owner: l.program.ID(), Lamports: lamports, Data: make([]byte, size)}
	b, err := slot.Bytes()
	if err != nil {
		return nil, err
	}
	batch := l.db.NewBatch()
	if err := batch.Put(key, b); err != nil {
		return nil, err
	}
	if err := batch.Write(); err != nil {
		return nil, err
	}
	l.metrics.accountsCreated.Inc()
	l.log.Info("created account",
		zap.Stringer("account", id),
		zap.Int("size", size),
		zap.Uint64("lamports", lamports),
	)
	return slot, nil
}
