// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package pebble persists ledger state on disk with CockroachDB's Pebble.
package pebble

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/ava-labs/avalanchego/utils/units"
	"github.com/cockroachdb/pebble"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nadrunner/runnervm/state"
)

var _ state.Database = (*Database)(nil)

type Config struct {
	CacheSize                   int64 `json:"cacheSize" yaml:"cacheSize"`
	BytesPerSync                int   `json:"bytesPerSync" yaml:"bytesPerSync"`
	WALBytesPerSync             int   `json:"walBytesPerSync" yaml:"walBytesPerSync"`
	MemTableStopWritesThreshold int   `json:"memTableStopWritesThreshold" yaml:"memTableStopWritesThreshold"`
	MemTableSize                int   `json:"memTableSize" yaml:"memTableSize"`
	MaxOpenFiles                int   `json:"maxOpenFiles" yaml:"maxOpenFiles"`
	ConcurrentCompactions       int   `json:"concurrentCompactions" yaml:"concurrentCompactions"`
	Sync                        bool  `json:"sync" yaml:"sync"`
}

// NewDefaultConfig is sized for a single ledger process. Account slots are
// small, so the cache and memtables are modest.
func NewDefaultConfig() Config {
	return Config{
		CacheSize:                   64 * units.MiB,
		BytesPerSync:                units.MiB,
		WALBytesPerSync:             units.MiB,
		MemTableStopWritesThreshold: 4,
		MemTableSize:                16 * units.MiB,
		MaxOpenFiles:                1024,
		ConcurrentCompactions:       1,
		Sync:                        true,
	}
}

type Database struct {
	db      *pebble.DB
	metrics *metrics

	closed    bool
	closeLock sync.RWMutex
	closing   chan struct{}
	done      sync.WaitGroup
	writeOpts *pebble.WriteOptions
}

var ErrClosed = errors.New("database closed")

// New opens (or creates) the database at [file] and registers its metrics on
// [reg].
func New(file string, cfg Config, reg prometheus.Registerer) (*Database, error) {
	m, err := newMetrics(reg)
	if err != nil {
		return nil, err
	}
	d := &Database{
		metrics:   m,
		closing:   make(chan struct{}),
		writeOpts: &pebble.WriteOptions{Sync: cfg.Sync},
	}
	opts := &pebble.Options{
		Cache:                       pebble.NewCache(cfg.CacheSize),
		BytesPerSync:                cfg.BytesPerSync,
		WALBytesPerSync:             cfg.WALBytesPerSync,
		MemTableStopWritesThreshold: cfg.MemTableStopWritesThreshold,
		MemTableSize:                uint64(cfg.MemTableSize),
		MaxOpenFiles:                cfg.MaxOpenFiles,
		MaxConcurrentCompactions:    func() int { return cfg.ConcurrentCompactions },
	}
	opts.EventListener = &pebble.EventListener{
		CompactionEnd:   d.onCompactionEnd,
		WriteStallBegin: d.onWriteStallBegin,
		WriteStallEnd:   d.onWriteStallEnd,
	}
	db, err := pebble.Open(file, opts)
	if err != nil {
		return nil, err
	}
	d.db = db
	d.done.Add(1)
	go func() {
		defer d.done.Done()
		d.collectMetrics()
	}()
	return d, nil
}

func (d *Database) GetValue(_ context.Context, key []byte) ([]byte, error) {
	d.closeLock.RLock()
	defer d.closeLock.RUnlock()

	if d.closed {
		return nil, ErrClosed
	}
	start := time.Now()
	data, closer, err := d.db.Get(key)
	d.metrics.readLatency.Observe(float64(time.Since(start)))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, state.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return copyAndClose(data, closer)
}

func copyAndClose(data []byte, closer io.Closer) ([]byte, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return out, closer.Close()
}

func (d *Database) NewBatch() state.Batch {
	return &batch{d: d, b: d.db.NewBatch()}
}

func (d *Database) Close() error {
	d.closeLock.Lock()
	if d.closed {
		d.closeLock.Unlock()
		return ErrClosed
	}
	d.closed = true
	close(d.closing)
	d.closeLock.Unlock()

	d.done.Wait()
	return d.db.Close()
}

type batch struct {
	d *Database
	b *pebble.Batch
}

func (b *batch) Put(key []byte, value []byte) error {
	return b.b.Set(key, value, nil)
}

// Write commits the batch. The batch is released whether or not the commit
// succeeds and must not be reused.
func (b *batch) Write() error {
	b.d.closeLock.RLock()
	defer b.d.closeLock.RUnlock()

	if b.d.closed {
		_ = b.b.Close()
		return ErrClosed
	}
	var (
		keys  = b.b.Count()
		size  = b.b.Len()
		start = time.Now()
	)
	if err := b.b.Commit(b.d.writeOpts); err != nil {
		b.d.metrics.commitsFailed.Inc()
		_ = b.b.Close()
		return err
	}
	b.d.metrics.committed(keys, size, time.Since(start))
	return b.b.Close()
}
