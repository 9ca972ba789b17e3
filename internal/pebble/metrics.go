// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pebble

import (
	"strconv"
	"time"

	"github.com/ava-labs/avalanchego/utils/metric"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/cockroachdb/pebble"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace       = "store"
	metricsInterval = 10 * time.Second
)

// metrics tracks how ledger commits and slot reads land on disk.
type metrics struct {
	readLatency   metric.Averager
	commitLatency metric.Averager
	compaction    metric.Averager
	stallStart    time.Time
	stall         metric.Averager

	commits       prometheus.Counter
	commitsFailed prometheus.Counter
	keysWritten   prometheus.Counter
	bytesWritten  prometheus.Counter
	compactions   *prometheus.CounterVec

	diskUsage prometheus.Gauge
	readAmp   prometheus.Gauge
	tombstones  prometheus.Gauge
}

func newMetrics(r prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		commits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commits",
			Help:      "number of ledger batches committed",
		}),
		commitsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commits_failed",
			Help:      "number of ledger batches the store refused",
		}),
		keysWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "keys_written",
			Help:      "number of slots and markers written",
		}),
		bytesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_written",
			Help:      "encoded size of committed batches",
		}),
		compactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "compactions",
			Help:      "number of finished compactions by output level",
		}, []string{"level"}),
		diskUsage: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "disk_usage",
			Help:      "bytes on disk used by the ledger",
		}),
		readAmp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "read_amp",
			Help:      "sublevels and levels a slot read may visit",
		}),
		tombstones: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tombstones",
			Help:      "approximate count of internal tombstones",
		}),
	}

	var err error
	for _, a := range []struct {
		dst  *metric.Averager
		name string
		help string
	}{
		{&m.readLatency, "store_read", "time spent reading slots"},
		{&m.commitLatency, "store_commit", "time spent committing ledger batches"},
		{&m.compaction, "store_compaction", "time spent compacting"},
		{&m.stall, "store_write_stall", "time writes waited on compactions"},
	} {
		*a.dst, err = metric.NewAverager("", a.name, a.help, r)
		if err != nil {
			return nil, err
		}
	}

	errs := wrappers.Errs{}
	errs.Add(
		r.Register(m.commits),
		r.Register(m.commitsFailed),
		r.Register(m.keysWritten),
		r.Register(m.bytesWritten),
		r.Register(m.compactions),
		r.Register(m.diskUsage),
		r.Register(m.readAmp),
		r.Register(m.tombstones),
	)
	return m, errs.Err
}

// committed records a batch of [keys] entries and [size] encoded bytes that
// took [d] to commit.
func (m *metrics) committed(keys uint32, size int, d time.Duration) {
	m.commits.Inc()
	m.keysWritten.Add(float64(keys))
	m.bytesWritten.Add(float64(size))
	m.commitLatency.Observe(float64(d))
}

func (d *Database) onCompactionEnd(info pebble.CompactionInfo) {
	if info.Err != nil {
		return
	}
	d.metrics.compactions.WithLabelValues(strconv.Itoa(info.Output.Level)).Inc()
	d.metrics.compaction.Observe(float64(info.TotalDuration))
}

func (d *Database) onWriteStallBegin(pebble.WriteStallBeginInfo) {
	d.metrics.stallStart = time.Now()
}

func (d *Database) onWriteStallEnd() {
	d.metrics.stall.Observe(float64(time.Since(d.metrics.stallStart)))
}

func (d *Database) collectMetrics() {
	t := time.NewTicker(metricsInterval)
	defer t.Stop()

	for {
		select {
		case <-t.C:
			d.sample()
		case <-d.closing:
			return
		}
	}
}

func (d *Database) sample() {
	m := d.db.Metrics()
	d.metrics.diskUsage.Set(float64(m.DiskSpaceUsage()))
	d.metrics.readAmp.Set(float64(m.ReadAmp()))
	d.metrics.tombstones.Set(float64(m.Keys.TombstoneCount))
}
