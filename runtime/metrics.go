// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"github.com/ava-labs/avalanchego/utils/metric"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	txsExecuted     prometheus.Counter
	txsFailed       prometheus.Counter
	txsRejected     prometheus.Counter
	instructions    *prometheus.CounterVec
	stateChanges    prometheus.Counter
	stateOps        prometheus.Counter
	accountsCreated prometheus.Counter
	slot            prometheus.Gauge
	execute         metric.Averager
}

func newMetrics(r prometheus.Registerer) (*metrics, error) {
	execute, err := metric.NewAverager(
		"",
		"ledger_execute",
		"time spent executing transactions",
		r,
	)
	if err != nil {
		return nil, err
	}
	m := &metrics{
		execute: execute,
		txsExecuted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "txs_executed",
			Help:      "number of transactions committed",
		}),
		txsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "txs_failed",
			Help:      "number of transactions an instruction rejected",
		}),
		txsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "txs_rejected",
			Help:      "number of malformed, unsigned, or replayed transactions",
		}),
		instructions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "instructions",
			Help:      "number of committed instructions by name",
		}, []string{"instruction"}),
		stateChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "state_changes",
			Help:      "number of keys written",
		}),
		stateOps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "state_ops",
			Help:      "number of staged slot writes, counting rewrites of the same key",
		}),
		accountsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "accounts_created",
			Help:      "number of provisioned accounts",
		}),
		slot: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ledger",
			Name:      "slot",
			Help:      "slot of the last executed transaction",
		}),
	}
	errs := wrappers.Errs{}
	errs.Add(
		r.Register(m.txsExecuted),
		r.Register(m.txsFailed),
		r.Register(m.txsRejected),
		r.Register(m.instructions),
		r.Register(m.stateChanges),
		r.Register(m.stateOps),
		r.Register(m.accountsCreated),
		r.Register(m.slot),
	)
	return m, errs.Err
}
