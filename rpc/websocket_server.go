// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/nadrunner/runnervm/pubsub"
	"github.com/nadrunner/runnervm/runtime"
)

var _ runtime.Listener = (*WebSocketServer)(nil)

// WebSocketServer streams every transaction outcome to connected clients.
// Clients may also submit raw transactions over the socket.
type WebSocketServer struct {
	log    *zap.Logger
	ledger *runtime.Ledger
	s      *pubsub.Server
}

func NewWebSocketServer(log *zap.Logger, ledger *runtime.Ledger, cfg pubsub.ServerConfig) *WebSocketServer {
	w := &WebSocketServer{
		log:    log,
		ledger: ledger,
	}
	w.s = pubsub.New(log, cfg, w.submit)
	ledger.AddListener(w)
	return w
}

func (w *WebSocketServer) Handler() *pubsub.Server {
	return w.s
}

func (w *WebSocketServer) submit(msg []byte, c *pubsub.Connection) {
	tx, err := runtime.UnmarshalTransaction(msg)
	if err != nil {
		w.log.Debug("failed to unmarshal tx",
			zap.Int("len", len(msg)),
			zap.Error(err),
		)
		if b, merr := json.Marshal(&TxResult{Error: err.Error()}); merr == nil {
			c.Send(b)
		}
		return
	}
	// The outcome reaches [c] through Executed.
	_, _ = w.ledger.Execute(context.Background(), tx)
}

func (w *WebSocketServer) Executed(tx *runtime.Transaction, res *runtime.Result, execErr error) {
	if w.s.Len() == 0 {
		return
	}
	b, err := json.Marshal(NewTxResult(tx.ID(), res, execErr))
	if err != nil {
		w.log.Error("failed to marshal tx result", zap.Error(err))
		return
	}
	w.s.Broadcast(b)
}
