// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"net/http"

	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/json"
	"github.com/gorilla/rpc/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/nadrunner/runnervm/pubsub"
	"github.com/nadrunner/runnervm/runtime"
	"github.com/nadrunner/runnervm/scoresigner"
	"github.com/nadrunner/runnervm/server"
)

func NewJSONRPCHandler(
	name string,
	service interface{},
) (http.Handler, error) {
	rpcServer := rpc.NewServer()
	rpcServer.RegisterCodec(json.NewCodec(), "application/json")
	rpcServer.RegisterCodec(json.NewCodec(), "application/json;charset=UTF-8")
	return rpcServer, rpcServer.RegisterService(service, name)
}

// Mount registers the JSON-RPC service, the websocket feed and the metrics
// endpoint on [s]. [signer] may be nil. The returned pubsub server must be
// closed on shutdown.
func Mount(
	s *server.Server,
	log *zap.Logger,
	tracer trace.Tracer,
	ledger *runtime.Ledger,
	signer *scoresigner.Signer,
	gatherer prometheus.Gatherer,
	wsConfig pubsub.ServerConfig,
) (*pubsub.Server, error) {
	handler, err := NewJSONRPCHandler(Name, NewJSONRPCServer(log, tracer, ledger, signer))
	if err != nil {
		return nil, err
	}
	s.AddRoute(handler, JSONRPCEndpoint)
	s.AddRoute(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}), MetricsEndpoint)

	ws := NewWebSocketServer(log, ledger, wsConfig)
	s.AddStream(ws.Handler(), WebSocketEndpoint)
	return ws.Handler(), nil
}
