// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package pubsub fans messages out to websocket clients and hands their
// messages to a callback.
package pubsub

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var _ http.Handler = (*Server)(nil)

// Server maintains the set of active clients and sends messages to them.
//
// Mount it on a router and connect with websocket.DefaultDialer.Dial().
type Server struct {
	log      *zap.Logger
	config   ServerConfig
	callback Callback
	upgrader websocket.Upgrader

	conns *Connections

	closeOnce sync.Once
	closing   chan struct{}
}

// New returns a server that calls [callback], if not nil, with every message
// a client sends.
func New(log *zap.Logger, config ServerConfig, callback Callback) *Server {
	return &Server{
		log:      log,
		config:   config,
		callback: callback,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin: func(*http.Request) bool {
				return true
			},
		},
		conns:   NewConnections(),
		closing: make(chan struct{}),
	}
}

// ServeHTTP upgrades the request and starts the connection's pumps.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	wsConn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("failed to upgrade",
			zap.Error(err),
		)
		return
	}
	conn := &Connection{
		s:    s,
		conn: wsConn,
		send: make(chan []byte, s.config.MaxPendingMessages),
	}
	conn.active.Store(true)
	s.conns.Add(conn)

	go conn.writePump()
	go conn.readPump()
}

// Publish sends [msg] to every connection in [to].
func (s *Server) Publish(msg []byte, to *Connections) {
	for _, conn := range to.Conns() {
		if !s.conns.Has(conn) {
			continue
		}
		if !conn.Send(msg) {
			s.log.Debug("dropping message to subscribed connection due to too many pending messages")
		}
	}
}

// Broadcast sends [msg] to every connected client.
func (s *Server) Broadcast(msg []byte) {
	s.Publish(msg, s.conns)
}

func (s *Server) Len() int {
	return s.conns.Len()
}

func (s *Server) removeConnection(conn *Connection) {
	s.conns.Remove(conn)
}

// Close disconnects every client.
func (s *Server) Close() {
	s.closeOnce.Do(func() {
		close(s.closing)
	})
}
