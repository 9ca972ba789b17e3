// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

const (
	DefaultAddr            = "127.0.0.1:9650"
	DefaultShutdownTimeout = 10 * time.Second
)

type Config struct {
	Addr              string        `json:"addr" yaml:"addr"`
	ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
	ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
	WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
	IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
	ShutdownTimeout   time.Duration `json:"shutdownTimeout" yaml:"shutdownTimeout"`
	AllowedOrigins    []string      `json:"allowedOrigins" yaml:"allowedOrigins"`
}

func NewDefaultConfig() Config {
	return Config{
		Addr:              DefaultAddr,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		ShutdownTimeout:   DefaultShutdownTimeout,
		AllowedOrigins:    []string{"*"},
	}
}

// Server maintains the HTTP router.
type Server struct {
	log             *zap.Logger
	router          *mux.Router
	srv             *http.Server
	listener        net.Listener
	shutdownTimeout time.Duration
}

// New returns a server that will accept connections on [listener] once
// [Server.Dispatch] is called.
func New(log *zap.Logger, listener net.Listener, cfg Config) *Server {
	router := mux.NewRouter()
	handler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
	}).Handler(router)

	log.Info("API created",
		zap.Stringer("addr", listener.Addr()),
		zap.Strings("allowedOrigins", cfg.AllowedOrigins),
	)
	return &Server{
		log:             log,
		router:          router,
		listener:        listener,
		shutdownTimeout: cfg.ShutdownTimeout,
		srv: &http.Server{
			Handler:           handler,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
		},
	}
}

// AddRoute serves [handler] at [path] with gzip compression.
func (s *Server) AddRoute(handler http.Handler, path string) {
	s.log.Info("adding route", zap.String("path", path))
	s.router.Handle(path, gziphandler.GzipHandler(handler))
}

// AddStream serves [handler] at [path] uncompressed, so the connection can be
// hijacked for websockets.
func (s *Server) AddStream(handler http.Handler, path string) {
	s.log.Info("adding stream", zap.String("path", path))
	s.router.Handle(path, handler)
}

// Handler exposes the full handler chain.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Dispatch serves until [Server.Shutdown] is called.
func (s *Server) Dispatch() error {
	err := s.srv.Serve(s.listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	err := s.srv.Shutdown(ctx)
	cancel()

	// If shutdown times out, make sure the server is still shutdown.
	_ = s.srv.Close()
	return err
}
