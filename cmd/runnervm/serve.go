// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/neilotoole/errgroup"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nadrunner/runnervm/actions"
	"github.com/nadrunner/runnervm/config"
	"github.com/nadrunner/runnervm/internal/logging"
	"github.com/nadrunner/runnervm/internal/pebble"
	"github.com/nadrunner/runnervm/program"
	"github.com/nadrunner/runnervm/rpc"
	"github.com/nadrunner/runnervm/runtime"
	"github.com/nadrunner/runnervm/scoresigner"
	"github.com/nadrunner/runnervm/server"
	"github.com/nadrunner/runnervm/state"
	"github.com/nadrunner/runnervm/trace"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a ledger node",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg)
	},
}

func init() {
	serveCmd.Flags().String("config", "", "Path to a YAML config file")
	serveCmd.Flags().String("data-dir", "", "Database directory (in-memory when empty)")
	serveCmd.Flags().String("http-addr", "", "Address the API listens on")
	serveCmd.Flags().String("log-level", "", "Log level")
	serveCmd.Flags().String("score-verification", "", "Score verification mode (none or ed25519)")
	serveCmd.Flags().Bool("allow-account-creation", true, "Serve the createAccount method")
	rootCmd.AddCommand(serveCmd)
}

// loadConfig reads --config and applies any flags that were set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()
	path, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	overrides := map[string]*string{
		"data-dir":           &cfg.DataDir,
		"http-addr":          &cfg.HTTP.Addr,
		"log-level":          &cfg.Log.Level,
		"score-verification": &cfg.ScoreVerification,
	}
	for name, dst := range overrides {
		if !flags.Changed(name) {
			continue
		}
		if *dst, err = flags.GetString(name); err != nil {
			return nil, err
		}
	}
	if flags.Changed("allow-account-creation") {
		if cfg.AllowAccountCreation, err = flags.GetBool("allow-account-creation"); err != nil {
			return nil, err
		}
	}
	return cfg, cfg.Verify()
}

func openDatabase(cfg *config.Config, reg prometheus.Registerer) (state.Database, error) {
	if len(cfg.DataDir) == 0 {
		return state.NewMemory(), nil
	}
	return pebble.New(filepath.Join(cfg.DataDir, "db"), cfg.Pebble, reg)
}

func serve(ctx context.Context, cfg *config.Config) error {
	logs := logging.NewFactory(cfg.Log)
	defer logs.Close()
	log, err := logs.Make("runnervm")
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	tracer, err := trace.New(&cfg.Trace)
	if err != nil {
		return fmt.Errorf("failed to create tracer: %w", err)
	}
	defer tracer.Close()

	reg := prometheus.NewRegistry()
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		return err
	}
	if err := reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return err
	}

	db, err := openDatabase(cfg, reg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	programID, err := cfg.Program()
	if err != nil {
		return err
	}
	var verifier actions.ScoreVerifier = actions.AcceptAll{}
	if cfg.ScoreVerification == config.ScoreVerificationEd25519 {
		verifier = actions.Ed25519Verifier{}
	}
	ledger, err := runtime.New(
		ctx,
		log.Named("ledger"),
		tracer,
		db,
		program.New(programID, verifier, log.Named("program")),
		cfg.Runtime(),
		reg,
	)
	if err != nil {
		return err
	}

	var signer *scoresigner.Signer
	key, ok, err := cfg.SignerKey()
	if err != nil {
		return err
	}
	if ok {
		signer, err = scoresigner.New(log.Named("scoresigner"), key, cfg.ScoreSigner)
		if err != nil {
			return err
		}
		log.Info("score signing enabled", zap.Stringer("signer", signer.PublicKey()))
	}

	listener, err := net.Listen("tcp", cfg.HTTP.Addr)
	if err != nil {
		return err
	}
	srv := server.New(log.Named("api"), listener, cfg.HTTP)
	ws, err := rpc.Mount(srv, log.Named("rpc"), tracer, ledger, signer, reg, cfg.WebSocket)
	if err != nil {
		return err
	}

	log.Info("serving",
		zap.Stringer("program", programID),
		zap.String("scoreVerification", cfg.ScoreVerification),
		zap.String("dataDir", cfg.DataDir),
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ledger.Clock().Run(gctx)
		return nil
	})
	g.Go(srv.Dispatch)
	g.Go(func() error {
		<-gctx.Done()
		ws.Close()
		return srv.Shutdown()
	})
	err = g.Wait()
	log.Info("stopped", zap.Error(err))
	return err
}
