// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package logging builds the zap loggers used by the node: a console core on
// stderr and, when a directory is configured, a rotating file core.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	DefaultLevel    = "info"
	DefaultFormat   = "auto"
	DefaultMaxSize  = 8 // megabytes
	DefaultMaxAge   = 0 // days
	DefaultMaxFiles = 7
)

type Config struct {
	Level          string `json:"level" yaml:"level"`
	DisplayLevel   string `json:"displayLevel" yaml:"displayLevel"`
	Format         string `json:"format" yaml:"format"`
	Directory      string `json:"directory" yaml:"directory"`
	MaxSize        int    `json:"maxSize" yaml:"maxSize"`
	MaxAge         int    `json:"maxAge" yaml:"maxAge"`
	MaxFiles       int    `json:"maxFiles" yaml:"maxFiles"`
	Compress       bool   `json:"compress" yaml:"compress"`
	DisableDisplay bool   `json:"disableDisplay" yaml:"disableDisplay"`
}

func NewDefaultConfig() Config {
	return Config{
		Level:        DefaultLevel,
		DisplayLevel: DefaultLevel,
		Format:       DefaultFormat,
		MaxSize:      DefaultMaxSize,
		MaxAge:       DefaultMaxAge,
		MaxFiles:     DefaultMaxFiles,
	}
}

// Factory hands out named loggers sharing one configuration and owns the
// file writers behind them.
type Factory struct {
	config Config

	lock    sync.Mutex
	writers map[string]io.Closer
}

func NewFactory(config Config) *Factory {
	return &Factory{
		config:  config,
		writers: make(map[string]io.Closer),
	}
}

// levels maps avalanchego level names onto zap's enum. The two enums are
// offset from each other, so a plain conversion enables everything.
var levels = map[logging.Level]zapcore.Level{
	logging.Verbo: zapcore.DebugLevel,
	logging.Debug: zapcore.DebugLevel,
	logging.Trace: zapcore.DebugLevel,
	logging.Info:  zapcore.InfoLevel,
	logging.Warn:  zapcore.WarnLevel,
	logging.Error: zapcore.ErrorLevel,
	logging.Fatal: zapcore.FatalLevel,
	logging.Off:   offLevel,
}

// offLevel sits above every level zap emits.
const offLevel = zapcore.FatalLevel + 1

func level(s string) (zapcore.Level, error) {
	if len(s) == 0 {
		s = DefaultLevel
	}
	l, err := logging.ToLevel(s)
	if err != nil {
		return 0, err
	}
	return levels[l], nil
}

var encoderConfig = zapcore.EncoderConfig{
	TimeKey:          "timestamp",
	LevelKey:         "level",
	NameKey:          "logger",
	CallerKey:        "caller",
	MessageKey:       "msg",
	StacktraceKey:    "stacktrace",
	EncodeLevel:      zapcore.CapitalLevelEncoder,
	EncodeTime:       zapcore.TimeEncoderOfLayout("[01-02|15:04:05.000]"),
	EncodeDuration:   zapcore.StringDurationEncoder,
	EncodeCaller:     zapcore.ShortCallerEncoder,
	ConsoleSeparator: " ",
}

func consoleEncoder(f logging.Format) zapcore.Encoder {
	cfg := encoderConfig
	switch f {
	case logging.JSON:
		return jsonEncoder()
	case logging.Colors:
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return zapcore.NewConsoleEncoder(cfg)
}

func fileEncoder(f logging.Format) zapcore.Encoder {
	if f == logging.JSON {
		return jsonEncoder()
	}
	return zapcore.NewConsoleEncoder(encoderConfig)
}

func jsonEncoder() zapcore.Encoder {
	cfg := encoderConfig
	cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeDuration = zapcore.NanosDurationEncoder
	return zapcore.NewJSONEncoder(cfg)
}

// Make returns a logger named [name]. Each name may only be made once.
func (f *Factory) Make(name string) (*zap.Logger, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	if _, ok := f.writers[name]; ok {
		return nil, fmt.Errorf("logger with name %q already exists", name)
	}
	logLevel, err := level(f.config.Level)
	if err != nil {
		return nil, err
	}
	displayLevel, err := level(f.config.DisplayLevel)
	if err != nil {
		return nil, err
	}
	formatName := f.config.Format
	if len(formatName) == 0 {
		formatName = DefaultFormat
	}
	format, err := logging.ToFormat(formatName, os.Stderr.Fd())
	if err != nil {
		return nil, err
	}

	var cores []zapcore.Core
	if !f.config.DisableDisplay {
		cores = append(cores, zapcore.NewCore(
			consoleEncoder(format),
			zapcore.Lock(os.Stderr),
			displayLevel,
		))
	}
	var closer io.Closer = nopCloser{}
	if len(f.config.Directory) > 0 {
		rw := &lumberjack.Logger{
			Filename:   filepath.Join(f.config.Directory, name+".log"),
			MaxSize:    f.config.MaxSize,
			MaxAge:     f.config.MaxAge,
			MaxBackups: f.config.MaxFiles,
			Compress:   f.config.Compress,
		}
		cores = append(cores, zapcore.NewCore(
			fileEncoder(format),
			zapcore.AddSync(rw),
			logLevel,
		))
		closer = rw
	}
	f.writers[name] = closer
	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()).Named(name), nil
}

// Close releases every file writer. Loggers made by [f] must not be used
// afterwards, but their names may be made again.
func (f *Factory) Close() error {
	f.lock.Lock()
	defer f.lock.Unlock()

	errs := wrappers.Errs{}
	for _, w := range f.writers {
		errs.Add(w.Close())
	}
	f.writers = make(map[string]io.Closer)
	return errs.Err
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
