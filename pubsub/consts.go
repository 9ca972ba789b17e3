// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pubsub

import (
	"time"

	"github.com/ava-labs/avalanchego/utils/units"
)

type ServerConfig struct {
	ReadBufferSize     int           `json:"readBufferSize" yaml:"readBufferSize"`
	WriteBufferSize    int           `json:"writeBufferSize" yaml:"writeBufferSize"`
	WriteWait          time.Duration `json:"writeWait" yaml:"writeWait"`
	PongWait           time.Duration `json:"pongWait" yaml:"pongWait"`
	PingPeriod         time.Duration `json:"pingPeriod" yaml:"pingPeriod"`
	MaxReadMessageSize int64         `json:"maxReadMessageSize" yaml:"maxReadMessageSize"`
	MaxPendingMessages int           `json:"maxPendingMessages" yaml:"maxPendingMessages"`
}

func NewDefaultServerConfig() ServerConfig {
	return ServerConfig{
		ReadBufferSize:     units.KiB,
		WriteBufferSize:    units.KiB,
		WriteWait:          10 * time.Second,
		PongWait:           60 * time.Second,
		PingPeriod:         54 * time.Second,
		MaxReadMessageSize: 128 * units.KiB,
		MaxPendingMessages: 1024,
	}
}
