// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package scoresigner checks a finished game against basic gameplay limits
// and, if it passes, signs the score digest with the mint authority key.
package scoresigner

import (
	"errors"
	"fmt"
	"time"

	smath "github.com/ava-labs/avalanchego/utils/math"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/nadrunner/runnervm/actions"
	"github.com/nadrunner/runnervm/consts"
	"github.com/nadrunner/runnervm/crypto/ed25519"
)

var (
	ErrMissingFields  = errors.New("missing required fields")
	ErrGameTooShort   = errors.New("game duration too short")
	ErrScoreTooHigh   = errors.New("score exceeds what the game duration allows")
	ErrScoreOverflow  = errors.New("score exceeds the per-mint maximum")
	ErrNoSignerConfig = errors.New("no score signer key configured")
)

type Config struct {
	// Shortest game that can earn any score.
	MinGameDuration time.Duration `json:"minGameDuration" yaml:"minGameDuration"`
	// Base rate of 10 points per second, doubled by the in-game multiplier,
	// plus headroom.
	MaxScorePerSecond uint64 `json:"maxScorePerSecond" yaml:"maxScorePerSecond"`
}

func DefaultConfig() Config {
	return Config{
		MinGameDuration:   time.Second,
		MaxScorePerSecond: 25,
	}
}

// Request describes a finished game. [Score] is in whole points.
type Request struct {
	Player    solana.PublicKey `json:"player"`
	Score     uint64           `json:"score"`
	GameStart time.Time        `json:"gameStart"`
	GameEnd   time.Time        `json:"gameEnd"`
}

// Signature is what a player submits with MintGameScore.
type Signature struct {
	Player    solana.PublicKey `json:"player"`
	Amount    uint64           `json:"amount"`
	Slot      uint64           `json:"slot"`
	Signature solana.Signature `json:"signature"`
}

type Signer struct {
	log *zap.Logger
	key solana.PrivateKey
	cfg Config
}

func New(log *zap.Logger, key solana.PrivateKey, cfg Config) (*Signer, error) {
	if len(key) != ed25519.PrivateKeyLen {
		return nil, ErrNoSignerConfig
	}
	return &Signer{log: log, key: key, cfg: cfg}, nil
}

// PublicKey is the identity the mint authority must hold for signatures from
// this signer to verify.
func (s *Signer) PublicKey() solana.PublicKey {
	return s.key.PublicKey()
}

// Check applies the gameplay limits to [req] and returns the score in base
// units.
func (s *Signer) Check(req *Request) (uint64, error) {
	if req.Player.IsZero() || req.Score == 0 || req.GameStart.IsZero() || req.GameEnd.IsZero() {
		return 0, ErrMissingFields
	}
	duration := req.GameEnd.Sub(req.GameStart)
	if duration < s.cfg.MinGameDuration {
		return 0, fmt.Errorf("%w: %s", ErrGameTooShort, duration)
	}
	// The cap is pro-rated by the millisecond and rounded down.
	maxScore, err := smath.Mul64(uint64(duration.Milliseconds()), s.cfg.MaxScorePerSecond)
	if err != nil {
		maxScore = consts.MaxUint64
	}
	maxScore /= uint64(time.Second / time.Millisecond)
	if req.Score > maxScore {
		return 0, fmt.Errorf("%w: %d in %s", ErrScoreTooHigh, req.Score, duration)
	}
	amount, err := smath.Mul64(req.Score, consts.UnitsPerToken)
	if err != nil || amount > consts.MaxGameMint {
		return 0, fmt.Errorf("%w: %d", ErrScoreOverflow, req.Score)
	}
	return amount, nil
}

// Sign checks [req] and signs its score for minting in [slot] or the slot
// after it.
func (s *Signer) Sign(req *Request, slot uint64) (*Signature, error) {
	amount, err := s.Check(req)
	if err != nil {
		s.log.Warn("rejected score",
			zap.Stringer("player", req.Player),
			zap.Uint64("score", req.Score),
			zap.Error(err),
		)
		return nil, err
	}
	digest := actions.ScoreDigest(req.Player, amount, slot)
	sig, err := ed25519.Sign(digest[:], s.key)
	if err != nil {
		return nil, err
	}
	s.log.Info("signed score",
		zap.Stringer("player", req.Player),
		zap.Uint64("amount", amount),
		zap.Uint64("slot", slot),
	)
	return &Signature{Player: req.Player, Amount: amount, Slot: slot, Signature: sig}, nil
}
