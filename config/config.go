// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config loads the node configuration from YAML on top of defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gagliardetto/solana-go"
	"golang.org/x/crypto/sha3"
	"gopkg.in/yaml.v2"

	"github.com/nadrunner/runnervm/crypto/ed25519"
	"github.com/nadrunner/runnervm/host"
	"github.com/nadrunner/runnervm/internal/logging"
	"github.com/nadrunner/runnervm/internal/pebble"
	"github.com/nadrunner/runnervm/pubsub"
	"github.com/nadrunner/runnervm/runtime"
	"github.com/nadrunner/runnervm/scoresigner"
	"github.com/nadrunner/runnervm/server"
	"github.com/nadrunner/runnervm/trace"
)

const (
	// ScoreVerificationNone mints any well-formed score claim.
	ScoreVerificationNone = "none"
	// ScoreVerificationEd25519 requires the mint authority's signature over
	// the score digest.
	ScoreVerificationEd25519 = "ed25519"
)

var (
	ErrInvalidScoreVerification = errors.New("invalid score verification mode")
	ErrInvalidProgramID         = errors.New("invalid program id")
	ErrInvalidSignerKey         = errors.New("invalid score signer key")
	ErrInvalidSlotDuration      = errors.New("invalid slot duration")
	ErrInvalidRent              = errors.New("invalid rent")
)

// DefaultProgramID is used when no program id is configured.
var DefaultProgramID = func() solana.PublicKey {
	var id solana.PublicKey
	h := sha3.NewLegacyKeccak256()
	_, _ = h.Write([]byte("runnervm"))
	h.Sum(id[:0])
	return id
}()

type Config struct {
	// Base58 program id. Empty selects [DefaultProgramID].
	ProgramID string `json:"programId" yaml:"programId"`
	// Directory for the Pebble database. Empty keeps state in memory.
	DataDir string `json:"dataDir" yaml:"dataDir"`

	SlotDuration         time.Duration `json:"slotDuration" yaml:"slotDuration"`
	SlotsPerEpoch        uint64        `json:"slotsPerEpoch" yaml:"slotsPerEpoch"`
	Rent                 host.Rent     `json:"rent" yaml:"rent"`
	AllowAccountCreation bool          `json:"allowAccountCreation" yaml:"allowAccountCreation"`

	ScoreVerification string `json:"scoreVerification" yaml:"scoreVerification"`
	// Base58 private key. Empty disables score signing.
	ScoreSignerKey string             `json:"scoreSignerKey" yaml:"scoreSignerKey"`
	ScoreSigner    scoresigner.Config `json:"scoreSigner" yaml:"scoreSigner"`

	HTTP      server.Config       `json:"http" yaml:"http"`
	WebSocket pubsub.ServerConfig `json:"webSocket" yaml:"webSocket"`
	Log       logging.Config      `json:"log" yaml:"log"`
	Trace     trace.Config        `json:"trace" yaml:"trace"`
	Pebble    pebble.Config       `json:"pebble" yaml:"pebble"`
}

func NewDefaultConfig() Config {
	return Config{
		SlotDuration:         runtime.DefaultSlotDuration,
		SlotsPerEpoch:        runtime.DefaultSlotsPerEpoch,
		Rent:                 host.DefaultRent(),
		AllowAccountCreation: true,
		ScoreVerification:    ScoreVerificationNone,
		ScoreSigner:          scoresigner.DefaultConfig(),
		HTTP:                 server.NewDefaultConfig(),
		WebSocket:            pubsub.NewDefaultServerConfig(),
		Log:                  logging.NewDefaultConfig(),
		Trace: trace.Config{
			Enabled:         false,
			TraceSampleRate: 1,
			Endpoint:        trace.DefaultEndpoint,
			AppName:         "runnervm",
			Agent:           "runnervm",
		},
		Pebble: pebble.NewDefaultConfig(),
	}
}

// New parses [b] over the defaults. Unknown keys are rejected.
func New(b []byte) (*Config, error) {
	c := NewDefaultConfig()
	if len(b) > 0 {
		if err := yaml.UnmarshalStrict(b, &c); err != nil {
			return nil, fmt.Errorf("unable to parse config: %w", err)
		}
	}
	if err := c.Verify(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Load reads the file at [path]. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	if len(path) == 0 {
		return New(nil)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return New(b)
}

func (c *Config) Verify() error {
	switch c.ScoreVerification {
	case ScoreVerificationNone, ScoreVerificationEd25519:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidScoreVerification, c.ScoreVerification)
	}
	if c.SlotDuration <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidSlotDuration, c.SlotDuration)
	}
	if c.Rent.LamportsPerByteYear == 0 || c.Rent.ExemptionThreshold < 0 {
		return fmt.Errorf("%w: %+v", ErrInvalidRent, c.Rent)
	}
	if _, err := c.Program(); err != nil {
		return err
	}
	if _, _, err := c.SignerKey(); err != nil {
		return err
	}
	return nil
}

func (c *Config) Program() (solana.PublicKey, error) {
	if len(c.ProgramID) == 0 {
		return DefaultProgramID, nil
	}
	id, err := solana.PublicKeyFromBase58(c.ProgramID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%w: %w", ErrInvalidProgramID, err)
	}
	return id, nil
}

// SignerKey returns the configured score signer key, if there is one.
func (c *Config) SignerKey() (solana.PrivateKey, bool, error) {
	if len(c.ScoreSignerKey) == 0 {
		return nil, false, nil
	}
	key, err := solana.PrivateKeyFromBase58(c.ScoreSignerKey)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrInvalidSignerKey, err)
	}
	if len(key) != ed25519.PrivateKeyLen {
		return nil, false, fmt.Errorf("%w: %d bytes", ErrInvalidSignerKey, len(key))
	}
	return key, true, nil
}

func (c *Config) Runtime() runtime.Config {
	return runtime.Config{
		Rent:                 c.Rent,
		SlotDuration:         c.SlotDuration,
		SlotsPerEpoch:        c.SlotsPerEpoch,
		AllowAccountCreation: c.AllowAccountCreation,
	}
}
