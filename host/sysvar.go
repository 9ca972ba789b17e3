// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package host

import (
	"errors"
	"fmt"
	"math"

	"github.com/nadrunner/runnervm/codec"
	"github.com/nadrunner/runnervm/consts"
	"github.com/nadrunner/runnervm/programerr"
)

const (
	// AccountStorageOverhead is charged on top of every account's data length.
	AccountStorageOverhead = 128

	DefaultLamportsPerByteYear = 3480
	DefaultExemptionThreshold  = 2.0
	DefaultBurnPercent         = 50

	RentLen  = consts.Uint64Len + consts.Float64Len + 1
	ClockLen = 5 * consts.Uint64Len
)

var ErrInvalidSysvar = errors.New("invalid sysvar data")

var _ RentOracle = (*Rent)(nil)

type Rent struct {
	LamportsPerByteYear uint64  `json:"lamportsPerByteYear" yaml:"lamportsPerByteYear"`
	ExemptionThreshold  float64 `json:"exemptionThreshold" yaml:"exemptionThreshold"`
	BurnPercent         uint8   `json:"burnPercent" yaml:"burnPercent"`
}

func DefaultRent() Rent {
	return Rent{
		LamportsPerByteYear: DefaultLamportsPerByteYear,
		ExemptionThreshold:  DefaultExemptionThreshold,
		BurnPercent:         DefaultBurnPercent,
	}
}

// MinimumBalance returns the lowest rent-exempt balance for [size] bytes.
func (r Rent) MinimumBalance(size int) uint64 {
	bytes := uint64(AccountStorageOverhead + size)
	return uint64(float64(bytes*r.LamportsPerByteYear) * r.ExemptionThreshold)
}

func (r Rent) IsExempt(lamports uint64, size int) bool {
	return lamports >= r.MinimumBalance(size)
}

func (r Rent) Bytes() []byte {
	p := codec.NewWriter(RentLen, RentLen)
	p.PackUint64(r.LamportsPerByteYear)
	p.PackFloat64(r.ExemptionThreshold)
	p.PackByte(r.BurnPercent)
	return p.Bytes()
}

func UnmarshalRent(b []byte) (Rent, error) {
	if len(b) != RentLen {
		return Rent{}, fmt.Errorf("%w: rent has %d bytes", ErrInvalidSysvar, len(b))
	}
	p := codec.NewReader(b)
	r := Rent{
		LamportsPerByteYear: p.UnpackUint64(),
		ExemptionThreshold:  p.UnpackFloat64(),
		BurnPercent:         p.UnpackByte(),
	}
	if err := p.Err(); err != nil {
		return Rent{}, err
	}
	if math.IsNaN(r.ExemptionThreshold) || r.ExemptionThreshold < 0 {
		return Rent{}, fmt.Errorf("%w: exemption threshold %f", ErrInvalidSysvar, r.ExemptionThreshold)
	}
	return r, nil
}

var _ ClockOracle = (*Clock)(nil)

type Clock struct {
	Slot                uint64 `json:"slot"`
	EpochStartTimestamp int64  `json:"epochStartTimestamp"`
	Epoch               uint64 `json:"epoch"`
	LeaderScheduleEpoch uint64 `json:"leaderScheduleEpoch"`
	UnixTimestamp       int64  `json:"unixTimestamp"`
}

func (c Clock) CurrentSlot() uint64 {
	return c.Slot
}

func (c Clock) Bytes() []byte {
	p := codec.NewWriter(ClockLen, ClockLen)
	p.PackUint64(c.Slot)
	p.PackInt64(c.EpochStartTimestamp)
	p.PackUint64(c.Epoch)
	p.PackUint64(c.LeaderScheduleEpoch)
	p.PackInt64(c.UnixTimestamp)
	return p.Bytes()
}

func UnmarshalClock(b []byte) (Clock, error) {
	if len(b) != ClockLen {
		return Clock{}, fmt.Errorf("%w: clock has %d bytes", ErrInvalidSysvar, len(b))
	}
	p := codec.NewReader(b)
	c := Clock{
		Slot:                p.UnpackUint64(),
		EpochStartTimestamp: p.UnpackInt64(),
		Epoch:               p.UnpackUint64(),
		LeaderScheduleEpoch: p.UnpackUint64(),
		UnixTimestamp:       p.UnpackInt64(),
	}
	return c, p.Err()
}

// RentFromAccount decodes the rent sysvar handed to an instruction.
func RentFromAccount(info *AccountInfo) (Rent, error) {
	if info.Key != consts.SysvarRentID {
		return Rent{}, fmt.Errorf("%w: %s is not the rent sysvar", programerr.InvalidArgument, info.Key)
	}
	r, err := UnmarshalRent(info.Data)
	if err != nil {
		return Rent{}, fmt.Errorf("%w: %w", programerr.InvalidArgument, err)
	}
	return r, nil
}

// ClockFromAccount decodes the clock sysvar handed to an instruction.
func ClockFromAccount(info *AccountInfo) (Clock, error) {
	if info.Key != consts.SysvarClockID {
		return Clock{}, fmt.Errorf("%w: %s is not the clock sysvar", programerr.InvalidArgument, info.Key)
	}
	c, err := UnmarshalClock(info.Data)
	if err != nil {
		return Clock{}, fmt.Errorf("%w: %w", programerr.InvalidArgument, err)
	}
	return c, nil
}
