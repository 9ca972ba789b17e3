// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gagliardetto/solana-go"

	"github.com/nadrunner/runnervm/consts"
)

// Packer reads or writes fixed-width little-endian fields in order.
//
// The first error encountered is sticky: every later call is a no-op and
// [Err] reports the original failure. Callers pack or unpack a whole record and
// check [Err] once at the end.
type Packer struct {
	b      []byte
	offset int
	limit  int
	err    error
}

// NewReader returns a Packer that consumes [src].
func NewReader(src []byte) *Packer {
	return &Packer{b: src, limit: len(src)}
}

// NewWriter returns a Packer that appends up to [limit] bytes. The initial
// allocation is [initial] bytes.
func NewWriter(initial, limit int) *Packer {
	return &Packer{b: make([]byte, 0, initial), limit: limit}
}

// NewFixedWriter returns a Packer that overwrites [dst] from offset zero and
// refuses to write past its end.
func NewFixedWriter(dst []byte) *Packer {
	return &Packer{b: dst[:0], limit: len(dst)}
}

func (p *Packer) Bytes() []byte {
	return p.b
}

func (p *Packer) Offset() int {
	return p.offset
}

func (p *Packer) Err() error {
	return p.err
}

// Empty returns true when a reader has consumed every byte.
func (p *Packer) Empty() bool {
	return p.offset == len(p.b)
}

func (p *Packer) addErr(err error) {
	if p.err == nil {
		p.err = err
	}
}

func (p *Packer) grow(n int) []byte {
	if p.err != nil {
		return nil
	}
	if len(p.b)+n > p.limit {
		p.addErr(fmt.Errorf("%w: need %d bytes, have %d", ErrTooLarge, len(p.b)+n, p.limit))
		return nil
	}
	start := len(p.b)
	if start+n > cap(p.b) {
		nb := make([]byte, start, 2*cap(p.b)+n)
		copy(nb, p.b)
		p.b = nb
	}
	p.b = p.b[:start+n]
	p.offset = start + n
	return p.b[start:]
}

func (p *Packer) next(n int) []byte {
	if p.err != nil {
		return nil
	}
	if p.offset+n > len(p.b) {
		p.addErr(fmt.Errorf("%w: need %d bytes, have %d", ErrInsufficientLength, n, len(p.b)-p.offset))
		return nil
	}
	start := p.offset
	p.offset += n
	return p.b[start:p.offset]
}

func (p *Packer) PackBool(v bool) {
	b := p.grow(consts.BoolLen)
	if b == nil {
		return
	}
	if v {
		b[0] = 1
	} else {
		b[0] = 0
	}
}

// UnpackBool accepts exactly 0 or 1.
func (p *Packer) UnpackBool() bool {
	b := p.next(consts.BoolLen)
	if b == nil {
		return false
	}
	switch b[0] {
	case 0:
		return false
	case 1:
		return true
	default:
		p.addErr(fmt.Errorf("%w: %d", ErrInvalidBool, b[0]))
		return false
	}
}

func (p *Packer) PackByte(v byte) {
	if b := p.grow(1); b != nil {
		b[0] = v
	}
}

func (p *Packer) UnpackByte() byte {
	b := p.next(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (p *Packer) PackUint32(v uint32) {
	if b := p.grow(consts.Uint32Len); b != nil {
		binary.LittleEndian.PutUint32(b, v)
	}
}

func (p *Packer) UnpackUint32() uint32 {
	b := p.next(consts.Uint32Len)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (p *Packer) PackUint64(v uint64) {
	if b := p.grow(consts.Uint64Len); b != nil {
		binary.LittleEndian.PutUint64(b, v)
	}
}

func (p *Packer) UnpackUint64() uint64 {
	b := p.next(consts.Uint64Len)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (p *Packer) PackInt64(v int64) {
	p.PackUint64(uint64(v))
}

func (p *Packer) UnpackInt64() int64 {
	return int64(p.UnpackUint64())
}

func (p *Packer) PackFloat64(v float64) {
	p.PackUint64(math.Float64bits(v))
}

func (p *Packer) UnpackFloat64() float64 {
	return math.Float64frombits(p.UnpackUint64())
}

// PackFixedBytes writes [v] verbatim with no length prefix.
func (p *Packer) PackFixedBytes(v []byte) {
	if b := p.grow(len(v)); b != nil {
		copy(b, v)
	}
}

// UnpackFixedBytes copies the next [size] bytes into a new slice.
func (p *Packer) UnpackFixedBytes(size int) []byte {
	b := p.next(size)
	if b == nil {
		return nil
	}
	out := make([]byte, size)
	copy(out, b)
	return out
}

// PackBytes writes a uint32 length prefix followed by [v].
func (p *Packer) PackBytes(v []byte) {
	if uint64(len(v)) > uint64(consts.MaxUint32) {
		p.addErr(fmt.Errorf("%w: %d bytes", ErrTooLarge, len(v)))
		return
	}
	p.PackUint32(uint32(len(v)))
	p.PackFixedBytes(v)
}

// UnpackBytes reads a length-prefixed byte slice of at most [limit] bytes.
func (p *Packer) UnpackBytes(limit int) []byte {
	l := p.UnpackUint32()
	if p.err != nil {
		return nil
	}
	if uint64(l) > uint64(limit) {
		p.addErr(fmt.Errorf("%w: %d > %d", ErrTooLarge, l, limit))
		return nil
	}
	return p.UnpackFixedBytes(int(l))
}

func (p *Packer) PackPublicKey(k solana.PublicKey) {
	p.PackFixedBytes(k[:])
}

func (p *Packer) UnpackPublicKey(dst *solana.PublicKey) {
	b := p.next(consts.IDLen)
	if b == nil {
		return
	}
	copy(dst[:], b)
}

func (p *Packer) PackSignature(s solana.Signature) {
	p.PackFixedBytes(s[:])
}

func (p *Packer) UnpackSignature(dst *solana.Signature) {
	b := p.next(consts.SignatureLen)
	if b == nil {
		return
	}
	copy(dst[:], b)
}
