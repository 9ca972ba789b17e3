// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"fmt"

	"github.com/ava-labs/avalanchego/utils/set"
	"github.com/gagliardetto/solana-go"
	"golang.org/x/crypto/sha3"

	"github.com/nadrunner/runnervm/codec"
	"github.com/nadrunner/runnervm/consts"
	"github.com/nadrunner/runnervm/crypto/ed25519"
	"github.com/nadrunner/runnervm/program"
)

const (
	MaxInstructions = 16
	MaxAccounts     = 32

	flagSigner   byte = 1 << 0
	flagWritable byte = 1 << 1
)

// Message is the signed part of a transaction. [Nonce] lets a client submit
// the same instructions more than once.
type Message struct {
	Nonce        uint64                 `json:"nonce"`
	Instructions []*program.Instruction `json:"instructions"`
}

type Transaction struct {
	Message    *Message           `json:"message"`
	Signatures []solana.Signature `json:"signatures"`

	bytes []byte
	id    solana.Hash
}

// Signers returns every key flagged as a signer, in order of first
// appearance.
func (m *Message) Signers() []solana.PublicKey {
	var (
		seen    set.Set[solana.PublicKey]
		signers []solana.PublicKey
	)
	for _, ix := range m.Instructions {
		for _, meta := range ix.Accounts {
			if !meta.IsSigner || seen.Contains(meta.PublicKey) {
				continue
			}
			seen.Add(meta.PublicKey)
			signers = append(signers, meta.PublicKey)
		}
	}
	return signers
}

func (m *Message) Marshal(p *codec.Packer) {
	p.PackUint64(m.Nonce)
	p.PackUint32(uint32(len(m.Instructions)))
	for _, ix := range m.Instructions {
		p.PackPublicKey(ix.ProgramID)
		p.PackUint32(uint32(len(ix.Accounts)))
		for _, meta := range ix.Accounts {
			p.PackPublicKey(meta.PublicKey)
			var flags byte
			if meta.IsSigner {
				flags |= flagSigner
			}
			if meta.IsWritable {
				flags |= flagWritable
			}
			p.PackByte(flags)
		}
		p.PackBytes(ix.Data)
	}
}

// Bytes returns the payload signers sign.
func (m *Message) Bytes() ([]byte, error) {
	p := codec.NewWriter(256, consts.NetworkSizeLimit)
	m.Marshal(p)
	return p.Bytes(), p.Err()
}

func UnmarshalMessage(p *codec.Packer) (*Message, error) {
	m := &Message{Nonce: p.UnpackUint64()}
	count := p.UnpackUint32()
	if err := p.Err(); err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrNoInstructions
	}
	if count > MaxInstructions {
		return nil, fmt.Errorf("%w: %d", ErrTooManyInstructions, count)
	}
	m.Instructions = make([]*program.Instruction, count)
	for i := range m.Instructions {
		ix := &program.Instruction{}
		p.UnpackPublicKey(&ix.ProgramID)
		accounts := p.UnpackUint32()
		if err := p.Err(); err != nil {
			return nil, err
		}
		if accounts > MaxAccounts {
			return nil, fmt.Errorf("%w: %d", ErrTooManyAccounts, accounts)
		}
		ix.Accounts = make([]*solana.AccountMeta, accounts)
		for j := range ix.Accounts {
			meta := &solana.AccountMeta{}
			p.UnpackPublicKey(&meta.PublicKey)
			flags := p.UnpackByte()
			if flags&^(flagSigner|flagWritable) != 0 {
				return nil, fmt.Errorf("%w: %#x", ErrInvalidAccountFlags, flags)
			}
			meta.IsSigner = flags&flagSigner != 0
			meta.IsWritable = flags&flagWritable != 0
			ix.Accounts[j] = meta
		}
		ix.Data = p.UnpackBytes(consts.NetworkSizeLimit)
		if err := p.Err(); err != nil {
			return nil, err
		}
		m.Instructions[i] = ix
	}
	return m, nil
}

// Sign returns a transaction carrying a signature from every signer of [m].
// [keys] may be given in any order and may include keys that are not needed.
func (m *Message) Sign(keys ...solana.PrivateKey) (*Transaction, error) {
	payload, err := m.Bytes()
	if err != nil {
		return nil, err
	}
	byPublic := make(map[solana.PublicKey]solana.PrivateKey, len(keys))
	for _, k := range keys {
		byPublic[k.PublicKey()] = k
	}
	signers := m.Signers()
	sigs := make([]solana.Signature, len(signers))
	for i, signer := range signers {
		k, ok := byPublic[signer]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingSignature, signer)
		}
		sigs[i], err = ed25519.Sign(payload, k)
		if err != nil {
			return nil, err
		}
	}
	tx := &Transaction{Message: m, Signatures: sigs}
	return tx, tx.init()
}

func (t *Transaction) init() error {
	p := codec.NewWriter(512, consts.NetworkSizeLimit)
	msg, err := t.Message.Bytes()
	if err != nil {
		return err
	}
	p.PackBytes(msg)
	p.PackUint32(uint32(len(t.Signatures)))
	for _, sig := range t.Signatures {
		p.PackSignature(sig)
	}
	if err := p.Err(); err != nil {
		return err
	}
	t.bytes = p.Bytes()
	t.id = messageID(msg)
	return nil
}

func messageID(msg []byte) solana.Hash {
	var id solana.Hash
	h := sha3.NewLegacyKeccak256()
	_, _ = h.Write(msg)
	h.Sum(id[:0])
	return id
}

// ID is the keccak-256 hash of the signed message.
func (t *Transaction) ID() solana.Hash {
	return t.id
}

func (t *Transaction) Bytes() []byte {
	return t.bytes
}

func UnmarshalTransaction(b []byte) (*Transaction, error) {
	if len(b) > consts.NetworkSizeLimit {
		return nil, fmt.Errorf("%w: %d bytes", codec.ErrTooLarge, len(b))
	}
	p := codec.NewReader(b)
	msg := p.UnpackBytes(consts.NetworkSizeLimit)
	count := p.UnpackUint32()
	if err := p.Err(); err != nil {
		return nil, err
	}
	if count > MaxInstructions*MaxAccounts {
		return nil, fmt.Errorf("%w: %d", ErrTooManySignatures, count)
	}
	sigs := make([]solana.Signature, count)
	for i := range sigs {
		p.UnpackSignature(&sigs[i])
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	if !p.Empty() {
		return nil, codec.ErrExtraBytes
	}

	mp := codec.NewReader(msg)
	m, err := UnmarshalMessage(mp)
	if err != nil {
		return nil, err
	}
	if !mp.Empty() {
		return nil, codec.ErrExtraBytes
	}
	return &Transaction{
		Message:    m,
		Signatures: sigs,
		bytes:      b,
		id:         messageID(msg),
	}, nil
}

// Verify checks that every signer signed the message, in signer order.
func (t *Transaction) Verify() error {
	msg, err := t.Message.Bytes()
	if err != nil {
		return err
	}
	signers := t.Message.Signers()
	switch {
	case len(t.Signatures) < len(signers):
		return fmt.Errorf("%w: have %d, need %d", ErrMissingSignature, len(t.Signatures), len(signers))
	case len(t.Signatures) > len(signers):
		return fmt.Errorf("%w: have %d, need %d", ErrTooManySignatures, len(t.Signatures), len(signers))
	}
	batch := ed25519.NewBatch(len(signers))
	for i, signer := range signers {
		batch.Add(msg, signer, t.Signatures[i])
	}
	if !batch.Verify() {
		return ErrInvalidSignature
	}
	return nil
}
