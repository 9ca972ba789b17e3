// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package program

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/nadrunner/runnervm/codec"
	"github.com/nadrunner/runnervm/consts"
	"github.com/nadrunner/runnervm/programerr"
)

type Opcode uint8

const (
	InitializeTokenAccount Opcode = iota
	InitializeMintAuthority
	UpdateMintAuthority
	AdminMint
	MintGameScore
	TransferTokens
)

var opcodeNames = [...]string{
	InitializeTokenAccount:  "InitializeTokenAccount",
	InitializeMintAuthority: "InitializeMintAuthority",
	UpdateMintAuthority:     "UpdateMintAuthority",
	AdminMint:               "AdminMint",
	MintGameScore:           "MintGameScore",
	TransferTokens:          "TransferTokens",
}

func (o Opcode) String() string {
	if int(o) < len(opcodeNames) {
		return opcodeNames[o]
	}
	return fmt.Sprintf("Opcode(%d)", uint8(o))
}

// Accounts returns how many account handles [o] expects.
func (o Opcode) Accounts() int {
	switch o {
	case InitializeTokenAccount, InitializeMintAuthority, AdminMint, TransferTokens:
		return 3
	case UpdateMintAuthority:
		return 2
	case MintGameScore:
		return 4
	default:
		return 0
	}
}

// Payload is a decoded instruction. Only the fields used by [Opcode] are set.
type Payload struct {
	Opcode    Opcode
	NewSigner solana.PublicKey
	Amount    uint64
	Signature solana.Signature
}

// Decode parses raw instruction bytes. Bytes past the fixed payload are
// ignored.
func Decode(data []byte) (*Payload, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty instruction", programerr.InvalidInstructionData)
	}
	ix := &Payload{Opcode: Opcode(data[0])}
	p := codec.NewReader(data[1:])
	switch ix.Opcode {
	case InitializeTokenAccount, InitializeMintAuthority:
	case UpdateMintAuthority:
		p.UnpackPublicKey(&ix.NewSigner)
	case AdminMint, TransferTokens:
		ix.Amount = p.UnpackUint64()
	case MintGameScore:
		ix.Amount = p.UnpackUint64()
		p.UnpackSignature(&ix.Signature)
	default:
		return nil, fmt.Errorf("%w: unknown opcode %d", programerr.InvalidInstructionData, data[0])
	}
	if err := p.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", programerr.InvalidInstructionData, ix.Opcode, err)
	}
	return ix, nil
}

// Encode returns the wire form of [ix].
func (ix *Payload) Encode() []byte {
	p := codec.NewWriter(1, 1+consts.Uint64Len+consts.SignatureLen)
	p.PackByte(byte(ix.Opcode))
	switch ix.Opcode {
	case UpdateMintAuthority:
		p.PackPublicKey(ix.NewSigner)
	case AdminMint, TransferTokens:
		p.PackUint64(ix.Amount)
	case MintGameScore:
		p.PackUint64(ix.Amount)
		p.PackSignature(ix.Signature)
	}
	return p.Bytes()
}

// Instruction is one call into a program as a client assembles it.
type Instruction struct {
	ProgramID solana.PublicKey     `json:"programId"`
	Accounts  []*solana.AccountMeta `json:"accounts"`
	Data      []byte               `json:"data"`
}

func newInstruction(programID solana.PublicKey, ix *Payload, accounts ...*solana.AccountMeta) *Instruction {
	return &Instruction{ProgramID: programID, Accounts: accounts, Data: ix.Encode()}
}

func NewInitializeTokenAccount(programID, tokenAccount, owner solana.PublicKey) *Instruction {
	return newInstruction(programID, &Payload{Opcode: InitializeTokenAccount},
		solana.NewAccountMeta(tokenAccount, true, false),
		solana.NewAccountMeta(owner, false, true),
		solana.NewAccountMeta(consts.SysvarRentID, false, false),
	)
}

func NewInitializeMintAuthority(programID, authority, deployer solana.PublicKey) *Instruction {
	return newInstruction(programID, &Payload{Opcode: InitializeMintAuthority},
		solana.NewAccountMeta(authority, true, false),
		solana.NewAccountMeta(deployer, false, true),
		solana.NewAccountMeta(consts.SysvarRentID, false, false),
	)
}

func NewUpdateMintAuthority(programID, authority, current, newSigner solana.PublicKey) *Instruction {
	return newInstruction(programID, &Payload{Opcode: UpdateMintAuthority, NewSigner: newSigner},
		solana.NewAccountMeta(authority, true, false),
		solana.NewAccountMeta(current, false, true),
	)
}

func NewAdminMint(programID, authority, admin, tokenAccount solana.PublicKey, amount uint64) *Instruction {
	return newInstruction(programID, &Payload{Opcode: AdminMint, Amount: amount},
		solana.NewAccountMeta(authority, false, false),
		solana.NewAccountMeta(admin, false, true),
		solana.NewAccountMeta(tokenAccount, true, false),
	)
}

func NewMintGameScore(
	programID, tokenAccount, player, authority solana.PublicKey,
	score uint64,
	sig solana.Signature,
) *Instruction {
	return newInstruction(programID, &Payload{Opcode: MintGameScore, Amount: score, Signature: sig},
		solana.NewAccountMeta(tokenAccount, true, false),
		solana.NewAccountMeta(player, false, true),
		solana.NewAccountMeta(authority, false, false),
		solana.NewAccountMeta(consts.SysvarClockID, false, false),
	)
}

func NewTransferTokens(programID, source, destination, owner solana.PublicKey, amount uint64) *Instruction {
	return newInstruction(programID, &Payload{Opcode: TransferTokens, Amount: amount},
		solana.NewAccountMeta(source, true, false),
		solana.NewAccountMeta(destination, true, false),
		solana.NewAccountMeta(owner, false, true),
	)
}
