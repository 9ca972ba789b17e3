// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ava-labs/avalanchego/trace"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/nadrunner/runnervm/codec"
	"github.com/nadrunner/runnervm/runtime"
	"github.com/nadrunner/runnervm/scoresigner"
	"github.com/nadrunner/runnervm/state"
	"github.com/nadrunner/runnervm/storage"
)

type JSONRPCServer struct {
	log    *zap.Logger
	tracer trace.Tracer
	ledger *runtime.Ledger
	signer *scoresigner.Signer
}

// NewJSONRPCServer serves [ledger]. Score signing is disabled when [signer]
// is nil.
func NewJSONRPCServer(
	log *zap.Logger,
	tracer trace.Tracer,
	ledger *runtime.Ledger,
	signer *scoresigner.Signer,
) *JSONRPCServer {
	return &JSONRPCServer{
		log:    log,
		tracer: tracer,
		ledger: ledger,
		signer: signer,
	}
}

type PingReply struct {
	Success bool `json:"success"`
}

func (j *JSONRPCServer) Ping(_ *http.Request, _ *struct{}, reply *PingReply) error {
	j.log.Info("ping")
	reply.Success = true
	return nil
}

type ProgramReply struct {
	ProgramID            solana.PublicKey `json:"programId"`
	ScoreSigner          solana.PublicKey `json:"scoreSigner"`
	AllowAccountCreation bool             `json:"allowAccountCreation"`
}

func (j *JSONRPCServer) Program(_ *http.Request, _ *struct{}, reply *ProgramReply) error {
	reply.ProgramID = j.ledger.ProgramID()
	if j.signer != nil {
		reply.ScoreSigner = j.signer.PublicKey()
	}
	reply.AllowAccountCreation = j.ledger.AllowAccountCreation()
	return nil
}

type SlotReply struct {
	Slot          uint64 `json:"slot"`
	Epoch         uint64 `json:"epoch"`
	UnixTimestamp int64  `json:"unixTimestamp"`
}

func (j *JSONRPCServer) Slot(_ *http.Request, _ *struct{}, reply *SlotReply) error {
	c := j.ledger.Clock().Sysvar()
	reply.Slot = c.Slot
	reply.Epoch = c.Epoch
	reply.UnixTimestamp = c.UnixTimestamp
	return nil
}

type SubmitTxArgs struct {
	Tx codec.Bytes `json:"tx"`
}

type SubmitTxReply struct {
	Result *TxResult `json:"result"`
}

// SubmitTx executes a signed transaction. Malformed or badly signed
// transactions return an error; a transaction that fails inside the program
// is reported through the result's code.
func (j *JSONRPCServer) SubmitTx(req *http.Request, args *SubmitTxArgs, reply *SubmitTxReply) error {
	ctx, span := j.tracer.Start(req.Context(), "JSONRPCServer.SubmitTx")
	defer span.End()

	tx, err := runtime.UnmarshalTransaction(args.Tx)
	if err != nil {
		return fmt.Errorf("%w: unable to unmarshal on public service", err)
	}
	res, err := j.ledger.Execute(ctx, tx)
	var ierr *runtime.InstructionError
	if err != nil && !errors.As(err, &ierr) {
		return err
	}
	reply.Result = NewTxResult(tx.ID(), res, err)
	return nil
}

type AccountArgs struct {
	Account solana.PublicKey `json:"account"`
}

type AccountReply struct {
	Owner    solana.PublicKey `json:"owner"`
	Lamports uint64           `json:"lamports"`
	Data     codec.Bytes      `json:"data"`
}

func (j *JSONRPCServer) account(ctx context.Context, id solana.PublicKey) (*runtime.Slot, error) {
	slot, err := j.ledger.Account(ctx, id)
	if errors.Is(err, state.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, id)
	}
	return slot, err
}

func (j *JSONRPCServer) programAccount(ctx context.Context, id solana.PublicKey) (*runtime.Slot, error) {
	slot, err := j.account(ctx, id)
	if err != nil {
		return nil, err
	}
	if slot.Owner != j.ledger.ProgramID() {
		return nil, fmt.Errorf("%w: %s", ErrNotProgramAccount, id)
	}
	return slot, nil
}

func (j *JSONRPCServer) Account(req *http.Request, args *AccountArgs, reply *AccountReply) error {
	ctx, span := j.tracer.Start(req.Context(), "JSONRPCServer.Account")
	defer span.End()

	slot, err := j.account(ctx, args.Account)
	if err != nil {
		return err
	}
	reply.Owner = slot.Owner
	reply.Lamports = slot.Lamports
	reply.Data = slot.Data
	return nil
}

type TokenAccountReply struct {
	storage.TokenAccount
}

func (j *JSONRPCServer) TokenAccount(req *http.Request, args *AccountArgs, reply *TokenAccountReply) error {
	ctx, span := j.tracer.Start(req.Context(), "JSONRPCServer.TokenAccount")
	defer span.End()

	slot, err := j.programAccount(ctx, args.Account)
	if err != nil {
		return err
	}
	t, err := storage.UnpackTokenAccountUnchecked(slot.Data)
	if err != nil {
		return err
	}
	reply.TokenAccount = *t
	return nil
}

type MintAuthorityReply struct {
	storage.MintAuthority
}

func (j *JSONRPCServer) MintAuthority(req *http.Request, args *AccountArgs, reply *MintAuthorityReply) error {
	ctx, span := j.tracer.Start(req.Context(), "JSONRPCServer.MintAuthority")
	defer span.End()

	slot, err := j.programAccount(ctx, args.Account)
	if err != nil {
		return err
	}
	m, err := storage.UnpackMintAuthorityUnchecked(slot.Data)
	if err != nil {
		return err
	}
	reply.MintAuthority = *m
	return nil
}

type CreateAccountArgs struct {
	Account  solana.PublicKey `json:"account"`
	Lamports uint64           `json:"lamports"`
	Size     int              `json:"size"`
}

type CreateAccountReply struct {
	Lamports uint64 `json:"lamports"`
}

func (j *JSONRPCServer) CreateAccount(req *http.Request, args *CreateAccountArgs, reply *CreateAccountReply) error {
	ctx, span := j.tracer.Start(req.Context(), "JSONRPCServer.CreateAccount")
	defer span.End()

	slot, err := j.ledger.CreateAccount(ctx, args.Account, args.Lamports, args.Size)
	if err != nil {
		return err
	}
	reply.Lamports = slot.Lamports
	return nil
}

type SignScoreReply struct {
	scoresigner.Signature
}

func (j *JSONRPCServer) SignScore(_ *http.Request, args *scoresigner.Request, reply *SignScoreReply) error {
	if j.signer == nil {
		return scoresigner.ErrNoSignerConfig
	}
	sig, err := j.signer.Sign(args, j.ledger.Clock().CurrentSlot())
	if err != nil {
		return err
	}
	reply.Signature = *sig
	return nil
}
