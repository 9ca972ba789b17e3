// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"context"
	"strings"

	"github.com/gagliardetto/solana-go"

	"github.com/nadrunner/runnervm/runtime"
	"github.com/nadrunner/runnervm/scoresigner"
	"github.com/nadrunner/runnervm/storage"

	requester "github.com/ava-labs/avalanchego/utils/rpc"
)

type JSONRPCClient struct {
	requester requester.EndpointRequester

	programID solana.PublicKey
}

func NewJSONRPCClient(uri string) *JSONRPCClient {
	uri = strings.TrimSuffix(uri, "/")
	uri += JSONRPCEndpoint
	return &JSONRPCClient{requester: requester.NewEndpointRequester(uri)}
}

func (cli *JSONRPCClient) send(ctx context.Context, method string, args, reply interface{}) error {
	if args == nil {
		args = struct{}{}
	}
	return cli.requester.SendRequest(ctx, Name+"."+method, args, reply)
}

func (cli *JSONRPCClient) Ping(ctx context.Context) (bool, error) {
	resp := new(PingReply)
	err := cli.send(ctx, "ping", nil, resp)
	return resp.Success, err
}

func (cli *JSONRPCClient) Program(ctx context.Context) (*ProgramReply, error) {
	resp := new(ProgramReply)
	if err := cli.send(ctx, "program", nil, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// ProgramID is cached after the first call.
func (cli *JSONRPCClient) ProgramID(ctx context.Context) (solana.PublicKey, error) {
	if !cli.programID.IsZero() {
		return cli.programID, nil
	}
	resp, err := cli.Program(ctx)
	if err != nil {
		return solana.PublicKey{}, err
	}
	cli.programID = resp.ProgramID
	return cli.programID, nil
}

func (cli *JSONRPCClient) Slot(ctx context.Context) (*SlotReply, error) {
	resp := new(SlotReply)
	if err := cli.send(ctx, "slot", nil, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (cli *JSONRPCClient) SubmitTx(ctx context.Context, tx *runtime.Transaction) (*TxResult, error) {
	resp := new(SubmitTxReply)
	if err := cli.send(ctx, "submitTx", &SubmitTxArgs{Tx: tx.Bytes()}, resp); err != nil {
		return nil, err
	}
	return resp.Result, nil
}

func (cli *JSONRPCClient) Account(ctx context.Context, id solana.PublicKey) (*AccountReply, error) {
	resp := new(AccountReply)
	if err := cli.send(ctx, "account", &AccountArgs{Account: id}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (cli *JSONRPCClient) TokenAccount(ctx context.Context, id solana.PublicKey) (*storage.TokenAccount, error) {
	resp := new(TokenAccountReply)
	if err := cli.send(ctx, "tokenAccount", &AccountArgs{Account: id}, resp); err != nil {
		return nil, err
	}
	return &resp.TokenAccount, nil
}

func (cli *JSONRPCClient) MintAuthority(ctx context.Context, id solana.PublicKey) (*storage.MintAuthority, error) {
	resp := new(MintAuthorityReply)
	if err := cli.send(ctx, "mintAuthority", &AccountArgs{Account: id}, resp); err != nil {
		return nil, err
	}
	return &resp.MintAuthority, nil
}

// CreateAccount allocates [size] bytes at [id]. A zero [lamports] asks for the
// rent-exempt minimum; the funded amount is returned.
func (cli *JSONRPCClient) CreateAccount(ctx context.Context, id solana.PublicKey, lamports uint64, size int) (uint64, error) {
	resp := new(CreateAccountReply)
	err := cli.send(ctx, "createAccount", &CreateAccountArgs{
		Account:  id,
		Lamports: lamports,
		Size:     size,
	}, resp)
	return resp.Lamports, err
}

func (cli *JSONRPCClient) SignScore(ctx context.Context, req *scoresigner.Request) (*scoresigner.Signature, error) {
	resp := new(SignScoreReply)
	if err := cli.send(ctx, "signScore", req, resp); err != nil {
		return nil, err
	}
	return &resp.Signature, nil
}
