// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"context"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nadrunner/runnervm/actions"
	"github.com/nadrunner/runnervm/consts"
	"github.com/nadrunner/runnervm/crypto/ed25519"
	"github.com/nadrunner/runnervm/host"
	"github.com/nadrunner/runnervm/internal/pebble"
	"github.com/nadrunner/runnervm/program"
	"github.com/nadrunner/runnervm/programerr"
	"github.com/nadrunner/runnervm/state"
	"github.com/nadrunner/runnervm/storage"
	"github.com/nadrunner/runnervm/trace"
	"github.com/nadrunner/runnervm/tstate"
)

type harness struct {
	t      *testing.T
	ctx    context.Context
	ledger *Ledger
	id     solana.PublicKey
	nonce  uint64
}

func newHarness(t *testing.T, db state.Database, verifier actions.ScoreVerifier) *harness {
	require := require.New(t)

	id := solana.NewWallet().PublicKey()
	ledger, err := New(
		context.Background(),
		zap.NewNop(),
		trace.Noop(),
		db,
		program.New(id, verifier, zap.NewNop()),
		Config{
			Rent:                 host.DefaultRent(),
			SlotDuration:         time.Hour,
			AllowAccountCreation: true,
		},
		prometheus.NewRegistry(),
	)
	require.NoError(err)
	return &harness{t: t, ctx: context.Background(), ledger: ledger, id: id}
}

func newKey(t *testing.T) solana.PrivateKey {
	k, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return k
}

func (h *harness) allocate(size int) solana.PublicKey {
	id := solana.NewWallet().PublicKey()
	_, err := h.ledger.CreateAccount(h.ctx, id, 0, size)
	require.NoError(h.t, err)
	return id
}

func (h *harness) tx(keys []solana.PrivateKey, ixs ...*program.Instruction) *Transaction {
	h.nonce++
	tx, err := (&Message{Nonce: h.nonce, Instructions: ixs}).Sign(keys...)
	require.NoError(h.t, err)
	return tx
}

func (h *harness) exec(keys []solana.PrivateKey, ixs ...*program.Instruction) error {
	_, err := h.ledger.Execute(h.ctx, h.tx(keys, ixs...))
	return err
}

func (h *harness) balance(id solana.PublicKey) uint64 {
	slot, err := h.ledger.Account(h.ctx, id)
	require.NoError(h.t, err)
	account, err := storage.UnpackTokenAccount(slot.Data)
	require.NoError(h.t, err)
	return account.Amount
}

// setup creates an authority held by [admin] and token accounts for each of
// [owners].
func (h *harness) setup(admin solana.PrivateKey, owners ...solana.PrivateKey) (solana.PublicKey, []solana.PublicKey) {
	require := require.New(h.t)

	authority := h.allocate(storage.MintAuthorityLen)
	require.NoError(h.exec([]solana.PrivateKey{admin},
		program.NewInitializeMintAuthority(h.id, authority, admin.PublicKey())))

	tokens := make([]solana.PublicKey, len(owners))
	for i, owner := range owners {
		tokens[i] = h.allocate(storage.TokenAccountLen)
		require.NoError(h.exec([]solana.PrivateKey{owner},
			program.NewInitializeTokenAccount(h.id, tokens[i], owner.PublicKey())))
	}
	return authority, tokens
}

func TestEndToEnd(t *testing.T) {
	for name, db := range map[string]func(t *testing.T) state.Database{
		"memory": func(*testing.T) state.Database { return state.NewMemory() },
		"pebble": func(t *testing.T) state.Database {
			db, err := pebble.New(t.TempDir(), pebble.NewDefaultConfig(), prometheus.NewRegistry())
			require.NoError(t, err)
			t.Cleanup(func() { _ = db.Close() })
			return db
		},
	} {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)

			h := newHarness(t, db(t), nil)
			admin, owner, receiver := newKey(t), newKey(t), newKey(t)
			authority, tokens := h.setup(admin, owner, receiver)
			require.Zero(h.balance(tokens[0]))

			require.NoError(h.exec([]solana.PrivateKey{admin},
				program.NewAdminMint(h.id, authority, admin.PublicKey(), tokens[0], 1000)))
			require.Equal(uint64(1000), h.balance(tokens[0]))

			require.NoError(h.exec([]solana.PrivateKey{owner},
				program.NewTransferTokens(h.id, tokens[0], tokens[1], owner.PublicKey(), 400)))
			require.Equal(uint64(600), h.balance(tokens[0]))
			require.Equal(uint64(400), h.balance(tokens[1]))
		})
	}
}

func TestFailedInstructionRollsBackTransaction(t *testing.T) {
	require := require.New(t)

	h := newHarness(t, state.NewMemory(), nil)
	admin, owner, receiver := newKey(t), newKey(t), newKey(t)
	authority, tokens := h.setup(admin, owner, receiver)

	err := h.exec([]solana.PrivateKey{admin, owner},
		program.NewAdminMint(h.id, authority, admin.PublicKey(), tokens[0], 100),
		program.NewTransferTokens(h.id, tokens[0], tokens[1], owner.PublicKey(), 101),
	)
	var ierr *InstructionError
	require.ErrorAs(err, &ierr)
	require.Equal(1, ierr.Index)
	require.ErrorIs(err, programerr.InsufficientFunds)
	code, ok := programerr.CodeOf(err)
	require.True(ok)
	require.Equal(programerr.InsufficientFunds.Code(), code)

	// the mint in the first instruction was not kept
	require.Zero(h.balance(tokens[0]))
	require.Zero(h.balance(tokens[1]))

	// both in one transaction
	require.NoError(h.exec([]solana.PrivateKey{admin, owner},
		program.NewAdminMint(h.id, authority, admin.PublicKey(), tokens[0], 100),
		program.NewTransferTokens(h.id, tokens[0], tokens[1], owner.PublicKey(), 100),
	))
	require.Zero(h.balance(tokens[0]))
	require.Equal(uint64(100), h.balance(tokens[1]))
}

func TestReplay(t *testing.T) {
	require := require.New(t)

	h := newHarness(t, state.NewMemory(), nil)
	admin, owner := newKey(t), newKey(t)
	authority, tokens := h.setup(admin, owner)

	tx := h.tx([]solana.PrivateKey{admin}, program.NewAdminMint(h.id, authority, admin.PublicKey(), tokens[0], 5))
	res, err := h.ledger.Execute(h.ctx, tx)
	require.NoError(err)
	require.Equal(tx.ID(), res.TxID)

	_, err = h.ledger.Execute(h.ctx, tx)
	require.ErrorIs(err, ErrDuplicateTransaction)
	require.Equal(uint64(5), h.balance(tokens[0]))

	// same instruction, new nonce
	require.NoError(h.exec([]solana.PrivateKey{admin},
		program.NewAdminMint(h.id, authority, admin.PublicKey(), tokens[0], 5)))
	require.Equal(uint64(10), h.balance(tokens[0]))
}

func TestSignatures(t *testing.T) {
	require := require.New(t)

	h := newHarness(t, state.NewMemory(), nil)
	admin, owner := newKey(t), newKey(t)
	authority, tokens := h.setup(admin, owner)
	ix := program.NewAdminMint(h.id, authority, admin.PublicKey(), tokens[0], 5)

	_, err := (&Message{Instructions: []*program.Instruction{ix}}).Sign(owner)
	require.ErrorIs(err, ErrMissingSignature)

	tx := h.tx([]solana.PrivateKey{admin}, ix)
	tx.Signatures[0][0] ^= 0xff
	_, err = h.ledger.Execute(h.ctx, tx)
	require.ErrorIs(err, ErrInvalidSignature)

	tx = h.tx([]solana.PrivateKey{admin}, ix)
	tx.Signatures = append(tx.Signatures, solana.Signature{})
	_, err = h.ledger.Execute(h.ctx, tx)
	require.ErrorIs(err, ErrTooManySignatures)

	require.Zero(h.balance(tokens[0]))
}

func TestUnsignedSignerFlag(t *testing.T) {
	require := require.New(t)

	h := newHarness(t, state.NewMemory(), nil)
	admin, owner := newKey(t), newKey(t)
	authority, tokens := h.setup(admin, owner)

	// admin is listed but not flagged as a signer, so it never signs
	ix := program.NewAdminMint(h.id, authority, admin.PublicKey(), tokens[0], 5)
	ix.Accounts[1].IsSigner = false
	ix.Accounts = append(ix.Accounts, solana.NewAccountMeta(owner.PublicKey(), false, true))

	err := h.exec([]solana.PrivateKey{owner}, ix)
	require.ErrorIs(err, programerr.MissingRequiredSignature)
}

func TestReadOnlyAccountModified(t *testing.T) {
	require := require.New(t)

	h := newHarness(t, state.NewMemory(), nil)
	admin, owner := newKey(t), newKey(t)
	authority, tokens := h.setup(admin, owner)

	ix := program.NewAdminMint(h.id, authority, admin.PublicKey(), tokens[0], 5)
	ix.Accounts[2].IsWritable = false
	err := h.exec([]solana.PrivateKey{admin}, ix)
	require.ErrorIs(err, ErrReadOnlyModified)
	require.Zero(h.balance(tokens[0]))
}

func TestReadOnlyAccountModifiedReportsInstruction(t *testing.T) {
	require := require.New(t)

	h := newHarness(t, state.NewMemory(), nil)
	admin, owner, receiver := newKey(t), newKey(t), newKey(t)
	authority, tokens := h.setup(admin, owner, receiver)

	second := program.NewAdminMint(h.id, authority, admin.PublicKey(), tokens[1], 5)
	second.Accounts[2].IsWritable = false
	err := h.exec([]solana.PrivateKey{admin},
		program.NewAdminMint(h.id, authority, admin.PublicKey(), tokens[0], 5),
		second,
	)
	var ierr *InstructionError
	require.ErrorAs(err, &ierr)
	require.Equal(1, ierr.Index)
	require.ErrorIs(err, ErrReadOnlyModified)
	require.Zero(h.balance(tokens[0]))
	require.Zero(h.balance(tokens[1]))
}

func TestStageIsAllOrNothing(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	h := newHarness(t, state.NewMemory(), nil)
	writable, readonly := solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey()
	raw, err := (&Slot{Owner: h.id, Lamports: 1, Data: []byte{0}}).Bytes()
	require.NoError(err)

	scope := state.Keys{}
	scope.Add(string(SlotKey(writable)), state.Write)
	scope.Add(string(SlotKey(readonly)), state.Read)
	view := tstate.New(2).NewView(scope, map[string][]byte{
		string(SlotKey(writable)): raw,
		string(SlotKey(readonly)): raw,
	})

	staged := map[solana.PublicKey][]byte{writable: {0}, readonly: {0}}
	accounts := []*host.AccountInfo{
		{Key: writable, Owner: h.id, Lamports: 1, Data: []byte{1}},
		{Key: readonly, Owner: h.id, Lamports: 1, Data: []byte{1}},
	}
	err = h.ledger.stage(ctx, view, accounts, staged)
	require.ErrorIs(err, ErrReadOnlyModified)
	require.Zero(view.OpIndex())
	require.Zero(view.PendingChanges())
	require.Equal([]byte{0}, staged[writable])

	require.NoError(h.ledger.stage(ctx, view, accounts[:1], staged))
	require.Equal(1, view.OpIndex())
	require.Equal([]byte{1}, staged[writable])
	v, err := view.GetValue(ctx, SlotKey(writable))
	require.NoError(err)
	slot, err := ParseSlot(v)
	require.NoError(err)
	require.Equal([]byte{1}, slot.Data)

	// unchanged accounts are not written again
	require.NoError(h.ledger.stage(ctx, view, accounts[:1], staged))
	require.Equal(1, view.OpIndex())
}

func TestUnknownProgram(t *testing.T) {
	require := require.New(t)

	h := newHarness(t, state.NewMemory(), nil)
	admin, owner := newKey(t), newKey(t)
	authority, tokens := h.setup(admin, owner)

	ix := program.NewAdminMint(solana.NewWallet().PublicKey(), authority, admin.PublicKey(), tokens[0], 5)
	require.ErrorIs(h.exec([]solana.PrivateKey{admin}, ix), ErrUnknownProgram)
}

func TestCreateAccount(t *testing.T) {
	require := require.New(t)

	h := newHarness(t, state.NewMemory(), nil)
	id := solana.NewWallet().PublicKey()

	slot, err := h.ledger.CreateAccount(h.ctx, id, 0, storage.TokenAccountLen)
	require.NoError(err)
	require.Equal(h.id, slot.Owner)
	require.Equal(host.DefaultRent().MinimumBalance(storage.TokenAccountLen), slot.Lamports)
	require.Equal(make([]byte, storage.TokenAccountLen), slot.Data)

	stored, err := h.ledger.Account(h.ctx, id)
	require.NoError(err)
	require.Equal(slot, stored)

	_, err = h.ledger.CreateAccount(h.ctx, id, 0, storage.TokenAccountLen)
	require.ErrorIs(err, ErrAccountExists)
	_, err = h.ledger.CreateAccount(h.ctx, consts.SysvarClockID, 0, 1)
	require.ErrorIs(err, ErrAccountExists)
	_, err = h.ledger.CreateAccount(h.ctx, solana.NewWallet().PublicKey(), 0, MaxAccountSize+1)
	require.ErrorIs(err, ErrInvalidAccountSize)

	_, err = h.ledger.Account(h.ctx, solana.NewWallet().PublicKey())
	require.ErrorIs(err, state.ErrNotFound)

	h.ledger.allowAccountCreation = false
	_, err = h.ledger.CreateAccount(h.ctx, solana.NewWallet().PublicKey(), 0, 1)
	require.ErrorIs(err, ErrAccountCreationClosed)
}

func TestUnderfundedAccountCannotInitialize(t *testing.T) {
	require := require.New(t)

	h := newHarness(t, state.NewMemory(), nil)
	owner := newKey(t)
	id := solana.NewWallet().PublicKey()
	_, err := h.ledger.CreateAccount(h.ctx, id, 1, storage.TokenAccountLen)
	require.NoError(err)

	err = h.exec([]solana.PrivateKey{owner}, program.NewInitializeTokenAccount(h.id, id, owner.PublicKey()))
	require.ErrorIs(err, programerr.AccountNotRentExempt)
}

func TestMintGameScoreWithVerifier(t *testing.T) {
	require := require.New(t)

	h := newHarness(t, state.NewMemory(), actions.Ed25519Verifier{})
	admin, player := newKey(t), newKey(t)
	authority, tokens := h.setup(admin, player)

	score := uint64(2_500 * consts.UnitsPerToken)
	err := h.exec([]solana.PrivateKey{player},
		program.NewMintGameScore(h.id, tokens[0], player.PublicKey(), authority, score, solana.Signature{}))
	require.ErrorIs(err, programerr.InvalidSignature)
	code, ok := programerr.CodeOf(err)
	require.True(ok)
	require.Equal(uint64(1)<<32, code)

	digest := actions.ScoreDigest(player.PublicKey(), score, h.ledger.Clock().CurrentSlot())
	sig, err := ed25519.Sign(digest[:], admin)
	require.NoError(err)
	require.NoError(h.exec([]solana.PrivateKey{player},
		program.NewMintGameScore(h.id, tokens[0], player.PublicKey(), authority, score, sig)))
	require.Equal(score, h.balance(tokens[0]))
}

func TestGenesisPersists(t *testing.T) {
	require := require.New(t)

	db := state.NewMemory()
	first, err := loadGenesis(context.Background(), db)
	require.NoError(err)
	second, err := loadGenesis(context.Background(), db)
	require.NoError(err)
	require.True(first.Equal(second))
}

type recorder struct {
	results []*Result
	errs    []error
}

func (r *recorder) Executed(_ *Transaction, res *Result, err error) {
	r.results = append(r.results, res)
	r.errs = append(r.errs, err)
}

func TestListeners(t *testing.T) {
	require := require.New(t)

	h := newHarness(t, state.NewMemory(), nil)
	admin, owner := newKey(t), newKey(t)
	authority, tokens := h.setup(admin, owner)

	r := &recorder{}
	h.ledger.AddListener(r)

	tx := h.tx([]solana.PrivateKey{admin}, program.NewAdminMint(h.id, authority, admin.PublicKey(), tokens[0], 5))
	_, err := h.ledger.Execute(h.ctx, tx)
	require.NoError(err)
	_, err = h.ledger.Execute(h.ctx, tx)
	require.ErrorIs(err, ErrDuplicateTransaction)

	require.Len(r.results, 2)
	require.Equal(tx.ID(), r.results[0].TxID)
	require.NoError(r.errs[0])
	require.Nil(r.results[1])
	require.ErrorIs(r.errs[1], ErrDuplicateTransaction)
}
