// Copyright (c) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package executor

import (
	"context"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/solsniper/metrics"
)

type fakeRelay struct {
	submittedTxs []*solana.Transaction
	bundleID     string
	submitErr    error

	pollSig      solana.Signature
	pollIncluded bool
	pollErr      error
}

func (f *fakeRelay) SubmitWarp(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	return solana.Signature{}, nil
}

func (f *fakeRelay) SubmitBundle(ctx context.Context, txs []*solana.Transaction) (string, error) {
	f.submittedTxs = txs
	return f.bundleID, f.submitErr
}

func (f *fakeRelay) PollBundleInclusion(ctx context.Context, bundleID string, timeout time.Duration) (solana.Signature, bool, error) {
	return f.pollSig, f.pollIncluded, f.pollErr
}

func newSignedUserTx(t *testing.T, payer solana.PrivateKey) *solana.Transaction {
	t.Helper()
	recipient := solana.NewWallet().PublicKey()
	ix := solana.NewInstruction(solana.SystemProgramID, solana.AccountMetaSlice{
		solana.NewAccountMeta(payer.PublicKey(), true, true),
		solana.NewAccountMeta(recipient, true, false),
	}, []byte{0})

	tx, err := solana.NewTransaction([]solana.Instruction{ix}, solana.Hash{}, solana.TransactionPayer(payer.PublicKey()))
	require.NoError(t, err)
	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(payer.PublicKey()) {
			return &payer
		}
		return nil
	})
	require.NoError(t, err)
	return tx
}

func TestBundleExecuteAndConfirmSubmitsTipAndUserTx(t *testing.T) {
	payer := solana.NewWallet().PrivateKey
	userTx := newSignedUserTx(t, payer)

	relay := &fakeRelay{bundleID: "bundle-1", pollIncluded: true, pollSig: solana.Signature{1, 2, 3}}
	b := NewBundle(relay, metrics.Noop(), 42)

	result, err := b.ExecuteAndConfirm(context.Background(), userTx, payer, Blockhash{})
	require.NoError(t, err)
	require.True(t, result.Confirmed)

	require.Len(t, relay.submittedTxs, 2)
	require.Same(t, userTx, relay.submittedTxs[1])

	tipTx := relay.submittedTxs[0]
	require.Len(t, tipTx.Message.Instructions, 1)
	require.NotEmpty(t, tipTx.Signatures)

	ci := tipTx.Message.Instructions[0]
	require.Equal(t, solana.SystemProgramID, tipTx.Message.AccountKeys[ci.ProgramIDIndex])
	require.Len(t, ci.Accounts, 2)

	fromKey := tipTx.Message.AccountKeys[ci.Accounts[0]]
	toKey := tipTx.Message.AccountKeys[ci.Accounts[1]]
	require.True(t, fromKey.Equals(payer.PublicKey()))

	var isWellKnown bool
	for _, addr := range wellKnownTipRecipients {
		if toKey.Equals(solana.MustPublicKeyFromBase58(addr)) {
			isWellKnown = true
			break
		}
	}
	require.True(t, isWellKnown)
}

func TestBundleExecuteAndConfirmNotIncluded(t *testing.T) {
	payer := solana.NewWallet().PrivateKey
	userTx := newSignedUserTx(t, payer)

	relay := &fakeRelay{bundleID: "bundle-2", pollIncluded: false}
	b := NewBundle(relay, metrics.Noop(), 7)

	result, err := b.ExecuteAndConfirm(context.Background(), userTx, payer, Blockhash{})
	require.NoError(t, err)
	require.False(t, result.Confirmed)
}

func TestTipRecipientIsAlwaysWellKnown(t *testing.T) {
	b := NewBundle(&fakeRelay{}, metrics.Noop(), 1)

	for i := 0; i < 20; i++ {
		recipient := b.TipRecipient()
		var found bool
		for _, addr := range wellKnownTipRecipients {
			if recipient.Equals(solana.MustPublicKeyFromBase58(addr)) {
				found = true
				break
			}
		}
		require.True(t, found)
	}
}
