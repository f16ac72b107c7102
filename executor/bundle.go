// Copyright (c) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package executor

import (
	"context"
	"math/rand"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"

	"github.com/luxfi/solsniper/metrics"
	"github.com/luxfi/solsniper/types"
)

const bundleInclusionTimeout = 30 * time.Second

// bundleTipLamports is the fixed tip attached to every bundle submission,
// at Jito's commonly-used floor (0.001 SOL, spec §4.3 variant 3).
const bundleTipLamports = 1_000_000

// Bundle adds a tip-transfer instruction routed to one of several
// well-known recipients chosen uniformly at random, submits as a bundle
// via an external relay, and awaits inclusion by polling for the signature
// with a timeout (spec §4.3, variant 3). Same compute-budget exclusion
// invariant as Warp: the relay supplies those instructions itself.
type Bundle struct {
	relay   RelayClient
	metrics *metrics.Metrics
	rng     *rand.Rand
}

func NewBundle(relay RelayClient, m *metrics.Metrics, seed int64) *Bundle {
	return &Bundle{relay: relay, metrics: m, rng: rand.New(rand.NewSource(seed))}
}

func (b *Bundle) Name() string                 { return "bundle" }
func (b *Bundle) ProvidesComputeBudget() bool { return false }

// TipRecipient picks one of the well-known tip recipients uniformly at
// random (spec §4.3 variant 3). Exported so tests can assert the tip lands
// on a well-known address without reaching into buildTipTransaction.
func (b *Bundle) TipRecipient() solana.PublicKey {
	idx := b.rng.Intn(len(wellKnownTipRecipients))
	pk := solana.MustPublicKeyFromBase58(wellKnownTipRecipients[idx])
	return pk
}

func (b *Bundle) ExecuteAndConfirm(ctx context.Context, tx *solana.Transaction, payer solana.PrivateKey, latestBlockhash Blockhash) (types.SubmissionResult, error) {
	start := time.Now()
	defer observeLatency(b.metrics, b.Name(), start)

	tipTx, err := b.buildTipTransaction(payer, latestBlockhash)
	if err != nil {
		logSubmissionError(b.Name(), mintFromTx(tx), err)
		return types.SubmissionResult{}, err
	}

	bundleID, err := b.relay.SubmitBundle(ctx, []*solana.Transaction{tipTx, tx})
	if err != nil {
		logSubmissionError(b.Name(), mintFromTx(tx), err)
		return types.SubmissionResult{}, err
	}

	sig, included, err := b.relay.PollBundleInclusion(ctx, bundleID, bundleInclusionTimeout)
	if err != nil {
		logSubmissionError(b.Name(), mintFromTx(tx), err)
		return types.SubmissionResult{}, err
	}
	if !included {
		return types.SubmissionResult{Confirmed: false}, nil
	}
	return types.SubmissionResult{Confirmed: true, Signature: sig.String()}, nil
}

// buildTipTransaction builds and signs the standalone tip-transfer
// transaction that rides alongside the user transaction in every bundle
// submission (spec §4.3 variant 3; RelayClient.SubmitBundle's "tip transfer
// + user transaction" contract).
func (b *Bundle) buildTipTransaction(payer solana.PrivateKey, latestBlockhash Blockhash) (*solana.Transaction, error) {
	ix := system.NewTransferInstruction(bundleTipLamports, payer.PublicKey(), b.TipRecipient()).Build()

	tx, err := solana.NewTransaction([]solana.Instruction{ix}, latestBlockhash.Blockhash, solana.TransactionPayer(payer.PublicKey()))
	if err != nil {
		return nil, err
	}
	if _, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(payer.PublicKey()) {
			return &payer
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return tx, nil
}
