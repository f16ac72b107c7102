// Copyright (c) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package executor

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
	solrpc "github.com/gagliardetto/solana-go/rpc"

	"github.com/luxfi/solsniper/metrics"
	"github.com/luxfi/solsniper/rpcpool"
	"github.com/luxfi/solsniper/types"
)

const confirmPollInterval = 500 * time.Millisecond

// Default submits the raw serialized transaction through the endpoint
// pool's current connection, then awaits confirmation bound by
// latestBlockhash.LastValidBlockHeight (spec §4.3, variant 1).
type Default struct {
	pool    *rpcpool.Pool
	metrics *metrics.Metrics
}

func NewDefault(pool *rpcpool.Pool, m *metrics.Metrics) *Default {
	return &Default{pool: pool, metrics: m}
}

func (d *Default) Name() string                 { return "default" }
func (d *Default) ProvidesComputeBudget() bool { return true }

func (d *Default) ExecuteAndConfirm(ctx context.Context, tx *solana.Transaction, payer solana.PrivateKey, latestBlockhash Blockhash) (types.SubmissionResult, error) {
	start := time.Now()
	defer observeLatency(d.metrics, d.Name(), start)

	client := d.pool.GetConnection()

	sig, err := client.SendTransactionWithOpts(ctx, tx, solrpc.TransactionOpts{
		SkipPreflight:       false,
		PreflightCommitment: d.pool.Current().Commitment,
	})
	if err != nil {
		logSubmissionError(d.Name(), mintFromTx(tx), err)
		return types.SubmissionResult{}, err
	}

	confirmed := awaitConfirmationOn(ctx, client, sig, latestBlockhash.LastValidBlockHeight)
	return types.SubmissionResult{Confirmed: confirmed, Signature: sig.String()}, nil
}

func mintFromTx(tx *solana.Transaction) string {
	if tx == nil || len(tx.Message.AccountKeys) == 0 {
		return ""
	}
	return tx.Message.AccountKeys[0].String()
}
