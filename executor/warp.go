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

// Warp batches the user's transaction with a service-fee instruction and
// forwards it to an external relay; the relay returns a signature and
// confirmation is awaited on the main endpoint (spec §4.3, variant 2).
// Does not provide its own compute-budget instructions; the relay supplies
// those itself, so the coordinator must omit them from the user
// transaction.
type Warp struct {
	relay   RelayClient
	pool    *rpcpool.Pool
	metrics *metrics.Metrics
}

func NewWarp(relay RelayClient, pool *rpcpool.Pool, m *metrics.Metrics) *Warp {
	return &Warp{relay: relay, pool: pool, metrics: m}
}

func (w *Warp) Name() string                 { return "warp" }
func (w *Warp) ProvidesComputeBudget() bool { return false }

func (w *Warp) ExecuteAndConfirm(ctx context.Context, tx *solana.Transaction, payer solana.PrivateKey, latestBlockhash Blockhash) (types.SubmissionResult, error) {
	start := time.Now()
	defer observeLatency(w.metrics, w.Name(), start)

	sig, err := w.relay.SubmitWarp(ctx, tx)
	if err != nil {
		logSubmissionError(w.Name(), mintFromTx(tx), err)
		return types.SubmissionResult{}, err
	}

	client := w.pool.GetConnection()
	confirmed := awaitConfirmationOn(ctx, client, sig, latestBlockhash.LastValidBlockHeight)
	return types.SubmissionResult{Confirmed: confirmed, Signature: sig.String()}, nil
}

// awaitConfirmationOn is the shared polling loop Default and Warp both
// drive against a plain RPC client (Default polls its own pool connection
// inline since it also needs it for SendTransaction; Warp only needs it for
// confirmation, hence the shared helper).
func awaitConfirmationOn(ctx context.Context, client *solrpc.Client, sig solana.Signature, lastValidBlockHeight uint64) bool {
	ticker := time.NewTicker(confirmPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
		}

		statuses, err := client.GetSignatureStatuses(ctx, true, sig)
		if err == nil && len(statuses.Value) > 0 && statuses.Value[0] != nil {
			st := statuses.Value[0]
			if st.Err != nil {
				return false
			}
			if st.ConfirmationStatus == solrpc.ConfirmationStatusConfirmed || st.ConfirmationStatus == solrpc.ConfirmationStatusFinalized {
				return true
			}
		}

		height, err := client.GetBlockHeight(ctx, solrpc.CommitmentConfirmed)
		if err == nil && lastValidBlockHeight > 0 && height > lastValidBlockHeight {
			return false
		}
	}
}
