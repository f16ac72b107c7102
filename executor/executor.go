// Copyright (c) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package executor implements the Transaction Executor capability (spec
// §4.3): one operation, ExecuteAndConfirm, with three variants (Default,
// Warp, Bundle). Per the REDESIGN FLAGS note in spec §9, the coordinator
// never type-switches on the concrete variant; it only reads the
// ProvidesComputeBudget() capability flag to decide whether to prepend
// compute-budget instructions.
package executor

import (
	"context"
	"errors"
	"time"

	"github.com/gagliardetto/solana-go"
	solrpc "github.com/gagliardetto/solana-go/rpc"

	"github.com/luxfi/solsniper/log"
	"github.com/luxfi/solsniper/metrics"
	"github.com/luxfi/solsniper/types"
)

// ErrSubmissionFailed wraps an unrecoverable submission failure (spec §7
// "Submission-failed"): simulation, signing or encoding rejected the
// transaction before it was ever sent.
var ErrSubmissionFailed = errors.New("executor: submission failed")

// Blockhash bounds how long a submitted transaction remains eligible for
// inclusion (spec GLOSSARY "Blockhash expiry").
type Blockhash struct {
	Blockhash            solana.Hash
	LastValidBlockHeight uint64
}

// Executor is the polymorphic capability every variant implements.
type Executor interface {
	// ExecuteAndConfirm submits tx (already built, not yet signed) as
	// payer and awaits confirmation bound by latestBlockhash. Returns
	// ErrSubmissionFailed on unrecoverable submission failure; an
	// unconfirmed but submitted transaction returns confirmed=false
	// without an error.
	ExecuteAndConfirm(ctx context.Context, tx *solana.Transaction, payer solana.PrivateKey, latestBlockhash Blockhash) (types.SubmissionResult, error)

	// ProvidesComputeBudget reports whether this variant supplies its own
	// compute-budget instructions, in which case the swap helper must not
	// prepend them (spec §4.3 invariant, Warp/Bundle).
	ProvidesComputeBudget() bool

	// Name identifies the variant for metrics/logging.
	Name() string
}

// logSubmissionError best-effort extracts simulation logs from err and
// attaches them to a debug-level record, per the variants' shared
// error-reporting contract (spec §4.3).
func logSubmissionError(variant, mint string, err error) {
	logs := simulationLogsFrom(err)
	log.Debug("executor: submission error", "executor", variant, "mint", mint, "error", err, "simulationLogs", logs)
}

// simulationLogsFrom extracts simulation logs from a solana-go RPC error,
// when present.
func simulationLogsFrom(err error) []string {
	var rpcErr *solrpc.JsonRpcError
	if errors.As(err, &rpcErr) {
		if data, ok := rpcErr.Data.(map[string]any); ok {
			if rawLogs, ok := data["logs"].([]any); ok {
				logs := make([]string, 0, len(rawLogs))
				for _, l := range rawLogs {
					if s, ok := l.(string); ok {
						logs = append(logs, s)
					}
				}
				return logs
			}
		}
	}
	return nil
}

func observeLatency(m *metrics.Metrics, variant string, start time.Time) {
	if m == nil {
		return
	}
	m.SubmissionLatency.WithLabelValues(variant).Observe(time.Since(start).Seconds())
}
