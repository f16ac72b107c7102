// Copyright (c) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package coordinator implements the Trade Coordinator (spec §4.7): the
// component that reacts to pool and wallet events by driving the buy and
// sell paths end to end, serializing them against each other when
// oneTokenAtATime is set, and retrying submissions up to the configured
// bound. Grounded on the teacher's miner/worker.go, which plays the same
// role for block production: one struct owning every collaborator,
// mutex-guarded shared counters, and a retry loop around a single
// fallible operation.
package coordinator

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gagliardetto/solana-go"
	solrpc "github.com/gagliardetto/solana-go/rpc"

	"github.com/luxfi/solsniper/config"
	"github.com/luxfi/solsniper/executor"
	"github.com/luxfi/solsniper/filters"
	"github.com/luxfi/solsniper/listcache"
	"github.com/luxfi/solsniper/log"
	"github.com/luxfi/solsniper/metrics"
	"github.com/luxfi/solsniper/pricewatch"
	"github.com/luxfi/solsniper/rpcpool"
	"github.com/luxfi/solsniper/storage"
	"github.com/luxfi/solsniper/swap"
	"github.com/luxfi/solsniper/types"
)

// ErrSubmissionUnconfirmed is the terminal error of a buy or sell attempt
// whose retries are all exhausted without confirmation (spec §7
// "Submission-unconfirmed-after-retries").
var ErrSubmissionUnconfirmed = errors.New("coordinator: submission unconfirmed after retries")

// Coordinator owns every collaborator the buy/sell paths need and the
// single-trade mutex + sellExecutionCount bookkeeping for oneTokenAtATime
// mode (spec §4.7, §9 REDESIGN FLAGS note on that mode's asymmetry).
type Coordinator struct {
	cfg config.Config

	pool      *rpcpool.Pool
	allowList *listcache.Cache
	denyList  *listcache.Cache
	engine    *filters.Engine
	exec      executor.Executor
	markets   *storage.MarketStore
	pools     *storage.PoolStore
	swapHelper *swap.Helper
	priceWatcher *pricewatch.Watcher
	metrics   *metrics.Metrics

	payer solana.PrivateKey

	tradeMutex         sync.Mutex
	sellExecutionCount int32
}

// New assembles a Coordinator from its collaborators. allowList/denyList may
// be nil when UseSnipeList/UseAvoidList are both false.
func New(
	cfg config.Config,
	pool *rpcpool.Pool,
	allowList, denyList *listcache.Cache,
	engine *filters.Engine,
	exec executor.Executor,
	markets *storage.MarketStore,
	pools *storage.PoolStore,
	swapHelper *swap.Helper,
	priceWatcher *pricewatch.Watcher,
	payer solana.PrivateKey,
	m *metrics.Metrics,
) *Coordinator {
	return &Coordinator{
		cfg:          cfg,
		pool:         pool,
		allowList:    allowList,
		denyList:     denyList,
		engine:       engine,
		exec:         exec,
		markets:      markets,
		pools:        pools,
		swapHelper:   swapHelper,
		priceWatcher: priceWatcher,
		payer:        payer,
		metrics:      m,
	}
}

// fetchBlockhash retrieves a fresh blockhash from the current pool
// connection, bounding every submission attempt's validity window (spec
// GLOSSARY "Blockhash expiry").
func (c *Coordinator) fetchBlockhash(ctx context.Context) (executor.Blockhash, error) {
	client := c.pool.GetConnection()
	res, err := client.GetLatestBlockhash(ctx, solrpc.CommitmentType(c.cfg.Commitment))
	if err != nil {
		return executor.Blockhash{}, err
	}
	return executor.Blockhash{
		Blockhash:            res.Value.Blockhash,
		LastValidBlockHeight: res.Value.LastValidBlockHeight,
	}, nil
}

// submit builds, signs and submits one swap attempt, returning the executor's
// result. A zero MinimumAmountOut (swap.ErrZeroOutput) aborts before ever
// building a transaction (spec §4.7.3, §8 boundary behavior).
func (c *Coordinator) submit(ctx context.Context, keys types.PoolKeys, intent types.TradeIntent) (types.SubmissionResult, error) {
	plan, err := c.swapHelper.Build(ctx, keys, intent, c.payer.PublicKey(), c.exec, c.cfg.UnitLimit, c.cfg.UnitPrice)
	if err != nil {
		return types.SubmissionResult{}, err
	}

	blockhash, err := c.fetchBlockhash(ctx)
	if err != nil {
		return types.SubmissionResult{}, err
	}

	tx, err := solana.NewTransaction(plan.Instructions, blockhash.Blockhash, solana.TransactionPayer(c.payer.PublicKey()))
	if err != nil {
		return types.SubmissionResult{}, err
	}
	if _, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(c.payer.PublicKey()) {
			return &c.payer
		}
		return nil
	}); err != nil {
		return types.SubmissionResult{}, err
	}

	return c.exec.ExecuteAndConfirm(ctx, tx, c.payer, blockhash)
}

// retrySubmit runs submit up to maxAttempts times, refreshing the endpoint
// pool selection between failed attempts (spec §4.2: callers refresh after a
// failed submission), and returns ErrSubmissionUnconfirmed once exhausted.
func (c *Coordinator) retrySubmit(ctx context.Context, keys types.PoolKeys, intent types.TradeIntent, maxAttempts int) (types.SubmissionResult, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		intent.Attempt = attempt
		result, err := c.submit(ctx, keys, intent)
		if err != nil {
			lastErr = err
			log.Warn("coordinator: submission attempt failed", "direction", intent.Direction.String(), "attempt", attempt, "error", err)
			c.pool.Refresh()
			continue
		}
		if result.Confirmed {
			return result, nil
		}
		log.Warn("coordinator: submission unconfirmed, retrying", "direction", intent.Direction.String(), "attempt", attempt, "signature", result.Signature)
		c.pool.Refresh()
	}
	if lastErr != nil {
		return types.SubmissionResult{}, errors.Join(ErrSubmissionUnconfirmed, lastErr)
	}
	return types.SubmissionResult{}, ErrSubmissionUnconfirmed
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

func loadSellExecutionCount(c *Coordinator) int32 {
	return atomic.LoadInt32(&c.sellExecutionCount)
}

// explorerURL builds a Solana explorer link for a confirmed transaction
// signature, attached to confirmed-trade info logs (spec §7: "confirmed
// trades emit info-level records with a chain-explorer URL").
func explorerURL(signature string) string {
	if signature == "" {
		return ""
	}
	return "https://explorer.solana.com/tx/" + signature
}
