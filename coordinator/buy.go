// Copyright (c) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package coordinator

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
	"golang.org/x/sync/errgroup"

	"github.com/luxfi/solsniper/log"
	"github.com/luxfi/solsniper/subscription"
	"github.com/luxfi/solsniper/types"
)

// Buy drives the buy path for a newly observed pool (spec §4.7 "Buy path").
// accountID is the account that changed; pool is the already-decoded
// descriptor from the pool event. subs is stopped and restarted around the
// critical section in oneTokenAtATime mode.
//
// Per spec §9 open question 1, when the trade mutex is busy or a sell is
// already running the buy abandons immediately and does not restart
// subscriptions even if this call itself just stopped them: only the call
// that successfully acquires the mutex owns the restart.
func (c *Coordinator) Buy(ctx context.Context, accountID solana.PublicKey, pool types.PoolDescriptor, subs *subscription.Layer) {
	mint := pool.BaseMint.String()

	if c.cfg.UseSnipeList && c.allowList != nil && !c.allowList.IsInList(mint) {
		log.Trace("coordinator: buy skipped, mint not on snipe list", "mint", mint)
		return
	}
	if c.cfg.UseAvoidList && c.denyList != nil && c.denyList.IsInList(mint) {
		log.Debug("coordinator: buy skipped, mint on avoid list", "mint", mint)
		return
	}

	sleepCtx(ctx, millis(c.cfg.AutoBuyDelayMS))

	var (
		stopped  bool
		acquired bool
	)

	if c.cfg.OneTokenAtATime {
		if loadSellExecutionCount(c) > 0 {
			stopped = subs.Stop(ctx)
		}

		mutexBusy := !c.tradeMutex.TryLock()
		sellInProgress := loadSellExecutionCount(c) > 0
		if mutexBusy || sellInProgress {
			if !mutexBusy {
				// We did acquire the mutex in the TryLock above; release it
				// since this attempt is being abandoned, not carried forward.
				c.tradeMutex.Unlock()
			}
			log.Debug("coordinator: buy abandoned, trade already in progress", "mint", mint)
			// Subscriptions are intentionally left stopped here if we just
			// stopped them above: only the call that proceeds past this
			// point owns restarting them (spec §9 open question 1).
			return
		}
		acquired = true
	}

	defer func() {
		if c.cfg.OneTokenAtATime {
			if acquired {
				c.tradeMutex.Unlock()
			}
			if stopped {
				if err := subs.Start(ctx, nil); err != nil {
					log.Error("coordinator: restart subscriptions after buy failed", "error", err)
				}
			}
		}
	}()

	if pool.MarketID == nil {
		log.Debug("coordinator: buy abandoned, pool has no market (constant-product pool)", "mint", mint)
		return
	}

	var (
		market  types.MarketDescriptor
		baseATA solana.PublicKey
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := c.markets.Get(gctx, pool.MarketID.String())
		market = m
		return err
	})
	g.Go(func() error {
		ata, _, err := solana.FindAssociatedTokenAddress(c.payer.PublicKey(), pool.BaseMint)
		baseATA = ata
		return err
	})
	if err := g.Wait(); err != nil {
		log.Warn("coordinator: buy abandoned, market/ata lookup failed", "mint", mint, "error", err)
		return
	}
	_ = baseATA // derived for parity with the sell path; the swap helper re-derives ATAs itself

	keys := types.PoolKeys{Pool: pool, Market: &market}

	if !c.cfg.UseSnipeList {
		ok := c.engine.RunConsecutiveWindow(
			ctx, keys,
			millis(c.cfg.FilterCheckIntervalMS),
			millis(c.cfg.FilterCheckDurationMS),
			c.cfg.ConsecutiveMatchCount,
		)
		if !ok {
			log.Info("coordinator: buy abandoned, filters did not pass", "mint", mint)
			return
		}
	}

	intent := types.TradeIntent{
		Direction:   types.DirectionBuy,
		InputAmount: quoteAmountLamports(c.cfg.QuoteAmount),
		InputMint:   solana.MustPublicKeyFromBase58(c.cfg.QuoteMint),
		OutputMint:  pool.BaseMint,
		SlippageBps: pctToBps(c.cfg.BuySlippagePct),
		Pool:        pool,
	}

	result, err := c.retrySubmit(ctx, keys, intent, c.cfg.MaxBuyRetries)
	if err != nil {
		log.Error("coordinator: buy failed", "mint", mint, "error", err)
		if c.metrics != nil {
			c.metrics.BuyAttempts.WithLabelValues("failure").Inc()
		}
		return
	}
	if c.metrics != nil {
		c.metrics.BuyAttempts.WithLabelValues("success").Inc()
	}
	log.Info("coordinator: buy confirmed", "mint", mint, "signature", result.Signature, "explorer", explorerURL(result.Signature))

	c.pools.Save(mint, pool)
}

func millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

func quoteAmountLamports(quoteAmount float64) uint64 {
	if quoteAmount <= 0 {
		return 0
	}
	return uint64(quoteAmount * 1e9)
}

func pctToBps(pct float64) uint64 {
	if pct <= 0 {
		return 0
	}
	return uint64(pct * 100)
}
