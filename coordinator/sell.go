// Copyright (c) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package coordinator

import (
	"context"
	"sync/atomic"

	"github.com/gagliardetto/solana-go"

	"github.com/luxfi/solsniper/log"
	"github.com/luxfi/solsniper/subscription"
	"github.com/luxfi/solsniper/types"
)

// Sell drives the sell path for a wallet token-account event (spec §4.7
// "Sell path"). tokenAccountID is the account that changed; evt carries the
// decoded mint and current balance. Unlike Buy, bookkeeping for
// oneTokenAtATime happens unconditionally at the top and is unwound by a
// single defer that covers every return path, including early abandonment
// (spec §4.7 step 8, "Finally").
func (c *Coordinator) Sell(ctx context.Context, tokenAccountID solana.PublicKey, evt types.WalletEvent, subs *subscription.Layer) {
	var stopped bool

	if c.cfg.OneTokenAtATime {
		atomic.AddInt32(&c.sellExecutionCount, 1)
		stopped = subs.Stop(ctx)
	}

	defer func() {
		if c.cfg.OneTokenAtATime {
			atomic.AddInt32(&c.sellExecutionCount, -1)
			if stopped {
				if err := subs.Start(ctx, nil); err != nil {
					log.Error("coordinator: restart subscriptions after sell failed", "error", err)
				}
			}
		}
	}()

	mint := evt.Mint.String()

	pool, err := c.pools.Get(ctx, mint)
	if err != nil {
		log.Debug("coordinator: sell abandoned, pool not in storage", "mint", mint, "error", err)
		return
	}

	if evt.Amount == 0 {
		log.Trace("coordinator: sell abandoned, zero balance", "mint", mint)
		return
	}

	sleepCtx(ctx, millis(c.cfg.AutoSellDelayMS))

	var market types.MarketDescriptor
	if pool.MarketID != nil {
		m, err := c.markets.Get(ctx, pool.MarketID.String())
		if err != nil {
			log.Warn("coordinator: sell abandoned, market lookup failed", "mint", mint, "error", err)
			return
		}
		market = m
	}
	keys := types.PoolKeys{Pool: pool, Market: &market}

	referenceQuoteAmount := quoteAmountLamports(c.cfg.QuoteAmount)
	c.priceWatcher.Watch(
		ctx, keys,
		referenceQuoteAmount, evt.Amount,
		pctToBps(c.cfg.SellSlippagePct),
		c.cfg.TakeProfitPct, c.cfg.StopLossPct,
		millis(c.cfg.PriceCheckIntervalMS), millis(c.cfg.PriceCheckDurationMS),
	)

	intent := types.TradeIntent{
		Direction:   types.DirectionSell,
		InputAmount: evt.Amount,
		InputMint:   pool.BaseMint,
		OutputMint:  solana.MustPublicKeyFromBase58(c.cfg.QuoteMint),
		SlippageBps: pctToBps(c.cfg.SellSlippagePct),
		Pool:        pool,
	}

	result, err := c.retrySubmit(ctx, keys, intent, c.cfg.MaxSellRetries)
	if err != nil {
		log.Error("coordinator: sell failed", "mint", mint, "error", err)
		if c.metrics != nil {
			c.metrics.SellAttempts.WithLabelValues("failure").Inc()
		}
		return
	}
	if c.metrics != nil {
		c.metrics.SellAttempts.WithLabelValues("success").Inc()
	}
	log.Info("coordinator: sell confirmed", "mint", mint, "signature", result.Signature, "explorer", explorerURL(result.Signature))
}
