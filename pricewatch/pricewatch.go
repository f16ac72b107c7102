// Copyright (c) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package pricewatch implements the Price Watcher (spec §4.8): a
// synchronous polling loop that samples the expected quote-asset output for
// the held position and returns when take-profit or stop-loss triggers, or
// the poll window exhausts. Per spec §9 open question 2, the caller always
// proceeds to sell once Watch returns, regardless of which condition (if
// any) caused the return.
package pricewatch

import (
	"context"
	"time"

	"github.com/luxfi/solsniper/log"
	"github.com/luxfi/solsniper/metrics"
	"github.com/luxfi/solsniper/swap"
	"github.com/luxfi/solsniper/types"
)

// Reason records why Watch returned, for metrics/logging only; it has no
// effect on caller behavior (spec §4.8 "The return value is void").
type Reason string

const (
	ReasonDisabled     Reason = "disabled"
	ReasonTakeProfit   Reason = "take-profit"
	ReasonStopLoss     Reason = "stop-loss"
	ReasonWindowExhausted Reason = "window-exhausted"
)

// Watcher polls swap.Helper's reserve fetcher to compute the current
// expected sell output and compares it against take-profit/stop-loss
// thresholds derived once from the original quote amount.
type Watcher struct {
	reserves swap.PoolInfoFetcher
	metrics  *metrics.Metrics
}

func New(reserves swap.PoolInfoFetcher, m *metrics.Metrics) *Watcher {
	return &Watcher{reserves: reserves, metrics: m}
}

// Watch blocks until a take-profit/stop-loss threshold triggers or the poll
// window exhausts (spec §4.8). If either checkInterval or checkDuration is
// zero, it returns immediately without calling the AMM info endpoint (spec
// §8 testable property 5).
func (w *Watcher) Watch(ctx context.Context, keys types.PoolKeys, quoteAmount uint64, inputAmount uint64, sellSlippageBps uint64, takeProfitPct, stopLossPct float64, checkInterval, checkDuration time.Duration) Reason {
	if checkInterval <= 0 || checkDuration <= 0 {
		w.record(ReasonDisabled)
		return ReasonDisabled
	}

	takeProfit := quoteAmount + uint64(float64(quoteAmount)*takeProfitPct/100)
	stopLoss := subtractClamped(quoteAmount, uint64(float64(quoteAmount)*stopLossPct/100))

	iterations := int(checkDuration / checkInterval)
	for i := 0; i < iterations; i++ {
		select {
		case <-ctx.Done():
			w.record(ReasonWindowExhausted)
			return ReasonWindowExhausted
		default:
		}

		reserveBase, reserveQuote, err := w.reserves.GetPoolReserves(ctx, keys)
		if err != nil {
			log.Warn("pricewatch: fetch pool info failed, continuing", "error", err)
		} else {
			output := swap.AmountOut(inputAmount, reserveBase, reserveQuote)
			output = swap.MinimumAmountOut(output, sellSlippageBps)
			if output < stopLoss {
				w.record(ReasonStopLoss)
				return ReasonStopLoss
			}
			if output > takeProfit {
				w.record(ReasonTakeProfit)
				return ReasonTakeProfit
			}
		}

		if i < iterations-1 {
			select {
			case <-ctx.Done():
				w.record(ReasonWindowExhausted)
				return ReasonWindowExhausted
			case <-time.After(checkInterval):
			}
		}
	}
	w.record(ReasonWindowExhausted)
	return ReasonWindowExhausted
}

func (w *Watcher) record(reason Reason) {
	if w.metrics != nil {
		w.metrics.PriceWatchExits.WithLabelValues(string(reason)).Inc()
	}
}

func subtractClamped(a, b uint64) uint64 {
	if b >= a {
		return 0
	}
	return a - b
}
