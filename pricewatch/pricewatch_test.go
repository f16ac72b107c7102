// Copyright (c) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pricewatch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/solsniper/metrics"
	"github.com/luxfi/solsniper/types"
)

type fakeReserves struct {
	base, quote uint64
	err         error
}

func (f fakeReserves) GetPoolReserves(ctx context.Context, keys types.PoolKeys) (uint64, uint64, error) {
	return f.base, f.quote, f.err
}

func TestWatchDisabledWhenWindowZero(t *testing.T) {
	w := New(fakeReserves{base: 1, quote: 1}, metrics.Noop())
	reason := w.Watch(context.Background(), types.PoolKeys{}, 1000, 1000, 0, 40, 20, 0, 0)
	require.Equal(t, ReasonDisabled, reason)
}

func TestWatchTakeProfitTriggers(t *testing.T) {
	// reserves heavily favor the input side so the quoted output balloons
	// well past the 40% take-profit threshold on the first sample.
	w := New(fakeReserves{base: 1_000_000, quote: 100_000_000}, metrics.Noop())
	reason := w.Watch(context.Background(), types.PoolKeys{}, 1000, 1000, 0, 40, 20, time.Millisecond, 20*time.Millisecond)
	require.Equal(t, ReasonTakeProfit, reason)
}

func TestWatchStopLossTriggers(t *testing.T) {
	// reserves heavily favor the output side so the quoted output collapses
	// well below the 20% stop-loss threshold on the first sample.
	w := New(fakeReserves{base: 100_000_000, quote: 1_000_000}, metrics.Noop())
	reason := w.Watch(context.Background(), types.PoolKeys{}, 1_000_000, 1_000_000, 0, 40, 20, time.Millisecond, 20*time.Millisecond)
	require.Equal(t, ReasonStopLoss, reason)
}

func TestWatchWindowExhaustsWithoutTrigger(t *testing.T) {
	// reserves equal to the reference amount keep output right at par,
	// inside both thresholds, so the window should simply exhaust.
	w := New(fakeReserves{base: 1_000_000, quote: 1_000_000}, metrics.Noop())
	reason := w.Watch(context.Background(), types.PoolKeys{}, 1_000_000, 1_000_000, 0, 40, 20, time.Millisecond, 5*time.Millisecond)
	require.Equal(t, ReasonWindowExhausted, reason)
}

func TestWatchContinuesPastFetchError(t *testing.T) {
	w := New(fakeReserves{err: context.DeadlineExceeded}, metrics.Noop())
	reason := w.Watch(context.Background(), types.PoolKeys{}, 1000, 1000, 0, 40, 20, time.Millisecond, 5*time.Millisecond)
	require.Equal(t, ReasonWindowExhausted, reason)
}

func TestSubtractClamped(t *testing.T) {
	require.Equal(t, uint64(0), subtractClamped(10, 20))
	require.Equal(t, uint64(0), subtractClamped(10, 10))
	require.Equal(t, uint64(5), subtractClamped(10, 5))
}
