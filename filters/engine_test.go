// Copyright (c) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package filters

import (
	"context"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/solsniper/types"
)

func TestRunConsecutiveWindowBypassedWhenDisabled(t *testing.T) {
	auth := solana.NewWallet().PublicKey()
	e := New(nil, NewFreezableFilter(fakeChain{freezeAuthority: &auth}))
	ok := e.RunConsecutiveWindow(context.Background(), keysWithPool(), 0, 0, 3)
	require.True(t, ok, "zero interval/duration must bypass the engine entirely")
}

func TestRunConsecutiveWindowSucceedsOnAllPasses(t *testing.T) {
	e := New(nil, NewBurntLiquidityFilter(fakeChain{supply: 0}))
	ok := e.RunConsecutiveWindow(context.Background(), keysWithPool(), time.Millisecond, 20*time.Millisecond, 2)
	require.True(t, ok)
}

func TestRunConsecutiveWindowFailsWhenNeverPasses(t *testing.T) {
	e := New(nil, NewBurntLiquidityFilter(fakeChain{supply: 1}))
	ok := e.RunConsecutiveWindow(context.Background(), keysWithPool(), time.Millisecond, 10*time.Millisecond, 2)
	require.False(t, ok)
}

// flakyFilter alternates fail/pass on every call: pass, fail, pass, fail...
// With consecutiveMatchCount=2 the streak never survives two consecutive
// calls, since every pass is immediately followed by a failure that resets
// the counter (spec §4.4's reset-on-any-failure reading, see DESIGN.md).
type flakyFilter struct {
	calls *int
}

func (flakyFilter) Name() string { return "flaky" }

func (f flakyFilter) Execute(ctx context.Context, keys types.PoolKeys) (Result, error) {
	*f.calls++
	if *f.calls%2 != 0 {
		return Result{OK: true}, nil
	}
	return Result{OK: false, Message: "flaky failure"}, nil
}

func TestRunConsecutiveWindowResetsOnAnyFailure(t *testing.T) {
	calls := 0
	e := New(nil, flakyFilter{calls: &calls})
	ok := e.RunConsecutiveWindow(context.Background(), keysWithPool(), time.Millisecond, 6*time.Millisecond, 2)
	require.False(t, ok)
}
