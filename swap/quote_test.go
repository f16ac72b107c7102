// Copyright (c) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package swap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAmountOutZeroInputs(t *testing.T) {
	require.Equal(t, uint64(0), AmountOut(0, 1000, 1000))
	require.Equal(t, uint64(0), AmountOut(100, 0, 1000))
	require.Equal(t, uint64(0), AmountOut(100, 1000, 0))
}

func TestAmountOutConstantProduct(t *testing.T) {
	// reserves 1_000_000/1_000_000, swap in 1000 should return slightly less
	// than 1000 net of the 25bps fee.
	out := AmountOut(1000, 1_000_000, 1_000_000)
	require.Less(t, out, uint64(1000))
	require.Greater(t, out, uint64(990))
}

func TestAmountOutMonotonicInReserveOut(t *testing.T) {
	small := AmountOut(1000, 1_000_000, 1_000_000)
	large := AmountOut(1000, 1_000_000, 2_000_000)
	require.Greater(t, large, small)
}

func TestMinimumAmountOutAppliesSlippage(t *testing.T) {
	require.Equal(t, uint64(950), MinimumAmountOut(1000, 500))
	require.Equal(t, uint64(1000), MinimumAmountOut(1000, 0))
	require.Equal(t, uint64(0), MinimumAmountOut(1000, 10000))
	require.Equal(t, uint64(0), MinimumAmountOut(1000, 10001))
}
