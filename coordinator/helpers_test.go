// Copyright (c) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package coordinator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMillis(t *testing.T) {
	require.Equal(t, 250*time.Millisecond, millis(250))
	require.Equal(t, time.Duration(0), millis(0))
}

func TestQuoteAmountLamports(t *testing.T) {
	require.Equal(t, uint64(1_500_000_000), quoteAmountLamports(1.5))
	require.Equal(t, uint64(0), quoteAmountLamports(0))
	require.Equal(t, uint64(0), quoteAmountLamports(-1))
}

func TestPctToBps(t *testing.T) {
	require.Equal(t, uint64(500), pctToBps(5))
	require.Equal(t, uint64(0), pctToBps(0))
	require.Equal(t, uint64(0), pctToBps(-1))
}

func TestExplorerURL(t *testing.T) {
	require.Equal(t, "", explorerURL(""))
	require.Equal(t, "https://explorer.solana.com/tx/abc123", explorerURL("abc123"))
}
