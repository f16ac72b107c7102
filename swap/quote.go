// Copyright (c) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package swap builds the instruction list for one buy or sell swap (spec
// §4.7.3) and exposes the constant-product quote math the Price Watcher
// also consumes. The core swap math ("quote-amount-out") is the one piece
// of on-chain AMM logic spec.md explicitly scopes out ("consumes
// quote-amount-out from a library" — spec §1 Non-goals); AmountOut below is
// that minimal library, grounded in the standard x*y=k invariant every
// Raydium-style AMM uses.
package swap

// FeeBps is the liquidity-provider fee charged on every swap, in basis
// points (0.25%, Raydium's historical default).
const FeeBps = 25

// AmountOut computes the constant-product output amount for a swap of
// amountIn against reserves (reserveIn, reserveOut), net of FeeBps.
func AmountOut(amountIn, reserveIn, reserveOut uint64) uint64 {
	if amountIn == 0 || reserveIn == 0 || reserveOut == 0 {
		return 0
	}
	amountInWithFee := amountIn * (10000 - FeeBps)
	numerator := amountInWithFee * reserveOut
	denominator := reserveIn*10000 + amountInWithFee
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

// MinimumAmountOut applies a slippage tolerance (in basis points) to an
// expected output amount.
func MinimumAmountOut(amountOut uint64, slippageBps uint64) uint64 {
	if slippageBps >= 10000 {
		return 0
	}
	return amountOut * (10000 - slippageBps) / 10000
}
