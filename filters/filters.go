// Copyright (c) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package filters implements the Pool Filter Engine (spec §4.4): an ordered
// set of independent boolean predicates evaluated in parallel against a
// pool, combined with AND semantics, plus the consecutive-match polling
// window the coordinator drives the engine through.
package filters

import (
	"context"
	"strings"

	"github.com/gagliardetto/solana-go"

	"github.com/luxfi/solsniper/log"
	"github.com/luxfi/solsniper/types"
)

// PumpFunUpdateAuthority is pump.fun's published mint update authority
// (spec §4.4 "pump-fun origin"). Public address, not a secret.
const PumpFunUpdateAuthority = "TSLvdd1pWpHVjahSpsvCXUbgwsL3JAcvokwaKt1eokM"

// Result is one filter's verdict (spec §4.4 "execute(poolKeys) -> {ok,
// message?}").
type Result struct {
	OK      bool
	Message string
}

// Filter is a single independent boolean predicate over a pool.
type Filter interface {
	Name() string
	Execute(ctx context.Context, keys types.PoolKeys) (Result, error)
}

// ChainReader is the narrow set of on-chain reads the built-in filters
// need. An external collaborator: how these reads are actually performed
// (RPC batching, caching) is out of this package's scope.
type ChainReader interface {
	GetTokenSupply(ctx context.Context, mint solana.PublicKey) (uint64, error)
	GetMintAuthorities(ctx context.Context, mint solana.PublicKey) (mintAuthority, freezeAuthority *solana.PublicKey, err error)
	GetTokenAccountBalance(ctx context.Context, account solana.PublicKey) (uint64, error)
	GetMintMetadata(ctx context.Context, mint solana.PublicKey) (uri string, updateAuthority solana.PublicKey, err error)
}

// burntLiquidityFilter requires the LP-mint supply to be zero.
type burntLiquidityFilter struct{ chain ChainReader }

func NewBurntLiquidityFilter(chain ChainReader) Filter { return &burntLiquidityFilter{chain} }
func (f *burntLiquidityFilter) Name() string            { return "burnt-liquidity" }

func (f *burntLiquidityFilter) Execute(ctx context.Context, keys types.PoolKeys) (Result, error) {
	supply, err := f.chain.GetTokenSupply(ctx, keys.Pool.LPMint)
	if err != nil {
		return Result{}, err
	}
	if supply != 0 {
		return Result{OK: false, Message: "lp mint supply is not burnt"}, nil
	}
	return Result{OK: true}, nil
}

// renouncedMintAuthorityFilter requires the base mint's mint authority to
// be null.
type renouncedMintAuthorityFilter struct{ chain ChainReader }

func NewRenouncedMintAuthorityFilter(chain ChainReader) Filter {
	return &renouncedMintAuthorityFilter{chain}
}
func (f *renouncedMintAuthorityFilter) Name() string { return "renounced-mint-authority" }

func (f *renouncedMintAuthorityFilter) Execute(ctx context.Context, keys types.PoolKeys) (Result, error) {
	mintAuth, _, err := f.chain.GetMintAuthorities(ctx, keys.Pool.BaseMint)
	if err != nil {
		return Result{}, err
	}
	if mintAuth != nil {
		return Result{OK: false, Message: "mint authority not renounced"}, nil
	}
	return Result{OK: true}, nil
}

// freezableFilter rejects mints that still carry a freeze authority.
type freezableFilter struct{ chain ChainReader }

func NewFreezableFilter(chain ChainReader) Filter { return &freezableFilter{chain} }
func (f *freezableFilter) Name() string            { return "freezable" }

func (f *freezableFilter) Execute(ctx context.Context, keys types.PoolKeys) (Result, error) {
	_, freezeAuth, err := f.chain.GetMintAuthorities(ctx, keys.Pool.BaseMint)
	if err != nil {
		return Result{}, err
	}
	if freezeAuth != nil {
		return Result{OK: false, Message: "mint is freezable"}, nil
	}
	return Result{OK: true}, nil
}

// poolSizeFilter requires the quote vault balance to fall within
// [minSize, maxSize], in the quote asset's native units.
type poolSizeFilter struct {
	chain             ChainReader
	minSize, maxSize float64
}

func NewPoolSizeFilter(chain ChainReader, minSize, maxSize float64) Filter {
	return &poolSizeFilter{chain: chain, minSize: minSize, maxSize: maxSize}
}
func (f *poolSizeFilter) Name() string { return "pool-size" }

func (f *poolSizeFilter) Execute(ctx context.Context, keys types.PoolKeys) (Result, error) {
	balance, err := f.chain.GetTokenAccountBalance(ctx, keys.Pool.QuoteVault)
	if err != nil {
		return Result{}, err
	}
	amount := float64(balance)
	if amount < f.minSize || amount > f.maxSize {
		return Result{OK: false, Message: "pool size out of configured range"}, nil
	}
	return Result{OK: true}, nil
}

// pumpFunOriginFilter requires the base mint to carry a pump.fun
// provenance signal: uri contains "pump.fun", the mint address ends in
// "pump", or the metadata update authority is pump.fun's.
type pumpFunOriginFilter struct{ chain ChainReader }

func NewPumpFunOriginFilter(chain ChainReader) Filter { return &pumpFunOriginFilter{chain} }
func (f *pumpFunOriginFilter) Name() string            { return "pump-fun-origin" }

func (f *pumpFunOriginFilter) Execute(ctx context.Context, keys types.PoolKeys) (Result, error) {
	uri, updateAuthority, err := f.chain.GetMintMetadata(ctx, keys.Pool.BaseMint)
	if err != nil {
		return Result{}, err
	}
	mintStr := keys.Pool.BaseMint.String()
	ok := strings.Contains(uri, "pump.fun") ||
		strings.HasSuffix(mintStr, "pump") ||
		updateAuthority.String() == PumpFunUpdateAuthority
	if !ok {
		return Result{OK: false, Message: "no pump.fun provenance signal"}, nil
	}
	return Result{OK: true}, nil
}

// logFilterFailure logs a single filter's failing message at info level
// (spec §4.4 "a single failure yields false with the failing messages
// logged at info level").
func logFilterFailure(mint string, name, message string) {
	log.Info("filters: predicate failed", "mint", mint, "filter", name, "message", message)
}
