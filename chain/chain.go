// Copyright (c) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package chain provides the default, concrete implementations of the
// external collaborator interfaces the rest of the module deliberately
// leaves abstract: account codecs (subscription.PoolCodec and friends), the
// filter engine's ChainReader, and the swap helper's PoolInfoFetcher and
// InstructionBuilder. spec.md scopes exact on-chain binary layouts and AMM
// instruction construction out of the core design (§1 Non-goals); this
// package is the one place that takes a concrete position on them so the
// rest of the module has something real to run against.
package chain

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	solrpc "github.com/gagliardetto/solana-go/rpc"

	"github.com/luxfi/solsniper/rpcpool"
	"github.com/luxfi/solsniper/types"
)

// ErrAccountNotFound wraps a missing or empty account lookup.
var ErrAccountNotFound = errors.New("chain: account not found")

// Reader is the default ChainReader (filters), PoolCodec/MarketCodec/
// CPMMCodec/TokenAccountCodec (subscription) and PoolInfoFetcher (swap,
// pricewatch) implementation, all backed by the same endpoint pool.
type Reader struct {
	pool *rpcpool.Pool
}

func NewReader(pool *rpcpool.Pool) *Reader {
	return &Reader{pool: pool}
}

func (r *Reader) client() *solrpc.Client {
	return r.pool.GetConnection()
}

// GetTokenSupply implements filters.ChainReader.
func (r *Reader) GetTokenSupply(ctx context.Context, mint solana.PublicKey) (uint64, error) {
	res, err := r.client().GetTokenSupply(ctx, mint, solrpc.CommitmentConfirmed)
	if err != nil {
		return 0, fmt.Errorf("chain: get token supply: %w", err)
	}
	if res == nil || res.Value == nil {
		return 0, fmt.Errorf("%w: token supply for %s", ErrAccountNotFound, mint)
	}
	var supply uint64
	fmt.Sscanf(res.Value.Amount, "%d", &supply)
	return supply, nil
}

// GetTokenAccountBalance implements filters.ChainReader and
// swap.PoolInfoFetcher's underlying vault reads.
func (r *Reader) GetTokenAccountBalance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	res, err := r.client().GetTokenAccountBalance(ctx, account, solrpc.CommitmentConfirmed)
	if err != nil {
		return 0, fmt.Errorf("chain: get token account balance: %w", err)
	}
	if res == nil || res.Value == nil {
		return 0, fmt.Errorf("%w: token account %s", ErrAccountNotFound, account)
	}
	var amount uint64
	fmt.Sscanf(res.Value.Amount, "%d", &amount)
	return amount, nil
}

// GetMintAuthorities implements filters.ChainReader, decoding the raw 82-byte
// SPL token mint layout: 4-byte mint-authority option + 32-byte
// mint-authority + 8-byte supply + 1-byte decimals + 1-byte initialized +
// 4-byte freeze-authority option + 32-byte freeze-authority.
func (r *Reader) GetMintAuthorities(ctx context.Context, mint solana.PublicKey) (*solana.PublicKey, *solana.PublicKey, error) {
	data, err := r.getAccountData(ctx, mint)
	if err != nil {
		return nil, nil, err
	}
	if len(data) < mintAccountSize {
		return nil, nil, fmt.Errorf("chain: mint account %s too short: %d bytes", mint, len(data))
	}

	var mintAuthority, freezeAuthority *solana.PublicKey
	if binary.LittleEndian.Uint32(data[0:4]) != 0 {
		pk := solana.PublicKeyFromBytes(data[4:36])
		mintAuthority = &pk
	}
	if binary.LittleEndian.Uint32(data[46:50]) != 0 {
		pk := solana.PublicKeyFromBytes(data[50:82])
		freezeAuthority = &pk
	}
	return mintAuthority, freezeAuthority, nil
}

const mintAccountSize = 82

func (r *Reader) getAccountData(ctx context.Context, account solana.PublicKey) ([]byte, error) {
	res, err := r.client().GetAccountInfo(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("chain: get account info: %w", err)
	}
	if res == nil || res.Value == nil {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, account)
	}
	return res.Value.Data.GetBinary(), nil
}

// GetPoolReserves implements swap.PoolInfoFetcher: the live base/quote
// reserves are simply the current token balances of the pool's base and
// quote vaults, for both classical and constant-product pools.
func (r *Reader) GetPoolReserves(ctx context.Context, keys types.PoolKeys) (reserveBase, reserveQuote uint64, err error) {
	reserveBase, err = r.GetTokenAccountBalance(ctx, keys.Pool.BaseVault)
	if err != nil {
		return 0, 0, err
	}
	reserveQuote, err = r.GetTokenAccountBalance(ctx, keys.Pool.QuoteVault)
	if err != nil {
		return 0, 0, err
	}
	return reserveBase, reserveQuote, nil
}
