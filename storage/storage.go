// Copyright (c) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package storage implements Market/Pool Storage (spec §4.6): two bounded
// in-memory mappings, marketId -> MarketDescriptor and mintAddress ->
// PoolDescriptor, with get() falling back to a direct on-chain fetch and
// caching the result on success. Grounded on the teacher's use of
// hashicorp/golang-lru for bounded caches throughout core/ (e.g. the block
// and receipt caches backing core.BlockChain).
package storage

import (
	"context"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru"

	"github.com/luxfi/solsniper/types"
)

// ErrStorageMiss is returned when an entry is absent and no fetcher is
// configured, or the fetcher itself fails (spec §7 "Storage-miss"). The
// coordinator treats this as "abandon the current trade intent without
// retries".
var ErrStorageMiss = errors.New("storage: entry not found")

const defaultCacheSize = 4096

// MarketFetcher fetches a market descriptor directly from the chain when it
// is absent from the cache.
type MarketFetcher func(ctx context.Context, marketID string) (types.MarketDescriptor, error)

// PoolFetcher fetches a pool descriptor directly from the chain when it is
// absent from the cache.
type PoolFetcher func(ctx context.Context, mint string) (types.PoolDescriptor, error)

// MarketStore caches MarketDescriptor by market id.
type MarketStore struct {
	cache   *lru.Cache
	fetcher MarketFetcher
}

// NewMarketStore builds a MarketStore. fetcher may be nil, in which case
// Get never falls back to an on-chain fetch and simply reports a miss.
func NewMarketStore(fetcher MarketFetcher) *MarketStore {
	c, err := lru.New(defaultCacheSize)
	if err != nil {
		panic(err) // only fails for a non-positive size, which is a programmer error
	}
	return &MarketStore{cache: c, fetcher: fetcher}
}

// Save inserts or overwrites the cached descriptor for id.
func (s *MarketStore) Save(id string, value types.MarketDescriptor) {
	s.cache.Add(id, value)
}

// Get returns the cached descriptor for id, falling back to a direct fetch
// (cached on success) if absent.
func (s *MarketStore) Get(ctx context.Context, id string) (types.MarketDescriptor, error) {
	if v, ok := s.cache.Get(id); ok {
		return v.(types.MarketDescriptor), nil
	}
	if s.fetcher == nil {
		return types.MarketDescriptor{}, fmt.Errorf("%w: market %s", ErrStorageMiss, id)
	}
	v, err := s.fetcher(ctx, id)
	if err != nil {
		return types.MarketDescriptor{}, fmt.Errorf("%w: market %s: %v", ErrStorageMiss, id, err)
	}
	s.cache.Add(id, v)
	return v, nil
}

// PoolStore caches PoolDescriptor by base-mint address.
type PoolStore struct {
	cache   *lru.Cache
	fetcher PoolFetcher
}

// NewPoolStore builds a PoolStore. fetcher may be nil, in which case Get
// never falls back to an on-chain fetch and simply reports a miss.
func NewPoolStore(fetcher PoolFetcher) *PoolStore {
	c, err := lru.New(defaultCacheSize)
	if err != nil {
		panic(err)
	}
	return &PoolStore{cache: c, fetcher: fetcher}
}

// Save inserts or overwrites the cached descriptor for mint.
func (s *PoolStore) Save(mint string, value types.PoolDescriptor) {
	s.cache.Add(mint, value)
}

// Get returns the cached pool for mint, falling back to a direct fetch
// (cached on success) if absent.
func (s *PoolStore) Get(ctx context.Context, mint string) (types.PoolDescriptor, error) {
	if v, ok := s.cache.Get(mint); ok {
		return v.(types.PoolDescriptor), nil
	}
	if s.fetcher == nil {
		return types.PoolDescriptor{}, fmt.Errorf("%w: pool for mint %s", ErrStorageMiss, mint)
	}
	v, err := s.fetcher(ctx, mint)
	if err != nil {
		return types.PoolDescriptor{}, fmt.Errorf("%w: pool for mint %s: %v", ErrStorageMiss, mint, err)
	}
	s.cache.Add(mint, v)
	return v, nil
}
