// Copyright (c) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package types holds the data model shared across the subscription layer,
// storage, filter engine, executor and coordinator: pool/market descriptors,
// trade intents and submission results (spec §3).
package types

import (
	"time"

	"github.com/gagliardetto/solana-go"
)

// PoolKind distinguishes a classical order-book-backed AMM pool from a
// constant-product (CPMM) pool.
type PoolKind int

const (
	PoolKindClassical PoolKind = iota
	PoolKindConstantProduct
)

func (k PoolKind) String() string {
	if k == PoolKindConstantProduct {
		return "constant-product"
	}
	return "classical"
}

// PoolDescriptor is the immutable record inserted on a pool event and never
// mutated afterward (spec §3). Exactly one of MarketID being non-nil or Kind
// being PoolKindConstantProduct holds.
type PoolDescriptor struct {
	ID         solana.PublicKey
	BaseMint   solana.PublicKey
	QuoteMint  solana.PublicKey
	BaseVault  solana.PublicKey
	QuoteVault solana.PublicKey
	LPMint     solana.PublicKey
	// MarketID is set for classical pools and nil for constant-product pools.
	MarketID *solana.PublicKey
	OpenTime int64
	Kind     PoolKind
}

// Valid reports whether the pool obeys the market-id/pool-kind invariant.
func (p PoolDescriptor) Valid() bool {
	hasMarket := p.MarketID != nil
	isCPMM := p.Kind == PoolKindConstantProduct
	return hasMarket != isCPMM
}

// MarketDescriptor is immutable once cached (spec §3).
type MarketDescriptor struct {
	MarketID   solana.PublicKey
	EventQueue solana.PublicKey
	Bids       solana.PublicKey
	Asks       solana.PublicKey
}

// PoolKeys bundles a pool with its market (nil for CPMM pools) the way the
// filter engine, swap helper and price watcher consume it.
type PoolKeys struct {
	Pool   PoolDescriptor
	Market *MarketDescriptor
}

// Direction of a trade intent.
type Direction int

const (
	DirectionBuy Direction = iota
	DirectionSell
)

func (d Direction) String() string {
	if d == DirectionSell {
		return "sell"
	}
	return "buy"
}

// TradeIntent is the ephemeral record for one buy or sell attempt (spec §3).
type TradeIntent struct {
	Direction   Direction
	InputAmount uint64
	InputMint   solana.PublicKey
	OutputMint  solana.PublicKey
	SlippageBps uint64
	Pool        PoolDescriptor
	Attempt     int
}

// SubmissionResult is the outcome of one transaction-executor submission
// attempt (spec §3). Confirmed is true iff the network reported inclusion
// without error.
type SubmissionResult struct {
	Confirmed bool
	Signature string
	Err       error
}

// PoolEvent is emitted by the subscription layer for every newly observed
// pool account (spec §4.5.1, §4.5.3).
type PoolEvent struct {
	AccountID solana.PublicKey
	Pool      PoolDescriptor
	IsCPMM    bool
	Received  time.Time
}

// MarketEvent is emitted for every newly observed order-book market account
// (spec §4.5.2).
type MarketEvent struct {
	MarketID solana.PublicKey
	Market   MarketDescriptor
	Received time.Time
}

// WalletEvent is emitted for every observed change to a token account owned
// by the trading wallet (spec §4.5.4).
type WalletEvent struct {
	TokenAccountID solana.PublicKey
	Mint           solana.PublicKey
	Amount         uint64
	Received       time.Time
}
