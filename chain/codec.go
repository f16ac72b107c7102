// Copyright (c) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/luxfi/solsniper/types"
)

// Byte offsets for the classical AMM pool-state account (subscription
// package's poolStateSize=752). Approximate, reconstructed from the
// publicly documented Raydium LiquidityStateV4 field order; exact layout
// verification is explicitly out of scope (spec §1 Non-goals).
const (
	poolOpenTimeOffset = 224
	poolBaseVaultOffset = 336
	poolQuoteVaultOffset = 368
	poolBaseMintOffset  = 400
	poolQuoteMintOffset = 432
	poolLPMintOffset    = 464
	poolMarketIDOffset  = 528
)

// Byte offsets for the order-book market account (subscription package's
// marketStateSize=388), reconstructed from the publicly documented Serum
// v3 MarketState layout (5-byte head padding, 7-byte tail padding).
const (
	marketBaseMintOffset  = 53
	marketQuoteMintOffset = 85
	marketEventQueueOffset = 253
	marketBidsOffset      = 285
	marketAsksOffset      = 317
)

// SPL token-account layout: mint(32) owner(32) amount(8) ...
const (
	tokenAccountMintOffset   = 0
	tokenAccountOwnerOffset  = 32
	tokenAccountAmountOffset = 64
)

func pubkeyAt(data []byte, offset int) (solana.PublicKey, error) {
	if len(data) < offset+32 {
		return solana.PublicKey{}, fmt.Errorf("chain: account data too short for offset %d (len %d)", offset, len(data))
	}
	return solana.PublicKeyFromBytes(data[offset : offset+32]), nil
}

// DecodePool implements subscription.PoolCodec for classical (order-book
// backed) pools.
func (r *Reader) DecodePool(accountID solana.PublicKey, data []byte) (types.PoolDescriptor, error) {
	baseMint, err := pubkeyAt(data, poolBaseMintOffset)
	if err != nil {
		return types.PoolDescriptor{}, err
	}
	quoteMint, err := pubkeyAt(data, poolQuoteMintOffset)
	if err != nil {
		return types.PoolDescriptor{}, err
	}
	baseVault, err := pubkeyAt(data, poolBaseVaultOffset)
	if err != nil {
		return types.PoolDescriptor{}, err
	}
	quoteVault, err := pubkeyAt(data, poolQuoteVaultOffset)
	if err != nil {
		return types.PoolDescriptor{}, err
	}
	lpMint, err := pubkeyAt(data, poolLPMintOffset)
	if err != nil {
		return types.PoolDescriptor{}, err
	}
	marketID, err := pubkeyAt(data, poolMarketIDOffset)
	if err != nil {
		return types.PoolDescriptor{}, err
	}
	if len(data) < poolOpenTimeOffset+8 {
		return types.PoolDescriptor{}, fmt.Errorf("chain: pool account too short for open time")
	}
	openTime := int64(binary.LittleEndian.Uint64(data[poolOpenTimeOffset : poolOpenTimeOffset+8]))

	return types.PoolDescriptor{
		ID:         accountID,
		BaseMint:   baseMint,
		QuoteMint:  quoteMint,
		BaseVault:  baseVault,
		QuoteVault: quoteVault,
		LPMint:     lpMint,
		MarketID:   &marketID,
		OpenTime:   openTime,
		Kind:       types.PoolKindClassical,
	}, nil
}

// DecodeCPMMPool implements subscription.CPMMCodec. Constant-product pools
// carry no separate order-book market, so MarketID stays nil (spec §3
// invariant: hasMarket != isCPMM).
func (r *Reader) DecodeCPMMPool(accountID solana.PublicKey, data []byte) (types.PoolDescriptor, error) {
	pool, err := r.DecodePool(accountID, data)
	if err != nil {
		return types.PoolDescriptor{}, err
	}
	pool.MarketID = nil
	pool.Kind = types.PoolKindConstantProduct
	return pool, nil
}

// DecodeMarket implements subscription.MarketCodec.
func (r *Reader) DecodeMarket(marketID solana.PublicKey, data []byte) (types.MarketDescriptor, error) {
	eventQueue, err := pubkeyAt(data, marketEventQueueOffset)
	if err != nil {
		return types.MarketDescriptor{}, err
	}
	bids, err := pubkeyAt(data, marketBidsOffset)
	if err != nil {
		return types.MarketDescriptor{}, err
	}
	asks, err := pubkeyAt(data, marketAsksOffset)
	if err != nil {
		return types.MarketDescriptor{}, err
	}
	return types.MarketDescriptor{
		MarketID:   marketID,
		EventQueue: eventQueue,
		Bids:       bids,
		Asks:       asks,
	}, nil
}

// DecodeTokenAccount implements subscription.TokenAccountCodec.
func (r *Reader) DecodeTokenAccount(data []byte) (mint solana.PublicKey, amount uint64, err error) {
	mint, err = pubkeyAt(data, tokenAccountMintOffset)
	if err != nil {
		return solana.PublicKey{}, 0, err
	}
	if len(data) < tokenAccountAmountOffset+8 {
		return solana.PublicKey{}, 0, fmt.Errorf("chain: token account too short for amount")
	}
	amount = binary.LittleEndian.Uint64(data[tokenAccountAmountOffset : tokenAccountAmountOffset+8])
	return mint, amount, nil
}
