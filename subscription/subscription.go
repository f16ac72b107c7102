// Copyright (c) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package subscription translates Solana program-account-change
// notifications into typed pool/market/wallet events (spec §4.5). Ordering
// is preserved within a single subscription's delivery but not across
// subscription kinds, and the layer applies no backpressure: consumers must
// keep up or events are dropped with a warning (wsClient.dispatch).
package subscription

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"golang.org/x/sync/errgroup"

	"github.com/luxfi/solsniper/log"
	"github.com/luxfi/solsniper/types"
)

// Well-known mainnet program ids (spec §4.5). These are public addresses,
// not secrets.
const (
	RaydiumAMMV4Program = "675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8"
	OpenBookV3Program   = "srmqPvymJeFKQ4zGQed1GFppgkRHL9kaELCbyksJtPX"
	TokenProgram        = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
)

// Byte layout constants for the classical AMM pool-state account. The exact
// layout is an external concern (spec §1 "assumed decoded by an external
// codec"); these offsets are only used to build server-side memcmp filters,
// not to interpret the bytes ourselves.
const (
	poolStateSize          = 752
	poolQuoteMintOffset    = 432
	poolMarketProgramOffset = 560
	poolStatusOffset       = 0

	marketStateSize       = 388
	marketQuoteMintOffset = 85

	tokenAccountSize       = 165
	tokenAccountMintOffset = 0
	tokenAccountOwnerOffset = 32
)

// poolStatusPrefix is the literal 8-byte status value a newly initialized,
// tradeable classical pool carries (spec §4.5.1).
var poolStatusPrefix = []byte{6, 0, 0, 0, 0, 0, 0, 0}

// PoolCodec decodes a classical pool-state account into a PoolDescriptor.
// External collaborator (spec §1 Out of scope: account binary layout).
type PoolCodec interface {
	DecodePool(accountID solana.PublicKey, data []byte) (types.PoolDescriptor, error)
}

// MarketCodec decodes an order-book market account into a MarketDescriptor.
type MarketCodec interface {
	DecodeMarket(marketID solana.PublicKey, data []byte) (types.MarketDescriptor, error)
}

// CPMMCodec decodes a constant-product pool account into a PoolDescriptor.
type CPMMCodec interface {
	DecodeCPMMPool(accountID solana.PublicKey, data []byte) (types.PoolDescriptor, error)
}

// TokenAccountCodec decodes an SPL token account into (mint, amount).
type TokenAccountCodec interface {
	DecodeTokenAccount(data []byte) (mint solana.PublicKey, amount uint64, err error)
}

// Config is the parameterization of one Start call (spec §4.5).
type Config struct {
	QuoteMint string

	// EnableMarketSubscription populates Market Storage directly from
	// market account-change events (spec §4.5.2, optional).
	EnableMarketSubscription bool

	// EnableCPMMSubscription enables the constant-product-pool
	// subscription; devnet only (spec §4.5.3, optional).
	EnableCPMMSubscription bool
	CPMMProgram            string

	// EnableWalletSubscription enables the wallet subscription driving the
	// sell path (spec §4.5.4, optional, gated by autoSell upstream).
	EnableWalletSubscription bool
	WalletPublicKey          string
}

// handle is one live subscription: the method used to tear it down and the
// background goroutine's cancel function.
type handle struct {
	unsubMethod string
	subID       uint64
	cancel      context.CancelFunc
}

// Layer owns the websocket connection and the set of currently live
// subscription handles.
type Layer struct {
	wsURL string

	poolCodec  PoolCodec
	marketCodec MarketCodec
	cpmmCodec  CPMMCodec
	tokenCodec TokenAccountCodec

	PoolEvents   chan types.PoolEvent
	MarketEvents chan types.MarketEvent
	WalletEvents chan types.WalletEvent

	client *wsClient
	handles []handle
	lastConfig *Config
}

// New builds a Layer. wsURL is the currently selected endpoint pool
// connection's websocket URL (spec §4.2 callers re-acquire after refresh).
func New(wsURL string, poolCodec PoolCodec, marketCodec MarketCodec, cpmmCodec CPMMCodec, tokenCodec TokenAccountCodec) *Layer {
	return &Layer{
		wsURL:        wsURL,
		poolCodec:    poolCodec,
		marketCodec:  marketCodec,
		cpmmCodec:    cpmmCodec,
		tokenCodec:   tokenCodec,
		PoolEvents:   make(chan types.PoolEvent, 256),
		MarketEvents: make(chan types.MarketEvent, 256),
		WalletEvents: make(chan types.WalletEvent, 256),
	}
}

// Start establishes up to four subscriptions per cfg (spec §4.5). Passing
// nil restarts using the configuration of the previous Start. Calling Start
// while already started first calls Stop.
func (l *Layer) Start(ctx context.Context, cfg *Config) error {
	if cfg == nil {
		if l.lastConfig == nil {
			return fmt.Errorf("subscription: Start(nil) with no prior configuration")
		}
		cfg = l.lastConfig
	}
	if l.client != nil {
		_ = l.Stop(ctx)
	}

	client, err := dialWS(ctx, l.wsURL)
	if err != nil {
		return fmt.Errorf("subscription: %w", err)
	}
	l.client = client
	l.lastConfig = cfg

	if err := l.startPoolSubscription(ctx, cfg); err != nil {
		return err
	}
	if cfg.EnableMarketSubscription {
		if err := l.startMarketSubscription(ctx, cfg); err != nil {
			log.Error("subscription: market subscription failed", "error", err)
		}
	}
	if cfg.EnableCPMMSubscription {
		if err := l.startCPMMSubscription(ctx, cfg); err != nil {
			log.Error("subscription: cpmm subscription failed", "error", err)
		}
	}
	if cfg.EnableWalletSubscription {
		if err := l.startWalletSubscription(ctx, cfg); err != nil {
			log.Error("subscription: wallet subscription failed", "error", err)
		}
	}
	return nil
}

type programFilter struct {
	Memcmp   *memcmpFilter `json:"memcmp,omitempty"`
	DataSize uint64        `json:"dataSize,omitempty"`
}

type memcmpFilter struct {
	Offset uint64 `json:"offset"`
	Bytes  string `json:"bytes"` // base58-encoded per Solana RPC convention
}

type programSubscribeOpts struct {
	Encoding   string           `json:"encoding"`
	Commitment string           `json:"commitment,omitempty"`
	Filters    []programFilter  `json:"filters,omitempty"`
}

func (l *Layer) startPoolSubscription(ctx context.Context, cfg *Config) error {
	statusFilter := memcmpFilter{Offset: poolStatusOffset, Bytes: base58.Encode(poolStatusPrefix)}
	quoteMintFilter := memcmpFilter{Offset: poolQuoteMintOffset, Bytes: cfg.QuoteMint}
	marketProgramFilter := memcmpFilter{Offset: poolMarketProgramOffset, Bytes: OpenBookV3Program}
	filters := []programFilter{
		{DataSize: poolStateSize},
		{Memcmp: &quoteMintFilter},
		{Memcmp: &marketProgramFilter},
		{Memcmp: &statusFilter},
	}
	params := []any{RaydiumAMMV4Program, programSubscribeOpts{Encoding: "base64", Filters: filters}}
	subID, ch, err := l.client.subscribe(ctx, "programSubscribe", params, 256)
	if err != nil {
		return fmt.Errorf("subscription: pool subscribe: %w", err)
	}

	subCtx, cancel := context.WithCancel(ctx)
	l.handles = append(l.handles, handle{unsubMethod: "programUnsubscribe", subID: subID, cancel: cancel})
	go l.pumpPoolNotifications(subCtx, ch)
	return nil
}

func (l *Layer) startMarketSubscription(ctx context.Context, cfg *Config) error {
	quoteMintFilter := memcmpFilter{Offset: marketQuoteMintOffset, Bytes: cfg.QuoteMint}
	filters := []programFilter{
		{DataSize: marketStateSize},
		{Memcmp: &quoteMintFilter},
	}
	params := []any{OpenBookV3Program, programSubscribeOpts{Encoding: "base64", Filters: filters}}
	subID, ch, err := l.client.subscribe(ctx, "programSubscribe", params, 256)
	if err != nil {
		return err
	}
	subCtx, cancel := context.WithCancel(ctx)
	l.handles = append(l.handles, handle{unsubMethod: "programUnsubscribe", subID: subID, cancel: cancel})
	go l.pumpMarketNotifications(subCtx, ch)
	return nil
}

func (l *Layer) startCPMMSubscription(ctx context.Context, cfg *Config) error {
	filters := []programFilter{{DataSize: poolStateSize}}
	params := []any{cfg.CPMMProgram, programSubscribeOpts{Encoding: "base64", Filters: filters}}
	subID, ch, err := l.client.subscribe(ctx, "programSubscribe", params, 256)
	if err != nil {
		return err
	}
	subCtx, cancel := context.WithCancel(ctx)
	l.handles = append(l.handles, handle{unsubMethod: "programUnsubscribe", subID: subID, cancel: cancel})
	go l.pumpCPMMNotifications(subCtx, ch)
	return nil
}

func (l *Layer) startWalletSubscription(ctx context.Context, cfg *Config) error {
	ownerFilter := memcmpFilter{Offset: tokenAccountOwnerOffset, Bytes: cfg.WalletPublicKey}
	filters := []programFilter{
		{DataSize: tokenAccountSize},
		{Memcmp: &ownerFilter},
	}
	params := []any{TokenProgram, programSubscribeOpts{Encoding: "base64", Filters: filters}}
	subID, ch, err := l.client.subscribe(ctx, "programSubscribe", params, 256)
	if err != nil {
		return err
	}
	subCtx, cancel := context.WithCancel(ctx)
	l.handles = append(l.handles, handle{unsubMethod: "programUnsubscribe", subID: subID, cancel: cancel})
	go l.pumpWalletNotifications(subCtx, ch)
	return nil
}

type accountNotificationValue struct {
	Pubkey  string `json:"pubkey"`
	Account struct {
		Data []string `json:"data"` // [base64, encoding]
	} `json:"account"`
}

type programNotificationResult struct {
	Value accountNotificationValue `json:"value"`
}

func (l *Layer) pumpPoolNotifications(ctx context.Context, ch <-chan json.RawMessage) {
	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-ch:
			if !ok {
				return
			}
			ev, err := l.decodePoolNotification(raw)
			if err != nil {
				log.Warn("subscription: dropping pool notification", "error", err)
				continue
			}
			select {
			case l.PoolEvents <- ev:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (l *Layer) decodePoolNotification(raw json.RawMessage) (types.PoolEvent, error) {
	var res programNotificationResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return types.PoolEvent{}, err
	}
	accountID, err := solana.PublicKeyFromBase58(res.Value.Pubkey)
	if err != nil {
		return types.PoolEvent{}, err
	}
	data, err := decodeAccountData(res.Value.Account.Data)
	if err != nil {
		return types.PoolEvent{}, err
	}
	pool, err := l.poolCodec.DecodePool(accountID, data)
	if err != nil {
		return types.PoolEvent{}, err
	}
	return types.PoolEvent{AccountID: accountID, Pool: pool}, nil
}

func (l *Layer) pumpMarketNotifications(ctx context.Context, ch <-chan json.RawMessage) {
	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-ch:
			if !ok {
				return
			}
			var res programNotificationResult
			if err := json.Unmarshal(raw, &res); err != nil {
				log.Warn("subscription: malformed market notification", "error", err)
				continue
			}
			marketID, err := solana.PublicKeyFromBase58(res.Value.Pubkey)
			if err != nil {
				continue
			}
			data, err := decodeAccountData(res.Value.Account.Data)
			if err != nil {
				continue
			}
			market, err := l.marketCodec.DecodeMarket(marketID, data)
			if err != nil {
				log.Warn("subscription: dropping market notification", "error", err)
				continue
			}
			select {
			case l.MarketEvents <- types.MarketEvent{MarketID: marketID, Market: market}:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (l *Layer) pumpCPMMNotifications(ctx context.Context, ch <-chan json.RawMessage) {
	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-ch:
			if !ok {
				return
			}
			var res programNotificationResult
			if err := json.Unmarshal(raw, &res); err != nil {
				continue
			}
			accountID, err := solana.PublicKeyFromBase58(res.Value.Pubkey)
			if err != nil {
				continue
			}
			data, err := decodeAccountData(res.Value.Account.Data)
			if err != nil {
				continue
			}
			pool, err := l.cpmmCodec.DecodeCPMMPool(accountID, data)
			if err != nil {
				log.Warn("subscription: dropping cpmm notification", "error", err)
				continue
			}
			select {
			case l.PoolEvents <- types.PoolEvent{AccountID: accountID, Pool: pool, IsCPMM: true}:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (l *Layer) pumpWalletNotifications(ctx context.Context, ch <-chan json.RawMessage) {
	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-ch:
			if !ok {
				return
			}
			var res programNotificationResult
			if err := json.Unmarshal(raw, &res); err != nil {
				continue
			}
			tokenAccountID, err := solana.PublicKeyFromBase58(res.Value.Pubkey)
			if err != nil {
				continue
			}
			data, err := decodeAccountData(res.Value.Account.Data)
			if err != nil {
				continue
			}
			mint, amount, err := l.tokenCodec.DecodeTokenAccount(data)
			if err != nil {
				log.Warn("subscription: dropping wallet notification", "error", err)
				continue
			}
			select {
			case l.WalletEvents <- types.WalletEvent{TokenAccountID: tokenAccountID, Mint: mint, Amount: amount}:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Stop unsubscribes every handle in parallel, logging and swallowing
// individual errors, and clears the handle list (spec §4.5, testable
// property 1: after Stop the held-handle set is empty). Reports whether
// there was a live connection to tear down, so callers that stop and later
// conditionally restart (the coordinator's oneTokenAtATime bookkeeping) can
// tell a no-op Stop from a real one.
func (l *Layer) Stop(ctx context.Context) bool {
	if l.client == nil {
		return false
	}
	var g errgroup.Group
	for _, h := range l.handles {
		h := h
		g.Go(func() error {
			h.cancel()
			if err := l.client.unsubscribe(ctx, h.unsubMethod, h.subID); err != nil {
				log.Error("subscription: unsubscribe failed", "subscription", h.subID, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
	l.handles = nil

	if err := l.client.close(); err != nil {
		log.Error("subscription: close websocket failed", "error", err)
	}
	l.client = nil
	return true
}

func decodeAccountData(data []string) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("subscription: empty account data")
	}
	return base64.StdEncoding.DecodeString(data[0])
}

