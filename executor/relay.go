// Copyright (c) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package executor

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
)

// RelayClient is the narrow external collaborator the Warp and Bundle
// variants submit through. The relay's wire protocol is out of this
// module's scope (spec §1 "low-level wire encoding... assumed handled
// externally"); only the operations the coordinator needs are modeled
// here.
type RelayClient interface {
	// SubmitWarp forwards a transaction batched with the relay's service
	// fee instruction and returns the signature the relay assigned.
	SubmitWarp(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)

	// SubmitBundle forwards a bundle of transactions (tip transfer +
	// user transaction) and returns a relay-assigned bundle id.
	SubmitBundle(ctx context.Context, txs []*solana.Transaction) (bundleID string, err error)

	// PollBundleInclusion polls for the bundle's outcome up to timeout,
	// returning the confirmed signature if and when the bundle lands.
	PollBundleInclusion(ctx context.Context, bundleID string, timeout time.Duration) (sig solana.Signature, included bool, err error)
}

// wellKnownTipRecipients are Jito's published mainnet tip accounts (spec
// §4.3 variant 3: "routed to one of several well-known recipients chosen
// uniformly at random"). Public addresses, not secrets.
var wellKnownTipRecipients = []string{
	"96gYZGLnJYVFmbjzopPSU6QiEV5fGqZNyN9nmNhvrZU5",
	"HFqU5x63VTqvQss8hp11i4wVV8bD44PvwucfZ2bU7gRe",
	"Cw8CFyM9FkoMi7K7Crf6HNQqf4uEMzpKw6QNghXLvLkY",
	"ADaUMid9yfUytqMBgopwjb2DTLSokTSzL1zt6iGPaS49",
	"DfXygSm4jCyNCybVYYK6DwvWqjKee8pbDmJGcLWNDXjh",
	"ADuUkR4vqLUMWXxW9gh6D6L8pMSawimctcNZ5pGwDcEt",
	"DttWaMuVvTiduZRnguLF7jNxTgiMBZ1hyAumKUiL2KXP",
	"3AVi9Tg9Uo68tJfuvoKvqKNWKkC5wPdSSdeBnizKZ6jT",
}
