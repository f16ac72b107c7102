// Copyright (c) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package walletkit loads the trading wallet's keypair from either a
// Solana CLI-style 64-byte JSON secret key file or a base58-encoded secret
// key string (spec §6 "walletPath/walletBase58"). Grounded on the teacher's
// localsigner package, which plays the analogous role of turning on-disk
// key material into a signer the rest of the process treats opaquely.
package walletkit

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
)

// ErrWalletNotConfigured is returned when neither a wallet path nor a
// base58 secret key is provided; config.Config.validate already rejects
// this at startup, this is a defense for callers that build a wallet
// directly.
var ErrWalletNotConfigured = errors.New("walletkit: no wallet configured")

// Load resolves the trading wallet's private key. walletBase58 takes
// precedence over walletPath when both are set.
func Load(walletPath, walletBase58 string) (solana.PrivateKey, error) {
	if walletBase58 != "" {
		key, err := solana.PrivateKeyFromBase58(walletBase58)
		if err != nil {
			return nil, fmt.Errorf("walletkit: decode base58 wallet: %w", err)
		}
		return key, nil
	}
	if walletPath != "" {
		return loadFromFile(walletPath)
	}
	return nil, ErrWalletNotConfigured
}

// loadFromFile reads a Solana CLI-style keypair file: a JSON array of 64
// bytes (32-byte seed followed by 32-byte public key).
func loadFromFile(path string) (solana.PrivateKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("walletkit: read wallet file %s: %w", path, err)
	}

	var values []int
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("walletkit: parse wallet file %s: %w", path, err)
	}
	if len(values) != solana.PrivateKeyLen {
		return nil, fmt.Errorf("walletkit: wallet file %s: expected %d bytes, got %d", path, solana.PrivateKeyLen, len(values))
	}

	key := make(solana.PrivateKey, solana.PrivateKeyLen)
	for i, v := range values {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("walletkit: wallet file %s: byte %d out of range: %d", path, i, v)
		}
		key[i] = byte(v)
	}
	return key, nil
}
