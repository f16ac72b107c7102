// Copyright (c) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// metaplexTokenMetadataProgram is the well-known Metaplex Token Metadata
// program id; metadata PDAs are derived from it the same way for every
// mint.
var metaplexTokenMetadataProgram = solana.MustPublicKeyFromBase58("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")

// GetMintMetadata implements filters.ChainReader's pump.fun-origin check: it
// derives the mint's Metaplex metadata PDA, fetches it, and extracts the uri
// and update authority fields from the account's fixed-layout prefix (key
// byte, 32-byte update authority, 32-byte mint, then borsh-encoded name,
// symbol and uri strings, each a u32 length prefix followed by the bytes).
func (r *Reader) GetMintMetadata(ctx context.Context, mint solana.PublicKey) (uri string, updateAuthority solana.PublicKey, err error) {
	pda, _, err := solana.FindProgramAddress(
		[][]byte{[]byte("metadata"), metaplexTokenMetadataProgram.Bytes(), mint.Bytes()},
		metaplexTokenMetadataProgram,
	)
	if err != nil {
		return "", solana.PublicKey{}, fmt.Errorf("chain: derive metadata pda: %w", err)
	}

	data, err := r.getAccountData(ctx, pda)
	if err != nil {
		return "", solana.PublicKey{}, err
	}
	return parseMetadataURI(data)
}

// Metaplex metadata layout: 1-byte key discriminator, 32-byte update
// authority, 32-byte mint, then name (u32 len + bytes), symbol (u32 len +
// bytes), uri (u32 len + bytes).
const metadataHeaderSize = 1 + 32 + 32

func parseMetadataURI(data []byte) (string, solana.PublicKey, error) {
	if len(data) < metadataHeaderSize+4 {
		return "", solana.PublicKey{}, fmt.Errorf("chain: metadata account too short: %d bytes", len(data))
	}
	updateAuthority := solana.PublicKeyFromBytes(data[1:33])

	offset := metadataHeaderSize
	nameLen := int(binary.LittleEndian.Uint32(data[offset : offset+4]))
	offset += 4 + nameLen

	if len(data) < offset+4 {
		return "", updateAuthority, fmt.Errorf("chain: metadata account truncated before symbol")
	}
	symbolLen := int(binary.LittleEndian.Uint32(data[offset : offset+4]))
	offset += 4 + symbolLen

	if len(data) < offset+4 {
		return "", updateAuthority, fmt.Errorf("chain: metadata account truncated before uri")
	}
	uriLen := int(binary.LittleEndian.Uint32(data[offset : offset+4]))
	offset += 4
	if len(data) < offset+uriLen {
		return "", updateAuthority, fmt.Errorf("chain: metadata account truncated uri field")
	}
	uri := string(data[offset : offset+uriLen])
	return uri, updateAuthority, nil
}
