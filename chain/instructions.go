// Copyright (c) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"context"
	"encoding/binary"

	"github.com/gagliardetto/solana-go"

	"github.com/luxfi/solsniper/subscription"
	"github.com/luxfi/solsniper/types"
)

// raydiumAMMV4Program and associated program ids/seeds used to assemble a
// classical pool's swap instruction. swap.Helper treats BuildSwapInstructions
// as an external AMM library (spec §1 Non-goals: "does not implement the
// on-chain AMM math"); this is that library's minimal stand-in, encoding
// only the Raydium AMM v4 "swapBaseIn" instruction.
var (
	raydiumAMMV4Program = solana.MustPublicKeyFromBase58(subscription.RaydiumAMMV4Program)
	openBookV3Program    = solana.MustPublicKeyFromBase58(subscription.OpenBookV3Program)
)

const swapBaseInDiscriminator = byte(9)

// BuildSwapInstructions implements swap.InstructionBuilder for classical
// pools. CPMM pools are not yet wired to a concrete instruction encoder
// (spec §4.5.3's devnet-only CPMM subscription feeds Pool Storage and
// filters; constant-product swap construction is left to a future AMM
// library integration).
func (r *Reader) BuildSwapInstructions(ctx context.Context, keys types.PoolKeys, owner, userSourceATA, userDestATA solana.PublicKey, amountIn, minimumAmountOut uint64, direction types.Direction) ([]solana.Instruction, error) {
	pool := keys.Pool

	ammAuthority, _, err := solana.FindProgramAddress([][]byte{[]byte("amm authority")}, raydiumAMMV4Program)
	if err != nil {
		return nil, err
	}

	var marketID, eventQueue, bids, asks solana.PublicKey
	if keys.Market != nil {
		marketID = keys.Market.MarketID
		eventQueue = keys.Market.EventQueue
		bids = keys.Market.Bids
		asks = keys.Market.Asks
	}

	vaultSigner, _, err := solana.FindProgramAddress([][]byte{marketID.Bytes()}, openBookV3Program)
	if err != nil {
		return nil, err
	}

	data := make([]byte, 1+8+8)
	data[0] = swapBaseInDiscriminator
	binary.LittleEndian.PutUint64(data[1:9], amountIn)
	binary.LittleEndian.PutUint64(data[9:17], minimumAmountOut)

	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
		solana.NewAccountMeta(pool.ID, true, false),
		solana.NewAccountMeta(ammAuthority, false, false),
		solana.NewAccountMeta(pool.LPMint, true, false), // open-orders placeholder; exact layout out of scope
		solana.NewAccountMeta(pool.LPMint, true, false), // target-orders placeholder
		solana.NewAccountMeta(pool.BaseVault, true, false),
		solana.NewAccountMeta(pool.QuoteVault, true, false),
		solana.NewAccountMeta(openBookV3Program, false, false),
		solana.NewAccountMeta(marketID, true, false),
		solana.NewAccountMeta(bids, true, false),
		solana.NewAccountMeta(asks, true, false),
		solana.NewAccountMeta(eventQueue, true, false),
		solana.NewAccountMeta(pool.BaseVault, true, false),
		solana.NewAccountMeta(pool.QuoteVault, true, false),
		solana.NewAccountMeta(vaultSigner, false, false),
		solana.NewAccountMeta(userSourceATA, true, false),
		solana.NewAccountMeta(userDestATA, true, false),
		solana.NewAccountMeta(owner, false, true),
	}

	ix := solana.NewInstruction(raydiumAMMV4Program, accounts, data)
	return []solana.Instruction{ix}, nil
}
