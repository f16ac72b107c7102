// Copyright (c) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package swap

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/gagliardetto/solana-go/programs/token"

	"github.com/luxfi/solsniper/types"
)

// ErrZeroOutput is returned when the computed minimum output is zero; the
// swap aborts with no transaction sent (spec §4.7.3, §8 boundary
// behavior).
var ErrZeroOutput = errors.New("swap: computed minimum output is zero")

// PoolInfoFetcher fetches a pool's live base/quote reserves. External
// collaborator: how reserves are actually read (vault token balances, or a
// constant-product pool's own reserve fields) is out of this package's
// scope.
type PoolInfoFetcher interface {
	GetPoolReserves(ctx context.Context, keys types.PoolKeys) (reserveBase, reserveQuote uint64, err error)
}

// InstructionBuilder produces the inner swap instruction(s) for a pool, via
// the external AMM library spec.md assumes (spec §1 Non-goals: "does not
// implement the on-chain AMM math").
type InstructionBuilder interface {
	BuildSwapInstructions(ctx context.Context, keys types.PoolKeys, owner, userSourceATA, userDestATA solana.PublicKey, amountIn, minimumAmountOut uint64, direction types.Direction) ([]solana.Instruction, error)
}

// ComputeBudgetCapable mirrors executor.Executor's capability flag without
// importing the executor package, avoiding an import cycle (executor does
// not need to know about swap, but swap needs to know whether to add
// compute-budget instructions).
type ComputeBudgetCapable interface {
	ProvidesComputeBudget() bool
}

// Helper builds a complete, unsigned instruction list for one buy or sell
// swap (spec §4.7.3).
type Helper struct {
	reserves PoolInfoFetcher
	inner    InstructionBuilder
}

func NewHelper(reserves PoolInfoFetcher, inner InstructionBuilder) *Helper {
	return &Helper{reserves: reserves, inner: inner}
}

// Plan is the result of building one swap's instruction list, ready to be
// compiled into a transaction.
type Plan struct {
	Instructions     []solana.Instruction
	MinimumAmountOut uint64
}

// Build implements spec §4.7.3: fetch live reserves, compute the expected
// minimum output under slippage, and assemble the instruction list in the
// required order:
//  1. compute-budget instructions, only when executor is Default
//  2. for a buy, an idempotent create-ATA instruction for the output mint
//  3. the inner swap instructions from the AMM library
//  4. for a sell, a close-account instruction for the input ATA
func (h *Helper) Build(ctx context.Context, keys types.PoolKeys, intent types.TradeIntent, owner solana.PublicKey, budget ComputeBudgetCapable, unitLimit uint32, unitPrice uint64) (Plan, error) {
	reserveBase, reserveQuote, err := h.reserves.GetPoolReserves(ctx, keys)
	if err != nil {
		return Plan{}, fmt.Errorf("swap: fetch reserves: %w", err)
	}

	var reserveIn, reserveOut uint64
	if intent.Direction == types.DirectionBuy {
		reserveIn, reserveOut = reserveQuote, reserveBase
	} else {
		reserveIn, reserveOut = reserveBase, reserveQuote
	}

	expectedOut := AmountOut(intent.InputAmount, reserveIn, reserveOut)
	minOut := MinimumAmountOut(expectedOut, intent.SlippageBps)
	if minOut == 0 {
		return Plan{}, ErrZeroOutput
	}

	sourceATA, _, err := solana.FindAssociatedTokenAddress(owner, intent.InputMint)
	if err != nil {
		return Plan{}, fmt.Errorf("swap: derive source ata: %w", err)
	}
	destATA, _, err := solana.FindAssociatedTokenAddress(owner, intent.OutputMint)
	if err != nil {
		return Plan{}, fmt.Errorf("swap: derive dest ata: %w", err)
	}

	var instructions []solana.Instruction

	if budget.ProvidesComputeBudget() {
		instructions = append(instructions,
			computebudget.NewSetComputeUnitPriceInstruction(unitPrice).Build(),
			computebudget.NewSetComputeUnitLimitInstruction(unitLimit).Build(),
		)
	}

	if intent.Direction == types.DirectionBuy {
		instructions = append(instructions, createIdempotentATA(owner, owner, intent.OutputMint, destATA))
	}

	innerInstructions, err := h.inner.BuildSwapInstructions(ctx, keys, owner, sourceATA, destATA, intent.InputAmount, minOut, intent.Direction)
	if err != nil {
		return Plan{}, fmt.Errorf("swap: build inner instructions: %w", err)
	}
	instructions = append(instructions, innerInstructions...)

	if intent.Direction == types.DirectionSell {
		closeIx, err := token.NewCloseAccountInstruction(sourceATA, owner, owner, nil).ValidateAndBuild()
		if err != nil {
			return Plan{}, fmt.Errorf("swap: build close account instruction: %w", err)
		}
		instructions = append(instructions, closeIx)
	}

	return Plan{Instructions: instructions, MinimumAmountOut: minOut}, nil
}

// createIdempotentATA builds an idempotent create-associated-token-account
// instruction: identical to associatedtokenaccount.NewCreateInstruction's
// accounts, but with instruction discriminator 1 (CreateIdempotent) so a
// pre-existing ATA does not fail the transaction.
func createIdempotentATA(payer, owner, mint, ata solana.PublicKey) solana.Instruction {
	base := associatedtokenaccount.NewCreateInstruction(payer, owner, mint).Build()
	accounts := base.Accounts()
	return solana.NewInstruction(base.ProgramID(), accounts, []byte{1})
}
