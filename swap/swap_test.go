// Copyright (c) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package swap

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/solsniper/types"
)

type fakeReserves struct {
	base, quote uint64
	err         error
}

func (f fakeReserves) GetPoolReserves(ctx context.Context, keys types.PoolKeys) (uint64, uint64, error) {
	return f.base, f.quote, f.err
}

type fakeBuilder struct {
	instructions []solana.Instruction
	err          error
	lastAmountIn, lastMinOut uint64
}

func (f *fakeBuilder) BuildSwapInstructions(ctx context.Context, keys types.PoolKeys, owner, userSourceATA, userDestATA solana.PublicKey, amountIn, minimumAmountOut uint64, direction types.Direction) ([]solana.Instruction, error) {
	f.lastAmountIn = amountIn
	f.lastMinOut = minimumAmountOut
	return f.instructions, f.err
}

type fakeBudget struct{ provides bool }

func (f fakeBudget) ProvidesComputeBudget() bool { return f.provides }

func testPool() types.PoolDescriptor {
	return types.PoolDescriptor{
		BaseMint:  solana.NewWallet().PublicKey(),
		QuoteMint: solana.NewWallet().PublicKey(),
	}
}

func TestBuildZeroOutputAborts(t *testing.T) {
	h := NewHelper(fakeReserves{base: 0, quote: 0}, &fakeBuilder{})
	owner := solana.NewWallet().PublicKey()
	intent := types.TradeIntent{
		Direction:   types.DirectionBuy,
		InputAmount: 1000,
		InputMint:   solana.NewWallet().PublicKey(),
		OutputMint:  solana.NewWallet().PublicKey(),
		SlippageBps: 500,
		Pool:        testPool(),
	}

	_, err := h.Build(context.Background(), types.PoolKeys{Pool: intent.Pool}, intent, owner, fakeBudget{provides: true}, 1000, 1)
	require.ErrorIs(t, err, ErrZeroOutput)
}

func TestBuildPrependsComputeBudgetOnlyWhenCapable(t *testing.T) {
	builder := &fakeBuilder{instructions: []solana.Instruction{}}
	h := NewHelper(fakeReserves{base: 1_000_000, quote: 1_000_000}, builder)
	owner := solana.NewWallet().PublicKey()
	pool := testPool()
	intent := types.TradeIntent{
		Direction:   types.DirectionBuy,
		InputAmount: 1000,
		InputMint:   pool.QuoteMint,
		OutputMint:  pool.BaseMint,
		SlippageBps: 500,
		Pool:        pool,
	}

	planWithBudget, err := h.Build(context.Background(), types.PoolKeys{Pool: pool}, intent, owner, fakeBudget{provides: true}, 1000, 1)
	require.NoError(t, err)

	planWithoutBudget, err := h.Build(context.Background(), types.PoolKeys{Pool: pool}, intent, owner, fakeBudget{provides: false}, 1000, 1)
	require.NoError(t, err)

	require.Greater(t, len(planWithBudget.Instructions), len(planWithoutBudget.Instructions))
}

func TestBuildSellAppendsCloseAccount(t *testing.T) {
	builder := &fakeBuilder{instructions: []solana.Instruction{}}
	h := NewHelper(fakeReserves{base: 1_000_000, quote: 1_000_000}, builder)
	owner := solana.NewWallet().PublicKey()
	pool := testPool()

	buyIntent := types.TradeIntent{Direction: types.DirectionBuy, InputAmount: 1000, InputMint: pool.QuoteMint, OutputMint: pool.BaseMint, SlippageBps: 500, Pool: pool}
	sellIntent := types.TradeIntent{Direction: types.DirectionSell, InputAmount: 1000, InputMint: pool.BaseMint, OutputMint: pool.QuoteMint, SlippageBps: 500, Pool: pool}

	buyPlan, err := h.Build(context.Background(), types.PoolKeys{Pool: pool}, buyIntent, owner, fakeBudget{provides: false}, 1000, 1)
	require.NoError(t, err)
	require.Len(t, buyPlan.Instructions, 1)
	require.NotEqual(t, solana.TokenProgramID, buyPlan.Instructions[0].ProgramID())

	sellPlan, err := h.Build(context.Background(), types.PoolKeys{Pool: pool}, sellIntent, owner, fakeBudget{provides: false}, 1000, 1)
	require.NoError(t, err)
	require.Len(t, sellPlan.Instructions, 1)
	require.Equal(t, solana.TokenProgramID, sellPlan.Instructions[0].ProgramID())
}
