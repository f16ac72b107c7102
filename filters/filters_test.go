// Copyright (c) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package filters

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/solsniper/types"
)

type fakeChain struct {
	supply                           uint64
	mintAuthority, freezeAuthority   *solana.PublicKey
	balance                          uint64
	uri                              string
	updateAuthority                  solana.PublicKey
	err                              error
}

func (f fakeChain) GetTokenSupply(ctx context.Context, mint solana.PublicKey) (uint64, error) {
	return f.supply, f.err
}

func (f fakeChain) GetMintAuthorities(ctx context.Context, mint solana.PublicKey) (*solana.PublicKey, *solana.PublicKey, error) {
	return f.mintAuthority, f.freezeAuthority, f.err
}

func (f fakeChain) GetTokenAccountBalance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	return f.balance, f.err
}

func (f fakeChain) GetMintMetadata(ctx context.Context, mint solana.PublicKey) (string, solana.PublicKey, error) {
	return f.uri, f.updateAuthority, f.err
}

func keysWithPool() types.PoolKeys {
	return types.PoolKeys{Pool: types.PoolDescriptor{
		BaseMint:   solana.NewWallet().PublicKey(),
		LPMint:     solana.NewWallet().PublicKey(),
		QuoteVault: solana.NewWallet().PublicKey(),
	}}
}

func TestBurntLiquidityFilter(t *testing.T) {
	f := NewBurntLiquidityFilter(fakeChain{supply: 0})
	res, err := f.Execute(context.Background(), keysWithPool())
	require.NoError(t, err)
	require.True(t, res.OK)

	f = NewBurntLiquidityFilter(fakeChain{supply: 1000})
	res, err = f.Execute(context.Background(), keysWithPool())
	require.NoError(t, err)
	require.False(t, res.OK)
}

func TestRenouncedMintAuthorityFilter(t *testing.T) {
	f := NewRenouncedMintAuthorityFilter(fakeChain{mintAuthority: nil})
	res, err := f.Execute(context.Background(), keysWithPool())
	require.NoError(t, err)
	require.True(t, res.OK)

	auth := solana.NewWallet().PublicKey()
	f = NewRenouncedMintAuthorityFilter(fakeChain{mintAuthority: &auth})
	res, err = f.Execute(context.Background(), keysWithPool())
	require.NoError(t, err)
	require.False(t, res.OK)
}

func TestFreezableFilter(t *testing.T) {
	f := NewFreezableFilter(fakeChain{freezeAuthority: nil})
	res, err := f.Execute(context.Background(), keysWithPool())
	require.NoError(t, err)
	require.True(t, res.OK)

	auth := solana.NewWallet().PublicKey()
	f = NewFreezableFilter(fakeChain{freezeAuthority: &auth})
	res, err = f.Execute(context.Background(), keysWithPool())
	require.NoError(t, err)
	require.False(t, res.OK)
}

func TestPoolSizeFilterRange(t *testing.T) {
	f := NewPoolSizeFilter(fakeChain{balance: 500}, 100, 1000)
	res, err := f.Execute(context.Background(), keysWithPool())
	require.NoError(t, err)
	require.True(t, res.OK)

	f = NewPoolSizeFilter(fakeChain{balance: 5}, 100, 1000)
	res, err = f.Execute(context.Background(), keysWithPool())
	require.NoError(t, err)
	require.False(t, res.OK)
}

func TestPumpFunOriginFilter(t *testing.T) {
	f := NewPumpFunOriginFilter(fakeChain{uri: "https://pump.fun/coin/x"})
	res, err := f.Execute(context.Background(), keysWithPool())
	require.NoError(t, err)
	require.True(t, res.OK)

	f = NewPumpFunOriginFilter(fakeChain{uri: "https://example.com"})
	res, err = f.Execute(context.Background(), keysWithPool())
	require.NoError(t, err)
	require.False(t, res.OK)
}

func TestEngineExecuteEmptyIsTrue(t *testing.T) {
	e := New(nil)
	require.True(t, e.Execute(context.Background(), keysWithPool()))
}

func TestEngineExecuteANDsAllFilters(t *testing.T) {
	pass := NewBurntLiquidityFilter(fakeChain{supply: 0})
	fail := NewFreezableFilter(fakeChain{freezeAuthority: &solana.PublicKey{}})

	e := New(nil, pass, fail)
	require.False(t, e.Execute(context.Background(), keysWithPool()))

	e = New(nil, pass, pass)
	require.True(t, e.Execute(context.Background(), keysWithPool()))
}

func TestEngineExecuteFetchErrorTreatedAsFailure(t *testing.T) {
	broken := NewBurntLiquidityFilter(fakeChain{err: errors.New("rpc down")})
	e := New(nil, broken)
	require.False(t, e.Execute(context.Background(), keysWithPool()))
}
