// Copyright (c) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func buildFromArgs(t *testing.T, args []string) (Config, error) {
	t.Helper()
	fs := BuildFlagSet()
	v, err := BuildViper(fs, args)
	require.NoError(t, err)
	return BuildConfig(v)
}

func TestBuildConfigMinimalValid(t *testing.T) {
	cfg, err := buildFromArgs(t, []string{
		"--rpc-endpoints=https://a", "--ws-endpoints=wss://a",
		"--wallet-base58=abc", "--quote-mint=So11111111111111111111111111111111111111112",
	})
	require.NoError(t, err)
	require.Equal(t, []string{"https://a"}, cfg.RPCEndpoints)
	require.Equal(t, CommitmentConfirmed, cfg.Commitment)
	require.True(t, cfg.OneTokenAtATime)
}

func TestBuildConfigMissingRPCEndpoints(t *testing.T) {
	_, err := buildFromArgs(t, []string{
		"--wallet-base58=abc", "--quote-mint=mint",
	})
	require.ErrorIs(t, err, ErrConfigInvalid)
}

func TestBuildConfigEndpointCountMismatch(t *testing.T) {
	_, err := buildFromArgs(t, []string{
		"--rpc-endpoints=https://a|https://b", "--ws-endpoints=wss://a",
		"--wallet-base58=abc", "--quote-mint=mint",
	})
	require.ErrorIs(t, err, ErrConfigInvalid)
}

func TestBuildConfigUnknownCommitment(t *testing.T) {
	_, err := buildFromArgs(t, []string{
		"--rpc-endpoints=https://a", "--ws-endpoints=wss://a",
		"--wallet-base58=abc", "--quote-mint=mint", "--commitment=bogus",
	})
	require.ErrorIs(t, err, ErrConfigInvalid)
}

func TestBuildConfigMissingWallet(t *testing.T) {
	_, err := buildFromArgs(t, []string{
		"--rpc-endpoints=https://a", "--ws-endpoints=wss://a",
		"--quote-mint=mint",
	})
	require.ErrorIs(t, err, ErrConfigInvalid)
}

func TestBuildConfigCPMMRequiresProgram(t *testing.T) {
	_, err := buildFromArgs(t, []string{
		"--rpc-endpoints=https://a", "--ws-endpoints=wss://a",
		"--wallet-base58=abc", "--quote-mint=mint", "--allow-devnet-cpmm",
	})
	require.ErrorIs(t, err, ErrConfigInvalid)

	cfg, err := buildFromArgs(t, []string{
		"--rpc-endpoints=https://a", "--ws-endpoints=wss://a",
		"--wallet-base58=abc", "--quote-mint=mint",
		"--allow-devnet-cpmm", "--cpmm-program=prog",
	})
	require.NoError(t, err)
	require.True(t, cfg.AllowDevnetCPMM)
}

func TestSplitPipe(t *testing.T) {
	require.Nil(t, splitPipe(""))
	require.Equal(t, []string{"a", "b"}, splitPipe("a|b"))
	require.Equal(t, []string{"a", "b"}, splitPipe(" a | b "))
}
