// Copyright (c) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpcpool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func twoEndpoints() []Endpoint {
	return []Endpoint{
		{RPCURL: "https://a", WSURL: "wss://a"},
		{RPCURL: "https://b", WSURL: "wss://b"},
	}
}

func TestNewRejectsEmpty(t *testing.T) {
	_, err := New(nil, 1)
	require.ErrorIs(t, err, ErrNoEndpoints)
}

func TestRefreshPicksDistinctIndex(t *testing.T) {
	p, err := New(twoEndpoints(), 42)
	require.NoError(t, err)

	start := p.Current()
	for i := 0; i < 20; i++ {
		next := p.Refresh()
		require.NotEqual(t, start, next)
		start = next
	}
}

func TestRefreshSingleEndpointIsStable(t *testing.T) {
	p, err := New([]Endpoint{{RPCURL: "https://only", WSURL: "wss://only"}}, 7)
	require.NoError(t, err)

	ep := p.Refresh()
	require.Equal(t, "https://only", ep.RPCURL)
}

func TestFallbackDoesNotChangeLen(t *testing.T) {
	p, err := New(twoEndpoints(), 1)
	require.NoError(t, err)

	ep := p.Fallback()
	require.Equal(t, defaultFallbackRPC, ep.RPCURL)
	require.Equal(t, 2, p.Len())
}
