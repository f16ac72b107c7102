// Copyright (c) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package rpcpool implements the Round-Robin Endpoint Pool (spec §4.2): an
// ordered sequence of endpoint configs with a single current selection that
// callers refresh after a failed submission. Grounded on the reservation
// bookkeeping style of the teacher's core/txpool/txpool.go (a single mutex
// guarding a small piece of shared state touched from many goroutines).
package rpcpool

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"github.com/gagliardetto/solana-go/rpc"

	"github.com/luxfi/solsniper/config"
	"github.com/luxfi/solsniper/log"
)

// ErrNoEndpoints is returned by New when given an empty endpoint list.
var ErrNoEndpoints = errors.New("rpcpool: no endpoints configured")

// defaultFallbackRPC and defaultFallbackWS are the hard-coded endpoints
// Fallback swaps in (spec §4.2 "fallback() — replace current selection with
// a hard-coded default endpoint").
const (
	defaultFallbackRPC = "https://api.mainnet-beta.solana.com"
	defaultFallbackWS  = "wss://api.mainnet-beta.solana.com"
)

// Endpoint is one (rpc-url, ws-url, commitment) tuple (spec §3).
type Endpoint struct {
	RPCURL     string
	WSURL      string
	Commitment rpc.CommitmentType
}

// Pool holds an ordered sequence of endpoints and tracks the most recently
// selected index, -1 if none yet selected (spec §3).
type Pool struct {
	mu        sync.Mutex
	endpoints []Endpoint
	lastIndex int
	client    *rpc.Client
	rng       *rand.Rand
}

// New builds a Pool from explicit endpoints. Construction fails with
// ErrNoEndpoints if endpoints is empty.
func New(endpoints []Endpoint, seed int64) (*Pool, error) {
	if len(endpoints) == 0 {
		return nil, ErrNoEndpoints
	}
	p := &Pool{
		endpoints: endpoints,
		lastIndex: 0,
		rng:       rand.New(rand.NewSource(seed)),
	}
	p.client = rpc.New(endpoints[0].RPCURL)
	return p, nil
}

func commitmentFromConfig(c config.Commitment) rpc.CommitmentType {
	switch c {
	case config.CommitmentProcessed:
		return rpc.CommitmentProcessed
	case config.CommitmentFinalized:
		return rpc.CommitmentFinalized
	default:
		return rpc.CommitmentConfirmed
	}
}

// FromConfig builds a Pool from the RPC/WS endpoint lists and commitment
// level in cfg. Construction fails with config.ErrConfigInvalid when the
// endpoint counts mismatch (cfg.validate already enforces this, this is a
// second, narrower check for callers that build a Pool directly).
func FromConfig(cfg config.Config, seed int64) (*Pool, error) {
	if len(cfg.RPCEndpoints) != len(cfg.WSEndpoints) {
		return nil, fmt.Errorf("%w: endpoint count mismatch", config.ErrConfigInvalid)
	}
	commitment := commitmentFromConfig(cfg.Commitment)
	endpoints := make([]Endpoint, len(cfg.RPCEndpoints))
	for i := range cfg.RPCEndpoints {
		endpoints[i] = Endpoint{
			RPCURL:     cfg.RPCEndpoints[i],
			WSURL:      cfg.WSEndpoints[i],
			Commitment: commitment,
		}
	}
	return New(endpoints, seed)
}

// GetConnection returns the currently selected RPC client.
func (p *Pool) GetConnection() *rpc.Client {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.client
}

// Current returns the currently selected endpoint.
func (p *Pool) Current() Endpoint {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.endpoints[p.lastIndex]
}

// Refresh picks a uniformly random index in [0, N) distinct from the last
// selection (or the sole index if N=1), and updates the current connection
// (spec §4.2, testable property 4).
func (p *Pool) Refresh() Endpoint {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := len(p.endpoints)
	next := p.lastIndex
	if n > 1 {
		for next == p.lastIndex {
			next = p.rng.Intn(n)
		}
	}
	p.lastIndex = next
	ep := p.endpoints[next]
	p.client = rpc.New(ep.RPCURL)
	return ep
}

// Fallback replaces the current selection with a hard-coded default
// endpoint and logs a warning (spec §4.2).
func (p *Pool) Fallback() Endpoint {
	p.mu.Lock()
	defer p.mu.Unlock()

	ep := Endpoint{RPCURL: defaultFallbackRPC, WSURL: defaultFallbackWS, Commitment: rpc.CommitmentConfirmed}
	log.Warn("rpcpool: falling back to default endpoint", "rpc", ep.RPCURL)
	p.client = rpc.New(ep.RPCURL)
	// lastIndex is left as-is: the fallback endpoint is not a member of the
	// configured rotation, so there is nothing sensible to index it as.
	return ep
}

// Len reports the number of configured endpoints.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.endpoints)
}
