// Package rpc chooses which configured JSON-RPC endpoint magi talks to.
package rpc

import (
	"errors"
	"time"
)

// ErrNoHealthyRPC is returned when no healthy RPC endpoint is available.
var ErrNoHealthyRPC = errors.New("no healthy RPC endpoint available")

// Algorithm defines how an RPC endpoint is selected.
type Algorithm string

const (
	AlgorithmFastest    Algorithm = "fastest"
	AlgorithmRoundRobin Algorithm = "round-robin"
	AlgorithmFailover   Algorithm = "failover"

	// Discard nodes more than this many blocks behind the best.
	staleBlockThreshold = 3
	// Score bonus for endpoints that can push mint events.
	pushBonus = 25.0
)

// Endpoint represents a single RPC endpoint with its measured attributes.
type Endpoint struct {
	URL           string
	Latency       time.Duration
	BlockNumber   uint64
	Subscriptions bool // ws(s)/ipc transport, can deliver NewEpicNFTMinted without polling
	Healthy       bool // meaningful only when Checked == true
	Checked       bool
}

// Picker selects an RPC endpoint according to the configured algorithm.
// A Picker is not safe for concurrent use.
type Picker struct {
	algo       Algorithm
	preferPush bool
	rrIndex    int
}

// NewPicker creates a new Picker. When preferPush is set the fastest
// algorithm favours endpoints with Subscriptions.
func NewPicker(algo Algorithm, preferPush bool) *Picker {
	return &Picker{algo: algo, preferPush: preferPush}
}

// Pick selects an endpoint from the provided list according to the algorithm.
func (p *Picker) Pick(endpoints []Endpoint) (*Endpoint, error) {
	if len(endpoints) == 0 {
		return nil, ErrNoHealthyRPC
	}

	switch p.algo {
	case AlgorithmRoundRobin:
		return p.pickRoundRobin(endpoints)
	case AlgorithmFailover:
		return pickFailover(endpoints)
	default:
		return p.pickFastest(endpoints)
	}
}

func (p *Picker) pickFastest(endpoints []Endpoint) (*Endpoint, error) {
	var bestBlock uint64
	for _, e := range endpoints {
		if e.BlockNumber > bestBlock {
			bestBlock = e.BlockNumber
		}
	}

	var winner *Endpoint
	var bestScore float64
	for _, e := range candidates(endpoints) {
		if bestBlock > 0 && bestBlock-e.BlockNumber > staleBlockThreshold {
			continue
		}
		s := p.score(e, bestBlock)
		if winner == nil || s > bestScore {
			winner = e
			bestScore = s
		}
	}
	if winner == nil {
		return nil, ErrNoHealthyRPC
	}
	return winner, nil
}

func (p *Picker) pickRoundRobin(endpoints []Endpoint) (*Endpoint, error) {
	healthy := candidates(endpoints)
	if len(healthy) == 0 {
		return nil, ErrNoHealthyRPC
	}
	idx := p.rrIndex % len(healthy)
	p.rrIndex = (idx + 1) % len(healthy)
	return healthy[idx], nil
}

// pickFailover returns the first endpoint not known to be unhealthy.
func pickFailover(endpoints []Endpoint) (*Endpoint, error) {
	for i := range endpoints {
		e := &endpoints[i]
		if e.Checked && !e.Healthy {
			continue
		}
		return e, nil
	}
	return nil, ErrNoHealthyRPC
}

func (p *Picker) score(e *Endpoint, bestBlock uint64) float64 {
	var s float64
	if ms := e.Latency.Milliseconds(); ms > 0 {
		s += 1000.0 / float64(ms)
	}
	if bestBlock > 0 {
		s += float64(10 - (bestBlock - e.BlockNumber))
	}
	if p.preferPush && e.Subscriptions {
		s += pushBonus
	}
	return s
}

// candidates returns endpoints eligible for selection. If nothing has been
// health-checked every endpoint is a candidate.
func candidates(endpoints []Endpoint) []*Endpoint {
	var out []*Endpoint
	for i := range endpoints {
		e := &endpoints[i]
		if !e.Checked || e.Healthy {
			out = append(out, e)
		}
	}
	return out
}
