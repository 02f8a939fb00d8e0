package rpc

import (
	"context"
	"sync"
	"time"

	"github.com/magicollection/magi/internal/chain"
	"github.com/magicollection/magi/internal/log"
)

// BenchmarkResult holds the result of a single endpoint benchmark.
type BenchmarkResult struct {
	URL         string
	Latency     time.Duration
	BlockNumber uint64
	Err         error
}

// pingFunc is swapped in tests.
var pingFunc = chain.Ping

// Pickers outlive a single SelectBest call so round-robin keeps rotating.
var (
	pickersMu sync.Mutex
	pickers   = map[pickerKey]*Picker{}
)

type pickerKey struct {
	algo       Algorithm
	preferPush bool
}

// sharedPicker returns the process-wide picker for algo. Callers hold
// pickersMu.
func sharedPicker(algo Algorithm, preferPush bool) *Picker {
	// Only fastest looks at preferPush.
	if algo != AlgorithmFastest {
		preferPush = false
	}
	key := pickerKey{algo: algo, preferPush: preferPush}
	p, ok := pickers[key]
	if !ok {
		p = NewPicker(algo, preferPush)
		pickers[key] = p
	}
	return p
}

// Rotation returns the round-robin cursor, for persisting between runs.
func Rotation() int {
	pickersMu.Lock()
	defer pickersMu.Unlock()
	return sharedPicker(AlgorithmRoundRobin, false).rrIndex
}

// SeedRotation restores a cursor saved with Rotation.
func SeedRotation(n int) {
	if n < 0 {
		n = 0
	}
	pickersMu.Lock()
	defer pickersMu.Unlock()
	sharedPicker(AlgorithmRoundRobin, false).rrIndex = n
}

// Benchmark pings all URLs in parallel and returns results in input order.
func Benchmark(ctx context.Context, urls []string) []BenchmarkResult {
	results := make([]BenchmarkResult, len(urls))
	var wg sync.WaitGroup

	for i, url := range urls {
		wg.Add(1)
		go func(idx int, u string) {
			defer wg.Done()
			latency, block, err := pingFunc(ctx, u)
			results[idx] = BenchmarkResult{
				URL:         u,
				Latency:     latency,
				BlockNumber: block,
				Err:         err,
			}
		}(i, url)
	}

	wg.Wait()
	return results
}

// ResultsToEndpoints converts benchmark results to picker Endpoints.
func ResultsToEndpoints(results []BenchmarkResult) []Endpoint {
	endpoints := make([]Endpoint, 0, len(results))
	for _, r := range results {
		endpoints = append(endpoints, Endpoint{
			URL:           r.URL,
			Latency:       r.Latency,
			BlockNumber:   r.BlockNumber,
			Subscriptions: chain.SupportsSubscriptions(r.URL),
			Healthy:       r.Err == nil,
			Checked:       true,
		})
	}
	return endpoints
}

// SelectBest picks the best RPC URL from urls using the named algorithm
// ("fastest" when empty). A single URL is returned without a benchmark.
func SelectBest(ctx context.Context, urls []string, algorithm string, preferPush bool) (string, error) {
	if len(urls) == 0 {
		return "", ErrNoHealthyRPC
	}
	if len(urls) == 1 {
		return urls[0], nil
	}
	algo := Algorithm(algorithm)
	if algo == "" {
		algo = AlgorithmFastest
	}

	results := Benchmark(ctx, urls)
	for _, r := range results {
		if r.Err != nil {
			log.RPC.Debug().Str("url", r.URL).Err(r.Err).Msg("endpoint unhealthy")
		}
	}

	pickersMu.Lock()
	winner, err := sharedPicker(algo, preferPush).Pick(ResultsToEndpoints(results))
	pickersMu.Unlock()
	if err != nil {
		return "", err
	}
	log.RPC.Debug().Str("url", winner.URL).Str("algorithm", string(algo)).Dur("latency", winner.Latency).Msg("endpoint selected")
	return winner.URL, nil
}
