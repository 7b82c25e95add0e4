package pricefeed

import (
	"math/rand"
	"sync"
	"time"
)

const (
	defaultMaxDrift = 0.002 // ±0.2% per tick

	// Bounds for the randomized price assigned to a symbol the feed has
	// never seen before.
	unseenPriceMin = 0.5
	unseenPriceMax = 2.0
)

// Config holds configuration for the simulated price feed.
type Config struct {
	// SeedPrices maps symbols to their starting prices. If nil,
	// DefaultSeedPrices is used.
	SeedPrices map[string]float64
	// MaxDrift is the half-width of the uniform per-tick price change
	// (e.g. 0.002 for ±0.2%). Defaults to 0.002.
	MaxDrift float64
	// Rand is the random source. If nil, a time-seeded source is used.
	// Tests inject a fixed seed for reproducible walks.
	Rand *rand.Rand
}

// Feed simulates a market by applying a small bounded random walk to every
// tracked price on each tick. All methods are safe for concurrent use.
type Feed struct {
	mu       sync.Mutex
	prices   map[string]float64
	maxDrift float64
	rng      *rand.Rand
}

// DefaultSeedPrices returns starting prices for common instruments, each
// jittered so two feeds never start identical.
func DefaultSeedPrices(rng *rand.Rand) map[string]float64 {
	return map[string]float64{
		"EUR/USD": 1.0845 + rng.Float64()*0.02 - 0.01,
		"GBP/USD": 1.2651 + rng.Float64()*0.02 - 0.01,
		"USD/JPY": 149.23 + rng.Float64()*2.0 - 1.0,
		"AUD/USD": 0.6543 + rng.Float64()*0.02 - 0.01,
		"USD/CAD": 1.3421 + rng.Float64()*0.02 - 0.01,
		"XBT/USD": 43250.0 + rng.Float64()*1000 - 500,
		"ETH/USD": 2450.0 + rng.Float64()*100 - 50,
		"ADA/USD": 0.4523 + rng.Float64()*0.1 - 0.05,
	}
}

// New creates a simulated price feed.
func New(cfg Config) *Feed {
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	maxDrift := cfg.MaxDrift
	if maxDrift <= 0 {
		maxDrift = defaultMaxDrift
	}
	seeds := cfg.SeedPrices
	if seeds == nil {
		seeds = DefaultSeedPrices(rng)
	}

	prices := make(map[string]float64, len(seeds))
	for symbol, price := range seeds {
		prices[symbol] = price
	}
	return &Feed{
		prices:   prices,
		maxDrift: maxDrift,
		rng:      rng,
	}
}

// GetPrice returns the current price for a symbol, initializing unseen symbols
// with a randomized default. Never fails.
func (f *Feed) GetPrice(symbol string) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	price, ok := f.prices[symbol]
	if !ok {
		price = unseenPriceMin + f.rng.Float64()*(unseenPriceMax-unseenPriceMin)
		f.prices[symbol] = price
	}
	return price
}

// Tick applies one random-walk step to every tracked price: each is multiplied
// by (1 + δ) with δ uniform in ±MaxDrift. Prices stay strictly positive.
func (f *Feed) Tick() {
	f.mu.Lock()
	defer f.mu.Unlock()

	for symbol, price := range f.prices {
		delta := (f.rng.Float64()*2 - 1) * f.maxDrift
		next := price * (1 + delta)
		if next <= 0 {
			// Unreachable for sane drift values, but the positivity
			// invariant must hold for any configuration.
			next = price
		}
		f.prices[symbol] = next
	}
}

// Snapshot returns a copy of all tracked prices.
func (f *Feed) Snapshot() map[string]float64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make(map[string]float64, len(f.prices))
	for symbol, price := range f.prices {
		out[symbol] = price
	}
	return out
}
