package pricefeed

import (
	"math"
	"math/rand"
	"testing"
)

func newSeededFeed(seeds map[string]float64, drift float64) *Feed {
	return New(Config{
		SeedPrices: seeds,
		MaxDrift:   drift,
		Rand:       rand.New(rand.NewSource(42)),
	})
}

func TestGetPriceReturnsSeededPrice(t *testing.T) {
	feed := newSeededFeed(map[string]float64{"EUR/USD": 1.0845}, 0.002)

	price := feed.GetPrice("EUR/USD")
	if price != 1.0845 {
		t.Errorf("Expected seeded price 1.0845, got %f", price)
	}
}

func TestGetPriceInitializesUnseenSymbol(t *testing.T) {
	feed := newSeededFeed(map[string]float64{}, 0.002)

	price := feed.GetPrice("ZZZ/ZZZ")
	if price < unseenPriceMin || price > unseenPriceMax {
		t.Errorf("Expected unseen price in [%f, %f], got %f", unseenPriceMin, unseenPriceMax, price)
	}

	// The symbol is tracked from then on: the same price comes back.
	again := feed.GetPrice("ZZZ/ZZZ")
	if again != price {
		t.Errorf("Expected stable price %f for tracked symbol, got %f", price, again)
	}
}

func TestTickKeepsPricesPositive(t *testing.T) {
	feed := newSeededFeed(map[string]float64{"EUR/USD": 1.0845, "XBT/USD": 43250.0, "TINY/USD": 0.0001}, 0.002)

	for i := 0; i < 10000; i++ {
		feed.Tick()
	}
	for symbol, price := range feed.Snapshot() {
		if price <= 0 {
			t.Errorf("Price for %s became non-positive after ticks: %f", symbol, price)
		}
	}
}

func TestTickStepIsBounded(t *testing.T) {
	const drift = 0.002
	feed := newSeededFeed(map[string]float64{"EUR/USD": 1.0845}, drift)

	prev := feed.GetPrice("EUR/USD")
	for i := 0; i < 1000; i++ {
		feed.Tick()
		next := feed.GetPrice("EUR/USD")
		change := math.Abs(next/prev - 1)
		if change > drift {
			t.Fatalf("Tick %d moved price by %f, beyond max drift %f", i, change, drift)
		}
		prev = next
	}
}

func TestDefaultSeedPricesArePositive(t *testing.T) {
	seeds := DefaultSeedPrices(rand.New(rand.NewSource(7)))
	if len(seeds) == 0 {
		t.Fatal("Expected non-empty default seed prices")
	}
	for symbol, price := range seeds {
		if price <= 0 {
			t.Errorf("Default seed price for %s is non-positive: %f", symbol, price)
		}
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	feed := newSeededFeed(map[string]float64{"EUR/USD": 1.0845}, 0.002)

	snap := feed.Snapshot()
	snap["EUR/USD"] = -1

	if feed.GetPrice("EUR/USD") != 1.0845 {
		t.Error("Mutating a snapshot must not affect the feed")
	}
}
