package ports

// PriceFeed defines the interface for the simulated market the engine prices
// trades against. Implementations must never return a non-positive price.
type PriceFeed interface {
	// GetPrice returns the current price for a symbol. Unseen symbols are
	// initialized with a randomized default and tracked from then on; the
	// call never fails.
	GetPrice(symbol string) float64
	// Tick advances every tracked price by one random-walk step.
	Tick()
	// Snapshot returns a copy of all tracked prices.
	Snapshot() map[string]float64
}
