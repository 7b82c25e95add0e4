package ports

import (
	"context"

	"optionSim/internal/domain"
)

// LedgerRepository defines the interface for persisting settled trades.
// Persistence is layered on top of the engine's in-memory ledger: the host
// writes each settled trade through this interface and can reload history
// across restarts. The engine itself never touches storage.
type LedgerRepository interface {
	// SaveTrade appends a settled trade to the persistent ledger.
	SaveTrade(ctx context.Context, trade *domain.Trade) error
	// FindRecent retrieves the most recently settled trades, newest first,
	// up to limit. A non-positive limit returns all of them.
	FindRecent(ctx context.Context, limit int) ([]*domain.Trade, error)
	// TotalProfit sums the realized profit of every persisted trade.
	TotalProfit(ctx context.Context) (float64, error)
}
