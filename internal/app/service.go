package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"optionSim/config"
	"optionSim/internal/analytics"
	"optionSim/internal/domain"
	"optionSim/internal/engine"
	"optionSim/internal/ports"
)

// Broadcaster pushes simulation events to live stream subscribers.
type Broadcaster interface {
	BroadcastTicker(prices map[string]float64)
	BroadcastSettlement(trade *domain.Trade)
}

// SimulationService drives the engine: it owns the periodic tick, persists
// settled trades and feeds the live stream. The engine itself never sleeps or
// spawns goroutines; all timing lives here.
type SimulationService struct {
	cfg         *config.Config
	logger      ports.Logger
	engine      *engine.Engine
	feed        ports.PriceFeed
	ledger      ports.LedgerRepository // optional
	broadcaster Broadcaster            // optional
}

// NewSimulationService creates the host service. Ledger and broadcaster may be
// nil; persistence and streaming are then skipped.
func NewSimulationService(
	cfg *config.Config,
	logger ports.Logger,
	eng *engine.Engine,
	feed ports.PriceFeed,
	ledger ports.LedgerRepository,
	broadcaster Broadcaster,
) (*SimulationService, error) {
	if cfg == nil || logger == nil || eng == nil || feed == nil {
		return nil, fmt.Errorf("missing required dependencies for SimulationService")
	}
	if cfg.TickInterval <= 0 {
		return nil, fmt.Errorf("configuration TickInterval must be positive")
	}

	return &SimulationService{
		cfg:         cfg,
		logger:      logger,
		engine:      eng,
		feed:        feed,
		ledger:      ledger,
		broadcaster: broadcaster,
	}, nil
}

// Run starts the simulation loop and blocks until the context is cancelled or
// a shutdown signal arrives. Stopping cancels the periodic tick; an in-flight
// settlement pass finishes the trade it is on before the engine observes the
// cancellation.
func (s *SimulationService) Run(ctx context.Context) error {
	s.logger.Info(ctx, "Starting simulation service", map[string]interface{}{
		"tickInterval": s.cfg.TickInterval.String(),
		"payoutRate":   s.cfg.PayoutRate,
		"balance":      s.engine.Balance(),
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			s.logger.Info(ctx, "Received shutdown signal", map[string]interface{}{"signal": sig.String()})
			cancel()
		case <-ctx.Done():
		}
	}()

	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.step(ctx)
		case <-ctx.Done():
			s.logger.Info(context.Background(), "Simulation loop stopped", map[string]interface{}{
				"balance":    s.engine.Balance(),
				"openTrades": s.engine.OpenTradeCount(),
			})
			s.logSummary(context.Background())
			return nil
		}
	}
}

// step advances the simulation by one tick.
func (s *SimulationService) step(ctx context.Context) {
	settled := s.engine.Tick(ctx, time.Now())

	for _, trade := range settled {
		if s.ledger != nil {
			if err := s.ledger.SaveTrade(ctx, trade); err != nil {
				// In-memory ledger stays authoritative; only the persisted copy is lost.
				s.logger.Error(ctx, err, "Failed to persist settled trade", map[string]interface{}{"tradeID": trade.ID})
			}
		}
		if s.broadcaster != nil {
			s.broadcaster.BroadcastSettlement(trade)
		}
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastTicker(s.feed.Snapshot())
	}
}

// logSummary reports session performance on shutdown.
func (s *SimulationService) logSummary(ctx context.Context) {
	summary := analytics.Analyze(s.engine.TradeHistory(0), s.cfg.InitialBalance)
	s.logger.Info(ctx, "Session summary", map[string]interface{}{
		"trades":    summary.TotalTrades,
		"wins":      summary.WinningTrades,
		"losses":    summary.LosingTrades,
		"netProfit": summary.NetProfit,
		"balance":   summary.FinalBalance,
	})
}
