package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"optionSim/internal/domain"
	"optionSim/internal/ports"
)

// Config holds configuration for the trade engine.
type Config struct {
	InitialBalance float64
	// PayoutRate is the fraction of the stake paid as profit on a win;
	// a winning trade is credited stake * (1 + PayoutRate).
	PayoutRate float64
	Feed       ports.PriceFeed
	Logger     ports.Logger
	// Now supplies the current time for placement. Defaults to time.Now.
	// Tests inject synthetic clocks instead of sleeping.
	Now func() time.Time
}

// Engine owns the account balance, the set of open trades and the settled
// ledger. It runs no goroutines of its own; the host drives time by calling
// Tick. All mutating operations are serialized behind one mutex so that
// placement and a settlement pass can never interleave on the balance.
type Engine struct {
	feed       ports.PriceFeed
	logger     ports.Logger
	payoutRate float64
	now        func() time.Time

	mu      sync.Mutex // Protects balance, open and ledger
	balance float64
	open    []*domain.Trade // placement order; settlement scans in this order
	ledger  []*domain.Trade // append-only, settlement order
}

// New creates a trade engine instance.
func New(cfg Config) (*Engine, error) {
	if cfg.Feed == nil || cfg.Logger == nil {
		return nil, fmt.Errorf("missing required dependencies for Engine")
	}
	if cfg.InitialBalance < 0 {
		return nil, fmt.Errorf("configuration InitialBalance cannot be negative")
	}
	if cfg.PayoutRate <= 0 || cfg.PayoutRate >= 1 {
		return nil, fmt.Errorf("configuration PayoutRate must be between 0 and 1")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Engine{
		feed:       cfg.Feed,
		logger:     cfg.Logger,
		payoutRate: cfg.PayoutRate,
		now:        now,
		balance:    cfg.InitialBalance,
		open:       make([]*domain.Trade, 0),
		ledger:     make([]*domain.Trade, 0),
	}, nil
}

// PlaceTrade validates the request, escrows the stake and records an open
// trade. The balance debit and the open-set insert are atomic with respect to
// every other engine operation; a failed placement changes nothing.
func (e *Engine) PlaceTrade(ctx context.Context, symbol string, direction domain.Direction, amount float64, duration time.Duration) (*domain.TradeReceipt, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("amount must be positive, got %v: %w", amount, ports.ErrInvalidParameter)
	}
	if duration <= 0 {
		return nil, fmt.Errorf("duration must be positive, got %v: %w", duration, ports.ErrInvalidParameter)
	}
	if !direction.IsValid() {
		return nil, fmt.Errorf("direction must be CALL or PUT, got %q: %w", direction, ports.ErrInvalidParameter)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if amount > e.balance {
		return nil, fmt.Errorf("stake %.2f exceeds balance %.2f: %w", amount, e.balance, ports.ErrInsufficientBalance)
	}

	now := e.now()
	trade := &domain.Trade{
		ID:         uuid.New().String(),
		Symbol:     symbol,
		Direction:  direction,
		Amount:     amount,
		EntryPrice: e.feed.GetPrice(symbol),
		OpenedAt:   now,
		ExpiresAt:  now.Add(duration),
		Status:     domain.StatusOpen,
	}

	e.balance -= amount
	e.open = append(e.open, trade)

	e.logger.Info(ctx, "Trade placed", map[string]interface{}{
		"tradeID":    trade.ID,
		"symbol":     trade.Symbol,
		"direction":  trade.Direction,
		"amount":     trade.Amount,
		"entryPrice": trade.EntryPrice,
		"expiresAt":  trade.ExpiresAt,
		"balance":    e.balance,
	})

	return &domain.TradeReceipt{
		TradeID:    trade.ID,
		Symbol:     trade.Symbol,
		Direction:  trade.Direction,
		Amount:     trade.Amount,
		EntryPrice: trade.EntryPrice,
		ExpiresAt:  trade.ExpiresAt,
		Balance:    e.balance,
	}, nil
}

// Tick advances the simulation by one step: the price feed moves first, then
// every trade due at now settles against the moved prices. It returns the
// trades settled by this pass, in settlement order.
func (e *Engine) Tick(ctx context.Context, now time.Time) []*domain.Trade {
	e.feed.Tick()
	return e.SettleDueTrades(ctx, now)
}

// SettleDueTrades settles every open trade whose expiry has passed and returns
// them in settlement order. A second pass with the same now is a no-op.
// Context cancellation is checked between trades, never mid-trade, so a
// cancelled pass leaves no half-settled state; remaining due trades settle on
// the next pass.
func (e *Engine) SettleDueTrades(ctx context.Context, now time.Time) []*domain.Trade {
	e.mu.Lock()
	defer e.mu.Unlock()

	var settled []*domain.Trade
	remaining := e.open[:0]
	cancelled := false

	for i, trade := range e.open {
		if cancelled {
			remaining = append(remaining, e.open[i:]...)
			break
		}
		if trade.ExpiresAt.After(now) || !trade.IsOpen() {
			remaining = append(remaining, trade)
			continue
		}

		e.settleLocked(ctx, trade, now)
		settled = append(settled, trade)

		if ctx.Err() != nil {
			cancelled = true
		}
	}
	e.open = remaining
	return settled
}

// settleLocked applies the settlement rule to a single due trade and moves it
// to the ledger. Caller holds the mutex and has verified the trade is open.
func (e *Engine) settleLocked(ctx context.Context, trade *domain.Trade, now time.Time) {
	if trade.Status.IsTerminal() {
		// Double settlement is a programming error; keep the ledger
		// intact and move on.
		e.logger.Warn(ctx, "Skipping already settled trade", map[string]interface{}{"tradeID": trade.ID, "status": trade.Status})
		return
	}

	settlePrice := e.feed.GetPrice(trade.Symbol)
	trade.SettlePrice = settlePrice
	trade.SettledAt = now

	if trade.WinsAt(settlePrice) {
		trade.Status = domain.StatusWon
		trade.Payout = trade.Amount * (1 + e.payoutRate)
		e.balance += trade.Payout
	} else {
		trade.Status = domain.StatusLost
		trade.Payout = 0
	}
	e.ledger = append(e.ledger, trade)

	e.logger.Info(ctx, "Trade settled", map[string]interface{}{
		"tradeID":     trade.ID,
		"symbol":      trade.Symbol,
		"direction":   trade.Direction,
		"status":      trade.Status,
		"entryPrice":  trade.EntryPrice,
		"settlePrice": trade.SettlePrice,
		"payout":      trade.Payout,
		"balance":     e.balance,
	})
}

// Balance returns the current account balance. Never fails.
func (e *Engine) Balance() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.balance
}

// ActiveTrades returns a view of every open trade with its current price,
// remaining time and a derived winning flag. The flag uses the settlement
// comparison rule but carries no weight: settlement always re-evaluates at
// expiry.
func (e *Engine) ActiveTrades(now time.Time) []domain.ActiveTradeView {
	e.mu.Lock()
	defer e.mu.Unlock()

	views := make([]domain.ActiveTradeView, 0, len(e.open))
	for _, trade := range e.open {
		currentPrice := e.feed.GetPrice(trade.Symbol)
		remaining := trade.ExpiresAt.Sub(now)
		if remaining < 0 {
			remaining = 0
		}
		views = append(views, domain.ActiveTradeView{
			ID:            trade.ID,
			Symbol:        trade.Symbol,
			Direction:     trade.Direction,
			Amount:        trade.Amount,
			EntryPrice:    trade.EntryPrice,
			CurrentPrice:  currentPrice,
			RemainingSecs: int64(remaining / time.Second),
			Winning:       trade.WinsAt(currentPrice),
		})
	}
	return views
}

// TradeHistory returns settled trades, most recent first, up to limit.
// A non-positive limit returns the whole ledger. The returned slice holds
// copies so history entries can never be mutated by callers.
func (e *Engine) TradeHistory(limit int) []*domain.Trade {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := len(e.ledger)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]*domain.Trade, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		t := *e.ledger[i]
		out = append(out, &t)
	}
	return out
}

// OpenTradeCount returns the number of trades awaiting settlement.
func (e *Engine) OpenTradeCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.open)
}
