package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optionSim/internal/domain"
	"optionSim/internal/ports"
)

// Mock implementations

type mockLogger struct {
	debugMsgs []string
	infoMsgs  []string
	warnMsgs  []string
	errorMsgs []string
}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.debugMsgs = append(m.debugMsgs, msg)
}

func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.infoMsgs = append(m.infoMsgs, msg)
}

func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.warnMsgs = append(m.warnMsgs, msg)
}

func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
	m.errorMsgs = append(m.errorMsgs, msg)
}

// stubFeed is a fully controllable price feed: tests set prices explicitly and
// ticks do nothing, so settlement outcomes are deterministic.
type stubFeed struct {
	mu     sync.Mutex
	prices map[string]float64
	ticks  int
}

func newStubFeed() *stubFeed {
	return &stubFeed{prices: make(map[string]float64)}
}

func (f *stubFeed) set(symbol string, price float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prices[symbol] = price
}

func (f *stubFeed) GetPrice(symbol string) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	price, ok := f.prices[symbol]
	if !ok {
		price = 1.0
		f.prices[symbol] = price
	}
	return price
}

func (f *stubFeed) Tick() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ticks++
}

func (f *stubFeed) Snapshot() map[string]float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]float64, len(f.prices))
	for k, v := range f.prices {
		out[k] = v
	}
	return out
}

func newTestEngine(t *testing.T, balance float64, feed *stubFeed, now time.Time) *Engine {
	t.Helper()
	eng, err := New(Config{
		InitialBalance: balance,
		PayoutRate:     0.85,
		Feed:           feed,
		Logger:         &mockLogger{},
		Now:            func() time.Time { return now },
	})
	require.NoError(t, err)
	return eng
}

func TestNew(t *testing.T) {
	feed := newStubFeed()
	log := &mockLogger{}

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "valid configuration",
			cfg:     Config{InitialBalance: 100, PayoutRate: 0.85, Feed: feed, Logger: log},
			wantErr: false,
		},
		{
			name:    "missing feed",
			cfg:     Config{InitialBalance: 100, PayoutRate: 0.85, Logger: log},
			wantErr: true,
		},
		{
			name:    "missing logger",
			cfg:     Config{InitialBalance: 100, PayoutRate: 0.85, Feed: feed},
			wantErr: true,
		},
		{
			name:    "negative balance",
			cfg:     Config{InitialBalance: -1, PayoutRate: 0.85, Feed: feed, Logger: log},
			wantErr: true,
		},
		{
			name:    "payout rate out of range",
			cfg:     Config{InitialBalance: 100, PayoutRate: 1.5, Feed: feed, Logger: log},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPlaceTradeCallWin(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	feed := newStubFeed()
	feed.set("EUR/USD", 1.1000)
	eng := newTestEngine(t, 100.00, feed, start)

	receipt, err := eng.PlaceTrade(ctx, "EUR/USD", domain.Call, 10, 60*time.Second)
	require.NoError(t, err)
	assert.NotEmpty(t, receipt.TradeID)
	assert.Equal(t, 1.1000, receipt.EntryPrice)
	assert.InDelta(t, 90.00, receipt.Balance, 1e-9)
	assert.Equal(t, start.Add(60*time.Second), receipt.ExpiresAt)
	assert.Equal(t, 1, eng.OpenTradeCount())

	// Price rises above entry before expiry.
	feed.set("EUR/USD", 1.1050)
	settled := eng.SettleDueTrades(ctx, start.Add(61*time.Second))
	require.Len(t, settled, 1)

	trade := settled[0]
	assert.Equal(t, domain.StatusWon, trade.Status)
	assert.Equal(t, 1.1050, trade.SettlePrice)
	assert.InDelta(t, 18.50, trade.Payout, 1e-9)
	assert.InDelta(t, 8.50, trade.Profit(), 1e-9)
	assert.InDelta(t, 108.50, eng.Balance(), 1e-9)

	history := eng.TradeHistory(0)
	require.Len(t, history, 1)
	assert.Equal(t, trade.ID, history[0].ID)
}

func TestPlaceTradeCallLoss(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	feed := newStubFeed()
	feed.set("EUR/USD", 1.1000)
	eng := newTestEngine(t, 100.00, feed, start)

	_, err := eng.PlaceTrade(ctx, "EUR/USD", domain.Call, 10, 60*time.Second)
	require.NoError(t, err)

	// Price falls below entry.
	feed.set("EUR/USD", 1.0950)
	settled := eng.SettleDueTrades(ctx, start.Add(61*time.Second))
	require.Len(t, settled, 1)

	trade := settled[0]
	assert.Equal(t, domain.StatusLost, trade.Status)
	assert.Zero(t, trade.Payout)
	assert.InDelta(t, -10.00, trade.Profit(), 1e-9)
	assert.InDelta(t, 90.00, eng.Balance(), 1e-9)
}

func TestPlaceTradeInsufficientBalance(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	feed := newStubFeed()
	eng := newTestEngine(t, 5.00, feed, now)

	_, err := eng.PlaceTrade(ctx, "EUR/USD", domain.Call, 10, 60*time.Second)
	require.ErrorIs(t, err, ports.ErrInsufficientBalance)
	assert.InDelta(t, 5.00, eng.Balance(), 1e-9)
	assert.Equal(t, 0, eng.OpenTradeCount())
}

func TestPlaceTradeInvalidParameters(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	feed := newStubFeed()
	eng := newTestEngine(t, 100.00, feed, now)

	tests := []struct {
		name      string
		direction domain.Direction
		amount    float64
		duration  time.Duration
	}{
		{"negative amount", domain.Call, -1, 60 * time.Second},
		{"zero amount", domain.Call, 0, 60 * time.Second},
		{"zero duration", domain.Call, 10, 0},
		{"negative duration", domain.Put, 10, -time.Second},
		{"unknown direction", domain.Direction("STRADDLE"), 10, 60 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := eng.PlaceTrade(ctx, "EUR/USD", tt.direction, tt.amount, tt.duration)
			require.ErrorIs(t, err, ports.ErrInvalidParameter)
			assert.InDelta(t, 100.00, eng.Balance(), 1e-9)
			assert.Equal(t, 0, eng.OpenTradeCount())
		})
	}
}

func TestSettlementEqualityIsLoss(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	feed := newStubFeed()
	feed.set("EUR/USD", 1.1000)
	eng := newTestEngine(t, 100.00, feed, start)

	_, err := eng.PlaceTrade(ctx, "EUR/USD", domain.Call, 10, 60*time.Second)
	require.NoError(t, err)
	_, err = eng.PlaceTrade(ctx, "EUR/USD", domain.Put, 10, 60*time.Second)
	require.NoError(t, err)

	// Price unchanged at expiry: both directions lose.
	settled := eng.SettleDueTrades(ctx, start.Add(61*time.Second))
	require.Len(t, settled, 2)
	for _, trade := range settled {
		assert.Equal(t, domain.StatusLost, trade.Status)
	}
	assert.InDelta(t, 80.00, eng.Balance(), 1e-9)
}

func TestPutWinsWhenPriceFalls(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	feed := newStubFeed()
	feed.set("USD/JPY", 149.50)
	eng := newTestEngine(t, 100.00, feed, start)

	_, err := eng.PlaceTrade(ctx, "USD/JPY", domain.Put, 20, 30*time.Second)
	require.NoError(t, err)

	feed.set("USD/JPY", 149.10)
	settled := eng.SettleDueTrades(ctx, start.Add(31*time.Second))
	require.Len(t, settled, 1)
	assert.Equal(t, domain.StatusWon, settled[0].Status)
	assert.InDelta(t, 20*1.85, settled[0].Payout, 1e-9)
}

func TestSettlementIsIdempotent(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	feed := newStubFeed()
	feed.set("EUR/USD", 1.1000)
	eng := newTestEngine(t, 100.00, feed, start)

	_, err := eng.PlaceTrade(ctx, "EUR/USD", domain.Call, 10, 60*time.Second)
	require.NoError(t, err)

	feed.set("EUR/USD", 1.2000)
	due := start.Add(61 * time.Second)

	first := eng.SettleDueTrades(ctx, due)
	require.Len(t, first, 1)
	balanceAfter := eng.Balance()

	second := eng.SettleDueTrades(ctx, due)
	assert.Empty(t, second)
	assert.Equal(t, balanceAfter, eng.Balance())
	assert.Len(t, eng.TradeHistory(0), 1)
}

func TestSettlementSkipsUnexpiredTrades(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	feed := newStubFeed()
	feed.set("EUR/USD", 1.1000)
	eng := newTestEngine(t, 100.00, feed, start)

	_, err := eng.PlaceTrade(ctx, "EUR/USD", domain.Call, 10, 30*time.Second)
	require.NoError(t, err)
	_, err = eng.PlaceTrade(ctx, "EUR/USD", domain.Call, 10, 120*time.Second)
	require.NoError(t, err)

	settled := eng.SettleDueTrades(ctx, start.Add(31*time.Second))
	assert.Len(t, settled, 1)
	assert.Equal(t, 1, eng.OpenTradeCount())
}

func TestSettlementHonorsCancellationBetweenTrades(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	feed := newStubFeed()
	feed.set("EUR/USD", 1.1000)
	eng := newTestEngine(t, 100.00, feed, start)

	for i := 0; i < 3; i++ {
		_, err := eng.PlaceTrade(context.Background(), "EUR/USD", domain.Call, 10, 30*time.Second)
		require.NoError(t, err)
	}

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	// A cancelled context settles at most one trade per pass; nothing is
	// left half-settled and the rest remain due.
	settled := eng.SettleDueTrades(cancelled, start.Add(31*time.Second))
	assert.Len(t, settled, 1)
	assert.Equal(t, 2, eng.OpenTradeCount())
	for _, trade := range settled {
		assert.True(t, trade.Status.IsTerminal())
	}

	// The next pass with a live context finishes the job.
	rest := eng.SettleDueTrades(context.Background(), start.Add(31*time.Second))
	assert.Len(t, rest, 2)
	assert.Equal(t, 0, eng.OpenTradeCount())
}

func TestBalanceConservation(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	feed := newStubFeed()
	feed.set("EUR/USD", 1.1000)
	feed.set("GBP/USD", 1.2500)
	eng := newTestEngine(t, 1000.00, feed, start)

	stakes := []struct {
		symbol    string
		direction domain.Direction
		amount    float64
	}{
		{"EUR/USD", domain.Call, 50},
		{"EUR/USD", domain.Put, 30},
		{"GBP/USD", domain.Call, 20},
		{"GBP/USD", domain.Put, 40},
	}
	var totalStaked float64
	for _, s := range stakes {
		_, err := eng.PlaceTrade(ctx, s.symbol, s.direction, s.amount, 60*time.Second)
		require.NoError(t, err)
		totalStaked += s.amount
	}
	assert.InDelta(t, 1000.00-totalStaked, eng.Balance(), 1e-9)

	// EUR/USD rises (CALL wins, PUT loses), GBP/USD falls (PUT wins, CALL loses).
	feed.set("EUR/USD", 1.1100)
	feed.set("GBP/USD", 1.2400)
	settled := eng.SettleDueTrades(ctx, start.Add(61*time.Second))
	require.Len(t, settled, 4)

	var totalPayout float64
	for _, trade := range settled {
		totalPayout += trade.Payout
	}
	assert.InDelta(t, 1000.00-totalStaked+totalPayout, eng.Balance(), 1e-9)
	assert.InDelta(t, (50+40)*1.85, totalPayout, 1e-9)
	assert.GreaterOrEqual(t, eng.Balance(), 0.0)
}

func TestTradeHistoryMostRecentFirst(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	feed := newStubFeed()
	feed.set("EUR/USD", 1.1000)
	eng := newTestEngine(t, 100.00, feed, start)

	_, err := eng.PlaceTrade(ctx, "EUR/USD", domain.Call, 10, 10*time.Second)
	require.NoError(t, err)
	_, err = eng.PlaceTrade(ctx, "EUR/USD", domain.Call, 10, 20*time.Second)
	require.NoError(t, err)
	_, err = eng.PlaceTrade(ctx, "EUR/USD", domain.Call, 10, 30*time.Second)
	require.NoError(t, err)

	// Settle in two passes so settlement times differ.
	eng.SettleDueTrades(ctx, start.Add(11*time.Second))
	eng.SettleDueTrades(ctx, start.Add(31*time.Second))

	history := eng.TradeHistory(0)
	require.Len(t, history, 3)
	for i := 1; i < len(history); i++ {
		assert.False(t, history[i-1].SettledAt.Before(history[i].SettledAt))
	}

	// History entries are copies: mutating one must not touch the ledger.
	history[0].Payout = 99999
	again := eng.TradeHistory(1)
	require.Len(t, again, 1)
	assert.NotEqual(t, 99999.0, again[0].Payout)

	limited := eng.TradeHistory(2)
	assert.Len(t, limited, 2)
}

func TestActiveTradesView(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	feed := newStubFeed()
	feed.set("EUR/USD", 1.1000)
	eng := newTestEngine(t, 100.00, feed, start)

	_, err := eng.PlaceTrade(ctx, "EUR/USD", domain.Call, 10, 60*time.Second)
	require.NoError(t, err)

	feed.set("EUR/USD", 1.1020)
	views := eng.ActiveTrades(start.Add(15 * time.Second))
	require.Len(t, views, 1)

	view := views[0]
	assert.Equal(t, "EUR/USD", view.Symbol)
	assert.Equal(t, domain.Call, view.Direction)
	assert.Equal(t, 1.1000, view.EntryPrice)
	assert.Equal(t, 1.1020, view.CurrentPrice)
	assert.Equal(t, int64(45), view.RemainingSecs)
	assert.True(t, view.Winning)

	// Remaining time clamps at zero past expiry.
	late := eng.ActiveTrades(start.Add(90 * time.Second))
	require.Len(t, late, 1)
	assert.Equal(t, int64(0), late[0].RemainingSecs)

	// Below entry the CALL is losing; the flag is informational only.
	feed.set("EUR/USD", 1.0990)
	views = eng.ActiveTrades(start.Add(15 * time.Second))
	assert.False(t, views[0].Winning)
}

func TestPlacementVisibleImmediately(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	feed := newStubFeed()
	feed.set("EUR/USD", 1.1000)
	eng := newTestEngine(t, 100.00, feed, now)

	receipt, err := eng.PlaceTrade(ctx, "EUR/USD", domain.Call, 10, 60*time.Second)
	require.NoError(t, err)

	views := eng.ActiveTrades(now)
	require.Len(t, views, 1)
	assert.Equal(t, receipt.TradeID, views[0].ID)
}

func TestConcurrentPlacementNeverOverspends(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	feed := newStubFeed()
	feed.set("EUR/USD", 1.1000)
	eng := newTestEngine(t, 100.00, feed, now)

	// 20 goroutines race to stake 10 each from a balance of 100; exactly 10
	// placements can succeed.
	var wg sync.WaitGroup
	results := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := eng.PlaceTrade(ctx, "EUR/USD", domain.Call, 10, 60*time.Second)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var placed, rejected int
	for err := range results {
		if err == nil {
			placed++
		} else {
			require.ErrorIs(t, err, ports.ErrInsufficientBalance)
			rejected++
		}
	}
	assert.Equal(t, 10, placed)
	assert.Equal(t, 10, rejected)
	assert.InDelta(t, 0.0, eng.Balance(), 1e-9)
	assert.Equal(t, 10, eng.OpenTradeCount())
}

func TestTickMovesPricesBeforeSettling(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	feed := newStubFeed()
	feed.set("EUR/USD", 1.1000)
	eng := newTestEngine(t, 100.00, feed, start)

	_, err := eng.PlaceTrade(ctx, "EUR/USD", domain.Call, 10, 30*time.Second)
	require.NoError(t, err)

	eng.Tick(ctx, start.Add(10*time.Second))
	eng.Tick(ctx, start.Add(31*time.Second))
	assert.Equal(t, 2, feed.ticks)
	assert.Equal(t, 0, eng.OpenTradeCount())
}
