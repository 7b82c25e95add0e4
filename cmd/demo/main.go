package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"optionSim/internal/adapters/logger"
	"optionSim/internal/analytics"
	"optionSim/internal/domain"
	"optionSim/internal/engine"
	"optionSim/internal/pricefeed"
)

// Scripted in-process session: place a few trades, drive the simulation with
// synthetic ticks and print what happens. Useful for eyeballing engine
// behavior without the HTTP server.
func main() {
	appLogger := logger.NewStdLogger(logger.LevelWarn)

	feed := pricefeed.New(pricefeed.Config{})
	eng, err := engine.New(engine.Config{
		InitialBalance: 10000.0,
		PayoutRate:     0.85,
		Feed:           feed,
		Logger:         appLogger,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize engine: %v", err)
	}

	ctx := context.Background()
	fmt.Printf("Starting balance: $%.2f\n\n", eng.Balance())

	trades := []struct {
		symbol    string
		direction domain.Direction
		amount    float64
		duration  time.Duration
	}{
		{"EUR/USD", domain.Call, 50.0, 3 * time.Second},
		{"GBP/USD", domain.Put, 25.0, 6 * time.Second},
		{"XBT/USD", domain.Call, 100.0, 5 * time.Second},
	}
	for _, tr := range trades {
		receipt, err := eng.PlaceTrade(ctx, tr.symbol, tr.direction, tr.amount, tr.duration)
		if err != nil {
			log.Fatalf("FATAL: Failed to place trade: %v", err)
		}
		fmt.Printf("Placed %s %s $%.2f for %s at entry %.6f (balance $%.2f)\n",
			tr.direction, tr.symbol, tr.amount, tr.duration, receipt.EntryPrice, receipt.Balance)
	}

	// Drive the simulation one tick per second until everything settles.
	fmt.Println("\nMonitoring trades...")
	for i := 0; eng.OpenTradeCount() > 0 && i < 15; i++ {
		time.Sleep(time.Second)
		now := time.Now()
		settled := eng.Tick(ctx, now)
		for _, t := range settled {
			fmt.Printf("  settled %s %s: %s (payout $%.2f, profit $%+.2f)\n",
				t.Direction, t.Symbol, t.Status, t.Payout, t.Profit())
		}
		for _, v := range eng.ActiveTrades(now) {
			state := "losing"
			if v.Winning {
				state = "winning"
			}
			fmt.Printf("  %s %s $%.2f: %s (%ds left, %.6f vs entry %.6f)\n",
				v.Direction, v.Symbol, v.Amount, state, v.RemainingSecs, v.CurrentPrice, v.EntryPrice)
		}
	}

	fmt.Printf("\nFinal balance: $%.2f\n", eng.Balance())

	history := eng.TradeHistory(0)
	fmt.Printf("\nTrade history (%d trades):\n", len(history))
	for _, t := range history {
		fmt.Printf("  %s %s $%.2f -> %s (P&L $%+.2f)\n",
			t.Symbol, t.Direction, t.Amount, t.Status, t.Profit())
	}

	summary := analytics.Analyze(history, 10000.0)
	fmt.Printf("\nWin rate %.0f%%, net profit $%+.2f\n", summary.WinRate*100, summary.NetProfit)
}
