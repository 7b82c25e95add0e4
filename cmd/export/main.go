package main

import (
	"context"
	"flag"
	"log"

	"optionSim/config"
	"optionSim/internal/adapters/logger"
	"optionSim/internal/adapters/sqlite"
	"optionSim/internal/utils"
)

// Dumps the persisted ledger to a CSV file.
func main() {
	outPath := flag.String("out", "trade_history.csv", "output CSV path")
	limit := flag.Int("limit", 0, "max trades to export (0 = all)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	appLogger := logger.NewStdLogger(cfg.LogLevel)

	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger})
	if err != nil {
		log.Fatalf("FATAL: Failed to open ledger repository: %v", err)
	}
	defer repo.Close()

	ctx := context.Background()
	trades, err := repo.FindRecent(ctx, *limit)
	if err != nil {
		log.Fatalf("FATAL: Failed to load settled trades: %v", err)
	}

	if err := utils.WriteTradesToCSV(trades, *outPath); err != nil {
		log.Fatalf("FATAL: Failed to write CSV: %v", err)
	}

	total, err := repo.TotalProfit(ctx)
	if err != nil {
		log.Fatalf("FATAL: Failed to compute total profit: %v", err)
	}
	appLogger.Info(ctx, "Ledger exported", map[string]interface{}{
		"path":        *outPath,
		"trades":      len(trades),
		"totalProfit": total,
	})
}
