package main

import (
	"context"
	"log" // Use standard log only for initial fatal errors before logger is set up

	"optionSim/config"
	"optionSim/internal/adapters/logger"
	"optionSim/internal/adapters/sqlite"
	"optionSim/internal/api"
	"optionSim/internal/app"
	"optionSim/internal/engine"
	"optionSim/internal/pricefeed"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	// 2. Initialize Logger
	appLogger := logger.NewStdLogger(cfg.LogLevel)
	appLogger.Info(context.Background(), "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String()})

	// 3. Initialize Ledger Repository (Database Adapter)
	repo, err := sqlite.NewRepository(sqlite.Config{
		DBPath: cfg.DBPath,
		Logger: appLogger,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize ledger repository")
		log.Fatalf("FATAL: Failed to initialize ledger repository: %v", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			appLogger.Error(context.Background(), err, "Error closing ledger repository")
		}
	}()

	// 4. Initialize Price Feed
	feed := pricefeed.New(pricefeed.Config{MaxDrift: cfg.PriceDrift})
	appLogger.Info(context.Background(), "Price feed initialized", map[string]interface{}{"drift": cfg.PriceDrift})

	// 5. Initialize Trade Engine
	eng, err := engine.New(engine.Config{
		InitialBalance: cfg.InitialBalance,
		PayoutRate:     cfg.PayoutRate,
		Feed:           feed,
		Logger:         appLogger,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize trade engine")
		log.Fatalf("FATAL: Failed to initialize trade engine: %v", err)
	}
	appLogger.Info(context.Background(), "Trade engine initialized", map[string]interface{}{"balance": cfg.InitialBalance, "payoutRate": cfg.PayoutRate})

	// 6. Initialize Simulation Service and API
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := api.NewHub(appLogger)
	go hub.Run(ctx)

	service, err := app.NewSimulationService(cfg, appLogger, eng, feed, repo, hub)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize simulation service")
		log.Fatalf("FATAL: Failed to initialize simulation service: %v", err)
	}

	handler := api.NewHandler(eng, hub, appLogger, cfg.InitialBalance)
	go func() {
		appLogger.Info(ctx, "HTTP server starting", map[string]interface{}{"port": cfg.ServerPort})
		if err := handler.StartServer(cfg.ServerPort); err != nil {
			appLogger.Error(ctx, err, "HTTP server exited")
			cancel()
		}
	}()

	// 7. Run the simulation loop (blocks until shutdown)
	if err := service.Run(ctx); err != nil {
		appLogger.Error(context.Background(), err, "Simulation service exited with error")
		log.Fatalf("FATAL: Simulation service exited with error: %v", err)
	}

	appLogger.Info(context.Background(), "Application finished gracefully.")
}
