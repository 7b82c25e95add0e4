package api

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"optionSim/internal/domain"
	"optionSim/internal/ports"
)

// The API package is the thin inbound adapter over the trade engine. It is
// organized as:
// - api.go: handler struct, dependencies and routing (this file)
// - handler.go: HTTP request handlers
// - middleware.go: middleware functions
// - validator.go: request validation
// - websocket.go: live price/settlement stream

// Constants
const (
	DefaultTimeout      = 10 * time.Second
	DefaultHistoryLimit = 10
	ServiceName         = "option-sim"
	ServiceVersion      = "1.0.0"
	RequestIDContextKey = "request_id"
	RequestIDHeaderKey  = "X-Request-ID"
)

// TradingEngine is the slice of the engine the API needs.
type TradingEngine interface {
	PlaceTrade(ctx context.Context, symbol string, direction domain.Direction, amount float64, duration time.Duration) (*domain.TradeReceipt, error)
	Balance() float64
	ActiveTrades(now time.Time) []domain.ActiveTradeView
	TradeHistory(limit int) []*domain.Trade
}

// Handler handles HTTP requests for the simulator.
type Handler struct {
	engine         TradingEngine
	hub            *Hub
	validator      *Validator
	logger         ports.Logger
	initialBalance float64
}

// NewHandler creates a new API handler. The hub may be nil when no live
// stream is wanted (tests, demo runs).
func NewHandler(engine TradingEngine, hub *Hub, logger ports.Logger, initialBalance float64) *Handler {
	return &Handler{
		engine:         engine,
		hub:            hub,
		validator:      NewValidator(),
		logger:         logger,
		initialBalance: initialBalance,
	}
}

// StartServer starts the HTTP server on the given port.
func (h *Handler) StartServer(port int) error {
	router := h.SetupRoutes()
	return router.Run(":" + strconv.Itoa(port))
}

// SetupRoutes configures all API routes.
func (h *Handler) SetupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	router.Use(requestIDMiddleware())
	router.Use(ginLoggerMiddleware())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	v1 := router.Group("/api/v1")
	{
		v1.POST("/trades", h.PlaceTrade)
		v1.GET("/balance", h.GetBalance)
		v1.GET("/trades/active", h.GetActiveTrades)
		v1.GET("/trades/history", h.GetTradeHistory)
		v1.GET("/stats", h.GetStats)
	}
	router.GET("/health", h.HealthCheck)
	if h.hub != nil {
		router.GET("/ws", h.handleWebSocket)
	}

	return router
}
