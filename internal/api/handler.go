package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"optionSim/internal/analytics"
	"optionSim/internal/ports"
)

// PlaceTradeRequest is the JSON body of POST /api/v1/trades.
type PlaceTradeRequest struct {
	Symbol          string  `json:"symbol"`
	Direction       string  `json:"direction"`
	Amount          float64 `json:"amount"`
	DurationSeconds int     `json:"duration_seconds"`
}

// PlaceTrade handles POST /api/v1/trades requests.
func (h *Handler) PlaceTrade(c *gin.Context) {
	var req PlaceTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleValidationError(c, err)
		return
	}

	cleanSymbol, direction, err := h.validator.ValidatePlaceTradeRequest(req)
	if err != nil {
		h.handleValidationError(c, err)
		return
	}

	receipt, err := h.engine.PlaceTrade(c.Request.Context(), cleanSymbol, direction,
		req.Amount, time.Duration(req.DurationSeconds)*time.Second)
	if err != nil {
		switch {
		case errors.Is(err, ports.ErrInvalidParameter):
			h.handleError(c, err, http.StatusBadRequest, err.Error())
		case errors.Is(err, ports.ErrInsufficientBalance):
			h.handleError(c, err, http.StatusUnprocessableEntity, err.Error())
		default:
			h.handleError(c, err, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	c.JSON(http.StatusCreated, receipt)
}

// GetBalance handles GET /api/v1/balance requests.
func (h *Handler) GetBalance(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"balance": h.engine.Balance()})
}

// GetActiveTrades handles GET /api/v1/trades/active requests.
func (h *Handler) GetActiveTrades(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.ActiveTrades(time.Now()))
}

// GetTradeHistory handles GET /api/v1/trades/history requests.
func (h *Handler) GetTradeHistory(c *gin.Context) {
	limit, err := h.validator.ValidateLimit(c.Query("limit"), DefaultHistoryLimit)
	if err != nil {
		h.handleValidationError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.engine.TradeHistory(limit))
}

// GetStats handles GET /api/v1/stats requests.
func (h *Handler) GetStats(c *gin.Context) {
	summary := analytics.Analyze(h.engine.TradeHistory(0), h.initialBalance)
	c.JSON(http.StatusOK, summary)
}

// HealthCheck handles GET /health requests.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"service":   ServiceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   ServiceVersion,
	})
}

// handleError logs the error and sends the HTTP response.
func (h *Handler) handleError(c *gin.Context, err error, statusCode int, userMessage string) {
	requestID := "unknown"
	if id, exists := c.Get(RequestIDContextKey); exists {
		if s, ok := id.(string); ok {
			requestID = s
		}
	}

	h.logger.Error(c.Request.Context(), err, "API error", map[string]interface{}{
		"request_id":  requestID,
		"method":      c.Request.Method,
		"path":        c.Request.URL.Path,
		"status_code": statusCode,
	})

	c.JSON(statusCode, gin.H{
		"error":      userMessage,
		"request_id": requestID,
	})
}

// handleValidationError handles validation errors specifically.
func (h *Handler) handleValidationError(c *gin.Context, err error) {
	h.handleError(c, err, http.StatusBadRequest, err.Error())
}
