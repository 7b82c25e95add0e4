package api

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"optionSim/internal/domain"
)

const (
	maxInputLength     = 100
	maxDurationSeconds = 86400 // one day
	maxHistoryLimit    = 1000
)

// Validator handles request validation separate from HTTP concerns.
// Parameter-range checks mirror the engine's own validation so obviously bad
// requests are rejected before they reach it.
type Validator struct {
	symbolRegex *regexp.Regexp
}

// NewValidator creates a request validator.
func NewValidator() *Validator {
	return &Validator{
		// Symbols look like "EUR/USD" or "XBT/USD".
		symbolRegex: regexp.MustCompile(`^[A-Z]{2,5}/[A-Z]{2,5}$`),
	}
}

// ValidatePlaceTradeRequest validates a trade placement request and returns
// the sanitized symbol and parsed direction.
func (v *Validator) ValidatePlaceTradeRequest(req PlaceTradeRequest) (string, domain.Direction, error) {
	cleanSymbol := strings.ToUpper(v.sanitizeInput(req.Symbol))
	if cleanSymbol == "" {
		return "", "", errors.New("symbol is required")
	}
	if !v.symbolRegex.MatchString(cleanSymbol) {
		return "", "", errors.New("symbol must look like BASE/QUOTE, e.g. EUR/USD")
	}

	direction := domain.Direction(strings.ToUpper(v.sanitizeInput(req.Direction)))
	if !direction.IsValid() {
		return "", "", fmt.Errorf("direction must be %s or %s", domain.Call, domain.Put)
	}

	if req.Amount <= 0 {
		return "", "", errors.New("amount must be positive")
	}
	if req.DurationSeconds <= 0 || req.DurationSeconds > maxDurationSeconds {
		return "", "", fmt.Errorf("duration_seconds must be between 1 and %d", maxDurationSeconds)
	}

	return cleanSymbol, direction, nil
}

// ValidateLimit validates a history limit query parameter, returning the
// default when absent.
func (v *Validator) ValidateLimit(limitStr string, defaultLimit int) (int, error) {
	if limitStr == "" {
		return defaultLimit, nil
	}

	limit, err := strconv.Atoi(v.sanitizeInput(limitStr))
	if err != nil {
		return 0, errors.New("limit must be a valid number")
	}
	if limit < 0 || limit > maxHistoryLimit {
		return 0, fmt.Errorf("limit must be between 0 and %d (0 means no limit)", maxHistoryLimit)
	}
	return limit, nil
}

// sanitizeInput trims whitespace, strips control characters and bounds length.
func (v *Validator) sanitizeInput(input string) string {
	input = strings.TrimSpace(input)
	input = strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, input)
	if len(input) > maxInputLength {
		input = input[:maxInputLength]
	}
	return input
}
