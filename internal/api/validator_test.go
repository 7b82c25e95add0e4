package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optionSim/internal/domain"
)

func TestValidatePlaceTradeRequest(t *testing.T) {
	v := NewValidator()

	t.Run("normalizes casing and whitespace", func(t *testing.T) {
		symbol, direction, err := v.ValidatePlaceTradeRequest(PlaceTradeRequest{
			Symbol:          "  eur/usd ",
			Direction:       "put",
			Amount:          50,
			DurationSeconds: 60,
		})
		require.NoError(t, err)
		assert.Equal(t, "EUR/USD", symbol)
		assert.Equal(t, domain.Put, direction)
	})

	tests := []struct {
		name string
		req  PlaceTradeRequest
	}{
		{"empty symbol", PlaceTradeRequest{Direction: "CALL", Amount: 50, DurationSeconds: 60}},
		{"symbol without separator", PlaceTradeRequest{Symbol: "EURUSD", Direction: "CALL", Amount: 50, DurationSeconds: 60}},
		{"symbol with digits", PlaceTradeRequest{Symbol: "EU1/USD", Direction: "CALL", Amount: 50, DurationSeconds: 60}},
		{"unknown direction", PlaceTradeRequest{Symbol: "EUR/USD", Direction: "HOLD", Amount: 50, DurationSeconds: 60}},
		{"zero amount", PlaceTradeRequest{Symbol: "EUR/USD", Direction: "CALL", DurationSeconds: 60}},
		{"negative amount", PlaceTradeRequest{Symbol: "EUR/USD", Direction: "CALL", Amount: -1, DurationSeconds: 60}},
		{"zero duration", PlaceTradeRequest{Symbol: "EUR/USD", Direction: "CALL", Amount: 50}},
		{"duration over a day", PlaceTradeRequest{Symbol: "EUR/USD", Direction: "CALL", Amount: 50, DurationSeconds: maxDurationSeconds + 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := v.ValidatePlaceTradeRequest(tt.req)
			assert.Error(t, err)
		})
	}
}

func TestValidateLimit(t *testing.T) {
	v := NewValidator()

	limit, err := v.ValidateLimit("", 10)
	require.NoError(t, err)
	assert.Equal(t, 10, limit)

	limit, err = v.ValidateLimit("25", 10)
	require.NoError(t, err)
	assert.Equal(t, 25, limit)

	// Zero is explicit "no limit".
	limit, err = v.ValidateLimit("0", 10)
	require.NoError(t, err)
	assert.Equal(t, 0, limit)

	_, err = v.ValidateLimit("abc", 10)
	assert.Error(t, err)

	_, err = v.ValidateLimit("-1", 10)
	assert.Error(t, err)

	_, err = v.ValidateLimit("1001", 10)
	assert.Error(t, err)
}

func TestSanitizeInput(t *testing.T) {
	v := NewValidator()

	assert.Equal(t, "EUR/USD", v.sanitizeInput("EUR/USD\x00\x1f"))
	assert.Equal(t, "EUR/USD", v.sanitizeInput("  EUR/USD  "))

	long := make([]byte, 300)
	for i := range long {
		long[i] = 'A'
	}
	assert.Len(t, v.sanitizeInput(string(long)), maxInputLength)
}
