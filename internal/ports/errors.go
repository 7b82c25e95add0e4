package ports

import "errors"

// Standard application-level errors.
// The engine surfaces exactly two recoverable errors to callers; the rest wrap
// infrastructure failures from adapters.
var (
	// Engine Errors (public taxonomy)
	ErrInvalidParameter    = errors.New("invalid trade parameters")
	ErrInsufficientBalance = errors.New("insufficient balance for requested stake")

	// General Errors
	ErrNotFound           = errors.New("resource not found")
	ErrConfigurationError = errors.New("invalid or missing configuration")

	// Database Specific Errors
	ErrDBConnection = errors.New("database connection error")
	ErrQueryFailed  = errors.New("database query failed")
)
