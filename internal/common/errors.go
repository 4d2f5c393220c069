// Package common defines shared constants and sentinel errors used across
// the magiclink service layers. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Validation errors (missing or malformed input).
	ErrorValidation = errors.New("validation error")

	// ErrorConflict signals a duplicate active login attempt for a user.
	ErrorConflict = errors.New("already exists")

	// Auth errors (invalid, expired, or already redeemed magic token).
	ErrInvalidToken = errors.New("invalid token")
)
