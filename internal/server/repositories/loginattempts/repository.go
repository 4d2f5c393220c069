// Package loginattempts declares the server-side repository contract for
// single-use magic-token records.
package loginattempts

import (
	"context"

	"magiclink/internal/server/models"
)

// Repository defines operations for creating and redeeming login attempts.
// Records are never deleted; a redeemed attempt stays around with
// active=false as an audit trail.
type Repository interface {
	// Create inserts a new login attempt with active=true.
	Create(ctx context.Context, attempt *models.LoginAttempt) error

	// GetActiveByEmail returns the active login attempt for the user with
	// the given email, or a not-found error if none is outstanding.
	GetActiveByEmail(ctx context.Context, email string) (*models.LoginAttempt, error)

	// Redeem atomically flips active=false on the attempt matching
	// (id, token, active=true) and returns the owning user id. The flip and
	// the match are a single conditional update, so at most one concurrent
	// caller can ever redeem a given attempt. A not-found error covers
	// wrong token, wrong id, already-redeemed, and never-issued alike.
	Redeem(ctx context.Context, id string, token string) (string, error)
}
