// Package users declares the server-side repository contract for reading
// and updating user accounts in persistent storage.
package users

import (
	"context"

	"magiclink/internal/server/models"
)

// Repository defines the lookups and the single mutation the auth flow needs.
// Implementations should return a not-found error when a user is absent.
type Repository interface {
	// GetByEmail looks up a user by their unique email address.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByID looks up a user by id.
	GetByID(ctx context.Context, id string) (*models.User, error)

	// GetByRefreshToken looks up the user whose currently stored refresh
	// token equals the given token exactly.
	GetByRefreshToken(ctx context.Context, token string) (*models.User, error)

	// UpdateRefreshToken overwrites the stored refresh token for userID.
	// This is the rotation step: the previous token stops being accepted
	// the moment the new one is written.
	UpdateRefreshToken(ctx context.Context, userID string, token string) error
}
