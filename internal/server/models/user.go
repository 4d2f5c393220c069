// Package models holds the persistent entities of the magiclink server.
package models

import "time"

// User is a pre-provisioned account that may sign in via magic link.
// RefreshToken holds the last refresh token issued for the user; presenting
// any other (older) refresh token is rejected even before its expiry.
type User struct {
	ID           string
	Name         string
	Email        string
	RefreshToken *string
	CreatedAt    time.Time
}
