package models

import "time"

// LoginAttempt is a single-use magic-token record. It is identified by the
// (ID, MagicToken) pair, flipped to Active=false exactly once on redemption
// and never deleted afterwards.
type LoginAttempt struct {
	ID         string
	MagicToken string
	Active     bool
	UserID     string
	CreatedAt  time.Time
}
