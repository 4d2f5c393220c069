// Package loginattempts provides a PostgreSQL-backed repository for
// single-use magic-token records.
package loginattempts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"magiclink/internal/common"
	"magiclink/internal/dbx"
	"magiclink/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new login attempt.
func (r *PostgresRepository) Create(ctx context.Context, attempt *models.LoginAttempt) error {
	query := `
		INSERT INTO login_attempts (id, magic_token, active, user_id)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.db.ExecContext(ctx, query,
		attempt.ID, attempt.MagicToken, attempt.Active, attempt.UserID); err != nil {
		return fmt.Errorf("error performing sql request: %v", err)
	}
	return nil
}

// GetActiveByEmail returns the active login attempt for the user with the
// given email. If none exists, it returns common.ErrorNotFound.
func (r *PostgresRepository) GetActiveByEmail(ctx context.Context, email string) (*models.LoginAttempt, error) {
	query := `
		SELECT la.id, la.magic_token, la.active, la.user_id, la.created_at
		FROM login_attempts la
		JOIN users u ON u.id = la.user_id
		WHERE u.email = $1 AND la.active = TRUE
	`
	attempt := &models.LoginAttempt{}
	err := r.db.QueryRowContext(ctx, query, email).
		Scan(&attempt.ID, &attempt.MagicToken, &attempt.Active, &attempt.UserID, &attempt.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return attempt, nil
}

// Redeem flips active=false on the matching attempt and returns the owning
// user id. The WHERE clause includes active=TRUE, so a second redemption of
// the same attempt matches zero rows and returns common.ErrorNotFound.
func (r *PostgresRepository) Redeem(ctx context.Context, id string, token string) (string, error) {
	query := `
		UPDATE login_attempts
		SET active = FALSE
		WHERE id = $1 AND magic_token = $2 AND active = TRUE
		RETURNING user_id
	`
	var userID string
	err := r.db.QueryRowContext(ctx, query, id, token).Scan(&userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	return userID, nil
}
