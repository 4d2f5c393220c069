// Package services contains server-side business logic. This file implements
// AuthService, which drives the passwordless login flow: magic-link issuance,
// one-time redemption, and access/refresh token minting and rotation.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"magiclink/internal/common"
	"magiclink/internal/dbx"
	"magiclink/internal/logging"
	"magiclink/internal/server/auth"
	"magiclink/internal/server/config"
	"magiclink/internal/server/models"
	"magiclink/internal/server/notifier"
	"magiclink/internal/server/repositories/repomanager"
)

// magicTokenBytes is the entropy of a magic token. 32 random bytes encode
// to a 64-character hex string.
const magicTokenBytes = 32

const loginEmailSubject = "Your login link"

var loginEmailTemplate = template.Must(template.New("login").Parse(
	`<p>Hello,</p><p>Click the link below to sign in to your account:</p><p><a href="{{.Link}}">{{.Link}}</a></p>`,
))

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// UserProfile is the minimal user view returned to callers. It never carries
// token or credential fields.
type UserProfile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// LoginResult is the opaque confirmation returned by Login.
type LoginResult struct {
	Message string
}

// RedeemResult is returned on a successful magic-link redemption.
type RedeemResult struct {
	Message      string
	User         UserProfile
	AccessToken  string
	RefreshToken string
}

// AuthService provides the passwordless authentication operations:
// - Login: issue a magic link for a known user
// - Redeem: exchange a magic link for a token pair, exactly once
// - RefreshTokens: rotate a refresh token and mint a new pair
// - GetProfile: read a user's public profile
type AuthService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	notifier                     notifier.Notifier
	logger                       logging.Logger
	accessSecret                 []byte
	refreshSecret                []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	frontendURL                  string
}

// NewAuthService constructs an AuthService using repositories, the notifier,
// and server config.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, n notifier.Notifier, l logging.Logger, cfg *config.Config) *AuthService {
	return &AuthService{
		db:                           db,
		repomanager:                  m,
		notifier:                     n,
		logger:                       l,
		accessSecret:                 []byte(cfg.AccessSecret),
		refreshSecret:                []byte(cfg.RefreshSecret),
		accessTokenValidityDuration:  cfg.AccessTokenValidity,
		refreshTokenValidityDuration: cfg.RefreshTokenValidity,
		frontendURL:                  cfg.FrontendURL,
	}
}

// Login creates an active login attempt for the user with the given email and
// hands the redemption link to the notifier. The email is sent asynchronously
// and best-effort: once the attempt is persisted, Login succeeds even if
// delivery later fails.
//
// The "no active attempt" check and the insert are not atomic across
// concurrent callers; two simultaneous logins for the same user may both
// succeed. This matches the reference behavior and only results in two
// deliverable links, each still single-use.
func (s *AuthService) Login(ctx context.Context, email string) (*LoginResult, error) {
	if email == "" {
		return nil, common.ErrorValidation
	}

	attempts := s.repomanager.LoginAttempts(s.db)

	_, err := attempts.GetActiveByEmail(ctx, email)
	if err == nil {
		return nil, common.ErrorConflict
	}
	if !errors.Is(err, common.ErrorNotFound) {
		s.logger.Error(ctx, "error checking active login attempt", "error", err)
		return nil, common.ErrorInternal
	}

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		s.logger.Error(ctx, "error looking up user", "error", err)
		return nil, common.ErrorInternal
	}

	magicToken, err := common.MakeRandHexString(magicTokenBytes)
	if err != nil {
		return nil, common.ErrorInternal
	}

	attemptID, err := uuid.NewV7()
	if err != nil {
		return nil, common.ErrorInternal
	}

	attempt := &models.LoginAttempt{
		ID:         attemptID.String(),
		MagicToken: magicToken,
		Active:     true,
		UserID:     user.ID,
	}
	if err := attempts.Create(ctx, attempt); err != nil {
		s.logger.Error(ctx, "error creating login attempt", "error", err)
		return nil, common.ErrorInternal
	}

	link := s.buildLoginLink(attempt.ID, magicToken)
	go s.sendLoginLink(user.Email, link)

	return &LoginResult{Message: "Magic link sent to email"}, nil
}

// Redeem exchanges a magic link for a token pair. The active=false flip is a
// single conditional update, so each attempt can be redeemed at most once
// even under concurrent calls. Persisting the refresh token onto the user is
// best-effort: the caller already holds a valid access token if it fails.
func (s *AuthService) Redeem(ctx context.Context, attemptID string, magicToken string) (*RedeemResult, error) {
	userID, err := s.repomanager.LoginAttempts(s.db).Redeem(ctx, attemptID, magicToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		s.logger.Error(ctx, "error redeeming login attempt", "error", err)
		return nil, common.ErrorInternal
	}

	users := s.repomanager.Users(s.db)
	user, err := users.GetByID(ctx, userID)
	if err != nil {
		s.logger.Error(ctx, "error loading user after redemption", "error", err)
		return nil, common.ErrorInternal
	}

	pair, err := s.generateTokenPair(user)
	if err != nil {
		return nil, common.ErrorInternal
	}

	if err := users.UpdateRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
		s.logger.Error(ctx, "failed to save refresh token to user", "user_id", user.ID, "error", err)
	}

	return &RedeemResult{
		Message:      "Login successful",
		User:         UserProfile{ID: user.ID, Name: user.Name, Email: user.Email},
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

// RefreshTokens validates the presented refresh token, rotates it, and
// returns a fresh pair. A token is accepted only if its signature and expiry
// verify AND it equals the refresh token currently stored for the user; all
// verification and lookup failures collapse to common.ErrorUnauthorized so
// the caller cannot tell which check failed. Lookup and rotation run in one
// transaction so a stale token never survives a successful call.
func (s *AuthService) RefreshTokens(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := auth.ParseRefreshToken(refreshToken, s.refreshSecret)
	if err != nil {
		return nil, common.ErrorUnauthorized
	}

	var pair *TokenPair
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		users := s.repomanager.Users(tx)

		user, err := users.GetByRefreshToken(ctx, refreshToken)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrorUnauthorized
			}
			s.logger.Error(ctx, "error looking up refresh token", "error", err)
			return common.ErrorInternal
		}

		if user.ID != claims.Subject {
			return common.ErrorUnauthorized
		}

		pair, err = s.generateTokenPair(user)
		if err != nil {
			return common.ErrorInternal
		}

		if err := users.UpdateRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
			s.logger.Error(ctx, "error rotating refresh token", "user_id", user.ID, "error", err)
			return common.ErrorInternal
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) || errors.Is(err, common.ErrorInternal) {
			return nil, err
		}
		s.logger.Error(ctx, "error committing refresh token rotation", "error", err)
		return nil, common.ErrorInternal
	}

	return pair, nil
}

// GetProfile returns the public profile of the user with the given id.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*UserProfile, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		s.logger.Error(ctx, "error loading user profile", "error", err)
		return nil, common.ErrorInternal
	}

	return &UserProfile{ID: user.ID, Name: user.Name, Email: user.Email}, nil
}

// --- helpers below ---

func (s *AuthService) buildLoginLink(attemptID, magicToken string) string {
	base := strings.TrimRight(s.frontendURL, "/")
	return fmt.Sprintf("%s/auth/verify?token=%s&id=%s", base, url.QueryEscape(magicToken), attemptID)
}

func (s *AuthService) sendLoginLink(email, link string) {
	ctx := context.Background()

	var body strings.Builder
	if err := loginEmailTemplate.Execute(&body, struct{ Link string }{Link: link}); err != nil {
		s.logger.Error(ctx, "error rendering login email", "error", err)
		return
	}

	if err := s.notifier.Send(ctx, email, loginEmailSubject, body.String()); err != nil {
		s.logger.Error(ctx, "error sending login email", "email", email, "error", err)
	}
}

func (s *AuthService) generateTokenPair(user *models.User) (*TokenPair, error) {
	access, err := auth.GenerateAccessToken(user.ID, user.Email, s.accessSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, err
	}
	refresh, err := auth.GenerateRefreshToken(user.ID, s.refreshSecret, s.refreshTokenValidityDuration)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
