package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"magiclink/internal/common"
)

func TestGenerateAndParseAccessToken_Success(t *testing.T) {
	t.Parallel()

	secret := []byte("access-secret")

	tok, err := GenerateAccessToken("user-123", "a@x.com", secret, 15*time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}

	claims, err := ParseAccessToken(tok, secret)
	if err != nil {
		t.Fatalf("ParseAccessToken error: %v", err)
	}
	if claims.Subject != "user-123" {
		t.Fatalf("subject mismatch: got %q", claims.Subject)
	}
	if claims.Email != "a@x.com" {
		t.Fatalf("email mismatch: got %q", claims.Email)
	}
}

func TestGenerateAndParseRefreshToken_Success(t *testing.T) {
	t.Parallel()

	secret := []byte("refresh-secret")

	tok, err := GenerateRefreshToken("u1", secret, 7*24*time.Hour)
	if err != nil {
		t.Fatalf("GenerateRefreshToken error: %v", err)
	}

	claims, err := ParseRefreshToken(tok, secret)
	if err != nil {
		t.Fatalf("ParseRefreshToken error: %v", err)
	}
	if claims.Subject != "u1" {
		t.Fatalf("subject mismatch: got %q", claims.Subject)
	}
}

func TestParseAccessToken_Expired(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")

	tok, err := GenerateAccessToken("u1", "a@x.com", secret, -1*time.Second)
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}

	_, err = ParseAccessToken(tok, secret)
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected common.ErrInvalidToken, got %v", err)
	}
}

// signAccessTokenAt signs an access token as if it had been issued at the
// given time, with a 15-minute lifetime.
func signAccessTokenAt(t *testing.T, issuedAt time.Time, secret []byte) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(15 * time.Minute)),
		},
		Email: "a@x.com",
	})

	s, err := token.SignedString(secret)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return s
}

func TestParseAccessToken_FifteenMinuteBoundary(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")

	// Issued 14 minutes ago: still inside the 15-minute lifetime.
	tok := signAccessTokenAt(t, time.Now().Add(-14*time.Minute), secret)
	if _, err := ParseAccessToken(tok, secret); err != nil {
		t.Fatalf("token at T+14m should verify, got %v", err)
	}

	// Issued 16 minutes ago: past expiry.
	tok = signAccessTokenAt(t, time.Now().Add(-16*time.Minute), secret)
	if _, err := ParseAccessToken(tok, secret); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("token at T+16m should be rejected, got %v", err)
	}
}

func TestParseAccessToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := GenerateAccessToken("u2", "b@x.com", []byte("right-secret"), time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}

	_, err = ParseAccessToken(tok, []byte("wrong-secret"))
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected common.ErrInvalidToken, got %v", err)
	}
}

// A refresh token must never verify under the access secret and vice versa,
// even when both tokens are otherwise valid.
func TestDistinctSigningKeys(t *testing.T) {
	t.Parallel()

	accessSecret := []byte("access-secret")
	refreshSecret := []byte("refresh-secret")

	access, err := GenerateAccessToken("u1", "a@x.com", accessSecret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}
	refresh, err := GenerateRefreshToken("u1", refreshSecret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateRefreshToken error: %v", err)
	}

	if _, err := ParseRefreshToken(access, refreshSecret); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("access token verified under refresh secret: %v", err)
	}
	if _, err := ParseAccessToken(refresh, accessSecret); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("refresh token verified under access secret: %v", err)
	}
}

// Two refresh tokens minted back to back must differ, otherwise rotation
// would silently replace a token with itself.
func TestGenerateRefreshToken_Unique(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")

	first, err := GenerateRefreshToken("u1", secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateRefreshToken error: %v", err)
	}
	second, err := GenerateRefreshToken("u1", secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateRefreshToken error: %v", err)
	}
	if first == second {
		t.Fatal("consecutive refresh tokens are identical")
	}
}

func TestParseRefreshToken_Malformed(t *testing.T) {
	t.Parallel()

	_, err := ParseRefreshToken("not.a.jwt", []byte("k"))
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected common.ErrInvalidToken, got %v", err)
	}
}
