package services

import (
	"testing"
	"time"

	"court_transfer_app_go/config"
	"court_transfer_app_go/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIssuer(now time.Time) *TokenIssuer {
	ti := NewTokenIssuer(&config.Config{
		JWTSecret:   "token-test-secret-at-least-32-bytes!!",
		JWTIssuer:   "court-transfer-api",
		JWTAudience: "court-transfer-console",
		JWTTTL:      time.Hour,
	})
	ti.now = func() time.Time { return now }
	return ti
}

func TestTokenRoundTrip(t *testing.T) {
	now := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	ti := testIssuer(now)
	user := &models.User{ID: 42, RegistrationNumber: 1001}

	token, expiresAt, err := ti.IssueToken(user)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), expiresAt)

	claims, err := ti.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, 1001, claims.RegistrationNumber)
	assert.Equal(t, "1001", claims.Subject)
	assert.NotEmpty(t, claims.ID)
}

func TestParseTokenRejects(t *testing.T) {
	now := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	ti := testIssuer(now)
	user := &models.User{ID: 42, RegistrationNumber: 1001}
	token, _, err := ti.IssueToken(user)
	require.NoError(t, err)

	t.Run("Expired", func(t *testing.T) {
		later := testIssuer(now.Add(2 * time.Hour))
		_, err := later.ParseToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Wrong secret", func(t *testing.T) {
		other := testIssuer(now)
		other.secret = []byte("another-secret-another-secret-123")
		_, err := other.ParseToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Wrong audience", func(t *testing.T) {
		other := testIssuer(now)
		other.audience = "someone-else"
		_, err := other.ParseToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Unsigned algorithm", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: 42})
		raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = ti.ParseToken(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := ti.ParseToken("  ")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestIssueTokenRequiresSecret(t *testing.T) {
	ti := NewTokenIssuer(&config.Config{JWTTTL: time.Hour})
	_, _, err := ti.IssueToken(&models.User{ID: 1})
	assert.Error(t, err)
}
