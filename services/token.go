package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"court_transfer_app_go/config"
	"court_transfer_app_go/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken indicates the bearer token failed validation
var ErrInvalidToken = errors.New("invalid token")

// Claims carried by every bearer token
type Claims struct {
	UserID             uint `json:"id"`
	RegistrationNumber int  `json:"registration_number"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and validates stateless HS256 bearer tokens. There is no
// server-side session store, so a token stays valid until it expires.
type TokenIssuer struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

// NewTokenIssuer builds an issuer from configuration
func NewTokenIssuer(cfg *config.Config) *TokenIssuer {
	return &TokenIssuer{
		secret:   []byte(cfg.JWTSecret),
		issuer:   cfg.JWTIssuer,
		audience: cfg.JWTAudience,
		ttl:      cfg.JWTTTL,
		now:      time.Now,
	}
}

// IssueToken signs a token embedding the user's id and registration number
func (ti *TokenIssuer) IssueToken(user *models.User) (string, time.Time, error) {
	if len(ti.secret) == 0 {
		return "", time.Time{}, errors.New("token secret is not configured")
	}
	if ti.ttl <= 0 {
		return "", time.Time{}, errors.New("token ttl must be greater than zero")
	}

	now := ti.now().UTC()
	expiresAt := now.Add(ti.ttl)
	claims := Claims{
		UserID:             user.ID,
		RegistrationNumber: user.RegistrationNumber,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ti.issuer,
			Subject:   strconv.Itoa(user.RegistrationNumber),
			Audience:  jwt.ClaimStrings{ti.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(ti.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ParseToken verifies signature, issuer, audience and lifetime
func (ti *TokenIssuer) ParseToken(raw string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(ti.secret) == 0 {
		return nil, ErrInvalidToken
	}

	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		return ti.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(ti.issuer),
		jwt.WithAudience(ti.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ti.now),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
