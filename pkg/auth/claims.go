package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// expiryLeeway treats tokens about to expire as expired
const expiryLeeway = 30 * time.Second

// Claims are the fields the client reads from an access token. The signature
// is not checked here; the server does that on every request.
type Claims struct {
	UserID    int    `json:"user_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// ParseClaims decodes a token without verifying it
func ParseClaims(token string) (*Claims, error) {
	if token == "" {
		return nil, errors.New("empty token")
	}
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("decoding token: %w", err)
	}
	return claims, nil
}

// Expired reports whether the token is past, or within a few seconds of, its
// expiry. Tokens without an expiry never expire.
func (c *Claims) Expired(now time.Time) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return !now.Add(expiryLeeway).Before(c.ExpiresAt.Time)
}
