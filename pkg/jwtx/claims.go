package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token TTL constants for the three credential flavours.
// These provide sensible defaults but can be overridden per-service.
const (
	// DefaultAccessTokenTTL is the default lifetime for hybrid access tokens.
	DefaultAccessTokenTTL = 15 * time.Minute

	// DefaultRefreshTokenTTL is the default lifetime for hybrid refresh tokens.
	DefaultRefreshTokenTTL = 14 * 24 * time.Hour

	// DefaultStatelessTokenTTL is the default lifetime for the single
	// stateless token.
	DefaultStatelessTokenTTL = 7 * 24 * time.Hour
)

// Claims carried by every token we mint. The user id lives in the
// audience claim, the email is an optional convenience payload.
type Claims struct {
	jwt.RegisteredClaims

	// Email of the authenticated user at the time of minting
	Email string `json:"email,omitempty"`
}

// NewClaims builds minimally-correct claims for userID.
func NewClaims(userID, email string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{userID},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Email: email,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim. It is
// what keeps two tokens minted in the same second for the same user apart.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// UserID returns the subject of the token, the first audience value.
func (c *Claims) UserID() string {
	if len(c.Audience) == 0 {
		return ""
	}
	return c.Audience[0]
}

// ValidateSubject ensures the token names a user.
func (c *Claims) ValidateSubject() error {
	if c.UserID() == "" {
		return ErrMissingSubject
	}
	return nil
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't before nbf
// at the given instant, with a small grace period for clock skew.
func (c *Claims) ValidateExpiry(now time.Time, leeway time.Duration) error {
	// Check expired (exp)
	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}

	// Check if a valid token isn't used before it is valid (nbf)
	if c.NotBefore != nil && now.Before(c.NotBefore.Add(-leeway)) {
		return ErrNotYetValid
	}

	return nil
}
