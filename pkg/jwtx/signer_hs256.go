package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// HS256Signer implements Signer and Verifier using HMAC SHA-256.
type HS256Signer struct {
	secret []byte
	alg    string
	leeway time.Duration
	now    func() time.Time
}

func newHS256Signer(secret string, opts ...Option) *HS256Signer {
	s := &HS256Signer{
		secret: []byte(secret),
		alg:    jwt.SigningMethodHS256.Alg(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *HS256Signer) Alg() string { return s.alg }

// Sign takes your claims and turns them into a signed JWT string. There is
// no fallback: without a secret nothing gets signed.
func (s *HS256Signer) Sign(claims Claims) (string, error) {
	if err := s.Validate(); err != nil {
		return "", err
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// Validate does a quick sanity check to make sure we actually have a key.
func (s *HS256Signer) Validate() error {
	if len(s.secret) == 0 {
		return ErrMissingSecret
	}
	return nil
}
