package jwtx

import "time"

// Signer is our interface for anything that can sign JWTs.
type Signer interface {
	Alg() string
	Sign(Claims) (string, error)
	Validate() error
}

// Verifier validates a JWT and gives you back the claims if it's legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// SignVerifier is a symmetric key that both mints and checks tokens.
type SignVerifier interface {
	Signer
	Verifier
}

// Option tweaks a signer at construction time.
type Option func(*HS256Signer)

// WithLeeway allows small clock skew when validating exp/nbf.
func WithLeeway(d time.Duration) Option {
	return func(s *HS256Signer) { s.leeway = d }
}

// WithClock replaces time.Now, mostly so tests can age tokens.
func WithClock(now func() time.Time) Option {
	return func(s *HS256Signer) { s.now = now }
}

// NewSignerHS256 creates an HMAC SHA-256 signer/verifier from a shared
// secret. An empty secret is accepted here and reported on first use, so
// a misconfigured mode fails its requests instead of the whole process.
func NewSignerHS256(secret string, opts ...Option) *HS256Signer {
	return newHS256Signer(secret, opts...)
}
