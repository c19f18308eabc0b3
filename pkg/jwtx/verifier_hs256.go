package jwtx

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Verify validates the JWT string and returns its parsed Claims. The
// signature is checked before any claim, so a forged token that is also
// expired reports ErrInvalidSig.
func (s *HS256Signer) Verify(tokenStr string) (Claims, error) {
	if err := s.Validate(); err != nil {
		return Claims{}, err
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{s.alg}),
		jwt.WithoutClaimsValidation(),
	)

	var claims Claims
	token, err := parser.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return Claims{}, classify(err)
	}
	if !token.Valid {
		return Claims{}, ErrInvalidSig
	}

	// Now check the claim requirements
	if err := claims.ValidateExpiry(s.now(), s.leeway); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateSubject(); err != nil {
		return Claims{}, err
	}

	return claims, nil
}

// DecodeUnverified reads the claims of a token without checking its
// signature or lifetime. Never use the result to authenticate anything.
func DecodeUnverified(tokenStr string) (Claims, error) {
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, &claims); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return claims, nil
}

// classify folds golang-jwt parse errors into our sentinel set.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrInvalidSig, err)
	default:
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}
