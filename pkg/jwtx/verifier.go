package jwtx

import "errors"

var (
	ErrMissingSecret = errors.New("jwtx: missing signing secret")
	ErrMalformed     = errors.New("jwtx: malformed token")
	ErrInvalidSig    = errors.New("jwtx: invalid signature")

	ErrMissingSubject = errors.New("jwtx: missing subject")
	ErrExpired        = errors.New("jwtx: token expired")
	ErrNotYetValid    = errors.New("jwtx: token not yet valid")
)
