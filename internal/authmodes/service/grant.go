package service

import "time"

// Identity is who a verified credential belongs to.
type Identity struct {
	UserID string
	Email  string
}

// Grant is the result of a successful register, login or refresh.
type Grant struct {
	Identity

	// AccessToken is only set in hybrid mode.
	AccessToken string

	// Credential is what the client keeps in its cookie: the stateless
	// token, the refresh token or the session id.
	Credential    string
	CredentialTTL time.Duration
}
