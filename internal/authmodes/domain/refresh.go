package domain

import "time"

// RefreshRecord is the server-side copy of a user's current hybrid refresh
// token. There is at most one per user; an empty TokenHash means logged out.
type RefreshRecord struct {
	UserID    string
	TokenHash string // deterministic fingerprint (base64url SHA-256)
	UpdatedAt time.Time
}

// Cleared reports whether the record holds no usable token.
func (r RefreshRecord) Cleared() bool { return r.TokenHash == "" }
