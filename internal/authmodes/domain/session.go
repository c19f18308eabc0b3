package domain

import "time"

// Session is a server-side login referenced by an opaque id held in the
// client's cookie.
type Session struct {
	ID        string
	UserID    string
	Email     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is past its lifetime at now. Expired
// sessions are treated exactly like missing ones.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
