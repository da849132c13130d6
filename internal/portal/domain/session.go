package domain

import "time"

// Identity is what the identity provider hands back after a successful code
// exchange. Email is as reported by the provider (case not normalised).
type Identity struct {
	SubjectID string
	Email     string
}

// Session is an authenticated browser session. Sessions are established as
// soon as the identity provider vouches for a subject, before any Profile
// exists, so SubjectID is not a foreign key.
type Session struct {
	ID        string
	TokenHash string // SHA-256 fingerprint of the opaque cookie token
	SubjectID string
	Email     string
	CreatedAt time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
}

// IsLive reports whether the session can still authenticate requests.
func (s Session) IsLive(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}
