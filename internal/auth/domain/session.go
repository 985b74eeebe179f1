package domain

import "time"

// Session is the persisted record of one currently valid rotation token.
// Only a salted digest of the token is stored.
type Session struct {
	ID         string
	AccountID  string
	TokenHash  string
	ExpiresAt  time.Time
	RemoteAddr string // optional
	UserAgent  string // optional
	CreatedAt  time.Time
}

// Expired reports whether the session is no longer usable at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// SessionMetadata is the optional client information recorded with a session.
type SessionMetadata struct {
	RemoteAddr string
	UserAgent  string
}
