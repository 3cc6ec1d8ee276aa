// Package entity defines the sign-in session of a user.
package entity

import "time"

// Session is one sign-in of a user. Access tokens carry its ID,
// so a token stops working as soon as its session is revoked or lapses.
type Session struct {
	ID        string // 64 hex chars
	UserID    string
	UserAgent string
	IPAddress string
	CreatedAt time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
}

// Revoked reports whether the session was signed out.
func (s *Session) Revoked() bool {
	return s.RevokedAt != nil
}

// ExpiredAt reports whether the session has lapsed at t.
func (s *Session) ExpiredAt(t time.Time) bool {
	return !t.Before(s.ExpiresAt)
}

// ActiveAt reports whether the session still authenticates requests at t.
func (s *Session) ActiveAt(t time.Time) bool {
	return !s.Revoked() && !s.ExpiredAt(t)
}

// Revoke signs the session out at t. The first revocation time is kept.
func (s *Session) Revoke(t time.Time) {
	if s.RevokedAt == nil {
		s.RevokedAt = &t
	}
}
