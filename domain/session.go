package domain

import "time"

// Session ties a signed token to a user until ExpiresAt. Logout removes it
// from the store before expiry.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewSession opens a session for userID lasting ttl from now.
func NewSession(id, userID string, now time.Time, ttl time.Duration) *Session {
	return &Session{ID: id, UserID: userID, CreatedAt: now, ExpiresAt: now.Add(ttl)}
}

// Remaining is the lifetime left at now; zero or negative means expired.
func (s *Session) Remaining(now time.Time) time.Duration {
	if s == nil {
		return 0
	}
	return s.ExpiresAt.Sub(now)
}

// IsExpired treats a nil session as expired. A zero now means time.Now.
func (s *Session) IsExpired(now time.Time) bool {
	if now.IsZero() {
		now = time.Now()
	}
	return s.Remaining(now) <= 0
}
