package contracts

import "time"

// Session is a dashboard login issued by the external auth provider
type Session struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	Plan      string    `json:"plan"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the session is no longer valid at now
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
