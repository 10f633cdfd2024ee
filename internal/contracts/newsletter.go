package contracts

import (
	"strings"
	"time"
)

// Subscriber is a newsletter address collected by the popup or footer
type Subscriber struct {
	ID             int64      `json:"id"`
	Email          string     `json:"email"`
	Source         string     `json:"source"`
	SubscribedAt   time.Time  `json:"subscribedAt"`
	UnsubscribedAt *time.Time `json:"unsubscribedAt,omitempty"`
	LastDigestOn   *time.Time `json:"lastDigestOn,omitempty"`
}

// Active reports whether the address still receives mail
func (s *Subscriber) Active() bool {
	return s.UnsubscribedAt == nil
}

// NormalizeEmail lowercases and trims an address before storage
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SubscribeResult tells the caller whether the address was new
type SubscribeResult struct {
	Subscriber  *Subscriber
	Created     bool // first time seen
	Reactivated bool // previously unsubscribed
}
