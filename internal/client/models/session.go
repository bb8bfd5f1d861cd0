// Package models holds the client-side view of server resources.
package models

import "time"

// Session is a logged-in identity cached between CLI runs.
type Session struct {
	UserID     string    `json:"userId"`
	UserName   string    `json:"userName"`
	Email      string    `json:"email"`
	Token      string    `json:"token"`
	Expiration time.Time `json:"expiration"`
	Roles      []string  `json:"roles"`
}

// Expired reports whether the token is no longer accepted at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.Expiration)
}
