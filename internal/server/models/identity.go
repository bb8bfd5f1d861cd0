// Package models defines server-side data models persisted in the database.
package models

import "time"

// Identity is a registered user's credential record.
//
// PasswordHash is an encoded argon2id string with its salt embedded; it is
// never returned to clients. SecurityStamp changes whenever credentials do.
type Identity struct {
	ID                string
	UserName          string
	Email             string
	PasswordHash      string
	SecurityStamp     string
	AccessFailedCount int
	LockoutEnd        *time.Time
	LockoutEnabled    bool
	CreatedAt         time.Time
}

// IsLockedOut reports whether sign-in is blocked at the given instant.
func (i *Identity) IsLockedOut(now time.Time) bool {
	return i.LockoutEnabled && i.LockoutEnd != nil && now.Before(*i.LockoutEnd)
}
