package domain

import "time"

// Credential is a bearer token for the commerce backend.
type Credential struct {
	Token     string
	IssuedAt  time.Time
	ExpiresAt time.Time // Zero when the backend did not report an expiry
}

// Age returns how long ago the token was issued.
func (c Credential) Age(now time.Time) time.Duration {
	return now.Sub(c.IssuedAt)
}

// Fresh reports whether the token may still be handed out at now.
// A token is fresh while it is younger than window and not past its reported expiry.
func (c Credential) Fresh(now time.Time, window time.Duration) bool {
	if c.Token == "" {
		return false
	}
	if c.Age(now) > window {
		return false
	}
	if !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt) {
		return false
	}
	return true
}

// Authorization returns the value for the Authorization header.
func (c Credential) Authorization() string {
	return "Bearer " + c.Token
}
