package model

import "time"

// Identity is what a sign-in provider vouches for.
type Identity struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Provider string `json:"provider"`
}

// Session is an authenticated browser session.
// Email is the principal identity and is sent to the backend as the bearer credential.
type Session struct {
	Token     string    `json:"-"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Provider  string    `json:"provider"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Valid reports whether the session carries a principal and has not expired.
func (s *Session) Valid(now time.Time) bool {
	return s != nil && s.Email != "" && now.Before(s.ExpiresAt)
}
