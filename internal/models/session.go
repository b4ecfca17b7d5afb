package models

import "time"

// Session maps an opaque bearer token to a principal. Tokens are issued by
// the external identity provider; this service only stores the mapping and
// looks it up per request.
type Session struct {
	Token     string    `json:"token" badgerhold:"key"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// Principal is the authenticated identity attached to a request after
// bearer verification. The core only needs the user id.
type Principal struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
}
