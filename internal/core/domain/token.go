package domain

import "time"

// RefreshToken is the long-lived credential used to mint new access tokens.
// At most one live token exists per user.
type RefreshToken struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the token is past its expiry at now.
func (t *RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// TokenPair is returned by login and refresh.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	ExpiresIn        int64 // access token lifetime in seconds
	RefreshToken     string
	RefreshExpiresAt time.Time
}
