package domain

import "time"

// AuthEventType labels an authentication audit record.
type AuthEventType string

const (
	EventLoginSucceeded AuthEventType = "login_succeeded"
	EventLoginFailed    AuthEventType = "login_failed"
	EventTokenRefreshed AuthEventType = "token_refreshed"
	EventRefreshFailed  AuthEventType = "refresh_failed"
	EventLoggedOut      AuthEventType = "logged_out"
)

// AuthEvent is an append-only record of an authentication outcome.
type AuthEvent struct {
	Type       AuthEventType `bson:"type"`
	Username   string        `bson:"username,omitempty"`
	UserID     string        `bson:"user_id,omitempty"`
	RemoteIP   string        `bson:"remote_ip,omitempty"`
	Reason     string        `bson:"reason,omitempty"`
	OccurredAt time.Time     `bson:"occurred_at"`
}
