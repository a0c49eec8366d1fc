package domain

import "time"

// AuthEventType classifies entries in the auth audit trail.
type AuthEventType string

const (
	EventSignup           AuthEventType = "signup"
	EventLogin            AuthEventType = "login"
	EventLogout           AuthEventType = "logout"
	EventSetDatabase      AuthEventType = "set_database"
	EventCredentialAccess AuthEventType = "credential_access"
)

// AuthEvent is a single audit trail entry. Events never carry password
// material, only identity and timing.
type AuthEvent struct {
	UserID    string        `json:"user_id"`
	Email     string        `json:"email"`
	SessionID string        `json:"session_id,omitempty"`
	Type      AuthEventType `json:"type"`
	Timestamp time.Time     `json:"timestamp"`
}
