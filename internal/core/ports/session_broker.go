package ports

import (
	"context"
	"time"

	"github.com/datamind/datamind-api/internal/core/domain"
)

// IssuedToken is the result of a successful login.
type IssuedToken struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// DatabaseDescriptor is the caller-supplied description of a database to
// attach to a session. Password is plaintext here and only here; the broker
// encrypts it before anything is persisted.
type DatabaseDescriptor struct {
	Dialect  string
	Host     string
	Port     int
	Database string
	Username string
	Password string
}

// SessionBroker is the general-purpose auth surface. Everything it returns
// is sanitized; no method on this interface can yield secret material.
// The privileged decrypt path is deliberately not part of this interface,
// see dbconn.CredentialSource.
type SessionBroker interface {
	Signup(ctx context.Context, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*IssuedToken, error)
	Resolve(ctx context.Context, token string) (*domain.SanitizedContext, error)
	// Touch extends the session behind the token and records last-seen.
	Touch(ctx context.Context, token string) error
	SetActiveDatabase(ctx context.Context, token string, desc DatabaseDescriptor) error
	Logout(ctx context.Context, token string) error
}
