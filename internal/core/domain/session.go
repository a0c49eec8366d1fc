package domain

import (
	"fmt"
	"net/url"
	"time"
)

// Supported dialects for a session's active database.
const (
	DialectPostgres = "postgres"
	DialectMySQL    = "mysql"
)

// MetaLastSeen is the metadata key stamped by Touch.
const MetaLastSeen = "last_seen"

// DatabaseConn is the connection metadata a session holds for its selected
// database. EncryptedPassword is a secret-codec blob; the plaintext password
// never enters this struct.
type DatabaseConn struct {
	Dialect           string `json:"dialect" bson:"dialect"`
	Host              string `json:"host" bson:"host"`
	Port              int    `json:"port" bson:"port"`
	Database          string `json:"database" bson:"database"`
	Username          string `json:"username" bson:"username"`
	EncryptedPassword string `json:"encrypted_password" bson:"encrypted_password"`
}

// Session is the server-side record behind one issued token. It is created
// on login, mutated only by SetActiveDatabase and Touch, and deleted on
// logout. ActiveDatabase is optional and replaced wholesale, never patched
// field by field.
type Session struct {
	ID             string            `json:"id"`
	UserID         string            `json:"user_id"`
	Email          string            `json:"email"`
	CreatedAt      time.Time         `json:"created_at"`
	ExpiresAt      time.Time         `json:"expires_at"`
	ActiveDatabase *DatabaseConn     `json:"active_database,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// Expired reports whether the session is past its expiry at the given instant.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// SanitizedDatabase is the password-free projection of DatabaseConn.
type SanitizedDatabase struct {
	Dialect  string `json:"dialect"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database string `json:"database"`
	Username string `json:"username"`
}

// SanitizedContext is the only session view non-privileged consumers may
// see. It carries identity and database identity fields but no secret
// material of any kind.
type SanitizedContext struct {
	UserID         string             `json:"user_id"`
	Email          string             `json:"email"`
	ActiveDatabase *SanitizedDatabase `json:"active_database,omitempty"`
	ExpiresAt      time.Time          `json:"expires_at"`
	LastSeen       string             `json:"last_seen,omitempty"`
}

// Sanitize projects the session into its password-free view.
func (s *Session) Sanitize() *SanitizedContext {
	ctx := &SanitizedContext{
		UserID:    s.UserID,
		Email:     s.Email,
		ExpiresAt: s.ExpiresAt,
		LastSeen:  s.Metadata[MetaLastSeen],
	}
	if db := s.ActiveDatabase; db != nil {
		ctx.ActiveDatabase = &SanitizedDatabase{
			Dialect:  db.Dialect,
			Host:     db.Host,
			Port:     db.Port,
			Database: db.Database,
			Username: db.Username,
		}
	}
	return ctx
}

// DatabaseCredentials is the decrypted credential object returned by the
// privileged broker path. It is intended for immediate use by the database
// connection helper and must not be cached or logged.
type DatabaseCredentials struct {
	Dialect  string
	Host     string
	Port     int
	Database string
	Username string
	Password string
}

// DSN renders a driver connection string for the credential set. The
// postgres URL escapes userinfo so passwords may contain any character;
// the mysql driver splits at the last '@' and needs no escaping.
func (c *DatabaseCredentials) DSN() string {
	switch c.Dialect {
	case DialectMySQL:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s", c.Username, c.Password, c.Host, c.Port, c.Database)
	default:
		u := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(c.Username, c.Password),
			Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
			Path:   c.Database,
		}
		return u.String()
	}
}
