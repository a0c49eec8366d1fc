package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/datamind/datamind-api/internal/core/domain"
	"github.com/datamind/datamind-api/internal/core/ports"
	"github.com/datamind/datamind-api/internal/pkg/secret"
)

const defaultTokenTTL = time.Hour

// Broker is the only component that combines the credential service, token
// service, session store, and secret codec. General consumers get sanitized
// session views through the ports.SessionBroker interface; the privileged
// Credentials method is reachable only through dbconn's narrowly-imported
// interface.
type Broker struct {
	creds  *CredentialService
	tokens *TokenService
	store  ports.SessionStore
	codec  *secret.Codec // nil when no encryption key is configured
	audit  ports.AuditRecorder
	ttl    time.Duration
	log    zerolog.Logger
}

// NewBroker wires the broker. codec may be nil, in which case credential
// storage fails closed with ErrEncryptionNotConfigured; audit may be nil to
// disable the audit trail.
func NewBroker(
	creds *CredentialService,
	tokens *TokenService,
	store ports.SessionStore,
	codec *secret.Codec,
	audit ports.AuditRecorder,
	ttl time.Duration,
	log zerolog.Logger,
) *Broker {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &Broker{
		creds:  creds,
		tokens: tokens,
		store:  store,
		codec:  codec,
		audit:  audit,
		ttl:    ttl,
		log:    log,
	}
}

// Signup creates a new user account.
func (b *Broker) Signup(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := b.creds.Signup(ctx, email, password)
	if err != nil {
		return nil, err
	}
	b.record(domain.AuthEvent{UserID: user.ID, Email: user.Email, Type: domain.EventSignup})
	return user, nil
}

// Login authenticates, creates a fresh session, and issues a token bound to
// it. Every login produces a new session id; expired or revoked sessions are
// never resurrected.
func (b *Broker) Login(ctx context.Context, email, password string) (*ports.IssuedToken, error) {
	user, err := b.creds.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Email:     user.Email,
		CreatedAt: now,
		ExpiresAt: now.Add(b.ttl),
		Metadata:  map[string]string{domain.MetaLastSeen: now.Format(time.RFC3339)},
	}
	if err := b.store.Create(ctx, session); err != nil {
		return nil, err
	}

	token, err := b.tokens.Issue(user.ID, session.ID, user.Email, b.ttl)
	if err != nil {
		// Session without a reachable token is dead weight; best-effort cleanup.
		if delErr := b.store.Delete(ctx, session.ID); delErr != nil {
			b.log.Warn().Err(delErr).Str("session_id", session.ID).Msg("orphan session cleanup failed")
		}
		return nil, err
	}

	b.record(domain.AuthEvent{UserID: user.ID, Email: user.Email, SessionID: session.ID, Type: domain.EventLogin})

	return &ports.IssuedToken{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   session.ExpiresAt,
	}, nil
}

// Resolve verifies the token, loads the session, and returns the sanitized
// projection. Read-only with respect to the store: callers may abandon it at
// any point without leaving partial state.
func (b *Broker) Resolve(ctx context.Context, token string) (*domain.SanitizedContext, error) {
	session, err := b.resolveSession(ctx, token)
	if err != nil {
		return nil, err
	}
	return session.Sanitize(), nil
}

// Touch extends the session behind a valid token and stamps last-seen.
func (b *Broker) Touch(ctx context.Context, token string) error {
	identity, err := b.tokens.Verify(token)
	if err != nil {
		return err
	}
	if err := b.store.Touch(ctx, identity.SessionID, b.ttl); err != nil {
		return mapStoreErr(err)
	}
	return nil
}

// SetActiveDatabase encrypts the descriptor's password and replaces the
// session's active database as a unit. The plaintext password exists only
// inside this call. Fails closed when no encryption key is configured.
func (b *Broker) SetActiveDatabase(ctx context.Context, token string, desc ports.DatabaseDescriptor) error {
	session, err := b.resolveSession(ctx, token)
	if err != nil {
		return err
	}

	if b.codec == nil {
		return domain.ErrEncryptionNotConfigured
	}
	encrypted, err := b.codec.Encrypt(desc.Password)
	if err != nil {
		return fmt.Errorf("encrypt database password: %w", err)
	}

	conn := &domain.DatabaseConn{
		Dialect:           desc.Dialect,
		Host:              desc.Host,
		Port:              desc.Port,
		Database:          desc.Database,
		Username:          desc.Username,
		EncryptedPassword: encrypted,
	}

	err = b.store.Update(ctx, session.ID, func(s *domain.Session) error {
		s.ActiveDatabase = conn
		return nil
	})
	if err != nil {
		return mapStoreErr(err)
	}

	b.record(domain.AuthEvent{UserID: session.UserID, Email: session.Email, SessionID: session.ID, Type: domain.EventSetDatabase})
	return nil
}

// Credentials is the privileged path: it decrypts the session's database
// password and returns a short-lived credential object. Only the database
// connection helper may call this; it must use the result once and discard
// it. Not part of ports.SessionBroker by design.
func (b *Broker) Credentials(ctx context.Context, token string) (*domain.DatabaseCredentials, error) {
	session, err := b.resolveSession(ctx, token)
	if err != nil {
		return nil, err
	}

	db := session.ActiveDatabase
	if db == nil {
		return nil, domain.ErrNoActiveDatabase
	}
	if b.codec == nil {
		return nil, domain.ErrEncryptionNotConfigured
	}

	password, err := b.codec.Decrypt(db.EncryptedPassword)
	if err != nil {
		return nil, fmt.Errorf("decrypt database password: %w", err)
	}

	b.record(domain.AuthEvent{UserID: session.UserID, Email: session.Email, SessionID: session.ID, Type: domain.EventCredentialAccess})

	return &domain.DatabaseCredentials{
		Dialect:  db.Dialect,
		Host:     db.Host,
		Port:     db.Port,
		Database: db.Database,
		Username: db.Username,
		Password: password,
	}, nil
}

// Logout deletes the session. The token's signature stays cryptographically
// valid until its natural expiry, but Resolve and Credentials fail with
// ErrSessionRevoked from here on.
func (b *Broker) Logout(ctx context.Context, token string) error {
	identity, err := b.tokens.Verify(token)
	if err != nil {
		return err
	}
	if err := b.store.Delete(ctx, identity.SessionID); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil // already gone, logout is idempotent
		}
		return mapStoreErr(err)
	}
	b.record(domain.AuthEvent{UserID: identity.UserID, Email: identity.Email, SessionID: identity.SessionID, Type: domain.EventLogout})
	return nil
}

// resolveSession verifies the token first (stateless, constant cost) and
// only then touches the session backend. A valid signature over a missing
// session means the session was revoked.
func (b *Broker) resolveSession(ctx context.Context, token string) (*domain.Session, error) {
	identity, err := b.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	session, err := b.store.Get(ctx, identity.SessionID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSessionNotFound):
			return nil, domain.ErrSessionRevoked
		case errors.Is(err, domain.ErrSessionExpired):
			return nil, domain.ErrSessionExpired
		default:
			return nil, mapStoreErr(err)
		}
	}

	// The sid claim binds the token to exactly one session.
	if session.UserID != identity.UserID {
		return nil, domain.ErrTokenMalformed
	}
	return session, nil
}

func (b *Broker) record(event domain.AuthEvent) {
	if b.audit == nil {
		return
	}
	event.Timestamp = time.Now().UTC()
	b.audit.Record(event)
}

func mapStoreErr(err error) error {
	if errors.Is(err, domain.ErrSessionNotFound) || errors.Is(err, domain.ErrSessionExpired) || errors.Is(err, domain.ErrBackendUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)
}
