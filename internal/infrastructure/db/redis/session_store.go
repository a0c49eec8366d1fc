package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"

	"github.com/datamind/datamind-api/internal/core/domain"
)

const (
	sessionKeyPrefix = "session:"
	txAttempts       = 3
	readAttempts     = 3
	readBackoff      = 50 * time.Millisecond
)

// SessionStore is the shared session backend. Sessions are stored as JSON
// values under session:<id> with a key TTL matching expires_at, so Redis
// evicts expired sessions on its own.
//
// Idempotent reads (Get, Touch) retry with bounded exponential backoff on
// transient failures; Create, Update, and Delete surface the first failure
// so callers keep at-most-once semantics for mutations.
type SessionStore struct {
	client *redis.Client
}

// NewSessionStore wraps the given Redis client.
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func (s *SessionStore) Create(ctx context.Context, session *domain.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		// Already expired; store it briefly so Get can still report expiry
		// rather than "revoked".
		ttl = time.Second
	}
	if err := s.client.Set(ctx, sessionKey(session.ID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("%w: create session: %v", domain.ErrBackendUnavailable, err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	var session *domain.Session

	backoff := retry.WithMaxRetries(readAttempts, retry.NewExponential(readBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		val, err := s.client.Get(ctx, sessionKey(sessionID)).Result()
		if errors.Is(err, redis.Nil) {
			return domain.ErrSessionNotFound
		}
		if err != nil {
			return retry.RetryableError(err)
		}

		var decoded domain.Session
		if err := json.Unmarshal([]byte(val), &decoded); err != nil {
			return fmt.Errorf("unmarshal session: %w", err)
		}
		session = &decoded
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("%w: get session: %v", domain.ErrBackendUnavailable, err)
	}

	// Lazy expiry check; Redis TTL normally beats us to it.
	if session.Expired(time.Now().UTC()) {
		return nil, domain.ErrSessionExpired
	}
	return session, nil
}

// Update applies mutate inside a WATCH transaction so concurrent updates on
// the same session id are serialized optimistically. Not retried beyond the
// transaction's own optimistic attempts.
func (s *SessionStore) Update(ctx context.Context, sessionID string, mutate func(*domain.Session) error) error {
	key := sessionKey(sessionID)

	txn := func(tx *redis.Tx) error {
		val, err := tx.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			return domain.ErrSessionNotFound
		}
		if err != nil {
			return err
		}

		var session domain.Session
		if err := json.Unmarshal([]byte(val), &session); err != nil {
			return fmt.Errorf("unmarshal session: %w", err)
		}
		if err := mutate(&session); err != nil {
			return err
		}

		payload, err := json.Marshal(&session)
		if err != nil {
			return fmt.Errorf("marshal session: %w", err)
		}
		ttl := time.Until(session.ExpiresAt)
		if ttl <= 0 {
			ttl = time.Second
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, ttl)
			return nil
		})
		return err
	}

	for i := 0; i < txAttempts; i++ {
		err := s.client.Watch(ctx, txn, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue // key changed under us, take another optimistic pass
		}
		if errors.Is(err, domain.ErrSessionNotFound) {
			return domain.ErrSessionNotFound
		}
		if err != nil {
			return fmt.Errorf("%w: update session: %v", domain.ErrBackendUnavailable, err)
		}
		return nil
	}
	return fmt.Errorf("%w: update session: too many conflicts", domain.ErrBackendUnavailable)
}

func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	n, err := s.client.Del(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		return fmt.Errorf("%w: delete session: %v", domain.ErrBackendUnavailable, err)
	}
	if n == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

// Touch extends expires_at to now+ttl and stamps last-seen metadata. Safe to
// retry: the result is the same whichever attempt wins.
func (s *SessionStore) Touch(ctx context.Context, sessionID string, ttl time.Duration) error {
	now := time.Now().UTC()

	backoff := retry.WithMaxRetries(readAttempts, retry.NewExponential(readBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := s.Update(ctx, sessionID, func(session *domain.Session) error {
			session.ExpiresAt = now.Add(ttl)
			if session.Metadata == nil {
				session.Metadata = make(map[string]string, 1)
			}
			session.Metadata[domain.MetaLastSeen] = now.Format(time.RFC3339)
			return nil
		})
		if errors.Is(err, domain.ErrBackendUnavailable) {
			return retry.RetryableError(err)
		}
		return err
	})
	return err
}
