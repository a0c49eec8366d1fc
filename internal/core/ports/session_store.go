package ports

import (
	"context"
	"time"

	"github.com/datamind/datamind-api/internal/core/domain"
)

// SessionStore defines the pluggable session backend. Both implementations
// (in-process map, shared Redis) provide read-after-write consistency per
// session id and the same TTL-expiry semantics.
//
// Error contract:
//   - Get/Update/Delete/Touch return domain.ErrSessionNotFound for an absent id.
//   - Get returns domain.ErrSessionExpired for an entry past its expiry
//     (lazy expiry check on read).
//   - Transient backend failures are wrapped in domain.ErrBackendUnavailable.
//     Implementations may retry idempotent reads (Get, Touch) with bounded
//     backoff; mutations are never silently retried.
type SessionStore interface {
	Create(ctx context.Context, session *domain.Session) error
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	// Update applies mutate to the stored session atomically with respect to
	// other Update calls on the same id (per-store mutex in memory,
	// optimistic WATCH transaction in Redis).
	Update(ctx context.Context, sessionID string, mutate func(*domain.Session) error) error
	Delete(ctx context.Context, sessionID string) error
	// Touch extends expires_at to now+ttl and stamps last-seen metadata.
	Touch(ctx context.Context, sessionID string, ttl time.Duration) error
}
