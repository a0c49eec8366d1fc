// Package memory provides the process-local session backend: a mutex-guarded
// map with lazy expiry on read and a janitor goroutine bounding memory.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/datamind/datamind-api/internal/core/domain"
)

const defaultJanitorInterval = time.Minute

// SessionStore keeps sessions in process memory. All methods are safe for
// concurrent use; mutators run under the store lock, which gives per-key
// atomic writes without further coordination in the broker.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*domain.Session)}
}

// StartJanitor launches the background sweep evicting expired sessions.
// Stops when ctx is cancelled. interval <= 0 uses a one-minute default.
func (s *SessionStore) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultJanitorInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep(time.Now().UTC())
			}
		}
	}()
}

func (s *SessionStore) Create(_ context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = cloneSession(session)
	return nil
}

func (s *SessionStore) Get(_ context.Context, sessionID string) (*domain.Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if !session.Expired(time.Now().UTC()) {
		return cloneSession(session), nil
	}

	// Lazy eviction. Re-check under the write lock: a concurrent Touch may
	// have extended the session between the read above and here.
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok = s.sessions[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if !session.Expired(time.Now().UTC()) {
		return cloneSession(session), nil
	}
	delete(s.sessions, sessionID)
	return nil, domain.ErrSessionExpired
}

func (s *SessionStore) Update(_ context.Context, sessionID string, mutate func(*domain.Session) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return domain.ErrSessionNotFound
	}

	// Mutate a copy so a failing mutator leaves the stored session intact.
	updated := cloneSession(session)
	if err := mutate(updated); err != nil {
		return err
	}
	s.sessions[sessionID] = updated
	return nil
}

func (s *SessionStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return domain.ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	return nil
}

func (s *SessionStore) Touch(ctx context.Context, sessionID string, ttl time.Duration) error {
	now := time.Now().UTC()
	return s.Update(ctx, sessionID, func(session *domain.Session) error {
		session.ExpiresAt = now.Add(ttl)
		if session.Metadata == nil {
			session.Metadata = make(map[string]string, 1)
		}
		session.Metadata[domain.MetaLastSeen] = now.Format(time.RFC3339)
		return nil
	})
}

func (s *SessionStore) sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, session := range s.sessions {
		if session.Expired(now) {
			delete(s.sessions, id)
		}
	}
}

func cloneSession(s *domain.Session) *domain.Session {
	clone := *s
	if s.ActiveDatabase != nil {
		db := *s.ActiveDatabase
		clone.ActiveDatabase = &db
	}
	if s.Metadata != nil {
		clone.Metadata = make(map[string]string, len(s.Metadata))
		for k, v := range s.Metadata {
			clone.Metadata[k] = v
		}
	}
	return &clone
}
