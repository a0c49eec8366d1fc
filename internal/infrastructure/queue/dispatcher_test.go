package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/datamind/datamind-api/internal/core/domain"
)

type recordingSink struct {
	mu     sync.Mutex
	events []domain.AuthEvent
}

func (s *recordingSink) Process(_ context.Context, event domain.AuthEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *recordingSink) snapshot() []domain.AuthEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.AuthEvent, len(s.events))
	copy(out, s.events)
	return out
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}

func TestDispatcher_DeliversEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := &recordingSink{}
	d := NewDispatcher(2, sink, zerolog.Nop())
	d.Start(ctx)

	d.Record(domain.AuthEvent{UserID: "u1", Type: domain.EventLogin})
	d.Record(domain.AuthEvent{UserID: "u2", Type: domain.EventSignup})

	waitFor(t, func() bool { return len(sink.snapshot()) == 2 })
}

func TestDispatcher_PerUserOrdering(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := &recordingSink{}
	d := NewDispatcher(4, sink, zerolog.Nop())

	// Enqueue before starting workers so ordering is decided by sharding,
	// not by scheduling luck.
	sequence := []domain.AuthEventType{domain.EventSignup, domain.EventLogin, domain.EventSetDatabase, domain.EventLogout}
	for _, typ := range sequence {
		d.Record(domain.AuthEvent{UserID: "u1", Type: typ})
	}
	d.Start(ctx)

	waitFor(t, func() bool { return len(sink.snapshot()) == len(sequence) })

	for i, event := range sink.snapshot() {
		if event.Type != sequence[i] {
			t.Fatalf("out of order at %d: got %s, want %s", i, event.Type, sequence[i])
		}
	}
}

func TestDispatcher_ShardIsStable(t *testing.T) {
	d := NewDispatcher(8, &recordingSink{}, zerolog.Nop())
	first := d.shardIndex("user-abc")
	for i := 0; i < 10; i++ {
		if d.shardIndex("user-abc") != first {
			t.Fatalf("shard index not deterministic")
		}
	}
}
