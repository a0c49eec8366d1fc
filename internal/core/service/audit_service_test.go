package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/datamind/datamind-api/internal/core/domain"
)

type stubAuditRepo struct {
	inserted  []*domain.AuthEvent
	lastLimit int
}

func (r *stubAuditRepo) Insert(_ context.Context, event *domain.AuthEvent) error {
	r.inserted = append(r.inserted, event)
	return nil
}

func (r *stubAuditRepo) ListByUser(_ context.Context, userID string, limit int) ([]*domain.AuthEvent, error) {
	r.lastLimit = limit
	return nil, nil
}

func TestAuditService_Process(t *testing.T) {
	repo := &stubAuditRepo{}
	svc := NewAuditService(repo, zerolog.Nop())

	event := domain.AuthEvent{UserID: "u1", Email: "a@example.com", Type: domain.EventLogin, Timestamp: time.Now().UTC()}
	if err := svc.Process(context.Background(), event); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if len(repo.inserted) != 1 || repo.inserted[0].UserID != "u1" {
		t.Fatalf("event not persisted: %+v", repo.inserted)
	}
}

func TestAuditService_HistoryClampsLimit(t *testing.T) {
	repo := &stubAuditRepo{}
	svc := NewAuditService(repo, zerolog.Nop())

	cases := map[int]int{0: 50, -5: 50, 500: 50, 10: 10, 100: 100}
	for in, want := range cases {
		if _, err := svc.History(context.Background(), "u1", in); err != nil {
			t.Fatalf("History returned error: %v", err)
		}
		if repo.lastLimit != want {
			t.Fatalf("limit %d: expected clamp to %d, got %d", in, want, repo.lastLimit)
		}
	}
}
