package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/datamind/datamind-api/internal/core/domain"
	"github.com/datamind/datamind-api/internal/core/ports"
)

// AuditService persists auth audit events delivered by the dispatcher.
type AuditService struct {
	repo ports.AuditRepository
	log  zerolog.Logger
}

func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) *AuditService {
	return &AuditService{repo: repo, log: log}
}

// Process writes one audit event. Events carry no secret material, so the
// full entry is safe to log at debug level.
func (s *AuditService) Process(ctx context.Context, event domain.AuthEvent) error {
	if err := s.repo.Insert(ctx, &event); err != nil {
		return fmt.Errorf("audit insert: %w", err)
	}
	s.log.Debug().
		Str("user_id", event.UserID).
		Str("type", string(event.Type)).
		Msg("audit event recorded")
	return nil
}

// History returns the most recent audit entries for a user.
func (s *AuditService) History(ctx context.Context, userID string, limit int) ([]*domain.AuthEvent, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.ListByUser(ctx, userID, limit)
}
