package ports

import (
	"context"

	"github.com/datamind/datamind-api/internal/core/domain"
)

// AuditRepository persists auth audit trail entries.
type AuditRepository interface {
	Insert(ctx context.Context, event *domain.AuthEvent) error
	ListByUser(ctx context.Context, userID string, limit int) ([]*domain.AuthEvent, error)
}

// AuditRecorder accepts audit events for asynchronous persistence. Record
// must not block the caller; losing events on overflow is acceptable, losing
// auth requests is not.
type AuditRecorder interface {
	Record(event domain.AuthEvent)
}
