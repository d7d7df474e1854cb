package ports

import (
	"context"

	"github.com/carnavalia/catalog-api/internal/core/domain"
)

// AuditRepository stores authentication audit events.
type AuditRepository interface {
	InsertAuthEvent(ctx context.Context, event *domain.AuthEvent) error
}

// AuditRecorder accepts events for asynchronous persistence. Record never blocks.
type AuditRecorder interface {
	Record(event domain.AuthEvent)
}
