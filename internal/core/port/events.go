package port

import (
	"context"

	"github.com/arklim/social-platform-auth/internal/core/domain"
)

// AuditEventPublisher publishes audit entries to the message bus for
// downstream consumers (SIEM pipelines, analytics). Delivery is best effort.
type AuditEventPublisher interface {
	PublishAuditEvent(ctx context.Context, entry domain.AuditEntry) error
}
