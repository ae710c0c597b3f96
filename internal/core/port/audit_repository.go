package port

import (
	"context"

	"github.com/arklim/social-platform-auth/internal/core/domain"
)

// AuditRepository persists the append-only audit trail.
type AuditRepository interface {
	Append(ctx context.Context, entry domain.AuditEntry) error
	List(ctx context.Context, limit int) ([]domain.AuditEntry, error)
}
