package usecase

import (
	"context"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arklim/social-platform-auth/internal/core/domain"
	"github.com/arklim/social-platform-auth/internal/core/port"
)

// DefaultAuditListLimit bounds audit trail reads when no limit is supplied.
const DefaultAuditListLimit = 100

// AuditLogger appends security events to the audit trail and mirrors them to
// the event bus. Recording is strictly best effort: persistence or publish
// failures are logged operationally and never surface to the caller, so an
// audit outage cannot block or fail authentication.
type AuditLogger struct {
	entries port.AuditRepository
	events  port.AuditEventPublisher
	logger  *zap.Logger
	now     func() time.Time
}

// NewAuditLogger constructs an AuditLogger. The event publisher may be nil.
func NewAuditLogger(entries port.AuditRepository, events port.AuditEventPublisher, logger *zap.Logger) *AuditLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditLogger{
		entries: entries,
		events:  events,
		logger:  logger,
		now:     time.Now,
	}
}

// WithClock allows injection of a custom clock (primarily for testing).
func (l *AuditLogger) WithClock(now func() time.Time) *AuditLogger {
	if now != nil {
		l.now = now
	}
	return l
}

// Record appends an entry for the supplied action. actorID is nil when the
// actor is unknown. The detail payload is copied before being stored.
func (l *AuditLogger) Record(ctx context.Context, actorID *string, action domain.AuditAction, detail map[string]any) {
	entry := domain.AuditEntry{
		ID:        uuid.NewString(),
		ActorID:   copyActorID(actorID),
		Action:    action,
		Detail:    copyDetail(detail),
		CreatedAt: l.now().UTC(),
	}

	if err := l.entries.Append(ctx, entry); err != nil {
		l.logger.Error("failed to append audit entry",
			zap.String("action", string(action)),
			zap.Stringp("actor_id", entry.ActorID),
			zap.Error(err),
		)
	}

	if l.events != nil {
		if err := l.events.PublishAuditEvent(ctx, entry); err != nil {
			l.logger.Warn("failed to publish audit event",
				zap.String("action", string(action)),
				zap.Error(err),
			)
		}
	}
}

// List returns the most recent audit entries, newest first. A non-positive or
// oversized limit falls back to DefaultAuditListLimit.
func (l *AuditLogger) List(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	if limit <= 0 || limit > DefaultAuditListLimit {
		limit = DefaultAuditListLimit
	}
	return l.entries.List(ctx, limit)
}

func copyActorID(actorID *string) *string {
	if actorID == nil || *actorID == "" {
		return nil
	}
	val := *actorID
	return &val
}

func copyDetail(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
