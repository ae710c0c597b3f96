package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/arklim/social-platform-auth/internal/core/domain"
)

// StubPublisher logs audit events instead of sending them to Kafka. Useful
// for development environments without a broker.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly audit event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

// PublishAuditEvent logs the entry that would have been published.
func (p *StubPublisher) PublishAuditEvent(_ context.Context, entry domain.AuditEntry) error {
	at := entry.CreatedAt
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("Stub audit event published",
		zap.String("entry_id", entry.ID),
		zap.String("action", string(entry.Action)),
		zap.Stringp("actor_id", entry.ActorID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("detail", entry.Detail),
	)
	return nil
}
