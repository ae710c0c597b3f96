package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap/zaptest"

	"github.com/arklim/social-platform-auth/internal/core/domain"
	"github.com/arklim/social-platform-auth/internal/infra/config"
)

type fakeAsyncProducer struct {
	input  chan *sarama.ProducerMessage
	errors chan *sarama.ProducerError
}

func newFakeAsyncProducer() *fakeAsyncProducer {
	return &fakeAsyncProducer{
		input:  make(chan *sarama.ProducerMessage, 1),
		errors: make(chan *sarama.ProducerError, 1),
	}
}

func (f *fakeAsyncProducer) AsyncClose() {}

func (f *fakeAsyncProducer) Close() error { return nil }

func (f *fakeAsyncProducer) Input() chan<- *sarama.ProducerMessage { return f.input }

func (f *fakeAsyncProducer) Successes() <-chan *sarama.ProducerMessage { return nil }

func (f *fakeAsyncProducer) Errors() <-chan *sarama.ProducerError { return f.errors }

func (f *fakeAsyncProducer) IsTransactional() bool { return false }

func (f *fakeAsyncProducer) BeginTxn() error { return nil }

func (f *fakeAsyncProducer) CommitTxn() error { return nil }

func (f *fakeAsyncProducer) AbortTxn() error { return nil }

func (f *fakeAsyncProducer) AddOffsetsToTxn(offsets map[string][]*sarama.PartitionOffsetMetadata, groupID string) error {
	return nil
}

func (f *fakeAsyncProducer) AddMessageToTxn(msg *sarama.ConsumerMessage, groupID string, metadata *string) error {
	return nil
}

func (f *fakeAsyncProducer) TxnStatus() sarama.ProducerTxnStatusFlag {
	return sarama.ProducerTxnStatusFlag(0)
}

func newTestPublisher(t *testing.T, asyncProducer sarama.AsyncProducer) *EventPublisher {
	t.Helper()

	producer := &Producer{
		producer: asyncProducer,
		logger:   zaptest.NewLogger(t),
		cfg: config.KafkaSettings{
			TopicPrefix: "auth",
		},
		errChan: make(chan error, 1),
		done:    make(chan struct{}),
	}

	return NewEventPublisher(producer, config.AppSettings{
		Name: "auth-service",
		Env:  "test",
	}, zaptest.NewLogger(t))
}

func TestPublishAuditEvent(t *testing.T) {
	asyncProducer := newFakeAsyncProducer()
	publisher := newTestPublisher(t, asyncProducer)

	createdAt := time.Date(2026, 3, 14, 9, 15, 0, 0, time.UTC)
	actorID := "user-42"
	entry := domain.AuditEntry{
		ID:        "entry-123",
		ActorID:   &actorID,
		Action:    domain.AuditLoginSuccess,
		Detail:    map[string]any{"ip": "203.0.113.7"},
		CreatedAt: createdAt,
	}

	if err := publisher.PublishAuditEvent(context.Background(), entry); err != nil {
		t.Fatalf("PublishAuditEvent returned error: %v", err)
	}

	select {
	case msg := <-asyncProducer.input:
		if msg.Topic != "auth.audit.event" {
			t.Fatalf("unexpected topic: %s", msg.Topic)
		}

		bytes, err := msg.Value.Encode()
		if err != nil {
			t.Fatalf("Value.Encode returned error: %v", err)
		}

		var envelope map[string]any
		if err := json.Unmarshal(bytes, &envelope); err != nil {
			t.Fatalf("failed to unmarshal envelope: %v", err)
		}

		if got := envelope["event_type"]; got != "audit.event" {
			t.Fatalf("unexpected event_type: %v", got)
		}

		if got := envelope["actor_id"]; got != actorID {
			t.Fatalf("unexpected actor_id: %v", got)
		}

		if envelope["event_id"] == "" {
			t.Fatal("expected a generated event_id")
		}

		timestamp, ok := envelope["timestamp"].(string)
		if !ok {
			t.Fatalf("timestamp not a string: %T", envelope["timestamp"])
		}

		if timestamp != createdAt.Format(time.RFC3339) {
			t.Fatalf("unexpected timestamp: %s", timestamp)
		}

		payload, ok := envelope["payload"].(map[string]any)
		if !ok {
			t.Fatalf("payload not a map: %T", envelope["payload"])
		}

		if got := payload["entry_id"]; got != entry.ID {
			t.Fatalf("unexpected entry_id: %v", got)
		}

		if got := payload["action"]; got != string(domain.AuditLoginSuccess) {
			t.Fatalf("unexpected action: %v", got)
		}

		detail, ok := payload["detail"].(map[string]any)
		if !ok {
			t.Fatalf("detail not a map: %T", payload["detail"])
		}

		if detail["ip"] != "203.0.113.7" {
			t.Fatalf("detail did not round-trip: %v", detail)
		}

		metadata, ok := envelope["metadata"].(map[string]any)
		if !ok {
			t.Fatalf("envelope metadata not a map: %T", envelope["metadata"])
		}

		if metadata["service"] != "auth-service" {
			t.Fatalf("unexpected metadata service: %v", metadata["service"])
		}

		if metadata["environment"] != "test" {
			t.Fatalf("unexpected metadata environment: %v", metadata["environment"])
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message on async producer input channel")
	}
}

func TestPublishAuditEventWithoutActor(t *testing.T) {
	asyncProducer := newFakeAsyncProducer()
	publisher := newTestPublisher(t, asyncProducer)

	entry := domain.AuditEntry{
		ID:        "entry-456",
		Action:    domain.AuditLoginFail,
		Detail:    map[string]any{"reason": "unknown email"},
		CreatedAt: time.Date(2026, 3, 14, 9, 20, 0, 0, time.UTC),
	}

	if err := publisher.PublishAuditEvent(context.Background(), entry); err != nil {
		t.Fatalf("PublishAuditEvent returned error: %v", err)
	}

	select {
	case msg := <-asyncProducer.input:
		bytes, err := msg.Value.Encode()
		if err != nil {
			t.Fatalf("Value.Encode returned error: %v", err)
		}

		var envelope map[string]any
		if err := json.Unmarshal(bytes, &envelope); err != nil {
			t.Fatalf("failed to unmarshal envelope: %v", err)
		}

		if _, present := envelope["actor_id"]; present {
			t.Fatalf("expected actor_id to be omitted, got %v", envelope["actor_id"])
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message on async producer input channel")
	}
}

func TestTopicName(t *testing.T) {
	producer := &Producer{cfg: config.KafkaSettings{TopicPrefix: "auth."}}

	cases := map[string]string{
		"audit.event":      "auth.audit.event",
		"auth.audit.event": "auth.audit.event",
	}
	for eventType, want := range cases {
		if got := producer.TopicName(eventType); got != want {
			t.Fatalf("TopicName(%q) = %q, want %q", eventType, got, want)
		}
	}

	bare := &Producer{cfg: config.KafkaSettings{}}
	if got := bare.TopicName("audit.event"); got != "audit.event" {
		t.Fatalf("expected raw topic without prefix, got %q", got)
	}
}
