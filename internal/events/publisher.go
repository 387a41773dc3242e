package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"
)

// Publisher publishes audit events to NATS JetStream. A nil Publisher is
// valid and drops events, so callers never need to nil-check.
type Publisher struct {
	js jetstream.JetStream
}

// NewPublisher creates a new Publisher.
func NewPublisher(js jetstream.JetStream) *Publisher {
	return &Publisher{js: js}
}

// Audit publishes an audit event. Failures are logged, not returned:
// the audit trail must never block the user-facing operation.
func (p *Publisher) Audit(ctx context.Context, userID uuid.UUID, eventType, severity, details string) {
	if p == nil || p.js == nil {
		return
	}

	event := AuditEvent{
		UserID:    userID,
		EventType: eventType,
		Severity:  severity,
		Details:   details,
		Timestamp: time.Now().UTC(),
	}

	if err := p.publish(ctx, SubjectAuditEvent, event); err != nil {
		slog.Warn("publishing audit event", "error", err, "event_type", eventType)
	}
}

func (p *Publisher) publish(ctx context.Context, subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling event for %s: %w", subject, err)
	}
	_, err = p.js.Publish(ctx, subject, payload)
	if err != nil {
		return fmt.Errorf("publishing to %s: %w", subject, err)
	}
	return nil
}
