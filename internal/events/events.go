package events

import (
	"time"

	"github.com/google/uuid"
)

// FetchTimeout is the default timeout for batch fetching messages from consumers.
const FetchTimeout = 2 * time.Second

// StreamEvents holds all audit events.
const StreamEvents = "COPYSNAP_EVENTS"

// SubjectAuditEvent is the subject audit events are published on.
const SubjectAuditEvent = "copysnap.events.audit"

// Event types recorded in the audit trail.
const (
	EventCopyGenerated    = "copy_generated"
	EventQuotaDenied      = "quota_denied"
	EventSubscriptionFlip = "subscription_changed"
	EventAdminAdded       = "admin_added"
	EventAdminRemoved     = "admin_removed"
	EventUsersReset       = "users_reset"
)

// AuditEvent is published for compliance/audit logging.
type AuditEvent struct {
	UserID    uuid.UUID `json:"user_id"`
	EventType string    `json:"event_type"`
	Severity  string    `json:"severity"` // info, warn, error
	Details   string    `json:"details"`
	Timestamp time.Time `json:"timestamp"`
}
