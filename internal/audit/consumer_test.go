package audit

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DreadX3/copy-snap-magic-words/internal/events"
)

func TestAuditEventRoundTrip(t *testing.T) {
	userID := uuid.New()

	event := events.AuditEvent{
		UserID:    userID,
		EventType: events.EventCopyGenerated,
		Severity:  "info",
		Details:   "3 variants generated",
		Timestamp: time.Now().UTC(),
	}

	data, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded events.AuditEvent
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, userID, decoded.UserID)
	assert.Equal(t, events.EventCopyGenerated, decoded.EventType)
	assert.Equal(t, "info", decoded.Severity)
	assert.Equal(t, "3 variants generated", decoded.Details)
}

func TestConvertEventToLog(t *testing.T) {
	event := events.AuditEvent{
		UserID:    uuid.New(),
		EventType: events.EventAdminRemoved,
		Severity:  "warn",
		Details:   "removed admin ops@copysnap.ai",
		Timestamp: time.Now().UTC(),
	}

	log := convertEventToLog(event)

	assert.NotEqual(t, uuid.Nil, log.ID)
	assert.Equal(t, event.UserID, log.UserID)
	assert.Equal(t, events.EventAdminRemoved, log.EventType)
	assert.Equal(t, "warn", log.Severity)
	assert.Equal(t, event.Timestamp, log.CreatedAt)

	var details map[string]string
	require.NoError(t, json.Unmarshal(log.Details, &details))
	assert.Equal(t, "removed admin ops@copysnap.ai", details["message"])
}

func TestDefaultListParams(t *testing.T) {
	params := DefaultListParams()
	assert.Equal(t, 1, params.Page)
	assert.Equal(t, 20, params.PageSize)
}
