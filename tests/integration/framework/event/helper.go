package event

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ARUMANDESU/storefront-identity/internal/domain/user"
	"github.com/ARUMANDESU/storefront-identity/internal/domain/verification"
)

var streams = []string{user.EventStreamName, verification.EventStreamName}

type Helper struct {
	pool *pgxpool.Pool
}

func NewHelper(pool *pgxpool.Pool) *Helper {
	return &Helper{pool: pool}
}

// WaitForEvent waits for an event to appear in the outbox of stream.
func (h *Helper) WaitForEvent(t *testing.T, stream, eventType string, timeout time.Duration) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if h.count(t, stream, eventType) > 0 {
			return
		}
		select {
		case <-ctx.Done():
			t.Fatalf("timeout waiting for event %s", eventType)
		case <-ticker.C:
		}
	}
}

func (h *Helper) count(t *testing.T, stream, eventType string) int {
	t.Helper()

	var count int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM watermill_%s WHERE metadata->>'name' = $1`, stream)
	err := h.pool.QueryRow(context.Background(), query, eventType).Scan(&count)
	require.NoError(t, err)
	return count
}

// AssertEvent returns the latest event of eventType in stream.
func (h *Helper) AssertEvent(t *testing.T, stream, eventType string) *EventAssertion {
	t.Helper()

	h.WaitForEvent(t, stream, eventType, 5*time.Second)

	var payload json.RawMessage
	var metadata json.RawMessage
	var offset int64

	query := fmt.Sprintf(`
        SELECT payload, metadata, "offset"
        FROM watermill_%s
        WHERE metadata->>'name' = $1
        ORDER BY "offset" DESC
        LIMIT 1
    `, stream)

	err := h.pool.QueryRow(context.Background(), query, eventType).Scan(&payload, &metadata, &offset)
	require.NoError(t, err, "event %s not found", eventType)

	return &EventAssertion{
		t:         t,
		eventType: eventType,
		payload:   payload,
		metadata:  metadata,
		offset:    offset,
	}
}

func (h *Helper) AssertNoEvent(t *testing.T, stream, eventType string) {
	t.Helper()
	assert.Zero(t, h.count(t, stream, eventType), "expected no %s events", eventType)
}

func (h *Helper) AssertEventCount(t *testing.T, stream, eventType string, expected int) {
	t.Helper()
	assert.Equal(t, expected, h.count(t, stream, eventType), "unexpected %s event count", eventType)
}

func (h *Helper) AssertUserRegistered(t *testing.T, email string) *EventAssertion {
	t.Helper()
	return h.AssertEvent(t, user.EventStreamName, "user.UserRegistered").HasField("email", email)
}

func (h *Helper) AssertEmailConfirmed(t *testing.T) *EventAssertion {
	t.Helper()
	return h.AssertEvent(t, user.EventStreamName, "user.EmailConfirmed")
}

func (h *Helper) AssertPasswordChanged(t *testing.T, email string) *EventAssertion {
	t.Helper()
	return h.AssertEvent(t, user.EventStreamName, "user.PasswordChanged").HasField("email", email)
}

func (h *Helper) AssertCodeIssued(t *testing.T, purpose verification.Purpose) *EventAssertion {
	t.Helper()
	return h.AssertEvent(t, verification.EventStreamName, "verification.CodeIssued").HasField("purpose", purpose.String())
}

// AssertNeverContains fails if any stored event mentions secret.
func (h *Helper) AssertNeverContains(t *testing.T, secret string) {
	t.Helper()

	for _, stream := range streams {
		for _, rec := range h.GetEventStream(t, stream) {
			assert.NotContains(t, string(rec.Payload), secret, "event payload in %s leaks a secret", stream)
		}
	}
}

type EventAssertion struct {
	t         *testing.T
	eventType string
	payload   json.RawMessage
	metadata  json.RawMessage
	offset    int64
}

func (a *EventAssertion) Parse(event any) *EventAssertion {
	a.t.Helper()
	err := json.Unmarshal(a.payload, event)
	require.NoError(a.t, err, "failed to parse event payload")
	return a
}

func (a *EventAssertion) HasField(field string, expected any) *EventAssertion {
	a.t.Helper()

	var data map[string]any
	err := json.Unmarshal(a.payload, &data)
	require.NoError(a.t, err)

	actual, exists := data[field]
	require.True(a.t, exists, "field %s not found in %s", field, a.eventType)
	assert.Equal(a.t, expected, actual, "unexpected value for field %s", field)

	return a
}

func (a *EventAssertion) GetPayload() json.RawMessage {
	return a.payload
}

func (h *Helper) GetEventStream(t *testing.T, streamName string) []EventRecord {
	t.Helper()

	query := fmt.Sprintf(`
        SELECT "offset", payload, metadata
        FROM watermill_%s
        ORDER BY "offset"
    `, streamName)

	rows, err := h.pool.Query(context.Background(), query)
	require.NoError(t, err)
	defer rows.Close()

	var events []EventRecord
	for rows.Next() {
		var e EventRecord
		err := rows.Scan(&e.Offset, &e.Payload, &e.Metadata)
		require.NoError(t, err)
		events = append(events, e)
	}
	require.NoError(t, rows.Err())

	return events
}

type EventRecord struct {
	Offset   int64
	Payload  json.RawMessage
	Metadata json.RawMessage
}

// ClearAllEvents empties the outboxes. Consumer offsets are kept so running
// subscribers do not replay anything.
func (h *Helper) ClearAllEvents(t *testing.T) {
	t.Helper()

	for _, stream := range streams {
		_, err := h.pool.Exec(context.Background(), fmt.Sprintf("DELETE FROM watermill_%s", stream))
		require.NoError(t, err)
	}
}
