package mocks

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ARUMANDESU/storefront-identity/internal/domain/event"
)

// EventRepo stands in for the outbox tables. Events land here in commit order.
type EventRepo struct {
	mu     sync.Mutex
	events []event.Event
}

func NewEventRepo() *EventRepo {
	return &EventRepo{}
}

func (r *EventRepo) Events() []event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]event.Event(nil), r.events...)
}

// Stream returns the committed events that would be written to stream.
func (r *EventRepo) Stream(stream string) []event.Event {
	var out []event.Event
	for _, e := range r.Events() {
		if e.GetStreamName() == stream {
			out = append(out, e)
		}
	}
	return out
}

func (r *EventRepo) AssertEventCount(t *testing.T, want int) *EventRepo {
	t.Helper()

	assert.Len(t, r.Events(), want, "committed events")
	return r
}

// AssertNeverContains fails when any committed event serializes secret,
// the way a plaintext code would leak into the outbox.
func (r *EventRepo) AssertNeverContains(t *testing.T, secret string) *EventRepo {
	t.Helper()

	for _, e := range r.Events() {
		payload, err := json.Marshal(e)
		require.NoError(t, err)
		assert.NotContains(t, string(payload), secret, "%T leaks a secret", e)
	}
	return r
}

func (r *EventRepo) appendEvents(events ...event.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, events...)
}

// RequireEventExists returns the first committed event of the same type as
// like and checks that it carries a header.
func RequireEventExists[T event.Event](t *testing.T, r *EventRepo, like T) T {
	t.Helper()

	for _, e := range r.Events() {
		if got, ok := e.(T); ok {
			assert.NotEmpty(t, got.GetEventHeader(), "event header")
			return got
		}
	}

	require.FailNowf(t, "event not committed", "%T", like)
	var zero T
	return zero
}
