package event

import (
	"time"

	"github.com/google/uuid"
)

// Event is a domain fact that is published to the outbox stream named by
// GetStreamName after the aggregate that raised it is persisted.
type Event interface {
	GetEventHeader() Header
	GetStreamName() string
}

type Header struct {
	ID         uuid.UUID         `json:"id"`
	OccurredAt time.Time         `json:"occurred_at"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

func (h *Header) GetEventHeader() Header {
	return *h
}

func NewEventHeader() Header {
	return Header{
		ID:         uuid.New(),
		OccurredAt: time.Now().UTC(),
	}
}

// Recorder collects events raised by an aggregate until they are committed.
type Recorder struct {
	events []Event
}

func (r *Recorder) AddEvent(e Event) {
	if r == nil {
		return
	}
	r.events = append(r.events, e)
}

func (r *Recorder) GetUncommittedEvents() []Event {
	if r == nil {
		return nil
	}
	return r.events
}

func (r *Recorder) MarkEventsAsCommitted() {
	if r == nil {
		return
	}
	r.events = nil
}
