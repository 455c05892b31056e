package verification

import (
	"github.com/ARUMANDESU/storefront-identity/internal/domain/event"
	"github.com/ARUMANDESU/storefront-identity/internal/domain/user"
)

const EventStreamName = "events_verification"

// CodeIssued never carries the code or its hash.
type CodeIssued struct {
	event.Header
	event.Otel
	CodeID  ID      `json:"code_id"`
	UserID  user.ID `json:"user_id"`
	Purpose Purpose `json:"purpose"`
}

func (e *CodeIssued) GetStreamName() string {
	return EventStreamName
}

type ResetCodeActivated struct {
	event.Header
	event.Otel
	CodeID ID      `json:"code_id"`
	UserID user.ID `json:"user_id"`
}

func (e *ResetCodeActivated) GetStreamName() string {
	return EventStreamName
}
