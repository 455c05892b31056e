package user

import "github.com/ARUMANDESU/storefront-identity/internal/domain/event"

const EventStreamName = "events_user"

type UserRegistered struct {
	event.Header
	event.Otel
	UserID      ID     `json:"user_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

func (e *UserRegistered) GetStreamName() string {
	return EventStreamName
}

type EmailConfirmed struct {
	event.Header
	event.Otel
	UserID ID     `json:"user_id"`
	Email  string `json:"email"`
}

func (e *EmailConfirmed) GetStreamName() string {
	return EventStreamName
}

type PasswordChanged struct {
	event.Header
	event.Otel
	UserID      ID     `json:"user_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

func (e *PasswordChanged) GetStreamName() string {
	return EventStreamName
}
