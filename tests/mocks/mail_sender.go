package mocks

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ARUMANDESU/storefront-identity/internal/domain/mail"
)

type MockMailSender struct {
	mu        sync.Mutex
	sentMails []mail.Payload
	sentCh    chan mail.Payload
	err       error
}

func NewMockMailSender() *MockMailSender {
	return &MockMailSender{
		sentMails: make([]mail.Payload, 0),
		sentCh:    make(chan mail.Payload, 100),
	}
}

func (m *MockMailSender) SendMail(_ context.Context, payload mail.Payload) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	m.sentMails = append(m.sentMails, payload)
	select {
	case m.sentCh <- payload:
	default:
	}
	return nil
}

// Sent delivers every payload as it is sent. Use it to wait for asynchronous delivery.
func (m *MockMailSender) Sent() <-chan mail.Payload {
	return m.sentCh
}

func (m *MockMailSender) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MockMailSender) GetSentMails() []mail.Payload {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]mail.Payload{}, m.sentMails...)
}

func (m *MockMailSender) AssertMailSent(t *testing.T, email, subject string) {
	t.Helper()
	for _, sent := range m.GetSentMails() {
		if sent.To == email && strings.Contains(sent.Subject, subject) {
			return
		}
	}
	t.Errorf("Expected mail to %s with subject containing %s not found", email, subject)
}

func (m *MockMailSender) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sentMails = m.sentMails[:0]
	m.err = nil
	for {
		select {
		case <-m.sentCh:
		default:
			return
		}
	}
}

// WaitForMail returns the next mail sent to addr, skipping mail to others.
func (m *MockMailSender) WaitForMail(t *testing.T, addr string, timeout time.Duration) mail.Payload {
	t.Helper()

	deadline := time.After(timeout)
	for {
		select {
		case p := <-m.sentCh:
			if p.To == addr {
				return p
			}
		case <-deadline:
			t.Fatalf("timeout waiting for mail to %s", addr)
			return mail.Payload{}
		}
	}
}
