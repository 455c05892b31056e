package mocks

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ARUMANDESU/storefront-identity/internal/domain/verification"
)

// MailQueue records code mails instead of handing them to a worker.
type MailQueue struct {
	mu     sync.Mutex
	queued []verification.SendCodeMail
	err    error
}

func NewMailQueue() *MailQueue {
	return &MailQueue{}
}

func (q *MailQueue) EnqueueCodeMail(_ context.Context, m *verification.SendCodeMail) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.err != nil {
		return q.err
	}
	q.queued = append(q.queued, *m)
	return nil
}

func (q *MailQueue) Fail(err error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.err = err
}

func (q *MailQueue) Queued() []verification.SendCodeMail {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]verification.SendCodeMail{}, q.queued...)
}

func (q *MailQueue) AssertEmpty(t *testing.T) {
	t.Helper()
	require.Empty(t, q.Queued(), "no code mail should be queued")
}

// RequireLast returns the most recently queued mail.
func (q *MailQueue) RequireLast(t *testing.T) verification.SendCodeMail {
	t.Helper()
	queued := q.Queued()
	require.NotEmpty(t, queued, "expected a queued code mail")
	return queued[len(queued)-1]
}
