package mailqueue

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/components/cqrs"

	"github.com/ARUMANDESU/storefront-identity/internal/domain/verification"
)

// Queue hands code mails to the in-process command bus. The bus must be
// backed by a memory transport, since the commands carry plaintext codes.
type Queue struct {
	bus *cqrs.CommandBus
}

func New(bus *cqrs.CommandBus) *Queue {
	if bus == nil {
		panic("command bus cannot be nil")
	}
	return &Queue{bus: bus}
}

func (q *Queue) EnqueueCodeMail(ctx context.Context, cmd *verification.SendCodeMail) error {
	if err := q.bus.Send(ctx, cmd); err != nil {
		return fmt.Errorf("failed to enqueue code mail: %w", err)
	}
	return nil
}
