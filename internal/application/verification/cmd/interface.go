package cmd

import (
	"context"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/ARUMANDESU/storefront-identity/internal/domain/user"
	"github.com/ARUMANDESU/storefront-identity/internal/domain/verification"
)

var (
	tracer = otel.Tracer("storefront-identity/application/verification/cmd")
	logger = otelslog.NewLogger("storefront-identity/application/verification/cmd")
	meter  = otel.Meter("storefront-identity/application/verification/cmd")
)

// UpdateCodeFn mutates the user and the latest matching code inside one
// transaction. c is nil when the user has no such code.
type UpdateCodeFn = func(ctx context.Context, u *user.User, c *verification.Code) error

type Repo interface {
	GetUserByEmail(ctx context.Context, email string) (*user.User, error)
	// SaveCode stores c and deactivates every other active code of the same
	// owner and purpose.
	SaveCode(ctx context.Context, c *verification.Code) error
	// UpdateLatestCode locks the most recent code of purpose owned by the user
	// with email, optionally considering active codes only, and persists both
	// aggregates after fn succeeds.
	UpdateLatestCode(ctx context.Context, email string, purpose verification.Purpose, activeOnly bool, fn UpdateCodeFn) error
}

// CredentialStore replaces password credentials. Implementations join the
// transaction found in ctx.
type CredentialStore interface {
	RemovePassword(ctx context.Context, userID user.ID) error
	AddPassword(ctx context.Context, userID user.ID, passHash []byte) error
}

type MailQueue interface {
	EnqueueCodeMail(ctx context.Context, m *verification.SendCodeMail) error
}

type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c().UTC()
}

func newIssuedCounter(m metric.Meter) metric.Int64Counter {
	if m == nil {
		m = meter
	}
	counter, err := m.Int64Counter("verification.codes.issued",
		metric.WithDescription("Number of verification codes issued"),
		metric.WithUnit("{code}"),
	)
	if err != nil {
		logger.Error("failed to create verification.codes.issued counter", "error", err)
	}
	return counter
}

func recordIssued(ctx context.Context, counter metric.Int64Counter, purpose verification.Purpose) {
	if counter == nil {
		return
	}
	counter.Add(ctx, 1, metric.WithAttributes(attribute.String("purpose", purpose.String())))
}
