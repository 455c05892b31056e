package cmd

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/ARUMANDESU/storefront-identity/internal/domain/user"
	"github.com/ARUMANDESU/storefront-identity/internal/domain/verification"
	"github.com/ARUMANDESU/storefront-identity/pkg/errorx"
)

// issuer persists a new code for a user and hands the plaintext to the mail
// queue. Both issue handlers share it.
type issuer struct {
	repo      Repo
	mailqueue MailQueue
	clock     Clock
	issued    metric.Int64Counter
}

func (i *issuer) issue(ctx context.Context, u *user.User, purpose verification.Purpose) error {
	const op = "cmd.issuer.issue"
	span := trace.SpanFromContext(ctx)

	code, plaintext, err := verification.NewCode(u.ID(), purpose, i.clock.now())
	if err != nil {
		return errorx.Wrap(err, op)
	}
	span.SetAttributes(attribute.String("code.id", code.ID().String()))

	if err := i.repo.SaveCode(ctx, code); err != nil {
		return errorx.Wrap(err, op)
	}
	span.AddEvent("code saved")

	if err := i.mailqueue.EnqueueCodeMail(ctx, verification.NewSendCodeMail(u, code, plaintext)); err != nil {
		return errorx.Wrap(err, op)
	}
	span.AddEvent("code mail enqueued")

	recordIssued(ctx, i.issued, purpose)
	return nil
}
