package mailevent

import (
	"context"
	"log/slog"
	"time"

	"github.com/ARUMANDESU/validation"
	"github.com/ARUMANDESU/validation/is"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ARUMANDESU/storefront-identity/internal/application/mail/render"
	"github.com/ARUMANDESU/storefront-identity/internal/domain/mail"
	"github.com/ARUMANDESU/storefront-identity/internal/domain/user"
	"github.com/ARUMANDESU/storefront-identity/pkg/logging"
	"github.com/ARUMANDESU/storefront-identity/pkg/otelx"
)

const PasswordChangedSubject = "Your password has been changed"

// HandlePasswordChanged notifies the account owner that their password was replaced.
func (h *MailEventHandler) HandlePasswordChanged(ctx context.Context, e *user.PasswordChanged) error {
	if e == nil {
		return nil
	}

	l := h.logger.With(
		slog.String("event", "PasswordChanged"),
		slog.String("user.id", e.UserID.String()),
		slog.String("user.email", logging.RedactEmail(e.Email)))

	ctx, span := h.tracer.Start(
		ctx,
		"MailEventHandler.HandlePasswordChanged",
		trace.WithNewRoot(),
		trace.WithLinks(trace.LinkFromContext(e.Extract())),
		trace.WithAttributes(
			attribute.String("user.id", e.UserID.String()),
			attribute.String("user.email", logging.RedactEmail(e.Email))),
	)
	defer span.End()

	err := validation.ValidateStruct(e, validation.Field(&e.Email, validation.Required, is.EmailFormat))
	if err != nil {
		otelx.RecordSpanError(span, err, "invalid password changed event")
		l.ErrorContext(ctx, "invalid password changed event", "error", err.Error())
		return err
	}

	changedAt := e.OccurredAt
	if changedAt.IsZero() {
		changedAt = time.Now().UTC()
	}
	name := e.DisplayName
	if name == "" {
		name = e.Email
	}

	body, err := h.renderer.PasswordChanged(mailrender.PasswordChangedData{
		UserName:  name,
		ChangedAt: changedAt.Format("2006-01-02 15:04 MST"),
		Year:      changedAt.Year(),
	})
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to render mail")
		l.ErrorContext(ctx, "failed to render mail", "error", err.Error())
		return err
	}

	err = h.mailsender.SendMail(ctx, mail.Payload{To: e.Email, Subject: PasswordChangedSubject, HTML: body})
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to send mail")
		l.ErrorContext(ctx, "failed to send mail", "error", err.Error())
		return err
	}

	return nil
}
