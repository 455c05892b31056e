package cmd

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ARUMANDESU/storefront-identity/internal/domain/user"
	"github.com/ARUMANDESU/storefront-identity/internal/domain/verification"
	"github.com/ARUMANDESU/storefront-identity/pkg/errorx"
	"github.com/ARUMANDESU/storefront-identity/pkg/logging"
	"github.com/ARUMANDESU/storefront-identity/pkg/otelx"
)

type VerifyRegistrationCode struct {
	Email string
	Code  string
}

type VerifyRegistrationCodeHandler struct {
	tracer trace.Tracer
	logger *slog.Logger
	clock  Clock
	repo   Repo
}

type VerifyRegistrationCodeHandlerArgs struct {
	Tracer trace.Tracer
	Logger *slog.Logger
	Clock  Clock
	Repo   Repo
}

func NewVerifyRegistrationCodeHandler(args VerifyRegistrationCodeHandlerArgs) *VerifyRegistrationCodeHandler {
	if args.Tracer == nil {
		args.Tracer = tracer
	}
	if args.Logger == nil {
		args.Logger = logger
	}

	return &VerifyRegistrationCodeHandler{
		tracer: args.Tracer,
		logger: args.Logger,
		clock:  args.Clock,
		repo:   args.Repo,
	}
}

// Handle consumes the latest registration code and confirms the email in
// the same transaction.
func (h *VerifyRegistrationCodeHandler) Handle(ctx context.Context, cmd VerifyRegistrationCode) error {
	const op = "cmd.VerifyRegistrationCodeHandler.Handle"
	ctx, span := h.tracer.Start(ctx, "VerifyRegistrationCodeHandler.Handle",
		trace.WithAttributes(attribute.String("email", logging.RedactEmail(cmd.Email))),
	)
	defer span.End()

	now := h.clock.now()
	err := h.repo.UpdateLatestCode(ctx, cmd.Email, verification.PurposeRegistrationConfirmation, false,
		func(ctx context.Context, u *user.User, c *verification.Code) error {
			span := trace.SpanFromContext(ctx)

			if err := c.VerifyRegistration(cmd.Code, now); err != nil {
				span.AddEvent("registration code rejected")
				return err
			}
			if err := u.ConfirmEmail(now); err != nil {
				return err
			}

			span.AddEvent("email confirmed")
			return nil
		})
	if errorx.IsNotFound(err) {
		otelx.RecordSpanError(span, err, "user not found")
		return errorx.Wrap(verification.ErrInvalidCredentialState.WithCause(err), op)
	}
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to verify registration code")
		return errorx.Wrap(err, op)
	}

	h.logger.InfoContext(ctx, "email confirmed", slog.String("email", logging.RedactEmail(cmd.Email)))
	return nil
}
