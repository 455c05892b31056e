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

type VerifyResetCode struct {
	Email string
	Code  string
}

type VerifyResetCodeHandler struct {
	tracer trace.Tracer
	logger *slog.Logger
	clock  Clock
	repo   Repo
}

type VerifyResetCodeHandlerArgs struct {
	Tracer trace.Tracer
	Logger *slog.Logger
	Clock  Clock
	Repo   Repo
}

func NewVerifyResetCodeHandler(args VerifyResetCodeHandlerArgs) *VerifyResetCodeHandler {
	if args.Tracer == nil {
		args.Tracer = tracer
	}
	if args.Logger == nil {
		args.Logger = logger
	}

	return &VerifyResetCodeHandler{
		tracer: args.Tracer,
		logger: args.Logger,
		clock:  args.Clock,
		repo:   args.Repo,
	}
}

// Handle activates the latest reset code, which opens the password change window.
func (h *VerifyResetCodeHandler) Handle(ctx context.Context, cmd VerifyResetCode) error {
	const op = "cmd.VerifyResetCodeHandler.Handle"
	ctx, span := h.tracer.Start(ctx, "VerifyResetCodeHandler.Handle",
		trace.WithAttributes(attribute.String("email", logging.RedactEmail(cmd.Email))),
	)
	defer span.End()

	now := h.clock.now()
	err := h.repo.UpdateLatestCode(ctx, cmd.Email, verification.PurposePasswordReset, false,
		func(ctx context.Context, u *user.User, c *verification.Code) error {
			if err := u.RequireConfirmedEmail(); err != nil {
				return err
			}
			if err := c.ActivateReset(cmd.Code, now); err != nil {
				trace.SpanFromContext(ctx).AddEvent("reset code rejected")
				return err
			}
			return nil
		})
	if errorx.IsNotFound(err) {
		otelx.RecordSpanError(span, err, "user not found")
		return errorx.Wrap(verification.ErrInvalidCredentialState.WithCause(err), op)
	}
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to verify reset code")
		return errorx.Wrap(err, op)
	}

	h.logger.InfoContext(ctx, "reset code activated", slog.String("email", logging.RedactEmail(cmd.Email)))
	return nil
}
