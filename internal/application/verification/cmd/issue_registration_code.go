package cmd

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/ARUMANDESU/storefront-identity/internal/domain/user"
	"github.com/ARUMANDESU/storefront-identity/internal/domain/verification"
	"github.com/ARUMANDESU/storefront-identity/pkg/errorx"
	"github.com/ARUMANDESU/storefront-identity/pkg/logging"
	"github.com/ARUMANDESU/storefront-identity/pkg/otelx"
)

type IssueRegistrationCode struct {
	Email string
}

type IssueRegistrationCodeHandler struct {
	tracer trace.Tracer
	logger *slog.Logger
	repo   Repo
	issuer *issuer
}

type IssueRegistrationCodeHandlerArgs struct {
	Tracer    trace.Tracer
	Logger    *slog.Logger
	Meter     metric.Meter
	Clock     Clock
	Repo      Repo
	MailQueue MailQueue
}

func NewIssueRegistrationCodeHandler(args IssueRegistrationCodeHandlerArgs) *IssueRegistrationCodeHandler {
	if args.Tracer == nil {
		args.Tracer = tracer
	}
	if args.Logger == nil {
		args.Logger = logger
	}

	return &IssueRegistrationCodeHandler{
		tracer: args.Tracer,
		logger: args.Logger,
		repo:   args.Repo,
		issuer: &issuer{
			repo:      args.Repo,
			mailqueue: args.MailQueue,
			clock:     args.Clock,
			issued:    newIssuedCounter(args.Meter),
		},
	}
}

// Handle issues a registration code. An unknown email succeeds without
// side effects so the response does not reveal which addresses exist.
func (h *IssueRegistrationCodeHandler) Handle(ctx context.Context, cmd IssueRegistrationCode) error {
	const op = "cmd.IssueRegistrationCodeHandler.Handle"
	ctx, span := h.tracer.Start(ctx, "IssueRegistrationCodeHandler.Handle",
		trace.WithAttributes(attribute.String("email", logging.RedactEmail(cmd.Email))),
	)
	defer span.End()

	u, err := h.repo.GetUserByEmail(ctx, cmd.Email)
	if errorx.IsNotFound(err) {
		span.AddEvent("user not found, skipping")
		h.logger.DebugContext(ctx, "registration code requested for unknown email",
			slog.String("email", logging.RedactEmail(cmd.Email)))
		return nil
	}
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to get user by email")
		return errorx.Wrap(err, op)
	}

	if u.EmailConfirmed() {
		otelx.RecordSpanError(span, user.ErrAlreadyConfirmed, "email already confirmed")
		return errorx.Wrap(user.ErrAlreadyConfirmed, op)
	}

	if err := h.issuer.issue(ctx, u, verification.PurposeRegistrationConfirmation); err != nil {
		otelx.RecordSpanError(span, err, "failed to issue registration code")
		return errorx.Wrap(err, op)
	}

	h.logger.InfoContext(ctx, "registration code issued", slog.String("user.id", u.ID().String()))
	return nil
}
