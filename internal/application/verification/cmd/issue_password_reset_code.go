package cmd

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/ARUMANDESU/storefront-identity/internal/domain/verification"
	"github.com/ARUMANDESU/storefront-identity/pkg/errorx"
	"github.com/ARUMANDESU/storefront-identity/pkg/logging"
	"github.com/ARUMANDESU/storefront-identity/pkg/otelx"
)

type IssuePasswordResetCode struct {
	Email string
}

type IssuePasswordResetCodeHandler struct {
	tracer trace.Tracer
	logger *slog.Logger
	repo   Repo
	issuer *issuer
}

type IssuePasswordResetCodeHandlerArgs struct {
	Tracer    trace.Tracer
	Logger    *slog.Logger
	Meter     metric.Meter
	Clock     Clock
	Repo      Repo
	MailQueue MailQueue
}

func NewIssuePasswordResetCodeHandler(args IssuePasswordResetCodeHandlerArgs) *IssuePasswordResetCodeHandler {
	if args.Tracer == nil {
		args.Tracer = tracer
	}
	if args.Logger == nil {
		args.Logger = logger
	}

	return &IssuePasswordResetCodeHandler{
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

// Handle issues an inactive reset code. Like registration, an unknown email
// is reported as success.
func (h *IssuePasswordResetCodeHandler) Handle(ctx context.Context, cmd IssuePasswordResetCode) error {
	const op = "cmd.IssuePasswordResetCodeHandler.Handle"
	ctx, span := h.tracer.Start(ctx, "IssuePasswordResetCodeHandler.Handle",
		trace.WithAttributes(attribute.String("email", logging.RedactEmail(cmd.Email))),
	)
	defer span.End()

	u, err := h.repo.GetUserByEmail(ctx, cmd.Email)
	if errorx.IsNotFound(err) {
		span.AddEvent("user not found, skipping")
		return nil
	}
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to get user by email")
		return errorx.Wrap(err, op)
	}

	if err := h.issuer.issue(ctx, u, verification.PurposePasswordReset); err != nil {
		otelx.RecordSpanError(span, err, "failed to issue password reset code")
		return errorx.Wrap(err, op)
	}

	h.logger.InfoContext(ctx, "password reset code issued", slog.String("user.id", u.ID().String()))
	return nil
}
