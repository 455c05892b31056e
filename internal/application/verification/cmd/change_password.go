package cmd

import (
	"context"
	"log/slog"

	"github.com/ARUMANDESU/validation"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ARUMANDESU/storefront-identity/internal/domain/user"
	"github.com/ARUMANDESU/storefront-identity/internal/domain/verification"
	"github.com/ARUMANDESU/storefront-identity/pkg/errorx"
	"github.com/ARUMANDESU/storefront-identity/pkg/logging"
	"github.com/ARUMANDESU/storefront-identity/pkg/otelx"
	"github.com/ARUMANDESU/storefront-identity/pkg/validationx"
)

type ChangePassword struct {
	Email       string
	Code        string
	NewPassword string
}

type ChangePasswordHandler struct {
	tracer      trace.Tracer
	logger      *slog.Logger
	clock       Clock
	repo        Repo
	credentials CredentialStore
}

type ChangePasswordHandlerArgs struct {
	Tracer          trace.Tracer
	Logger          *slog.Logger
	Clock           Clock
	Repo            Repo
	CredentialStore CredentialStore
}

func NewChangePasswordHandler(args ChangePasswordHandlerArgs) *ChangePasswordHandler {
	if args.Tracer == nil {
		args.Tracer = tracer
	}
	if args.Logger == nil {
		args.Logger = logger
	}

	return &ChangePasswordHandler{
		tracer:      args.Tracer,
		logger:      args.Logger,
		clock:       args.Clock,
		repo:        args.Repo,
		credentials: args.CredentialStore,
	}
}

// Handle spends an activated reset code and replaces the password. Code
// deactivation and both credential steps commit together or not at all.
func (h *ChangePasswordHandler) Handle(ctx context.Context, cmd ChangePassword) error {
	const op = "cmd.ChangePasswordHandler.Handle"
	ctx, span := h.tracer.Start(ctx, "ChangePasswordHandler.Handle",
		trace.WithAttributes(attribute.String("email", logging.RedactEmail(cmd.Email))),
	)
	defer span.End()

	if err := validation.Validate(cmd.NewPassword, validationx.PasswordRules...); err != nil {
		otelx.RecordSpanError(span, err, "invalid new password")
		return errorx.Wrap(err, op)
	}
	passHash, err := user.NewPasswordHash(cmd.NewPassword)
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to hash new password")
		return errorx.Wrap(err, op)
	}

	now := h.clock.now()
	err = h.repo.UpdateLatestCode(ctx, cmd.Email, verification.PurposePasswordReset, true,
		func(ctx context.Context, u *user.User, c *verification.Code) error {
			span := trace.SpanFromContext(ctx)

			if err := u.RequireConfirmedEmail(); err != nil {
				return err
			}
			if err := c.ConsumeReset(cmd.Code, now); err != nil {
				span.AddEvent("reset code rejected")
				return err
			}

			if err := h.credentials.RemovePassword(ctx, u.ID()); err != nil {
				span.AddEvent("failed to remove password")
				return verification.ErrCredentialUpdateFailed.WithCause(err)
			}
			if err := h.credentials.AddPassword(ctx, u.ID(), passHash); err != nil {
				span.AddEvent("failed to add password")
				return verification.ErrCredentialUpdateFailed.WithCause(err)
			}

			u.PasswordChanged(passHash, now)
			return nil
		})
	if errorx.IsNotFound(err) {
		otelx.RecordSpanError(span, err, "user not found")
		return errorx.Wrap(verification.ErrInvalidCredentialState.WithCause(err), op)
	}
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to change password")
		return errorx.Wrap(err, op)
	}

	h.logger.InfoContext(ctx, "password changed", slog.String("email", logging.RedactEmail(cmd.Email)))
	return nil
}
