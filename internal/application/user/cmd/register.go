package usercmd

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ARUMANDESU/storefront-identity/internal/domain/user"
	"github.com/ARUMANDESU/storefront-identity/pkg/env"
	"github.com/ARUMANDESU/storefront-identity/pkg/errorx"
	"github.com/ARUMANDESU/storefront-identity/pkg/logging"
	"github.com/ARUMANDESU/storefront-identity/pkg/otelx"
)

var (
	tracer = otel.Tracer("storefront-identity/internal/application/user/cmd")
	logger = otelslog.NewLogger("storefront-identity/internal/application/user/cmd")
)

type UserRepo interface {
	// SaveUser stores u together with its password credential.
	SaveUser(ctx context.Context, u *user.User) error
}

type Register struct {
	Email       string
	DisplayName string
	Password    string
}

type RegisterHandler struct {
	tracer trace.Tracer
	logger *slog.Logger
	mode   env.Mode
	repo   UserRepo
}

type RegisterHandlerArgs struct {
	Tracer   trace.Tracer
	Logger   *slog.Logger
	Mode     env.Mode
	UserRepo UserRepo
}

func NewRegisterHandler(args RegisterHandlerArgs) *RegisterHandler {
	if args.Tracer == nil {
		args.Tracer = tracer
	}
	if args.Logger == nil {
		args.Logger = logger
	}

	return &RegisterHandler{
		tracer: args.Tracer,
		logger: args.Logger,
		mode:   args.Mode,
		repo:   args.UserRepo,
	}
}

// Handle creates an unconfirmed account. The caller is expected to request a
// registration code next.
func (h *RegisterHandler) Handle(ctx context.Context, cmd Register) (user.ID, error) {
	const op = "usercmd.RegisterHandler.Handle"
	ctx, span := h.tracer.Start(ctx, "RegisterHandler.Handle", trace.WithAttributes(
		attribute.String("user.email", logging.RedactEmail(cmd.Email)),
		attribute.String("mode", h.mode.String()),
	))
	defer span.End()

	u, err := user.Register(user.RegisterArgs{
		Email:       cmd.Email,
		DisplayName: cmd.DisplayName,
		Password:    cmd.Password,
		Mode:        h.mode,
	})
	if err != nil {
		otelx.RecordSpanError(span, err, "invalid registration")
		return user.ID{}, errorx.Wrap(err, op)
	}

	if err := h.repo.SaveUser(ctx, u); err != nil {
		otelx.RecordSpanError(span, err, "failed to save user")
		return user.ID{}, errorx.Wrap(err, op)
	}

	span.SetAttributes(attribute.String("user.id", u.ID().String()))
	h.logger.InfoContext(ctx, "user registered", slog.String("user.id", u.ID().String()))
	return u.ID(), nil
}
