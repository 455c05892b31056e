package mailcmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ARUMANDESU/validation"
	"github.com/ARUMANDESU/validation/is"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ARUMANDESU/storefront-identity/internal/application/mail/render"
	"github.com/ARUMANDESU/storefront-identity/internal/domain/mail"
	"github.com/ARUMANDESU/storefront-identity/internal/domain/verification"
	"github.com/ARUMANDESU/storefront-identity/pkg/errorx"
	"github.com/ARUMANDESU/storefront-identity/pkg/logging"
	"github.com/ARUMANDESU/storefront-identity/pkg/otelx"
	"github.com/ARUMANDESU/storefront-identity/pkg/validationx"
)

var (
	tracer = otel.Tracer("storefront-identity/application/mail/cmd")
	logger = otelslog.NewLogger("storefront-identity/application/mail/cmd")
)

const (
	RegistrationTitle   = "Email Verification"
	RegistrationMessage = "Thank you for registering with our service. To complete your registration"
	ResetTitle          = "Reset Password"
	ResetMessage        = "You have requested to reset your password. To continue"
)

type MailSender interface {
	SendMail(ctx context.Context, payload mail.Payload) error
}

type SendCodeMailHandler struct {
	tracer     trace.Tracer
	logger     *slog.Logger
	mailsender MailSender
	renderer   *mailrender.Renderer
}

type SendCodeMailHandlerArgs struct {
	Tracer     trace.Tracer
	Logger     *slog.Logger
	MailSender MailSender
	Renderer   *mailrender.Renderer
}

func NewSendCodeMailHandler(args SendCodeMailHandlerArgs) *SendCodeMailHandler {
	if args.Tracer == nil {
		args.Tracer = tracer
	}
	if args.Logger == nil {
		args.Logger = logger
	}

	return &SendCodeMailHandler{
		tracer:     args.Tracer,
		logger:     args.Logger,
		mailsender: args.MailSender,
		renderer:   args.Renderer,
	}
}

// Handle renders and delivers a code mail. Failures are logged and returned;
// the issuing request has already completed.
func (h *SendCodeMailHandler) Handle(ctx context.Context, m *verification.SendCodeMail) error {
	if m == nil {
		return nil
	}
	const op = "mailcmd.SendCodeMailHandler.Handle"

	l := h.logger.With(
		slog.String("command", "SendCodeMail"),
		slog.String("code.id", m.CodeID.String()),
		slog.String("purpose", m.Purpose.String()),
		slog.String("email", logging.RedactEmail(m.Email)),
	)
	ctx, span := h.tracer.Start(ctx, "SendCodeMailHandler.Handle", trace.WithAttributes(
		attribute.String("code.id", m.CodeID.String()),
		attribute.String("code.purpose", m.Purpose.String()),
		attribute.String("email", logging.RedactEmail(m.Email)),
	))
	defer span.End()

	err := validation.ValidateStruct(m,
		validation.Field(&m.Email, validation.Required, is.EmailFormat),
		validation.Field(&m.Code, validationx.CodeRules...),
	)
	if err != nil {
		otelx.RecordSpanError(span, err, "invalid code mail")
		l.ErrorContext(ctx, "invalid code mail", slog.Any("error", err))
		return errorx.Wrap(err, op)
	}

	payload, err := h.compose(m)
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to compose code mail")
		l.ErrorContext(ctx, "failed to compose code mail", slog.Any("error", err))
		return errorx.Wrap(err, op)
	}

	if err := h.mailsender.SendMail(ctx, payload); err != nil {
		otelx.RecordSpanError(span, err, "failed to send code mail")
		l.ErrorContext(ctx, "failed to send code mail", slog.Any("error", err))
		return errorx.Wrap(err, op)
	}

	l.DebugContext(ctx, "code mail sent")
	return nil
}

func (h *SendCodeMailHandler) compose(m *verification.SendCodeMail) (mail.Payload, error) {
	data := mailrender.VerificationCodeData{
		UserName:     m.DisplayName,
		Code:         m.Code,
		ValidMinutes: int(verification.CodeValidity / time.Minute),
		Year:         m.IssuedAt.Year(),
	}
	if data.UserName == "" {
		data.UserName = m.LocalPart()
	}
	if m.IssuedAt.IsZero() {
		data.Year = time.Now().Year()
	}

	var subject string
	switch m.Purpose {
	case verification.PurposeRegistrationConfirmation:
		subject = fmt.Sprintf("✅ %s, Your pin code is %s. Please confirm your email address", m.LocalPart(), m.Code)
		data.Title = RegistrationTitle
		data.Message = RegistrationMessage
	case verification.PurposePasswordReset:
		subject = fmt.Sprintf("✅ %s, Reset Your Password - Verification Code: %s", m.DisplayName, m.Code)
		data.Title = ResetTitle
		data.Message = ResetMessage
	default:
		return mail.Payload{}, verification.ErrUnknownPurpose
	}

	body, err := h.renderer.VerificationCode(data)
	if err != nil {
		return mail.Payload{}, err
	}

	return mail.Payload{To: m.Email, Subject: subject, HTML: body}, nil
}
