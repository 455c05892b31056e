package smtp

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/gomail.v2"

	"github.com/ARUMANDESU/storefront-identity/internal/domain/mail"
	"github.com/ARUMANDESU/storefront-identity/pkg/logging"
	"github.com/ARUMANDESU/storefront-identity/pkg/otelx"
)

var (
	tracer = otel.Tracer("storefront-identity/internal/adapters/services/smtp")
	logger = otelslog.NewLogger("storefront-identity/internal/adapters/services/smtp")
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Sender delivers mail through an SMTP relay, one connection per message.
type Sender struct {
	tracer trace.Tracer
	logger *slog.Logger
	dialer *gomail.Dialer
	from   string
}

func NewSender(cfg Config, t trace.Tracer, l *slog.Logger) *Sender {
	if t == nil {
		t = tracer
	}
	if l == nil {
		l = logger
	}

	return &Sender{
		tracer: t,
		logger: l,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *Sender) SendMail(ctx context.Context, payload mail.Payload) error {
	ctx, span := s.tracer.Start(ctx, "smtp.Sender.SendMail", trace.WithAttributes(
		attribute.String("mail.to", logging.RedactEmail(payload.To)),
	))
	defer span.End()

	if err := ctx.Err(); err != nil {
		otelx.RecordSpanError(span, err, "context done before sending")
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", payload.To)
	m.SetHeader("Subject", payload.Subject)
	m.SetBody("text/html", payload.HTML)

	if err := s.dialer.DialAndSend(m); err != nil {
		otelx.RecordSpanError(span, err, "failed to send mail")
		return fmt.Errorf("failed to send mail: %w", err)
	}

	s.logger.DebugContext(ctx, "mail sent", slog.String("to", logging.RedactEmail(payload.To)))
	return nil
}

// LogSender only logs outgoing mail. It is used when no SMTP relay is configured.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(l *slog.Logger) *LogSender {
	if l == nil {
		l = logger
	}
	return &LogSender{logger: l}
}

func (s *LogSender) SendMail(ctx context.Context, payload mail.Payload) error {
	s.logger.InfoContext(ctx, "mail delivery skipped, no smtp relay configured",
		slog.String("to", logging.RedactEmail(payload.To)),
		slog.Int("html.bytes", len(payload.HTML)))
	return nil
}
