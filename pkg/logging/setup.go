package logging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelslog"

	"github.com/ARUMANDESU/storefront-identity/pkg/env"
)

const serviceName = "storefront-identity"

// Setup builds the process logger. Records go to stdout and to the global
// OpenTelemetry logger provider. The returned cleanup closes the optional log file.
func Setup(mode env.Mode, logPath string) (*slog.Logger, func() error) {
	var (
		out     io.Writer = os.Stdout
		cleanup           = func() error { return nil }
	)

	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err == nil {
			out = io.MultiWriter(os.Stdout, f)
			cleanup = f.Close
		}
	}

	opts := &slog.HandlerOptions{Level: mode.SlogLevel()}

	var local slog.Handler = slog.NewTextHandler(out, opts)
	if mode.Hosted() {
		local = slog.NewJSONHandler(out, opts)
	}

	handler := NewFanoutHandler(local, otelslog.NewHandler(serviceName))

	return slog.New(handler).With("mode", mode.String()), cleanup
}

// FanoutHandler forwards every record to all of its handlers.
type FanoutHandler struct {
	handlers []slog.Handler
}

func NewFanoutHandler(handlers ...slog.Handler) *FanoutHandler {
	return &FanoutHandler{handlers: handlers}
}

func (h *FanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, hh := range h.handlers {
		if hh.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *FanoutHandler) Handle(ctx context.Context, r slog.Record) error {
	var err error
	for _, hh := range h.handlers {
		if !hh.Enabled(ctx, r.Level) {
			continue
		}
		err = errors.Join(err, hh.Handle(ctx, r.Clone()))
	}
	return err
}

func (h *FanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, hh := range h.handlers {
		next[i] = hh.WithAttrs(attrs)
	}
	return &FanoutHandler{handlers: next}
}

func (h *FanoutHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, hh := range h.handlers {
		next[i] = hh.WithGroup(name)
	}
	return &FanoutHandler{handlers: next}
}
