package watermillx

import (
	"context"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
)

// SlogAdapter routes watermill logs through slog, dropping records below minLevel.
type SlogAdapter struct {
	logger   *slog.Logger
	minLevel slog.Level
}

func NewSlogAdapter(logger *slog.Logger, minLevel slog.Level) watermill.LoggerAdapter {
	return &SlogAdapter{
		logger:   logger,
		minLevel: minLevel,
	}
}

func (l *SlogAdapter) log(level slog.Level, msg string, fields watermill.LogFields, extra ...any) {
	ctx := context.Background()
	if level < l.minLevel || !l.logger.Enabled(ctx, level) {
		return
	}

	args := make([]any, 0, len(fields)+len(extra))
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	args = append(args, extra...)
	l.logger.Log(ctx, level, msg, args...)
}

func (l *SlogAdapter) Error(msg string, err error, fields watermill.LogFields) {
	l.log(slog.LevelError, msg, fields, slog.Any("error", err))
}

func (l *SlogAdapter) Info(msg string, fields watermill.LogFields) {
	l.log(slog.LevelInfo, msg, fields)
}

func (l *SlogAdapter) Debug(msg string, fields watermill.LogFields) {
	l.log(slog.LevelDebug, msg, fields)
}

// Trace is mapped below debug and only shows up with a minLevel under slog.LevelDebug.
func (l *SlogAdapter) Trace(msg string, fields watermill.LogFields) {
	l.log(slog.LevelDebug-4, msg, fields)
}

func (l *SlogAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	args := make([]any, 0, len(fields))
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	return &SlogAdapter{
		logger:   l.logger.With(args...),
		minLevel: l.minLevel,
	}
}
