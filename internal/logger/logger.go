// Package logger provides structured logging built on log/slog.
package logger

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"time"
)

// Level represents logging severity levels.
type Level slog.Level

const (
	LevelDebug = Level(slog.LevelDebug)
	LevelInfo  = Level(slog.LevelInfo)
	LevelWarn  = Level(slog.LevelWarn)
	LevelError = Level(slog.LevelError)
)

// ParseLevel maps a config string to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return LevelDebug
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// LoggerInterface defines the logging contract used across the application.
type LoggerInterface interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)
	With(args ...any) LoggerInterface
}

// EventFn is an optional hook invoked for every record at or above warn.
type EventFn func(ctx context.Context, msg string)

// Logger wraps slog.Logger with caller annotation and an event hook.
type Logger struct {
	handler slog.Handler
	events  EventFn
}

// New constructs a Logger writing JSON records to w at the given level.
// The service name is attached to every record.
func New(w io.Writer, minLevel Level, serviceName string, events EventFn) *Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.Level(minLevel),
	}).WithAttrs([]slog.Attr{slog.String("service", serviceName)})

	return &Logger{handler: handler, events: events}
}

// NewStdLogger returns a *slog.Logger sharing this logger's handler, for
// libraries that want the standard interface.
func (l *Logger) NewStdLogger() *slog.Logger {
	return slog.New(l.handler)
}

func (l *Logger) Debug(ctx context.Context, msg string, args ...any) {
	l.write(ctx, slog.LevelDebug, msg, args...)
}

func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	l.write(ctx, slog.LevelInfo, msg, args...)
}

func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	l.write(ctx, slog.LevelWarn, msg, args...)
	if l.events != nil {
		l.events(ctx, msg)
	}
}

func (l *Logger) Error(ctx context.Context, msg string, args ...any) {
	l.write(ctx, slog.LevelError, msg, args...)
	if l.events != nil {
		l.events(ctx, msg)
	}
}

// With returns a Logger with the given attributes attached to every record.
func (l *Logger) With(args ...any) LoggerInterface {
	return &Logger{
		handler: slog.New(l.handler).With(args...).Handler(),
		events:  l.events,
	}
}

func (l *Logger) write(ctx context.Context, level slog.Level, msg string, args ...any) {
	if !l.handler.Enabled(ctx, level) {
		return
	}

	var pcs [1]uintptr
	runtime.Callers(3, pcs[:]) // skip Callers, write, and the public wrapper

	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	r.Add(args...)
	_ = l.handler.Handle(ctx, r)
}
