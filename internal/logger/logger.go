// Package logger provides a structured, context-aware logger built on log/slog.
package logger

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Level is a log severity.
type Level = slog.Level

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// TraceIDFn extracts a trace id from the context. An empty result is omitted.
type TraceIDFn func(ctx context.Context) string

// LoggerInterface is the logging contract used across the engine.
type LoggerInterface interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	Debugc(ctx context.Context, caller int, msg string, args ...any)
	Infoc(ctx context.Context, caller int, msg string, args ...any)
	Warnc(ctx context.Context, caller int, msg string, args ...any)
	Errorc(ctx context.Context, caller int, msg string, args ...any)
}

// Logger writes JSON records through slog.
type Logger struct {
	handler slog.Handler
	traceID TraceIDFn
}

var _ LoggerInterface = (*Logger)(nil)

// New creates a Logger writing JSON lines to w at the given minimum level.
func New(w io.Writer, level Level, serviceName string, traceID TraceIDFn) *Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		AddSource: true,
		Level:     level,
	})

	return &Logger{
		handler: h.WithAttrs([]slog.Attr{slog.String("service", serviceName)}),
		traceID: traceID,
	}
}

// NewFileWriter returns a rotating file writer for log output.
func NewFileWriter(path string, maxSizeMB, maxAgeDays int) io.WriteCloser {
	if maxSizeMB <= 0 {
		maxSizeMB = 100
	}
	return &lumberjack.Logger{
		Filename: path,
		MaxSize:  maxSizeMB,
		MaxAge:   maxAgeDays,
		Compress: true,
	}
}

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

func (l *Logger) Debug(ctx context.Context, msg string, args ...any) {
	l.write(ctx, LevelDebug, 3, msg, args...)
}

func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	l.write(ctx, LevelInfo, 3, msg, args...)
}

func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	l.write(ctx, LevelWarn, 3, msg, args...)
}

func (l *Logger) Error(ctx context.Context, msg string, args ...any) {
	l.write(ctx, LevelError, 3, msg, args...)
}

// Debugc logs with an explicit caller depth, counted from the calling function.
func (l *Logger) Debugc(ctx context.Context, caller int, msg string, args ...any) {
	l.write(ctx, LevelDebug, caller+3, msg, args...)
}

func (l *Logger) Infoc(ctx context.Context, caller int, msg string, args ...any) {
	l.write(ctx, LevelInfo, caller+3, msg, args...)
}

func (l *Logger) Warnc(ctx context.Context, caller int, msg string, args ...any) {
	l.write(ctx, LevelWarn, caller+3, msg, args...)
}

func (l *Logger) Errorc(ctx context.Context, caller int, msg string, args ...any) {
	l.write(ctx, LevelError, caller+3, msg, args...)
}

func (l *Logger) write(ctx context.Context, level Level, skip int, msg string, args ...any) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !l.handler.Enabled(ctx, level) {
		return
	}

	var pcs [1]uintptr
	runtime.Callers(skip, pcs[:])

	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	if l.traceID != nil {
		if id := l.traceID(ctx); id != "" {
			args = append(args, "trace_id", id)
		}
	}
	r.Add(args...)

	_ = l.handler.Handle(ctx, r)
}
