package log

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"
)

// DefaultContextProvider returns the context given to handlers by the
// logging functions and methods that take no context.
//
//nolint:gochecknoglobals
var DefaultContextProvider = context.TODO

//nolint:gochecknoglobals
var defaultLog atomic.Pointer[Logger]

//nolint:gochecknoinits
func init() {
	l := Make(os.Stderr)
	defaultLog.Store(&l)
}

// Default returns the logger used by the package-level functions.
func Default() Logger { return *defaultLog.Load() }

// Config reconfigures the logger used by the package-level functions.
func Config(opts ...Option) {
	l := Default().Wrap(opts...)
	defaultLog.Store(&l)
}

// SetDefault replaces the logger used by the package-level functions.
func SetDefault(l Logger) { defaultLog.Store(&l) }

// With returns a logger derived from the default logger that adds attrs to
// each record.
func With(attrs ...slog.Attr) Logger { return Default().With(attrs...) }

func TraceContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().logDepth(ctx, 0, LevelTrace, msg, attrs)
}

func Trace(msg string, attrs ...slog.Attr) {
	Default().logDepth(DefaultContextProvider(), 0, LevelTrace, msg, attrs)
}

func DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().logDepth(ctx, 0, LevelDebug, msg, attrs)
}

func Debug(msg string, attrs ...slog.Attr) {
	Default().logDepth(DefaultContextProvider(), 0, LevelDebug, msg, attrs)
}

func InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().logDepth(ctx, 0, LevelInfo, msg, attrs)
}

func Info(msg string, attrs ...slog.Attr) {
	Default().logDepth(DefaultContextProvider(), 0, LevelInfo, msg, attrs)
}

func WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().logDepth(ctx, 0, LevelWarn, msg, attrs)
}

func Warn(msg string, attrs ...slog.Attr) {
	Default().logDepth(DefaultContextProvider(), 0, LevelWarn, msg, attrs)
}

func ErrorContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().logDepth(ctx, 0, LevelError, msg, attrs)
}

func Error(msg string, attrs ...slog.Attr) {
	Default().logDepth(DefaultContextProvider(), 0, LevelError, msg, attrs)
}
