// Package log is a small leveled logger built on [log/slog].
//
// A [Logger] is configured once with functional options and never mutated
// afterward, so it can be shared between goroutines freely. Derive a
// differently configured logger with [Logger.Wrap] or one carrying extra
// attributes with [Logger.With]:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatJSON))
//
//	logger.With(log.Template("page.html")).Debug("compiled")
//
// The package-level functions write through a default logger that the
// command line reconfigures with [Config]. Functions and methods without a
// context argument pass the result of [DefaultContextProvider] to handlers.
//
// Levels extend those of [log/slog] with [LevelTrace], used for per-directive
// detail while rendering.
package log
