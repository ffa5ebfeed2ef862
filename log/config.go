package log

//go:generate go tool stringer --linecomment --type Level,Format --output config_string.go

import (
	"io"
	"iter"
	"log/slog"
	"strings"
	"time"
)

// Level is the severity of a log message.
type Level slog.Level

const (
	LevelTrace Level = Level(slog.LevelDebug - 4) // trace
	LevelDebug Level = Level(slog.LevelDebug)     // debug
	LevelInfo  Level = Level(slog.LevelInfo)      // info
	LevelWarn  Level = Level(slog.LevelWarn)      // warn
	LevelError Level = Level(slog.LevelError)     // error
)

// Levels returns an iterator over the names of all log levels, from most to
// least verbose.
func Levels() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, l := range []Level{LevelTrace, LevelDebug, LevelInfo, LevelWarn, LevelError} {
			if !yield(l.String()) {
				return
			}
		}
	}
}

// ParseLevel returns the level named by s, ignoring case. Names accepted by
// [slog.Level.UnmarshalText], such as "WARN+2", are also recognized.
// Unrecognized names yield [DefaultLevel].
func ParseLevel(s string) Level {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, LevelTrace.String()) {
		return LevelTrace
	}

	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return DefaultLevel
	}

	return Level(l)
}

// Format selects the encoding of log records.
type Format int

const (
	FormatText Format = iota // text
	FormatJSON               // json
)

// Formats returns an iterator over the names of all log formats.
func Formats() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, f := range []Format{FormatText, FormatJSON} {
			if !yield(f.String()) {
				return
			}
		}
	}
}

// ParseFormat returns the format named by s, ignoring case.
// Unrecognized names yield [DefaultFormat].
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case FormatJSON.String():
		return FormatJSON
	case FormatText.String():
		return FormatText
	default:
		return DefaultFormat
	}
}

const (
	DefaultLevel      = LevelInfo
	DefaultFormat     = FormatText
	DefaultTimeLayout = time.RFC3339
	DefaultCaller     = false
	DefaultPretty     = false
)

// Option modifies the configuration of a [Logger].
type Option func(*config)

// config is the immutable configuration of a [Logger]. Options are applied
// to a copy, so a Logger shares no mutable state with those derived from it.
type config struct {
	output io.Writer
	layout string
	level  Level
	format Format
	caller bool
	pretty bool
}

func makeConfig(w io.Writer, opts ...Option) config {
	c := config{
		layout: DefaultTimeLayout,
		level:  DefaultLevel,
		format: DefaultFormat,
		caller: DefaultCaller,
		pretty: DefaultPretty,
	}

	return c.with(append([]Option{WithOutput(w)}, opts...)...)
}

func (c config) with(opts ...Option) config {
	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}

	return c
}

// WithOutput sets the destination of log records. A nil writer discards
// them.
func WithOutput(w io.Writer) Option {
	return func(c *config) {
		if w == nil {
			w = io.Discard
		}

		c.output = w
	}
}

// WithLevel sets the minimum level of records that are written.
func WithLevel(level Level) Option {
	return func(c *config) { c.level = level }
}

// WithFormat sets the record encoding.
func WithFormat(format Format) Option {
	return func(c *config) { c.format = format }
}

// WithTimeLayout sets the layout of record timestamps.
//
// Named layouts of the [time] package, like "RFC3339Nano" or "Kitchen", are
// recognized ignoring case and punctuation. Any other string is used as a
// layout verbatim, and a blank string or "none" omits timestamps.
func WithTimeLayout(layout string) Option {
	return func(c *config) { c.layout = resolveLayout(layout) }
}

// WithCaller reports whether records include the source location of the
// logging call.
func WithCaller(enable bool) Option {
	return func(c *config) { c.caller = enable }
}

// WithPretty reports whether text records are colorized with unquoted
// values. It has no effect on JSON records.
func WithPretty(enable bool) Option {
	return func(c *config) { c.pretty = enable }
}

//nolint:gochecknoglobals
var namedLayouts = map[string]string{
	"ansic":       time.ANSIC,
	"datetime":    time.DateTime,
	"kitchen":     time.Kitchen,
	"none":        "",
	"rfc1123":     time.RFC1123,
	"rfc3339":     time.RFC3339,
	"rfc3339nano": time.RFC3339Nano,
	"rfc822":      time.RFC822,
	"stamp":       time.Stamp,
	"stampmicro":  time.StampMicro,
	"stampmilli":  time.StampMilli,
	"stampnano":   time.StampNano,
	"timeonly":    time.TimeOnly,
	"unixdate":    time.UnixDate,
}

func resolveLayout(layout string) string {
	key := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + 'a' - 'A'
		}

		return -1
	}, layout)

	if key == "" {
		return ""
	}

	if std, ok := namedLayouts[key]; ok {
		return std
	}

	return layout
}

// handler returns the [slog.Handler] described by c.
func (c config) handler() slog.Handler {
	opts := &slog.HandlerOptions{
		AddSource: c.caller,
		Level:     slog.Level(c.level),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) > 0 {
				return a
			}

			switch a.Key {
			case slog.TimeKey:
				if c.layout == "" {
					return slog.Attr{}
				}

				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.Format(c.layout))
				}

			case slog.LevelKey:
				if l, ok := a.Value.Any().(slog.Level); ok {
					a.Value = slog.StringValue(strings.ToUpper(Level(l).String()))
				}
			}

			return a
		},
	}

	switch {
	case c.format == FormatJSON:
		return slog.NewJSONHandler(c.output, opts)
	case c.pretty:
		return newPrettyHandler(c.output, opts)
	default:
		return slog.NewTextHandler(c.output, opts)
	}
}
