package cli

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/tempita/log"
)

// logFormat configures the default logger as kong decodes it, so later parse
// errors use the requested format.
type logFormat string

func (f *logFormat) UnmarshalText(text []byte) error {
	*f = logFormat(text)
	log.Config(log.WithFormat(log.ParseFormat(string(*f))))

	return nil
}

// logLevel configures the default logger as kong decodes it.
type logLevel string

func (l *logLevel) UnmarshalText(text []byte) error {
	*l = logLevel(text)
	log.Config(log.WithLevel(log.ParseLevel(string(*l))))

	return nil
}

type logConfig struct {
	Level      logLevel  `default:"warn"    enum:"trace,debug,info,warn,error" help:"Minimum level of log records"`
	Format     logFormat `default:"text"    enum:"text,json"                   help:"Encoding of log records"`
	TimeLayout string    `default:"RFC3339"                                    help:"Timestamp layout, or 'none'"`
	Caller     bool      `default:"false"                                      help:"Include source locations"   negatable:""`
	Pretty     bool      `default:"${logPretty}"                               help:"Colorize text records"      negatable:""`
}

func (logConfig) group() kong.Group {
	return kong.Group{Key: "log", Title: "Logging options"}
}

// vars returns the defaults that depend on the environment: records are
// colorized only when stderr is a terminal.
func (logConfig) vars() kong.Vars {
	return kong.Vars{"logPretty": strconv.FormatBool(isTerminal(os.Stderr))}
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()

	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

// start applies the parsed configuration to the default logger.
func (f *logConfig) start(ctx context.Context) {
	log.Config(
		log.WithOutput(os.Stderr),
		log.WithLevel(log.ParseLevel(string(f.Level))),
		log.WithFormat(log.ParseFormat(string(f.Format))),
		log.WithTimeLayout(f.TimeLayout),
		log.WithCaller(f.Caller),
		log.WithPretty(f.Pretty),
	)

	log.DebugContext(ctx, "logger configured",
		slog.String("level", string(f.Level)),
		slog.String("format", string(f.Format)),
		slog.String("time", f.TimeLayout),
		slog.Bool("caller", f.Caller),
		slog.Bool("pretty", f.Pretty))
}

// scan applies logger flags found in args before kong parses them. Boolean
// flags are not decoded through UnmarshalText, so they are handled here as
// well as the valued flags given before the command.
func (f *logConfig) scan(args []string) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return
		}

		name, value, assigned := strings.Cut(arg, "=")

		negated := strings.HasPrefix(name, "--no-log-")
		if negated {
			name = "--log-" + strings.TrimPrefix(name, "--no-log-")
		} else if !strings.HasPrefix(name, "--log-") {
			continue
		}

		switch name {
		case "--log-level", "--log-format":
			if !assigned && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				i++
				value = args[i]
			}

			if name == "--log-level" {
				_ = f.Level.UnmarshalText([]byte(value))
			} else {
				_ = f.Format.UnmarshalText([]byte(value))
			}

		case "--log-pretty":
			if v, ok := scanBool(value, assigned, negated); ok {
				f.Pretty = v
				log.Config(log.WithPretty(v))
			}

		case "--log-caller":
			if v, ok := scanBool(value, assigned, negated); ok {
				f.Caller = v
				log.Config(log.WithCaller(v))
			}
		}
	}
}

// scanBool returns the value of a boolean flag, which is true unless
// assigned false, inverted when negated.
func scanBool(value string, assigned, negated bool) (bool, bool) {
	v := true

	if assigned {
		var err error
		if v, err = strconv.ParseBool(value); err != nil {
			return false, false
		}
	}

	return v != negated, true
}
