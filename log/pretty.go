package log

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"
)

const (
	ansiReset  = "\033[0m"
	ansiGray   = "\033[90m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiBlue   = "\033[34m"
	ansiCyan   = "\033[36m"
)

// prettyHandler writes records as single lines of colorized key=value pairs
// with unquoted values.
type prettyHandler struct {
	opts   *slog.HandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	prefix string // group qualifier of subsequent attribute keys
	attrs  []byte // preformatted attributes from WithAttrs
}

func newPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *prettyHandler {
	return &prettyHandler{opts: opts, mu: &sync.Mutex{}, w: w}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer

	if !r.Time.IsZero() {
		h.write(&buf, "", slog.Time(slog.TimeKey, r.Time))
	}

	h.write(&buf, "", slog.Any(slog.LevelKey, r.Level))

	if h.opts.AddSource {
		if src := r.Source(); src != nil {
			h.write(&buf, "", slog.String(slog.SourceKey,
				src.File+":"+strconv.Itoa(src.Line)))
		}
	}

	h.write(&buf, "", slog.String(slog.MessageKey, r.Message))
	buf.Write(h.attrs)

	r.Attrs(func(a slog.Attr) bool {
		h.write(&buf, h.prefix, a)

		return true
	})

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h

	var buf bytes.Buffer
	for _, a := range attrs {
		c.write(&buf, c.prefix, a)
	}

	c.attrs = append(h.attrs[:len(h.attrs):len(h.attrs)], buf.Bytes()...)

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.prefix = h.prefix + name + "."

	return &c
}

func (h *prettyHandler) write(buf *bytes.Buffer, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()

	if prefix == "" && h.opts.ReplaceAttr != nil && a.Value.Kind() != slog.KindGroup {
		a = h.opts.ReplaceAttr(nil, a)
	}

	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}

		for _, g := range a.Value.Group() {
			h.write(buf, prefix, g)
		}

		return
	}

	if buf.Len() > 0 {
		buf.WriteByte(' ')
	}

	buf.WriteString(ansiGray)
	buf.WriteString(prefix)
	buf.WriteString(a.Key)
	buf.WriteString(ansiReset)
	buf.WriteByte('=')
	buf.WriteString(color(a.Value))
	buf.WriteString(valueString(a.Value))
	buf.WriteString(ansiReset)
}

func color(v slog.Value) string {
	switch v.Kind() {
	case slog.KindInt64, slog.KindUint64, slog.KindFloat64, slog.KindDuration:
		return ansiYellow

	case slog.KindBool:
		if v.Bool() {
			return ansiGreen
		}

		return ansiRed

	case slog.KindTime:
		return ansiBlue

	case slog.KindString:
		switch v.String() {
		case "ERROR":
			return ansiRed
		case "WARN":
			return ansiYellow
		}
	}

	return ansiCyan
}

func valueString(v slog.Value) string {
	switch v.Kind() {
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	case slog.KindAny:
		if l, ok := v.Any().(slog.Level); ok {
			return Level(l).String()
		}
	}

	return v.String()
}
