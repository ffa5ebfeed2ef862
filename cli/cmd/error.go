package cmd

import (
	"errors"
	"log/slog"
	"strings"
)

// Error is a command failure with attributes for structured logging.
// Errors derived from a sentinel with [Error.Wrap] or [Error.With] match it
// with [errors.Is].
type Error struct {
	msg   string
	err   error
	attrs []slog.Attr
}

func NewError(msg string) *Error {
	return &Error{msg: msg}
}

func (e *Error) Error() string {
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is an *Error with the same message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}

	return t.msg != "" && t.msg == e.msg
}

func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.Any("cause", e.err))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap returns a copy of e wrapping err.
func (e *Error) Wrap(err error) *Error {
	c := *e
	c.err = err

	return &c
}

// With returns a copy of e with attrs appended.
func (e *Error) With(attrs ...slog.Attr) *Error {
	c := *e
	c.attrs = append(e.attrs[:len(e.attrs):len(e.attrs)], attrs...)

	return &c
}

var (
	ErrReadTemplate = NewError("read template")
	ErrWriteOutput  = NewError("write output")
	ErrVariable     = NewError("invalid variable")
	ErrReadVars     = NewError("read variables file")
	ErrDelims       = NewError(`delimiters must be two words, like "{{ }}"`)
	ErrOpenDB       = NewError("open template database")
)
