package lang

import (
	"fmt"
	"log/slog"
	"strings"
)

// Kind classifies an [Error] by the pipeline stage that produced it.
type Kind int

const (
	KindUnknown     Kind = iota // error
	KindLex                     // lex error
	KindParse                   // parse error
	KindEval                    // eval error
	KindComposition             // composition error
	KindUnpack                  // unpack error
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindLex:
		return "lex error"
	case KindParse:
		return "parse error"
	case KindEval:
		return "eval error"
	case KindComposition:
		return "composition error"
	case KindUnpack:
		return "unpack error"
	default:
		return "error"
	}
}

// Kind sentinels. Match any error of the same kind with [errors.Is]:
//
//	if errors.Is(err, lang.ErrParse) { ... }
var (
	ErrLex         = &Error{kind: KindLex}
	ErrParse       = &Error{kind: KindParse}
	ErrEval        = &Error{kind: KindEval}
	ErrComposition = &Error{kind: KindComposition}
	ErrUnpack      = &Error{kind: KindUnpack}
)

// Error is the error type returned by every stage of the template pipeline.
//
// It carries the message, an optional wrapped cause, the source position and
// template name used to build the "at line L column C in NAME" suffix, and
// attributes for structured logging. It implements both error and
// slog.LogValuer.
type Error struct {
	msg   string
	err   error
	name  string
	attrs []slog.Attr
	pos   Position
	kind  Kind
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder

	switch {
	case e.msg != "" && e.err != nil:
		sb.WriteString(e.msg)
		sb.WriteString(": ")
		sb.WriteString(e.err.Error())

	case e.msg != "":
		sb.WriteString(e.msg)

	case e.err != nil:
		sb.WriteString(e.err.Error())

	default:
		sb.WriteString(e.kind.String())
	}

	if !e.pos.IsZero() {
		sb.WriteString(" at ")
		sb.WriteString(e.pos.String())
	}

	if e.name != "" {
		sb.WriteString(" in ")
		sb.WriteString(e.name)
	}

	return sb.String()
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the kind sentinel matching e.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.msg != "" || t.err != nil {
		return false
	}

	return t.kind == e.kind
}

// Kind returns the pipeline stage that produced the error.
func (e *Error) Kind() Kind { return e.kind }

// Position returns the source position of the error, if known.
func (e *Error) Position() Position { return e.pos }

// Name returns the template name the error occurred in, if known.
func (e *Error) Name() string { return e.name }

// Message returns the error message without position information.
func (e *Error) Message() string {
	switch {
	case e.msg != "" && e.err != nil:
		return e.msg + ": " + e.err.Error()
	case e.msg != "":
		return e.msg
	case e.err != nil:
		return e.err.Error()
	default:
		return e.kind.String()
	}
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+5)

	attrs = append(attrs, slog.String("kind", e.kind.String()))

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	if !e.pos.IsZero() {
		attrs = append(attrs,
			slog.Int("line", e.pos.Line),
			slog.Int("column", e.pos.Column))
	}

	if e.name != "" {
		attrs = append(attrs, slog.String("template", e.name))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Errorf returns a copy of e with a formatted message.
func (e *Error) Errorf(format string, args ...any) *Error {
	c := *e
	c.msg = fmt.Sprintf(format, args...)

	return &c
}

// Wrap returns a copy of e wrapping err.
func (e *Error) Wrap(err error) *Error {
	c := *e
	c.err = err

	return &c
}

// At returns a copy of e located at pos.
func (e *Error) At(pos Position) *Error {
	c := *e
	c.pos = pos

	return &c
}

// In returns a copy of e attributed to the template with the given name.
func (e *Error) In(name string) *Error {
	c := *e
	c.name = name

	return &c
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	c := *e
	c.attrs = newAttrs

	return &c
}
