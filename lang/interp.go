package lang

import (
	"context"
	"errors"
	"strings"
)

// signal reports how interpretation of a node sequence ended.
type signal int

const (
	signalNone     signal = iota // completed
	signalContinue               // continue directive reached
	signalBreak                  // break directive reached
)

// interp holds the state of one interpretation pass over a template.
type interp struct {
	ctx        context.Context //nolint:containedctx
	t          *Template
	defs       map[string]*Definition
	inherit    any
	inheritAt  Position
	hasInherit bool
}

func (t *Template) newInterp(ctx context.Context) *interp {
	return &interp{ctx: ctx, t: t, defs: map[string]*Definition{}}
}

// exec interprets nodes against ns, appending output to out.
//
// A break or continue signal stops interpretation of the remaining nodes and
// is returned to the caller. Only the for handler consumes signals.
func (in *interp) exec(nodes []Node, ns Namespace, out *strings.Builder) (signal, error) {
	for _, node := range nodes {
		sig, err := in.execNode(node, ns, out)
		if err != nil || sig != signalNone {
			return sig, err
		}
	}

	return signalNone, nil
}

func (in *interp) execNode(node Node, ns Namespace, out *strings.Builder) (signal, error) {
	switch n := node.(type) {
	case *Literal:
		out.WriteString(n.Text)

	case *Expr:
		return signalNone, in.execExpr(n, ns, out)

	case *Cond:
		return in.execCond(n, ns, out)

	case *For:
		return signalNone, in.execFor(n, ns, out)

	case *Def:
		d := &Definition{
			ctx:  in.ctx,
			tmpl: in.t,
			ns:   ns,
			name: n.Name,
			body: n.Body,
			pos:  n.At,
		}
		ns[n.Name] = d
		in.defs[n.Name] = d

	case *Default:
		if _, ok := ns[n.Var]; ok {
			break
		}

		v, err := in.eval(n.Value, ns, n.At)
		if err != nil {
			return signalNone, err
		}

		ns[n.Var] = v

	case *Inherit:
		v, err := in.eval(n.Target, ns, n.At)
		if err != nil {
			return signalNone, err
		}

		in.inherit, in.inheritAt, in.hasInherit = v, n.At, true

	case *Comment:

	case *Break:
		return signalBreak, nil

	case *Continue:
		return signalContinue, nil
	}

	return signalNone, nil
}

func (in *interp) execExpr(n *Expr, ns Namespace, out *strings.Builder) error {
	parts := splitFilters(n.Source)

	v, err := in.eval(parts[0], ns, n.At)
	if err != nil {
		return err
	}

	if len(parts) == 1 && in.t.defaultFilter != nil {
		if v, err = in.t.evaluator.Apply(in.t.defaultFilter, v); err != nil {
			return in.locate(err, n.At)
		}
	}

	for _, part := range parts[1:] {
		filter, err := in.eval(part, ns, n.At)
		if err != nil {
			return err
		}

		if v, err = in.t.evaluator.Apply(filter, v); err != nil {
			return in.locate(err, n.At)
		}
	}

	if v == nil {
		return nil
	}

	// A def reached through an expression renders as its output, which the
	// quoter passes through as Text.
	switch d := v.(type) {
	case *Definition:
		if v, err = d.Call(); err != nil {
			return in.locate(err, n.At)
		}
	case Macro:
		if v, err = d(); err != nil {
			return in.locate(err, n.At)
		}
	}

	text, err := in.text(v)
	if err != nil {
		return in.locate(err, n.At)
	}

	out.WriteString(in.t.quoter(v, text))

	return nil
}

func (in *interp) execCond(n *Cond, ns Namespace, out *strings.Builder) (signal, error) {
	for _, b := range n.Branches {
		if b.Kind != BranchElse {
			v, err := in.eval(b.Test, ns, b.At)
			if err != nil {
				return signalNone, err
			}

			if !Truthy(v) {
				continue
			}
		}

		return in.exec(b.Body, ns, out)
	}

	return signalNone, nil
}

func (in *interp) execFor(n *For, ns Namespace, out *strings.Builder) error {
	v, err := in.eval(n.Iter, ns, n.At)
	if err != nil {
		return err
	}

	seq, err := Iterate(v)
	if err != nil {
		return in.locate(err, n.At)
	}

	for item := range seq {
		if err := in.ctx.Err(); err != nil {
			return err
		}

		if len(n.Vars) == 1 {
			ns[n.Vars[0]] = item
		} else {
			parts, err := Unpack(item, len(n.Vars))
			if err != nil {
				return in.locate(err, n.At)
			}

			for i, name := range n.Vars {
				ns[name] = parts[i]
			}
		}

		sig, err := in.exec(n.Body, ns, out)
		if err != nil {
			return err
		}

		if sig == signalBreak {
			break
		}
	}

	return nil
}

// eval evaluates source with the template evaluator, locating any error at
// the directive.
func (in *interp) eval(source string, ns Namespace, at Position) (any, error) {
	v, err := in.t.evaluator.Eval(source, in.t.scope(ns))
	if err != nil {
		return nil, in.locate(err, at)
	}

	return v, nil
}

// text converts a value to output text.
func (in *interp) text(v any) (string, error) {
	if c, ok := in.t.evaluator.(TextCoercer); ok {
		return c.ToText(v)
	}

	return ToText(v)
}

// locate returns err as an [*Error] located at the directive. Errors already
// carrying a position, such as those raised inside a def body, are returned
// unchanged.
func (in *interp) locate(err error, at Position) error {
	var e *Error
	if !errors.As(err, &e) {
		return ErrEval.Wrap(err).At(at).In(in.t.name)
	}

	if !e.pos.IsZero() {
		return e
	}

	if e.kind == KindUnknown {
		c := *e
		c.kind = KindEval
		e = &c
	}

	return e.At(at).In(in.t.name)
}

// splitFilters splits expression text into the base expression followed by
// each filter. A "|" separates filters unless it is part of "||" or is
// inside a quoted string.
func splitFilters(source string) []string {
	var (
		parts []string
		quote byte
		start int
	)

	for i := 0; i < len(source); i++ {
		c := source[i]

		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}

		case c == '"' || c == '\'' || c == '`':
			quote = c

		case c == '|':
			if i+1 < len(source) && source[i+1] == '|' {
				i++

				continue
			}

			parts = append(parts, source[start:i])
			start = i + 1
		}
	}

	return append(parts, source[start:])
}
