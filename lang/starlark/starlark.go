// Package starlark evaluates template expressions as Starlark.
//
// Expressions are Starlark expressions evaluated against the render
// namespace, converted to Starlark values. Results are converted back to Go
// values:
//
//	{{for name in sorted(users, key=lambda u: u.name)}}...{{endfor}}
//	{{"%d items" % len(items)}}
//	{{name | lambda s: s.upper()}}
//
// Builtins of the template whose names Starlark already predeclares, such
// as range, enumerate, and repr, are replaced by the Starlark versions.
package starlark

import (
	"errors"
	"reflect"

	"go.starlark.net/resolve"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ardnew/tempita/lang"
)

// threadName is the name of the Starlark threads evaluating expressions.
const threadName = "tempita"

// Evaluator is a [lang.Evaluator] and [lang.TextCoercer] for Starlark
// expressions. The zero value is ready to use.
type Evaluator struct {
	predeclared starlark.StringDict
}

// NewEvaluator returns an [Evaluator] that additionally predeclares the given
// Starlark values. Names in the render namespace take precedence.
func NewEvaluator(predeclared starlark.StringDict) *Evaluator {
	return &Evaluator{predeclared: predeclared}
}

// Eval implements [lang.Evaluator].
func (e *Evaluator) Eval(source string, ns lang.Namespace) (any, error) {
	env := make(starlark.StringDict, len(e.predeclared)+len(ns))

	for name, v := range e.predeclared {
		env[name] = v
	}

	for name, v := range ns {
		if starlark.Universe.Has(name) && reflect.ValueOf(v).Kind() == reflect.Func {
			continue
		}

		sv, err := ToValue(v)
		if err != nil {
			return nil, lang.ErrEval.Errorf("%s: %s", name, err)
		}

		env[name] = sv
	}

	thread := &starlark.Thread{Name: threadName}

	v, err := starlark.Eval(thread, "<expr>", source, env)
	if err != nil {
		return nil, evalError(err)
	}

	return FromValue(v), nil
}

// Apply implements [lang.Evaluator].
func (e *Evaluator) Apply(filter, arg any) (any, error) {
	return lang.Call(filter, arg)
}

// ToText implements [lang.TextCoercer] with the rules of Starlark's str:
// booleans are True and False, and lists and dicts use Starlark syntax.
func (e *Evaluator) ToText(v any) (string, error) {
	if b, ok := v.(bool); ok {
		if b {
			return "True", nil
		}

		return "False", nil
	}

	switch reflect.ValueOf(v).Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		if _, ok := v.([]byte); ok {
			break
		}

		sv, err := ToValue(v)
		if err != nil {
			return "", err
		}

		return sv.String(), nil
	}

	return lang.ToText(v)
}

// evalError reduces a Starlark error to its message, keeping any template
// error raised from inside the expression.
func evalError(err error) error {
	var te *lang.Error
	if errors.As(err, &te) {
		return te
	}

	var (
		ee *starlark.EvalError
		se syntax.Error
		re resolve.ErrorList
	)

	switch {
	case errors.As(err, &ee):
		return lang.ErrEval.Errorf("%s", ee.Msg)
	case errors.As(err, &se):
		return lang.ErrEval.Errorf("%s", se.Msg)
	case errors.As(err, &re) && len(re) > 0:
		return lang.ErrEval.Errorf("%s", re[0].Msg)
	default:
		return lang.ErrEval.Wrap(err)
	}
}
