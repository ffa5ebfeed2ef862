package lang

import (
	"errors"
	"maps"
	"reflect"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/file"
)

// Evaluator evaluates the expression text of a directive.
//
// Errors returned by an Evaluator need not carry a position; the
// interpreter locates them at the originating directive.
type Evaluator interface {
	// Eval evaluates source against ns, which already has the builtin names
	// of the template merged beneath the render namespace.
	Eval(source string, ns Namespace) (any, error)

	// Apply applies a filter value, the result of evaluating the text after
	// a "|", to arg.
	Apply(filter, arg any) (any, error)
}

// TextCoercer is implemented by an [Evaluator] that converts values to
// output text with its own rules. Evaluators that do not implement it use
// [ToText].
type TextCoercer interface {
	ToText(v any) (string, error)
}

// Reserved environment names installed by [ExprEvaluator].
const (
	truthyName  = "__truthy__"
	getattrName = "__getattr__"
)

// ExprEvaluator evaluates expressions with expr-lang.
//
// Every name in the namespace is visible as an expr variable, so references
// to unbound names fail while compiling. Two rewrites are applied to the
// expression before type checking:
//
//   - Operands of not, and, or, and the ternary condition are converted
//     with [Truthy], so any value can be tested the way conditionals test it.
//   - Member access on a [Getter], such as the inheritance proxy bound to
//     self, resolves through Get. Missing attributes become [Empty].
//
// Definitions are exposed as [Macro] values, so a def named block can be
// written both as block and as block().
//
// The zero value is ready to use.
type ExprEvaluator struct {
	options []expr.Option
}

// NewExprEvaluator returns an [ExprEvaluator] that passes the given options
// to every expr.Compile call, after its own.
func NewExprEvaluator(opts ...expr.Option) *ExprEvaluator {
	return &ExprEvaluator{options: opts}
}

// Eval implements [Evaluator].
func (e *ExprEvaluator) Eval(source string, ns Namespace) (any, error) {
	env := exprEnv(ns)

	opts := make([]expr.Option, 0, 3+len(e.options))
	opts = append(opts,
		expr.Env(env),
		expr.Patch(truthPatcher{}),
		expr.Patch(&attrPatcher{env: env}),
	)
	opts = append(opts, e.options...)

	program, err := expr.Compile(strings.TrimSpace(source), opts...)
	if err != nil {
		return nil, exprError(err)
	}

	out, err := expr.Run(program, env)
	if err != nil {
		return nil, exprError(err)
	}

	return out, nil
}

// Apply implements [Evaluator].
func (e *ExprEvaluator) Apply(filter, arg any) (any, error) {
	return Call(filter, arg)
}

// exprEnv returns the expr environment for ns.
func exprEnv(ns Namespace) map[string]any {
	env := make(map[string]any, len(ns)+2)

	for name, value := range ns {
		env[name] = exprValue(value)
	}

	env[truthyName] = Truthy
	env[getattrName] = getattr

	return env
}

// exprValue converts a namespace value to the form expr calls and inspects.
func exprValue(v any) any {
	if d, ok := v.(*Definition); ok {
		return d.Macro()
	}

	return v
}

// getattr resolves the attribute name of obj for patched member access.
func getattr(obj any, name string) (any, error) {
	switch o := obj.(type) {
	case Getter:
		return exprValue(o.Get(name)), nil

	case EmptyValue:
		return Empty, nil

	case Namespace:
		if v, ok := o[name]; ok {
			return exprValue(v), nil
		}

	case map[string]any:
		if v, ok := o[name]; ok {
			return exprValue(v), nil
		}
	}

	if v, ok := field(obj, name); ok {
		return exprValue(v), nil
	}

	return nil, ErrEval.Errorf("%T has no attribute %q", obj, name)
}

// field returns the named field, expr-tagged field, or niladic method of a
// struct value.
func field(obj any, name string) (any, bool) {
	rv := reflect.ValueOf(obj)
	if !rv.IsValid() {
		return nil, false
	}

	if m := rv.MethodByName(name); m.IsValid() && m.Type().NumIn() == 0 &&
		m.Type().NumOut() == 1 {
		return m.Call(nil)[0].Interface(), true
	}

	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}

		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Struct:
		rt := rv.Type()
		for i := range rt.NumField() {
			f := rt.Field(i)
			if !f.IsExported() {
				continue
			}

			if f.Tag.Get("expr") == name || f.Name == name {
				return rv.Field(i).Interface(), true
			}
		}

	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			v := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
			if v.IsValid() {
				return v.Interface(), true
			}
		}
	}

	return nil, false
}

// exprError reduces an expr-lang error to its message, keeping any template
// error raised from inside the expression (such as a failing def call).
func exprError(err error) error {
	var te *Error
	if errors.As(err, &te) {
		return te
	}

	var fe *file.Error
	if errors.As(err, &fe) {
		return ErrEval.Errorf("%s", fe.Message)
	}

	return ErrEval.Wrap(err)
}

// scope returns the names visible to an expression: the template builtins
// overlaid by ns.
func (t *Template) scope(ns Namespace) Namespace {
	env := maps.Clone(t.builtins)
	if env == nil {
		env = make(Namespace, len(ns))
	}

	maps.Copy(env, ns)

	return env
}
