package lang

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/ardnew/tempita/log"
)

// Template is a compiled template.
//
// A Template is immutable after [Compile] returns and may be rendered any
// number of times, concurrently, provided each render is given its own
// namespace.
type Template struct {
	evaluator      Evaluator
	loader         Loader
	defaultInherit any
	defaultFilter  any
	quoter         Quoter
	namespace      Namespace
	extraBuiltins  Namespace
	builtins       Namespace
	logger         log.Logger
	name           string
	source         string
	nodes          []Node
	delims         Delims
	lineOffset     int
	trim           bool
}

// Result is the outcome of a single interpretation pass.
type Result struct {
	// Defs holds the definitions declared by def directives outside of any
	// other definition, by name.
	Defs map[string]*Definition

	// Inherit is the value of the last inherit directive executed.
	Inherit any

	// Output is the rendered text.
	Output string

	// InheritAt is the position of the inherit directive Inherit came from.
	InheritAt Position

	// HasInherit reports whether an inherit directive executed.
	HasInherit bool
}

// Loader resolves the target of an inherit directive to a template.
//
// from is the template requesting the parent; loaders resolve relative
// names against it.
type Loader interface {
	Load(ctx context.Context, target any, from *Template) (*Template, error)
}

// LoaderFunc adapts a function to the [Loader] interface.
type LoaderFunc func(ctx context.Context, target any, from *Template) (*Template, error)

// Load implements [Loader].
func (f LoaderFunc) Load(
	ctx context.Context,
	target any,
	from *Template,
) (*Template, error) {
	return f(ctx, target, from)
}

// Quoter transforms the text of an expression directive before it is added
// to the output. value is the result of the expression and text its
// conversion to text.
type Quoter func(value any, text string) string

// IdentityQuoter returns text unchanged.
func IdentityQuoter(_ any, text string) string { return text }

// Option configures a [Template].
type Option func(*Template)

// WithDelims sets the directive delimiters. The defaults are "{{" and "}}".
func WithDelims(open, closing string) Option {
	return func(t *Template) {
		t.delims = Delims{Open: open, Close: closing}
	}
}

// WithLineOffset adds n to every reported line number, for templates
// embedded in a larger file.
func WithLineOffset(n int) Option {
	return func(t *Template) {
		t.lineOffset = n
	}
}

// WithTrimWhitespace enables or disables removal of the blank lines around
// control directives that occupy a line by themselves. It is enabled by
// default.
func WithTrimWhitespace(enable bool) Option {
	return func(t *Template) {
		t.trim = enable
	}
}

// WithNamespace sets names bound in every render of the template. They take
// precedence over the names given to Render.
func WithNamespace(ns Namespace) Option {
	return func(t *Template) {
		t.namespace = maps.Clone(ns)
	}
}

// WithBuiltins adds builtin names. Builtins are visible to expressions but
// are shadowed by the render namespace and ignored by default directives.
func WithBuiltins(ns Namespace) Option {
	return func(t *Template) {
		if t.extraBuiltins == nil {
			t.extraBuiltins = Namespace{}
		}

		maps.Copy(t.extraBuiltins, ns)
	}
}

// WithEvaluator sets the expression evaluator. The default is an
// [ExprEvaluator].
func WithEvaluator(e Evaluator) Option {
	return func(t *Template) {
		t.evaluator = e
	}
}

// WithLoader sets the loader used to resolve inherit targets.
func WithLoader(l Loader) Option {
	return func(t *Template) {
		t.loader = l
	}
}

// WithDefaultInherit sets the inherit target used when a render executes no
// inherit directive.
func WithDefaultInherit(target any) Option {
	return func(t *Template) {
		t.defaultInherit = target
	}
}

// WithDefaultFilter sets a filter applied to the value of every expression
// directive that has no filters of its own.
func WithDefaultFilter(filter any) Option {
	return func(t *Template) {
		t.defaultFilter = filter
	}
}

// WithQuoter sets the output quoter. The default is [IdentityQuoter].
func WithQuoter(q Quoter) Option {
	return func(t *Template) {
		t.quoter = q
	}
}

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(t *Template) {
		t.logger = logger
	}
}

// Compile lexes, trims, and parses source into a [Template] named name.
//
// It fails with a [KindLex] or [KindParse] [*Error]; a template that fails
// to compile cannot be rendered.
func Compile(source, name string, opts ...Option) (*Template, error) {
	t := &Template{
		name:   name,
		source: source,
		delims: DefaultDelims,
		quoter: IdentityQuoter,
		trim:   true,
	}

	for _, opt := range opts {
		opt(t)
	}

	if t.evaluator == nil {
		t.evaluator = &ExprEvaluator{}
	}

	if t.quoter == nil {
		t.quoter = IdentityQuoter
	}

	tokens, err := Lex(source, name, t.delims, t.lineOffset)
	if err != nil {
		return nil, err
	}

	if t.trim {
		tokens = Trim(tokens)
	}

	t.nodes, err = Parse(tokens, name)
	if err != nil {
		return nil, err
	}

	t.builtins = makeBuiltins(t.delims, t.extraBuiltins)

	t.logger.Trace("compile template",
		slog.String("name", name),
		slog.Int("tokens", len(tokens)),
		slog.Int("nodes", len(t.nodes)))

	return t, nil
}

// MustCompile is like [Compile] but panics on error.
func MustCompile(source, name string, opts ...Option) *Template {
	t, err := Compile(source, name, opts...)
	if err != nil {
		panic(err)
	}

	return t
}

// Render compiles source and renders it against ns.
func Render(
	ctx context.Context,
	source string,
	ns Namespace,
	opts ...Option,
) (string, error) {
	t, err := Compile(source, "", opts...)
	if err != nil {
		return "", err
	}

	return t.Render(ctx, ns)
}

// Name returns the template name.
func (t *Template) Name() string { return t.name }

// Source returns the template source text.
func (t *Template) Source() string { return t.source }

// Nodes returns the parsed template.
func (t *Template) Nodes() []Node { return t.nodes }

// Delims returns the directive delimiters.
func (t *Template) Delims() Delims { return t.delims }

// Namespace returns a copy of the names bound in every render.
func (t *Template) Namespace() Namespace { return maps.Clone(t.namespace) }

// Loader returns the loader used to resolve inherit targets, or nil.
func (t *Template) Loader() Loader { return t.loader }

// String returns a short description of the template.
func (t *Template) String() string { return "<Template " + t.name + ">" }

// Render renders the template against ns and returns the output.
//
// ns is not modified. When the template inherits from a parent, the parent is
// loaded and rendered with the child exposed as self, and its output is
// returned. Rendering either succeeds completely or returns no output.
func (t *Template) Render(ctx context.Context, ns Namespace) (string, error) {
	return t.render(ctx, ns, nil)
}

// Execute renders the template against ns and writes the output to w.
// Nothing is written when rendering fails.
func (t *Template) Execute(ctx context.Context, w io.Writer, ns Namespace) error {
	out, err := t.Render(ctx, ns)
	if err != nil {
		return err
	}

	_, err = io.WriteString(w, out)

	return err
}

// Interpret runs a single interpretation pass over the template against a
// copy of ns, without resolving inheritance.
func (t *Template) Interpret(ctx context.Context, ns Namespace) (Result, error) {
	return t.interpret(ctx, t.prepare(ns))
}

// prepare returns the namespace a render of t starts with.
func (t *Template) prepare(ns Namespace) Namespace {
	scope := make(Namespace, len(ns)+len(t.namespace)+1)

	maps.Copy(scope, ns)
	scope[TemplateNameKey] = t.name
	maps.Copy(scope, t.namespace)

	return scope
}

func (t *Template) interpret(ctx context.Context, ns Namespace) (Result, error) {
	in := t.newInterp(ctx)

	var out strings.Builder

	if _, err := in.exec(t.nodes, ns, &out); err != nil {
		return Result{}, err
	}

	return Result{
		Defs:       in.defs,
		Inherit:    in.inherit,
		Output:     out.String(),
		InheritAt:  in.inheritAt,
		HasInherit: in.hasInherit,
	}, nil
}

// render renders t, composing it with its parent when it inherits. visited
// holds the names of the templates already rendered in this chain.
func (t *Template) render(
	ctx context.Context,
	ns Namespace,
	visited []string,
) (string, error) {
	if t.name != "" {
		visited = append(slices.Clip(visited), t.name)
	}

	scope := t.prepare(ns)

	res, err := t.interpret(ctx, scope)
	if err != nil {
		return "", err
	}

	t.logger.Trace("render template",
		slog.String("name", t.name),
		slog.Int("defs", len(res.Defs)),
		slog.Int("bytes", len(res.Output)))

	target, at := res.Inherit, res.InheritAt
	if !Truthy(target) {
		target, at = t.defaultInherit, Position{}
	}

	if !Truthy(target) {
		return res.Output, nil
	}

	return t.compose(ctx, res, target, at, scope, visited)
}

// compose renders the parent named by target with self bound to the
// inheritance proxy of res. Errors are located at the inherit directive, or
// carry no position when target is the default inheritance.
func (t *Template) compose(
	ctx context.Context,
	res Result,
	target any,
	at Position,
	ns Namespace,
	visited []string,
) (string, error) {
	if t.loader == nil {
		return "", ErrComposition.
			Errorf("inheritance requires a template loader").
			At(at).
			In(t.name)
	}

	parent, err := t.loader.Load(ctx, target, t)
	if err != nil {
		var e *Error
		if errors.As(err, &e) && e.kind != KindUnknown {
			return "", e
		}

		return "", ErrComposition.
			Errorf("cannot load template %s", Repr(target)).
			Wrap(err).
			At(at).
			In(t.name)
	}

	if parent.name != "" && slices.Contains(visited, parent.name) {
		return "", ErrComposition.
			Errorf("inheritance cycle: %s",
				strings.Join(append(slices.Clip(visited), parent.name), " -> ")).
			At(at).
			In(t.name)
	}

	t.logger.Trace("inherit template",
		slog.String("name", t.name),
		slog.String("parent", parent.name))

	scope := maps.Clone(ns)
	scope[SelfKey] = NewObject(t.name, res.Defs, Text(res.Output))

	return parent.render(ctx, scope, visited)
}
