package lang

import (
	"context"
	"maps"
	"slices"
	"strings"
)

// SelfKey is the namespace key of the inheritance proxy in a parent
// template, and of the bound receiver inside a bound [Definition].
const SelfKey = "self"

// BodyKey is the attribute of the inheritance proxy holding the child
// template's rendered output.
const BodyKey = "body"

// Definition is a named sub-template declared by a def directive.
//
// It captures the namespace in effect when the directive executed by
// reference: assignments made to that namespace after the def directive are
// visible when the definition is later called. Each call interprets the body
// against a fresh copy of the captured namespace, so calls never modify it.
type Definition struct {
	ctx  context.Context //nolint:containedctx
	tmpl *Template
	ns   Namespace
	self any
	name string
	body []Node
	pos  Position
}

// Name returns the name the definition was declared with.
func (d *Definition) Name() string { return d.name }

// Position returns the location of the def directive.
func (d *Definition) Position() Position { return d.pos }

// String returns a short description of the definition.
func (d *Definition) String() string {
	return "<def " + d.name + " at " + d.tmpl.name + ":" + d.pos.String() + ">"
}

// Bind returns a copy of d that binds self to the given value when called.
func (d *Definition) Bind(self any) *Definition {
	c := *d
	c.self = self

	return &c
}

// Call renders the definition body. Arguments are accepted and ignored.
//
// break and continue directives inside the body stop rendering of the body
// but do not affect any loop surrounding the call.
func (d *Definition) Call(...any) (Text, error) {
	ns := maps.Clone(d.ns)
	if ns == nil {
		ns = Namespace{}
	}

	if d.self != nil {
		ns[SelfKey] = d.self
	}

	ctx := d.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	in := d.tmpl.newInterp(ctx)

	var out strings.Builder

	_, err := in.exec(d.body, ns, &out)
	if err != nil {
		return "", err
	}

	return Text(out.String()), nil
}

// Macro returns the callable form of d.
func (d *Definition) Macro() Macro { return d.Call }

// Object is the proxy through which a parent template sees the child
// template that inherited from it.
//
// Its attributes are the child's top-level definitions, each bound to the
// proxy, and body, the child's rendered output. Every other attribute
// resolves to [Empty].
type Object struct {
	defs map[string]*Definition
	name string
	body Text
}

// NewObject returns the inheritance proxy for the named template.
func NewObject(name string, defs map[string]*Definition, body Text) *Object {
	return &Object{name: name, defs: defs, body: body}
}

// Get implements [Getter].
func (o *Object) Get(name string) any {
	if name == BodyKey {
		return o.body
	}

	if d, ok := o.defs[name]; ok {
		return d.Bind(o)
	}

	return Empty
}

// Names returns the attribute names defined on o, body included.
func (o *Object) Names() []string {
	names := []string{BodyKey}

	for name := range o.defs {
		if name != BodyKey {
			names = append(names, name)
		}
	}

	slices.Sort(names)

	return names
}

// String returns a short description of the proxy.
func (o *Object) String() string { return "<Object " + o.name + ">" }
