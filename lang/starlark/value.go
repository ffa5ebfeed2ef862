package starlark

import (
	"errors"
	"fmt"
	"iter"
	"reflect"
	"slices"
	"strings"
	"unicode"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ardnew/tempita/lang"
)

// ToValue converts a Go value to a Starlark value.
//
// Booleans, numbers, and strings become the Starlark equivalents; slices
// become lists and maps dicts. Functions, definitions, and methods become
// callables. Structs and [lang.Getter] values expose their attributes. Any
// other value, including [lang.Text] and HTML markup, is wrapped opaquely
// and unwrapped again by [FromValue], so that it keeps its identity across
// an expression.
func ToValue(v any) (starlark.Value, error) {
	switch x := v.(type) {
	case nil:
		return starlark.None, nil
	case starlark.Value:
		return x, nil
	case bool:
		return starlark.Bool(x), nil
	case string:
		return starlark.String(x), nil
	case []byte:
		return starlark.Bytes(x), nil
	case lang.Text:
		return goValue{v: x}, nil
	case lang.EmptyValue:
		return emptyValue{}, nil
	case *lang.Definition:
		return &goFunc{name: x.Name(), fn: x}, nil
	case lang.Macro:
		return &goFunc{name: "macro", fn: x}, nil
	case lang.Getter:
		return getterValue{g: x}, nil
	case lang.Iterable:
		return iterValue{it: x}, nil
	case interface{ HTML() string }:
		return goValue{v: x}, nil
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Bool:
		return starlark.Bool(rv.Bool()), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return starlark.MakeInt64(rv.Int()), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr:
		return starlark.MakeUint64(rv.Uint()), nil

	case reflect.Float32, reflect.Float64:
		return starlark.Float(rv.Float()), nil

	case reflect.String:
		return starlark.String(rv.String()), nil

	case reflect.Slice, reflect.Array:
		elems := make([]starlark.Value, rv.Len())

		for i := range elems {
			e, err := ToValue(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}

			elems[i] = e
		}

		return starlark.NewList(elems), nil

	case reflect.Map:
		d := starlark.NewDict(rv.Len())

		for _, k := range lang.SortedKeys(rv) {
			sk, err := ToValue(k)
			if err != nil {
				return nil, err
			}

			sv, err := ToValue(rv.MapIndex(reflect.ValueOf(k)).Interface())
			if err != nil {
				return nil, err
			}

			if err := d.SetKey(sk, sv); err != nil {
				return nil, err
			}
		}

		return d, nil

	case reflect.Func:
		if rv.IsNil() {
			return starlark.None, nil
		}

		return &goFunc{name: "function", fn: v}, nil

	case reflect.Struct:
		return structValue{v: v}, nil

	case reflect.Pointer:
		if rv.IsNil() {
			return starlark.None, nil
		}

		if rv.Elem().Kind() == reflect.Struct {
			return structValue{v: v}, nil
		}
	}

	return goValue{v: v}, nil
}

// FromValue converts a Starlark value to a Go value. Values produced by
// [ToValue] are unwrapped to the original Go value, and Starlark functions
// become Go functions that call them.
func FromValue(v starlark.Value) any {
	switch x := v.(type) {
	case nil, starlark.NoneType:
		return nil
	case starlark.Bool:
		return bool(x)
	case starlark.Int:
		if i, ok := x.Int64(); ok {
			return int(i)
		}

		return x.BigInt()
	case starlark.Float:
		return float64(x)
	case starlark.String:
		return string(x)
	case starlark.Bytes:
		return []byte(x)
	case *starlark.List:
		return collect(x)
	case starlark.Tuple:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = FromValue(e)
		}

		return out
	case *starlark.Dict:
		return fromDict(x)
	case *starlark.Set:
		return collect(x)
	case goValue:
		return x.v
	case emptyValue:
		return lang.Empty
	case *goFunc:
		return x.fn
	case getterValue:
		return x.g
	case iterValue:
		return x.it
	case structValue:
		return x.v
	case starlark.Callable:
		return func(args ...any) (any, error) {
			tuple := make(starlark.Tuple, len(args))

			for i, a := range args {
				sa, err := ToValue(a)
				if err != nil {
					return nil, err
				}

				tuple[i] = sa
			}

			out, err := starlark.Call(&starlark.Thread{Name: threadName}, x, tuple, nil)
			if err != nil {
				return nil, evalError(err)
			}

			return FromValue(out), nil
		}
	default:
		return x
	}
}

func collect(it starlark.Iterable) []any {
	iter := it.Iterate()
	defer iter.Done()

	var (
		out []any
		e   starlark.Value
	)

	for iter.Next(&e) {
		out = append(out, FromValue(e))
	}

	return out
}

// fromDict returns a map[string]any when every key of d is a string, and a
// map[any]any otherwise. Keys that are not comparable in Go are replaced by
// their Starlark representation.
func fromDict(d *starlark.Dict) any {
	items := d.Items()

	strs := true

	for _, kv := range items {
		if _, ok := kv[0].(starlark.String); !ok {
			strs = false

			break
		}
	}

	if strs {
		m := make(map[string]any, len(items))
		for _, kv := range items {
			m[string(kv[0].(starlark.String))] = FromValue(kv[1])
		}

		return m
	}

	m := make(map[any]any, len(items))

	for _, kv := range items {
		k := FromValue(kv[0])
		if k != nil && !reflect.TypeOf(k).Comparable() {
			k = kv[0].String()
		}

		m[k] = FromValue(kv[1])
	}

	return m
}

var errUnhashable = errors.New("unhashable type")

// goValue is an opaque Go value. Text values concatenate with strings.
type goValue struct{ v any }

var _ starlark.HasBinary = goValue{}

func (g goValue) String() string {
	s, err := lang.ToText(g.v)
	if err != nil {
		return fmt.Sprint(g.v)
	}

	return s
}

func (g goValue) Type() string          { return fmt.Sprintf("%T", g.v) }
func (g goValue) Freeze()               {}
func (g goValue) Truth() starlark.Bool  { return starlark.Bool(lang.Truthy(g.v)) }
func (g goValue) Hash() (uint32, error) { return starlark.String(g.String()).Hash() }

func (g goValue) Binary(
	op syntax.Token,
	y starlark.Value,
	side starlark.Side,
) (starlark.Value, error) {
	s, ok := y.(starlark.String)
	if op != syntax.PLUS || !ok {
		return nil, nil //nolint:nilnil // unsupported operation
	}

	if side == starlark.Left {
		return starlark.String(g.String() + string(s)), nil
	}

	return starlark.String(string(s) + g.String()), nil
}

// emptyValue is [lang.Empty] in Starlark.
type emptyValue struct{}

var (
	_ starlark.Callable = emptyValue{}
	_ starlark.Iterable = emptyValue{}
	_ starlark.HasAttrs = emptyValue{}
)

func (emptyValue) String() string                      { return "" }
func (emptyValue) Type() string                        { return "Empty" }
func (emptyValue) Freeze()                             {}
func (emptyValue) Truth() starlark.Bool                { return starlark.False }
func (emptyValue) Hash() (uint32, error)               { return 0, nil }
func (emptyValue) Name() string                        { return "Empty" }
func (emptyValue) Iterate() starlark.Iterator          { return emptyIterator{} }
func (emptyValue) Attr(string) (starlark.Value, error) { return emptyValue{}, nil }
func (emptyValue) AttrNames() []string                 { return nil }
func (emptyValue) CallInternal(
	*starlark.Thread, starlark.Tuple, []starlark.Tuple,
) (starlark.Value, error) {
	return emptyValue{}, nil
}

type emptyIterator struct{}

func (emptyIterator) Next(*starlark.Value) bool { return false }
func (emptyIterator) Done()                     {}

// goFunc is a Go function, method, or definition called through [lang.Call].
type goFunc struct {
	fn   any
	name string
}

var _ starlark.Callable = (*goFunc)(nil)

func (f *goFunc) Name() string          { return f.name }
func (f *goFunc) String() string        { return "<function " + f.name + ">" }
func (f *goFunc) Type() string          { return "builtin_function_or_method" }
func (f *goFunc) Freeze()               {}
func (f *goFunc) Truth() starlark.Bool  { return starlark.True }
func (f *goFunc) Hash() (uint32, error) { return 0, fmt.Errorf("%w: %s", errUnhashable, f.Type()) }

func (f *goFunc) CallInternal(
	_ *starlark.Thread,
	args starlark.Tuple,
	kwargs []starlark.Tuple,
) (starlark.Value, error) {
	if len(kwargs) > 0 {
		return nil, fmt.Errorf("%s: unexpected keyword argument %s", f.name, kwargs[0][0])
	}

	in := make([]any, len(args))
	for i, a := range args {
		in[i] = FromValue(a)
	}

	out, err := lang.Call(f.fn, in...)
	if err != nil {
		return nil, err
	}

	return ToValue(out)
}

// getterValue exposes the attributes of a [lang.Getter].
type getterValue struct{ g lang.Getter }

var _ starlark.HasAttrs = getterValue{}

func (o getterValue) String() string        { return fmt.Sprint(o.g) }
func (o getterValue) Type() string          { return "object" }
func (o getterValue) Freeze()               {}
func (o getterValue) Truth() starlark.Bool  { return starlark.True }
func (o getterValue) Hash() (uint32, error) { return 0, fmt.Errorf("%w: object", errUnhashable) }

func (o getterValue) Attr(name string) (starlark.Value, error) {
	return ToValue(o.g.Get(name))
}

func (o getterValue) AttrNames() []string {
	if n, ok := o.g.(interface{ Names() []string }); ok {
		return n.Names()
	}

	return nil
}

// iterValue is a [lang.Iterable], such as a looper.
type iterValue struct{ it lang.Iterable }

var _ starlark.Iterable = iterValue{}

func (v iterValue) String() string        { return fmt.Sprint(v.it) }
func (v iterValue) Type() string          { return "iterable" }
func (v iterValue) Freeze()               {}
func (v iterValue) Truth() starlark.Bool  { return starlark.True }
func (v iterValue) Hash() (uint32, error) { return 0, fmt.Errorf("%w: iterable", errUnhashable) }

func (v iterValue) Iterate() starlark.Iterator {
	next, stop := iter.Pull(v.it.All())

	return &pullIterator{next: next, stop: stop}
}

type pullIterator struct {
	next func() (any, bool)
	stop func()
}

func (p *pullIterator) Next(out *starlark.Value) bool {
	v, ok := p.next()
	if !ok {
		return false
	}

	sv, err := ToValue(v)
	if err != nil {
		sv = goValue{v: v}
	}

	*out = sv

	return true
}

func (p *pullIterator) Done() { p.stop() }

// structValue exposes the exported fields and methods of a struct, or a
// pointer to one. Fields are named by their expr tag, their Go name, or its
// snake_case form; methods by their Go name or its snake_case form.
type structValue struct{ v any }

var _ starlark.HasAttrs = structValue{}

func (s structValue) String() string        { return fmt.Sprint(s.v) }
func (s structValue) Type() string          { return reflect.TypeOf(s.v).String() }
func (s structValue) Freeze()               {}
func (s structValue) Truth() starlark.Bool  { return starlark.True }
func (s structValue) Hash() (uint32, error) { return 0, fmt.Errorf("%w: %s", errUnhashable, s.Type()) }

func (s structValue) Attr(name string) (starlark.Value, error) {
	rv := reflect.ValueOf(s.v)
	sv := reflect.Indirect(rv)
	st := sv.Type()

	for i := range st.NumField() {
		f := st.Field(i)
		if f.IsExported() && slices.Contains(fieldNames(f), name) {
			return ToValue(sv.Field(i).Interface())
		}
	}

	rt := rv.Type()

	for i := range rt.NumMethod() {
		m := rt.Method(i)
		if m.Name == name || snake(m.Name) == name {
			return &goFunc{name: name, fn: rv.Method(i).Interface()}, nil
		}
	}

	return nil, nil //nolint:nilnil // no such attribute
}

func (s structValue) AttrNames() []string {
	rv := reflect.ValueOf(s.v)
	st := reflect.Indirect(rv).Type()

	var names []string

	for i := range st.NumField() {
		if f := st.Field(i); f.IsExported() {
			names = append(names, fieldNames(f)[0])
		}
	}

	for i := range rv.Type().NumMethod() {
		names = append(names, snake(rv.Type().Method(i).Name))
	}

	slices.Sort(names)

	return slices.Compact(names)
}

func fieldNames(f reflect.StructField) []string {
	names := []string{snake(f.Name), f.Name}

	if tag, _, _ := strings.Cut(f.Tag.Get("expr"), ","); tag != "" && tag != "-" {
		names = append([]string{tag}, names...)
	}

	return names
}

// snake returns name in snake_case: "FirstGroup" becomes "first_group".
func snake(name string) string {
	var sb strings.Builder

	runes := []rune(name)

	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1]) ||
				(i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				sb.WriteByte('_')
			}

			r = unicode.ToLower(r)
		}

		sb.WriteRune(r)
	}

	return sb.String()
}
