package lang

// This file defines the builtin names available to every expression. The
// shared set is built once per process and cloned for each template, which
// then adds its delimiters and any names given with [WithBuiltins].
//
// Builtin names are shadowed by the render namespace.

import (
	"maps"
	"reflect"
	"slices"
	"sync"

	"github.com/ardnew/tempita/looper"
)

// Builtin names bound to the delimiters of the template.
const (
	StartBracesKey = "start_braces"
	EndBracesKey   = "end_braces"
)

// TemplateNameKey is bound to the template name in every render namespace.
const TemplateNameKey = "__template_name__"

// Private singleton cache.
//
//nolint:gochecknoglobals
var (
	builtinsOnce sync.Once
	builtins     Namespace
)

// Builtins returns a copy of the builtin names shared by all templates.
// Callers may modify the returned map.
func Builtins() Namespace {
	builtinsOnce.Do(func() {
		builtins = Namespace{
			"looper":    looper.New,
			"range":     rangeFunc,
			"enumerate": enumerate,
			"items":     items,
			"repr":      Repr,
		}
	})

	return maps.Clone(builtins)
}

// makeBuiltins returns the builtin names of a template.
func makeBuiltins(delims Delims, extra Namespace) Namespace {
	ns := Builtins()

	ns[StartBracesKey] = delims.Open
	ns[EndBracesKey] = delims.Close

	maps.Copy(ns, extra)

	return ns
}

// rangeFunc returns the integers of range(stop), range(start, stop), or
// range(start, stop, step).
func rangeFunc(args ...int) ([]int, error) {
	start, stop, step := 0, 0, 1

	switch len(args) {
	case 1:
		stop = args[0]
	case 2:
		start, stop = args[0], args[1]
	case 3:
		start, stop, step = args[0], args[1], args[2]
	default:
		return nil, ErrEval.Errorf("range expected 1 to 3 arguments, got %d", len(args))
	}

	if step == 0 {
		return nil, ErrEval.Errorf("range step must not be zero")
	}

	var out []int

	for i := start; (step > 0 && i < stop) || (step < 0 && i > stop); i += step {
		out = append(out, i)
	}

	return out, nil
}

// enumerate pairs each element of seq with its index, counting from start
// (0 if omitted).
func enumerate(seq any, start ...int) ([][]any, error) {
	elems, err := Iterate(seq)
	if err != nil {
		return nil, err
	}

	i := 0
	if len(start) > 0 {
		i = start[0]
	}

	var out [][]any

	for e := range elems {
		out = append(out, []any{i, e})
		i++
	}

	return out, nil
}

// items returns the key-value pairs of a map, ordered by key.
func items(m any) ([][]any, error) {
	if g, ok := m.(interface{ Names() []string }); ok {
		if getter, ok := m.(Getter); ok {
			out := make([][]any, 0, len(g.Names()))
			for _, name := range g.Names() {
				out = append(out, []any{name, getter.Get(name)})
			}

			return out, nil
		}
	}

	rv := reflect.ValueOf(m)
	if rv.Kind() != reflect.Map {
		return nil, ErrEval.Errorf("items requires a map, got %T", m)
	}

	keys := SortedKeys(rv)

	return slices.Collect(func(yield func([]any) bool) {
		for _, k := range keys {
			if !yield([]any{k, rv.MapIndex(reflect.ValueOf(k)).Interface()}) {
				return
			}
		}
	}), nil
}
