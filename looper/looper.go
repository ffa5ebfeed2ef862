// Package looper provides loop metadata for template for directives.
//
// A [Looper] wraps a sequence and yields each element paired with a [*Pos]
// describing where the element sits in the sequence:
//
//	{{for loop, item in looper(items)}}
//	{{if loop.first}}<ul>{{endif}}
//	<li class="{{if loop.odd}}odd{{else}}even{{endif}}">{{loop.number}}. {{item}}</li>
//	{{if loop.last}}</ul>{{endif}}
//	{{endfor}}
package looper

import (
	"errors"
	"fmt"
	"iter"
	"reflect"
	"slices"
	"strings"
)

// ErrNotSequence is returned by [New] for values that are not sequences.
var ErrNotSequence = errors.New("not a sequence")

// Looper yields the elements of a sequence with their loop position.
type Looper struct {
	seq []any
}

// New returns a [Looper] over seq, which may be a slice, an array, a string
// (iterated by rune), an iter.Seq[any], or any value with an
// All() iter.Seq[any] method. The sequence is consumed once, up front.
func New(seq any) (*Looper, error) {
	switch s := seq.(type) {
	case []any:
		return &Looper{seq: s}, nil

	case iter.Seq[any]:
		return &Looper{seq: slices.Collect(s)}, nil

	case interface{ All() iter.Seq[any] }:
		return &Looper{seq: slices.Collect(s.All())}, nil

	case string:
		var elems []any
		for _, r := range s {
			elems = append(elems, string(r))
		}

		return &Looper{seq: elems}, nil
	}

	rv := reflect.ValueOf(seq)

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		elems := make([]any, rv.Len())
		for i := range elems {
			elems[i] = rv.Index(i).Interface()
		}

		return &Looper{seq: elems}, nil

	default:
		return nil, fmt.Errorf("%w: %T", ErrNotSequence, seq)
	}
}

// Len returns the number of elements.
func (l *Looper) Len() int { return len(l.seq) }

// All returns an iterator over two-element slices holding the [*Pos] of
// each element and the element itself.
func (l *Looper) All() iter.Seq[any] {
	return func(yield func(any) bool) {
		for i, item := range l.seq {
			if !yield([]any{l.pos(i), item}) {
				return
			}
		}
	}
}

// String returns a short description of the looper.
func (l *Looper) String() string { return fmt.Sprintf("<looper for %v>", l.seq) }

func (l *Looper) pos(i int) *Pos {
	p := &Pos{
		seq:    l.seq,
		Item:   l.seq[i],
		Index:  i,
		Number: i + 1,
		Length: len(l.seq),
		Odd:    i%2 == 0,
		Even:   i%2 == 1,
		First:  i == 0,
		Last:   i == len(l.seq)-1,
	}

	if i > 0 {
		p.Previous = l.seq[i-1]
	}

	if i+1 < len(l.seq) {
		p.Next = l.seq[i+1]
	}

	return p
}

// Pos describes the position of an element within a [Looper].
//
// Odd and Even follow Number, the 1-based position: the first element is
// odd.
type Pos struct {
	Item     any `expr:"item"`
	Next     any `expr:"next"`
	Previous any `expr:"previous"`
	seq      []any
	Index    int  `expr:"index"`
	Number   int  `expr:"number"`
	Length   int  `expr:"length"`
	Odd      bool `expr:"odd"`
	Even     bool `expr:"even"`
	First    bool `expr:"first"`
	Last     bool `expr:"last"`
}

// String returns a short description of the position.
func (p *Pos) String() string {
	return fmt.Sprintf("<loop pos=%v at %d>", p.Item, p.Index)
}

// FirstGroup reports whether the element starts a new group: it is the
// first element, or its group key differs from the previous element's.
//
// The optional getter selects the group key. It may be omitted or nil (the
// element itself), ".Name" (a field, expr-tagged field, or map key),
// ".Name()" (a method), a function of one argument, or a map key or slice
// index.
func (p *Pos) FirstGroup(getter ...any) (bool, error) {
	if p.First {
		return true, nil
	}

	return differ(p.Item, p.Previous, optional(getter))
}

// LastGroup reports whether the element ends a group: it is the last
// element, or its group key differs from the next element's. getter is as
// described for [Pos.FirstGroup].
func (p *Pos) LastGroup(getter ...any) (bool, error) {
	if p.Last {
		return true, nil
	}

	return differ(p.Item, p.Next, optional(getter))
}

func optional(args []any) any {
	if len(args) == 0 {
		return nil
	}

	return args[0]
}

// differ reports whether the group keys of a and b differ.
func differ(a, b, getter any) (bool, error) {
	if getter == nil {
		return !reflect.DeepEqual(a, b), nil
	}

	ka, err := key(a, getter)
	if err != nil {
		return false, err
	}

	kb, err := key(b, getter)
	if err != nil {
		return false, err
	}

	return !reflect.DeepEqual(ka, kb), nil
}

// key returns the group key of item selected by getter.
func key(item, getter any) (any, error) {
	if s, ok := getter.(string); ok && strings.HasPrefix(s, ".") {
		name := s[1:]
		if method, ok := strings.CutSuffix(name, "()"); ok {
			return callMethod(item, method)
		}

		return attr(item, name)
	}

	if fn := reflect.ValueOf(getter); fn.Kind() == reflect.Func {
		if fn.Type().NumIn() != 1 || fn.Type().NumOut() == 0 {
			return nil, fmt.Errorf("group getter must take one argument: %T", getter)
		}

		arg := reflect.ValueOf(item)
		if !arg.IsValid() {
			arg = reflect.Zero(fn.Type().In(0))
		}

		if !arg.Type().AssignableTo(fn.Type().In(0)) {
			return nil, fmt.Errorf("cannot use %T as %s", item, fn.Type().In(0))
		}

		return fn.Call([]reflect.Value{arg})[0].Interface(), nil
	}

	return index(item, getter)
}

func callMethod(item any, name string) (any, error) {
	m := reflect.ValueOf(item).MethodByName(name)
	if !m.IsValid() || m.Type().NumIn() != 0 || m.Type().NumOut() == 0 {
		return nil, fmt.Errorf("%T has no method %s()", item, name)
	}

	return m.Call(nil)[0].Interface(), nil
}

func attr(item any, name string) (any, error) {
	rv := reflect.Indirect(reflect.ValueOf(item))

	switch rv.Kind() {
	case reflect.Struct:
		rt := rv.Type()
		for i := range rt.NumField() {
			f := rt.Field(i)
			if f.IsExported() && (f.Name == name || f.Tag.Get("expr") == name) {
				return rv.Field(i).Interface(), nil
			}
		}

	case reflect.Map:
		return index(item, name)
	}

	return nil, fmt.Errorf("%T has no attribute %s", item, name)
}

func index(item, k any) (any, error) {
	rv := reflect.Indirect(reflect.ValueOf(item))

	switch rv.Kind() {
	case reflect.Map:
		kv := reflect.ValueOf(k)
		if !kv.IsValid() || !kv.Type().AssignableTo(rv.Type().Key()) {
			return nil, fmt.Errorf("invalid key %v for %T", k, item)
		}

		v := rv.MapIndex(kv)
		if !v.IsValid() {
			return nil, nil
		}

		return v.Interface(), nil

	case reflect.Slice, reflect.Array, reflect.String:
		i, ok := k.(int)
		if !ok {
			return nil, fmt.Errorf("invalid index %v for %T", k, item)
		}

		if i < 0 || i >= rv.Len() {
			return nil, fmt.Errorf("index %d out of range for %T", i, item)
		}

		return rv.Index(i).Interface(), nil
	}

	return nil, fmt.Errorf("cannot index %T", item)
}
