package lang

import (
	"cmp"
	"errors"
	"fmt"
	"iter"
	"reflect"
	"slices"
	"strconv"
)

// Namespace maps variable names to values during a render.
type Namespace map[string]any

// Text is output already produced by a template render. [Quoter]
// implementations pass it through unchanged.
type Text string

// String implements fmt.Stringer.
func (t Text) String() string { return string(t) }

// Macro is the callable form of a [Definition] handed to expression
// evaluators. Arguments are accepted and ignored.
type Macro func(args ...any) (Text, error)

// Getter is implemented by values whose attributes are resolved by name at
// render time, such as the inheritance proxy [Object].
type Getter interface {
	Get(name string) any
}

// Iterable is implemented by values that can be looped over by a for
// directive.
type Iterable interface {
	All() iter.Seq[any]
}

// EmptyValue is the type of [Empty].
type EmptyValue func(args ...any) any

// Empty is the value of an undefined attribute of an inheritance proxy.
// It renders as empty text, iterates as an empty sequence, is falsy, and
// calling it returns Empty.
var Empty = EmptyValue(emptyCall)

func emptyCall(...any) any { return EmptyValue(emptyCall) }

// String implements fmt.Stringer.
func (EmptyValue) String() string { return "" }

// IsEmpty reports whether v is [Empty].
func IsEmpty(v any) bool {
	_, ok := v.(EmptyValue)

	return ok
}

// Truthy reports whether v is considered true by conditionals.
//
// nil, false, numeric zero, empty strings, empty collections, nil pointers,
// and [Empty] are false. Everything else is true.
func Truthy(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case Text:
		return v != ""
	case EmptyValue:
		return false
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.Complex64, reflect.Complex128:
		return rv.Complex() != 0
	case reflect.String, reflect.Slice, reflect.Array, reflect.Map, reflect.Chan:
		return rv.Len() != 0
	case reflect.Pointer, reflect.Interface, reflect.Func:
		return !rv.IsNil()
	default:
		return true
	}
}

// Iterate returns the elements a for directive visits when looping over v.
//
// Slices and arrays yield their elements, maps their keys in sorted order,
// strings their runes (each as a string), and [Iterable] values whatever
// All yields. [Empty] yields nothing.
func Iterate(v any) (iter.Seq[any], error) {
	switch v := v.(type) {
	case nil:
		return nil, errors.New("cannot iterate over nil")
	case Iterable:
		return v.All(), nil
	case iter.Seq[any]:
		return v, nil
	case EmptyValue:
		return func(func(any) bool) {}, nil
	case []any:
		return slices.Values(v), nil
	case string:
		return runes(v), nil
	case Text:
		return runes(string(v)), nil
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return func(yield func(any) bool) {
			for i := range rv.Len() {
				if !yield(rv.Index(i).Interface()) {
					return
				}
			}
		}, nil

	case reflect.Map:
		keys := SortedKeys(rv)

		return slices.Values(keys), nil

	case reflect.String:
		return runes(rv.String()), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr, reflect.Float32, reflect.Float64,
		reflect.Bool:
		return nil, fmt.Errorf("cannot iterate over %T", v)

	case reflect.Func:
		if seq, ok := rv.Interface().(func(func(any) bool)); ok {
			return seq, nil
		}
	}

	return nil, fmt.Errorf("cannot iterate over %T", v)
}

func runes(s string) iter.Seq[any] {
	return func(yield func(any) bool) {
		for _, r := range s {
			if !yield(string(r)) {
				return
			}
		}
	}
}

// Unpack splits an element into exactly n parts for a multi-variable for
// directive.
func Unpack(v any, n int) ([]any, error) {
	var parts []any

	switch e := v.(type) {
	case []any:
		parts = e

	case Iterable:
		parts = slices.Collect(e.All())

	default:
		rv := reflect.ValueOf(v)

		switch rv.Kind() {
		case reflect.Slice, reflect.Array:
			parts = make([]any, rv.Len())
			for i := range parts {
				parts[i] = rv.Index(i).Interface()
			}

		case reflect.String:
			parts = slices.Collect(runes(rv.String()))

		default:
			return nil, ErrUnpack.Errorf("cannot unpack non-sequence %T", v)
		}
	}

	if len(parts) != n {
		return nil, ErrUnpack.
			Errorf("Need %d items to unpack (got %d items)", n, len(parts))
	}

	return parts, nil
}

// ToText converts a value to output text.
//
// nil and [Empty] become empty text. Definitions and macros are invoked and
// their output used.
func ToText(v any) (string, error) {
	switch v := v.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case Text:
		return string(v), nil
	case EmptyValue:
		return "", nil
	case *Definition:
		t, err := v.Call()

		return string(t), err
	case Macro:
		t, err := v()

		return string(t), err
	case error:
		return v.Error(), nil
	case fmt.Stringer:
		return v.String(), nil
	case []byte:
		return string(v), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	default:
		return fmt.Sprint(v), nil
	}
}

// Repr returns a quoted, source-like representation of v.
func Repr(v any) string {
	switch v := v.(type) {
	case nil:
		return "nil"
	case string:
		return strconv.Quote(v)
	case Text:
		return strconv.Quote(string(v))
	case EmptyValue:
		return "Empty"
	case *Definition:
		return v.String()
	default:
		return fmt.Sprintf("%#v", v)
	}
}

// SortedKeys returns the keys of a map value in a deterministic order:
// numbers and strings by value, anything else by formatted text.
func SortedKeys(m reflect.Value) []any {
	keys := make([]any, 0, m.Len())
	for _, k := range m.MapKeys() {
		keys = append(keys, k.Interface())
	}

	slices.SortFunc(keys, compareKeys)

	return keys
}

func compareKeys(a, b any) int {
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)

	switch {
	case isInt(ra) && isInt(rb):
		return cmp.Compare(ra.Int(), rb.Int())
	case isUint(ra) && isUint(rb):
		return cmp.Compare(ra.Uint(), rb.Uint())
	case isFloat(ra) && isFloat(rb):
		return cmp.Compare(ra.Float(), rb.Float())
	case ra.Kind() == reflect.String && rb.Kind() == reflect.String:
		return cmp.Compare(ra.String(), rb.String())
	default:
		return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
	}
}

func isInt(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	default:
		return false
	}
}

func isUint(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr:
		return true
	default:
		return false
	}
}

func isFloat(v reflect.Value) bool {
	return v.Kind() == reflect.Float32 || v.Kind() == reflect.Float64
}
