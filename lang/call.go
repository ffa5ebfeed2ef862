package lang

import (
	"fmt"
	"reflect"
)

var errorType = reflect.TypeFor[error]()

// Call invokes fn with args and returns its result.
//
// fn may be a [*Definition], a [Macro], [Empty] (which returns itself), or
// any Go function. Arguments are converted to the parameter types of a Go
// function where Go allows the conversion, and variadic parameters are
// supported. A trailing error result is returned as the error of Call.
func Call(fn any, args ...any) (any, error) {
	switch f := fn.(type) {
	case nil:
		return nil, ErrEval.Errorf("cannot call nil")
	case *Definition:
		return f.Call(args...)
	case Macro:
		return f(args...)
	case EmptyValue:
		return Empty, nil
	case func(any) any:
		if len(args) == 1 {
			return f(args[0]), nil
		}
	}

	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func {
		return nil, ErrEval.Errorf("%T is not callable", fn)
	}

	ft := rv.Type()
	numIn := ft.NumIn()

	switch {
	case ft.IsVariadic() && len(args) < numIn-1:
		return nil, ErrEval.Errorf("function takes at least %d arguments (%d given)",
			numIn-1, len(args))

	case !ft.IsVariadic() && len(args) != numIn:
		return nil, ErrEval.Errorf("function takes %d arguments (%d given)",
			numIn, len(args))
	}

	in := make([]reflect.Value, len(args))

	for i, arg := range args {
		var pt reflect.Type
		if ft.IsVariadic() && i >= numIn-1 {
			pt = ft.In(numIn - 1).Elem()
		} else {
			pt = ft.In(i)
		}

		v, err := convertArg(arg, pt)
		if err != nil {
			return nil, ErrEval.Errorf("argument %d: %s", i+1, err)
		}

		in[i] = v
	}

	return callResult(rv.Call(in))
}

// convertArg returns arg as a value assignable to a parameter of type t.
func convertArg(arg any, t reflect.Type) (reflect.Value, error) {
	if arg == nil {
		return reflect.Zero(t), nil
	}

	v := reflect.ValueOf(arg)

	switch {
	case v.Type().AssignableTo(t):
		return v, nil

	case t.Kind() == reflect.String && v.Kind() != reflect.String:
		// Go converts integers to strings as code points, never as text.

	case v.Type().ConvertibleTo(t):
		return v.Convert(t), nil
	}

	return reflect.Value{}, fmt.Errorf("cannot use %T as %s", arg, t)
}

// callResult maps the results of a reflected call to a value and an error.
func callResult(out []reflect.Value) (any, error) {
	if len(out) == 0 {
		return nil, nil
	}

	last := out[len(out)-1]
	if last.Type() == errorType {
		if !last.IsNil() {
			err, _ := last.Interface().(error)

			return nil, err
		}

		if len(out) == 1 {
			return nil, nil
		}
	}

	return out[0].Interface(), nil
}
