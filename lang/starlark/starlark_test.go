package starlark

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.starlark.net/starlark"

	"github.com/ardnew/tempita/lang"
)

type user struct {
	First string
	Last  string `expr:"surname"`
}

func (u user) FullName() string { return u.First + " " + u.Last }

func render(t *testing.T, source string, ns lang.Namespace) (string, error) {
	t.Helper()

	tmpl, err := lang.Compile(source, "test", lang.WithEvaluator(&Evaluator{}))
	if err != nil {
		t.Fatalf("Compile(%q) error = %v", source, err)
	}

	return tmpl.Render(context.Background(), ns)
}

func TestEvaluator(t *testing.T) {
	tests := []struct {
		name   string
		source string
		ns     lang.Namespace
		want   string
	}{
		{name: "arithmetic", source: "{{x + 1}}", ns: lang.Namespace{"x": 1}, want: "2"},
		{name: "method", source: "{{name.upper()}}", ns: lang.Namespace{"name": "hi"}, want: "HI"},
		{name: "bool", source: "{{x > 1}}", ns: lang.Namespace{"x": 2}, want: "True"},
		{name: "list", source: "{{[1, 2]}}", want: "[1, 2]"},
		{name: "empty list falsy", source: "{{if xs}}yes{{else}}no{{endif}}", ns: lang.Namespace{"xs": []any{}}, want: "no"},
		{name: "format", source: `{{"%d items" % len(xs)}}`, ns: lang.Namespace{"xs": []int{1, 2, 3}}, want: "3 items"},
		{name: "dict", source: `{{m["b"]}}`, ns: lang.Namespace{"m": map[string]int{"a": 1, "b": 2}}, want: "2"},
		{
			name:   "enumerate",
			source: "{{for i, v in enumerate(xs)}}{{i}}={{v}} {{endfor}}",
			ns:     lang.Namespace{"xs": []string{"a", "b"}},
			want:   "0=a 1=b ",
		},
		{
			name:   "looper",
			source: "{{for loop, c in looper(\"ab\")}}{{loop.number}}{{c}}{{if not loop.last}},{{endif}}{{endfor}}",
			want:   "1a,2b",
		},
		{
			name:   "looper group",
			source: "{{for loop, n in looper(xs)}}{{if loop.first_group()}}[{{endif}}{{n}}{{endfor}}",
			ns:     lang.Namespace{"xs": []int{1, 1, 2}},
			want:   "[11[2",
		},
		{name: "lambda filter", source: "{{name | lambda s: s.upper()}}", ns: lang.Namespace{"name": "hi"}, want: "HI"},
		{name: "go filter", source: "{{name | shout}}", ns: lang.Namespace{"name": "ab", "shout": strings.ToUpper}, want: "AB"},
		{name: "def", source: "{{def greet}}hi {{name}}{{enddef}}{{greet()}}", ns: lang.Namespace{"name": "bob"}, want: "hi bob"},
		{name: "text concat", source: `{{t + "!"}}`, ns: lang.Namespace{"t": lang.Text("a")}, want: "a!"},
		{
			name:   "struct",
			source: "{{u.first}} {{u.surname}} {{u.full_name()}}",
			ns:     lang.Namespace{"u": user{First: "Ada", Last: "Lovelace"}},
			want:   "Ada Lovelace Ada Lovelace",
		},
		{
			name:   "object",
			source: "{{obj.body}}{{obj.missing}}{{if obj.missing}}!{{endif}}",
			ns:     lang.Namespace{"obj": lang.NewObject("x", nil, "body")},
			want:   "body",
		},
		{name: "start braces", source: "{{start_braces}}", want: "{{"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := render(t, tt.source, tt.ns)
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}

			if got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEvaluatorErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{name: "undefined", source: "{{nope}}", want: "undefined: nope"},
		{name: "syntax", source: "{{1 +}}", want: "at line 1 column 3 in test"},
		{name: "runtime", source: "{{1 // 0}}", want: "division by zero"},
		{name: "go error", source: "{{fail()}}", want: "boom"},
	}

	ns := lang.Namespace{
		"fail": func() (string, error) { return "", errors.New("boom") },
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := render(t, tt.source, ns)
			if !errors.Is(err, lang.ErrEval) {
				t.Fatalf("Render() error = %v, want ErrEval", err)
			}

			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Render() error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestPredeclared(t *testing.T) {
	e := NewEvaluator(starlark.StringDict{
		"greeting": starlark.String("hello"),
		"name":     starlark.String("shadowed"),
	})

	got, err := e.Eval(`greeting + " " + name`, lang.Namespace{"name": "world"})
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}

	if got != "hello world" {
		t.Errorf("Eval() = %v, want %q", got, "hello world")
	}
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{name: "int", in: 3, want: "3"},
		{name: "uint", in: uint8(7), want: "7"},
		{name: "float", in: 1.5, want: "1.5"},
		{name: "slice", in: []string{"a"}, want: `["a"]`},
		{name: "map", in: map[int]bool{2: false, 1: true}, want: "{1: True, 2: False}"},
		{name: "nil", in: nil, want: "None"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ToValue(tt.in)
			if err != nil {
				t.Fatalf("ToValue() error = %v", err)
			}

			if v.String() != tt.want {
				t.Errorf("ToValue().String() = %s, want %s", v.String(), tt.want)
			}
		})
	}

	fn, err := starlark.Eval(&starlark.Thread{}, "f", "lambda x: x * 2", nil)
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}

	double, ok := FromValue(fn).(func(...any) (any, error))
	if !ok {
		t.Fatalf("FromValue(function) = %T, want a Go function", FromValue(fn))
	}

	if got, err := double(21); err != nil || got != 42 {
		t.Errorf("double(21) = %v, %v, want 42", got, err)
	}
}

func TestSnake(t *testing.T) {
	for in, want := range map[string]string{
		"FirstGroup": "first_group",
		"Name":       "name",
		"HTMLName":   "html_name",
		"Item2":      "item2",
	} {
		if got := snake(in); got != want {
			t.Errorf("snake(%q) = %q, want %q", in, got, want)
		}
	}
}
