package cmd

import (
	"errors"
	"log/slog"
	"reflect"
	"testing"

	"github.com/ardnew/tempita/lang"
)

func TestParseVar(t *testing.T) {
	tests := []struct {
		arg   string
		name  string
		value any
	}{
		{arg: "a=b", name: "a", value: "b"},
		{arg: " a =b ", name: "a", value: "b "},
		{arg: "a=", name: "a", value: ""},
		{arg: "yaml:a=true", name: "a", value: true},
		{arg: "yaml:a=text", name: "a", value: "text"},
		{arg: "yaml:a=[x]", name: "a", value: []any{"x"}},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			name, value, err := parseVar(tt.arg)
			if err != nil {
				t.Fatalf("parseVar() error = %v", err)
			}

			if name != tt.name || !reflect.DeepEqual(value, tt.value) {
				t.Errorf("parseVar() = %q, %#v, want %q, %#v", name, value, tt.name, tt.value)
			}
		})
	}
}

func TestParseVars(t *testing.T) {
	ns := lang.Namespace{"keep": 1}

	if err := parseVars(ns, []string{"a=1", "a=2", "b=3"}); err != nil {
		t.Fatalf("parseVars() error = %v", err)
	}

	want := lang.Namespace{"keep": 1, "a": "2", "b": "3"}
	if !reflect.DeepEqual(ns, want) {
		t.Errorf("parseVars() = %v, want %v", ns, want)
	}

	if err := parseVars(ns, []string{"ok=1", "=x"}); !errors.Is(err, ErrVariable) {
		t.Errorf("parseVars() error = %v, want ErrVariable", err)
	}
}

func TestEnviron(t *testing.T) {
	ns := lang.Namespace{}

	environ(ns, []string{"A=1", "B=x=y", "=hidden", "C"})

	want := lang.Namespace{"A": "1", "B": "x=y"}
	if !reflect.DeepEqual(ns, want) {
		t.Errorf("environ() = %v, want %v", ns, want)
	}
}

func TestParseDelims(t *testing.T) {
	d, err := parseDelims(" <% %> ")
	if err != nil || d != (lang.Delims{Open: "<%", Close: "%>"}) {
		t.Errorf("parseDelims() = %v, %v", d, err)
	}

	for _, s := range []string{"", "{{", "a b c", "x x"} {
		if _, err := parseDelims(s); !errors.Is(err, ErrDelims) {
			t.Errorf("parseDelims(%q) error = %v, want ErrDelims", s, err)
		}
	}
}

func TestError(t *testing.T) {
	cause := errors.New("disk full")
	err := ErrWriteOutput.Wrap(cause).With(slog.String("path", "out"))

	if err.Error() != "write output: disk full" {
		t.Errorf("Error() = %q", err.Error())
	}

	if !errors.Is(err, ErrWriteOutput) || !errors.Is(err, cause) {
		t.Errorf("errors.Is() failed for %v", err)
	}

	if errors.Is(err, ErrReadTemplate) {
		t.Errorf("errors.Is(%v, ErrReadTemplate) = true", err)
	}

	v := err.LogValue()
	if v.Kind() != slog.KindGroup || len(v.Group()) != 3 {
		t.Errorf("LogValue() = %v", v)
	}

	if len(ErrWriteOutput.attrs) != 0 {
		t.Errorf("With() modified the sentinel")
	}
}
