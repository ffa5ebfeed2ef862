package lang

import (
	"errors"
	"strings"
	"testing"
)

func parse(t *testing.T, source, name string) ([]Node, error) {
	t.Helper()

	tokens, err := Lex(source, name, DefaultDelims, 0)
	if err != nil {
		t.Fatalf("Lex() error = %v", err)
	}

	return Parse(Trim(tokens), name)
}

func TestParse(t *testing.T) {
	src := "{{if x}}\na\n{{else}}\nb\n{{endif}}\n{{for k, v in m}}{{k}}{{endfor}}"

	nodes, err := parse(t, src, "test")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	want := `cond (line 1 column 3)
  if "x" (line 1 column 3)
    literal "a\n"
  else (line 3 column 3)
    literal "b\n"
for k, v in "m" (line 6 column 3)
  expr "k" (line 6 column 20)
`

	var sb strings.Builder

	Print(&sb, nodes)

	if sb.String() != want {
		t.Errorf("Print() =\n%s\nwant\n%s", sb.String(), want)
	}

	if got := Literals(nodes); got != "a\nb\n" {
		t.Errorf("Literals() = %q, want %q", got, "a\nb\n")
	}
}

func TestParseDirectives(t *testing.T) {
	nodes, err := parse(t,
		"{{def f(a, b):}}x{{enddef}}{{default v = 1 + 2}}{{inherit 'p'}}{{# note}}{{a | b}}",
		"test")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(nodes) != 5 {
		t.Fatalf("Parse() returned %d nodes, want 5", len(nodes))
	}

	if d, ok := nodes[0].(*Def); !ok || d.Name != "f" || len(d.Body) != 1 {
		t.Errorf("node 0 = %#v, want def f", nodes[0])
	}

	if d, ok := nodes[1].(*Default); !ok || d.Var != "v" || d.Value != "1 + 2" {
		t.Errorf("node 1 = %#v, want default v = 1 + 2", nodes[1])
	}

	if i, ok := nodes[2].(*Inherit); !ok || i.Target != "'p'" {
		t.Errorf("node 2 = %#v, want inherit 'p'", nodes[2])
	}

	if _, ok := nodes[3].(*Comment); !ok {
		t.Errorf("node 3 = %#v, want comment", nodes[3])
	}

	if e, ok := nodes[4].(*Expr); !ok || e.Source != "a | b" {
		t.Errorf("node 4 = %#v, want expr", nodes[4])
	}

	count := 0
	for range Walk(nodes) {
		count++
	}

	if count != 6 {
		t.Errorf("Walk() visited %d nodes, want 6", count)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			name:   "unclosed if",
			source: "{{if x}}",
			want:   "No {{endif}} at line 1 column 3 in foo.html",
		},
		{
			name:   "for without in",
			source: "{{for x}}",
			want:   `Bad for (no "in") in "x" at line 1 column 3 in foo.html`,
		},
		{
			name:   "unexpected endif",
			source: "a {{x}} b {{endif}}",
			want:   "Unexpected endif at line 1 column 13 in foo.html",
		},
		{
			name:   "break outside loop",
			source: "{{break}}",
			want:   "break outside of for loop at line 1 column 3 in foo.html",
		},
		{
			name:   "continue in if outside loop",
			source: "{{if x}}{{continue}}{{endif}}",
			want:   "continue outside of for loop at line 1 column 11 in foo.html",
		},
		{
			name:   "elif outside if",
			source: "{{elif x}}",
			want:   "elif outside of an if block at line 1 column 3 in foo.html",
		},
		{
			name:   "else outside if",
			source: "{{else:}}",
			want:   "else outside of an if block at line 1 column 3 in foo.html",
		},
		{
			name:   "elif after else",
			source: "{{if x}}a{{else}}b{{elif y}}c{{endif}}",
			want:   "else must be the last branch of an if block at line 1 column 21 in foo.html",
		},
		{
			name:   "if without expression",
			source: "{{if}}{{endif}}",
			want:   "if with no expression at line 1 column 3 in foo.html",
		},
		{
			name:   "default without =",
			source: "{{default x}}",
			want:   `Expression must be {{default var=value}}; no = found in "x" at line 1 column 3 in foo.html`,
		},
		{
			name:   "default with comma",
			source: "{{default x, y = 1}}",
			want:   "{{default x, y = ...}} is not supported at line 1 column 3 in foo.html",
		},
		{
			name:   "default bad name",
			source: "{{default 1x = 1}}",
			want:   `Not a valid variable name for {{default}}: "1x" at line 1 column 3 in foo.html`,
		},
		{
			name:   "parenthesized loop vars",
			source: "{{for (a, b) in x}}{{endfor}}",
			want:   `You cannot have () in the variable section of a for loop ("(a, b)") at line 1 column 3 in foo.html`,
		},
		{
			name:   "bad loop var",
			source: "{{for a-b in x}}{{endfor}}",
			want:   `Not a valid variable name for {{for}}: "a-b" at line 1 column 3 in foo.html`,
		},
		{
			name:   "unclosed for",
			source: "{{for i in x}}",
			want:   "No {{endfor}} at line 1 column 3 in foo.html",
		},
		{
			name:   "unclosed def",
			source: "{{def f}}",
			want:   "Missing {{enddef}} at line 1 column 3 in foo.html",
		},
		{
			name:   "bad def name",
			source: "{{def 1f}}{{enddef}}",
			want:   `Not a valid name for {{def}}: "1f" at line 1 column 3 in foo.html`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes, err := parse(t, tt.source, "foo.html")
			if !errors.Is(err, ErrParse) {
				t.Fatalf("Parse() = %v, %v, want ErrParse", nodes, err)
			}

			if nodes != nil {
				t.Errorf("Parse() returned nodes with an error")
			}

			if err.Error() != tt.want {
				t.Errorf("Parse() error = %q, want %q", err, tt.want)
			}
		})
	}
}

func TestIsIdentifier(t *testing.T) {
	for _, s := range []string{"a", "_x", "Name2", "snake_case"} {
		if !IsIdentifier(s) {
			t.Errorf("IsIdentifier(%q) = false", s)
		}
	}

	for _, s := range []string{"", "1a", "a-b", "a.b", "a b"} {
		if IsIdentifier(s) {
			t.Errorf("IsIdentifier(%q) = true", s)
		}
	}
}
