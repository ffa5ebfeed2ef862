package lang

import (
	"errors"
	"strings"
	"testing"
)

func TestLex(t *testing.T) {
	type tok struct {
		text      string
		line, col int
		directive bool
	}

	tests := []struct {
		name   string
		source string
		delims Delims
		offset int
		want   []tok
	}{
		{
			name:   "literal only",
			source: "hello",
			want:   []tok{{"hello", 1, 1, false}},
		},
		{
			name:   "directive",
			source: "a {{x}} b",
			want: []tok{
				{"a ", 1, 1, false},
				{"x", 1, 5, true},
				{" b", 1, 8, false},
			},
		},
		{
			name:   "adjacent directives",
			source: "{{a}}{{b}}",
			want: []tok{
				{"a", 1, 3, true},
				{"b", 1, 8, true},
			},
		},
		{
			name:   "multiline",
			source: "line one\n  {{ x }}\nend",
			want: []tok{
				{"line one\n  ", 1, 1, false},
				{" x ", 2, 5, true},
				{"\nend", 2, 10, false},
			},
		},
		{
			name:   "columns count runes",
			source: "héllo {{x}}",
			want: []tok{
				{"héllo ", 1, 1, false},
				{"x", 1, 9, true},
			},
		},
		{
			name:   "custom delims",
			source: "a ${x} {{b",
			delims: Delims{Open: "${", Close: "}"},
			want: []tok{
				{"a ", 1, 1, false},
				{"x", 1, 5, true},
				{" {{b", 1, 7, false},
			},
		},
		{
			name:   "line offset",
			source: "\n{{x}}",
			offset: 10,
			want: []tok{
				{"\n", 11, 1, false},
				{"x", 12, 3, true},
			},
		},
		{
			name:   "empty",
			source: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delims := tt.delims
			if delims == (Delims{}) {
				delims = DefaultDelims
			}

			got, err := Lex(tt.source, "test", delims, tt.offset)
			if err != nil {
				t.Fatalf("Lex() error = %v", err)
			}

			if len(got) != len(tt.want) {
				t.Fatalf("Lex() = %v, want %d tokens", got, len(tt.want))
			}

			for i, w := range tt.want {
				g := got[i]
				if g.Text != w.text || g.Directive != w.directive ||
					g.Pos.Line != w.line || g.Pos.Column != w.col {
					t.Errorf("token %d = %q directive=%v %s, want %q directive=%v line %d column %d",
						i, g.Text, g.Directive, g.Pos, w.text, w.directive, w.line, w.col)
				}
			}
		})
	}
}

func TestLexErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		delims Delims
		want   string
	}{
		{
			name:   "open inside directive",
			source: "{{a {{b}}",
			want:   "{{ inside expression at line 1 column 7 in test",
		},
		{
			name:   "close outside directive",
			source: "a }}",
			want:   "}} outside expression at line 1 column 5 in test",
		},
		{
			name:   "unterminated",
			source: "a\n{{b",
			want:   "No }} to finish last expression at line 2 column 3 in test",
		},
		{
			name:   "invalid delimiters",
			source: "a",
			delims: Delims{Open: "|", Close: "|"},
			want:   `invalid delimiters "|" and "|" in test`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delims := tt.delims
			if delims == (Delims{}) {
				delims = DefaultDelims
			}

			_, err := Lex(tt.source, "test", delims, 0)
			if !errors.Is(err, ErrLex) {
				t.Fatalf("Lex() error = %v, want ErrLex", err)
			}

			if err.Error() != tt.want {
				t.Errorf("Lex() error = %q, want %q", err, tt.want)
			}
		})
	}
}

func TestLexRoundTrip(t *testing.T) {
	sources := []string{
		"plain",
		"{{if x}}\n  {{y}}\n{{endif}}\n",
		"a{{b}}c{{d | e}}f",
		"ünïcödé {{ x }}\n\n{{y}}",
	}

	for _, src := range sources {
		tokens, err := Lex(src, "", DefaultDelims, 0)
		if err != nil {
			t.Fatalf("Lex(%q) error = %v", src, err)
		}

		var sb strings.Builder

		for _, tok := range tokens {
			if tok.Directive {
				sb.WriteString(DefaultDelims.Open + tok.Text + DefaultDelims.Close)
			} else {
				sb.WriteString(tok.Text)
			}

			if got := tok.Pos.Offset; !strings.HasPrefix(src[got:], tok.Text) {
				t.Errorf("Lex(%q): token %q not found at offset %d", src, tok.Text, got)
			}
		}

		if sb.String() != src {
			t.Errorf("Lex(%q) reassembles to %q", src, sb.String())
		}
	}
}
