package lang

import (
	"slices"
	"strings"
	"testing"
)

func join(tokens []Token) string {
	var sb strings.Builder

	for _, tok := range tokens {
		if tok.Directive {
			sb.WriteString("{{" + tok.Text + "}}")
		} else {
			sb.WriteString(tok.Text)
		}
	}

	return sb.String()
}

func TestTrim(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			name:   "block alone on lines",
			source: "{{if 1}}\nx={{x}}\n{{endif}}\n",
			want:   "{{if 1}}x={{x}}\n{{endif}}",
		},
		{
			name:   "indented block",
			source: "a\n  {{if x}}  \nb\n  {{endif}}\nc",
			want:   "a\n{{if x}}b\n{{endif}}c",
		},
		{
			name:   "expression untouched",
			source: "a\n{{x}}\nb",
			want:   "a\n{{x}}\nb",
		},
		{
			name:   "statement mid line",
			source: "a {{if x}}\nb{{endif}}",
			want:   "a {{if x}}\nb{{endif}}",
		},
		{
			name:   "directive text stripped",
			source: "{{ x }}",
			want:   "{{x}}",
		},
		{
			name:   "nested blocks",
			source: "{{if a}}\n{{if b}}\nx\n{{endif}}\n{{endif}}\n",
			want:   "{{if a}}{{if b}}x\n{{endif}}{{endif}}",
		},
		{
			name:   "comment",
			source: "a\n{{# note}}\nb",
			want:   "a\n{{# note}}b",
		},
		{
			name:   "for loop",
			source: "{{for i in x}}\n{{i}}\n{{endfor}}\n",
			want:   "{{for i in x}}{{i}}\n{{endfor}}",
		},
		{
			name:   "blank line after block",
			source: "{{if 1}}\n\nfoo{{endif}}",
			want:   "{{if 1}}\nfoo{{endif}}",
		},
		{
			name:   "several blank lines after block",
			source: "a\n{{if x}}\n\n\nb\n{{endif}}\nc",
			want:   "a\n{{if x}}\n\nb\n{{endif}}c",
		},
		{
			name:   "blank line after chained block",
			source: "{{if a}}\n \n{{endif}}\n\nz",
			want:   "{{if a}}{{endif}}\nz",
		},
		{
			name:   "default prefix in expression",
			source: "a\n{{defaults}}\nb",
			want:   "a\n{{defaults}}\nb",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Lex(tt.source, "", DefaultDelims, 0)
			if err != nil {
				t.Fatalf("Lex() error = %v", err)
			}

			orig := slices.Clone(tokens)

			once := Trim(tokens)
			if got := join(once); got != tt.want {
				t.Errorf("Trim() = %q, want %q", got, tt.want)
			}

			if !slices.Equal(tokens, orig) {
				t.Errorf("Trim() modified its input")
			}

			if twice := Trim(once); !slices.Equal(twice, once) {
				t.Errorf("Trim() is not idempotent: %q != %q", join(twice), join(once))
			}
		})
	}
}
