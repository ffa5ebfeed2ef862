// Package html adapts templates to HTML output.
//
// Templates compiled with [Compile] escape the text of every expression
// directive unless the value is already HTML: an [HTML] value, any value
// with an HTML() string method, or the output of a def or of an inherited
// template's body. Four builtins are added:
//
//	html(v)             v as HTML, not escaped again
//	html_quote(v)       v escaped as HTML
//	url(v)              v percent-encoded for use in a URL path or query
//	attr({"name": v})   HTML attributes, sorted by name, skipping nil values
package html

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ardnew/tempita/lang"
)

// HTML is text that is already valid HTML.
type HTML string

// HTML returns h unchanged.
func (h HTML) HTML() string { return string(h) }

// String implements fmt.Stringer.
func (h HTML) String() string { return string(h) }

// Markup is implemented by values that render themselves as HTML.
type Markup interface {
	HTML() string
}

var escaper = strings.NewReplacer(
	`&`, "&amp;",
	`<`, "&lt;",
	`>`, "&gt;",
	`"`, "&quot;",
)

// Escape escapes the characters &, <, >, and " in s.
func Escape(s string) string { return escaper.Replace(s) }

// Quote returns v converted to text and escaped. When force is false, a
// [Markup] value is returned as its HTML without escaping. nil quotes to
// empty text.
func Quote(v any, force bool) (HTML, error) {
	if m, ok := v.(Markup); ok && !force {
		return HTML(m.HTML()), nil
	}

	if v == nil {
		return "", nil
	}

	s, err := lang.ToText(v)
	if err != nil {
		return "", err
	}

	return HTML(Escape(s)), nil
}

// Wrap returns v converted to text as [HTML], without escaping.
func Wrap(v any) (HTML, error) {
	s, err := lang.ToText(v)

	return HTML(s), err
}

// URL returns v converted to text and percent-encoded. Letters, digits,
// "_.-~" and "/" are kept; every other byte of the UTF-8 text is encoded
// as %XX.
func URL(v any) (string, error) {
	s, err := lang.ToText(v)
	if err != nil {
		return "", err
	}

	const hex = "0123456789ABCDEF"

	var sb strings.Builder

	for i := range len(s) {
		c := s[i]

		if unreserved(c) {
			sb.WriteByte(c)

			continue
		}

		sb.WriteByte('%')
		sb.WriteByte(hex[c>>4])
		sb.WriteByte(hex[c&0x0f])
	}

	return sb.String(), nil
}

func unreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	default:
		return strings.IndexByte("_.-~/", c) >= 0
	}
}

// Attr returns the HTML attributes name="value" for each entry of attrs,
// sorted by name and separated by spaces. Entries with a nil value are
// skipped, and a trailing "_" is removed from names, so that "class_" can
// stand for "class". Names and values are always escaped.
func Attr(attrs map[string]any) (HTML, error) {
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}

	slices.Sort(names)

	parts := make([]string, 0, len(names))

	for _, name := range names {
		value := attrs[name]
		if value == nil {
			continue
		}

		q, err := Quote(value, true)
		if err != nil {
			return "", fmt.Errorf("attribute %s: %w", name, err)
		}

		parts = append(parts,
			Escape(strings.TrimSuffix(name, "_"))+`="`+string(q)+`"`)
	}

	return HTML(strings.Join(parts, " ")), nil
}

// Quoter is the [lang.Quoter] of HTML templates. It escapes text unless the
// value is [Markup] or [lang.Text].
func Quoter(value any, text string) string {
	switch v := value.(type) {
	case Markup:
		return v.HTML()
	case lang.Text:
		return text
	default:
		return Escape(text)
	}
}

// Builtins returns the builtin names added to HTML templates.
func Builtins() lang.Namespace {
	return lang.Namespace{
		"html": Wrap,
		"html_quote": func(v any, force ...bool) (HTML, error) {
			return Quote(v, len(force) == 0 || force[0])
		},
		"url":  URL,
		"attr": Attr,
	}
}

// Options returns the template options that make a template produce HTML.
func Options() []lang.Option {
	return []lang.Option{
		lang.WithQuoter(Quoter),
		lang.WithBuiltins(Builtins()),
	}
}

// Compile compiles an HTML template. opts are applied after the HTML
// options and may override them.
func Compile(source, name string, opts ...lang.Option) (*lang.Template, error) {
	return lang.Compile(source, name, append(Options(), opts...)...)
}
