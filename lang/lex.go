package lang

import (
	"strconv"
	"strings"
)

// Delims is the pair of markers bounding a directive.
type Delims struct {
	Open  string
	Close string
}

// DefaultDelims are the delimiters used when none are configured.
var DefaultDelims = Delims{Open: "{{", Close: "}}"}

// valid reports whether d can be used to lex a template.
func (d Delims) valid() bool {
	return d.Open != "" && d.Close != "" && d.Open != d.Close
}

// Token is one element of a lexed template: either a run of literal text or
// the inner text of a single directive.
type Token struct {
	Text      string
	Pos       Position
	Directive bool

	// trimmed marks a directive whose surrounding whitespace Trim removed.
	trimmed bool
}

// String returns the token text, with directives shown between the default
// delimiters.
func (t Token) String() string {
	if !t.Directive {
		return strconv.Quote(t.Text)
	}

	return DefaultDelims.Open + t.Text + DefaultDelims.Close + " @ " + t.Pos.String()
}

// Lex splits source into literal and directive tokens.
//
// Directive tokens carry the position of the first character following the
// open delimiter. lineOffset is added to every reported line, for templates
// embedded in a larger file. Empty literal runs are not emitted.
//
// Lex fails with a [KindLex] error when an open delimiter appears inside a
// directive, a close delimiter appears outside one, or the source ends
// inside a directive.
func Lex(source, name string, delims Delims, lineOffset int) ([]Token, error) {
	if !delims.valid() {
		return nil, ErrLex.
			Errorf("invalid delimiters %q and %q", delims.Open, delims.Close).
			In(name)
	}

	var (
		tokens []Token
		inExpr bool
		last   int
		lastAt = Position{Offset: 0, Line: lineOffset + 1, Column: 1}
	)

	for {
		start, marker := nextDelim(source, last, delims)
		if start < 0 {
			break
		}

		end := start + len(marker)
		at := lastAt.advance(source, end)

		switch {
		case marker == delims.Open && inExpr:
			return nil, ErrLex.Errorf("%s inside expression", delims.Open).
				At(at).In(name)

		case marker == delims.Close && !inExpr:
			return nil, ErrLex.Errorf("%s outside expression", delims.Close).
				At(at).In(name)

		case marker == delims.Open:
			if part := source[last:start]; part != "" {
				tokens = append(tokens, Token{Text: part, Pos: lastAt})
			}

			inExpr = true

		default:
			tokens = append(tokens, Token{
				Text:      source[last:start],
				Pos:       lastAt,
				Directive: true,
			})
			inExpr = false
		}

		last = end
		lastAt = at
	}

	if inExpr {
		return nil, ErrLex.Errorf("No %s to finish last expression", delims.Close).
			At(lastAt).In(name)
	}

	if part := source[last:]; part != "" {
		tokens = append(tokens, Token{Text: part, Pos: lastAt})
	}

	return tokens, nil
}

// nextDelim returns the byte offset and text of the earliest delimiter at or
// after from, or -1 if there is none. When both delimiters start at the same
// offset the longer one wins.
func nextDelim(s string, from int, d Delims) (int, string) {
	open := strings.Index(s[from:], d.Open)
	closing := strings.Index(s[from:], d.Close)

	switch {
	case open < 0 && closing < 0:
		return -1, ""

	case closing < 0 || (open >= 0 && open < closing):
		return from + open, d.Open

	case open < 0 || closing < open:
		return from + closing, d.Close

	case len(d.Open) >= len(d.Close):
		return from + open, d.Open

	default:
		return from + closing, d.Close
	}
}
