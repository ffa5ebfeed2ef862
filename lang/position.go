package lang

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Position identifies a location in template source.
//
// Line and Column are 1-based; Column counts runes, not bytes. Offset is the
// 0-based byte offset into the source.
type Position struct {
	Offset int
	Line   int
	Column int
}

// IsZero reports whether p carries no location.
func (p Position) IsZero() bool { return p.Line == 0 }

// String returns "line L column C".
func (p Position) String() string {
	return "line " + strconv.Itoa(p.Line) + " column " + strconv.Itoa(p.Column)
}

// advance returns the position of byte offset index in s, computed
// incrementally from p, the already known position of an earlier offset.
// Only the span s[p.Offset:index] is scanned.
func (p Position) advance(s string, index int) Position {
	span := s[p.Offset:index]

	lines := strings.Count(span, "\n")
	if lines == 0 {
		return Position{
			Offset: index,
			Line:   p.Line,
			Column: p.Column + utf8.RuneCountInString(span),
		}
	}

	tail := span[strings.LastIndexByte(span, '\n')+1:]

	return Position{
		Offset: index,
		Line:   p.Line + lines,
		Column: 1 + utf8.RuneCountInString(tail),
	}
}
