package lang

import (
	"regexp"
	"strings"
)

var (
	// statementRe matches directives opening or continuing a block.
	statementRe = regexp.MustCompile(`^(?:if |elif |for |def |inherit |default |#)`)

	// trailSpaceRe matches a literal ending in a newline followed only by
	// horizontal whitespace.
	trailSpaceRe = regexp.MustCompile(`\n\r?[\t ]*$`)

	// leadSpaceRe matches a literal starting with horizontal whitespace
	// followed by a newline.
	leadSpaceRe = regexp.MustCompile(`^[\t ]*\n`)
)

// singleStatements are the control keywords recognized by exact match.
var singleStatements = map[string]bool{
	"else":     true,
	"else:":    true,
	"endif":    true,
	"endfor":   true,
	"enddef":   true,
	"continue": true,
	"break":    true,
}

// isStatement reports whether directive text is a control-flow keyword or a
// comment, the only directives eligible for whitespace trimming.
func isStatement(text string) bool {
	return singleStatements[text] || statementRe.MatchString(text)
}

// Trim removes the blank-line whitespace surrounding control directives that
// occupy a source line by themselves.
//
// Every directive's text is stripped of surrounding whitespace. For a control
// directive preceded by a literal ending in a newline and horizontal
// whitespace (or by nothing), and followed by a literal beginning with
// horizontal whitespace and a newline (or by nothing), the preceding literal
// is cut back to just after its last newline and the following literal is cut
// through its first newline. A literal emptied by a previous trim still counts
// as a line boundary for the next directive, so consecutive directive-only
// lines all collapse. Directives already trimmed by an earlier call are left
// alone.
//
// Trim returns a new slice and never modifies tokens. It is idempotent.
func Trim(tokens []Token) []Token {
	out := make([]Token, len(tokens))
	copy(out, tokens)

	lastTrim := -1

	for i := range out {
		if !out[i].Directive || out[i].trimmed {
			continue
		}

		out[i].Text = strings.TrimSpace(out[i].Text)

		if !isStatement(out[i].Text) {
			continue
		}

		var prev, next *Token

		if i > 0 {
			if out[i-1].Directive {
				continue
			}

			prev = &out[i-1]
		}

		if i+1 < len(out) {
			if out[i+1].Directive {
				continue
			}

			next = &out[i+1]
		}

		prevText, nextText := textOf(prev), textOf(next)
		prevBlank := strings.TrimSpace(prevText) == ""
		atEnd := i == len(out)-2 && strings.TrimSpace(nextText) == ""

		prevOK := prevText == "" || trailSpaceRe.MatchString(prevText) ||
			(i == 1 && prevBlank)
		chained := lastTrim >= 0 && lastTrim+2 == i && prevBlank

		if !prevOK && !chained {
			continue
		}

		if nextText != "" && !leadSpaceRe.MatchString(nextText) && !atEnd {
			continue
		}

		out[i].trimmed = true

		if prevText != "" {
			if (i == 1 && prevBlank) || chained {
				prev.Text = ""
			} else {
				loc := trailSpaceRe.FindStringIndex(prevText)
				prev.Text = prevText[:loc[0]+1]
			}
		}

		if nextText != "" {
			lastTrim = i

			if atEnd {
				next.Text = ""
			} else {
				loc := leadSpaceRe.FindStringIndex(nextText)
				next.Text = nextText[loc[1]:]
			}
		}
	}

	return out
}

func textOf(t *Token) string {
	if t == nil {
		return ""
	}

	return t.Text
}
