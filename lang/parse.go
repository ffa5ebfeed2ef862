package lang

import (
	"regexp"
	"slices"
	"strings"
)

var (
	// inRe separates the variables of a for directive from its iterable.
	inRe = regexp.MustCompile(`\s+in\s+`)

	// identRe matches a valid variable name.
	identRe = regexp.MustCompile(`(?i)^[a-z_][a-z0-9_]*$`)
)

// IsIdentifier reports whether s can name a variable, def, or loop target.
func IsIdentifier(s string) bool { return identRe.MatchString(s) }

// block is a kind of open block on the parser's context stack.
type block string

const (
	blockIf  block = "if"
	blockFor block = "for"
	blockDef block = "def"
)

// Parse builds the AST of a lexed (and usually trimmed) token sequence.
//
// Parse fails with a [KindParse] error on unmatched or misplaced block
// directives, malformed for/default directives, and break or continue
// outside of a loop. The error is located at the offending directive, or at
// the opening directive of a block that is never closed.
func Parse(tokens []Token, name string) ([]Node, error) {
	p := &parser{tokens: tokens, name: name}

	var nodes []Node

	for !p.eof() {
		n, err := p.parseNode(nil)
		if err != nil {
			return nil, err
		}

		if n != nil {
			nodes = append(nodes, n)
		}
	}

	return nodes, nil
}

// parser holds the parser state.
type parser struct {
	tokens []Token
	name   string
	pos    int
}

func (p *parser) eof() bool { return p.pos >= len(p.tokens) }

func (p *parser) peek() Token { return p.tokens[p.pos] }

func (p *parser) advance() Token {
	t := p.tokens[p.pos]
	p.pos++

	return t
}

// peekDirective returns the stripped text of the next token if it is a
// directive.
func (p *parser) peekDirective() (string, bool) {
	if p.eof() || !p.peek().Directive {
		return "", false
	}

	return strings.TrimSpace(p.peek().Text), true
}

func (p *parser) errorf(at Position, format string, args ...any) error {
	return ErrParse.Errorf(format, args...).At(at).In(p.name)
}

// parseNode parses the next node. It returns a nil Node for literal tokens
// with no text.
func (p *parser) parseNode(context []block) (Node, error) {
	tok := p.peek()

	if !tok.Directive {
		p.advance()

		if tok.Text == "" {
			return nil, nil
		}

		return &Literal{Text: tok.Text, At: tok.Pos}, nil
	}

	text := strings.TrimSpace(tok.Text)

	switch {
	case text == "continue" || text == "break":
		if !slices.Contains(context, blockFor) {
			return nil, p.errorf(tok.Pos, "%s outside of for loop", text)
		}

		p.advance()

		if text == "break" {
			return &Break{At: tok.Pos}, nil
		}

		return &Continue{At: tok.Pos}, nil

	case strings.HasPrefix(text, "if "):
		return p.parseCond(context)

	case strings.HasPrefix(text, "elif ") || isElse(text):
		return nil, p.errorf(tok.Pos, "%s outside of an if block",
			strings.TrimSuffix(strings.Fields(text)[0], ":"))

	case text == "if" || text == "elif" || text == "for":
		return nil, p.errorf(tok.Pos, "%s with no expression", text)

	case text == "endif" || text == "endfor" || text == "enddef":
		return nil, p.errorf(tok.Pos, "Unexpected %s", text)

	case strings.HasPrefix(text, "for "):
		return p.parseFor(context)

	case strings.HasPrefix(text, "default "):
		return p.parseDefault()

	case strings.HasPrefix(text, "inherit "):
		return p.parseInherit()

	case strings.HasPrefix(text, "def "):
		return p.parseDef(context)

	case strings.HasPrefix(text, "#"):
		p.advance()

		return &Comment{Text: text, At: tok.Pos}, nil
	}

	p.advance()

	return &Expr{Source: text, At: tok.Pos}, nil
}

func isElse(text string) bool { return text == "else" || text == "else:" }

// parseCond parses an if/elif/else chain through its endif.
func (p *parser) parseCond(context []block) (Node, error) {
	start := p.peek().Pos
	cond := &Cond{At: start}
	context = append(slices.Clip(context), blockIf)

	for {
		if p.eof() {
			return nil, p.errorf(start, "Missing {{endif}}")
		}

		if text, ok := p.peekDirective(); ok && text == "endif" {
			p.advance()

			return cond, nil
		}

		if n := len(cond.Branches); n > 0 && cond.Branches[n-1].Kind == BranchElse {
			return nil, p.errorf(p.peek().Pos, "else must be the last branch of an if block")
		}

		branch, err := p.parseBranch(context)
		if err != nil {
			return nil, err
		}

		cond.Branches = append(cond.Branches, branch)
	}
}

// parseBranch parses one clause of a conditional, stopping before the next
// elif, else, or endif.
func (p *parser) parseBranch(context []block) (Branch, error) {
	tok := p.advance()
	first := strings.TrimSuffix(strings.TrimSpace(tok.Text), ":")

	branch := Branch{At: tok.Pos}

	switch {
	case strings.HasPrefix(first, "if "):
		branch.Kind = BranchIf
		branch.Test = strings.TrimSpace(first[len("if "):])

	case strings.HasPrefix(first, "elif "):
		branch.Kind = BranchElif
		branch.Test = strings.TrimSpace(first[len("elif "):])

	case first == "else":
		branch.Kind = BranchElse

	default:
		return branch, p.errorf(tok.Pos, "Unexpected token %q in if block", first)
	}

	if branch.Kind != BranchElse && branch.Test == "" {
		return branch, p.errorf(tok.Pos, "%s with no expression", branch.Kind)
	}

	for {
		if p.eof() {
			return branch, p.errorf(tok.Pos, "No {{endif}}")
		}

		if text, ok := p.peekDirective(); ok &&
			(text == "endif" || strings.HasPrefix(text, "elif ") || isElse(text)) {
			return branch, nil
		}

		n, err := p.parseNode(context)
		if err != nil {
			return branch, err
		}

		if n != nil {
			branch.Body = append(branch.Body, n)
		}
	}
}

// parseFor parses a for loop through its endfor.
func (p *parser) parseFor(context []block) (Node, error) {
	tok := p.advance()
	context = append(slices.Clip(context), blockFor)

	first := strings.TrimSuffix(strings.TrimSpace(tok.Text), ":")
	first = strings.TrimSpace(first[len("for"):])

	loc := inRe.FindStringIndex(first)
	if loc == nil {
		return nil, p.errorf(tok.Pos, "Bad for (no \"in\") in %q", first)
	}

	vars := first[:loc[0]]
	if strings.Contains(vars, "(") {
		return nil, p.errorf(tok.Pos,
			"You cannot have () in the variable section of a for loop (%q)", vars)
	}

	node := &For{At: tok.Pos, Iter: strings.TrimSpace(first[loc[1]:])}

	for v := range strings.SplitSeq(vars, ",") {
		if v = strings.TrimSpace(v); v != "" {
			node.Vars = append(node.Vars, v)
		}
	}

	if len(node.Vars) == 0 {
		return nil, p.errorf(tok.Pos, "Bad for (no variables) in %q", first)
	}

	for _, v := range node.Vars {
		if !identRe.MatchString(v) {
			return nil, p.errorf(tok.Pos, "Not a valid variable name for {{for}}: %q", v)
		}
	}

	for {
		if p.eof() {
			return nil, p.errorf(tok.Pos, "No {{endfor}}")
		}

		if text, ok := p.peekDirective(); ok && text == "endfor" {
			p.advance()

			return node, nil
		}

		n, err := p.parseNode(context)
		if err != nil {
			return nil, err
		}

		if n != nil {
			node.Body = append(node.Body, n)
		}
	}
}

// parseDefault parses "default var = expr".
func (p *parser) parseDefault() (Node, error) {
	tok := p.advance()
	first := strings.TrimSpace(strings.TrimSpace(tok.Text)[len("default"):])

	variable, value, ok := strings.Cut(first, "=")
	if !ok {
		return nil, p.errorf(tok.Pos,
			"Expression must be {{default var=value}}; no = found in %q", first)
	}

	variable = strings.TrimSpace(variable)
	if strings.Contains(variable, ",") {
		return nil, p.errorf(tok.Pos, "{{default x, y = ...}} is not supported")
	}

	if !identRe.MatchString(variable) {
		return nil, p.errorf(tok.Pos,
			"Not a valid variable name for {{default}}: %q", variable)
	}

	return &Default{
		Var:   variable,
		Value: strings.TrimSpace(value),
		At:    tok.Pos,
	}, nil
}

// parseInherit parses "inherit expr".
func (p *parser) parseInherit() (Node, error) {
	tok := p.advance()

	return &Inherit{
		Target: strings.TrimSpace(strings.TrimSpace(tok.Text)[len("inherit"):]),
		At:     tok.Pos,
	}, nil
}

// parseDef parses a def block through its enddef. A parenthesized parameter
// signature after the name is accepted and ignored.
func (p *parser) parseDef(context []block) (Node, error) {
	tok := p.advance()
	context = append(slices.Clip(context), blockDef)

	name := strings.TrimSuffix(strings.TrimSpace(tok.Text), ":")
	name = strings.TrimSpace(name[len("def"):])

	if i := strings.IndexByte(name, '('); i >= 0 {
		name = strings.TrimSpace(name[:i])
	}

	if !identRe.MatchString(name) {
		return nil, p.errorf(tok.Pos, "Not a valid name for {{def}}: %q", name)
	}

	node := &Def{Name: name, At: tok.Pos}

	for {
		if p.eof() {
			return nil, p.errorf(tok.Pos, "Missing {{enddef}}")
		}

		if text, ok := p.peekDirective(); ok && text == "enddef" {
			p.advance()

			return node, nil
		}

		n, err := p.parseNode(context)
		if err != nil {
			return nil, err
		}

		if n != nil {
			node.Body = append(node.Body, n)
		}
	}
}
