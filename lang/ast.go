package lang

import (
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"
)

// Node is an element of a parsed template.
type Node interface {
	// Pos returns the position of the directive, or of the literal text.
	Pos() Position
	node()
}

// BranchKind identifies the clause of a conditional.
type BranchKind int

const (
	BranchIf BranchKind = iota
	BranchElif
	BranchElse
)

// String returns the directive keyword of the branch kind.
func (k BranchKind) String() string {
	switch k {
	case BranchIf:
		return "if"
	case BranchElif:
		return "elif"
	case BranchElse:
		return "else"
	default:
		return "branch(" + strconv.Itoa(int(k)) + ")"
	}
}

type (
	// Literal is a run of text copied to output verbatim.
	Literal struct {
		Text string
		At   Position
	}

	// Expr is an expression directive with optional "|" filters.
	Expr struct {
		Source string
		At     Position
	}

	// Cond is an if/elif/else chain. At most one BranchElse exists and it
	// is always last.
	Cond struct {
		Branches []Branch
		At       Position
	}

	// Branch is one clause of a Cond. Test is empty for BranchElse.
	Branch struct {
		Test string
		Body []Node
		At   Position
		Kind BranchKind
	}

	// For iterates Body over the value of Iter, binding Vars each time.
	For struct {
		Iter string
		Vars []string
		Body []Node
		At   Position
	}

	// Def declares a named, callable sub-template.
	Def struct {
		Name string
		Body []Node
		At   Position
	}

	// Default binds Var to the value of Value when Var is not yet bound.
	Default struct {
		Var   string
		Value string
		At    Position
	}

	// Inherit requests composition with the parent template named by the
	// value of Target.
	Inherit struct {
		Target string
		At     Position
	}

	// Comment is ignored at render time.
	Comment struct {
		Text string
		At   Position
	}

	// Break exits the innermost enclosing loop.
	Break struct{ At Position }

	// Continue skips to the next iteration of the innermost enclosing loop.
	Continue struct{ At Position }
)

func (n *Literal) Pos() Position  { return n.At }
func (n *Expr) Pos() Position     { return n.At }
func (n *Cond) Pos() Position     { return n.At }
func (n *For) Pos() Position      { return n.At }
func (n *Def) Pos() Position      { return n.At }
func (n *Default) Pos() Position  { return n.At }
func (n *Inherit) Pos() Position  { return n.At }
func (n *Comment) Pos() Position  { return n.At }
func (n *Break) Pos() Position    { return n.At }
func (n *Continue) Pos() Position { return n.At }

func (*Literal) node()  {}
func (*Expr) node()     {}
func (*Cond) node()     {}
func (*For) node()      {}
func (*Def) node()      {}
func (*Default) node()  {}
func (*Inherit) node()  {}
func (*Comment) node()  {}
func (*Break) node()    {}
func (*Continue) node() {}

// Walk returns an iterator over nodes and all of their descendants in
// document order.
func Walk(nodes []Node) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		walk(nodes, yield)
	}
}

func walk(nodes []Node, yield func(Node) bool) bool {
	for _, n := range nodes {
		if !yield(n) {
			return false
		}

		switch n := n.(type) {
		case *Cond:
			for _, b := range n.Branches {
				if !walk(b.Body, yield) {
					return false
				}
			}

		case *For:
			if !walk(n.Body, yield) {
				return false
			}

		case *Def:
			if !walk(n.Body, yield) {
				return false
			}
		}
	}

	return true
}

// Literals concatenates the text of every Literal in nodes, in document
// order, eliding all directives.
func Literals(nodes []Node) string {
	var sb strings.Builder

	for n := range Walk(nodes) {
		if lit, ok := n.(*Literal); ok {
			sb.WriteString(lit.Text)
		}
	}

	return sb.String()
}

// Print writes an indented tree representation of nodes to w.
func Print(w io.Writer, nodes []Node) {
	printNodes(writer(w), nodes, 0)
}

func writer(w io.Writer) func(indent int, format string, args ...any) {
	return func(indent int, format string, args ...any) {
		_, _ = fmt.Fprintf(w, "%s"+format+"\n",
			append([]any{strings.Repeat("  ", indent)}, args...)...)
	}
}

func printNodes(
	out func(indent int, format string, args ...any),
	nodes []Node,
	indent int,
) {
	for _, n := range nodes {
		switch n := n.(type) {
		case *Literal:
			out(indent, "literal %q", n.Text)

		case *Expr:
			out(indent, "expr %q (%s)", n.Source, n.At)

		case *Cond:
			out(indent, "cond (%s)", n.At)

			for _, b := range n.Branches {
				if b.Kind == BranchElse {
					out(indent+1, "%s (%s)", b.Kind, b.At)
				} else {
					out(indent+1, "%s %q (%s)", b.Kind, b.Test, b.At)
				}

				printNodes(out, b.Body, indent+2)
			}

		case *For:
			out(indent, "for %s in %q (%s)",
				strings.Join(n.Vars, ", "), n.Iter, n.At)
			printNodes(out, n.Body, indent+1)

		case *Def:
			out(indent, "def %s (%s)", n.Name, n.At)
			printNodes(out, n.Body, indent+1)

		case *Default:
			out(indent, "default %s = %q (%s)", n.Var, n.Value, n.At)

		case *Inherit:
			out(indent, "inherit %q (%s)", n.Target, n.At)

		case *Comment:
			out(indent, "comment %q (%s)", n.Text, n.At)

		case *Break:
			out(indent, "break (%s)", n.At)

		case *Continue:
			out(indent, "continue (%s)", n.At)
		}
	}
}
