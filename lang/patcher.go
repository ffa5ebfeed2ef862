package lang

import (
	"github.com/expr-lang/expr/ast"
)

// truthPatcher wraps the operands of logical operators and the condition of
// a ternary in a call to the truthiness builtin.
//
// expr-lang only accepts booleans in these positions. After patching,
// "not items" and "name or fallback" test any value the way conditionals do.
type truthPatcher struct{}

// Visit implements ast.Visitor for truthPatcher.
func (truthPatcher) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.UnaryNode:
		if n.Operator == "not" || n.Operator == "!" {
			n.Node = truthy(n.Node)
		}

	case *ast.BinaryNode:
		switch n.Operator {
		case "and", "or", "&&", "||":
			n.Left = truthy(n.Left)
			n.Right = truthy(n.Right)
		}

	case *ast.ConditionalNode:
		n.Cond = truthy(n.Cond)
	}
}

// truthy returns n wrapped in a truthiness call, unless it already is one.
func truthy(n ast.Node) ast.Node {
	if isCallTo(n, truthyName) {
		return n
	}

	call := &ast.CallNode{
		Callee:    &ast.IdentifierNode{Value: truthyName},
		Arguments: []ast.Node{n},
	}
	call.SetLocation(n.Location())

	return call
}

// attrPatcher rewrites member access on a [Getter] into a call to the
// attribute builtin.
//
// "self.block" resolves to Empty when the child template did not define
// block, where expr-lang would otherwise reject the missing field.
type attrPatcher struct {
	env map[string]any
}

// Visit implements ast.Visitor for attrPatcher.
func (p *attrPatcher) Visit(node *ast.Node) {
	member, ok := (*node).(*ast.MemberNode)
	if !ok {
		return
	}

	prop, ok := member.Property.(*ast.StringNode)
	if !ok || !p.getter(member.Node) {
		return
	}

	ast.Patch(node, &ast.CallNode{
		Callee: &ast.IdentifierNode{Value: getattrName},
		Arguments: []ast.Node{
			member.Node,
			&ast.StringNode{Value: prop.Value},
		},
	})
}

// getter reports whether n yields a value whose attributes resolve through
// the attribute builtin: an environment name bound to a [Getter] or [Empty],
// or the result of an earlier rewrite.
func (p *attrPatcher) getter(n ast.Node) bool {
	switch n := n.(type) {
	case *ast.IdentifierNode:
		switch p.env[n.Value].(type) {
		case Getter, EmptyValue:
			return true
		}

	case *ast.CallNode:
		return isCallTo(n, getattrName)
	}

	return false
}

func isCallTo(n ast.Node, name string) bool {
	call, ok := n.(*ast.CallNode)
	if !ok {
		return false
	}

	id, ok := call.Callee.(*ast.IdentifierNode)

	return ok && id.Value == name
}
