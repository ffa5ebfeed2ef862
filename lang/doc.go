// Package lang implements a small text templating language.
//
// A template is literal text interleaved with directives between a pair of
// delimiters, "{{" and "}}" by default. Compiling a template lexes it into
// literal and directive tokens, removes the blank lines left by control
// directives that sit alone on a line, and parses the result into a tree.
// Rendering walks the tree against a [Namespace] of variables.
//
// # Directives
//
//	{{expr}}                 value of expr, converted to text and quoted
//	{{expr | f | g}}         g(f(value of expr))
//	{{if expr}}...{{elif expr}}...{{else}}...{{endif}}
//	{{for a, b in expr}}...{{continue}}...{{break}}...{{endfor}}
//	{{def name}}...{{enddef}}
//	{{default name = expr}}
//	{{inherit expr}}
//	{{# comment}}
//
// Expressions are evaluated by an [Evaluator]. The default, [ExprEvaluator],
// uses expr-lang; package starlark provides an alternative.
//
// # Scoping
//
// Names resolve in two tiers: the builtins of the template (start_braces,
// end_braces, looper, range, enumerate, items, repr, and any added with
// [WithBuiltins]), overlaid by the render namespace. Blocks do not open a
// new scope. A loop variable keeps its last value after the loop ends, and a
// def sees later assignments to the namespace it was declared in.
//
// # Inheritance
//
// A template that executes {{inherit "name"}} is rendered first; its output
// and definitions are then exposed as self to the parent template, which a
// [Loader] resolves from the name. The parent's output is the final result:
//
//	{{# parent}}
//	<title>{{self.title}}</title>
//	{{self.body}}
//
// Attributes of self that the child did not define are [Empty].
//
// # Errors
//
// Every failure is an [*Error] whose message ends with the location of the
// offending directive, "at line L column C in NAME". Use [errors.Is] with
// [ErrLex], [ErrParse], [ErrEval], [ErrComposition], or [ErrUnpack] to test
// its kind.
package lang
