package rules

import "github.com/DeusData/elixir-analyzer/internal/ast"

// IoInspect reports remote calls to IO.inspect left in code.
type IoInspect struct{}

func (IoInspect) Key() string { return "S004" }

func (r IoInspect) Detect(tree *ast.Node) []Finding {
	var findings []Finding
	tree.Walk(func(n *ast.Node) {
		if n.Kind != ast.KindNestedCall {
			return
		}
		// Remote calls decode as nested_call{".", args...} with the dot
		// holding {qualifier, function}.
		dot := n.Child(0)
		if dot == nil || dot.Kind != "." || len(dot.Children) != 2 {
			return
		}
		if !isDebugModule(dot.Children[0]) || dot.Children[1].Value != elixir.DebugCallFunction {
			return
		}
		findings = append(findings, Finding{
			RuleKey: r.Key(),
			Message: "Remove this " + elixir.DebugCallModule + "." + elixir.DebugCallFunction + " call",
			Line:    n.Line,
		})
	})
	return findings
}

func isDebugModule(n *ast.Node) bool {
	if n.Kind != ast.KindAliases || len(n.Children) != 1 {
		return false
	}
	return n.Children[0].Value == elixir.DebugCallModule
}
