package rules

import (
	"regexp"
	"strings"

	"github.com/DeusData/elixir-analyzer/internal/ast"
)

const pipeOperator = "|>"

var callName = regexp.MustCompile(`^[a-z_][a-zA-Z0-9_!?]*$`)

// notCalls are kinds that look like local calls but are special forms,
// control flow or decoder-made nodes.
var notCalls = map[string]bool{
	"@": true, "for": true, "with": true, "if": true, "unless": true,
	"case": true, "cond": true, "fn": true, "receive": true, "try": true,
	"quote": true, "unquote": true, "raise": true, "reraise": true,
	"throw": true, "super": true, "import": true, "require": true,
	"alias": true, "use": true,
	ast.KindList: true, ast.KindLiteral: true, ast.KindNil: true,
	ast.KindKeywordList: true, ast.KindKeywordPair: true, ast.KindUnknown: true,
}

// PipeChainStart reports pipe chains whose first operand is a function call
// rather than a raw value. Only the outermost link of a chain is checked.
type PipeChainStart struct{}

func (PipeChainStart) Key() string { return "S003" }

func (r PipeChainStart) Detect(tree *ast.Node) []Finding {
	var findings []Finding
	for _, pipe := range tree.FindAll(pipeOperator) {
		if len(pipe.Children) < 2 {
			continue
		}
		left := pipe.Children[0]
		if left.Kind == pipeOperator || !isFunctionCall(left) {
			continue
		}
		line := left.Line
		if line <= 0 {
			line = pipe.Line
		}
		findings = append(findings, Finding{
			RuleKey: r.Key(),
			Message: "Pipe chain should start with a raw value",
			Line:    line,
		})
	}
	return findings
}

func isFunctionCall(n *ast.Node) bool {
	if n.Kind == ast.KindNestedCall {
		return true
	}
	// Variables are zero-argument tuples.
	if len(n.Children) == 0 {
		return false
	}
	if notCalls[n.Kind] || strings.HasPrefix(n.Kind, "__") || strings.HasPrefix(n.Kind, "sigil_") {
		return false
	}
	return callName.MatchString(n.Kind)
}
