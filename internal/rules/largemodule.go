package rules

import (
	"fmt"

	"github.com/DeusData/elixir-analyzer/internal/ast"
)

// DefaultMaxModuleLines is the large-module threshold when none is set.
const DefaultMaxModuleLines = 500

// LargeModule reports modules spanning more than MaxLines lines.
type LargeModule struct {
	MaxLines int
}

// NewLargeModule returns the rule with the given threshold; values below 1
// select DefaultMaxModuleLines.
func NewLargeModule(maxLines int) LargeModule {
	if maxLines < 1 {
		maxLines = DefaultMaxModuleLines
	}
	return LargeModule{MaxLines: maxLines}
}

func (LargeModule) Key() string { return "S002" }

func (r LargeModule) Detect(tree *ast.Node) []Finding {
	maxLines := r.MaxLines
	if maxLines < 1 {
		maxLines = DefaultMaxModuleLines
	}
	var findings []Finding
	for _, defmodule := range moduleDefinitions(tree) {
		start := defmodule.Line
		end := defmodule.MaxLine()
		if start <= 0 || end <= 0 {
			continue
		}
		// The closing `end` carries no metadata of its own, so the span
		// counts one line past the deepest node.
		span := end - start + 2
		if span <= maxLines {
			continue
		}
		findings = append(findings, Finding{
			RuleKey: r.Key(),
			Message: fmt.Sprintf("%s has %d lines (max %d)", moduleName(defmodule), span, maxLines),
			Line:    start,
		})
	}
	return findings
}
