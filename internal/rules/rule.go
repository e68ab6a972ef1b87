// Package rules holds the structural checks run over a decoded Elixir tree.
//
// A Rule is a pure function of the tree: Detect never mutates it, keeps no
// state between calls and reports findings in traversal order. Turning a
// Finding into a reported issue is left to the caller.
package rules

import (
	"slices"

	"github.com/DeusData/elixir-analyzer/internal/ast"
	"github.com/DeusData/elixir-analyzer/internal/lang"
)

// Rule is one detector.
type Rule interface {
	Key() string
	Detect(tree *ast.Node) []Finding
}

// Finding is a rule match. Line is 1-based; 0 means the finding applies to
// the file as a whole.
type Finding struct {
	RuleKey string
	Message string
	Line    int
}

// Options tunes the rule set.
type Options struct {
	// MaxModuleLines is the large-module threshold; 0 selects the default.
	MaxModuleLines int
	// Disabled lists rule keys to leave out.
	Disabled []string
}

// All returns the enabled rules in catalog order.
func All(opts Options) []Rule {
	all := []Rule{
		MissingModuledoc{},
		NewLargeModule(opts.MaxModuleLines),
		PipeChainStart{},
		IoInspect{},
		HardcodedSecret{},
	}
	rules := all[:0]
	for _, r := range all {
		if !slices.Contains(opts.Disabled, r.Key()) {
			rules = append(rules, r)
		}
	}
	return rules
}

// Run applies every rule to tree and concatenates the findings.
func Run(rules []Rule, tree *ast.Node) []Finding {
	if tree == nil {
		return nil
	}
	var findings []Finding
	for _, r := range rules {
		findings = append(findings, r.Detect(tree)...)
	}
	return findings
}

const placeholderModuleName = "Module"

var elixir = lang.ForLanguage(lang.Elixir)

// moduleName returns the dotted alias of a defmodule node, or a placeholder
// when the first argument is not a plain alias.
func moduleName(defmodule *ast.Node) string {
	if name, ok := defmodule.Child(0).AliasName(); ok {
		return name
	}
	return placeholderModuleName
}

// moduleDefinitions returns every module-defining node in pre-order.
func moduleDefinitions(tree *ast.Node) []*ast.Node {
	var out []*ast.Node
	tree.Walk(func(n *ast.Node) {
		if slices.Contains(elixir.ModuleNodeTypes, n.Kind) {
			out = append(out, n)
		}
	})
	return out
}
