package rules

import (
	"strings"

	"github.com/DeusData/elixir-analyzer/internal/ast"
)

const moduledocAttribute = "moduledoc"

// MissingModuledoc reports modules without a @moduledoc attribute.
// `@moduledoc false` counts as documented. Test modules are skipped.
type MissingModuledoc struct{}

func (MissingModuledoc) Key() string { return "S001" }

func (r MissingModuledoc) Detect(tree *ast.Node) []Finding {
	var findings []Finding
	for _, defmodule := range moduleDefinitions(tree) {
		name := moduleName(defmodule)
		if strings.HasSuffix(name, elixir.TestModuleSuffix) {
			continue
		}
		if hasModuledoc(defmodule) {
			continue
		}
		findings = append(findings, Finding{
			RuleKey: r.Key(),
			Message: "Add @moduledoc to " + name,
			Line:    defmodule.Line,
		})
	}
	return findings
}

func hasModuledoc(defmodule *ast.Node) bool {
	body, ok := defmodule.Child(1).Keyword("do")
	if !ok {
		return false
	}
	for _, expr := range body.BlockChildren() {
		if expr.Kind != "@" {
			continue
		}
		for _, attr := range expr.Children {
			if attr.Kind == moduledocAttribute {
				return true
			}
		}
	}
	return false
}
