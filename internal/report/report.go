// Package report defines what the analyzer hands to its host for each file
// (size measures, highlighting spans and issues) and ships the sinks used
// by the CLI and the MCP server.
package report

import (
	"github.com/DeusData/elixir-analyzer/internal/ast"
	"github.com/DeusData/elixir-analyzer/internal/measures"
	"github.com/DeusData/elixir-analyzer/internal/rules"
)

// Issue is a finding bound to a file and enriched with catalog metadata.
type Issue struct {
	File     string `json:"file"`
	RuleKey  string `json:"rule"`
	Message  string `json:"message"`
	Line     int    `json:"line,omitempty"`
	Severity string `json:"severity"`
	Type     string `json:"type"`
}

// Located reports whether the issue points at a line.
func (i Issue) Located() bool { return i.Line > 0 }

// IssueFor converts a rule finding into an issue on file.
func IssueFor(file string, def rules.Definition, f rules.Finding) Issue {
	line := f.Line
	if line < 0 {
		line = 0
	}
	return Issue{
		File:     file,
		RuleKey:  f.RuleKey,
		Message:  f.Message,
		Line:     line,
		Severity: def.Severity,
		Type:     def.Type,
	}
}

// Reporter receives analysis output. Calls for one file are made in the
// order Measures, Highlight (per span), Issue. Implementations are called
// from a single goroutine.
type Reporter interface {
	Measures(file string, size measures.Size)
	// Highlight records one span. An error rejects that span only.
	Highlight(file string, span Span) error
	Issue(issue Issue)
}

// Span is a highlighting range with 1-based lines and 0-based, end-exclusive
// column offsets.
type Span struct {
	Type        string `json:"type"`
	StartLine   int    `json:"start_line"`
	StartOffset int    `json:"start_offset"`
	EndLine     int    `json:"end_line"`
	EndOffset   int    `json:"end_offset"`
}

// SpanFor converts a token (1-based columns) to a span.
func SpanFor(tok ast.Token) Span {
	return Span{
		Type:        tok.Type,
		StartLine:   tok.Line,
		StartOffset: tok.Col - 1,
		EndLine:     tok.EndLine,
		EndOffset:   tok.EndCol - 1,
	}
}
