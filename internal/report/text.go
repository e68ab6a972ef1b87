package report

import (
	"fmt"
	"io"

	"github.com/DeusData/elixir-analyzer/internal/measures"
)

// TextReporter prints one line per issue:
//
//	lib/app.ex:12: S001 [MINOR] Add @moduledoc to App
//
// Measures are printed only when Verbose is set; highlighting is dropped.
type TextReporter struct {
	W       io.Writer
	Verbose bool
}

func (t *TextReporter) Measures(file string, size measures.Size) {
	if t.Verbose {
		fmt.Fprintf(t.W, "%s: %d lines, %d ncloc, %d comment lines\n",
			file, size.Lines, size.NCLoc, size.CommentLines)
	}
}

func (t *TextReporter) Highlight(string, Span) error { return nil }

func (t *TextReporter) Issue(issue Issue) {
	if issue.Located() {
		fmt.Fprintf(t.W, "%s:%d: %s [%s] %s\n", issue.File, issue.Line, issue.RuleKey, issue.Severity, issue.Message)
		return
	}
	fmt.Fprintf(t.W, "%s: %s [%s] %s\n", issue.File, issue.RuleKey, issue.Severity, issue.Message)
}

// Tee forwards every call to each reporter in turn. Highlight fails if any
// reporter rejects the span.
type Tee []Reporter

func (t Tee) Measures(file string, size measures.Size) {
	for _, r := range t {
		r.Measures(file, size)
	}
}

func (t Tee) Highlight(file string, span Span) error {
	var first error
	for _, r := range t {
		if err := r.Highlight(file, span); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (t Tee) Issue(issue Issue) {
	for _, r := range t {
		r.Issue(issue)
	}
}
