package report

import (
	"errors"
	"fmt"
	"strings"

	"github.com/DeusData/elixir-analyzer/internal/ast"
)

// ErrInvalidSpan marks a span that does not fit the file.
var ErrInvalidSpan = errors.New("invalid highlighting span")

// ApplyHighlighting forwards every token that fits source to r. Tokens with
// an unknown type or a range outside the file are skipped, as are spans the
// reporter rejects; the remaining spans are still sent. It returns the
// number of spans accepted.
func ApplyHighlighting(r Reporter, file, source string, tokens []ast.Token) int {
	if len(tokens) == 0 {
		return 0
	}
	lines := strings.Split(source, "\n")
	applied := 0
	for _, tok := range tokens {
		if err := validateToken(tok, lines); err != nil {
			continue
		}
		if err := r.Highlight(file, SpanFor(tok)); err != nil {
			continue
		}
		applied++
	}
	return applied
}

func validateToken(tok ast.Token, lines []string) error {
	if !ast.KnownTokenType(tok.Type) {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidSpan, tok.Type)
	}
	total := len(lines)
	if tok.Line < 1 || tok.EndLine < 1 || tok.Line > total || tok.EndLine > total {
		return fmt.Errorf("%w: lines %d-%d outside 1-%d", ErrInvalidSpan, tok.Line, tok.EndLine, total)
	}
	if tok.Col < 1 || tok.EndCol < 1 {
		return fmt.Errorf("%w: columns %d-%d", ErrInvalidSpan, tok.Col, tok.EndCol)
	}
	return ValidateSpan(SpanFor(tok), lines)
}

// ValidateSpan checks that span starts before it ends and that both offsets
// fall within their lines.
func ValidateSpan(span Span, lines []string) error {
	if span.EndLine < span.StartLine ||
		(span.EndLine == span.StartLine && span.EndOffset <= span.StartOffset) {
		return fmt.Errorf("%w: end before start", ErrInvalidSpan)
	}
	if span.StartLine > len(lines) || span.EndLine > len(lines) {
		return fmt.Errorf("%w: line out of range", ErrInvalidSpan)
	}
	if span.StartOffset > len(lines[span.StartLine-1]) || span.EndOffset > len(lines[span.EndLine-1]) {
		return fmt.Errorf("%w: offset past end of line", ErrInvalidSpan)
	}
	return nil
}
