// Package measures computes per-file size metrics from raw source text.
package measures

import "strings"

// Size holds line metrics for one file.
type Size struct {
	Lines        int `json:"lines"`         // physical lines
	NCLoc        int `json:"ncloc"`         // non-blank, non-comment lines
	CommentLines int `json:"comment_lines"` // lines starting with the comment prefix
}

// Compute counts lines in source. A line whose trimmed text starts with
// commentPrefix is a comment line; blank lines count towards neither.
func Compute(source string, commentPrefix string) Size {
	lines := strings.Split(source, "\n")
	s := Size{Lines: len(lines)}
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
		case commentPrefix != "" && strings.HasPrefix(trimmed, commentPrefix):
			s.CommentLines++
		default:
			s.NCLoc++
		}
	}
	return s
}
