package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/DeusData/elixir-analyzer/internal/measures"
)

// FileReport is everything reported for one file.
type FileReport struct {
	Path       string         `json:"path"`
	Measures   *measures.Size `json:"measures,omitempty"`
	Highlights []Span         `json:"highlights,omitempty"`
	Issues     []Issue        `json:"issues"`
}

// Collector keeps reported data in memory, grouped per file in the order
// files were first seen.
type Collector struct {
	mu    sync.Mutex
	files map[string]*FileReport
	order []string
	// KeepHighlights controls whether spans are stored; they are validated
	// either way.
	KeepHighlights bool
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return &Collector{files: make(map[string]*FileReport)}
}

func (c *Collector) file(path string) *FileReport {
	f, ok := c.files[path]
	if !ok {
		f = &FileReport{Path: path, Issues: []Issue{}}
		c.files[path] = f
		c.order = append(c.order, path)
	}
	return f
}

func (c *Collector) Measures(file string, size measures.Size) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := size
	c.file(file).Measures = &s
}

func (c *Collector) Highlight(file string, span Span) error {
	if span.StartLine < 1 || span.StartOffset < 0 || span.EndOffset < 0 ||
		span.EndLine < span.StartLine ||
		(span.EndLine == span.StartLine && span.EndOffset <= span.StartOffset) {
		return fmt.Errorf("%w: %d:%d-%d:%d", ErrInvalidSpan,
			span.StartLine, span.StartOffset, span.EndLine, span.EndOffset)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	f := c.file(file)
	if c.KeepHighlights {
		f.Highlights = append(f.Highlights, span)
	}
	return nil
}

func (c *Collector) Issue(issue Issue) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f := c.file(issue.File)
	f.Issues = append(f.Issues, issue)
}

// Files returns a snapshot of all file reports.
func (c *Collector) Files() []FileReport {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]FileReport, 0, len(c.order))
	for _, p := range c.order {
		out = append(out, *c.files[p])
	}
	return out
}

// File returns the report for path.
func (c *Collector) File(path string) (FileReport, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.files[path]
	if !ok {
		return FileReport{}, false
	}
	return *f, true
}

// Issues returns all issues across files.
func (c *Collector) Issues() []Issue {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Issue
	for _, p := range c.order {
		out = append(out, c.files[p].Issues...)
	}
	return out
}

// WriteJSON writes the collected files and summary as one indented document.
func (c *Collector) WriteJSON(w io.Writer, summary any) error {
	doc := struct {
		Files   []FileReport `json:"files"`
		Summary any          `json:"summary,omitempty"`
	}{Files: c.Files(), Summary: summary}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("write json report: %w", err)
	}
	return nil
}
