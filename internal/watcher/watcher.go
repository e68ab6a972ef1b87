// Package watcher polls a project for changed Elixir sources and triggers
// re-analysis.
package watcher

import (
	"context"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/DeusData/elixir-analyzer/internal/discover"
)

const (
	baseInterval = 1 * time.Second
	maxInterval  = 60 * time.Second
)

type fileSnapshot struct {
	modTime time.Time
	size    int64
}

// Change lists what differs between two polls, as paths relative to the
// project root.
type Change struct {
	Modified []string // added or changed
	Removed  []string
}

// Empty reports whether nothing changed.
func (c Change) Empty() bool { return len(c.Modified) == 0 && len(c.Removed) == 0 }

// AnalyzeFunc is called with the changes found since the last successful call.
type AnalyzeFunc func(ctx context.Context, root string, change Change) error

// Watcher polls one project root and calls analyzeFn when files change.
type Watcher struct {
	root      string
	opts      *discover.Options
	analyzeFn AnalyzeFunc

	snapshot map[string]fileSnapshot
	interval time.Duration
	nextPoll time.Time
	ctx      context.Context
}

// New creates a Watcher for root. opts is passed to discovery and may be nil.
func New(root string, opts *discover.Options, analyzeFn AnalyzeFunc) *Watcher {
	return &Watcher{root: root, opts: opts, analyzeFn: analyzeFn}
}

// Run blocks until ctx is cancelled. It ticks at baseInterval and polls when
// the adaptive interval has elapsed.
func (w *Watcher) Run(ctx context.Context) {
	w.ctx = ctx
	ticker := time.NewTicker(baseInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if time.Now().Before(w.nextPoll) {
				continue
			}
			w.poll()
		}
	}
}

// poll captures a snapshot of the file tree and compares it with the
// previous one. The first poll only records a baseline.
func (w *Watcher) poll() {
	if w.ctx == nil {
		w.ctx = context.Background()
	}
	if _, err := os.Stat(w.root); err != nil {
		slog.Warn("watcher.root_gone", "path", w.root)
		w.nextPoll = time.Now().Add(maxInterval)
		return
	}

	snap, err := captureSnapshot(w.ctx, w.root, w.opts)
	if err != nil {
		slog.Warn("watcher.snapshot", "path", w.root, "err", err)
		w.nextPoll = time.Now().Add(w.interval)
		return
	}

	interval := pollInterval(len(snap))

	if w.snapshot == nil {
		slog.Debug("watcher.baseline", "path", w.root, "files", len(snap))
		w.snapshot = snap
		w.interval = interval
		w.nextPoll = time.Now().Add(interval)
		return
	}

	change := diffSnapshots(w.snapshot, snap)
	if change.Empty() {
		w.interval = interval
		w.nextPoll = time.Now().Add(interval)
		return
	}

	slog.Info("watcher.changed", "path", w.root, "modified", len(change.Modified), "removed", len(change.Removed))
	if err := w.analyzeFn(w.ctx, w.root, change); err != nil {
		slog.Warn("watcher.analyze", "path", w.root, "err", err)
		// Keep the old snapshot so the same change is retried.
		w.nextPoll = time.Now().Add(interval)
		return
	}

	w.snapshot = snap
	w.interval = interval
	w.nextPoll = time.Now().Add(interval)
}

// captureSnapshot records mtime and size of every discovered file.
func captureSnapshot(ctx context.Context, root string, opts *discover.Options) (map[string]fileSnapshot, error) {
	files, err := discover.Discover(ctx, root, opts)
	if err != nil {
		return nil, err
	}

	snap := make(map[string]fileSnapshot, len(files))
	for _, f := range files {
		info, statErr := os.Stat(f.Path)
		if statErr != nil {
			continue
		}
		snap[f.RelPath] = fileSnapshot{
			modTime: info.ModTime(),
			size:    info.Size(),
		}
	}
	return snap, nil
}

// diffSnapshots returns the sorted paths that were added, changed or removed
// between a and b.
func diffSnapshots(a, b map[string]fileSnapshot) Change {
	var c Change
	for path, bSnap := range b {
		aSnap, ok := a[path]
		if !ok || !aSnap.modTime.Equal(bSnap.modTime) || aSnap.size != bSnap.size {
			c.Modified = append(c.Modified, path)
		}
	}
	for path := range a {
		if _, ok := b[path]; !ok {
			c.Removed = append(c.Removed, path)
		}
	}
	sort.Strings(c.Modified)
	sort.Strings(c.Removed)
	return c
}

// pollInterval computes the adaptive interval from file count.
// 1s base + 1s per 500 files, capped at 60s.
func pollInterval(fileCount int) time.Duration {
	d := baseInterval + time.Duration(fileCount/500)*time.Second
	return min(d, maxInterval)
}
