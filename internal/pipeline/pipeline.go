package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/DeusData/elixir-analyzer/internal/discover"
	"github.com/DeusData/elixir-analyzer/internal/highlight"
	"github.com/DeusData/elixir-analyzer/internal/lang"
	"github.com/DeusData/elixir-analyzer/internal/measures"
	"github.com/DeusData/elixir-analyzer/internal/parser"
	"github.com/DeusData/elixir-analyzer/internal/report"
	"github.com/DeusData/elixir-analyzer/internal/rules"
	"github.com/DeusData/elixir-analyzer/internal/store"
)

// Parser turns one file into a tree. *parser.Client is the production
// implementation.
type Parser interface {
	Parse(ctx context.Context, path string) (*parser.Result, error)
}

// fingerprinter is implemented by parsers whose output can be cached.
type fingerprinter interface {
	Fingerprint() string
}

// Options tunes a Pipeline run.
type Options struct {
	// Workers caps parse concurrency; 0 means runtime.NumCPU().
	Workers int
	// Rules selects and tunes the rule set.
	Rules rules.Options
	// Exclude adds discovery exclusions (glob patterns).
	Exclude []string
	// Fallback derives highlighting with tree-sitter when the translator
	// sends no tokens.
	Fallback bool
}

// Summary describes one run.
type Summary struct {
	Files    int            `json:"files"`
	Parsed   int            `json:"parsed"`
	Cached   int            `json:"cached"`
	Failed   int            `json:"failed"`
	Issues   int            `json:"issues"`
	ByRule   map[string]int `json:"by_rule,omitempty"`
	Duration time.Duration  `json:"duration_ns"`
}

// Pipeline analyzes a project: it parses every file through the external
// translator in parallel, then reports measures, highlighting and issues
// file by file in discovery order.
type Pipeline struct {
	ctx         context.Context
	Store       *store.Store // optional parse cache
	RepoPath    string
	ProjectName string
	Parser      Parser
	Reporter    report.Reporter

	opts  Options
	rules []rules.Rule
	spec  *lang.LanguageSpec
}

// New creates a new Pipeline. s may be nil to disable caching.
func New(ctx context.Context, s *store.Store, repoPath string, p Parser, r report.Reporter, opts Options) *Pipeline {
	return &Pipeline{
		ctx:         ctx,
		Store:       s,
		RepoPath:    repoPath,
		ProjectName: ProjectNameFromPath(repoPath),
		Parser:      p,
		Reporter:    r,
		opts:        opts,
		rules:       rules.All(opts.Rules),
		spec:        lang.ForLanguage(lang.Elixir),
	}
}

// ProjectNameFromPath derives a unique project name from an absolute path
// by replacing path separators with dashes and trimming the leading dash.
func ProjectNameFromPath(absPath string) string {
	cleaned := filepath.ToSlash(filepath.Clean(absPath))
	name := strings.ReplaceAll(cleaned, "/", "-")
	name = strings.TrimLeft(name, "-")
	if name == "" {
		return "root"
	}
	return name
}

// Run discovers files under RepoPath and analyzes them.
func (p *Pipeline) Run() (*Summary, error) {
	slog.Info("pipeline.start", "project", p.ProjectName, "path", p.RepoPath)

	if err := p.ctx.Err(); err != nil {
		return nil, err
	}

	files, err := discover.Discover(p.ctx, p.RepoPath, &discover.Options{Exclude: p.opts.Exclude})
	if err != nil {
		return nil, fmt.Errorf("discover: %w", err)
	}
	slog.Info("pipeline.discovered", "files", len(files))

	summary, err := p.Analyze(files)
	if err != nil {
		return nil, err
	}
	p.pruneCache(files)
	return summary, nil
}

// pruneCache drops cached trees of files that no longer exist.
func (p *Pipeline) pruneCache(files []discover.FileInfo) {
	if p.Store == nil {
		return
	}
	keep := make([]string, len(files))
	for i, f := range files {
		keep[i] = f.RelPath
	}
	n, err := p.Store.Prune(keep)
	if err != nil {
		slog.Warn("cache.prune.err", "err", err)
		return
	}
	if n > 0 {
		slog.Info("cache.pruned", "entries", n)
	}
}

// Analyze runs both phases over an explicit file list.
func (p *Pipeline) Analyze(files []discover.FileInfo) (*Summary, error) {
	start := time.Now()
	summary := &Summary{Files: len(files), ByRule: map[string]int{}}
	if len(files) == 0 {
		return summary, nil
	}

	t := time.Now()
	results, cached, err := p.parseAll(files)
	if err != nil {
		return nil, err
	}
	summary.Parsed = len(results)
	summary.Cached = cached
	summary.Failed = len(files) - len(results)
	slog.Info("pass.timing", "pass", "parse", "elapsed", time.Since(t),
		"parsed", summary.Parsed, "cached", cached, "failed", summary.Failed)

	t = time.Now()
	for _, f := range files {
		if err := p.ctx.Err(); err != nil {
			return nil, err
		}
		p.analyzeFile(f, results[f.RelPath], summary)
	}
	slog.Info("pass.timing", "pass", "analyze", "elapsed", time.Since(t))

	summary.Duration = time.Since(start)
	recordSummary(p.ctx, summary)
	slog.Info("pipeline.done", "files", summary.Files, "issues", summary.Issues, "elapsed", summary.Duration)
	return summary, nil
}

// parseAll runs the translator on every file with bounded concurrency.
// Failed files are logged and left out of the result map.
func (p *Pipeline) parseAll(files []discover.FileInfo) (map[string]*parser.Result, int, error) {
	var (
		mu      sync.Mutex
		results = make(map[string]*parser.Result, len(files))
		pending []store.Entry
		cached  int
	)

	numWorkers := p.opts.Workers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	fingerprint := p.fingerprint()

	g := new(errgroup.Group)
	g.SetLimit(numWorkers)
	for _, f := range files {
		g.Go(func() (err error) {
			if err := p.ctx.Err(); err != nil {
				return err
			}
			defer func() {
				if r := recover(); r != nil {
					slog.Warn("parse.panic", "path", f.RelPath, "panic", r)
				}
			}()

			res, entry, hit, perr := p.parseFile(f, fingerprint)
			if perr != nil {
				if p.ctx.Err() != nil {
					return p.ctx.Err()
				}
				slog.Warn("parse.fail", "path", f.RelPath, "err", perr)
				return nil
			}

			mu.Lock()
			defer mu.Unlock()
			results[f.RelPath] = res
			if hit {
				cached++
			} else if entry != nil {
				pending = append(pending, *entry)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	p.writeCache(pending)
	return results, cached, nil
}

// parseFile returns the tree for f, from the cache when possible. On a
// cache miss with caching enabled it also returns the entry to store.
func (p *Pipeline) parseFile(f discover.FileInfo, fingerprint string) (*parser.Result, *store.Entry, bool, error) {
	if p.Store == nil || fingerprint == "" {
		res, err := p.Parser.Parse(p.ctx, f.Path)
		return res, nil, false, err
	}

	hash, err := store.HashFile(f.Path)
	if err != nil {
		return nil, nil, false, fmt.Errorf("hash: %w", err)
	}
	if data, ok, err := p.Store.Get(f.RelPath, hash, fingerprint); err != nil {
		slog.Debug("cache.get.err", "path", f.RelPath, "err", err)
	} else if ok {
		var res parser.Result
		if err := json.Unmarshal(data, &res); err == nil && res.AST != nil {
			return &res, nil, true, nil
		}
		slog.Debug("cache.decode.err", "path", f.RelPath)
	}

	res, err := p.Parser.Parse(p.ctx, f.Path)
	if err != nil {
		return nil, nil, false, err
	}
	data, err := json.Marshal(res)
	if err != nil {
		return res, nil, false, nil
	}
	return res, &store.Entry{RelPath: f.RelPath, Hash: hash, Fingerprint: fingerprint, Data: data}, false, nil
}

func (p *Pipeline) fingerprint() string {
	if p.Store == nil {
		return ""
	}
	if fp, ok := p.Parser.(fingerprinter); ok {
		return fp.Fingerprint()
	}
	return ""
}

func (p *Pipeline) writeCache(entries []store.Entry) {
	if p.Store == nil || len(entries) == 0 {
		return
	}
	err := p.Store.WithTransaction(func(tx *store.Store) error {
		for _, e := range entries {
			if err := tx.Put(e); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		slog.Warn("cache.write.err", "entries", len(entries), "err", err)
		return
	}
	slog.Debug("cache.write", "entries", len(entries))
}

// analyzeFile reports one file. Measures are always computed; highlighting
// and rules need a parsed tree.
func (p *Pipeline) analyzeFile(f discover.FileInfo, res *parser.Result, summary *Summary) {
	slog.Debug("analyze.file", "path", f.RelPath)

	source, err := os.ReadFile(f.Path)
	if err != nil {
		slog.Warn("analyze.read.err", "path", f.RelPath, "err", err)
	} else {
		p.Reporter.Measures(f.RelPath, measures.Compute(string(source), p.spec.LineCommentPrefix))
	}

	if res == nil {
		return
	}

	if source != nil {
		tokens := res.Tokens
		if len(tokens) == 0 && p.opts.Fallback {
			tokens, err = highlight.Tokens(source)
			if err != nil {
				slog.Debug("highlight.err", "path", f.RelPath, "err", err)
			}
		}
		if n := report.ApplyHighlighting(p.Reporter, f.RelPath, string(source), tokens); n < len(tokens) {
			slog.Debug("highlight.skipped", "path", f.RelPath, "skipped", len(tokens)-n)
		}
	}

	for _, finding := range rules.Run(p.rules, res.AST) {
		def, _ := rules.Lookup(finding.RuleKey)
		p.Reporter.Issue(report.IssueFor(f.RelPath, def, finding))
		summary.Issues++
		summary.ByRule[finding.RuleKey]++
	}
}
