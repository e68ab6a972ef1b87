package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/DeusData/elixir-analyzer/internal/discover"
	"github.com/DeusData/elixir-analyzer/internal/pipeline"
	"github.com/DeusData/elixir-analyzer/internal/report"
)

type analyzeFlags struct {
	format       string
	failOnIssues bool
	highlights   bool
}

func newAnalyzeCmd(g *globalFlags) *cobra.Command {
	f := &analyzeFlags{}
	cmd := &cobra.Command{
		Use:   "analyze [path...]",
		Short: "Analyze a project directory or individual files",
		Long: `Analyzes every Elixir source under the given directory (default: the
current directory), or only the given files. The first directory argument
is the project root used for configuration and relative paths.

Examples:
  elixir-analyzer analyze
  elixir-analyzer analyze ./my_app --format json
  elixir-analyzer analyze lib/app.ex lib/app/worker.ex --fail-on-issues`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, g, f, args)
		},
	}
	cmd.Flags().StringVar(&f.format, "format", "text", "output format: text or json")
	cmd.Flags().BoolVar(&f.failOnIssues, "fail-on-issues", false, "exit with status 1 when issues are reported")
	cmd.Flags().BoolVar(&f.highlights, "highlights", false, "include highlighting spans in json output")
	return cmd
}

func runAnalyze(cmd *cobra.Command, g *globalFlags, f *analyzeFlags, args []string) error {
	if f.format != "text" && f.format != "json" {
		return fmt.Errorf("unknown format %q (want text or json)", f.format)
	}

	root, err := filepath.Abs(resolveRoot(args))
	if err != nil {
		return err
	}
	cfg, err := g.loadConfig(root)
	if err != nil {
		return err
	}
	cache, err := g.openCache(cfg)
	if err != nil {
		return err
	}
	defer closeCache(cache)

	out := cmd.OutOrStdout()
	var sink report.Reporter
	var collector *report.Collector
	if f.format == "json" {
		collector = report.NewCollector()
		collector.KeepHighlights = f.highlights
		sink = collector
	} else {
		sink = &report.TextReporter{W: out, Verbose: g.verbose}
	}

	p := pipeline.New(cmd.Context(), cache, root, g.parser(cfg), sink, cfg.PipelineOptions(g.workers))

	var summary *pipeline.Summary
	if isProjectRun(args) {
		summary, err = p.Run()
	} else {
		var files []discover.FileInfo
		files, err = collectFiles(cmd, root, args, cfg.Discover.Exclude)
		if err != nil {
			return err
		}
		summary, err = p.Analyze(files)
	}
	if err != nil {
		return err
	}

	if collector != nil {
		if err := collector.WriteJSON(out, summary); err != nil {
			return err
		}
	} else {
		printSummary(out, summary)
	}

	if f.failOnIssues && summary.Issues > 0 {
		return errIssuesFound
	}
	return nil
}

// isProjectRun reports whether args name at most one directory and nothing
// else.
func isProjectRun(args []string) bool {
	if len(args) == 0 {
		return true
	}
	if len(args) > 1 {
		return false
	}
	info, err := os.Stat(args[0])
	return err == nil && info.IsDir()
}

// collectFiles expands directories through discovery and keeps Elixir
// files given directly. The result is sorted by relative path.
func collectFiles(cmd *cobra.Command, root string, args []string, exclude []string) ([]discover.FileInfo, error) {
	seen := make(map[string]bool)
	var files []discover.FileInfo
	add := func(fs []discover.FileInfo) {
		for _, f := range fs {
			if !seen[f.Path] {
				seen[f.Path] = true
				files = append(files, f)
			}
		}
	}

	var plain []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("analyze %s: %w", arg, err)
		}
		if !info.IsDir() {
			plain = append(plain, arg)
			continue
		}
		found, err := discover.Discover(cmd.Context(), arg, &discover.Options{Exclude: exclude})
		if err != nil {
			return nil, fmt.Errorf("discover %s: %w", arg, err)
		}
		paths := make([]string, len(found))
		for i, f := range found {
			paths[i] = f.Path
		}
		rel, err := discover.Files(root, paths)
		if err != nil {
			return nil, err
		}
		add(rel)
	}

	direct, err := discover.Files(root, plain)
	if err != nil {
		return nil, err
	}
	add(direct)

	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files, nil
}

func printSummary(w io.Writer, s *pipeline.Summary) {
	fmt.Fprintf(w, "\n%d files analyzed (%d parsed, %d cached, %d failed), %d issues in %s\n",
		s.Files, s.Parsed, s.Cached, s.Failed, s.Issues, s.Duration.Round(time.Millisecond))
}
