package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/DeusData/elixir-analyzer/internal/config"
	"github.com/DeusData/elixir-analyzer/internal/discover"
	"github.com/DeusData/elixir-analyzer/internal/pipeline"
	"github.com/DeusData/elixir-analyzer/internal/report"
)

func (s *Server) handleAnalyzeFile(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}

	path := getStringArg(args, "path")
	if path == "" {
		return errResult("path is required"), nil
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return errResult(fmt.Sprintf("invalid path: %v", err)), nil
	}
	if info, err := os.Stat(absPath); err != nil || info.IsDir() {
		return errResult("not a file: " + absPath), nil
	}

	root := getStringArg(args, "project_root")
	if root == "" {
		root = filepath.Dir(absPath)
	}
	root, err = filepath.Abs(root)
	if err != nil {
		return errResult(fmt.Sprintf("invalid project_root: %v", err)), nil
	}

	files, err := discover.Files(root, []string{absPath})
	if err != nil {
		return errResult(err.Error()), nil
	}
	if len(files) == 0 {
		return errResult("not an Elixir source file: " + absPath), nil
	}

	cfg := config.Load(root)
	sink := report.NewCollector()
	sink.KeepHighlights = getBoolArg(args, "highlights")

	s.analyzeMu.Lock()
	defer s.analyzeMu.Unlock()

	p := pipeline.New(ctx, s.cacheFor(root), root, s.parserFor(cfg), sink, cfg.PipelineOptions(s.opts.Workers))
	summary, err := p.Analyze(files)
	if err != nil {
		return errResult(fmt.Sprintf("analysis failed: %v", err)), nil
	}

	fr, _ := sink.File(files[0].RelPath)
	return jsonResult(map[string]any{
		"file":   fr,
		"parsed": summary.Parsed == 1,
	}), nil
}

func (s *Server) handleAnalyzeProject(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}

	repoPath := getStringArg(args, "repo_path")
	if repoPath == "" {
		return errResult("repo_path is required"), nil
	}
	absPath, err := filepath.Abs(repoPath)
	if err != nil {
		return errResult(fmt.Sprintf("invalid path: %v", err)), nil
	}
	if info, err := os.Stat(absPath); err != nil || !info.IsDir() {
		return errResult("not a directory: " + absPath), nil
	}

	cfg := config.Load(absPath)
	sink := report.NewCollector()

	s.analyzeMu.Lock()
	defer s.analyzeMu.Unlock()

	p := pipeline.New(ctx, s.cacheFor(absPath), absPath, s.parserFor(cfg), sink, cfg.PipelineOptions(s.opts.Workers))
	summary, err := p.Run()
	if err != nil {
		return errResult(fmt.Sprintf("analysis failed: %v", err)), nil
	}

	rule := getStringArg(args, "rule")
	includeClean := getBoolArg(args, "include_clean")
	files := make([]report.FileReport, 0)
	for _, f := range sink.Files() {
		if rule != "" {
			f.Issues = filterIssues(f.Issues, rule)
		}
		if len(f.Issues) == 0 && !includeClean {
			continue
		}
		files = append(files, f)
	}

	return jsonResult(map[string]any{
		"project": p.ProjectName,
		"files":   files,
		"summary": summary,
	}), nil
}

func filterIssues(issues []report.Issue, rule string) []report.Issue {
	out := make([]report.Issue, 0, len(issues))
	for _, i := range issues {
		if i.RuleKey == rule {
			out = append(out, i)
		}
	}
	return out
}
