package tools

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/DeusData/elixir-analyzer/internal/pipeline"
)

// handleClearCache drops cached parse trees. With per-project caches the
// project's database file is removed, or every project's when repo_path is
// empty. A single shared cache is emptied as a whole.
func (s *Server) handleClearCache(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}

	s.analyzeMu.Lock()
	defer s.analyzeMu.Unlock()

	if s.opts.Cache != nil {
		removed, err := s.opts.Cache.Prune(nil)
		if err != nil {
			return errResult(fmt.Sprintf("clear cache: %v", err)), nil
		}
		slog.Info("tools.cache.clear", "path", s.opts.Cache.Path(), "entries", removed)
		return jsonResult(map[string]any{"cache": s.opts.Cache.Path(), "entries_removed": removed}), nil
	}
	if s.opts.Caches == nil {
		return errResult("parse cache is disabled"), nil
	}

	var projects []string
	if repoPath := getStringArg(args, "repo_path"); repoPath != "" {
		abs, err := filepath.Abs(repoPath)
		if err != nil {
			return errResult(fmt.Sprintf("invalid repo_path: %v", err)), nil
		}
		if name := pipeline.ProjectNameFromPath(abs); s.opts.Caches.HasProject(name) {
			projects = append(projects, name)
		}
	} else {
		projects, err = s.opts.Caches.Projects()
		if err != nil {
			return errResult(fmt.Sprintf("list caches: %v", err)), nil
		}
	}

	cleared := make([]string, 0, len(projects))
	for _, name := range projects {
		if err := s.opts.Caches.DeleteProject(name); err != nil {
			return errResult(err.Error()), nil
		}
		cleared = append(cleared, name)
	}
	return jsonResult(map[string]any{
		"cache_dir": s.opts.Caches.Dir(),
		"cleared":   cleared,
	}), nil
}
