package tools

import (
	"context"
	"slices"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/DeusData/elixir-analyzer/internal/config"
	"github.com/DeusData/elixir-analyzer/internal/rules"
)

type ruleInfo struct {
	rules.Definition
	Enabled bool `json:"enabled"`
}

func (s *Server) handleListRules(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}

	cfg := config.DefaultConfig()
	if repoPath := getStringArg(args, "repo_path"); repoPath != "" {
		cfg = config.Load(repoPath)
	}

	out := make([]ruleInfo, 0, len(rules.Catalog))
	for _, d := range rules.Catalog {
		out = append(out, ruleInfo{
			Definition: d,
			Enabled:    !slices.Contains(cfg.Rules.Disabled, d.Key),
		})
	}
	return jsonResult(map[string]any{"rules": out}), nil
}
