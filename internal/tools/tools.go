// Package tools exposes the analyzer as MCP tools.
package tools

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/DeusData/elixir-analyzer/internal/config"
	"github.com/DeusData/elixir-analyzer/internal/parser"
	"github.com/DeusData/elixir-analyzer/internal/pipeline"
	"github.com/DeusData/elixir-analyzer/internal/store"
)

// Options configures a Server.
type Options struct {
	Version string
	// Parser overrides the translator built from each project's config.
	Parser pipeline.Parser
	// Cache is shared by all analyses. It takes precedence over Caches.
	Cache *store.Store
	// Caches opens one parse cache per project. Both nil disables caching.
	Caches *store.Router
	// Workers caps parse concurrency per analysis.
	Workers int
}

// Server wraps the MCP server with tool handlers.
type Server struct {
	mcp  *mcp.Server
	opts Options

	// analyzeMu serializes analyses so concurrent tool calls do not
	// oversubscribe the translator.
	analyzeMu sync.Mutex
}

// NewServer creates a new MCP server with all tools registered.
func NewServer(opts Options) *Server {
	if opts.Version == "" {
		opts.Version = "dev"
	}
	srv := &Server{
		opts: opts,
		mcp: mcp.NewServer(
			&mcp.Implementation{
				Name:    "elixir-analyzer",
				Version: opts.Version,
			},
			nil,
		),
	}
	srv.registerTools()
	return srv
}

// MCPServer returns the underlying MCP server.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

func (s *Server) registerTools() {
	s.mcp.AddTool(&mcp.Tool{
		Name:        "analyze_file",
		Description: "Analyze one Elixir source file. Runs the Elixir translator on it and returns size measures and issues (missing @moduledoc, large modules, pipe chains starting with a call, IO.inspect calls, hardcoded secrets). Settings come from .elixir-analyzer.yml in the project root.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"path": {
					"type": "string",
					"description": "Path to a .ex or .exs file"
				},
				"project_root": {
					"type": "string",
					"description": "Project root for configuration and relative paths. Defaults to the file's directory."
				},
				"highlights": {
					"type": "boolean",
					"description": "Include highlighting spans in the result (default false)"
				}
			},
			"required": ["path"]
		}`),
	}, s.handleAnalyzeFile)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "analyze_project",
		Description: "Analyze every Elixir source file under a project root (skipping _build, deps and ignored paths). Returns issues per file and a run summary.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"repo_path": {
					"type": "string",
					"description": "Absolute path to the project root"
				},
				"rule": {
					"type": "string",
					"description": "Only return issues of this rule key (e.g. 'S004')"
				},
				"include_clean": {
					"type": "boolean",
					"description": "Also list files without issues (default false)"
				}
			},
			"required": ["repo_path"]
		}`),
	}, s.handleAnalyzeProject)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "list_rules",
		Description: "List the analyzer's rules with key, name, type, severity and remediation. With repo_path, also reports which rules the project's configuration disables.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"repo_path": {
					"type": "string",
					"description": "Project root whose .elixir-analyzer.yml is consulted (optional)"
				}
			}
		}`),
	}, s.handleListRules)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "clear_cache",
		Description: "Drop cached parse trees so the next analysis re-runs the translator. With repo_path only that project's cache is cleared, otherwise all of them.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"repo_path": {
					"type": "string",
					"description": "Project root whose cache is cleared (optional)"
				}
			}
		}`),
	}, s.handleClearCache)
}

// parserFor returns the configured parser override or a translator client
// built from cfg.
func (s *Server) parserFor(cfg *config.Config) pipeline.Parser {
	if s.opts.Parser != nil {
		return s.opts.Parser
	}
	return parser.New(cfg.ParserOptions())
}

// cacheFor returns the parse cache for the project at root, or nil.
func (s *Server) cacheFor(root string) *store.Store {
	if s.opts.Cache != nil {
		return s.opts.Cache
	}
	if s.opts.Caches == nil {
		return nil
	}
	c, err := s.opts.Caches.ForProject(pipeline.ProjectNameFromPath(root))
	if err != nil {
		slog.Warn("tools.cache.open", "root", root, "err", err)
		return nil
	}
	return c
}

// jsonResult marshals data to JSON and returns as tool result.
func jsonResult(data any) *mcp.CallToolResult {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return errResult("json marshal err=" + err.Error())
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(b)},
		},
	}
}

// errResult returns a tool result indicating an error.
func errResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
		IsError: true,
	}
}

// parseArgs unmarshals the raw JSON arguments into a map.
func parseArgs(req *mcp.CallToolRequest) (map[string]any, error) {
	if req.Params == nil || len(req.Params.Arguments) == 0 {
		return map[string]any{}, nil
	}
	var m map[string]any
	if err := json.Unmarshal(req.Params.Arguments, &m); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	return m, nil
}

// getStringArg extracts a string argument from parsed args.
func getStringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

// getBoolArg extracts a boolean argument from parsed args.
func getBoolArg(args map[string]any, key string) bool {
	b, _ := args[key].(bool)
	return b
}
