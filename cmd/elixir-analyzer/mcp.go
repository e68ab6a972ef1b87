package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/DeusData/elixir-analyzer/internal/store"
	"github.com/DeusData/elixir-analyzer/internal/tools"
)

func newMCPCmd(g *globalFlags) *cobra.Command {
	var noCache bool
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the analyzer as MCP tools over stdio",
		Long: `Serves the analyzer over the Model Context Protocol on stdin/stdout.
Each tool call loads the target project's ` + "`.elixir-analyzer.yml`" + `. Parsed trees
are cached per project under $ELIXIR_ANALYZER_CACHE_DIR (default
~/.cache/elixir-analyzer) unless --cache names a single database or
--no-cache is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := tools.Options{Version: version, Workers: g.workers}

			switch {
			case noCache:
			case g.cachePath != "":
				s, err := store.OpenPath(g.cachePath)
				if err != nil {
					return err
				}
				defer closeCache(s)
				opts.Cache = s
			default:
				r, err := store.NewRouter()
				if err != nil {
					return err
				}
				defer r.CloseAll()
				opts.Caches = r
			}

			// Translator flags pin one parser for every project.
			if g.configPath != "" || g.translator != "" || g.script != "" || g.timeout > 0 {
				cfg, err := g.loadConfig(".")
				if err != nil {
					return err
				}
				opts.Parser = g.parser(cfg)
			}

			srv := tools.NewServer(opts)
			return srv.MCPServer().Run(cmd.Context(), &mcp.StdioTransport{})
		},
	}
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the parse cache")
	return cmd
}
