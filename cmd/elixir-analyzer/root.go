package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/DeusData/elixir-analyzer/internal/config"
	"github.com/DeusData/elixir-analyzer/internal/parser"
	"github.com/DeusData/elixir-analyzer/internal/store"
	"github.com/DeusData/elixir-analyzer/internal/telemetry"
)

// errIssuesFound makes the process exit 1 without printing an error.
var errIssuesFound = errors.New("issues found")

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	cachePath  string
	translator string
	script     string
	workers    int
	timeout    time.Duration
	verbose    bool
	telemetry  string

	shutdownTelemetry telemetry.ShutdownFunc
}

func newRootCmd() *cobra.Command {
	return buildRootCmd(&globalFlags{})
}

func buildRootCmd(g *globalFlags) *cobra.Command {
	root := &cobra.Command{
		Use:   "elixir-analyzer",
		Short: "Static analysis for Elixir projects",
		Long: `Analyzes Elixir sources for missing @moduledoc, oversized modules,
pipe chains that start with a function call, leftover IO.inspect calls and
hardcoded credentials. Sources are parsed by the Elixir toolchain
(elixir parse.exs <file>), so an elixir executable must be available.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			setupLogging(cmd.ErrOrStderr(), g.verbose)
			shutdown, err := telemetry.Setup(telemetry.Config{
				Exporter:       g.telemetry,
				Writer:         cmd.ErrOrStderr(),
				ServiceVersion: version,
			})
			if err != nil {
				return err
			}
			g.shutdownTelemetry = shutdown
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "configuration file (default: <root>/"+config.FileName+")")
	pf.StringVar(&g.cachePath, "cache", "", "parse cache database (overrides cache.path)")
	pf.StringVar(&g.translator, "translator", "", "elixir executable (overrides translator.executable)")
	pf.StringVar(&g.script, "script", "", "translator script (overrides translator.script)")
	pf.IntVar(&g.workers, "workers", 0, "parallel translator runs (default: number of CPUs)")
	pf.DurationVar(&g.timeout, "timeout", 0, "per-file translator timeout (default 30s)")
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "debug logging and per-file measures")
	pf.StringVar(&g.telemetry, "telemetry", telemetry.ExporterNone, "export parse metrics and spans: none or stdout (to stderr)")

	root.AddCommand(newAnalyzeCmd(g))
	root.AddCommand(newRulesCmd(g))
	root.AddCommand(newWatchCmd(g))
	root.AddCommand(newMCPCmd(g))
	return root
}

// flushTelemetry exports pending telemetry. It is a no-op when telemetry
// was never set up.
func (g *globalFlags) flushTelemetry(ctx context.Context) {
	if g.shutdownTelemetry == nil {
		return
	}
	if err := g.shutdownTelemetry(ctx); err != nil {
		slog.Warn("telemetry.shutdown.err", "err", err)
	}
	g.shutdownTelemetry = nil
}

func setupLogging(w io.Writer, verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// loadConfig reads the configuration for root and applies flag overrides.
func (g *globalFlags) loadConfig(root string) (*config.Config, error) {
	var cfg *config.Config
	if g.configPath != "" {
		c, err := config.LoadFile(g.configPath)
		if err != nil {
			return nil, err
		}
		cfg = c
	} else {
		cfg = config.Load(root)
	}

	if g.translator != "" {
		cfg.Translator.Executable = g.translator
	}
	if g.script != "" {
		script, err := filepath.Abs(g.script)
		if err != nil {
			return nil, err
		}
		cfg.Translator.Script = script
	}
	if g.timeout > 0 {
		cfg.Translator.Timeout = g.timeout.String()
	}
	return cfg, nil
}

func (g *globalFlags) parser(cfg *config.Config) *parser.Client {
	return parser.New(cfg.ParserOptions())
}

// openCache opens the parse cache, or returns nil when caching is off.
func (g *globalFlags) openCache(cfg *config.Config) (*store.Store, error) {
	path := cfg.CachePath()
	if g.cachePath != "" {
		path = g.cachePath
	}
	if path == "" {
		return nil, nil
	}
	s, err := store.OpenPath(path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return s, nil
}

func closeCache(s *store.Store) {
	if s == nil {
		return
	}
	if err := s.Close(); err != nil {
		slog.Warn("cache.close.err", "err", err)
	}
}

func resolveRoot(args []string) string {
	if len(args) > 0 {
		if info, err := os.Stat(args[0]); err == nil && info.IsDir() {
			return args[0]
		}
	}
	return "."
}
