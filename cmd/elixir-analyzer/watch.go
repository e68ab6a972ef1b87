package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/DeusData/elixir-analyzer/internal/discover"
	"github.com/DeusData/elixir-analyzer/internal/pipeline"
	"github.com/DeusData/elixir-analyzer/internal/report"
	"github.com/DeusData/elixir-analyzer/internal/watcher"
)

func newWatchCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [path]",
		Short: "Analyze a project, then re-analyze changed files until interrupted",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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
			sink := &report.TextReporter{W: out, Verbose: g.verbose}
			client := g.parser(cfg)
			opts := cfg.PipelineOptions(g.workers)

			summary, err := pipeline.New(cmd.Context(), cache, root, client, sink, opts).Run()
			if err != nil {
				return err
			}
			printSummary(out, summary)

			w := watcher.New(root, &discover.Options{Exclude: cfg.Discover.Exclude},
				func(ctx context.Context, root string, change watcher.Change) error {
					if cache != nil {
						for _, rel := range change.Removed {
							if err := cache.Delete(rel); err != nil {
								slog.Warn("cache.delete.err", "path", rel, "err", err)
							}
						}
					}
					if len(change.Modified) == 0 {
						return nil
					}
					paths := make([]string, len(change.Modified))
					for i, rel := range change.Modified {
						paths[i] = filepath.Join(root, filepath.FromSlash(rel))
					}
					files, err := discover.Files(root, paths)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "\n%d changed files\n", len(files))
					s, err := pipeline.New(ctx, cache, root, client, sink, opts).Analyze(files)
					if err != nil {
						return err
					}
					printSummary(out, s)
					return nil
				})

			slog.Info("watch.start", "path", root)
			w.Run(cmd.Context())
			return nil
		},
	}
}
