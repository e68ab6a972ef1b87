package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/DeusData/elixir-analyzer/internal/rules"
)

func newRulesCmd(g *globalFlags) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "rules [path]",
		Short: "List the rule catalog",
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

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(rules.Catalog)
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tNAME\tTYPE\tSEVERITY\tENABLED")
			for _, d := range rules.Catalog {
				enabled := !slices.Contains(cfg.Rules.Disabled, d.Key)
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\n", d.Key, d.Name, d.Type, d.Severity, enabled)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the catalog as JSON")
	return cmd
}
