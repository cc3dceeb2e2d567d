package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mlwelles/graphqlOpsGen/config"
)

// newGlobsCmd prints the document glob sets, for linters and editor tooling that
// need to scan the same files.
func newGlobsCmd(g *globalFlags) *cobra.Command {
	var (
		set    string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "globs",
		Short: "Print the document glob patterns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			globs, err := globSet(cfg, set)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(globs)
			}
			for _, p := range globs {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&set, "set", "all", "glob set: shared|web|browser|all")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as a JSON array")
	return cmd
}

func globSet(cfg *config.Config, name string) (config.GlobSet, error) {
	if name == "all" {
		return cfg.AllDocuments, nil
	}
	t, ok := cfg.Target(config.TargetID(name))
	if !ok {
		return nil, fmt.Errorf("unknown glob set %q (want shared, web, browser or all)", name)
	}
	return t.Documents, nil
}

func newTargetsCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "targets",
		Short: "List output targets with their plugin pipelines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, t := range cfg.Targets {
				fmt.Fprintf(w, "%s\n", t.ID)
				fmt.Fprintf(w, "  output:    %s\n", t.Output)
				fmt.Fprintf(w, "  interface: %s\n", t.Config.InterfaceName)
				if m := cfg.EnumModule(&t); m != "" {
					fmt.Fprintf(w, "  enums:     %s (from %s)\n", m, t.Config.EnumValuesFrom)
				}
				plugins := make([]string, len(t.Plugins))
				for i, p := range t.Plugins {
					plugins[i] = string(p)
				}
				fmt.Fprintf(w, "  plugins:   %s\n", strings.Join(plugins, ", "))
			}
			return nil
		},
	}
}
