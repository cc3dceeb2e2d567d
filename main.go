// graphqlOpsGen is a code generation tool that reads the GraphQL schema and the
// GraphQL operations embedded in the client TypeScript trees and produces typed
// graphql-operations.ts files for the shared, web and browser trees.
//
// Usage:
//
//	go run github.com/mlwelles/graphqlOpsGen generate [flags]
//
// Without --root the repository root is taken from $GRAPHQL_OPS_ROOT, falling
// back to the current working directory. $GRAPHQL_OPS_NO_FORMAT=true skips the
// formatter like --no-format. Both may come from a .env file in the working
// directory.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mlwelles/graphqlOpsGen/config"
	"github.com/mlwelles/graphqlOpsGen/logging"
)

type globalFlags struct {
	root       string
	configFile string
	verbose    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}
}

// newRootCmd returns the root command.
func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	rootCmd := &cobra.Command{
		Use:           "graphqlOpsGen",
		Short:         "Generate TypeScript types for GraphQL operations",
		Long:          "graphqlOpsGen scans the client source trees for GraphQL operations and writes typed graphql-operations.ts files.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&g.root, "root", "", "repository root (default $"+config.RootEnv+" or the working directory)")
	rootCmd.PersistentFlags().StringVar(&g.configFile, "config", "", "optional YAML file with overrides")
	rootCmd.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "enable verbose logging")

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		config.LoadEnv("", logging.NewLogger(logging.Options{Verbose: g.verbose, Out: cmd.ErrOrStderr()}))
	}

	rootCmd.AddCommand(newGenerateCmd(g))
	rootCmd.AddCommand(newGlobsCmd(g))
	rootCmd.AddCommand(newTargetsCmd(g))
	return rootCmd
}

// resolveRoot picks the repository root from the flag, the environment (.env
// files in the working directory are loaded before any command runs), or the
// working directory. Relative roots resolve against the working directory.
func (g *globalFlags) resolveRoot() (string, error) {
	root := g.root
	if root == "" {
		root = config.GetEnv(config.RootEnv, ".")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving root %q: %w", root, err)
	}
	return abs, nil
}

// loadConfig builds the configuration for the resolved root and applies the
// overrides file, if any.
func (g *globalFlags) loadConfig() (*config.Config, error) {
	root, err := g.resolveRoot()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Build(root)
	if err != nil {
		return nil, err
	}
	if g.configFile == "" {
		return cfg, nil
	}
	o, err := config.LoadOverrides(g.configFile)
	if err != nil {
		return nil, err
	}
	return cfg.Apply(o)
}
