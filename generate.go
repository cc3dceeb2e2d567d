package main

import (
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mlwelles/graphqlOpsGen/config"
	"github.com/mlwelles/graphqlOpsGen/generator"
	"github.com/mlwelles/graphqlOpsGen/logging"
)

func newGenerateCmd(g *globalFlags) *cobra.Command {
	var (
		noFormat      bool
		strictScalars bool
		jsonLogs      bool
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write graphql-operations.ts for every target",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("no-format") {
				noFormat = config.GetEnvBool(config.NoFormatEnv, false)
			}
			if strictScalars {
				on := true
				if cfg, err = cfg.Apply(&config.Overrides{StrictScalars: &on}); err != nil {
					return err
				}
			}

			logger := logging.NewLogger(logging.Options{
				ErrorsOnly: cfg.ErrorsOnly,
				Verbose:    g.verbose,
				JSON:       jsonLogs,
				Out:        cmd.ErrOrStderr(),
			})
			opts := []generator.Option{generator.WithLogger(logger)}
			if noFormat {
				opts = append(opts, generator.WithFormatter(nil))
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			res, err := generator.Generate(ctx, cfg, opts...)
			if err != nil {
				reportErrors(cmd.ErrOrStderr(), err)
				return errors.New("generation failed")
			}
			printSummary(cmd.OutOrStdout(), cfg, res)
			return nil
		},
	}
	cmd.Flags().BoolVar(&noFormat, "no-format", false, "skip the afterOneFileWrite formatter (default $"+config.NoFormatEnv+")")
	cmd.Flags().BoolVar(&strictScalars, "strict-scalars", false, "fail when operations use scalars without a mapping")
	cmd.Flags().BoolVar(&jsonLogs, "json-logs", false, "emit logs as JSON")
	return cmd
}

// reportErrors prints one line per failure. Joined errors render one message
// per line, so splitting the text is enough.
func reportErrors(w io.Writer, err error) {
	for _, line := range strings.Split(err.Error(), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fmt.Fprintln(w, color.RedString("✗"), line)
	}
}

func printSummary(w io.Writer, cfg *config.Config, res *generator.Result) {
	if cfg.ErrorsOnly && len(res.FormatFailures) == 0 {
		return
	}
	for _, f := range res.Files {
		fmt.Fprintf(w, "%s %s (%d operations, %d fragments)\n", color.GreenString("✓"), f.Path, f.Operations, f.Fragments)
	}
	for _, f := range res.FormatFailures {
		fmt.Fprintf(w, "%s %s\n", color.YellowString("!"), f.Error())
	}
}
