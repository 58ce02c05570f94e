// Package main implements the shopsearch CLI for running searches and managing the catalog from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dsjohal14/shopsearch/internal/libs/config"
	"github.com/dsjohal14/shopsearch/internal/libs/obs"
)

type cli struct {
	cfg        *config.Config
	outputJSON bool
	noColor    bool
	logLevel   string
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "shopsearch",
		Short:         "shopsearch CLI",
		Long:          "Run catalog searches, inspect query parsing and UI intent matching, and manage the Postgres catalog.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			c.cfg = cfg

			// quieter than the server unless LOG_LEVEL or --log-level says otherwise
			level := c.logLevel
			if !cmd.Flags().Changed("log-level") && os.Getenv("LOG_LEVEL") != "" {
				level = cfg.LogLevel
			}
			obs.InitLogger(level)

			if c.noColor || c.outputJSON {
				color.NoColor = true
			}
			return nil
		},
	}

	root.PersistentFlags().BoolVar(&c.outputJSON, "json", false, "output in JSON format")
	root.PersistentFlags().BoolVar(&c.noColor, "no-color", false, "disable colored output")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "warn", "log level (overrides LOG_LEVEL)")

	root.AddCommand(c.newSearchCmd())
	root.AddCommand(c.newParseCmd())
	root.AddCommand(c.newMatchCmd())
	root.AddCommand(c.newDBCmd())

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}
}
