package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for lncgraph.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lncgraph",
		Short: "Lightning network community graph fetcher",
		Long: `lncgraph fetches a Lightning network community from the Amboss GraphQL API
and builds the graph of channels whose both endpoints are community members.

The graph can be printed as a report, exported to SQLite, compared with an
earlier export, or drawn as an interactive page in the browser.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .lncgraph in current or home directory)")

	cmd.AddCommand(NewFetchCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewDiffCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
