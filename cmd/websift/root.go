// Package main provides the entry point for the websift CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for websift.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "websift",
		Short: "Structured data acquisition from the web",
		Long: `websift fetches web pages and extracts structured data from them.

It can scrape a single page, crawl a bounded frontier of linked pages,
or discover starting points from a search query. Results are exported
as JSON or Markdown and persisted in a local job store for later
inspection.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewWorkCmd())
	cmd.AddCommand(NewJobsCmd())
	cmd.AddCommand(NewExportCmd())
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
