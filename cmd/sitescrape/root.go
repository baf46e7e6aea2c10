package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/sitescrape/internal/config"
)

// NewRootCmd creates the root command for sitescrape.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sitescrape",
		Short: "Extract the text of every page of a website",
		Long: `sitescrape crawls a single website, following anchor links that stay on the
same domain, and extracts the paragraph text of every page it reaches.

The result is one plain text export:

  Scraped content from: <seed URL>

  URL: <page URL>
  <page text>

Use 'sitescrape scrape' for one-shot crawls and 'sitescrape shell' for the
interactive terminal interface.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")

	cmd.AddCommand(NewScrapeCmd())
	cmd.AddCommand(NewShellCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	// A .env file in the working directory is optional.
	if err := config.LoadEnvFile(); err != nil {
		fmt.Fprintln(os.Stderr, "warning: failed to load .env:", err)
	}

	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
