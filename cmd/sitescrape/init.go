package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/sitescrape/internal/config"
)

//go:embed templates/sitescrape.yaml
var configTemplate embed.FS

// templatePath is the embedded configuration template.
const templatePath = "templates/sitescrape.yaml"

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a sitescrape configuration file",
		Long: `Init writes a commented .sitescrape configuration file.

The generated file documents the default crawl settings and shows how to
configure cookies, headers, page limits and path patterns per site.

Examples:
  # Create .sitescrape in the current directory
  sitescrape init

  # Create the file in the XDG config directory
  sitescrape init --global

  # Create config file at a specific path
  sitescrape init -o myconfig.yaml

  # Force overwrite existing file
  sitescrape init -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")
	cmd.Flags().BoolP("global", "g", false,
		"Write config.yaml to the XDG config directory instead")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	global, err := cmd.Flags().GetBool("global")
	if err != nil {
		return err
	}
	if global {
		outputPath = filepath.Join(config.XDGConfigDir(), "config.yaml")
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := configTemplate.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(out, "\nEdit this file to configure site-specific settings such as:")
	fmt.Fprintln(out, "  - Cookies and headers for sites that need a login")
	fmt.Fprintln(out, "  - Page limits and domain matching per site")
	fmt.Fprintln(out, "  - URL patterns to ignore or follow")

	return nil
}
