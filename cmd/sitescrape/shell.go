package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/sitescrape/internal/config"
	sslog "github.com/nao1215/sitescrape/internal/log"
	"github.com/nao1215/sitescrape/internal/session"
	"github.com/nao1215/sitescrape/internal/tui"
)

// shellLogFile is the log file name of the interactive shell. The shell
// owns the terminal, so logs cannot go to stderr.
const shellLogFile = "shell.log"

// NewShellCmd creates the shell command.
func NewShellCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Start the interactive terminal interface",
		Long: `Shell opens an interactive interface for crawling one site at a time.

Type a site URL and press enter to start. Every extracted page is listed
while the crawl runs; press esc to stop it early. When the crawl is done,
press s to save the export (site.txt by default), n to crawl another site
and q to quit.

Settings from the defaults section of the configuration file apply to
every crawl. Logs are written to the XDG cache directory.`,
		Args: cobra.NoArgs,
		RunE: runShellCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultExportFile,
		"File the export is saved to")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each page request")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of pages per crawl (0 = no limit)")
	cmd.Flags().StringP("domain-match", "d", config.DefaultDomainMatch,
		"How link hosts are matched with the site: subdomain, exact or substring")
	cmd.Flags().StringP("user-agent", "u", config.DefaultUserAgent,
		"User-Agent header sent with every request")
	cmd.Flags().String("proxy", "",
		"Route requests through a SOCKS5 proxy (e.g., 127.0.0.1:9050 for Tor)")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .sitescrape in current or home directory)")

	return cmd
}

// runShellCmd executes the shell command.
func runShellCmd(cmd *cobra.Command, _ []string) error {
	cfg, savePath, err := buildShellConfig(cmd)
	if err != nil {
		return err
	}

	// Validate needs a target; the shell asks for it interactively.
	cfg.Targets = []string{"shell"}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger, closeLog, err := openShellLog(cfg.Verbose)
	if err != nil {
		return err
	}
	defer closeLog()

	// Only the defaults section applies: the site is not known yet.
	site := cfg.ForSite("")
	spiderOpts, err := spiderOptions(site, logger)
	if err != nil {
		return err
	}

	client, err := newHTTPClient(cfg)
	if err != nil {
		return err
	}

	runner := tui.NewRunner(
		newFetcher(client, cfg, site),
		savePath,
		session.WithSpiderOptions(spiderOpts...),
		session.WithLogger(logger),
	)
	return runner.Run()
}

// buildShellConfig creates a Config and the save path from shell flags.
func buildShellConfig(cmd *cobra.Command) (*config.Config, string, error) {
	cfg := config.NewConfig()

	var err error

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, "", err
	}

	cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, "", err
	}

	cfg.DomainMatch, err = cmd.Flags().GetString("domain-match")
	if err != nil {
		return nil, "", err
	}
	cfg.MaxPagesSet = cmd.Flags().Changed("max-pages")
	cfg.DomainMatchSet = cmd.Flags().Changed("domain-match")

	cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
	if err != nil {
		return nil, "", err
	}

	cfg.Proxy, err = cmd.Flags().GetString("proxy")
	if err != nil {
		return nil, "", err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, "", err
	}

	if _, err := cfg.LoadSiteConfigs(); err != nil {
		return nil, "", fmt.Errorf("failed to load config file: %w", err)
	}

	savePath, err := cmd.Flags().GetString("output")
	if err != nil {
		return nil, "", err
	}
	applyEnv(cmd, cfg)

	cfg.Verbose = getVerboseFlag(cmd)

	return cfg, savePath, nil
}

// openShellLog opens the shell log file in the XDG cache directory.
func openShellLog(verbose bool) (*slog.Logger, func(), error) {
	dir := config.XDGCacheDir()
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(dir, shellLogFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return sslog.NewSecureLogger(f, verbose), func() { _ = f.Close() }, nil
}
