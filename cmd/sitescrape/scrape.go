package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/sitescrape/internal/config"
	"github.com/nao1215/sitescrape/internal/crawler"
	"github.com/nao1215/sitescrape/internal/database"
	sslog "github.com/nao1215/sitescrape/internal/log"
	"github.com/nao1215/sitescrape/internal/model"
	"github.com/nao1215/sitescrape/internal/pipeline"
	"github.com/nao1215/sitescrape/internal/report"
)

// errCrawlsFailed is returned when no seed produced an export.
var errCrawlsFailed = errors.New("no site could be crawled")

// NewScrapeCmd creates the scrape command.
func NewScrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape <url>...",
		Short: "Crawl websites and export the text of every page",
		Long: `Scrape crawls each given website and writes the paragraph text of every
reachable page on the same domain.

A URL without a scheme is crawled over https. A leading "www." is ignored,
so example.com and www.example.com are the same site. Pages that fail to
load are skipped and listed in the summary; the crawl fails only when the
first page cannot be fetched.

Press Ctrl-C to stop a crawl. The pages extracted so far are still written.

Examples:
  # Print the text export of a site
  sitescrape scrape example.com

  # Save the export to a file
  sitescrape scrape -o site.txt example.com

  # Crawl several sites, two at a time, as Markdown
  sitescrape scrape --markdown -b 2 example.com example.org

  # Follow only links on the exact host, at most 100 pages
  sitescrape scrape --domain-match exact --max-pages 100 blog.example.com

Configuration file (.sitescrape) example:
  defaults:
    maxPages: 500
  sites:
    example.com:
      cookie: "session_id=abc123"
      ignorePatterns:
        - "/admin/*"
        - "*.pdf"`,
		Args: cobra.ArbitraryArgs,
		RunE: runScrapeCmd,
	}

	// Crawl behavior flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each page request")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of pages per site (0 = no limit)")
	cmd.Flags().StringP("domain-match", "d", config.DefaultDomainMatch,
		"How link hosts are matched with the site: subdomain, exact or substring")
	cmd.Flags().StringP("user-agent", "u", config.DefaultUserAgent,
		"User-Agent header sent with every request")
	cmd.Flags().String("proxy", "",
		"Route requests through a SOCKS5 proxy (e.g., 127.0.0.1:9050 for Tor)")

	// Batch flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of sites crawled concurrently")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .sitescrape in current or home directory)")

	// Output flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write the export to the specified file path (creates directories if needed)")
	cmd.Flags().BoolP("quiet", "q", false,
		"Do not print the run summary to stderr")

	// Archive flags
	cmd.Flags().Bool("no-save", false,
		"Do not archive the export")
	cmd.Flags().String("db-dir", "",
		"Archive directory (default: XDG data directory)")

	return cmd
}

// runScrapeCmd executes the scrape command.
func runScrapeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd, cfg.Verbose)
	slog.SetDefault(logger)

	// Ctrl-C stops the crawls cooperatively; partial exports are still written.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	quiet, err := cmd.Flags().GetBool("quiet")
	if err != nil {
		return err
	}
	summaryOut := cmd.ErrOrStderr()
	if quiet {
		summaryOut = io.Discard
	}

	return runScrape(ctx, cfg, cmd.OutOrStdout(), summaryOut, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates the secure logger selected by the global flags.
func setupLogger(cmd *cobra.Command, verbose bool) *slog.Logger {
	jsonLogs, err := cmd.Flags().GetBool("log-json")
	if err != nil {
		jsonLogs, _ = cmd.Root().PersistentFlags().GetBool("log-json") //nolint:errcheck // defaults to text logs
	}
	if jsonLogs {
		return sslog.NewSecureJSONLogger(cmd.ErrOrStderr(), verbose)
	}
	return sslog.NewSecureLogger(cmd.ErrOrStderr(), verbose)
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, err
	}

	cfg.DomainMatch, err = cmd.Flags().GetString("domain-match")
	if err != nil {
		return nil, err
	}
	cfg.MaxPagesSet = cmd.Flags().Changed("max-pages")
	cfg.DomainMatchSet = cmd.Flags().Changed("domain-match")

	cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
	if err != nil {
		return nil, err
	}

	cfg.Proxy, err = cmd.Flags().GetString("proxy")
	if err != nil {
		return nil, err
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicit --config must exist; otherwise a missing file is fine.
	if _, err := cfg.LoadSiteConfigs(); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave

	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return nil, err
	}
	if dbDir != "" {
		cfg.DBDir = dbDir
	}
	applyEnv(cmd, cfg)

	cfg.Verbose = getVerboseFlag(cmd)
	cfg.Targets = args

	return cfg, nil
}

// runScrape crawls every target and writes the exports to out in seed
// order. Run summaries go to summaryOut.
func runScrape(ctx context.Context, cfg *config.Config, out, summaryOut io.Writer, logger *slog.Logger) error {
	// Reject malformed seeds before anything is fetched.
	seeds := make([]string, len(cfg.Targets))
	for i, target := range cfg.Targets {
		seed, err := crawler.ValidateSeed(target)
		if err != nil {
			return fmt.Errorf("invalid URL %q: %w", target, err)
		}
		seeds[i] = seed
	}

	var db *database.ExportDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "path", db.Path())
	}

	client, err := newHTTPClient(cfg)
	if err != nil {
		return err
	}

	bp := pipeline.NewBatchProcessor(
		func(seed string) *pipeline.Pipeline {
			return newScrapePipeline(client, cfg, db, seed, logger)
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	startTime := time.Now()
	jobs, batchErr := bp.ProcessBatch(ctx, seeds)

	exports := make([]*model.Export, 0, len(jobs))
	for _, job := range jobs {
		switch {
		case job.Export == nil:
			fmt.Fprintf(summaryOut, "Crawl error for %s: %v\n", job.Seed, job.Err)
		case job.Err != nil && !errors.Is(job.Err, context.Canceled):
			// The export exists; only archiving failed.
			logger.Warn("export not archived", "seed", job.Seed, "error", job.Err)
			exports = append(exports, job.Export)
		default:
			exports = append(exports, job.Export)
		}
	}

	if len(exports) > 0 {
		if err := outputExports(cfg, out, exports); err != nil {
			return err
		}
	}

	summary := report.NewTextWriter(summaryOut)
	for _, export := range exports {
		fmt.Fprintln(summaryOut)
		if _, err := summary.WriteSummary(export); err != nil {
			return err
		}
	}
	if len(seeds) > 1 {
		fmt.Fprintf(summaryOut, "\nCrawled %d of %d sites in %s\n",
			len(exports), len(seeds), time.Since(startTime).Round(time.Millisecond))
	}

	if errors.Is(batchErr, context.Canceled) && len(exports) > 0 {
		fmt.Fprintln(summaryOut, "Interrupted: partial exports were written.")
		return nil
	}
	if len(exports) == 0 {
		if batchErr != nil {
			return batchErr
		}
		return errCrawlsFailed
	}
	return nil
}

// newScrapePipeline creates the crawl(+archive) pipeline for one seed.
func newScrapePipeline(client *http.Client, cfg *config.Config, db *database.ExportDB, seed string, logger *slog.Logger) *pipeline.Pipeline {
	p := pipeline.New(pipeline.WithLogger(logger))

	spider, err := newSpider(client, cfg, seed, logger)
	if err != nil {
		p.AddStep(failedStep{err: err})
		return p
	}
	p.AddStep(pipeline.NewCrawlStep(spider))

	if db != nil {
		p.AddStep(pipeline.NewArchiveStep(db, pipeline.WithArchiveLogger(logger)))
	}
	return p
}

// failedStep reports a setup error for a seed as a pipeline failure, so
// one misconfigured site does not abort the whole batch.
type failedStep struct {
	err error
}

func (s failedStep) Name() string { return "setup" }

func (s failedStep) Do(context.Context, *pipeline.Job) error { return s.err }

// outputExports writes the exports in the requested format.
func outputExports(cfg *config.Config, stdout io.Writer, exports []*model.Export) error {
	output := stdout
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	writer := newExportWriter(cfg, output)
	for _, export := range exports {
		if _, err := writer.Write(export); err != nil {
			return fmt.Errorf("failed to write export of %s: %w", export.Seed, err)
		}
	}
	return nil
}

// newExportWriter selects the report format.
func newExportWriter(cfg *config.Config, output io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(output, report.WithPrettyPrint(), report.WithVersion(getVersion()))
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output)
	default:
		return report.NewTextWriter(output)
	}
}
