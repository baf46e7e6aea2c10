package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/nao1215/sitescrape/internal/config"
	"github.com/nao1215/sitescrape/internal/crawler"
	"github.com/nao1215/sitescrape/internal/database"
	"github.com/nao1215/sitescrape/internal/model"
)

// errExportNotFound is returned when an archived export does not exist.
var errExportNotFound = errors.New("export not found")

// NewHistoryCmd creates the history command.
// This command lists and reprints exports stored in the archive.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [url]",
		Short: "List and reprint archived exports",
		Long: `History shows exports archived by 'sitescrape scrape'.

Without flags it lists the archived runs, newest first, optionally only
those of one site. Use --show to print an archived export again in any
output format, or --latest to print the newest export of a site.

Examples:
  # List every archived run
  sitescrape history

  # List the runs of one site
  sitescrape history example.com

  # List every archived site
  sitescrape history --list-sites

  # Print an archived export as Markdown
  sitescrape history --show 0b6f9a3e-... --markdown

  # Print the newest export of a site
  sitescrape history --latest example.com`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("list-sites", "L", false,
		"List all archived sites")
	cmd.Flags().StringP("show", "s", "",
		"Print the export with this ID")
	cmd.Flags().BoolP("latest", "l", false,
		"Print the newest export of the given site")

	cmd.Flags().BoolP("json", "j", false,
		"Print exports as JSON")
	cmd.Flags().BoolP("markdown", "m", false,
		"Print exports as Markdown")

	cmd.Flags().String("db-dir", "",
		"Archive directory (default: XDG data directory)")

	return cmd
}

// historyOptions holds parsed history flags.
type historyOptions struct {
	seed      string
	listSites bool
	showID    string
	latest    bool
	format    *config.Config
	dbDir     string
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	opts, err := parseHistoryFlags(cmd, args)
	if err != nil {
		return err
	}

	// Validate arguments before opening the database.
	if opts.latest && opts.seed == "" {
		return errors.New("a site URL is required with --latest")
	}
	if opts.format.JSONReport && opts.format.MarkdownReport {
		return config.ErrConflictingReportFormats
	}

	db, err := database.Open(opts.dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	return runHistory(cmd.Context(), db, opts, cmd.OutOrStdout())
}

// parseHistoryFlags reads the history flags and normalizes the URL argument.
func parseHistoryFlags(cmd *cobra.Command, args []string) (historyOptions, error) {
	opts := historyOptions{format: config.NewConfig()}
	opts.format.ApplyEnv()
	opts.dbDir = opts.format.DBDir

	var err error

	if len(args) == 1 {
		opts.seed, err = crawler.ValidateSeed(args[0])
		if err != nil {
			return opts, fmt.Errorf("invalid URL: %w", err)
		}
	}

	if opts.listSites, err = cmd.Flags().GetBool("list-sites"); err != nil {
		return opts, err
	}
	if opts.showID, err = cmd.Flags().GetString("show"); err != nil {
		return opts, err
	}
	if opts.latest, err = cmd.Flags().GetBool("latest"); err != nil {
		return opts, err
	}
	if opts.format.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return opts, err
	}
	if opts.format.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return opts, err
	}

	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return opts, err
	}
	if dbDir != "" {
		opts.dbDir = dbDir
	}

	return opts, nil
}

// runHistory dispatches to the requested history action.
func runHistory(ctx context.Context, db *database.ExportDB, opts historyOptions, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	switch {
	case opts.listSites:
		return listArchivedSites(ctx, db, out)
	case opts.showID != "":
		export, err := db.GetExport(ctx, opts.showID)
		if err != nil {
			return err
		}
		if export == nil {
			return fmt.Errorf("%w: %s", errExportNotFound, opts.showID)
		}
		return printExport(opts, export, out)
	case opts.latest:
		export, err := db.GetLatestExport(ctx, opts.seed)
		if err != nil {
			return err
		}
		if export == nil {
			return fmt.Errorf("%w: no archived export of %s", errExportNotFound, opts.seed)
		}
		return printExport(opts, export, out)
	default:
		return listExportHistory(ctx, db, opts.seed, out)
	}
}

// printExport writes one archived export in the selected format.
func printExport(opts historyOptions, export *model.Export, out io.Writer) error {
	_, err := newExportWriter(opts.format, out).Write(export)
	return err
}

// listArchivedSites lists every seed with at least one archived export.
func listArchivedSites(ctx context.Context, db *database.ExportDB, out io.Writer) error {
	seeds, err := db.ListSeeds(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sites: %w", err)
	}

	if len(seeds) == 0 {
		fmt.Fprintln(out, "No archived sites found in the database.")
		fmt.Fprintln(out, "\nUse 'sitescrape scrape <url>' to crawl a site.")
		return nil
	}

	fmt.Fprintf(out, "Archived sites (%d):\n\n", len(seeds))
	for _, seed := range seeds {
		fmt.Fprintf(out, "  • %s\n", seed)
	}
	fmt.Fprintln(out, "\nUse 'sitescrape history <url>' to see the runs of a site.")

	return nil
}

// listExportHistory lists archived runs, optionally only those of seed.
func listExportHistory(ctx context.Context, db *database.ExportDB, seed string, out io.Writer) error {
	runs, err := db.ListExports(ctx, seed)
	if err != nil {
		return fmt.Errorf("failed to get export history: %w", err)
	}

	if len(runs) == 0 {
		if seed != "" {
			fmt.Fprintf(out, "No archived exports found for %s\n", seed)
		} else {
			fmt.Fprintln(out, "No archived exports found.")
		}
		fmt.Fprintln(out, "\nUse 'sitescrape scrape <url>' to crawl a site.")
		return nil
	}

	if seed != "" {
		fmt.Fprintf(out, "Export history for %s (%d runs):\n\n", seed, len(runs))
	} else {
		fmt.Fprintf(out, "Export history (%d runs):\n\n", len(runs))
	}
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Date", "Pages", "Skipped", "Seed"})

	for _, meta := range runs {
		seedCol := meta.Seed
		if meta.Cancelled {
			seedCol += " (stopped)"
		}
		t.AppendRow(table.Row{
			meta.ID,
			meta.StartedAt.Local().Format("2006-01-02 15:04:05"),
			meta.Pages,
			meta.Failures,
			seedCol,
		})
	}
	t.Render()

	fmt.Fprintln(out, "\nUse 'sitescrape history --show <id>' to print an export.")

	return nil
}
