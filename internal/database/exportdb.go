package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/sitescrape/internal/model"
)

// DBFileName is the name of the archive file inside the database directory.
const DBFileName = "sitescrape.db"

// ExportDB provides SQLite-based storage for finished exports.
//
// Design decision: Pages are stored as rows instead of one JSON blob
// because:
//  1. The (export_id, url) uniqueness constraint enforces the
//     one-record-per-URL property at the storage level
//  2. History listings can count pages without loading any text
type ExportDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures ExportDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates an ExportDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*ExportDB, error) {
	dbPath := filepath.Join(dbDir, DBFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	edb := &ExportDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := edb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return edb, nil
}

// Path returns the database file path.
func (edb *ExportDB) Path() string {
	return edb.dbPath
}

// Close closes the database connection.
func (edb *ExportDB) Close() error {
	return edb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (edb *ExportDB) createTables() error {
	schema := `
	-- One row per crawl run
	CREATE TABLE IF NOT EXISTS exports (
		id TEXT PRIMARY KEY,
		seed TEXT NOT NULL,
		domain TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		cancelled INTEGER NOT NULL DEFAULT 0,
		page_count INTEGER NOT NULL DEFAULT 0,
		failure_count INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_exports_seed ON exports(seed);
	CREATE INDEX IF NOT EXISTS idx_exports_started ON exports(started_at);

	-- Pages keep their processing order through position
	CREATE TABLE IF NOT EXISTS pages (
		export_id TEXT NOT NULL REFERENCES exports(id),
		position INTEGER NOT NULL,
		url TEXT NOT NULL,
		text TEXT NOT NULL,
		UNIQUE(export_id, url),
		UNIQUE(export_id, position)
	);

	-- Failed pages are kept for diagnostics only
	CREATE TABLE IF NOT EXISTS failures (
		export_id TEXT NOT NULL REFERENCES exports(id),
		url TEXT NOT NULL,
		status_code INTEGER NOT NULL DEFAULT 0,
		reason TEXT NOT NULL
	);
	`

	_, err := edb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveExport stores a finished export in one transaction.
// Saving the same export twice replaces the earlier copy.
func (edb *ExportDB) SaveExport(ctx context.Context, export *model.Export) (err error) {
	tx, err := edb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, table := range []string{"failures", "pages", "exports"} {
		column := "export_id"
		if table == "exports" {
			column = "id"
		}
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE "+column+" = ?", export.ID); err != nil {
			return fmt.Errorf("failed to replace export: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, `
	INSERT INTO exports (id, seed, domain, started_at, finished_at, cancelled, page_count, failure_count)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		export.ID,
		export.Seed,
		export.Domain,
		formatTimestamp(export.StartedAt),
		formatTimestamp(export.FinishedAt),
		export.Cancelled,
		len(export.Pages),
		len(export.Failures),
	)
	if err != nil {
		return fmt.Errorf("failed to insert export: %w", err)
	}

	for i, page := range export.Pages {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO pages (export_id, position, url, text) VALUES (?, ?, ?, ?)`,
			export.ID, i, page.URL, page.Text,
		); err != nil {
			return fmt.Errorf("failed to insert page %s: %w", page.URL, err)
		}
	}

	for _, failure := range export.Failures {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO failures (export_id, url, status_code, reason) VALUES (?, ?, ?, ?)`,
			export.ID, failure.URL, failure.StatusCode, failure.Reason,
		); err != nil {
			return fmt.Errorf("failed to insert failure %s: %w", failure.URL, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit export: %w", err)
	}
	return nil
}

// GetExport retrieves an export by ID. It returns nil, nil when no export
// has that ID.
func (edb *ExportDB) GetExport(ctx context.Context, id string) (*model.Export, error) {
	query := `
	SELECT id, seed, domain, started_at, finished_at, cancelled
	FROM exports
	WHERE id = ?
	`

	var export model.Export
	var started, finished string

	err := edb.db.QueryRowContext(ctx, query, id).Scan(
		&export.ID,
		&export.Seed,
		&export.Domain,
		&started,
		&finished,
		&export.Cancelled,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get export: %w", err)
	}

	export.StartedAt = parseTimestamp(started)
	export.FinishedAt = parseTimestamp(finished)

	if export.Pages, err = edb.loadPages(ctx, export.ID); err != nil {
		return nil, err
	}
	if export.Failures, err = edb.loadFailures(ctx, export.ID); err != nil {
		return nil, err
	}

	return &export, nil
}

// GetLatestExport retrieves the most recent export for a canonical seed.
// It returns nil, nil when the seed was never archived.
func (edb *ExportDB) GetLatestExport(ctx context.Context, seed string) (*model.Export, error) {
	query := `
	SELECT id FROM exports
	WHERE seed = ?
	ORDER BY started_at DESC
	LIMIT 1
	`

	var id string
	err := edb.db.QueryRowContext(ctx, query, seed).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest export: %w", err)
	}
	return edb.GetExport(ctx, id)
}

// loadPages returns the pages of an export in processing order.
func (edb *ExportDB) loadPages(ctx context.Context, id string) ([]model.PageRecord, error) {
	rows, err := edb.db.QueryContext(ctx,
		`SELECT url, text FROM pages WHERE export_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query pages: %w", err)
	}
	defer rows.Close()

	pages := make([]model.PageRecord, 0)
	for rows.Next() {
		var page model.PageRecord
		if err := rows.Scan(&page.URL, &page.Text); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		pages = append(pages, page)
	}
	return pages, rows.Err()
}

// loadFailures returns the failures of an export.
func (edb *ExportDB) loadFailures(ctx context.Context, id string) ([]model.PageFailure, error) {
	rows, err := edb.db.QueryContext(ctx,
		`SELECT url, status_code, reason FROM failures WHERE export_id = ? ORDER BY rowid`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query failures: %w", err)
	}
	defer rows.Close()

	failures := make([]model.PageFailure, 0)
	for rows.Next() {
		var failure model.PageFailure
		if err := rows.Scan(&failure.URL, &failure.StatusCode, &failure.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan failure: %w", err)
		}
		failures = append(failures, failure)
	}
	return failures, rows.Err()
}

// ExportMetadata contains summary information about an archived export.
// This is used for displaying history without loading page text.
type ExportMetadata struct {
	// ID is the export ID.
	ID string

	// Seed is the canonical seed URL.
	Seed string

	// StartedAt is when the run started.
	StartedAt time.Time

	// FinishedAt is when the run stopped.
	FinishedAt time.Time

	// Cancelled is true for partial exports.
	Cancelled bool

	// Pages is the number of page records.
	Pages int

	// Failures is the number of skipped pages.
	Failures int
}

// ListExports returns export metadata, newest first.
// An empty seed lists every export.
func (edb *ExportDB) ListExports(ctx context.Context, seed string) ([]ExportMetadata, error) {
	query := `
	SELECT id, seed, started_at, finished_at, cancelled, page_count, failure_count
	FROM exports
	WHERE 1=1
	`
	args := make([]any, 0)
	if seed != "" {
		query += " AND seed = ?"
		args = append(args, seed)
	}
	query += " ORDER BY started_at DESC"

	rows, err := edb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}
	defer rows.Close()

	results := make([]ExportMetadata, 0)
	for rows.Next() {
		var meta ExportMetadata
		var started, finished string

		if err := rows.Scan(&meta.ID, &meta.Seed, &started, &finished, &meta.Cancelled, &meta.Pages, &meta.Failures); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}

		meta.StartedAt = parseTimestamp(started)
		meta.FinishedAt = parseTimestamp(finished)
		results = append(results, meta)
	}

	return results, rows.Err()
}

// ListSeeds returns every archived seed URL in alphabetical order.
func (edb *ExportDB) ListSeeds(ctx context.Context) ([]string, error) {
	rows, err := edb.db.QueryContext(ctx, `SELECT DISTINCT seed FROM exports ORDER BY seed`)
	if err != nil {
		return nil, fmt.Errorf("failed to list seeds: %w", err)
	}
	defer rows.Close()

	seeds := make([]string, 0)
	for rows.Next() {
		var seed string
		if err := rows.Scan(&seed); err != nil {
			return nil, fmt.Errorf("failed to scan seed: %w", err)
		}
		seeds = append(seeds, seed)
	}

	return seeds, rows.Err()
}

// storedTimestampFormat is how timestamps are written. It sorts
// lexicographically in chronological order for UTC values.
const storedTimestampFormat = "2006-01-02T15:04:05.000000000Z"

// formatTimestamp converts t to the stored UTC text form.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(storedTimestampFormat)
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	storedTimestampFormat,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
