package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/sitescrape/internal/crawler"
)

// Default configuration values.
const (
	// DefaultTimeout bounds a single page request. A request that is still
	// running when the user stops the crawl is allowed to finish, so this
	// also bounds how long a stop can take.
	DefaultTimeout = crawler.DefaultTimeout

	// DefaultBatchSize is the number of seeds crawled concurrently when
	// several URLs are given. Each crawl is itself sequential.
	DefaultBatchSize = 4

	// DefaultMaxPages of 0 crawls every reachable page.
	DefaultMaxPages = 0

	// DefaultDomainMatch accepts the seed host and its subdomains.
	DefaultDomainMatch = "subdomain"

	// AppName is the application name used for XDG directory paths.
	AppName = "sitescrape"

	// DefaultUserAgent mimics a desktop browser. Some sites serve empty
	// pages to unknown clients.
	DefaultUserAgent = crawler.DefaultUserAgent

	// DefaultMaxBodySize limits the maximum response body size to read.
	DefaultMaxBodySize = crawler.DefaultMaxBodySize

	// DefaultExportFile is the file name offered when saving an export.
	DefaultExportFile = "site.txt"
)

// Config holds all configuration options for sitescrape.
// This struct is designed to be populated from CLI flags and passed through
// the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., CrawlConfig, ReportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
type Config struct {
	// Timeout is the per-request timeout.
	Timeout time.Duration

	// MaxPages stops each crawl after this many pages. 0 means no limit.
	// The config file overrides it unless MaxPagesSet is true.
	MaxPages int

	// MaxPagesSet records that MaxPages was given on the command line.
	MaxPagesSet bool

	// DomainMatch selects how link hosts are compared with the seed host:
	// "subdomain" (default), "exact" or "substring".
	// The config file overrides it unless DomainMatchSet is true.
	DomainMatch string

	// DomainMatchSet records that DomainMatch was given on the command line.
	DomainMatchSet bool

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// BatchSize is the number of concurrent crawls when several seeds are given.
	BatchSize int

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .sitescrape in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// SiteConfigs holds site-specific configurations loaded from the config file.
	SiteConfigs *File

	// JSONReport selects JSON output. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown output. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path. When empty, output goes to stdout.
	// Directories are created automatically if they don't exist.
	ReportFile string

	// Targets is the list of seed URLs to crawl.
	Targets []string

	// DBDir is the directory of the export archive.
	// Defaults to the XDG data directory (~/.local/share/sitescrape on Linux).
	DBDir string

	// SaveToDB indicates whether finished exports are archived.
	SaveToDB bool

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	MaxBodySize int64

	// Proxy is a SOCKS5 proxy address ("host:port") all requests go
	// through, e.g. a local Tor daemon. Empty means direct connections.
	Proxy string
}

// NewConfig creates a new Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeout, batch size).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Timeout:     DefaultTimeout,
		MaxPages:    DefaultMaxPages,
		DomainMatch: DefaultDomainMatch,
		BatchSize:   DefaultBatchSize,
		UserAgent:   DefaultUserAgent,
		MaxBodySize: DefaultMaxBodySize,
		DBDir:       XDGDataDir(),
		SaveToDB:    true,
	}
}

// XDGDataDir returns the XDG data directory for sitescrape.
// On Linux: ~/.local/share/sitescrape
// On macOS: ~/Library/Application Support/sitescrape
// On Windows: %LOCALAPPDATA%\sitescrape
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for sitescrape.
// On Linux: ~/.config/sitescrape
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for sitescrape.
// On Linux: ~/.cache/sitescrape
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found as a sentinel error.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any crawling begins.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.MaxBodySize <= 0 {
		return ErrInvalidMaxBodySize
	}
	if c.MaxPages < 0 {
		return ErrInvalidMaxPages
	}
	if _, err := crawler.ParseMatchMode(c.DomainMatch); err != nil {
		return ErrInvalidDomainMatch
	}
	return nil
}

// ForSite returns the effective crawl settings for a seed host.
// Precedence: command-line flag, then the config file (site entry merged
// over defaults), then the built-in defaults.
func (c *Config) ForSite(host string) SiteConfig {
	site := SiteConfig{
		DomainMatch: c.DomainMatch,
		MaxPages:    c.MaxPages,
	}
	if c.SiteConfigs == nil {
		return site
	}

	fileSite := c.SiteConfigs.GetSiteConfig(host)
	site.Cookie = fileSite.Cookie
	site.Headers = fileSite.Headers
	site.IgnorePatterns = fileSite.IgnorePatterns
	site.FollowPatterns = fileSite.FollowPatterns
	if fileSite.DomainMatch != "" && !c.DomainMatchSet {
		site.DomainMatch = fileSite.DomainMatch
	}
	if fileSite.MaxPages != 0 && !c.MaxPagesSet {
		site.MaxPages = fileSite.MaxPages
	}
	return site
}
