package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/nao1215/sitescrape/internal/config"
	"github.com/nao1215/sitescrape/internal/crawler"
	"github.com/nao1215/sitescrape/internal/transport"
)

// newHTTPClient builds the shared HTTP client of a command.
func newHTTPClient(cfg *config.Config) (*http.Client, error) {
	client, err := transport.NewClient(transport.WithSOCKS5(cfg.Proxy))
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return client, nil
}

// applyEnv applies the SITESCRAPE_* environment variables to cfg.
// Flags set on the command line keep their values.
func applyEnv(cmd *cobra.Command, cfg *config.Config) {
	proxy, userAgent, dbDir := cfg.Proxy, cfg.UserAgent, cfg.DBDir
	cfg.ApplyEnv()

	flags := cmd.Flags()
	if flags.Changed("proxy") {
		cfg.Proxy = proxy
	}
	if flags.Changed("user-agent") {
		cfg.UserAgent = userAgent
	}
	if flags.Changed("db-dir") {
		cfg.DBDir = dbDir
	}
}

// siteHost returns the host of a canonical seed URL, used to look up
// per-site settings.
func siteHost(seed string) string {
	u, err := url.Parse(seed)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// newFetcher builds the HTTP fetcher for one site.
func newFetcher(client *http.Client, cfg *config.Config, site config.SiteConfig) *crawler.HTTPFetcher {
	opts := []crawler.HTTPFetcherOption{
		crawler.WithUserAgent(cfg.UserAgent),
		crawler.WithMaxBodySize(cfg.MaxBodySize),
		crawler.WithTimeout(cfg.Timeout),
	}
	if site.Cookie != "" {
		opts = append(opts, crawler.WithCookie(site.Cookie))
	}
	if len(site.Headers) > 0 {
		opts = append(opts, crawler.WithHeaders(site.Headers))
	}
	return crawler.NewHTTPFetcher(client, opts...)
}

// spiderOptions converts site settings into Spider options.
func spiderOptions(site config.SiteConfig, logger *slog.Logger) ([]crawler.SpiderOption, error) {
	mode, err := crawler.ParseMatchMode(site.DomainMatch)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalidDomainMatch, err)
	}

	opts := []crawler.SpiderOption{
		crawler.WithMatchMode(mode),
		crawler.WithMaxPages(site.MaxPages),
		crawler.WithLogger(logger),
	}
	if len(site.IgnorePatterns) > 0 || len(site.FollowPatterns) > 0 {
		opts = append(opts, crawler.WithPathFilter(crawler.PathFilter{
			Ignore: site.IgnorePatterns,
			Follow: site.FollowPatterns,
		}))
	}
	return opts, nil
}

// newSpider builds the Spider for a canonical seed, applying the settings
// of its site entry in the config file.
func newSpider(client *http.Client, cfg *config.Config, seed string, logger *slog.Logger) (*crawler.Spider, error) {
	site := cfg.ForSite(siteHost(seed))
	opts, err := spiderOptions(site, logger)
	if err != nil {
		return nil, err
	}
	return crawler.NewSpider(newFetcher(client, cfg, site), opts...), nil
}
