package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/nao1215/sitescrape/internal/crawler"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".sitescrape"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// LoadConfigFile loads site configurations from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound. Every
// domainMatch value in the file is checked so that a typo fails at load
// time instead of silently falling back to the default mode.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if cf.Sites == nil {
		cf.Sites = make(map[string]SiteConfig)
	}

	if err := checkDomainMatch("defaults", cf.Defaults.DomainMatch); err != nil {
		return nil, err
	}
	for host, site := range cf.Sites {
		if err := checkDomainMatch(host, site.DomainMatch); err != nil {
			return nil, err
		}
	}

	return &cf, nil
}

// checkDomainMatch validates one domainMatch entry.
func checkDomainMatch(section, value string) error {
	if _, err := crawler.ParseMatchMode(value); err != nil {
		return fmt.Errorf("%w: %q in %s", ErrInvalidDomainMatch, value, section)
	}
	return nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .sitescrape in the current directory
// 3. Look for .sitescrape in the user's home directory
// 4. Look for config.yaml in the XDG config directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	candidates := make([]string, 0, 3)
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), "config.yaml"))

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// LoadSiteConfigs finds and loads the configuration file for c.
// A missing file is not an error unless ConfigFilePath was set explicitly.
// On success c.SiteConfigs is set (possibly to nil) and the path of the
// loaded file is returned.
func (c *Config) LoadSiteConfigs() (string, error) {
	path := FindConfigFile(c.ConfigFilePath)
	if path == "" {
		if c.ConfigFilePath != "" {
			return "", fmt.Errorf("%w: %s", ErrConfigNotFound, c.ConfigFilePath)
		}
		return "", nil
	}

	file, err := LoadConfigFile(path)
	if err != nil {
		return "", err
	}
	c.SiteConfigs = file
	return path, nil
}
