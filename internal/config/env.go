package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables that override built-in defaults. Command-line
// flags still take precedence over them.
const (
	// EnvProxy sets the SOCKS5 proxy address.
	EnvProxy = "SITESCRAPE_PROXY"

	// EnvUserAgent sets the User-Agent header.
	EnvUserAgent = "SITESCRAPE_USER_AGENT"

	// EnvDBDir sets the export archive directory.
	EnvDBDir = "SITESCRAPE_DB_DIR"
)

// LoadEnvFile loads variables from a .env file in the current directory
// (or the given files) into the process environment. Variables that are
// already set are never overwritten, and a missing file is not an error.
func LoadEnvFile(filenames ...string) error {
	err := godotenv.Load(filenames...)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// ApplyEnv overrides defaults with the SITESCRAPE_* environment variables.
// Call it before applying explicitly set flags.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvProxy); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv(EnvUserAgent); v != "" {
		c.UserAgent = v
	}
	if v := os.Getenv(EnvDBDir); v != "" {
		c.DBDir = v
	}
}
