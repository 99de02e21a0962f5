// Package config resolves statscrape settings from defaults, an optional .env file
// and STATSCRAPE_* environment variables. Command-line flags are applied on top by
// the cli package.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pfrederiksen/statscrape/internal/logger"
	"github.com/pfrederiksen/statscrape/internal/table"
)

const (
	DefaultEnvFile   = ".env"
	DefaultOutputDir = "."

	// DefaultSeasonURL points at the archived 2007-era index; live seasons use
	// http://live.nrlstats.com/nrl/season%d.html.
	DefaultSeasonURL    = "http://web.archive.org/web/20080718185646/http://www.nrlstats.com/season%d/index.html"
	DefaultMatchBaseURL = "http://live.nrlstats.com"
	DefaultBrefBaseURL  = "https://www.basketball-reference.com"
)

// Config holds everything a crawl needs.
type Config struct {
	OutputDir string
	Timeout   time.Duration
	Retries   int
	UserAgent string
	LogLevel  logger.Level
	Dialect   table.Dialect
	Workers   int
	// SeasonURL is a format string taking the season year.
	SeasonURL      string
	MatchBaseURL   string
	BrefBaseURL    string
	DebugArtifacts bool
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		OutputDir:      DefaultOutputDir,
		Timeout:        30 * time.Second,
		Retries:        3,
		LogLevel:       logger.LevelInfo,
		Dialect:        table.Legacy,
		Workers:        1,
		SeasonURL:      DefaultSeasonURL,
		MatchBaseURL:   DefaultMatchBaseURL,
		BrefBaseURL:    DefaultBrefBaseURL,
		DebugArtifacts: true,
	}
}

// Load reads envFile (if present) into the process environment without overriding
// variables that are already set, then builds a Config from the environment.
// A missing default .env is fine; a missing explicitly named file is an error.
func Load(envFile string) (Config, error) {
	path := envFile
	if path == "" {
		path = DefaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		if envFile != "" || !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("loading env file %s: %w", path, err)
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from defaults overridden by the given lookup.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Default()

	if v := getenv("STATSCRAPE_OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	if v := getenv("STATSCRAPE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("parsing STATSCRAPE_TIMEOUT: %w", err)
		}
		cfg.Timeout = d
	}
	if v := getenv("STATSCRAPE_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("parsing STATSCRAPE_RETRIES: %w", err)
		}
		cfg.Retries = n
	}
	if v := getenv("STATSCRAPE_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("parsing STATSCRAPE_WORKERS: %w", err)
		}
		cfg.Workers = n
	}
	if v := getenv("STATSCRAPE_USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
	if v := getenv("STATSCRAPE_LOG_LEVEL"); v != "" {
		level, err := logger.ParseLevel(v)
		if err != nil {
			return Config{}, err
		}
		cfg.LogLevel = level
	}
	if v := getenv("STATSCRAPE_DIALECT"); v != "" {
		d, err := table.ParseDialect(v)
		if err != nil {
			return Config{}, err
		}
		cfg.Dialect = d
	}
	if v := getenv("STATSCRAPE_DEBUG_ARTIFACTS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("parsing STATSCRAPE_DEBUG_ARTIFACTS: %w", err)
		}
		cfg.DebugArtifacts = b
	}
	if v := getenv("NRL_SEASON_URL"); v != "" {
		cfg.SeasonURL = v
	}
	if v := getenv("NRL_MATCH_BASE_URL"); v != "" {
		cfg.MatchBaseURL = v
	}
	if v := getenv("BREF_BASE_URL"); v != "" {
		cfg.BrefBaseURL = v
	}

	return cfg, nil
}

// Validate checks the combined settings and expands ~/ in the output directory.
func (c *Config) Validate() error {
	if c.Retries < 0 {
		return fmt.Errorf("retries must be >= 0, got %d", c.Retries)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", c.Workers)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if _, err := table.ParseDialect(string(c.Dialect)); err != nil {
		return err
	}
	if _, err := logger.ParseLevel(string(c.LogLevel)); err != nil {
		return err
	}
	if !strings.Contains(c.SeasonURL, "%d") {
		return fmt.Errorf("season URL %q must contain %%d for the year", c.SeasonURL)
	}

	dir, err := ExpandHome(c.OutputDir)
	if err != nil {
		return err
	}
	c.OutputDir = dir
	return nil
}

// ExpandHome expands a leading ~/ to the user's home directory.
func ExpandHome(dir string) (string, error) {
	if !strings.HasPrefix(dir, "~/") {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, dir[2:]), nil
}
