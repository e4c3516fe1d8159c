package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values, overridable via CLI flags and the
// config file.
const (
	// DefaultDepth is the maximum crawl depth. Depth 0 means only the seed
	// page; 3 reaches most of a typical site's navigable structure without
	// runaway traversals.
	DefaultDepth = 3

	// DefaultDelay is the base politeness delay between requests. Every
	// request additionally waits a random jitter of up to 500ms, so the
	// effective per-request pause averages 750ms at this default.
	DefaultDelay = 500 * time.Millisecond

	// DefaultTimeout is the per-request HTTP timeout. 10 seconds is
	// generous for clearnet sites; slow pages past that are skipped rather
	// than stalling a worker slot.
	DefaultTimeout = 10 * time.Second

	// DefaultConcurrency caps simultaneous in-flight fetches across the
	// whole crawl. 100 saturates most targets without exhausting local
	// sockets.
	DefaultConcurrency = 100

	// DefaultBatchSize is the number of concurrent crawls when processing
	// multiple seed URLs from a list.
	DefaultBatchSize = 10

	// DefaultUserAgent mimics a mainstream browser. Some sites serve
	// obvious crawlers an empty shell or a block page; a browser UA gets
	// the same HTML a person would see. Overridable via --user-agent.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	// DefaultMaxBodySize limits how many bytes of a response body are
	// read. 5MB covers any plausible HTML page.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// AppName is the application name used for XDG directory paths.
	AppName = "silentcrawl"
)

// Config holds all options for a crawl run. It is populated from CLI
// flags plus the optional config file, validated once, and passed through
// the application explicitly rather than via global state.
type Config struct {
	// Targets is the list of seed URLs to crawl. A bare domain is
	// accepted; "http://" is assumed when no scheme is given.
	Targets []string

	// Depth is the maximum crawl depth. Pages at this depth are fetched
	// and recorded but their links are not followed.
	Depth int

	// Delay is the base politeness delay between HTTP requests. Jitter is
	// added on top of this per request.
	Delay time.Duration

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration

	// Concurrency caps in-flight fetches globally within one crawl.
	Concurrency int

	// RequestsPerSecond optionally caps the overall request rate on top
	// of the politeness delay. Zero disables the limiter.
	RequestsPerSecond float64

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string

	// IgnoreRobots skips fetching and honoring robots.txt entirely.
	IgnoreRobots bool

	// MaxBodySize is the maximum response body size in bytes to read.
	// Zero means DefaultMaxBodySize.
	MaxBodySize int64

	// MaxTime bounds the wall-clock duration of the whole run. Zero means
	// no bound; on expiry the crawl stops and reports partial results.
	MaxTime time.Duration

	// Verbose enables debug-level log output. When false, only warnings
	// and errors are logged.
	Verbose bool

	// BatchSize is the number of concurrent crawls when Targets holds
	// more than one seed.
	BatchSize int

	// JSONReport selects JSON report output. Mutually exclusive with
	// MarkdownReport; when neither is set the human-readable summary is
	// printed.
	JSONReport bool

	// MarkdownReport selects GitHub Flavored Markdown report output.
	MarkdownReport bool

	// ReportFile is the output file path for the report. Empty means
	// stdout.
	ReportFile string

	// ConfigFilePath is the path to the configuration file. Empty means
	// search for .silentcrawl in the current and home directories.
	ConfigFilePath string

	// SiteConfigs holds per-site overrides loaded from the config file.
	SiteConfigs *File

	// DBDir is the directory for the SQLite history database. Defaults to
	// the XDG data directory.
	DBDir string

	// SaveToDB indicates whether crawl results are persisted for the
	// history subcommand.
	SaveToDB bool
}

// NewConfig creates a Config with default values. Callers override
// individual fields from CLI flags after creation.
func NewConfig() *Config {
	return &Config{
		Depth:       DefaultDepth,
		Delay:       DefaultDelay,
		Timeout:     DefaultTimeout,
		Concurrency: DefaultConcurrency,
		BatchSize:   DefaultBatchSize,
		UserAgent:   DefaultUserAgent,
		MaxBodySize: DefaultMaxBodySize,
	}
}

// XDGDataDir returns the XDG data directory for silentcrawl.
// On Linux: ~/.local/share/silentcrawl
// On macOS: ~/Library/Application Support/silentcrawl
// On Windows: %LOCALAPPDATA%\silentcrawl
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for silentcrawl.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns the first problem found
// as a sentinel error. It runs once after CLI parsing, before any network
// activity.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}
	if c.Depth < 0 {
		return ErrInvalidDepth
	}
	if c.Delay < 0 {
		return ErrInvalidDelay
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	return nil
}
