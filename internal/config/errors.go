package config

import "errors"

// Configuration validation errors. Package-level sentinels so callers can
// branch with errors.Is while still getting a readable message.
var (
	// ErrNoTarget is returned when no seed URL is given, either as a
	// positional argument or via --list.
	ErrNoTarget = errors.New("no target specified: provide a URL or use --list")

	// ErrInvalidDepth is returned when the crawl depth is negative.
	// Depth 0 is valid and means fetch only the seed page.
	ErrInvalidDepth = errors.New("invalid depth: must be non-negative")

	// ErrInvalidDelay is returned when the politeness delay is negative.
	// Use 0 for no base delay between requests.
	ErrInvalidDelay = errors.New("invalid delay: must be non-negative")

	// ErrInvalidTimeout is returned when the request timeout is not
	// positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidConcurrency is returned when the concurrency cap is not
	// positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidMaxBodySize is returned when the max body size is
	// negative. Use 0 for the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
