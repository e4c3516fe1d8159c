package crawler

import "errors"

// Crawler errors.
//
// Only ErrInvalidSeed ever aborts a run. Everything else that can go wrong
// during a crawl (malformed links, fetch failures, unreachable robots.txt)
// is absorbed per-URL and never surfaces as an error value.
var (
	// ErrInvalidSeed is returned by NewSpider when the seed cannot be
	// parsed as a URL or has no host component. Checked with errors.Is.
	ErrInvalidSeed = errors.New("invalid seed URL: missing or unparsable host")

	// ErrMalformedURL is returned by Normalize when either the link or its
	// source page URL cannot be parsed. Callers treat it as "no target"
	// and continue.
	ErrMalformedURL = errors.New("malformed URL")
)
