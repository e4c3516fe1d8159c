package model

import "time"

// CrawlStats counts what happened to the URLs a crawl admitted.
// Admitted URLs that produced no links still count as visited; the
// skip counters record why a page yielded no content.
type CrawlStats struct {
	// URLsVisited is the number of URLs admitted to the crawl.
	URLsVisited int `json:"urls_visited"`

	// PagesFetched is the number of pages that returned usable HTML.
	PagesFetched int `json:"pages_fetched"`

	// PagesSkipped counts pages that yielded no content, keyed by the
	// skip reason (transport_error, http_status, content_type).
	PagesSkipped map[string]int `json:"pages_skipped,omitempty"`
}

// CrawlReport is the full record of one crawl of one seed.
// Pipeline steps populate it incrementally: the policy step fills
// DisallowedPaths, the crawl step fills Results and Stats, and the
// persist step stores the whole thing.
type CrawlReport struct {
	// Target is the seed exactly as the user supplied it.
	Target string `json:"target"`

	// Seed is the normalized form of the target that the crawl started from.
	Seed string `json:"seed,omitempty"`

	// StartedAt is when the crawl began.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the crawl ended, successfully or not.
	FinishedAt time.Time `json:"finished_at,omitempty"`

	// DisallowedPaths holds the robots.txt disallow prefixes in effect.
	// Empty when robots enforcement was disabled or the policy failed to
	// load (fail-open).
	DisallowedPaths []string `json:"disallowed_paths,omitempty"`

	// Stats summarizes fetch outcomes.
	Stats CrawlStats `json:"stats"`

	// Results holds the three derived sets. Nil until the crawl step ran.
	Results *Results `json:"results,omitempty"`

	// TimedOut is true when the crawl was cut short by a deadline or signal.
	TimedOut bool `json:"timed_out,omitempty"`

	// Error holds the fatal error, if any. Excluded from JSON; the
	// message is carried separately so reports stay serializable.
	Error error `json:"-"`

	// ErrorMessage is the human-readable form of Error.
	ErrorMessage string `json:"error,omitempty"`
}

// NewCrawlReport creates an empty report for the given target.
func NewCrawlReport(target string) *CrawlReport {
	return &CrawlReport{
		Target:    target,
		StartedAt: time.Now(),
	}
}

// Elapsed returns how long the crawl took. Zero if it never finished.
func (r *CrawlReport) Elapsed() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// SetError records a fatal error on the report.
func (r *CrawlReport) SetError(err error) {
	if err == nil {
		return
	}
	r.Error = err
	r.ErrorMessage = err.Error()
}
