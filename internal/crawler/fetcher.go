package crawler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// SkipReason explains why a fetch produced no crawlable content.
// Modeling the reason explicitly (instead of an ad-hoc empty return) lets
// tests and stats assert on why a URL yielded zero links.
type SkipReason string

// Skip reasons, also used as keys in CrawlStats.PagesSkipped.
const (
	// SkipNone means the page was fetched and its body is usable.
	SkipNone SkipReason = ""

	// SkipTransport covers timeouts, refused connections, DNS and TLS
	// failures, and body-read errors.
	SkipTransport SkipReason = "transport_error"

	// SkipStatus means the response status was outside 2xx.
	SkipStatus SkipReason = "http_status"

	// SkipContentType means the response was not text/html.
	SkipContentType SkipReason = "content_type"
)

// FetchResult is the tagged outcome of fetching one URL.
type FetchResult struct {
	// HTML is the page body. Empty unless Skip is SkipNone.
	HTML string

	// StatusCode is the HTTP status, 0 when the request never completed.
	StatusCode int

	// Skip is SkipNone for a usable page, otherwise the reason the page
	// produced no content.
	Skip SkipReason
}

// Fetched reports whether the result carries usable HTML.
func (r *FetchResult) Fetched() bool {
	return r.Skip == SkipNone
}

// Fetcher performs single-page GETs for the crawl engine.
// Fetch failures are never fatal: every outcome is reported as a
// FetchResult and the worst case is a page that contributes no links.
type Fetcher struct {
	client      *http.Client
	userAgent   string
	maxBodySize int64
	logger      *slog.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithFetcherUserAgent sets the User-Agent header sent with each request.
func WithFetcherUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithFetcherMaxBodySize caps how many bytes of a response body are read.
func WithFetcherMaxBodySize(size int64) FetcherOption {
	return func(f *Fetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// WithFetcherLogger sets the logger used for per-fetch debug output.
func WithFetcherLogger(logger *slog.Logger) FetcherOption {
	return func(f *Fetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// defaultUserAgent mimics a mainstream browser; some sites serve crawlers
// an empty shell otherwise. Overridable per crawl.
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// defaultMaxBodySize bounds response reads to keep one huge page from
// exhausting memory.
const defaultMaxBodySize = 5 * 1024 * 1024

// NewFetcher creates a Fetcher using the given HTTP client. Timeouts,
// connection pooling, and redirect policy belong to the client.
func NewFetcher(client *http.Client, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:      client,
		userAgent:   defaultUserAgent,
		maxBodySize: defaultMaxBodySize,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch issues one GET and returns the page body only for a successful,
// HTML-typed response. All other outcomes come back as a skip.
//
// Accept-Encoding is left to net/http, which negotiates gzip and
// decompresses transparently.
func (f *Fetcher) Fetch(ctx context.Context, target string) *FetchResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		f.logger.Debug("request build failed", "url", target, "error", err)
		return &FetchResult{Skip: SkipTransport}
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Upgrade-Insecure-Requests", "1")

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Debug("fetch failed", "url", target, "error", err)
		return &FetchResult{Skip: SkipTransport}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &FetchResult{StatusCode: resp.StatusCode, Skip: SkipStatus}
	}

	if !strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		return &FetchResult{StatusCode: resp.StatusCode, Skip: SkipContentType}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		f.logger.Debug("body read failed", "url", target, "error", err)
		return &FetchResult{StatusCode: resp.StatusCode, Skip: SkipTransport}
	}

	return &FetchResult{HTML: string(body), StatusCode: resp.StatusCode}
}
