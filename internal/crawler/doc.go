// Package crawler implements the same-origin crawl engine.
//
// # Architecture
//
// The package is built around the Spider type, which drives a depth-bounded,
// concurrency-bounded traversal from a single seed URL. A single dispatcher
// loop owns the frontier queue and hands entries to worker goroutines; at
// most the configured concurrency of fetches is ever in flight, globally
// across the whole traversal rather than per page.
//
// # Components
//
//   - Normalize and friends: URL normalization plus the directory and
//     subdomain derivations keyed off a normalized URL
//   - Scope: same-host/subdomain scoping and robots disallow checks
//   - PolicyLoader: fetches robots.txt once before crawling, fail-open
//   - Fetcher: one GET per URL, returning a tagged result so callers can
//     tell why a page produced no content
//   - Extractor: goquery-based anchor extraction with per-page dedup
//   - Spider: frontier, visited-set, and result accumulation
//
// # Invariants
//
// A normalized URL is admitted at most once, at the moment it is inserted
// into the visited set; directory and subdomain derivations are recorded at
// that same moment. Depth never decreases along a discovery chain, and
// links extracted from a page at the maximum depth are discarded. Per-URL
// failures (malformed links, transport errors, non-HTML responses) are
// absorbed silently; only an invalid seed is fatal.
//
// # Usage
//
//	spider, err := crawler.NewSpider(client, "example.com",
//		crawler.WithMaxDepth(3),
//		crawler.WithConcurrency(100),
//	)
//	if err != nil {
//		return err
//	}
//	results, err := spider.Crawl(ctx)
package crawler
