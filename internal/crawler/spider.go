package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/silentcrawl/silentcrawl/internal/model"
)

// Default crawl parameters, overridable via options.
const (
	defaultMaxDepth    = 3
	defaultDelay       = 500 * time.Millisecond
	defaultConcurrency = 100

	// maxJitter is the upper bound of the random addition to the
	// politeness delay. The jitter only exists to break up lockstep
	// request bursts from concurrent workers.
	maxJitter = 500 * time.Millisecond
)

// Spider crawls a single registrable domain breadth-first from one seed.
//
// It owns all crawl state: the frontier of discovered-but-unprocessed
// (URL, depth) pairs, the visited set, and the three result accumulators.
// Worker goroutines only fetch and extract; every admission decision runs
// through the dispatcher's mutex-guarded admit step, which is the sole
// deduplication point.
type Spider struct {
	// seed is the normalized URL the crawl starts from.
	seed string

	// baseHost is the seed's host, port excluded. Scope and subdomain
	// derivation key off it.
	baseHost string

	// maxDepth bounds the traversal. 0 means fetch only the seed page.
	maxDepth int

	// delay is the base politeness delay before each fetch; each request
	// additionally waits a uniform random jitter in [0, maxJitter).
	delay time.Duration

	// jitterMax is maxJitter in production; tests zero it.
	jitterMax time.Duration

	// concurrency caps how many fetches may be in flight at once,
	// globally across the whole traversal.
	concurrency int

	// limiter optionally caps overall request rate. Nil means the
	// politeness delay is the only throttle.
	limiter *rate.Limiter

	fetcher   *Fetcher
	scope     *Scope
	extractor *Extractor
	logger    *slog.Logger

	// mu guards everything below. Critical sections are insert/lookup
	// only and are never held across network I/O or sleeps.
	mu          sync.Mutex
	visited     map[string]struct{}
	directories map[string]struct{}
	subdomains  map[string]struct{}
	fetched     int
	skipped     map[SkipReason]int
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithMaxDepth sets the maximum crawl depth. 0 = only the seed page.
func WithMaxDepth(depth int) SpiderOption {
	return func(s *Spider) {
		if depth >= 0 {
			s.maxDepth = depth
		}
	}
}

// WithDelay sets the base politeness delay between requests.
func WithDelay(d time.Duration) SpiderOption {
	return func(s *Spider) {
		if d >= 0 {
			s.delay = d
		}
	}
}

// WithConcurrency sets the global cap on in-flight fetches.
func WithConcurrency(n int) SpiderOption {
	return func(s *Spider) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithRequestsPerSecond adds a global rate limit on top of the politeness
// delay. Zero or negative disables it.
func WithRequestsPerSecond(rps float64) SpiderOption {
	return func(s *Spider) {
		if rps > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithDisallowedPaths sets the robots disallow prefixes the crawl honors.
// The slice is treated as immutable after this call.
func WithDisallowedPaths(prefixes []string) SpiderOption {
	return func(s *Spider) {
		s.scope = NewScope(s.baseHost, prefixes)
	}
}

// WithUserAgent sets the User-Agent header for page fetches.
func WithUserAgent(ua string) SpiderOption {
	return func(s *Spider) {
		WithFetcherUserAgent(ua)(s.fetcher)
	}
}

// WithMaxBodySize caps how many bytes of each page are read.
func WithMaxBodySize(size int64) SpiderOption {
	return func(s *Spider) {
		WithFetcherMaxBodySize(size)(s.fetcher)
	}
}

// WithSpiderLogger sets the logger for crawl progress output.
func WithSpiderLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) {
		if logger != nil {
			s.logger = logger
			WithFetcherLogger(logger)(s.fetcher)
		}
	}
}

// NewSpider creates a Spider for the given seed. A seed without a scheme
// gets "http://" prepended before parsing. Returns ErrInvalidSeed when the
// seed cannot be parsed or has no host; that is the only fatal error in
// the whole crawl lifecycle.
func NewSpider(client *http.Client, seed string, opts ...SpiderOption) (*Spider, error) {
	raw := seed
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSeed, seed)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSeed, seed)
	}

	normalized, err := Normalize(raw, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSeed, seed)
	}

	s := &Spider{
		seed:        normalized,
		baseHost:    u.Hostname(),
		maxDepth:    defaultMaxDepth,
		delay:       defaultDelay,
		jitterMax:   maxJitter,
		concurrency: defaultConcurrency,
		fetcher:     NewFetcher(client),
		logger:      slog.Default(),
		visited:     make(map[string]struct{}),
		directories: make(map[string]struct{}),
		subdomains:  make(map[string]struct{}),
		skipped:     make(map[SkipReason]int),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.scope == nil {
		s.scope = NewScope(s.baseHost, nil)
	}
	s.extractor = NewExtractor(s.scope)

	return s, nil
}

// Seed returns the normalized seed URL the crawl starts from.
func (s *Spider) Seed() string {
	return s.seed
}

// BaseHost returns the seed host, port excluded.
func (s *Spider) BaseHost() string {
	return s.baseHost
}

// frontierEntry is one discovered-but-unprocessed URL with its depth.
type frontierEntry struct {
	target string
	depth  int
}

// expansion carries a finished page's extracted links back to the
// dispatcher, tagged with the depth they were found at.
type expansion struct {
	depth int
	links []string
}

// Crawl runs the traversal to frontier exhaustion and returns the three
// result sets, each sorted lexicographically.
//
// The dispatcher loop is the only goroutine that touches the frontier:
// it launches workers while fetch slots are free, then blocks for one
// completion and admits that page's links at depth+1. The loop exits when
// the frontier is empty and nothing is in flight, which is the only
// termination condition.
//
// On context cancellation the frontier is dropped, in-flight workers are
// waited out, and the partial results are returned alongside ctx.Err().
func (s *Spider) Crawl(ctx context.Context) (*model.Results, error) {
	frontier := make([]frontierEntry, 0, 1)
	if s.admit(s.seed) {
		frontier = append(frontier, frontierEntry{target: s.seed, depth: 0})
	}

	completions := make(chan expansion)
	inflight := 0

	for len(frontier) > 0 || inflight > 0 {
		for len(frontier) > 0 && inflight < s.concurrency {
			next := frontier[0]
			frontier = frontier[1:]
			inflight++
			go func(e frontierEntry) {
				completions <- expansion{depth: e.depth, links: s.process(ctx, e.target, e.depth)}
			}(next)
		}

		exp := <-completions
		inflight--

		if ctx.Err() != nil {
			frontier = frontier[:0]
			continue
		}
		if exp.depth >= s.maxDepth {
			continue
		}
		for _, link := range exp.links {
			if s.admit(link) {
				frontier = append(frontier, frontierEntry{target: link, depth: exp.depth + 1})
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return s.results(), err
	}
	return s.results(), nil
}

// admit is the single deduplication point of the crawl. It atomically
// checks the robots policy and the visited set and, on success, inserts
// the target and records its directory and subdomain derivations. Exactly
// one of any number of concurrent admits of the same target succeeds.
func (s *Spider) admit(target string) bool {
	if !s.scope.IsAllowed(target) {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.visited[target]; ok {
		return false
	}
	s.visited[target] = struct{}{}

	if sub, ok := ExtractSubdomain(target, s.baseHost); ok {
		s.subdomains[sub] = struct{}{}
	}
	if dir, ok := ExtractDirectory(target); ok {
		s.directories[dir] = struct{}{}
	}
	return true
}

// process fetches one admitted URL and returns its extracted links.
// Links from a page at maxDepth are discarded unextracted; the page's own
// admission and side effects already counted.
func (s *Spider) process(ctx context.Context, target string, depth int) []string {
	if !s.politenessWait(ctx) {
		return nil
	}
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil
		}
	}

	result := s.fetcher.Fetch(ctx, target)
	s.record(result)
	if !result.Fetched() {
		s.logger.Debug("page skipped", "url", target, "reason", string(result.Skip), "status", result.StatusCode)
		return nil
	}

	s.logger.Debug("page crawled", "url", target, "depth", depth)
	if depth >= s.maxDepth {
		return nil
	}
	return s.extractor.Links(result.HTML, target)
}

// politenessWait sleeps the base delay plus jitter, honoring cancellation.
// Reports false when the context ended first.
func (s *Spider) politenessWait(ctx context.Context) bool {
	wait := s.delay
	if s.jitterMax > 0 {
		wait += rand.N(s.jitterMax)
	}
	if wait <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// record tallies a fetch outcome.
func (s *Spider) record(result *FetchResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if result.Fetched() {
		s.fetched++
		return
	}
	s.skipped[result.Skip]++
}

// results snapshots the accumulators into sorted output form.
func (s *Spider) results() *model.Results {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.NewResults(s.visited, s.directories, s.subdomains)
}

// Stats returns a snapshot of fetch outcome counts.
func (s *Spider) Stats() model.CrawlStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := model.CrawlStats{
		URLsVisited:  len(s.visited),
		PagesFetched: s.fetched,
	}
	if len(s.skipped) > 0 {
		stats.PagesSkipped = make(map[string]int, len(s.skipped))
		for reason, n := range s.skipped {
			stats.PagesSkipped[string(reason)] = n
		}
	}
	return stats
}
