package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/silentcrawl/silentcrawl/internal/config"
	"github.com/silentcrawl/silentcrawl/internal/crawler"
	"github.com/silentcrawl/silentcrawl/internal/database"
	"github.com/silentcrawl/silentcrawl/internal/model"
)

// PolicyStep loads the target's robots.txt before the crawl and records
// the disallow prefixes on the report. It is a separate step so that a
// run with --ignore-robots simply omits it, and so the crawl step never
// does policy I/O itself.
type PolicyStep struct {
	client *http.Client
	logger *slog.Logger
}

// NewPolicyStep creates a robots policy loading step.
func NewPolicyStep(client *http.Client, logger *slog.Logger) *PolicyStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &PolicyStep{client: client, logger: logger}
}

// Name returns the step name.
func (s *PolicyStep) Name() string {
	return "robots_policy"
}

// Do fetches and parses robots.txt for the report's target. Failures
// never stop the run: an unreachable or malformed robots.txt leaves the
// disallow set empty and the crawl proceeds unrestricted.
func (s *PolicyStep) Do(ctx context.Context, report *model.CrawlReport) error {
	root, err := siteRoot(report.Target)
	if err != nil {
		// The crawl step will reject the seed with a proper error.
		return nil
	}

	loader := crawler.NewPolicyLoader(s.client, s.logger)
	report.DisallowedPaths = loader.Load(ctx, root)
	return nil
}

// siteRoot derives "scheme://host" from a target, assuming http when no
// scheme is given.
func siteRoot(target string) (string, error) {
	raw := target
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", fmt.Errorf("no host in target %q", target)
	}
	return u.Scheme + "://" + u.Host, nil
}

// CrawlStep runs the actual traversal and fills the report's results
// and statistics.
type CrawlStep struct {
	client *http.Client
	cfg    *config.Config
	logger *slog.Logger
}

// NewCrawlStep creates the crawl step. The client should come from the
// transport package so per-site headers and cookies are already wired.
func NewCrawlStep(client *http.Client, cfg *config.Config, logger *slog.Logger) *CrawlStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &CrawlStep{client: client, cfg: cfg, logger: logger}
}

// Name returns the step name.
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do crawls the report's target. An invalid seed is the only fatal
// outcome. Cancellation and deadline expiry mark the report timed out
// and keep the partial results.
func (s *CrawlStep) Do(ctx context.Context, report *model.CrawlReport) error {
	opts := []crawler.SpiderOption{
		crawler.WithMaxDepth(s.cfg.Depth),
		crawler.WithDelay(s.cfg.Delay),
		crawler.WithConcurrency(s.cfg.Concurrency),
		crawler.WithUserAgent(s.cfg.UserAgent),
		crawler.WithMaxBodySize(s.cfg.MaxBodySize),
		crawler.WithSpiderLogger(s.logger),
		crawler.WithDisallowedPaths(report.DisallowedPaths),
	}
	if s.cfg.RequestsPerSecond > 0 {
		opts = append(opts, crawler.WithRequestsPerSecond(s.cfg.RequestsPerSecond))
	}

	spider, err := crawler.NewSpider(s.client, report.Target, opts...)
	if err != nil {
		return err
	}
	report.Seed = spider.Seed()

	s.logger.Info("crawl started",
		"target", report.Target,
		"seed", report.Seed,
		"depth", s.cfg.Depth,
		"concurrency", s.cfg.Concurrency,
	)

	results, err := spider.Crawl(ctx)
	report.Results = results
	report.Stats = spider.Stats()
	report.FinishedAt = time.Now()

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			report.TimedOut = true
			s.logger.Warn("crawl stopped early",
				"target", report.Target,
				"urls_visited", report.Stats.URLsVisited,
			)
			return nil
		}
		return err
	}

	s.logger.Info("crawl finished",
		"target", report.Target,
		"urls_visited", report.Stats.URLsVisited,
		"elapsed", report.Elapsed(),
	)
	return nil
}

// PersistStep saves the finished report to the history database.
type PersistStep struct {
	dbDir  string
	logger *slog.Logger
}

// NewPersistStep creates a persistence step writing to the database in
// dbDir.
func NewPersistStep(dbDir string, logger *slog.Logger) *PersistStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &PersistStep{dbDir: dbDir, logger: logger}
}

// Name returns the step name.
func (s *PersistStep) Name() string {
	return "persist"
}

// Do stores the report. A storage failure is logged but never fails the
// run; the user still gets their report on stdout.
func (s *PersistStep) Do(ctx context.Context, report *model.CrawlReport) error {
	db, err := database.Open(s.dbDir, database.DefaultOptions())
	if err != nil {
		s.logger.Warn("history database unavailable", "dir", s.dbDir, "error", err)
		return nil
	}
	defer func() {
		if err := db.Close(); err != nil {
			s.logger.Warn("failed to close history database", "error", err)
		}
	}()

	if err := db.SaveCrawlReport(ctx, report); err != nil {
		s.logger.Warn("failed to save crawl report", "target", report.Target, "error", err)
		return nil
	}

	s.logger.Debug("crawl report saved", "target", report.Target, "db", db.Path())
	return nil
}

// Default assembles the standard pipeline for one crawl run from the
// configuration: robots policy (unless ignored), crawl, and persistence
// (when enabled).
func Default(client *http.Client, cfg *config.Config, logger *slog.Logger) *Pipeline {
	p := New(WithLogger(logger))

	if !cfg.IgnoreRobots {
		p.AddStep(NewPolicyStep(client, logger))
	}
	p.AddStep(NewCrawlStep(client, cfg, logger))
	if cfg.SaveToDB {
		p.AddStep(NewPersistStep(cfg.DBDir, logger))
	}

	return p
}
