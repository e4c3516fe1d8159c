package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/silentcrawl/silentcrawl/internal/model"
)

// BatchProcessor crawls multiple seeds concurrently, one pipeline per
// seed. It lives apart from Pipeline so single-run execution stays
// simple and batch strategy (limits, ordering) can evolve on its own.
type BatchProcessor struct {
	// pipelineFactory creates a fresh pipeline per target, so no state
	// leaks between crawls.
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of simultaneous crawls. Each
	// crawl additionally has its own internal fetch concurrency cap.
	concurrency int

	logger *slog.Logger

	results []*model.CrawlReport
	mu      sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithBatchConcurrency sets the maximum number of concurrent crawls.
// Default is 10.
func WithBatchConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a BatchProcessor.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     10,
		results:         make([]*model.CrawlReport, 0),
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch crawls every target, at most `concurrency` at a time,
// and returns one report per target in input order. A failed crawl does
// not stop the others; its error is recorded in its report. The error
// return is non-nil only when the batch as a whole was cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, targets []string) ([]*model.CrawlReport, error) {
	bp.logger.Info("starting batch crawl",
		"total_targets", len(targets),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	// Pre-allocated so report order matches target order.
	bp.results = make([]*model.CrawlReport, len(targets))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, target := range targets {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Info("crawling target",
				"target", target,
				"index", i+1,
				"total", len(targets),
			)

			report := model.NewCrawlReport(target)
			p := bp.pipelineFactory()
			err := p.Execute(ctx, report)

			bp.mu.Lock()
			bp.results[i] = report
			bp.mu.Unlock()

			if err != nil {
				bp.logger.Warn("crawl failed",
					"target", target,
					"error", err,
				)
				// The error lives in the report; keep the other crawls going.
				return nil
			}

			return nil
		})
	}

	err := g.Wait()

	bp.logger.Info("batch crawl complete",
		"total_targets", len(targets),
		"elapsed", time.Since(startTime),
	)

	return bp.results, err
}

// ProcessBatchWithCallback crawls every target and invokes the callback
// as each one finishes, for streaming output. The callback runs on the
// finishing crawl's goroutine and must be safe for concurrent use.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	targets []string,
	callback func(report *model.CrawlReport, index int),
) error {
	bp.logger.Info("starting batch crawl with callback",
		"total_targets", len(targets),
		"concurrency", bp.concurrency,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, target := range targets {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			report := model.NewCrawlReport(target)
			p := bp.pipelineFactory()
			_ = p.Execute(ctx, report) //nolint:errcheck // Error is stored in report

			callback(report, i)

			return nil
		})
	}

	return g.Wait()
}
