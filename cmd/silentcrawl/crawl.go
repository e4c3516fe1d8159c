package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/silentcrawl/silentcrawl/internal/config"
	"github.com/silentcrawl/silentcrawl/internal/log"
	"github.com/silentcrawl/silentcrawl/internal/model"
	"github.com/silentcrawl/silentcrawl/internal/pipeline"
	"github.com/silentcrawl/silentcrawl/internal/report"
	"github.com/silentcrawl/silentcrawl/internal/transport"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [url]",
		Short: "Crawl a site and report URLs, directories, and subdomains",
		Long: `Crawl traverses a website breadth-first from the seed URL, following
links on the seed's domain and its subdomains up to the configured
depth. The output lists every URL visited, the directory paths those
URLs imply, and the subdomains discovered.

A bare domain is accepted as the seed; "http://" is assumed.

Examples:
  # Crawl a site with defaults (depth 3)
  silentcrawl crawl example.com

  # Go deeper and slower
  silentcrawl crawl -d 5 -w 2s https://example.com

  # Crawl several sites from a file, ten at a time
  silentcrawl crawl --list sites.txt --batch 10

  # JSON output to a file
  silentcrawl crawl --json -o report.json example.com

Configuration file (.silentcrawl) example:
  sites:
    example.com:
      depth: 5
      delay: 1s
      headers:
        Cookie: "session=abc123"`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	// Crawl behavior flags
	cmd.Flags().IntP("depth", "d", config.DefaultDepth,
		"Maximum crawl depth (0 = seed page only)")
	cmd.Flags().DurationP("wait", "w", config.DefaultDelay,
		"Base delay between requests (random jitter is added on top)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"HTTP timeout for each request")
	cmd.Flags().IntP("concurrency", "n", config.DefaultConcurrency,
		"Maximum number of requests in flight at once")
	cmd.Flags().Float64("rps", 0,
		"Cap on requests per second across the crawl (0 = no cap)")
	cmd.Flags().StringP("user-agent", "u", config.DefaultUserAgent,
		"User-Agent header to send")
	cmd.Flags().Bool("ignore-robots", false,
		"Do not fetch or honor robots.txt")
	cmd.Flags().Duration("max-time", 0,
		"Stop the crawl after this duration and report partial results (0 = no limit)")

	// Batch flags
	cmd.Flags().StringP("list", "l", "",
		"File with seed URLs, one per line")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent crawls when multiple seeds are given")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .silentcrawl in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("no-save", false,
		"Do not record this crawl in the history database")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.MaxTime > 0 {
		ctx, cancel = context.WithTimeout(ctx, cfg.MaxTime)
		defer cancel()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		logger.Warn("received shutdown signal, finishing in-flight requests...")
		cancel()
	}()

	return runCrawl(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.Depth, err = cmd.Flags().GetInt("depth")
	if err != nil {
		return nil, err
	}

	cfg.Delay, err = cmd.Flags().GetDuration("wait")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.Concurrency, err = cmd.Flags().GetInt("concurrency")
	if err != nil {
		return nil, err
	}

	cfg.RequestsPerSecond, err = cmd.Flags().GetFloat64("rps")
	if err != nil {
		return nil, err
	}

	cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
	if err != nil {
		return nil, err
	}

	cfg.IgnoreRobots, err = cmd.Flags().GetBool("ignore-robots")
	if err != nil {
		return nil, err
	}

	cfg.MaxTime, err = cmd.Flags().GetDuration("max-time")
	if err != nil {
		return nil, err
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load site-specific configurations. An explicitly specified file
	// that is missing is an error; a missing default file is not.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	switch {
	case configPath != "":
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	case explicitConfigPath:
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	default:
		cfg.SiteConfigs = &config.File{Sites: make(map[string]config.SiteConfig)}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave
	cfg.DBDir = config.XDGDataDir()

	cfg.Verbose = getVerboseFlag(cmd)

	// Targets come from positional arguments plus the optional list file.
	cfg.Targets = args

	listPath, err := cmd.Flags().GetString("list")
	if err != nil {
		return nil, err
	}
	if listPath != "" {
		fromFile, err := readTargetList(listPath)
		if err != nil {
			return nil, err
		}
		cfg.Targets = append(cfg.Targets, fromFile...)
	}

	return cfg, nil
}

// readTargetList reads seed URLs from a file, one per line. Blank lines
// and lines starting with "#" are skipped.
func readTargetList(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided list path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to open target list: %w", err)
	}
	defer f.Close()

	var targets []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		targets = append(targets, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read target list: %w", err)
	}

	return targets, nil
}

// runCrawl executes the crawl for all configured targets.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting crawl",
		"targets", cfg.Targets,
		"depth", cfg.Depth,
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)

	if len(cfg.Targets) > 1 && cfg.BatchSize > 1 {
		return runBatchCrawl(ctx, cfg, logger)
	}
	return runSequentialCrawl(ctx, cfg, logger)
}

// runSequentialCrawl crawls targets one at a time, applying per-site
// configuration to each. A failed target does not stop the remaining
// ones, but any failure makes the command exit nonzero.
func runSequentialCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	var failed int
	for _, target := range cfg.Targets {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		targetCfg, client := configForTarget(cfg, target)
		p := pipeline.Default(client, targetCfg, logger)

		crawlReport := model.NewCrawlReport(target)

		fmt.Printf("Crawling %s...\n", target)
		startTime := time.Now()

		if err := p.Execute(ctx, crawlReport); err != nil {
			logger.Error("crawl failed", "target", target, "error", err)
			fmt.Fprintf(os.Stderr, "Crawl error for %s: %v\n", target, err)
			failed++
			continue
		}

		fmt.Printf("Crawl completed in %s\n", time.Since(startTime).Round(time.Millisecond))

		if err := outputReport(cfg, crawlReport); err != nil {
			logger.Error("report failed", "target", target, "error", err)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d crawls failed", failed, len(cfg.Targets))
	}
	return nil
}

// runBatchCrawl crawls multiple targets concurrently.
func runBatchCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	fmt.Printf("Starting batch crawl of %d targets (concurrency: %d)...\n\n",
		len(cfg.Targets), cfg.BatchSize)

	startTime := time.Now()

	if len(cfg.SiteConfigs.Sites) > 0 {
		logger.Warn("batch mode applies default site config only; per-site overrides are ignored",
			"siteCount", len(cfg.SiteConfigs.Sites))
		fmt.Fprintf(os.Stderr, "Warning: Site-specific configurations are ignored in batch mode. Use --batch 1 to apply per-site settings.\n\n")
	}

	// One shared client per batch: every crawl gets the global timeout
	// and the defaults-level headers.
	defaults := cfg.SiteConfigs.Defaults
	batchCfg := applySiteConfig(cfg, defaults)
	client := clientFor(batchCfg, defaults)

	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return pipeline.Default(client, batchCfg, logger)
		},
		pipeline.WithBatchConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	var mu sync.Mutex
	err := bp.ProcessBatchWithCallback(ctx, cfg.Targets, func(crawlReport *model.CrawlReport, index int) {
		mu.Lock()
		defer mu.Unlock()

		fmt.Printf("[%d/%d] Crawl completed: %s\n", index+1, len(cfg.Targets), crawlReport.Target)

		if err := outputReport(cfg, crawlReport); err != nil {
			logger.Error("report failed", "target", crawlReport.Target, "error", err)
		}
	})

	fmt.Printf("\nBatch crawl completed in %s\n", time.Since(startTime).Round(time.Millisecond))

	return err
}

// configForTarget resolves the per-site configuration for one target and
// builds the matching HTTP client.
func configForTarget(cfg *config.Config, target string) (*config.Config, *http.Client) {
	site := cfg.SiteConfigs.GetSiteConfig(targetHost(target))
	targetCfg := applySiteConfig(cfg, site)
	return targetCfg, clientFor(targetCfg, site)
}

// targetHost extracts the bare host from a target for site config lookup.
func targetHost(target string) string {
	raw := target
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "http://" + raw
	}
	if u, err := url.Parse(raw); err == nil && u.Hostname() != "" {
		return u.Hostname()
	}
	return target
}

// applySiteConfig returns a copy of cfg with per-site overrides applied.
func applySiteConfig(cfg *config.Config, site config.SiteConfig) *config.Config {
	out := *cfg
	if site.Depth > 0 {
		out.Depth = site.Depth
	}
	if site.Delay > 0 {
		out.Delay = site.Delay.Std()
	}
	if site.UserAgent != "" {
		out.UserAgent = site.UserAgent
	}
	return &out
}

// clientFor builds the HTTP client for a resolved configuration.
func clientFor(cfg *config.Config, site config.SiteConfig) *http.Client {
	if len(site.Headers) > 0 {
		return transport.NewClientWithHeaders(cfg.Timeout, site.Headers)
	}
	return transport.NewClient(cfg.Timeout)
}

// outputReport writes the crawl report in the requested format.
func outputReport(cfg *config.Config, crawlReport *model.CrawlReport) error {
	var output *os.File
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided output path is intentional
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	_, err := writer.Write(crawlReport)
	return err
}
