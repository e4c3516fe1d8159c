package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/silentcrawl/silentcrawl/internal/model"
)

// dbFileName is the SQLite file name inside the data directory.
const dbFileName = "silentcrawl.db"

// CrawlDB provides SQLite-based storage for crawl reports. One database
// file holds the history for every target, which keeps cross-target
// listing a single query and backup a single file copy.
type CrawlDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file when
	// missing. When false, opening a missing database is an error.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging. Recommended; readers do not
	// block the writer.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a CrawlDB in the given directory.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, dbFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite DSN: mode=rw refuses to create a new file,
	// mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite supports a single writer; one pooled connection avoids
	// SQLITE_BUSY churn.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// Path returns the path of the underlying database file.
func (cdb *CrawlDB) Path() string {
	return cdb.dbPath
}

// createTables creates the schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- Each row is one complete crawl run of one target. The summary
	-- columns support listing without deserializing report_json.
	CREATE TABLE IF NOT EXISTS crawls (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		target TEXT NOT NULL,
		seed TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		finished_at DATETIME,
		url_count INTEGER NOT NULL DEFAULT 0,
		directory_count INTEGER NOT NULL DEFAULT 0,
		subdomain_count INTEGER NOT NULL DEFAULT 0,
		timed_out INTEGER NOT NULL DEFAULT 0,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_crawls_target ON crawls(target);
	CREATE INDEX IF NOT EXISTS idx_crawls_started ON crawls(started_at);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveCrawlReport persists a finished crawl report.
func (cdb *CrawlDB) SaveCrawlReport(ctx context.Context, report *model.CrawlReport) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	urlCount, dirCount, subCount := 0, 0, 0
	if report.Results != nil {
		urlCount = len(report.Results.URLs)
		dirCount = len(report.Results.Directories)
		subCount = len(report.Results.Subdomains)
	}

	timedOut := 0
	if report.TimedOut {
		timedOut = 1
	}

	var finishedAt any
	if !report.FinishedAt.IsZero() {
		finishedAt = report.FinishedAt.UTC().Format(time.RFC3339)
	}

	query := `
	INSERT INTO crawls (target, seed, started_at, finished_at, url_count, directory_count, subdomain_count, timed_out, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = cdb.db.ExecContext(ctx, query,
		report.Target,
		report.Seed,
		report.StartedAt.UTC().Format(time.RFC3339),
		finishedAt,
		urlCount,
		dirCount,
		subCount,
		timedOut,
		string(reportJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save crawl report: %w", err)
	}

	return nil
}

// ListTargets returns every target that has at least one stored crawl,
// sorted alphabetically.
func (cdb *CrawlDB) ListTargets(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT target FROM crawls ORDER BY target`

	rows, err := cdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list targets: %w", err)
	}
	defer rows.Close()

	var targets []string
	for rows.Next() {
		var target string
		if err := rows.Scan(&target); err != nil {
			return nil, fmt.Errorf("failed to scan target: %w", err)
		}
		targets = append(targets, target)
	}

	return targets, rows.Err()
}

// CrawlSummary is one crawl run's metadata, without the full report.
type CrawlSummary struct {
	// ID is the crawl's database identifier.
	ID int64

	// Target is the seed as the user supplied it.
	Target string

	// StartedAt is when the crawl began.
	StartedAt time.Time

	// URLCount, DirectoryCount, and SubdomainCount are the result set
	// sizes.
	URLCount       int
	DirectoryCount int
	SubdomainCount int

	// TimedOut is true when the crawl stopped on a deadline or signal.
	TimedOut bool
}

// GetCrawlHistory returns summaries of stored crawls, newest first.
// An empty target returns the history across all targets.
func (cdb *CrawlDB) GetCrawlHistory(ctx context.Context, target string) ([]CrawlSummary, error) {
	query := `
	SELECT id, target, started_at, url_count, directory_count, subdomain_count, timed_out
	FROM crawls
	`
	args := make([]any, 0, 1)
	if target != "" {
		query += " WHERE target = ?"
		args = append(args, target)
	}
	query += " ORDER BY started_at DESC"

	rows, err := cdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get crawl history: %w", err)
	}
	defer rows.Close()

	var results []CrawlSummary
	for rows.Next() {
		var summary CrawlSummary
		var startedAt string
		var timedOut int

		if err := rows.Scan(
			&summary.ID,
			&summary.Target,
			&startedAt,
			&summary.URLCount,
			&summary.DirectoryCount,
			&summary.SubdomainCount,
			&timedOut,
		); err != nil {
			return nil, fmt.Errorf("failed to scan crawl summary: %w", err)
		}

		summary.StartedAt = parseTimestamp(startedAt)
		summary.TimedOut = timedOut != 0
		results = append(results, summary)
	}

	return results, rows.Err()
}

// GetLatestCrawlReport retrieves the most recent report for a target.
// Returns nil without error when the target has no stored crawls.
func (cdb *CrawlDB) GetLatestCrawlReport(ctx context.Context, target string) (*model.CrawlReport, error) {
	query := `
	SELECT report_json FROM crawls
	WHERE target = ?
	ORDER BY started_at DESC
	LIMIT 1
	`

	var reportJSON string
	err := cdb.db.QueryRowContext(ctx, query, target).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get crawl report: %w", err)
	}

	return unmarshalReport(reportJSON)
}

// GetCrawlReportByID retrieves a stored report by its database ID.
// Returns nil without error when the ID does not exist.
func (cdb *CrawlDB) GetCrawlReportByID(ctx context.Context, id int64) (*model.CrawlReport, error) {
	query := `SELECT report_json FROM crawls WHERE id = ?`

	var reportJSON string
	err := cdb.db.QueryRowContext(ctx, query, id).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get crawl report: %w", err)
	}

	return unmarshalReport(reportJSON)
}

func unmarshalReport(reportJSON string) (*model.CrawlReport, error) {
	var report model.CrawlReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &report, nil
}

// timestampFormats contains the timestamp formats SQLite may return,
// most specific first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999",
}

// parseTimestamp tries each known format and returns zero time when none
// match.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
