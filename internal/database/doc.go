// Package database provides SQLite-backed persistence for crawl reports.
// Stored reports power the history subcommand: listing past targets,
// browsing crawl runs, and reprinting a saved report.
package database
