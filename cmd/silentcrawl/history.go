package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/silentcrawl/silentcrawl/internal/config"
	"github.com/silentcrawl/silentcrawl/internal/database"
	"github.com/silentcrawl/silentcrawl/internal/report"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [target]",
		Short: "List past crawls and reprint saved reports",
		Long: `History browses the crawl reports stored in the local database.

Without arguments it lists every stored crawl. With a target it lists
only that target's crawls. Use --id to reprint one stored report in
full.

Examples:
  # List all stored crawls
  silentcrawl history

  # List crawls of one site
  silentcrawl history example.com

  # Reprint crawl #12 as JSON
  silentcrawl history --id 12 --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().Int64("id", 0, "Print the full report for one stored crawl")
	cmd.Flags().BoolP("json", "j", false, "Print the report as JSON (with --id)")
	cmd.Flags().BoolP("markdown", "m", false, "Print the report as Markdown (with --id)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	db, err := database.Open(config.XDGDataDir(), database.Options{EnableWAL: true})
	if err != nil {
		return fmt.Errorf("no crawl history available: %w", err)
	}
	defer db.Close()

	id, err := cmd.Flags().GetInt64("id")
	if err != nil {
		return err
	}
	if id > 0 {
		return printStoredReport(cmd, db, id)
	}

	target := ""
	if len(args) > 0 {
		target = args[0]
	}

	summaries, err := db.GetCrawlHistory(cmd.Context(), target)
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No stored crawls.")
		return nil
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-6s %-30s %-20s %6s %6s %6s %s\n",
		"ID", "TARGET", "DATE", "URLS", "DIRS", "SUBS", "STATUS")
	fmt.Fprintln(out, strings.Repeat("-", 86))
	for _, s := range summaries {
		status := "ok"
		if s.TimedOut {
			status = "timed out"
		}
		fmt.Fprintf(out, "%-6d %-30s %-20s %6d %6d %6d %s\n",
			s.ID,
			truncate(s.Target, 30),
			s.StartedAt.Format("2006-01-02 15:04:05"),
			s.URLCount,
			s.DirectoryCount,
			s.SubdomainCount,
			status,
		)
	}

	return nil
}

// printStoredReport reprints one stored crawl report.
func printStoredReport(cmd *cobra.Command, db *database.CrawlDB, id int64) error {
	stored, err := db.GetCrawlReportByID(cmd.Context(), id)
	if err != nil {
		return err
	}
	if stored == nil {
		return fmt.Errorf("no stored crawl with id %d", id)
	}

	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	asMarkdown, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	if asJSON && asMarkdown {
		return config.ErrConflictingReportFormats
	}

	var writer report.Writer
	switch {
	case asJSON:
		writer = report.NewJSONWriter(os.Stdout, report.WithPrettyPrint())
	case asMarkdown:
		writer = report.NewMarkdownWriter(os.Stdout)
	default:
		writer = report.NewSimpleWriter(os.Stdout, report.WithVerbose(true))
	}

	_, err = writer.Write(stored)
	return err
}

// truncate shortens a string for table display.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
