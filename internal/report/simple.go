package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/silentcrawl/silentcrawl/internal/model"
)

// timeRounding trims elapsed times to a readable precision.
const timeRounding = 10 * time.Millisecond

// SimpleWriter outputs human-readable text reports for terminal display.
// Plain ASCII only, so the output pipes cleanly to files and other
// tools.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no entries are shown.
	showEmpty bool

	// verbose adds the robots policy and skip breakdown sections.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables the robots policy and skip breakdown sections.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.CrawlReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeSection(&sb, "VISITED URLS", urls(report))
	w.writeSection(&sb, "DIRECTORIES", directories(report))
	w.writeSection(&sb, "SUBDOMAINS", subdomains(report))
	if w.verbose {
		w.writeRobots(&sb, report)
		w.writeSkips(&sb, report)
	}
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.CrawlReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                        SILENTCRAWL REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Target:        %s\n", report.Target))
	if report.Seed != "" && report.Seed != report.Target {
		sb.WriteString(fmt.Sprintf("Seed URL:      %s\n", report.Seed))
	}
	sb.WriteString(fmt.Sprintf("Crawl Date:    %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST")))
	if elapsed := report.Elapsed(); elapsed > 0 {
		sb.WriteString(fmt.Sprintf("Elapsed:       %s\n", elapsed.Round(timeRounding)))
	}
	sb.WriteString(fmt.Sprintf("URLs Visited:  %d\n", report.Stats.URLsVisited))

	switch {
	case report.TimedOut:
		sb.WriteString("Status:        TIMED OUT (partial results)\n")
	case report.ErrorMessage != "":
		sb.WriteString(fmt.Sprintf("Status:        ERROR - %s\n", report.ErrorMessage))
	default:
		sb.WriteString("Status:        Complete\n")
	}

	sb.WriteString("\n")
}

func (w *SimpleWriter) writeSection(sb *strings.Builder, title string, entries []string) {
	if len(entries) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("%s (%d)\n", title, len(entries)))
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(entries) == 0 {
		sb.WriteString("  none\n")
	}
	for _, entry := range entries {
		sb.WriteString(fmt.Sprintf("  %s\n", entry))
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeRobots(sb *strings.Builder, report *model.CrawlReport) {
	w.writeSection(sb, "ROBOTS DISALLOWED", report.DisallowedPaths)
}

func (w *SimpleWriter) writeSkips(sb *strings.Builder, report *model.CrawlReport) {
	if len(report.Stats.PagesSkipped) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("SKIPPED PAGES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  fetched:         %d\n", report.Stats.PagesFetched))
	for _, reason := range []string{"transport_error", "http_status", "content_type"} {
		if n, ok := report.Stats.PagesSkipped[reason]; ok {
			sb.WriteString(fmt.Sprintf("  %-16s %d\n", reason+":", n))
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

func urls(report *model.CrawlReport) []string {
	if report.Results == nil {
		return nil
	}
	return report.Results.URLs
}

func directories(report *model.CrawlReport) []string {
	if report.Results == nil {
		return nil
	}
	return report.Results.Directories
}

func subdomains(report *model.CrawlReport) []string {
	if report.Results == nil {
		return nil
	}
	return report.Results.Subdomains
}
