package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/silentcrawl/silentcrawl/internal/model"
)

// MarkdownWriter outputs reports as GitHub Flavored Markdown, suitable
// for pasting into documentation or issue trackers. The nao1215/markdown
// library supplies fluent, type-safe generation of tables, lists, and
// alerts.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.CrawlReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeOverview(md, report)
	w.writeResults(md, report)
	w.writeRobots(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.CrawlReport) {
	md.H1("Silent Crawler Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Target", "`" + report.Target + "`"},
			{"Seed URL", "`" + report.Seed + "`"},
			{"Crawl Date", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Elapsed", report.Elapsed().Round(timeRounding).String()},
			{"URLs Visited", strconv.Itoa(report.Stats.URLsVisited)},
			{"Status", w.statusText(report)},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) statusText(report *model.CrawlReport) string {
	if report.TimedOut {
		return "⚠️ Timed Out (partial results)"
	}
	if report.ErrorMessage != "" {
		return "❌ Error - " + report.ErrorMessage
	}
	return "✅ Complete"
}

func (w *MarkdownWriter) writeOverview(md *markdown.Markdown, report *model.CrawlReport) {
	md.H2("Overview")
	md.PlainText("")

	nURLs, nDirs, nSubs := 0, 0, 0
	if report.Results != nil {
		nURLs = len(report.Results.URLs)
		nDirs = len(report.Results.Directories)
		nSubs = len(report.Results.Subdomains)
	}

	md.Table(markdown.TableSet{
		Header: []string{"Result Set", "Count"},
		Rows: [][]string{
			{"Visited URLs", strconv.Itoa(nURLs)},
			{"Directories", strconv.Itoa(nDirs)},
			{"Subdomains", strconv.Itoa(nSubs)},
		},
	})
	md.PlainText("")

	if skipped := report.Stats.PagesSkipped; len(skipped) > 0 {
		w.writeSkipChart(md, report.Stats.PagesFetched, skipped)
	}
}

// writeSkipChart renders fetch outcomes as a mermaid pie chart.
func (w *MarkdownWriter) writeSkipChart(md *markdown.Markdown, fetched int, skipped map[string]int) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Fetch Outcomes"),
		piechart.WithShowData(true),
	)

	if fetched > 0 {
		chart.LabelAndIntValue("Fetched", uint64(fetched))
	}
	for _, reason := range []string{"transport_error", "http_status", "content_type"} {
		if n := skipped[reason]; n > 0 {
			chart.LabelAndIntValue(reason, uint64(n))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeResults(md *markdown.Markdown, report *model.CrawlReport) {
	w.writeList(md, "Visited URLs", urls(report))
	w.writeList(md, "Directories", directories(report))
	w.writeList(md, "Subdomains", subdomains(report))
}

func (w *MarkdownWriter) writeList(md *markdown.Markdown, title string, entries []string) {
	md.H2(title)
	md.PlainText("")

	if len(entries) == 0 {
		md.PlainText("None found.")
		md.PlainText("")
		return
	}

	quoted := make([]string, len(entries))
	for i, entry := range entries {
		quoted[i] = "`" + entry + "`"
	}
	md.BulletList(quoted...)
	md.PlainText("")
}

func (w *MarkdownWriter) writeRobots(md *markdown.Markdown, report *model.CrawlReport) {
	if len(report.DisallowedPaths) == 0 {
		return
	}

	md.H2("Robots Policy")
	md.PlainText("")
	md.Notef("%d path prefix(es) were excluded per robots.txt.", len(report.DisallowedPaths))
	md.PlainText("")

	quoted := make([]string, len(report.DisallowedPaths))
	for i, prefix := range report.DisallowedPaths {
		quoted[i] = "`" + prefix + "`"
	}
	md.BulletList(quoted...)
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by silentcrawl*")
}
