package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/silentcrawl/silentcrawl/internal/model"
)

// sampleReport returns a finished report with all three result sets
// populated.
func sampleReport() *model.CrawlReport {
	report := model.NewCrawlReport("example.com")
	report.Seed = "http://example.com/"
	report.StartedAt = time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	report.FinishedAt = report.StartedAt.Add(2 * time.Second)
	report.Results = &model.Results{
		URLs:        []string{"http://example.com/", "http://example.com/blog/post.html"},
		Directories: []string{"/blog/"},
		Subdomains:  []string{"blog"},
	}
	report.Stats = model.CrawlStats{
		URLsVisited:  2,
		PagesFetched: 2,
	}
	return report
}

func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes all sections", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewSimpleWriter(&buf).Write(sampleReport())
		if err != nil {
			t.Fatalf("Write() unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("Write() = %d bytes, buffer holds %d", n, buf.Len())
		}

		out := buf.String()
		for _, want := range []string{
			"SILENTCRAWL REPORT",
			"Target:        example.com",
			"Seed URL:      http://example.com/",
			"Status:        Complete",
			"VISITED URLS (2)",
			"DIRECTORIES (1)",
			"SUBDOMAINS (1)",
			"http://example.com/blog/post.html",
			"/blog/",
			"blog",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("empty sections hidden by default", func(t *testing.T) {
		t.Parallel()

		report := sampleReport()
		report.Results.Subdomains = nil

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(report); err != nil {
			t.Fatalf("Write() unexpected error: %v", err)
		}

		if strings.Contains(buf.String(), "SUBDOMAINS") {
			t.Errorf("empty subdomain section shown:\n%s", buf.String())
		}
	})

	t.Run("show empty renders placeholder", func(t *testing.T) {
		t.Parallel()

		report := sampleReport()
		report.Results.Subdomains = nil

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithShowEmpty(true)).Write(report); err != nil {
			t.Fatalf("Write() unexpected error: %v", err)
		}

		out := buf.String()
		if !strings.Contains(out, "SUBDOMAINS (0)") || !strings.Contains(out, "none") {
			t.Errorf("empty section placeholder missing:\n%s", out)
		}
	})

	t.Run("timed out status", func(t *testing.T) {
		t.Parallel()

		report := sampleReport()
		report.TimedOut = true

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(report); err != nil {
			t.Fatalf("Write() unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "TIMED OUT (partial results)") {
			t.Errorf("timed out status missing:\n%s", buf.String())
		}
	})

	t.Run("error status", func(t *testing.T) {
		t.Parallel()

		report := sampleReport()
		report.SetError(errors.New("invalid seed URL"))

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(report); err != nil {
			t.Fatalf("Write() unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "ERROR - invalid seed URL") {
			t.Errorf("error status missing:\n%s", buf.String())
		}
	})

	t.Run("verbose adds robots and skip sections", func(t *testing.T) {
		t.Parallel()

		report := sampleReport()
		report.DisallowedPaths = []string{"/private"}
		report.Stats.PagesSkipped = map[string]int{"http_status": 3}

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithVerbose(true)).Write(report); err != nil {
			t.Fatalf("Write() unexpected error: %v", err)
		}

		out := buf.String()
		for _, want := range []string{"ROBOTS DISALLOWED (1)", "/private", "SKIPPED PAGES", "http_status"} {
			if !strings.Contains(out, want) {
				t.Errorf("verbose output missing %q:\n%s", want, out)
			}
		}
	})
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes valid JSON with expected keys", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(sampleReport()); err != nil {
			t.Fatalf("Write() unexpected error: %v", err)
		}

		var decoded map[string]any
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
		}

		for _, key := range []string{"target", "seed", "started_at", "stats", "results"} {
			if _, ok := decoded[key]; !ok {
				t.Errorf("JSON missing key %q: %s", key, buf.String())
			}
		}

		results, ok := decoded["results"].(map[string]any)
		if !ok {
			t.Fatalf("results is %T, want object", decoded["results"])
		}
		for _, key := range []string{"urls", "directories", "subdomains"} {
			if _, ok := results[key]; !ok {
				t.Errorf("results missing key %q", key)
			}
		}
	})

	t.Run("compact by default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(sampleReport()); err != nil {
			t.Fatalf("Write() unexpected error: %v", err)
		}

		// One trailing newline, no indentation newlines.
		if got := strings.Count(buf.String(), "\n"); got != 1 {
			t.Errorf("compact output has %d newlines, want 1", got)
		}
	})

	t.Run("pretty print indents", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(sampleReport()); err != nil {
			t.Fatalf("Write() unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "\n  \"") {
			t.Errorf("pretty output not indented:\n%s", buf.String())
		}
	})
}

func TestFullJSONWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewFullJSONWriter(&buf, "1.2.3").Write(sampleReport()); err != nil {
		t.Fatalf("Write() unexpected error: %v", err)
	}

	var decoded VersionedReport
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if decoded.Version != "1.2.3" {
		t.Errorf("Version = %q, want 1.2.3", decoded.Version)
	}
	if decoded.Report == nil || decoded.Report.Target != "example.com" {
		t.Errorf("Report = %+v, want wrapped report", decoded.Report)
	}
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("renders headings and quoted entries", func(t *testing.T) {
		t.Parallel()

		report := sampleReport()
		report.DisallowedPaths = []string{"/private"}

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(report); err != nil {
			t.Fatalf("Write() unexpected error: %v", err)
		}

		out := buf.String()
		for _, want := range []string{
			"# Silent Crawler Report",
			"## Overview",
			"## Visited URLs",
			"## Directories",
			"## Subdomains",
			"## Robots Policy",
			"`http://example.com/blog/post.html`",
			"`/blog/`",
			"`blog`",
			"`/private`",
			"*Report generated by silentcrawl*",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("markdown missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("skip breakdown renders mermaid chart", func(t *testing.T) {
		t.Parallel()

		report := sampleReport()
		report.Stats.PagesSkipped = map[string]int{"transport_error": 2}

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(report); err != nil {
			t.Fatalf("Write() unexpected error: %v", err)
		}

		out := buf.String()
		if !strings.Contains(out, "```mermaid") || !strings.Contains(out, "Fetch Outcomes") {
			t.Errorf("mermaid chart missing:\n%s", out)
		}
	})

	t.Run("empty result set renders placeholder", func(t *testing.T) {
		t.Parallel()

		report := sampleReport()
		report.Results.Subdomains = nil

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(report); err != nil {
			t.Fatalf("Write() unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "None found.") {
			t.Errorf("placeholder missing:\n%s", buf.String())
		}
	})
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to every destination", func(t *testing.T) {
		t.Parallel()

		var first, second bytes.Buffer
		mw := NewMultiWriter(NewSimpleWriter(&first), NewJSONWriter(&second))

		total, err := mw.Write(sampleReport())
		if err != nil {
			t.Fatalf("Write() unexpected error: %v", err)
		}

		if first.Len() == 0 || second.Len() == 0 {
			t.Error("one of the destinations received no output")
		}
		if total != first.Len()+second.Len() {
			t.Errorf("total = %d, want %d", total, first.Len()+second.Len())
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		var after bytes.Buffer
		mw := NewMultiWriter(
			NewSimpleWriter(failingWriter{}),
			NewSimpleWriter(&after),
		)

		if _, err := mw.Write(sampleReport()); err == nil {
			t.Fatal("Write() = nil, want error")
		}
		if after.Len() != 0 {
			t.Error("writer after the failure still ran")
		}
	})
}

// failingWriter fails every byte write.
type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("sink closed")
}
