package report

import (
	"io"

	"github.com/silentcrawl/silentcrawl/internal/model"
)

// Writer renders one crawl report to a configured destination.
// Implementations exist for plain text, JSON, and Markdown; the
// destination can be a terminal, a file, or anything else that
// implements io.Writer.
type Writer interface {
	// Write outputs the report. Returns the number of bytes written and
	// any error encountered.
	Write(report *model.CrawlReport) (int, error)
}

// MultiWriter writes a report to several Writers in sequence, for
// example the terminal and a file at once. It is a separate type rather
// than io.MultiWriter because the unit written is a report, not bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers, stopping on the
// first error. Returns the total bytes written.
func (m *MultiWriter) Write(report *model.CrawlReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides the shared output destination for report writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
