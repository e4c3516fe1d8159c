// Package report renders crawl results in multiple output formats.
// It provides writers for human-readable text (the default terminal
// output), JSON (tool integration), and GitHub Flavored Markdown
// (documentation), all writing through a common interface.
package report
