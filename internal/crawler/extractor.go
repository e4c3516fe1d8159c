package crawler

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Extractor mines in-scope hyperlink targets from HTML documents.
//
// goquery handles the parsing: its html.Parse backend tolerates the
// malformed markup common on real sites, and the "a[href]" selector keeps
// the anchor walk declarative.
type Extractor struct {
	scope *Scope
}

// NewExtractor creates an Extractor that keeps only links the given scope
// accepts.
func NewExtractor(scope *Scope) *Extractor {
	return &Extractor{scope: scope}
}

// skippedPrefixes are href forms that never name a crawlable page.
var skippedPrefixes = []string{"javascript:", "mailto:", "tel:", "#"}

// Links returns the deduplicated, normalized, in-scope anchor targets in
// htmlBody, with relative links resolved against sourceURL.
//
// Malformed individual links are dropped silently, and a document that
// cannot be parsed at all yields an empty set; neither case ever fails the
// crawl. Dedup here is per-page only; cross-page dedup is the Spider's job.
func (e *Extractor) Links(htmlBody, sourceURL string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlBody))
	if err != nil {
		return nil
	}

	var links []string
	seen := make(map[string]struct{})

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		href = strings.TrimSpace(href)
		if href == "" || hasSkippedPrefix(href) {
			return
		}

		target, err := Normalize(href, sourceURL)
		if err != nil {
			return
		}
		if !e.scope.InScope(target) {
			return
		}
		if _, dup := seen[target]; dup {
			return
		}
		seen[target] = struct{}{}
		links = append(links, target)
	})

	return links
}

func hasSkippedPrefix(href string) bool {
	for _, prefix := range skippedPrefixes {
		if strings.HasPrefix(href, prefix) {
			return true
		}
	}
	return false
}
