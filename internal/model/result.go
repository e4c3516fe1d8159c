package model

import "sort"

// Results holds the three derived sets produced by one crawl.
// Each slice is sorted lexicographically (case-sensitive) so output is
// deterministic regardless of the order pages finished fetching.
type Results struct {
	// URLs contains every URL admitted to the crawl, in normalized form
	// (absolute, fragment-free, directory-like paths ending in "/").
	URLs []string `json:"urls"`

	// Directories contains the directory paths derived from admitted URLs,
	// e.g. "/blog/" from "/blog/post.html".
	Directories []string `json:"directories"`

	// Subdomains contains the subdomain labels discovered under the seed
	// host, e.g. "blog" for blog.example.com when crawling example.com.
	Subdomains []string `json:"subdomains"`
}

// NewResults builds a Results from the raw sets, sorting each one.
// The input maps are not retained.
func NewResults(urls, directories, subdomains map[string]struct{}) *Results {
	return &Results{
		URLs:        sortedKeys(urls),
		Directories: sortedKeys(directories),
		Subdomains:  sortedKeys(subdomains),
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
