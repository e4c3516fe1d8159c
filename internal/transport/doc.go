// Package transport builds the HTTP clients used for crawling.
// It centralizes connection pooling, cookie handling, the redirect
// policy, and per-site header injection so the crawl engine can treat
// *http.Client as an opaque dependency.
package transport
