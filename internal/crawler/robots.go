package crawler

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// maxRobotsSize caps how much of robots.txt is read. Anything past this is
// ignored rather than failing the load.
const maxRobotsSize = 512 * 1024

// PolicyLoader fetches and parses a site's robots.txt into a set of
// disallowed path prefixes.
//
// The parser is intentionally minimal: it honors only "disallow:" lines,
// ignoring user-agent groups, allow rules, crawl-delay, wildcards, and
// sitemaps. Supporting the full robots grammar is out of scope for this
// crawler; the prefix set is a blunt, conservative-enough approximation.
type PolicyLoader struct {
	client *http.Client
	logger *slog.Logger
}

// NewPolicyLoader creates a PolicyLoader that fetches with the given client.
func NewPolicyLoader(client *http.Client, logger *slog.Logger) *PolicyLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &PolicyLoader{client: client, logger: logger}
}

// Load fetches {baseURL}/robots.txt and returns the disallowed path
// prefixes it declares. Load never fails the caller: any transport error,
// non-success status, or parse problem degrades to an empty set and the
// crawl proceeds unrestricted (fail-open).
func (l *PolicyLoader) Load(ctx context.Context, baseURL string) []string {
	robotsURL := strings.TrimSuffix(baseURL, "/") + "/robots.txt"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		l.logger.Debug("robots.txt request failed", "url", robotsURL, "error", err)
		return nil
	}

	resp, err := l.client.Do(req)
	if err != nil {
		l.logger.Debug("robots.txt unreachable", "url", robotsURL, "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		l.logger.Debug("robots.txt not available", "url", robotsURL, "status", resp.StatusCode)
		return nil
	}

	prefixes := parseDisallowLines(io.LimitReader(resp.Body, maxRobotsSize))
	l.logger.Debug("robots policy loaded", "url", robotsURL, "disallowed", len(prefixes))
	return prefixes
}

// parseDisallowLines extracts the path of every "disallow:" directive,
// case-insensitively, deduplicated in order of first appearance.
func parseDisallowLines(r io.Reader) []string {
	var prefixes []string
	seen := make(map[string]struct{})

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if !strings.HasPrefix(line, "disallow:") {
			continue
		}
		path := strings.TrimSpace(strings.TrimPrefix(line, "disallow:"))
		if path == "" {
			continue
		}
		if _, dup := seen[path]; dup {
			continue
		}
		seen[path] = struct{}{}
		prefixes = append(prefixes, path)
	}
	// Scanner errors (overlong lines, read failures) leave us with
	// whatever parsed cleanly, which is the fail-open behavior we want.

	return prefixes
}
