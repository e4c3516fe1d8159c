package crawler

import (
	"net/url"
	"strings"
)

// Scope decides which URLs belong to a crawl: whether a URL is on the seed
// host (or a subdomain of it), and whether the robots policy permits it.
//
// A Scope is immutable after construction, so both checks are safe to call
// from any worker without synchronization.
type Scope struct {
	// baseHost is the seed's host, port excluded.
	baseHost string

	// disallowed holds the robots.txt path prefixes in effect. Empty when
	// enforcement is disabled or the policy failed to load.
	disallowed []string
}

// NewScope creates a Scope for the given seed host and disallow prefixes.
// Pass nil prefixes when robots enforcement is off or the policy failed
// to load; both mean no path is blocked.
func NewScope(baseHost string, disallowed []string) *Scope {
	return &Scope{baseHost: baseHost, disallowed: disallowed}
}

// InScope reports whether target's host equals the seed host or is a
// subdomain of it. "blog.example.com" is in scope of "example.com";
// "notexample.com" is not.
func (s *Scope) InScope(target string) bool {
	u, err := url.Parse(target)
	if err != nil {
		return false
	}
	host := u.Hostname()
	return host == s.baseHost || strings.HasSuffix(host, "."+s.baseHost)
}

// IsAllowed reports whether target's path avoids every disallow prefix.
// The match is a plain string-prefix test, not path-segment-aware: a
// "/private" prefix also blocks "/privateer". That mirrors how the
// disallow set was collected and keeps the check trivially cheap.
func (s *Scope) IsAllowed(target string) bool {
	if len(s.disallowed) == 0 {
		return true
	}

	u, err := url.Parse(target)
	if err != nil {
		return false
	}
	for _, prefix := range s.disallowed {
		if strings.HasPrefix(u.Path, prefix) {
			return false
		}
	}
	return true
}

// Disallowed returns the disallow prefixes in effect, for reporting.
func (s *Scope) Disallowed() []string {
	return s.disallowed
}
