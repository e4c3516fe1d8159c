package crawler

import (
	"fmt"
	"net/url"
	"strings"
)

// Normalize resolves link against the page it was found on and returns the
// canonical form used everywhere else in the crawler:
//
//   - relative, protocol-relative, and absolute links all resolve per
//     standard URL-resolution rules
//   - the fragment is stripped
//   - an empty path becomes "/"
//   - a path whose final segment has no "." (no file extension) gets a
//     trailing "/", so extensionless paths and their directory form
//     deduplicate to the same string
//
// The trailing-slash rule deliberately misclassifies extensionless file
// paths (a REST resource like /users/42) as directories; the directory set
// depends on it, so it is kept as-is.
//
// Returns ErrMalformedURL when either input cannot be parsed or the result
// has no host.
func Normalize(link, sourceURL string) (string, error) {
	base, err := url.Parse(sourceURL)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrMalformedURL, sourceURL)
	}

	ref, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrMalformedURL, link)
	}

	resolved := base.ResolveReference(ref)
	if resolved.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrMalformedURL, link)
	}

	resolved.Fragment = ""
	if resolved.Path == "" {
		resolved.Path = "/"
	}

	target := resolved.String()

	// Trailing-slash canonicalization. The segment check uses the path,
	// but the slash is appended to the full string so a query suffix does
	// not defeat deduplication of the same directory-like path.
	segment := resolved.Path[strings.LastIndex(resolved.Path, "/")+1:]
	if !strings.Contains(segment, ".") && !strings.HasSuffix(target, "/") {
		target += "/"
	}

	return target, nil
}

// ExtractDirectory derives the directory path recorded for an admitted URL.
// Paths that are empty or just "/" yield nothing; a path ending in "/" is
// its own directory; otherwise the path is truncated after its last slash,
// unless that slash is the leading one ("/about.html" has no directory
// beyond the root, which is not recorded).
func ExtractDirectory(target string) (string, bool) {
	u, err := url.Parse(target)
	if err != nil {
		return "", false
	}

	path := u.Path
	if path == "" || path == "/" {
		return "", false
	}
	if strings.HasSuffix(path, "/") {
		return path, true
	}
	if i := strings.LastIndex(path, "/"); i > 0 {
		return path[:i+1], true
	}
	return "", false
}

// ExtractSubdomain returns the subdomain label of target relative to
// baseHost. The bare base host yields nothing; "blog.example.com" against
// "example.com" yields "blog". Hosts are compared byte-for-byte, port
// excluded.
func ExtractSubdomain(target, baseHost string) (string, bool) {
	u, err := url.Parse(target)
	if err != nil {
		return "", false
	}

	host := u.Hostname()
	if host == "" || host == baseHost {
		return "", false
	}
	if suffix := "." + baseHost; strings.HasSuffix(host, suffix) {
		return strings.TrimSuffix(host, suffix), true
	}
	return "", false
}
