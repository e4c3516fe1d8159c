package transport

import (
	"net/http"
	"net/http/cookiejar"
	"time"
)

// maxRedirects bounds redirect chains. Past this the last response is
// used as-is instead of erroring, so a redirect loop degrades to a
// non-2xx skip rather than a failed fetch.
const maxRedirects = 10

// NewClient creates an HTTP client tuned for crawling one site with many
// concurrent requests.
//
// The cookie jar lets session cookies set by the site persist across the
// crawl, which keeps authenticated areas reachable once logged in.
// Pool limits are raised well above net/http defaults because every
// request in a crawl hits the same handful of hosts.
func NewClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     30 * time.Second,
	}

	jar, _ := cookiejar.New(nil) //nolint:errcheck // cookiejar.New only fails with invalid options

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
		Jar:       jar,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}

// NewClientWithHeaders creates a crawl client that injects the given
// headers into every request, including redirects. Site configurations
// use this to attach cookies or custom auth headers for one host.
func NewClientWithHeaders(timeout time.Duration, headers map[string]string) *http.Client {
	client := NewClient(timeout)
	if len(headers) > 0 {
		client.Transport = &headerInjectingTransport{
			base:    client.Transport,
			headers: headers,
		}
	}
	return client
}

// headerInjectingTransport wraps an http.RoundTripper to add fixed
// headers to every request. Injection happens at the transport level so
// redirected requests carry the headers too.
type headerInjectingTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

// RoundTrip implements http.RoundTripper.
func (t *headerInjectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	for name, value := range t.headers {
		if clone.Header.Get(name) == "" {
			clone.Header.Set(name, value)
		}
	}
	return t.base.RoundTrip(clone)
}
