package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// newTestServer serves the given path-to-HTML map with a 404 for anything
// else. Paths match exactly.
func newTestServer(t *testing.T, pages map[string]string) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

// newTestSpider builds a Spider with the politeness delay and jitter
// removed so crawls finish fast.
func newTestSpider(t *testing.T, server *httptest.Server, opts ...SpiderOption) *Spider {
	t.Helper()

	spider, err := NewSpider(server.Client(), server.URL, opts...)
	if err != nil {
		t.Fatalf("NewSpider() unexpected error: %v", err)
	}
	spider.delay = 0
	spider.jitterMax = 0
	return spider
}

func TestNewSpider(t *testing.T) {
	t.Parallel()

	t.Run("scheme is prepended when missing", func(t *testing.T) {
		t.Parallel()

		spider, err := NewSpider(http.DefaultClient, "example.com")
		if err != nil {
			t.Fatalf("NewSpider() unexpected error: %v", err)
		}
		if spider.Seed() != "http://example.com/" {
			t.Errorf("Seed() = %q, want %q", spider.Seed(), "http://example.com/")
		}
		if spider.BaseHost() != "example.com" {
			t.Errorf("BaseHost() = %q, want %q", spider.BaseHost(), "example.com")
		}
	})

	t.Run("seed is normalized", func(t *testing.T) {
		t.Parallel()

		spider, err := NewSpider(http.DefaultClient, "http://example.com/docs")
		if err != nil {
			t.Fatalf("NewSpider() unexpected error: %v", err)
		}
		if spider.Seed() != "http://example.com/docs/" {
			t.Errorf("Seed() = %q, want %q", spider.Seed(), "http://example.com/docs/")
		}
	})

	t.Run("port is stripped from base host", func(t *testing.T) {
		t.Parallel()

		spider, err := NewSpider(http.DefaultClient, "http://example.com:8080/")
		if err != nil {
			t.Fatalf("NewSpider() unexpected error: %v", err)
		}
		if spider.BaseHost() != "example.com" {
			t.Errorf("BaseHost() = %q, want %q", spider.BaseHost(), "example.com")
		}
	})

	t.Run("invalid seeds", func(t *testing.T) {
		t.Parallel()

		for _, seed := range []string{"", "http://", "http://exa mple.com/"} {
			if _, err := NewSpider(http.DefaultClient, seed); !errors.Is(err, ErrInvalidSeed) {
				t.Errorf("NewSpider(%q) error = %v, want ErrInvalidSeed", seed, err)
			}
		}
	})
}

func TestSpiderCrawl(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, map[string]string{
		"/": `<html><body>
			<a href="/a/">a</a>
			<a href="/b/page.html">page</a>
			<a href="/a/">dup</a>
			<a href="http://other.com/away">external</a>
			<a href="javascript:void(0)">js</a>
			<a href="#top">anchor</a>
		</body></html>`,
		"/a/": `<html><body>
			<a href="/a/c.html">c</a>
			<a href="/">home</a>
		</body></html>`,
		"/b/page.html": `<html><body><a href="/deep">deep</a></body></html>`,
		"/a/c.html":    `<html><body>leaf</body></html>`,
		"/deep/":       `<html><body>leaf</body></html>`,
	})

	spider := newTestSpider(t, server)

	results, err := spider.Crawl(context.Background())
	if err != nil {
		t.Fatalf("Crawl() unexpected error: %v", err)
	}

	wantURLs := []string{
		server.URL + "/",
		server.URL + "/a/",
		server.URL + "/a/c.html",
		server.URL + "/b/page.html",
		server.URL + "/deep/",
	}
	if len(results.URLs) != len(wantURLs) {
		t.Fatalf("URLs = %v, want %v", results.URLs, wantURLs)
	}
	for i := range wantURLs {
		if results.URLs[i] != wantURLs[i] {
			t.Errorf("URLs[%d] = %q, want %q", i, results.URLs[i], wantURLs[i])
		}
	}

	wantDirs := []string{"/a/", "/b/", "/deep/"}
	if len(results.Directories) != len(wantDirs) {
		t.Fatalf("Directories = %v, want %v", results.Directories, wantDirs)
	}
	for i := range wantDirs {
		if results.Directories[i] != wantDirs[i] {
			t.Errorf("Directories[%d] = %q, want %q", i, results.Directories[i], wantDirs[i])
		}
	}

	if len(results.Subdomains) != 0 {
		t.Errorf("Subdomains = %v, want empty", results.Subdomains)
	}

	stats := spider.Stats()
	if stats.URLsVisited != len(wantURLs) {
		t.Errorf("URLsVisited = %d, want %d", stats.URLsVisited, len(wantURLs))
	}
	if stats.PagesFetched != len(wantURLs) {
		t.Errorf("PagesFetched = %d, want %d", stats.PagesFetched, len(wantURLs))
	}
}

func TestSpiderCrawlDepthBound(t *testing.T) {
	t.Parallel()

	pages := map[string]string{
		"/":   `<html><body><a href="/1/">1</a></body></html>`,
		"/1/": `<html><body><a href="/2/">2</a></body></html>`,
		"/2/": `<html><body><a href="/3/">3</a></body></html>`,
		"/3/": `<html><body>end</body></html>`,
	}

	t.Run("depth 1 stops after one hop", func(t *testing.T) {
		t.Parallel()

		server := newTestServer(t, pages)
		spider := newTestSpider(t, server, WithMaxDepth(1))

		results, err := spider.Crawl(context.Background())
		if err != nil {
			t.Fatalf("Crawl() unexpected error: %v", err)
		}

		want := []string{server.URL + "/", server.URL + "/1/"}
		if len(results.URLs) != len(want) || results.URLs[0] != want[0] || results.URLs[1] != want[1] {
			t.Errorf("URLs = %v, want %v", results.URLs, want)
		}
	})

	t.Run("depth 0 fetches only the seed", func(t *testing.T) {
		t.Parallel()

		server := newTestServer(t, pages)
		spider := newTestSpider(t, server, WithMaxDepth(0))

		results, err := spider.Crawl(context.Background())
		if err != nil {
			t.Fatalf("Crawl() unexpected error: %v", err)
		}

		if len(results.URLs) != 1 || results.URLs[0] != server.URL+"/" {
			t.Errorf("URLs = %v, want only the seed", results.URLs)
		}

		stats := spider.Stats()
		if stats.PagesFetched != 1 {
			t.Errorf("PagesFetched = %d, want 1", stats.PagesFetched)
		}
	})
}

func TestSpiderCrawlSkippedPages(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, map[string]string{
		"/": `<html><body><a href="/missing/">gone</a><a href="/ok/">ok</a></body></html>`,
		"/ok/": `<html><body>fine</body></html>`,
	})

	spider := newTestSpider(t, server)

	results, err := spider.Crawl(context.Background())
	if err != nil {
		t.Fatalf("Crawl() unexpected error: %v", err)
	}

	// The 404 URL counts as visited even though its fetch was skipped.
	if len(results.URLs) != 3 {
		t.Fatalf("URLs = %v, want 3 entries", results.URLs)
	}

	stats := spider.Stats()
	if stats.PagesFetched != 2 {
		t.Errorf("PagesFetched = %d, want 2", stats.PagesFetched)
	}
	if stats.PagesSkipped[string(SkipStatus)] != 1 {
		t.Errorf("PagesSkipped = %v, want one %q entry", stats.PagesSkipped, SkipStatus)
	}
}

func TestSpiderCrawlRobots(t *testing.T) {
	t.Parallel()

	t.Run("disallowed prefix is never visited", func(t *testing.T) {
		t.Parallel()

		var mu sync.Mutex
		requested := make(map[string]int)

		mux := http.NewServeMux()
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			requested[r.URL.Path]++
			mu.Unlock()

			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`<html><body>
				<a href="/private/secret/">secret</a>
				<a href="/public/">public</a>
			</body></html>`))
		})
		server := httptest.NewServer(mux)
		t.Cleanup(server.Close)

		spider := newTestSpider(t, server, WithDisallowedPaths([]string{"/private"}))

		results, err := spider.Crawl(context.Background())
		if err != nil {
			t.Fatalf("Crawl() unexpected error: %v", err)
		}

		for _, u := range results.URLs {
			if u == server.URL+"/private/secret/" {
				t.Error("disallowed URL appeared in results")
			}
		}

		mu.Lock()
		defer mu.Unlock()
		if requested["/private/secret/"] != 0 {
			t.Error("disallowed URL was requested")
		}
		if requested["/public/"] == 0 {
			t.Error("allowed URL was never requested")
		}
	})

	t.Run("disallowed seed yields empty crawl", func(t *testing.T) {
		t.Parallel()

		server := newTestServer(t, map[string]string{
			"/": `<html><body><a href="/x/">x</a></body></html>`,
		})

		spider := newTestSpider(t, server, WithDisallowedPaths([]string{"/"}))

		results, err := spider.Crawl(context.Background())
		if err != nil {
			t.Fatalf("Crawl() unexpected error: %v", err)
		}

		if len(results.URLs) != 0 {
			t.Errorf("URLs = %v, want empty", results.URLs)
		}
		if spider.Stats().PagesFetched != 0 {
			t.Errorf("PagesFetched = %d, want 0", spider.Stats().PagesFetched)
		}
	})
}

func TestSpiderCrawlCancellation(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, map[string]string{
		"/": `<html><body><a href="/next/">next</a></body></html>`,
		"/next/": `<html><body>end</body></html>`,
	})

	spider := newTestSpider(t, server)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := spider.Crawl(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Crawl() error = %v, want context.Canceled", err)
	}
	if results == nil {
		t.Fatal("Crawl() returned nil results on cancellation")
	}
	// The seed was admitted before the cancellation was observed.
	if len(results.URLs) != 1 {
		t.Errorf("URLs = %v, want only the admitted seed", results.URLs)
	}
}

func TestSpiderAdmitConcurrent(t *testing.T) {
	t.Parallel()

	spider, err := NewSpider(http.DefaultClient, "http://example.com/")
	if err != nil {
		t.Fatalf("NewSpider() unexpected error: %v", err)
	}

	const workers = 64
	target := "http://example.com/page/"

	var wg sync.WaitGroup
	admitted := make(chan bool, workers)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			admitted <- spider.admit(target)
		}()
	}
	wg.Wait()
	close(admitted)

	wins := 0
	for ok := range admitted {
		if ok {
			wins++
		}
	}
	if wins != 1 {
		t.Errorf("admit() succeeded %d times for one target, want exactly 1", wins)
	}
}

func TestSpiderAdmitRecordsDerivations(t *testing.T) {
	t.Parallel()

	spider, err := NewSpider(http.DefaultClient, "http://example.com/")
	if err != nil {
		t.Fatalf("NewSpider() unexpected error: %v", err)
	}

	for _, target := range []string{
		"http://example.com/blog/post.html",
		"http://docs.example.com/guide/",
	} {
		if !spider.admit(target) {
			t.Fatalf("admit(%q) = false, want true", target)
		}
	}

	results := spider.results()
	wantDirs := []string{"/blog/", "/guide/"}
	if fmt.Sprint(results.Directories) != fmt.Sprint(wantDirs) {
		t.Errorf("Directories = %v, want %v", results.Directories, wantDirs)
	}
	if len(results.Subdomains) != 1 || results.Subdomains[0] != "docs" {
		t.Errorf("Subdomains = %v, want [docs]", results.Subdomains)
	}
}

func TestSpiderConcurrencyCap(t *testing.T) {
	t.Parallel()

	const limit = 2

	var mu sync.Mutex
	inflight, peak := 0, 0

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		inflight++
		if inflight > peak {
			peak = inflight
		}
		mu.Unlock()

		defer func() {
			mu.Lock()
			inflight--
			mu.Unlock()
		}()

		w.Header().Set("Content-Type", "text/html")
		if r.URL.Path == "/" {
			var links string
			for i := 0; i < 20; i++ {
				links += fmt.Sprintf(`<a href="/page%d/">p</a>`, i)
			}
			_, _ = w.Write([]byte("<html><body>" + links + "</body></html>"))
			return
		}
		_, _ = w.Write([]byte("<html><body>leaf</body></html>"))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	spider := newTestSpider(t, server, WithConcurrency(limit))

	if _, err := spider.Crawl(context.Background()); err != nil {
		t.Fatalf("Crawl() unexpected error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if peak > limit {
		t.Errorf("peak in-flight requests = %d, want at most %d", peak, limit)
	}
}
