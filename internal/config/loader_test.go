package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("loads sites and defaults", func(t *testing.T) {
		t.Parallel()

		content := `defaults:
  depth: 2
  userAgent: "global-agent/1.0"
sites:
  example.com:
    depth: 5
    delay: 2s
    headers:
      Cookie: "session=abc"
  blog.example.org:
    userAgent: "blog-agent/1.0"
`
		path := filepath.Join(t.TempDir(), ".silentcrawl")
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("LoadConfigFile() unexpected error: %v", err)
		}

		if cf.Defaults.Depth != 2 {
			t.Errorf("Defaults.Depth = %d, want 2", cf.Defaults.Depth)
		}
		if cf.Defaults.UserAgent != "global-agent/1.0" {
			t.Errorf("Defaults.UserAgent = %q, want global-agent/1.0", cf.Defaults.UserAgent)
		}

		site, ok := cf.Sites["example.com"]
		if !ok {
			t.Fatal("Sites missing example.com")
		}
		if site.Depth != 5 {
			t.Errorf("site.Depth = %d, want 5", site.Depth)
		}
		if site.Delay.Std() != 2*time.Second {
			t.Errorf("site.Delay = %v, want 2s", site.Delay.Std())
		}
		if site.Headers["Cookie"] != "session=abc" {
			t.Errorf("site.Headers = %v, want Cookie entry", site.Headers)
		}
	})

	t.Run("missing file returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("LoadConfigFile() = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("malformed yaml returns error", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "bad.yaml")
		if err := os.WriteFile(path, []byte("sites: [not a map"), 0600); err != nil {
			t.Fatal(err)
		}

		if _, err := LoadConfigFile(path); err == nil {
			t.Error("LoadConfigFile() = nil, want parse error")
		}
	})

	t.Run("empty file gives usable zero config", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "empty.yaml")
		if err := os.WriteFile(path, nil, 0600); err != nil {
			t.Fatal(err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("LoadConfigFile() unexpected error: %v", err)
		}
		if cf.Sites == nil {
			t.Error("Sites map is nil, want initialized")
		}
	})

	t.Run("invalid duration returns error", func(t *testing.T) {
		t.Parallel()

		content := `sites:
  example.com:
    delay: fast
`
		path := filepath.Join(t.TempDir(), "dur.yaml")
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}

		if _, err := LoadConfigFile(path); err == nil {
			t.Error("LoadConfigFile() = nil, want duration parse error")
		}
	})
}

func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("explicit existing path wins", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(path, []byte("sites: {}\n"), 0600); err != nil {
			t.Fatal(err)
		}

		if got := FindConfigFile(path); got != path {
			t.Errorf("FindConfigFile(%q) = %q, want the path back", path, got)
		}
	})

	t.Run("explicit missing path gives empty", func(t *testing.T) {
		t.Parallel()

		missing := filepath.Join(t.TempDir(), "missing.yaml")
		if got := FindConfigFile(missing); got != "" {
			t.Errorf("FindConfigFile(%q) = %q, want empty", missing, got)
		}
	})
}
