package config

import (
	"testing"
	"time"
)

func TestFileGetSiteConfig(t *testing.T) {
	t.Parallel()

	t.Run("unknown host gets defaults", func(t *testing.T) {
		t.Parallel()

		cf := &File{
			Defaults: SiteConfig{Depth: 2, UserAgent: "default/1.0"},
			Sites:    map[string]SiteConfig{},
		}

		got := cf.GetSiteConfig("unknown.com")
		if got.Depth != 2 || got.UserAgent != "default/1.0" {
			t.Errorf("GetSiteConfig() = %+v, want defaults", got)
		}
	})

	t.Run("site overrides defaults field by field", func(t *testing.T) {
		t.Parallel()

		cf := &File{
			Defaults: SiteConfig{
				Depth:     2,
				Delay:     Duration(time.Second),
				UserAgent: "default/1.0",
			},
			Sites: map[string]SiteConfig{
				"example.com": {Depth: 5},
			},
		}

		got := cf.GetSiteConfig("example.com")
		if got.Depth != 5 {
			t.Errorf("Depth = %d, want 5", got.Depth)
		}
		// Fields the site entry leaves zero fall through to defaults.
		if got.Delay.Std() != time.Second {
			t.Errorf("Delay = %v, want 1s from defaults", got.Delay.Std())
		}
		if got.UserAgent != "default/1.0" {
			t.Errorf("UserAgent = %q, want default", got.UserAgent)
		}
	})

	t.Run("site headers merge over default headers", func(t *testing.T) {
		t.Parallel()

		cf := &File{
			Defaults: SiteConfig{
				Headers: map[string]string{"Accept-Language": "en"},
			},
			Sites: map[string]SiteConfig{
				"example.com": {
					Headers: map[string]string{"Cookie": "session=abc"},
				},
			},
		}

		got := cf.GetSiteConfig("example.com")
		if got.Headers["Cookie"] != "session=abc" {
			t.Errorf("Headers = %v, want site Cookie", got.Headers)
		}
		if got.Headers["Accept-Language"] != "en" {
			t.Errorf("Headers = %v, want default Accept-Language kept", got.Headers)
		}
	})

	t.Run("header merge does not leak across hosts", func(t *testing.T) {
		t.Parallel()

		cf := &File{
			Defaults: SiteConfig{
				Headers: map[string]string{"Accept-Language": "en"},
			},
			Sites: map[string]SiteConfig{
				"a.example.com": {
					Headers: map[string]string{"Cookie": "session=secret-for-a"},
				},
			},
		}

		first := cf.GetSiteConfig("a.example.com")
		if first.Headers["Cookie"] != "session=secret-for-a" {
			t.Fatalf("first Headers = %v, want a.example.com Cookie", first.Headers)
		}

		// A later lookup for a different host must not see the first
		// site's credentials.
		second := cf.GetSiteConfig("b.example.com")
		if _, ok := second.Headers["Cookie"]; ok {
			t.Errorf("b.example.com Headers = %v, inherited a.example.com's Cookie", second.Headers)
		}
		if second.Headers["Accept-Language"] != "en" {
			t.Errorf("b.example.com Headers = %v, want default Accept-Language", second.Headers)
		}
		if _, ok := cf.Defaults.Headers["Cookie"]; ok {
			t.Errorf("Defaults.Headers = %v, mutated by site merge", cf.Defaults.Headers)
		}
	})
}

func TestDurationYAML(t *testing.T) {
	t.Parallel()

	t.Run("marshal renders duration string", func(t *testing.T) {
		t.Parallel()

		out, err := Duration(1500 * time.Millisecond).MarshalYAML()
		if err != nil {
			t.Fatalf("MarshalYAML() unexpected error: %v", err)
		}
		if out != "1.5s" {
			t.Errorf("MarshalYAML() = %v, want 1.5s", out)
		}
	})

	t.Run("std round-trips", func(t *testing.T) {
		t.Parallel()

		d := Duration(750 * time.Millisecond)
		if d.Std() != 750*time.Millisecond {
			t.Errorf("Std() = %v, want 750ms", d.Std())
		}
	})
}
