// Package config provides configuration structures and utilities for
// silentcrawl. It defines the crawl options populated from CLI flags, the
// optional YAML configuration file with per-site overrides, and the XDG
// directory helpers used for persistent storage.
package config
