// Package main provides the entry point for the silentcrawl CLI.
//
// silentcrawl maps a website from a single seed URL: it crawls the site
// and its subdomains breadth-first and reports every visited URL, the
// directory paths they imply, and the subdomains discovered along the
// way.
//
// Usage:
//
//	silentcrawl crawl <url>
//	silentcrawl crawl --list <file>
//
// See --help for all available options.
package main

// main is the entry point for silentcrawl.
func main() {
	Execute()
}
