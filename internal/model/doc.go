// Package model defines the data structures shared across silentcrawl.
//
// The central types are Results, the three derived sets a crawl emits
// (visited URLs, directory paths, discovered subdomains), and CrawlReport,
// which wraps Results with timing, statistics, and the robots policy that
// was in effect. CrawlReport is the unit that pipeline steps mutate, report
// writers render, and the database persists.
package model
