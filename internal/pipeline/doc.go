// Package pipeline executes the stages of a crawl run in sequence.
//
// A run is three stages: load the robots policy, crawl the site, and
// persist the report. Each stage is a Step that receives the accumulated
// CrawlReport and fills in its part. Keeping the stages as steps gives
// uniform logging and cancellation handling, and lets the CLI assemble
// different runs (no robots, no persistence) from the same parts.
//
// Batch processing of multiple seeds runs one pipeline per seed with
// concurrency controlled by errgroup.
package pipeline
