// Package worker executes scrape jobs end to end.
//
// A Worker wraps the pipeline with job lifecycle management: it marks a
// job running before execution, persists admitted pages and fetch
// failures afterwards, and settles the job into completed or failed.
// A job that admits zero pages is considered failed even when the
// pipeline itself returned no error.
package worker
