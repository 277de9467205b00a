// Package model defines the core data structures used throughout websift.
//
// This package contains the following main types:
//   - PageData: The field bag extracted from a single fetched page
//   - PageRecord: A crawled page plus its traversal metadata
//   - Job: A persisted scrape/crawl job with status transitions
//   - JobReport: The in-flight result carrier passed through the pipeline
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (crawler, fetcher, pipeline, report) need to
// use these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for export output and
// database storage.
package model
