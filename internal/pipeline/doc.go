// Package pipeline orchestrates job processing as an ordered sequence of
// steps: seed resolution (explicit URLs or search seeding), frontier
// traversal, and instruction-based filtering. Each step mutates the
// shared JobReport; structural errors stop the pipeline while per-page
// problems are recorded and skipped.
//
// The BatchProcessor runs many jobs concurrently with a bounded number
// of in-flight pipelines.
package pipeline
