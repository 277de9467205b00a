// Package database provides SQLite-based storage for websift.
//
// This package implements the JobStore, which stores:
//   - Scrape job records with status transitions
//   - Admitted page records per job
//   - Per-page fetch failures for job diagnostics
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
//  1. No external dependencies - the database is a single file
//  2. CGO-free implementation allows easy cross-compilation
//  3. Sufficient performance for a single-node pipeline
//  4. WAL mode provides good concurrent read performance
package database
