// Package crawler implements the crawl frontier and traversal engine.
//
// # Architecture
//
// The package is built around three pieces:
//
//   - Canonicalize/IsValid/ShouldFollow: URL normalization and the
//     admission policy for discovered links
//   - Engine: the breadth-first traversal over a FIFO frontier of
//     (url, depth) entries, bounded by a page budget and depth limit
//   - Seeder: best-effort search seeding that turns a free-text query
//     into candidate seed URLs
//
// # Traversal semantics
//
// The frontier is a FIFO queue with depth stamping, so traversal is
// breadth-first: when the page budget truncates a crawl, shallow pages
// near the seeds are kept in preference to deep ones. Canonical URLs
// enter the visited set at enqueue time, not fetch time, which guarantees
// a URL discovered from several pages is queued at most once.
//
// # Failure tolerance
//
// The web is unreliable by nature, so per-page fetch failures are recorded
// and skipped rather than propagated; a crawl only fails outright when no
// valid seed exists. A crawl that admits zero pages returns an empty
// result, and the caller decides whether that constitutes job failure.
//
// # Politeness
//
// A fixed minimum delay separates consecutive fetches. The engine
// processes entries strictly sequentially; there is no per-host
// parallelism to pace.
package crawler
