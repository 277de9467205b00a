// Package fetcher retrieves single pages and turns them into the page
// field bag consumed by the traversal engine.
//
// # Fetch strategies
//
// Two implementations of the Fetcher interface are provided:
//
//   - Static: a plain HTTP GET followed by HTML extraction. This is the
//     default path and the only one used for search seeding.
//   - Rendered: delegates to an external rendering service (a headless
//     browser behind an HTTP API) and extracts from the returned DOM.
//
// The render strategy is selected per crawl, not per page: the caller
// constructs the fetcher matching the job's render mode and hands it to
// the engine.
//
// # Contract
//
// Fetchers are complete-or-fail. A non-2xx status, a non-HTML content
// type, or an unreadable body yields an error and no PageData. The engine
// treats every fetch error as non-fatal and continues the traversal.
//
// # Politeness
//
// An optional RobotsCache checks robots.txt before each static fetch,
// failing open when the file is missing or malformed. Inter-fetch pacing
// is owned by the engine, not the fetcher.
package fetcher
