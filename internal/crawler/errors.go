package crawler

import "errors"

// Structural crawl errors. These are the only fatal errors the crawl core
// produces: per-page fetch failures are recorded as diagnostics and never
// abort a traversal.
var (
	// ErrNoValidSeeds is returned when every supplied seed URL fails
	// canonicalization. Traversal cannot start without at least one
	// admitted seed.
	ErrNoValidSeeds = errors.New("no valid seed URLs provided")

	// ErrSearchSeedingFailed is returned when the search-results fetch
	// succeeded but no usable candidate URLs could be harvested. Callers
	// are expected to fall back to explicit seed URLs.
	ErrSearchSeedingFailed = errors.New("search seeding failed: no result links extracted")
)
