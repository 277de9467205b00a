package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoSeedInput is returned when neither seed URLs nor a search
	// query is provided. Traversal cannot start without one of them.
	ErrNoSeedInput = errors.New("no seed input: provide seed URLs or a search query")

	// ErrConflictingSeedInput is returned when both seed URLs and a
	// search query are supplied. They are mutually exclusive per job.
	ErrConflictingSeedInput = errors.New("conflicting seed input: seed URLs and a search query cannot be combined")

	// ErrInvalidMaxPages is returned when the page budget is not positive.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be positive")

	// ErrInvalidMaxDepth is returned when the depth bound is negative.
	// Use 0 to crawl only the seed pages.
	ErrInvalidMaxDepth = errors.New("invalid max depth: must be non-negative")

	// ErrInvalidTimeout is returned when the fetch timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidCrawlDelay is returned when the politeness delay is
	// negative. Use 0 for no delay between requests.
	ErrInvalidCrawlDelay = errors.New("invalid crawl delay: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is
	// negative. Use 0 to fall back to the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingExportFormats is returned when both --json and
	// --markdown are specified. Only one export format can be used.
	ErrConflictingExportFormats = errors.New("conflicting export formats: --json and --markdown cannot be used together")

	// ErrRenderEndpointMissing is returned when render mode is requested
	// without a rendering-service endpoint to delegate to.
	ErrRenderEndpointMissing = errors.New("render mode requires a rendering service endpoint")
)
