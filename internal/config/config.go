package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These mirror the behavior of a polite, budget-bounded crawl and can all
// be overridden via CLI flags.
const (
	// DefaultMaxPages is the maximum number of pages admitted per crawl.
	// Small by default: a crawl is a sampling tool, not a mirror.
	DefaultMaxPages = 10

	// DefaultMaxDepth is the maximum traversal depth. 0 means only the
	// seed pages, 1 adds their links, and so on.
	DefaultMaxDepth = 2

	// DefaultSameDomain restricts link expansion to the seed's host.
	DefaultSameDomain = true

	// DefaultCrawlDelay is the politeness pause between consecutive
	// fetches. It is a fixed minimum wait, not proportional to page size.
	DefaultCrawlDelay = 1 * time.Second

	// DefaultTimeout is the per-fetch connection timeout. The traversal
	// engine relies on the fetcher owning this bound.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxBodySize limits the response body size read per page.
	// 5MB is sufficient for HTML while preventing memory exhaustion.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultUserAgent identifies websift in HTTP requests.
	// A descriptive User-Agent lets operators recognize crawler traffic.
	DefaultUserAgent = "websift/1.0 (+https://github.com/websift/websift)"

	// DefaultSearchBaseURL is the HTML search endpoint used for search
	// seeding. The HTML variant is used because it requires no scripting.
	DefaultSearchBaseURL = "https://html.duckduckgo.com/html/"

	// DefaultBatchSize is the number of jobs processed concurrently by
	// the work command.
	DefaultBatchSize = 4

	// AppName is the application name used for XDG directory paths.
	AppName = "websift"
)

// Config holds all configuration options for websift.
// It is populated from CLI flags and passed through the application via
// dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., CrawlConfig, ExportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
type Config struct {
	// MaxPages is the maximum number of pages to admit per crawl.
	MaxPages int

	// MaxDepth is the maximum traversal depth from the seeds.
	MaxDepth int

	// SameDomain restricts link expansion to the seed's host.
	SameDomain bool

	// CrawlDelay is the politeness pause between consecutive fetches.
	CrawlDelay time.Duration

	// Timeout is the per-fetch connection timeout.
	Timeout time.Duration

	// MaxBodySize is the maximum response body size in bytes to read.
	MaxBodySize int64

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// RespectRobots enables robots.txt checks before fetching.
	// Hosts that cannot serve robots.txt are treated as allow-all.
	RespectRobots bool

	// RenderMode selects scripted rendering for every fetch.
	// Requires RenderEndpoint to be configured.
	RenderMode bool

	// RenderEndpoint is the URL of the external rendering service that
	// returns script-executed HTML for a given page URL.
	RenderEndpoint string

	// RenderToken is a bearer token sent to the rendering service.
	RenderToken string

	// SearchBaseURL is the search-results endpoint used for seeding.
	SearchBaseURL string

	// Keywords admit pages only when their text contains one of them.
	Keywords []string

	// Instruction is a natural-language instruction for the field filter.
	Instruction string

	// SeedURLs are explicit starting URLs. Mutually exclusive with Query.
	SeedURLs []string

	// Query is a free-text search query used to discover seeds.
	Query string

	// Crawl enables frontier traversal; when false only the first seed
	// is fetched at depth zero.
	Crawl bool

	// BatchSize is the number of jobs processed concurrently.
	BatchSize int

	// JSONExport and MarkdownExport select the export format.
	// Mutually exclusive; neither means a plain text summary.
	JSONExport     bool
	MarkdownExport bool

	// OutputFile is the export destination; empty means stdout.
	OutputFile string

	// DBDir is the directory holding the SQLite job store.
	// Empty disables persistence.
	DBDir string

	// SaveToDB indicates whether job records and results are persisted.
	SaveToDB bool

	// ConfigFilePath is an explicit path to the .websift config file.
	ConfigFilePath string

	// Sites holds per-site fetch settings loaded from the config file.
	Sites *File

	// Verbose enables debug-level log output.
	Verbose bool
}

// NewConfig creates a new Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., delays, budgets).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		MaxPages:      DefaultMaxPages,
		MaxDepth:      DefaultMaxDepth,
		SameDomain:    DefaultSameDomain,
		CrawlDelay:    DefaultCrawlDelay,
		Timeout:       DefaultTimeout,
		MaxBodySize:   DefaultMaxBodySize,
		UserAgent:     DefaultUserAgent,
		SearchBaseURL: DefaultSearchBaseURL,
		BatchSize:     DefaultBatchSize,
	}
}

// XDGDataDir returns the XDG data directory for websift.
// On Linux: ~/.local/share/websift
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for websift.
// On Linux: ~/.config/websift
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first error found rather than collecting all errors,
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if len(c.SeedURLs) == 0 && c.Query == "" {
		return ErrNoSeedInput
	}

	if len(c.SeedURLs) > 0 && c.Query != "" {
		return ErrConflictingSeedInput
	}

	if c.MaxPages <= 0 {
		return ErrInvalidMaxPages
	}

	if c.MaxDepth < 0 {
		return ErrInvalidMaxDepth
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.CrawlDelay < 0 {
		return ErrInvalidCrawlDelay
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.JSONExport && c.MarkdownExport {
		return ErrConflictingExportFormats
	}

	if c.RenderMode && c.RenderEndpoint == "" {
		return ErrRenderEndpointMissing
	}

	return nil
}
