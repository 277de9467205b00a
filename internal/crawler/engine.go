package crawler

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/websift/websift/internal/fetcher"
	"github.com/websift/websift/internal/model"
)

// Engine drives a breadth-first traversal of the link graph from a set of
// seed URLs, bounded by a page budget and a depth limit.
//
// An Engine owns its visited set and frontier queue exclusively for the
// duration of one Crawl call. It is not safe for concurrent reuse across
// overlapping crawls: instantiate one per job, or call Reset between
// crawls.
//
// Design decision: We process frontier entries strictly one at a time.
// Politeness pacing and the shared visited/queue state are simplest to
// reason about under sequential processing; if fetches are ever
// parallelized, visited insertion and queue push must become one atomic
// critical section to preserve the at-most-once-enqueue invariant.
type Engine struct {
	// fetch retrieves pages. The caller picks the implementation matching
	// the job's render mode; the engine never switches strategies mid-crawl.
	fetch fetcher.Fetcher

	// maxPages limits the total number of admitted pages.
	maxPages int

	// maxDepth limits how deep to crawl from the seeds.
	// 0 means only the seed pages, 1 adds their links, and so on.
	maxDepth int

	// sameDomain restricts link expansion to the expanding page's host.
	sameDomain bool

	// delay is the politeness pause between consecutive fetches.
	delay time.Duration

	// logger for structured logging.
	logger *slog.Logger

	// visited tracks canonical URLs already enqueued.
	// URLs are added at enqueue time, not fetch time, so the same URL
	// discovered from several pages is queued at most once.
	visited map[string]bool

	// failures records per-page fetch errors for caller diagnostics.
	failures []model.FetchFailure
}

// frontierEntry is one discovered-but-not-yet-processed URL.
// Entries are owned exclusively by the traversal queue.
type frontierEntry struct {
	url   string
	depth int
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxPages sets the maximum number of pages to admit.
func WithMaxPages(n int) Option {
	return func(e *Engine) {
		e.maxPages = n
	}
}

// WithMaxDepth sets the maximum crawl depth.
// 0 = only the seed pages, 1 = seeds plus their links, etc.
func WithMaxDepth(depth int) Option {
	return func(e *Engine) {
		e.maxDepth = depth
	}
}

// WithSameDomain restricts link expansion to the seed's host.
func WithSameDomain(same bool) Option {
	return func(e *Engine) {
		e.sameDomain = same
	}
}

// WithDelay sets the politeness pause between fetches.
func WithDelay(d time.Duration) Option {
	return func(e *Engine) {
		e.delay = d
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates an Engine using the given fetcher.
//
// Design decision: We require an external Fetcher because fetch strategy
// (static vs. rendered), timeouts, and headers are owned by the fetcher
// package, and tests can inject stubs.
func NewEngine(fetch fetcher.Fetcher, opts ...Option) *Engine {
	e := &Engine{
		fetch:      fetch,
		maxPages:   10,
		maxDepth:   2,
		sameDomain: true,
		delay:      1 * time.Second,
		visited:    make(map[string]bool),
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = slog.Default()
	}

	return e
}

// Crawl traverses the link graph breadth-first from the seed URLs and
// returns the admitted pages in traversal order.
//
// Seeds that fail canonicalization are dropped individually; if none
// survive, Crawl returns ErrNoValidSeeds. Per-page fetch failures are
// recorded (see Failures) and never abort the traversal. When keywords
// are supplied, a fetched page is admitted only if its text contains at
// least one keyword case-insensitively; rejected pages do not contribute
// new frontier entries.
//
// The FIFO queue with depth stamping makes shallow, seed-proximate pages
// win when the page budget truncates the crawl. Result order is
// deterministic and externally observable.
func (e *Engine) Crawl(ctx context.Context, seeds []string, keywords []string) ([]model.PageRecord, error) {
	e.visited = make(map[string]bool)
	e.failures = nil
	results := make([]model.PageRecord, 0)

	// Seeds enter the visited set immediately so duplicate seed inputs
	// collapse to a single frontier entry, preserving input order.
	queue := make([]frontierEntry, 0, len(seeds))
	for _, raw := range seeds {
		canonical, err := Canonicalize(raw)
		if err != nil {
			e.logger.Debug("dropping invalid seed", "url", raw, "error", err)
			continue
		}
		if e.visited[canonical] {
			continue
		}
		e.visited[canonical] = true
		queue = append(queue, frontierEntry{url: canonical, depth: 0})
	}

	if len(queue) == 0 {
		return nil, ErrNoValidSeeds
	}

	folded := foldAll(keywords)

	for len(queue) > 0 && len(results) < e.maxPages {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		default:
		}

		entry := queue[0]
		queue = queue[1:]

		// The expansion guard below never enqueues past maxDepth; this
		// is a defensive check only.
		if entry.depth > e.maxDepth {
			continue
		}

		page, err := e.fetch.Fetch(ctx, entry.url)
		if err != nil {
			// One broken page never sinks the crawl.
			e.logger.Warn("fetch failed", "url", entry.url, "depth", entry.depth, "error", err)
			e.failures = append(e.failures, model.FetchFailure{
				URL:        entry.url,
				Reason:     err.Error(),
				OccurredAt: time.Now(),
			})
			continue
		}

		if len(folded) > 0 && !matchesAnyKeyword(page.TextContent, folded) {
			// Rejected pages do not expand their links either: an
			// off-topic page's subtree is assumed off-topic. This is a
			// deliberate budget-saving policy, not an oversight.
			e.logger.Debug("page rejected by keyword filter", "url", entry.url)
			continue
		}

		record := model.PageRecord{
			PageData:   *page,
			CrawlDepth: entry.depth,
		}
		if entry.depth > 0 {
			record.DiscoveredFrom = entry.url
		}
		results = append(results, record)

		if entry.depth < e.maxDepth && len(results) < e.maxPages {
			queue = e.expand(queue, entry, page)
		}

		// Politeness pause: a fixed minimum wait between fetches.
		if e.delay > 0 && len(queue) > 0 {
			select {
			case <-ctx.Done():
				return results, ctx.Err()
			case <-time.After(e.delay):
			}
		}
	}

	return results, nil
}

// expand pushes the admitted page's outbound links onto the frontier.
// Links are resolved against the page URL, canonicalized, filtered by
// ShouldFollow against the page's own host, and deduplicated against the
// visited set at enqueue time.
func (e *Engine) expand(queue []frontierEntry, entry frontierEntry, page *model.PageData) []frontierEntry {
	base, err := url.Parse(entry.url)
	if err != nil {
		return queue
	}
	baseDomain := HostOf(entry.url)

	for _, link := range page.Links {
		if link.Href == "" {
			continue
		}

		ref, err := url.Parse(strings.TrimSpace(link.Href))
		if err != nil {
			continue
		}
		resolved := base.ResolveReference(ref).String()

		canonical, err := Canonicalize(resolved)
		if err != nil {
			continue
		}
		if !ShouldFollow(canonical, baseDomain, e.sameDomain) {
			continue
		}
		if e.visited[canonical] {
			continue
		}

		e.visited[canonical] = true
		queue = append(queue, frontierEntry{url: canonical, depth: entry.depth + 1})
	}

	return queue
}

// Failures returns the per-page fetch failures recorded by the last Crawl.
// The slice is owned by the engine; callers must not mutate it.
func (e *Engine) Failures() []model.FetchFailure {
	return e.failures
}

// Reset clears the engine's state, allowing it to be reused for a new crawl.
func (e *Engine) Reset() {
	e.visited = make(map[string]bool)
	e.failures = nil
}

// Stats returns counters from the last Crawl.
func (e *Engine) Stats() Stats {
	return Stats{
		URLsSeen:    len(e.visited),
		PagesFailed: len(e.failures),
	}
}

// Stats contains crawl counters.
type Stats struct {
	// URLsSeen is the number of unique canonical URLs enqueued.
	URLsSeen int

	// PagesFailed is the number of frontier entries whose fetch failed.
	PagesFailed int
}

// foldAll case-folds every keyword for caseless matching.
func foldAll(keywords []string) []string {
	if len(keywords) == 0 {
		return nil
	}
	caser := cases.Fold()
	folded := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		folded = append(folded, caser.String(kw))
	}
	return folded
}

// matchesAnyKeyword reports whether the case-folded page text contains at
// least one of the pre-folded keywords as a substring.
func matchesAnyKeyword(text string, folded []string) bool {
	foldedText := cases.Fold().String(text)
	for _, kw := range folded {
		if strings.Contains(foldedText, kw) {
			return true
		}
	}
	return false
}
