package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/websift/websift/internal/fetcher"
)

// Seeder turns a free-text query into seed URLs by fetching a search
// engine's HTML results page once and harvesting its outbound links.
//
// Scraping a generic results page is inherently brittle (anti-bot
// measures, markup changes), so seeding failure is a first-class,
// expected outcome: callers fall back to explicit seed URLs.
type Seeder struct {
	// fetch performs the single results-page fetch. This is always the
	// static path; search pages are never script-rendered.
	fetch fetcher.Fetcher

	// baseURL is the search endpoint the query is appended to.
	baseURL string

	// logger for structured logging.
	logger *slog.Logger
}

// SeederOption configures a Seeder.
type SeederOption func(*Seeder)

// WithSearchBaseURL overrides the search endpoint.
func WithSearchBaseURL(base string) SeederOption {
	return func(s *Seeder) {
		s.baseURL = base
	}
}

// WithSeederLogger sets a custom logger for the seeder.
func WithSeederLogger(logger *slog.Logger) SeederOption {
	return func(s *Seeder) {
		s.logger = logger
	}
}

// NewSeeder creates a Seeder using the given fetcher.
func NewSeeder(fetch fetcher.Fetcher, opts ...SeederOption) *Seeder {
	s := &Seeder{
		fetch:   fetch,
		baseURL: "https://html.duckduckgo.com/html/",
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s
}

// SeedFromQuery performs exactly one fetch against the search endpoint and
// returns up to limit candidate URLs extracted from the results page.
//
// A fetch error is returned as-is; ErrSearchSeedingFailed means the fetch
// succeeded but zero usable links were found.
func (s *Seeder) SeedFromQuery(ctx context.Context, query string, limit int) ([]string, error) {
	if query == "" {
		return nil, fmt.Errorf("empty search query")
	}

	searchURL, err := s.buildSearchURL(query)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("fetching search results", "query", query, "url", searchURL)

	page, err := s.fetch.Fetch(ctx, searchURL)
	if err != nil {
		return nil, fmt.Errorf("search results fetch: %w", err)
	}

	candidates := make([]string, 0, limit)
	for _, link := range page.Links {
		if !IsValid(link.Href) {
			continue
		}
		candidates = append(candidates, link.Href)
		if len(candidates) >= limit {
			break
		}
	}

	if len(candidates) == 0 {
		return nil, ErrSearchSeedingFailed
	}

	s.logger.Debug("search seeding complete", "query", query, "candidates", len(candidates))
	return candidates, nil
}

// buildSearchURL constructs the results-page URL for the query.
func (s *Seeder) buildSearchURL(query string) (string, error) {
	u, err := url.Parse(s.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid search base URL: %w", err)
	}

	q := u.Query()
	q.Set("q", query)
	u.RawQuery = q.Encode()

	return u.String(), nil
}
