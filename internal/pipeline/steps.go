package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/websift/websift/internal/config"
	"github.com/websift/websift/internal/crawler"
	"github.com/websift/websift/internal/fetcher"
	"github.com/websift/websift/internal/filter"
	"github.com/websift/websift/internal/model"
)

// SeedStep resolves the job's seed input into concrete starting URLs.
// Query jobs go through search seeding; explicit seed URLs pass through.
type SeedStep struct {
	// seeder performs search seeding for query jobs.
	seeder *crawler.Seeder
}

// NewSeedStep creates a seed-resolution step.
func NewSeedStep(seeder *crawler.Seeder) *SeedStep {
	return &SeedStep{seeder: seeder}
}

// Name returns the step name.
func (s *SeedStep) Name() string {
	return "seed"
}

// Do resolves seeds. For query jobs the query itself becomes the single
// admission keyword; explicit-seed jobs use the job's own keywords.
func (s *SeedStep) Do(ctx context.Context, report *model.JobReport) error {
	job := report.Job

	if job.Query != "" {
		seeds, err := s.seeder.SeedFromQuery(ctx, job.Query, job.MaxPages)
		if err != nil {
			return err
		}
		report.Seeds = seeds
		report.Keywords = []string{job.Query}
		return nil
	}

	report.Seeds = job.SeedURLs
	report.Keywords = job.Keywords
	return nil
}

// CrawlStep runs the frontier traversal (or a single-page fetch for
// non-crawl jobs) and records admitted pages and fetch failures.
type CrawlStep struct {
	// fetch retrieves pages; the caller picks the implementation
	// matching the job's render mode.
	fetch fetcher.Fetcher

	// delay is the politeness pause handed to the engine.
	delay time.Duration

	// sites carries per-host crawl overrides from the config file.
	sites *config.File

	// logger for structured logging.
	logger *slog.Logger
}

// CrawlStepOption configures a CrawlStep.
type CrawlStepOption func(*CrawlStep)

// WithCrawlDelay sets the politeness pause between fetches.
func WithCrawlDelay(d time.Duration) CrawlStepOption {
	return func(s *CrawlStep) {
		s.delay = d
	}
}

// WithCrawlLogger sets a custom logger for the crawl step.
func WithCrawlLogger(logger *slog.Logger) CrawlStepOption {
	return func(s *CrawlStep) {
		s.logger = logger
	}
}

// WithSiteOverrides sets per-host crawl settings (depth, delay, keywords)
// from the config file. The first seed's host decides which entry applies.
func WithSiteOverrides(sites *config.File) CrawlStepOption {
	return func(s *CrawlStep) {
		s.sites = sites
	}
}

// NewCrawlStep creates a crawl step using the given fetcher.
func NewCrawlStep(fetch fetcher.Fetcher, opts ...CrawlStepOption) *CrawlStep {
	s := &CrawlStep{
		fetch:  fetch,
		delay:  1 * time.Second,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do runs the traversal. A fresh engine is built per job because the
// budget and depth bounds come from the job record and engine state is
// single-crawl.
func (s *CrawlStep) Do(ctx context.Context, report *model.JobReport) error {
	job := report.Job

	if !job.Crawl {
		return s.scrapeSingle(ctx, report)
	}

	maxDepth := job.MaxDepth
	delay := s.delay
	keywords := report.Keywords

	// Per-host overrides from the config file. The first seed's host
	// picks the entry; under same-domain crawls every page shares it.
	if s.sites != nil && len(report.Seeds) > 0 {
		if host := crawler.HostOf(report.Seeds[0]); host != "" {
			sc := s.sites.GetSiteConfig(host)
			if sc.MaxDepth != 0 {
				maxDepth = sc.MaxDepth
			}
			if sc.Delay != 0 {
				delay = sc.Delay
			}
			if len(sc.Keywords) > 0 {
				keywords = sc.Keywords
			}
		}
	}

	engine := crawler.NewEngine(s.fetch,
		crawler.WithMaxPages(job.MaxPages),
		crawler.WithMaxDepth(maxDepth),
		crawler.WithSameDomain(job.SameDomain),
		crawler.WithDelay(delay),
		crawler.WithLogger(s.logger),
	)

	pages, err := engine.Crawl(ctx, report.Seeds, keywords)
	report.Pages = pages
	report.Failures = append(report.Failures, engine.Failures()...)

	return err
}

// scrapeSingle fetches only the first seed at depth zero.
// A fetch failure is recorded, not returned: the seed was valid, only
// its retrieval failed, and the worker decides what an empty result means.
func (s *CrawlStep) scrapeSingle(ctx context.Context, report *model.JobReport) error {
	if len(report.Seeds) == 0 {
		return crawler.ErrNoValidSeeds
	}

	canonical, err := crawler.Canonicalize(report.Seeds[0])
	if err != nil {
		return crawler.ErrNoValidSeeds
	}

	page, err := s.fetch.Fetch(ctx, canonical)
	if err != nil {
		s.logger.Warn("fetch failed", "url", canonical, "error", err)
		report.Failures = append(report.Failures, model.FetchFailure{
			URL:        canonical,
			Reason:     err.Error(),
			OccurredAt: time.Now(),
		})
		return nil
	}

	report.Pages = []model.PageRecord{{PageData: *page, CrawlDepth: 0}}
	return nil
}

// FilterStep applies the instruction-based field filter to the admitted
// pages. Jobs without an instruction pass through untouched.
type FilterStep struct {
	// filter reshapes the results.
	filter filter.Filter

	// logger for structured logging.
	logger *slog.Logger
}

// NewFilterStep creates a filter step.
func NewFilterStep(f filter.Filter, logger *slog.Logger) *FilterStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &FilterStep{filter: f, logger: logger}
}

// Name returns the step name.
func (s *FilterStep) Name() string {
	return "filter"
}

// Do applies the field filter when the job carries an instruction.
func (s *FilterStep) Do(ctx context.Context, report *model.JobReport) error {
	if report.Job.Instruction == "" || len(report.Pages) == 0 {
		return nil
	}

	before := len(report.Pages)
	pages, err := s.filter.Apply(ctx, report.Job.Instruction, report.Pages)
	if err != nil {
		return err
	}
	report.Pages = pages

	s.logger.Debug("filter applied",
		"job", report.Job.ID,
		"before", before,
		"after", len(report.Pages),
	)
	return nil
}
