package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/websift/websift/internal/config"
	"github.com/websift/websift/internal/crawler"
	"github.com/websift/websift/internal/filter"
	"github.com/websift/websift/internal/model"
)

// stubFetcher serves pre-registered pages for step tests.
type stubFetcher struct {
	mu    sync.Mutex
	pages map[string]*model.PageData
	errs  map[string]error
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{
		pages: make(map[string]*model.PageData),
		errs:  make(map[string]error),
	}
}

func (f *stubFetcher) addPage(url, text string, links ...string) {
	page := &model.PageData{
		URL:         url,
		StatusCode:  200,
		TextContent: text,
	}
	for _, href := range links {
		page.Links = append(page.Links, model.Link{Href: href})
	}
	f.pages[url] = page
}

func (f *stubFetcher) Fetch(_ context.Context, rawURL string) (*model.PageData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err, ok := f.errs[rawURL]; ok {
		return nil, err
	}
	if page, ok := f.pages[rawURL]; ok {
		return page, nil
	}
	return nil, fmt.Errorf("no page registered for %s", rawURL)
}

// TestSeedStep tests seed resolution.
func TestSeedStep(t *testing.T) {
	t.Parallel()

	t.Run("explicit seeds pass through with job keywords", func(t *testing.T) {
		t.Parallel()

		step := NewSeedStep(crawler.NewSeeder(newStubFetcher()))
		report := model.NewJobReport(&model.Job{
			SeedURLs: []string{"https://example.com"},
			Keywords: []string{"go"},
		})

		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(report.Seeds) != 1 || report.Seeds[0] != "https://example.com" {
			t.Errorf("unexpected seeds %v", report.Seeds)
		}
		if len(report.Keywords) != 1 || report.Keywords[0] != "go" {
			t.Errorf("unexpected keywords %v", report.Keywords)
		}
	})

	t.Run("query jobs get search results and the query as keyword", func(t *testing.T) {
		t.Parallel()

		fetch := newStubFetcher()
		seeder := crawler.NewSeeder(fetch,
			crawler.WithSearchBaseURL("https://search.example/html/"))

		fetch.pages["https://search.example/html/?q=steak+house"] = &model.PageData{
			Links: []model.Link{
				{Href: "https://grill.example/menu"},
			},
		}

		step := NewSeedStep(seeder)
		report := model.NewJobReport(&model.Job{
			Query:    "steak house",
			MaxPages: 5,
		})

		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(report.Seeds) != 1 || report.Seeds[0] != "https://grill.example/menu" {
			t.Errorf("unexpected seeds %v", report.Seeds)
		}
		if len(report.Keywords) != 1 || report.Keywords[0] != "steak house" {
			t.Errorf("expected query as admission keyword, got %v", report.Keywords)
		}
	})

	t.Run("seeding failure propagates", func(t *testing.T) {
		t.Parallel()

		fetch := newStubFetcher()
		seeder := crawler.NewSeeder(fetch,
			crawler.WithSearchBaseURL("https://search.example/html/"))
		fetch.pages["https://search.example/html/?q=nothing"] = &model.PageData{}

		step := NewSeedStep(seeder)
		report := model.NewJobReport(&model.Job{Query: "nothing", MaxPages: 5})

		err := step.Do(context.Background(), report)
		if !errors.Is(err, crawler.ErrSearchSeedingFailed) {
			t.Errorf("expected ErrSearchSeedingFailed, got %v", err)
		}
	})
}

// TestCrawlStep tests the traversal step.
func TestCrawlStep(t *testing.T) {
	t.Parallel()

	t.Run("crawl jobs traverse from the resolved seeds", func(t *testing.T) {
		t.Parallel()

		fetch := newStubFetcher()
		fetch.addPage("https://example.com/", "root", "/a")
		fetch.addPage("https://example.com/a", "a")

		step := NewCrawlStep(fetch, WithCrawlDelay(0))
		report := model.NewJobReport(&model.Job{
			Crawl:      true,
			MaxPages:   10,
			MaxDepth:   2,
			SameDomain: true,
		})
		report.Seeds = []string{"https://example.com"}

		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(report.Pages) != 2 {
			t.Errorf("expected 2 pages, got %d", len(report.Pages))
		}
	})

	t.Run("job bounds are honored", func(t *testing.T) {
		t.Parallel()

		fetch := newStubFetcher()
		fetch.addPage("https://example.com/", "root", "/a", "/b")
		fetch.addPage("https://example.com/a", "a")
		fetch.addPage("https://example.com/b", "b")

		step := NewCrawlStep(fetch, WithCrawlDelay(0))
		report := model.NewJobReport(&model.Job{
			Crawl:      true,
			MaxPages:   1,
			MaxDepth:   2,
			SameDomain: true,
		})
		report.Seeds = []string{"https://example.com"}

		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(report.Pages) != 1 {
			t.Errorf("expected page budget of 1, got %d", len(report.Pages))
		}
	})

	t.Run("per-site depth override widens the crawl", func(t *testing.T) {
		t.Parallel()

		fetch := newStubFetcher()
		fetch.addPage("https://example.com/", "root", "/a")
		fetch.addPage("https://example.com/a", "a")

		sites := &config.File{Sites: map[string]config.SiteConfig{
			"example.com": {MaxDepth: 1},
		}}

		step := NewCrawlStep(fetch, WithCrawlDelay(0), WithSiteOverrides(sites))
		report := model.NewJobReport(&model.Job{
			Crawl:      true,
			MaxPages:   10,
			MaxDepth:   0,
			SameDomain: true,
		})
		report.Seeds = []string{"https://example.com"}

		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(report.Pages) != 2 {
			t.Errorf("expected site depth override to admit 2 pages, got %d", len(report.Pages))
		}
	})

	t.Run("per-site keywords gate admission", func(t *testing.T) {
		t.Parallel()

		fetch := newStubFetcher()
		fetch.addPage("https://example.com/", "nothing relevant here", "/a")
		fetch.addPage("https://example.com/a", "ribeye specials")

		sites := &config.File{Sites: map[string]config.SiteConfig{
			"example.com": {Keywords: []string{"ribeye"}},
		}}

		step := NewCrawlStep(fetch, WithCrawlDelay(0), WithSiteOverrides(sites))
		report := model.NewJobReport(&model.Job{
			Crawl:      true,
			MaxPages:   10,
			MaxDepth:   2,
			SameDomain: true,
		})
		report.Seeds = []string{"https://example.com"}

		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// The seed fails the site's keyword gate, so nothing is admitted.
		if len(report.Pages) != 0 {
			t.Errorf("expected site keywords to reject the seed, got %d pages", len(report.Pages))
		}
	})

	t.Run("hosts without a site entry keep the job settings", func(t *testing.T) {
		t.Parallel()

		fetch := newStubFetcher()
		fetch.addPage("https://example.com/", "root", "/a")
		fetch.addPage("https://example.com/a", "a")

		sites := &config.File{Sites: map[string]config.SiteConfig{
			"other.example": {MaxDepth: 5, Keywords: []string{"absent"}},
		}}

		step := NewCrawlStep(fetch, WithCrawlDelay(0), WithSiteOverrides(sites))
		report := model.NewJobReport(&model.Job{
			Crawl:      true,
			MaxPages:   10,
			MaxDepth:   2,
			SameDomain: true,
		})
		report.Seeds = []string{"https://example.com"}

		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(report.Pages) != 2 {
			t.Errorf("expected 2 pages, got %d", len(report.Pages))
		}
	})

	t.Run("single-page jobs fetch only the first seed", func(t *testing.T) {
		t.Parallel()

		fetch := newStubFetcher()
		fetch.addPage("https://example.com/", "root", "/a")

		step := NewCrawlStep(fetch, WithCrawlDelay(0))
		report := model.NewJobReport(&model.Job{Crawl: false, MaxPages: 10})
		report.Seeds = []string{"https://example.com", "https://ignored.example"}

		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(report.Pages) != 1 {
			t.Fatalf("expected 1 page, got %d", len(report.Pages))
		}
		if report.Pages[0].CrawlDepth != 0 {
			t.Errorf("expected depth 0, got %d", report.Pages[0].CrawlDepth)
		}
	})

	t.Run("single-page fetch failure is recorded, not returned", func(t *testing.T) {
		t.Parallel()

		fetch := newStubFetcher()
		fetch.errs["https://example.com/"] = errors.New("status 503")

		step := NewCrawlStep(fetch, WithCrawlDelay(0))
		report := model.NewJobReport(&model.Job{Crawl: false})
		report.Seeds = []string{"https://example.com"}

		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		if len(report.Pages) != 0 {
			t.Errorf("expected no pages, got %d", len(report.Pages))
		}
		if len(report.Failures) != 1 {
			t.Errorf("expected 1 recorded failure, got %d", len(report.Failures))
		}
	})

	t.Run("single-page job without valid seed fails", func(t *testing.T) {
		t.Parallel()

		step := NewCrawlStep(newStubFetcher(), WithCrawlDelay(0))
		report := model.NewJobReport(&model.Job{Crawl: false})
		report.Seeds = []string{"not-a-url"}

		err := step.Do(context.Background(), report)
		if !errors.Is(err, crawler.ErrNoValidSeeds) {
			t.Errorf("expected ErrNoValidSeeds, got %v", err)
		}
	})
}

// TestFilterStep tests instruction-based filtering.
func TestFilterStep(t *testing.T) {
	t.Parallel()

	t.Run("no instruction is a no-op", func(t *testing.T) {
		t.Parallel()

		step := NewFilterStep(filter.NewHeuristic(), nil)
		report := model.NewJobReport(&model.Job{})
		report.Pages = []model.PageRecord{
			{PageData: model.PageData{URL: "https://a.example", TextContent: "alpha"}},
		}

		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(report.Pages) != 1 {
			t.Errorf("expected pages untouched, got %d", len(report.Pages))
		}
	})

	t.Run("instruction filters the pages", func(t *testing.T) {
		t.Parallel()

		step := NewFilterStep(filter.NewHeuristic(), nil)
		report := model.NewJobReport(&model.Job{Instruction: `pages with "alpha"`})
		report.Pages = []model.PageRecord{
			{PageData: model.PageData{URL: "https://a.example", TextContent: "alpha text"}},
			{PageData: model.PageData{URL: "https://b.example", TextContent: "beta text"}},
		}

		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(report.Pages) != 1 || report.Pages[0].URL != "https://a.example" {
			t.Errorf("unexpected filtered pages %v", report.Pages)
		}
	})
}
