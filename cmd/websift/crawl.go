package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/websift/websift/internal/config"
	"github.com/websift/websift/internal/crawler"
	"github.com/websift/websift/internal/database"
	"github.com/websift/websift/internal/fetcher"
	"github.com/websift/websift/internal/filter"
	weblog "github.com/websift/websift/internal/log"
	"github.com/websift/websift/internal/model"
	"github.com/websift/websift/internal/pipeline"
	"github.com/websift/websift/internal/report"
	"github.com/websift/websift/internal/worker"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [url...]",
		Short: "Fetch pages and extract structured data",
		Long: `Crawl fetches web pages and extracts structured data from them.

Starting points come either from explicit URLs or from a search query.
The traversal follows same-page links breadth-first within the depth
and page budgets, skipping URLs outside the seed's domain and non-HTML
content. Pages can be gated by admission keywords so that only relevant
content is kept.

Examples:
  # Crawl a site starting from one URL
  websift crawl https://example.com

  # Fetch a single page without following links
  websift crawl --single https://example.com/pricing

  # Discover seeds from a search query
  websift crawl --query "golang concurrency patterns"

  # Keep only pages mentioning one of the keywords
  websift crawl -k golang,goroutine https://blog.example.com

  # Render script-heavy pages via an external rendering service
  websift crawl --render --render-endpoint http://localhost:3000/render https://app.example.com

  # Export as JSON to a file
  websift crawl --json -o result.json https://example.com

Configuration file (.websift) example:
  sites:
    members.example.com:
      cookie: "session_id=abc123"
      headers:
        Authorization: "Bearer token"
      maxDepth: 3`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	// Seed input flags
	cmd.Flags().StringP("query", "q", "",
		"Search query used to discover seed URLs (mutually exclusive with URL arguments)")

	// Traversal flags
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of pages to admit")
	cmd.Flags().IntP("depth", "d", config.DefaultMaxDepth,
		"Maximum crawl depth from the seeds (0 = seeds only)")
	cmd.Flags().Bool("same-domain", config.DefaultSameDomain,
		"Restrict link expansion to the seed's domain")
	cmd.Flags().Bool("single", false,
		"Fetch only the first URL without following links")
	cmd.Flags().DurationP("delay", "w", config.DefaultCrawlDelay,
		"Politeness pause between consecutive fetches")
	cmd.Flags().StringSliceP("keywords", "k", nil,
		"Admit only pages whose text contains one of these keywords")

	// Fetch behavior flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Connection timeout for each request")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with requests")
	cmd.Flags().Bool("respect-robots", false,
		"Check robots.txt before fetching (unreachable robots.txt allows all)")
	cmd.Flags().Bool("render", false,
		"Fetch script-executed HTML via an external rendering service")
	cmd.Flags().String("render-endpoint", "",
		"URL of the rendering service (required with --render)")
	cmd.Flags().String("render-token", "",
		"Bearer token for the rendering service")

	// Result handling flags
	cmd.Flags().StringP("instruction", "i", "",
		`Field filter instruction, e.g. 'extract title and links for pages containing "pricing"'`)
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("no-save", false,
		"Do not persist the job and its results in the local job store")
	cmd.Flags().String("db-dir", "",
		"Job store directory (default: XDG data directory)")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .websift in current or home directory)")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging
	logger := setupLogger(getVerboseFlag(cmd))
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runCrawl(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.Query, err = cmd.Flags().GetString("query")
	if err != nil {
		return nil, err
	}
	cfg.SeedURLs = args

	cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, err
	}

	cfg.MaxDepth, err = cmd.Flags().GetInt("depth")
	if err != nil {
		return nil, err
	}

	cfg.SameDomain, err = cmd.Flags().GetBool("same-domain")
	if err != nil {
		return nil, err
	}

	single, err := cmd.Flags().GetBool("single")
	if err != nil {
		return nil, err
	}
	cfg.Crawl = !single

	cfg.CrawlDelay, err = cmd.Flags().GetDuration("delay")
	if err != nil {
		return nil, err
	}

	cfg.Keywords, err = cmd.Flags().GetStringSlice("keywords")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
	if err != nil {
		return nil, err
	}

	cfg.RespectRobots, err = cmd.Flags().GetBool("respect-robots")
	if err != nil {
		return nil, err
	}

	cfg.RenderMode, err = cmd.Flags().GetBool("render")
	if err != nil {
		return nil, err
	}

	cfg.RenderEndpoint, err = cmd.Flags().GetString("render-endpoint")
	if err != nil {
		return nil, err
	}

	cfg.RenderToken, err = cmd.Flags().GetString("render-token")
	if err != nil {
		return nil, err
	}

	cfg.Instruction, err = cmd.Flags().GetString("instruction")
	if err != nil {
		return nil, err
	}

	cfg.JSONExport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownExport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.OutputFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave

	cfg.DBDir, err = cmd.Flags().GetString("db-dir")
	if err != nil {
		return nil, err
	}
	if cfg.DBDir == "" {
		cfg.DBDir = config.XDGDataDir()
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load site-specific configurations from config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.Sites, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.Sites = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	return cfg, nil
}

// setupLogger creates a structured logger based on verbosity setting.
// All output goes through the redacting handler so that credentials from
// site configurations never reach the log stream.
func setupLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler := weblog.NewRedactHandler(slog.NewTextHandler(os.Stderr, opts))
	return slog.New(handler)
}

// newFetcher builds the fetcher matching the configuration.
func newFetcher(cfg *config.Config) fetcher.Fetcher {
	if cfg.RenderMode {
		client := &http.Client{Timeout: cfg.Timeout}
		renderOpts := []fetcher.RenderedOption{
			fetcher.WithRenderMaxBodySize(cfg.MaxBodySize),
		}
		if cfg.RenderToken != "" {
			renderOpts = append(renderOpts, fetcher.WithRenderToken(cfg.RenderToken))
		}
		return fetcher.NewRendered(client, cfg.RenderEndpoint, renderOpts...)
	}

	return newStaticFetcher(cfg)
}

// newStaticFetcher builds the plain HTTP fetcher.
func newStaticFetcher(cfg *config.Config) fetcher.Fetcher {
	client := &http.Client{Timeout: cfg.Timeout}

	staticOpts := []fetcher.StaticOption{
		fetcher.WithUserAgent(cfg.UserAgent),
		fetcher.WithMaxBodySize(cfg.MaxBodySize),
		fetcher.WithSiteConfigs(cfg.Sites),
	}
	if cfg.RespectRobots {
		staticOpts = append(staticOpts,
			fetcher.WithRobotsPolicy(fetcher.NewRobotsCache(client, cfg.UserAgent)))
	}
	return fetcher.NewStatic(client, staticOpts...)
}

// newPipelineFactory returns a factory building a fresh pipeline per job.
func newPipelineFactory(cfg *config.Config, logger *slog.Logger) func(job *model.Job) *pipeline.Pipeline {
	return func(job *model.Job) *pipeline.Pipeline {
		fetch := newFetcher(cfg)

		// Search results pages are plain HTML, so seeding always takes
		// the static path even when the job's page fetches go through
		// the rendering service.
		seedFetch := fetch
		if cfg.RenderMode {
			seedFetch = newStaticFetcher(cfg)
		}

		seeder := crawler.NewSeeder(seedFetch,
			crawler.WithSearchBaseURL(cfg.SearchBaseURL),
			crawler.WithSeederLogger(logger),
		)

		p := pipeline.New(pipeline.WithLogger(logger))
		p.AddStep(pipeline.NewSeedStep(seeder))
		p.AddStep(pipeline.NewCrawlStep(fetch,
			pipeline.WithCrawlDelay(cfg.CrawlDelay),
			pipeline.WithCrawlLogger(logger),
			pipeline.WithSiteOverrides(cfg.Sites),
		))
		p.AddStep(pipeline.NewFilterStep(filter.NewHeuristic(), logger))
		return p
	}
}

// newJob builds a job record from the configuration.
func newJob(cfg *config.Config) *model.Job {
	exportFormat := ""
	switch {
	case cfg.JSONExport:
		exportFormat = "json"
	case cfg.MarkdownExport:
		exportFormat = "markdown"
	}

	return &model.Job{
		ID:           uuid.NewString(),
		SeedURLs:     cfg.SeedURLs,
		Query:        cfg.Query,
		Crawl:        cfg.Crawl,
		MaxPages:     cfg.MaxPages,
		MaxDepth:     cfg.MaxDepth,
		SameDomain:   cfg.SameDomain,
		RenderMode:   cfg.RenderMode,
		Keywords:     cfg.Keywords,
		Instruction:  cfg.Instruction,
		ExportFormat: exportFormat,
		Status:       model.JobStatusPending,
		CreatedAt:    time.Now().UTC(),
	}
}

// runCrawl executes a crawl job end to end.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting crawl",
		"seeds", cfg.SeedURLs,
		"query", cfg.Query,
		"maxPages", cfg.MaxPages,
		"maxDepth", cfg.MaxDepth,
		"saveToDB", cfg.SaveToDB,
	)

	// Open the job store if persistence is enabled
	var store *database.JobStore
	if cfg.SaveToDB {
		var err error
		store, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open job store: %w", err)
		}
		defer store.Close()
		logger.Info("job store opened", "dir", cfg.DBDir)
	}

	job := newJob(cfg)
	if store != nil {
		if err := store.CreateJob(ctx, job); err != nil {
			return fmt.Errorf("failed to create job: %w", err)
		}
	}

	w := worker.New(store, newPipelineFactory(cfg, logger), worker.WithLogger(logger))

	fmt.Printf("Running job %s...\n", job.ID)
	startTime := time.Now()

	jobReport, err := w.Process(ctx, job)
	if err != nil {
		return fmt.Errorf("job %s failed: %w", job.ID, err)
	}

	elapsed := time.Since(startTime)
	fmt.Printf("Job finished in %s (%d pages, %d failures)\n\n",
		elapsed.Round(time.Millisecond), len(jobReport.Pages), len(jobReport.Failures))

	return outputReport(cfg, jobReport)
}

// outputReport outputs the job report in the requested format.
func outputReport(cfg *config.Config, jobReport *model.JobReport) error {
	// Determine output destination
	var output *os.File
	if cfg.OutputFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.OutputFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Exported data may include cookie-gated content, keep it owner-readable
		f, err := os.OpenFile(cfg.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	var writer report.Writer
	switch {
	case cfg.JSONExport:
		writer = report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownExport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output)
	}

	_, err := writer.Write(jobReport)
	return err
}
