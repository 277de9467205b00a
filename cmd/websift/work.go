package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/websift/websift/internal/config"
	"github.com/websift/websift/internal/database"
	"github.com/websift/websift/internal/model"
	"github.com/websift/websift/internal/pipeline"
	"github.com/websift/websift/internal/worker"
)

// NewWorkCmd creates the work command.
func NewWorkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "work",
		Short: "Process pending jobs from the job store",
		Long: `Work picks up pending jobs from the local job store and processes
them concurrently. Each job runs through the full pipeline (seed
resolution, traversal, field filtering) and its results are persisted
back to the store.

Examples:
  # Process all pending jobs
  websift work

  # Process at most 2 jobs concurrently
  websift work --batch 2

  # Process a specific job by ID
  websift work --job 5f2b0c1e-...`,
		RunE: runWorkCmd,
	}

	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of jobs processed concurrently")
	cmd.Flags().String("job", "",
		"Process only the job with this ID")
	cmd.Flags().String("db-dir", "",
		"Job store directory (default: XDG data directory)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Connection timeout for each request")
	cmd.Flags().DurationP("delay", "w", config.DefaultCrawlDelay,
		"Politeness pause between consecutive fetches")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with requests")
	cmd.Flags().Bool("respect-robots", false,
		"Check robots.txt before fetching")
	cmd.Flags().String("render-endpoint", "",
		"URL of the rendering service for render-mode jobs")
	cmd.Flags().String("render-token", "",
		"Bearer token for the rendering service")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .websift in current or home directory)")

	return cmd
}

// runWorkCmd executes the work command.
func runWorkCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildWorkConfig(cmd)
	if err != nil {
		return err
	}

	logger := setupLogger(getVerboseFlag(cmd))
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	jobID, err := cmd.Flags().GetString("job")
	if err != nil {
		return err
	}

	return runWork(ctx, cfg, jobID, logger)
}

// buildWorkConfig creates a Config for the work command.
// The work command reads seed input from stored jobs, so seed flags are
// absent and Validate is not applied.
func buildWorkConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.DBDir, err = cmd.Flags().GetString("db-dir")
	if err != nil {
		return nil, err
	}
	if cfg.DBDir == "" {
		cfg.DBDir = config.XDGDataDir()
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.CrawlDelay, err = cmd.Flags().GetDuration("delay")
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

	cfg.RenderEndpoint, err = cmd.Flags().GetString("render-endpoint")
	if err != nil {
		return nil, err
	}

	cfg.RenderToken, err = cmd.Flags().GetString("render-token")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath != "" {
		cfg.Sites, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else {
		cfg.Sites = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	cfg.SaveToDB = true
	return cfg, nil
}

// runWork processes pending jobs from the job store.
func runWork(ctx context.Context, cfg *config.Config, jobID string, logger *slog.Logger) error {
	store, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open job store: %w", err)
	}
	defer store.Close()

	w := worker.New(store, newWorkPipelineFactory(cfg, logger), worker.WithLogger(logger))

	// A specific job bypasses the pending queue
	if jobID != "" {
		fmt.Printf("Processing job %s...\n", jobID)
		jobReport, err := w.ProcessJob(ctx, jobID)
		if err != nil {
			return err
		}
		fmt.Printf("Job %s: %s (%d pages, %d failures)\n",
			jobID, jobReport.Job.Status, len(jobReport.Pages), len(jobReport.Failures))
		return nil
	}

	jobs, err := store.ListJobs(ctx, model.JobStatusPending)
	if err != nil {
		return fmt.Errorf("failed to list pending jobs: %w", err)
	}
	if len(jobs) == 0 {
		fmt.Println("No pending jobs.")
		return nil
	}

	fmt.Printf("Processing %d pending jobs (concurrency: %d)...\n\n",
		len(jobs), cfg.BatchSize)
	startTime := time.Now()

	jobPtrs := make([]*model.Job, len(jobs))
	for i := range jobs {
		jobPtrs[i] = &jobs[i]
	}

	bp := pipeline.NewBatchProcessor(w.Process,
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	reports, err := bp.ProcessBatch(ctx, jobPtrs)
	for i, r := range reports {
		if r == nil {
			continue
		}
		fmt.Printf("[%d/%d] %s: %s (%d pages, %d failures)\n",
			i+1, len(reports), r.Job.ID, r.Job.Status, len(r.Pages), len(r.Failures))
	}

	fmt.Printf("\nBatch finished in %s\n", time.Since(startTime).Round(time.Millisecond))
	return err
}

// newWorkPipelineFactory builds per-job pipelines for stored jobs.
// Unlike the crawl command, the job record decides the render mode, so
// the fetcher is chosen per job rather than once per run.
func newWorkPipelineFactory(cfg *config.Config, logger *slog.Logger) func(job *model.Job) *pipeline.Pipeline {
	return func(job *model.Job) *pipeline.Pipeline {
		jobCfg := *cfg
		jobCfg.RenderMode = job.RenderMode
		return newPipelineFactory(&jobCfg, logger)(job)
	}
}
