package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/websift/websift/internal/config"
	"github.com/websift/websift/internal/database"
	"github.com/websift/websift/internal/model"
)

// NewExportCmd creates the export command.
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <job-id>",
		Short: "Export stored results for a job",
		Long: `Export writes the stored results of a previously processed job.

The format defaults to the job's own export preference and can be
overridden with --json or --markdown.

Examples:
  # Export a job's results as recorded
  websift export 5f2b0c1e-...

  # Force JSON output to a file
  websift export --json -o result.json 5f2b0c1e-...`,
		Args: cobra.ExactArgs(1),
		RunE: runExportCmd,
	}

	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().String("db-dir", "",
		"Job store directory (default: XDG data directory)")

	return cmd
}

// runExportCmd executes the export command.
func runExportCmd(cmd *cobra.Command, args []string) error {
	cfg := config.NewConfig()

	var err error

	cfg.JSONExport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	cfg.MarkdownExport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	if cfg.JSONExport && cfg.MarkdownExport {
		return config.ErrConflictingExportFormats
	}

	cfg.OutputFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	cfg.DBDir, err = cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if cfg.DBDir == "" {
		cfg.DBDir = config.XDGDataDir()
	}

	return runExport(context.Background(), cfg, args[0])
}

// runExport loads a stored job and writes its report.
func runExport(ctx context.Context, cfg *config.Config, jobID string) error {
	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false
	store, err := database.Open(cfg.DBDir, opts)
	if err != nil {
		return fmt.Errorf("failed to open job store: %w", err)
	}
	defer store.Close()

	job, err := store.GetJob(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to load job: %w", err)
	}
	if job == nil {
		return fmt.Errorf("job %s not found", jobID)
	}

	pages, err := store.GetResults(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to load results: %w", err)
	}
	failures, err := store.GetFailures(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to load failures: %w", err)
	}

	// Fall back to the job's recorded export preference
	if !cfg.JSONExport && !cfg.MarkdownExport {
		switch job.ExportFormat {
		case "json":
			cfg.JSONExport = true
		case "markdown":
			cfg.MarkdownExport = true
		}
	}

	jobReport := model.NewJobReport(job)
	jobReport.Pages = pages
	jobReport.Failures = failures
	jobReport.Keywords = job.Keywords
	jobReport.StartedAt = job.CreatedAt
	if job.CompletedAt != nil {
		jobReport.FinishedAt = *job.CompletedAt
	}

	return outputReport(cfg, jobReport)
}
