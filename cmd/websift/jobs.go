package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/websift/websift/internal/config"
	"github.com/websift/websift/internal/database"
	"github.com/websift/websift/internal/model"
)

// NewJobsCmd creates the jobs command.
func NewJobsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List jobs in the job store",
		Long: `Jobs lists the jobs recorded in the local job store, newest first.

Examples:
  # List all jobs
  websift jobs

  # List only failed jobs
  websift jobs --status failed`,
		RunE: runJobsCmd,
	}

	cmd.Flags().StringP("status", "s", "",
		"Filter by status (pending, running, completed, failed)")
	cmd.Flags().String("db-dir", "",
		"Job store directory (default: XDG data directory)")

	return cmd
}

// runJobsCmd executes the jobs command.
func runJobsCmd(cmd *cobra.Command, _ []string) error {
	statusStr, err := cmd.Flags().GetString("status")
	if err != nil {
		return err
	}

	status := model.JobStatus(statusStr)
	if statusStr != "" && !status.Valid() {
		return fmt.Errorf("invalid status %q (want pending, running, completed, or failed)", statusStr)
	}

	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false
	store, err := database.Open(dbDir, opts)
	if err != nil {
		return fmt.Errorf("failed to open job store: %w", err)
	}
	defer store.Close()

	jobs, err := store.ListJobs(context.Background(), status)
	if err != nil {
		return fmt.Errorf("failed to list jobs: %w", err)
	}

	if len(jobs) == 0 {
		fmt.Println("No jobs found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tTARGET\tCREATED\tERROR")
	for _, job := range jobs {
		target := job.Query
		if target == "" && len(job.SeedURLs) > 0 {
			target = job.SeedURLs[0]
			if len(job.SeedURLs) > 1 {
				target = fmt.Sprintf("%s (+%d)", target, len(job.SeedURLs)-1)
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			job.ID,
			job.Status,
			target,
			job.CreatedAt.Format("2006-01-02 15:04"),
			job.Error,
		)
	}
	return w.Flush()
}
