package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/websift/websift/internal/database"
	"github.com/websift/websift/internal/model"
	"github.com/websift/websift/internal/pipeline"
)

// Worker executes scrape jobs and persists their outcome.
//
// A Worker ties together the job store and the pipeline: it moves a job
// to running, executes the pipeline, saves results and failures, and
// settles the job into a terminal state. The store may be nil, in which
// case jobs are processed in memory without persistence.
type Worker struct {
	store   *database.JobStore
	factory func(job *model.Job) *pipeline.Pipeline
	logger  *slog.Logger
}

// Option configures a Worker.
type Option func(*Worker)

// WithLogger sets the logger used for progress output.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		w.logger = logger
	}
}

// New creates a Worker. The factory builds a fresh pipeline for each job
// so that per-job settings (crawl bounds, render mode) take effect.
func New(store *database.JobStore, factory func(job *model.Job) *pipeline.Pipeline, opts ...Option) *Worker {
	w := &Worker{
		store:   store,
		factory: factory,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// ProcessJob loads a stored job by ID and processes it.
func (w *Worker) ProcessJob(ctx context.Context, id string) (*model.JobReport, error) {
	if w.store == nil {
		return nil, fmt.Errorf("no job store configured")
	}

	job, err := w.store.GetJob(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load job %s: %w", id, err)
	}
	if job == nil {
		return nil, fmt.Errorf("job %s not found", id)
	}

	return w.Process(ctx, job)
}

// Process runs the given job through the pipeline and persists the result.
//
// Pipeline errors (invalid seeds, search seeding failure) mark the job
// failed and are returned to the caller. A run that finishes without a
// pipeline error but admits zero pages also marks the job failed, using
// the aggregated fetch failure message, but returns the report with a
// nil error so the caller can still inspect the diagnostics.
func (w *Worker) Process(ctx context.Context, job *model.Job) (*model.JobReport, error) {
	w.logger.Info("processing job", "id", job.ID, "crawl", job.Crawl)

	if err := w.updateStatus(ctx, job, model.JobStatusRunning); err != nil {
		return nil, err
	}

	report := model.NewJobReport(job)
	err := w.factory(job).Execute(ctx, report)

	// Persist whatever the run produced before settling the status, so
	// diagnostics recorded ahead of a pipeline error survive.
	w.saveArtifacts(ctx, job, report)

	if err != nil {
		w.failJob(ctx, job, err.Error())
		return report, err
	}

	if len(report.Pages) == 0 {
		msg := report.AggregateError(3)
		if msg == "" {
			msg = "crawl completed with no admitted pages"
		}
		w.failJob(ctx, job, msg)
		return report, nil
	}

	if w.store != nil {
		if err := w.store.MarkJobCompleted(ctx, job.ID); err != nil {
			w.logger.Warn("failed to mark job completed", "id", job.ID, "error", err)
		}
	}
	job.Status = model.JobStatusCompleted

	w.logger.Info("job completed",
		"id", job.ID,
		"pages", len(report.Pages),
		"failures", len(report.Failures))
	return report, nil
}

// updateStatus records the new status in the store and on the job.
func (w *Worker) updateStatus(ctx context.Context, job *model.Job, status model.JobStatus) error {
	if w.store != nil {
		if err := w.store.UpdateJobStatus(ctx, job.ID, status); err != nil {
			return fmt.Errorf("update job status: %w", err)
		}
	}
	job.Status = status
	return nil
}

// failJob settles the job into the failed state with the given message.
func (w *Worker) failJob(ctx context.Context, job *model.Job, msg string) {
	if w.store != nil {
		if err := w.store.MarkJobFailed(ctx, job.ID, msg); err != nil {
			w.logger.Warn("failed to mark job failed", "id", job.ID, "error", err)
		}
	}
	job.Status = model.JobStatusFailed
	job.Error = msg
	w.logger.Warn("job failed", "id", job.ID, "error", msg)
}

// saveArtifacts persists admitted pages and fetch failures.
// Persistence errors are logged, not fatal: the crawl itself succeeded.
func (w *Worker) saveArtifacts(ctx context.Context, job *model.Job, report *model.JobReport) {
	if w.store == nil {
		return
	}
	if len(report.Pages) > 0 {
		if err := w.store.SaveResults(ctx, job.ID, report.Pages); err != nil {
			w.logger.Warn("failed to save results", "id", job.ID, "error", err)
		}
	}
	if len(report.Failures) > 0 {
		if err := w.store.SaveFailures(ctx, job.ID, report.Failures); err != nil {
			w.logger.Warn("failed to save failures", "id", job.ID, "error", err)
		}
	}
}
