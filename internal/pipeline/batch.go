package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/websift/websift/internal/model"
)

// ProcessFunc processes a single job end to end and returns its report.
// The batch processor calls it once per job; implementations own status
// transitions and persistence.
type ProcessFunc func(ctx context.Context, job *model.Job) (*model.JobReport, error)

// BatchProcessor handles concurrent processing of multiple jobs.
// It uses errgroup to manage goroutines and respect concurrency limits.
//
// Design decision: We use a separate BatchProcessor rather than adding
// batch functionality to Pipeline because it keeps the Pipeline focused
// on single-job execution and allows different batch strategies later.
type BatchProcessor struct {
	// process handles one job.
	process ProcessFunc

	// concurrency is the maximum number of jobs processed at once.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent jobs.
// Default is 4 if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor around a ProcessFunc.
func NewBatchProcessor(process ProcessFunc, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		process:     process,
		concurrency: 4,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch processes the given jobs concurrently, at most
// `concurrency` jobs at a time, and returns their reports in input order.
//
// Design decision: We use errgroup.SetLimit rather than a hand-rolled
// worker pool because each job still gets its own goroutine while only
// `concurrency` run simultaneously, and cancellation falls out for free.
//
// Individual job failures do not stop the batch; the error return is
// non-nil only when the context was cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, jobs []*model.Job) ([]*model.JobReport, error) {
	bp.logger.Info("starting batch processing",
		"total_jobs", len(jobs),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	// Pre-allocated so each goroutine writes only its own slot.
	reports := make([]*model.JobReport, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, job := range jobs {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			report, err := bp.process(gctx, job)
			reports[i] = report
			if err != nil {
				bp.logger.Error("job processing failed",
					"job", job.ID,
					"error", err,
				)
			}
			// Job failures are recorded on the job itself; only
			// cancellation aborts the batch.
			return nil
		})
	}

	err := g.Wait()

	bp.logger.Info("batch processing finished",
		"total_jobs", len(jobs),
		"elapsed", time.Since(startTime).Round(time.Millisecond),
	)

	return reports, err
}
