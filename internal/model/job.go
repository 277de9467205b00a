package model

import "time"

// JobStatus represents the lifecycle state of a scrape job.
type JobStatus string

// Job lifecycle states. A job moves pending -> running -> completed/failed;
// there are no other transitions.
const (
	// JobStatusPending means the job has been created but not picked up.
	JobStatusPending JobStatus = "pending"

	// JobStatusRunning means a worker is currently processing the job.
	JobStatusRunning JobStatus = "running"

	// JobStatusCompleted means the job finished with at least one result.
	JobStatusCompleted JobStatus = "completed"

	// JobStatusFailed means the job could not produce any results.
	JobStatusFailed JobStatus = "failed"
)

// Valid reports whether s is one of the known job states.
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusPending, JobStatusRunning, JobStatusCompleted, JobStatusFailed:
		return true
	}
	return false
}

// Terminal reports whether s is an end state.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Job is a persisted scrape or crawl request.
//
// Exactly one of SeedURLs and Query is set: explicit seeds start the
// traversal directly, while a query is turned into seeds via search
// seeding first.
type Job struct {
	// ID is the job's unique identifier (UUID).
	ID string `json:"id"`

	// SeedURLs are the starting URLs for crawl jobs, or the single target
	// URL for plain scrape jobs.
	SeedURLs []string `json:"seed_urls,omitempty"`

	// Query is a free-text search query used to discover seeds.
	// Mutually exclusive with SeedURLs.
	Query string `json:"query,omitempty"`

	// Crawl enables frontier traversal. When false the job fetches only
	// the first seed URL at depth zero.
	Crawl bool `json:"crawl"`

	// MaxPages bounds the number of admitted pages.
	MaxPages int `json:"max_pages"`

	// MaxDepth bounds the traversal depth. 0 means seeds only.
	MaxDepth int `json:"max_depth"`

	// SameDomain restricts link expansion to the seed's host.
	SameDomain bool `json:"same_domain"`

	// RenderMode selects scripted rendering for every fetch in the job.
	RenderMode bool `json:"render_mode"`

	// Keywords admit a page only if its text contains at least one of
	// them, case-insensitively.
	Keywords []string `json:"keywords,omitempty"`

	// Instruction is an optional natural-language instruction applied to
	// the results by the field filter.
	Instruction string `json:"instruction,omitempty"`

	// ExportFormat is the preferred export format ("json" or "markdown").
	ExportFormat string `json:"export_format,omitempty"`

	// Status is the job's lifecycle state.
	Status JobStatus `json:"status"`

	// Error holds the aggregated failure message for failed jobs.
	Error string `json:"error,omitempty"`

	// CreatedAt is when the job was created.
	CreatedAt time.Time `json:"created_at"`

	// CompletedAt is when the job reached a terminal state.
	// Nil while the job is pending or running.
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// JobReport carries a job's in-flight results through the pipeline.
// Steps append to it as they run; the worker persists the final state.
type JobReport struct {
	// Job is the job being processed.
	Job *Job `json:"job"`

	// Seeds are the resolved seed URLs the crawl started from.
	// For query jobs these are the harvested search candidates.
	Seeds []string `json:"seeds,omitempty"`

	// Keywords are the admission keywords in effect, including the query
	// itself for search-seeded jobs.
	Keywords []string `json:"keywords,omitempty"`

	// Pages are the admitted page records in traversal order.
	Pages []PageRecord `json:"pages,omitempty"`

	// Failures are per-page fetch failures recorded during the crawl.
	Failures []FetchFailure `json:"failures,omitempty"`

	// PerformedSteps names the pipeline steps that ran, in order.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// StartedAt and FinishedAt bound the pipeline execution.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// NewJobReport creates a JobReport for the given job.
func NewJobReport(job *Job) *JobReport {
	return &JobReport{
		Job:       job,
		StartedAt: time.Now(),
	}
}

// AggregateError builds a user-facing failure message from up to max
// recorded fetch failures. Returns an empty string when there are none.
func (r *JobReport) AggregateError(max int) string {
	if len(r.Failures) == 0 {
		return ""
	}
	msg := "no pages could be retrieved"
	n := len(r.Failures)
	if n > max {
		n = max
	}
	for i := 0; i < n; i++ {
		msg += "; " + r.Failures[i].URL + ": " + r.Failures[i].Reason
	}
	if len(r.Failures) > max {
		msg += "; ..."
	}
	return msg
}
