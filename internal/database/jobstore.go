package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/websift/websift/internal/model"
)

// JobStore provides SQLite-based storage for scrape jobs and their results.
// It manages connection pooling and provides methods for CRUD operations.
//
// The store is deliberately dumb: it does not retry failed statements and
// it knows nothing about job semantics beyond status strings. Retry
// policy, if any, belongs to the caller.
type JobStore struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures JobStore behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent
	// read performance. Recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a JobStore at the specified directory.
// If CreateIfNotExists is false and the database doesn't exist, an error
// is returned.
func Open(dbDir string, opts Options) (*JobStore, error) {
	dbPath := filepath.Join(dbDir, "websift.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection strings: mode=rw prevents creating
	// new files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite supports only one writer; readers benefit from WAL instead
	// of extra connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	store := &JobStore{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := store.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *JobStore) Close() error {
	return s.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (s *JobStore) createTables() error {
	schema := `
	-- Scrape jobs store one row per submitted crawl or scrape request
	CREATE TABLE IF NOT EXISTS scrape_jobs (
		id TEXT PRIMARY KEY,
		seed_urls TEXT,
		query TEXT,
		crawl INTEGER NOT NULL DEFAULT 0,
		max_pages INTEGER NOT NULL,
		max_depth INTEGER NOT NULL,
		same_domain INTEGER NOT NULL DEFAULT 1,
		render_mode INTEGER NOT NULL DEFAULT 0,
		keywords TEXT,
		instruction TEXT,
		export_format TEXT,
		status TEXT NOT NULL,
		error TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		completed_at DATETIME
	);

	CREATE INDEX IF NOT EXISTS idx_jobs_status ON scrape_jobs(status);
	CREATE INDEX IF NOT EXISTS idx_jobs_created ON scrape_jobs(created_at);

	-- Scrape results store one row per admitted page record
	CREATE TABLE IF NOT EXISTS scrape_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		job_id TEXT NOT NULL,
		url TEXT NOT NULL,
		crawl_depth INTEGER NOT NULL DEFAULT 0,
		record_json TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_results_job ON scrape_results(job_id);

	-- Fetch errors store per-page failures for job diagnostics
	CREATE TABLE IF NOT EXISTS fetch_errors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		job_id TEXT NOT NULL,
		url TEXT NOT NULL,
		reason TEXT,
		occurred_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_errors_job ON fetch_errors(job_id);
	`

	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// CreateJob inserts a new job record. A missing ID is generated, a
// missing status defaults to pending, and CreatedAt is stamped.
func (s *JobStore) CreateJob(ctx context.Context, job *model.Job) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Status == "" {
		job.Status = model.JobStatusPending
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}

	seedsJSON, err := json.Marshal(job.SeedURLs)
	if err != nil {
		return fmt.Errorf("failed to serialize seed URLs: %w", err)
	}
	keywordsJSON, err := json.Marshal(job.Keywords)
	if err != nil {
		return fmt.Errorf("failed to serialize keywords: %w", err)
	}

	query := `
	INSERT INTO scrape_jobs
		(id, seed_urls, query, crawl, max_pages, max_depth, same_domain,
		 render_mode, keywords, instruction, export_format, status, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		job.ID,
		string(seedsJSON),
		job.Query,
		boolToInt(job.Crawl),
		job.MaxPages,
		job.MaxDepth,
		boolToInt(job.SameDomain),
		boolToInt(job.RenderMode),
		string(keywordsJSON),
		job.Instruction,
		job.ExportFormat,
		string(job.Status),
		job.CreatedAt.Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		return fmt.Errorf("failed to insert job: %w", err)
	}

	return nil
}

// GetJob retrieves a job by ID. Returns (nil, nil) when the job is absent.
func (s *JobStore) GetJob(ctx context.Context, id string) (*model.Job, error) {
	query := `
	SELECT id, seed_urls, query, crawl, max_pages, max_depth, same_domain,
	       render_mode, keywords, instruction, export_format, status, error,
	       created_at, completed_at
	FROM scrape_jobs
	WHERE id = ?
	`

	row := s.db.QueryRowContext(ctx, query, id)
	job, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	return job, nil
}

// UpdateJobStatus transitions a job to the given status.
func (s *JobStore) UpdateJobStatus(ctx context.Context, id string, status model.JobStatus) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE scrape_jobs SET status = ? WHERE id = ?`,
		string(status), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}
	return nil
}

// MarkJobCompleted transitions a job to completed and stamps completed_at.
func (s *JobStore) MarkJobCompleted(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE scrape_jobs SET status = ?, error = '', completed_at = CURRENT_TIMESTAMP WHERE id = ?`,
		string(model.JobStatusCompleted), id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark job completed: %w", err)
	}
	return nil
}

// MarkJobFailed transitions a job to failed with the given message and
// stamps completed_at.
func (s *JobStore) MarkJobFailed(ctx context.Context, id, message string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE scrape_jobs SET status = ?, error = ?, completed_at = CURRENT_TIMESTAMP WHERE id = ?`,
		string(model.JobStatusFailed), message, id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark job failed: %w", err)
	}
	return nil
}

// SaveResults persists page records for a job, one row per page.
// Existing results for the job are left untouched; callers re-running a
// job should create a new job record instead.
func (s *JobStore) SaveResults(ctx context.Context, jobID string, pages []model.PageRecord) error {
	query := `
	INSERT INTO scrape_results (job_id, url, crawl_depth, record_json)
	VALUES (?, ?, ?, ?)
	`

	for _, page := range pages {
		recordJSON, err := json.Marshal(page)
		if err != nil {
			return fmt.Errorf("failed to serialize page record: %w", err)
		}
		if _, err := s.db.ExecContext(ctx, query, jobID, page.URL, page.CrawlDepth, string(recordJSON)); err != nil {
			return fmt.Errorf("failed to insert result: %w", err)
		}
	}

	return nil
}

// SaveFailures persists per-page fetch failures for a job.
func (s *JobStore) SaveFailures(ctx context.Context, jobID string, failures []model.FetchFailure) error {
	query := `
	INSERT INTO fetch_errors (job_id, url, reason, occurred_at)
	VALUES (?, ?, ?, ?)
	`

	for _, failure := range failures {
		occurredAt := failure.OccurredAt
		if occurredAt.IsZero() {
			occurredAt = time.Now().UTC()
		}
		if _, err := s.db.ExecContext(ctx, query,
			jobID, failure.URL, failure.Reason,
			occurredAt.UTC().Format("2006-01-02 15:04:05"),
		); err != nil {
			return fmt.Errorf("failed to insert fetch error: %w", err)
		}
	}

	return nil
}

// GetResults retrieves the page records saved for a job, in insertion
// (traversal) order.
func (s *JobStore) GetResults(ctx context.Context, jobID string) ([]model.PageRecord, error) {
	query := `
	SELECT record_json FROM scrape_results
	WHERE job_id = ?
	ORDER BY id
	`

	rows, err := s.db.QueryContext(ctx, query, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var pages []model.PageRecord
	for rows.Next() {
		var recordJSON string
		if err := rows.Scan(&recordJSON); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}

		var page model.PageRecord
		if err := json.Unmarshal([]byte(recordJSON), &page); err != nil {
			continue // Skip malformed records
		}
		pages = append(pages, page)
	}

	return pages, rows.Err()
}

// GetFailures retrieves the fetch failures recorded for a job.
func (s *JobStore) GetFailures(ctx context.Context, jobID string) ([]model.FetchFailure, error) {
	query := `
	SELECT url, reason, occurred_at FROM fetch_errors
	WHERE job_id = ?
	ORDER BY id
	`

	rows, err := s.db.QueryContext(ctx, query, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to query fetch errors: %w", err)
	}
	defer rows.Close()

	var failures []model.FetchFailure
	for rows.Next() {
		var failure model.FetchFailure
		var occurredAt string
		if err := rows.Scan(&failure.URL, &failure.Reason, &occurredAt); err != nil {
			return nil, fmt.Errorf("failed to scan fetch error: %w", err)
		}
		failure.OccurredAt = parseTimestamp(occurredAt)
		failures = append(failures, failure)
	}

	return failures, rows.Err()
}

// ListJobs retrieves jobs, newest first, optionally filtered by status.
// An empty status returns all jobs.
func (s *JobStore) ListJobs(ctx context.Context, status model.JobStatus) ([]model.Job, error) {
	query := `
	SELECT id, seed_urls, query, crawl, max_pages, max_depth, same_domain,
	       render_mode, keywords, instruction, export_format, status, error,
	       created_at, completed_at
	FROM scrape_jobs
	`
	args := make([]any, 0, 1)
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, string(status))
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []model.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, *job)
	}

	return jobs, rows.Err()
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanJob.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanJob reads one scrape_jobs row into a model.Job.
func scanJob(row rowScanner) (*model.Job, error) {
	var job model.Job
	var seedsJSON, keywordsJSON sql.NullString
	var createdAt string
	var completedAt sql.NullString
	var crawl, sameDomain, renderMode int
	var jobErr sql.NullString

	err := row.Scan(
		&job.ID,
		&seedsJSON,
		&job.Query,
		&crawl,
		&job.MaxPages,
		&job.MaxDepth,
		&sameDomain,
		&renderMode,
		&keywordsJSON,
		&job.Instruction,
		&job.ExportFormat,
		(*string)(&job.Status),
		&jobErr,
		&createdAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}

	job.Crawl = crawl != 0
	job.SameDomain = sameDomain != 0
	job.RenderMode = renderMode != 0
	job.Error = jobErr.String
	job.CreatedAt = parseTimestamp(createdAt)

	if completedAt.Valid && completedAt.String != "" {
		t := parseTimestamp(completedAt.String)
		job.CompletedAt = &t
	}

	if seedsJSON.Valid && seedsJSON.String != "" {
		if err := json.Unmarshal([]byte(seedsJSON.String), &job.SeedURLs); err != nil {
			return nil, fmt.Errorf("failed to parse seed URLs: %w", err)
		}
	}
	if keywordsJSON.Valid && keywordsJSON.String != "" {
		if err := json.Unmarshal([]byte(keywordsJSON.String), &job.Keywords); err != nil {
			return nil, fmt.Errorf("failed to parse keywords: %w", err)
		}
	}

	return &job, nil
}

// boolToInt converts a bool to the 0/1 form SQLite stores.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple
// formats, since SQLite may return timestamps in different formats
// depending on configuration. Returns zero time when no format matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
