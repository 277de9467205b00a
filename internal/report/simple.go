package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/websift/websift/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no entries are shown.
	showEmpty bool

	// verbose enables additional detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showEmpty:  false,
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the full report in human-readable format.
func (w *SimpleWriter) Write(report *model.JobReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writePages(&sb, report)
	w.writeFailures(&sb, report)
	w.writeFooter(&sb, report)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with job information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.JobReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         WEBSIFT REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	if report.Job != nil {
		sb.WriteString(fmt.Sprintf("Job ID:         %s\n", report.Job.ID))
		if report.Job.Query != "" {
			sb.WriteString(fmt.Sprintf("Query:          %s\n", report.Job.Query))
		}
		switch report.Job.Status {
		case model.JobStatusFailed:
			sb.WriteString(fmt.Sprintf("Status:         FAILED - %s\n", report.Job.Error))
		default:
			sb.WriteString(fmt.Sprintf("Status:         %s\n", report.Job.Status))
		}
	}
	sb.WriteString(fmt.Sprintf("Started:        %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Pages Admitted: %d\n", len(report.Pages)))
	sb.WriteString(fmt.Sprintf("Fetch Failures: %d\n", len(report.Failures)))
	if len(report.Keywords) > 0 {
		sb.WriteString(fmt.Sprintf("Keywords:       %s\n", strings.Join(report.Keywords, ", ")))
	}

	sb.WriteString("\n")
}

// writePages writes the admitted pages section.
func (w *SimpleWriter) writePages(sb *strings.Builder, report *model.JobReport) {
	if len(report.Pages) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("PAGES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(report.Pages) == 0 {
		sb.WriteString("  No pages admitted\n")
	} else {
		for _, p := range report.Pages {
			sb.WriteString(fmt.Sprintf("  [%d] %s\n", p.CrawlDepth, p.URL))
			if p.Title != "" {
				sb.WriteString(fmt.Sprintf("      Title: %s\n", p.Title))
			}
			if w.verbose {
				if p.DiscoveredFrom != "" {
					sb.WriteString(fmt.Sprintf("      Discovered from: %s\n", p.DiscoveredFrom))
				}
				sb.WriteString(fmt.Sprintf("      Links: %d, Images: %d, Headings: %d\n",
					len(p.Links), len(p.Images), len(p.Headings)))
			}
		}
	}

	sb.WriteString("\n")
}

// writeFailures writes the fetch failures section.
func (w *SimpleWriter) writeFailures(sb *strings.Builder, report *model.JobReport) {
	if len(report.Failures) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("FETCH FAILURES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(report.Failures) == 0 {
		sb.WriteString("  No fetch failures\n")
	} else {
		for _, f := range report.Failures {
			sb.WriteString(fmt.Sprintf("  [!] %s\n", f.URL))
			sb.WriteString(fmt.Sprintf("      %s\n", f.Reason))
		}
	}

	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder, report *model.JobReport) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	if len(report.PerformedSteps) > 0 {
		sb.WriteString(fmt.Sprintf("Steps: %s\n", strings.Join(report.PerformedSteps, " -> ")))
	}
}
