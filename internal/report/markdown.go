package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/websift/websift/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full report in Markdown format.
func (w *MarkdownWriter) Write(report *model.JobReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSeeds(md, report)
	w.writePages(md, report)
	w.writeFailures(md, report)
	w.writeFooter(md, report)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with job information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.JobReport) {
	md.H1("Websift Report")
	md.PlainText("")

	rows := [][]string{
		{"Started", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
		{"Pages Admitted", strconv.Itoa(len(report.Pages))},
		{"Fetch Failures", strconv.Itoa(len(report.Failures))},
	}
	if report.Job != nil {
		rows = append([][]string{
			{"Job ID", "`" + report.Job.ID + "`"},
			{"Status", w.statusText(report)},
		}, rows...)
		if report.Job.Query != "" {
			rows = append(rows, []string{"Query", report.Job.Query})
		}
	}
	if len(report.Keywords) > 0 {
		rows = append(rows, []string{"Keywords", strings.Join(report.Keywords, ", ")})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// statusText returns a status badge for the job state.
func (w *MarkdownWriter) statusText(report *model.JobReport) string {
	switch report.Job.Status {
	case model.JobStatusCompleted:
		return "✅ Completed"
	case model.JobStatusFailed:
		return "❌ Failed - " + report.Job.Error
	case model.JobStatusRunning:
		return "⏳ Running"
	default:
		return string(report.Job.Status)
	}
}

// writeSeeds writes the resolved seed URLs.
func (w *MarkdownWriter) writeSeeds(md *markdown.Markdown, report *model.JobReport) {
	if len(report.Seeds) == 0 {
		return
	}

	md.H2("Seeds")
	md.PlainText("")
	md.BulletList(report.Seeds...)
	md.PlainText("")
}

// writePages writes the admitted pages table and a depth distribution chart.
func (w *MarkdownWriter) writePages(md *markdown.Markdown, report *model.JobReport) {
	md.H2("Pages")
	md.PlainText("")

	if len(report.Pages) == 0 {
		md.PlainText("No pages were admitted.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(report.Pages))
	for _, p := range report.Pages {
		rows = append(rows, []string{
			"`" + p.URL + "`",
			p.Title,
			strconv.Itoa(p.CrawlDepth),
			"`" + p.DiscoveredFrom + "`",
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"URL", "Title", "Depth", "Discovered From"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writeDepthChart(md, report)
}

// writeDepthChart writes a mermaid pie chart of pages per crawl depth.
func (w *MarkdownWriter) writeDepthChart(md *markdown.Markdown, report *model.JobReport) {
	counts := make(map[int]int)
	maxDepth := 0
	for _, p := range report.Pages {
		counts[p.CrawlDepth]++
		if p.CrawlDepth > maxDepth {
			maxDepth = p.CrawlDepth
		}
	}
	if len(counts) < 2 {
		return
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Pages per Crawl Depth"),
		piechart.WithShowData(true),
	)
	for depth := 0; depth <= maxDepth; depth++ {
		if counts[depth] > 0 {
			chart.LabelAndIntValue(fmt.Sprintf("Depth %d", depth), uint64(counts[depth]))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeFailures writes the per-page fetch failures section.
func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, report *model.JobReport) {
	if len(report.Failures) == 0 {
		return
	}

	md.H2("Fetch Failures")
	md.PlainText("")

	rows := make([][]string, 0, len(report.Failures))
	for _, f := range report.Failures {
		rows = append(rows, []string{"`" + f.URL + "`", f.Reason})
	}

	md.Table(markdown.TableSet{
		Header: []string{"URL", "Reason"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown, report *model.JobReport) {
	md.HorizontalRule()
	if !report.FinishedAt.IsZero() {
		md.PlainText(fmt.Sprintf(
			"Generated by websift in %s.",
			report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond),
		))
	} else {
		md.PlainText("Generated by websift.")
	}
}
