package filter

import (
	"context"
	"regexp"
	"strings"

	"golang.org/x/text/cases"

	"github.com/websift/websift/internal/model"
)

// Filter reshapes crawl results according to a natural-language
// instruction. Implementations must be pure with respect to their input:
// the returned slice may share no backing storage assumptions with the
// argument, and an empty instruction is a passthrough.
type Filter interface {
	// Apply filters and reshapes pages per the instruction.
	Apply(ctx context.Context, instruction string, pages []model.PageRecord) ([]model.PageRecord, error)
}

// Nop passes results through unchanged. Used when no instruction-based
// filtering backend is configured.
type Nop struct{}

// Apply returns pages unchanged.
func (Nop) Apply(_ context.Context, _ string, pages []model.PageRecord) ([]model.PageRecord, error) {
	return pages, nil
}

// quotedTermRe captures double-quoted phrases in an instruction.
var quotedTermRe = regexp.MustCompile(`"([^"]+)"`)

// fieldNames maps instruction words to field-bag projections.
var fieldNames = map[string]bool{
	"title":    true,
	"text":     true,
	"links":    true,
	"images":   true,
	"headings": true,
	"tables":   true,
	"lists":    true,
}

// Heuristic is a deterministic instruction filter.
//
// Two instruction forms are understood:
//
//   - Double-quoted phrases become must-contain constraints: a page is
//     kept only if its text contains every quoted phrase, caselessly.
//     `keep pages mentioning "dry aged" and "ribeye"`
//   - Bare field names (title, text, links, images, headings, tables,
//     lists) project each record down to the named fields.
//     `only the title and links`
//
// Instructions that contain neither form pass results through unchanged,
// which keeps filtering safe to apply unconditionally.
type Heuristic struct{}

// NewHeuristic creates a Heuristic filter.
func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

// Apply filters pages by quoted phrases and projects them onto named fields.
func (h *Heuristic) Apply(_ context.Context, instruction string, pages []model.PageRecord) ([]model.PageRecord, error) {
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return pages, nil
	}

	terms := quotedTerms(instruction)
	fields := namedFields(instruction)
	if len(terms) == 0 && len(fields) == 0 {
		return pages, nil
	}

	caser := cases.Fold()
	out := make([]model.PageRecord, 0, len(pages))
	for _, page := range pages {
		if !containsAll(caser.String(page.TextContent), terms) {
			continue
		}
		if len(fields) > 0 {
			page = project(page, fields)
		}
		out = append(out, page)
	}

	return out, nil
}

// quotedTerms extracts case-folded double-quoted phrases.
func quotedTerms(instruction string) []string {
	matches := quotedTermRe.FindAllStringSubmatch(instruction, -1)
	if len(matches) == 0 {
		return nil
	}
	caser := cases.Fold()
	terms := make([]string, 0, len(matches))
	for _, m := range matches {
		terms = append(terms, caser.String(m[1]))
	}
	return terms
}

// namedFields extracts recognized field names mentioned outside quotes.
func namedFields(instruction string) map[string]bool {
	unquoted := quotedTermRe.ReplaceAllString(instruction, " ")
	fields := make(map[string]bool)
	for _, word := range strings.Fields(strings.ToLower(unquoted)) {
		word = strings.Trim(word, ".,;:()")
		if fieldNames[word] {
			fields[word] = true
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// containsAll reports whether the folded text contains every term.
func containsAll(foldedText string, terms []string) bool {
	for _, term := range terms {
		if !strings.Contains(foldedText, term) {
			return false
		}
	}
	return true
}

// project blanks every field-bag field not named in fields.
// Traversal metadata (URL, depth, provenance) always survives.
func project(page model.PageRecord, fields map[string]bool) model.PageRecord {
	if !fields["title"] {
		page.Title = ""
	}
	if !fields["text"] {
		page.TextContent = ""
	}
	if !fields["links"] {
		page.Links = nil
	}
	if !fields["images"] {
		page.Images = nil
	}
	if !fields["headings"] {
		page.Headings = nil
	}
	if !fields["tables"] {
		page.Tables = nil
	}
	if !fields["lists"] {
		page.Lists = nil
	}
	return page
}
