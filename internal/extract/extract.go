package extract

import (
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/websift/websift/internal/model"
)

// Extract parses HTML content and builds the page field bag.
// Relative URLs (hrefs, image sources) are resolved against pageURL.
//
// Design decision: We use goquery rather than walking x/net/html nodes by
// hand because the field bag requires structured extraction (tables, lists,
// headings) where CSS selectors are far more maintainable than manual DOM
// traversal. goquery builds on x/net/html and tolerates the malformed
// markup common on the web.
func Extract(pageURL string, r io.Reader) (*model.PageData, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page URL: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	data := &model.PageData{
		URL:       pageURL,
		Title:     strings.TrimSpace(doc.Find("title").First().Text()),
		Meta:      extractMeta(doc),
		FetchedAt: time.Now(),
	}

	data.TextContent = normalizeText(doc.Find("body").Text(), model.MaxTextContent)
	data.Links = extractLinks(doc, base)
	data.Images = extractImages(doc, base)
	data.Headings = extractHeadings(doc)
	data.Tables = extractTables(doc)
	data.Lists = extractLists(doc)

	return data, nil
}

// extractLinks collects anchors with resolvable hrefs, capped at
// model.MaxLinks. Non-navigational schemes are skipped.
func extractLinks(doc *goquery.Document, base *url.URL) []model.Link {
	links := make([]model.Link, 0)
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		resolved := resolveURL(base, href)
		if resolved == "" {
			return true
		}
		links = append(links, model.Link{
			Href: resolved,
			Text: strings.TrimSpace(s.Text()),
		})
		return len(links) < model.MaxLinks
	})
	return links
}

// extractImages collects resolved img sources, capped at model.MaxImages.
func extractImages(doc *goquery.Document, base *url.URL) []string {
	images := make([]string, 0)
	doc.Find("img[src]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src, _ := s.Attr("src")
		resolved := resolveURL(base, src)
		if resolved == "" {
			return true
		}
		images = append(images, resolved)
		return len(images) < model.MaxImages
	})
	return images
}

// extractHeadings collects h1-h6 elements in document order.
func extractHeadings(doc *goquery.Document) []model.Heading {
	headings := make([]model.Heading, 0)
	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return
		}
		// Node name is "h1".."h6"; the level is its second byte.
		level := int(goquery.NodeName(s)[1] - '0')
		headings = append(headings, model.Heading{Level: level, Text: text})
	})
	return headings
}

// extractTables collects the cell text of each table, one row per slice.
func extractTables(doc *goquery.Document) []model.Table {
	tables := make([]model.Table, 0)
	doc.Find("table").Each(func(_ int, t *goquery.Selection) {
		rows := make([][]string, 0)
		t.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			cells := make([]string, 0)
			tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, strings.TrimSpace(cell.Text()))
			})
			if len(cells) > 0 {
				rows = append(rows, cells)
			}
		})
		if len(rows) > 0 {
			tables = append(tables, model.Table{Rows: rows})
		}
	})
	return tables
}

// extractLists collects the item text of each ul/ol element.
// Only direct li children are taken so nested lists appear separately.
func extractLists(doc *goquery.Document) [][]string {
	lists := make([][]string, 0)
	doc.Find("ul, ol").Each(func(_ int, l *goquery.Selection) {
		items := make([]string, 0)
		l.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
			if text := strings.TrimSpace(li.Text()); text != "" {
				items = append(items, text)
			}
		})
		if len(items) > 0 {
			lists = append(lists, items)
		}
	})
	return lists
}

// extractMeta collects meta name/property to content mappings.
func extractMeta(doc *goquery.Document) map[string]string {
	meta := make(map[string]string)
	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		name, ok := s.Attr("name")
		if !ok || name == "" {
			name, _ = s.Attr("property") // OpenGraph uses property
		}
		content, _ := s.Attr("content")
		if name != "" && content != "" {
			meta[name] = content
		}
	})
	return meta
}

// resolveURL resolves href against base, dropping non-navigational
// schemes and empty fragments.
func resolveURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || href == "#" {
		return ""
	}
	lower := strings.ToLower(href)
	if strings.HasPrefix(lower, "javascript:") ||
		strings.HasPrefix(lower, "mailto:") ||
		strings.HasPrefix(lower, "tel:") ||
		strings.HasPrefix(lower, "data:") {
		return ""
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(u).String()
}

// normalizeText collapses runs of whitespace into single spaces and caps
// the result at max runes.
func normalizeText(s string, max int) string {
	fields := strings.Fields(s)
	text := strings.Join(fields, " ")
	runes := []rune(text)
	if len(runes) > max {
		return string(runes[:max])
	}
	return text
}
