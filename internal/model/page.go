package model

import "time"

// MaxTextContent is the maximum length of extracted page text in runes.
// Text beyond this limit carries little signal for keyword admission or
// field filtering and inflates stored results.
const MaxTextContent = 5000

// MaxImages is the maximum number of image sources kept per page.
const MaxImages = 50

// MaxLinks is the maximum number of outbound links kept per page.
const MaxLinks = 100

// PageData is the field bag extracted from a single fetched page.
// The fetcher either fills the whole structure or fails outright; a
// partially-populated PageData is never handed to the traversal engine.
type PageData struct {
	// URL is the URL the page was fetched from.
	URL string `json:"url"`

	// StatusCode is the HTTP response status code.
	StatusCode int `json:"status_code"`

	// ContentType is the MIME type of the response.
	ContentType string `json:"content_type"`

	// Title is the page title from the <title> tag.
	// Empty when the page has no title element.
	Title string `json:"title,omitempty"`

	// TextContent is the whitespace-normalized visible text of the page,
	// capped at MaxTextContent runes. Used for keyword admission and
	// instruction filtering.
	TextContent string `json:"text_content,omitempty"`

	// Links are the outbound anchors with hrefs resolved against URL.
	Links []Link `json:"links,omitempty"`

	// Images are resolved image source URLs, capped at MaxImages.
	Images []string `json:"images,omitempty"`

	// Headings are the h1-h6 elements in document order.
	Headings []Heading `json:"headings,omitempty"`

	// Tables hold the cell text of each <table>, one row per slice.
	Tables []Table `json:"tables,omitempty"`

	// Lists hold the item text of each <ul>/<ol>.
	Lists [][]string `json:"lists,omitempty"`

	// Meta contains <meta> name/property to content mappings.
	Meta map[string]string `json:"meta,omitempty"`

	// FetchedAt is when the page was retrieved.
	FetchedAt time.Time `json:"fetched_at"`
}

// Link is a single resolved outbound link.
type Link struct {
	// Href is the absolute link target.
	Href string `json:"href"`

	// Text is the anchor's inner text, if any.
	Text string `json:"text,omitempty"`
}

// Heading is a single h1-h6 element.
type Heading struct {
	// Level is the heading level, 1 through 6.
	Level int `json:"level"`

	// Text is the heading's text content.
	Text string `json:"text"`
}

// Table holds the extracted cell text of one HTML table.
type Table struct {
	// Rows are the table rows; each row is the text of its cells in order.
	Rows [][]string `json:"rows"`
}

// PageRecord is a successfully admitted page together with the traversal
// metadata the crawl engine stamps onto it.
type PageRecord struct {
	PageData

	// CrawlDepth is the distance from the seed, 0 for seeds themselves.
	CrawlDepth int `json:"crawl_depth"`

	// DiscoveredFrom is the canonical URL of the page for non-seed entries,
	// and empty for seeds. Empty iff CrawlDepth is 0.
	DiscoveredFrom string `json:"discovered_from,omitempty"`
}

// FetchFailure records a single page that could not be retrieved.
// Failures are diagnostics only: they never abort a crawl and do not
// count against the page budget.
type FetchFailure struct {
	// URL is the canonical URL that failed.
	URL string `json:"url"`

	// Reason is the error message from the fetch attempt.
	Reason string `json:"reason"`

	// OccurredAt is when the failure was recorded.
	OccurredAt time.Time `json:"occurred_at"`
}
