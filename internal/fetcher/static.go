package fetcher

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"context"

	"golang.org/x/net/html/charset"

	"github.com/websift/websift/internal/config"
	"github.com/websift/websift/internal/extract"
	"github.com/websift/websift/internal/model"
)

// Static fetches pages over plain HTTP without script execution.
//
// Design decision: We require an external *http.Client rather than building
// one internally because timeouts, proxies, and redirect policies belong to
// the caller, and tests can inject httptest clients.
type Static struct {
	// client performs the requests. Its Timeout bounds each fetch.
	client *http.Client

	// userAgent is the User-Agent header to send.
	userAgent string

	// maxBodySize limits the size of response bodies to read.
	maxBodySize int64

	// sites carries per-host headers and cookies from the config file.
	sites *config.File

	// robots, when non-nil, is consulted before each request.
	robots *RobotsCache
}

// StaticOption configures a Static fetcher.
type StaticOption func(*Static)

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) StaticOption {
	return func(f *Static) {
		f.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum response body size.
func WithMaxBodySize(size int64) StaticOption {
	return func(f *Static) {
		f.maxBodySize = size
	}
}

// WithSiteConfigs sets per-host fetch settings (headers, cookies).
func WithSiteConfigs(sites *config.File) StaticOption {
	return func(f *Static) {
		f.sites = sites
	}
}

// WithRobotsPolicy enables robots.txt checks using the given cache.
func WithRobotsPolicy(robots *RobotsCache) StaticOption {
	return func(f *Static) {
		f.robots = robots
	}
}

// NewStatic creates a Static fetcher using the given HTTP client.
func NewStatic(client *http.Client, opts ...StaticOption) *Static {
	f := &Static{
		client:      client,
		userAgent:   config.DefaultUserAgent,
		maxBodySize: config.DefaultMaxBodySize,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fetch retrieves rawURL and extracts its field bag.
func (f *Static) Fetch(ctx context.Context, rawURL string) (*model.PageData, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	if f.robots != nil && !f.robots.Allowed(ctx, u) {
		return nil, fmt.Errorf("%s: %w", u.Path, ErrDisallowedByRobots)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	f.applySiteConfig(req, u.Host)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, rawURL)
	}

	contentType := resp.Header.Get("Content-Type")
	if !isHTML(contentType) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedContent, contentType)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	// Decode legacy encodings declared in the Content-Type header or
	// sniffed from the document itself. UTF-8 input passes through.
	decoded, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}

	data, err := extract.Extract(rawURL, decoded)
	if err != nil {
		return nil, err
	}

	data.StatusCode = resp.StatusCode
	data.ContentType = contentType

	return data, nil
}

// applySiteConfig adds per-host headers and cookies to the request.
func (f *Static) applySiteConfig(req *http.Request, host string) {
	if f.sites == nil {
		return
	}

	sc := f.sites.GetSiteConfig(host)
	for k, v := range sc.Headers {
		req.Header.Set(k, v)
	}
	if sc.Cookie != "" {
		req.Header.Set("Cookie", sc.Cookie)
	}
}

// isHTML reports whether the content type indicates an HTML document.
func isHTML(contentType string) bool {
	mediaType := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	// An empty Content-Type is treated as HTML; some small sites omit it.
	return mediaType == "" ||
		mediaType == "text/html" ||
		mediaType == "application/xhtml+xml"
}
