package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"

	"github.com/temoto/robotstxt"
)

// maxRobotsSize bounds the robots.txt body read per host.
const maxRobotsSize = 2 << 20 // 2MB

// RobotsCache fetches and caches robots.txt rules per host.
//
// The cache fails open: hosts whose robots.txt cannot be fetched or parsed
// are treated as allow-all, matching how most crawlers behave when the
// file is missing.
type RobotsCache struct {
	// client fetches robots.txt files.
	client *http.Client

	// userAgent is matched against robots.txt groups.
	userAgent string

	// mu protects groups.
	mu sync.Mutex

	// groups maps "scheme://host" to the matched rule group.
	// A nil value means allow-all for that host.
	groups map[string]*robotstxt.Group
}

// NewRobotsCache creates a RobotsCache using the given client and
// User-Agent string.
func NewRobotsCache(client *http.Client, userAgent string) *RobotsCache {
	return &RobotsCache{
		client:    client,
		userAgent: userAgent,
		groups:    make(map[string]*robotstxt.Group),
	}
}

// Allowed reports whether u may be fetched according to its host's
// robots.txt. The first call per host fetches and caches the rules.
func (rc *RobotsCache) Allowed(ctx context.Context, u *url.URL) bool {
	key := u.Scheme + "://" + u.Host

	rc.mu.Lock()
	group, ok := rc.groups[key]
	rc.mu.Unlock()

	if !ok {
		group = rc.fetchGroup(ctx, u)
		rc.mu.Lock()
		rc.groups[key] = group
		rc.mu.Unlock()
	}

	if group == nil {
		return true
	}

	path := u.Path
	if path == "" {
		path = "/"
	}
	return group.Test(path)
}

// fetchGroup retrieves and parses robots.txt for u's host.
// Any failure yields nil, meaning allow-all.
func (rc *RobotsCache) fetchGroup(ctx context.Context, u *url.URL) *robotstxt.Group {
	robotsURL := &url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/robots.txt"}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL.String(), nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", rc.userAgent)

	resp, err := rc.client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsSize))
	if err != nil {
		return nil
	}

	data, err := robotstxt.FromBytes(body)
	if err != nil {
		return nil
	}

	group := data.FindGroup(rc.userAgent)
	if group == nil {
		group = data.FindGroup("*")
	}
	return group
}
