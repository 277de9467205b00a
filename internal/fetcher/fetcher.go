package fetcher

import (
	"context"
	"errors"

	"github.com/websift/websift/internal/model"
)

// Fetcher retrieves a single page and returns its complete field bag.
//
// Implementations must be complete-or-fail: a non-2xx response, an
// unsupported content type, or an unreadable body is an error, never a
// partially-populated PageData. The traversal engine relies on this
// contract to keep its per-page error branch simple.
type Fetcher interface {
	// Fetch retrieves rawURL and extracts its field bag.
	// The per-fetch timeout is owned by the implementation.
	Fetch(ctx context.Context, rawURL string) (*model.PageData, error)
}

// Fetch errors. Per-page failures are non-fatal to a crawl; callers record
// them and move on, so these exist for errors.Is checks in logs and tests
// rather than for control flow.
var (
	// ErrUnsupportedContent is returned when the response is not HTML.
	ErrUnsupportedContent = errors.New("unsupported content type")

	// ErrDisallowedByRobots is returned when robots.txt forbids the path.
	ErrDisallowedByRobots = errors.New("disallowed by robots.txt")
)
