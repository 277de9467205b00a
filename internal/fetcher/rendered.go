package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/websift/websift/internal/config"
	"github.com/websift/websift/internal/extract"
	"github.com/websift/websift/internal/model"
)

// ErrNoRenderEndpoint is returned when a Rendered fetcher is used without
// a rendering-service endpoint configured.
var ErrNoRenderEndpoint = errors.New("no rendering service endpoint configured")

// Rendered fetches pages through an external rendering service: a headless
// browser exposed over HTTP that executes page scripts and returns the
// resulting DOM as HTML. This repository deliberately does not embed a
// browser; render mode is an opaque fetch strategy.
type Rendered struct {
	// client performs the requests to the rendering service.
	client *http.Client

	// endpoint is the rendering service URL, e.g. http://localhost:3000/content.
	endpoint string

	// token is an optional bearer token for the rendering service.
	token string

	// maxBodySize limits the size of rendered documents to read.
	maxBodySize int64
}

// RenderedOption configures a Rendered fetcher.
type RenderedOption func(*Rendered)

// WithRenderToken sets a bearer token sent to the rendering service.
func WithRenderToken(token string) RenderedOption {
	return func(f *Rendered) {
		f.token = token
	}
}

// WithRenderMaxBodySize sets the maximum rendered document size.
func WithRenderMaxBodySize(size int64) RenderedOption {
	return func(f *Rendered) {
		f.maxBodySize = size
	}
}

// NewRendered creates a Rendered fetcher that delegates to the rendering
// service at endpoint.
func NewRendered(client *http.Client, endpoint string, opts ...RenderedOption) *Rendered {
	f := &Rendered{
		client:      client,
		endpoint:    endpoint,
		maxBodySize: config.DefaultMaxBodySize,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// renderRequest is the JSON body sent to the rendering service.
type renderRequest struct {
	URL string `json:"url"`
}

// Fetch asks the rendering service for the script-executed document at
// rawURL and extracts its field bag.
func (f *Rendered) Fetch(ctx context.Context, rawURL string) (*model.PageData, error) {
	if f.endpoint == "" {
		return nil, ErrNoRenderEndpoint
	}

	payload, err := json.Marshal(renderRequest{URL: rawURL})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if f.token != "" {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rendering service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("rendering service returned status %d for %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read rendered body: %w", err)
	}

	data, err := extract.Extract(rawURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	data.StatusCode = resp.StatusCode
	data.ContentType = "text/html"

	return data, nil
}
